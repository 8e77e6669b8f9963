package middleware

import (
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"nutrition-resolver/internal/pkg/common"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	common.Logger = zap.NewNop()
	os.Exit(m.Run())
}

func serve(r *gin.Engine, method, path, body, remoteAddr string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if remoteAddr != "" {
		req.RemoteAddr = remoteAddr
	}
	r.ServeHTTP(w, req)
	return w
}

func TestBodySizeLimit_RejectsOversized(t *testing.T) {
	r := gin.New()
	r.Use(BodySizeLimit(16))
	r.POST("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := serve(r, http.MethodPost, "/x", strings.Repeat("a", 64), "")
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)

	w = serve(r, http.MethodPost, "/x", "small", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRateLimit_PerClient(t *testing.T) {
	r := gin.New()
	r.Use(RateLimit(2, time.Minute))
	r.POST("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, serve(r, http.MethodPost, "/x", "a", "10.0.0.1:1000").Code)
	assert.Equal(t, http.StatusOK, serve(r, http.MethodPost, "/x", "b", "10.0.0.1:1000").Code)
	assert.Equal(t, http.StatusTooManyRequests, serve(r, http.MethodPost, "/x", "c", "10.0.0.1:1000").Code)

	// 別的 client 有自己的桶
	assert.Equal(t, http.StatusOK, serve(r, http.MethodPost, "/x", "d", "10.0.0.2:1000").Code)
}

func TestRateLimit_RetryAfterHeader(t *testing.T) {
	r := gin.New()
	r.Use(RateLimit(1, 30*time.Second))
	r.POST("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	serve(r, http.MethodPost, "/x", "a", "10.0.0.3:1000")
	w := serve(r, http.MethodPost, "/x", "b", "10.0.0.3:1000")

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "30", w.Header().Get("Retry-After"))
}

func TestDeduplication_SameClientSameBody(t *testing.T) {
	r := gin.New()
	r.Use(Deduplication(nil))
	r.POST("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	body := `{"query":"pizza"}`
	assert.Equal(t, http.StatusOK, serve(r, http.MethodPost, "/x", body, "10.0.0.1:1000").Code)
	assert.Equal(t, http.StatusTooManyRequests, serve(r, http.MethodPost, "/x", body, "10.0.0.1:1000").Code)

	// 不同內容不算重複
	assert.Equal(t, http.StatusOK, serve(r, http.MethodPost, "/x", `{"query":"burger"}`, "10.0.0.1:1000").Code)
}

func TestDeduplication_DifferentClientsAllowed(t *testing.T) {
	r := gin.New()
	r.Use(Deduplication(nil))
	r.POST("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	body := `{"query":"pizza"}`
	assert.Equal(t, http.StatusOK, serve(r, http.MethodPost, "/x", body, "10.0.0.1:1000").Code)
	assert.Equal(t, http.StatusOK, serve(r, http.MethodPost, "/x", body, "10.0.0.2:1000").Code)
}

func TestDeduplication_IgnoresGet(t *testing.T) {
	r := gin.New()
	r.Use(Deduplication(nil))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/x", "", "10.0.0.1:1000").Code)
	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/x", "", "10.0.0.1:1000").Code)
}
