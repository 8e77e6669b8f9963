package middleware

import (
	"bytes"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"nutrition-resolver/internal/infrastructure/config"
	"nutrition-resolver/internal/pkg/common"
)

// dedupStore 記錄最近看過的請求指紋
type dedupStore struct {
	mu   sync.Mutex
	seen map[string]time.Time
}

func newDedupStore() *dedupStore {
	return &dedupStore{seen: make(map[string]time.Time)}
}

// isDuplicate 回報指紋是否在視窗內出現過，並更新最後出現時間
func (s *dedupStore) isDuplicate(fingerprint string, window time.Duration) bool {
	now := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()

	last, exists := s.seen[fingerprint]
	s.seen[fingerprint] = now
	return exists && now.Sub(last) <= window
}

// sweep 清掉超出視窗十倍的舊指紋
func (s *dedupStore) sweep(window time.Duration) {
	now := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, t := range s.seen {
		if now.Sub(t) > 10*window {
			delete(s.seen, k)
		}
	}
}

// Deduplication 請求去重中間件。
// 同一 client 在 dedup_window 內送出完全相同的搜尋或配對請求時直接回 429；
// 不同 client 的相同查詢是正常流量，不視為重複。
func Deduplication(cfg *config.Config) gin.HandlerFunc {
	window := time.Second
	if cfg != nil && cfg.DedupWindow > 0 {
		window = cfg.DedupWindow
	}

	store := newDedupStore()
	go func() {
		ticker := time.NewTicker(10 * time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			store.sweep(window)
		}
	}()

	return func(c *gin.Context) {
		// 只有會觸發外部查詢的 POST 需要去重
		if c.Request.Method != http.MethodPost {
			c.Next()
			return
		}

		bodyHash := ""
		if c.Request.Body != nil {
			body, err := io.ReadAll(c.Request.Body)
			if err != nil {
				common.LogError("Failed to read request body", zap.Error(err))
				c.Next()
				return
			}
			bodyHash = common.HashKey(string(body))
			c.Request.Body = io.NopCloser(bytes.NewBuffer(body))
		}

		fingerprint := c.ClientIP() + ":" + c.Request.URL.Path
		if bodyHash != "" {
			fingerprint += ":" + bodyHash
		}

		if store.isDuplicate(fingerprint, window) {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error": "Request too frequent",
				"code":  "TOO_MANY_REQUESTS",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
