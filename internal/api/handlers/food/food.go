// Package food 食物解析 API 的 HTTP 處理器。
// 核心函式都是全函式，所以這層只負責綁定請求、組裝回應與記錄。
package food

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"nutrition-resolver/internal/core/ai/cache"
	"nutrition-resolver/internal/core/food/branded"
	"nutrition-resolver/internal/core/food/portion"
	"nutrition-resolver/internal/core/food/search"
	"nutrition-resolver/internal/infrastructure/storage"
	"nutrition-resolver/internal/pkg/common"
)

// CandidatesRequest 候選搜尋請求
type CandidatesRequest struct {
	Query      string `json:"query" binding:"required"`
	MaxResults int    `json:"max_results,omitempty"`
}

// CandidatesResponse 候選搜尋回應
type CandidatesResponse struct {
	Candidates       []common.FoodCandidate `json:"candidates"`
	ShouldShowPicker bool                   `json:"should_show_picker"`
}

// HandleFoodCandidates 處理 /food/candidates 候選搜尋 API
func HandleFoodCandidates(orchestrator *search.Orchestrator) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := ensureRequestID(c)

		var req CandidatesRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			common.LogError("請求格式無效",
				zap.Error(err),
				zap.String("request_id", requestID),
			)
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
			return
		}

		common.LogInfo("開始處理候選搜尋請求",
			zap.String("request_id", requestID),
			zap.String("query", req.Query),
			zap.String("client_ip", c.ClientIP()),
		)

		candidates := orchestrator.GetFoodCandidates(c.Request.Context(), req.Query, req.MaxResults)
		if candidates == nil {
			candidates = []common.FoodCandidate{}
		}

		common.LogInfo("候選搜尋成功",
			zap.String("request_id", requestID),
			zap.Int("candidates_count", len(candidates)),
		)

		c.JSON(http.StatusOK, CandidatesResponse{
			Candidates:       candidates,
			ShouldShowPicker: search.ShouldShowCandidatePicker(candidates),
		})
	}
}

// PortionRequest 份量偵測請求
type PortionRequest struct {
	Product     common.ProductData `json:"product"`
	OCRText     string             `json:"ocr_text,omitempty"`
	EntrySource string             `json:"entry_source,omitempty"`
}

// PortionResponse 份量偵測回應
type PortionResponse struct {
	Portion    common.PortionInfo    `json:"portion"`
	PerPortion *common.NutritionData `json:"per_portion,omitempty"`
}

// HandlePortionDetect 處理 /food/portion 份量偵測 API。
// 偵測本身永不失敗；只有請求格式錯誤會回 400。
func HandlePortionDetect(detector *portion.Detector) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := ensureRequestID(c)

		var req PortionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			common.LogError("請求格式無效",
				zap.Error(err),
				zap.String("request_id", requestID),
			)
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
			return
		}

		result := detector.DetectPortionSafe(c.Request.Context(), req.Product, req.OCRText, req.EntrySource)

		response := PortionResponse{Portion: result}
		// 有 per-100g 營養值時順便換算單份
		if req.Product.CaloriesPer100g > 0 {
			perPortion := portion.ToPerPortion(common.NutritionData{
				Calories: req.Product.CaloriesPer100g,
				Protein:  req.Product.ProteinPer100g,
				Carbs:    req.Product.CarbsPer100g,
				Fat:      req.Product.FatPer100g,
			}, result.Grams)
			response.PerPortion = &perPortion
		}

		common.LogInfo("份量偵測成功",
			zap.String("request_id", requestID),
			zap.Float64("grams", result.Grams),
			zap.String("source", string(result.Source)),
		)

		c.JSON(http.StatusOK, response)
	}
}

// HandleMatchBranded 處理 /food/match-branded 品牌配對 API。
// 結果以查詢雜湊快取；found:false 是合法的終態，照樣回 200。
func HandleMatchBranded(matcher *branded.Matcher, cacheManager *cache.CacheManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := ensureRequestID(c)

		var req branded.MatchRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			common.LogError("請求格式無效",
				zap.Error(err),
				zap.String("request_id", requestID),
			)
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
			return
		}
		if req.ProductName == "" && req.Barcode == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "product_name or barcode is required"})
			return
		}

		cacheKey := req.ProductName + "|" + req.Barcode + "|" + req.OCRText
		if cacheManager != nil {
			if val, err := cacheManager.Get(c.Request.Context(), cacheKey); err == nil && val != "" {
				var cached common.BrandedProductMatch
				if err := json.Unmarshal([]byte(val), &cached); err == nil {
					common.LogInfo("品牌配對快取命中",
						zap.String("request_id", requestID),
						zap.String("product", req.ProductName),
					)
					c.JSON(http.StatusOK, cached)
					return
				}
			}
		}

		common.LogInfo("開始處理品牌配對請求",
			zap.String("request_id", requestID),
			zap.String("product", req.ProductName),
			zap.Bool("has_barcode", req.Barcode != ""),
		)

		result := matcher.MatchBrandedProduct(c.Request.Context(), req)

		if cacheManager != nil && result.Found {
			if data, err := json.Marshal(result); err == nil {
				_ = cacheManager.Set(c.Request.Context(), cacheKey, string(data))
			}
		}

		common.LogInfo("品牌配對完成",
			zap.String("request_id", requestID),
			zap.Bool("found", result.Found),
			zap.String("source", string(result.Source)),
			zap.Float64("confidence", result.Confidence),
		)

		c.JSON(http.StatusOK, result)
	}
}

// PreferenceRequest 設定慣用份量請求
type PreferenceRequest struct {
	Barcode        string  `json:"barcode,omitempty"`
	Brand          string  `json:"brand,omitempty"`
	Name           string  `json:"name,omitempty"`
	PortionGrams   float64 `json:"portion_grams" binding:"required"`
	PortionDisplay string  `json:"portion_display,omitempty"`
}

// HandleSetPortionPreference 處理 /food/portion/preference 偏好寫入 API
func HandleSetPortionPreference(store storage.PreferenceStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := ensureRequestID(c)

		var req PreferenceRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			common.LogError("請求格式無效",
				zap.Error(err),
				zap.String("request_id", requestID),
			)
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
			return
		}
		if req.Barcode == "" && req.Name == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "barcode or name is required"})
			return
		}
		if req.PortionGrams < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "portion_grams must be at least 1"})
			return
		}

		productKey := common.ProductKey(req.Barcode, req.Brand, req.Name)
		pref := common.PortionPreference{
			ProductKey:     productKey,
			PortionGrams:   req.PortionGrams,
			PortionDisplay: req.PortionDisplay,
		}
		if err := store.Upsert(c.Request.Context(), pref); err != nil {
			common.LogError("偏好寫入失敗",
				zap.Error(err),
				zap.String("request_id", requestID),
				zap.String("product_key", productKey),
			)
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Failed to save preference"})
			return
		}

		common.LogInfo("偏好寫入成功",
			zap.String("request_id", requestID),
			zap.String("product_key", productKey),
			zap.Float64("grams", req.PortionGrams),
		)

		c.JSON(http.StatusOK, gin.H{"product_key": productKey})
	}
}

// ensureRequestID 取出或補上 X-Request-ID
func ensureRequestID(c *gin.Context) string {
	requestID := c.GetHeader("X-Request-ID")
	if requestID == "" {
		requestID = uuid.New().String()
		c.Header("X-Request-ID", requestID)
	}
	return requestID
}
