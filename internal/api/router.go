package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"nutrition-resolver/internal/api/handlers/food"
	"nutrition-resolver/internal/api/handlers/health"
	"nutrition-resolver/internal/api/middleware"
	"nutrition-resolver/internal/core/ai/cache"
	"nutrition-resolver/internal/core/ai/openrouter"
	"nutrition-resolver/internal/core/ai/service"
	"nutrition-resolver/internal/core/food/branded"
	"nutrition-resolver/internal/core/food/portion"
	"nutrition-resolver/internal/core/food/search"
	"nutrition-resolver/internal/infrastructure/config"
	"nutrition-resolver/internal/infrastructure/nutritionapi"
	"nutrition-resolver/internal/infrastructure/storage"
	"nutrition-resolver/internal/pkg/common"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	// 超時設置
	timeoutDuration = 60 * time.Second
	// 請求體大小限制預設值 (1MB)，純 JSON API 不需要更多
	defaultMaxBodySize = 1 << 20
)

// configFlagChecker 以設定檔為準的功能旗標
type configFlagChecker struct {
	enabled bool
}

func (f configFlagChecker) PortionDetectionEnabled(ctx context.Context) (bool, error) {
	return f.enabled, nil
}

// SetupRouter 設置路由
func SetupRouter(cfg *config.Config, cacheManager *cache.CacheManager) (*gin.Engine, error) {
	common.LogInfo("Starting router setup",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
	)

	// 設置 gin 模式
	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	// 創建路由引擎
	router := gin.New()

	// 註冊基礎中間件
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())
	router.Use(requestid.New()) // 自動生成請求 ID

	// CORS 設置
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// 請求體大小限制
	maxBodySize := cfg.Server.MaxBodyBytes
	if maxBodySize <= 0 {
		maxBodySize = defaultMaxBodySize
	}
	router.Use(middleware.BodySizeLimit(maxBodySize))

	// 請求去重與速率限制
	router.Use(middleware.Deduplication(cfg))
	if cfg.RateLimit.Enabled {
		router.Use(middleware.RateLimit(cfg.RateLimit.Requests, cfg.RateLimit.Window))
	}

	common.LogInfo("Initializing services",
		zap.Bool("cache_enabled", cfg.Cache.Enabled),
		zap.Bool("redis_enabled", cfg.Redis.Enabled),
		zap.Bool("rerank_enabled", cfg.Search.RerankEnabled),
		zap.String("model", cfg.OpenRouter.Model),
		zap.Duration("timeout", timeoutDuration),
	)

	// 初始化 LLM 服務
	llmClient := openrouter.NewClient(cfg)
	if llmClient == nil {
		common.LogError("Failed to initialize OpenRouter client")
		return nil, fmt.Errorf("failed to initialize OpenRouter client")
	}
	aiService := service.NewService(cfg, llmClient, cacheManager)

	// 初始化偏好存放與失敗紀錄：有 Redis 用 Redis，否則退回行程內記憶體
	var prefStore storage.PreferenceStore
	var failedLog storage.FailedLookupLog
	if cfg.Redis.Enabled {
		redisClient, err := storage.NewRedisClient(cfg.Redis)
		if err != nil {
			common.LogError("Failed to connect to Redis", zap.Error(err))
			return nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		prefStore = storage.NewRedisPreferenceStore(redisClient)
		failedLog = storage.NewRedisFailedLookupLog(redisClient)
	} else {
		common.LogWarn("Redis disabled, using in-memory preference store")
		prefStore = storage.NewMemoryPreferenceStore()
		failedLog = storage.NewMemoryFailedLookupLog()
	}

	// 初始化營養資料庫供應商
	usdaClient := nutritionapi.NewUSDAClient(cfg.Providers)
	offClient := nutritionapi.NewOFFClient(cfg.Providers)

	// 初始化份量偵測
	detector := portion.NewDetector(
		configFlagChecker{enabled: cfg.Portion.DetectionEnabled},
		prefStore,
		cfg.Portion.PreferenceTimeout,
	)

	// 初始化候選搜尋協調器
	orchestrator := search.NewOrchestrator(usdaClient, aiService, cfg.Search.RerankEnabled)

	// 初始化品牌配對串接
	matcher := branded.NewMatcher(
		offClient,
		[]branded.Provider{usdaClient, offClient},
		aiService,
		failedLog,
		branded.Thresholds{
			AcceptThreshold:    cfg.Match.AcceptThreshold,
			LLMFloor:           cfg.Match.LLMFloor,
			TrustBrandCategory: cfg.Match.TrustBrandCategory,
		},
	)

	common.LogInfo("Services initialized successfully",
		zap.Bool("ai_service_initialized", aiService != nil),
		zap.Bool("cache_manager_initialized", cacheManager != nil),
		zap.String("environment", cfg.App.Env),
	)

	// 全局中間件：設置超時和共用依賴
	router.Use(func(c *gin.Context) {
		// 設置請求超時
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeoutDuration)
		defer cancel()

		c.Request = c.Request.WithContext(ctx)

		c.Set("config", cfg)
		if cacheManager != nil {
			c.Set("cache_manager", cacheManager)
		}

		// 處理請求
		c.Next()

		// 檢查是否超時
		if ctx.Err() == context.DeadlineExceeded {
			common.LogError("Request timeout",
				zap.String("path", c.Request.URL.Path),
				zap.String("request_id", c.GetHeader("X-Request-ID")),
				zap.Duration("timeout", timeoutDuration),
			)
			c.JSON(http.StatusGatewayTimeout, gin.H{
				"error": "Request timeout",
				"code":  "REQUEST_TIMEOUT",
				"details": gin.H{
					"timeout": timeoutDuration.String(),
				},
			})
			c.Abort()
			return
		}
	})

	// 健康檢查路由
	router.GET("/health", health.HealthCheck)
	router.GET("/ready", health.ReadinessCheck)
	router.GET("/live", health.LivenessCheck)

	// API 路由組
	api := router.Group("/api/v1")
	{
		foodGroup := api.Group("/food")
		{
			// 候選搜尋
			foodGroup.POST("/candidates", food.HandleFoodCandidates(orchestrator))

			// 份量偵測
			foodGroup.POST("/portion", food.HandlePortionDetect(detector))

			// 品牌產品配對
			foodGroup.POST("/match-branded", food.HandleMatchBranded(matcher, cacheManager))

			// 慣用份量偏好
			foodGroup.PUT("/portion/preference", food.HandleSetPortionPreference(prefStore))
		}
	}

	common.LogInfo("Router setup completed successfully",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
		zap.Duration("timeout", timeoutDuration),
		zap.Int64("max_body_size", maxBodySize),
	)

	return router, nil
}
