package portion

import (
	"context"
	"math"
	"time"

	"go.uber.org/zap"

	"nutrition-resolver/internal/pkg/common"
)

const (
	// safe 路徑的硬邊界
	minSafeGrams = 5
	maxSafeGrams = 250

	defaultPreferenceTimeout = 3 * time.Second
)

// SafeFallback 所有內部失敗最終退化到的固定值
var SafeFallback = common.PortionInfo{
	Grams:       30,
	Unit:        "30g",
	Source:      common.PortionSourceFallback,
	Confidence:  0,
	IsEstimated: true,
	Display:     "30g",
}

// FlagChecker 查詢份量偵測功能旗標
type FlagChecker interface {
	PortionDetectionEnabled(ctx context.Context) (bool, error)
}

// PreferenceReader 讀取使用者慣用份量；查無資料回 (nil, nil)
type PreferenceReader interface {
	Get(ctx context.Context, productKey string) (*common.PortionPreference, error)
}

// Detector 份量偵測的 safe wrapper。
// DetectPortionSafe 絕不回傳錯誤也絕不 panic：每個內部失敗都退化為 SafeFallback。
type Detector struct {
	flags       FlagChecker
	prefs       PreferenceReader
	prefTimeout time.Duration
}

// NewDetector 建立 Detector；flags 或 prefs 可為 nil（視為啟用、無偏好）
func NewDetector(flags FlagChecker, prefs PreferenceReader, prefTimeout time.Duration) *Detector {
	if prefTimeout <= 0 {
		prefTimeout = defaultPreferenceTimeout
	}
	return &Detector{
		flags:       flags,
		prefs:       prefs,
		prefTimeout: prefTimeout,
	}
}

// DetectPortionSafe 循序狀態機：旗標 → 偏好（限時）→ 計算 → 驗證 → 夾取。
// 每個階段的進出都留下結構化軌跡。
func (d *Detector) DetectPortionSafe(ctx context.Context, product common.ProductData, ocrText, entrySource string) (result common.PortionInfo) {
	defer func() {
		if r := recover(); r != nil {
			common.LogError("份量偵測 panic，退回安全值",
				zap.Any("panic", r),
				zap.String("product", product.Name),
			)
			result = SafeFallback
		}
	}()

	// 階段 1：功能旗標（旗標查詢本身失敗視為停用）
	enabled, reason := d.checkFlag(ctx)
	common.LogPortionStage("flag_check",
		zap.Bool("enabled", enabled),
		zap.String("reason", reason),
		zap.String("entry_source", entrySource),
	)
	if !enabled {
		return SafeFallback
	}

	// 階段 2：使用者偏好，限時取回；逾時或錯誤都照常繼續
	pref := d.fetchPreference(ctx, product)

	// 階段 3：基本計算器
	result = CalculatePortion(product, ocrText, pref)
	common.LogPortionStage("calculated",
		zap.Float64("grams", result.Grams),
		zap.String("source", string(result.Source)),
	)

	// 階段 4：驗證
	if math.IsNaN(result.Grams) || math.IsInf(result.Grams, 0) || result.Grams < 1 {
		common.LogPortionStage("invalid_result", zap.Float64("grams", result.Grams))
		return SafeFallback
	}

	// 階段 5：夾取到 [5, 250]；有改動就強制標記為估計值
	clamped := math.Min(math.Max(result.Grams, minSafeGrams), maxSafeGrams)
	if clamped != result.Grams {
		result.Grams = clamped
		result.IsEstimated = true
		result.Display = common.FormatGrams(clamped)
	}

	common.LogPortionStage("final",
		zap.Float64("grams", result.Grams),
		zap.String("source", string(result.Source)),
		zap.Float64("confidence", result.Confidence),
	)
	return result
}

func (d *Detector) checkFlag(ctx context.Context) (bool, string) {
	if d.flags == nil {
		return true, "no flag checker configured"
	}
	enabled, err := d.flags.PortionDetectionEnabled(ctx)
	if err != nil {
		return false, "flag check failed: " + err.Error()
	}
	if !enabled {
		return false, "detection disabled by flag"
	}
	return true, "enabled"
}

// fetchPreference 以「先到者勝」的方式跟逾時賽跑；輸家的結果直接丟棄
func (d *Detector) fetchPreference(ctx context.Context, product common.ProductData) *common.PortionPreference {
	if d.prefs == nil {
		return nil
	}

	key := common.ProductKey(product.Barcode, product.Brand, product.Name)
	fetchCtx, cancel := context.WithTimeout(ctx, d.prefTimeout)
	defer cancel()

	type prefResult struct {
		pref *common.PortionPreference
		err  error
	}
	ch := make(chan prefResult, 1)
	go func() {
		pref, err := d.prefs.Get(fetchCtx, key)
		ch <- prefResult{pref: pref, err: err}
	}()

	select {
	case res := <-ch:
		if res.err != nil {
			common.LogPortionStage("preference_error", zap.Error(res.err), zap.String("product_key", key))
			return nil
		}
		common.LogPortionStage("preference_fetched",
			zap.Bool("found", res.pref != nil),
			zap.String("product_key", key),
		)
		return res.pref
	case <-fetchCtx.Done():
		common.LogPortionStage("preference_timeout", zap.String("product_key", key))
		return nil
	}
}
