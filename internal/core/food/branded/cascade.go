// Package branded 實作品牌產品的營養配對串接：
// 條碼 → 官方資料庫模糊搜尋 → LLM 估計 → 分類後援，嚴格依優先序，
// 每層有自己的信心計算。MatchBrandedProduct 是全函式：永遠回傳一個
// 結構完整的結果，完全失敗時以 Found=false 表示，不拋錯。
package branded

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"nutrition-resolver/internal/core/food/portion"
	"nutrition-resolver/internal/pkg/common"
)

// ProviderProduct 供應商回傳的單一產品（營養值為絕對值）
type ProviderProduct struct {
	Name         string
	Brand        string
	Nutrition    common.NutritionData
	ServingGrams float64
}

// BarcodeClient 條碼查詢；查無產品回 (nil, nil)
type BarcodeClient interface {
	LookupBarcode(ctx context.Context, barcode string) (*ProviderProduct, error)
}

// Provider 官方營養資料庫的文字搜尋
type Provider interface {
	Source() common.MatchSource
	SearchProducts(ctx context.Context, query string) ([]ProviderProduct, error)
}

// Estimator LLM 營養估計
type Estimator interface {
	EstimateNutrition(ctx context.Context, name string) (*common.NutritionData, error)
}

// FailedLookupSink 失敗紀錄池；寫入失敗由呼叫端吞掉
type FailedLookupSink interface {
	Record(ctx context.Context, lookup common.FailedLookup) error
}

// Thresholds 串接的門檻與政策
type Thresholds struct {
	AcceptThreshold float64 // 官方資料庫接受下限（預設 70）
	LLMFloor        float64 // 低於此信心視同沒有配對（預設 20）
	// 中段信心時，同時偵測到品牌與分類就信任分類表、跳過 LLM
	TrustBrandCategory bool
}

// DefaultThresholds 預設門檻
func DefaultThresholds() Thresholds {
	return Thresholds{
		AcceptThreshold:    70,
		LLMFloor:           20,
		TrustBrandCategory: true,
	}
}

// MatchRequest 配對輸入
type MatchRequest struct {
	ProductName string `json:"product_name"`
	OCRText     string `json:"ocr_text,omitempty"`
	Barcode     string `json:"barcode,omitempty"`
}

// Matcher 品牌產品配對器
type Matcher struct {
	barcode    BarcodeClient
	providers  []Provider
	estimator  Estimator
	failedLog  FailedLookupSink
	thresholds Thresholds
}

// NewMatcher 建立配對器；任何協作者都可為 nil（該層視為不可用）
func NewMatcher(barcode BarcodeClient, providers []Provider, estimator Estimator, failedLog FailedLookupSink, thresholds Thresholds) *Matcher {
	if thresholds.AcceptThreshold <= 0 {
		thresholds = DefaultThresholds()
	}
	return &Matcher{
		barcode:    barcode,
		providers:  providers,
		estimator:  estimator,
		failedLog:  failedLog,
		thresholds: thresholds,
	}
}

// scoredProduct 某一層產出的候選
type scoredProduct struct {
	product    ProviderProduct
	confidence float64
	source     common.MatchSource
}

// MatchBrandedProduct 依嚴格優先序走完串接，回傳唯一的最終結果。
// 每層嘗試無論成敗都會附加到 lookupTrace.tried。
func (m *Matcher) MatchBrandedProduct(ctx context.Context, req MatchRequest) common.BrandedProductMatch {
	trace := common.LookupTrace{Tried: []string{}}

	// 第 1 層：條碼直查，成功即停
	if req.Barcode != "" {
		trace.Tried = append(trace.Tried, "barcode")
		if result, ok := m.tryBarcode(ctx, req.Barcode); ok {
			return m.finalize(result, trace)
		}
	}

	// 第 2 層：兩個官方資料庫各自獨立搜尋，保留全場最高信心
	best := m.searchProviders(ctx, req, &trace)
	if best != nil && best.confidence >= m.thresholds.AcceptThreshold {
		nutrition := portion.SanitizeEnergy(best.product.Nutrition)
		return m.finalize(common.BrandedProductMatch{
			Found:           true,
			Confidence:      best.confidence,
			Source:          best.source,
			NutritionSource: best.source,
			Nutrition:       &nutrition,
			ProductName:     best.product.Name,
			Brand:           best.product.Brand,
			ServingGrams:    best.product.ServingGrams,
		}, trace)
	}

	brand := detectBrand(req.ProductName + " " + req.OCRText)
	category := detectCategory(req.ProductName + " " + req.OCRText)

	// 第 3 層：中段信心，LLM 校正或分類表（政策旗標決定）
	if best != nil && best.confidence >= m.thresholds.LLMFloor {
		return m.resolveMediumConfidence(ctx, req, *best, brand, category, trace)
	}

	// 第 4/5 層：完全沒有配對，純 LLM 估計，失敗再退分類表
	bestSeen := 0.0
	if best != nil {
		bestSeen = best.confidence
	}
	return m.resolveNoMatch(ctx, req, brand, category, bestSeen, trace)
}

func (m *Matcher) tryBarcode(ctx context.Context, barcode string) (common.BrandedProductMatch, bool) {
	if m.barcode == nil {
		return common.BrandedProductMatch{}, false
	}
	product, err := m.barcode.LookupBarcode(ctx, barcode)
	if err != nil {
		common.LogWarn("條碼查詢失敗", zap.String("barcode", barcode), zap.Error(err))
		return common.BrandedProductMatch{}, false
	}
	// 條碼成功的條件：有營養值且熱量為正
	if product == nil || product.Nutrition.Calories <= 0 {
		return common.BrandedProductMatch{}, false
	}
	nutrition := portion.SanitizeEnergy(product.Nutrition)
	return common.BrandedProductMatch{
		Found:           true,
		Confidence:      99,
		Source:          common.MatchSourceBarcode,
		NutritionSource: common.MatchSourceBarcode,
		Nutrition:       &nutrition,
		ProductName:     product.Name,
		Brand:           product.Brand,
		ServingGrams:    product.ServingGrams,
	}, true
}

// searchProviders 對每個供應商用前幾個變體字串搜尋並評分；
// 供應商之間並行，但合併結果與完成順序無關（信心高者勝、同分依供應商宣告順序）。
func (m *Matcher) searchProviders(ctx context.Context, req MatchRequest, trace *common.LookupTrace) *scoredProduct {
	if len(m.providers) == 0 {
		return nil
	}
	variations := generateVariations(req.ProductName, req.OCRText)
	if len(variations) == 0 {
		return nil
	}

	results := make([]*scoredProduct, len(m.providers))
	var wg sync.WaitGroup
	for i, provider := range m.providers {
		trace.Tried = append(trace.Tried, string(provider.Source())+"_search")
		wg.Add(1)
		go func(i int, provider Provider) {
			defer wg.Done()
			results[i] = m.searchOneProvider(ctx, provider, req.ProductName, variations)
		}(i, provider)
	}
	wg.Wait()

	var best *scoredProduct
	for _, r := range results {
		if r == nil {
			continue
		}
		if best == nil || r.confidence > best.confidence {
			best = r
		}
	}
	return best
}

func (m *Matcher) searchOneProvider(ctx context.Context, provider Provider, productName string, variations []string) *scoredProduct {
	var best *scoredProduct
	for _, variation := range variations {
		products, err := provider.SearchProducts(ctx, variation)
		if err != nil {
			// 單一供應商失敗視為該來源沒有產出，串接繼續
			common.LogWarn("供應商搜尋失敗",
				zap.String("provider", string(provider.Source())),
				zap.String("variation", variation),
				zap.Error(err),
			)
			continue
		}
		for _, p := range products {
			conf := matchConfidence(productName, p.Name, p.Brand)
			if best == nil || conf > best.confidence {
				best = &scoredProduct{product: p, confidence: conf, source: provider.Source()}
			}
		}
	}
	return best
}

// resolveMediumConfidence 中段信心（LLMFloor ≤ conf < Accept）的裁決
func (m *Matcher) resolveMediumConfidence(ctx context.Context, req MatchRequest, best scoredProduct, brand, category string, trace common.LookupTrace) common.BrandedProductMatch {
	skipLLM := m.thresholds.TrustBrandCategory && brand != "" && category != ""

	if !skipLLM && m.estimator != nil {
		trace.Tried = append(trace.Tried, "llm_estimate")
		if est := m.estimate(ctx, req.ProductName); est != nil {
			confidence := best.confidence + 15
			if brand != "" && category != "" && confidence < 80 {
				confidence = 80
			}
			if confidence > 95 {
				confidence = 95
			}
			return m.finalize(common.BrandedProductMatch{
				Found:           true,
				Confidence:      confidence,
				Source:          common.MatchSourceGPTFallback,
				NutritionSource: common.MatchSourceGPTFallback,
				Nutrition:       est,
				ProductName:     req.ProductName,
				Brand:           brand,
			}, trace)
		}
	}

	// LLM 失敗或被政策跳過：退分類表，信心不變並附警告
	if category != "" {
		trace.Tried = append(trace.Tried, "category_fallback")
		nutrition := categoryNutrition[category]
		return m.finalize(common.BrandedProductMatch{
			Found:           true,
			Confidence:      best.confidence,
			Source:          common.MatchSourceCategory,
			NutritionSource: common.MatchSourceCategory,
			Nutrition:       &nutrition,
			ProductName:     req.ProductName,
			Brand:           brand,
			Warning:         fmt.Sprintf("used generic %s nutrition; verify before logging", category),
		}, trace)
	}

	// 沒有分類可退：保留中段信心的資料庫結果並明確標低信心
	nutrition := portion.SanitizeEnergy(best.product.Nutrition)
	return m.finalize(common.BrandedProductMatch{
		Found:           true,
		Confidence:      best.confidence,
		Source:          best.source,
		NutritionSource: best.source,
		Nutrition:       &nutrition,
		ProductName:     best.product.Name,
		Brand:           best.product.Brand,
		ServingGrams:    best.product.ServingGrams,
		Warning:         "database match is low confidence; verify before logging",
	}, trace)
}

// resolveNoMatch 完全無配對時的終局：純 LLM 估計 → 分類表 → found:false
func (m *Matcher) resolveNoMatch(ctx context.Context, req MatchRequest, brand, category string, bestSeen float64, trace common.LookupTrace) common.BrandedProductMatch {
	if m.estimator != nil {
		trace.Tried = append(trace.Tried, "llm_estimate")
		if est := m.estimate(ctx, req.ProductName); est != nil {
			confidence := 45.0
			if brand != "" && category != "" {
				confidence = 75
			} else if category != "" {
				confidence = 60
			}
			return m.finalize(common.BrandedProductMatch{
				Found:           true,
				Confidence:      confidence,
				Source:          common.MatchSourceGPTFallback,
				NutritionSource: common.MatchSourceGPTFallback,
				Nutrition:       est,
				ProductName:     req.ProductName,
				Brand:           brand,
			}, trace)
		}
	}

	if category != "" {
		trace.Tried = append(trace.Tried, "category_fallback")
		nutrition := categoryNutrition[category]
		return m.finalize(common.BrandedProductMatch{
			Found:           true,
			Confidence:      50,
			Source:          common.MatchSourceCategory,
			NutritionSource: common.MatchSourceCategory,
			Nutrition:       &nutrition,
			ProductName:     req.ProductName,
			Brand:           brand,
			Warning:         fmt.Sprintf("no database match; used generic %s nutrition", category),
		}, trace)
	}

	// 終局失敗：寫一筆失敗紀錄（盡力而為），以 found:false 回傳
	m.recordFailure(ctx, req.ProductName, bestSeen)
	return m.finalize(common.BrandedProductMatch{
		Found:           false,
		Confidence:      bestSeen,
		Source:          common.MatchSourceFailed,
		NutritionSource: common.MatchSourceFailed,
		ProductName:     req.ProductName,
	}, trace)
}

// estimate 呼叫 LLM 並做合理性驗證；任何失敗回 nil
func (m *Matcher) estimate(ctx context.Context, name string) *common.NutritionData {
	est, err := m.estimator.EstimateNutrition(ctx, name)
	if err != nil {
		common.LogWarn("LLM 營養估計失敗", zap.String("product", name), zap.Error(err))
		return nil
	}
	if est == nil || est.Calories <= 0 || est.Calories >= 5000 {
		common.LogWarn("LLM 營養估計不合理", zap.String("product", name))
		return nil
	}
	sanitized := portion.SanitizeEnergy(*est)
	return &sanitized
}

func (m *Matcher) recordFailure(ctx context.Context, name string, confidence float64) {
	if m.failedLog == nil {
		return
	}
	err := m.failedLog.Record(ctx, common.FailedLookup{
		FoodName:      name,
		Confidence:    confidence,
		FailureReason: "no source cleared its confidence bar",
		Timestamp:     time.Now().UTC(),
	})
	if err != nil {
		// 紀錄失敗不能影響整體請求
		common.LogWarn("失敗紀錄寫入失敗", zap.Error(err))
	}
}

// finalize 補齊標籤、低信心旗標與 trace
func (m *Matcher) finalize(result common.BrandedProductMatch, trace common.LookupTrace) common.BrandedProductMatch {
	trace.FinalSource = string(result.Source)
	trace.Confidence = result.Confidence
	result.LookupTrace = trace
	result.ConfidenceLabel = common.ConfidenceLabel(result.Confidence)
	result.IsLowConfidence = result.Confidence < m.thresholds.AcceptThreshold
	return result
}
