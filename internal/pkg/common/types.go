package common

import (
	"fmt"
	"time"
)

// ParsedFacets 從自由文字查詢解析出的結構化屬性集合。
// 同一個詞可以同時落在多個類別（例如 "chicken" 既是核心名詞也是蛋白質來源）。
type ParsedFacets struct {
	Core    []string   `json:"core"`
	Prep    []string   `json:"prep"`
	Form    []string   `json:"form"`
	Cuisine []string   `json:"cuisine"`
	Protein []string   `json:"protein"`
	Units   *UnitCount `json:"units,omitempty"`
}

// UnitCount 解析出的單位與數量（"2 slices" → {2, "slice"}）
type UnitCount struct {
	Count float64 `json:"count"`
	Unit  string  `json:"unit"`
}

// CandidateSource 候選結果的來源策略
type CandidateSource string

const (
	SourceLexical   CandidateSource = "lexical"
	SourceAlias     CandidateSource = "alias"
	SourceEmbedding CandidateSource = "embedding"
	SourceReranked  CandidateSource = "reranked"
)

// FoodCandidate 評分後的食物搜尋候選。營養欄位為 per-100g，指標為 nil 代表來源未提供。
type FoodCandidate struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Calories    *float64        `json:"calories,omitempty"`
	Protein     *float64        `json:"protein,omitempty"`
	Carbs       *float64        `json:"carbs,omitempty"`
	Fat         *float64        `json:"fat,omitempty"`
	Fiber       *float64        `json:"fiber,omitempty"`
	Sugar       *float64        `json:"sugar,omitempty"`
	Sodium      *float64        `json:"sodium,omitempty"`
	Confidence  float64         `json:"confidence"` // 0–1
	Score       float64         `json:"score"`      // 無上界的加總分
	Source      CandidateSource `json:"source"`
	Explanation string          `json:"explanation"`
	ImageURL    string          `json:"image_url,omitempty"`
}

// SearchResult 外部搜尋能力回傳的原始結果
type SearchResult struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	CaloriesPer100g *float64 `json:"calories_per_100g,omitempty"`
	ProteinPer100g  *float64 `json:"protein_per_100g,omitempty"`
	CarbsPer100g    *float64 `json:"carbs_per_100g,omitempty"`
	FatPer100g      *float64 `json:"fat_per_100g,omitempty"`
	ImageURL        string   `json:"image_url,omitempty"`
	ServingGrams    float64  `json:"serving_grams,omitempty"`
	ServingText     string   `json:"serving_text,omitempty"`
}

// PortionSource 份量估計的來源（統一的 enum，涵蓋基本推斷與 safe wrapper 兩條路徑）
type PortionSource string

const (
	PortionSourceClassDefault  PortionSource = "class_default"
	PortionSourceUnitCount     PortionSource = "unit_count"
	PortionSourceCustomAmount  PortionSource = "custom_amount"
	PortionSourceUserSet       PortionSource = "user_set"
	PortionSourceOCRDeclared   PortionSource = "ocr_declared"
	PortionSourceDBDeclared    PortionSource = "db_declared"
	PortionSourceOCRRatio      PortionSource = "ocr_inferred_ratio"
	PortionSourceModelEstimate PortionSource = "model_estimate"
	PortionSourceFallback      PortionSource = "fallback_default"
)

// 統一的份量信心值（原本 enum 與浮點並存，這裡收斂成數值並保留三個命名等級）
const (
	ConfidenceHigh   = 0.9
	ConfidenceMedium = 0.6
	ConfidenceLow    = 0.3
)

// PortionInfo 份量估計結果。Grams 恆為正；safe 路徑另外保證落在 [5, 250]。
type PortionInfo struct {
	Grams       float64       `json:"grams"`
	Unit        string        `json:"unit"`
	Source      PortionSource `json:"source"`
	Confidence  float64       `json:"confidence"`
	IsEstimated bool          `json:"is_estimated"`
	Display     string        `json:"display"`
}

// PortionPreference 使用者針對單一產品設定的慣用份量
type PortionPreference struct {
	ProductKey     string    `json:"product_key"`
	PortionGrams   float64   `json:"portion_grams"`
	PortionDisplay string    `json:"portion_display,omitempty"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// ProductData 份量計算的輸入：資料庫宣告的份量與營養值（可能不完整）
type ProductData struct {
	Name               string  `json:"name"`
	Brand              string  `json:"brand,omitempty"`
	Barcode            string  `json:"barcode,omitempty"`
	ServingGrams       float64 `json:"serving_grams,omitempty"`
	ServingText        string  `json:"serving_text,omitempty"`
	Category           string  `json:"category,omitempty"`
	CaloriesPerServing float64 `json:"calories_per_serving,omitempty"`
	CaloriesPer100g    float64 `json:"calories_per_100g,omitempty"`
	ProteinPerServing  float64 `json:"protein_per_serving,omitempty"`
	ProteinPer100g     float64 `json:"protein_per_100g,omitempty"`
	CarbsPerServing    float64 `json:"carbs_per_serving,omitempty"`
	CarbsPer100g       float64 `json:"carbs_per_100g,omitempty"`
	FatPerServing      float64 `json:"fat_per_serving,omitempty"`
	FatPer100g         float64 `json:"fat_per_100g,omitempty"`
}

// NutritionData 絕對營養值（配對完成後即非 per-100g）
type NutritionData struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
	Fiber    float64 `json:"fiber,omitempty"`
	Sugar    float64 `json:"sugar,omitempty"`
	Sodium   float64 `json:"sodium,omitempty"` // mg
}

// MatchSource 品牌產品配對串接各層的來源標記
type MatchSource string

const (
	MatchSourceBarcode       MatchSource = "barcode"
	MatchSourceUSDA          MatchSource = "usda"
	MatchSourceOpenFoodFacts MatchSource = "openfoodfacts"
	MatchSourceGPTFallback   MatchSource = "gpt-fallback"
	MatchSourceCategory      MatchSource = "category_fallback"
	MatchSourceFailed        MatchSource = "failed"
)

// LookupTrace 串接每一層嘗試的紀錄，無論成敗都要附加
type LookupTrace struct {
	Tried       []string `json:"tried"`
	FinalSource string   `json:"final_source"`
	Confidence  float64  `json:"confidence"`
}

// BrandedProductMatch 品牌產品配對串接的最終結果；Found=false 時不帶營養值
type BrandedProductMatch struct {
	Found           bool           `json:"found"`
	Confidence      float64        `json:"confidence"` // 0–100
	Source          MatchSource    `json:"source"`
	NutritionSource MatchSource    `json:"nutrition_source"`
	Nutrition       *NutritionData `json:"nutrition,omitempty"`
	ProductName     string         `json:"product_name,omitempty"`
	Brand           string         `json:"brand,omitempty"`
	ServingGrams    float64        `json:"serving_grams,omitempty"`
	ConfidenceLabel string         `json:"confidence_label"`
	IsLowConfidence bool           `json:"is_low_confidence"`
	Warning         string         `json:"warning,omitempty"`
	LookupTrace     LookupTrace    `json:"lookup_trace"`
}

// FailedLookup 配對完全失敗時寫入訓練資料池的一筆紀錄
type FailedLookup struct {
	FoodName      string    `json:"food_name"`
	Confidence    float64   `json:"confidence"`
	FailureReason string    `json:"failure_reason"`
	Timestamp     time.Time `json:"timestamp"`
}

// ConfidenceLabel 將 0–100 的信心值轉成使用者可讀的標籤
func ConfidenceLabel(confidence float64) string {
	switch {
	case confidence >= 90:
		return "exact match"
	case confidence >= 70:
		return "high confidence"
	case confidence >= 40:
		return "medium confidence"
	case confidence > 0:
		return "low confidence"
	default:
		return "no match"
	}
}

// FormatGrams 份量的顯示字串
func FormatGrams(grams float64) string {
	return fmt.Sprintf("%.0fg", grams)
}

// Float64Ptr 回傳 float64 指標
func Float64Ptr(v float64) *float64 {
	return &v
}
