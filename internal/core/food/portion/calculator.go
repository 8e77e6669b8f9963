package portion

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"nutrition-resolver/internal/pkg/common"
)

// OCR / 包裝文字上的份量樣板，依序嘗試
var (
	servingSizeGramsPattern = regexp.MustCompile(`(?i)serving\s*size[^0-9]*(\d+(?:\.\d+)?)\s*g`)
	parenGramsPattern       = regexp.MustCompile(`(?i)\((\d+(?:\.\d+)?)\s*g\)`)
	cupsPattern             = regexp.MustCompile(`(?i)(\d+/\d+|\d+(?:\.\d+)?|½|¼|¾)\s*cups?`)
	mlPattern               = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*ml\b`)
)

// CalculatePortion 基本份量計算器，依優先序取第一個可用的來源：
// 使用者偏好 → OCR 宣告 → 資料庫宣告 → 營養比例推斷 → 名稱推估 → 100g 後援。
// 不做 [5,250] 夾取（那是 safe wrapper 的責任），但保證 Grams > 0。
func CalculatePortion(product common.ProductData, ocrText string, pref *common.PortionPreference) common.PortionInfo {
	// 使用者偏好
	if pref != nil && pref.PortionGrams >= 1 {
		display := pref.PortionDisplay
		if display == "" {
			display = common.FormatGrams(pref.PortionGrams)
		}
		return common.PortionInfo{
			Grams:      pref.PortionGrams,
			Unit:       display,
			Source:     common.PortionSourceUserSet,
			Confidence: common.ConfidenceHigh,
			Display:    display,
		}
	}

	// OCR 宣告的份量
	if grams, display, ok := parseServingText(ocrText, product.Category); ok {
		return common.PortionInfo{
			Grams:      grams,
			Unit:       display,
			Source:     common.PortionSourceOCRDeclared,
			Confidence: common.ConfidenceHigh,
			Display:    display,
		}
	}

	// 資料庫宣告的份量
	if product.ServingGrams >= 1 {
		return common.PortionInfo{
			Grams:      product.ServingGrams,
			Unit:       servingUnit(product.ServingText, product.ServingGrams),
			Source:     common.PortionSourceDBDeclared,
			Confidence: common.ConfidenceHigh,
			Display:    servingUnit(product.ServingText, product.ServingGrams),
		}
	}
	if grams, display, ok := parseServingText(product.ServingText, product.Category); ok {
		return common.PortionInfo{
			Grams:      grams,
			Unit:       display,
			Source:     common.PortionSourceDBDeclared,
			Confidence: common.ConfidenceHigh,
			Display:    display,
		}
	}

	// perServing / per100g 的營養比例推斷
	if grams, ok := inferGramsFromRatios(product); ok {
		return common.PortionInfo{
			Grams:       grams,
			Unit:        common.FormatGrams(grams),
			Source:      common.PortionSourceOCRRatio,
			Confidence:  common.ConfidenceMedium,
			IsEstimated: true,
			Display:     common.FormatGrams(grams),
		}
	}

	// 名稱推估
	if product.Name != "" {
		inferred := InferPortion(product.Name, product.Name, nil, "")
		if inferred.Source != common.PortionSourceCustomAmount {
			inferred.Source = common.PortionSourceModelEstimate
			inferred.IsEstimated = true
			return inferred
		}
	}

	// 後援
	return common.PortionInfo{
		Grams:       100,
		Unit:        "custom amount",
		Source:      common.PortionSourceCustomAmount,
		Confidence:  common.ConfidenceLow,
		IsEstimated: true,
		Display:     "100g",
	}
}

// parseServingText 從 OCR / 包裝文字解析份量。杯與毫升用分類密度換算成克。
func parseServingText(text, category string) (float64, string, bool) {
	if strings.TrimSpace(text) == "" {
		return 0, "", false
	}

	if m := servingSizeGramsPattern.FindStringSubmatch(text); m != nil {
		if grams, err := strconv.ParseFloat(m[1], 64); err == nil && grams >= 1 {
			return grams, common.FormatGrams(grams), true
		}
	}
	if m := parenGramsPattern.FindStringSubmatch(text); m != nil {
		if grams, err := strconv.ParseFloat(m[1], 64); err == nil && grams >= 1 {
			return grams, common.FormatGrams(grams), true
		}
	}
	if m := cupsPattern.FindStringSubmatch(text); m != nil {
		cups := parseFraction(m[1])
		if cups > 0 {
			density := defaultCupDensity
			if d, ok := cupDensities[strings.ToLower(category)]; ok {
				density = d
			}
			grams := math.Round(cups * density)
			return grams, fmt.Sprintf("%s cup (%.0fg)", m[1], grams), true
		}
	}
	if m := mlPattern.FindStringSubmatch(text); m != nil {
		if ml, err := strconv.ParseFloat(m[1], 64); err == nil && ml >= 1 {
			density := defaultMLDensity
			if d, ok := mlDensities[strings.ToLower(category)]; ok {
				density = d
			}
			grams := math.Round(ml * density)
			return grams, fmt.Sprintf("%.0fml (%.0fg)", ml, grams), true
		}
	}

	return 0, "", false
}

// inferGramsFromRatios 用 perServing 與 per100g 的比值推斷份量：
// 先用熱量比，缺熱量時取巨集營養素比值的中位數，最後四捨五入到 5 克。
func inferGramsFromRatios(product common.ProductData) (float64, bool) {
	var ratios []float64

	if product.CaloriesPerServing > 0 && product.CaloriesPer100g > 0 {
		ratios = []float64{product.CaloriesPerServing / product.CaloriesPer100g}
	} else {
		pairs := [][2]float64{
			{product.ProteinPerServing, product.ProteinPer100g},
			{product.CarbsPerServing, product.CarbsPer100g},
			{product.FatPerServing, product.FatPer100g},
		}
		for _, p := range pairs {
			if p[0] > 0 && p[1] > 0 {
				ratios = append(ratios, p[0]/p[1])
			}
		}
	}
	if len(ratios) == 0 {
		return 0, false
	}

	sort.Float64s(ratios)
	ratio := ratios[len(ratios)/2]
	grams := math.Round(ratio*100/5) * 5

	// 合理範圍外視為比值不可信
	if grams < 5 || grams > 250 {
		return 0, false
	}
	return grams, true
}

func parseFraction(raw string) float64 {
	switch raw {
	case "½":
		return 0.5
	case "¼":
		return 0.25
	case "¾":
		return 0.75
	}
	if parts := strings.SplitN(raw, "/", 2); len(parts) == 2 {
		num, err1 := strconv.ParseFloat(parts[0], 64)
		den, err2 := strconv.ParseFloat(parts[1], 64)
		if err1 == nil && err2 == nil && den > 0 {
			return num / den
		}
		return 0
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0
	}
	return v
}

func servingUnit(servingText string, grams float64) string {
	if strings.TrimSpace(servingText) != "" {
		return servingText
	}
	return common.FormatGrams(grams)
}
