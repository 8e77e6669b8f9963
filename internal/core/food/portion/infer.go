// Package portion 依層疊的後援策略估計食物的份量（克）。
// InferPortion 與 DetectPortionSafe 都是全函式：任何輸入都回傳完整結構、不拋錯。
package portion

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"nutrition-resolver/internal/pkg/common"
)

// clubSandwichPattern 高頻品項的特例：泛用 sandwich 類別對它太粗
var clubSandwichPattern = regexp.MustCompile(`(?i)\bclub\s+sand(wich)?\b`)

// InferPortion 依序嘗試五個策略，第一個成功者勝出，不做合併：
// 類別 id → 單位＋數量 → club sandwich 特例 → 關鍵字＋尺寸倍率 → 100g 後援。
func InferPortion(foodName, originalText string, facets *common.ParsedFacets, classID string) common.PortionInfo {
	// 1. 明確的類別 id
	if classID != "" {
		if def, ok := classDefaults[classID]; ok {
			return common.PortionInfo{
				Grams:      def.Grams,
				Unit:       def.Unit,
				Source:     common.PortionSourceClassDefault,
				Confidence: common.ConfidenceHigh,
				Display:    fmt.Sprintf("%s (%.0fg)", def.Unit, def.Grams),
			}
		}
	}

	// 2. 解析出的單位＋數量
	if facets != nil && facets.Units != nil {
		if class, ok := unitToClass[facets.Units.Unit]; ok {
			def := classDefaults[class]
			count := facets.Units.Count
			if count <= 0 {
				count = 1
			}
			grams := math.Round(def.Grams * count)
			unit := fmt.Sprintf("%g %s", count, pluralize(facets.Units.Unit, count))
			return common.PortionInfo{
				Grams:      grams,
				Unit:       unit,
				Source:     common.PortionSourceUnitCount,
				Confidence: common.ConfidenceHigh,
				Display:    fmt.Sprintf("%s (%.0fg)", unit, grams),
			}
		}
	}

	// 3. club sandwich 特例短路
	if clubSandwichPattern.MatchString(foodName) || clubSandwichPattern.MatchString(originalText) {
		return common.PortionInfo{
			Grams:      150,
			Unit:       "1 sandwich",
			Source:     common.PortionSourceClassDefault,
			Confidence: common.ConfidenceHigh,
			Display:    "1 sandwich (150g)",
		}
	}

	// 4. 關鍵字對應類別，再從原始文字找尺寸倍率
	lower := strings.ToLower(foodName)
	for _, kc := range keywordToClass {
		if !strings.Contains(lower, kc.Keyword) {
			continue
		}
		def := classDefaults[kc.Class]
		grams := math.Round(def.Grams * sizeMultiplierFor(originalText))
		return common.PortionInfo{
			Grams:      grams,
			Unit:       def.Unit,
			Source:     common.PortionSourceClassDefault,
			Confidence: common.ConfidenceMedium,
			Display:    fmt.Sprintf("%s (%.0fg)", def.Unit, grams),
		}
	}

	// 5. 後援
	return common.PortionInfo{
		Grams:      100,
		Unit:       "custom amount",
		Source:     common.PortionSourceCustomAmount,
		Confidence: common.ConfidenceLow,
		Display:    "100g",
	}
}

// EstimatePortionFromName 便利包裝：只取克數
func EstimatePortionFromName(name string) float64 {
	return InferPortion(name, name, nil, "").Grams
}

// sizeMultiplierFor 掃描原始文字的尺寸詞，沒有命中時回 1.0
func sizeMultiplierFor(originalText string) float64 {
	lower := strings.ToLower(originalText)
	for _, sm := range sizeMultipliers {
		if containsWord(lower, sm.Word) {
			return sm.Multiplier
		}
	}
	return 1.0
}

// containsWord 以字界比對，避免 "small" 誤中 "smallish" 之類
func containsWord(s, word string) bool {
	idx := strings.Index(s, word)
	for idx >= 0 {
		before := idx == 0 || !isWordChar(s[idx-1])
		afterIdx := idx + len(word)
		after := afterIdx >= len(s) || !isWordChar(s[afterIdx])
		if before && after {
			return true
		}
		next := strings.Index(s[idx+1:], word)
		if next < 0 {
			return false
		}
		idx = idx + 1 + next
	}
	return false
}

func isWordChar(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9')
}

func pluralize(unit string, count float64) string {
	if count == 1 {
		return unit
	}
	if unit == "patty" {
		return "patties"
	}
	return unit + "s"
}
