package branded

import (
	"strings"
)

const maxVariations = 4

// generateVariations 產生搜尋字串變體：原名、原名＋OCR 片段、
// 詞序排列、已知單品的品牌同義詞展開。去重後取前幾個。
func generateVariations(productName, ocrText string) []string {
	name := normalizeName(productName)
	if name == "" {
		return nil
	}

	seen := map[string]bool{name: true}
	variations := []string{name}
	add := func(v string) {
		v = normalizeName(v)
		if v != "" && !seen[v] {
			seen[v] = true
			variations = append(variations, v)
		}
	}

	// 品牌同義詞展開優先：對連鎖單品而言這通常是最準的查法
	for _, syn := range brandSynonyms {
		if strings.Contains(name, syn.Item) {
			add(syn.Expanded)
		}
	}

	// 名稱＋OCR 文字的前幾個詞
	if ocr := normalizeName(ocrText); ocr != "" {
		words := strings.Fields(ocr)
		if len(words) > 5 {
			words = words[:5]
		}
		add(name + " " + strings.Join(words, " "))
	}

	// 詞序排列（雙詞交換、多詞尾詞提前）
	words := strings.Fields(name)
	if len(words) == 2 {
		add(words[1] + " " + words[0])
	} else if len(words) > 2 {
		rotated := append([]string{words[len(words)-1]}, words[:len(words)-1]...)
		add(strings.Join(rotated, " "))
	}

	if len(variations) > maxVariations {
		variations = variations[:maxVariations]
	}
	return variations
}

// detectBrand 從文字中找連鎖品牌關鍵字；比對順序固定
func detectBrand(text string) string {
	lower := normalizeName(text)
	for _, bk := range brandKeywords {
		if strings.Contains(lower, bk.Keyword) {
			return bk.Brand
		}
	}
	// 單品名稱也能反推品牌
	for _, syn := range brandSynonyms {
		if strings.Contains(lower, syn.Item) {
			for _, bk := range brandKeywords {
				if strings.Contains(syn.Expanded, bk.Keyword) {
					return bk.Brand
				}
			}
		}
	}
	return ""
}

// detectCategory 從文字中找分類表的關鍵字；較長的鍵先比對避免 "hot dog" 輸給 "dog"
func detectCategory(text string) string {
	lower := normalizeName(text)
	best := ""
	for category := range categoryNutrition {
		if !strings.Contains(lower, category) {
			continue
		}
		if len(category) > len(best) || (len(category) == len(best) && category < best) {
			best = category
		}
	}
	return best
}
