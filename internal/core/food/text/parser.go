// Package text 將自由文字的食物查詢轉成正規化字串與結構化屬性集合。
// 全部都是純函式：不做 I/O、不回傳錯誤，空輸入得到空結果。
package text

import (
	"regexp"
	"strconv"
	"strings"

	"nutrition-resolver/internal/pkg/common"
)

var whitespacePattern = regexp.MustCompile(`\s+`)

// NormalizeQuery 轉小寫、套用拼字修正表、壓縮空白
func NormalizeQuery(query string) string {
	q := strings.ToLower(strings.TrimSpace(query))
	for pattern, fix := range typoPatterns {
		q = pattern.ReplaceAllString(q, fix)
	}
	return whitespacePattern.ReplaceAllString(q, " ")
}

// CleanQuery 在正規化之上再剔除英文停用詞
func CleanQuery(query string) string {
	words := strings.Fields(NormalizeQuery(query))
	kept := make([]string, 0, len(words))
	for _, w := range words {
		if stopWords[w] {
			continue
		}
		kept = append(kept, w)
	}
	return strings.Join(kept, " ")
}

// ParseFacets 依固定順序的 regex 清單逐類別掃描，收集全部命中並去重。
// 類別之間不互斥；永遠回傳（可能為空的）結果。
func ParseFacets(query string) common.ParsedFacets {
	q := NormalizeQuery(query)
	facets := common.ParsedFacets{
		Core:    collectMatches(q, corePatterns),
		Prep:    collectMatches(q, prepPatterns),
		Form:    collectMatches(q, formPatterns),
		Cuisine: collectMatches(q, cuisinePatterns),
		Protein: collectMatches(q, proteinPatterns),
	}
	facets.Units = extractUnits(q)
	return facets
}

// ExtractCoreFoodName 剝除所有屬性命中的片段，留下裸名詞片語
func ExtractCoreFoodName(query string) string {
	q := NormalizeQuery(query)
	for _, pattern := range unitPatterns {
		q = pattern.ReplaceAllString(q, " ")
	}
	for _, group := range [][]*regexp.Regexp{prepPatterns, formPatterns, cuisinePatterns, sizePatterns} {
		for _, pattern := range group {
			q = pattern.ReplaceAllString(q, " ")
		}
	}
	words := strings.Fields(q)
	kept := make([]string, 0, len(words))
	for _, w := range words {
		if stopWords[w] {
			continue
		}
		kept = append(kept, w)
	}
	return strings.Join(kept, " ")
}

// collectMatches 收集一組樣板的全部命中並去重，保持命中順序
func collectMatches(q string, patterns []*regexp.Regexp) []string {
	var out []string
	seen := map[string]bool{}
	for _, pattern := range patterns {
		for _, m := range pattern.FindAllString(q, -1) {
			token := strings.ToLower(strings.TrimSpace(m))
			if token == "" || seen[token] {
				continue
			}
			seen[token] = true
			out = append(out, token)
		}
	}
	return out
}

// extractUnits 依宣告順序找第一個命中的單位樣板；複數尾碼 s 會被剝除
func extractUnits(q string) *common.UnitCount {
	for i, pattern := range unitPatterns {
		m := pattern.FindStringSubmatch(q)
		if m == nil {
			continue
		}
		if i == 0 {
			count := parseCount(m[1])
			return &common.UnitCount{
				Count: count,
				Unit:  singularize(strings.ToLower(m[2])),
			}
		}
		// "slices of" 形式：沒有數字，數量預設 1
		return &common.UnitCount{
			Count: 1,
			Unit:  singularize(strings.ToLower(m[1])),
		}
	}
	return nil
}

func parseCount(raw string) float64 {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if v, ok := fractionWords[raw]; ok {
		return v
	}
	if v, err := strconv.ParseFloat(raw, 64); err == nil && v > 0 {
		return v
	}
	return 1
}

func singularize(unit string) string {
	if unit == "patties" {
		return "patty"
	}
	return strings.TrimSuffix(unit, "s")
}
