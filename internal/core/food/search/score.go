package search

import (
	"fmt"
	"strings"

	"nutrition-resolver/internal/pkg/common"
)

// 來源策略的固定加分
var sourceBonus = map[common.CandidateSource]float64{
	common.SourceLexical:   20,
	common.SourceAlias:     15,
	common.SourceEmbedding: 10,
	common.SourceReranked:  25,
}

// ScoreFoodCandidate 對單一搜尋結果評分：
// 相似度 0–50、來源加分、屬性加分（封頂 20）、營養完整度 0–10。
// confidence = min(score/100, 1)。
func ScoreFoodCandidate(query string, result common.SearchResult, source common.CandidateSource, facets *common.ParsedFacets) common.FoodCandidate {
	similarity, simReason := nameSimilarity(query, result.Name)
	score := similarity * 50
	score += sourceBonus[source]

	facetBonus := facetMatchBonus(result.Name, facets)
	score += facetBonus

	completeness := nutritionCompleteness(result)
	score += completeness

	confidence := score / 100
	if confidence > 1 {
		confidence = 1
	}

	return common.FoodCandidate{
		ID:          result.ID,
		Name:        result.Name,
		Calories:    result.CaloriesPer100g,
		Protein:     result.ProteinPer100g,
		Carbs:       result.CarbsPer100g,
		Fat:         result.FatPer100g,
		ImageURL:    result.ImageURL,
		Score:       score,
		Confidence:  confidence,
		Source:      source,
		Explanation: fmt.Sprintf("%s via %s (facet +%.0f, nutrition +%.0f)", simReason, source, facetBonus, completeness),
	}
}

// nameSimilarity 名稱相似度：完全相等 1.0、雙向包含 0.8/0.7、
// 部分詞重疊比例縮放到 0.4–0.7，完全不重疊 0.1。
func nameSimilarity(query, name string) (float64, string) {
	q := strings.ToLower(strings.TrimSpace(query))
	n := strings.ToLower(strings.TrimSpace(name))

	if q == n {
		return 1.0, "exact match"
	}
	if q != "" && strings.Contains(n, q) {
		return 0.8, "name contains query"
	}
	if n != "" && strings.Contains(q, n) {
		return 0.7, "query contains name"
	}

	queryWords := strings.Fields(q)
	if len(queryWords) == 0 {
		return 0.1, "no overlap"
	}
	nameWords := map[string]bool{}
	for _, w := range strings.Fields(n) {
		nameWords[w] = true
	}
	matched := 0
	for _, w := range queryWords {
		if nameWords[w] {
			matched++
		}
	}
	if matched == 0 {
		return 0.1, "no overlap"
	}
	overlap := float64(matched) / float64(len(queryWords))
	return 0.4 + overlap*0.3, fmt.Sprintf("word overlap %d/%d", matched, len(queryWords))
}

// facetMatchBonus 候選名稱中出現的屬性詞加分：prep +5、protein +3、cuisine +3，封頂 20
func facetMatchBonus(name string, facets *common.ParsedFacets) float64 {
	if facets == nil {
		return 0
	}
	lower := strings.ToLower(name)
	var bonus float64
	for _, token := range facets.Prep {
		if strings.Contains(lower, token) {
			bonus += 5
		}
	}
	for _, token := range facets.Protein {
		if strings.Contains(lower, token) {
			bonus += 3
		}
	}
	for _, token := range facets.Cuisine {
		if strings.Contains(lower, token) {
			bonus += 3
		}
	}
	if bonus > 20 {
		bonus = 20
	}
	return bonus
}

// nutritionCompleteness 依 {熱量, 蛋白質, 碳水, 脂肪} 的齊備程度給 0–10 分
func nutritionCompleteness(result common.SearchResult) float64 {
	present := 0
	for _, p := range []*float64{result.CaloriesPer100g, result.ProteinPer100g, result.CarbsPer100g, result.FatPer100g} {
		if p != nil {
			present++
		}
	}
	return float64(present) / 4 * 10
}
