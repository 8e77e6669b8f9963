package branded

import (
	"strings"
)

// matchConfidence 對候選產品名稱打 0–100 的信心分：
// 完全相等 100，否則 60% 詞級相似 + 30% 整串編輯距離相似 + 品牌子字串加分。
func matchConfidence(query, candidateName, candidateBrand string) float64 {
	q := normalizeName(query)
	c := normalizeName(candidateName)
	if q == "" || c == "" {
		return 0
	}
	if q == c {
		return 100
	}

	score := wordSimilarity(q, c)*60 + editSimilarity(q, c)*30

	// 品牌訊號：查詢裡含品牌名時給額外加分
	if brand := normalizeName(candidateBrand); brand != "" && strings.Contains(q, brand) {
		score += 10
	}

	if score > 100 {
		score = 100
	}
	return score
}

// wordSimilarity 兩邊詞集合的重疊比例（以較大的集合為分母）
func wordSimilarity(a, b string) float64 {
	wordsA := strings.Fields(a)
	wordsB := strings.Fields(b)
	if len(wordsA) == 0 || len(wordsB) == 0 {
		return 0
	}
	setB := make(map[string]bool, len(wordsB))
	for _, w := range wordsB {
		setB[w] = true
	}
	matched := 0
	for _, w := range wordsA {
		if setB[w] {
			matched++
		}
	}
	denom := len(wordsA)
	if len(wordsB) > denom {
		denom = len(wordsB)
	}
	return float64(matched) / float64(denom)
}

// editSimilarity 1 - 正規化 Levenshtein 距離
func editSimilarity(a, b string) float64 {
	maxLen := len(a)
	if len(b) > maxLen {
		maxLen = len(b)
	}
	if maxLen == 0 {
		return 0
	}
	return 1 - float64(levenshtein(a, b))/float64(maxLen)
}

// levenshtein 兩列滾動的編輯距離
func levenshtein(a, b string) int {
	ra := []rune(a)
	rb := []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min3(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}

func normalizeName(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
