package branded

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchConfidence_ExactMatch(t *testing.T) {
	assert.Equal(t, 100.0, matchConfidence("big mac", "Big Mac", ""))
	assert.Equal(t, 100.0, matchConfidence("  big   mac ", "big mac", ""))
}

func TestMatchConfidence_EmptyInput(t *testing.T) {
	assert.Equal(t, 0.0, matchConfidence("", "big mac", ""))
	assert.Equal(t, 0.0, matchConfidence("big mac", "", ""))
}

func TestMatchConfidence_PartialMatch(t *testing.T) {
	conf := matchConfidence("mcdonalds burger meal", "mcdonalds burger box", "")
	assert.Greater(t, conf, 20.0)
	assert.Less(t, conf, 100.0)
}

func TestMatchConfidence_BrandBonus(t *testing.T) {
	without := matchConfidence("wendys frosty shake", "frosty shake dessert", "")
	with := matchConfidence("wendys frosty shake", "frosty shake dessert", "Wendys")
	assert.Equal(t, without+10, with)
}

func TestMatchConfidence_CappedAt100(t *testing.T) {
	conf := matchConfidence("wendys frosty", "wendys frosty x", "wendys")
	assert.LessOrEqual(t, conf, 100.0)
}

func TestMatchConfidence_UnrelatedNames(t *testing.T) {
	conf := matchConfidence("big mac", "strawberry yogurt cup", "")
	assert.Less(t, conf, 40.0)
}

func TestWordSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, wordSimilarity("big mac", "big mac"))
	assert.Equal(t, 0.5, wordSimilarity("big mac", "big tasty"))
	// 分母取較大的詞集合
	assert.InDelta(t, 2.0/3.0, wordSimilarity("big mac", "big mac meal"), 1e-9)
	assert.Equal(t, 0.0, wordSimilarity("big mac", "frosty"))
	assert.Equal(t, 0.0, wordSimilarity("", "big mac"))
}

func TestEditSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, editSimilarity("frosty", "frosty"))
	assert.Equal(t, 0.0, editSimilarity("", ""))
	// "abcd" vs "abce"：1 替換 / 長度 4
	assert.Equal(t, 0.75, editSimilarity("abcd", "abce"))
}

func TestLevenshtein(t *testing.T) {
	assert.Equal(t, 0, levenshtein("mac", "mac"))
	assert.Equal(t, 3, levenshtein("", "mac"))
	assert.Equal(t, 3, levenshtein("mac", ""))
	assert.Equal(t, 1, levenshtein("mac", "mic"))
	assert.Equal(t, 3, levenshtein("kitten", "sitting"))
}

func TestNormalizeName(t *testing.T) {
	assert.Equal(t, "big mac", normalizeName("  Big   MAC  "))
	assert.Equal(t, "", normalizeName("   "))
}
