package branded

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateVariations_OriginalFirst(t *testing.T) {
	variations := generateVariations("Big Mac", "")

	require.NotEmpty(t, variations)
	assert.Equal(t, "big mac", variations[0])
	assert.Contains(t, variations, "mcdonalds big mac")
}

func TestGenerateVariations_Limit(t *testing.T) {
	variations := generateVariations("whopper with cheese", "flame grilled beef patty lettuce tomato onion")
	assert.LessOrEqual(t, len(variations), maxVariations)
}

func TestGenerateVariations_OCRWords(t *testing.T) {
	variations := generateVariations("granola bar", "oats honey almonds 190 calories per bar")

	// OCR 只取前五個詞
	assert.Contains(t, variations, "granola bar oats honey almonds 190 calories")
}

func TestGenerateVariations_WordSwap(t *testing.T) {
	variations := generateVariations("bar granola", "")
	assert.Contains(t, variations, "granola bar")
}

func TestGenerateVariations_EmptyName(t *testing.T) {
	assert.Nil(t, generateVariations("", "some ocr text"))
	assert.Nil(t, generateVariations("   ", ""))
}

func TestGenerateVariations_Deterministic(t *testing.T) {
	first := generateVariations("whopper meal", "burger king receipt")
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, generateVariations("whopper meal", "burger king receipt"))
	}
}

func TestDetectBrand(t *testing.T) {
	assert.Equal(t, "mcdonalds", detectBrand("McDonald's Big Mac"))
	assert.Equal(t, "burger king", detectBrand("burger king fries"))
	assert.Equal(t, "wendys", detectBrand("wendy's spicy chicken"))
	assert.Equal(t, "", detectBrand("homemade lasagna"))
}

func TestDetectBrand_FromSynonym(t *testing.T) {
	// 單品名稱沒有品牌字樣，但同義詞表能反推
	assert.Equal(t, "burger king", detectBrand("whopper with cheese"))
	assert.Equal(t, "wendys", detectBrand("large frosty"))
}

func TestDetectCategory(t *testing.T) {
	assert.Equal(t, "pizza", detectCategory("frozen pepperoni pizza"))
	assert.Equal(t, "burger", detectCategory("double cheeseburger"))
	assert.Equal(t, "", detectCategory("mineral water"))
}

func TestDetectCategory_LongestWins(t *testing.T) {
	// "fried chicken" 要贏過不存在的短鍵；"hot dog" 是完整鍵
	assert.Equal(t, "fried chicken", detectCategory("crispy fried chicken bucket"))
	assert.Equal(t, "hot dog", detectCategory("jumbo hot dog"))
	assert.Equal(t, "ice cream", detectCategory("vanilla ice cream tub"))
}
