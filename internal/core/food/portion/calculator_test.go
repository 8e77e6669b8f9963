package portion

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nutrition-resolver/internal/pkg/common"
)

func TestCalculatePortion_UserPreferenceWins(t *testing.T) {
	product := common.ProductData{
		Name:         "Cola",
		ServingGrams: 330,
	}
	pref := &common.PortionPreference{
		ProductKey:     "barcode:123",
		PortionGrams:   250,
		PortionDisplay: "1 glass",
	}

	result := CalculatePortion(product, "serving size 330g", pref)

	assert.Equal(t, 250.0, result.Grams)
	assert.Equal(t, common.PortionSourceUserSet, result.Source)
	assert.Equal(t, common.ConfidenceHigh, result.Confidence)
	assert.Equal(t, "1 glass", result.Display)
}

func TestCalculatePortion_OCRDeclared(t *testing.T) {
	product := common.ProductData{Name: "Cereal", ServingGrams: 40}

	result := CalculatePortion(product, "Serving Size: 30g per bowl", nil)

	// OCR 宣告優先於資料庫宣告
	assert.Equal(t, 30.0, result.Grams)
	assert.Equal(t, common.PortionSourceOCRDeclared, result.Source)
}

func TestCalculatePortion_OCRParenGrams(t *testing.T) {
	result := CalculatePortion(common.ProductData{Name: "Bar"}, "1 bar (45 g)", nil)
	assert.Equal(t, 45.0, result.Grams)
	assert.Equal(t, common.PortionSourceOCRDeclared, result.Source)
}

func TestCalculatePortion_OCRCupsWithDensity(t *testing.T) {
	product := common.ProductData{Name: "Cornflakes", Category: "cereals"}

	result := CalculatePortion(product, "3/4 cup", nil)

	// 0.75 × 55g/cup ≈ 41g
	assert.Equal(t, 41.0, result.Grams)
	assert.Equal(t, common.PortionSourceOCRDeclared, result.Source)
}

func TestCalculatePortion_OCRMilliliters(t *testing.T) {
	product := common.ProductData{Name: "Milk", Category: "dairy"}

	result := CalculatePortion(product, "240 ml", nil)

	// 240 × 1.03 = 247.2 → 247
	assert.Equal(t, 247.0, result.Grams)
}

func TestCalculatePortion_DBDeclared(t *testing.T) {
	product := common.ProductData{
		Name:         "Yogurt",
		ServingGrams: 125,
		ServingText:  "1 pot",
	}

	result := CalculatePortion(product, "", nil)

	assert.Equal(t, 125.0, result.Grams)
	assert.Equal(t, common.PortionSourceDBDeclared, result.Source)
	assert.Equal(t, "1 pot", result.Unit)
}

func TestCalculatePortion_DBServingTextParsed(t *testing.T) {
	product := common.ProductData{
		Name:        "Chips",
		ServingText: "1 bag (28g)",
	}

	result := CalculatePortion(product, "", nil)

	assert.Equal(t, 28.0, result.Grams)
	assert.Equal(t, common.PortionSourceDBDeclared, result.Source)
}

func TestCalculatePortion_CalorieRatio(t *testing.T) {
	product := common.ProductData{
		Name:               "Granola",
		CaloriesPerServing: 225,
		CaloriesPer100g:    500,
	}

	result := CalculatePortion(product, "", nil)

	// 225/500 × 100 = 45g，已是 5 的倍數
	assert.Equal(t, 45.0, result.Grams)
	assert.Equal(t, common.PortionSourceOCRRatio, result.Source)
	assert.True(t, result.IsEstimated)
}

func TestCalculatePortion_MacroRatioMedian(t *testing.T) {
	product := common.ProductData{
		Name:              "Protein Bar",
		ProteinPerServing: 20, ProteinPer100g: 33,
		CarbsPerServing: 25, CarbsPer100g: 42,
		FatPerServing: 9, FatPer100g: 15,
	}

	result := CalculatePortion(product, "", nil)

	// 比值約 0.606/0.595/0.600，中位數 0.600 → 60g
	assert.Equal(t, 60.0, result.Grams)
	assert.Equal(t, common.PortionSourceOCRRatio, result.Source)
}

func TestCalculatePortion_ImplausibleRatioRejected(t *testing.T) {
	product := common.ProductData{
		Name:               "Bulk Pack",
		CaloriesPerServing: 2000,
		CaloriesPer100g:    400,
	}

	result := CalculatePortion(product, "", nil)

	// 比值推出 500g，超出合理範圍 → 改走名稱推估/後援
	assert.NotEqual(t, common.PortionSourceOCRRatio, result.Source)
}

func TestCalculatePortion_NameEstimate(t *testing.T) {
	product := common.ProductData{Name: "chicken burger"}

	result := CalculatePortion(product, "", nil)

	assert.Equal(t, 220.0, result.Grams)
	assert.Equal(t, common.PortionSourceModelEstimate, result.Source)
	assert.True(t, result.IsEstimated)
}

func TestCalculatePortion_Fallback(t *testing.T) {
	result := CalculatePortion(common.ProductData{}, "", nil)

	assert.Equal(t, 100.0, result.Grams)
	assert.Equal(t, common.PortionSourceCustomAmount, result.Source)
	assert.True(t, result.IsEstimated)
	assert.Greater(t, result.Grams, 0.0)
}

func TestCalculatePortion_IgnoresInvalidPreference(t *testing.T) {
	pref := &common.PortionPreference{ProductKey: "x", PortionGrams: 0.2}

	result := CalculatePortion(common.ProductData{ServingGrams: 50}, "", pref)

	require.Equal(t, common.PortionSourceDBDeclared, result.Source)
	assert.Equal(t, 50.0, result.Grams)
}

func TestParseFraction(t *testing.T) {
	assert.Equal(t, 0.5, parseFraction("½"))
	assert.Equal(t, 0.75, parseFraction("¾"))
	assert.Equal(t, 0.5, parseFraction("1/2"))
	assert.Equal(t, 1.5, parseFraction("1.5"))
	assert.Equal(t, 0.0, parseFraction("1/0"))
	assert.Equal(t, 0.0, parseFraction("abc"))
}
