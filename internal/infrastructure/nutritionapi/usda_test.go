package nutritionapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nutrition-resolver/internal/infrastructure/config"
	"nutrition-resolver/internal/pkg/common"
)

const usdaSearchPayload = `{
	"foods": [
		{
			"fdcId": 12345,
			"description": "Pizza, cheese, frozen",
			"servingSize": 125,
			"servingSizeUnit": "g",
			"foodNutrients": [
				{"nutrientName": "Energy", "unitName": "KCAL", "value": 266},
				{"nutrientName": "Protein", "unitName": "G", "value": 11},
				{"nutrientName": "Carbohydrate, by difference", "unitName": "G", "value": 33},
				{"nutrientName": "Total lipid (fat)", "unitName": "G", "value": 10},
				{"nutrientName": "Sodium, Na", "unitName": "MG", "value": 598}
			]
		},
		{
			"fdcId": 67890,
			"description": "Pizza sauce",
			"foodNutrients": [
				{"nutrientName": "Energy", "unitName": "KCAL", "value": 54}
			]
		}
	]
}`

func newUSDATestClient(handler http.HandlerFunc) (*USDAClient, *httptest.Server) {
	server := httptest.NewServer(handler)
	client := NewUSDAClient(config.ProvidersConfig{
		USDAAPIKey:  "test-key",
		USDABaseURL: server.URL,
		Timeout:     2 * time.Second,
	})
	return client, server
}

func TestUSDASearch(t *testing.T) {
	client, server := newUSDATestClient(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/foods/search", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("api_key"))
		assert.Equal(t, "pizza", r.URL.Query().Get("query"))
		_, _ = w.Write([]byte(usdaSearchPayload))
	})
	defer server.Close()

	results, err := client.Search(context.Background(), "pizza", 6)

	require.NoError(t, err)
	require.Len(t, results, 2)

	first := results[0]
	assert.Equal(t, "usda:12345", first.ID)
	assert.Equal(t, "Pizza, cheese, frozen", first.Name)
	require.NotNil(t, first.CaloriesPer100g)
	assert.Equal(t, 266.0, *first.CaloriesPer100g)
	require.NotNil(t, first.ProteinPer100g)
	assert.Equal(t, 11.0, *first.ProteinPer100g)
	assert.Equal(t, 125.0, first.ServingGrams)

	// 缺的營養素保持 nil，供完整度評分辨識
	second := results[1]
	assert.Equal(t, "usda:67890", second.ID)
	assert.Nil(t, second.ProteinPer100g)
	assert.Nil(t, second.FatPer100g)
}

func TestUSDASearchProducts_ScalesToServing(t *testing.T) {
	client, server := newUSDATestClient(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(usdaSearchPayload))
	})
	defer server.Close()

	products, err := client.SearchProducts(context.Background(), "pizza")

	require.NoError(t, err)
	require.Len(t, products, 2)

	// 第一筆有 125g serving → per-100g × 1.25
	assert.Equal(t, 125.0, products[0].ServingGrams)
	assert.InDelta(t, 332.5, products[0].Nutrition.Calories, 1e-9)
	assert.InDelta(t, 747.5, products[0].Nutrition.Sodium, 1e-9)

	// 第二筆沒有 serving → 保持 per-100g，份量視為 100g
	assert.Equal(t, 100.0, products[1].ServingGrams)
	assert.Equal(t, 54.0, products[1].Nutrition.Calories)
}

func TestUSDASearch_ServerError(t *testing.T) {
	client, server := newUSDATestClient(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})
	defer server.Close()

	_, err := client.Search(context.Background(), "pizza", 6)
	assert.Error(t, err)
}

func TestNutrientsPer100g(t *testing.T) {
	n := nutrientsPer100g([]usdaNutrient{
		{NutrientName: "Energy", UnitName: "KCAL", Value: 100},
		{NutrientName: "Energy", UnitName: "kJ", Value: 418},
		{NutrientName: "Protein", Value: 5},
		{NutrientName: "Total Sugars", Value: 7},
		{NutrientName: "Unknown thing", Value: 99},
	})

	assert.Equal(t, common.NutritionData{Calories: 100, Protein: 5, Sugar: 7}, n)
}
