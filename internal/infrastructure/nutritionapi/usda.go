package nutritionapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-resty/resty/v2"

	"nutrition-resolver/internal/core/food/branded"
	"nutrition-resolver/internal/infrastructure/config"
	"nutrition-resolver/internal/pkg/common"
)

// USDAClient USDA FoodData Central 客戶端。
// 同時充當候選搜尋的外部搜尋能力（per-100g 結果）。
type USDAClient struct {
	client *resty.Client
	apiKey string
}

// NewUSDAClient 建立 USDA 客戶端
func NewUSDAClient(cfg config.ProvidersConfig) *USDAClient {
	client := resty.New().
		SetBaseURL(cfg.USDABaseURL).
		SetTimeout(cfg.Timeout)
	return &USDAClient{
		client: client,
		apiKey: cfg.USDAAPIKey,
	}
}

// Source 回傳來源標記
func (c *USDAClient) Source() common.MatchSource {
	return common.MatchSourceUSDA
}

type usdaNutrient struct {
	NutrientName string  `json:"nutrientName"`
	UnitName     string  `json:"unitName"`
	Value        float64 `json:"value"`
}

type usdaFood struct {
	FDCID         int64          `json:"fdcId"`
	Description   string         `json:"description"`
	BrandOwner    string         `json:"brandOwner"`
	ServingSize   float64        `json:"servingSize"`
	ServingUnit   string         `json:"servingSizeUnit"`
	FoodNutrients []usdaNutrient `json:"foodNutrients"`
}

type usdaSearchResponse struct {
	Foods []usdaFood `json:"foods"`
}

func (c *USDAClient) search(ctx context.Context, query string, pageSize int) ([]usdaFood, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"api_key":  c.apiKey,
			"query":    query,
			"pageSize": strconv.Itoa(pageSize),
		}).
		Get("/foods/search")
	if err != nil {
		return nil, fmt.Errorf("failed to query USDA search endpoint: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("USDA search returned status %d", resp.StatusCode())
	}

	var result usdaSearchResponse
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return nil, fmt.Errorf("failed to parse USDA search response: %w", err)
	}
	return result.Foods, nil
}

// SearchProducts 品牌配對用的文字搜尋（絕對營養值，以 serving 換算）
func (c *USDAClient) SearchProducts(ctx context.Context, query string) ([]branded.ProviderProduct, error) {
	foods, err := c.search(ctx, query, 10)
	if err != nil {
		return nil, err
	}

	products := make([]branded.ProviderProduct, 0, len(foods))
	for _, f := range foods {
		if f.Description == "" {
			continue
		}
		nutrition := nutrientsPer100g(f.FoodNutrients)
		serving := f.ServingSize
		if serving > 0 && f.ServingUnit == "g" {
			nutrition = scaleNutrition(nutrition, serving/100)
		} else {
			serving = 100
		}
		products = append(products, branded.ProviderProduct{
			Name:         f.Description,
			Brand:        f.BrandOwner,
			ServingGrams: serving,
			Nutrition:    nutrition,
		})
	}
	return products, nil
}

// Search 候選搜尋介面：回傳 per-100g 的原始結果
func (c *USDAClient) Search(ctx context.Context, query string, maxResults int) ([]common.SearchResult, error) {
	if maxResults <= 0 {
		maxResults = 10
	}
	foods, err := c.search(ctx, query, maxResults)
	if err != nil {
		return nil, err
	}

	results := make([]common.SearchResult, 0, len(foods))
	for _, f := range foods {
		if f.Description == "" {
			continue
		}
		n := nutrientsPer100g(f.FoodNutrients)
		r := common.SearchResult{
			ID:   fmt.Sprintf("usda:%d", f.FDCID),
			Name: f.Description,
		}
		if n.Calories > 0 {
			r.CaloriesPer100g = common.Float64Ptr(n.Calories)
		}
		if n.Protein > 0 {
			r.ProteinPer100g = common.Float64Ptr(n.Protein)
		}
		if n.Carbs > 0 {
			r.CarbsPer100g = common.Float64Ptr(n.Carbs)
		}
		if n.Fat > 0 {
			r.FatPer100g = common.Float64Ptr(n.Fat)
		}
		if f.ServingSize > 0 && f.ServingUnit == "g" {
			r.ServingGrams = f.ServingSize
		}
		results = append(results, r)
	}
	return results, nil
}

// nutrientsPer100g 從 USDA 的營養素清單取出需要的欄位
func nutrientsPer100g(nutrients []usdaNutrient) common.NutritionData {
	var n common.NutritionData
	for _, nu := range nutrients {
		switch nu.NutrientName {
		case "Energy":
			if nu.UnitName == "KCAL" || nu.UnitName == "kcal" {
				n.Calories = nu.Value
			}
		case "Protein":
			n.Protein = nu.Value
		case "Carbohydrate, by difference":
			n.Carbs = nu.Value
		case "Total lipid (fat)":
			n.Fat = nu.Value
		case "Fiber, total dietary":
			n.Fiber = nu.Value
		case "Sugars, total including NLEA", "Total Sugars":
			n.Sugar = nu.Value
		case "Sodium, Na":
			n.Sodium = nu.Value // mg
		}
	}
	return n
}

func scaleNutrition(n common.NutritionData, factor float64) common.NutritionData {
	return common.NutritionData{
		Calories: n.Calories * factor,
		Protein:  n.Protein * factor,
		Carbs:    n.Carbs * factor,
		Fat:      n.Fat * factor,
		Fiber:    n.Fiber * factor,
		Sugar:    n.Sugar * factor,
		Sodium:   n.Sodium * factor,
	}
}
