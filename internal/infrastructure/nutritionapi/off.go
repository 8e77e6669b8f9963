// Package nutritionapi 包住兩個官方營養資料庫的 HTTP API：
// USDA FoodData Central 與 Open Food Facts。兩者都視為黑盒服務。
package nutritionapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-resty/resty/v2"

	"nutrition-resolver/internal/core/food/branded"
	"nutrition-resolver/internal/infrastructure/config"
	"nutrition-resolver/internal/pkg/common"
)

// sodium 佔食鹽質量的比例；OFF 只給 salt 時用它換算
const sodiumFractionOfSalt = 0.393

// OFFClient Open Food Facts 客戶端
type OFFClient struct {
	client *resty.Client
}

// NewOFFClient 建立 OFF 客戶端
func NewOFFClient(cfg config.ProvidersConfig) *OFFClient {
	client := resty.New().
		SetBaseURL(cfg.OFFBaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("User-Agent", "nutrition-resolver/1.0")
	return &OFFClient{client: client}
}

// Source 回傳來源標記
func (c *OFFClient) Source() common.MatchSource {
	return common.MatchSourceOpenFoodFacts
}

// offNutriments OFF 的 per-100g 營養欄位
type offNutriments struct {
	EnergyKcal float64 `json:"energy-kcal_100g"`
	Proteins   float64 `json:"proteins_100g"`
	Carbs      float64 `json:"carbohydrates_100g"`
	Fat        float64 `json:"fat_100g"`
	Fiber      float64 `json:"fiber_100g"`
	Sugars     float64 `json:"sugars_100g"`
	Sodium     float64 `json:"sodium_100g"` // g
	Salt       float64 `json:"salt_100g"`   // g
}

type offProduct struct {
	ProductName     string        `json:"product_name"`
	Brands          string        `json:"brands"`
	ServingQuantity float64       `json:"serving_quantity"`
	Nutriments      offNutriments `json:"nutriments"`
}

// LookupBarcode 以條碼直查產品；查無資料回 (nil, nil)
func (c *OFFClient) LookupBarcode(ctx context.Context, barcode string) (*branded.ProviderProduct, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		Get(fmt.Sprintf("/api/v2/product/%s.json", barcode))
	if err != nil {
		return nil, fmt.Errorf("failed to query OFF barcode endpoint: %w", err)
	}
	if resp.StatusCode() == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("OFF barcode lookup returned status %d", resp.StatusCode())
	}

	var result struct {
		Status  int        `json:"status"`
		Product offProduct `json:"product"`
	}
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return nil, fmt.Errorf("failed to parse OFF barcode response: %w", err)
	}
	if result.Status != 1 {
		return nil, nil
	}
	return offToProduct(result.Product), nil
}

// SearchProducts 文字搜尋
func (c *OFFClient) SearchProducts(ctx context.Context, query string) ([]branded.ProviderProduct, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"search_terms": query,
			"search_simple": "1",
			"action":       "process",
			"json":         "1",
			"page_size":    "10",
		}).
		Get("/cgi/search.pl")
	if err != nil {
		return nil, fmt.Errorf("failed to query OFF search endpoint: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("OFF search returned status %d", resp.StatusCode())
	}

	var result struct {
		Products []offProduct `json:"products"`
	}
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return nil, fmt.Errorf("failed to parse OFF search response: %w", err)
	}

	products := make([]branded.ProviderProduct, 0, len(result.Products))
	for _, p := range result.Products {
		if p.ProductName == "" {
			continue
		}
		products = append(products, *offToProduct(p))
	}
	return products, nil
}

// offToProduct 營養欄位轉換；OFF 缺 sodium 時由 salt 換算（g → mg）
func offToProduct(p offProduct) *branded.ProviderProduct {
	sodiumMg := p.Nutriments.Sodium * 1000
	if sodiumMg <= 0 && p.Nutriments.Salt > 0 {
		sodiumMg = p.Nutriments.Salt * sodiumFractionOfSalt * 1000
	}
	return &branded.ProviderProduct{
		Name:         p.ProductName,
		Brand:        p.Brands,
		ServingGrams: p.ServingQuantity,
		Nutrition: common.NutritionData{
			Calories: p.Nutriments.EnergyKcal,
			Protein:  p.Nutriments.Proteins,
			Carbs:    p.Nutriments.Carbs,
			Fat:      p.Nutriments.Fat,
			Fiber:    p.Nutriments.Fiber,
			Sugar:    p.Nutriments.Sugars,
			Sodium:   sodiumMg,
		},
	}
}
