// Package service 提供 LLM 支援的兩個能力：候選重排與營養估計。
// 模型被要求只輸出 JSON；回應經寬鬆擷取後用嚴格解碼驗證。
package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"nutrition-resolver/internal/core/ai/cache"
	"nutrition-resolver/internal/core/ai/provider"
	"nutrition-resolver/internal/infrastructure/config"
	"nutrition-resolver/internal/pkg/common"
)

// rerankResponse 模型重排回應的嚴格 JSON 形狀
type rerankResponse struct {
	IDs []string `json:"ids"`
}

// nutritionEstimate 模型營養估計回應的嚴格 JSON 形狀
type nutritionEstimate struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
	Fiber    float64 `json:"fiber"`
	Sugar    float64 `json:"sugar"`
	Sodium   float64 `json:"sodium"`
}

// Service LLM 服務
type Service struct {
	config       *config.Config
	llm          provider.Provider
	cacheManager *cache.CacheManager
}

// NewService 創建 LLM 服務
func NewService(cfg *config.Config, llm provider.Provider, cacheManager *cache.CacheManager) *Service {
	return &Service{
		config:       cfg,
		llm:          llm,
		cacheManager: cacheManager,
	}
}

// RerankCandidates 把候選的 (id, name, score) 三元組交給模型，
// 回傳相關性遞減的 id 清單。
func (s *Service) RerankCandidates(ctx context.Context, query string, candidates []common.FoodCandidate) ([]string, error) {
	if s.llm == nil {
		return nil, fmt.Errorf("llm provider not configured")
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	var sb strings.Builder
	for _, c := range candidates {
		fmt.Fprintf(&sb, "- id=%s name=%q score=%.1f\n", c.ID, c.Name, c.Score)
	}
	prompt := fmt.Sprintf(`You are ranking food database search results for the query %q.
Candidates:
%s
Return ONLY a JSON object of the form {"ids": ["...", "..."]} listing candidate ids in order of relevance to the query, most relevant first. No explanation, JSON only.`, query, sb.String())

	content, err := s.generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	raw, err := common.ExtractJSONObject(content)
	if err != nil {
		return nil, fmt.Errorf("rerank response is not JSON: %w", err)
	}
	var parsed rerankResponse
	if err := common.ParseJSON(common.QuoteJSONKeys(raw), &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse rerank response: %w", err)
	}
	if len(parsed.IDs) == 0 {
		return nil, fmt.Errorf("rerank response contains no ids")
	}

	common.LogInfo("LLM 重排完成",
		zap.String("query", query),
		zap.Int("input", len(candidates)),
		zap.Int("output", len(parsed.IDs)),
	)
	return parsed.IDs, nil
}

// EstimateNutrition 請模型估計單一產品一份的營養值。
// 接受條件：0 < calories < 5000 且巨集營養素為非負數。
func (s *Service) EstimateNutrition(ctx context.Context, name string) (*common.NutritionData, error) {
	if s.llm == nil {
		return nil, fmt.Errorf("llm provider not configured")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("empty product name")
	}

	prompt := fmt.Sprintf(`Estimate the nutrition facts for one typical serving of %q.
Return ONLY a JSON object with numeric fields:
{"calories": 0, "protein": 0, "carbs": 0, "fat": 0, "fiber": 0, "sugar": 0, "sodium": 0}
calories in kcal, macros in grams, sodium in mg. No explanation, JSON only.`, name)

	content, err := s.generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	raw, err := common.ExtractJSONObject(content)
	if err != nil {
		return nil, fmt.Errorf("estimate response is not JSON: %w", err)
	}
	var parsed nutritionEstimate
	if err := common.ParseJSON(common.QuoteJSONKeys(raw), &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse nutrition estimate: %w", err)
	}

	// 合理性驗證
	if parsed.Calories <= 0 || parsed.Calories >= 5000 {
		return nil, fmt.Errorf("implausible calorie estimate: %.0f", parsed.Calories)
	}
	if parsed.Protein < 0 || parsed.Carbs < 0 || parsed.Fat < 0 {
		return nil, fmt.Errorf("negative macro in estimate")
	}

	common.LogInfo("LLM 營養估計完成",
		zap.String("product", name),
		zap.Float64("calories", parsed.Calories),
	)
	return &common.NutritionData{
		Calories: parsed.Calories,
		Protein:  parsed.Protein,
		Carbs:    parsed.Carbs,
		Fat:      parsed.Fat,
		Fiber:    parsed.Fiber,
		Sugar:    parsed.Sugar,
		Sodium:   parsed.Sodium,
	}, nil
}

// generate 先查快取再呼叫模型；快取失效不影響主流程
func (s *Service) generate(ctx context.Context, prompt string) (string, error) {
	if s.config.Cache.Enabled && s.cacheManager != nil {
		if val, err := s.cacheManager.Get(ctx, prompt); err == nil && val != "" {
			return val, nil
		}
	}

	content, err := s.llm.Generate(ctx, prompt)
	if err != nil {
		return "", err
	}

	if s.config.Cache.Enabled && s.cacheManager != nil {
		_ = s.cacheManager.Set(ctx, prompt, content)
	}
	return content, nil
}
