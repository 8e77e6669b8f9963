// Package search 對外部搜尋能力跑 lexical 與 alias 兩條策略，
// 評分合併後回傳排序過的候選清單，並提供是否需要使用者消歧的判斷規則。
// GetFoodCandidates 是全函式：任何失敗都只會讓清單變短，不會回傳錯誤。
package search

import (
	"context"
	"sort"
	"sync"

	"go.uber.org/zap"

	"nutrition-resolver/internal/core/food/alias"
	"nutrition-resolver/internal/core/food/text"
	"nutrition-resolver/internal/pkg/common"
)

const (
	// DefaultMaxResults 預設回傳的候選數
	DefaultMaxResults = 6

	maxAliasTerms  = 3
	maxRerankInput = 10
	rerankTopN     = 3

	// 消歧門檻：最高信心低於 0.80，或前兩名差距小於 0.15
	pickerTopThreshold = 0.80
	pickerGapThreshold = 0.15
)

// Searcher 外部搜尋能力
type Searcher interface {
	Search(ctx context.Context, query string, maxResults int) ([]common.SearchResult, error)
}

// Reranker 以 LLM 重排候選，回傳相關性遞減的 id 清單
type Reranker interface {
	RerankCandidates(ctx context.Context, query string, candidates []common.FoodCandidate) ([]string, error)
}

// Orchestrator 候選搜尋協調器
type Orchestrator struct {
	searcher      Searcher
	reranker      Reranker
	rerankEnabled bool
}

// NewOrchestrator 建立協調器；reranker 可為 nil
func NewOrchestrator(searcher Searcher, reranker Reranker, rerankEnabled bool) *Orchestrator {
	return &Orchestrator{
		searcher:      searcher,
		reranker:      reranker,
		rerankEnabled: rerankEnabled,
	}
}

// GetFoodCandidates 跑 lexical 與 alias 策略、評分、以 id 去重（保留高分）、
// 遞減排序、截斷到 maxResults，最後視旗標做非致命的 LLM 重排。
func (o *Orchestrator) GetFoodCandidates(ctx context.Context, query string, maxResults int) []common.FoodCandidate {
	if o == nil || o.searcher == nil {
		return nil
	}
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}

	normalized := text.NormalizeQuery(query)
	if normalized == "" {
		return nil
	}
	facets := text.ParseFacets(query)

	// alias 展開，取原始查詢以外的前幾個
	aliasTerms := make([]string, 0, maxAliasTerms)
	for _, term := range alias.ExpandAliases(normalized) {
		if term == normalized {
			continue
		}
		aliasTerms = append(aliasTerms, term)
		if len(aliasTerms) == maxAliasTerms {
			break
		}
	}

	// lexical 與 alias 沒有先後依賴，並行執行；合併必須是決定性的
	var wg sync.WaitGroup
	var lexical []common.FoodCandidate
	aliasResults := make([][]common.FoodCandidate, len(aliasTerms))

	wg.Add(1)
	go func() {
		defer wg.Done()
		lexical = o.runStrategy(ctx, normalized, normalized, common.SourceLexical, &facets, maxResults)
	}()
	for i, term := range aliasTerms {
		wg.Add(1)
		go func(i int, term string) {
			defer wg.Done()
			aliasResults[i] = o.runStrategy(ctx, normalized, term, common.SourceAlias, &facets, maxResults)
		}(i, term)
	}
	wg.Wait()

	// 以 id 去重，保留高分版本；固定合併順序確保結果與完成順序無關
	best := map[string]common.FoodCandidate{}
	merge := func(candidates []common.FoodCandidate) {
		for _, c := range candidates {
			if existing, ok := best[c.ID]; !ok || c.Score > existing.Score {
				best[c.ID] = c
			}
		}
	}
	merge(lexical)
	for _, batch := range aliasResults {
		merge(batch)
	}

	candidates := make([]common.FoodCandidate, 0, len(best))
	for _, c := range best {
		candidates = append(candidates, c)
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		return candidates[i].ID < candidates[j].ID
	})
	if len(candidates) > maxResults {
		candidates = candidates[:maxResults]
	}

	candidates = o.maybeRerank(ctx, normalized, candidates)

	common.LogInfo("食物候選搜尋完成",
		zap.String("query", normalized),
		zap.Int("candidates", len(candidates)),
		zap.Int("alias_terms", len(aliasTerms)),
	)
	return candidates
}

// runStrategy 單一策略：搜尋失敗視為該來源沒有產出
func (o *Orchestrator) runStrategy(ctx context.Context, query, term string, source common.CandidateSource, facets *common.ParsedFacets, maxResults int) []common.FoodCandidate {
	results, err := o.searcher.Search(ctx, term, maxResults)
	if err != nil {
		common.LogWarn("搜尋策略失敗",
			zap.String("term", term),
			zap.String("source", string(source)),
			zap.Error(err),
		)
		return nil
	}
	candidates := make([]common.FoodCandidate, 0, len(results))
	for _, r := range results {
		if r.ID == "" {
			continue
		}
		candidates = append(candidates, ScoreFoodCandidate(query, r, source, facets))
	}
	return candidates
}

// maybeRerank 旗標開啟時把前 10 名送 LLM 重排，前 3 個回傳 id 移到最前並標記
// 為 reranked；任何錯誤都保留原本順序（重排失敗非致命）。
func (o *Orchestrator) maybeRerank(ctx context.Context, query string, candidates []common.FoodCandidate) []common.FoodCandidate {
	if !o.rerankEnabled || o.reranker == nil || len(candidates) == 0 {
		return candidates
	}

	input := candidates
	if len(input) > maxRerankInput {
		input = input[:maxRerankInput]
	}
	ids, err := o.reranker.RerankCandidates(ctx, query, input)
	if err != nil {
		common.LogWarn("LLM 重排失敗，保留原順序", zap.Error(err))
		return candidates
	}
	if len(ids) > rerankTopN {
		ids = ids[:rerankTopN]
	}

	byID := make(map[string]int, len(candidates))
	for i, c := range candidates {
		byID[c.ID] = i
	}

	reordered := make([]common.FoodCandidate, 0, len(candidates))
	taken := map[string]bool{}
	for _, id := range ids {
		idx, ok := byID[id]
		if !ok || taken[id] {
			continue
		}
		c := candidates[idx]
		c.Source = common.SourceReranked
		reordered = append(reordered, c)
		taken[id] = true
	}
	for _, c := range candidates {
		if !taken[c.ID] {
			reordered = append(reordered, c)
		}
	}
	return reordered
}

// ShouldShowCandidatePicker 判斷是否需要讓使用者消歧：
// 清單非空，且最高信心不足或前兩名差距太小。
func ShouldShowCandidatePicker(candidates []common.FoodCandidate) bool {
	if len(candidates) == 0 {
		return false
	}
	top := candidates[0].Confidence
	if top < pickerTopThreshold {
		return true
	}
	if len(candidates) >= 2 && top-candidates[1].Confidence < pickerGapThreshold {
		return true
	}
	return false
}
