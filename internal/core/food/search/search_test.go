package search

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nutrition-resolver/internal/pkg/common"
)

// stubSearcher 依查詢字串回傳固定結果
type stubSearcher struct {
	results map[string][]common.SearchResult
	err     error
}

func (s *stubSearcher) Search(ctx context.Context, query string, maxResults int) ([]common.SearchResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.results[query], nil
}

type stubReranker struct {
	ids []string
	err error
}

func (s *stubReranker) RerankCandidates(ctx context.Context, query string, candidates []common.FoodCandidate) ([]string, error) {
	return s.ids, s.err
}

func TestGetFoodCandidates_DedupKeepsHighScore(t *testing.T) {
	// 同一 id 從 lexical 與 alias 都回來；lexical 評分較高，去重後保留 lexical 版本
	searcher := &stubSearcher{results: map[string][]common.SearchResult{
		"pizza":           {{ID: "usda:1", Name: "pizza"}},
		"pizza slice":     {{ID: "usda:1", Name: "pizza"}},
		"cheese pizza":    {{ID: "usda:2", Name: "cheese pizza"}},
		"pepperoni pizza": nil,
	}}
	o := NewOrchestrator(searcher, nil, false)

	candidates := o.GetFoodCandidates(context.Background(), "pizza", 6)

	require.Len(t, candidates, 2)
	ids := map[string]int{}
	for _, c := range candidates {
		ids[c.ID]++
	}
	assert.Equal(t, 1, ids["usda:1"])
	assert.Equal(t, 1, ids["usda:2"])

	for _, c := range candidates {
		if c.ID == "usda:1" {
			assert.Equal(t, common.SourceLexical, c.Source)
		}
	}
}

func TestGetFoodCandidates_SortedByScoreThenID(t *testing.T) {
	searcher := &stubSearcher{results: map[string][]common.SearchResult{
		"pizza": {
			{ID: "usda:9", Name: "frozen snack"},
			{ID: "usda:2", Name: "pizza"},
			{ID: "usda:5", Name: "pepperoni pizza"},
		},
	}}
	o := NewOrchestrator(searcher, nil, false)

	candidates := o.GetFoodCandidates(context.Background(), "pizza", 6)

	require.Len(t, candidates, 3)
	assert.Equal(t, "usda:2", candidates[0].ID)
	assert.Equal(t, "usda:5", candidates[1].ID)
	assert.Equal(t, "usda:9", candidates[2].ID)
	for i := 1; i < len(candidates); i++ {
		assert.GreaterOrEqual(t, candidates[i-1].Score, candidates[i].Score)
	}
}

func TestGetFoodCandidates_TieBrokenByID(t *testing.T) {
	searcher := &stubSearcher{results: map[string][]common.SearchResult{
		"pizza": {
			{ID: "usda:b", Name: "mystery snack"},
			{ID: "usda:a", Name: "another snack"},
		},
	}}
	o := NewOrchestrator(searcher, nil, false)

	candidates := o.GetFoodCandidates(context.Background(), "pizza", 6)

	require.Len(t, candidates, 2)
	assert.Equal(t, "usda:a", candidates[0].ID)
	assert.Equal(t, "usda:b", candidates[1].ID)
}

func TestGetFoodCandidates_Deterministic(t *testing.T) {
	searcher := &stubSearcher{results: map[string][]common.SearchResult{
		"pizza":           {{ID: "usda:1", Name: "pizza"}, {ID: "usda:2", Name: "pizza pie"}},
		"pizza slice":     {{ID: "usda:3", Name: "pizza slice"}},
		"cheese pizza":    {{ID: "usda:4", Name: "cheese pizza"}},
		"pepperoni pizza": {{ID: "usda:5", Name: "pepperoni pizza"}},
	}}
	o := NewOrchestrator(searcher, nil, false)

	first := o.GetFoodCandidates(context.Background(), "pizza", 6)
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, o.GetFoodCandidates(context.Background(), "pizza", 6))
	}
}

func TestGetFoodCandidates_TruncatesToMaxResults(t *testing.T) {
	results := make([]common.SearchResult, 10)
	for i := range results {
		results[i] = common.SearchResult{ID: string(rune('a' + i)), Name: "pizza variant"}
	}
	searcher := &stubSearcher{results: map[string][]common.SearchResult{"pizza": results}}
	o := NewOrchestrator(searcher, nil, false)

	candidates := o.GetFoodCandidates(context.Background(), "pizza", 4)
	assert.Len(t, candidates, 4)
}

func TestGetFoodCandidates_SearchErrorNonFatal(t *testing.T) {
	o := NewOrchestrator(&stubSearcher{err: errors.New("upstream down")}, nil, false)

	candidates := o.GetFoodCandidates(context.Background(), "pizza", 6)
	assert.Empty(t, candidates)
}

func TestGetFoodCandidates_EmptyQuery(t *testing.T) {
	o := NewOrchestrator(&stubSearcher{}, nil, false)
	assert.Nil(t, o.GetFoodCandidates(context.Background(), "", 6))
	assert.Nil(t, o.GetFoodCandidates(context.Background(), "   ", 6))
}

func TestGetFoodCandidates_NilSearcher(t *testing.T) {
	o := NewOrchestrator(nil, nil, false)
	assert.Nil(t, o.GetFoodCandidates(context.Background(), "pizza", 6))
}

func TestGetFoodCandidates_RerankMovesTopThree(t *testing.T) {
	searcher := &stubSearcher{results: map[string][]common.SearchResult{
		"pizza": {
			{ID: "a", Name: "pizza"},
			{ID: "b", Name: "pepperoni pizza"},
			{ID: "c", Name: "frozen pizza dinner"},
		},
	}}
	reranker := &stubReranker{ids: []string{"c", "a"}}
	o := NewOrchestrator(searcher, reranker, true)

	candidates := o.GetFoodCandidates(context.Background(), "pizza", 6)

	require.Len(t, candidates, 3)
	assert.Equal(t, "c", candidates[0].ID)
	assert.Equal(t, "a", candidates[1].ID)
	assert.Equal(t, "b", candidates[2].ID)
	assert.Equal(t, common.SourceReranked, candidates[0].Source)
	assert.Equal(t, common.SourceReranked, candidates[1].Source)
	assert.NotEqual(t, common.SourceReranked, candidates[2].Source)
}

func TestGetFoodCandidates_RerankErrorKeepsOrder(t *testing.T) {
	searcher := &stubSearcher{results: map[string][]common.SearchResult{
		"pizza": {
			{ID: "a", Name: "pizza"},
			{ID: "b", Name: "pepperoni pizza"},
		},
	}}
	reranker := &stubReranker{err: errors.New("llm timeout")}
	o := NewOrchestrator(searcher, reranker, true)

	candidates := o.GetFoodCandidates(context.Background(), "pizza", 6)

	require.Len(t, candidates, 2)
	assert.Equal(t, "a", candidates[0].ID)
	assert.Equal(t, "b", candidates[1].ID)
}

func TestGetFoodCandidates_RerankUnknownIDsIgnored(t *testing.T) {
	searcher := &stubSearcher{results: map[string][]common.SearchResult{
		"pizza": {{ID: "a", Name: "pizza"}},
	}}
	reranker := &stubReranker{ids: []string{"nope", "a", "a"}}
	o := NewOrchestrator(searcher, reranker, true)

	candidates := o.GetFoodCandidates(context.Background(), "pizza", 6)

	require.Len(t, candidates, 1)
	assert.Equal(t, "a", candidates[0].ID)
	assert.Equal(t, common.SourceReranked, candidates[0].Source)
}

func TestShouldShowCandidatePicker(t *testing.T) {
	mk := func(confidences ...float64) []common.FoodCandidate {
		out := make([]common.FoodCandidate, len(confidences))
		for i, c := range confidences {
			out[i] = common.FoodCandidate{Confidence: c}
		}
		return out
	}

	assert.False(t, ShouldShowCandidatePicker(nil))
	assert.False(t, ShouldShowCandidatePicker(mk()))

	// 高信心且差距夠大 → 不用消歧
	assert.False(t, ShouldShowCandidatePicker(mk(0.9, 0.5)))
	assert.False(t, ShouldShowCandidatePicker(mk(0.95)))

	// 最高信心不足
	assert.True(t, ShouldShowCandidatePicker(mk(0.7)))
	assert.True(t, ShouldShowCandidatePicker(mk(0.79, 0.2)))

	// 前兩名太接近
	assert.True(t, ShouldShowCandidatePicker(mk(0.9, 0.82)))
	assert.True(t, ShouldShowCandidatePicker(mk(0.9, 0.8)))
}
