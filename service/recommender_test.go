package service

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/tcmlife/wellrec/core"
	"github.com/tcmlife/wellrec/recall"
	"github.com/tcmlife/wellrec/store"
)

type staticCatalog struct {
	items []*core.Item
	err   error
}

func (c *staticCatalog) ListCandidates(_ context.Context, _ *core.RecommendContext) ([]*core.Item, error) {
	if c.err != nil {
		return nil, c.err
	}
	// 每次返回拷贝，避免跨请求共享可变条目
	out := make([]*core.Item, len(c.items))
	for i, it := range c.items {
		cp := *it
		out[i] = &cp
	}
	return out, nil
}

type staticProfiles struct {
	health *core.HealthProfile
	seeds  map[string]float64
}

func (p *staticProfiles) Load(_ context.Context, _ string) (*core.HealthProfile, map[string]float64, error) {
	return p.health, p.seeds, nil
}

func winterCatalog() *staticCatalog {
	return &staticCatalog{items: []*core.Item{
		{
			ID: "warming-soup", Type: core.ItemTypeRecipe,
			Title: "当归生姜羊肉汤", Tags: []string{"温补", "补气"},
			Categories: []string{"食谱"}, Ingredients: []string{"羊肉", "当归", "生姜"},
			SuitableFor: []string{"yang_deficient"}, BestSeason: "winter",
			Seasons: []string{"winter"}, Views: 1200, Likes: 80,
		},
		{
			ID: "peanut-congee", Type: core.ItemTypeRecipe,
			Title: "花生红枣粥", Tags: []string{"补血"},
			Categories: []string{"食谱"}, Ingredients: []string{"花生", "红枣"},
			SuitableFor: []string{"balanced"}, BestSeason: "all",
			Seasons: []string{"all"}, Views: 800, Likes: 40,
		},
		{
			ID: "plain-tips", Type: core.ItemTypeTip,
			Title: "冬季早睡晚起", Tags: []string{"起居"},
			Categories: []string{"起居"}, SuitableFor: []string{"balanced"},
			BestSeason: "winter", Seasons: []string{"winter"}, Views: 300, Likes: 10,
		},
	}}
}

func newRecommender(catalog recall.CatalogProvider, profiles ProfileSource) *Recommender {
	return &Recommender{
		Config:   core.DefaultConfig(),
		Catalog:  &recall.Catalog{Provider: catalog, Cache: store.NewMemoryStore()},
		Profiles: profiles,
		Logger:   zap.NewNop(),
	}
}

func winterRequest(strategy string) *RecommendRequest {
	return &RecommendRequest{
		UserID:   "u1",
		Scene:    "home",
		Strategy: strategy,
		Now:      time.Date(2025, 12, 15, 0, 0, 0, 0, time.UTC),
	}
}

func TestRecommendWeighted(t *testing.T) {
	s := newRecommender(winterCatalog(), &staticProfiles{
		health: &core.HealthProfile{UserID: "u1", Constitution: core.ConstitutionYangDeficiency},
		seeds:  map[string]float64{"补气": 2.0},
	})

	resp, err := s.Recommend(context.Background(), winterRequest(""))
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if resp.Reason != core.ReasonOK {
		t.Fatalf("Reason = %v", resp.Reason)
	}
	if resp.Season != core.SeasonWinter {
		t.Errorf("Season = %v", resp.Season)
	}
	if len(resp.Results) != 3 {
		t.Fatalf("结果数 = %d, want 3", len(resp.Results))
	}
	for i := 1; i < len(resp.Results); i++ {
		if resp.Results[i].Score > resp.Results[i-1].Score {
			t.Errorf("结果应按分数降序: %v", resp.Results)
		}
	}
	if len(resp.Results[0].ComponentScores) == 0 {
		t.Error("结果应携带分量拆解")
	}
	if resp.DiversityScore <= 0 {
		t.Errorf("多样性得分 = %v", resp.DiversityScore)
	}
}

func TestRecommendSafetyFilter(t *testing.T) {
	s := newRecommender(winterCatalog(), &staticProfiles{
		health: &core.HealthProfile{
			UserID:       "u1",
			Constitution: core.ConstitutionBalanced,
			Allergies:    []string{"花生"},
		},
	})

	resp, err := s.Recommend(context.Background(), winterRequest(""))
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	for _, r := range resp.Results {
		if r.Item.ID == "peanut-congee" {
			t.Error("过敏条目不应出现在结果中")
		}
	}
	if len(resp.Results) != 2 {
		t.Errorf("结果数 = %d, want 2", len(resp.Results))
	}
}

func TestRecommendAllFiltered(t *testing.T) {
	catalog := &staticCatalog{items: []*core.Item{
		{ID: "r1", Title: "花生汤", Ingredients: []string{"花生"}},
	}}
	s := newRecommender(catalog, &staticProfiles{
		health: &core.HealthProfile{UserID: "u1", Allergies: []string{"花生"}},
	})

	resp, err := s.Recommend(context.Background(), winterRequest(""))
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if resp.Reason != core.ReasonNoEligibleItems {
		t.Errorf("Reason = %v, want %v", resp.Reason, core.ReasonNoEligibleItems)
	}
	if len(resp.Results) != 0 {
		t.Errorf("结果应为空: %v", resp.Results)
	}
}

func TestRecommendNoCandidates(t *testing.T) {
	s := newRecommender(&staticCatalog{}, nil)
	resp, err := s.Recommend(context.Background(), winterRequest(""))
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if resp.Reason != core.ReasonNoCandidates {
		t.Errorf("Reason = %v, want %v", resp.Reason, core.ReasonNoCandidates)
	}
}

func TestRecommendCatalogUnavailable(t *testing.T) {
	s := &Recommender{
		Config:  core.DefaultConfig(),
		Catalog: &recall.Catalog{Provider: &staticCatalog{err: context.DeadlineExceeded}},
		Logger:  zap.NewNop(),
	}
	_, err := s.Recommend(context.Background(), winterRequest(""))
	if !core.IsUnavailable(err) {
		t.Errorf("目录不可用且无快照应为 UNAVAILABLE, got %v", err)
	}
}

func TestRecommendConstitutionStrategy(t *testing.T) {
	s := newRecommender(winterCatalog(), &staticProfiles{
		health: &core.HealthProfile{UserID: "u1", Constitution: core.ConstitutionYangDeficiency},
	})

	resp, err := s.Recommend(context.Background(), winterRequest(StrategyConstitution))
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if resp.Results[0].Item.ID != "warming-soup" {
		t.Errorf("体质命中条目应排第一: %v", resp.Results[0].Item.ID)
	}
	// 阳虚命中 40 + 冬季 20 + 无症状兜底 20
	if resp.Results[0].Score != 80 {
		t.Errorf("匹配分 = %v, want 80", resp.Results[0].Score)
	}
}

func TestRecommendConstitutionRequiresProfile(t *testing.T) {
	s := newRecommender(winterCatalog(), nil)
	_, err := s.Recommend(context.Background(), winterRequest(StrategyConstitution))
	if !core.IsValidation(err) {
		t.Errorf("缺健康档案应为 INVALID_INPUT, got %v", err)
	}
}

func TestRecommendValidation(t *testing.T) {
	s := newRecommender(winterCatalog(), nil)
	if _, err := s.Recommend(context.Background(), &RecommendRequest{}); !core.IsValidation(err) {
		t.Errorf("空 userID 应为 INVALID_INPUT, got %v", err)
	}
	if _, err := s.Recommend(context.Background(), nil); !core.IsValidation(err) {
		t.Errorf("nil 请求应为 INVALID_INPUT, got %v", err)
	}
}

func TestRecommendTopN(t *testing.T) {
	s := newRecommender(winterCatalog(), nil)
	req := winterRequest("")
	req.N = 1
	resp, err := s.Recommend(context.Background(), req)
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if len(resp.Results) != 1 {
		t.Errorf("结果数 = %d, want 1", len(resp.Results))
	}
}

func TestRecommendAborted(t *testing.T) {
	s := newRecommender(winterCatalog(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel() // 候选拉取仍会成功（同步目录），流水线阶段间检测到取消

	resp, err := s.Recommend(ctx, winterRequest(""))
	if err != nil {
		t.Fatalf("取消应降级为截断响应, got error %v", err)
	}
	if resp.Reason != core.ReasonAborted {
		t.Errorf("Reason = %v, want %v", resp.Reason, core.ReasonAborted)
	}
}
