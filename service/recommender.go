// Package service 是推荐核心的组装层：在请求边界一次性装配
// 健康档案、兴趣画像与 A/B 命中，然后驱动 recall → filter → rank →
// rerank 的流水线，把结果翻译成带原因码的响应。
package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/tcmlife/wellrec/abtest"
	"github.com/tcmlife/wellrec/core"
	"github.com/tcmlife/wellrec/filter"
	"github.com/tcmlife/wellrec/interest"
	"github.com/tcmlife/wellrec/pipeline"
	"github.com/tcmlife/wellrec/rank"
	"github.com/tcmlife/wellrec/recall"
	"github.com/tcmlife/wellrec/rerank"
)

// 打分策略。
const (
	StrategyWeighted     = "weighted"     // 通用加权打分（默认）
	StrategyConstitution = "constitution" // 体质匹配打分，要求健康档案
)

// ProfileSource 是健康档案与兴趣种子的来源边界（如 Feature Store）。
type ProfileSource interface {
	Load(ctx context.Context, userID string) (*core.HealthProfile, map[string]float64, error)
}

// RecommendRequest 是一次推荐请求。
type RecommendRequest struct {
	UserID string
	Scene  string

	// N 是返回条数，<=0 时用配置默认值。
	N int

	// Strategy 是打分策略，空值按 StrategyWeighted 处理。
	Strategy string

	// Rules 是本次请求附加的过滤规则表达式（可选）。
	Rules []string

	// Now 是时间基准，零值用 time.Now()；测试与回放注入用。
	Now time.Time
}

// Result 是响应中的单条推荐。
type Result struct {
	Item            *core.Item         `json:"item"`
	Score           float64            `json:"score"`
	ComponentScores map[string]float64 `json:"component_scores,omitempty"`
}

// RecommendationResponse 是推荐响应。空结果不是错误，
// Reason 区分"没有候选"“全被过滤”与"超时截断"。
type RecommendationResponse struct {
	Season         string   `json:"season"`
	Results        []Result `json:"results"`
	AppliedVariant string   `json:"applied_variant,omitempty"`
	Reason         string   `json:"reason"`
	DiversityScore float64  `json:"diversity_score"`
	LowDiversity   bool     `json:"low_diversity,omitempty"`
}

// Recommender 是推荐服务门面。所有依赖显式注入，零值字段按可选降级：
// 没有 Profiles 就不带健康档案，没有 Tracker 就没有协同分量，
// 只有 Catalog 是必需的候选来源。
type Recommender struct {
	Config core.Config

	Catalog *recall.Catalog
	Hot     *recall.Hot

	Tracker  *interest.Tracker
	Profiles ProfileSource

	Allocator *abtest.Allocator
	Tests     []*abtest.ABTest

	Logger *zap.Logger
}

func (s *Recommender) logger() *zap.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return zap.NewNop()
}

// Recommend 执行一次完整的推荐。
func (s *Recommender) Recommend(ctx context.Context, req *RecommendRequest) (*RecommendationResponse, error) {
	if req == nil || req.UserID == "" {
		return nil, core.NewDomainError(core.ModulePipeline, core.ErrorCodeInvalidInput,
			"user id is required")
	}
	if s.Catalog == nil {
		return nil, core.NewDomainError(core.ModuleCatalog, core.ErrorCodeUnavailable,
			"catalog source not configured")
	}
	start := time.Now()

	rctx := &core.RecommendContext{
		UserID: req.UserID,
		Scene:  req.Scene,
		Now:    req.Now,
	}
	season := rctx.Season()

	s.assembleProfile(ctx, rctx)
	variant := s.applyTests(ctx, rctx)

	strategy := req.Strategy
	if strategy == "" {
		strategy = StrategyWeighted
	}
	if strategy == StrategyConstitution && rctx.Health == nil {
		return nil, core.NewDomainError(core.ModuleScoring, core.ErrorCodeInvalidInput,
			"constitution scoring requires a health profile")
	}

	// 候选：目录为主，热门榜补充。目录不可用且无快照时整个请求不可用。
	candidates, err := s.recall(ctx, rctx)
	if err != nil {
		return nil, err
	}
	resp := &RecommendationResponse{Season: season, AppliedVariant: variant}
	if len(candidates) == 0 {
		resp.Reason = core.ReasonNoCandidates
		s.logRequest(req, resp, start, strategy)
		return resp, nil
	}

	topN := req.N
	if topN <= 0 {
		topN = s.Config.TopN
	}
	p := &pipeline.Pipeline{Nodes: []pipeline.Node{
		s.filterNode(req.Rules),
		s.rankNode(strategy),
		&rerank.Diversity{Config: s.Config.Diversity, TopN: topN},
		&rerank.TopNNode{N: topN},
	}}

	items, err := p.Run(ctx, rctx, candidates)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			// 超时/取消：已完成阶段的结果照常返回，原因码标记截断
			s.fill(resp, rctx, items, topN)
			resp.Reason = core.ReasonAborted
			s.logRequest(req, resp, start, strategy)
			return resp, nil
		}
		return nil, err
	}
	if len(items) == 0 {
		resp.Reason = core.ReasonNoEligibleItems
		s.logRequest(req, resp, start, strategy)
		return resp, nil
	}

	s.fill(resp, rctx, items, topN)
	resp.Reason = core.ReasonOK
	s.logRequest(req, resp, start, strategy)
	return resp, nil
}

// assembleProfile 装配健康档案与兴趣画像，全部 best-effort：
// 画像来源故障降级为匿名推荐，不阻断请求。
func (s *Recommender) assembleProfile(ctx context.Context, rctx *core.RecommendContext) {
	var seeds map[string]float64
	if s.Profiles != nil {
		health, sd, err := s.Profiles.Load(ctx, rctx.UserID)
		if err != nil {
			s.logger().Warn("profile load failed, continuing without health profile",
				zap.String("user_id", rctx.UserID), zap.Error(err))
		} else {
			rctx.Health = health
			seeds = sd
		}
	}

	interests := make(map[string]float64, 16)
	for tag, w := range seeds {
		interests[tag] = w
	}
	if s.Tracker != nil {
		vec, err := s.Tracker.Vector(ctx, rctx.UserID, rctx.Time())
		if err != nil {
			s.logger().Warn("interest vector load failed",
				zap.String("user_id", rctx.UserID), zap.Error(err))
		}
		// 在线累积优先于离线种子
		for tag, w := range vec {
			if w > interests[tag] {
				interests[tag] = w
			}
		}
	}
	if len(interests) > 0 {
		rctx.Interests = interests
	}
}

// applyTests 按声明顺序套用实验，第一个命中的变体生效。
func (s *Recommender) applyTests(ctx context.Context, rctx *core.RecommendContext) string {
	if s.Allocator == nil {
		return ""
	}
	for _, t := range s.Tests {
		if v := s.Allocator.Apply(ctx, rctx, t); v != nil {
			return v.Name
		}
	}
	return ""
}

func (s *Recommender) recall(ctx context.Context, rctx *core.RecommendContext) ([]*core.Item, error) {
	candidates, err := s.Catalog.Recall(ctx, rctx)
	if err != nil {
		return nil, err
	}
	if s.Hot == nil {
		return candidates, nil
	}

	seen := make(map[string]bool, len(candidates))
	for _, it := range candidates {
		if it != nil {
			seen[it.ID] = true
		}
	}
	extra, err := s.Hot.Recall(ctx, rctx)
	if err != nil {
		// 热门榜只是补充，失败不影响主候选
		s.logger().Warn("hot recall failed", zap.Error(err))
		return candidates, nil
	}
	for _, it := range extra {
		if it != nil && !seen[it.ID] {
			seen[it.ID] = true
			candidates = append(candidates, it)
		}
	}
	return candidates, nil
}

func (s *Recommender) filterNode(rules []string) pipeline.Node {
	filters := []filter.Filter{&filter.SafetyFilter{}}
	if len(rules) > 0 {
		filters = append(filters, &filter.RuleFilter{Rules: rules})
	}
	return &filter.FilterNode{Filters: filters}
}

func (s *Recommender) rankNode(strategy string) pipeline.Node {
	if strategy == StrategyConstitution {
		return &rank.ConstitutionScoreNode{}
	}
	return &rank.WeightedScoreNode{Config: s.Config}
}

func (s *Recommender) fill(resp *RecommendationResponse, rctx *core.RecommendContext, items []*core.Item, topN int) {
	if len(items) > topN {
		items = items[:topN]
	}
	resp.Results = make([]Result, 0, len(items))
	for _, it := range items {
		if it == nil {
			continue
		}
		resp.Results = append(resp.Results, Result{
			Item:            it,
			Score:           it.Score,
			ComponentScores: it.ComponentScores,
		})
	}
	resp.DiversityScore = rerank.DiversityScore(items)
	if _, ok := rctx.GetLabel("low_diversity"); ok {
		resp.LowDiversity = true
	}
}

func (s *Recommender) logRequest(req *RecommendRequest, resp *RecommendationResponse, start time.Time, strategy string) {
	s.logger().Info("recommend",
		zap.String("user_id", req.UserID),
		zap.String("scene", req.Scene),
		zap.String("strategy", strategy),
		zap.String("variant", resp.AppliedVariant),
		zap.String("reason", resp.Reason),
		zap.Int("results", len(resp.Results)),
		zap.Float64("diversity", resp.DiversityScore),
		zap.Duration("elapsed", time.Since(start)))
}
