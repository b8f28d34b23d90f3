package rank

import (
	"context"
	"math"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tcmlife/wellrec/core"
	"github.com/tcmlife/wellrec/pipeline"
	"github.com/tcmlife/wellrec/pkg/utils"
	"github.com/tcmlife/wellrec/similarity"
)

// WeightedScoreNode 是通用加权打分 Node：
//
//	compositeScore = Σ weight_k × component_k
//	k ∈ {content_based, collaborative, popularity, recency, seasonal}
//
// 各分量先归一到 [0,1] 再加权，权重加载时已校验总和为 1.0，
// 因此综合分也落在 [0,1]。A/B 变体的权重覆盖通过 rctx.WeightOverrides
// 请求级生效，绝不改写节点持有的配置。
//
// 候选之间相互独立，打分并发执行；同分保持候选原始顺序（稳定排序）。
// 缺失字段静默按 0 分量处理——无法打分的条目得低分而不是中断整批。
type WeightedScoreNode struct {
	Config core.Config

	// TopInterestTags 是 content-based 分量构造伪条目所取的兴趣 tag 数，默认 10。
	TopInterestTags int

	// Parallelism 是打分并发上限，0 表示不限制。
	Parallelism int
}

func (n *WeightedScoreNode) Name() string        { return "rank.weighted" }
func (n *WeightedScoreNode) Kind() pipeline.Kind { return pipeline.KindRank }

func (n *WeightedScoreNode) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if len(items) == 0 {
		return items, nil
	}

	weights := n.Config.Weights.Merged(rctx.WeightOverrides)
	now := rctx.Time()
	season := rctx.Season()
	pseudo := n.interestPseudoItem(rctx)

	eg, _ := errgroup.WithContext(ctx)
	if n.Parallelism > 0 {
		eg.SetLimit(n.Parallelism)
	}
	for _, item := range items {
		it := item
		if it == nil {
			continue
		}
		eg.Go(func() error {
			n.score(it, rctx, pseudo, weights, season, now)
			return nil
		})
	}
	// 打分函数不产生错误，Wait 只用于等待全部完成
	_ = eg.Wait()

	sort.SliceStable(items, func(i, j int) bool {
		if items[i] == nil {
			return false
		}
		if items[j] == nil {
			return true
		}
		return items[i].Score > items[j].Score
	})
	return items, nil
}

// score 计算单个候选的综合分并写入分量拆解。候选之间无共享可变状态。
func (n *WeightedScoreNode) score(
	it *core.Item,
	rctx *core.RecommendContext,
	pseudo *core.Item,
	weights core.ScoringWeights,
	season string,
	now time.Time,
) {
	content := similarity.Combined(it, pseudo, similarity.DefaultCombinedWeights())
	collaborative := similarity.WeightedOverlap(it, rctx.Interests)
	popularity := n.popularityScore(it)
	recency := n.recencyScore(it, now)
	seasonal := seasonalScore(it, season)

	it.PutComponentScore(core.ComponentContentBased, content)
	it.PutComponentScore(core.ComponentCollaborative, collaborative)
	it.PutComponentScore(core.ComponentPopularity, popularity)
	it.PutComponentScore(core.ComponentRecency, recency)
	it.PutComponentScore(core.ComponentSeasonal, seasonal)

	it.Score = weights.ContentBased*content +
		weights.Collaborative*collaborative +
		weights.Popularity*popularity +
		weights.Recency*recency +
		weights.Seasonal*seasonal
	it.PutLabel("rank_strategy", utils.Label{Value: n.Name(), Source: "rank"})
}

// interestPseudoItem 用衰减权重最高的兴趣 tag 构造伪条目，
// content-based 分量即候选与它的组合相似度。画像为空时返回 nil（分量得 0）。
func (n *WeightedScoreNode) interestPseudoItem(rctx *core.RecommendContext) *core.Item {
	if len(rctx.Interests) == 0 {
		return nil
	}
	topN := n.TopInterestTags
	if topN <= 0 {
		topN = 10
	}

	type kv struct {
		key    string
		weight float64
	}
	pairs := make([]kv, 0, len(rctx.Interests))
	for k, w := range rctx.Interests {
		pairs = append(pairs, kv{k, w})
	}
	sort.SliceStable(pairs, func(i, j int) bool {
		if pairs[i].weight != pairs[j].weight {
			return pairs[i].weight > pairs[j].weight
		}
		return pairs[i].key < pairs[j].key
	})
	if len(pairs) > topN {
		pairs = pairs[:topN]
	}

	pseudo := core.NewItem("interest:pseudo")
	for _, p := range pairs {
		pseudo.Tags = append(pseudo.Tags, p.key)
	}
	return pseudo
}

// popularityScore 对热度计数做对数归一化：log1p(views + 3*likes) / log1p(cap)。
// 对数尺度抑制头部条目的量级优势，cap 以内单调，超出按 1.0 截断。
func (n *WeightedScoreNode) popularityScore(it *core.Item) float64 {
	cap := n.Config.PopularityCap
	if cap <= 0 {
		cap = core.DefaultConfig().PopularityCap
	}
	raw := float64(it.Views) + 3*float64(it.Likes)
	if raw <= 0 {
		return 0
	}
	score := math.Log1p(raw) / math.Log1p(float64(cap))
	if score > 1 {
		return 1
	}
	return score
}

// recencyScore 是发布时间的半衰期衰减；未知发布时间按 0 分量处理。
func (n *WeightedScoreNode) recencyScore(it *core.Item, now time.Time) float64 {
	if it.PublishedAt.IsZero() {
		return 0
	}
	halfLife := n.Config.RecencyHalfLife
	if halfLife <= 0 {
		halfLife = core.DefaultConfig().RecencyHalfLife
	}
	floor := n.Config.RecencyFloor
	return similarity.ExponentialDecay(it.PublishedAt, halfLife, now, floor)
}

// seasonalScore：适用季节包含 "all" 或当前季节得满分，
// 有季节声明但不匹配得基础分 0.2，无季节声明按缺失字段得 0。
func seasonalScore(it *core.Item, season string) float64 {
	if len(it.Seasons) == 0 {
		return 0
	}
	if it.HasSeason(season) {
		return 1.0
	}
	return 0.2
}
