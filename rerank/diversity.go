package rerank

import (
	"context"
	"fmt"
	"math"

	"github.com/tcmlife/wellrec/core"
	"github.com/tcmlife/wellrec/pipeline"
	"github.com/tcmlife/wellrec/pkg/utils"
)

// Diversity 是多样性重排 Node：贪心遍历已排序候选，
// 每个类别最多保留 MaxPerCategory 个，超额的暂缓；
// 若限额后不足 TopN，再按原序从暂缓队列补齐（多样性让位于数量）。
//
// 重排完成后在前 TopN 窗口上计算 tag 分布的归一化熵作为多样性得分，
// 写入 rctx 标签 "diversity_score"；低于 MinDiversityScore 且开启
// EnforceMinimumDiversity 时仅追加 "low_diversity" 标记，不再次改序。
type Diversity struct {
	Config core.DiversityConfig

	// TopN 是补齐与评估多样性的窗口大小，<=0 时取全部。
	TopN int
}

func (n *Diversity) Name() string {
	return "rerank.diversity"
}

func (n *Diversity) Kind() pipeline.Kind {
	return pipeline.KindReRank
}

func (n *Diversity) Process(
	_ context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if len(items) == 0 {
		return items, nil
	}

	maxPer := n.Config.MaxPerCategory
	if maxPer <= 0 {
		maxPer = core.DefaultConfig().Diversity.MaxPerCategory
	}
	topN := n.TopN
	if topN <= 0 {
		topN = len(items)
	}

	counts := make(map[string]int, 16)
	out := make([]*core.Item, 0, len(items))
	deferred := make([]*core.Item, 0)

	for _, it := range items {
		if it == nil {
			continue
		}
		if exceedsCap(it, counts, maxPer) {
			deferred = append(deferred, it)
			continue
		}
		for _, c := range it.Categories {
			counts[c]++
		}
		out = append(out, it)
	}

	// 限额造成的缺口按原始排名补齐
	for _, it := range deferred {
		if len(out) >= topN {
			break
		}
		out = append(out, it)
	}

	window := out
	if len(window) > topN {
		window = window[:topN]
	}
	score := DiversityScore(window)
	if rctx != nil {
		rctx.PutLabel("diversity_score",
			utils.Label{Value: fmt.Sprintf("%.4f", score), Source: n.Name()})
		if n.Config.EnforceMinimumDiversity && score < n.Config.MinDiversityScore {
			rctx.PutLabel("low_diversity",
				utils.Label{Value: "true", Source: n.Name()})
		}
	}

	return out, nil
}

// exceedsCap 判断接纳该候选是否会使其任一类别超过限额。
// 无类别声明的候选不受限额约束。
func exceedsCap(it *core.Item, counts map[string]int, maxPer int) bool {
	for _, c := range it.Categories {
		if counts[c] >= maxPer {
			return true
		}
	}
	return false
}

// DiversityScore 计算条目 tag 分布的香农熵并按 log2(去重 tag 数) 归一。
// 所有条目共享同一个 tag 时为 0，每个条目 tag 全不同时为 1；
// 少于两个去重 tag 时按 0 处理（熵无意义）。
func DiversityScore(items []*core.Item) float64 {
	freq := make(map[string]int, 32)
	total := 0
	for _, it := range items {
		if it == nil {
			continue
		}
		for _, tag := range it.Tags {
			freq[tag]++
			total++
		}
	}
	if len(freq) < 2 || total == 0 {
		return 0
	}

	entropy := 0.0
	for _, c := range freq {
		p := float64(c) / float64(total)
		entropy -= p * math.Log2(p)
	}
	return entropy / math.Log2(float64(len(freq)))
}
