package pipeline

import (
	"context"

	"github.com/tcmlife/wellrec/core"
)

// Pipeline 是推荐核心的顶层抽象：把推荐逻辑拆成可组合的 Node 链。
// 典型链路：候选供给 → 安全过滤 → 打分排序 → 多样性重排 → TopN。
type Pipeline struct {
	Nodes []Node
}

// Run 顺序执行 Node 链。
//
// 调用方超时通过 ctx 生效，在阶段之间检查：一旦 ctx 结束，
// 返回当前已计算出的中间结果与 ctx.Err()，由调用方决定降级策略
// （已有排序结果则直接返回，尚未打出任何分数则报依赖不可用）。
func (p *Pipeline) Run(
	ctx context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	cur := items
	for _, node := range p.Nodes {
		select {
		case <-ctx.Done():
			return cur, ctx.Err()
		default:
		}
		next, err := node.Process(ctx, rctx, cur)
		if err != nil {
			return cur, err
		}
		cur = next
	}
	return cur, nil
}
