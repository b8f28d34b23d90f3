package rerank

import (
	"context"

	"github.com/tcmlife/wellrec/core"
	"github.com/tcmlife/wellrec/pipeline"
)

// TopNNode 是 Top-N 截断节点，在排序后截取前 N 个条目。
// 通常放在多样性重排之后，作为流水线的最后一个结果收口。
//
// 示例：
//
//	pipeline := &pipeline.Pipeline{
//	    Nodes: []pipeline.Node{
//	        &rank.WeightedScoreNode{...},  // 排序
//	        &rerank.Diversity{...},        // 多样性重排
//	        &rerank.TopNNode{N: 10},       // 截取 Top 10
//	    },
//	}
type TopNNode struct {
	// N 要保留的条目数量（Top N）
	// 如果 N <= 0，则返回所有条目（不截断）
	// 如果 N > len(items)，则返回所有条目
	N int
}

func (n *TopNNode) Name() string {
	return "rerank.topn"
}

func (n *TopNNode) Kind() pipeline.Kind {
	return pipeline.KindReRank
}

func (n *TopNNode) Process(
	_ context.Context,
	_ *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if n.N <= 0 {
		return items, nil
	}
	if len(items) <= n.N {
		return items, nil
	}
	return items[:n.N], nil
}
