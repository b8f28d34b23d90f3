package recall

import (
	"context"

	"github.com/tcmlife/wellrec/core"
)

// Source 是候选供给源的抽象：给定请求上下文，产出一批候选条目。
// 目录、热门榜、外部 RPC 等都以 Source 形态接入，经 Fanout 并发合并。
type Source interface {
	Name() string
	Recall(ctx context.Context, rctx *core.RecommendContext) ([]*core.Item, error)
}
