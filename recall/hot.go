package recall

import (
	"context"

	"github.com/tcmlife/wellrec/core"
	"github.com/tcmlife/wellrec/pipeline"
	"github.com/tcmlife/wellrec/pkg/utils"
)

// Hot 是热门候选源：从有序集合读取热度 TopN 的条目 ID。
// 热度分数由 feedback 侧以 ZIncrBy 累加（view +1 / like +3）。
// 冷启动（画像为空的新用户）时作为目录候选的补充。
// Hot 同时实现了 Source 和 Node 接口。
type Hot struct {
	Store core.KeyValueStore
	Key   string // 存储 key，例如 "hot:items"
	TopN  int64  // 读取条数，默认 100

	// Lookup 按 ID 补全条目元信息（可选）；为空时产出只带 ID 的占位条目。
	Lookup func(ctx context.Context, id string) (*core.Item, error)
}

func (r *Hot) Name() string        { return "recall.hot" }
func (r *Hot) Kind() pipeline.Kind { return pipeline.KindRecall }

// Process 实现 Node 接口，直接调用 Recall
func (r *Hot) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	_ []*core.Item,
) ([]*core.Item, error) {
	return r.Recall(ctx, rctx)
}

// Recall 实现 Source 接口
func (r *Hot) Recall(
	ctx context.Context,
	_ *core.RecommendContext,
) ([]*core.Item, error) {
	if r.Store == nil || r.Key == "" {
		return nil, nil
	}

	topN := r.TopN
	if topN <= 0 {
		topN = 100
	}
	ids, err := r.Store.ZRange(ctx, r.Key, 0, topN-1)
	if err != nil || len(ids) == 0 {
		// 热门榜为空不是错误，只是没有补充候选
		return nil, nil
	}

	out := make([]*core.Item, 0, len(ids))
	for _, id := range ids {
		var it *core.Item
		if r.Lookup != nil {
			it, err = r.Lookup(ctx, id)
			if err != nil || it == nil {
				continue
			}
		} else {
			it = core.NewItem(id)
		}
		it.PutLabel("recall_source", utils.Label{Value: "hot", Source: "recall"})
		out = append(out, it)
	}
	return out, nil
}
