package recall

import (
	"context"
	"encoding/json"

	"github.com/tcmlife/wellrec/core"
	"github.com/tcmlife/wellrec/pipeline"
	"github.com/tcmlife/wellrec/pkg/utils"
)

// CatalogProvider 是外部内容目录的边界接口。条目带着预计算的
// 向量/标签/类别/热度计数/发布时间进入核心，核心内部不再做阻塞 I/O。
type CatalogProvider interface {
	// ListCandidates 拉取本次请求的候选条目
	ListCandidates(ctx context.Context, rctx *core.RecommendContext) ([]*core.Item, error)
}

// Catalog 是目录候选源：请求边界处一次性拉取候选集。
//
// 降级策略：目录不可用时回退到 Store 中最近一次成功的快照；
// 快照也没有时返回 UNAVAILABLE（DependencyError），由调用方转译为不可用响应。
// Catalog 同时实现了 Source 和 Node 接口，可以直接在 Pipeline 中使用。
type Catalog struct {
	Provider CatalogProvider

	// Cache 是快照存储（可选）；CacheKey 默认 "catalog:snapshot"。
	Cache    core.Store
	CacheKey string

	// CacheTTL 是快照有效期（秒），0 表示不过期。
	CacheTTL int
}

func (r *Catalog) Name() string        { return "recall.catalog" }
func (r *Catalog) Kind() pipeline.Kind { return pipeline.KindRecall }

// Process 实现 Node 接口，直接调用 Recall
func (r *Catalog) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	_ []*core.Item,
) ([]*core.Item, error) {
	return r.Recall(ctx, rctx)
}

// Recall 实现 Source 接口
func (r *Catalog) Recall(
	ctx context.Context,
	rctx *core.RecommendContext,
) ([]*core.Item, error) {
	if r.Provider == nil {
		return r.fromSnapshot(ctx)
	}

	items, err := r.Provider.ListCandidates(ctx, rctx)
	if err != nil {
		// 目录不可用：降级到最近一次快照
		return r.fromSnapshot(ctx)
	}

	for _, it := range items {
		if it == nil {
			continue
		}
		it.PutLabel("recall_source", utils.Label{Value: "catalog", Source: "recall"})
	}
	r.saveSnapshot(ctx, items)
	return items, nil
}

func (r *Catalog) cacheKey() string {
	if r.CacheKey != "" {
		return r.CacheKey
	}
	return "catalog:snapshot"
}

func (r *Catalog) saveSnapshot(ctx context.Context, items []*core.Item) {
	if r.Cache == nil || len(items) == 0 {
		return
	}
	data, err := json.Marshal(items)
	if err != nil {
		return
	}
	// 快照写失败只影响降级能力，不影响本次请求
	_ = r.Cache.Set(ctx, r.cacheKey(), data, r.CacheTTL)
}

func (r *Catalog) fromSnapshot(ctx context.Context) ([]*core.Item, error) {
	unavailable := core.NewDomainError(core.ModuleCatalog, core.ErrorCodeUnavailable,
		"catalog unavailable and no snapshot cached")
	if r.Cache == nil {
		return nil, unavailable
	}
	data, err := r.Cache.Get(ctx, r.cacheKey())
	if err != nil {
		return nil, unavailable
	}
	var items []*core.Item
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, unavailable
	}
	for _, it := range items {
		if it == nil {
			continue
		}
		it.PutLabel("recall_source", utils.Label{Value: "catalog_snapshot", Source: "recall"})
	}
	return items, nil
}
