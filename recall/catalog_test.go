package recall

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tcmlife/wellrec/core"
	"github.com/tcmlife/wellrec/store"
)

type flakyProvider struct {
	items []*core.Item
	fail  bool
}

func (p *flakyProvider) ListCandidates(_ context.Context, _ *core.RecommendContext) ([]*core.Item, error) {
	if p.fail {
		return nil, errors.New("catalog down")
	}
	return p.items, nil
}

func TestCatalogSnapshotFallback(t *testing.T) {
	cache := store.NewMemoryStore()
	provider := &flakyProvider{items: []*core.Item{{ID: "a"}, {ID: "b"}}}
	c := &Catalog{Provider: provider, Cache: cache}
	rctx := &core.RecommendContext{UserID: "u1"}

	// 第一次成功：拉取并写快照
	items, err := c.Recall(context.Background(), rctx)
	if err != nil {
		t.Fatalf("Recall() error = %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("候选数 = %d", len(items))
	}
	if lbl, ok := items[0].Labels["recall_source"]; !ok || lbl.Value != "catalog" {
		t.Errorf("应带 recall_source=catalog 标签: %v", items[0].Labels)
	}

	// 目录故障：降级到快照
	provider.fail = true
	items, err = c.Recall(context.Background(), rctx)
	if err != nil {
		t.Fatalf("快照降级不应报错: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("快照候选数 = %d", len(items))
	}
	if lbl, ok := items[0].Labels["recall_source"]; !ok || lbl.Value != "catalog_snapshot" {
		t.Errorf("快照来源应可观测: %v", items[0].Labels)
	}
}

func TestCatalogUnavailableWithoutSnapshot(t *testing.T) {
	c := &Catalog{Provider: &flakyProvider{fail: true}}
	_, err := c.Recall(context.Background(), &core.RecommendContext{})
	if !core.IsUnavailable(err) {
		t.Errorf("无快照应为 UNAVAILABLE, got %v", err)
	}
}

type staticSource struct {
	name  string
	items []*core.Item
	err   error
	delay time.Duration
}

func (s *staticSource) Name() string { return s.name }
func (s *staticSource) Recall(ctx context.Context, _ *core.RecommendContext) ([]*core.Item, error) {
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return s.items, s.err
}

func TestFanoutDedupKeepsSourceOrder(t *testing.T) {
	f := &Fanout{
		Dedup: true,
		Sources: []Source{
			&staticSource{name: "catalog", items: []*core.Item{{ID: "a"}, {ID: "b"}}},
			&staticSource{name: "hot", items: []*core.Item{{ID: "b"}, {ID: "c"}}},
		},
	}

	out, err := f.Process(context.Background(), &core.RecommendContext{}, nil)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	want := []string{"a", "b", "c"}
	if len(out) != len(want) {
		t.Fatalf("候选数 = %d, want %d", len(out), len(want))
	}
	for i, id := range want {
		if out[i].ID != id {
			t.Errorf("合并顺序应按源声明顺序确定: got %v at %d", out[i].ID, i)
		}
	}
	// 重复 ID 保留先出现的，但两个来源的标签都应累积
	if lbl := out[1].Labels["recall_source"]; lbl.Value != "catalog|hot" {
		t.Errorf("recall_source = %v, want catalog|hot", lbl.Value)
	}
}

func TestFanoutIsolatesSourceFailure(t *testing.T) {
	f := &Fanout{
		Timeout: 20 * time.Millisecond,
		Sources: []Source{
			&staticSource{name: "bad", err: errors.New("boom")},
			&staticSource{name: "slow", delay: time.Second, items: []*core.Item{{ID: "x"}}},
			&staticSource{name: "ok", items: []*core.Item{{ID: "a"}}},
		},
	}

	out, err := f.Process(context.Background(), &core.RecommendContext{}, nil)
	if err != nil {
		t.Fatalf("单源故障不应中断: %v", err)
	}
	if len(out) != 1 || out[0].ID != "a" {
		t.Errorf("只应返回健康源的候选: %v", out)
	}
}

func TestHotRecall(t *testing.T) {
	kv := store.NewMemoryStore()
	ctx := context.Background()
	_ = kv.ZIncrBy(ctx, "hot:items", 5, "r1")
	_ = kv.ZIncrBy(ctx, "hot:items", 12, "r2")
	_ = kv.ZIncrBy(ctx, "hot:items", 1, "r3")

	h := &Hot{Store: kv, Key: "hot:items", TopN: 2}
	items, err := h.Recall(ctx, &core.RecommendContext{})
	if err != nil {
		t.Fatalf("Recall() error = %v", err)
	}
	if len(items) != 2 || items[0].ID != "r2" || items[1].ID != "r1" {
		t.Errorf("应按热度降序取 TopN: %v", items)
	}

	// 空榜不是错误
	empty := &Hot{Store: kv, Key: "hot:nothing"}
	items, err = empty.Recall(ctx, &core.RecommendContext{})
	if err != nil || items != nil {
		t.Errorf("空榜应返回 (nil, nil): %v %v", items, err)
	}
}
