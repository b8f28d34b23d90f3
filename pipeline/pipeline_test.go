package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/tcmlife/wellrec/core"
)

type stubNode struct {
	name string
	kind Kind
	fn   func(items []*core.Item) ([]*core.Item, error)
}

func (n *stubNode) Name() string { return n.name }
func (n *stubNode) Kind() Kind   { return n.kind }
func (n *stubNode) Process(_ context.Context, _ *core.RecommendContext, items []*core.Item) ([]*core.Item, error) {
	return n.fn(items)
}

func TestPipelineRun(t *testing.T) {
	p := &Pipeline{Nodes: []Node{
		&stubNode{name: "supply", kind: KindRecall, fn: func(_ []*core.Item) ([]*core.Item, error) {
			return []*core.Item{{ID: "a"}, {ID: "b"}, {ID: "c"}}, nil
		}},
		&stubNode{name: "drop-first", kind: KindFilter, fn: func(items []*core.Item) ([]*core.Item, error) {
			return items[1:], nil
		}},
	}}

	out, err := p.Run(context.Background(), &core.RecommendContext{}, nil)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(out) != 2 || out[0].ID != "b" {
		t.Errorf("阶段应顺序生效: %v", out)
	}
}

func TestPipelineRunPartialOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	p := &Pipeline{Nodes: []Node{
		&stubNode{name: "supply", kind: KindRecall, fn: func(_ []*core.Item) ([]*core.Item, error) {
			cancel() // 第一阶段完成后请求被取消
			return []*core.Item{{ID: "a"}}, nil
		}},
		&stubNode{name: "never", kind: KindRank, fn: func(_ []*core.Item) ([]*core.Item, error) {
			t.Fatal("取消后的阶段不应执行")
			return nil, nil
		}},
	}}

	out, err := p.Run(ctx, &core.RecommendContext{}, nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	// 已完成阶段的中间结果要保留，供调用方降级
	if len(out) != 1 || out[0].ID != "a" {
		t.Errorf("应返回部分结果: %v", out)
	}
}

func TestPipelineRunNodeError(t *testing.T) {
	wantErr := errors.New("boom")
	p := &Pipeline{Nodes: []Node{
		&stubNode{name: "supply", kind: KindRecall, fn: func(_ []*core.Item) ([]*core.Item, error) {
			return []*core.Item{{ID: "a"}}, nil
		}},
		&stubNode{name: "fail", kind: KindRank, fn: func(_ []*core.Item) ([]*core.Item, error) {
			return nil, wantErr
		}},
	}}

	out, err := p.Run(context.Background(), &core.RecommendContext{}, nil)
	if !errors.Is(err, wantErr) {
		t.Fatalf("err = %v", err)
	}
	if len(out) != 1 {
		t.Errorf("出错时应返回上一阶段结果: %v", out)
	}
}
