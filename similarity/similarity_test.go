package similarity

import (
	"math"
	"testing"
	"time"

	"github.com/tcmlife/wellrec/core"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestCosine(t *testing.T) {
	tests := []struct {
		name string
		v1   []float64
		v2   []float64
		want float64
	}{
		{"自身相似度为 1", []float64{1, 2, 3}, []float64{1, 2, 3}, 1},
		{"反向向量为 -1", []float64{1, 2, 3}, []float64{-1, -2, -3}, -1},
		{"正交向量为 0", []float64{1, 0}, []float64{0, 1}, 0},
		{"零向量得 0", []float64{0, 0, 0}, []float64{1, 2, 3}, 0},
		{"长度不匹配得 0 而非报错", []float64{1, 2}, []float64{1, 2, 3}, 0},
		{"空向量得 0", nil, nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Cosine(tt.v1, tt.v2); !almostEqual(got, tt.want) {
				t.Errorf("Cosine() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestJaccard(t *testing.T) {
	tests := []struct {
		name string
		a    []string
		b    []string
		want float64
	}{
		{"自身相似度为 1", []string{"补气", "健脾"}, []string{"补气", "健脾"}, 1},
		{"空集合得 0", []string{"补气"}, nil, 0},
		{"半数重合", []string{"a", "b"}, []string{"b", "c"}, 1.0 / 3.0},
		{"无重合得 0", []string{"a"}, []string{"b"}, 0},
		{"重复元素只计一次", []string{"a", "a", "b"}, []string{"a", "b"}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Jaccard(tt.a, tt.b); !almostEqual(got, tt.want) {
				t.Errorf("Jaccard() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExponentialDecay(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	halfLife := 30 * 24 * time.Hour

	if got := ExponentialDecay(now, halfLife, now, 0.01); got != 1.0 {
		t.Errorf("当前时刻应为 1.0, got %v", got)
	}

	oneHalfLife := ExponentialDecay(now.Add(-halfLife), halfLife, now, 0.01)
	if math.Abs(oneHalfLife-0.5) > 1e-9 {
		t.Errorf("一个半衰期应约为 0.5, got %v", oneHalfLife)
	}

	// 久远的时间不会低于下限
	ancient := ExponentialDecay(now.AddDate(-30, 0, 0), halfLife, now, 0.01)
	if ancient < 0.01 {
		t.Errorf("衰减不应低于下限 0.01, got %v", ancient)
	}

	// 未来时间（时钟漂移）按 1.0 处理
	if got := ExponentialDecay(now.Add(time.Hour), halfLife, now, 0.01); got != 1.0 {
		t.Errorf("未来时间应为 1.0, got %v", got)
	}

	// 单调性：无新事件时权重不增
	w1 := ExponentialDecay(now.Add(-24*time.Hour), halfLife, now, 0.01)
	w2 := ExponentialDecay(now.Add(-24*time.Hour), halfLife, now.Add(24*time.Hour), 0.01)
	if w2 > w1 {
		t.Errorf("权重应随时间非增: t1=%v t2=%v", w1, w2)
	}
}

func TestCombined(t *testing.T) {
	w := DefaultCombinedWeights()

	full := &core.Item{
		Tags:       []string{"补气", "食疗"},
		Categories: []string{"食谱"},
		Vector:     []float64{0.6, 0.8},
	}

	// 元数据完全重合时组合相似度为 1.0
	if got := Combined(full, full, w); !almostEqual(got, 1.0) {
		t.Errorf("Combined(item, item) = %v, want 1.0", got)
	}

	// 缺失分量从分子分母同时剔除：只有 tags 可比时退化为纯 Jaccard
	tagsOnly := &core.Item{Tags: []string{"补气", "食疗"}}
	if got := Combined(full, tagsOnly, w); !almostEqual(got, 1.0) {
		t.Errorf("仅 tags 可比且完全重合应为 1.0, got %v", got)
	}

	// 无公共分量得 0
	vectorOnly := &core.Item{Vector: []float64{1, 0}}
	if got := Combined(tagsOnly, vectorOnly, w); got != 0 {
		t.Errorf("无公共分量应为 0, got %v", got)
	}

	if got := Combined(nil, full, w); got != 0 {
		t.Errorf("nil 条目应为 0, got %v", got)
	}
}

func TestWeightedOverlap(t *testing.T) {
	item := &core.Item{
		Tags:       []string{"补气", "健脾"},
		Categories: []string{"食谱"},
	}

	interests := map[string]float64{
		"补气": 3.0,
		"食谱": 1.0,
		"安神": 2.0,
	}

	// 命中 补气(3) + 食谱(1)，总权重 6
	got := WeightedOverlap(item, interests)
	if !almostEqual(got, 4.0/6.0) {
		t.Errorf("WeightedOverlap() = %v, want %v", got, 4.0/6.0)
	}

	if got := WeightedOverlap(item, nil); got != 0 {
		t.Errorf("空画像应为 0, got %v", got)
	}
}
