package filter

import (
	"context"
	"testing"

	"github.com/tcmlife/wellrec/core"
)

func TestSafetyFilterAllergy(t *testing.T) {
	f := &SafetyFilter{}
	ctx := context.Background()

	rctx := &core.RecommendContext{
		UserID: "u1",
		Health: &core.HealthProfile{
			UserID:    "u1",
			Allergies: []string{"peanut"},
		},
	}

	tests := []struct {
		name string
		item *core.Item
		want bool
	}{
		{
			name: "食材大小写不敏感包含过敏原",
			item: &core.Item{ID: "r1", Ingredients: []string{"Peanut Butter", "honey"}},
			want: true,
		},
		{
			name: "正文包含过敏原",
			item: &core.Item{ID: "r2", Text: "Roasted PEANUT snack for winter"},
			want: true,
		},
		{
			name: "无过敏原命中",
			item: &core.Item{ID: "r3", Ingredients: []string{"ginger", "red dates"}},
			want: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := f.ShouldFilter(ctx, rctx, tt.item)
			if err != nil {
				t.Fatalf("ShouldFilter() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("ShouldFilter() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSafetyFilterContraindication(t *testing.T) {
	f := &SafetyFilter{}
	ctx := context.Background()

	rctx := &core.RecommendContext{
		Health: &core.HealthProfile{
			Contraindications: []string{"高血压", "糖尿病"},
		},
	}

	hit := &core.Item{ID: "r1", Cautions: []string{"高血压"}}
	if got, _ := f.ShouldFilter(ctx, rctx, hit); !got {
		t.Errorf("禁忌交集应被过滤")
	}

	miss := &core.Item{ID: "r2", Cautions: []string{"孕妇"}}
	if got, _ := f.ShouldFilter(ctx, rctx, miss); got {
		t.Errorf("无禁忌交集不应被过滤")
	}
}

func TestSafetyFilterNoHealthProfile(t *testing.T) {
	f := &SafetyFilter{}
	item := &core.Item{ID: "r1", Ingredients: []string{"peanut"}}

	got, err := f.ShouldFilter(context.Background(), &core.RecommendContext{}, item)
	if err != nil {
		t.Fatalf("ShouldFilter() error = %v", err)
	}
	if got {
		t.Errorf("无健康档案时不应过滤")
	}
}

func TestFilterNodeVetoIsAbsolute(t *testing.T) {
	node := &FilterNode{Filters: []Filter{&SafetyFilter{}}}
	rctx := &core.RecommendContext{
		Health: &core.HealthProfile{Allergies: []string{"peanut"}},
	}

	// 高分条目命中过敏原，依然被剔除——分数不能恢复被排除的条目
	banned := &core.Item{ID: "r1", Score: 0.99, Ingredients: []string{"Peanut Butter"}}
	safe := &core.Item{ID: "r2", Score: 0.01, Ingredients: []string{"ginger"}}

	out, err := node.Process(context.Background(), rctx, []*core.Item{banned, safe})
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if len(out) != 1 || out[0].ID != "r2" {
		t.Fatalf("期望只保留 r2, got %v", out)
	}
	if lbl, ok := banned.Labels["filtered"]; !ok || lbl.Source != "filter.safety" {
		t.Errorf("被过滤条目应带 filtered label: %v", banned.Labels)
	}
}
