package rank

import (
	"context"
	"testing"
	"time"

	"github.com/tcmlife/wellrec/core"
)

func TestConstitutionScoreEndToEnd(t *testing.T) {
	// 阳虚体质、无症状、冬季：
	// 命中体质 40 + 命中季节 20 + 无症状兜底 20 = 80
	// 仅 balanced 兜底的候选 ≤ 20 + 20 + 20 = 60
	node := &ConstitutionScoreNode{}
	rctx := &core.RecommendContext{
		UserID: "u1",
		Now:    time.Date(2025, 12, 15, 0, 0, 0, 0, time.UTC),
		Health: &core.HealthProfile{
			UserID:       "u1",
			Constitution: core.ConstitutionYangDeficiency,
		},
	}

	matched := &core.Item{
		ID:          "warming-soup",
		SuitableFor: []string{"yang_deficient"}, // 内容源的另一种拼写也应命中
		BestSeason:  "winter",
	}
	fallback := &core.Item{
		ID:          "plain-congee",
		SuitableFor: []string{"balanced"},
		BestSeason:  "winter",
	}

	out, err := node.Process(context.Background(), rctx, []*core.Item{fallback, matched})
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	if out[0].ID != "warming-soup" {
		t.Fatalf("体质命中者应排第一: %v", out[0].ID)
	}
	if out[0].Score != 80 {
		t.Errorf("匹配分 = %v, want 80", out[0].Score)
	}
	if out[1].Score != 60 {
		t.Errorf("兜底候选分 = %v, want 60", out[1].Score)
	}

	if out[0].ComponentScores[ComponentConstitution] != 40 {
		t.Errorf("体质分量 = %v, want 40", out[0].ComponentScores[ComponentConstitution])
	}
	if out[0].ComponentScores[ComponentSeason] != 20 {
		t.Errorf("季节分量 = %v, want 20", out[0].ComponentScores[ComponentSeason])
	}
	if out[0].ComponentScores[ComponentSymptom] != 20 {
		t.Errorf("症状兜底分量 = %v, want 20", out[0].ComponentScores[ComponentSymptom])
	}
}

func TestConstitutionScoreSymptomFraction(t *testing.T) {
	node := &ConstitutionScoreNode{}
	rctx := &core.RecommendContext{
		Now: time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC),
		Health: &core.HealthProfile{
			Constitution: core.ConstitutionQiDeficiency,
			Symptoms:     []string{"乏力", "失眠", "食欲不振", "心悸"},
		},
	}

	it := &core.Item{
		ID:          "r1",
		SuitableFor: []string{"qi_deficiency"},
		BestSeason:  "winter", // 非当季
		Symptoms:    []string{"乏力", "失眠"},
	}

	out, err := node.Process(context.Background(), rctx, []*core.Item{it})
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	// 体质 40 + 季节 0 + 症状 40×(2/4)=20 = 60
	if out[0].Score != 60 {
		t.Errorf("匹配分 = %v, want 60", out[0].Score)
	}
}

func TestConstitutionScoreRequiresHealthProfile(t *testing.T) {
	node := &ConstitutionScoreNode{}
	_, err := node.Process(context.Background(), &core.RecommendContext{}, []*core.Item{{ID: "r1"}})
	if err == nil {
		t.Fatal("缺健康档案应返回错误")
	}
	if !core.IsValidation(err) {
		t.Errorf("应为 INVALID_INPUT, got %v", err)
	}
}
