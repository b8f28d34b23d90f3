package rank

import (
	"context"
	"sort"

	"github.com/tcmlife/wellrec/core"
	"github.com/tcmlife/wellrec/pipeline"
	"github.com/tcmlife/wellrec/pkg/utils"
)

// 体质匹配模式的分量名。
const (
	ComponentConstitution = "constitution"
	ComponentSeason       = "season"
	ComponentSymptom      = "symptom"
)

// ConstitutionScoreNode 是健康档案驱动的打分 Node（体质匹配模式），
// 直接产出 0–100 的匹配分，与通用加权模式是同一候选集上的两种可选策略，
// 不做叠加：
//
//   - 体质：适宜体质包含用户体质 +40；仅命中 "balanced" 兜底 +20
//   - 季节：最佳季节为 "all" 或当前季节 +20
//   - 症状：+40 ×（候选可调理的用户症状占比）；用户未报告症状时 +20 兜底
//
// 此模式要求请求携带健康档案，缺失时返回 INVALID_INPUT。
type ConstitutionScoreNode struct{}

func (n *ConstitutionScoreNode) Name() string        { return "rank.constitution" }
func (n *ConstitutionScoreNode) Kind() pipeline.Kind { return pipeline.KindRank }

func (n *ConstitutionScoreNode) Process(
	_ context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if rctx == nil || rctx.Health == nil {
		return nil, core.NewDomainError(core.ModuleScoring, core.ErrorCodeInvalidInput,
			"constitution scoring requires a health profile")
	}
	if len(items) == 0 {
		return items, nil
	}

	season := rctx.Season()
	for _, it := range items {
		if it == nil {
			continue
		}
		n.score(it, rctx.Health, season)
		it.PutLabel("rank_strategy", utils.Label{Value: n.Name(), Source: "rank"})
	}

	sort.SliceStable(items, func(i, j int) bool {
		if items[i] == nil {
			return false
		}
		if items[j] == nil {
			return true
		}
		return items[i].Score > items[j].Score
	})
	return items, nil
}

func (n *ConstitutionScoreNode) score(it *core.Item, health *core.HealthProfile, season string) {
	constitution := constitutionCredit(it, health.Constitution)
	seasonScore := 0.0
	if it.BestSeason == "all" || it.BestSeason == season {
		seasonScore = 20
	}
	symptom := symptomCredit(it, health.Symptoms)

	it.PutComponentScore(ComponentConstitution, constitution)
	it.PutComponentScore(ComponentSeason, seasonScore)
	it.PutComponentScore(ComponentSymptom, symptom)
	it.Score = constitution + seasonScore + symptom
}

// constitutionCredit：适宜体质命中用户体质 +40；只有 "balanced" 兜底 +20。
func constitutionCredit(it *core.Item, c core.Constitution) float64 {
	hasBalanced := false
	for _, s := range it.SuitableFor {
		if c.Matches(s) {
			return 40
		}
		if core.ConstitutionBalanced.Matches(s) {
			hasBalanced = true
		}
	}
	if hasBalanced {
		return 20
	}
	return 0
}

// symptomCredit：+40 × 覆盖的用户症状占比；用户未报告症状时 +20 兜底。
func symptomCredit(it *core.Item, symptoms []string) float64 {
	if len(symptoms) == 0 {
		return 20
	}
	if len(it.Symptoms) == 0 {
		return 0
	}
	addressed := make(map[string]bool, len(it.Symptoms))
	for _, s := range it.Symptoms {
		addressed[s] = true
	}
	hit := 0
	for _, s := range symptoms {
		if addressed[s] {
			hit++
		}
	}
	return 40 * float64(hit) / float64(len(symptoms))
}
