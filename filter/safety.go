package filter

import (
	"context"
	"strings"

	"github.com/tcmlife/wellrec/core"
)

// SafetyFilter 是健康安全过滤器：硬性排除违反过敏/禁忌约束的条目。
//
// 排除条件（任一命中即排除）：
//   - 条目的任一食材或正文大小写不敏感地包含用户的任一过敏原字符串
//     （食材 "Peanut Butter" 命中过敏原 "peanut"）
//   - 条目声明的禁忌（cautions）与用户的禁忌症/在治疾病有交集
//
// 这是独立于任何分数的硬否决。用户无健康档案时不过滤。
type SafetyFilter struct{}

func (f *SafetyFilter) Name() string {
	return "filter.safety"
}

func (f *SafetyFilter) ShouldFilter(
	_ context.Context,
	rctx *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	if item == nil {
		return true, nil
	}
	if rctx == nil || rctx.Health == nil {
		return false, nil
	}

	if f.hitAllergy(rctx.Health.Allergies, item) {
		return true, nil
	}
	if f.hitContraindication(rctx.Health.Contraindications, item.Cautions) {
		return true, nil
	}
	return false, nil
}

// hitAllergy 检查食材/正文是否包含任一过敏原（大小写不敏感的子串匹配）。
func (f *SafetyFilter) hitAllergy(allergies []string, item *core.Item) bool {
	if len(allergies) == 0 {
		return false
	}

	haystacks := make([]string, 0, len(item.Ingredients)+2)
	for _, ing := range item.Ingredients {
		haystacks = append(haystacks, strings.ToLower(ing))
	}
	if item.Title != "" {
		haystacks = append(haystacks, strings.ToLower(item.Title))
	}
	if item.Text != "" {
		haystacks = append(haystacks, strings.ToLower(item.Text))
	}

	for _, allergy := range allergies {
		needle := strings.ToLower(strings.TrimSpace(allergy))
		if needle == "" {
			continue
		}
		for _, hay := range haystacks {
			if strings.Contains(hay, needle) {
				return true
			}
		}
	}
	return false
}

// hitContraindication 检查条目禁忌声明与用户禁忌症的交集（归一化后精确匹配）。
func (f *SafetyFilter) hitContraindication(conditions, cautions []string) bool {
	if len(conditions) == 0 || len(cautions) == 0 {
		return false
	}
	set := make(map[string]bool, len(conditions))
	for _, c := range conditions {
		set[strings.ToLower(strings.TrimSpace(c))] = true
	}
	for _, caution := range cautions {
		if set[strings.ToLower(strings.TrimSpace(caution))] {
			return true
		}
	}
	return false
}
