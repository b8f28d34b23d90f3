package filter

import (
	"context"

	"github.com/tcmlife/wellrec/core"
	"github.com/tcmlife/wellrec/pkg/dsl"
)

// RuleFilter 是规则过滤器：用 CEL 表达式声明排除条件，运营侧可配置。
// 表达式返回 true 的条目被过滤。
//
// 示例：
//   - `item.type == "recipe" && "生冷" in item.tags`
//   - `health.constitution == "yang_deficiency" && "寒性" in item.tags`
//   - `label.recall_source == "hot" && item.score < 0.1`
//
// 表达式求值失败时保留条目（规则失效不应误杀内容）。
type RuleFilter struct {
	// Rules 是排除规则表达式列表，任一命中即过滤。
	Rules []string
}

func (f *RuleFilter) Name() string {
	return "filter.rule"
}

func (f *RuleFilter) ShouldFilter(
	_ context.Context,
	rctx *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	if item == nil {
		return true, nil
	}
	if len(f.Rules) == 0 {
		return false, nil
	}

	eval := dsl.NewEval(item, rctx)
	for _, rule := range f.Rules {
		hit, err := eval.Evaluate(rule)
		if err != nil {
			continue
		}
		if hit {
			return true, nil
		}
	}
	return false, nil
}
