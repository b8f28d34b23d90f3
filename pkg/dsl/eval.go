package dsl

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"

	"github.com/tcmlife/wellrec/core"
)

var (
	// celEnv 是全局的 CEL 环境，线程安全，可复用
	celEnv     *cel.Env
	celEnvOnce sync.Once
)

// initCELEnv 初始化 CEL 环境，定义变量
func initCELEnv() (*cel.Env, error) {
	env, err := cel.NewEnv(
		cel.Variable("item", cel.DynType),
		cel.Variable("label", cel.DynType),
		cel.Variable("health", cel.DynType),
		cel.Variable("rctx", cel.DynType),
	)
	return env, err
}

// getCELEnv 获取或创建 CEL 环境
func getCELEnv() (*cel.Env, error) {
	var err error
	celEnvOnce.Do(func() {
		celEnv, err = initCELEnv()
	})
	return celEnv, err
}

// Eval 是规则 DSL 解释器，使用 CEL (Common Expression Language) 实现。
// 用于运营侧可配置的排除/圈选规则，例如：
//
//   - `item.type == "recipe" && item.score < 0.2`
//   - `"辛辣" in item.tags`
//   - `health.constitution == "yin_deficiency" && "姜" in item.ingredients`
//   - `label.recall_source.contains("hot")`
//
// 表达式必须返回布尔值。不存在的 key 用 `label.key != null` 检查存在性。
type Eval struct {
	item *core.Item
	rctx *core.RecommendContext
	env  *cel.Env
}

// NewEval 创建一个新的 DSL 解释器。
func NewEval(item *core.Item, rctx *core.RecommendContext) *Eval {
	env, _ := getCELEnv()
	return &Eval{
		item: item,
		rctx: rctx,
		env:  env,
	}
}

// Evaluate 编译并执行 DSL 表达式，返回布尔结果。空表达式恒为 true。
func (e *Eval) Evaluate(expr string) (bool, error) {
	if expr == "" {
		return true, nil
	}

	ast, issues := e.env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return false, fmt.Errorf("compile error: %v", issues.Err())
	}

	prg, err := e.env.Program(ast)
	if err != nil {
		return false, fmt.Errorf("program error: %v", err)
	}

	out, _, err := prg.Eval(e.buildInput())
	if err != nil {
		return false, fmt.Errorf("eval error: %v", err)
	}

	result, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("expression must return boolean, got %T", out.Value())
	}

	return result, nil
}

// buildInput 构建 CEL 表达式的输入数据
func (e *Eval) buildInput() map[string]interface{} {
	labels := make(map[string]interface{})
	labelAccessor := make(map[string]interface{})
	for k, v := range e.item.Labels {
		labels[k] = map[string]interface{}{
			"value":  v.Value,
			"source": v.Source,
		}
		// label.recall_source 直接取 value，兼容简写
		labelAccessor[k] = v.Value
	}

	item := map[string]interface{}{
		"id":          e.item.ID,
		"type":        string(e.item.Type),
		"score":       e.item.Score,
		"tags":        e.item.Tags,
		"categories":  e.item.Categories,
		"seasons":     e.item.Seasons,
		"ingredients": e.item.Ingredients,
		"cautions":    e.item.Cautions,
		"meta":        e.item.Meta,
		"labels":      labels,
	}

	health := map[string]interface{}{}
	if e.rctx != nil && e.rctx.Health != nil {
		health = map[string]interface{}{
			"constitution":      string(e.rctx.Health.Constitution),
			"allergies":         e.rctx.Health.Allergies,
			"contraindications": e.rctx.Health.Contraindications,
			"symptoms":          e.rctx.Health.Symptoms,
		}
	}

	rctx := map[string]interface{}{}
	if e.rctx != nil {
		rctx = map[string]interface{}{
			"user_id": e.rctx.UserID,
			"scene":   e.rctx.Scene,
			"season":  e.rctx.Season(),
			"variant": e.rctx.Variant,
			"params":  e.rctx.Params,
		}
	}

	return map[string]interface{}{
		"item":   item,
		"label":  labelAccessor,
		"health": health,
		"rctx":   rctx,
	}
}
