package core

import (
	"time"

	"github.com/tcmlife/wellrec/pkg/utils"
)

// RecommendContext 承载用户/场景/请求级信息，贯穿整个 Pipeline 透传。
// 所有外部数据（健康档案、兴趣画像、A/B 命中）在进入 Pipeline 前一次性装配完毕，
// Pipeline 内部不做阻塞 I/O。
type RecommendContext struct {
	UserID string
	Scene  string

	// Health 是用户健康档案（体质/过敏原/禁忌/症状），只读。
	// 体质匹配打分模式要求非空；通用加权模式允许为空。
	Health *HealthProfile

	// Interests 是读取时刻惰性衰减后的兴趣权重（tag/category → weight）。
	Interests map[string]float64

	// Now 是本次请求的时间基准；衰减与季节推导均以它为准。
	// 零值表示使用 time.Now()。
	Now time.Time

	// WeightOverrides 是 A/B 变体对打分权重的请求级覆盖，只影响本次请求，
	// 绝不回写全局配置。nil 表示使用默认权重。
	WeightOverrides map[string]float64

	// Variant 是本次请求命中的 A/B 变体名；未命中为空。
	Variant string

	// Labels 是用户级标签，可驱动整个 Pipeline 行为。
	Labels map[string]utils.Label

	// Params 请求级上下文参数（如 limit、query、device_type 等）。
	Params map[string]any
}

// Time 返回请求的时间基准。
func (rctx *RecommendContext) Time() time.Time {
	if rctx.Now.IsZero() {
		return time.Now()
	}
	return rctx.Now
}

// Season 返回请求时刻的中医季节。
func (rctx *RecommendContext) Season() string {
	return CurrentSeason(rctx.Time())
}

// PutLabel 写入用户级 Label。
func (rctx *RecommendContext) PutLabel(key string, lbl utils.Label) {
	if rctx.Labels == nil {
		rctx.Labels = make(map[string]utils.Label)
	}
	if old, ok := rctx.Labels[key]; ok {
		rctx.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	rctx.Labels[key] = lbl
}

// GetLabel 获取用户级 Label。
func (rctx *RecommendContext) GetLabel(key string) (utils.Label, bool) {
	if rctx.Labels == nil {
		return utils.Label{}, false
	}
	lbl, ok := rctx.Labels[key]
	return lbl, ok
}
