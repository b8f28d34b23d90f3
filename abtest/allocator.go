// Package abtest 提供确定性的 A/B 实验分流：
// 同一 (userID, testID) 始终落到同一变体，不依赖任何随机源，
// 可选地把分配结果落到 Store 便于离线分析对账。
package abtest

import (
	"context"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/tcmlife/wellrec/core"
)

const assignKeyPrefix = "abtest:assign:"

// Variant 是实验的一个分支。WeightOverrides 在命中时
// 以请求级覆盖注入打分权重（见 core.ScoringWeights.Merged）。
type Variant struct {
	Name            string             `json:"name" yaml:"name"`
	WeightOverrides map[string]float64 `json:"weight_overrides,omitempty" yaml:"weight_overrides,omitempty"`
}

// ABTest 描述一个实验：目标人群比例、时间窗口与变体列表。
type ABTest struct {
	ID                   string    `json:"id" yaml:"id"`
	Name                 string    `json:"name,omitempty" yaml:"name,omitempty"`
	Variants             []Variant `json:"variants" yaml:"variants"`
	TargetUserPercentage int       `json:"target_user_percentage" yaml:"target_user_percentage"`
	StartAt              time.Time `json:"start_at,omitempty" yaml:"start_at,omitempty"`
	EndAt                time.Time `json:"end_at,omitempty" yaml:"end_at,omitempty"`
	IsActive             bool      `json:"is_active" yaml:"is_active"`
}

// activeAt 判断实验在给定时刻是否生效。零值时间表示无界。
func (t *ABTest) activeAt(now time.Time) bool {
	if !t.IsActive || len(t.Variants) == 0 {
		return false
	}
	if !t.StartAt.IsZero() && now.Before(t.StartAt) {
		return false
	}
	if !t.EndAt.IsZero() && now.After(t.EndAt) {
		return false
	}
	return true
}

// Allocator 负责把用户分配到实验变体。
// Store 可选：提供时分配结果会被记录，便于审计；
// 分配本身纯由哈希决定，Store 不参与判定。
type Allocator struct {
	store core.Store
}

func NewAllocator(store core.Store) *Allocator {
	return &Allocator{store: store}
}

// Assign 返回用户命中的变体；未命中（实验未生效 / 不在目标人群）返回 nil。
//
// 判定完全确定：
//
//	h = xxhash(userID + ":" + testID)
//	纳入实验  ⇔ h % 100 < TargetUserPercentage
//	变体下标  = (h / 100) % len(Variants)
//
// 纳入判定和变体选择使用哈希的不同位段，避免两者相关。
func (a *Allocator) Assign(ctx context.Context, userID string, t *ABTest, now time.Time) *Variant {
	if t == nil || userID == "" {
		return nil
	}
	if now.IsZero() {
		now = time.Now()
	}
	if !t.activeAt(now) {
		return nil
	}

	h := xxhash.Sum64String(userID + ":" + t.ID)
	if h%100 >= uint64(t.TargetUserPercentage) {
		return nil
	}
	v := &t.Variants[(h/100)%uint64(len(t.Variants))]

	if a.store != nil {
		// 记录仅用于离线对账，失败不影响分流
		_ = a.store.Set(ctx, assignKeyPrefix+t.ID+":"+userID, []byte(v.Name))
	}
	return v
}

// Apply 把命中的变体写到请求上下文：变体名 + 权重覆盖。
// 未命中时什么都不做。
func (a *Allocator) Apply(ctx context.Context, rctx *core.RecommendContext, t *ABTest) *Variant {
	if rctx == nil {
		return nil
	}
	v := a.Assign(ctx, rctx.UserID, t, rctx.Time())
	if v == nil {
		return nil
	}
	rctx.Variant = v.Name
	if len(v.WeightOverrides) > 0 {
		if rctx.WeightOverrides == nil {
			rctx.WeightOverrides = make(map[string]float64, len(v.WeightOverrides))
		}
		for k, w := range v.WeightOverrides {
			rctx.WeightOverrides[k] = w
		}
	}
	return v
}
