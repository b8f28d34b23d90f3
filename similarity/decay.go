package similarity

import (
	"math"
	"time"
)

// ExponentialDecay 计算半衰期指数衰减：2^(-Δt/halfLife)，范围 (0, 1]。
//
// - at 等于 now 时返回 1.0
// - Δt 等于一个半衰期时约为 0.5
// - 结果不会低于 floor
// - at 在 now 之后（时钟漂移）按 Δt=0 处理
//
// 兴趣权重衰减与内容时效分量共用此函数；它是"时间 → 权重"的纯函数，
// 读取时惰性计算，不存在后台衰减任务。
func ExponentialDecay(at time.Time, halfLife time.Duration, now time.Time, floor float64) float64 {
	if halfLife <= 0 {
		return 1.0
	}
	elapsed := now.Sub(at)
	if elapsed <= 0 {
		return 1.0
	}

	decayed := math.Exp2(-float64(elapsed) / float64(halfLife))
	if decayed < floor {
		return floor
	}
	return decayed
}
