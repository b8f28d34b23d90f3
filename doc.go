// Package wellrec 是一个养生内容个性化推荐核心（Wellness Recommender Core）。
//
// 设计要点：
// - Pipeline-first: 推荐逻辑通过 Node 串联（候选供给 → 安全过滤 → 打分 → 多样性重排）
// - Labels-first: labels 全链路透传与标准化 merge，支持 explain / 观测 / 策略驱动
// - 无后台任务: 兴趣衰减与时效衰减均为"时间 → 权重"的纯函数，读取时惰性计算
// - 安全优先: 过敏原/禁忌命中是硬否决，任何后续分数都不能恢复被排除的条目
package wellrec

import "github.com/tcmlife/wellrec/pipeline"

// 轻量 facade：便于用户直接 import "wellrec" 使用核心抽象。
type Pipeline = pipeline.Pipeline
type Node = pipeline.Node
type Kind = pipeline.Kind

const (
	KindRecall      = pipeline.KindRecall
	KindFilter      = pipeline.KindFilter
	KindRank        = pipeline.KindRank
	KindReRank      = pipeline.KindReRank
	KindPostProcess = pipeline.KindPostProcess
)
