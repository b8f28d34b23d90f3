// Package interest 维护用户兴趣画像：按交互事件累积 tag/category 权重，
// 按经过时间做半衰期衰减，读取时惰性计算——没有后台衰减任务。
package interest

import (
	"sort"
	"time"
)

// Entry 是画像中单个 key 的权重与其最近更新时间。
// 衰减只由 (Weight, UpdatedAt) 推导，公式幂等，
// 并发请求对同一用户 last-write-wins 即可接受。
type Entry struct {
	Weight    float64   `json:"weight"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Profile 是单个用户的兴趣画像。首次交互时创建，随事件演进，
// 只做淘汰（prune），从不显式删除。
type Profile struct {
	UserID     string           `json:"user_id"`
	Tags       map[string]Entry `json:"tags"`
	Categories map[string]Entry `json:"categories"`
}

// NewProfile 创建空画像。
func NewProfile(userID string) *Profile {
	return &Profile{
		UserID:     userID,
		Tags:       make(map[string]Entry),
		Categories: make(map[string]Entry),
	}
}

// topKeys 返回按权重降序的前 n 个 key（权重为惰性衰减后的值）。
func topKeys(entries map[string]Entry, decay func(Entry) float64, n int) []string {
	type kv struct {
		key    string
		weight float64
	}
	pairs := make([]kv, 0, len(entries))
	for k, e := range entries {
		pairs = append(pairs, kv{key: k, weight: decay(e)})
	}
	sort.SliceStable(pairs, func(i, j int) bool {
		if pairs[i].weight != pairs[j].weight {
			return pairs[i].weight > pairs[j].weight
		}
		return pairs[i].key < pairs[j].key
	})
	if n > 0 && len(pairs) > n {
		pairs = pairs[:n]
	}
	out := make([]string, 0, len(pairs))
	for _, p := range pairs {
		out = append(out, p.key)
	}
	return out
}
