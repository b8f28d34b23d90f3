// Package similarity 提供推荐核心使用的相似度原语：向量余弦、集合 Jaccard、
// 以及跨元数据的加权组合相似度。
//
// 约定：所有函数从不返回错误。长度不匹配、零向量、空集合等畸形输入一律得 0，
// 让无法比较的条目得低分，而不是中断整批计算。
package similarity

import (
	"math"

	"github.com/tcmlife/wellrec/core"
)

// Cosine 计算两个向量的余弦相似度，范围 [-1, 1]。
// 长度不一致或任一向量范数为 0 时返回 0。
func Cosine(v1, v2 []float64) float64 {
	if len(v1) == 0 || len(v1) != len(v2) {
		return 0
	}
	var dot, norm1, norm2 float64
	for i := range v1 {
		dot += v1[i] * v2[i]
		norm1 += v1[i] * v1[i]
		norm2 += v2[i] * v2[i]
	}
	if norm1 == 0 || norm2 == 0 {
		return 0
	}
	return dot / (math.Sqrt(norm1) * math.Sqrt(norm2))
}

// Jaccard 计算两个字符串集合的 Jaccard 相似度：|交集| / |并集|。
// 任一集合为空时返回 0。输入按集合语义处理，重复元素只计一次。
func Jaccard(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	setA := make(map[string]bool, len(a))
	for _, s := range a {
		setA[s] = true
	}
	setB := make(map[string]bool, len(b))
	for _, s := range b {
		setB[s] = true
	}

	intersection := 0
	for s := range setA {
		if setB[s] {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

// CombinedWeights 是组合相似度中各元数据分量的权重。
type CombinedWeights struct {
	Tags       float64
	Categories float64
	Vector     float64
}

// DefaultCombinedWeights 返回组合相似度的默认权重。
func DefaultCombinedWeights() CombinedWeights {
	return CombinedWeights{Tags: 0.4, Categories: 0.3, Vector: 0.3}
}

// Combined 计算两个条目的组合相似度，范围 [0, 1]。
//
// 只对双方都具备的分量（tags / categories / vector）做加权平均：
// 缺失的分量同时从分子和分母中剔除，而不是按 0 计入——
// 避免惩罚元数据不完整的条目之间的比较。
// 向量余弦先从 [-1,1] 映射到 [0,1] 再参与组合。
// 双方没有任何公共分量时返回 0。
func Combined(a, b *core.Item, w CombinedWeights) float64 {
	if a == nil || b == nil {
		return 0
	}

	var sum, weightSum float64

	if len(a.Tags) > 0 && len(b.Tags) > 0 {
		sum += w.Tags * Jaccard(a.Tags, b.Tags)
		weightSum += w.Tags
	}
	if len(a.Categories) > 0 && len(b.Categories) > 0 {
		sum += w.Categories * Jaccard(a.Categories, b.Categories)
		weightSum += w.Categories
	}
	if len(a.Vector) > 0 && len(b.Vector) > 0 {
		cos := (Cosine(a.Vector, b.Vector) + 1) / 2
		sum += w.Vector * cos
		weightSum += w.Vector
	}

	if weightSum == 0 {
		return 0
	}
	return sum / weightSum
}

// WeightedOverlap 计算条目 tag/category 与衰减后兴趣权重表的加权重合度，范围 [0, 1]。
// 分子是条目命中的兴趣权重之和，分母是画像权重总和；画像为空时返回 0。
func WeightedOverlap(item *core.Item, interests map[string]float64) float64 {
	if item == nil || len(interests) == 0 {
		return 0
	}
	var total float64
	for _, w := range interests {
		total += w
	}
	if total == 0 {
		return 0
	}

	var hit float64
	seen := make(map[string]bool, len(item.Tags)+len(item.Categories))
	for _, key := range item.Tags {
		if !seen[key] {
			seen[key] = true
			hit += interests[key]
		}
	}
	for _, key := range item.Categories {
		if !seen[key] {
			seen[key] = true
			hit += interests[key]
		}
	}

	score := hit / total
	if score > 1 {
		score = 1
	}
	return score
}
