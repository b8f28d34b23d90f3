package core

import (
	"time"

	"github.com/tcmlife/wellrec/pkg/utils"
)

// ItemType 是内容条目的封闭类型集合。
type ItemType string

const (
	ItemTypeArticle ItemType = "article" // 养生文章
	ItemTypeRecipe  ItemType = "recipe"  // 食谱
	ItemTypeTip     ItemType = "tip"     // 养生小贴士
)

// Item 是推荐链路中的统一承载结构：内容元信息、特征向量、分数、标签。
// 一旦完成向量化即视为不可变；仅当正文变更时才重新向量化。
// Labels 用于解释与策略驱动；Score 与 ComponentScores 用于排序决策与分数拆解。
type Item struct {
	ID    string
	Type  ItemType
	Title string
	Text  string // 正文/描述，向量化的输入

	Tags       []string
	Categories []string

	// Vector 是定长的归一化词频向量；同一部署内所有条目共享同一长度。
	Vector []float64

	// 养生域属性
	Seasons     []string // 适用季节，"all" 表示四季皆宜
	BestSeason  string   // 最佳季节（体质匹配模式使用）
	SuitableFor []string // 适宜体质
	Ingredients []string // 食材（过敏原匹配的对象）
	Cautions    []string // 禁忌声明（与用户禁忌症求交集）
	Symptoms    []string // 可调理的症状

	PublishedAt time.Time
	Views       int64
	Likes       int64

	// 排序输出
	Score           float64
	ComponentScores map[string]float64

	Meta   map[string]any
	Labels map[string]utils.Label
}

func NewItem(id string) *Item {
	return &Item{
		ID:              id,
		ComponentScores: make(map[string]float64),
		Meta:            make(map[string]any),
		Labels:          make(map[string]utils.Label),
	}
}

// PutLabel 写入 Label；若已存在同名 key，则按默认 Merge 规则累积。
func (it *Item) PutLabel(key string, lbl utils.Label) {
	if it.Labels == nil {
		it.Labels = make(map[string]utils.Label)
	}
	if old, ok := it.Labels[key]; ok {
		it.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	it.Labels[key] = lbl
}

// PutComponentScore 记录单个打分分量，供响应中的分数拆解使用。
func (it *Item) PutComponentScore(name string, score float64) {
	if it.ComponentScores == nil {
		it.ComponentScores = make(map[string]float64)
	}
	it.ComponentScores[name] = score
}

// HasSeason 判断条目是否适用于给定季节；"all" 匹配任意季节。
func (it *Item) HasSeason(season string) bool {
	for _, s := range it.Seasons {
		if s == "all" || s == season {
			return true
		}
	}
	return false
}
