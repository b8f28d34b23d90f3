// Package builders 以 init 注册的方式把内置 Node 接入配置驱动装配。
// 依赖外部资源的候选源（热门榜、内容目录）无法从纯配置构造，
// 需先通过 UseStore / UseCatalog 注入，再装配 pipeline。
package builders

import (
	"fmt"
	"sync"
	"time"

	"github.com/tcmlife/wellrec/config"
	"github.com/tcmlife/wellrec/core"
	"github.com/tcmlife/wellrec/filter"
	"github.com/tcmlife/wellrec/pipeline"
	"github.com/tcmlife/wellrec/pkg/conv"
	"github.com/tcmlife/wellrec/rank"
	"github.com/tcmlife/wellrec/recall"
	"github.com/tcmlife/wellrec/rerank"
)

func init() {
	config.Register("recall.fanout", BuildFanoutNode)
	config.Register("recall.hot", BuildHotNode)
	config.Register("recall.catalog", BuildCatalogNode)
	config.Register("filter", BuildFilterNode)
	config.Register("rank.weighted", BuildWeightedNode)
	config.Register("rank.constitution", BuildConstitutionNode)
	config.Register("rerank.diversity", BuildDiversityNode)
	config.Register("rerank.topn", BuildTopNNode)
}

var (
	depsMu          sync.RWMutex
	sharedStore     core.KeyValueStore
	sharedCatalog   recall.CatalogProvider
	sharedCatalogKV core.KeyValueStore
)

// UseStore 注入热门榜等候选源依赖的 KV 存储。
func UseStore(s core.KeyValueStore) {
	depsMu.Lock()
	defer depsMu.Unlock()
	sharedStore = s
	if sharedCatalogKV == nil {
		sharedCatalogKV = s
	}
}

// UseCatalog 注入内容目录边界与快照缓存。cache 可为 nil（降级为无快照兜底）。
func UseCatalog(p recall.CatalogProvider, cache core.KeyValueStore) {
	depsMu.Lock()
	defer depsMu.Unlock()
	sharedCatalog = p
	if cache != nil {
		sharedCatalogKV = cache
	}
}

func BuildFanoutNode(cfg map[string]interface{}) (pipeline.Node, error) {
	sourcesConfig, ok := cfg["sources"].([]interface{})
	if !ok {
		return nil, fmt.Errorf("sources not found or invalid")
	}
	sources := make([]recall.Source, 0, len(sourcesConfig))
	for _, sc := range sourcesConfig {
		sourceMap, ok := sc.(map[string]interface{})
		if !ok {
			continue
		}
		sourceType := conv.ConfigGet(sourceMap, "type", "")
		switch sourceType {
		case "hot":
			node, err := BuildHotNode(sourceMap)
			if err != nil {
				return nil, err
			}
			sources = append(sources, node.(recall.Source))
		case "catalog":
			node, err := BuildCatalogNode(sourceMap)
			if err != nil {
				return nil, err
			}
			sources = append(sources, node.(recall.Source))
		default:
			return nil, fmt.Errorf("unknown source type: %s", sourceType)
		}
	}
	fanout := &recall.Fanout{
		Sources: sources,
		Dedup:   conv.ConfigGet(cfg, "dedup", true),
	}
	if sec := conv.ConfigGetInt64(cfg, "timeout", 0); sec > 0 {
		fanout.Timeout = time.Duration(sec) * time.Second
	}
	if n := conv.ConfigGetInt64(cfg, "max_concurrent", 0); n > 0 {
		fanout.MaxConcurrent = int(n)
	}
	return fanout, nil
}

func BuildHotNode(cfg map[string]interface{}) (pipeline.Node, error) {
	depsMu.RLock()
	store := sharedStore
	depsMu.RUnlock()
	if store == nil {
		return nil, fmt.Errorf("recall.hot requires a store (call builders.UseStore first)")
	}
	return &recall.Hot{
		Store: store,
		Key:   conv.ConfigGet(cfg, "key", "hot:items"),
		TopN:  conv.ConfigGetInt64(cfg, "topn", 0),
	}, nil
}

func BuildCatalogNode(cfg map[string]interface{}) (pipeline.Node, error) {
	depsMu.RLock()
	provider, cache := sharedCatalog, sharedCatalogKV
	depsMu.RUnlock()
	if provider == nil {
		return nil, fmt.Errorf("recall.catalog requires a provider (call builders.UseCatalog first)")
	}
	node := &recall.Catalog{
		Provider: provider,
		Cache:    cache,
		CacheKey: conv.ConfigGet(cfg, "cache_key", ""),
	}
	if sec := conv.ConfigGetInt64(cfg, "cache_ttl", 0); sec > 0 {
		node.CacheTTL = int(sec)
	}
	return node, nil
}

// BuildFilterNode 组合安全过滤与规则过滤：
//
//	type: filter
//	config:
//	  safety: true          # 默认开启过敏原/禁忌硬否决
//	  rules:
//	    - 'item.type == "recipe" && "生冷" in item.tags'
func BuildFilterNode(cfg map[string]interface{}) (pipeline.Node, error) {
	filters := make([]filter.Filter, 0, 2)
	if conv.ConfigGet(cfg, "safety", true) {
		filters = append(filters, &filter.SafetyFilter{})
	}
	if rules := conv.SliceAnyToString(cfg["rules"]); len(rules) > 0 {
		filters = append(filters, &filter.RuleFilter{Rules: rules})
	}
	return &filter.FilterNode{Filters: filters}, nil
}

func BuildWeightedNode(cfg map[string]interface{}) (pipeline.Node, error) {
	c := core.DefaultConfig()
	if weightsMap, ok := cfg["weights"].(map[string]interface{}); ok {
		c.Weights = c.Weights.Merged(conv.MapToFloat64(weightsMap))
		if err := c.Weights.Validate(); err != nil {
			return nil, err
		}
	}
	if pc := conv.ConfigGetInt64(cfg, "popularity_cap", 0); pc > 0 {
		c.PopularityCap = pc
	}
	if days := conv.ConfigGetFloat64(cfg, "recency_half_life_days", 0); days > 0 {
		c.RecencyHalfLife = time.Duration(days * 24 * float64(time.Hour))
	}
	node := &rank.WeightedScoreNode{Config: c}
	if n := conv.ConfigGetInt64(cfg, "top_interest_tags", 0); n > 0 {
		node.TopInterestTags = int(n)
	}
	if n := conv.ConfigGetInt64(cfg, "parallelism", 0); n > 0 {
		node.Parallelism = int(n)
	}
	return node, nil
}

func BuildConstitutionNode(_ map[string]interface{}) (pipeline.Node, error) {
	return &rank.ConstitutionScoreNode{}, nil
}

func BuildDiversityNode(cfg map[string]interface{}) (pipeline.Node, error) {
	dc := core.DefaultConfig().Diversity
	if n := conv.ConfigGetInt64(cfg, "max_per_category", 0); n > 0 {
		dc.MaxPerCategory = int(n)
	}
	if v := conv.ConfigGetFloat64(cfg, "min_diversity_score", -1); v >= 0 {
		dc.MinDiversityScore = v
	}
	dc.EnforceMinimumDiversity = conv.ConfigGet(cfg, "enforce_minimum_diversity", dc.EnforceMinimumDiversity)
	return &rerank.Diversity{
		Config: dc,
		TopN:   int(conv.ConfigGetInt64(cfg, "topn", 0)),
	}, nil
}

func BuildTopNNode(cfg map[string]interface{}) (pipeline.Node, error) {
	return &rerank.TopNNode{N: int(conv.ConfigGetInt64(cfg, "n", 0))}, nil
}
