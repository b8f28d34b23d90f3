package core

import (
	"fmt"
	"math"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// 打分分量名称。权重配置与分数拆解共用同一组 key。
const (
	ComponentContentBased  = "content_based"
	ComponentCollaborative = "collaborative"
	ComponentPopularity    = "popularity"
	ComponentRecency       = "recency"
	ComponentSeasonal      = "seasonal"
)

// ScoringWeights 是综合打分的显式命名权重，加载时校验总和为 1.0。
// 运行期不可变；A/B 变体通过请求级覆盖生效，绝不改写这里的值。
type ScoringWeights struct {
	ContentBased  float64 `yaml:"content_based" json:"content_based" validate:"gte=0,lte=1"`
	Collaborative float64 `yaml:"collaborative" json:"collaborative" validate:"gte=0,lte=1"`
	Popularity    float64 `yaml:"popularity" json:"popularity" validate:"gte=0,lte=1"`
	Recency       float64 `yaml:"recency" json:"recency" validate:"gte=0,lte=1"`
	Seasonal      float64 `yaml:"seasonal" json:"seasonal" validate:"gte=0,lte=1"`
}

// weightSumEpsilon 是权重求和校验的浮点容差。
const weightSumEpsilon = 1e-6

// Validate 校验权重总和为 1.0（容差内）。
func (w ScoringWeights) Validate() error {
	sum := w.ContentBased + w.Collaborative + w.Popularity + w.Recency + w.Seasonal
	if math.Abs(sum-1.0) > weightSumEpsilon {
		return NewDomainError(ModuleScoring, ErrorCodeInvalidConfig,
			fmt.Sprintf("scoring weights must sum to 1.0, got %.6f", sum))
	}
	return nil
}

// Map 以分量名为 key 导出权重，供请求级覆盖合并。
func (w ScoringWeights) Map() map[string]float64 {
	return map[string]float64{
		ComponentContentBased:  w.ContentBased,
		ComponentCollaborative: w.Collaborative,
		ComponentPopularity:    w.Popularity,
		ComponentRecency:       w.Recency,
		ComponentSeasonal:      w.Seasonal,
	}
}

// Merged 返回叠加请求级覆盖后的权重副本；overrides 为 nil 时原样返回。
// 覆盖只认已知分量名，未知 key 忽略。
func (w ScoringWeights) Merged(overrides map[string]float64) ScoringWeights {
	if len(overrides) == 0 {
		return w
	}
	out := w
	for k, v := range overrides {
		switch k {
		case ComponentContentBased:
			out.ContentBased = v
		case ComponentCollaborative:
			out.Collaborative = v
		case ComponentPopularity:
			out.Popularity = v
		case ComponentRecency:
			out.Recency = v
		case ComponentSeasonal:
			out.Seasonal = v
		}
	}
	return out
}

// InterestConfig 是兴趣画像的衰减/容量配置。
type InterestConfig struct {
	// HalfLife 是兴趣权重的半衰期，默认 30 天。
	HalfLife time.Duration `yaml:"half_life" json:"half_life"`

	// MinWeight 是衰减下限，衰减结果不会低于它。
	MinWeight float64 `yaml:"min_weight" json:"min_weight" validate:"gte=0,lte=1"`

	// MaxInterests 是画像条目上限，超出时按当前衰减权重最低者淘汰。
	MaxInterests int `yaml:"max_interests" json:"max_interests" validate:"gt=0"`

	// EventWeights 是各交互类型的权重增量；空则使用默认表。
	EventWeights map[EventType]float64 `yaml:"event_weights" json:"event_weights"`
}

// DiversityConfig 是多样性重排配置。
type DiversityConfig struct {
	// MaxPerCategory 是结果中单个类别的条目上限。
	MaxPerCategory int `yaml:"max_per_category" json:"max_per_category" validate:"gt=0"`

	// MinDiversityScore 是熵多样性分数的告警阈值。
	MinDiversityScore float64 `yaml:"min_diversity_score" json:"min_diversity_score" validate:"gte=0,lte=1"`

	// EnforceMinimumDiversity 为 true 时，低于阈值的结果会被打标（不强制改写排序）。
	EnforceMinimumDiversity bool `yaml:"enforce_minimum_diversity" json:"enforce_minimum_diversity"`
}

// Config 是推荐核心的全量配置。构造后不可变，显式传入各组件，无进程级可变状态。
type Config struct {
	// VectorSize 是内容向量的统一长度，同一部署内所有条目一致。
	VectorSize int `yaml:"vector_size" json:"vector_size" validate:"gt=0"`

	Weights   ScoringWeights  `yaml:"weights" json:"weights"`
	Interest  InterestConfig  `yaml:"interest" json:"interest"`
	Diversity DiversityConfig `yaml:"diversity" json:"diversity"`

	// RecencyHalfLife 是时效分量的半衰期，默认 30 天。
	RecencyHalfLife time.Duration `yaml:"recency_half_life" json:"recency_half_life"`

	// RecencyFloor 是时效分量的下限值。
	RecencyFloor float64 `yaml:"recency_floor" json:"recency_floor" validate:"gte=0,lte=1"`

	// PopularityCap 是热度对数归一化的上限计数（view + 3*like）。
	PopularityCap int64 `yaml:"popularity_cap" json:"popularity_cap" validate:"gt=0"`

	// TopN 是默认返回条数。
	TopN int `yaml:"top_n" json:"top_n" validate:"gt=0"`
}

// DefaultConfig 返回内置默认配置。
func DefaultConfig() Config {
	return Config{
		VectorSize: 64,
		Weights: ScoringWeights{
			ContentBased:  0.30,
			Collaborative: 0.25,
			Popularity:    0.15,
			Recency:       0.15,
			Seasonal:      0.15,
		},
		Interest: InterestConfig{
			HalfLife:     30 * 24 * time.Hour,
			MinWeight:    0.01,
			MaxInterests: 50,
			EventWeights: DefaultEventWeights(),
		},
		Diversity: DiversityConfig{
			MaxPerCategory:    3,
			MinDiversityScore: 0.3,
		},
		RecencyHalfLife: 30 * 24 * time.Hour,
		RecencyFloor:    0.01,
		PopularityCap:   100000,
		TopN:            10,
	}
}

var validate = validator.New()

// Validate 校验配置合法性：结构体约束 + 权重求和。
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return NewDomainError(ModuleScoring, ErrorCodeInvalidConfig, err.Error())
	}
	return c.Weights.Validate()
}

// LoadConfig 从 YAML 文件加载配置，未设置的字段落回默认值，加载即校验。
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	if cfg.Interest.EventWeights == nil {
		cfg.Interest.EventWeights = DefaultEventWeights()
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}
