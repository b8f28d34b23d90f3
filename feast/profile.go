package feast

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/tcmlife/wellrec/core"
)

// 默认特征视图与特征名。健康档案在 Feast 里按 user_id 实体存储。
const (
	DefaultFeatureView = "user_health"
	DefaultEntityKey   = "user_id"

	featureConstitution      = "constitution"
	featureAllergies         = "allergies"
	featureContraindications = "contraindications"
	featureSymptoms          = "symptoms"
	featureInterestSeeds     = "interest_seeds"
)

// ProfileLoader 从 Feature Store 读取用户健康档案与兴趣种子。
// 兴趣种子是离线算好的初始兴趣（如注册问卷/历史导入），
// 格式为 "tag:weight" 列表，在线追踪器在其之上继续累积。
type ProfileLoader struct {
	Client Client

	// FeatureView 特征视图名，默认 "user_health"。
	FeatureView string

	// EntityKey 实体键名，默认 "user_id"。
	EntityKey string

	// Project 项目名（可选，为空用客户端默认）。
	Project string
}

func NewProfileLoader(client Client) *ProfileLoader {
	return &ProfileLoader{Client: client}
}

// Load 读取单个用户的健康档案与兴趣种子。
// 特征缺失按空值处理（新用户没有画像是正常状态）；
// 只有传输层失败才返回错误。
func (l *ProfileLoader) Load(ctx context.Context, userID string) (*core.HealthProfile, map[string]float64, error) {
	if l.Client == nil {
		return nil, nil, core.NewDomainError(core.ModuleProfile, core.ErrorCodeUnavailable,
			"feature store client not configured")
	}
	if userID == "" {
		return nil, nil, core.NewDomainError(core.ModuleProfile, core.ErrorCodeInvalidInput,
			"user id is required")
	}

	view := l.FeatureView
	if view == "" {
		view = DefaultFeatureView
	}
	entityKey := l.EntityKey
	if entityKey == "" {
		entityKey = DefaultEntityKey
	}

	features := []string{
		view + ":" + featureConstitution,
		view + ":" + featureAllergies,
		view + ":" + featureContraindications,
		view + ":" + featureSymptoms,
		view + ":" + featureInterestSeeds,
	}
	resp, err := l.Client.GetOnlineFeatures(ctx, &OnlineFeaturesRequest{
		Features:   features,
		EntityRows: []map[string]interface{}{{entityKey: userID}},
		Project:    l.Project,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("load profile for %s: %w", userID, err)
	}
	if len(resp.FeatureVectors) == 0 {
		return &core.HealthProfile{UserID: userID}, nil, nil
	}

	values := resp.FeatureVectors[0].Values
	profile := &core.HealthProfile{
		UserID:            userID,
		Constitution:      core.Constitution(stringFeature(values, view+":"+featureConstitution)),
		Allergies:         listFeature(values, view+":"+featureAllergies),
		Contraindications: listFeature(values, view+":"+featureContraindications),
		Symptoms:          listFeature(values, view+":"+featureSymptoms),
	}
	seeds := parseInterestSeeds(listFeature(values, view+":"+featureInterestSeeds))
	return profile, seeds, nil
}

func stringFeature(values map[string]interface{}, key string) string {
	if s, ok := values[key].(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}

// listFeature 读取多值特征：原生 string list 直接用，
// 字符串按逗号拆分（兼容把列表存成 CSV 的旧数据）。
func listFeature(values map[string]interface{}, key string) []string {
	switch v := values[key].(type) {
	case []string:
		return v
	case string:
		if v == "" {
			return nil
		}
		parts := strings.Split(v, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return out
	default:
		return nil
	}
}

// parseInterestSeeds 解析 "tag:weight" 形式的兴趣种子；
// 无权重后缀的条目按 1.0 处理，权重非法的条目跳过。
func parseInterestSeeds(entries []string) map[string]float64 {
	if len(entries) == 0 {
		return nil
	}
	seeds := make(map[string]float64, len(entries))
	for _, e := range entries {
		tag, weightStr, found := strings.Cut(e, ":")
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if !found {
			seeds[tag] = 1.0
			continue
		}
		w, err := strconv.ParseFloat(strings.TrimSpace(weightStr), 64)
		if err != nil || w < 0 {
			continue
		}
		seeds[tag] = w
	}
	if len(seeds) == 0 {
		return nil
	}
	return seeds
}
