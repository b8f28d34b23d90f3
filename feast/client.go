// Package feast 对接 Feast Feature Store，把在线特征读出并
// 映射为健康档案与兴趣种子。推荐核心只消费这里的领域类型，
// 不直接依赖 SDK。
package feast

import (
	"context"
	"time"
)

// Client 是 Feast 在线特征读取的客户端接口。
// 推荐链路只需要在线特征（实时画像补全），离线/物化不在此接口范围。
type Client interface {
	// GetOnlineFeatures 获取在线特征
	//
	// 参数：
	//   - features: 特征名称列表，例如 ["user_health:constitution", "user_health:allergies"]
	//   - entityRows: 实体行，例如 [{"user_id": "u1001"}]
	GetOnlineFeatures(ctx context.Context, req *OnlineFeaturesRequest) (*OnlineFeaturesResponse, error)

	// Close 关闭客户端连接
	Close() error
}

// OnlineFeaturesRequest 在线特征请求
type OnlineFeaturesRequest struct {
	// Features 特征名称列表
	Features []string

	// EntityRows 实体行，例如 [{"user_id": "u1001"}, {"user_id": "u1002"}]
	EntityRows []map[string]interface{}

	// Project 项目名称（可选，为空使用客户端默认）
	Project string
}

// OnlineFeaturesResponse 在线特征响应，每个 FeatureVector 对应一个实体行。
type OnlineFeaturesResponse struct {
	FeatureVectors []FeatureVector
}

// FeatureVector 特征向量，key 为特征名称。
type FeatureVector struct {
	Values    map[string]interface{}
	EntityRow map[string]interface{}
}

// ClientOption 客户端配置选项
type ClientOption func(*ClientConfig)

// ClientConfig 客户端配置
type ClientConfig struct {
	// Timeout 单次请求超时时间
	Timeout time.Duration

	// StaticToken 静态 Token 认证（可选）
	StaticToken string

	// EnableTLS 是否启用 TLS（仅在携带认证时生效）
	EnableTLS bool
}

// WithTimeout 配置选项：设置超时时间
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *ClientConfig) {
		c.Timeout = timeout
	}
}

// WithStaticToken 配置选项：静态 Token 认证
func WithStaticToken(token string) ClientOption {
	return func(c *ClientConfig) {
		c.StaticToken = token
	}
}

// WithTLS 配置选项：启用 TLS
func WithTLS() ClientOption {
	return func(c *ClientConfig) {
		c.EnableTLS = true
	}
}
