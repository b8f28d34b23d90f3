package core

// DomainError 是领域层的统一错误类型。
//
// 设计原则：
//   - 所有领域层错误都使用此类型
//   - 提供错误代码（Code）和消息（Message）
//   - 支持错误检查函数（IsXXX）
//
// 注意：数学原语（cosine/jaccard/衰减）从不返回错误，畸形输入按约定得 0 或下限值，
// 无法打分的条目得低分而不是中断整批请求。安全过滤的剔除也不是错误，是静默移除。
type DomainError struct {
	Code    string // 错误代码（如 "NOT_FOUND", "INVALID_INPUT"）
	Message string // 错误消息
	Module  string // 模块名称（如 "profile", "scoring", "abtest"）
}

func (e *DomainError) Error() string {
	return e.Message
}

// GetDomainError 获取 DomainError，如果不是则返回 nil
func GetDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	if domainErr, ok := err.(*DomainError); ok {
		return domainErr
	}
	return nil
}

// NewDomainError 创建新的领域错误
func NewDomainError(module, code, message string) *DomainError {
	return &DomainError{
		Module:  module,
		Code:    code,
		Message: message,
	}
}

// 错误代码常量
const (
	ErrorCodeNotFound      = "NOT_FOUND"      // 条目/实验不存在
	ErrorCodeInvalidInput  = "INVALID_INPUT"  // 缺失必需输入（如体质匹配模式缺健康档案）
	ErrorCodeInvalidConfig = "INVALID_CONFIG" // 配置非法（权重和不为 1、未知变体）
	ErrorCodeUnavailable   = "UNAVAILABLE"    // 依赖不可用（候选源不可达且无缓存）
	ErrorCodeInternalError = "INTERNAL_ERROR" // 内部错误
)

// 模块名称常量
const (
	ModuleStore    = "store"
	ModuleProfile  = "profile"
	ModuleScoring  = "scoring"
	ModuleABTest   = "abtest"
	ModuleCatalog  = "catalog"
	ModulePipeline = "pipeline"
)

// 空结果原因代码。空结果不是错误，响应中带可区分的 reason。
const (
	ReasonOK              = "ok"
	ReasonNoCandidates    = "no_candidates"     // 候选源本身为空
	ReasonNoEligibleItems = "no_eligible_items" // 候选被安全过滤全部剔除
	ReasonAborted         = "aborted"           // 超时中止且尚未产出任何打分
)

// IsNotFound 检查错误是否为 NOT_FOUND
func IsNotFound(err error) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == ErrorCodeNotFound
	}
	return false
}

// IsValidation 检查错误是否为 INVALID_INPUT
func IsValidation(err error) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == ErrorCodeInvalidInput
	}
	return false
}

// IsConfiguration 检查错误是否为 INVALID_CONFIG
func IsConfiguration(err error) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == ErrorCodeInvalidConfig
	}
	return false
}

// IsUnavailable 检查错误是否为 UNAVAILABLE
func IsUnavailable(err error) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == ErrorCodeUnavailable
	}
	return false
}
