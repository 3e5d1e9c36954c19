package apperr

import (
	"fmt"
	"net/http"
	"time"
)

// 错误分类
const (
	// KindBusiness 业务错误：预期内、可恢复（4xx）
	KindBusiness = "business"
	// KindInfrastructure 基础设施错误：非预期的内部失败（5xx）
	KindInfrastructure = "infrastructure"
)

// 稳定错误码，调用方按 code 匹配，不依赖 message 文本
const (
	CodeNotFound             = "NOT_FOUND"
	CodeAlreadyExists        = "ALREADY_EXISTS"
	CodeLimitExceeded        = "LIMIT_EXCEEDED"
	CodeInactiveSubscription = "INACTIVE_SUBSCRIPTION"
	CodeValidationFailed     = "VALIDATION_FAILED"
	CodeAccountNotEmpty      = "ACCOUNT_NOT_EMPTY"
	CodeDefaultCategory      = "DEFAULT_CATEGORY"
	CodeAllowanceExceeded    = "ALLOWANCE_EXCEEDED"
	CodeInvalidInvite        = "INVALID_INVITE"
	CodeAlreadyPaired        = "ALREADY_PAIRED"
	CodeNotPaired            = "NOT_PAIRED"
	CodeTenantContextMissing = "TENANT_CONTEXT_MISSING"
	CodeInternal             = "INTERNAL"
)

// AppError 领域错误，携带稳定错误码和 HTTP 状态码
type AppError struct {
	Kind       string    `json:"-"`
	Name       string    `json:"name"`
	Message    string    `json:"message"`
	Code       string    `json:"code"`
	StatusCode int       `json:"statusCode"`
	Timestamp  time.Time `json:"timestamp"`
	cause      error
}

// Error 实现 error 接口
func (e *AppError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap 返回底层错误
func (e *AppError) Unwrap() error {
	return e.cause
}

// WithCause 附加底层错误（不改变对外 code/status）
func (e *AppError) WithCause(cause error) *AppError {
	cp := *e
	cp.cause = cause
	return &cp
}

// Business 创建业务错误，status <= 0 时默认 422
func Business(code string, status int, message string) *AppError {
	if status <= 0 {
		status = http.StatusUnprocessableEntity
	}
	return &AppError{
		Kind:       KindBusiness,
		Name:       "BusinessError",
		Message:    message,
		Code:       code,
		StatusCode: status,
		Timestamp:  time.Now(),
	}
}

// Infrastructure 创建基础设施错误，status <= 0 时默认 500
func Infrastructure(code string, status int, message string) *AppError {
	if status <= 0 {
		status = http.StatusInternalServerError
	}
	return &AppError{
		Kind:       KindInfrastructure,
		Name:       "InfrastructureError",
		Message:    message,
		Code:       code,
		StatusCode: status,
		Timestamp:  time.Now(),
	}
}

// NotFound 资源不存在。跨租户访问同样返回该错误，避免探测其他租户的数据
func NotFound(resource string) *AppError {
	return Business(CodeNotFound, http.StatusNotFound, resource+"不存在")
}

// AlreadyExists 资源已存在
func AlreadyExists(resource string) *AppError {
	return Business(CodeAlreadyExists, http.StatusConflict, resource+"已存在")
}

// LimitExceeded 超出套餐限制
func LimitExceeded(message string) *AppError {
	return Business(CodeLimitExceeded, 0, message)
}

// Validation 校验失败
func Validation(message string) *AppError {
	return Business(CodeValidationFailed, http.StatusBadRequest, message)
}

// TenantContextMissing 租户上下文缺失，属于内部错误（按高严重级别记录）
func TenantContextMissing() *AppError {
	return Infrastructure(CodeTenantContextMissing, 0, "租户上下文未设置")
}

// Internal 未分类的内部错误
func Internal(cause error) *AppError {
	return Infrastructure(CodeInternal, 0, "内部错误").WithCause(cause)
}

// IsCode 判断 err 是否为指定错误码的 AppError
func IsCode(err error, code string) bool {
	ae, ok := AsAppError(err)
	return ok && ae.Code == code
}

// AsAppError 提取 AppError
func AsAppError(err error) (*AppError, bool) {
	for err != nil {
		if ae, ok := err.(*AppError); ok {
			return ae, true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return nil, false
		}
		err = u.Unwrap()
	}
	return nil, false
}
