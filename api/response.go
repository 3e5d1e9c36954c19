package api

import (
	"log"
	"net/http"

	"couplefin/apperr"

	"github.com/gin-gonic/gin"
)

// Response 通用响应结构
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Error   interface{} `json:"error,omitempty"`
}

// PageResponse 分页响应结构
type PageResponse struct {
	Total    int64       `json:"total"`
	Page     int         `json:"page"`
	PageSize int         `json:"page_size"`
	List     interface{} `json:"list"`
}

// Success 成功响应
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    200,
		Message: "success",
		Data:    data,
	})
}

// SuccessWithMessage 带消息的成功响应
func SuccessWithMessage(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    200,
		Message: message,
		Data:    data,
	})
}

// Error 错误响应
func Error(c *gin.Context, code int, message string) {
	c.JSON(code, Response{
		Code:    code,
		Message: message,
	})
}

// BadRequest 400 错误响应
func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, message)
}

// Unauthorized 401 错误响应
func Unauthorized(c *gin.Context, message string) {
	Error(c, http.StatusUnauthorized, message)
}

// InternalError 500 错误响应
func InternalError(c *gin.Context, message string) {
	Error(c, http.StatusInternalServerError, message)
}

// NotFound 404 错误响应
func NotFound(c *gin.Context, message string) {
	Error(c, http.StatusNotFound, message)
}

// FromError 按错误类型映射响应：
// 业务错误输出稳定错误码载荷，基础设施错误记录日志且不泄露内部细节
func FromError(c *gin.Context, err error) {
	if ae, ok := apperr.AsAppError(err); ok {
		if ae.Kind == apperr.KindInfrastructure {
			log.Printf("[严重] %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
			c.JSON(ae.StatusCode, Response{
				Code:    ae.StatusCode,
				Message: "内部错误",
				Error: gin.H{
					"name":       ae.Name,
					"message":    "内部错误",
					"code":       ae.Code,
					"statusCode": ae.StatusCode,
					"timestamp":  ae.Timestamp,
				},
			})
			return
		}
		c.JSON(ae.StatusCode, Response{
			Code:    ae.StatusCode,
			Message: ae.Message,
			Error:   ae,
		})
		return
	}
	// 未分类错误按 500 处理
	log.Printf("[错误] %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	InternalError(c, SafeErrorMessage(err, "操作失败"))
}
