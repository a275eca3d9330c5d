package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "catalog-cms/pkg/errors"
)

// Response 统一成功响应结构
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ErrorBody 错误响应结构：error 为错误分类，field 指出出错的字段
type ErrorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// ── 成功响应 ──

// OK 200 成功响应
func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// Created 201 创建成功
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// NoContent 204 无响应体
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// ── 错误响应 ──

// Error 通用错误响应
func Error(c *gin.Context, httpStatus int, code apperrors.Code, message, field string) {
	c.AbortWithStatusJSON(httpStatus, ErrorBody{
		Error:   string(code),
		Message: message,
		Field:   field,
	})
}

// AppError 按业务错误分类输出；非业务错误一律 500，且不暴露内部细节
func AppError(c *gin.Context, err error) {
	appErr := apperrors.From(err)
	Error(c, appErr.HTTPStatus(), appErr.Code, appErr.Message, appErr.Field)
}

// ── 常见快捷方式 ──

// BadRequest 400（请求体或参数无法绑定）
func BadRequest(c *gin.Context, field, message string) {
	Error(c, http.StatusBadRequest, apperrors.CodeValidation, message, field)
}

// NotFound 404
func NotFound(c *gin.Context, message string) {
	Error(c, http.StatusNotFound, apperrors.CodeNotFound, message, "")
}

// TooManyRequests 429
func TooManyRequests(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusTooManyRequests, ErrorBody{Error: "RATE_LIMITED", Message: message})
}

// InternalError 500
func InternalError(c *gin.Context) {
	Error(c, http.StatusInternalServerError, apperrors.CodeInternal, "服务器内部错误", "")
}
