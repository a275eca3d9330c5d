package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code 业务错误分类，原样透传到 HTTP 响应体的 error 字段
type Code string

const (
	CodeValidation     Code = "VALIDATION"
	CodeConflict       Code = "CONFLICT"
	CodeHasCollections Code = "HAS_COLLECTIONS"
	CodeNotFound       Code = "NOT_FOUND"
	CodeInternal       Code = "INTERNAL"
)

// Error 带分类与字段信息的业务错误
type Error struct {
	Code    Code
	Message string
	Field   string
	Err     error
}

func (e *Error) Error() string {
	msg := string(e.Code) + ": " + e.Message
	if e.Field != "" {
		msg += " (field=" + e.Field + ")"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is 按错误分类比较，便于 errors.Is(err, errors.ErrValidation) 这类判断
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Field != "" && t.Field != e.Field {
		return false
	}
	// HAS_COLLECTIONS 属于 CONFLICT 的特例
	return t.Code == e.Code || (t.Code == CodeConflict && e.Code == CodeHasCollections)
}

// HTTPStatus 错误分类对应的 HTTP 状态码
func (e *Error) HTTPStatus() int {
	switch e.Code {
	case CodeValidation:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict, CodeHasCollections:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// ── 分类哨兵（仅用于 errors.Is 比较） ──

var (
	ErrValidation     = &Error{Code: CodeValidation}
	ErrConflict       = &Error{Code: CodeConflict}
	ErrHasCollections = &Error{Code: CodeHasCollections}
	ErrNotFound       = &Error{Code: CodeNotFound}
	ErrInternal       = &Error{Code: CodeInternal}
)

// ── 构造函数 ──

func Validation(field, message string) *Error {
	return &Error{Code: CodeValidation, Field: field, Message: message}
}

func Validationf(field, format string, args ...any) *Error {
	return Validation(field, fmt.Sprintf(format, args...))
}

func Conflict(field, message string) *Error {
	return &Error{Code: CodeConflict, Field: field, Message: message}
}

func HasCollections(message string) *Error {
	return &Error{Code: CodeHasCollections, Message: message}
}

func NotFound(message string) *Error {
	return &Error{Code: CodeNotFound, Message: message}
}

// Internal 包装非预期的存储错误，对外只暴露通用提示
func Internal(err error) *Error {
	return &Error{Code: CodeInternal, Message: "服务器内部错误", Err: err}
}

// From 提取链路中的业务错误；非业务错误一律视为 INTERNAL
func From(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal(err)
}
