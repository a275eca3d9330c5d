package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// gin.Context 中由中间件注入的键，Handler 通过它们组装 model.Actor
const (
	RequestIDKey = "request_id"
	ActorIDKey   = "actor_id"
	ActorTypeKey = "actor_type"
)

// requestIDMaxLen 与 audit_logs.request_id 列宽一致
const requestIDMaxLen = 64

// RequestID 请求追踪 ID 中间件
// 优先沿用上游网关传入的 X-Request-ID，缺失或不合法时生成 UUID；
// 该 ID 会写入访问日志，并随变更事件落入审计日志
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader("X-Request-ID")
		if !validRequestID(rid) {
			rid = uuid.NewString()
		}

		c.Set(RequestIDKey, rid)
		c.Header("X-Request-ID", rid)

		c.Next()
	}
}

// validRequestID 只接受 [A-Za-z0-9._-]，防止日志与审计注入
func validRequestID(rid string) bool {
	if rid == "" || len(rid) > requestIDMaxLen {
		return false
	}
	for i := 0; i < len(rid); i++ {
		ch := rid[i]
		switch {
		case ch >= 'a' && ch <= 'z', ch >= 'A' && ch <= 'Z', ch >= '0' && ch <= '9':
		case ch == '-' || ch == '_' || ch == '.':
		default:
			return false
		}
	}
	return true
}
