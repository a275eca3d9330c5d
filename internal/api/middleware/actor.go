package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// actorMaxLen 限制外部传入的操作者标识长度，防止日志与审计注入
const actorMaxLen = 100

// Actor 操作者识别中间件
// 从请求头 X-Actor-ID / X-Actor-Type 读取操作者并注入 gin.Context；
// 缺失或过长时留空，由 Handler 使用默认操作者（不做认证）
func Actor() gin.HandlerFunc {
	return func(c *gin.Context) {
		if id := headerValue(c, "X-Actor-ID"); id != "" {
			c.Set(ActorIDKey, id)
		}
		if typ := headerValue(c, "X-Actor-Type"); typ != "" {
			c.Set(ActorTypeKey, typ)
		}
		c.Next()
	}
}

func headerValue(c *gin.Context, name string) string {
	v := strings.TrimSpace(c.GetHeader(name))
	if len(v) > actorMaxLen {
		return ""
	}
	return v
}
