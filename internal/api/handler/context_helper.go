package handler

import (
	"strings"

	"github.com/gin-gonic/gin"

	"catalog-cms/internal/api/middleware"
	"catalog-cms/internal/dto"
	"catalog-cms/internal/model"
	"catalog-cms/internal/service"
	"catalog-cms/pkg/response"
)

// ActorFromContext 从 Gin 上下文提取操作者与请求追踪 ID（由 middleware.Actor / RequestID 注入）。
// 未经过中间件时返回默认操作者，不中断请求。
func ActorFromContext(c *gin.Context) model.Actor {
	actor := model.Actor{
		ID:        service.AnonymousActor,
		Type:      service.DefaultActorType,
		RequestID: c.GetString(middleware.RequestIDKey),
	}
	if s := c.GetString(middleware.ActorIDKey); s != "" {
		actor.ID = s
	}
	if s := c.GetString(middleware.ActorTypeKey); s != "" {
		actor.Type = s
	}
	return actor
}

// mustParam 读取路径参数，空值时写入 400 响应。调用方应在 ok=false 时直接 return
func mustParam(c *gin.Context, name string) (string, bool) {
	v := strings.TrimSpace(c.Param(name))
	if v == "" {
		response.BadRequest(c, name, name+" 不能为空")
		return "", false
	}
	return v, true
}

// bindJSON 请求体无法解析时写入 400 响应
func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		response.BadRequest(c, "", "请求体格式不正确")
		return false
	}
	return true
}

// bindReorder 解析整体重排请求，orderedIds 必须出现
func bindReorder(c *gin.Context) ([]string, bool) {
	var req dto.ReorderRequest
	if !bindJSON(c, &req) {
		return nil, false
	}
	if req.OrderedIDs == nil {
		response.BadRequest(c, "orderedIds", "orderedIds 不能为空")
		return nil, false
	}
	return req.OrderedIDs, true
}

// bindMove 解析移动请求；afterId 缺省或为 null 表示移到首位
func bindMove(c *gin.Context) (string, bool) {
	var req dto.MoveRequest
	if c.Request.ContentLength == 0 {
		return "", true
	}
	if !bindJSON(c, &req) {
		return "", false
	}
	if req.AfterID == nil {
		return "", true
	}
	return strings.TrimSpace(*req.AfterID), true
}
