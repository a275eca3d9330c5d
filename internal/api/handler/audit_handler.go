package handler

import (
	"github.com/gin-gonic/gin"

	"catalog-cms/internal/dto"
	"catalog-cms/internal/service"
	"catalog-cms/pkg/response"
)

// AuditHandler 审计日志 HTTP 处理器（只读）
type AuditHandler struct {
	auditSvc service.AuditService
}

// NewAuditHandler 创建 AuditHandler
func NewAuditHandler(auditSvc service.AuditService) *AuditHandler {
	return &AuditHandler{auditSvc: auditSvc}
}

// ListAuditLogs 按实体过滤，最新的在前
// GET /api/v1/audit-logs?entityType=location&entityId=xxx&limit=50
func (h *AuditHandler) ListAuditLogs(c *gin.Context) {
	var req dto.AuditLogListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "", "查询参数不合法")
		return
	}

	entries, err := h.auditSvc.List(c.Request.Context(), &req)
	if err != nil {
		response.AppError(c, err)
		return
	}

	response.OK(c, gin.H{"list": entries})
}
