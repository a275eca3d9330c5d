package handler

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"catalog-cms/internal/service"
	"catalog-cms/pkg/response"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportHandler 导出模块 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportYear 导出年份下的地点与合集
// GET /api/v1/years/:yearId/export
func (h *ExportHandler) ExportYear(c *gin.Context) {
	yearID, ok := mustParam(c, "yearId")
	if !ok {
		return
	}

	buf, filename, err := h.exportSvc.ExportYear(c.Request.Context(), yearID)
	if err != nil {
		response.AppError(c, err)
		return
	}

	// 设置下载响应头
	encodedFilename := url.QueryEscape(filename)
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+encodedFilename)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
