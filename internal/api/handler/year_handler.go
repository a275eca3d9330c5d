package handler

import (
	"github.com/gin-gonic/gin"

	"catalog-cms/internal/dto"
	"catalog-cms/internal/service"
	"catalog-cms/pkg/response"
)

// YearHandler 年份模块 HTTP 处理器
type YearHandler struct {
	yearSvc service.YearService
}

// NewYearHandler 创建 YearHandler
func NewYearHandler(yearSvc service.YearService) *YearHandler {
	return &YearHandler{yearSvc: yearSvc}
}

// ListYears GET /api/v1/years
func (h *YearHandler) ListYears(c *gin.Context) {
	years, err := h.yearSvc.List(c.Request.Context())
	if err != nil {
		response.AppError(c, err)
		return
	}
	response.OK(c, gin.H{"list": years})
}

// GetYear GET /api/v1/years/:yearId
func (h *YearHandler) GetYear(c *gin.Context) {
	yearID, ok := mustParam(c, "yearId")
	if !ok {
		return
	}

	year, err := h.yearSvc.Get(c.Request.Context(), yearID)
	if err != nil {
		response.AppError(c, err)
		return
	}
	response.OK(c, year)
}

// CreateYear POST /api/v1/years
func (h *YearHandler) CreateYear(c *gin.Context) {
	var req dto.CreateYearRequest
	if !bindJSON(c, &req) {
		return
	}

	year, err := h.yearSvc.Create(c.Request.Context(), &req, ActorFromContext(c))
	if err != nil {
		response.AppError(c, err)
		return
	}
	response.Created(c, year)
}
