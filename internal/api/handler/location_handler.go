package handler

import (
	"github.com/gin-gonic/gin"

	"catalog-cms/internal/dto"
	"catalog-cms/internal/service"
	"catalog-cms/pkg/response"
)

// LocationHandler 地点模块 HTTP 处理器
type LocationHandler struct {
	locationSvc service.LocationService
}

// NewLocationHandler 创建 LocationHandler
func NewLocationHandler(locationSvc service.LocationService) *LocationHandler {
	return &LocationHandler{locationSvc: locationSvc}
}

// ListLocations 按展示顺序获取年份下的地点
// GET /api/v1/years/:yearId/locations
func (h *LocationHandler) ListLocations(c *gin.Context) {
	yearID, ok := mustParam(c, "yearId")
	if !ok {
		return
	}

	locations, err := h.locationSvc.ListForYear(c.Request.Context(), yearID)
	if err != nil {
		response.AppError(c, err)
		return
	}

	response.OK(c, gin.H{"list": locations})
}

// CreateLocation 创建地点
// POST /api/v1/years/:yearId/locations
func (h *LocationHandler) CreateLocation(c *gin.Context) {
	yearID, ok := mustParam(c, "yearId")
	if !ok {
		return
	}

	var req dto.CreateLocationRequest
	if !bindJSON(c, &req) {
		return
	}

	location, err := h.locationSvc.Create(c.Request.Context(), yearID, &req, ActorFromContext(c))
	if err != nil {
		response.AppError(c, err)
		return
	}

	response.Created(c, location)
}

// UpdateLocation 更新地点（只修改请求体中出现的字段）
// PUT /api/v1/years/:yearId/locations/:id
func (h *LocationHandler) UpdateLocation(c *gin.Context) {
	yearID, ok := mustParam(c, "yearId")
	if !ok {
		return
	}
	id, ok := mustParam(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateLocationRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.locationSvc.Update(c.Request.Context(), yearID, id, &req, ActorFromContext(c))
	if err != nil {
		response.AppError(c, err)
		return
	}

	response.OK(c, result)
}

// DeleteLocation 删除地点；仍有合集时返回 409 HAS_COLLECTIONS
// DELETE /api/v1/years/:yearId/locations/:id
func (h *LocationHandler) DeleteLocation(c *gin.Context) {
	yearID, ok := mustParam(c, "yearId")
	if !ok {
		return
	}
	id, ok := mustParam(c, "id")
	if !ok {
		return
	}

	if _, err := h.locationSvc.Delete(c.Request.Context(), yearID, id, ActorFromContext(c)); err != nil {
		response.AppError(c, err)
		return
	}

	response.NoContent(c)
}

// ReorderLocations 整体重排
// POST /api/v1/years/:yearId/locations/reorder
func (h *LocationHandler) ReorderLocations(c *gin.Context) {
	yearID, ok := mustParam(c, "yearId")
	if !ok {
		return
	}
	orderedIDs, ok := bindReorder(c)
	if !ok {
		return
	}

	locations, err := h.locationSvc.Reorder(c.Request.Context(), yearID, orderedIDs, ActorFromContext(c))
	if err != nil {
		response.AppError(c, err)
		return
	}

	response.OK(c, gin.H{"list": locations})
}

// ReorderByLocation 重排某个地点所属年份的全部地点
// POST /api/v1/locations/:locationId/reorder
func (h *LocationHandler) ReorderByLocation(c *gin.Context) {
	locationID, ok := mustParam(c, "locationId")
	if !ok {
		return
	}
	orderedIDs, ok := bindReorder(c)
	if !ok {
		return
	}

	locations, err := h.locationSvc.ReorderByLocation(c.Request.Context(), locationID, orderedIDs, ActorFromContext(c))
	if err != nil {
		response.AppError(c, err)
		return
	}

	response.OK(c, gin.H{"list": locations})
}

// MoveLocation 移动到 afterId 之后
// POST /api/v1/years/:yearId/locations/:id/move
func (h *LocationHandler) MoveLocation(c *gin.Context) {
	yearID, ok := mustParam(c, "yearId")
	if !ok {
		return
	}
	id, ok := mustParam(c, "id")
	if !ok {
		return
	}
	afterID, ok := bindMove(c)
	if !ok {
		return
	}

	location, err := h.locationSvc.Move(c.Request.Context(), yearID, id, afterID, ActorFromContext(c))
	if err != nil {
		response.AppError(c, err)
		return
	}

	response.OK(c, location)
}
