package handler

import (
	"github.com/gin-gonic/gin"

	"catalog-cms/internal/dto"
	"catalog-cms/internal/service"
	"catalog-cms/pkg/response"
)

// CollectionHandler 合集模块 HTTP 处理器
type CollectionHandler struct {
	collectionSvc service.CollectionService
}

// NewCollectionHandler 创建 CollectionHandler
func NewCollectionHandler(collectionSvc service.CollectionService) *CollectionHandler {
	return &CollectionHandler{collectionSvc: collectionSvc}
}

// ListCollections GET /api/v1/years/:yearId/collections
func (h *CollectionHandler) ListCollections(c *gin.Context) {
	yearID, ok := mustParam(c, "yearId")
	if !ok {
		return
	}

	collections, err := h.collectionSvc.ListForYear(c.Request.Context(), yearID)
	if err != nil {
		response.AppError(c, err)
		return
	}

	response.OK(c, gin.H{"list": collections})
}

// CreateCollection POST /api/v1/years/:yearId/collections
func (h *CollectionHandler) CreateCollection(c *gin.Context) {
	yearID, ok := mustParam(c, "yearId")
	if !ok {
		return
	}

	var req dto.CreateCollectionRequest
	if !bindJSON(c, &req) {
		return
	}

	collection, err := h.collectionSvc.Create(c.Request.Context(), yearID, &req, ActorFromContext(c))
	if err != nil {
		response.AppError(c, err)
		return
	}

	response.Created(c, collection)
}

// UpdateCollection PUT /api/v1/years/:yearId/collections/:id
func (h *CollectionHandler) UpdateCollection(c *gin.Context) {
	yearID, ok := mustParam(c, "yearId")
	if !ok {
		return
	}
	id, ok := mustParam(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateCollectionRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.collectionSvc.Update(c.Request.Context(), yearID, id, &req, ActorFromContext(c))
	if err != nil {
		response.AppError(c, err)
		return
	}

	response.OK(c, result)
}

// DeleteCollection DELETE /api/v1/years/:yearId/collections/:id
func (h *CollectionHandler) DeleteCollection(c *gin.Context) {
	yearID, ok := mustParam(c, "yearId")
	if !ok {
		return
	}
	id, ok := mustParam(c, "id")
	if !ok {
		return
	}

	if _, err := h.collectionSvc.Delete(c.Request.Context(), yearID, id, ActorFromContext(c)); err != nil {
		response.AppError(c, err)
		return
	}

	response.NoContent(c)
}

// ReorderCollections POST /api/v1/years/:yearId/collections/reorder
func (h *CollectionHandler) ReorderCollections(c *gin.Context) {
	yearID, ok := mustParam(c, "yearId")
	if !ok {
		return
	}
	orderedIDs, ok := bindReorder(c)
	if !ok {
		return
	}

	collections, err := h.collectionSvc.Reorder(c.Request.Context(), yearID, orderedIDs, ActorFromContext(c))
	if err != nil {
		response.AppError(c, err)
		return
	}

	response.OK(c, gin.H{"list": collections})
}

// MoveCollection POST /api/v1/years/:yearId/collections/:id/move
func (h *CollectionHandler) MoveCollection(c *gin.Context) {
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

	collection, err := h.collectionSvc.Move(c.Request.Context(), yearID, id, afterID, ActorFromContext(c))
	if err != nil {
		response.AppError(c, err)
		return
	}

	response.OK(c, collection)
}
