package handler

import (
	"github.com/gin-gonic/gin"

	"catalog-cms/internal/dto"
	"catalog-cms/internal/service"
	"catalog-cms/pkg/response"
)

// AssetHandler 合集资源 HTTP 处理器
type AssetHandler struct {
	assetSvc service.AssetService
}

// NewAssetHandler 创建 AssetHandler
func NewAssetHandler(assetSvc service.AssetService) *AssetHandler {
	return &AssetHandler{assetSvc: assetSvc}
}

// ListAssets GET /api/v1/collections/:collectionId/assets
func (h *AssetHandler) ListAssets(c *gin.Context) {
	collectionID, ok := mustParam(c, "collectionId")
	if !ok {
		return
	}

	assets, err := h.assetSvc.ListForCollection(c.Request.Context(), collectionID)
	if err != nil {
		response.AppError(c, err)
		return
	}

	response.OK(c, gin.H{"list": assets})
}

// AttachAsset POST /api/v1/collections/:collectionId/assets
func (h *AssetHandler) AttachAsset(c *gin.Context) {
	collectionID, ok := mustParam(c, "collectionId")
	if !ok {
		return
	}

	var req dto.AttachAssetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "assetId", "assetId 不能为空")
		return
	}

	link, err := h.assetSvc.Attach(c.Request.Context(), collectionID, &req, ActorFromContext(c))
	if err != nil {
		response.AppError(c, err)
		return
	}

	response.Created(c, link)
}

// DetachAsset DELETE /api/v1/collections/:collectionId/assets/:assetId
func (h *AssetHandler) DetachAsset(c *gin.Context) {
	collectionID, ok := mustParam(c, "collectionId")
	if !ok {
		return
	}
	assetID, ok := mustParam(c, "assetId")
	if !ok {
		return
	}

	if err := h.assetSvc.Detach(c.Request.Context(), collectionID, assetID, ActorFromContext(c)); err != nil {
		response.AppError(c, err)
		return
	}

	response.NoContent(c)
}

// ReorderAssets POST /api/v1/collections/:collectionId/assets/reorder
func (h *AssetHandler) ReorderAssets(c *gin.Context) {
	collectionID, ok := mustParam(c, "collectionId")
	if !ok {
		return
	}
	orderedIDs, ok := bindReorder(c)
	if !ok {
		return
	}

	assets, err := h.assetSvc.Reorder(c.Request.Context(), collectionID, orderedIDs, ActorFromContext(c))
	if err != nil {
		response.AppError(c, err)
		return
	}

	response.OK(c, gin.H{"list": assets})
}
