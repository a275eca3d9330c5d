package handler

import "catalog-cms/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Year       *YearHandler
	Location   *LocationHandler
	Collection *CollectionHandler
	Asset      *AssetHandler
	Audit      *AuditHandler
	Export     *ExportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Year:       NewYearHandler(svc.Year),
		Location:   NewLocationHandler(svc.Location),
		Collection: NewCollectionHandler(svc.Collection),
		Asset:      NewAssetHandler(svc.Asset),
		Audit:      NewAuditHandler(svc.Audit),
		Export:     NewExportHandler(svc.Export),
	}
}
