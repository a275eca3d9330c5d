package dto

// ── 地点模块 DTO ──

// CreateLocationRequest 创建地点请求
// slug 省略时由名称与年份后缀推导；orderIndex 省略时追加到末尾
type CreateLocationRequest struct {
	Name         string  `json:"name"`
	Slug         *string `json:"slug"`
	Summary      *string `json:"summary"`
	CoverAssetID *string `json:"coverAssetId"`
	OrderIndex   *string `json:"orderIndex"`
}

// UpdateLocationRequest 更新地点请求（仅修改出现的字段）
type UpdateLocationRequest struct {
	Name         OptionalString `json:"name"`
	Slug         OptionalString `json:"slug"`
	Summary      OptionalString `json:"summary"`
	CoverAssetID OptionalString `json:"coverAssetId"`
	OrderIndex   OptionalString `json:"orderIndex"`
}

// LocationResponse 地点信息响应
type LocationResponse struct {
	ID              string  `json:"id"`
	YearID          string  `json:"yearId"`
	Name            string  `json:"name"`
	Slug            string  `json:"slug"`
	Summary         *string `json:"summary"`
	CoverAssetID    *string `json:"coverAssetId"`
	OrderIndex      string  `json:"orderIndex"`
	CollectionCount int64   `json:"collectionCount"`
	CreatedAt       string  `json:"createdAt"`
	UpdatedAt       string  `json:"updatedAt"`
}

// UpdateLocationResponse 更新结果：新值与字段级差异
type UpdateLocationResponse struct {
	Location LocationResponse `json:"location"`
	Changes  Changes          `json:"changes"`
}
