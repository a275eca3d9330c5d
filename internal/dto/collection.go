package dto

// ── 合集模块 DTO ──

// CreateCollectionRequest 创建合集请求
type CreateCollectionRequest struct {
	Title        string  `json:"title"`
	Slug         *string `json:"slug"`
	LocationID   *string `json:"locationId"`
	Summary      *string `json:"summary"`
	CoverAssetID *string `json:"coverAssetId"`
	Status       *string `json:"status"`
	OrderIndex   *string `json:"orderIndex"`
}

// UpdateCollectionRequest 更新合集请求
type UpdateCollectionRequest struct {
	Title        OptionalString `json:"title"`
	Slug         OptionalString `json:"slug"`
	LocationID   OptionalString `json:"locationId"`
	Summary      OptionalString `json:"summary"`
	CoverAssetID OptionalString `json:"coverAssetId"`
	Status       OptionalString `json:"status"`
	OrderIndex   OptionalString `json:"orderIndex"`
}

// CollectionResponse 合集信息响应
type CollectionResponse struct {
	ID           string  `json:"id"`
	YearID       string  `json:"yearId"`
	LocationID   *string `json:"locationId"`
	Slug         string  `json:"slug"`
	Title        string  `json:"title"`
	Summary      *string `json:"summary"`
	CoverAssetID *string `json:"coverAssetId"`
	Status       string  `json:"status"`
	OrderIndex   string  `json:"orderIndex"`
	AssetCount   int64   `json:"assetCount"`
	CreatedAt    string  `json:"createdAt"`
	UpdatedAt    string  `json:"updatedAt"`
}

// UpdateCollectionResponse 更新结果
type UpdateCollectionResponse struct {
	Collection CollectionResponse `json:"collection"`
	Changes    Changes            `json:"changes"`
}
