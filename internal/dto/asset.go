package dto

import "encoding/json"

// ── 合集资源 DTO ──

// AttachAssetRequest 关联资源请求
type AttachAssetRequest struct {
	AssetID string `json:"assetId" binding:"required"`
}

// CollectionAssetResponse 合集内资源
type CollectionAssetResponse struct {
	ID           string `json:"id"`
	CollectionID string `json:"collectionId"`
	AssetID      string `json:"assetId"`
	Title        string `json:"title"`
	StorageKey   string `json:"storageKey"`
	OrderIndex   string `json:"orderIndex"`
	CreatedAt    string `json:"createdAt"`
}

// ── 审计日志 DTO ──

// AuditLogListRequest 审计日志查询参数
type AuditLogListRequest struct {
	EntityType string `form:"entityType" binding:"omitempty,oneof=year location collection"`
	EntityID   string `form:"entityId"`
	Limit      int    `form:"limit"      binding:"omitempty,min=1,max=500"`
}

// AuditLogResponse 审计日志条目
type AuditLogResponse struct {
	ID         string          `json:"id"`
	Actor      string          `json:"actor"`
	ActorType  string          `json:"actorType"`
	EntityType string          `json:"entityType"`
	EntityID   string          `json:"entityId"`
	Action     string          `json:"action"`
	Payload    json.RawMessage `json:"payload,omitempty"`
	RequestID  string          `json:"requestId,omitempty"`
	Timestamp  string          `json:"timestamp"`
}
