package service

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"catalog-cms/internal/dto"
	"catalog-cms/internal/model"
	"catalog-cms/internal/repository"
)

// AuditService 审计日志只读查询
type AuditService interface {
	List(ctx context.Context, req *dto.AuditLogListRequest) ([]dto.AuditLogResponse, error)
}

type auditService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewAuditService 创建 AuditService 实例
func NewAuditService(repo *repository.Repository, logger *zap.Logger) AuditService {
	return &auditService{repo: repo, logger: logger}
}

func (s *auditService) List(ctx context.Context, req *dto.AuditLogListRequest) ([]dto.AuditLogResponse, error) {
	entries, err := s.repo.Audit.List(ctx, repository.AuditFilter{
		EntityType: req.EntityType,
		EntityID:   req.EntityID,
		Limit:      req.Limit,
	})
	if err != nil {
		return nil, internalErr(s.logger, "查询审计日志失败", err)
	}

	out := make([]dto.AuditLogResponse, 0, len(entries))
	for i := range entries {
		out = append(out, toAuditLogResponse(&entries[i]))
	}
	return out, nil
}

func toAuditLogResponse(e *model.AuditLog) dto.AuditLogResponse {
	resp := dto.AuditLogResponse{
		ID:         e.ID,
		Actor:      e.Actor,
		ActorType:  e.ActorType,
		EntityType: e.EntityType,
		EntityID:   e.EntityID,
		Action:     e.Action,
		RequestID:  e.RequestID,
		Timestamp:  dto.FormatTime(e.OccurredAt),
	}
	if e.Payload != "" && json.Valid([]byte(e.Payload)) {
		resp.Payload = json.RawMessage(e.Payload)
	}
	return resp
}
