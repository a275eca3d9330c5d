package service

import (
	"context"
	"errors"
	"strings"

	"catalog-cms/internal/dto"
	"catalog-cms/internal/event"
	"catalog-cms/internal/model"
	"catalog-cms/internal/repository"
	apperrors "catalog-cms/pkg/errors"
	"catalog-cms/pkg/orderindex"
)

// YearService 年份业务接口（不含发布流程）
type YearService interface {
	List(ctx context.Context) ([]dto.YearResponse, error)
	Get(ctx context.Context, id string) (*dto.YearResponse, error)
	Create(ctx context.Context, req *dto.CreateYearRequest, actor model.Actor) (*dto.YearResponse, error)
}

type yearService struct {
	Deps
}

// NewYearService 创建 YearService 实例
func NewYearService(d Deps) YearService {
	return &yearService{Deps: d}
}

func (s *yearService) List(ctx context.Context) ([]dto.YearResponse, error) {
	years, err := s.Repo.Year.List(ctx)
	if err != nil {
		return nil, internalErr(s.Logger, "列出年份失败", err)
	}
	orderindex.Sort(years, func(y model.Year) string { return y.OrderIndex })

	out := make([]dto.YearResponse, 0, len(years))
	for i := range years {
		out = append(out, *toYearResponse(&years[i]))
	}
	return out, nil
}

func (s *yearService) Get(ctx context.Context, id string) (*dto.YearResponse, error) {
	year, err := requireYear(ctx, s.Deps, id)
	if err != nil {
		return nil, err
	}
	return toYearResponse(year), nil
}

func (s *yearService) Create(ctx context.Context, req *dto.CreateYearRequest, actor model.Actor) (*dto.YearResponse, error) {
	label := strings.TrimSpace(req.Label)
	if label == "" {
		return nil, apperrors.Validation("label", "年份标签不能为空")
	}

	status := model.StatusDraft
	if req.Status != nil {
		status = strings.TrimSpace(*req.Status)
		if !model.ValidStatus(status) {
			return nil, apperrors.Validationf("status", "状态必须为 draft 或 published，实际 %q", *req.Status)
		}
	}

	var idx string
	if req.OrderIndex != nil {
		v, err := explicitOrderIndex(*req.OrderIndex)
		if err != nil {
			return nil, err
		}
		idx = v
	} else {
		indexes, err := s.Repo.Year.ListOrderIndexes(ctx)
		if err != nil {
			return nil, internalErr(s.Logger, "查询年份排序失败", err)
		}
		idx = orderindex.NextAppend(orderindex.Last(indexes))
	}

	year := &model.Year{Label: label, Status: status, OrderIndex: idx}
	year.Stamp(actor.ID, true)
	if err := s.Repo.Year.Create(ctx, year); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.Conflict("label", "年份已存在")
		}
		return nil, internalErr(s.Logger, "创建年份失败", err)
	}

	resp := toYearResponse(year)
	publish(ctx, s.Deps, actor, event.EntityChanged{
		EntityType: model.EntityYear,
		EntityID:   year.YearID,
		YearID:     year.YearID,
		Action:     model.ActionCreate,
		Payload:    resp,
	})
	return resp, nil
}

func toYearResponse(y *model.Year) *dto.YearResponse {
	return &dto.YearResponse{
		ID:         y.YearID,
		Label:      y.Label,
		OrderIndex: y.OrderIndex,
		Status:     y.Status,
		CreatedAt:  dto.FormatTime(y.CreatedAt),
		UpdatedAt:  dto.FormatTime(y.UpdatedAt),
	}
}
