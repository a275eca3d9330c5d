package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"catalog-cms/internal/dto"
	"catalog-cms/internal/event"
	"catalog-cms/internal/model"
	"catalog-cms/internal/repository"
	apperrors "catalog-cms/pkg/errors"
	"catalog-cms/pkg/orderindex"
	"catalog-cms/pkg/slug"
)

// LocationService 地点业务接口
type LocationService interface {
	// ListForYear 按展示顺序返回年份下的地点（含合集数量）
	ListForYear(ctx context.Context, yearID string) ([]dto.LocationResponse, error)
	Create(ctx context.Context, yearID string, req *dto.CreateLocationRequest, actor model.Actor) (*dto.LocationResponse, error)
	Update(ctx context.Context, yearID, id string, req *dto.UpdateLocationRequest, actor model.Actor) (*dto.UpdateLocationResponse, error)
	// Delete 返回删除前的快照
	Delete(ctx context.Context, yearID, id string, actor model.Actor) (*dto.LocationResponse, error)
	Reorder(ctx context.Context, yearID string, orderedIDs []string, actor model.Actor) ([]dto.LocationResponse, error)
	// ReorderByLocation 重排 locationID 所属年份的全部地点
	ReorderByLocation(ctx context.Context, locationID string, orderedIDs []string, actor model.Actor) ([]dto.LocationResponse, error)
	// Move 移动到 afterID 之后；afterID 为空表示移到首位
	Move(ctx context.Context, yearID, id, afterID string, actor model.Actor) (*dto.LocationResponse, error)
}

type locationService struct {
	Deps
	slugOwner slugOwner
}

// NewLocationService 创建 LocationService 实例
func NewLocationService(d Deps) LocationService {
	return &locationService{Deps: d, slugOwner: locationSlugOwner(d.Repo.Location)}
}

const locationsCacheKind = "locations"

// ────────────────────── ListForYear ──────────────────────

func (s *locationService) ListForYear(ctx context.Context, yearID string) ([]dto.LocationResponse, error) {
	return readThrough(ctx, s.Deps, locationsCacheKind, yearID, func(ctx context.Context) ([]dto.LocationResponse, error) {
		if _, err := requireYear(ctx, s.Deps, yearID); err != nil {
			return nil, err
		}
		locs, err := s.sortedForYear(ctx, yearID)
		if err != nil {
			return nil, err
		}
		return toLocationResponses(locs), nil
	})
}

// ────────────────────── Create ──────────────────────

func (s *locationService) Create(ctx context.Context, yearID string, req *dto.CreateLocationRequest, actor model.Actor) (*dto.LocationResponse, error) {
	year, err := requireYear(ctx, s.Deps, yearID)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperrors.Validation("name", "名称不能为空")
	}

	var locSlug string
	if req.Slug == nil || strings.TrimSpace(*req.Slug) == "" {
		derived, ok := slug.ForLocation(name, year.Label)
		if !ok {
			return nil, apperrors.Validation("slug", "无法从名称推导 slug，请显式提供")
		}
		locSlug = derived
	} else {
		locSlug = slug.Normalize(*req.Slug)
	}
	if err := slug.ValidateFormat(locSlug, slug.LocationPattern); err != nil {
		return nil, apperrors.Validation("slug", err.Error())
	}
	if err := ensureUnique(ctx, s.slugOwner, yearID, locSlug, ""); err != nil {
		return nil, s.wrap("校验 slug 唯一性失败", err, yearID)
	}

	// 读取末位再写入，没有加锁：并发创建可能得到相同的排序标记
	var idx string
	if req.OrderIndex != nil {
		if idx, err = explicitOrderIndex(*req.OrderIndex); err != nil {
			return nil, err
		}
	} else {
		indexes, err := s.Repo.Location.ListOrderIndexes(ctx, yearID)
		if err != nil {
			return nil, internalErr(s.Logger, "查询地点排序失败", err, zap.String("year_id", yearID))
		}
		idx = orderindex.NextAppend(orderindex.Last(indexes))
	}

	loc := &model.Location{
		YearID:       yearID,
		Name:         name,
		Slug:         locSlug,
		Summary:      cleanText(req.Summary),
		CoverAssetID: cleanText(req.CoverAssetID),
		OrderIndex:   idx,
	}
	loc.Stamp(actor.ID, true)

	if err := s.Repo.Location.Create(ctx, loc); err != nil {
		return nil, s.wrap("创建地点失败", err, yearID)
	}

	resp := toLocationResponse(loc)
	publish(ctx, s.Deps, actor, event.EntityChanged{
		EntityType: model.EntityLocation,
		EntityID:   loc.LocationID,
		YearID:     yearID,
		Action:     model.ActionCreate,
		Payload:    resp,
	})
	return resp, nil
}

// ────────────────────── Update ──────────────────────

func (s *locationService) Update(ctx context.Context, yearID, id string, req *dto.UpdateLocationRequest, actor model.Actor) (*dto.UpdateLocationResponse, error) {
	loc, err := s.get(ctx, yearID, id)
	if err != nil {
		return nil, err
	}

	changes := dto.Changes{}

	if req.Name.Set {
		name := strings.TrimSpace(req.Name.Value)
		if req.Name.Null || name == "" {
			return nil, apperrors.Validation("name", "名称不能为空")
		}
		if trackString(changes, "name", loc.Name, name) {
			loc.Name = name
		}
	}

	if req.Slug.Set {
		if req.Slug.Null || strings.TrimSpace(req.Slug.Value) == "" {
			return nil, apperrors.Validation("slug", "slug 不能为空")
		}
		next := slug.Normalize(req.Slug.Value)
		if err := slug.ValidateFormat(next, slug.LocationPattern); err != nil {
			return nil, apperrors.Validation("slug", err.Error())
		}
		if next != loc.Slug {
			if err := ensureUnique(ctx, s.slugOwner, yearID, next, id); err != nil {
				return nil, s.wrap("校验 slug 唯一性失败", err, yearID)
			}
			trackString(changes, "slug", loc.Slug, next)
			loc.Slug = next
		}
	}

	if req.Summary.Set {
		next := cleanText(req.Summary.Ptr())
		if trackPtr(changes, "summary", loc.Summary, next) {
			loc.Summary = next
		}
	}

	if req.CoverAssetID.Set {
		next := cleanText(req.CoverAssetID.Ptr())
		if trackPtr(changes, "coverAssetId", loc.CoverAssetID, next) {
			loc.CoverAssetID = next
		}
	}

	if req.OrderIndex.Set {
		if req.OrderIndex.Null {
			return nil, apperrors.Validation("orderIndex", "排序标记不能为空")
		}
		next, err := explicitOrderIndex(req.OrderIndex.Value)
		if err != nil {
			return nil, err
		}
		if trackString(changes, "orderIndex", loc.OrderIndex, next) {
			loc.OrderIndex = next
		}
	}

	if len(changes) == 0 {
		return nil, apperrors.Validation("", "没有任何字段发生变化")
	}

	loc.Stamp(actor.ID, false)
	if err := s.Repo.Location.Update(ctx, loc); err != nil {
		return nil, s.wrap("更新地点失败", err, yearID)
	}

	publish(ctx, s.Deps, actor, event.EntityChanged{
		EntityType: model.EntityLocation,
		EntityID:   id,
		YearID:     yearID,
		Action:     model.ActionEdit,
		Payload:    changes,
	})
	return &dto.UpdateLocationResponse{Location: *toLocationResponse(loc), Changes: changes}, nil
}

// ────────────────────── Delete ──────────────────────

func (s *locationService) Delete(ctx context.Context, yearID, id string, actor model.Actor) (*dto.LocationResponse, error) {
	loc, err := s.get(ctx, yearID, id)
	if err != nil {
		return nil, err
	}
	if loc.CollectionCount > 0 {
		return nil, apperrors.HasCollections(fmt.Sprintf("地点下仍有 %d 个合集，无法删除", loc.CollectionCount))
	}

	if err := s.Repo.Location.Delete(ctx, yearID, id); err != nil {
		if errors.Is(err, repository.ErrReferenced) {
			// 读取计数之后有合集挂入
			return nil, apperrors.HasCollections("地点下仍有合集，无法删除")
		}
		return nil, s.wrap("删除地点失败", err, yearID)
	}

	snapshot := toLocationResponse(loc)
	publish(ctx, s.Deps, actor, event.EntityChanged{
		EntityType: model.EntityLocation,
		EntityID:   id,
		YearID:     yearID,
		Action:     model.ActionDelete,
		Payload:    snapshot,
	})
	return snapshot, nil
}

// ────────────────────── Reorder ──────────────────────

func (s *locationService) Reorder(ctx context.Context, yearID string, orderedIDs []string, actor model.Actor) ([]dto.LocationResponse, error) {
	if _, err := requireYear(ctx, s.Deps, yearID); err != nil {
		return nil, err
	}
	locs, err := s.sortedForYear(ctx, yearID)
	if err != nil {
		return nil, err
	}

	current := make([]string, len(locs))
	for i := range locs {
		current[i] = locs[i].LocationID
	}
	if err := validatePermutation(current, orderedIDs); err != nil {
		return nil, err
	}

	indexes := orderindex.SequentialReindex(orderedIDs)
	if err := s.Repo.Location.Reorder(ctx, yearID, indexes, actor.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.Conflict("orderedIds", "同级地点已发生变化，请刷新后重试")
		}
		return nil, internalErr(s.Logger, "重排地点失败", err, zap.String("year_id", yearID))
	}

	for i := range locs {
		locs[i].OrderIndex = indexes[locs[i].LocationID]
	}
	orderindex.Sort(locs, func(l model.Location) string { return l.OrderIndex })

	publish(ctx, s.Deps, actor, event.EntityChanged{
		EntityType: model.EntityLocation,
		EntityID:   yearID,
		YearID:     yearID,
		Action:     model.ActionSort,
		Payload:    sortPayload(orderedIDs),
	})
	return toLocationResponses(locs), nil
}

func (s *locationService) ReorderByLocation(ctx context.Context, locationID string, orderedIDs []string, actor model.Actor) ([]dto.LocationResponse, error) {
	loc, err := s.Repo.Location.FindByID(ctx, locationID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("地点不存在")
		}
		return nil, internalErr(s.Logger, "查询地点失败", err, zap.String("location_id", locationID))
	}
	return s.Reorder(ctx, loc.YearID, orderedIDs, actor)
}

// ────────────────────── Move ──────────────────────

func (s *locationService) Move(ctx context.Context, yearID, id, afterID string, actor model.Actor) (*dto.LocationResponse, error) {
	if afterID == id {
		return nil, apperrors.Validation("afterId", "不能移动到自身之后")
	}
	if _, err := requireYear(ctx, s.Deps, yearID); err != nil {
		return nil, err
	}
	locs, err := s.sortedForYear(ctx, yearID)
	if err != nil {
		return nil, err
	}

	var target *model.Location
	siblings := make([]model.Location, 0, len(locs))
	for i := range locs {
		if locs[i].LocationID == id {
			target = &locs[i]
			continue
		}
		siblings = append(siblings, locs[i])
	}
	if target == nil {
		return nil, apperrors.NotFound("地点不存在")
	}

	ids := make([]string, len(siblings))
	for i := range siblings {
		ids[i] = siblings[i].LocationID
	}
	lower, upper, ok := neighbours(ids, func(i int) string { return siblings[i].OrderIndex }, afterID)
	if !ok {
		return nil, apperrors.Validation("afterId", "afterId 不是同一年份下的地点")
	}
	idx, err := positionBetween(lower, upper)
	if err != nil {
		return nil, err
	}

	loc := *target
	changes := dto.Changes{}
	if !trackString(changes, "orderIndex", loc.OrderIndex, idx) {
		return toLocationResponse(&loc), nil
	}
	loc.OrderIndex = idx
	loc.Stamp(actor.ID, false)
	if err := s.Repo.Location.Update(ctx, &loc); err != nil {
		return nil, s.wrap("移动地点失败", err, yearID)
	}

	publish(ctx, s.Deps, actor, event.EntityChanged{
		EntityType: model.EntityLocation,
		EntityID:   id,
		YearID:     yearID,
		Action:     model.ActionSort,
		Payload:    changes,
	})
	return toLocationResponse(&loc), nil
}

// ── 内部辅助方法 ──

func (s *locationService) get(ctx context.Context, yearID, id string) (*model.Location, error) {
	loc, err := s.Repo.Location.GetByID(ctx, yearID, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("地点不存在")
		}
		return nil, internalErr(s.Logger, "查询地点失败", err, zap.String("location_id", id))
	}
	return loc, nil
}

func (s *locationService) sortedForYear(ctx context.Context, yearID string) ([]model.Location, error) {
	locs, err := s.Repo.Location.ListByYear(ctx, yearID)
	if err != nil {
		return nil, internalErr(s.Logger, "列出地点失败", err, zap.String("year_id", yearID))
	}
	orderindex.Sort(locs, func(l model.Location) string { return l.OrderIndex })
	return locs, nil
}

// wrap 业务错误原样返回，存储错误翻译为对应分类
func (s *locationService) wrap(msg string, err error, yearID string) error {
	var appErr *apperrors.Error
	switch {
	case errors.As(err, &appErr):
		return appErr
	case errors.Is(err, repository.ErrDuplicate):
		return apperrors.Conflict("slug", "slug 在该年份内已被使用")
	case errors.Is(err, repository.ErrNotFound):
		return apperrors.NotFound("地点不存在")
	default:
		return internalErr(s.Logger, msg, err, zap.String("year_id", yearID))
	}
}

func toLocationResponse(loc *model.Location) *dto.LocationResponse {
	return &dto.LocationResponse{
		ID:              loc.LocationID,
		YearID:          loc.YearID,
		Name:            loc.Name,
		Slug:            loc.Slug,
		Summary:         loc.Summary,
		CoverAssetID:    loc.CoverAssetID,
		OrderIndex:      loc.OrderIndex,
		CollectionCount: loc.CollectionCount,
		CreatedAt:       dto.FormatTime(loc.CreatedAt),
		UpdatedAt:       dto.FormatTime(loc.UpdatedAt),
	}
}

func toLocationResponses(locs []model.Location) []dto.LocationResponse {
	out := make([]dto.LocationResponse, 0, len(locs))
	for i := range locs {
		out = append(out, *toLocationResponse(&locs[i]))
	}
	return out
}
