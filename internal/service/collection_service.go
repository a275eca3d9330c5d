package service

import (
	"context"
	"errors"
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

// CollectionService 合集业务接口，与地点共享排序、slug 与副作用约定
type CollectionService interface {
	ListForYear(ctx context.Context, yearID string) ([]dto.CollectionResponse, error)
	Create(ctx context.Context, yearID string, req *dto.CreateCollectionRequest, actor model.Actor) (*dto.CollectionResponse, error)
	Update(ctx context.Context, yearID, id string, req *dto.UpdateCollectionRequest, actor model.Actor) (*dto.UpdateCollectionResponse, error)
	Delete(ctx context.Context, yearID, id string, actor model.Actor) (*dto.CollectionResponse, error)
	Reorder(ctx context.Context, yearID string, orderedIDs []string, actor model.Actor) ([]dto.CollectionResponse, error)
	Move(ctx context.Context, yearID, id, afterID string, actor model.Actor) (*dto.CollectionResponse, error)
}

type collectionService struct {
	Deps
	slugOwner slugOwner
}

// NewCollectionService 创建 CollectionService 实例
func NewCollectionService(d Deps) CollectionService {
	return &collectionService{Deps: d, slugOwner: collectionSlugOwner(d.Repo.Collection)}
}

const collectionsCacheKind = "collections"

// ────────────────────── ListForYear ──────────────────────

func (s *collectionService) ListForYear(ctx context.Context, yearID string) ([]dto.CollectionResponse, error) {
	return readThrough(ctx, s.Deps, collectionsCacheKind, yearID, func(ctx context.Context) ([]dto.CollectionResponse, error) {
		if _, err := requireYear(ctx, s.Deps, yearID); err != nil {
			return nil, err
		}
		cols, err := s.sortedForYear(ctx, yearID)
		if err != nil {
			return nil, err
		}
		return toCollectionResponses(cols), nil
	})
}

// ────────────────────── Create ──────────────────────

func (s *collectionService) Create(ctx context.Context, yearID string, req *dto.CreateCollectionRequest, actor model.Actor) (*dto.CollectionResponse, error) {
	if _, err := requireYear(ctx, s.Deps, yearID); err != nil {
		return nil, err
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, apperrors.Validation("title", "标题不能为空")
	}

	raw := title
	if req.Slug != nil && strings.TrimSpace(*req.Slug) != "" {
		raw = *req.Slug
	}
	colSlug := slug.Normalize(raw)
	if err := slug.ValidateFormat(colSlug, slug.CollectionPattern); err != nil {
		return nil, apperrors.Validation("slug", err.Error())
	}
	if err := ensureUnique(ctx, s.slugOwner, yearID, colSlug, ""); err != nil {
		return nil, s.wrap("校验 slug 唯一性失败", err, yearID)
	}

	status := model.StatusDraft
	if req.Status != nil {
		status = strings.TrimSpace(*req.Status)
		if !model.ValidStatus(status) {
			return nil, apperrors.Validationf("status", "状态必须为 draft 或 published，实际 %q", *req.Status)
		}
	}

	locationID := cleanText(req.LocationID)
	if err := s.checkLocation(ctx, yearID, locationID); err != nil {
		return nil, err
	}

	var (
		idx string
		err error
	)
	if req.OrderIndex != nil {
		if idx, err = explicitOrderIndex(*req.OrderIndex); err != nil {
			return nil, err
		}
	} else {
		indexes, err := s.Repo.Collection.ListOrderIndexes(ctx, yearID)
		if err != nil {
			return nil, internalErr(s.Logger, "查询合集排序失败", err, zap.String("year_id", yearID))
		}
		idx = orderindex.NextAppend(orderindex.Last(indexes))
	}

	col := &model.Collection{
		YearID:       yearID,
		LocationID:   locationID,
		Slug:         colSlug,
		Title:        title,
		Summary:      cleanText(req.Summary),
		CoverAssetID: cleanText(req.CoverAssetID),
		Status:       status,
		OrderIndex:   idx,
	}
	col.Stamp(actor.ID, true)

	if err := s.Repo.Collection.Create(ctx, col); err != nil {
		return nil, s.wrap("创建合集失败", err, yearID)
	}

	resp := toCollectionResponse(col)
	publish(ctx, s.Deps, actor, event.EntityChanged{
		EntityType: model.EntityCollection,
		EntityID:   col.CollectionID,
		YearID:     yearID,
		Action:     model.ActionCreate,
		Payload:    resp,
	})
	return resp, nil
}

// ────────────────────── Update ──────────────────────

func (s *collectionService) Update(ctx context.Context, yearID, id string, req *dto.UpdateCollectionRequest, actor model.Actor) (*dto.UpdateCollectionResponse, error) {
	col, err := s.get(ctx, yearID, id)
	if err != nil {
		return nil, err
	}

	changes := dto.Changes{}

	if req.Title.Set {
		title := strings.TrimSpace(req.Title.Value)
		if req.Title.Null || title == "" {
			return nil, apperrors.Validation("title", "标题不能为空")
		}
		if trackString(changes, "title", col.Title, title) {
			col.Title = title
		}
	}

	if req.Slug.Set {
		if req.Slug.Null || strings.TrimSpace(req.Slug.Value) == "" {
			return nil, apperrors.Validation("slug", "slug 不能为空")
		}
		next := slug.Normalize(req.Slug.Value)
		if err := slug.ValidateFormat(next, slug.CollectionPattern); err != nil {
			return nil, apperrors.Validation("slug", err.Error())
		}
		if next != col.Slug {
			if err := ensureUnique(ctx, s.slugOwner, yearID, next, id); err != nil {
				return nil, s.wrap("校验 slug 唯一性失败", err, yearID)
			}
			trackString(changes, "slug", col.Slug, next)
			col.Slug = next
		}
	}

	if req.LocationID.Set {
		next := cleanText(req.LocationID.Ptr())
		if !samePtr(col.LocationID, next) {
			if err := s.checkLocation(ctx, yearID, next); err != nil {
				return nil, err
			}
			trackPtr(changes, "locationId", col.LocationID, next)
			col.LocationID = next
		}
	}

	if req.Summary.Set {
		next := cleanText(req.Summary.Ptr())
		if trackPtr(changes, "summary", col.Summary, next) {
			col.Summary = next
		}
	}

	if req.CoverAssetID.Set {
		next := cleanText(req.CoverAssetID.Ptr())
		if trackPtr(changes, "coverAssetId", col.CoverAssetID, next) {
			col.CoverAssetID = next
		}
	}

	if req.Status.Set {
		status := strings.TrimSpace(req.Status.Value)
		if req.Status.Null || !model.ValidStatus(status) {
			return nil, apperrors.Validationf("status", "状态必须为 draft 或 published，实际 %q", req.Status.Value)
		}
		if trackString(changes, "status", col.Status, status) {
			col.Status = status
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
		if trackString(changes, "orderIndex", col.OrderIndex, next) {
			col.OrderIndex = next
		}
	}

	if len(changes) == 0 {
		return nil, apperrors.Validation("", "没有任何字段发生变化")
	}

	col.Stamp(actor.ID, false)
	if err := s.Repo.Collection.Update(ctx, col); err != nil {
		return nil, s.wrap("更新合集失败", err, yearID)
	}

	publish(ctx, s.Deps, actor, event.EntityChanged{
		EntityType: model.EntityCollection,
		EntityID:   id,
		YearID:     yearID,
		Action:     model.ActionEdit,
		Payload:    changes,
	})
	return &dto.UpdateCollectionResponse{Collection: *toCollectionResponse(col), Changes: changes}, nil
}

// ────────────────────── Delete ──────────────────────

func (s *collectionService) Delete(ctx context.Context, yearID, id string, actor model.Actor) (*dto.CollectionResponse, error) {
	col, err := s.get(ctx, yearID, id)
	if err != nil {
		return nil, err
	}
	// 关联的资源在同一事务中删除
	if err := s.Repo.Collection.Delete(ctx, yearID, id); err != nil {
		return nil, s.wrap("删除合集失败", err, yearID)
	}

	snapshot := toCollectionResponse(col)
	publish(ctx, s.Deps, actor, event.EntityChanged{
		EntityType: model.EntityCollection,
		EntityID:   id,
		YearID:     yearID,
		Action:     model.ActionDelete,
		Payload:    snapshot,
	})
	return snapshot, nil
}

// ────────────────────── Reorder ──────────────────────

func (s *collectionService) Reorder(ctx context.Context, yearID string, orderedIDs []string, actor model.Actor) ([]dto.CollectionResponse, error) {
	if _, err := requireYear(ctx, s.Deps, yearID); err != nil {
		return nil, err
	}
	cols, err := s.sortedForYear(ctx, yearID)
	if err != nil {
		return nil, err
	}

	current := make([]string, len(cols))
	for i := range cols {
		current[i] = cols[i].CollectionID
	}
	if err := validatePermutation(current, orderedIDs); err != nil {
		return nil, err
	}

	indexes := orderindex.SequentialReindex(orderedIDs)
	if err := s.Repo.Collection.Reorder(ctx, yearID, indexes, actor.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.Conflict("orderedIds", "同级合集已发生变化，请刷新后重试")
		}
		return nil, internalErr(s.Logger, "重排合集失败", err, zap.String("year_id", yearID))
	}

	for i := range cols {
		cols[i].OrderIndex = indexes[cols[i].CollectionID]
	}
	orderindex.Sort(cols, func(c model.Collection) string { return c.OrderIndex })

	publish(ctx, s.Deps, actor, event.EntityChanged{
		EntityType: model.EntityCollection,
		EntityID:   yearID,
		YearID:     yearID,
		Action:     model.ActionSort,
		Payload:    sortPayload(orderedIDs),
	})
	return toCollectionResponses(cols), nil
}

// ────────────────────── Move ──────────────────────

func (s *collectionService) Move(ctx context.Context, yearID, id, afterID string, actor model.Actor) (*dto.CollectionResponse, error) {
	if afterID == id {
		return nil, apperrors.Validation("afterId", "不能移动到自身之后")
	}
	if _, err := requireYear(ctx, s.Deps, yearID); err != nil {
		return nil, err
	}
	cols, err := s.sortedForYear(ctx, yearID)
	if err != nil {
		return nil, err
	}

	var target *model.Collection
	siblings := make([]model.Collection, 0, len(cols))
	for i := range cols {
		if cols[i].CollectionID == id {
			target = &cols[i]
			continue
		}
		siblings = append(siblings, cols[i])
	}
	if target == nil {
		return nil, apperrors.NotFound("合集不存在")
	}

	ids := make([]string, len(siblings))
	for i := range siblings {
		ids[i] = siblings[i].CollectionID
	}
	lower, upper, ok := neighbours(ids, func(i int) string { return siblings[i].OrderIndex }, afterID)
	if !ok {
		return nil, apperrors.Validation("afterId", "afterId 不是同一年份下的合集")
	}
	idx, err := positionBetween(lower, upper)
	if err != nil {
		return nil, err
	}

	col := *target
	changes := dto.Changes{}
	if !trackString(changes, "orderIndex", col.OrderIndex, idx) {
		return toCollectionResponse(&col), nil
	}
	col.OrderIndex = idx
	col.Stamp(actor.ID, false)
	if err := s.Repo.Collection.Update(ctx, &col); err != nil {
		return nil, s.wrap("移动合集失败", err, yearID)
	}

	publish(ctx, s.Deps, actor, event.EntityChanged{
		EntityType: model.EntityCollection,
		EntityID:   id,
		YearID:     yearID,
		Action:     model.ActionSort,
		Payload:    changes,
	})
	return toCollectionResponse(&col), nil
}

// ── 内部辅助方法 ──

func (s *collectionService) get(ctx context.Context, yearID, id string) (*model.Collection, error) {
	col, err := s.Repo.Collection.GetByID(ctx, yearID, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("合集不存在")
		}
		return nil, internalErr(s.Logger, "查询合集失败", err, zap.String("collection_id", id))
	}
	return col, nil
}

func (s *collectionService) sortedForYear(ctx context.Context, yearID string) ([]model.Collection, error) {
	cols, err := s.Repo.Collection.ListByYear(ctx, yearID)
	if err != nil {
		return nil, internalErr(s.Logger, "列出合集失败", err, zap.String("year_id", yearID))
	}
	orderindex.Sort(cols, func(c model.Collection) string { return c.OrderIndex })
	return cols, nil
}

// checkLocation 合集引用的地点必须属于同一年份
func (s *collectionService) checkLocation(ctx context.Context, yearID string, locationID *string) error {
	if locationID == nil {
		return nil
	}
	if _, err := s.Repo.Location.GetByID(ctx, yearID, *locationID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.Validation("locationId", "地点不存在或不属于该年份")
		}
		return internalErr(s.Logger, "查询地点失败", err, zap.String("location_id", *locationID))
	}
	return nil
}

func (s *collectionService) wrap(msg string, err error, yearID string) error {
	var appErr *apperrors.Error
	switch {
	case errors.As(err, &appErr):
		return appErr
	case errors.Is(err, repository.ErrDuplicate):
		return apperrors.Conflict("slug", "slug 在该年份内已被使用")
	case errors.Is(err, repository.ErrReferenced):
		return apperrors.Validation("locationId", "地点不存在或不属于该年份")
	case errors.Is(err, repository.ErrNotFound):
		return apperrors.NotFound("合集不存在")
	default:
		return internalErr(s.Logger, msg, err, zap.String("year_id", yearID))
	}
}

func toCollectionResponse(col *model.Collection) *dto.CollectionResponse {
	return &dto.CollectionResponse{
		ID:           col.CollectionID,
		YearID:       col.YearID,
		LocationID:   col.LocationID,
		Slug:         col.Slug,
		Title:        col.Title,
		Summary:      col.Summary,
		CoverAssetID: col.CoverAssetID,
		Status:       col.Status,
		OrderIndex:   col.OrderIndex,
		AssetCount:   col.AssetCount,
		CreatedAt:    dto.FormatTime(col.CreatedAt),
		UpdatedAt:    dto.FormatTime(col.UpdatedAt),
	}
}

func toCollectionResponses(cols []model.Collection) []dto.CollectionResponse {
	out := make([]dto.CollectionResponse, 0, len(cols))
	for i := range cols {
		out = append(out, *toCollectionResponse(&cols[i]))
	}
	return out
}
