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
)

// AssetService 合集内资源的关联与排序；资源本身的上传不在本服务内
type AssetService interface {
	ListForCollection(ctx context.Context, collectionID string) ([]dto.CollectionAssetResponse, error)
	Attach(ctx context.Context, collectionID string, req *dto.AttachAssetRequest, actor model.Actor) (*dto.CollectionAssetResponse, error)
	Detach(ctx context.Context, collectionID, assetID string, actor model.Actor) error
	Reorder(ctx context.Context, collectionID string, orderedAssetIDs []string, actor model.Actor) ([]dto.CollectionAssetResponse, error)
}

type assetService struct {
	Deps
}

// NewAssetService 创建 AssetService 实例
func NewAssetService(d Deps) AssetService {
	return &assetService{Deps: d}
}

func (s *assetService) ListForCollection(ctx context.Context, collectionID string) ([]dto.CollectionAssetResponse, error) {
	if _, err := s.collection(ctx, collectionID); err != nil {
		return nil, err
	}
	links, err := s.sorted(ctx, collectionID)
	if err != nil {
		return nil, err
	}
	return toCollectionAssetResponses(links), nil
}

func (s *assetService) Attach(ctx context.Context, collectionID string, req *dto.AttachAssetRequest, actor model.Actor) (*dto.CollectionAssetResponse, error) {
	col, err := s.collection(ctx, collectionID)
	if err != nil {
		return nil, err
	}

	assetID := strings.TrimSpace(req.AssetID)
	if assetID == "" {
		return nil, apperrors.Validation("assetId", "assetId 不能为空")
	}
	asset, err := s.Repo.Asset.GetAsset(ctx, assetID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("资源不存在")
		}
		return nil, internalErr(s.Logger, "查询资源失败", err, zap.String("asset_id", assetID))
	}

	indexes, err := s.Repo.Asset.ListOrderIndexes(ctx, collectionID)
	if err != nil {
		return nil, internalErr(s.Logger, "查询资源排序失败", err, zap.String("collection_id", collectionID))
	}

	link := &model.CollectionAsset{
		CollectionID: collectionID,
		AssetID:      asset.AssetID,
		OrderIndex:   orderindex.NextAppend(orderindex.Last(indexes)),
	}
	if err := s.Repo.Asset.Attach(ctx, link); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.Conflict("assetId", "资源已在该合集中")
		}
		return nil, internalErr(s.Logger, "关联资源失败", err, zap.String("collection_id", collectionID))
	}
	link.Asset = asset

	resp := toCollectionAssetResponse(link)
	publish(ctx, s.Deps, actor, event.EntityChanged{
		EntityType: model.EntityCollection,
		EntityID:   collectionID,
		YearID:     col.YearID,
		Action:     model.ActionEdit,
		Payload:    map[string]any{"attachedAssetId": asset.AssetID, "orderIndex": link.OrderIndex},
	})
	return resp, nil
}

func (s *assetService) Detach(ctx context.Context, collectionID, assetID string, actor model.Actor) error {
	col, err := s.collection(ctx, collectionID)
	if err != nil {
		return err
	}
	if err := s.Repo.Asset.Detach(ctx, collectionID, assetID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NotFound("资源不在该合集中")
		}
		return internalErr(s.Logger, "移除资源失败", err, zap.String("collection_id", collectionID))
	}

	publish(ctx, s.Deps, actor, event.EntityChanged{
		EntityType: model.EntityCollection,
		EntityID:   collectionID,
		YearID:     col.YearID,
		Action:     model.ActionEdit,
		Payload:    map[string]any{"detachedAssetId": assetID},
	})
	return nil
}

func (s *assetService) Reorder(ctx context.Context, collectionID string, orderedAssetIDs []string, actor model.Actor) ([]dto.CollectionAssetResponse, error) {
	col, err := s.collection(ctx, collectionID)
	if err != nil {
		return nil, err
	}
	links, err := s.sorted(ctx, collectionID)
	if err != nil {
		return nil, err
	}

	current := make([]string, len(links))
	for i := range links {
		current[i] = links[i].AssetID
	}
	if err := validatePermutation(current, orderedAssetIDs); err != nil {
		return nil, err
	}

	indexes := orderindex.SequentialReindex(orderedAssetIDs)
	if err := s.Repo.Asset.Reorder(ctx, collectionID, indexes); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.Conflict("orderedIds", "合集内资源已发生变化，请刷新后重试")
		}
		return nil, internalErr(s.Logger, "重排资源失败", err, zap.String("collection_id", collectionID))
	}

	for i := range links {
		links[i].OrderIndex = indexes[links[i].AssetID]
	}
	orderindex.Sort(links, func(l model.CollectionAsset) string { return l.OrderIndex })

	publish(ctx, s.Deps, actor, event.EntityChanged{
		EntityType: model.EntityCollection,
		EntityID:   collectionID,
		YearID:     col.YearID,
		Action:     model.ActionSort,
		Payload:    sortPayload(orderedAssetIDs),
	})
	return toCollectionAssetResponses(links), nil
}

func (s *assetService) collection(ctx context.Context, id string) (*model.Collection, error) {
	col, err := s.Repo.Collection.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("合集不存在")
		}
		return nil, internalErr(s.Logger, "查询合集失败", err, zap.String("collection_id", id))
	}
	return col, nil
}

func (s *assetService) sorted(ctx context.Context, collectionID string) ([]model.CollectionAsset, error) {
	links, err := s.Repo.Asset.ListByCollection(ctx, collectionID)
	if err != nil {
		return nil, internalErr(s.Logger, "列出合集资源失败", err, zap.String("collection_id", collectionID))
	}
	orderindex.Sort(links, func(l model.CollectionAsset) string { return l.OrderIndex })
	return links, nil
}

func toCollectionAssetResponse(l *model.CollectionAsset) *dto.CollectionAssetResponse {
	resp := &dto.CollectionAssetResponse{
		ID:           l.ID,
		CollectionID: l.CollectionID,
		AssetID:      l.AssetID,
		OrderIndex:   l.OrderIndex,
		CreatedAt:    dto.FormatTime(l.CreatedAt),
	}
	if l.Asset != nil {
		resp.Title = l.Asset.Title
		resp.StorageKey = l.Asset.StorageKey
	}
	return resp
}

func toCollectionAssetResponses(links []model.CollectionAsset) []dto.CollectionAssetResponse {
	out := make([]dto.CollectionAssetResponse, 0, len(links))
	for i := range links {
		out = append(out, *toCollectionAssetResponse(&links[i]))
	}
	return out
}
