package service

import (
	"context"
	"errors"

	"catalog-cms/internal/repository"
	apperrors "catalog-cms/pkg/errors"
)

// slugOwner 返回在年份内占用该 slug 的实体 id；未占用时返回 repository.ErrNotFound
type slugOwner func(ctx context.Context, yearID, slug string) (string, error)

func locationSlugOwner(r repository.LocationRepository) slugOwner {
	return func(ctx context.Context, yearID, slug string) (string, error) {
		loc, err := r.FindBySlug(ctx, yearID, slug)
		if err != nil {
			return "", err
		}
		return loc.LocationID, nil
	}
}

func collectionSlugOwner(r repository.CollectionRepository) slugOwner {
	return func(ctx context.Context, yearID, slug string) (string, error) {
		col, err := r.FindBySlug(ctx, yearID, slug)
		if err != nil {
			return "", err
		}
		return col.CollectionID, nil
	}
}

// ensureUnique 年份内已有其他实体使用该 slug 时返回 CONFLICT（excludeID 为正在更新的实体）
func ensureUnique(ctx context.Context, owner slugOwner, yearID, slug, excludeID string) error {
	id, err := owner(ctx, yearID, slug)
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if id == excludeID {
		return nil
	}
	return apperrors.Conflict("slug", "slug 在该年份内已被使用")
}
