package sqlstore

import (
	"context"
	"database/sql"

	"catalog-cms/internal/model"
)

type assetStore struct {
	db *sql.DB
}

func (s *assetStore) CreateAsset(ctx context.Context, asset *model.Asset) error {
	if asset.AssetID == "" {
		asset.AssetID = model.NewID()
	}
	created := formatTime(asset.CreatedAt)
	asset.CreatedAt, _ = parseTime(created)

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO assets (asset_id, title, storage_key, created_at) VALUES (?, ?, ?, ?)`,
		asset.AssetID, asset.Title, asset.StorageKey, created,
	)
	return translate(err)
}

func (s *assetStore) GetAsset(ctx context.Context, id string) (*model.Asset, error) {
	var (
		a         model.Asset
		createdAt string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT asset_id, title, storage_key, created_at FROM assets WHERE asset_id = ?`, id,
	).Scan(&a.AssetID, &a.Title, &a.StorageKey, &createdAt)
	if err != nil {
		return nil, translate(err)
	}
	if a.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *assetStore) ListByCollection(ctx context.Context, collectionID string) ([]model.CollectionAsset, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT ca.id, ca.collection_id, ca.asset_id, ca.order_index, ca.created_at,
		        a.title, a.storage_key, a.created_at
		   FROM collection_assets ca
		   JOIN assets a ON a.asset_id = ca.asset_id
		  WHERE ca.collection_id = ?`, collectionID)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()

	var links []model.CollectionAsset
	for rows.Next() {
		var (
			link                    model.CollectionAsset
			asset                   model.Asset
			linkCreated, assetCreated string
		)
		if err := rows.Scan(
			&link.ID, &link.CollectionID, &link.AssetID, &link.OrderIndex, &linkCreated,
			&asset.Title, &asset.StorageKey, &assetCreated,
		); err != nil {
			return nil, err
		}
		if link.CreatedAt, err = parseTime(linkCreated); err != nil {
			return nil, err
		}
		if asset.CreatedAt, err = parseTime(assetCreated); err != nil {
			return nil, err
		}
		asset.AssetID = link.AssetID
		link.Asset = &asset
		links = append(links, link)
	}
	return links, rows.Err()
}

func (s *assetStore) ListOrderIndexes(ctx context.Context, collectionID string) ([]string, error) {
	return queryStrings(ctx, s.db,
		`SELECT order_index FROM collection_assets WHERE collection_id = ?`, collectionID)
}

func (s *assetStore) Attach(ctx context.Context, link *model.CollectionAsset) error {
	if link.ID == "" {
		link.ID = model.NewID()
	}
	created := formatTime(link.CreatedAt)
	link.CreatedAt, _ = parseTime(created)

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO collection_assets (id, collection_id, asset_id, order_index, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		link.ID, link.CollectionID, link.AssetID, link.OrderIndex, created,
	)
	return translate(err)
}

func (s *assetStore) Detach(ctx context.Context, collectionID, assetID string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM collection_assets WHERE collection_id = ? AND asset_id = ?`, collectionID, assetID)
	if err != nil {
		return translate(err)
	}
	return requireOne(res)
}

func (s *assetStore) Reorder(ctx context.Context, collectionID string, indexes map[string]string) error {
	return inTx(ctx, s.db, func(tx *sql.Tx) error {
		for assetID, idx := range indexes {
			res, err := tx.ExecContext(ctx,
				`UPDATE collection_assets SET order_index = ? WHERE collection_id = ? AND asset_id = ?`,
				idx, collectionID, assetID,
			)
			if err != nil {
				return translate(err)
			}
			if err := requireOne(res); err != nil {
				return err
			}
		}
		return nil
	})
}
