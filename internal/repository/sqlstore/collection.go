package sqlstore

import (
	"context"
	"database/sql"
	"time"

	"catalog-cms/internal/model"
)

const collectionSelect = `SELECT
	c.collection_id, c.year_id, c.location_id, c.slug, c.title, c.summary, c.cover_asset_id,
	c.status, c.order_index, c.created_at, c.created_by, c.updated_at, c.updated_by,
	(SELECT COUNT(*) FROM collection_assets ca WHERE ca.collection_id = c.collection_id) AS asset_count
FROM collections c`

type collectionStore struct {
	db *sql.DB
}

func (s *collectionStore) Create(ctx context.Context, col *model.Collection) error {
	if col.CollectionID == "" {
		col.CollectionID = model.NewID()
	}
	if col.Status == "" {
		col.Status = model.StatusDraft
	}
	now := formatTime(col.CreatedAt)
	col.CreatedAt, _ = parseTime(now)
	col.UpdatedAt = col.CreatedAt

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO collections (
		   collection_id, year_id, location_id, slug, title, summary, cover_asset_id,
		   status, order_index, created_at, created_by, updated_at, updated_by
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		col.CollectionID, col.YearID, nullString(col.LocationID), col.Slug, col.Title,
		nullString(col.Summary), nullString(col.CoverAssetID), col.Status, col.OrderIndex,
		now, nullString(col.CreatedBy), now, nullString(col.UpdatedBy),
	)
	return translate(err)
}

func (s *collectionStore) GetByID(ctx context.Context, yearID, id string) (*model.Collection, error) {
	return scanCollection(s.db.QueryRowContext(ctx,
		collectionSelect+` WHERE c.collection_id = ? AND c.year_id = ?`, id, yearID))
}

func (s *collectionStore) FindByID(ctx context.Context, id string) (*model.Collection, error) {
	return scanCollection(s.db.QueryRowContext(ctx, collectionSelect+` WHERE c.collection_id = ?`, id))
}

func (s *collectionStore) FindBySlug(ctx context.Context, yearID, slug string) (*model.Collection, error) {
	return scanCollection(s.db.QueryRowContext(ctx,
		collectionSelect+` WHERE c.year_id = ? AND c.slug = ?`, yearID, slug))
}

func (s *collectionStore) ListByYear(ctx context.Context, yearID string) ([]model.Collection, error) {
	rows, err := s.db.QueryContext(ctx, collectionSelect+` WHERE c.year_id = ?`, yearID)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()

	var out []model.Collection
	for rows.Next() {
		col, err := scanCollection(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *col)
	}
	return out, rows.Err()
}

func (s *collectionStore) ListOrderIndexes(ctx context.Context, yearID string) ([]string, error) {
	return queryStrings(ctx, s.db, `SELECT order_index FROM collections WHERE year_id = ?`, yearID)
}

func (s *collectionStore) Update(ctx context.Context, col *model.Collection) error {
	col.UpdatedAt = time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`UPDATE collections
		    SET location_id = ?, slug = ?, title = ?, summary = ?, cover_asset_id = ?,
		        status = ?, order_index = ?, updated_at = ?, updated_by = ?
		  WHERE collection_id = ? AND year_id = ?`,
		nullString(col.LocationID), col.Slug, col.Title, nullString(col.Summary), nullString(col.CoverAssetID),
		col.Status, col.OrderIndex, formatTime(col.UpdatedAt), nullString(col.UpdatedBy),
		col.CollectionID, col.YearID,
	)
	if err != nil {
		return translate(err)
	}
	return requireOne(res)
}

func (s *collectionStore) Delete(ctx context.Context, yearID, id string) error {
	return inTx(ctx, s.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM collection_assets WHERE collection_id = ?`, id); err != nil {
			return translate(err)
		}
		res, err := tx.ExecContext(ctx,
			`DELETE FROM collections WHERE collection_id = ? AND year_id = ?`, id, yearID)
		if err != nil {
			return translate(err)
		}
		return requireOne(res)
	})
}

func (s *collectionStore) Reorder(ctx context.Context, yearID string, indexes map[string]string, actorID string) error {
	now := formatTime(time.Now())
	return inTx(ctx, s.db, func(tx *sql.Tx) error {
		for id, idx := range indexes {
			res, err := tx.ExecContext(ctx,
				`UPDATE collections SET order_index = ?, updated_at = ?, updated_by = ?
				  WHERE collection_id = ? AND year_id = ?`,
				idx, now, actorID, id, yearID,
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

func scanCollection(row rowScanner) (*model.Collection, error) {
	var (
		col                       model.Collection
		locationID, summary, cover sql.NullString
		createdBy, updatedBy      sql.NullString
		createdAt, updatedAt      string
	)
	err := row.Scan(
		&col.CollectionID, &col.YearID, &locationID, &col.Slug, &col.Title, &summary, &cover,
		&col.Status, &col.OrderIndex, &createdAt, &createdBy, &updatedAt, &updatedBy, &col.AssetCount,
	)
	if err != nil {
		return nil, translate(err)
	}
	if col.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if col.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	col.LocationID = stringPtr(locationID)
	col.Summary = stringPtr(summary)
	col.CoverAssetID = stringPtr(cover)
	col.CreatedBy = stringPtr(createdBy)
	col.UpdatedBy = stringPtr(updatedBy)
	return &col, nil
}
