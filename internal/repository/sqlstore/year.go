package sqlstore

import (
	"context"
	"database/sql"

	"catalog-cms/internal/model"
)

const yearColumns = `year_id, label, order_index, status, created_at, created_by, updated_at, updated_by`

type yearStore struct {
	db *sql.DB
}

func (s *yearStore) Create(ctx context.Context, year *model.Year) error {
	if year.YearID == "" {
		year.YearID = model.NewID()
	}
	if year.Status == "" {
		year.Status = model.StatusDraft
	}
	created := formatTime(year.CreatedAt)
	year.CreatedAt, _ = parseTime(created)
	year.UpdatedAt = year.CreatedAt

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO years (`+yearColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		year.YearID, year.Label, year.OrderIndex, year.Status,
		created, nullString(year.CreatedBy), created, nullString(year.UpdatedBy),
	)
	return translate(err)
}

func (s *yearStore) GetByID(ctx context.Context, id string) (*model.Year, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+yearColumns+` FROM years WHERE year_id = ?`, id)
	return scanYear(row)
}

func (s *yearStore) List(ctx context.Context) ([]model.Year, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+yearColumns+` FROM years`)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()

	var years []model.Year
	for rows.Next() {
		y, err := scanYear(rows)
		if err != nil {
			return nil, err
		}
		years = append(years, *y)
	}
	return years, rows.Err()
}

func (s *yearStore) ListOrderIndexes(ctx context.Context) ([]string, error) {
	return queryStrings(ctx, s.db, `SELECT order_index FROM years`)
}

func scanYear(row rowScanner) (*model.Year, error) {
	var (
		y                    model.Year
		createdAt, updatedAt string
		createdBy, updatedBy sql.NullString
	)
	err := row.Scan(&y.YearID, &y.Label, &y.OrderIndex, &y.Status, &createdAt, &createdBy, &updatedAt, &updatedBy)
	if err != nil {
		return nil, translate(err)
	}
	if y.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if y.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	y.CreatedBy = stringPtr(createdBy)
	y.UpdatedBy = stringPtr(updatedBy)
	return &y, nil
}
