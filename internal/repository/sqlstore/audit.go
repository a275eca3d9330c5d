package sqlstore

import (
	"context"
	"database/sql"
	"strings"

	"catalog-cms/internal/model"
	"catalog-cms/internal/repository"
)

type auditStore struct {
	db *sql.DB
}

func (s *auditStore) Append(ctx context.Context, entry *model.AuditLog) error {
	if entry.ID == "" {
		entry.ID = model.NewID()
	}
	occurred := formatTime(entry.OccurredAt)
	entry.OccurredAt, _ = parseTime(occurred)

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO audit_logs (id, actor, actor_type, entity_type, entity_id, action, payload, request_id, occurred_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.Actor, entry.ActorType, entry.EntityType, entry.EntityID,
		entry.Action, entry.Payload, entry.RequestID, occurred,
	)
	return translate(err)
}

func (s *auditStore) List(ctx context.Context, filter repository.AuditFilter) ([]model.AuditLog, error) {
	var (
		where []string
		args  []any
	)
	if filter.EntityType != "" {
		where = append(where, "entity_type = ?")
		args = append(args, filter.EntityType)
	}
	if filter.EntityID != "" {
		where = append(where, "entity_id = ?")
		args = append(args, filter.EntityID)
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = repository.DefaultAuditLimit
	}

	query := `SELECT id, actor, actor_type, entity_type, entity_id, action, payload, request_id, occurred_at FROM audit_logs`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY occurred_at DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()

	var entries []model.AuditLog
	for rows.Next() {
		var (
			e        model.AuditLog
			payload  sql.NullString
			occurred string
		)
		if err := rows.Scan(&e.ID, &e.Actor, &e.ActorType, &e.EntityType, &e.EntityID,
			&e.Action, &payload, &e.RequestID, &occurred); err != nil {
			return nil, err
		}
		if e.OccurredAt, err = parseTime(occurred); err != nil {
			return nil, err
		}
		e.Payload = payload.String
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
