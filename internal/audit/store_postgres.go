package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
)

// PostgresStore persists audit entries in PostgreSQL. Retention is enforced
// in the same transaction as the insert so the table never exceeds the cap.
type PostgresStore struct {
	db        *sql.DB
	retention int
	logger    *slog.Logger
}

// NewPostgresStore constructs a PostgreSQL-backed audit store.
func NewPostgresStore(db *sql.DB, retention int, logger *slog.Logger) *PostgresStore {
	if retention <= 0 {
		retention = DefaultRetention
	}
	return &PostgresStore{db: db, retention: retention, logger: logger}
}

func (s *PostgresStore) Append(ctx context.Context, entry Entry) error {
	subjects, err := json.Marshal(entry.SubjectIDs)
	if err != nil {
		return fmt.Errorf("encode subject ids: %w", err)
	}
	dataTypes, err := json.Marshal(entry.DataTypes)
	if err != nil {
		return fmt.Errorf("encode data types: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin audit tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	_, err = tx.ExecContext(ctx, `
		INSERT INTO audit_entries (id, occurred_at, action, actor_id, subject_ids, data_types, purpose, success, detail, request_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, entry.ID, entry.Timestamp, string(entry.Action), entry.ActorID, subjects, dataTypes,
		entry.Purpose, entry.Success, entry.Detail, entry.RequestID)
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		DELETE FROM audit_entries
		WHERE seq <= (
			SELECT seq FROM audit_entries ORDER BY seq DESC OFFSET $1 LIMIT 1
		)
	`, s.retention)
	if err != nil {
		return fmt.Errorf("prune audit entries: %w", err)
	}
	return tx.Commit()
}

func (s *PostgresStore) List(ctx context.Context, filter Filter) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, occurred_at, action, actor_id, subject_ids, data_types, purpose, success, detail, request_id
		FROM audit_entries
		ORDER BY seq DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("query audit entries: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			e                   Entry
			action              string
			subjects, dataTypes []byte
		)
		if err := rows.Scan(&e.ID, &e.Timestamp, &action, &e.ActorID, &subjects, &dataTypes,
			&e.Purpose, &e.Success, &e.Detail, &e.RequestID); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		e.Action = Action(action)
		if err := json.Unmarshal(subjects, &e.SubjectIDs); err != nil {
			s.warnCorrupt(ctx, e.ID, err)
			continue
		}
		if err := json.Unmarshal(dataTypes, &e.DataTypes); err != nil {
			s.warnCorrupt(ctx, e.ID, err)
			continue
		}
		if !filter.Matches(e) {
			continue
		}
		out = append(out, e)
		if filter.Limit > 0 && len(out) == filter.Limit {
			break
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit entries: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) warnCorrupt(ctx context.Context, entryID string, err error) {
	if s.logger == nil {
		return
	}
	s.logger.WarnContext(ctx, "skipping undecodable audit entry",
		"entry_id", entryID,
		"error", err,
	)
}
