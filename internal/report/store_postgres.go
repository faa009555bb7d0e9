package report

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"talentgate/pkg/platform/sentinel"
)

// PostgresStore persists reports in PostgreSQL. The first report stored for
// an id wins; later saves return it unchanged. Retention is enforced in the
// insert transaction.
type PostgresStore struct {
	db        *sql.DB
	retention int
	logger    *slog.Logger
}

func NewPostgresStore(db *sql.DB, retention int, logger *slog.Logger) *PostgresStore {
	if retention <= 0 {
		retention = Retention
	}
	return &PostgresStore{db: db, retention: retention, logger: logger}
}

func (s *PostgresStore) SaveIfAbsent(ctx context.Context, report Report) (Report, bool, error) {
	doc, err := json.Marshal(report)
	if err != nil {
		return Report{}, false, fmt.Errorf("encode report: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Report{}, false, fmt.Errorf("begin report tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	res, err := tx.ExecContext(ctx, `
		INSERT INTO reports (id, report_type, period_start, period_end, generated_at, document)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO NOTHING
	`, report.ID, string(report.Type), report.PeriodStart, report.PeriodEnd, report.GeneratedAt, doc)
	if err != nil {
		return Report{}, false, fmt.Errorf("insert report: %w", err)
	}
	inserted, err := res.RowsAffected()
	if err != nil {
		return Report{}, false, fmt.Errorf("insert report: %w", err)
	}
	if inserted == 0 {
		existing, err := s.get(ctx, tx, report.ID)
		if err != nil {
			return Report{}, false, err
		}
		return existing, false, tx.Commit()
	}

	_, err = tx.ExecContext(ctx, `
		DELETE FROM reports
		WHERE seq <= (
			SELECT seq FROM reports ORDER BY seq DESC OFFSET $1 LIMIT 1
		)
	`, s.retention)
	if err != nil {
		return Report{}, false, fmt.Errorf("prune reports: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return Report{}, false, fmt.Errorf("commit report: %w", err)
	}
	return report, true, nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (Report, error) {
	return s.get(ctx, s.db, id)
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *PostgresStore) get(ctx context.Context, q queryer, id string) (Report, error) {
	var doc []byte
	err := q.QueryRowContext(ctx, `SELECT document FROM reports WHERE id = $1`, id).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return Report{}, sentinel.ErrNotFound
	}
	if err != nil {
		return Report{}, fmt.Errorf("query report: %w", err)
	}
	var r Report
	if err := json.Unmarshal(doc, &r); err != nil {
		return Report{}, fmt.Errorf("decode report %s: %w", id, sentinel.ErrCorrupt)
	}
	return r, nil
}

// List returns reports newest stored first. Undecodable rows are skipped.
func (s *PostgresStore) List(ctx context.Context) ([]Report, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, document FROM reports ORDER BY seq DESC`)
	if err != nil {
		return nil, fmt.Errorf("query reports: %w", err)
	}
	defer rows.Close()

	out := []Report{}
	for rows.Next() {
		var (
			id  string
			doc []byte
		)
		if err := rows.Scan(&id, &doc); err != nil {
			return nil, fmt.Errorf("scan report: %w", err)
		}
		var r Report
		if err := json.Unmarshal(doc, &r); err != nil {
			if s.logger != nil {
				s.logger.WarnContext(ctx, "skipping undecodable report",
					"report_id", id,
					"error", err,
				)
			}
			continue
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reports: %w", err)
	}
	return out, nil
}
