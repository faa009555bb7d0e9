package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"talentgate/internal/consent/models"
	"talentgate/pkg/platform/sentinel"
)

// PostgresStore persists consent records in PostgreSQL, one row per subject.
type PostgresStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgres constructs a PostgreSQL-backed consent store.
func NewPostgres(db *sql.DB, logger *slog.Logger) *PostgresStore {
	return &PostgresStore{db: db, logger: logger}
}

func (s *PostgresStore) Upsert(ctx context.Context, record *models.Record) error {
	if record == nil {
		return fmt.Errorf("consent record is required")
	}
	scopes, err := json.Marshal(record.Scopes)
	if err != nil {
		return fmt.Errorf("encode scopes: %w", err)
	}
	issuing, err := json.Marshal(record.Context)
	if err != nil {
		return fmt.Errorf("encode issuing context: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO consents (subject_id, scopes, retention_years, consent_timestamp, issuing_context)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (subject_id) DO UPDATE
		SET scopes = EXCLUDED.scopes,
			retention_years = EXCLUDED.retention_years,
			consent_timestamp = EXCLUDED.consent_timestamp,
			issuing_context = EXCLUDED.issuing_context
	`, record.SubjectID, scopes, record.RetentionYears, record.ConsentTimestamp, issuing)
	if err != nil {
		return fmt.Errorf("upsert consent: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, subjectID string) (*models.Record, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT subject_id, scopes, retention_years, consent_timestamp, issuing_context
		FROM consents
		WHERE subject_id = $1
	`, subjectID)
	record, err := scanConsent(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, err
	}
	return record, nil
}

func (s *PostgresStore) Delete(ctx context.Context, subjectID string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM consents WHERE subject_id = $1`, subjectID)
	if err != nil {
		return false, fmt.Errorf("delete consent: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete consent rows affected: %w", err)
	}
	return n > 0, nil
}

// List returns every decodable record. Rows that fail to decode are skipped
// with a warning.
func (s *PostgresStore) List(ctx context.Context) ([]*models.Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT subject_id, scopes, retention_years, consent_timestamp, issuing_context
		FROM consents
	`)
	if err != nil {
		return nil, fmt.Errorf("list consents: %w", err)
	}
	defer rows.Close()

	var records []*models.Record
	for rows.Next() {
		record, err := scanConsent(rows)
		if err != nil {
			if errors.Is(err, sentinel.ErrCorrupt) {
				if s.logger != nil {
					s.logger.WarnContext(ctx, "skipping undecodable consent record", "error", err)
				}
				continue
			}
			return nil, err
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate consents: %w", err)
	}
	return records, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanConsent(row rowScanner) (*models.Record, error) {
	var (
		record          models.Record
		scopes, issuing []byte
	)
	if err := row.Scan(&record.SubjectID, &scopes, &record.RetentionYears, &record.ConsentTimestamp, &issuing); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan consent: %w", err)
	}
	if err := json.Unmarshal(scopes, &record.Scopes); err != nil {
		return nil, fmt.Errorf("decode scopes for %s: %w: %w", record.SubjectID, sentinel.ErrCorrupt, err)
	}
	if len(issuing) > 0 {
		if err := json.Unmarshal(issuing, &record.Context); err != nil {
			return nil, fmt.Errorf("decode issuing context for %s: %w: %w", record.SubjectID, sentinel.ErrCorrupt, err)
		}
	}
	return &record, nil
}
