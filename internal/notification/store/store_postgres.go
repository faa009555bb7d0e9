package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"talentgate/internal/notification/models"
	"talentgate/pkg/platform/sentinel"
)

// PostgresStore persists rules as JSONB documents. The active flag is kept
// in its own column so it can be toggled without rewriting the rule.
type PostgresStore struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewPostgres(db *sql.DB, logger *slog.Logger) *PostgresStore {
	return &PostgresStore{db: db, logger: logger}
}

func (s *PostgresStore) Save(ctx context.Context, rule models.Rule) error {
	doc, err := json.Marshal(rule)
	if err != nil {
		return fmt.Errorf("encode rule: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO notification_rules (id, active, rule, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE
		SET active = EXCLUDED.active,
			rule = EXCLUDED.rule,
			updated_at = EXCLUDED.updated_at
	`, rule.ID, rule.Active, doc, rule.UpdatedAt)
	if err != nil {
		return fmt.Errorf("save rule: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (models.Rule, error) {
	row := s.db.QueryRowContext(ctx, `SELECT active, rule FROM notification_rules WHERE id = $1`, id)
	rule, err := scanRule(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Rule{}, sentinel.ErrNotFound
	}
	return rule, err
}

func (s *PostgresStore) List(ctx context.Context) ([]models.Rule, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT active, rule FROM notification_rules ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list rules: %w", err)
	}
	defer rows.Close()

	var rules []models.Rule
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			if errors.Is(err, sentinel.ErrCorrupt) {
				if s.logger != nil {
					s.logger.WarnContext(ctx, "skipping undecodable notification rule", "error", err)
				}
				continue
			}
			return nil, err
		}
		rules = append(rules, rule)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rules: %w", err)
	}
	return rules, nil
}

func (s *PostgresStore) SetActive(ctx context.Context, id string, active bool) (models.Rule, error) {
	row := s.db.QueryRowContext(ctx, `
		UPDATE notification_rules SET active = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING active, rule
	`, id, active)
	rule, err := scanRule(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Rule{}, sentinel.ErrNotFound
	}
	return rule, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRule(row rowScanner) (models.Rule, error) {
	var (
		active bool
		doc    []byte
	)
	if err := row.Scan(&active, &doc); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Rule{}, err
		}
		return models.Rule{}, fmt.Errorf("scan rule: %w", err)
	}
	var rule models.Rule
	if err := json.Unmarshal(doc, &rule); err != nil {
		return models.Rule{}, fmt.Errorf("decode rule: %w: %w", sentinel.ErrCorrupt, err)
	}
	rule.Active = active
	return rule, nil
}
