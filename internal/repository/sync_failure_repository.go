package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/petmarket-trust/internal/models"
)

// SyncFailureRepository хранит журнал сбоев побочных эффектов.
type SyncFailureRepository struct {
	db *sqlx.DB
}

func NewSyncFailureRepository(db *sqlx.DB) *SyncFailureRepository {
	return &SyncFailureRepository{db: db}
}

func (r *SyncFailureRepository) Create(ctx context.Context, failure *models.SyncFailure) error {
	payload := failure.Payload
	if len(payload) == 0 {
		payload = []byte("{}")
	}

	query := `
		INSERT INTO sync_failures (effect, entity_kind, entity_id, payload, error)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, attempts, created_at, updated_at
	`
	if err := r.db.QueryRowxContext(ctx, query,
		failure.Effect,
		failure.EntityKind,
		failure.EntityID,
		[]byte(payload),
		failure.Error,
	).Scan(&failure.ID, &failure.Attempts, &failure.CreatedAt, &failure.UpdatedAt); err != nil {
		return fmt.Errorf("sync failure repository: create %w", err)
	}

	return nil
}

// ListPending возвращает нерешённые сбои, старые первыми.
func (r *SyncFailureRepository) ListPending(ctx context.Context, effect string, limit int) ([]models.SyncFailure, error) {
	query := `
		SELECT id, effect, entity_kind, entity_id, payload, error, attempts, resolved_at, created_at, updated_at
		FROM sync_failures
		WHERE resolved_at IS NULL
	`
	args := []interface{}{}
	if effect != "" {
		args = append(args, effect)
		query += fmt.Sprintf(" AND effect = $%d", len(args))
	}
	query += " ORDER BY created_at, id"
	if limit > 0 {
		args = append(args, limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	failures := []models.SyncFailure{}
	if err := r.db.SelectContext(ctx, &failures, query, args...); err != nil {
		return nil, fmt.Errorf("sync failure repository: list pending %w", err)
	}

	return failures, nil
}

func (r *SyncFailureRepository) MarkResolved(ctx context.Context, id uuid.UUID) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE sync_failures SET resolved_at = NOW(), updated_at = NOW() WHERE id = $1 AND resolved_at IS NULL`, id,
	); err != nil {
		return fmt.Errorf("sync failure repository: mark resolved %w", err)
	}
	return nil
}

// RecordAttempt увеличивает счётчик попыток и сохраняет последнюю ошибку.
func (r *SyncFailureRepository) RecordAttempt(ctx context.Context, id uuid.UUID, lastErr string) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE sync_failures SET attempts = attempts + 1, error = $2, updated_at = NOW() WHERE id = $1`, id, lastErr,
	); err != nil {
		return fmt.Errorf("sync failure repository: record attempt %w", err)
	}
	return nil
}
