package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/petmarket-trust/internal/domain/transition"
	"github.com/ignatzorin/petmarket-trust/internal/models"
	"github.com/ignatzorin/petmarket-trust/internal/pkg/apperror"
)

// AccountRepository отвечает за таблицу accounts: флаги заводчика и блокировки.
type AccountRepository struct {
	db *sqlx.DB
}

// NewAccountRepository создаёт экземпляр репозитория.
func NewAccountRepository(db *sqlx.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

// GetByID возвращает аккаунт по идентификатору.
func (r *AccountRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	var account models.Account
	query := `
		SELECT id, email, username, role, verified_breeder, profile_public,
		       account_status, suspended_until, status_reason, created_at, updated_at
		FROM accounts
		WHERE id = $1
	`
	if err := r.db.GetContext(ctx, &account, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.ErrAccountNotFound
		}
		return nil, fmt.Errorf("account repository: get by id %w", err)
	}

	return &account, nil
}

// ApplyAccountChange применяет изменение статуса, запланированное модерацией.
// Незаданные поля изменения оставляют колонки как есть.
func (r *AccountRepository) ApplyAccountChange(ctx context.Context, change transition.AccountChange) error {
	if change.UserID == uuid.Nil {
		return fmt.Errorf("account repository: apply change: empty user id")
	}

	query := `
		UPDATE accounts SET
			verified_breeder = COALESCE($2::boolean, verified_breeder),
			profile_public   = COALESCE($3::boolean, profile_public),
			account_status   = COALESCE(NULLIF($4::text, ''), account_status),
			suspended_until  = CASE WHEN $5::boolean THEN $6::timestamptz ELSE suspended_until END,
			status_reason    = NULLIF($7::text, ''),
			updated_at       = NOW()
		WHERE id = $1
	`
	suspending := change.Kind == transition.AccountChangeSuspended

	result, err := r.db.ExecContext(ctx, query,
		change.UserID,
		change.VerifiedBreeder,
		change.ProfilePublic,
		string(change.Status),
		suspending,
		change.SuspendedUntil,
		change.Reason,
	)
	if err != nil {
		return fmt.Errorf("account repository: apply %s %w", change.Kind, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("account repository: apply rows affected %w", err)
	}
	if rowsAffected == 0 {
		return apperror.ErrAccountNotFound
	}

	return nil
}
