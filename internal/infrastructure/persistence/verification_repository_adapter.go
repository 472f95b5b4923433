package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/ignatzorin/petmarket-trust/internal/domain/entity"
	"github.com/ignatzorin/petmarket-trust/internal/domain/repository"
	"github.com/ignatzorin/petmarket-trust/internal/domain/valueobject"
	"github.com/ignatzorin/petmarket-trust/internal/pkg/apperror"
	"github.com/ignatzorin/petmarket-trust/internal/repository/common"
)

const verificationColumns = `v.id, v.subject_id, v.status, v.plan, v.level, v.documents, v.submitted_at,
	v.reviewed_at, v.reviewed_by, v.revoked_at, v.rejection_reason, v.conditions, v.required_documents,
	v.review_deadline, v.reapply_after, v.history, v.version, v.created_at, v.updated_at`

type VerificationRepositoryAdapter struct {
	db *sqlx.DB
}

func NewVerificationRepositoryAdapter(db *sqlx.DB) *VerificationRepositoryAdapter {
	return &VerificationRepositoryAdapter{db: db}
}

func (r *VerificationRepositoryAdapter) Create(ctx context.Context, v *entity.Verification) error {
	row, err := toVerificationRow(v)
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось сериализовать заявку")
	}

	query := `
		INSERT INTO verifications (id, subject_id, status, plan, level, documents, submitted_at,
			conditions, required_documents, history, version, created_at, updated_at)
		VALUES (:id, :subject_id, :status, :plan, :level, :documents, :submitted_at,
			:conditions, :required_documents, :history, :version, :created_at, :updated_at)
		ON CONFLICT (subject_id) DO NOTHING
	`
	res, err := r.db.NamedExecContext(ctx, query, row)
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось создать заявку на верификацию")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperror.ErrVerificationExists
	}
	return nil
}

func (r *VerificationRepositoryAdapter) FindBySubjectID(ctx context.Context, subjectID uuid.UUID) (*entity.Verification, error) {
	var row verificationRow
	query := `SELECT ` + verificationColumns + ` FROM verifications v WHERE v.subject_id = $1`
	if err := r.db.GetContext(ctx, &row, query, subjectID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.ErrVerificationNotFound
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить заявку на верификацию")
	}
	return row.toEntity()
}

// AtomicUpdate применяет мутатор под блокировкой строки и пишет только при совпадении версии.
func (r *VerificationRepositoryAdapter) AtomicUpdate(ctx context.Context, subjectID uuid.UUID, expectedVersion int, mutate repository.VerificationMutator) (*entity.Verification, error) {
	var updated *entity.Verification

	err := common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		var row verificationRow
		query := `SELECT ` + verificationColumns + ` FROM verifications v WHERE v.subject_id = $1 FOR UPDATE`
		if err := tx.GetContext(ctx, &row, query, subjectID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return apperror.ErrVerificationNotFound
			}
			return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить заявку на верификацию")
		}
		if row.Version != expectedVersion {
			return apperror.ErrVersionConflict
		}

		v, err := row.toEntity()
		if err != nil {
			return err
		}
		if err := mutate(v); err != nil {
			return err
		}
		v.Version = expectedVersion + 1

		next, err := toVerificationRow(v)
		if err != nil {
			return apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось сериализовать заявку")
		}
		res, err := tx.ExecContext(ctx, `
			UPDATE verifications SET status = $3, documents = $4, submitted_at = $5, reviewed_at = $6,
				reviewed_by = $7, revoked_at = $8, rejection_reason = $9, conditions = $10,
				required_documents = $11, review_deadline = $12, reapply_after = $13, history = $14,
				version = $15, updated_at = $16
			WHERE id = $1 AND version = $2
		`,
			next.ID, expectedVersion, next.Status, next.Documents, next.SubmittedAt, next.ReviewedAt,
			next.ReviewedBy, next.RevokedAt, next.RejectionReason, next.Conditions,
			next.RequiredDocuments, next.ReviewDeadline, next.ReapplyAfter, next.History,
			next.Version, next.UpdatedAt,
		)
		if err != nil {
			return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось обновить заявку на верификацию")
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return apperror.ErrVersionConflict
		}
		updated = v
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *VerificationRepositoryAdapter) List(ctx context.Context, filter repository.VerificationFilter) ([]*entity.Verification, error) {
	where := verificationWhere(filter)
	query := fmt.Sprintf(`SELECT %s FROM verifications v JOIN accounts a ON a.id = v.subject_id%s
		ORDER BY v.created_at ASC, v.id ASC LIMIT $%d OFFSET $%d`,
		verificationColumns, where.SQL(), where.Next(), where.Next()+1)
	args := append(where.Args(), filter.Limit, filter.Offset)

	var rows []verificationRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, listError(ctx, err, "не удалось получить список заявок")
	}

	out := make([]*entity.Verification, 0, len(rows))
	for i := range rows {
		v, err := rows[i].toEntity()
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func (r *VerificationRepositoryAdapter) Count(ctx context.Context, filter repository.VerificationFilter) (int, error) {
	where := verificationWhere(filter)
	var total int
	query := `SELECT COUNT(*) FROM verifications v JOIN accounts a ON a.id = v.subject_id` + where.SQL()
	if err := r.db.GetContext(ctx, &total, query, where.Args()...); err != nil {
		return 0, listError(ctx, err, "не удалось посчитать заявки")
	}
	return total, nil
}

// BackfillPending создаёт заявку pending каждому заводчику, у которого её ещё нет.
func (r *VerificationRepositoryAdapter) BackfillPending(ctx context.Context) (int64, error) {
	query := `
		INSERT INTO verifications (id, subject_id, status, plan, level, submitted_at, created_at, updated_at)
		SELECT gen_random_uuid(), a.id, 'pending', 'basic', 'new', NOW(), NOW(), NOW()
		FROM accounts a
		WHERE a.role = 'breeder'
		ON CONFLICT (subject_id) DO NOTHING
	`
	res, err := r.db.ExecContext(ctx, query)
	if err != nil {
		return 0, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось создать недостающие заявки")
	}
	n, _ := res.RowsAffected()
	return n, nil
}

func verificationWhere(f repository.VerificationFilter) *common.Where {
	w := &common.Where{}
	if len(f.Statuses) > 0 {
		w.Add("v.status = ANY(?)", pq.Array(f.Statuses))
	}
	if f.DateFrom != nil {
		w.Add("v.created_at >= ?", *f.DateFrom)
	}
	if f.DateTo != nil {
		w.Add("v.created_at <= ?", *f.DateTo)
	}
	if f.SubjectID != nil {
		w.Add("v.subject_id = ?", *f.SubjectID)
	}
	if f.Search != "" {
		w.Add("(a.username ILIKE ? OR a.email ILIKE ?)", common.LikePattern(f.Search))
	}
	return w
}

// listError отделяет отмену и таймаут запроса от настоящих ошибок базы.
func listError(ctx context.Context, err error, message string) error {
	if errors.Is(ctx.Err(), context.Canceled) {
		return apperror.Canceled(ctx.Err())
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return apperror.Wrap(err, apperror.ErrCodeDatabaseError, message)
}

type verificationRow struct {
	ID                uuid.UUID      `db:"id"`
	SubjectID         uuid.UUID      `db:"subject_id"`
	Status            string         `db:"status"`
	Plan              string         `db:"plan"`
	Level             string         `db:"level"`
	Documents         []byte         `db:"documents"`
	SubmittedAt       time.Time      `db:"submitted_at"`
	ReviewedAt        *time.Time     `db:"reviewed_at"`
	ReviewedBy        *uuid.UUID     `db:"reviewed_by"`
	RevokedAt         *time.Time     `db:"revoked_at"`
	RejectionReason   *string        `db:"rejection_reason"`
	Conditions        pq.StringArray `db:"conditions"`
	RequiredDocuments pq.StringArray `db:"required_documents"`
	ReviewDeadline    *time.Time     `db:"review_deadline"`
	ReapplyAfter      *time.Time     `db:"reapply_after"`
	History           []byte         `db:"history"`
	Version           int            `db:"version"`
	CreatedAt         time.Time      `db:"created_at"`
	UpdatedAt         time.Time      `db:"updated_at"`
}

func (row *verificationRow) toEntity() (*entity.Verification, error) {
	v := &entity.Verification{
		ID:                row.ID,
		SubjectID:         row.SubjectID,
		Status:            valueobject.VerificationStatus(row.Status),
		Plan:              valueobject.BreederPlan(row.Plan),
		Level:             valueobject.BreederLevel(row.Level),
		SubmittedAt:       row.SubmittedAt,
		ReviewedAt:        row.ReviewedAt,
		ReviewedBy:        row.ReviewedBy,
		RevokedAt:         row.RevokedAt,
		RejectionReason:   row.RejectionReason,
		Conditions:        []string(row.Conditions),
		RequiredDocuments: []string(row.RequiredDocuments),
		ReviewDeadline:    row.ReviewDeadline,
		ReapplyAfter:      row.ReapplyAfter,
		Version:           row.Version,
		CreatedAt:         row.CreatedAt,
		UpdatedAt:         row.UpdatedAt,
	}
	if err := unmarshalJSONB(row.Documents, &v.Documents); err != nil {
		return nil, err
	}
	if err := unmarshalJSONB(row.History, &v.History); err != nil {
		return nil, err
	}
	return v, nil
}

func toVerificationRow(v *entity.Verification) (*verificationRow, error) {
	documents, err := common.MarshalJSONB(v.Documents, "[]")
	if err != nil {
		return nil, err
	}
	history, err := common.MarshalJSONB(v.History, "[]")
	if err != nil {
		return nil, err
	}
	return &verificationRow{
		ID:                v.ID,
		SubjectID:         v.SubjectID,
		Status:            string(v.Status),
		Plan:              string(v.Plan),
		Level:             string(v.Level),
		Documents:         documents,
		SubmittedAt:       v.SubmittedAt,
		ReviewedAt:        v.ReviewedAt,
		ReviewedBy:        v.ReviewedBy,
		RevokedAt:         v.RevokedAt,
		RejectionReason:   v.RejectionReason,
		Conditions:        stringArray(v.Conditions),
		RequiredDocuments: stringArray(v.RequiredDocuments),
		ReviewDeadline:    v.ReviewDeadline,
		ReapplyAfter:      v.ReapplyAfter,
		History:           history,
		Version:           v.Version,
		CreatedAt:         v.CreatedAt,
		UpdatedAt:         v.UpdatedAt,
	}, nil
}

func unmarshalJSONB(data []byte, dst interface{}) error {
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "повреждённые данные JSONB")
	}
	return nil
}

// stringArray не даёт записать NULL в колонку TEXT[] NOT NULL.
func stringArray(items []string) pq.StringArray {
	if items == nil {
		return pq.StringArray{}
	}
	return pq.StringArray(items)
}
