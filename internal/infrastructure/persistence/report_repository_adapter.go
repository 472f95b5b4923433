package persistence

import (
	"context"
	"database/sql"
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

const reportColumns = `id, reporter_id, subject_type, subject_id, reported_user_id, reason, description,
	status, action, action_details, report_valid, rejection_reason, priority, assigned_admin_id,
	escalation_level, escalation_reason, escalated_at, escalated_by, resolved_at, admin_message,
	history, version, created_at, updated_at`

type ReportRepositoryAdapter struct {
	db *sqlx.DB
}

func NewReportRepositoryAdapter(db *sqlx.DB) *ReportRepositoryAdapter {
	return &ReportRepositoryAdapter{db: db}
}

func (r *ReportRepositoryAdapter) Create(ctx context.Context, report *entity.Report) error {
	row, err := toReportRow(report)
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось сериализовать жалобу")
	}
	query := `
		INSERT INTO reports (id, reporter_id, subject_type, subject_id, reported_user_id, reason,
			description, status, priority, history, version, created_at, updated_at)
		VALUES (:id, :reporter_id, :subject_type, :subject_id, :reported_user_id, :reason,
			:description, :status, :priority, :history, :version, :created_at, :updated_at)
	`
	if _, err := r.db.NamedExecContext(ctx, query, row); err != nil {
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось создать жалобу")
	}
	return nil
}

func (r *ReportRepositoryAdapter) FindByID(ctx context.Context, id uuid.UUID) (*entity.Report, error) {
	var row reportRow
	if err := r.db.GetContext(ctx, &row, `SELECT `+reportColumns+` FROM reports WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.ErrReportNotFound
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить жалобу")
	}
	return row.toEntity()
}

func (r *ReportRepositoryAdapter) AtomicUpdate(ctx context.Context, id uuid.UUID, expectedVersion int, mutate repository.ReportMutator) (*entity.Report, error) {
	var updated *entity.Report

	err := common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		var row reportRow
		if err := tx.GetContext(ctx, &row, `SELECT `+reportColumns+` FROM reports WHERE id = $1 FOR UPDATE`, id); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return apperror.ErrReportNotFound
			}
			return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить жалобу")
		}
		if row.Version != expectedVersion {
			return apperror.ErrVersionConflict
		}

		report, err := row.toEntity()
		if err != nil {
			return err
		}
		if err := mutate(report); err != nil {
			return err
		}
		report.Version = expectedVersion + 1

		next, err := toReportRow(report)
		if err != nil {
			return apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось сериализовать жалобу")
		}
		res, err := tx.ExecContext(ctx, `
			UPDATE reports SET status = $3, action = $4, action_details = $5, report_valid = $6,
				rejection_reason = $7, priority = $8, assigned_admin_id = $9, escalation_level = $10,
				escalation_reason = $11, escalated_at = $12, escalated_by = $13, resolved_at = $14,
				admin_message = $15, history = $16, version = $17, updated_at = $18
			WHERE id = $1 AND version = $2
		`,
			next.ID, expectedVersion, next.Status, next.Action, nullableJSON(next.ActionDetails), next.ReportValid,
			next.RejectionReason, next.Priority, next.AssignedAdminID, next.EscalationLevel,
			next.EscalationReason, next.EscalatedAt, next.EscalatedBy, next.ResolvedAt,
			next.AdminMessage, next.History, next.Version, next.UpdatedAt,
		)
		if err != nil {
			return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось обновить жалобу")
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return apperror.ErrVersionConflict
		}
		updated = report
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *ReportRepositoryAdapter) List(ctx context.Context, filter repository.ReportFilter) ([]*entity.Report, error) {
	where := reportWhere(filter)
	query := fmt.Sprintf(`SELECT %s FROM reports%s ORDER BY created_at ASC, id ASC LIMIT $%d OFFSET $%d`,
		reportColumns, where.SQL(), where.Next(), where.Next()+1)
	args := append(where.Args(), filter.Limit, filter.Offset)

	var rows []reportRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, listError(ctx, err, "не удалось получить список жалоб")
	}

	out := make([]*entity.Report, 0, len(rows))
	for i := range rows {
		report, err := rows[i].toEntity()
		if err != nil {
			return nil, err
		}
		out = append(out, report)
	}
	return out, nil
}

func (r *ReportRepositoryAdapter) Count(ctx context.Context, filter repository.ReportFilter) (int, error) {
	where := reportWhere(filter)
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM reports`+where.SQL(), where.Args()...); err != nil {
		return 0, listError(ctx, err, "не удалось посчитать жалобы")
	}
	return total, nil
}

// Statistics считает агрегаты без фильтра по статусу, чтобы счётчики не обнулялись выбранной вкладкой.
func (r *ReportRepositoryAdapter) Statistics(ctx context.Context, filter repository.ReportFilter) (repository.ReportStatistics, error) {
	filter.Statuses = nil
	where := reportWhere(filter)
	query := `
		SELECT
			COUNT(*) AS total_reports,
			COUNT(*) FILTER (WHERE status = 'pending') AS pending_reports,
			COUNT(*) FILTER (WHERE status = 'investigating') AS investigating_reports,
			COUNT(*) FILTER (WHERE status = 'resolved') AS resolved_reports,
			COUNT(*) FILTER (WHERE status = 'rejected') AS rejected_reports
		FROM reports` + where.SQL()

	var stats repository.ReportStatistics
	if err := r.db.GetContext(ctx, &stats, query, where.Args()...); err != nil {
		return stats, listError(ctx, err, "не удалось посчитать статистику жалоб")
	}
	return stats, nil
}

func reportWhere(f repository.ReportFilter) *common.Where {
	w := &common.Where{}
	if len(f.Statuses) > 0 {
		w.Add("status = ANY(?)", pq.Array(f.Statuses))
	}
	if f.Reason != "" {
		w.Add("reason = ?", f.Reason)
	}
	if f.DateFrom != nil {
		w.Add("created_at >= ?", *f.DateFrom)
	}
	if f.DateTo != nil {
		w.Add("created_at <= ?", *f.DateTo)
	}
	if f.SubjectID != nil {
		w.Add("subject_id = ?", *f.SubjectID)
	}
	if f.ReportedUserID != nil {
		w.Add("reported_user_id = ?", *f.ReportedUserID)
	}
	if f.ReporterID != nil {
		w.Add("reporter_id = ?", *f.ReporterID)
	}
	if f.Search != "" {
		w.Add("description ILIKE ?", common.LikePattern(f.Search))
	}
	return w
}

type reportRow struct {
	ID               uuid.UUID  `db:"id"`
	ReporterID       uuid.UUID  `db:"reporter_id"`
	SubjectType      string     `db:"subject_type"`
	SubjectID        uuid.UUID  `db:"subject_id"`
	ReportedUserID   uuid.UUID  `db:"reported_user_id"`
	Reason           string     `db:"reason"`
	Description      string     `db:"description"`
	Status           string     `db:"status"`
	Action           *string    `db:"action"`
	ActionDetails    []byte     `db:"action_details"`
	ReportValid      *bool      `db:"report_valid"`
	RejectionReason  *string    `db:"rejection_reason"`
	Priority         string     `db:"priority"`
	AssignedAdminID  *uuid.UUID `db:"assigned_admin_id"`
	EscalationLevel  int        `db:"escalation_level"`
	EscalationReason *string    `db:"escalation_reason"`
	EscalatedAt      *time.Time `db:"escalated_at"`
	EscalatedBy      *uuid.UUID `db:"escalated_by"`
	ResolvedAt       *time.Time `db:"resolved_at"`
	AdminMessage     *string    `db:"admin_message"`
	History          []byte     `db:"history"`
	Version          int        `db:"version"`
	CreatedAt        time.Time  `db:"created_at"`
	UpdatedAt        time.Time  `db:"updated_at"`
}

func (row *reportRow) toEntity() (*entity.Report, error) {
	report := &entity.Report{
		ID:               row.ID,
		ReporterID:       row.ReporterID,
		SubjectType:      valueobject.SubjectType(row.SubjectType),
		SubjectID:        row.SubjectID,
		ReportedUserID:   row.ReportedUserID,
		Reason:           valueobject.ReportReason(row.Reason),
		Description:      row.Description,
		Status:           valueobject.ReportStatus(row.Status),
		ReportValid:      row.ReportValid,
		RejectionReason:  row.RejectionReason,
		Priority:         valueobject.Priority(row.Priority),
		AssignedAdminID:  row.AssignedAdminID,
		EscalationLevel:  row.EscalationLevel,
		EscalationReason: row.EscalationReason,
		EscalatedAt:      row.EscalatedAt,
		EscalatedBy:      row.EscalatedBy,
		ResolvedAt:       row.ResolvedAt,
		AdminMessage:     row.AdminMessage,
		Version:          row.Version,
		CreatedAt:        row.CreatedAt,
		UpdatedAt:        row.UpdatedAt,
	}
	if row.Action != nil {
		action := valueobject.ReportAction(*row.Action)
		report.Action = &action
	}
	if len(row.ActionDetails) > 0 {
		report.ActionDetails = &entity.ActionDetails{}
		if err := unmarshalJSONB(row.ActionDetails, report.ActionDetails); err != nil {
			return nil, err
		}
	}
	if err := unmarshalJSONB(row.History, &report.History); err != nil {
		return nil, err
	}
	return report, nil
}

func toReportRow(report *entity.Report) (*reportRow, error) {
	history, err := common.MarshalJSONB(report.History, "[]")
	if err != nil {
		return nil, err
	}
	var details []byte
	if report.ActionDetails != nil {
		if details, err = common.MarshalJSONB(report.ActionDetails, "{}"); err != nil {
			return nil, err
		}
	}
	var action *string
	if report.Action != nil {
		a := string(*report.Action)
		action = &a
	}
	return &reportRow{
		ID:               report.ID,
		ReporterID:       report.ReporterID,
		SubjectType:      string(report.SubjectType),
		SubjectID:        report.SubjectID,
		ReportedUserID:   report.ReportedUserID,
		Reason:           string(report.Reason),
		Description:      report.Description,
		Status:           string(report.Status),
		Action:           action,
		ActionDetails:    details,
		ReportValid:      report.ReportValid,
		RejectionReason:  report.RejectionReason,
		Priority:         string(report.Priority),
		AssignedAdminID:  report.AssignedAdminID,
		EscalationLevel:  report.EscalationLevel,
		EscalationReason: report.EscalationReason,
		EscalatedAt:      report.EscalatedAt,
		EscalatedBy:      report.EscalatedBy,
		ResolvedAt:       report.ResolvedAt,
		AdminMessage:     report.AdminMessage,
		History:          history,
		Version:          report.Version,
		CreatedAt:        report.CreatedAt,
		UpdatedAt:        report.UpdatedAt,
	}, nil
}

// nullableJSON пишет NULL вместо пустого JSONB.
func nullableJSON(data []byte) interface{} {
	if len(data) == 0 {
		return nil
	}
	return data
}
