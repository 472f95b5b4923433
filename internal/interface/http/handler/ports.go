package handler

import (
	"context"

	"github.com/google/uuid"

	"github.com/ignatzorin/petmarket-trust/internal/domain/entity"
	"github.com/ignatzorin/petmarket-trust/internal/models"
	"github.com/ignatzorin/petmarket-trust/internal/pkg/pagination"
	"github.com/ignatzorin/petmarket-trust/internal/usecase/listing"
	"github.com/ignatzorin/petmarket-trust/internal/usecase/moderation"
	"github.com/ignatzorin/petmarket-trust/internal/usecase/submission"
)

// ModerationEngine - переходы и эскалация (moderation.Engine).
type ModerationEngine interface {
	ApplyTransition(ctx context.Context, cmd moderation.Command) (*moderation.Result, error)
	Escalate(ctx context.Context, cmd moderation.EscalateCommand) (*entity.Report, error)
}

// ListingService - выборки для панели администратора и пользователя (listing.Service).
type ListingService interface {
	ListVerifications(ctx context.Context, q listing.VerificationQuery) (*pagination.Page[*entity.Verification], error)
	GetVerification(ctx context.Context, rawSubjectID string) (*entity.Verification, error)
	ListReports(ctx context.Context, q listing.ReportQuery) (*listing.ReportPage, error)
	GetReport(ctx context.Context, rawReportID string) (*entity.Report, error)
	ListMyReports(ctx context.Context, reporterID uuid.UUID, page pagination.Request) (*pagination.Page[*entity.Report], error)
}

// SubmissionService - действия заводчиков и авторов жалоб (submission.Service).
type SubmissionService interface {
	OpenVerification(ctx context.Context, actor moderation.Principal, plan, level string) (*entity.Verification, bool, error)
	SubmitDocuments(ctx context.Context, actor moderation.Principal, inputs []submission.DocumentInput) (*entity.Verification, error)
	GetVerificationStatus(ctx context.Context, actor moderation.Principal) (*entity.Verification, error)
	CreateReport(ctx context.Context, actor moderation.Principal, in submission.ReportInput) (*entity.Report, error)
}

// NotificationService - уведомления пользователя (service.NotificationService).
type NotificationService interface {
	ListNotifications(ctx context.Context, userID uuid.UUID, limit, offset int, unreadOnly bool) ([]models.Notification, error)
	MarkAsRead(ctx context.Context, userID, id uuid.UUID) error
	CountUnread(ctx context.Context, userID uuid.UUID) (int, error)
}
