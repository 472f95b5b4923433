package handler

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/ignatzorin/petmarket-trust/internal/domain/entity"
	"github.com/ignatzorin/petmarket-trust/internal/models"
	"github.com/ignatzorin/petmarket-trust/internal/pkg/pagination"
	"github.com/ignatzorin/petmarket-trust/internal/usecase/listing"
	"github.com/ignatzorin/petmarket-trust/internal/usecase/moderation"
	"github.com/ignatzorin/petmarket-trust/internal/usecase/submission"
)

type mockEngine struct{ mock.Mock }

func (m *mockEngine) ApplyTransition(ctx context.Context, cmd moderation.Command) (*moderation.Result, error) {
	args := m.Called(ctx, cmd)
	res, _ := args.Get(0).(*moderation.Result)
	return res, args.Error(1)
}

func (m *mockEngine) Escalate(ctx context.Context, cmd moderation.EscalateCommand) (*entity.Report, error) {
	args := m.Called(ctx, cmd)
	r, _ := args.Get(0).(*entity.Report)
	return r, args.Error(1)
}

type mockListing struct{ mock.Mock }

func (m *mockListing) ListVerifications(ctx context.Context, q listing.VerificationQuery) (*pagination.Page[*entity.Verification], error) {
	args := m.Called(ctx, q)
	p, _ := args.Get(0).(*pagination.Page[*entity.Verification])
	return p, args.Error(1)
}

func (m *mockListing) GetVerification(ctx context.Context, rawSubjectID string) (*entity.Verification, error) {
	args := m.Called(ctx, rawSubjectID)
	v, _ := args.Get(0).(*entity.Verification)
	return v, args.Error(1)
}

func (m *mockListing) ListReports(ctx context.Context, q listing.ReportQuery) (*listing.ReportPage, error) {
	args := m.Called(ctx, q)
	p, _ := args.Get(0).(*listing.ReportPage)
	return p, args.Error(1)
}

func (m *mockListing) GetReport(ctx context.Context, rawReportID string) (*entity.Report, error) {
	args := m.Called(ctx, rawReportID)
	r, _ := args.Get(0).(*entity.Report)
	return r, args.Error(1)
}

func (m *mockListing) ListMyReports(ctx context.Context, reporterID uuid.UUID, page pagination.Request) (*pagination.Page[*entity.Report], error) {
	args := m.Called(ctx, reporterID, page)
	p, _ := args.Get(0).(*pagination.Page[*entity.Report])
	return p, args.Error(1)
}

type mockSubmissions struct{ mock.Mock }

func (m *mockSubmissions) OpenVerification(ctx context.Context, actor moderation.Principal, plan, level string) (*entity.Verification, bool, error) {
	args := m.Called(ctx, actor, plan, level)
	v, _ := args.Get(0).(*entity.Verification)
	return v, args.Bool(1), args.Error(2)
}

func (m *mockSubmissions) SubmitDocuments(ctx context.Context, actor moderation.Principal, inputs []submission.DocumentInput) (*entity.Verification, error) {
	args := m.Called(ctx, actor, inputs)
	v, _ := args.Get(0).(*entity.Verification)
	return v, args.Error(1)
}

func (m *mockSubmissions) GetVerificationStatus(ctx context.Context, actor moderation.Principal) (*entity.Verification, error) {
	args := m.Called(ctx, actor)
	v, _ := args.Get(0).(*entity.Verification)
	return v, args.Error(1)
}

func (m *mockSubmissions) CreateReport(ctx context.Context, actor moderation.Principal, in submission.ReportInput) (*entity.Report, error) {
	args := m.Called(ctx, actor, in)
	r, _ := args.Get(0).(*entity.Report)
	return r, args.Error(1)
}

type mockNotifications struct{ mock.Mock }

func (m *mockNotifications) ListNotifications(ctx context.Context, userID uuid.UUID, limit, offset int, unreadOnly bool) ([]models.Notification, error) {
	args := m.Called(ctx, userID, limit, offset, unreadOnly)
	items, _ := args.Get(0).([]models.Notification)
	return items, args.Error(1)
}

func (m *mockNotifications) MarkAsRead(ctx context.Context, userID, id uuid.UUID) error {
	return m.Called(ctx, userID, id).Error(0)
}

func (m *mockNotifications) CountUnread(ctx context.Context, userID uuid.UUID) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}
