package submission_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/petmarket-trust/internal/domain/entity"
	"github.com/ignatzorin/petmarket-trust/internal/domain/repository"
	"github.com/ignatzorin/petmarket-trust/internal/domain/valueobject"
	"github.com/ignatzorin/petmarket-trust/internal/pkg/apperror"
	"github.com/ignatzorin/petmarket-trust/internal/usecase/moderation"
	"github.com/ignatzorin/petmarket-trust/internal/usecase/submission"
)

var fixedNow = time.Date(2026, 4, 2, 9, 30, 0, 0, time.UTC)

type mockVerificationRepository struct {
	items map[uuid.UUID]*entity.Verification
}

func (m *mockVerificationRepository) Create(ctx context.Context, v *entity.Verification) error {
	if _, ok := m.items[v.SubjectID]; ok {
		return apperror.ErrVerificationExists
	}
	m.items[v.SubjectID] = v.Clone()
	return nil
}

func (m *mockVerificationRepository) FindBySubjectID(ctx context.Context, id uuid.UUID) (*entity.Verification, error) {
	if v, ok := m.items[id]; ok {
		return v.Clone(), nil
	}
	return nil, apperror.ErrVerificationNotFound
}

func (m *mockVerificationRepository) AtomicUpdate(ctx context.Context, id uuid.UUID, expected int, mutate repository.VerificationMutator) (*entity.Verification, error) {
	cur, ok := m.items[id]
	if !ok {
		return nil, apperror.ErrVerificationNotFound
	}
	if cur.Version != expected {
		return nil, apperror.ErrVersionConflict
	}
	next := cur.Clone()
	if err := mutate(next); err != nil {
		return nil, err
	}
	next.Version++
	m.items[id] = next
	return next.Clone(), nil
}

func (m *mockVerificationRepository) List(ctx context.Context, f repository.VerificationFilter) ([]*entity.Verification, error) {
	return nil, nil
}

func (m *mockVerificationRepository) Count(ctx context.Context, f repository.VerificationFilter) (int, error) {
	return len(m.items), nil
}

func (m *mockVerificationRepository) BackfillPending(ctx context.Context) (int64, error) {
	return 0, nil
}

type mockReportRepository struct {
	items map[uuid.UUID]*entity.Report
}

func (m *mockReportRepository) Create(ctx context.Context, r *entity.Report) error {
	m.items[r.ID] = r.Clone()
	return nil
}

func (m *mockReportRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Report, error) {
	if r, ok := m.items[id]; ok {
		return r.Clone(), nil
	}
	return nil, apperror.ErrReportNotFound
}

func (m *mockReportRepository) AtomicUpdate(ctx context.Context, id uuid.UUID, expected int, mutate repository.ReportMutator) (*entity.Report, error) {
	return nil, apperror.ErrReportNotFound
}

func (m *mockReportRepository) List(ctx context.Context, f repository.ReportFilter) ([]*entity.Report, error) {
	return nil, nil
}

func (m *mockReportRepository) Count(ctx context.Context, f repository.ReportFilter) (int, error) {
	return len(m.items), nil
}

func (m *mockReportRepository) Statistics(ctx context.Context, f repository.ReportFilter) (repository.ReportStatistics, error) {
	return repository.ReportStatistics{}, nil
}

func setup() (*submission.Service, *mockVerificationRepository, *mockReportRepository) {
	verifications := &mockVerificationRepository{items: make(map[uuid.UUID]*entity.Verification)}
	reports := &mockReportRepository{items: make(map[uuid.UUID]*entity.Report)}
	svc := submission.NewService(verifications, reports)
	svc.SetClock(func() time.Time { return fixedNow })
	return svc, verifications, reports
}

func breeder() moderation.Principal {
	return moderation.Principal{ID: uuid.New(), Role: valueobject.RoleBreeder}
}

func TestOpenVerification_Idempotent(t *testing.T) {
	svc, repo, _ := setup()
	actor := breeder()

	first, created, err := svc.OpenVerification(context.Background(), actor, "premium", "")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, valueobject.VerificationStatusPending, first.Status)
	assert.Equal(t, valueobject.BreederPlanPremium, first.Plan)
	assert.Equal(t, valueobject.BreederLevelNew, first.Level)
	assert.Equal(t, 1, first.Version)
	assert.Empty(t, first.History)

	second, created, err := svc.OpenVerification(context.Background(), actor, "basic", "")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, repo.items, 1)
}

func TestOpenVerification_BreederOnly(t *testing.T) {
	svc, _, _ := setup()

	_, _, err := svc.OpenVerification(context.Background(), moderation.Principal{ID: uuid.New(), Role: valueobject.RoleAdopter}, "", "")
	require.Error(t, err)
	assert.True(t, apperror.IsForbidden(err))

	_, _, err = svc.OpenVerification(context.Background(), moderation.Principal{}, "", "")
	assert.Equal(t, apperror.ErrCodeUnauthorized, apperror.CodeOf(err))

	_, _, err = svc.OpenVerification(context.Background(), breeder(), "gold", "")
	assert.True(t, apperror.IsValidation(err))
}

func TestSubmitDocuments_Appends(t *testing.T) {
	svc, _, _ := setup()
	actor := breeder()
	_, _, err := svc.OpenVerification(context.Background(), actor, "", "")
	require.NoError(t, err)

	v, err := svc.SubmitDocuments(context.Background(), actor, []submission.DocumentInput{
		{Type: "business_license", URL: "https://files.example.com/license.PDF"},
		{Type: "identity", URL: "https://files.example.com/passport.jpeg"},
	})
	require.NoError(t, err)
	require.Len(t, v.Documents, 2)
	assert.Equal(t, "application/pdf", v.Documents[0].MimeType)
	assert.Equal(t, "image/jpeg", v.Documents[1].MimeType)
	assert.Equal(t, fixedNow, v.Documents[0].UploadedAt)
	assert.Equal(t, valueobject.VerificationStatusPending, v.Status)

	v, err = svc.SubmitDocuments(context.Background(), actor, []submission.DocumentInput{
		{Type: "health_certificate", URL: "http://files.example.com/vet.png"},
	})
	require.NoError(t, err)
	require.Len(t, v.Documents, 3)
	assert.Equal(t, "health_certificate", v.Documents[2].Type)
	assert.Equal(t, 3, v.Version)
}

func TestSubmitDocuments_InvalidInput(t *testing.T) {
	svc, _, _ := setup()
	actor := breeder()
	_, _, err := svc.OpenVerification(context.Background(), actor, "", "")
	require.NoError(t, err)

	cases := map[string][]submission.DocumentInput{
		"empty":        nil,
		"unknown type": {{Type: "selfie", URL: "https://x.example.com/a.pdf"}},
		"relative url": {{Type: "identity", URL: "/uploads/a.pdf"}},
		"ftp scheme":   {{Type: "identity", URL: "ftp://x.example.com/a.pdf"}},
		"executable":   {{Type: "other", URL: "https://x.example.com/a.exe"}},
		"no extension": {{Type: "other", URL: "https://x.example.com/download"}},
	}
	for name, docs := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.SubmitDocuments(context.Background(), actor, docs)
			require.Error(t, err)
			assert.True(t, apperror.IsValidation(err), "got %v", err)
		})
	}
}

func TestSubmitDocuments_ClosedAfterDecision(t *testing.T) {
	svc, repo, _ := setup()
	actor := breeder()
	v, _, err := svc.OpenVerification(context.Background(), actor, "", "")
	require.NoError(t, err)

	stored := repo.items[actor.ID]
	stored.Apply(entity.VerificationDecision{To: valueobject.VerificationStatusApproved}, uuid.New(), "ok", fixedNow)

	_, err = svc.SubmitDocuments(context.Background(), actor, []submission.DocumentInput{
		{Type: "other", URL: "https://files.example.com/extra.webp"},
	})
	require.Error(t, err)
	assert.True(t, apperror.IsAlreadyProcessed(err))
	assert.Empty(t, repo.items[v.SubjectID].Documents)
}

func TestSubmitDocuments_NoRecord(t *testing.T) {
	svc, _, _ := setup()
	_, err := svc.SubmitDocuments(context.Background(), breeder(), []submission.DocumentInput{
		{Type: "identity", URL: "https://files.example.com/id.png"},
	})
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

func TestGetVerificationStatus(t *testing.T) {
	svc, _, _ := setup()
	actor := breeder()

	_, err := svc.GetVerificationStatus(context.Background(), actor)
	assert.True(t, apperror.IsNotFound(err))

	_, _, err = svc.OpenVerification(context.Background(), actor, "", "elite")
	require.NoError(t, err)
	v, err := svc.GetVerificationStatus(context.Background(), actor)
	require.NoError(t, err)
	assert.Equal(t, valueobject.BreederLevelElite, v.Level)
}

func TestCreateReport(t *testing.T) {
	svc, _, repo := setup()
	reporter := moderation.Principal{ID: uuid.New(), Role: valueobject.RoleAdopter}
	breederID := uuid.New()

	r, err := svc.CreateReport(context.Background(), reporter, submission.ReportInput{
		SubjectType: "breeder",
		SubjectID:   breederID.String(),
		Reason:      "animal_abuse",
		Description: "  puppies kept in cages  ",
	})
	require.NoError(t, err)
	assert.Equal(t, breederID, r.ReportedUserID)
	assert.Equal(t, valueobject.PriorityHigh, r.Priority)
	assert.Equal(t, valueobject.ReportStatusPending, r.Status)
	assert.Equal(t, "puppies kept in cages", r.Description)
	assert.Equal(t, fixedNow, r.CreatedAt)
	assert.Contains(t, repo.items, r.ID)

	post, err := svc.CreateReport(context.Background(), reporter, submission.ReportInput{
		SubjectType:    "post",
		SubjectID:      uuid.NewString(),
		ReportedUserID: breederID.String(),
		Reason:         "false_information",
		Description:    "wrong pedigree",
	})
	require.NoError(t, err)
	assert.Equal(t, valueobject.PriorityMedium, post.Priority)
}

func TestCreateReport_Invalid(t *testing.T) {
	svc, _, repo := setup()
	reporter := moderation.Principal{ID: uuid.New(), Role: valueobject.RoleBreeder}

	cases := map[string]submission.ReportInput{
		"self report":      {SubjectType: "breeder", SubjectID: reporter.ID.String(), Reason: "fraud", Description: "x"},
		"unknown subject":  {SubjectType: "comment", SubjectID: uuid.NewString(), Reason: "fraud", Description: "x"},
		"unknown reason":   {SubjectType: "breeder", SubjectID: uuid.NewString(), Reason: "spam", Description: "x"},
		"post w/o user":    {SubjectType: "post", SubjectID: uuid.NewString(), Reason: "other", Description: "x"},
		"empty text":       {SubjectType: "breeder", SubjectID: uuid.NewString(), Reason: "other", Description: "   "},
		"malformed target": {SubjectType: "breeder", SubjectID: "42", Reason: "other", Description: "x"},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.CreateReport(context.Background(), reporter, in)
			require.Error(t, err)
			assert.True(t, apperror.IsValidation(err), "got %v", err)
		})
	}
	assert.Empty(t, repo.items)

	_, err := svc.CreateReport(context.Background(), moderation.Principal{}, cases["unknown reason"])
	assert.Equal(t, apperror.ErrCodeUnauthorized, apperror.CodeOf(err))
}
