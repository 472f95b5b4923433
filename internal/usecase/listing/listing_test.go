package listing_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/petmarket-trust/internal/domain/entity"
	"github.com/ignatzorin/petmarket-trust/internal/domain/repository"
	"github.com/ignatzorin/petmarket-trust/internal/pkg/apperror"
	"github.com/ignatzorin/petmarket-trust/internal/pkg/pagination"
	"github.com/ignatzorin/petmarket-trust/internal/usecase/listing"
)

type stubVerificationRepo struct {
	mu      sync.Mutex
	items   []*entity.Verification
	total   int
	filters []repository.VerificationFilter
	block   bool
}

func (s *stubVerificationRepo) Create(ctx context.Context, v *entity.Verification) error { return nil }
func (s *stubVerificationRepo) FindBySubjectID(ctx context.Context, id uuid.UUID) (*entity.Verification, error) {
	return nil, apperror.ErrVerificationNotFound
}
func (s *stubVerificationRepo) AtomicUpdate(ctx context.Context, id uuid.UUID, v int, m repository.VerificationMutator) (*entity.Verification, error) {
	return nil, nil
}
func (s *stubVerificationRepo) BackfillPending(ctx context.Context) (int64, error) { return 0, nil }

func (s *stubVerificationRepo) List(ctx context.Context, f repository.VerificationFilter) ([]*entity.Verification, error) {
	s.mu.Lock()
	s.filters = append(s.filters, f)
	s.mu.Unlock()
	if s.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return s.items, nil
}

func (s *stubVerificationRepo) Count(ctx context.Context, f repository.VerificationFilter) (int, error) {
	return s.total, nil
}

type stubReportRepo struct {
	mu         sync.Mutex
	items      []*entity.Report
	total      int
	stats      repository.ReportStatistics
	filters    []repository.ReportFilter
	statsCalls int
}

func (s *stubReportRepo) Create(ctx context.Context, r *entity.Report) error { return nil }
func (s *stubReportRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Report, error) {
	return nil, apperror.ErrReportNotFound
}
func (s *stubReportRepo) AtomicUpdate(ctx context.Context, id uuid.UUID, v int, m repository.ReportMutator) (*entity.Report, error) {
	return nil, nil
}

func (s *stubReportRepo) List(ctx context.Context, f repository.ReportFilter) ([]*entity.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filters = append(s.filters, f)
	return s.items, nil
}

func (s *stubReportRepo) Count(ctx context.Context, f repository.ReportFilter) (int, error) {
	return s.total, nil
}

func (s *stubReportRepo) Statistics(ctx context.Context, f repository.ReportFilter) (repository.ReportStatistics, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statsCalls++
	return s.stats, nil
}

func newService(v *stubVerificationRepo, r *stubReportRepo) *listing.Service {
	return listing.NewService(v, r, listing.Config{
		Pagination:   pagination.Config{DefaultPageSize: 20, MaxPageSize: 100},
		QueryTimeout: 50 * time.Millisecond,
	})
}

func TestListVerifications_DefaultsToOpenQueue(t *testing.T) {
	repo := &stubVerificationRepo{items: []*entity.Verification{{ID: uuid.New()}}, total: 41}
	svc := newService(repo, &stubReportRepo{})

	page, err := svc.ListVerifications(context.Background(), listing.VerificationQuery{
		Page: pagination.Request{Page: 2},
	})
	require.NoError(t, err)

	assert.Equal(t, 41, page.Total)
	assert.Equal(t, 20, page.Limit)
	assert.True(t, page.HasNextPage)
	assert.True(t, page.HasPrevPage)

	require.Len(t, repo.filters, 1)
	f := repo.filters[0]
	assert.Equal(t, listing.OpenVerificationStatuses, f.Statuses)
	assert.Equal(t, 20, f.Offset)
	assert.Equal(t, 20, f.Limit)
}

// Сценарий: размер страницы выше потолка.
func TestListVerifications_RejectsPageSizeAboveCeiling(t *testing.T) {
	repo := &stubVerificationRepo{}
	svc := newService(repo, &stubReportRepo{})

	_, err := svc.ListVerifications(context.Background(), listing.VerificationQuery{
		Page: pagination.Request{Page: 1, Limit: 1000},
	})
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
	assert.Contains(t, err.Error(), "100")
	assert.Empty(t, repo.filters)
}

// Сценарий: dateFrom позже dateTo.
func TestListVerifications_RejectsInvertedDateRange(t *testing.T) {
	svc := newService(&stubVerificationRepo{}, &stubReportRepo{})
	from := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, -1)

	_, err := svc.ListVerifications(context.Background(), listing.VerificationQuery{
		DateFrom: &from,
		DateTo:   &to,
		Page:     pagination.Request{Page: 1},
	})
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
}

func TestListVerifications_InvalidInput(t *testing.T) {
	svc := newService(&stubVerificationRepo{}, &stubReportRepo{})

	cases := map[string]listing.VerificationQuery{
		"negative page":  {Page: pagination.Request{Page: -1}},
		"unknown status": {Statuses: []string{"pending,archived"}, Page: pagination.Request{Page: 1}},
		"bad subject":    {SubjectID: "nope", Page: pagination.Request{Page: 1}},
	}
	for name, q := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.ListVerifications(context.Background(), q)
			require.Error(t, err)
			assert.True(t, apperror.IsValidation(err))
		})
	}
}

func TestListVerifications_CommaSeparatedStatuses(t *testing.T) {
	repo := &stubVerificationRepo{}
	svc := newService(repo, &stubReportRepo{})

	_, err := svc.ListVerifications(context.Background(), listing.VerificationQuery{
		Statuses: []string{"approved, rejected"},
		Search:   "  kennel  ",
		Page:     pagination.Request{Page: 1, Limit: 5},
	})
	require.NoError(t, err)
	require.Len(t, repo.filters, 1)
	assert.Equal(t, []string{"approved", "rejected"}, repo.filters[0].Statuses)
	assert.Equal(t, "kennel", repo.filters[0].Search)
}

func TestListVerifications_Timeout(t *testing.T) {
	repo := &stubVerificationRepo{block: true}
	svc := newService(repo, &stubReportRepo{})

	_, err := svc.ListVerifications(context.Background(), listing.VerificationQuery{Page: pagination.Request{Page: 1}})
	require.Error(t, err)
	assert.Equal(t, apperror.ErrCodeTimeout, apperror.CodeOf(err))
}

func TestListVerifications_ClientCanceled(t *testing.T) {
	repo := &stubVerificationRepo{block: true}
	svc := listing.NewService(repo, &stubReportRepo{}, listing.Config{
		Pagination:   pagination.Config{DefaultPageSize: 20, MaxPageSize: 100},
		QueryTimeout: time.Minute,
	})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err := svc.ListVerifications(ctx, listing.VerificationQuery{Page: pagination.Request{Page: 1}})
	require.Error(t, err)
	assert.Equal(t, apperror.ErrCodeCanceled, apperror.CodeOf(err))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestListReports_WithStatistics(t *testing.T) {
	reportedUser := uuid.New()
	repo := &stubReportRepo{
		items: []*entity.Report{{ID: uuid.New()}},
		total: 1,
		stats: repository.ReportStatistics{TotalReports: 7, PendingReports: 3, ResolvedReports: 2},
	}
	svc := newService(&stubVerificationRepo{}, repo)

	page, err := svc.ListReports(context.Background(), listing.ReportQuery{
		Statuses:       []string{"pending"},
		Reason:         "fraud",
		ReportedUserID: reportedUser.String(),
		Page:           pagination.Request{Page: 1},
	})
	require.NoError(t, err)

	assert.Equal(t, 7, page.Statistics.TotalReports)
	assert.Len(t, page.Items, 1)
	assert.False(t, page.HasNextPage)
	assert.False(t, page.HasPrevPage)

	require.Len(t, repo.filters, 1)
	require.NotNil(t, repo.filters[0].ReportedUserID)
	assert.Equal(t, reportedUser, *repo.filters[0].ReportedUserID)
	assert.Equal(t, "fraud", repo.filters[0].Reason)
}

func TestListReports_DefaultsToOpenStatuses(t *testing.T) {
	repo := &stubReportRepo{stats: repository.ReportStatistics{TotalReports: 9, ResolvedReports: 4}}
	svc := newService(&stubVerificationRepo{}, repo)

	page, err := svc.ListReports(context.Background(), listing.ReportQuery{Page: pagination.Request{Page: 1}})
	require.NoError(t, err)

	require.Len(t, repo.filters, 1)
	assert.Equal(t, listing.OpenReportStatuses, repo.filters[0].Statuses)
	assert.Equal(t, []string{"pending", "investigating"}, repo.filters[0].Statuses)
	assert.Equal(t, 1, repo.statsCalls)
	assert.Equal(t, 4, page.Statistics.ResolvedReports)
}

func TestListReports_InvalidInput(t *testing.T) {
	svc := newService(&stubVerificationRepo{}, &stubReportRepo{})
	from := time.Now()
	to := from.Add(-time.Hour)

	cases := map[string]listing.ReportQuery{
		"reason":     {Reason: "spam", Page: pagination.Request{Page: 1}},
		"status":     {Statuses: []string{"closed"}, Page: pagination.Request{Page: 1}},
		"date range": {DateFrom: &from, DateTo: &to, Page: pagination.Request{Page: 1}},
		"page size":  {Page: pagination.Request{Page: 1, Limit: 101}},
		"user id":    {ReportedUserID: "x", Page: pagination.Request{Page: 1}},
	}
	for name, q := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.ListReports(context.Background(), q)
			require.Error(t, err)
			assert.True(t, apperror.IsValidation(err))
		})
	}
}

func TestListMyReports_ScopedToReporter(t *testing.T) {
	repo := &stubReportRepo{total: 0}
	svc := newService(&stubVerificationRepo{}, repo)
	reporter := uuid.New()

	page, err := svc.ListMyReports(context.Background(), reporter, pagination.Request{Page: 1})
	require.NoError(t, err)
	assert.NotNil(t, page.Items)
	assert.Equal(t, 0, repo.statsCalls)

	require.Len(t, repo.filters, 1)
	require.NotNil(t, repo.filters[0].ReporterID)
	assert.Equal(t, reporter, *repo.filters[0].ReporterID)

	_, err = svc.ListMyReports(context.Background(), uuid.Nil, pagination.Request{Page: 1})
	assert.Equal(t, apperror.ErrCodeUnauthorized, apperror.CodeOf(err))
}

func TestGetDetails_InvalidID(t *testing.T) {
	svc := listing.NewService(&stubVerificationRepo{}, &stubReportRepo{}, listing.Config{})

	_, err := svc.GetVerification(context.Background(), "not-a-uuid")
	assert.Equal(t, apperror.ErrCodeValidation, apperror.CodeOf(err))

	_, err = svc.GetReport(context.Background(), uuid.Nil.String())
	assert.Equal(t, apperror.ErrCodeValidation, apperror.CodeOf(err))

	_, err = svc.GetVerification(context.Background(), uuid.NewString())
	assert.True(t, apperror.IsNotFound(err))

	_, err = svc.GetReport(context.Background(), uuid.NewString())
	assert.True(t, apperror.IsNotFound(err))
}
