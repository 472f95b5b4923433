package listing

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/ignatzorin/petmarket-trust/internal/domain/entity"
	"github.com/ignatzorin/petmarket-trust/internal/domain/repository"
	"github.com/ignatzorin/petmarket-trust/internal/domain/valueobject"
	"github.com/ignatzorin/petmarket-trust/internal/pkg/apperror"
	"github.com/ignatzorin/petmarket-trust/internal/pkg/pagination"
)

const (
	defaultQueryTimeout = 5 * time.Second
	maxSearchLength     = 100
)

// OpenVerificationStatuses - очередь администратора, если статус не задан явно.
var OpenVerificationStatuses = []string{
	string(valueobject.VerificationStatusPending),
	string(valueobject.VerificationStatusReviewing),
	string(valueobject.VerificationStatusAdditionalDocumentsRequired),
}

// OpenReportStatuses - необработанные жалобы, если статус не задан явно.
var OpenReportStatuses = []string{
	string(valueobject.ReportStatusPending),
	string(valueobject.ReportStatusInvestigating),
}

type Config struct {
	Pagination   pagination.Config
	QueryTimeout time.Duration
}

type VerificationQuery struct {
	Statuses  []string
	DateFrom  *time.Time
	DateTo    *time.Time
	Search    string
	SubjectID string
	Page      pagination.Request
}

type ReportQuery struct {
	Statuses       []string
	Reason         string
	DateFrom       *time.Time
	DateTo         *time.Time
	Search         string
	SubjectID      string
	ReportedUserID string
	Page           pagination.Request
}

// ReportPage - страница жалоб вместе с агрегатами по тому же фильтру.
type ReportPage struct {
	pagination.Page[*entity.Report]
	Statistics repository.ReportStatistics
}

type Service struct {
	verifications repository.VerificationRepository
	reports       repository.ReportRepository
	cfg           Config
}

func NewService(verifications repository.VerificationRepository, reports repository.ReportRepository, cfg Config) *Service {
	cfg.Pagination = cfg.Pagination.WithDefaults()
	if cfg.QueryTimeout <= 0 {
		cfg.QueryTimeout = defaultQueryTimeout
	}
	return &Service{verifications: verifications, reports: reports, cfg: cfg}
}

func (s *Service) ListVerifications(ctx context.Context, q VerificationQuery) (*pagination.Page[*entity.Verification], error) {
	page := q.Page
	if err := page.Validate(s.cfg.Pagination); err != nil {
		return nil, err
	}
	if err := validateRange(q.DateFrom, q.DateTo); err != nil {
		return nil, err
	}
	statuses, err := verificationStatuses(q.Statuses)
	if err != nil {
		return nil, err
	}
	search, err := normalizeSearch(q.Search)
	if err != nil {
		return nil, err
	}
	subjectID, err := optionalID(q.SubjectID, "subjectId")
	if err != nil {
		return nil, err
	}

	filter := repository.VerificationFilter{
		Statuses:  statuses,
		DateFrom:  q.DateFrom,
		DateTo:    q.DateTo,
		Search:    search,
		SubjectID: subjectID,
		Limit:     page.Limit,
		Offset:    page.Offset(),
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.QueryTimeout)
	defer cancel()

	var (
		items []*entity.Verification
		total int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		items, err = s.verifications.List(gctx, filter)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = s.verifications.Count(gctx, filter)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, queryError(ctx, err)
	}

	result := pagination.NewPage(items, total, page)
	return &result, nil
}

func (s *Service) ListReports(ctx context.Context, q ReportQuery) (*ReportPage, error) {
	page := q.Page
	if err := page.Validate(s.cfg.Pagination); err != nil {
		return nil, err
	}
	if err := validateRange(q.DateFrom, q.DateTo); err != nil {
		return nil, err
	}
	statuses, err := reportStatuses(q.Statuses)
	if err != nil {
		return nil, err
	}
	if q.Reason != "" {
		if _, err := valueobject.NewReportReason(q.Reason); err != nil {
			return nil, err
		}
	}
	search, err := normalizeSearch(q.Search)
	if err != nil {
		return nil, err
	}
	subjectID, err := optionalID(q.SubjectID, "subjectId")
	if err != nil {
		return nil, err
	}
	reportedUserID, err := optionalID(q.ReportedUserID, "reportedUserId")
	if err != nil {
		return nil, err
	}

	filter := repository.ReportFilter{
		Statuses:       statuses,
		Reason:         q.Reason,
		DateFrom:       q.DateFrom,
		DateTo:         q.DateTo,
		Search:         search,
		SubjectID:      subjectID,
		ReportedUserID: reportedUserID,
		Limit:          page.Limit,
		Offset:         page.Offset(),
	}
	return s.reportPage(ctx, filter, page, true)
}

// ListMyReports - жалобы, поданные самим пользователем.
func (s *Service) ListMyReports(ctx context.Context, reporterID uuid.UUID, page pagination.Request) (*pagination.Page[*entity.Report], error) {
	if reporterID == uuid.Nil {
		return nil, apperror.ErrUnauthorized
	}
	if err := page.Validate(s.cfg.Pagination); err != nil {
		return nil, err
	}
	filter := repository.ReportFilter{
		ReporterID: &reporterID,
		Limit:      page.Limit,
		Offset:     page.Offset(),
	}
	result, err := s.reportPage(ctx, filter, page, false)
	if err != nil {
		return nil, err
	}
	return &result.Page, nil
}

// GetVerification - карточка заявки с историей переходов.
func (s *Service) GetVerification(ctx context.Context, rawSubjectID string) (*entity.Verification, error) {
	id, err := requiredID(rawSubjectID)
	if err != nil {
		return nil, err
	}
	return s.verifications.FindBySubjectID(ctx, id)
}

func (s *Service) GetReport(ctx context.Context, rawReportID string) (*entity.Report, error) {
	id, err := requiredID(rawReportID)
	if err != nil {
		return nil, err
	}
	return s.reports.FindByID(ctx, id)
}

func (s *Service) reportPage(ctx context.Context, filter repository.ReportFilter, page pagination.Request, withStats bool) (*ReportPage, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.QueryTimeout)
	defer cancel()

	var (
		items []*entity.Report
		total int
		stats repository.ReportStatistics
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		items, err = s.reports.List(gctx, filter)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = s.reports.Count(gctx, filter)
		return err
	})
	if withStats {
		g.Go(func() error {
			var err error
			stats, err = s.reports.Statistics(gctx, filter)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, queryError(ctx, err)
	}

	return &ReportPage{Page: pagination.NewPage(items, total, page), Statistics: stats}, nil
}

// queryError превращает истёкший серверный таймаут в TIMEOUT, а отмену клиентом в REQUEST_CANCELED.
func queryError(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return apperror.Wrap(err, apperror.ErrCodeTimeout, "превышено время выполнения запроса списка")
	}
	if apperror.CodeOf(err) == "" && (errors.Is(err, context.Canceled) || errors.Is(ctx.Err(), context.Canceled)) {
		return apperror.Canceled(err)
	}
	return err
}

func validateRange(from, to *time.Time) error {
	if from != nil && to != nil && to.Before(*from) {
		return apperror.Validation("dateTo не может быть раньше dateFrom")
	}
	return nil
}

func verificationStatuses(raw []string) ([]string, error) {
	statuses := splitList(raw)
	if len(statuses) == 0 {
		return append([]string(nil), OpenVerificationStatuses...), nil
	}
	for _, st := range statuses {
		if _, err := valueobject.NewVerificationStatus(st); err != nil {
			return nil, err
		}
	}
	return statuses, nil
}

func reportStatuses(raw []string) ([]string, error) {
	statuses := splitList(raw)
	if len(statuses) == 0 {
		return append([]string(nil), OpenReportStatuses...), nil
	}
	for _, st := range statuses {
		if _, err := valueobject.NewReportStatus(st); err != nil {
			return nil, err
		}
	}
	return statuses, nil
}

// splitList принимает как повторяющиеся параметры, так и список через запятую.
func splitList(raw []string) []string {
	var out []string
	for _, item := range raw {
		for _, part := range strings.Split(item, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}

func normalizeSearch(search string) (string, error) {
	search = strings.TrimSpace(search)
	if len([]rune(search)) > maxSearchLength {
		return "", apperror.Validation("строка поиска не должна превышать %d символов", maxSearchLength)
	}
	return search, nil
}

func optionalID(raw, field string) (*uuid.UUID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, apperror.Validation("некорректный %s", field)
	}
	return &id, nil
}

func requiredID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil || id == uuid.Nil {
		return uuid.Nil, apperror.ErrInvalidID
	}
	return id, nil
}
