package submission

import (
	"context"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/h2non/filetype"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/petmarket-trust/internal/domain/entity"
	"github.com/ignatzorin/petmarket-trust/internal/domain/repository"
	"github.com/ignatzorin/petmarket-trust/internal/domain/valueobject"
	"github.com/ignatzorin/petmarket-trust/internal/logger"
	"github.com/ignatzorin/petmarket-trust/internal/pkg/apperror"
	"github.com/ignatzorin/petmarket-trust/internal/usecase/moderation"
)

const maxDocumentsPerSubmission = 10

var documentTypes = map[string]bool{
	"business_license":    true,
	"identity":            true,
	"kennel_registration": true,
	"health_certificate":  true,
	"other":               true,
}

var documentExtensions = map[string]bool{
	"pdf":  true,
	"jpg":  true,
	"png":  true,
	"webp": true,
	"heif": true,
}

type DocumentInput struct {
	Type string
	URL  string
}

type ReportInput struct {
	SubjectType    string
	SubjectID      string
	ReportedUserID string
	Reason         string
	Description    string
}

// Service - действия самих пользователей: заявка заводчика и подача жалоб.
type Service struct {
	verifications repository.VerificationRepository
	reports       repository.ReportRepository
	now           func() time.Time
}

func NewService(verifications repository.VerificationRepository, reports repository.ReportRepository) *Service {
	return &Service{verifications: verifications, reports: reports, now: time.Now}
}

func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// OpenVerification создаёт заявку в статусе pending или возвращает существующую.
func (s *Service) OpenVerification(ctx context.Context, actor moderation.Principal, plan, level string) (*entity.Verification, bool, error) {
	if err := requireBreeder(actor); err != nil {
		return nil, false, err
	}

	existing, err := s.verifications.FindBySubjectID(ctx, actor.ID)
	if err == nil {
		return existing, false, nil
	}
	if !apperror.IsNotFound(err) {
		return nil, false, err
	}

	breederPlan, err := valueobject.NewBreederPlan(plan)
	if err != nil {
		return nil, false, err
	}
	breederLevel, err := valueobject.NewBreederLevel(level)
	if err != nil {
		return nil, false, err
	}

	v, err := entity.NewVerification(actor.ID, breederPlan, breederLevel, s.now().UTC())
	if err != nil {
		return nil, false, err
	}
	if err := s.verifications.Create(ctx, v); err != nil {
		// Параллельный запрос успел создать заявку первым.
		if apperror.CodeOf(err) == apperror.ErrCodeConflict {
			existing, findErr := s.verifications.FindBySubjectID(ctx, actor.ID)
			if findErr != nil {
				return nil, false, findErr
			}
			return existing, false, nil
		}
		return nil, false, err
	}

	logger.WithEntity(string(valueobject.EntityKindVerification), actor.ID.String()).
		WithField("plan", breederPlan).
		Info("submission: заявка на верификацию создана")
	return v, true, nil
}

// SubmitDocuments дописывает документы к заявке; статус не меняется.
func (s *Service) SubmitDocuments(ctx context.Context, actor moderation.Principal, inputs []DocumentInput) (*entity.Verification, error) {
	if err := requireBreeder(actor); err != nil {
		return nil, err
	}
	docs, err := parseDocuments(inputs)
	if err != nil {
		return nil, err
	}

	current, err := s.verifications.FindBySubjectID(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	// Проверяем на копии: обработанная заявка документы не принимает.
	now := s.now().UTC()
	if err := current.Clone().AddDocuments(cloneDocs(docs), now); err != nil {
		return nil, err
	}

	updated, err := s.verifications.AtomicUpdate(ctx, actor.ID, current.Version, func(v *entity.Verification) error {
		return v.AddDocuments(cloneDocs(docs), now)
	})
	if err != nil {
		return nil, err
	}

	logger.WithEntity(string(valueobject.EntityKindVerification), actor.ID.String()).WithFields(logrus.Fields{
		"documents": len(docs),
		"total":     len(updated.Documents),
	}).Info("submission: документы добавлены")
	return updated, nil
}

func (s *Service) GetVerificationStatus(ctx context.Context, actor moderation.Principal) (*entity.Verification, error) {
	if err := requireBreeder(actor); err != nil {
		return nil, err
	}
	return s.verifications.FindBySubjectID(ctx, actor.ID)
}

// CreateReport подаёт жалобу от имени любого аутентифицированного пользователя.
func (s *Service) CreateReport(ctx context.Context, actor moderation.Principal, in ReportInput) (*entity.Report, error) {
	if actor.ID == uuid.Nil {
		return nil, apperror.ErrUnauthorized
	}
	subjectType, err := valueobject.NewSubjectType(in.SubjectType)
	if err != nil {
		return nil, err
	}
	reason, err := valueobject.NewReportReason(in.Reason)
	if err != nil {
		return nil, err
	}
	subjectID, err := moderation.ParseID(in.SubjectID)
	if err != nil {
		return nil, err
	}
	var reportedUserID uuid.UUID
	if strings.TrimSpace(in.ReportedUserID) != "" {
		if reportedUserID, err = moderation.ParseID(in.ReportedUserID); err != nil {
			return nil, err
		}
	}

	report, err := entity.NewReport(entity.NewReportInput{
		ReporterID:     actor.ID,
		SubjectType:    subjectType,
		SubjectID:      subjectID,
		ReportedUserID: reportedUserID,
		Reason:         reason,
		Description:    in.Description,
	}, s.now().UTC())
	if err != nil {
		return nil, err
	}
	if err := s.reports.Create(ctx, report); err != nil {
		return nil, err
	}

	logger.WithEntity(string(valueobject.EntityKindReport), report.ID.String()).WithFields(logrus.Fields{
		"reason":   report.Reason,
		"priority": report.Priority,
		"subject":  report.SubjectType,
	}).Info("submission: жалоба зарегистрирована")
	return report, nil
}

func requireBreeder(actor moderation.Principal) error {
	if actor.ID == uuid.Nil {
		return apperror.ErrUnauthorized
	}
	if actor.Role != valueobject.RoleBreeder {
		return apperror.ErrBreederOnly
	}
	return nil
}

func parseDocuments(inputs []DocumentInput) ([]entity.Document, error) {
	if len(inputs) == 0 {
		return nil, apperror.Validation("необходимо приложить хотя бы один документ")
	}
	if len(inputs) > maxDocumentsPerSubmission {
		return nil, apperror.Validation("за один раз можно приложить не более %d документов", maxDocumentsPerSubmission)
	}

	docs := make([]entity.Document, 0, len(inputs))
	for i, in := range inputs {
		docType := strings.TrimSpace(in.Type)
		if !documentTypes[docType] {
			return nil, apperror.Validation("документ %d: неизвестный тип %q", i+1, in.Type)
		}
		mime, err := documentMIME(in.URL)
		if err != nil {
			return nil, apperror.Validation("документ %d: %s", i+1, err.Message)
		}
		docs = append(docs, entity.Document{
			Type:     docType,
			URL:      strings.TrimSpace(in.URL),
			MimeType: mime,
		})
	}
	return docs, nil
}

// documentMIME проверяет ссылку и определяет MIME-тип по расширению файла.
func documentMIME(raw string) (string, *apperror.AppError) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return "", apperror.Validation("ссылка должна быть абсолютным http(s) адресом")
	}

	ext := strings.ToLower(strings.TrimPrefix(path.Ext(u.Path), "."))
	if ext == "jpeg" {
		ext = "jpg"
	}
	if !documentExtensions[ext] || !filetype.IsSupported(ext) {
		return "", apperror.Validation("недопустимый формат файла %q", ext)
	}
	return filetype.GetType(ext).MIME.Value, nil
}

func cloneDocs(docs []entity.Document) []entity.Document {
	return append([]entity.Document(nil), docs...)
}
