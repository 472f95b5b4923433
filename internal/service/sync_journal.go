package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/google/uuid"

	"github.com/ignatzorin/petmarket-trust/internal/domain/valueobject"
	"github.com/ignatzorin/petmarket-trust/internal/logger"
	"github.com/ignatzorin/petmarket-trust/internal/models"
	"github.com/ignatzorin/petmarket-trust/internal/pkg/apperror"
	"github.com/ignatzorin/petmarket-trust/internal/usecase/moderation"
)

// SyncFailureRepository - хранилище журнала сбоев.
type SyncFailureRepository interface {
	Create(ctx context.Context, failure *models.SyncFailure) error
	ListPending(ctx context.Context, effect string, limit int) ([]models.SyncFailure, error)
	MarkResolved(ctx context.Context, id uuid.UUID) error
	RecordAttempt(ctx context.Context, id uuid.UUID, lastErr string) error
}

// EntityStatusLookup возвращает текущий статус сущности модерации.
type EntityStatusLookup interface {
	CurrentStatus(ctx context.Context, kind valueobject.EntityKind, id uuid.UUID) (string, error)
}

// ErrorReporter отправляет сбой во внешнюю систему мониторинга.
type ErrorReporter interface {
	Report(failure *apperror.DownstreamSyncError)
}

// SentryReporter отправляет сбои в Sentry; без sentry.Init вызовы ничего не делают.
type SentryReporter struct{}

func (SentryReporter) Report(failure *apperror.DownstreamSyncError) {
	sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("effect", failure.Effect)
		scope.SetTag("entity_kind", failure.EntityKind)
		scope.SetTag("entity_id", failure.EntityID)
		sentry.CaptureException(failure)
	})
}

// RetryReport - итог повторной синхронизации.
type RetryReport struct {
	Resolved   int `json:"resolved"`
	Superseded int `json:"superseded"`
	Failed     int `json:"failed"`
}

// SyncJournal записывает сбои побочных эффектов и повторяет их вне запроса.
type SyncJournal struct {
	repo     SyncFailureRepository
	reporter ErrorReporter
	accounts moderation.AccountStatusMutator
	statuses EntityStatusLookup
	timeout  time.Duration
}

func NewSyncJournal(
	repo SyncFailureRepository,
	reporter ErrorReporter,
	accounts moderation.AccountStatusMutator,
	statuses EntityStatusLookup,
) *SyncJournal {
	return &SyncJournal{
		repo:     repo,
		reporter: reporter,
		accounts: accounts,
		statuses: statuses,
		timeout:  5 * time.Second,
	}
}

// Record сохраняет сбой вместе с исходным изменением для повтора.
func (j *SyncJournal) Record(ctx context.Context, failure *apperror.DownstreamSyncError, payload any) error {
	if j.reporter != nil {
		j.reporter.Report(failure)
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("sync journal: marshal payload %w", err)
	}
	if string(raw) == "null" {
		raw = []byte("{}")
	}

	entry := &models.SyncFailure{
		Effect:     failure.Effect,
		EntityKind: failure.EntityKind,
		EntityID:   failure.EntityID,
		Payload:    raw,
		Error:      errorText(failure.Cause),
	}
	if err := j.repo.Create(ctx, entry); err != nil {
		return err
	}

	logger.WithEntity(failure.EntityKind, failure.EntityID).
		WithField("effect", failure.Effect).
		WithField("failure_id", entry.ID).
		Info("sync journal: сбой записан")
	return nil
}

// RetryPending повторно применяет незавершённые изменения статуса аккаунтов.
// Запись, чья сущность уже ушла из породившего её статуса, закрывается без повтора.
func (j *SyncJournal) RetryPending(ctx context.Context, limit int) (RetryReport, error) {
	var report RetryReport

	pending, err := j.repo.ListPending(ctx, moderation.EffectAccountStatus, limit)
	if err != nil {
		return report, err
	}

	for _, failure := range pending {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		log := logger.WithEntity(failure.EntityKind, failure.EntityID).WithField("failure_id", failure.ID)
		superseded, applyErr := j.replay(ctx, failure)
		if applyErr != nil {
			report.Failed++
			log.WithError(applyErr).Warn("sync journal: повтор не удался")
			if err := j.repo.RecordAttempt(ctx, failure.ID, applyErr.Error()); err != nil {
				return report, err
			}
			continue
		}

		if err := j.repo.MarkResolved(ctx, failure.ID); err != nil {
			return report, err
		}
		if superseded {
			report.Superseded++
			log.Info("sync journal: изменение устарело, сущность сменила статус")
			continue
		}
		report.Resolved++
		log.Info("sync journal: изменение аккаунта применено повторно")
	}

	return report, nil
}

// replay возвращает true, если изменение устарело и применять его нельзя.
func (j *SyncJournal) replay(ctx context.Context, failure models.SyncFailure) (bool, error) {
	var change moderation.AccountSync
	if err := json.Unmarshal(failure.Payload, &change); err != nil {
		return false, fmt.Errorf("повреждённый payload: %w", err)
	}
	if change.UserID == uuid.Nil {
		return false, fmt.Errorf("в payload нет идентификатора пользователя")
	}
	if change.EntityStatus == "" {
		return false, fmt.Errorf("в payload нет статуса сущности")
	}

	entityID, err := uuid.Parse(failure.EntityID)
	if err != nil {
		return false, fmt.Errorf("некорректный идентификатор сущности %q", failure.EntityID)
	}

	applyCtx, cancel := context.WithTimeout(ctx, j.timeout)
	defer cancel()

	current, err := j.statuses.CurrentStatus(applyCtx, valueobject.EntityKind(failure.EntityKind), entityID)
	if err != nil {
		return false, fmt.Errorf("статус сущности: %w", err)
	}
	if current != change.EntityStatus {
		return true, nil
	}
	return false, j.accounts.ApplyAccountChange(applyCtx, change.AccountChange)
}

func errorText(err error) string {
	if err == nil {
		return "unknown error"
	}
	return err.Error()
}
