package moderation

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/petmarket-trust/internal/domain/entity"
	"github.com/ignatzorin/petmarket-trust/internal/domain/repository"
	"github.com/ignatzorin/petmarket-trust/internal/domain/transition"
	"github.com/ignatzorin/petmarket-trust/internal/domain/valueobject"
	"github.com/ignatzorin/petmarket-trust/internal/logger"
	"github.com/ignatzorin/petmarket-trust/internal/pkg/apperror"
)

const defaultSyncTimeout = 5 * time.Second

// Command - запрос администратора на изменение статуса сущности.
type Command struct {
	Kind            valueobject.EntityKind
	EntityID        string
	RequestedStatus string
	Actor           Principal
	Message         string
	Verification    transition.VerificationPayload
	Report          transition.ReportPayload
}

// Result - снимок сущности после зафиксированного перехода.
type Result struct {
	Verification *entity.Verification
	Report       *entity.Report
	Plan         *transition.Plan
}

// Engine проводит переход целиком: проверка, атомарное обновление, побочные эффекты.
type Engine struct {
	verifications repository.VerificationRepository
	reports       repository.ReportRepository
	accounts      AccountStatusMutator
	notifier      NotificationDispatcher
	failures      SyncFailureRecorder
	deadlines     DeadlinePolicy
	syncTimeout   time.Duration
	now           func() time.Time
}

func NewEngine(
	verifications repository.VerificationRepository,
	reports repository.ReportRepository,
	accounts AccountStatusMutator,
	notifier NotificationDispatcher,
	failures SyncFailureRecorder,
	deadlines DeadlinePolicy,
) *Engine {
	if deadlines == nil {
		deadlines = FixedWindowDeadline{}
	}
	return &Engine{
		verifications: verifications,
		reports:       reports,
		accounts:      accounts,
		notifier:      notifier,
		failures:      failures,
		deadlines:     deadlines,
		syncTimeout:   defaultSyncTimeout,
		now:           time.Now,
	}
}

// SetClock подменяет источник времени (тесты).
func (e *Engine) SetClock(now func() time.Time) {
	e.now = now
}

// ApplyTransition выполняет переход. Ошибку возвращают только загрузка, проверка
// и атомарное обновление; сбои побочных эффектов после коммита лишь журналируются.
func (e *Engine) ApplyTransition(ctx context.Context, cmd Command) (*Result, error) {
	id, err := ParseID(cmd.EntityID)
	if err != nil {
		return nil, err
	}
	if err := requireAdmin(cmd.Actor); err != nil {
		return nil, err
	}

	switch cmd.Kind {
	case valueobject.EntityKindVerification:
		return e.applyVerification(ctx, id, cmd)
	case valueobject.EntityKindReport:
		return e.applyReport(ctx, id, cmd)
	default:
		return nil, apperror.Validation("неизвестный вид сущности: %q", cmd.Kind)
	}
}

func (e *Engine) applyVerification(ctx context.Context, subjectID uuid.UUID, cmd Command) (*Result, error) {
	current, err := e.verifications.FindBySubjectID(ctx, subjectID)
	if err != nil {
		return nil, err
	}

	now := e.now().UTC()
	payload := cmd.Verification
	if cmd.RequestedStatus == string(valueobject.VerificationStatusAdditionalDocumentsRequired) {
		payload.ReviewDeadline = e.deadlines.ReviewDeadline(now)
	}

	plan, err := transition.Validate(transition.Request{
		Kind:         valueobject.EntityKindVerification,
		Current:      string(current.Status),
		Requested:    cmd.RequestedStatus,
		ActorRole:    cmd.Actor.Role,
		Message:      cmd.Message,
		Subject:      transition.Subject{EntityID: current.ID, SubjectID: current.SubjectID},
		Verification: payload,
		Now:          now,
	})
	if err != nil {
		return nil, err
	}

	updated, err := e.verifications.AtomicUpdate(ctx, subjectID, current.Version, func(v *entity.Verification) error {
		v.Apply(*plan.Verification, cmd.Actor.ID, plan.Message, now)
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.logCommitted(plan, subjectID, cmd.Actor.ID)
	e.runSideEffects(ctx, plan, subjectID)

	return &Result{Verification: updated, Plan: plan}, nil
}

func (e *Engine) applyReport(ctx context.Context, reportID uuid.UUID, cmd Command) (*Result, error) {
	current, err := e.reports.FindByID(ctx, reportID)
	if err != nil {
		return nil, err
	}

	now := e.now().UTC()
	plan, err := transition.Validate(transition.Request{
		Kind:      valueobject.EntityKindReport,
		Current:   string(current.Status),
		Requested: cmd.RequestedStatus,
		ActorRole: cmd.Actor.Role,
		Message:   cmd.Message,
		Subject: transition.Subject{
			EntityID:       current.ID,
			SubjectID:      current.SubjectID,
			ReporterID:     current.ReporterID,
			ReportedUserID: current.ReportedUserID,
			SubjectType:    current.SubjectType,
		},
		Report: cmd.Report,
		Now:    now,
	})
	if err != nil {
		return nil, err
	}

	updated, err := e.reports.AtomicUpdate(ctx, reportID, current.Version, func(r *entity.Report) error {
		r.Apply(*plan.Report, cmd.Actor.ID, plan.Message, now)
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.logCommitted(plan, reportID, cmd.Actor.ID)
	e.runSideEffects(ctx, plan, reportID)

	return &Result{Report: updated, Plan: plan}, nil
}

// runSideEffects выполняется после коммита и никогда не откатывает решение.
func (e *Engine) runSideEffects(ctx context.Context, plan *transition.Plan, entityID uuid.UUID) {
	// Отмена запроса клиентом не должна обрывать синхронизацию.
	ctx = context.WithoutCancel(ctx)

	if plan.AccountChange != nil && e.accounts != nil {
		syncCtx, cancel := context.WithTimeout(ctx, e.syncTimeout)
		err := e.accounts.ApplyAccountChange(syncCtx, *plan.AccountChange)
		cancel()
		if err != nil {
			e.recordFailure(ctx, &apperror.DownstreamSyncError{
				Effect:     EffectAccountStatus,
				EntityKind: string(plan.Kind),
				EntityID:   entityID.String(),
				Cause:      err,
			}, AccountSync{AccountChange: *plan.AccountChange, EntityStatus: plan.To})
		}
	}

	if e.notifier == nil {
		return
	}
	for _, n := range plan.Notifications {
		if err := e.notifier.Dispatch(ctx, n); err != nil {
			e.recordFailure(ctx, &apperror.DownstreamSyncError{
				Effect:     EffectNotification,
				EntityKind: string(plan.Kind),
				EntityID:   entityID.String(),
				Cause:      err,
			}, n)
		}
	}
}

// Виды побочных эффектов в журнале сбоев.
const (
	EffectAccountStatus = "account_status"
	EffectNotification  = "notification"
)

func (e *Engine) recordFailure(ctx context.Context, failure *apperror.DownstreamSyncError, payload any) {
	log := logger.WithEntity(failure.EntityKind, failure.EntityID).WithField("effect", failure.Effect)
	log.WithError(failure.Cause).Error("moderation: побочный эффект не выполнен, решение сохранено")

	if e.failures == nil {
		return
	}
	if err := e.failures.Record(ctx, failure, payload); err != nil {
		log.WithError(err).Error("moderation: не удалось записать сбой синхронизации")
	}
}

func (e *Engine) logCommitted(plan *transition.Plan, entityID, actorID uuid.UUID) {
	logger.WithEntity(string(plan.Kind), entityID.String()).WithFields(logrus.Fields{
		"from":     plan.From,
		"to":       plan.To,
		"actor_id": actorID,
	}).Info("moderation: переход зафиксирован")
}

func requireAdmin(actor Principal) error {
	if actor.ID == uuid.Nil {
		return apperror.ErrUnauthorized
	}
	if actor.Role != valueobject.RoleAdmin {
		return apperror.ErrAdminOnly
	}
	return nil
}

// ParseID проверяет формат идентификатора до любого обращения к хранилищу.
func ParseID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil || id == uuid.Nil {
		return uuid.Nil, apperror.ErrInvalidID
	}
	return id, nil
}
