package moderation

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/petmarket-trust/internal/domain/transition"
	"github.com/ignatzorin/petmarket-trust/internal/domain/valueobject"
	"github.com/ignatzorin/petmarket-trust/internal/pkg/apperror"
)

// Principal - аутентифицированный пользователь, определённый middleware по токену.
type Principal struct {
	ID   uuid.UUID
	Role valueobject.Role
}

// AccountStatusMutator применяет изменения статуса аккаунта (внешний коллаборатор).
type AccountStatusMutator interface {
	ApplyAccountChange(ctx context.Context, change transition.AccountChange) error
}

// NotificationDispatcher ставит уведомление в очередь и не ждёт доставки.
type NotificationDispatcher interface {
	Dispatch(ctx context.Context, intent transition.NotificationIntent) error
}

// SyncFailureRecorder сохраняет сбои побочных эффектов для повторной обработки.
type SyncFailureRecorder interface {
	Record(ctx context.Context, failure *apperror.DownstreamSyncError, payload any) error
}

// DeadlinePolicy определяет срок досдачи документов. Автоматическое
// истечение срока выполняется внешним заданием.
type DeadlinePolicy interface {
	ReviewDeadline(now time.Time) *time.Time
}

// FixedWindowDeadline - срок фиксированной длины от момента запроса документов.
type FixedWindowDeadline struct {
	Window time.Duration
}

func (p FixedWindowDeadline) ReviewDeadline(now time.Time) *time.Time {
	if p.Window <= 0 {
		return nil
	}
	deadline := now.Add(p.Window)
	return &deadline
}
