package moderation

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/petmarket-trust/internal/domain/entity"
	"github.com/ignatzorin/petmarket-trust/internal/domain/valueobject"
	"github.com/ignatzorin/petmarket-trust/internal/logger"
)

type EscalateCommand struct {
	ReportID string
	Actor    Principal
	Level    int
	Reason   string
	Urgency  string
}

// Escalate обновляет только метаданные эскалации; допускается и для закрытых жалоб.
func (e *Engine) Escalate(ctx context.Context, cmd EscalateCommand) (*entity.Report, error) {
	id, err := ParseID(cmd.ReportID)
	if err != nil {
		return nil, err
	}
	if err := requireAdmin(cmd.Actor); err != nil {
		return nil, err
	}
	urgency, err := valueobject.NewPriority(cmd.Urgency)
	if err != nil {
		return nil, err
	}

	current, err := e.reports.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// Проверяем до записи, чтобы ошибка валидации не тратила обновление.
	now := e.now().UTC()
	if err := current.Clone().Escalate(cmd.Level, cmd.Reason, urgency, cmd.Actor.ID, now); err != nil {
		return nil, err
	}

	updated, err := e.reports.AtomicUpdate(ctx, id, current.Version, func(r *entity.Report) error {
		return r.Escalate(cmd.Level, cmd.Reason, urgency, cmd.Actor.ID, now)
	})
	if err != nil {
		return nil, err
	}

	logger.WithEntity(string(valueobject.EntityKindReport), id.String()).WithFields(logrus.Fields{
		"escalation_level": updated.EscalationLevel,
		"priority":         updated.Priority,
		"actor_id":         cmd.Actor.ID,
	}).Info("moderation: жалоба эскалирована")

	return updated, nil
}
