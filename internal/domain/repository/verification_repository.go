package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/ignatzorin/petmarket-trust/internal/domain/entity"
)

// VerificationMutator изменяет копию заявки внутри атомарного обновления.
type VerificationMutator func(v *entity.Verification) error

type VerificationRepository interface {
	Create(ctx context.Context, v *entity.Verification) error
	FindBySubjectID(ctx context.Context, subjectID uuid.UUID) (*entity.Verification, error)
	// AtomicUpdate применяет mutate и сохраняет результат, только если версия записи
	// всё ещё равна expectedVersion; иначе возвращает apperror.ErrVersionConflict.
	AtomicUpdate(ctx context.Context, subjectID uuid.UUID, expectedVersion int, mutate VerificationMutator) (*entity.Verification, error)
	List(ctx context.Context, filter VerificationFilter) ([]*entity.Verification, error)
	Count(ctx context.Context, filter VerificationFilter) (int, error)
	// BackfillPending создаёт заявки pending для заводчиков, у которых их ещё нет.
	BackfillPending(ctx context.Context) (int64, error)
}
