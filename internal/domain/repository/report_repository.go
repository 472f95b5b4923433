package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/ignatzorin/petmarket-trust/internal/domain/entity"
)

type ReportMutator func(r *entity.Report) error

type ReportRepository interface {
	Create(ctx context.Context, r *entity.Report) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Report, error)
	AtomicUpdate(ctx context.Context, id uuid.UUID, expectedVersion int, mutate ReportMutator) (*entity.Report, error)
	List(ctx context.Context, filter ReportFilter) ([]*entity.Report, error)
	Count(ctx context.Context, filter ReportFilter) (int, error)
	Statistics(ctx context.Context, filter ReportFilter) (ReportStatistics, error)
}
