package service

import (
	"context"
	"fmt"

	"github.com/ignatzorin/petmarket-trust/internal/domain/repository"
	"github.com/ignatzorin/petmarket-trust/internal/logger"
)

// BootstrapService выполняет однократную идемпотентную инициализацию при старте.
type BootstrapService struct {
	verifications repository.VerificationRepository
}

func NewBootstrapService(verifications repository.VerificationRepository) *BootstrapService {
	return &BootstrapService{verifications: verifications}
}

// Run создаёт заявку pending для каждого заводчика, у которого её ещё нет.
// Повторный запуск ничего не меняет.
func (s *BootstrapService) Run(ctx context.Context) (int64, error) {
	created, err := s.verifications.BackfillPending(ctx)
	if err != nil {
		return 0, fmt.Errorf("bootstrap: backfill verifications: %w", err)
	}

	logger.Get().WithField("created", created).Info("bootstrap: заявки на верификацию проверены")
	return created, nil
}
