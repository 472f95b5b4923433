package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/petmarket-trust/internal/domain/repository"
	"github.com/ignatzorin/petmarket-trust/internal/pkg/apperror"
)

// backfillRepo - репозиторий, в котором у заводчиков может не быть заявки.
type backfillRepo struct {
	repository.VerificationRepository
	breeders []uuid.UUID
	records  map[uuid.UUID]bool
	err      error
}

func (r *backfillRepo) BackfillPending(ctx context.Context) (int64, error) {
	if r.err != nil {
		return 0, r.err
	}
	var created int64
	for _, id := range r.breeders {
		if !r.records[id] {
			r.records[id] = true
			created++
		}
	}
	return created, nil
}

func TestBootstrapService_Idempotent(t *testing.T) {
	existing := uuid.New()
	repo := &backfillRepo{
		breeders: []uuid.UUID{existing, uuid.New(), uuid.New()},
		records:  map[uuid.UUID]bool{existing: true},
	}
	svc := NewBootstrapService(repo)

	created, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 2, created)

	created, err = svc.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, created)
}

func TestBootstrapService_Error(t *testing.T) {
	svc := NewBootstrapService(&backfillRepo{err: errors.New("relation does not exist")})

	_, err := svc.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bootstrap")
}

func TestSentryReporter_NoClient(t *testing.T) {
	assert.NotPanics(t, func() {
		SentryReporter{}.Report(&apperror.DownstreamSyncError{Effect: "account_status", Cause: errors.New("x")})
	})
}
