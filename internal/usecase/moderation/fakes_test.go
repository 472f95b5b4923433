package moderation_test

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/ignatzorin/petmarket-trust/internal/domain/entity"
	"github.com/ignatzorin/petmarket-trust/internal/domain/repository"
	"github.com/ignatzorin/petmarket-trust/internal/domain/transition"
	"github.com/ignatzorin/petmarket-trust/internal/pkg/apperror"
)

type memVerificationRepo struct {
	mu        sync.Mutex
	items     map[uuid.UUID]*entity.Verification
	findCalls int
	// readBarrier, если задан, задерживает чтение, пока все участники не прочитают запись.
	readBarrier *sync.WaitGroup
}

func newMemVerificationRepo() *memVerificationRepo {
	return &memVerificationRepo{items: make(map[uuid.UUID]*entity.Verification)}
}

func (m *memVerificationRepo) Create(ctx context.Context, v *entity.Verification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[v.SubjectID]; ok {
		return apperror.ErrVerificationExists
	}
	m.items[v.SubjectID] = v.Clone()
	return nil
}

func (m *memVerificationRepo) FindBySubjectID(ctx context.Context, subjectID uuid.UUID) (*entity.Verification, error) {
	m.mu.Lock()
	m.findCalls++
	v, ok := m.items[subjectID]
	var snapshot *entity.Verification
	if ok {
		snapshot = v.Clone()
	}
	barrier := m.readBarrier
	m.mu.Unlock()

	if barrier != nil {
		barrier.Done()
		barrier.Wait()
	}
	if !ok {
		return nil, apperror.ErrVerificationNotFound
	}
	return snapshot, nil
}

func (m *memVerificationRepo) AtomicUpdate(ctx context.Context, subjectID uuid.UUID, expectedVersion int, mutate repository.VerificationMutator) (*entity.Verification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.items[subjectID]
	if !ok {
		return nil, apperror.ErrVerificationNotFound
	}
	if cur.Version != expectedVersion {
		return nil, apperror.ErrVersionConflict
	}
	next := cur.Clone()
	if err := mutate(next); err != nil {
		return nil, err
	}
	next.Version = expectedVersion + 1
	m.items[subjectID] = next
	return next.Clone(), nil
}

func (m *memVerificationRepo) List(ctx context.Context, filter repository.VerificationFilter) ([]*entity.Verification, error) {
	return nil, nil
}

func (m *memVerificationRepo) Count(ctx context.Context, filter repository.VerificationFilter) (int, error) {
	return len(m.items), nil
}

func (m *memVerificationRepo) BackfillPending(ctx context.Context) (int64, error) {
	return 0, nil
}

func (m *memVerificationRepo) get(subjectID uuid.UUID) *entity.Verification {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.items[subjectID].Clone()
}

type memReportRepo struct {
	mu    sync.Mutex
	items map[uuid.UUID]*entity.Report
}

func newMemReportRepo() *memReportRepo {
	return &memReportRepo{items: make(map[uuid.UUID]*entity.Report)}
}

func (m *memReportRepo) Create(ctx context.Context, r *entity.Report) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[r.ID] = r.Clone()
	return nil
}

func (m *memReportRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Report, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.items[id]
	if !ok {
		return nil, apperror.ErrReportNotFound
	}
	return r.Clone(), nil
}

func (m *memReportRepo) AtomicUpdate(ctx context.Context, id uuid.UUID, expectedVersion int, mutate repository.ReportMutator) (*entity.Report, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.items[id]
	if !ok {
		return nil, apperror.ErrReportNotFound
	}
	if cur.Version != expectedVersion {
		return nil, apperror.ErrVersionConflict
	}
	next := cur.Clone()
	if err := mutate(next); err != nil {
		return nil, err
	}
	next.Version = expectedVersion + 1
	m.items[id] = next
	return next.Clone(), nil
}

func (m *memReportRepo) List(ctx context.Context, filter repository.ReportFilter) ([]*entity.Report, error) {
	return nil, nil
}

func (m *memReportRepo) Count(ctx context.Context, filter repository.ReportFilter) (int, error) {
	return len(m.items), nil
}

func (m *memReportRepo) Statistics(ctx context.Context, filter repository.ReportFilter) (repository.ReportStatistics, error) {
	return repository.ReportStatistics{}, nil
}

func (m *memReportRepo) get(id uuid.UUID) *entity.Report {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.items[id].Clone()
}

type recordingAccounts struct {
	mu      sync.Mutex
	changes []transition.AccountChange
	err     error
}

func (a *recordingAccounts) ApplyAccountChange(ctx context.Context, change transition.AccountChange) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.err != nil {
		return a.err
	}
	a.changes = append(a.changes, change)
	return nil
}

type recordingNotifier struct {
	mu      sync.Mutex
	intents []transition.NotificationIntent
	err     error
}

func (n *recordingNotifier) Dispatch(ctx context.Context, intent transition.NotificationIntent) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	n.intents = append(n.intents, intent)
	return nil
}

type recordingFailures struct {
	mu       sync.Mutex
	failures []*apperror.DownstreamSyncError
	payloads []any
}

func (f *recordingFailures) Record(ctx context.Context, failure *apperror.DownstreamSyncError, payload any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures = append(f.failures, failure)
	f.payloads = append(f.payloads, payload)
	return nil
}

var errDownstream = errors.New("downstream unavailable")
