package repo

import (
	"context"
	"sync"
	"time"

	"mirror-server/internal/domain"
)

// MemoryBatchRepo is an in-memory BatchRepository with the same append
// semantics as the jsonb-backed one, for tests that exercise the batch
// lifecycle without Postgres.
type MemoryBatchRepo struct {
	mu      sync.Mutex
	nextID  int64
	batches map[string]*domain.BatchRecord
}

func NewMemoryBatchRepo() *MemoryBatchRepo {
	return &MemoryBatchRepo{batches: make(map[string]*domain.BatchRecord)}
}

func (m *MemoryBatchRepo) Create(ctx context.Context, batch *domain.BatchRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID++
	now := time.Now().UTC()
	batch.ID = m.nextID
	batch.Status = domain.BatchStatusProcessing
	batch.CreatedAt = now
	batch.UpdatedAt = now

	clone := *batch
	clone.Results = append([]domain.OutfitResult(nil), batch.Results...)
	m.batches[batch.BatchID] = &clone
	return nil
}

func (m *MemoryBatchRepo) GetByBatchID(ctx context.Context, batchID string) (*domain.BatchRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.batches[batchID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	clone := *rec
	clone.Results = append([]domain.OutfitResult(nil), rec.Results...)
	return &clone, nil
}

func (m *MemoryBatchRepo) AppendResult(ctx context.Context, batchID string, res domain.OutfitResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.batches[batchID]
	if !ok {
		return domain.ErrNotFound
	}
	rec.Results = append(rec.Results, res)
	rec.CompletedCount++
	if rec.CompletedCount >= rec.TotalOutfits {
		rec.Status = domain.BatchStatusCompleted
	}
	rec.UpdatedAt = time.Now().UTC()
	return nil
}

func (m *MemoryBatchRepo) SetStatus(ctx context.Context, batchID string, status domain.BatchStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.batches[batchID]
	if !ok {
		return domain.ErrNotFound
	}
	rec.Status = status
	rec.UpdatedAt = time.Now().UTC()
	return nil
}

var _ domain.BatchRepository = (*MemoryBatchRepo)(nil)
