package repo

import (
	"context"
	"encoding/json"
	"fmt"

	"mirror-server/internal/domain"
	"mirror-server/internal/infra"
	"mirror-server/internal/sqlinline"
)

// BatchRepo persists batch try-on records. The per-item results column is a
// jsonb array appended to server-side so that progress writes stay atomic.
type BatchRepo struct {
	SQL infra.SQLExecutor
}

func NewBatchRepo(sql infra.SQLExecutor) *BatchRepo {
	return &BatchRepo{SQL: sql}
}

func (r *BatchRepo) Create(ctx context.Context, batch *domain.BatchRecord) error {
	return r.SQL.QueryRow(ctx, sqlinline.QInsertBatch,
		batch.BatchID, batch.UserID, batch.UserImagePath, batch.TotalOutfits,
	).Scan(&batch.ID, &batch.CreatedAt, &batch.UpdatedAt)
}

func (r *BatchRepo) GetByBatchID(ctx context.Context, batchID string) (*domain.BatchRecord, error) {
	var (
		b      domain.BatchRecord
		status string
		raw    []byte
	)
	err := r.SQL.QueryRow(ctx, sqlinline.QGetBatchByBatchID, batchID).Scan(
		&b.ID, &b.BatchID, &b.UserID, &b.UserImagePath,
		&b.TotalOutfits, &b.CompletedCount, &status, &raw,
		&b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		if infra.IsNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	b.Status = domain.BatchStatus(status)
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &b.Results); err != nil {
			return nil, fmt.Errorf("batch %s results malformed: %w", batchID, err)
		}
	}
	return &b, nil
}

func (r *BatchRepo) AppendResult(ctx context.Context, batchID string, res domain.OutfitResult) error {
	// Wrapped in an array so the jsonb || operator appends an element rather
	// than merging object keys.
	payload, err := json.Marshal([]domain.OutfitResult{res})
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	tag, err := r.SQL.Exec(ctx, sqlinline.QAppendBatchResult, batchID, payload)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *BatchRepo) SetStatus(ctx context.Context, batchID string, status domain.BatchStatus) error {
	tag, err := r.SQL.Exec(ctx, sqlinline.QSetBatchStatus, batchID, string(status))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

var _ domain.BatchRepository = (*BatchRepo)(nil)
