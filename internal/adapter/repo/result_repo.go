package repo

import (
	"context"
	"time"

	"mirror-server/internal/domain"
	"mirror-server/internal/infra"
	"mirror-server/internal/sqlinline"
)

// ResultRepo persists single try-on outcomes and serves user statistics.
type ResultRepo struct {
	SQL infra.SQLExecutor
}

func NewResultRepo(sql infra.SQLExecutor) *ResultRepo {
	return &ResultRepo{SQL: sql}
}

func (r *ResultRepo) Save(ctx context.Context, res *domain.TryOnResult) (int64, error) {
	var id int64
	err := r.SQL.QueryRow(ctx, sqlinline.QInsertTryOnResult,
		res.UserID, res.OutfitID, res.ResultImageURL, res.TaskID,
	).Scan(&id)
	if err != nil {
		return 0, err
	}
	res.ID = id
	return id, nil
}

func (r *ResultRepo) RecentByUser(ctx context.Context, userID int64, limit int) ([]domain.TryOnResult, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := r.SQL.Query(ctx, sqlinline.QListRecentResultsByUser, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.TryOnResult
	for rows.Next() {
		var (
			res domain.TryOnResult
			o   domain.Outfit
		)
		err := rows.Scan(
			&res.ID, &res.UserID, &res.OutfitID, &res.ResultImageURL, &res.TaskID, &res.CreatedAt,
			&o.ID, &o.CategoryID, &o.Name, &o.Description, &o.ImageURL, &o.ClothType, &o.Price, &o.IsActive, &o.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		res.Outfit = &o
		results = append(results, res)
	}
	return results, rows.Err()
}

func (r *ResultRepo) CountByUser(ctx context.Context, userID int64) (int, error) {
	var count int
	err := r.SQL.QueryRow(ctx, sqlinline.QCountResultsByUser, userID).Scan(&count)
	return count, err
}

func (r *ResultRepo) CountByUserSince(ctx context.Context, userID int64, since time.Time) (int, error) {
	var count int
	err := r.SQL.QueryRow(ctx, sqlinline.QCountResultsByUserSince, userID, since).Scan(&count)
	return count, err
}

func (r *ResultRepo) FavoriteOutfit(ctx context.Context, userID int64) (*domain.Outfit, int, error) {
	var (
		o     domain.Outfit
		count int
	)
	err := r.SQL.QueryRow(ctx, sqlinline.QFavoriteOutfitByUser, userID).Scan(
		&o.ID, &o.CategoryID, &o.Name, &o.Description, &o.ImageURL,
		&o.ClothType, &o.Price, &o.IsActive, &o.CreatedAt, &count,
	)
	if err != nil {
		if infra.IsNoRows(err) {
			return nil, 0, domain.ErrNotFound
		}
		return nil, 0, err
	}
	return &o, count, nil
}

var _ domain.ResultRepository = (*ResultRepo)(nil)
