package repo

import (
	"context"

	"mirror-server/internal/domain"
	"mirror-server/internal/infra"
	"mirror-server/internal/sqlinline"
)

// UserRepo persists user bookkeeping records.
type UserRepo struct {
	SQL infra.SQLExecutor
}

func NewUserRepo(sql infra.SQLExecutor) *UserRepo {
	return &UserRepo{SQL: sql}
}

func (r *UserRepo) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	if user.Plan == "" {
		user.Plan = "free"
	}
	err := r.SQL.QueryRow(ctx, sqlinline.QInsertUser, user.Name, user.Email, user.Plan).
		Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *UserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	var u domain.User
	err := r.SQL.QueryRow(ctx, sqlinline.QGetUserByID, id).
		Scan(&u.ID, &u.Name, &u.Email, &u.Plan, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if infra.IsNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var u domain.User
	err := r.SQL.QueryRow(ctx, sqlinline.QGetUserByEmail, email).
		Scan(&u.ID, &u.Name, &u.Email, &u.Plan, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if infra.IsNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) Update(ctx context.Context, id int64, upd domain.UserUpdate) (*domain.User, error) {
	var email string
	if upd.Email != nil {
		email = *upd.Email
	}
	var u domain.User
	err := r.SQL.QueryRow(ctx, sqlinline.QUpdateUser, id, upd.Name, email, upd.Plan).
		Scan(&u.ID, &u.Name, &u.Email, &u.Plan, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if infra.IsNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) List(ctx context.Context, limit, offset int) ([]domain.User, int, error) {
	var total int
	if err := r.SQL.QueryRow(ctx, sqlinline.QCountUsers).Scan(&total); err != nil {
		return nil, 0, err
	}
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.SQL.Query(ctx, sqlinline.QListUsers, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		var u domain.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.Plan, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, 0, err
		}
		users = append(users, u)
	}
	return users, total, rows.Err()
}

var _ domain.UserRepository = (*UserRepo)(nil)
