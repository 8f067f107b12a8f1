package domain

import (
	"context"
	"time"
)

// OutfitFilter narrows a catalog page. Nil price bounds mean unbounded.
type OutfitFilter struct {
	Page     int
	Limit    int
	MinPrice *int
	MaxPrice *int
}

// CatalogRepository defines read access to the outfit catalog.
type CatalogRepository interface {
	ListGenders(ctx context.Context) ([]Gender, error)
	GetGenderByName(ctx context.Context, name string) (*Gender, error)
	ListCategories(ctx context.Context, genderID int64) ([]Category, error)
	FindCategory(ctx context.Context, genderName, categoryName string) (*Category, error)
	ListOutfits(ctx context.Context, categoryID int64, f OutfitFilter) ([]Outfit, int, error)
	GetOutfitByID(ctx context.Context, id int64) (*Outfit, error)
	PriceRange(ctx context.Context, categoryName string) (min, max int, err error)
	FindActiveByIDs(ctx context.Context, ids []int64) ([]Outfit, error)
	ListByIDs(ctx context.Context, ids []int64) ([]Outfit, error)
	CountActiveByCategory(ctx context.Context, categoryID int64) (int, error)
	ListActiveByCategory(ctx context.Context, categoryID int64, limit, offset int) ([]Outfit, error)
}

// BatchRepository defines persistence for batch try-on records. AppendResult
// must be atomic with respect to concurrent updates to the same batch ID so
// that readers never observe completed_count regress or exceed total_outfits.
type BatchRepository interface {
	Create(ctx context.Context, batch *BatchRecord) error
	GetByBatchID(ctx context.Context, batchID string) (*BatchRecord, error)
	AppendResult(ctx context.Context, batchID string, res OutfitResult) error
	SetStatus(ctx context.Context, batchID string, status BatchStatus) error
}

// UserRepository defines access methods for users.
type UserRepository interface {
	Create(ctx context.Context, user *User) (*User, error)
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Update(ctx context.Context, id int64, upd UserUpdate) (*User, error)
	List(ctx context.Context, limit, offset int) ([]User, int, error)
}

// ResultRepository persists and aggregates single try-on results.
type ResultRepository interface {
	Save(ctx context.Context, res *TryOnResult) (int64, error)
	RecentByUser(ctx context.Context, userID int64, limit int) ([]TryOnResult, error)
	CountByUser(ctx context.Context, userID int64) (int, error)
	CountByUserSince(ctx context.Context, userID int64, since time.Time) (int, error)
	FavoriteOutfit(ctx context.Context, userID int64) (*Outfit, int, error)
}
