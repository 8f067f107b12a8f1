package repo

import (
	"context"

	"github.com/jackc/pgx/v5"

	"mirror-server/internal/domain"
	"mirror-server/internal/infra"
	"mirror-server/internal/sqlinline"
)

// CatalogRepo reads the outfit catalog. All writes happen through seed data
// and migrations; the API surface is read-only.
type CatalogRepo struct {
	SQL infra.SQLExecutor
}

func NewCatalogRepo(sql infra.SQLExecutor) *CatalogRepo {
	return &CatalogRepo{SQL: sql}
}

func (r *CatalogRepo) ListGenders(ctx context.Context) ([]domain.Gender, error) {
	rows, err := r.SQL.Query(ctx, sqlinline.QListGenders)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var genders []domain.Gender
	for rows.Next() {
		var g domain.Gender
		if err := rows.Scan(&g.ID, &g.Name, &g.DisplayName, &g.BannerImage); err != nil {
			return nil, err
		}
		g.IsActive = true
		genders = append(genders, g)
	}
	return genders, rows.Err()
}

func (r *CatalogRepo) GetGenderByName(ctx context.Context, name string) (*domain.Gender, error) {
	var g domain.Gender
	err := r.SQL.QueryRow(ctx, sqlinline.QGetGenderByName, name).
		Scan(&g.ID, &g.Name, &g.DisplayName, &g.BannerImage)
	if err != nil {
		if infra.IsNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	g.IsActive = true
	return &g, nil
}

func (r *CatalogRepo) ListCategories(ctx context.Context, genderID int64) ([]domain.Category, error) {
	rows, err := r.SQL.Query(ctx, sqlinline.QListCategoriesByGender, genderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []domain.Category
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.DisplayName, &c.BannerImage, &c.ClothType, &c.OutfitCount); err != nil {
			return nil, err
		}
		c.GenderID = genderID
		c.IsActive = true
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (r *CatalogRepo) FindCategory(ctx context.Context, genderName, categoryName string) (*domain.Category, error) {
	var c domain.Category
	err := r.SQL.QueryRow(ctx, sqlinline.QFindCategory, categoryName, genderName).
		Scan(&c.ID, &c.GenderID, &c.Name, &c.DisplayName, &c.BannerImage, &c.ClothType)
	if err != nil {
		if infra.IsNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	c.IsActive = true
	return &c, nil
}

func (r *CatalogRepo) ListOutfits(ctx context.Context, categoryID int64, f domain.OutfitFilter) ([]domain.Outfit, int, error) {
	var total int
	err := r.SQL.QueryRow(ctx, sqlinline.QCountOutfits, categoryID, f.MinPrice, f.MaxPrice).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	limit := f.Limit
	if limit <= 0 {
		limit = 20
	}
	page := f.Page
	if page <= 0 {
		page = 1
	}
	offset := (page - 1) * limit

	rows, err := r.SQL.Query(ctx, sqlinline.QListOutfits, categoryID, f.MinPrice, f.MaxPrice, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	outfits, err := scanOutfits(rows)
	if err != nil {
		return nil, 0, err
	}
	return outfits, total, nil
}

func (r *CatalogRepo) GetOutfitByID(ctx context.Context, id int64) (*domain.Outfit, error) {
	var o domain.Outfit
	err := scanOutfit(r.SQL.QueryRow(ctx, sqlinline.QGetOutfitByID, id), &o)
	if err != nil {
		if infra.IsNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &o, nil
}

func (r *CatalogRepo) PriceRange(ctx context.Context, categoryName string) (int, int, error) {
	var min, max int
	err := r.SQL.QueryRow(ctx, sqlinline.QPriceRangeByCategory, categoryName).Scan(&min, &max)
	if err != nil {
		return 0, 0, err
	}
	return min, max, nil
}

func (r *CatalogRepo) FindActiveByIDs(ctx context.Context, ids []int64) ([]domain.Outfit, error) {
	rows, err := r.SQL.Query(ctx, sqlinline.QFindActiveOutfitsByIDs, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanOutfits(rows)
}

func (r *CatalogRepo) ListByIDs(ctx context.Context, ids []int64) ([]domain.Outfit, error) {
	rows, err := r.SQL.Query(ctx, sqlinline.QListOutfitsByIDs, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanOutfits(rows)
}

func (r *CatalogRepo) CountActiveByCategory(ctx context.Context, categoryID int64) (int, error) {
	var count int
	err := r.SQL.QueryRow(ctx, sqlinline.QCountActiveOutfitsByCategory, categoryID).Scan(&count)
	return count, err
}

func (r *CatalogRepo) ListActiveByCategory(ctx context.Context, categoryID int64, limit, offset int) ([]domain.Outfit, error) {
	rows, err := r.SQL.Query(ctx, sqlinline.QListActiveOutfitsByCategory, categoryID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanOutfits(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOutfit(row rowScanner, o *domain.Outfit) error {
	return row.Scan(
		&o.ID, &o.CategoryID, &o.Name, &o.Description,
		&o.ImageURL, &o.ClothType, &o.Price, &o.IsActive, &o.CreatedAt,
	)
}

func scanOutfits(rows pgx.Rows) ([]domain.Outfit, error) {
	var outfits []domain.Outfit
	for rows.Next() {
		var o domain.Outfit
		if err := scanOutfit(rows, &o); err != nil {
			return nil, err
		}
		outfits = append(outfits, o)
	}
	return outfits, rows.Err()
}

var _ domain.CatalogRepository = (*CatalogRepo)(nil)
