package handlers

import (
	"context"
	"fmt"
	"time"

	"mirror-server/internal/domain"
)

// fakeCatalog serves a fixed outfit set keyed by id. Only active outfits are
// returned by the *Active* methods, matching the SQL-backed repository.
type fakeCatalog struct {
	genders    []domain.Gender
	categories []domain.Category
	outfits    map[int64]domain.Outfit
}

func newFakeCatalog(outfits ...domain.Outfit) *fakeCatalog {
	f := &fakeCatalog{outfits: make(map[int64]domain.Outfit, len(outfits))}
	for _, o := range outfits {
		f.outfits[o.ID] = o
	}
	return f
}

func (f *fakeCatalog) ListGenders(context.Context) ([]domain.Gender, error) {
	return f.genders, nil
}

func (f *fakeCatalog) GetGenderByName(_ context.Context, name string) (*domain.Gender, error) {
	for _, g := range f.genders {
		if g.Name == name {
			return &g, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeCatalog) ListCategories(_ context.Context, genderID int64) ([]domain.Category, error) {
	var out []domain.Category
	for _, c := range f.categories {
		if c.GenderID == genderID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeCatalog) FindCategory(_ context.Context, genderName, categoryName string) (*domain.Category, error) {
	for _, c := range f.categories {
		if c.Name == categoryName {
			return &c, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeCatalog) ListOutfits(_ context.Context, categoryID int64, filter domain.OutfitFilter) ([]domain.Outfit, int, error) {
	var out []domain.Outfit
	for _, o := range f.outfits {
		if o.CategoryID == categoryID && o.IsActive {
			out = append(out, o)
		}
	}
	return out, len(out), nil
}

func (f *fakeCatalog) GetOutfitByID(_ context.Context, id int64) (*domain.Outfit, error) {
	o, ok := f.outfits[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &o, nil
}

func (f *fakeCatalog) PriceRange(context.Context, string) (int, int, error) {
	return 0, 0, nil
}

func (f *fakeCatalog) FindActiveByIDs(_ context.Context, ids []int64) ([]domain.Outfit, error) {
	var out []domain.Outfit
	for _, id := range ids {
		if o, ok := f.outfits[id]; ok && o.IsActive {
			out = append(out, o)
		}
	}
	return out, nil
}

func (f *fakeCatalog) ListByIDs(_ context.Context, ids []int64) ([]domain.Outfit, error) {
	var out []domain.Outfit
	for _, id := range ids {
		if o, ok := f.outfits[id]; ok {
			out = append(out, o)
		}
	}
	return out, nil
}

func (f *fakeCatalog) CountActiveByCategory(_ context.Context, categoryID int64) (int, error) {
	count := 0
	for _, o := range f.outfits {
		if o.CategoryID == categoryID && o.IsActive {
			count++
		}
	}
	return count, nil
}

func (f *fakeCatalog) ListActiveByCategory(_ context.Context, categoryID int64, limit, offset int) ([]domain.Outfit, error) {
	var out []domain.Outfit
	for _, o := range f.outfits {
		if o.CategoryID == categoryID && o.IsActive && len(out) < limit {
			out = append(out, o)
		}
	}
	return out, nil
}

var _ domain.CatalogRepository = (*fakeCatalog)(nil)

type fakeUsers struct {
	nextID  int64
	byID    map[int64]domain.User
	byEmail map[string]int64
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byID: make(map[int64]domain.User), byEmail: make(map[string]int64)}
}

func (f *fakeUsers) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	f.nextID++
	user.ID = f.nextID
	user.CreatedAt = time.Now().UTC()
	user.UpdatedAt = user.CreatedAt
	f.byID[user.ID] = *user
	if user.Email != "" {
		f.byEmail[user.Email] = user.ID
	}
	return user, nil
}

func (f *fakeUsers) GetByID(_ context.Context, id int64) (*domain.User, error) {
	u, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &u, nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	id, ok := f.byEmail[email]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return f.GetByID(context.Background(), id)
}

func (f *fakeUsers) Update(_ context.Context, id int64, upd domain.UserUpdate) (*domain.User, error) {
	u, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if upd.Name != nil {
		u.Name = *upd.Name
	}
	if upd.Email != nil && *upd.Email != "" {
		u.Email = *upd.Email
	}
	if upd.Plan != nil {
		u.Plan = *upd.Plan
	}
	u.UpdatedAt = time.Now().UTC()
	f.byID[id] = u
	return &u, nil
}

func (f *fakeUsers) List(context.Context, int, int) ([]domain.User, int, error) {
	var out []domain.User
	for _, u := range f.byID {
		out = append(out, u)
	}
	return out, len(out), nil
}

var _ domain.UserRepository = (*fakeUsers)(nil)

type fakeResults struct {
	saved []domain.TryOnResult
}

func (f *fakeResults) Save(_ context.Context, res *domain.TryOnResult) (int64, error) {
	res.ID = int64(len(f.saved) + 1)
	f.saved = append(f.saved, *res)
	return res.ID, nil
}

func (f *fakeResults) RecentByUser(context.Context, int64, int) ([]domain.TryOnResult, error) {
	return f.saved, nil
}

func (f *fakeResults) CountByUser(context.Context, int64) (int, error) {
	return len(f.saved), nil
}

func (f *fakeResults) CountByUserSince(context.Context, int64, time.Time) (int, error) {
	return len(f.saved), nil
}

func (f *fakeResults) FavoriteOutfit(context.Context, int64) (*domain.Outfit, int, error) {
	if len(f.saved) == 0 {
		return nil, 0, domain.ErrNotFound
	}
	return &domain.Outfit{ID: f.saved[0].OutfitID}, len(f.saved), nil
}

var _ domain.ResultRepository = (*fakeResults)(nil)

func activeOutfit(id int64) domain.Outfit {
	return domain.Outfit{
		ID:         id,
		CategoryID: 1,
		Name:       fmt.Sprintf("outfit_%d", id),
		ImageURL:   "data:image/jpeg;base64,aW1hZ2U=",
		ClothType:  "chudi",
		Price:      500,
		IsActive:   true,
	}
}
