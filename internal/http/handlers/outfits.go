package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"mirror-server/internal/domain"
)

func outfitPayload(o domain.Outfit) map[string]any {
	return map[string]any{
		"id":          o.ID,
		"categoryId":  o.CategoryID,
		"name":        o.Name,
		"displayName": domain.TitleName(o.Name),
		"description": o.Description,
		"imageUrl":    o.ImageURL,
		"clothType":   o.ClothType,
		"price":       o.Price,
		"isActive":    o.IsActive,
		"createdAt":   o.CreatedAt,
	}
}

func (a *App) ListGenders(w http.ResponseWriter, r *http.Request) {
	genders, err := a.Catalog.ListGenders(r.Context())
	if err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to load genders")
		return
	}
	items := make([]map[string]any, 0, len(genders))
	for _, g := range genders {
		items = append(items, map[string]any{
			"id":          g.ID,
			"name":        g.Name,
			"displayName": g.Display(),
			"bannerImage": g.BannerImage,
		})
	}
	a.json(w, http.StatusOK, map[string]any{"genders": items})
}

func (a *App) ListCategories(w http.ResponseWriter, r *http.Request) {
	genderName := chi.URLParam(r, "genderName")
	gender, err := a.Catalog.GetGenderByName(r.Context(), genderName)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.error(w, http.StatusNotFound, "not_found", "gender not found")
			return
		}
		a.error(w, http.StatusInternalServerError, "internal", "failed to load gender")
		return
	}

	categories, err := a.Catalog.ListCategories(r.Context(), gender.ID)
	if err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to load categories")
		return
	}
	items := make([]map[string]any, 0, len(categories))
	for _, c := range categories {
		items = append(items, map[string]any{
			"id":          c.ID,
			"name":        c.Name,
			"displayName": c.Display(),
			"bannerImage": c.BannerImage,
			"clothType":   c.ClothType,
			"outfitCount": c.OutfitCount,
		})
	}
	a.json(w, http.StatusOK, map[string]any{
		"gender":     gender.Name,
		"categories": items,
	})
}

func (a *App) PriceRange(w http.ResponseWriter, r *http.Request) {
	categoryName := chi.URLParam(r, "categoryName")
	min, max, err := a.Catalog.PriceRange(r.Context(), categoryName)
	if err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to load price range")
		return
	}
	a.json(w, http.StatusOK, map[string]any{
		"category": categoryName,
		"minPrice": min,
		"maxPrice": max,
	})
}

func (a *App) ListOutfits(w http.ResponseWriter, r *http.Request) {
	genderName := chi.URLParam(r, "genderName")
	categoryName := chi.URLParam(r, "categoryName")

	category, err := a.Catalog.FindCategory(r.Context(), genderName, categoryName)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.error(w, http.StatusNotFound, "not_found", "category not found")
			return
		}
		a.error(w, http.StatusInternalServerError, "internal", "failed to load category")
		return
	}

	filter := domain.OutfitFilter{
		Page:  queryInt(r, "page", 1),
		Limit: queryInt(r, "limit", 9),
	}
	if v, ok := queryIntOpt(r, "minPrice"); ok {
		filter.MinPrice = &v
	}
	if v, ok := queryIntOpt(r, "maxPrice"); ok {
		filter.MaxPrice = &v
	}

	outfits, total, err := a.Catalog.ListOutfits(r.Context(), category.ID, filter)
	if err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to load outfits")
		return
	}

	items := make([]map[string]any, 0, len(outfits))
	for _, o := range outfits {
		items = append(items, outfitPayload(o))
	}
	totalPages := 0
	if filter.Limit > 0 {
		totalPages = (total + filter.Limit - 1) / filter.Limit
	}
	a.json(w, http.StatusOK, map[string]any{
		"gender":   genderName,
		"category": category.Name,
		"outfits":  items,
		"pagination": map[string]any{
			"page":       filter.Page,
			"limit":      filter.Limit,
			"total":      total,
			"totalPages": totalPages,
		},
	})
}

func (a *App) GetOutfit(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid outfit id")
		return
	}
	outfit, err := a.Catalog.GetOutfitByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.error(w, http.StatusNotFound, "not_found", "outfit not found")
			return
		}
		a.error(w, http.StatusInternalServerError, "internal", "failed to load outfit")
		return
	}
	a.json(w, http.StatusOK, map[string]any{"outfit": outfitPayload(*outfit)})
}

func queryInt(r *http.Request, key string, def int) int {
	v, ok := queryIntOpt(r, key)
	if !ok {
		return def
	}
	return v
}

func queryIntOpt(r *http.Request, key string) (int, bool) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}
