package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"mirror-server/internal/domain"
)

type createUserRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Plan  string `json:"plan"`
}

func userPayload(u domain.User) map[string]any {
	return map[string]any{
		"id":        u.ID,
		"name":      u.Name,
		"email":     u.Email,
		"plan":      u.Plan,
		"createdAt": u.CreatedAt,
		"updatedAt": u.UpdatedAt,
	}
}

// CreateUser creates a user, or returns the existing record when the email is
// already registered.
func (a *App) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	if req.Name == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "name is required")
		return
	}

	if req.Email != "" {
		existing, err := a.Users.GetByEmail(r.Context(), req.Email)
		if err == nil {
			a.json(w, http.StatusOK, map[string]any{"user": userPayload(*existing), "created": false})
			return
		}
		if !errors.Is(err, domain.ErrNotFound) {
			a.error(w, http.StatusInternalServerError, "internal", "failed to look up user")
			return
		}
	}

	user := &domain.User{Name: req.Name, Email: req.Email, Plan: req.Plan}
	created, err := a.Users.Create(r.Context(), user)
	if err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to create user")
		return
	}
	a.json(w, http.StatusCreated, map[string]any{"user": userPayload(*created), "created": true})
}

func (a *App) ListUsers(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 50)
	offset := queryInt(r, "offset", 0)

	users, total, err := a.Users.List(r.Context(), limit, offset)
	if err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to load users")
		return
	}
	items := make([]map[string]any, 0, len(users))
	for _, u := range users {
		items = append(items, userPayload(u))
	}
	a.json(w, http.StatusOK, map[string]any{"users": items, "total": total})
}

func (a *App) GetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := a.userIDParam(w, r)
	if !ok {
		return
	}
	user, err := a.Users.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.error(w, http.StatusNotFound, "not_found", "user not found")
			return
		}
		a.error(w, http.StatusInternalServerError, "internal", "failed to load user")
		return
	}

	recent, err := a.Results.RecentByUser(r.Context(), id, 10)
	if err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to load recent try-ons")
		return
	}
	recentItems := make([]map[string]any, 0, len(recent))
	for _, res := range recent {
		item := map[string]any{
			"id":             res.ID,
			"outfitId":       res.OutfitID,
			"resultImageUrl": res.ResultImageURL,
			"taskId":         res.TaskID,
			"createdAt":      res.CreatedAt,
		}
		if res.Outfit != nil {
			item["outfit"] = outfitPayload(*res.Outfit)
		}
		recentItems = append(recentItems, item)
	}

	a.json(w, http.StatusOK, map[string]any{
		"user":         userPayload(*user),
		"recentTryOns": recentItems,
	})
}

func (a *App) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := a.userIDParam(w, r)
	if !ok {
		return
	}

	var req struct {
		Name  *string `json:"name"`
		Email *string `json:"email"`
		Plan  *string `json:"plan"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if req.Name == nil && req.Email == nil && req.Plan == nil {
		a.error(w, http.StatusBadRequest, "bad_request", "nothing to update")
		return
	}

	user, err := a.Users.Update(r.Context(), id, domain.UserUpdate{
		Name:  req.Name,
		Email: req.Email,
		Plan:  req.Plan,
	})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.error(w, http.StatusNotFound, "not_found", "user not found")
			return
		}
		a.error(w, http.StatusInternalServerError, "internal", "failed to update user")
		return
	}
	a.json(w, http.StatusOK, map[string]any{"user": userPayload(*user)})
}

// UserStats reports try-on counts plus the outfit this user tried most often.
func (a *App) UserStats(w http.ResponseWriter, r *http.Request) {
	id, ok := a.userIDParam(w, r)
	if !ok {
		return
	}
	if _, err := a.Users.GetByID(r.Context(), id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.error(w, http.StatusNotFound, "not_found", "user not found")
			return
		}
		a.error(w, http.StatusInternalServerError, "internal", "failed to load user")
		return
	}

	ctx := r.Context()
	total, err := a.Results.CountByUser(ctx, id)
	if err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to load stats")
		return
	}
	now := time.Now().UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	thisMonth, err := a.Results.CountByUserSince(ctx, id, monthStart)
	if err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to load stats")
		return
	}

	stats := map[string]any{
		"totalTryOns": total,
		"thisMonth":   thisMonth,
	}
	favorite, count, err := a.Results.FavoriteOutfit(ctx, id)
	switch {
	case err == nil:
		payload := outfitPayload(*favorite)
		payload["tryOnCount"] = count
		stats["favoriteOutfit"] = payload
	case errors.Is(err, domain.ErrNotFound):
		stats["favoriteOutfit"] = nil
	default:
		a.error(w, http.StatusInternalServerError, "internal", "failed to load stats")
		return
	}

	a.json(w, http.StatusOK, map[string]any{"stats": stats})
}

func (a *App) userIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid user id")
		return 0, false
	}
	return id, true
}
