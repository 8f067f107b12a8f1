package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"mirror-server/internal/domain"
	"mirror-server/internal/infra"
	"mirror-server/internal/storage"
	"mirror-server/internal/tryon"
)

// App bundles the dependencies shared by all HTTP handlers.
type App struct {
	Catalog      domain.CatalogRepository
	Users        domain.UserRepository
	Batches      domain.BatchRepository
	Results      domain.ResultRepository
	Orchestrator *tryon.Orchestrator
	Resolver     *tryon.Resolver
	Photos       *storage.FileStore
	Config       *infra.Config
	Logger       zerolog.Logger
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, errCode, message string) {
	a.json(w, code, map[string]any{
		"error": map[string]string{
			"code":    errCode,
			"message": message,
		},
	})
}
