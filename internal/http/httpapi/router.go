package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"mirror-server/internal/http/handlers"
	"mirror-server/internal/infra"
	"mirror-server/internal/middleware"
)

func NewRouter(app *handlers.App, cfg *infra.Config) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		middleware.Logger(app.Logger),
		middleware.CORS(cfg.CORSOrigins),
		middleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst),
	)

	r.Get("/health", app.Health)

	r.Route("/api/outfits", func(r chi.Router) {
		r.Get("/genders", app.ListGenders)
		r.Get("/categories/{genderName}", app.ListCategories)
		r.Get("/price-range/{categoryName}", app.PriceRange)
		r.Get("/outfit/{id}", app.GetOutfit)
		r.Get("/{genderName}/{categoryName}", app.ListOutfits)
	})

	r.Route("/api/tryon", func(r chi.Router) {
		r.Post("/start", app.StartTryOn)
		r.Post("/upload-and-start", app.UploadAndStart)
		r.Post("/upload-and-start-base64", app.UploadAndStartBase64)
		r.Post("/multiple", app.StartMultiple)
		r.Post("/single", app.TryOnSingle)
		r.Post("/ai-suggestion", app.StartAISuggestion)
		r.Get("/results/{batchId}", app.BatchResults)
		r.Get("/status/{batchId}", app.BatchStatus)
		r.Get("/batch-status/{batchId}", app.BatchFullStatus)
		r.Get("/ai-suggestion-status/{batchId}", app.AISuggestionStatus)
		r.Get("/download/{batchId}", app.DownloadBatch)
	})

	r.Route("/api/users", func(r chi.Router) {
		r.Post("/", app.CreateUser)
		r.Get("/", app.ListUsers)
		r.Get("/{id}", app.GetUser)
		r.Put("/{id}", app.UpdateUser)
		r.Get("/{id}/stats", app.UserStats)
	})

	// Catalog and staged images are served straight off disk.
	r.Handle("/images/*", http.StripPrefix("/images/", http.FileServer(http.Dir(cfg.DataDir))))
	r.Handle("/temp/*", http.StripPrefix("/temp/", http.FileServer(http.Dir(cfg.TempDir))))

	return r
}
