package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"mirror-server/internal/domain"
	"mirror-server/internal/tryon"
	"mirror-server/pkg/zip"
)

const (
	defaultUserID       = 1
	maxUploadBytes      = 10 << 20
	suggestionBatchSize = 10
)

type startRequest struct {
	UserID            int64   `json:"userId"`
	UserImagePath     string  `json:"userImagePath"`
	UserImageBase64   string  `json:"userImageBase64"`
	CapturedImage     string  `json:"capturedImage"`
	SelectedOutfitIDs []int64 `json:"selectedOutfitIds"`
	OutfitIDs         []int64 `json:"outfitIds"`
}

func (req *startRequest) outfitIDs() []int64 {
	if len(req.SelectedOutfitIDs) > 0 {
		return req.SelectedOutfitIDs
	}
	return req.OutfitIDs
}

func (req *startRequest) imageBase64() string {
	if req.UserImageBase64 != "" {
		return req.UserImageBase64
	}
	return req.CapturedImage
}

// StartTryOn starts a batch from a JSON body referencing an already-staged
// photo (path) or carrying it inline (base64).
func (a *App) StartTryOn(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}

	imageRef := strings.TrimSpace(req.UserImagePath)
	if imageRef == "" {
		ref, ok := a.stagePhoto(r.Context(), w, req.imageBase64())
		if !ok {
			return
		}
		imageRef = ref
	}
	a.startBatch(w, r, req.UserID, imageRef, req.outfitIDs(), tryon.ModeBatch)
}

// UploadAndStart starts a batch from a multipart upload. A base64 form field
// is accepted as a fallback for clients that cannot send files.
func (a *App) UploadAndStart(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid multipart form")
		return
	}

	var imageRef string
	file, _, err := r.FormFile("userPhoto")
	if err == nil {
		defer file.Close()
		data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
		if err != nil || len(data) == 0 {
			a.error(w, http.StatusBadRequest, "bad_request", "unreadable photo upload")
			return
		}
		path, err := a.Photos.SaveUserPhoto(r.Context(), "user", data)
		if err != nil {
			a.error(w, http.StatusInternalServerError, "internal", "failed to store photo")
			return
		}
		imageRef = path
	} else {
		ref, ok := a.stagePhoto(r.Context(), w, r.FormValue("userImageBase64"))
		if !ok {
			return
		}
		imageRef = ref
	}

	userID := int64(0)
	if raw := r.FormValue("userId"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			a.error(w, http.StatusBadRequest, "bad_request", "invalid user id")
			return
		}
		userID = parsed
	}
	ids, err := parseOutfitIDs(r.FormValue("selectedOutfitIds"))
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid outfit ids")
		return
	}
	a.startBatch(w, r, userID, imageRef, ids, tryon.ModeBatch)
}

// UploadAndStartBase64 is the JSON twin of UploadAndStart.
func (a *App) UploadAndStartBase64(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	imageRef, ok := a.stagePhoto(r.Context(), w, req.imageBase64())
	if !ok {
		return
	}
	a.startBatch(w, r, req.UserID, imageRef, req.outfitIDs(), tryon.ModeBatch)
}

// StartMultiple starts a batch from a captured camera frame.
func (a *App) StartMultiple(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	imageRef, ok := a.stagePhoto(r.Context(), w, req.imageBase64())
	if !ok {
		return
	}
	a.startBatch(w, r, req.UserID, imageRef, req.outfitIDs(), tryon.ModeBatch)
}

// stagePhoto decodes an inline base64 payload and writes it to the temp
// store, returning the staged path.
func (a *App) stagePhoto(ctx context.Context, w http.ResponseWriter, payload string) (string, bool) {
	payload = strings.TrimSpace(payload)
	if payload == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "user image is required")
		return "", false
	}
	data, err := tryon.DecodeDataURI(payload)
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "user image is not valid base64")
		return "", false
	}
	path, err := a.Photos.SaveUserPhoto(ctx, "user", data)
	if err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to store photo")
		return "", false
	}
	return path, true
}

// startBatch validates the request, creates the record and hands the work to
// the orchestrator. The batch outlives this request, so the orchestrator gets
// a fresh context instead of the request's.
func (a *App) startBatch(w http.ResponseWriter, r *http.Request, userID int64, imageRef string, ids []int64, mode tryon.Mode) {
	if userID == 0 {
		userID = defaultUserID
	}
	if userID < 0 {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid user id")
		return
	}
	if len(ids) == 0 {
		a.error(w, http.StatusBadRequest, "bad_request", "no outfits selected")
		return
	}

	outfits, err := a.Catalog.FindActiveByIDs(r.Context(), ids)
	if err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to load outfits")
		return
	}
	if len(outfits) == 0 {
		a.error(w, http.StatusNotFound, "not_found", "no active outfits match the selection")
		return
	}

	a.launchBatch(w, r, userID, imageRef, outfits, mode)
}

func (a *App) launchBatch(w http.ResponseWriter, r *http.Request, userID int64, imageRef string, outfits []domain.Outfit, mode tryon.Mode) {
	batch := &domain.BatchRecord{
		BatchID:       uuid.NewString(),
		UserID:        userID,
		UserImagePath: imageRef,
		TotalOutfits:  len(outfits),
	}
	if err := a.Batches.Create(r.Context(), batch); err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to create batch")
		return
	}

	go a.Orchestrator.Run(context.Background(), batch.BatchID, outfits, imageRef, mode)

	a.json(w, http.StatusAccepted, map[string]any{
		"batchId":      batch.BatchID,
		"totalOutfits": batch.TotalOutfits,
		"status":       string(domain.BatchStatusProcessing),
		"message":      fmt.Sprintf("processing %d outfits", batch.TotalOutfits),
	})
}

// TryOnSingle runs one try-on synchronously and persists the outcome.
func (a *App) TryOnSingle(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID        int64  `json:"userId"`
		OutfitID      int64  `json:"outfitId"`
		UserImagePath string `json:"userImagePath"`
		CapturedImage string `json:"capturedImage"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if req.OutfitID <= 0 {
		a.error(w, http.StatusBadRequest, "bad_request", "outfit id is required")
		return
	}
	if req.UserID == 0 {
		req.UserID = defaultUserID
	}

	imageRef := strings.TrimSpace(req.UserImagePath)
	if imageRef == "" {
		ref, ok := a.stagePhoto(r.Context(), w, req.CapturedImage)
		if !ok {
			return
		}
		imageRef = ref
	}

	outfit, err := a.Catalog.GetOutfitByID(r.Context(), req.OutfitID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.error(w, http.StatusNotFound, "not_found", "outfit not found")
			return
		}
		a.error(w, http.StatusInternalServerError, "internal", "failed to load outfit")
		return
	}

	res := a.Orchestrator.TryOnOne(r.Context(), *outfit, imageRef)
	if res.Status == domain.ResultStatusCompleted {
		_, err := a.Results.Save(r.Context(), &domain.TryOnResult{
			UserID:         req.UserID,
			OutfitID:       outfit.ID,
			ResultImageURL: res.ResultImageURL,
			TaskID:         res.TaskID,
		})
		if err != nil {
			a.Logger.Error().Err(err).Int64("outfit_id", outfit.ID).Msg("persist single try-on")
		}
	}
	a.json(w, http.StatusOK, map[string]any{"result": res})
}

// StartAISuggestion picks a random window of outfits from one category and
// runs them as a suggestion batch.
func (a *App) StartAISuggestion(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID        int64  `json:"userId"`
		Gender        string `json:"gender"`
		Category      string `json:"category"`
		CapturedImage string `json:"capturedImage"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if req.Gender == "" || req.Category == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "gender and category are required")
		return
	}
	imageRef, ok := a.stagePhoto(r.Context(), w, req.CapturedImage)
	if !ok {
		return
	}
	if req.UserID == 0 {
		req.UserID = defaultUserID
	}

	category, err := a.Catalog.FindCategory(r.Context(), req.Gender, req.Category)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.error(w, http.StatusNotFound, "not_found", "category not found")
			return
		}
		a.error(w, http.StatusInternalServerError, "internal", "failed to load category")
		return
	}

	total, err := a.Catalog.CountActiveByCategory(r.Context(), category.ID)
	if err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to count outfits")
		return
	}
	if total == 0 {
		a.error(w, http.StatusNotFound, "not_found", "no active outfits in category")
		return
	}

	offset := 0
	if total > suggestionBatchSize {
		offset = rand.Intn(total - suggestionBatchSize)
	}
	outfits, err := a.Catalog.ListActiveByCategory(r.Context(), category.ID, suggestionBatchSize, offset)
	if err != nil || len(outfits) == 0 {
		a.error(w, http.StatusInternalServerError, "internal", "failed to load outfits")
		return
	}

	a.launchBatch(w, r, req.UserID, imageRef, outfits, tryon.ModeSuggestion)
}

func batchPayload(b *domain.BatchRecord) map[string]any {
	return map[string]any{
		"batchId":        b.BatchID,
		"status":         string(b.Status),
		"totalOutfits":   b.TotalOutfits,
		"completedCount": b.CompletedCount,
		"percentage":     b.Percentage(),
		"createdAt":      b.CreatedAt,
		"updatedAt":      b.UpdatedAt,
	}
}

// BatchResults returns a window over the per-item results, enriched with
// outfit details. Polling the same window twice yields the same items.
func (a *App) BatchResults(w http.ResponseWriter, r *http.Request) {
	batch, ok := a.batchParam(w, r)
	if !ok {
		return
	}

	offset := queryInt(r, "offset", 0)
	limit := queryInt(r, "limit", 5)
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = 5
	}

	total := len(batch.Results)
	start := offset
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}
	window := batch.Results[start:end]

	items, err := a.enrichResults(r.Context(), window)
	if err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to load outfits")
		return
	}

	a.json(w, http.StatusOK, map[string]any{
		"batch":   batchPayload(batch),
		"results": items,
		"pagination": map[string]any{
			"offset":  offset,
			"limit":   limit,
			"total":   total,
			"hasMore": end < total,
		},
	})
}

// BatchStatus reports progress only, no result bodies.
func (a *App) BatchStatus(w http.ResponseWriter, r *http.Request) {
	batch, ok := a.batchParam(w, r)
	if !ok {
		return
	}
	a.json(w, http.StatusOK, map[string]any{"batch": batchPayload(batch)})
}

// BatchFullStatus reports all results plus completed/failed tallies.
func (a *App) BatchFullStatus(w http.ResponseWriter, r *http.Request) {
	batch, ok := a.batchParam(w, r)
	if !ok {
		return
	}

	items, err := a.enrichResults(r.Context(), batch.Results)
	if err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to load outfits")
		return
	}
	completed, failed := 0, 0
	for _, res := range batch.Results {
		if res.Status == domain.ResultStatusCompleted {
			completed++
		} else {
			failed++
		}
	}

	a.json(w, http.StatusOK, map[string]any{
		"batch":          batchPayload(batch),
		"results":        items,
		"completedCount": completed,
		"failedCount":    failed,
	})
}

// AISuggestionStatus mirrors BatchFullStatus for suggestion batches.
func (a *App) AISuggestionStatus(w http.ResponseWriter, r *http.Request) {
	a.BatchFullStatus(w, r)
}

// DownloadBatch serves the completed result images of a batch as one zip.
func (a *App) DownloadBatch(w http.ResponseWriter, r *http.Request) {
	batch, ok := a.batchParam(w, r)
	if !ok {
		return
	}

	var assets []zip.Asset
	for i, res := range batch.Results {
		if res.Status != domain.ResultStatusCompleted || res.ResultImageURL == "" {
			continue
		}
		data, err := a.Resolver.Resolve(r.Context(), res.ResultImageURL)
		if err != nil {
			a.Logger.Warn().Err(err).Int64("outfit_id", res.OutfitID).Msg("skip unreadable result image")
			continue
		}
		assets = append(assets, zip.Asset{
			Filename: fmt.Sprintf("result_%02d_outfit_%d.jpg", i+1, res.OutfitID),
			Data:     data,
		})
	}
	if len(assets) == 0 {
		a.error(w, http.StatusNotFound, "not_found", "no completed results to download")
		return
	}

	archive, err := zip.ArchiveAssets(assets)
	if err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to build archive")
		return
	}
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "tryon-"+batch.BatchID+".zip"))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(archive)
}

func (a *App) batchParam(w http.ResponseWriter, r *http.Request) (*domain.BatchRecord, bool) {
	batchID := chi.URLParam(r, "batchId")
	if batchID == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "batch id is required")
		return nil, false
	}
	batch, err := a.Batches.GetByBatchID(r.Context(), batchID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.error(w, http.StatusNotFound, "not_found", "batch not found")
			return nil, false
		}
		a.error(w, http.StatusInternalServerError, "internal", "failed to load batch")
		return nil, false
	}
	return batch, true
}

// enrichResults joins per-item results with their catalog outfits. Unknown
// outfit ids are passed through without the outfit block.
func (a *App) enrichResults(ctx context.Context, results []domain.OutfitResult) ([]map[string]any, error) {
	ids := make([]int64, 0, len(results))
	seen := make(map[int64]struct{}, len(results))
	for _, res := range results {
		if _, ok := seen[res.OutfitID]; ok {
			continue
		}
		seen[res.OutfitID] = struct{}{}
		ids = append(ids, res.OutfitID)
	}

	outfitsByID := make(map[int64]domain.Outfit, len(ids))
	if len(ids) > 0 {
		outfits, err := a.Catalog.ListByIDs(ctx, ids)
		if err != nil {
			return nil, err
		}
		for _, o := range outfits {
			outfitsByID[o.ID] = o
		}
	}

	items := make([]map[string]any, 0, len(results))
	for _, res := range results {
		item := map[string]any{
			"outfitId":    res.OutfitID,
			"status":      string(res.Status),
			"processedAt": res.ProcessedAt,
		}
		if res.ResultImageURL != "" {
			item["resultImageUrl"] = res.ResultImageURL
		}
		if res.TaskID != "" {
			item["taskId"] = res.TaskID
		}
		if res.Error != "" {
			item["error"] = res.Error
		}
		if o, ok := outfitsByID[res.OutfitID]; ok {
			item["outfit"] = outfitPayload(o)
		}
		items = append(items, item)
	}
	return items, nil
}

func parseOutfitIDs(raw string) ([]int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	// Accepts a JSON array or a comma-separated list.
	if strings.HasPrefix(raw, "[") {
		var ids []int64
		if err := json.Unmarshal([]byte(raw), &ids); err != nil {
			return nil, err
		}
		return ids, nil
	}
	parts := strings.Split(raw, ",")
	ids := make([]int64, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
