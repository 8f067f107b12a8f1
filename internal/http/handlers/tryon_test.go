package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"mirror-server/internal/adapter/repo"
	"mirror-server/internal/domain"
	"mirror-server/internal/storage"
	"mirror-server/internal/tryon"
)

func newTestApp(t *testing.T, catalog domain.CatalogRepository) (*App, *repo.MemoryBatchRepo) {
	t.Helper()

	batches := repo.NewMemoryBatchRepo()
	photos, err := storage.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	resolver := tryon.NewResolver(tryon.ResolverOptions{TempDir: photos.BasePath()})
	orch := tryon.NewOrchestrator(tryon.OrchestratorOptions{
		Client:              tryon.NewMockClient(time.Millisecond),
		Resolver:            resolver,
		Batches:             batches,
		Logger:              zerolog.Nop(),
		BatchItemDelay:      time.Millisecond,
		SuggestionItemDelay: time.Millisecond,
	})

	return &App{
		Catalog:      catalog,
		Users:        newFakeUsers(),
		Batches:      batches,
		Results:      &fakeResults{},
		Orchestrator: orch,
		Resolver:     resolver,
		Photos:       photos,
		Logger:       zerolog.Nop(),
	}, batches
}

func postJSON(t *testing.T, handler http.HandlerFunc, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest("POST", path, strings.NewReader(string(raw)))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	handler(rr, req)
	return rr
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var payload map[string]any
	if err := json.NewDecoder(rr.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return payload
}

func waitForTerminal(t *testing.T, batches *repo.MemoryBatchRepo, batchID string) *domain.BatchRecord {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		rec, err := batches.GetByBatchID(context.Background(), batchID)
		if err != nil {
			t.Fatalf("GetByBatchID: %v", err)
		}
		if rec.Status.IsTerminal() {
			return rec
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("batch never reached a terminal state")
	return nil
}

const testImage = "data:image/jpeg;base64,dXNlciBwaG90bw=="

func TestStartTryOnSkipsInactiveOutfits(t *testing.T) {
	inactive := activeOutfit(3)
	inactive.IsActive = false
	app, batches := newTestApp(t, newFakeCatalog(activeOutfit(1), activeOutfit(2), inactive))

	rr := postJSON(t, app.StartTryOn, "/api/tryon/start", map[string]any{
		"userImageBase64":   testImage,
		"selectedOutfitIds": []int64{1, 2, 3},
	})
	if rr.Code != http.StatusAccepted {
		t.Fatalf("status = %d, body %s", rr.Code, rr.Body)
	}

	payload := decodeBody(t, rr)
	if payload["totalOutfits"] != float64(2) {
		t.Fatalf("totalOutfits = %v, want 2", payload["totalOutfits"])
	}
	batchID, _ := payload["batchId"].(string)
	if batchID == "" {
		t.Fatal("missing batchId")
	}

	rec := waitForTerminal(t, batches, batchID)
	if rec.Status != domain.BatchStatusCompleted {
		t.Fatalf("final status = %q", rec.Status)
	}
	if rec.CompletedCount != 2 || len(rec.Results) != 2 {
		t.Fatalf("completed=%d results=%d", rec.CompletedCount, len(rec.Results))
	}
}

func TestStartTryOnRejectsEmptySelection(t *testing.T) {
	app, _ := newTestApp(t, newFakeCatalog(activeOutfit(1)))

	rr := postJSON(t, app.StartTryOn, "/api/tryon/start", map[string]any{
		"userImageBase64":   testImage,
		"selectedOutfitIds": []int64{},
	})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rr.Code)
	}
}

func TestStartTryOnRejectsMissingImage(t *testing.T) {
	app, _ := newTestApp(t, newFakeCatalog(activeOutfit(1)))

	rr := postJSON(t, app.StartTryOn, "/api/tryon/start", map[string]any{
		"selectedOutfitIds": []int64{1},
	})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rr.Code)
	}
}

func TestStartTryOnUnknownOutfits(t *testing.T) {
	app, _ := newTestApp(t, newFakeCatalog(activeOutfit(1)))

	rr := postJSON(t, app.StartTryOn, "/api/tryon/start", map[string]any{
		"userImageBase64":   testImage,
		"selectedOutfitIds": []int64{98, 99},
	})
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rr.Code)
	}
}

func TestBatchStatusUnknownBatch(t *testing.T) {
	app, _ := newTestApp(t, newFakeCatalog())

	req := httptest.NewRequest("GET", "/api/tryon/status/nope", nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("batchId", "nope")
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	rr := httptest.NewRecorder()
	app.BatchStatus(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rr.Code)
	}
	payload := decodeBody(t, rr)
	errBlock, _ := payload["error"].(map[string]any)
	if errBlock["code"] != "not_found" {
		t.Fatalf("error block = %v", payload)
	}
}

func TestBatchResultsWindowIsIdempotent(t *testing.T) {
	app, batches := newTestApp(t, newFakeCatalog(activeOutfit(1), activeOutfit(2), activeOutfit(3)))

	rr := postJSON(t, app.StartTryOn, "/api/tryon/start", map[string]any{
		"userImageBase64":   testImage,
		"selectedOutfitIds": []int64{1, 2, 3},
	})
	batchID := decodeBody(t, rr)["batchId"].(string)
	waitForTerminal(t, batches, batchID)

	fetch := func() map[string]any {
		req := httptest.NewRequest("GET", fmt.Sprintf("/api/tryon/results/%s?offset=0&limit=2", batchID), nil)
		rctx := chi.NewRouteContext()
		rctx.URLParams.Add("batchId", batchID)
		req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
		rec := httptest.NewRecorder()
		app.BatchResults(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("results status = %d", rec.Code)
		}
		return decodeBody(t, rec)
	}

	first := fetch()
	second := fetch()

	results, _ := first["results"].([]any)
	if len(results) != 2 {
		t.Fatalf("window size = %d, want 2", len(results))
	}
	pagination, _ := first["pagination"].(map[string]any)
	if pagination["total"] != float64(3) || pagination["hasMore"] != true {
		t.Fatalf("pagination = %v", pagination)
	}
	if fmt.Sprint(first["results"]) != fmt.Sprint(second["results"]) {
		t.Fatal("same window fetched twice returned different items")
	}
	item := results[0].(map[string]any)
	if _, ok := item["outfit"]; !ok {
		t.Fatal("results should be enriched with outfit details")
	}
}

func TestTryOnSingleSavesResult(t *testing.T) {
	app, _ := newTestApp(t, newFakeCatalog(activeOutfit(7)))

	rr := postJSON(t, app.TryOnSingle, "/api/tryon/single", map[string]any{
		"outfitId":      7,
		"capturedImage": testImage,
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rr.Code, rr.Body)
	}

	payload := decodeBody(t, rr)
	result, _ := payload["result"].(map[string]any)
	if result["status"] != "completed" {
		t.Fatalf("result = %v", result)
	}

	saved := app.Results.(*fakeResults).saved
	if len(saved) != 1 || saved[0].OutfitID != 7 || saved[0].UserID != defaultUserID {
		t.Fatalf("saved = %+v", saved)
	}
}

func TestUploadAndStartRejectsMalformedUserID(t *testing.T) {
	app, _ := newTestApp(t, newFakeCatalog(activeOutfit(1)))

	var body strings.Builder
	mw := multipart.NewWriter(&body)
	mw.WriteField("userImageBase64", testImage)
	mw.WriteField("selectedOutfitIds", "[1]")
	mw.WriteField("userId", "abc")
	mw.Close()

	req := httptest.NewRequest("POST", "/api/tryon/upload-and-start", strings.NewReader(body.String()))
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rr := httptest.NewRecorder()
	app.UploadAndStart(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, body %s", rr.Code, rr.Body)
	}
	payload := decodeBody(t, rr)
	errBlock, _ := payload["error"].(map[string]any)
	if errBlock["code"] != "bad_request" {
		t.Fatalf("error block = %v", payload)
	}
}

func TestStartAISuggestionUnknownCategory(t *testing.T) {
	app, _ := newTestApp(t, newFakeCatalog(activeOutfit(1)))

	rr := postJSON(t, app.StartAISuggestion, "/api/tryon/ai-suggestion", map[string]any{
		"gender":        "mens",
		"category":      "missing",
		"capturedImage": testImage,
	})
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rr.Code)
	}
}

func TestStartAISuggestionRunsWindow(t *testing.T) {
	catalog := newFakeCatalog(activeOutfit(1), activeOutfit(2), activeOutfit(3))
	catalog.categories = []domain.Category{{ID: 1, GenderID: 1, Name: "chudi", ClothType: "chudi"}}
	app, batches := newTestApp(t, catalog)

	rr := postJSON(t, app.StartAISuggestion, "/api/tryon/ai-suggestion", map[string]any{
		"gender":        "womens",
		"category":      "chudi",
		"capturedImage": testImage,
	})
	if rr.Code != http.StatusAccepted {
		t.Fatalf("status = %d, body %s", rr.Code, rr.Body)
	}

	batchID := decodeBody(t, rr)["batchId"].(string)
	rec := waitForTerminal(t, batches, batchID)
	if rec.Status != domain.BatchStatusCompleted {
		t.Fatalf("final status = %q", rec.Status)
	}
	if rec.TotalOutfits != 3 {
		t.Fatalf("totalOutfits = %d", rec.TotalOutfits)
	}
}

func TestParseOutfitIDs(t *testing.T) {
	cases := []struct {
		raw  string
		want []int64
	}{
		{"[1,2,3]", []int64{1, 2, 3}},
		{"4, 5", []int64{4, 5}},
		{"", nil},
	}
	for _, tc := range cases {
		got, err := parseOutfitIDs(tc.raw)
		if err != nil {
			t.Fatalf("parseOutfitIDs(%q): %v", tc.raw, err)
		}
		if fmt.Sprint(got) != fmt.Sprint(tc.want) {
			t.Errorf("parseOutfitIDs(%q) = %v, want %v", tc.raw, got, tc.want)
		}
	}
	if _, err := parseOutfitIDs("not-a-number"); err == nil {
		t.Error("expected an error for malformed input")
	}
}
