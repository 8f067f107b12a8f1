package tryon

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func newTestFitRoom(t *testing.T, handler http.Handler) (*FitRoomClient, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c := NewFitRoomClient(FitRoomOptions{
		BaseURL:      srv.URL,
		APIKey:       "test-key",
		HTTPClient:   srv.Client(),
		PollInterval: time.Millisecond,
		PollAttempts: 3,
	})
	return c, srv
}

func TestFitRoomTryOnHappyPath(t *testing.T) {
	var polls int32
	mux := http.NewServeMux()
	mux.HandleFunc("POST /", func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("X-API-KEY"); got != "test-key" {
			t.Errorf("X-API-KEY = %q", got)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parse multipart: %v", err)
		}
		for _, field := range []string{"model_image", "cloth_image"} {
			if _, ok := r.MultipartForm.File[field]; !ok {
				t.Errorf("missing form file %q", field)
			}
		}
		if got := r.FormValue("cloth_type"); got != "full_set" {
			t.Errorf("cloth_type = %q, want full_set", got)
		}
		json.NewEncoder(w).Encode(map[string]string{"task_id": "task-123"})
	})
	mux.HandleFunc("GET /task-123", func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&polls, 1) == 1 {
			json.NewEncoder(w).Encode(map[string]string{"status": "PROCESSING"})
			return
		}
		json.NewEncoder(w).Encode(map[string]string{
			"status":              "COMPLETED",
			"download_signed_url": "https://cdn.example.com/result.jpg",
		})
	})

	c, _ := newTestFitRoom(t, mux)
	res, err := c.TryOn(context.Background(), Request{
		OutfitID:    7,
		UserImage:   []byte("user"),
		OutfitImage: []byte("outfit"),
		ClothHint:   "Traditional",
	})
	if err != nil {
		t.Fatalf("TryOn: %v", err)
	}
	if res.TaskID != "task-123" {
		t.Errorf("TaskID = %q", res.TaskID)
	}
	if res.ResultImageURL != "https://cdn.example.com/result.jpg" {
		t.Errorf("ResultImageURL = %q", res.ResultImageURL)
	}
}

func TestFitRoomTaskFailed(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"task_id": "task-9"})
	})
	mux.HandleFunc("GET /task-9", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{
			"status": "FAILED",
			"reason": "face not detected",
		})
	})

	c, _ := newTestFitRoom(t, mux)
	res, err := c.TryOn(context.Background(), Request{UserImage: []byte("u"), OutfitImage: []byte("o")})
	var failed *TaskFailedError
	if !errors.As(err, &failed) {
		t.Fatalf("want TaskFailedError, got %v", err)
	}
	if failed.Reason != "face not detected" {
		t.Errorf("Reason = %q", failed.Reason)
	}
	if res.TaskID != "task-9" {
		t.Errorf("TaskID should survive a failed poll, got %q", res.TaskID)
	}
}

func TestFitRoomTaskFailedWithoutReason(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"task_id": "task-10"})
	})
	mux.HandleFunc("GET /task-10", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"status": "failed"})
	})

	c, _ := newTestFitRoom(t, mux)
	_, err := c.TryOn(context.Background(), Request{UserImage: []byte("u"), OutfitImage: []byte("o")})
	var failed *TaskFailedError
	if !errors.As(err, &failed) {
		t.Fatalf("want TaskFailedError, got %v", err)
	}
	if failed.Reason != "Unknown reason" {
		t.Errorf("Reason = %q", failed.Reason)
	}
}

func TestFitRoomPollTimeout(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"task_id": "task-slow"})
	})
	mux.HandleFunc("GET /task-slow", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"status": "processing"})
	})

	c, _ := newTestFitRoom(t, mux)
	res, err := c.TryOn(context.Background(), Request{UserImage: []byte("u"), OutfitImage: []byte("o")})
	if !errors.Is(err, ErrPollTimeout) {
		t.Fatalf("want ErrPollTimeout, got %v", err)
	}
	if res.TaskID != "task-slow" {
		t.Errorf("TaskID should survive a timed-out poll, got %q", res.TaskID)
	}
}

func TestFitRoomPollErrorStatusFailsImmediately(t *testing.T) {
	var polls int32
	mux := http.NewServeMux()
	mux.HandleFunc("POST /", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"task_id": "task-err"})
	})
	mux.HandleFunc("GET /task-err", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&polls, 1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"error": "internal"})
	})

	c, _ := newTestFitRoom(t, mux)
	res, err := c.TryOn(context.Background(), Request{UserImage: []byte("u"), OutfitImage: []byte("o")})
	if err == nil || errors.Is(err, ErrPollTimeout) {
		t.Fatalf("want http error, got %v", err)
	}
	if !strings.Contains(err.Error(), "http 500") {
		t.Errorf("error should carry the upstream status, got %v", err)
	}
	if got := atomic.LoadInt32(&polls); got != 1 {
		t.Errorf("polled %d times, want 1", got)
	}
	if res.TaskID != "task-err" {
		t.Errorf("TaskID should survive a failed poll, got %q", res.TaskID)
	}
}

func TestFitRoomSubmitRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewFitRoomClient(FitRoomOptions{BaseURL: srv.URL, APIKey: "bad", HTTPClient: srv.Client()})
	_, err := c.TryOn(context.Background(), Request{UserImage: []byte("u"), OutfitImage: []byte("o")})
	var submit *SubmitError
	if !errors.As(err, &submit) {
		t.Fatalf("want SubmitError, got %v", err)
	}
	if submit.Status != http.StatusUnauthorized {
		t.Errorf("Status = %d", submit.Status)
	}
}

func TestMockClientResult(t *testing.T) {
	m := NewMockClient(time.Millisecond)
	res, err := m.TryOn(context.Background(), Request{OutfitID: 42})
	if err != nil {
		t.Fatalf("TryOn: %v", err)
	}
	if res.TaskID == "" {
		t.Error("expected a synthetic task id")
	}
	if !strings.Contains(res.ResultImageURL, "random=42") {
		t.Errorf("ResultImageURL = %q, want outfit id in query", res.ResultImageURL)
	}
}

func TestMockClientHonorsContext(t *testing.T) {
	m := NewMockClient(time.Minute)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := m.TryOn(ctx, Request{OutfitID: 1}); !errors.Is(err, context.Canceled) {
		t.Fatalf("want context.Canceled, got %v", err)
	}
}
