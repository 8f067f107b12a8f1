package tryon

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"
)

// Request carries one try-on job: the requester's photo, the outfit photo and
// the catalog's free-text garment hint.
type Request struct {
	OutfitID    int64
	UserImage   []byte
	OutfitImage []byte
	ClothHint   string
}

// Result is a finished try-on: the remote task handle and the signed URL of
// the composite image.
type Result struct {
	TaskID         string
	ResultImageURL string
}

// Client executes one try-on job against a synthesis backend. The real
// FitRoom client and the credential-less mock both satisfy it; callers never
// branch on which one they hold.
type Client interface {
	TryOn(ctx context.Context, req Request) (Result, error)
}

const (
	defaultPollInterval = 2 * time.Second
	defaultPollAttempts = 30
)

// FitRoomOptions configures a FitRoomClient.
type FitRoomOptions struct {
	BaseURL      string
	APIKey       string
	HTTPClient   *http.Client
	PollInterval time.Duration
	PollAttempts int
}

// FitRoomClient talks to the FitRoom try-on API: submit a multipart task,
// then poll its status at a fixed interval up to a fixed attempt budget.
type FitRoomClient struct {
	httpClient   *http.Client
	baseURL      string
	apiKey       string
	pollInterval time.Duration
	pollAttempts int
}

func NewFitRoomClient(opts FitRoomOptions) *FitRoomClient {
	base := strings.TrimRight(opts.BaseURL, "/")
	if base == "" {
		base = "https://platform.fitroom.app/api/tryon/v2/tasks"
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	interval := opts.PollInterval
	if interval <= 0 {
		interval = defaultPollInterval
	}
	attempts := opts.PollAttempts
	if attempts <= 0 {
		attempts = defaultPollAttempts
	}
	return &FitRoomClient{
		httpClient:   client,
		baseURL:      base,
		apiKey:       strings.TrimSpace(opts.APIKey),
		pollInterval: interval,
		pollAttempts: attempts,
	}
}

func (c *FitRoomClient) TryOn(ctx context.Context, req Request) (Result, error) {
	taskID, err := c.submit(ctx, req)
	if err != nil {
		return Result{}, err
	}
	url, err := c.poll(ctx, taskID)
	if err != nil {
		return Result{TaskID: taskID}, err
	}
	return Result{TaskID: taskID, ResultImageURL: url}, nil
}

type submitResponse struct {
	TaskID string `json:"task_id"`
}

type taskResponse struct {
	Status            string `json:"status"`
	DownloadSignedURL string `json:"download_signed_url"`
	Reason            string `json:"reason"`
}

func (c *FitRoomClient) submit(ctx context.Context, req Request) (string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := writeImagePart(mw, "model_image", "user.jpg", req.UserImage); err != nil {
		return "", fmt.Errorf("build payload: %w", err)
	}
	if err := writeImagePart(mw, "cloth_image", "outfit.jpg", req.OutfitImage); err != nil {
		return "", fmt.Errorf("build payload: %w", err)
	}
	if err := mw.WriteField("cloth_type", ClothType(req.ClothHint)); err != nil {
		return "", fmt.Errorf("build payload: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("build payload: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, &buf)
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", mw.FormDataContentType())
	httpReq.Header.Set("X-API-KEY", c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("submit task: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &SubmitError{Status: resp.StatusCode}
	}
	var out submitResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode submit response: %w", err)
	}
	if out.TaskID == "" {
		return "", fmt.Errorf("submit response missing task_id")
	}
	return out.TaskID, nil
}

// poll queries the task until it reaches a terminal state. The interval is
// fixed; there is no backoff. Attempt exhaustion and remote failure are
// distinct error paths.
func (c *FitRoomClient) poll(ctx context.Context, taskID string) (string, error) {
	for attempt := 0; attempt < c.pollAttempts; attempt++ {
		task, err := c.fetchTask(ctx, taskID)
		if err != nil {
			return "", err
		}
		switch strings.ToLower(task.Status) {
		case "completed":
			return task.DownloadSignedURL, nil
		case "failed":
			reason := task.Reason
			if reason == "" {
				reason = "Unknown reason"
			}
			return "", &TaskFailedError{Reason: reason}
		}
		if attempt < c.pollAttempts-1 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(c.pollInterval):
			}
		}
	}
	return "", ErrPollTimeout
}

func (c *FitRoomClient) fetchTask(ctx context.Context, taskID string) (taskResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/"+taskID, nil)
	if err != nil {
		return taskResponse{}, err
	}
	req.Header.Set("X-API-KEY", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return taskResponse{}, fmt.Errorf("poll task: %w", err)
	}
	defer resp.Body.Close()

	// An upstream error often carries a JSON body of its own; decoding it
	// would read as an empty status and look like a pending task, so the
	// status code decides first.
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return taskResponse{}, fmt.Errorf("poll task: http %d", resp.StatusCode)
	}
	var out taskResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return taskResponse{}, fmt.Errorf("decode task response: %w", err)
	}
	return out, nil
}

// writeImagePart adds a JPEG form part; CreateFormFile would tag it as
// octet-stream, which the remote API rejects.
func writeImagePart(mw *multipart.Writer, field, filename string, data []byte) error {
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, filename))
	header.Set("Content-Type", "image/jpeg")
	part, err := mw.CreatePart(header)
	if err != nil {
		return err
	}
	_, err = part.Write(data)
	return err
}

var _ Client = (*FitRoomClient)(nil)
