package tryon

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Resolver normalizes an image reference into raw bytes. References come in
// three shapes: inline data URIs, http(s) URLs, and local paths probed
// against a fixed list of roots.
type Resolver struct {
	httpClient *http.Client
	publicDir  string
	dataDir    string
	tempDir    string
}

// ResolverOptions configures a Resolver. Zero values get sane defaults.
type ResolverOptions struct {
	HTTPClient *http.Client
	PublicDir  string
	DataDir    string
	TempDir    string
}

func NewResolver(opts ResolverOptions) *Resolver {
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Resolver{
		httpClient: client,
		publicDir:  opts.PublicDir,
		dataDir:    opts.DataDir,
		tempDir:    opts.TempDir,
	}
}

// Resolve fetches the raw bytes behind ref. It performs no retries; retry
// policy belongs to the caller.
func (r *Resolver) Resolve(ctx context.Context, ref string) ([]byte, error) {
	ref = strings.TrimSpace(ref)
	switch {
	case ref == "":
		return nil, fmt.Errorf("%w: empty reference", ErrImageMissing)
	case strings.HasPrefix(ref, "data:"):
		return DecodeDataURI(ref)
	case strings.HasPrefix(ref, "http://"), strings.HasPrefix(ref, "https://"):
		return r.fetch(ctx, ref)
	default:
		return r.readLocal(ref)
	}
}

// DecodeDataURI decodes an inline base64 image payload. The data URI header
// is optional; a bare base64 string decodes as well.
func DecodeDataURI(ref string) ([]byte, error) {
	payload := ref
	if strings.HasPrefix(ref, "data:") {
		idx := strings.Index(ref, ",")
		if idx < 0 {
			return nil, fmt.Errorf("%w: data uri without payload", ErrImageDecode)
		}
		payload = ref[idx+1:]
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImageDecode, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty payload", ErrImageDecode)
	}
	return data, nil
}

func (r *Resolver) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImageFetch, err)
	}
	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImageFetch, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: http %d from %s", ErrImageFetch, resp.StatusCode, url)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImageFetch, err)
	}
	return data, nil
}

// readLocal probes the candidate roots in order and reads the first path
// that exists.
func (r *Resolver) readLocal(ref string) ([]byte, error) {
	for _, candidate := range r.candidates(ref) {
		if candidate == "" {
			continue
		}
		if _, err := os.Stat(candidate); err != nil {
			continue
		}
		data, err := os.ReadFile(candidate)
		if err != nil {
			continue
		}
		return data, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrImageMissing, ref)
}

func (r *Resolver) candidates(ref string) []string {
	if filepath.IsAbs(ref) {
		return []string{ref}
	}
	trimmed := strings.TrimPrefix(ref, "/")
	return []string{
		filepath.Join(r.publicDir, trimmed),
		filepath.Join(r.dataDir, strings.TrimPrefix(trimmed, "images/")),
		filepath.Join(r.tempDir, filepath.Base(ref)),
		trimmed,
	}
}
