package tryon

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// MockClient simulates the synthesis backend when no API credential is
// configured: one fixed delay, then a synthetic success. It is selected once
// at startup and substitutes the real client end to end.
type MockClient struct {
	delay time.Duration
}

func NewMockClient(delay time.Duration) *MockClient {
	if delay <= 0 {
		delay = 2 * time.Second
	}
	return &MockClient{delay: delay}
}

func (m *MockClient) TryOn(ctx context.Context, req Request) (Result, error) {
	select {
	case <-ctx.Done():
		return Result{}, ctx.Err()
	case <-time.After(m.delay):
	}
	return Result{
		TaskID:         uuid.NewString(),
		ResultImageURL: fmt.Sprintf("https://picsum.photos/400/600?random=%d", req.OutfitID),
	}, nil
}

var _ Client = (*MockClient)(nil)
