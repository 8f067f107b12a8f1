package domain

import (
	"math"
	"time"
)

// BatchStatus enumerates batch lifecycle states. Completed and failed are
// terminal; a batch is never reopened.
type BatchStatus string

const (
	BatchStatusProcessing BatchStatus = "processing"
	BatchStatusCompleted  BatchStatus = "completed"
	BatchStatusFailed     BatchStatus = "failed"
)

// ResultStatus enumerates per-outfit outcome states.
type ResultStatus string

const (
	ResultStatusCompleted ResultStatus = "completed"
	ResultStatusFailed    ResultStatus = "failed"
)

// OutfitResult is one processed item within a batch. Immutable once appended.
type OutfitResult struct {
	OutfitID       int64        `json:"outfitId"`
	ResultImageURL string       `json:"resultImageUrl,omitempty"`
	TaskID         string       `json:"taskId,omitempty"`
	Status         ResultStatus `json:"status"`
	Error          string       `json:"error,omitempty"`
	ProcessedAt    time.Time    `json:"processedAt"`
}

// BatchRecord tracks the progress of one try-on batch. It is created once,
// appended to by a single orchestrator goroutine, and read concurrently by
// polling clients.
type BatchRecord struct {
	ID             int64
	BatchID        string
	UserID         int64
	UserImagePath  string
	TotalOutfits   int
	CompletedCount int
	Status         BatchStatus
	Results        []OutfitResult
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Percentage reports batch progress rounded to whole percent.
func (b *BatchRecord) Percentage() int {
	if b.TotalOutfits <= 0 {
		return 0
	}
	return int(math.Round(float64(b.CompletedCount) / float64(b.TotalOutfits) * 100))
}

// IsTerminal reports whether no further status transition can occur.
func (s BatchStatus) IsTerminal() bool {
	return s == BatchStatusCompleted || s == BatchStatusFailed
}
