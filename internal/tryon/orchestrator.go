package tryon

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"mirror-server/internal/domain"
)

// Mode selects the inter-item pacing for a batch run.
type Mode string

const (
	// ModeBatch is the general try-on path: 2s between items.
	ModeBatch Mode = "batch"
	// ModeSuggestion is the AI-suggestion path: 500ms between items.
	ModeSuggestion Mode = "suggestion"
)

const (
	defaultBatchItemDelay      = 2 * time.Second
	defaultSuggestionItemDelay = 500 * time.Millisecond
)

// Orchestrator drives batch try-on jobs: one goroutine per batch, outfits
// processed strictly in order, progress persisted after every item so polling
// clients always see monotonic completed counts.
type Orchestrator struct {
	client          Client
	resolver        *Resolver
	batches         domain.BatchRepository
	logger          zerolog.Logger
	batchDelay      time.Duration
	suggestionDelay time.Duration
}

// OrchestratorOptions configures an Orchestrator. Delays default to the
// production pacing when zero.
type OrchestratorOptions struct {
	Client              Client
	Resolver            *Resolver
	Batches             domain.BatchRepository
	Logger              zerolog.Logger
	BatchItemDelay      time.Duration
	SuggestionItemDelay time.Duration
}

func NewOrchestrator(opts OrchestratorOptions) *Orchestrator {
	batchDelay := opts.BatchItemDelay
	if batchDelay <= 0 {
		batchDelay = defaultBatchItemDelay
	}
	suggestionDelay := opts.SuggestionItemDelay
	if suggestionDelay <= 0 {
		suggestionDelay = defaultSuggestionItemDelay
	}
	return &Orchestrator{
		client:          opts.Client,
		resolver:        opts.Resolver,
		batches:         opts.Batches,
		logger:          opts.Logger,
		batchDelay:      batchDelay,
		suggestionDelay: suggestionDelay,
	}
}

// Run processes every outfit in submission order and records each outcome.
// A single item's failure never aborts the batch; only an error from the
// record store itself flips the whole batch to failed. Cancellation is best
// effort: ctx is consulted between items only, so an in-flight remote call
// completes and its result is still recorded.
func (o *Orchestrator) Run(ctx context.Context, batchID string, outfits []domain.Outfit, userImageRef string, mode Mode) {
	if err := o.run(ctx, batchID, outfits, userImageRef, mode); err != nil {
		o.logger.Error().Err(err).Str("batch_id", batchID).Msg("batch aborted")
		if setErr := o.batches.SetStatus(context.Background(), batchID, domain.BatchStatusFailed); setErr != nil {
			o.logger.Error().Err(setErr).Str("batch_id", batchID).Msg("mark batch failed")
		}
		return
	}
	o.logger.Info().Str("batch_id", batchID).Int("total", len(outfits)).Msg("batch finished")
}

func (o *Orchestrator) run(ctx context.Context, batchID string, outfits []domain.Outfit, userImageRef string, mode Mode) error {
	delay := o.batchDelay
	if mode == ModeSuggestion {
		delay = o.suggestionDelay
	}

	for i, outfit := range outfits {
		res := o.TryOnOne(ctx, outfit, userImageRef)
		if err := o.batches.AppendResult(ctx, batchID, res); err != nil {
			return fmt.Errorf("append result for outfit %d: %w", outfit.ID, err)
		}
		if res.Status == domain.ResultStatusFailed {
			o.logger.Warn().
				Str("batch_id", batchID).
				Int64("outfit_id", outfit.ID).
				Str("error", res.Error).
				Msg("outfit try-on failed, continuing")
		}

		if i == len(outfits)-1 {
			break
		}
		if ctx.Err() != nil {
			o.logger.Info().Str("batch_id", batchID).Msg("batch stopped early, caller gone")
			return nil
		}
		select {
		case <-ctx.Done():
			o.logger.Info().Str("batch_id", batchID).Msg("batch stopped early, caller gone")
			return nil
		case <-time.After(delay):
		}
	}

	if mode == ModeSuggestion {
		// The suggestion path stamps the terminal state explicitly; the
		// append step has usually flipped it already, so this is a no-op
		// unless an item count mismatch slipped through.
		if err := o.batches.SetStatus(ctx, batchID, domain.BatchStatusCompleted); err != nil {
			return fmt.Errorf("mark batch completed: %w", err)
		}
	}
	return nil
}

// TryOnOne resolves both images and executes a single try-on, converting any
// failure into a failed result rather than an error. Also used directly by
// the synchronous single try-on endpoint.
func (o *Orchestrator) TryOnOne(ctx context.Context, outfit domain.Outfit, userImageRef string) domain.OutfitResult {
	userBytes, err := o.resolver.Resolve(ctx, userImageRef)
	if err != nil {
		return failedResult(outfit.ID, fmt.Errorf("user image: %w", err))
	}
	outfitBytes, err := o.resolver.Resolve(ctx, outfit.ImageURL)
	if err != nil {
		return failedResult(outfit.ID, fmt.Errorf("outfit image: %w", err))
	}

	res, err := o.client.TryOn(ctx, Request{
		OutfitID:    outfit.ID,
		UserImage:   userBytes,
		OutfitImage: outfitBytes,
		ClothHint:   outfit.ClothType,
	})
	if err != nil {
		out := failedResult(outfit.ID, err)
		out.TaskID = res.TaskID
		return out
	}

	return domain.OutfitResult{
		OutfitID:       outfit.ID,
		ResultImageURL: res.ResultImageURL,
		TaskID:         res.TaskID,
		Status:         domain.ResultStatusCompleted,
		ProcessedAt:    time.Now().UTC(),
	}
}

func failedResult(outfitID int64, err error) domain.OutfitResult {
	return domain.OutfitResult{
		OutfitID:    outfitID,
		Status:      domain.ResultStatusFailed,
		Error:       err.Error(),
		ProcessedAt: time.Now().UTC(),
	}
}
