package application

import (
	"context"
	"time"

	"github.com/draftea/provisioning-system/provisioning-service/domain"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Recovery re-dispatches workflows that need driving but have no live lease,
// which is what a crashed instance leaves behind
type Recovery struct {
	repo       domain.WorkflowRepository
	dispatcher WorkflowDispatcher
	interval   time.Duration
	batchSize  int
	logger     zerolog.Logger
}

// NewRecovery creates a new Recovery
func NewRecovery(repo domain.WorkflowRepository, dispatcher WorkflowDispatcher, interval time.Duration, batchSize int, logger zerolog.Logger) *Recovery {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	if batchSize <= 0 {
		batchSize = 100
	}
	return &Recovery{
		repo:       repo,
		dispatcher: dispatcher,
		interval:   interval,
		batchSize:  batchSize,
		logger:     logger.With().Str("component", "recovery").Logger(),
	}
}

// Run scans immediately and then every interval until ctx ends
func (r *Recovery) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		if n, err := r.Scan(ctx); err != nil {
			r.logger.Error().Err(err).Msg("recovery scan failed")
		} else if n > 0 {
			r.logger.Info().Int("workflows", n).Msg("recovered workflows")
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Scan dispatches one batch of recoverable workflows and returns how many
// were handed over
func (r *Recovery) Scan(ctx context.Context) (int, error) {
	ids, err := r.repo.ListRecoverable(ctx, r.batchSize)
	if err != nil {
		return 0, errors.Wrap(err, "failed to list recoverable workflows")
	}

	n := 0
	for _, id := range ids {
		if r.dispatcher.Dispatch(id) {
			n++
		}
	}
	return n, nil
}
