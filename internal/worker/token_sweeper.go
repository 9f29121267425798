package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/aryan0dhankhar/interntrack/internal/domain"
	"github.com/aryan0dhankhar/interntrack/internal/observability/metrics"
)

// TokenSweeper periodically deletes expired bearer tokens. Expired tokens
// are already rejected at resolve time; the sweeper just keeps the table
// from accumulating dead rows.
type TokenSweeper struct {
	tokenRepo domain.TokenRepository
	ttl       time.Duration
	interval  time.Duration
	logger    *slog.Logger
	now       func() time.Time
}

// NewTokenSweeper creates a new token sweeper
func NewTokenSweeper(tokenRepo domain.TokenRepository, ttl, interval time.Duration, logger *slog.Logger) *TokenSweeper {
	if logger == nil {
		logger = slog.Default()
	}
	return &TokenSweeper{
		tokenRepo: tokenRepo,
		ttl:       ttl,
		interval:  interval,
		logger:    logger,
		now:       time.Now,
	}
}

// Start begins the sweeper loop. It blocks until the context is cancelled,
// so callers run it in a goroutine.
func (w *TokenSweeper) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Info("token sweeper started", slog.Duration("interval", w.interval))

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("token sweeper stopped")
			return
		case <-ticker.C:
			w.Sweep(ctx)
		}
	}
}

// Sweep deletes every token created before now-ttl and reports how many
// rows went away.
func (w *TokenSweeper) Sweep(ctx context.Context) {
	cutoff := w.now().Add(-w.ttl)

	removed, err := w.tokenRepo.DeleteExpired(ctx, cutoff)
	if err != nil {
		w.logger.Error("token sweep failed", slog.String("error", err.Error()))
		metrics.ObserveTokenSweep("error", 0)
		return
	}

	metrics.ObserveTokenSweep("success", removed)
	if removed > 0 {
		w.logger.Info("expired tokens removed", slog.Int64("count", removed))
	}
}
