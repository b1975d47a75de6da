// Package sweep periodically scans stock for ingredients below their minimum.
package sweep

import (
	"context"
	"fmt"
	"time"

	"github.com/vsinha/kitchen/pkg/domain/entities"
	"github.com/vsinha/kitchen/pkg/domain/repositories"
	"go.uber.org/zap"
)

// DefaultInterval is the time between sweeps
const DefaultInterval = 300 * time.Second

// LowStockNotifier receives every ingredient found below its minimum
type LowStockNotifier interface {
	LowStock(ctx context.Context, ingredient entities.Ingredient) error
}

// Sweeper runs the low-stock check on a ticker
type Sweeper struct {
	ingredients repositories.IngredientRepository
	notifier    LowStockNotifier
	interval    time.Duration
	timeout     time.Duration
	logger      *zap.Logger
}

// NewSweeper creates a sweeper; a non-positive interval uses DefaultInterval
func NewSweeper(ingredients repositories.IngredientRepository, notifier LowStockNotifier, interval time.Duration, logger *zap.Logger) *Sweeper {
	if interval <= 0 {
		interval = DefaultInterval
	}
	timeout := interval / 2
	if timeout > time.Minute {
		timeout = time.Minute
	}
	return &Sweeper{
		ingredients: ingredients,
		notifier:    notifier,
		interval:    interval,
		timeout:     timeout,
		logger:      logger,
	}
}

// Run sweeps once per interval until ctx is cancelled. A failed or panicking
// sweep is logged and the next tick runs as usual.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("low stock sweeper started", zap.Duration("interval", s.interval))
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("low stock sweeper stopped")
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

// Start runs Run in its own goroutine. The returned channel is closed once
// Run has returned, so callers can wait for an in-flight sweep to finish
// before releasing the store.
func (s *Sweeper) Start(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		s.Run(ctx)
	}()
	return done
}

func (s *Sweeper) tick(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("low stock sweep panicked", zap.Any("panic", r))
		}
	}()

	sweepCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	low, err := s.RunOnce(sweepCtx)
	if err != nil {
		s.logger.Error("low stock sweep failed", zap.Error(err))
		return
	}
	if len(low) > 0 {
		s.logger.Info("low stock sweep finished", zap.Int("low", len(low)))
	}
}

// RunOnce returns the ingredients below their minimum and notifies about each.
// Notification failures are logged, not returned.
func (s *Sweeper) RunOnce(ctx context.Context) ([]*entities.Ingredient, error) {
	low, err := s.ingredients.ListLowStock(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list low stock: %w", err)
	}

	for _, ingredient := range low {
		if err := s.notifier.LowStock(ctx, *ingredient); err != nil {
			s.logger.Warn("failed to emit low stock alert",
				zap.Int64("ingredient_id", int64(ingredient.ID)),
				zap.Error(err),
			)
		}
	}
	return low, nil
}
