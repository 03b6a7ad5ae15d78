// Package jobs holds background work that runs alongside the HTTP server.
package jobs

import (
	"context"
	"time"

	"github.com/google/uuid"

	"janmitra/internal/domain"
	"janmitra/internal/logging"
)

const autoResolveTimeout = 5 * time.Minute

type StaleResolver interface {
	AutoResolveStale(ctx context.Context) ([]domain.Complaint, error)
}

// AutoResolver periodically resolves complaints left awaiting citizen
// confirmation for too long.
type AutoResolver struct {
	resolver StaleResolver
	interval time.Duration
}

func NewAutoResolver(resolver StaleResolver, interval time.Duration) *AutoResolver {
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	return &AutoResolver{resolver: resolver, interval: interval}
}

// Run blocks until ctx is cancelled.
func (j *AutoResolver) Run(ctx context.Context) error {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	logging.Info().Dur("interval", j.interval).Msg("auto-resolve job running")

	for {
		select {
		case <-ctx.Done():
			logging.Info().Msg("auto-resolve job shutting down")
			return ctx.Err()

		case <-ticker.C:
			if _, err := j.RunOnce(ctx); err != nil {
				logging.Warn().Err(err).Msg("scheduled auto-resolve failed")
			}
		}
	}
}

// RunOnce performs a single pass and returns the ids it resolved.
func (j *AutoResolver) RunOnce(ctx context.Context) ([]uuid.UUID, error) {
	runCtx, cancel := context.WithTimeout(ctx, autoResolveTimeout)
	defer cancel()

	resolved, err := j.resolver.AutoResolveStale(runCtx)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(resolved))
	for _, c := range resolved {
		ids = append(ids, c.ID)
	}
	return ids, nil
}
