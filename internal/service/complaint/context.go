package complaint

import (
	"context"

	"github.com/google/uuid"

	"janmitra/internal/domain"
)

type loadedKey struct{}

// WithLoaded carries a complaint already fetched by a request guard so the
// service does not read it a second time.
func WithLoaded(ctx context.Context, c *domain.Complaint) context.Context {
	if c == nil {
		return ctx
	}
	return context.WithValue(ctx, loadedKey{}, c)
}

func loadedFrom(ctx context.Context, id uuid.UUID) *domain.Complaint {
	c, ok := ctx.Value(loadedKey{}).(*domain.Complaint)
	if !ok || c.ID != id {
		return nil
	}
	return c
}
