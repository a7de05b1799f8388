package dashboard

import (
	"context"

	"github.com/fekuna/pharmastock-service/internal/dashboard/dto"
)

type UseCase interface {
	// Summary aggregates stock status, open alerts and open orders.
	Summary(ctx context.Context) (*dto.Summary, error)
	// Refresh rebuilds the summary without reading the cache.
	Refresh(ctx context.Context) (*dto.Summary, error)
}
