package alert

import (
	"context"
	"time"

	"github.com/fekuna/pharmastock-service/internal/alert/dto"
	"github.com/fekuna/pharmastock-service/internal/model"
)

type Repository interface {
	Create(ctx context.Context, alert *model.Alert) (bool, error)
	FindByID(ctx context.Context, id string) (*model.Alert, error)
	List(ctx context.Context, filters *dto.AlertFilters) ([]model.Alert, int, error)
	// ListOpen returns active and acknowledged alerts.
	ListOpen(ctx context.Context) ([]model.Alert, error)
	Acknowledge(ctx context.Context, id, userID string, at time.Time) error
	Resolve(ctx context.Context, ids []string, at time.Time) error
}
