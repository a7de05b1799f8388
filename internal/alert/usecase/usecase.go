package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/fekuna/pharmastock-service/internal/alert"
	"github.com/fekuna/pharmastock-service/internal/alert/dto"
	"github.com/fekuna/pharmastock-service/internal/apperr"
	invdto "github.com/fekuna/pharmastock-service/internal/inventory/dto"
	"github.com/fekuna/pharmastock-service/internal/model"
	"github.com/fekuna/pharmastock-service/internal/pkg/logger"
	"github.com/fekuna/pharmastock-service/internal/reorder"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const EventAlertRaised = "StockAlertRaised"

// SnapshotProvider is satisfied by inventory.UseCase.
type SnapshotProvider interface {
	ListSnapshots(ctx context.Context, filters *invdto.SnapshotFilters) ([]model.StockSnapshot, error)
}

type alertUseCase struct {
	repo      alert.Repository
	snapshots SnapshotProvider
	publisher alert.EventPublisher
	topic     string
	resolver  reorder.Resolver
	logger    logger.ZapLogger
	now       func() time.Time
}

// NewAlertUseCase builds the alert evaluator. publisher may be nil, in which
// case new alerts are only stored.
func NewAlertUseCase(
	repo alert.Repository,
	snapshots SnapshotProvider,
	publisher alert.EventPublisher,
	topic string,
	resolver reorder.Resolver,
	log logger.ZapLogger,
) alert.UseCase {
	return &alertUseCase{
		repo:      repo,
		snapshots: snapshots,
		publisher: publisher,
		topic:     topic,
		resolver:  resolver,
		logger:    log,
		now:       time.Now,
	}
}

// alertFor maps a stock status to the alert a drug should carry, if any.
func alertFor(status reorder.StockStatus, stock int) (alertType, severity string) {
	switch {
	case status == reorder.StatusCritical && stock == 0:
		return model.AlertOutOfStock, model.SeverityCritical
	case status == reorder.StatusCritical:
		return model.AlertCriticalStock, model.SeverityCritical
	case status == reorder.StatusLow:
		return model.AlertLowStock, model.SeverityWarning
	default:
		return "", ""
	}
}

func message(alertType string, s *model.StockSnapshot, level int) string {
	switch alertType {
	case model.AlertOutOfStock:
		return fmt.Sprintf("%s is out of stock (reorder level %d)", s.DrugName, level)
	case model.AlertCriticalStock:
		return fmt.Sprintf("%s is critically low: %d %s left, reorder level %d", s.DrugName, s.CurrentStock, s.Unit, level)
	default:
		return fmt.Sprintf("%s is below its reorder level: %d %s left, reorder level %d", s.DrugName, s.CurrentStock, s.Unit, level)
	}
}

func (uc *alertUseCase) EvaluateAlerts(ctx context.Context) (*dto.EvaluationResult, error) {
	snapshots, err := uc.snapshots.ListSnapshots(ctx, nil)
	if err != nil {
		return nil, err
	}
	open, err := uc.repo.ListOpen(ctx)
	if err != nil {
		return nil, err
	}

	openByDrug := make(map[string][]model.Alert)
	for _, a := range open {
		openByDrug[a.DrugID] = append(openByDrug[a.DrugID], a)
	}

	now := uc.now()
	result := &dto.EvaluationResult{Evaluated: len(snapshots)}
	var stale []string

	for i := range snapshots {
		s := &snapshots[i]
		eval := uc.resolver.Evaluate(s.Candidates(), s.CurrentStock)
		wantType, severity := alertFor(eval.Status, s.CurrentStock)

		hasWanted := false
		for _, a := range openByDrug[s.DrugID] {
			if a.Type == wantType {
				hasWanted = true
				continue
			}
			stale = append(stale, a.ID)
		}
		delete(openByDrug, s.DrugID)

		if wantType == "" || hasWanted {
			continue
		}

		a := &model.Alert{
			ID:           uuid.New().String(),
			DrugID:       s.DrugID,
			Type:         wantType,
			Severity:     severity,
			Status:       model.AlertStatusActive,
			Message:      message(wantType, s, eval.EffectiveLevel),
			CurrentStock: s.CurrentStock,
			ReorderLevel: eval.EffectiveLevel,
			CreatedAt:    now,
		}
		created, err := uc.repo.Create(ctx, a)
		if err != nil {
			return result, fmt.Errorf("create alert for %s: %w", s.DrugID, err)
		}
		if !created {
			continue
		}
		result.Created++
		uc.publish(ctx, a, s, eval)
	}

	// drugs that dropped out of the active catalog
	for _, alerts := range openByDrug {
		for _, a := range alerts {
			stale = append(stale, a.ID)
		}
	}

	if len(stale) > 0 {
		if err := uc.repo.Resolve(ctx, stale, now); err != nil {
			return result, fmt.Errorf("resolve stale alerts: %w", err)
		}
		result.Resolved = len(stale)
	}

	uc.logger.Info("stock alerts evaluated",
		zap.Int("evaluated", result.Evaluated),
		zap.Int("created", result.Created),
		zap.Int("resolved", result.Resolved),
	)
	return result, nil
}

func (uc *alertUseCase) publish(ctx context.Context, a *model.Alert, s *model.StockSnapshot, eval reorder.Evaluation) {
	if uc.publisher == nil {
		return
	}
	event := dto.AlertRaisedEvent{
		EventType:    EventAlertRaised,
		AlertID:      a.ID,
		DrugID:       a.DrugID,
		DrugName:     s.DrugName,
		Type:         a.Type,
		Severity:     a.Severity,
		CurrentStock: a.CurrentStock,
		ReorderLevel: a.ReorderLevel,
		Source:       string(eval.Source),
		Timestamp:    a.CreatedAt,
	}
	if err := uc.publisher.Publish(ctx, uc.topic, a.DrugID, event); err != nil {
		uc.logger.Error("failed to publish alert event", zap.String("alert_id", a.ID), zap.Error(err))
	}
}

func (uc *alertUseCase) ListAlerts(ctx context.Context, filters *dto.AlertFilters) ([]model.Alert, int, error) {
	if filters == nil {
		filters = &dto.AlertFilters{}
	}
	switch filters.Status {
	case "", model.AlertStatusActive, model.AlertStatusAcknowledged, model.AlertStatusResolved:
	default:
		return nil, 0, fmt.Errorf("%w: unknown alert status %q", apperr.ErrInvalidInput, filters.Status)
	}
	return uc.repo.List(ctx, filters)
}

func (uc *alertUseCase) ListOpen(ctx context.Context) ([]model.Alert, error) {
	return uc.repo.ListOpen(ctx)
}

func (uc *alertUseCase) get(ctx context.Context, id string) (*model.Alert, error) {
	a, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, fmt.Errorf("alert %s: %w", id, apperr.ErrNotFound)
	}
	return a, nil
}

func (uc *alertUseCase) AcknowledgeAlert(ctx context.Context, id, userID string) (*model.Alert, error) {
	a, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}
	switch a.Status {
	case model.AlertStatusResolved:
		return nil, fmt.Errorf("%w: alert %s is already resolved", apperr.ErrConflict, id)
	case model.AlertStatusAcknowledged:
		return a, nil
	}

	now := uc.now()
	if err := uc.repo.Acknowledge(ctx, id, userID, now); err != nil {
		return nil, err
	}
	a.Status = model.AlertStatusAcknowledged
	a.AcknowledgedBy = &userID
	a.AcknowledgedAt = &now
	return a, nil
}

func (uc *alertUseCase) ResolveAlert(ctx context.Context, id string) (*model.Alert, error) {
	a, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.Status == model.AlertStatusResolved {
		return a, nil
	}

	now := uc.now()
	if err := uc.repo.Resolve(ctx, []string{id}, now); err != nil {
		return nil, err
	}
	a.Status = model.AlertStatusResolved
	a.ResolvedAt = &now
	return a, nil
}
