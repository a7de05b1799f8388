package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fekuna/pharmastock-service/internal/alert/dto"
	"github.com/fekuna/pharmastock-service/internal/model"
	"github.com/jmoiron/sqlx"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

// Create inserts the alert unless the drug already has an open alert of the
// same type. It reports whether a row was written.
func (r *PGRepository) Create(ctx context.Context, a *model.Alert) (bool, error) {
	query := `
        INSERT INTO alerts (id, drug_id, type, severity, status, message, current_stock, reorder_level, created_at)
        VALUES (:id, :drug_id, :type, :severity, :status, :message, :current_stock, :reorder_level, :created_at)
        ON CONFLICT (drug_id, type) WHERE status IN ('active', 'acknowledged') DO NOTHING
    `
	res, err := r.DB.NamedExecContext(ctx, query, a)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *PGRepository) FindByID(ctx context.Context, id string) (*model.Alert, error) {
	var a model.Alert
	err := r.DB.GetContext(ctx, &a, `SELECT * FROM alerts WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

func (r *PGRepository) List(ctx context.Context, f *dto.AlertFilters) ([]model.Alert, int, error) {
	conditions := []string{}
	args := []interface{}{}

	add := func(cond string, v interface{}) {
		args = append(args, v)
		conditions = append(conditions, fmt.Sprintf(cond, len(args)))
	}
	if f.Status != "" {
		add("status = $%d", f.Status)
	}
	if f.Severity != "" {
		add("severity = $%d", f.Severity)
	}
	if f.DrugID != "" {
		add("drug_id = $%d", f.DrugID)
	}

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	if err := r.DB.GetContext(ctx, &total, "SELECT count(*) FROM alerts"+where, args...); err != nil {
		return nil, 0, err
	}

	query := "SELECT * FROM alerts" + where + " ORDER BY created_at DESC"
	if f.PageSize > 0 {
		page := f.Page
		if page < 1 {
			page = 1
		}
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.PageSize, (page-1)*f.PageSize)
	}

	var alerts []model.Alert
	if err := r.DB.SelectContext(ctx, &alerts, query, args...); err != nil {
		return nil, 0, err
	}
	return alerts, total, nil
}

func (r *PGRepository) ListOpen(ctx context.Context) ([]model.Alert, error) {
	var alerts []model.Alert
	err := r.DB.SelectContext(ctx, &alerts,
		`SELECT * FROM alerts WHERE status IN ($1, $2) ORDER BY created_at DESC`,
		model.AlertStatusActive, model.AlertStatusAcknowledged)
	return alerts, err
}

func (r *PGRepository) Acknowledge(ctx context.Context, id, userID string, at time.Time) error {
	_, err := r.DB.ExecContext(ctx, `
        UPDATE alerts SET status = $1, acknowledged_by = $2, acknowledged_at = $3
        WHERE id = $4 AND status = $5`,
		model.AlertStatusAcknowledged, userID, at, id, model.AlertStatusActive)
	return err
}

func (r *PGRepository) Resolve(ctx context.Context, ids []string, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	query, args, err := sqlx.In(`UPDATE alerts SET status = ?, resolved_at = ? WHERE id IN (?) AND status != ?`,
		model.AlertStatusResolved, at, ids, model.AlertStatusResolved)
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx, r.DB.Rebind(query), args...)
	return err
}
