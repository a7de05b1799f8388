package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fekuna/pharmastock-service/internal/inventory/dto"
	"github.com/fekuna/pharmastock-service/internal/model"
	"github.com/jmoiron/sqlx"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

// snapshotSelect joins each drug with its stock row and the most recent
// reorder calculation. Drugs without a stock row report zero stock.
const snapshotSelect = `
    SELECT
        d.id AS drug_id,
        d.ml_drug_id,
        d.name AS drug_name,
        d.unit,
        COALESCE(i.quantity, 0) AS current_stock,
        d.reorder_level,
        d.calculated_reorder_level,
        rc.intelligent_reorder_level,
        d.reorder_quantity,
        d.lead_time_days,
        d.unit_cost
    FROM drugs d
    LEFT JOIN inventory i ON i.drug_id = d.id
    LEFT JOIN LATERAL (
        SELECT intelligent_reorder_level
        FROM reorder_calculations
        WHERE drug_id = d.id
        ORDER BY calculation_date DESC, created_at DESC
        LIMIT 1
    ) rc ON true
    WHERE d.is_active = true`

func (r *PGRepository) GetByDrug(ctx context.Context, drugID string) (*model.Inventory, error) {
	var inv model.Inventory
	err := r.DB.GetContext(ctx, &inv, `SELECT * FROM inventory WHERE drug_id = $1`, drugID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // caller creates defaults
		}
		return nil, err
	}
	return &inv, nil
}

func (r *PGRepository) GetSnapshot(ctx context.Context, drugID string) (*model.StockSnapshot, error) {
	var s model.StockSnapshot
	err := r.DB.GetContext(ctx, &s, snapshotSelect+` AND d.id = $1`, drugID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

func (r *PGRepository) ListSnapshots(ctx context.Context, f *dto.SnapshotFilters) ([]model.StockSnapshot, error) {
	query := snapshotSelect
	args := []interface{}{}

	if f != nil && len(f.DrugIDs) > 0 {
		q, a, err := sqlx.In(` AND d.id IN (?)`, f.DrugIDs)
		if err != nil {
			return nil, err
		}
		query += q
		args = append(args, a...)
	}
	if f != nil && f.CategoryID != "" {
		query += ` AND d.category_id = ?`
		args = append(args, f.CategoryID)
	}
	query += ` ORDER BY d.name ASC`

	// Rebind for Postgres ($1, $2...)
	query = r.DB.Rebind(query)

	var items []model.StockSnapshot
	if err := r.DB.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *PGRepository) ListMovements(ctx context.Context, f *dto.MovementFilters) ([]model.InventoryMovement, int, error) {
	var items []model.InventoryMovement
	var count int

	conditions := []string{}
	args := map[string]interface{}{}

	if f.DrugID != "" {
		conditions = append(conditions, "drug_id = :drug_id")
		args["drug_id"] = f.DrugID
	}
	if f.MovementType != "" {
		conditions = append(conditions, "movement_type = :movement_type")
		args["movement_type"] = f.MovementType
	}
	if f.StartDate != nil {
		conditions = append(conditions, "created_at >= :start_date")
		args["start_date"] = *f.StartDate
	}
	if f.EndDate != nil {
		conditions = append(conditions, "created_at < :end_date")
		args["end_date"] = *f.EndDate
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	countQuery := "SELECT count(*) FROM inventory_movements" + whereClause
	rows, err := r.DB.NamedQueryContext(ctx, countQuery, args)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	if rows.Next() {
		if err := rows.Scan(&count); err != nil {
			return nil, 0, err
		}
	}

	query := "SELECT * FROM inventory_movements" + whereClause + " ORDER BY created_at DESC"
	if f.PageSize > 0 {
		offset := (f.Page - 1) * f.PageSize
		if offset < 0 {
			offset = 0
		}
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.PageSize, offset)
	}

	nstmt, err := r.DB.PrepareNamedContext(ctx, query)
	if err != nil {
		return nil, 0, err
	}
	defer nstmt.Close()

	err = nstmt.SelectContext(ctx, &items, args)
	return items, count, err
}

// DailyUsage sums dispensed quantities per day since the given time. Days
// without dispensing are absent from the result.
func (r *PGRepository) DailyUsage(ctx context.Context, drugID string, since time.Time) ([]model.DailyUsage, error) {
	query := `
        SELECT date_trunc('day', created_at) AS day, SUM(-quantity_change) AS quantity
        FROM inventory_movements
        WHERE drug_id = $1 AND movement_type = $2 AND created_at >= $3
        GROUP BY 1
        ORDER BY 1 ASC
    `
	var usage []model.DailyUsage
	if err := r.DB.SelectContext(ctx, &usage, query, drugID, model.MovementDispense, since); err != nil {
		return nil, err
	}
	return usage, nil
}

func (r *PGRepository) AdjustStockWithMovement(ctx context.Context, inv *model.Inventory, movement *model.InventoryMovement) error {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	upsertQuery := `
        INSERT INTO inventory (id, drug_id, quantity, last_counted_at, updated_at)
        VALUES (:id, :drug_id, :quantity, :last_counted_at, :updated_at)
        ON CONFLICT (drug_id)
        DO UPDATE SET
            quantity = EXCLUDED.quantity,
            last_counted_at = EXCLUDED.last_counted_at,
            updated_at = EXCLUDED.updated_at
    `
	if _, err = tx.NamedExecContext(ctx, upsertQuery, inv); err != nil {
		return fmt.Errorf("failed to update inventory: %w", err)
	}

	insertLogQuery := `
        INSERT INTO inventory_movements (
            id, drug_id, movement_type, quantity_change, quantity_before, quantity_after,
            reference_type, reference_id, notes, created_by, created_at
        )
        VALUES (
            :id, :drug_id, :movement_type, :quantity_change, :quantity_before, :quantity_after,
            :reference_type, :reference_id, :notes, :created_by, :created_at
        )
    `
	if _, err = tx.NamedExecContext(ctx, insertLogQuery, movement); err != nil {
		return fmt.Errorf("failed to log movement: %w", err)
	}

	return tx.Commit()
}

func (r *PGRepository) SetCalculatedReorderLevel(ctx context.Context, drugID string, level *int) error {
	_, err := r.DB.ExecContext(ctx,
		`UPDATE drugs SET calculated_reorder_level = $1, updated_at = $2 WHERE id = $3`,
		level, time.Now(), drugID)
	return err
}
