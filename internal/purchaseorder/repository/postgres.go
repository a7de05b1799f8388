package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/fekuna/pharmastock-service/internal/model"
	"github.com/fekuna/pharmastock-service/internal/purchaseorder/dto"
	"github.com/jmoiron/sqlx"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) Create(ctx context.Context, po *model.PurchaseOrder) error {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	header := `
        INSERT INTO purchase_orders (id, order_number, supplier, status, total_cost, notes, created_by, created_at, updated_at)
        VALUES (:id, :order_number, :supplier, :status, :total_cost, :notes, :created_by, :created_at, :updated_at)
    `
	if _, err := tx.NamedExecContext(ctx, header, po); err != nil {
		return fmt.Errorf("failed to insert purchase order: %w", err)
	}

	line := `
        INSERT INTO purchase_order_items (id, purchase_order_id, drug_id, quantity, unit_cost, line_total)
        VALUES (:id, :purchase_order_id, :drug_id, :quantity, :unit_cost, :line_total)
    `
	for i := range po.Items {
		if _, err := tx.NamedExecContext(ctx, line, &po.Items[i]); err != nil {
			return fmt.Errorf("failed to insert purchase order item: %w", err)
		}
	}

	return tx.Commit()
}

func (r *PGRepository) FindByID(ctx context.Context, id string) (*model.PurchaseOrder, error) {
	var po model.PurchaseOrder
	if err := r.DB.GetContext(ctx, &po, `SELECT * FROM purchase_orders WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	if err := r.DB.SelectContext(ctx, &po.Items,
		`SELECT * FROM purchase_order_items WHERE purchase_order_id = $1 ORDER BY drug_id`, id); err != nil {
		return nil, err
	}
	return &po, nil
}

func (r *PGRepository) List(ctx context.Context, f *dto.PurchaseOrderFilters) ([]model.PurchaseOrder, int, error) {
	where := ""
	args := []interface{}{}
	if f.Status != "" {
		where = " WHERE status = $1"
		args = append(args, f.Status)
	}

	var total int
	if err := r.DB.GetContext(ctx, &total, "SELECT count(*) FROM purchase_orders"+where, args...); err != nil {
		return nil, 0, err
	}

	query := "SELECT * FROM purchase_orders" + where + " ORDER BY created_at DESC"
	if f.PageSize > 0 {
		page := f.Page
		if page < 1 {
			page = 1
		}
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.PageSize, (page-1)*f.PageSize)
	}

	var orders []model.PurchaseOrder
	if err := r.DB.SelectContext(ctx, &orders, query, args...); err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

func (r *PGRepository) ListOpen(ctx context.Context) ([]model.PurchaseOrder, error) {
	var orders []model.PurchaseOrder
	err := r.DB.SelectContext(ctx, &orders,
		`SELECT * FROM purchase_orders WHERE status IN ($1, $2) ORDER BY created_at DESC`,
		model.POStatusDraft, model.POStatusSubmitted)
	return orders, err
}

func (r *PGRepository) UpdateStatus(ctx context.Context, id, from, to string, at time.Time) (bool, error) {
	query := `UPDATE purchase_orders SET status = $1, updated_at = $2`
	switch to {
	case model.POStatusSubmitted:
		query += `, submitted_at = $2`
	case model.POStatusReceived:
		query += `, received_at = $2`
	}
	query += ` WHERE id = $3 AND status = $4`

	res, err := r.DB.ExecContext(ctx, query, to, at, id, from)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}
