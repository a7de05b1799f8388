package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/fekuna/pharmastock-service/internal/drug/dto"
	"github.com/fekuna/pharmastock-service/internal/model"
	"github.com/jmoiron/sqlx"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) Create(ctx context.Context, d *model.Drug) error {
	query := `
        INSERT INTO drugs (id, category_id, ml_drug_id, name, generic_name, unit, reorder_level, calculated_reorder_level,
                           reorder_quantity, lead_time_days, unit_cost, is_active, created_at, updated_at)
        VALUES (:id, :category_id, :ml_drug_id, :name, :generic_name, :unit, :reorder_level, :calculated_reorder_level,
                :reorder_quantity, :lead_time_days, :unit_cost, :is_active, :created_at, :updated_at)
    `
	_, err := r.DB.NamedExecContext(ctx, query, d)
	return err
}

func (r *PGRepository) FindByID(ctx context.Context, id string) (*model.Drug, error) {
	var d model.Drug
	err := r.DB.GetContext(ctx, &d, `SELECT * FROM drugs WHERE id = $1 LIMIT 1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &d, nil
}

func (r *PGRepository) FindAll(ctx context.Context, f *dto.DrugFilters) ([]model.Drug, int, error) {
	var drugs []model.Drug
	var count int

	conditions := []string{}
	args := map[string]interface{}{}

	if f.CategoryID != "" {
		conditions = append(conditions, "category_id = :category_id")
		args["category_id"] = f.CategoryID
	}
	if f.IsActive != nil {
		conditions = append(conditions, "is_active = :is_active")
		args["is_active"] = *f.IsActive
	}
	if f.SearchQuery != "" {
		conditions = append(conditions, "(name ILIKE :search OR generic_name ILIKE :search)")
		args["search"] = "%" + f.SearchQuery + "%"
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	countQuery, countArgs, err := sqlx.Named("SELECT count(*) FROM drugs"+whereClause, args)
	if err != nil {
		return nil, 0, err
	}
	if err := r.DB.GetContext(ctx, &count, r.DB.Rebind(countQuery), countArgs...); err != nil {
		return nil, 0, fmt.Errorf("count drugs: %w", err)
	}

	orderBy := "name ASC"
	if f.SortBy != "" {
		// whitelisted, never interpolated from input
		switch f.SortBy {
		case "unit_cost":
			orderBy = "unit_cost"
		case "created_at":
			orderBy = "created_at"
		default:
			orderBy = "name"
		}
		if strings.ToLower(f.SortOrder) == "desc" {
			orderBy += " DESC"
		} else {
			orderBy += " ASC"
		}
	}

	query := fmt.Sprintf("SELECT * FROM drugs%s ORDER BY %s", whereClause, orderBy)
	if f.PageSize > 0 {
		page := f.Page
		if page < 1 {
			page = 1
		}
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.PageSize, (page-1)*f.PageSize)
	}

	listQuery, listArgs, err := sqlx.Named(query, args)
	if err != nil {
		return nil, 0, err
	}
	if err := r.DB.SelectContext(ctx, &drugs, r.DB.Rebind(listQuery), listArgs...); err != nil {
		return nil, 0, err
	}

	return drugs, count, nil
}

func (r *PGRepository) Update(ctx context.Context, d *model.Drug) error {
	query := `
        UPDATE drugs
        SET category_id = :category_id,
            ml_drug_id = :ml_drug_id,
            name = :name,
            generic_name = :generic_name,
            unit = :unit,
            reorder_quantity = :reorder_quantity,
            lead_time_days = :lead_time_days,
            unit_cost = :unit_cost,
            is_active = :is_active,
            updated_at = :updated_at
        WHERE id = :id
    `
	_, err := r.DB.NamedExecContext(ctx, query, d)
	return err
}

// Deactivate hides the drug from listings and snapshots. Movements and
// calculations keep referencing it.
func (r *PGRepository) Deactivate(ctx context.Context, id string) error {
	_, err := r.DB.ExecContext(ctx, `UPDATE drugs SET is_active = false, updated_at = NOW() WHERE id = $1`, id)
	return err
}

func (r *PGRepository) SetManualReorderLevel(ctx context.Context, id string, level *int) error {
	_, err := r.DB.ExecContext(ctx,
		`UPDATE drugs SET reorder_level = $1, updated_at = NOW() WHERE id = $2`, level, id)
	return err
}

func (r *PGRepository) IsNameUnique(ctx context.Context, name, excludeID string) (bool, error) {
	var count int
	query := `SELECT count(*) FROM drugs WHERE LOWER(name) = LOWER($1)`
	args := []interface{}{name}
	if excludeID != "" {
		query += ` AND id != $2`
		args = append(args, excludeID)
	}

	if err := r.DB.GetContext(ctx, &count, query, args...); err != nil {
		return false, err
	}
	return count == 0, nil
}
