package repository

import (
	"context"

	"github.com/fekuna/pharmastock-service/internal/model"
	"github.com/jmoiron/sqlx"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) InsertCalculation(ctx context.Context, c *model.ReorderCalculation) error {
	query := `
        INSERT INTO reorder_calculations (id, drug_id, calculation_date, intelligent_reorder_level,
                                          predicted_demand, forecast_days, lead_time_days, created_at)
        VALUES (:id, :drug_id, :calculation_date, :intelligent_reorder_level,
                :predicted_demand, :forecast_days, :lead_time_days, :created_at)
    `
	_, err := r.DB.NamedExecContext(ctx, query, c)
	return err
}

func (r *PGRepository) ListCalculations(ctx context.Context, drugID string, limit int) ([]model.ReorderCalculation, error) {
	if limit <= 0 {
		limit = 30
	}
	var out []model.ReorderCalculation
	err := r.DB.SelectContext(ctx, &out, `
        SELECT * FROM reorder_calculations
        WHERE drug_id = $1
        ORDER BY calculation_date DESC, created_at DESC
        LIMIT $2`, drugID, limit)
	return out, err
}
