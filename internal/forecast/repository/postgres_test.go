package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/fekuna/pharmastock-service/internal/model"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInsertAndListCalculations(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewPGRepository(sqlx.NewDb(db, "pgx"))

	now := time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC)
	mock.ExpectExec(`INSERT INTO reorder_calculations`).
		WithArgs("r1", "d1", now, 42, 30.5, 7, 3, now).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT \* FROM reorder_calculations\s+WHERE drug_id = \$1`).
		WithArgs("d1", 30).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "drug_id", "calculation_date", "intelligent_reorder_level",
			"predicted_demand", "forecast_days", "lead_time_days", "created_at",
		}).AddRow("r1", "d1", now, 42, 30.5, 7, 3, now))

	require.NoError(t, repo.InsertCalculation(context.Background(), &model.ReorderCalculation{
		ID: "r1", DrugID: "d1", CalculationDate: now, IntelligentReorderLevel: 42,
		PredictedDemand: 30.5, ForecastDays: 7, LeadTimeDays: 3, CreatedAt: now,
	}))

	rows, err := repo.ListCalculations(context.Background(), "d1", 0)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 42, rows[0].IntelligentReorderLevel)
	require.NoError(t, mock.ExpectationsWereMet())
}
