package repository

import (
	"context"
	"database/sql"

	"weighstation/internal/models"
)

// HistoryRepo archives weighing history fetched from the backend so slips
// and exports keep working through backend hiccups.
type HistoryRepo interface {
	UpsertBatch(ctx context.Context, records []models.WeighingHistoryRecord) error
	ListRecent(ctx context.Context, limit int) ([]models.WeighingHistoryRecord, error)
	Get(ctx context.Context, weighingID int64) (*models.WeighingHistoryRecord, error)
}

type Repository struct {
	History HistoryRepo
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		History: NewHistorySQLite(db),
	}
}
