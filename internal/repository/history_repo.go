package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"weighstation/internal/models"
)

type HistorySQLite struct {
	db *sql.DB
}

func NewHistorySQLite(db *sql.DB) *HistorySQLite {
	return &HistorySQLite{db: db}
}

const (
	upsertHistorySQL = `
		INSERT INTO weighing_history
			(weighing_id, dispatch_id, plate_number, company_name, item_name, mode, gross_kg, tare_kg, net_kg, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(weighing_id) DO UPDATE SET
			dispatch_id=excluded.dispatch_id,
			plate_number=excluded.plate_number,
			company_name=excluded.company_name,
			item_name=excluded.item_name,
			mode=excluded.mode,
			gross_kg=excluded.gross_kg,
			tare_kg=excluded.tare_kg,
			net_kg=excluded.net_kg,
			created_at=excluded.created_at
	`

	selectRecentSQL = `
		SELECT weighing_id, dispatch_id, plate_number, company_name, item_name, mode, gross_kg, tare_kg, net_kg, created_at
		FROM weighing_history ORDER BY created_at DESC LIMIT ?
	`

	selectOneSQL = `
		SELECT weighing_id, dispatch_id, plate_number, company_name, item_name, mode, gross_kg, tare_kg, net_kg, created_at
		FROM weighing_history WHERE weighing_id=?
	`
)

// UpsertBatch writes the fetched records in one transaction. Records are
// keyed by the server-issued weighing id; re-fetching is idempotent.
func (r *HistorySQLite) UpsertBatch(ctx context.Context, records []models.WeighingHistoryRecord) error {
	if len(records) == 0 {
		return nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, rec := range records {
		if _, err := tx.ExecContext(ctx, upsertHistorySQL,
			rec.WeighingID,
			nullableID(rec.DispatchID),
			rec.PlateNumber,
			rec.CompanyName,
			rec.ItemName,
			string(rec.Mode),
			rec.GrossWeight,
			rec.TareWeight,
			rec.NetWeight,
			rec.CreatedAt.UTC(),
		); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// ListRecent returns archived records newest first.
func (r *HistorySQLite) ListRecent(ctx context.Context, limit int) ([]models.WeighingHistoryRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.QueryContext(ctx, selectRecentSQL, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.WeighingHistoryRecord
	for rows.Next() {
		rec, err := scanRecord(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Get fetches one archived record, or nil when it was never archived.
func (r *HistorySQLite) Get(ctx context.Context, weighingID int64) (*models.WeighingHistoryRecord, error) {
	row := r.db.QueryRowContext(ctx, selectOneSQL, weighingID)
	rec, err := scanRecord(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}

func scanRecord(scan func(dest ...any) error) (models.WeighingHistoryRecord, error) {
	var rec models.WeighingHistoryRecord
	var dispatchID sql.NullInt64
	var createdAt time.Time
	if err := scan(
		&rec.WeighingID,
		&dispatchID,
		&rec.PlateNumber,
		&rec.CompanyName,
		&rec.ItemName,
		&rec.Mode,
		&rec.GrossWeight,
		&rec.TareWeight,
		&rec.NetWeight,
		&createdAt,
	); err != nil {
		return models.WeighingHistoryRecord{}, err
	}
	if dispatchID.Valid {
		id := dispatchID.Int64
		rec.DispatchID = &id
	}
	rec.CreatedAt = createdAt.UTC()
	return rec, nil
}

func nullableID(id *int64) any {
	if id == nil {
		return nil
	}
	return *id
}
