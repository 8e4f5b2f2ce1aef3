package station

import (
	"context"

	"weighstation/internal/logger"
	"weighstation/internal/models"
	"weighstation/internal/repository"
)

// HistoryAPI is the backend read surface the history service needs.
type HistoryAPI interface {
	RecentWeighings(ctx context.Context, size int) ([]models.WeighingHistoryRecord, error)
}

// HistoryService reloads recent weighings from the backend and mirrors
// them into the local archive so slip issuance and exports keep working
// when the backend is briefly unreachable.
type HistoryService struct {
	api      HistoryAPI
	repo     repository.HistoryRepo
	log      *logger.Logger
	pageSize int
}

func NewHistoryService(api HistoryAPI, repo repository.HistoryRepo, log *logger.Logger, pageSize int) *HistoryService {
	if pageSize <= 0 {
		pageSize = 20
	}
	return &HistoryService{api: api, repo: repo, log: log, pageSize: pageSize}
}

// Reload fetches the newest records. Archiving is best-effort: an archive
// failure never fails the reload.
func (s *HistoryService) Reload(ctx context.Context) ([]models.WeighingHistoryRecord, error) {
	records, err := s.api.RecentWeighings(ctx, s.pageSize)
	if err != nil {
		return nil, err
	}
	if s.repo != nil {
		if err := s.repo.UpsertBatch(ctx, records); err != nil && s.log != nil {
			s.log.Warnw("history archive write failed", "err", err)
		}
	}
	return records, nil
}

// Archived reads records from the local archive, newest first.
func (s *HistoryService) Archived(ctx context.Context, limit int) ([]models.WeighingHistoryRecord, error) {
	if s.repo == nil {
		return nil, nil
	}
	return s.repo.ListRecent(ctx, limit)
}

// Record resolves one weighing for slip issuance, preferring the archive.
func (s *HistoryService) Record(ctx context.Context, weighingID int64) (*models.WeighingHistoryRecord, error) {
	if s.repo == nil {
		return nil, nil
	}
	return s.repo.Get(ctx, weighingID)
}
