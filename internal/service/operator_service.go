package service

import (
	"context"
	"errors"
	"time"

	"spendlens/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// OperatorService backs the review workflow: operators work through the
// pending and flagged queues and settle each item.
type OperatorService struct {
	recs   recommendationStore
	logger *zap.Logger
	now    func() time.Time
}

func NewOperatorService(recs recommendationStore, logger *zap.Logger) *OperatorService {
	return &OperatorService{
		recs:   recs,
		logger: logger,
		now:    time.Now,
	}
}

// reviewTargets are the statuses an operator may assign.
var reviewTargets = map[models.RecommendationStatus]bool{
	models.StatusApproved: true,
	models.StatusRejected: true,
	models.StatusHidden:   true,
}

// Queue lists recommendations awaiting review, oldest first.
func (s *OperatorService) Queue(ctx context.Context, status models.RecommendationStatus, limit uint64) ([]models.Recommendation, error) {
	if status != models.StatusPending && status != models.StatusFlagged {
		return nil, ErrInvalidStatus
	}
	if limit == 0 || limit > 200 {
		limit = 50
	}
	return s.recs.GetByStatus(ctx, status, limit)
}

// Review settles one recommendation. Only pending and flagged items can be
// reviewed, and only into approved, rejected, or hidden.
func (s *OperatorService) Review(ctx context.Context, id uuid.UUID, target models.RecommendationStatus) (*models.Recommendation, error) {
	if !reviewTargets[target] {
		return nil, ErrInvalidStatus
	}

	rec, err := s.recs.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRecommendationNotFound
		}
		return nil, err
	}
	if rec.Status != models.StatusPending && rec.Status != models.StatusFlagged {
		return nil, ErrInvalidStatus
	}

	now := s.now()
	if err := s.recs.UpdateStatus(ctx, rec.ID, target, now); err != nil {
		return nil, err
	}

	s.logger.Info("recommendation reviewed",
		zap.String("recommendation_id", rec.ID.String()),
		zap.String("from", string(rec.Status)),
		zap.String("to", string(target)),
	)

	rec.Status = target
	rec.UpdatedAt = now
	return rec, nil
}
