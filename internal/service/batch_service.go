package service

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// BatchResult is the outcome of one user's generation within a batch run.
type BatchResult struct {
	UserID    uuid.UUID `json:"user_id"`
	Generated bool      `json:"generated"`
	Count     int       `json:"count"`
	Error     string    `json:"error,omitempty"`
}

// BatchService fans recommendation generation out over a bounded worker
// pool. One user failing does not stop the rest.
type BatchService struct {
	insight *InsightService
	workers int
	logger  *zap.Logger
}

func NewBatchService(insight *InsightService, workers int, logger *zap.Logger) *BatchService {
	if workers <= 0 {
		workers = 4
	}
	return &BatchService{
		insight: insight,
		workers: workers,
		logger:  logger,
	}
}

// GenerateForUsers runs generation for every user id, at most `workers` at a
// time. Results come back in input order.
func (s *BatchService) GenerateForUsers(ctx context.Context, userIDs []uuid.UUID) []BatchResult {
	results := make([]BatchResult, len(userIDs))
	sem := make(chan struct{}, s.workers)
	var wg sync.WaitGroup

	for i, userID := range userIDs {
		if ctx.Err() != nil {
			results[i] = BatchResult{UserID: userID, Error: ctx.Err().Error()}
			continue
		}
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, userID uuid.UUID) {
			defer wg.Done()
			defer func() { <-sem }()

			recommendations, generated, err := s.insight.GenerateRecommendations(ctx, userID)
			result := BatchResult{UserID: userID, Generated: generated, Count: len(recommendations)}
			if err != nil {
				result.Error = err.Error()
				s.logger.Warn("batch generation failed for user",
					zap.String("user_id", userID.String()),
					zap.Error(err),
				)
			}
			results[i] = result
		}(i, userID)
	}
	wg.Wait()

	s.logger.Info("batch generation finished",
		zap.Int("users", len(userIDs)),
		zap.Int("workers", s.workers),
	)
	return results
}
