package service

import (
	"context"
	"time"

	"spendlens/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// recommendationPurger clears a user's not-yet-reviewed batch.
type recommendationPurger interface {
	DeletePendingByUserID(ctx context.Context, userID uuid.UUID) error
}

// batchRegenerator produces a fresh recommendation batch for a user.
type batchRegenerator interface {
	RegenerateRecommendations(ctx context.Context, userID uuid.UUID) ([]models.Recommendation, error)
}

// ConsentService manages the recommendation opt-in flag and its audit trail.
// Consent transitions carry side effects: granting triggers a fresh
// generation run, revoking purges the pending batch.
type ConsentService struct {
	users    userStore
	consents consentStore
	recs     recommendationPurger
	insights batchRegenerator
	logger   *zap.Logger
	now      func() time.Time
}

func NewConsentService(users userStore, consents consentStore, recs recommendationPurger, insights batchRegenerator, logger *zap.Logger) *ConsentService {
	return &ConsentService{
		users:    users,
		consents: consents,
		recs:     recs,
		insights: insights,
		logger:   logger,
		now:      time.Now,
	}
}

// Update sets the consent flag and appends an audit row. Setting the same
// value again is still logged; the trail records intent, not just changes.
func (s *ConsentService) Update(ctx context.Context, userID uuid.UUID, status bool, source, notes string) (*models.User, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	previous := user.HasConsent()

	now := s.now()
	if err := s.users.UpdateConsent(ctx, user.ID, status, now); err != nil {
		return nil, err
	}
	if err := s.consents.Create(ctx, &models.ConsentLog{
		ID:            uuid.New(),
		UserID:        user.ID,
		ConsentStatus: status,
		Source:        source,
		Notes:         notes,
		CreatedAt:     now,
	}); err != nil {
		return nil, err
	}

	s.logger.Info("consent updated",
		zap.String("user_id", user.ID.String()),
		zap.Bool("status", status),
		zap.String("source", source),
	)

	switch {
	case status && !previous:
		// Grant: the user opted in, produce a batch right away.
		if _, err := s.insights.RegenerateRecommendations(ctx, user.ID); err != nil {
			return nil, err
		}
	case !status && previous:
		// Revoke: pending items must not linger for review. Already-reviewed
		// rows stay as audit history.
		if err := s.recs.DeletePendingByUserID(ctx, user.ID); err != nil {
			return nil, err
		}
	}

	user.ConsentStatus = status
	user.ConsentUpdatedAt = &now
	user.UpdatedAt = now
	return user, nil
}

func (s *ConsentService) History(ctx context.Context, userID uuid.UUID) ([]models.ConsentLog, error) {
	if _, err := s.getUser(ctx, userID); err != nil {
		return nil, err
	}
	return s.consents.ListByUserID(ctx, userID)
}

func (s *ConsentService) getUser(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}
