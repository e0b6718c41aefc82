package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"spendlens/internal/models"
	"spendlens/internal/personas"
	"spendlens/internal/recommend"
	"spendlens/internal/repository"
	"spendlens/internal/signals"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// Narrow store interfaces over the repository layer, so the pipeline can be
// tested with in-memory fakes.
type userStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	UpdateConsent(ctx context.Context, id uuid.UUID, status bool, at time.Time) error
}

type accountStore interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) ([]models.Account, error)
}

type transactionStore interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) ([]models.Transaction, error)
}

type liabilityStore interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) ([]models.Liability, error)
}

type recommendationStore interface {
	CreateBatchWithTraces(ctx context.Context, userID uuid.UUID, recommendations []*models.Recommendation, traces []*models.DecisionTrace) error
	CreateBatchExclusive(ctx context.Context, userID uuid.UUID, recommendations []*models.Recommendation, traces []*models.DecisionTrace) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Recommendation, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) ([]models.Recommendation, error)
	GetActiveByUserID(ctx context.Context, userID uuid.UUID) ([]models.Recommendation, error)
	GetByStatus(ctx context.Context, status models.RecommendationStatus, limit uint64) ([]models.Recommendation, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.RecommendationStatus, at time.Time) error
	DeletePendingByUserID(ctx context.Context, userID uuid.UUID) error
}

type traceStore interface {
	GetByRecommendationID(ctx context.Context, recommendationID uuid.UUID) (*models.DecisionTrace, error)
}

type personaStore interface {
	Create(ctx context.Context, history *models.PersonaHistory) error
	ListByUserID(ctx context.Context, userID uuid.UUID) ([]models.PersonaHistory, error)
}

type consentStore interface {
	Create(ctx context.Context, log *models.ConsentLog) error
	ListByUserID(ctx context.Context, userID uuid.UUID) ([]models.ConsentLog, error)
}

// Insights is one user's full analysis for both windows.
type Insights struct {
	SignalsShort    signals.SignalSet   `json:"signals_30d"`
	SignalsLong     signals.SignalSet   `json:"signals_180d"`
	AssignmentShort personas.Assignment `json:"persona_30d"`
	AssignmentLong  personas.Assignment `json:"persona_180d"`
	Primary         personas.Assignment `json:"persona"`
}

// InsightService runs the full pipeline: signals, persona, recommendation
// selection, and trace persistence.
type InsightService struct {
	users        userStore
	accounts     accountStore
	transactions transactionStore
	liabilities  liabilityStore
	recs         recommendationStore
	traces       traceStore
	personaHist  personaStore
	consents     consentStore

	engine     *signals.Engine
	classifier *personas.Classifier
	selector   *recommend.Selector
	logger     *zap.Logger
	now        func() time.Time
}

func NewInsightService(
	users userStore,
	accounts accountStore,
	transactions transactionStore,
	liabilities liabilityStore,
	recs recommendationStore,
	traces traceStore,
	personaHist personaStore,
	consents consentStore,
	engine *signals.Engine,
	classifier *personas.Classifier,
	selector *recommend.Selector,
	logger *zap.Logger,
) *InsightService {
	return &InsightService{
		users:        users,
		accounts:     accounts,
		transactions: transactions,
		liabilities:  liabilities,
		recs:         recs,
		traces:       traces,
		personaHist:  personaHist,
		consents:     consents,
		engine:       engine,
		classifier:   classifier,
		selector:     selector,
		logger:       logger,
		now:          time.Now,
	}
}

// GetInsights computes signals and persona assignments for both windows.
// Read-only: nothing is persisted.
func (s *InsightService) GetInsights(ctx context.Context, userID uuid.UUID) (*Insights, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	accounts, transactions, liabilities, err := s.loadRecords(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	short, long := s.engine.ComputeBoth(user.ID, accounts, transactions, liabilities, s.now())
	shortAssignment := s.classifier.Classify(short)
	longAssignment := s.classifier.Classify(long)

	return &Insights{
		SignalsShort:    short,
		SignalsLong:     long,
		AssignmentShort: shortAssignment,
		AssignmentLong:  longAssignment,
		Primary:         personas.Primary(shortAssignment, longAssignment),
	}, nil
}

// GenerateRecommendations runs the pipeline for one user. Idempotent: if the
// user already has active recommendations, the existing batch is returned
// and nothing is generated. The bool reports whether a new batch was made.
func (s *InsightService) GenerateRecommendations(ctx context.Context, userID uuid.UUID) ([]models.Recommendation, bool, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, false, err
	}
	if err := s.requireConsent(ctx, user); err != nil {
		return nil, false, err
	}

	active, err := s.recs.GetActiveByUserID(ctx, user.ID)
	if err != nil {
		return nil, false, err
	}
	if len(active) > 0 {
		return active, false, nil
	}

	generated, err := s.generate(ctx, user, nil, nil)
	if err != nil {
		return nil, false, err
	}

	// The exclusive insert rechecks for an active batch under a per-user
	// advisory lock, closing the race between the check above and here.
	recommendations, err := s.persist(ctx, user.ID, generated, true)
	if err != nil {
		if errors.Is(err, repository.ErrActiveBatchExists) {
			active, err = s.recs.GetActiveByUserID(ctx, user.ID)
			if err != nil {
				return nil, false, err
			}
			return active, false, nil
		}
		return nil, false, err
	}
	return recommendations, true, nil
}

// RegenerateRecommendations forces a fresh batch: pending items are deleted,
// while approved ones survive and suppress duplicates in the new batch.
func (s *InsightService) RegenerateRecommendations(ctx context.Context, userID uuid.UUID) ([]models.Recommendation, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.requireConsent(ctx, user); err != nil {
		return nil, err
	}

	if err := s.recs.DeletePendingByUserID(ctx, user.ID); err != nil {
		return nil, err
	}

	remaining, err := s.recs.GetActiveByUserID(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	approvedTemplates := map[string]bool{}
	approvedOffers := map[string]bool{}
	for _, rec := range remaining {
		if rec.Status != models.StatusApproved {
			continue
		}
		switch rec.Type {
		case models.RecommendationEducation:
			approvedTemplates[rec.TemplateID] = true
		case models.RecommendationOffer:
			approvedOffers[recommend.NormalizeContent(rec.Content)] = true
		}
	}

	generated, err := s.generate(ctx, user, approvedTemplates, approvedOffers)
	if err != nil {
		return nil, err
	}
	return s.persist(ctx, user.ID, generated, false)
}

func (s *InsightService) ListRecommendations(ctx context.Context, userID uuid.UUID) ([]models.Recommendation, error) {
	if _, err := s.getUser(ctx, userID); err != nil {
		return nil, err
	}
	return s.recs.GetByUserID(ctx, userID)
}

// GetTrace returns the persisted audit record for one recommendation.
func (s *InsightService) GetTrace(ctx context.Context, recommendationID uuid.UUID) (*models.DecisionTrace, error) {
	trace, err := s.traces.GetByRecommendationID(ctx, recommendationID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTraceNotFound
		}
		return nil, err
	}
	return trace, nil
}

func (s *InsightService) PersonaHistory(ctx context.Context, userID uuid.UUID) ([]models.PersonaHistory, error) {
	if _, err := s.getUser(ctx, userID); err != nil {
		return nil, err
	}
	return s.personaHist.ListByUserID(ctx, userID)
}

// generate runs compute, classify, detect, and select without touching
// storage, returning the candidates to persist.
func (s *InsightService) generate(
	ctx context.Context,
	user *models.User,
	approvedTemplates, approvedOffers map[string]bool,
) ([]recommend.Candidate, error) {
	accounts, transactions, liabilities, err := s.loadRecords(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	short, long := s.engine.ComputeBoth(user.ID, accounts, transactions, liabilities, now)
	shortAssignment := s.classifier.Classify(short)
	longAssignment := s.classifier.Classify(long)
	primary := personas.Primary(shortAssignment, longAssignment)

	if err := s.recordPersona(ctx, shortAssignment); err != nil {
		return nil, err
	}
	if err := s.recordPersona(ctx, longAssignment); err != nil {
		return nil, err
	}

	// Detection and selection run on the window that decided the persona.
	active := short
	if primary.WindowDays == signals.WindowLongDays {
		active = long
	}
	contexts := recommend.DetectAll(recommend.DetectInput{
		Signals:     active,
		Accounts:    accounts,
		Liabilities: liabilities,
	})

	candidates, err := s.selector.Select(recommend.Input{
		User:                  *user,
		Accounts:              accounts,
		Liabilities:           liabilities,
		Transactions:          transactions,
		Signals:               active,
		Assignment:            primary,
		Contexts:              contexts,
		ApprovedTemplateIDs:   approvedTemplates,
		ApprovedOfferContents: approvedOffers,
		Now:                   now,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("recommendations generated",
		zap.String("user_id", user.ID.String()),
		zap.String("persona_id", primary.PersonaID),
		zap.Int("signals_triggered", len(contexts)),
		zap.Int("candidates", len(candidates)),
	)
	return candidates, nil
}

// persist writes the batch and its traces atomically. With exclusive set the
// insert refuses to run when the user already has an active batch.
func (s *InsightService) persist(ctx context.Context, userID uuid.UUID, candidates []recommend.Candidate, exclusive bool) ([]models.Recommendation, error) {
	recommendations := make([]*models.Recommendation, 0, len(candidates))
	traces := make([]*models.DecisionTrace, 0, len(candidates))
	for i := range candidates {
		c := candidates[i]
		payload, err := json.Marshal(c.Trace)
		if err != nil {
			return nil, err
		}
		recommendations = append(recommendations, &c.Recommendation)
		traces = append(traces, &models.DecisionTrace{
			ID:               uuid.New(),
			RecommendationID: c.Recommendation.ID,
			PersonaID:        c.Trace.PersonaID,
			SignalID:         string(c.Trace.Signal.ID),
			SchemaVersion:    c.Trace.SchemaVersion,
			Payload:          payload,
			CreatedAt:        c.Trace.CreatedAt,
		})
	}

	create := s.recs.CreateBatchWithTraces
	if exclusive {
		create = s.recs.CreateBatchExclusive
	}
	if err := create(ctx, userID, recommendations, traces); err != nil {
		return nil, err
	}

	out := make([]models.Recommendation, 0, len(recommendations))
	for _, rec := range recommendations {
		out = append(out, *rec)
	}
	return out, nil
}

func (s *InsightService) recordPersona(ctx context.Context, assignment personas.Assignment) error {
	signalsUsed, err := json.Marshal(assignment.SignalsUsed)
	if err != nil {
		return err
	}
	return s.personaHist.Create(ctx, &models.PersonaHistory{
		ID:          uuid.New(),
		UserID:      assignment.UserID,
		PersonaID:   assignment.PersonaID,
		PersonaName: assignment.PersonaName,
		WindowDays:  assignment.WindowDays,
		Reasoning:   assignment.Reasoning,
		SignalsUsed: signalsUsed,
		AssignedAt:  assignment.AssignedAt,
	})
}

// requireConsent gates generation on explicit opt-in and records the check
// in the audit trail.
func (s *InsightService) requireConsent(ctx context.Context, user *models.User) error {
	if user.HasConsent() {
		return nil
	}
	log := &models.ConsentLog{
		ID:            uuid.New(),
		UserID:        user.ID,
		ConsentStatus: false,
		Source:        "system",
		Notes:         "generation blocked: no consent on file",
		CreatedAt:     s.now(),
	}
	if err := s.consents.Create(ctx, log); err != nil {
		s.logger.Warn("failed to record consent denial", zap.Error(err))
	}
	return ErrConsentRequired
}

func (s *InsightService) getUser(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *InsightService) loadRecords(ctx context.Context, userID uuid.UUID) ([]models.Account, []models.Transaction, []models.Liability, error) {
	accounts, err := s.accounts.GetByUserID(ctx, userID)
	if err != nil {
		return nil, nil, nil, err
	}
	transactions, err := s.transactions.GetByUserID(ctx, userID)
	if err != nil {
		return nil, nil, nil, err
	}
	liabilities, err := s.liabilities.GetByUserID(ctx, userID)
	if err != nil {
		return nil, nil, nil, err
	}
	return accounts, transactions, liabilities, nil
}
