package service

import (
	"context"
	"sync"
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

// memStore is an in-memory implementation of every store interface, shared
// across the service tests.
type memStore struct {
	mu           sync.Mutex
	users        map[uuid.UUID]*models.User
	accounts     []models.Account
	transactions []models.Transaction
	liabilities  []models.Liability
	recs         []*models.Recommendation
	traces       map[uuid.UUID]*models.DecisionTrace
	personaRows  []models.PersonaHistory
	consentRows  []models.ConsentLog
}

func newMemStore() *memStore {
	return &memStore{
		users:  map[uuid.UUID]*models.User{},
		traces: map[uuid.UUID]*models.DecisionTrace{},
	}
}

func (m *memStore) addUserData(user models.User, accounts []models.Account, transactions []models.Transaction, liabilities []models.Liability) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := user
	m.users[u.ID] = &u
	m.accounts = append(m.accounts, accounts...)
	m.transactions = append(m.transactions, transactions...)
	m.liabilities = append(m.liabilities, liabilities...)
}

// insertBatchLocked mirrors the repository's transactional insert: both
// slices land together. Callers hold m.mu.
func (m *memStore) insertBatchLocked(recommendations []*models.Recommendation, traces []*models.DecisionTrace) {
	for _, rec := range recommendations {
		c := *rec
		m.recs = append(m.recs, &c)
	}
	for _, tr := range traces {
		c := *tr
		m.traces[tr.RecommendationID] = &c
	}
}

func (m *memStore) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	u := *user
	return &u, nil
}

func (m *memStore) UpdateConsent(_ context.Context, id uuid.UUID, status bool, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	if !ok {
		return pgx.ErrNoRows
	}
	user.ConsentStatus = status
	user.ConsentUpdatedAt = &at
	user.UpdatedAt = at
	return nil
}

func (m *memStore) GetByUserID(_ context.Context, userID uuid.UUID) ([]models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Account
	for _, a := range m.accounts {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	return out, nil
}

// transactionsByUser satisfies transactionStore via the wrapper below;
// accountStore already claims the GetByUserID method name on memStore.
type transactionsByUser struct{ store *memStore }

func (t transactionsByUser) GetByUserID(_ context.Context, userID uuid.UUID) ([]models.Transaction, error) {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	var out []models.Transaction
	for _, tx := range t.store.transactions {
		if tx.UserID == userID {
			out = append(out, tx)
		}
	}
	return out, nil
}

type liabilitiesByUser struct{ store *memStore }

func (l liabilitiesByUser) GetByUserID(_ context.Context, userID uuid.UUID) ([]models.Liability, error) {
	l.store.mu.Lock()
	defer l.store.mu.Unlock()
	accountOwner := map[uuid.UUID]uuid.UUID{}
	for _, a := range l.store.accounts {
		accountOwner[a.ID] = a.UserID
	}
	var out []models.Liability
	for _, liab := range l.store.liabilities {
		if accountOwner[liab.AccountID] == userID {
			out = append(out, liab)
		}
	}
	return out, nil
}

// recStore implements recommendationStore.
type recStore struct{ store *memStore }

func (r recStore) CreateBatchWithTraces(_ context.Context, _ uuid.UUID, recommendations []*models.Recommendation, traces []*models.DecisionTrace) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.insertBatchLocked(recommendations, traces)
	return nil
}

func (r recStore) CreateBatchExclusive(_ context.Context, userID uuid.UUID, recommendations []*models.Recommendation, traces []*models.DecisionTrace) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, rec := range r.store.recs {
		if rec.UserID == userID && rec.IsActive() {
			return repository.ErrActiveBatchExists
		}
	}
	r.store.insertBatchLocked(recommendations, traces)
	return nil
}

func (r recStore) GetByID(_ context.Context, id uuid.UUID) (*models.Recommendation, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, rec := range r.store.recs {
		if rec.ID == id {
			c := *rec
			return &c, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r recStore) GetByUserID(_ context.Context, userID uuid.UUID) ([]models.Recommendation, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []models.Recommendation
	for _, rec := range r.store.recs {
		if rec.UserID == userID {
			out = append(out, *rec)
		}
	}
	return out, nil
}

func (r recStore) GetActiveByUserID(_ context.Context, userID uuid.UUID) ([]models.Recommendation, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []models.Recommendation
	for _, rec := range r.store.recs {
		if rec.UserID == userID && rec.IsActive() {
			out = append(out, *rec)
		}
	}
	return out, nil
}

func (r recStore) GetByStatus(_ context.Context, status models.RecommendationStatus, limit uint64) ([]models.Recommendation, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []models.Recommendation
	for _, rec := range r.store.recs {
		if rec.Status == status && uint64(len(out)) < limit {
			out = append(out, *rec)
		}
	}
	return out, nil
}

func (r recStore) UpdateStatus(_ context.Context, id uuid.UUID, status models.RecommendationStatus, at time.Time) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, rec := range r.store.recs {
		if rec.ID == id {
			rec.Status = status
			rec.UpdatedAt = at
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (r recStore) DeletePendingByUserID(_ context.Context, userID uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	kept := r.store.recs[:0]
	for _, rec := range r.store.recs {
		if rec.UserID == userID && rec.Status == models.StatusPending {
			continue
		}
		kept = append(kept, rec)
	}
	r.store.recs = kept
	return nil
}

// racingRecStore simulates losing the generation race: the first active-batch
// check sees nothing, the exclusive insert reports a concurrent winner, and
// later checks return the winner's batch.
type racingRecStore struct {
	recStore
	winner []models.Recommendation
	checks int
}

func (r *racingRecStore) GetActiveByUserID(_ context.Context, _ uuid.UUID) ([]models.Recommendation, error) {
	r.checks++
	if r.checks == 1 {
		return nil, nil
	}
	return r.winner, nil
}

func (r *racingRecStore) CreateBatchExclusive(_ context.Context, _ uuid.UUID, _ []*models.Recommendation, _ []*models.DecisionTrace) error {
	return repository.ErrActiveBatchExists
}

type traceMemStore struct{ store *memStore }

func (t traceMemStore) GetByRecommendationID(_ context.Context, recommendationID uuid.UUID) (*models.DecisionTrace, error) {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	tr, ok := t.store.traces[recommendationID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	c := *tr
	return &c, nil
}

type personaMemStore struct{ store *memStore }

func (p personaMemStore) Create(_ context.Context, history *models.PersonaHistory) error {
	p.store.mu.Lock()
	defer p.store.mu.Unlock()
	p.store.personaRows = append(p.store.personaRows, *history)
	return nil
}

func (p personaMemStore) ListByUserID(_ context.Context, userID uuid.UUID) ([]models.PersonaHistory, error) {
	p.store.mu.Lock()
	defer p.store.mu.Unlock()
	var out []models.PersonaHistory
	for _, row := range p.store.personaRows {
		if row.UserID == userID {
			out = append(out, row)
		}
	}
	return out, nil
}

type consentMemStore struct{ store *memStore }

func (c consentMemStore) Create(_ context.Context, log *models.ConsentLog) error {
	c.store.mu.Lock()
	defer c.store.mu.Unlock()
	c.store.consentRows = append(c.store.consentRows, *log)
	return nil
}

func (c consentMemStore) ListByUserID(_ context.Context, userID uuid.UUID) ([]models.ConsentLog, error) {
	c.store.mu.Lock()
	defer c.store.mu.Unlock()
	var out []models.ConsentLog
	for _, row := range c.store.consentRows {
		if row.UserID == userID {
			out = append(out, row)
		}
	}
	return out, nil
}

func newTestInsightService(store *memStore) *InsightService {
	return newTestInsightServiceWithRecs(store, recStore{store})
}

func newTestInsightServiceWithRecs(store *memStore, recs recommendationStore) *InsightService {
	logger := zap.NewNop()
	svc := NewInsightService(
		store,
		store,
		transactionsByUser{store},
		liabilitiesByUser{store},
		recs,
		traceMemStore{store},
		personaMemStore{store},
		consentMemStore{store},
		signals.NewEngine(signals.DefaultConfig(), logger),
		personas.NewClassifier(logger),
		recommend.NewSelector(recommend.DefaultConfig()),
		logger,
	)
	svc.now = func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }
	return svc
}
