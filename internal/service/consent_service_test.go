package service

import (
	"context"
	"testing"
	"time"

	"spendlens/internal/models"
	"spendlens/internal/seed"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestConsentService(store *memStore) *ConsentService {
	svc := NewConsentService(store, consentMemStore{store}, recStore{store}, newTestInsightService(store), zap.NewNop())
	svc.now = func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }
	return svc
}

func TestConsentUpdate(t *testing.T) {
	store := newMemStore()
	userID := seedUser(store, seed.ProfileQuiet)
	store.users[userID].ConsentStatus = false
	svc := newTestConsentService(store)

	user, err := svc.Update(context.Background(), userID, true, "api", "opted in from settings")
	require.NoError(t, err)
	assert.True(t, user.ConsentStatus)
	require.NotNil(t, user.ConsentUpdatedAt)
	assert.True(t, store.users[userID].ConsentStatus)

	require.Len(t, store.consentRows, 1)
	log := store.consentRows[0]
	assert.Equal(t, userID, log.UserID)
	assert.True(t, log.ConsentStatus)
	assert.Equal(t, "api", log.Source)
	assert.Equal(t, "opted in from settings", log.Notes)
}

func TestConsentUpdateSameValueStillLogged(t *testing.T) {
	store := newMemStore()
	userID := seedUser(store, seed.ProfileQuiet)
	svc := newTestConsentService(store)

	_, err := svc.Update(context.Background(), userID, true, "api", "")
	require.NoError(t, err)
	_, err = svc.Update(context.Background(), userID, true, "api", "")
	require.NoError(t, err)
	assert.Len(t, store.consentRows, 2)
}

func TestConsentRevocation(t *testing.T) {
	store := newMemStore()
	userID := seedUser(store, seed.ProfileHighUtilization)
	insight := newTestInsightService(store)
	consent := newTestConsentService(store)

	_, err := consent.Update(context.Background(), userID, false, "api", "user opted out")
	require.NoError(t, err)

	// Generation is blocked immediately after revocation.
	_, _, err = insight.GenerateRecommendations(context.Background(), userID)
	assert.ErrorIs(t, err, ErrConsentRequired)
}

func TestConsentGrantGeneratesBatch(t *testing.T) {
	store := newMemStore()
	userID := seedUser(store, seed.ProfileHighUtilization)
	store.users[userID].ConsentStatus = false
	svc := newTestConsentService(store)

	_, err := svc.Update(context.Background(), userID, true, "api", "opted in")
	require.NoError(t, err)

	// Opting in produces a batch right away, traces included.
	require.NotEmpty(t, store.recs)
	for _, rec := range store.recs {
		assert.Equal(t, userID, rec.UserID)
		assert.Contains(t, store.traces, rec.ID)
	}
}

func TestConsentRevocationPurgesPending(t *testing.T) {
	store := newMemStore()
	userID := seedUser(store, seed.ProfileHighUtilization)
	insight := newTestInsightService(store)
	consent := newTestConsentService(store)

	recs, _, err := insight.GenerateRecommendations(context.Background(), userID)
	require.NoError(t, err)
	require.NotEmpty(t, recs)
	require.NoError(t, recStore{store}.UpdateStatus(context.Background(), recs[0].ID, models.StatusApproved, time.Now()))

	_, err = consent.Update(context.Background(), userID, false, "api", "user opted out")
	require.NoError(t, err)

	// Pending items are gone; the reviewed one stays as history.
	require.Len(t, store.recs, 1)
	assert.Equal(t, recs[0].ID, store.recs[0].ID)
	assert.Equal(t, models.StatusApproved, store.recs[0].Status)
}

func TestConsentHistory(t *testing.T) {
	store := newMemStore()
	userID := seedUser(store, seed.ProfileQuiet)
	svc := newTestConsentService(store)

	_, err := svc.Update(context.Background(), userID, true, "api", "")
	require.NoError(t, err)
	_, err = svc.Update(context.Background(), userID, false, "operator", "support request")
	require.NoError(t, err)

	history, err := svc.History(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, history, 2)

	// Another user's trail stays separate.
	other := seedUserWithSeed(store, seed.ProfileSavingsBuilder, 7)
	otherHistory, err := svc.History(context.Background(), other)
	require.NoError(t, err)
	assert.Empty(t, otherHistory)
}

func TestConsentUnknownUser(t *testing.T) {
	svc := newTestConsentService(newMemStore())
	_, err := svc.Update(context.Background(), uuid.New(), true, "api", "")
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = svc.History(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrUserNotFound)
}
