package recommend

import (
	"testing"

	"spendlens/internal/models"
	"spendlens/internal/signals"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scoreOf(v int) *int { return &v }

func checkByName(t *testing.T, result EligibilityResult, name string) EligibilityCheck {
	t.Helper()
	for _, c := range result.Checks {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("check %q not found in %+v", name, result.Checks)
	return EligibilityCheck{}
}

func TestCheckEligibilityAllGatesPass(t *testing.T) {
	offer, ok := OfferByID("offer_student_refinance")
	require.True(t, ok)
	user := models.User{ID: uuid.New(), CreditScore: scoreOf(700)}
	set := signals.SignalSet{Income: signals.IncomeSignals{MonthlyIncome: 4000}}
	accounts := []models.Account{{ID: uuid.New(), Type: models.AccountStudentLoan}}

	result := CheckEligibility(offer, user, set, accounts)

	assert.True(t, result.Eligible)
	assert.Equal(t, offer.ID, result.OfferID)
	require.Len(t, result.Checks, 4)
	assert.True(t, checkByName(t, result, "not_predatory").Passed)
	assert.True(t, checkByName(t, result, "min_credit_score").Passed)
	assert.True(t, checkByName(t, result, "min_monthly_income").Passed)
	assert.True(t, checkByName(t, result, "required_account_type").Passed)
}

func TestCheckEligibilityRunsAllChecksAfterFailure(t *testing.T) {
	offer, ok := OfferByID("offer_student_refinance")
	require.True(t, ok)
	// Score fails, income passes, account type fails: every gate must still
	// be recorded.
	user := models.User{ID: uuid.New(), CreditScore: scoreOf(580)}
	set := signals.SignalSet{Income: signals.IncomeSignals{MonthlyIncome: 4000}}

	result := CheckEligibility(offer, user, set, nil)

	assert.False(t, result.Eligible)
	require.Len(t, result.Checks, 4)
	assert.False(t, checkByName(t, result, "min_credit_score").Passed)
	assert.True(t, checkByName(t, result, "min_monthly_income").Passed)
	assert.False(t, checkByName(t, result, "required_account_type").Passed)
}

func TestCheckEligibilityUnknownScoreFails(t *testing.T) {
	offer, ok := OfferByID("offer_balance_transfer")
	require.True(t, ok)
	user := models.User{ID: uuid.New()}

	result := CheckEligibility(offer, user, signals.SignalSet{}, nil)

	assert.False(t, result.Eligible)
	check := checkByName(t, result, "min_credit_score")
	assert.False(t, check.Passed)
	assert.Contains(t, check.Detail, "credit score unknown")
}

func TestCheckEligibilityMaxUtilization(t *testing.T) {
	offer, ok := OfferByID("offer_rewards_card")
	require.True(t, ok)
	user := models.User{ID: uuid.New(), CreditScore: scoreOf(720)}

	under := signals.SignalSet{Credit: signals.CreditSignals{MaxUtilizationPercent: 22}}
	assert.True(t, CheckEligibility(offer, user, under, nil).Eligible)

	over := signals.SignalSet{Credit: signals.CreditSignals{MaxUtilizationPercent: 45}}
	result := CheckEligibility(offer, user, over, nil)
	assert.False(t, result.Eligible)
	assert.False(t, checkByName(t, result, "max_utilization").Passed)
}

func TestCheckEligibilityExcludesExistingAccountType(t *testing.T) {
	offer, ok := OfferByID("offer_hysa_boost")
	require.True(t, ok)
	user := models.User{ID: uuid.New(), CreditScore: scoreOf(700)}

	// A savings-account offer never goes to someone who already has one.
	withSavings := []models.Account{{ID: uuid.New(), Type: models.AccountSavings}}
	result := CheckEligibility(offer, user, signals.SignalSet{}, withSavings)
	assert.False(t, result.Eligible)
	check := checkByName(t, result, "no_existing_account")
	assert.False(t, check.Passed)
	assert.Contains(t, check.Detail, "already holds")

	withMoneyMarket := []models.Account{{ID: uuid.New(), Type: models.AccountMoneyMarket}}
	assert.False(t, CheckEligibility(offer, user, signals.SignalSet{}, withMoneyMarket).Eligible)

	checkingOnly := []models.Account{{ID: uuid.New(), Type: models.AccountChecking}}
	result = CheckEligibility(offer, user, signals.SignalSet{}, checkingOnly)
	assert.True(t, result.Eligible)
	assert.True(t, checkByName(t, result, "no_existing_account").Passed)
}

func TestCheckEligibilityPredatoryBlocked(t *testing.T) {
	offer := Offer{ID: "offer_fast_cash", ProductType: "payday_loan", Title: "Fast Cash"}

	result := CheckEligibility(offer, models.User{ID: uuid.New()}, signals.SignalSet{}, nil)

	assert.False(t, result.Eligible)
	check := checkByName(t, result, "not_predatory")
	assert.False(t, check.Passed)
	assert.Contains(t, check.Detail, "blocklisted")
}

func TestCheckEligibilityNoRequirements(t *testing.T) {
	offer, ok := OfferByID("offer_budgeting_app")
	require.True(t, ok)

	result := CheckEligibility(offer, models.User{ID: uuid.New()}, signals.SignalSet{}, nil)
	assert.True(t, result.Eligible)
	require.Len(t, result.Checks, 1)
	assert.Equal(t, "not_predatory", result.Checks[0].Name)
}

func TestOffersForSignalFiltersPredatory(t *testing.T) {
	for _, id := range []SignalID{SignalHighUtilization, SignalOverdue, SignalVariableIncome, SignalSavingsBuilder} {
		for _, o := range OffersForSignal(id) {
			assert.False(t, predatoryProductTypes[o.ProductType], "offer %s has predatory product type", o.ID)
		}
	}
}

func TestOffersForSignalCatalogOrder(t *testing.T) {
	offers := OffersForSignal(SignalHighUtilization)
	require.Len(t, offers, 3)
	assert.Equal(t, "offer_balance_transfer", offers[0].ID)
	assert.Equal(t, "offer_debt_consolidation", offers[1].ID)
	assert.Equal(t, "offer_credit_monitoring", offers[2].ID)
}
