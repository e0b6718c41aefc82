package recommend

import (
	"errors"
	"testing"
	"time"

	"spendlens/internal/models"
	"spendlens/internal/personas"
	"spendlens/internal/signals"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var selectionTime = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func highUtilContext() SignalContext {
	return *newContext(HighUtilizationData{
		Highest: CardContext{
			CardName:           "Rewards Visa",
			LastFour:           "4821",
			Balance:            4500,
			Limit:              5000,
			UtilizationPercent: 90,
			APRPercent:         24.99,
			MinimumPayment:     135,
			MonthlyInterest:    93.71,
		},
		MaxUtilizationPercent: 90,
		TargetPayment:         270,
		PaydownMonths:         12,
	})
}

func interestContext() SignalContext {
	return *newContext(InterestChargesData{
		Highest: CardContext{CardName: "Rewards Visa", Balance: 4500, APRPercent: 24.99, MonthlyInterest: 93.71},
	})
}

func subscriptionContext() SignalContext {
	return *newContext(SubscriptionData{
		RecurringCount:        5,
		MonthlyRecurringSpend: 58.95,
		SharePercent:          12,
		AnnualTotal:           707.4,
		PotentialSavings:      17.69,
		Merchants:             []string{"StreamFlix"},
	})
}

func selectorInput(personaID string, contexts ...SignalContext) Input {
	userID := uuid.New()
	assignment := personas.Assignment{
		UserID:      userID,
		PersonaID:   personaID,
		PersonaName: personaID,
		WindowDays:  30,
	}
	if personaID == "" {
		assignment.PersonaName = personas.NoPersonaName
	}
	return Input{
		User:       models.User{ID: userID, CreditScore: func() *int { v := 700; return &v }()},
		Signals:    signals.SignalSet{UserID: userID, WindowDays: 30, Income: signals.IncomeSignals{MonthlyIncome: 4000}},
		Assignment: assignment,
		Contexts:   contexts,
		Now:        selectionTime,
	}
}

func educationOf(out []Candidate) []Candidate {
	var edu []Candidate
	for _, c := range out {
		if c.Recommendation.Type == models.RecommendationEducation {
			edu = append(edu, c)
		}
	}
	return edu
}

func offersOf(out []Candidate) []Candidate {
	var offers []Candidate
	for _, c := range out {
		if c.Recommendation.Type == models.RecommendationOffer {
			offers = append(offers, c)
		}
	}
	return offers
}

func TestSelectConsistencyError(t *testing.T) {
	in := selectorInput(personas.PersonaHighUtilization)

	_, err := NewSelector(DefaultConfig()).Select(in)
	require.Error(t, err)
	var consistency *ConsistencyError
	require.True(t, errors.As(err, &consistency))
	assert.Equal(t, in.User.ID, consistency.UserID)
	assert.Contains(t, consistency.Reason, personas.PersonaHighUtilization)
}

func TestSelectNoPersonaNoSignalsIsEmpty(t *testing.T) {
	out, err := NewSelector(DefaultConfig()).Select(selectorInput(""))
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestSelectBuildsEducationAndOffers(t *testing.T) {
	in := selectorInput(personas.PersonaHighUtilization, highUtilContext())

	out, err := NewSelector(DefaultConfig()).Select(in)
	require.NoError(t, err)

	edu := educationOf(out)
	require.NotEmpty(t, edu)
	first := edu[0].Recommendation
	assert.Equal(t, "edu_utilization_basics", first.TemplateID)
	assert.Equal(t, string(SignalHighUtilization), first.SignalID)
	assert.Equal(t, personas.PersonaHighUtilization, first.Persona)
	assert.Equal(t, models.StatusPending, first.Status)
	assert.Contains(t, first.Content, educationDisclosure)
	assert.Contains(t, first.Rationale, "90.0% utilization")
	assert.Equal(t, selectionTime, first.CreatedAt)

	offers := offersOf(out)
	require.NotEmpty(t, offers)
	assert.Equal(t, "offer_balance_transfer", offers[0].Recommendation.OfferID)
	assert.Contains(t, offers[0].Recommendation.Content, offerDisclosure)
	require.NotNil(t, offers[0].Trace.Eligibility)
	assert.True(t, offers[0].Trace.Eligibility.Eligible)
}

func TestSelectCategoryDiversity(t *testing.T) {
	// Both signals offer templates in payment_planning: the second signal
	// must fall through to a different category.
	minPayment := *newContext(MinimumPaymentData{
		Highest: CardContext{CardName: "Rewards Visa", Balance: 4500, MinimumPayment: 135},
	})
	in := selectorInput(personas.PersonaHighUtilization, highUtilContext(), minPayment)

	out, err := NewSelector(DefaultConfig()).Select(in)
	require.NoError(t, err)

	categories := map[string]int{}
	for _, c := range educationOf(out) {
		tpl, ok := TemplateByID(c.Recommendation.TemplateID)
		require.True(t, ok)
		categories[tpl.Category]++
	}
	for category, count := range categories {
		assert.Equal(t, 1, count, "category %s appears %d times", category, count)
	}
}

func TestSelectOfferProductTypeDiversity(t *testing.T) {
	in := selectorInput(personas.PersonaHighUtilization, highUtilContext(), interestContext())

	out, err := NewSelector(DefaultConfig()).Select(in)
	require.NoError(t, err)

	types := map[string]int{}
	for _, c := range offersOf(out) {
		offer, ok := OfferByID(c.Recommendation.OfferID)
		require.True(t, ok)
		types[offer.ProductType]++
	}
	for productType, count := range types {
		assert.Equal(t, 1, count, "product type %s appears %d times", productType, count)
	}
}

func TestSelectCaps(t *testing.T) {
	in := selectorInput(personas.PersonaHighUtilization, highUtilContext(), interestContext(), subscriptionContext())

	out, err := NewSelector(Config{MaxEducation: 1, MaxOffers: 1}).Select(in)
	require.NoError(t, err)
	assert.Len(t, educationOf(out), 1)
	assert.Len(t, offersOf(out), 1)
}

func TestSelectPrimaryPersonaSignalsFirst(t *testing.T) {
	// Subscription context listed first, but the persona is high
	// utilization: its signals must be consumed first.
	in := selectorInput(personas.PersonaHighUtilization, subscriptionContext(), highUtilContext())

	out, err := NewSelector(DefaultConfig()).Select(in)
	require.NoError(t, err)

	edu := educationOf(out)
	require.NotEmpty(t, edu)
	assert.Equal(t, string(SignalHighUtilization), edu[0].Recommendation.SignalID)
}

func TestSelectSecondaryPersonaOrdering(t *testing.T) {
	in := selectorInput(personas.PersonaHighUtilization, subscriptionContext(), interestContext(), highUtilContext())
	in.Assignment.Matches = []personas.Match{
		{PersonaID: personas.PersonaHighUtilization, Priority: 1},
		{PersonaID: personas.PersonaSubscriptionHeavy, Priority: 3},
	}

	out, err := NewSelector(DefaultConfig()).Select(in)
	require.NoError(t, err)

	// High utilization exhausts both of its templates before interest and
	// subscription get their turn.
	edu := educationOf(out)
	require.Len(t, edu, 5)
	assert.Equal(t, string(SignalHighUtilization), edu[0].Recommendation.SignalID)
	assert.Equal(t, string(SignalHighUtilization), edu[1].Recommendation.SignalID)
	assert.Equal(t, string(SignalInterestCharges), edu[2].Recommendation.SignalID)
	assert.Equal(t, string(SignalSubscriptionHeavy), edu[3].Recommendation.SignalID)
}

func TestSelectExhaustsSignalTemplates(t *testing.T) {
	// Variable income carries three templates in three distinct categories;
	// with cap room all three must be selected, not just the first.
	variableIncome := *newContext(VariableIncomeData{
		MedianPayGapDays:     55,
		CashFlowBufferMonths: 0.5,
		AvgMonthlyExpenses:   900,
		TargetEmergencyFund:  2700,
		TargetMonthlySavings: 180,
	})
	in := selectorInput(personas.PersonaVariableIncome, variableIncome)

	out, err := NewSelector(DefaultConfig()).Select(in)
	require.NoError(t, err)

	edu := educationOf(out)
	require.Len(t, edu, 3)
	assert.Equal(t, "edu_variable_income_budget", edu[0].Recommendation.TemplateID)
	assert.Equal(t, "edu_starter_emergency_fund", edu[1].Recommendation.TemplateID)
	assert.Equal(t, "edu_income_smoothing", edu[2].Recommendation.TemplateID)
}

func TestSelectSkipsApprovedTemplates(t *testing.T) {
	in := selectorInput(personas.PersonaHighUtilization, highUtilContext())
	in.ApprovedTemplateIDs = map[string]bool{"edu_utilization_basics": true}

	out, err := NewSelector(DefaultConfig()).Select(in)
	require.NoError(t, err)

	edu := educationOf(out)
	require.NotEmpty(t, edu)
	assert.Equal(t, "edu_paydown_plan", edu[0].Recommendation.TemplateID)
}

func TestSelectSkipsApprovedOfferContent(t *testing.T) {
	balanceTransfer, ok := OfferByID("offer_balance_transfer")
	require.True(t, ok)

	in := selectorInput(personas.PersonaHighUtilization, highUtilContext())
	in.ApprovedOfferContents = map[string]bool{NormalizeContent(balanceTransfer.Content): true}

	out, err := NewSelector(DefaultConfig()).Select(in)
	require.NoError(t, err)
	for _, c := range offersOf(out) {
		assert.NotEqual(t, "offer_balance_transfer", c.Recommendation.OfferID)
	}
}

func TestSelectIneligibleOffersSkipped(t *testing.T) {
	in := selectorInput(personas.PersonaHighUtilization, highUtilContext())
	low := 520
	in.User.CreditScore = &low
	in.Signals.Income.MonthlyIncome = 0

	out, err := NewSelector(DefaultConfig()).Select(in)
	require.NoError(t, err)

	offers := offersOf(out)
	// Score and income gates exclude the cards and the loan; the ungated
	// monitoring offer survives.
	require.Len(t, offers, 1)
	assert.Equal(t, "offer_credit_monitoring", offers[0].Recommendation.OfferID)
}

func TestSelectTraceAttached(t *testing.T) {
	in := selectorInput(personas.PersonaHighUtilization, highUtilContext())

	out, err := NewSelector(DefaultConfig()).Select(in)
	require.NoError(t, err)
	require.NotEmpty(t, out)

	trace := out[0].Trace
	assert.Equal(t, TraceSchemaVersion, trace.SchemaVersion)
	assert.Equal(t, out[0].Recommendation.ID, trace.RecommendationID)
	assert.Equal(t, in.User.ID, trace.UserID)
	assert.Equal(t, personas.PersonaHighUtilization, trace.PersonaID)
	assert.NotEmpty(t, trace.Variables)
}

func TestNormalizeContent(t *testing.T) {
	assert.Equal(t, "move your balance today", NormalizeContent("  Move your\n\tbalance   TODAY "))
	assert.Equal(t, NormalizeContent("A  B"), NormalizeContent("a b"))
}
