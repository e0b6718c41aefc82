package recommend

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRationaleQuotesConcreteValues(t *testing.T) {
	ctx := *newContext(HighUtilizationData{
		Highest: CardContext{CardName: "Rewards Visa", UtilizationPercent: 90},
	})
	assert.Equal(t,
		"Your Rewards Visa is at 90.0% utilization, above the 50% threshold where credit scores are typically affected.",
		Rationale(ctx))

	subs := *newContext(SubscriptionData{RecurringCount: 5, MonthlyRecurringSpend: 58.95, SharePercent: 12.4})
	assert.Equal(t,
		"You have 5 recurring subscriptions totaling $58.95 per month (12.4% of your spending).",
		Rationale(subs))
}

func TestRationaleCoversEveryVariant(t *testing.T) {
	contexts := []*SignalContext{
		newContext(HighUtilizationData{}),
		newContext(InterestChargesData{}),
		newContext(MinimumPaymentData{}),
		newContext(OverdueData{}),
		newContext(VariableIncomeData{}),
		newContext(SubscriptionData{}),
		newContext(SavingsBuilderData{}),
		newContext(MortgageDebtData{}),
		newContext(MortgagePaymentData{}),
		newContext(StudentDebtData{}),
		newContext(StudentPaymentData{}),
	}
	for _, ctx := range contexts {
		r := Rationale(*ctx)
		assert.NotEmpty(t, r)
		assert.False(t, strings.HasPrefix(r, "Triggered by"), "variant %s fell through to the generic rationale", ctx.ID)
	}
}

func TestOfferRationale(t *testing.T) {
	offer, ok := OfferByID("offer_subscription_manager")
	require.True(t, ok)
	ctx := *newContext(SubscriptionData{RecurringCount: 5, MonthlyRecurringSpend: 60, SharePercent: 11})

	r := OfferRationale(offer, ctx)
	assert.Contains(t, r, "5 recurring subscriptions")
	assert.True(t, strings.HasSuffix(r, "Find and Cancel Unused Subscriptions from Trimly addresses this directly."))
}

func TestWithDisclosure(t *testing.T) {
	content := "Pay the balance down below 30%."

	edu := WithDisclosure(content, false)
	assert.True(t, strings.HasPrefix(edu, content))
	assert.Contains(t, edu, educationDisclosure)
	assert.NotContains(t, edu, "sponsored offer")

	offer := WithDisclosure(content, true)
	assert.Contains(t, offer, offerDisclosure)
}

func TestWithDisclosureIdempotent(t *testing.T) {
	once := WithDisclosure("Some advice.", false)
	twice := WithDisclosure(once, false)
	assert.Equal(t, once, twice)

	offerOnce := WithDisclosure("An offer.", true)
	assert.Equal(t, offerOnce, WithDisclosure(offerOnce, true))
}

func TestWithDisclosureEmptyContent(t *testing.T) {
	assert.Equal(t, educationDisclosure, WithDisclosure("", false))
}

func TestToneViolations(t *testing.T) {
	assert.Empty(t, ToneViolations("Paying the balance down improves your score."))

	found := ToneViolations("Act NOW or face financial RUIN, you are bad with money!")
	assert.Contains(t, found, "act now or")
	assert.Contains(t, found, "financial ruin")
	assert.Contains(t, found, "bad with money")
}

func TestOfferCatalogTonePasses(t *testing.T) {
	for _, o := range offerCatalog {
		assert.Empty(t, ToneViolations(o.Title), "offer %s title", o.ID)
		assert.Empty(t, ToneViolations(o.Content), "offer %s content", o.ID)
	}
}
