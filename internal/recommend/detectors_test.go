package recommend

import (
	"testing"

	"spendlens/internal/models"
	"spendlens/internal/signals"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func limitOf(v float64) *float64 { return &v }

func cardAccount(balance, limit float64) models.Account {
	return models.Account{
		ID:             uuid.New(),
		Name:           "Rewards Visa",
		Mask:           "4821",
		Type:           models.AccountCreditCard,
		BalanceCurrent: balance,
		CreditLimit:    limitOf(limit),
	}
}

func highUtilizationInput() DetectInput {
	card := cardAccount(4500, 5000)
	return DetectInput{
		Signals: signals.SignalSet{
			WindowDays: 30,
			Credit: signals.CreditSignals{
				Utilizations:          map[string]float64{card.ID.String(): 90},
				MaxUtilizationPercent: 90,
				Flag30Percent:         true,
				Flag50Percent:         true,
				Flag80Percent:         true,
				NumCreditCards:        1,
			},
		},
		Accounts: []models.Account{card},
		Liabilities: []models.Liability{
			{AccountID: card.ID, Type: models.AccountCreditCard, APRPercent: 24.99, MinimumPayment: 135},
		},
	}
}

func TestDetectHighUtilization(t *testing.T) {
	in := highUtilizationInput()
	ctx := detectHighUtilization(in)
	require.NotNil(t, ctx)
	assert.Equal(t, SignalHighUtilization, ctx.ID)

	data, ok := ctx.Data.(HighUtilizationData)
	require.True(t, ok)
	require.Len(t, data.Cards, 1)
	assert.Equal(t, "Rewards Visa", data.Highest.CardName)
	assert.Equal(t, "4821", data.Highest.LastFour)
	assert.InDelta(t, 90, data.Highest.UtilizationPercent, 0.001)
	// 4500 * 24.99% / 12
	assert.InDelta(t, 93.7125, data.Highest.MonthlyInterest, 0.001)
	// Paydown plan: double the minimum until 30% of the limit.
	assert.InDelta(t, 270, data.TargetPayment, 0.001)
	// ceil((4500 - 1500) / 270) = 12
	assert.Equal(t, 12, data.PaydownMonths)
}

func TestDetectHighUtilizationBelowTrigger(t *testing.T) {
	in := highUtilizationInput()
	in.Signals.Credit.Flag50Percent = false
	assert.Nil(t, detectHighUtilization(in))
}

func TestCardContextsSortedByUtilization(t *testing.T) {
	low := cardAccount(300, 1000)
	high := cardAccount(900, 1000)
	in := DetectInput{
		Signals: signals.SignalSet{
			Credit: signals.CreditSignals{
				Utilizations: map[string]float64{
					low.ID.String():  30,
					high.ID.String(): 90,
				},
			},
		},
		Accounts: []models.Account{low, high},
	}

	cards := cardContexts(in)
	require.Len(t, cards, 2)
	assert.Equal(t, high.ID.String(), cards[0].AccountID)
	assert.Equal(t, low.ID.String(), cards[1].AccountID)
}

func TestDetectInterestCharges(t *testing.T) {
	in := highUtilizationInput()
	in.Signals.Credit.InterestChargesPresent = true

	ctx := detectInterestCharges(in)
	require.NotNil(t, ctx)
	data, ok := ctx.Data.(InterestChargesData)
	require.True(t, ok)
	assert.Equal(t, "Rewards Visa", data.Highest.CardName)

	in.Signals.Credit.InterestChargesPresent = false
	assert.Nil(t, detectInterestCharges(in))
}

func TestDetectMinimumPaymentOnly(t *testing.T) {
	in := highUtilizationInput()
	in.Signals.Credit.MinimumPaymentOnly = true

	ctx := detectMinimumPaymentOnly(in)
	require.NotNil(t, ctx)
	data, ok := ctx.Data.(MinimumPaymentData)
	require.True(t, ok)
	assert.InDelta(t, 135, data.Highest.MinimumPayment, 0.001)

	// Without a stated minimum on any card there is nothing to say.
	in.Liabilities = nil
	assert.Nil(t, detectMinimumPaymentOnly(in))
}

func TestDetectOverdueOnlyIncludesOverdueCards(t *testing.T) {
	current := cardAccount(500, 2000)
	late := cardAccount(900, 1000)
	in := DetectInput{
		Signals: signals.SignalSet{
			Credit: signals.CreditSignals{
				IsOverdue: true,
				Utilizations: map[string]float64{
					current.ID.String(): 25,
					late.ID.String():    90,
				},
			},
		},
		Accounts: []models.Account{current, late},
		Liabilities: []models.Liability{
			{AccountID: current.ID, Type: models.AccountCreditCard},
			{AccountID: late.ID, Type: models.AccountCreditCard, IsOverdue: true},
		},
	}

	ctx := detectOverdue(in)
	require.NotNil(t, ctx)
	data, ok := ctx.Data.(OverdueData)
	require.True(t, ok)
	require.Len(t, data.Cards, 1)
	assert.Equal(t, late.ID.String(), data.Primary.AccountID)
}

func TestDetectVariableIncome(t *testing.T) {
	checking := models.Account{ID: uuid.New(), Type: models.AccountChecking, BalanceAvailable: 450}
	in := DetectInput{
		Signals: signals.SignalSet{
			Income: signals.IncomeSignals{
				PayrollDetected:      true,
				MedianPayGapDays:     55,
				CashFlowBufferMonths: 0.5,
				PaymentFrequency:     signals.FrequencyVariable,
			},
			Savings: signals.SavingsSignals{AvgMonthlyExpenses: 900},
		},
		Accounts: []models.Account{checking},
	}

	ctx := detectVariableIncome(in)
	require.NotNil(t, ctx)
	data, ok := ctx.Data.(VariableIncomeData)
	require.True(t, ok)
	assert.InDelta(t, 450, data.CheckingBalance, 0.001)
	assert.InDelta(t, 2700, data.TargetEmergencyFund, 0.001)
	assert.InDelta(t, 180, data.TargetMonthlySavings, 0.001)

	in.Signals.Income.CashFlowBufferMonths = 1.2
	assert.Nil(t, detectVariableIncome(in))
}

func TestDetectSubscriptionHeavy(t *testing.T) {
	in := DetectInput{
		Signals: signals.SignalSet{
			Subscriptions: signals.SubscriptionSignals{
				RecurringMerchantCount:   5,
				MonthlyRecurringSpend:    58.95,
				SubscriptionSharePercent: 12,
				RecurringMerchants:       []string{"CloudDrive Plus", "StreamFlix"},
			},
		},
	}

	ctx := detectSubscriptionHeavy(in)
	require.NotNil(t, ctx)
	data, ok := ctx.Data.(SubscriptionData)
	require.True(t, ok)
	assert.InDelta(t, 707.4, data.AnnualTotal, 0.001)
	assert.InDelta(t, 17.685, data.PotentialSavings, 0.001)

	in.Signals.Subscriptions.RecurringMerchantCount = 2
	assert.Nil(t, detectSubscriptionHeavy(in))
}

func TestDetectSavingsBuilderNormalizesInflow(t *testing.T) {
	in := DetectInput{
		Signals: signals.SignalSet{
			WindowDays: 180,
			Savings: signals.SavingsSignals{
				NetInflow:           1500,
				GrowthRatePercent:   1,
				TotalSavingsBalance: 9800,
				AvgMonthlyExpenses:  1600,
				EmergencyFundMonths: 6.1,
			},
		},
	}

	ctx := detectSavingsBuilder(in)
	require.NotNil(t, ctx)
	data, ok := ctx.Data.(SavingsBuilderData)
	require.True(t, ok)
	// $1,500 over 180 days normalizes to $250/month.
	assert.InDelta(t, 250, data.NetInflow, 0.001)
	assert.InDelta(t, 9600, data.TargetEmergencyFund, 0.001)
	assert.InDelta(t, 441, data.AdditionalInterestYearly, 0.001)
	assert.InDelta(t, 50, data.IncreaseAmount, 0.001)
}

func TestDetectSavingsBuilderBlockedByUtilization(t *testing.T) {
	in := DetectInput{
		Signals: signals.SignalSet{
			WindowDays: 30,
			Savings:    signals.SavingsSignals{NetInflow: 500, GrowthRatePercent: 5},
			Credit:     signals.CreditSignals{NumCreditCards: 1, Flag30Percent: true},
		},
	}
	assert.Nil(t, detectSavingsBuilder(in))
}

func TestDetectMortgageSignals(t *testing.T) {
	in := DetectInput{
		Signals: signals.SignalSet{
			Loans: signals.LoanSignals{
				HasMortgage:            true,
				MortgageBalance:        310000,
				MortgageMonthlyPayment: 2150,
				MortgageInterestRate:   6.8,
				MonthlyIncomeUsed:      5500,
			},
		},
	}

	debt := detectMortgageDebt(in)
	require.NotNil(t, debt)
	debtData, ok := debt.Data.(MortgageDebtData)
	require.True(t, ok)
	assert.InDelta(t, 4.697, debtData.BalanceToIncomeRatio, 0.001)

	payment := detectMortgagePayment(in)
	require.NotNil(t, payment)
	payData, ok := payment.Data.(MortgagePaymentData)
	require.True(t, ok)
	assert.InDelta(t, 39.09, payData.PaymentBurdenPercent, 0.01)

	// Unknown income disables both loan detectors.
	in.Signals.Loans.MonthlyIncomeUsed = 0
	assert.Nil(t, detectMortgageDebt(in))
	assert.Nil(t, detectMortgagePayment(in))
}

func TestDetectStudentSignals(t *testing.T) {
	in := DetectInput{
		Signals: signals.SignalSet{
			Loans: signals.LoanSignals{
				HasStudentLoan:            true,
				StudentLoanBalance:        58000,
				StudentLoanMonthlyPayment: 620,
				StudentLoanInterestRate:   5.4,
				MonthlyIncomeUsed:         2200,
			},
		},
	}

	debt := detectStudentDebt(in)
	require.NotNil(t, debt)
	debtData, ok := debt.Data.(StudentDebtData)
	require.True(t, ok)
	assert.InDelta(t, 2.197, debtData.BalanceToIncomeRatio, 0.001)

	payment := detectStudentPayment(in)
	require.NotNil(t, payment)
	payData, ok := payment.Data.(StudentPaymentData)
	require.True(t, ok)
	assert.InDelta(t, 28.18, payData.PaymentBurdenPercent, 0.01)
	assert.InDelta(t, 220, payData.EstimatedIDRPayment, 0.001)
}

func TestDetectAllCanonicalOrder(t *testing.T) {
	in := highUtilizationInput()
	in.Signals.Credit.InterestChargesPresent = true
	in.Signals.Loans = signals.LoanSignals{
		HasMortgage:            true,
		MortgageBalance:        310000,
		MortgageMonthlyPayment: 2150,
		MonthlyIncomeUsed:      5500,
	}

	contexts := DetectAll(in)
	require.Len(t, contexts, 4)
	assert.Equal(t, SignalHighUtilization, contexts[0].ID)
	assert.Equal(t, SignalInterestCharges, contexts[1].ID)
	assert.Equal(t, SignalMortgageDebt, contexts[2].ID)
	assert.Equal(t, SignalMortgagePayment, contexts[3].ID)
}

func TestDetectAllQuietUser(t *testing.T) {
	assert.Empty(t, DetectAll(DetectInput{Signals: signals.SignalSet{WindowDays: 30}}))
}
