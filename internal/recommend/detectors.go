package recommend

import (
	"math"
	"sort"

	"spendlens/internal/models"
	"spendlens/internal/signals"
)

// Detection thresholds. The credit and loan cutoffs intentionally mirror the
// persona rules; the detectors are finer-grained so a single persona can fan
// out into several distinct recommendations.
const (
	utilizationTrigger    = 50.0
	payGapTriggerDays     = 45.0
	bufferTriggerMonths   = 1.0
	minRecurringMerchants = 3
	recurringSpendTrigger = 50.0
	recurringShareTrigger = 10.0
	growthRateTrigger     = 2.0
	monthlyInflowTrigger  = 200.0
	mortgageDebtRatio     = 4.0
	mortgageBurdenPercent = 35.0
	studentDebtRatio      = 1.5
	studentBurdenPercent  = 25.0
	starterFundMonths     = 3.0
	fullFundMonths        = 6.0
	savingsRateTarget     = 0.20
	subscriptionTrimShare = 0.30
	highYieldSavingsAPY   = 0.045
	idrIncomeShare        = 0.10
)

// DetectInput bundles everything the detectors read: the computed signal set
// plus the raw accounts and liabilities needed for per-card detail.
type DetectInput struct {
	Signals     signals.SignalSet
	Accounts    []models.Account
	Liabilities []models.Liability
}

type detector struct {
	id     SignalID
	detect func(in DetectInput) *SignalContext
}

// detectors is the evaluation table in canonical order. Output order of
// DetectAll follows this table, which keeps selection deterministic.
var detectors = []detector{
	{SignalHighUtilization, detectHighUtilization},
	{SignalInterestCharges, detectInterestCharges},
	{SignalMinimumPaymentOnly, detectMinimumPaymentOnly},
	{SignalOverdue, detectOverdue},
	{SignalVariableIncome, detectVariableIncome},
	{SignalSubscriptionHeavy, detectSubscriptionHeavy},
	{SignalSavingsBuilder, detectSavingsBuilder},
	{SignalMortgageDebt, detectMortgageDebt},
	{SignalMortgagePayment, detectMortgagePayment},
	{SignalStudentDebt, detectStudentDebt},
	{SignalStudentPayment, detectStudentPayment},
}

// DetectAll evaluates every detector against one window's signals and
// returns the triggered contexts in canonical signal order.
func DetectAll(in DetectInput) []SignalContext {
	var out []SignalContext
	for _, d := range detectors {
		if ctx := d.detect(in); ctx != nil {
			out = append(out, *ctx)
		}
	}
	return out
}

// cardContexts builds the per-card detail shared by the credit detectors,
// sorted by descending utilization then balance.
func cardContexts(in DetectInput) []CardContext {
	byAccount := map[string]models.Liability{}
	for _, l := range in.Liabilities {
		byAccount[l.AccountID.String()] = l
	}

	var cards []CardContext
	for _, a := range in.Accounts {
		if a.Type != models.AccountCreditCard {
			continue
		}
		c := CardContext{
			AccountID: a.ID.String(),
			CardName:  a.DisplayName(),
			LastFour:  a.LastFour(),
			Balance:   a.BalanceCurrent,
		}
		if a.CreditLimit != nil {
			c.Limit = *a.CreditLimit
		}
		if util, ok := in.Signals.Credit.Utilizations[c.AccountID]; ok {
			c.UtilizationPercent = util
		}
		if l, ok := byAccount[c.AccountID]; ok {
			c.APRPercent = l.APRPercent
			c.MinimumPayment = l.MinimumPayment
			c.NextPaymentDue = l.NextPaymentDueDate
		}
		c.MonthlyInterest = c.Balance * c.APRPercent / 100 / 12
		cards = append(cards, c)
	}
	sort.SliceStable(cards, func(i, j int) bool {
		if cards[i].UtilizationPercent != cards[j].UtilizationPercent {
			return cards[i].UtilizationPercent > cards[j].UtilizationPercent
		}
		return cards[i].Balance > cards[j].Balance
	})
	return cards
}

func detectHighUtilization(in DetectInput) *SignalContext {
	if !in.Signals.Credit.Flag50Percent {
		return nil
	}
	var triggered []CardContext
	for _, c := range cardContexts(in) {
		if c.UtilizationPercent >= utilizationTrigger {
			triggered = append(triggered, c)
		}
	}
	if len(triggered) == 0 {
		return nil
	}

	highest := triggered[0]
	data := HighUtilizationData{
		Cards:                 triggered,
		Highest:               highest,
		MaxUtilizationPercent: in.Signals.Credit.MaxUtilizationPercent,
	}
	// Plan: double the minimum payment until the balance drops to 30% of the
	// limit.
	if highest.MinimumPayment > 0 {
		data.TargetPayment = highest.MinimumPayment * 2
		excess := highest.Balance - highest.Limit*0.30
		if excess > 0 {
			data.PaydownMonths = int(math.Ceil(excess / data.TargetPayment))
		}
	}
	return newContext(data)
}

func detectInterestCharges(in DetectInput) *SignalContext {
	if !in.Signals.Credit.InterestChargesPresent {
		return nil
	}
	cards := cardContexts(in)
	if len(cards) == 0 {
		return nil
	}
	return newContext(InterestChargesData{Cards: cards, Highest: cards[0]})
}

func detectMinimumPaymentOnly(in DetectInput) *SignalContext {
	if !in.Signals.Credit.MinimumPaymentOnly {
		return nil
	}
	var withMinimum []CardContext
	for _, c := range cardContexts(in) {
		if c.MinimumPayment > 0 {
			withMinimum = append(withMinimum, c)
		}
	}
	if len(withMinimum) == 0 {
		return nil
	}
	return newContext(MinimumPaymentData{Cards: withMinimum, Highest: withMinimum[0]})
}

func detectOverdue(in DetectInput) *SignalContext {
	if !in.Signals.Credit.IsOverdue {
		return nil
	}
	overdue := map[string]bool{}
	for _, l := range in.Liabilities {
		if l.Type == models.AccountCreditCard && l.IsOverdue {
			overdue[l.AccountID.String()] = true
		}
	}
	var cards []CardContext
	for _, c := range cardContexts(in) {
		if overdue[c.AccountID] {
			cards = append(cards, c)
		}
	}
	if len(cards) == 0 {
		return nil
	}
	return newContext(OverdueData{Cards: cards, Primary: cards[0]})
}

func detectVariableIncome(in DetectInput) *SignalContext {
	income := in.Signals.Income
	if !income.PayrollDetected ||
		income.MedianPayGapDays <= payGapTriggerDays ||
		income.CashFlowBufferMonths >= bufferTriggerMonths {
		return nil
	}

	var checkingBalance float64
	for _, a := range in.Accounts {
		if a.Type == models.AccountChecking {
			checkingBalance += a.BalanceAvailable
		}
	}
	avgExpenses := in.Signals.Savings.AvgMonthlyExpenses
	return newContext(VariableIncomeData{
		MedianPayGapDays:     income.MedianPayGapDays,
		CashFlowBufferMonths: income.CashFlowBufferMonths,
		PaymentFrequency:     income.PaymentFrequency,
		CheckingBalance:      checkingBalance,
		AvgMonthlyExpenses:   avgExpenses,
		TargetEmergencyFund:  avgExpenses * starterFundMonths,
		TargetMonthlySavings: avgExpenses * savingsRateTarget,
	})
}

func detectSubscriptionHeavy(in DetectInput) *SignalContext {
	subs := in.Signals.Subscriptions
	if subs.RecurringMerchantCount < minRecurringMerchants {
		return nil
	}
	if subs.MonthlyRecurringSpend < recurringSpendTrigger &&
		subs.SubscriptionSharePercent < recurringShareTrigger {
		return nil
	}
	return newContext(SubscriptionData{
		RecurringCount:        subs.RecurringMerchantCount,
		MonthlyRecurringSpend: subs.MonthlyRecurringSpend,
		SharePercent:          subs.SubscriptionSharePercent,
		AnnualTotal:           subs.MonthlyRecurringSpend * 12,
		PotentialSavings:      subs.MonthlyRecurringSpend * subscriptionTrimShare,
		Merchants:             subs.RecurringMerchants,
	})
}

func detectSavingsBuilder(in DetectInput) *SignalContext {
	savings := in.Signals.Savings
	credit := in.Signals.Credit

	monthlyInflow := savings.NetInflow
	if in.Signals.WindowDays > 0 && in.Signals.WindowDays != 30 {
		monthlyInflow = savings.NetInflow / float64(in.Signals.WindowDays) * 30
	}
	if savings.GrowthRatePercent < growthRateTrigger && monthlyInflow < monthlyInflowTrigger {
		return nil
	}
	if credit.NumCreditCards > 0 && credit.Flag30Percent {
		return nil
	}
	return newContext(SavingsBuilderData{
		GrowthRatePercent:        savings.GrowthRatePercent,
		NetInflow:                monthlyInflow,
		SavingsBalance:           savings.TotalSavingsBalance,
		EmergencyFundMonths:      savings.EmergencyFundMonths,
		AvgMonthlyExpenses:       savings.AvgMonthlyExpenses,
		TargetEmergencyFund:      savings.AvgMonthlyExpenses * fullFundMonths,
		AdditionalInterestYearly: savings.TotalSavingsBalance * highYieldSavingsAPY,
		IncreaseAmount:           monthlyInflow * savingsRateTarget,
	})
}

func detectMortgageDebt(in DetectInput) *SignalContext {
	loans := in.Signals.Loans
	income := loans.MonthlyIncomeUsed
	if !loans.HasMortgage || income <= 0 {
		return nil
	}
	annual := income * 12
	ratio := loans.MortgageBalance / annual
	if ratio < mortgageDebtRatio {
		return nil
	}
	return newContext(MortgageDebtData{
		MortgageBalance:      loans.MortgageBalance,
		AnnualIncome:         annual,
		BalanceToIncomeRatio: ratio,
		MonthlyPayment:       loans.MortgageMonthlyPayment,
		InterestRatePercent:  loans.MortgageInterestRate,
	})
}

func detectMortgagePayment(in DetectInput) *SignalContext {
	loans := in.Signals.Loans
	income := loans.MonthlyIncomeUsed
	if !loans.HasMortgage || income <= 0 {
		return nil
	}
	burden := loans.MortgageMonthlyPayment / income * 100
	if burden < mortgageBurdenPercent {
		return nil
	}
	return newContext(MortgagePaymentData{
		MonthlyPayment:       loans.MortgageMonthlyPayment,
		MonthlyIncome:        income,
		PaymentBurdenPercent: burden,
		MortgageBalance:      loans.MortgageBalance,
		InterestRatePercent:  loans.MortgageInterestRate,
	})
}

func detectStudentDebt(in DetectInput) *SignalContext {
	loans := in.Signals.Loans
	income := loans.MonthlyIncomeUsed
	if !loans.HasStudentLoan || income <= 0 {
		return nil
	}
	annual := income * 12
	ratio := loans.StudentLoanBalance / annual
	if ratio < studentDebtRatio {
		return nil
	}
	return newContext(StudentDebtData{
		StudentLoanBalance:   loans.StudentLoanBalance,
		AnnualIncome:         annual,
		BalanceToIncomeRatio: ratio,
		MonthlyPayment:       loans.StudentLoanMonthlyPayment,
		InterestRatePercent:  loans.StudentLoanInterestRate,
	})
}

func detectStudentPayment(in DetectInput) *SignalContext {
	loans := in.Signals.Loans
	income := loans.MonthlyIncomeUsed
	if !loans.HasStudentLoan || income <= 0 {
		return nil
	}
	burden := loans.StudentLoanMonthlyPayment / income * 100
	if burden < studentBurdenPercent {
		return nil
	}
	return newContext(StudentPaymentData{
		MonthlyPayment:       loans.StudentLoanMonthlyPayment,
		MonthlyIncome:        income,
		PaymentBurdenPercent: burden,
		StudentLoanBalance:   loans.StudentLoanBalance,
		InterestRatePercent:  loans.StudentLoanInterestRate,
		EstimatedIDRPayment:  income * idrIncomeShare,
	})
}
