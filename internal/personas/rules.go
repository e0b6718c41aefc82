package personas

import (
	"fmt"

	"spendlens/internal/signals"
)

// Persona ids. Ids are stable and persisted; display names are not.
const (
	PersonaHighUtilization   = "persona_high_utilization"
	PersonaVariableIncome    = "persona_variable_income"
	PersonaSubscriptionHeavy = "persona_subscription_heavy"
	PersonaDebtBurden        = "persona_debt_burden"
	PersonaSavingsBuilder    = "persona_savings_builder"
)

// Rule is one entry of the ordered persona table: a predicate over a
// window's signals plus a numeric priority (lower wins). Evaluate returns
// whether the rule matched, a human-readable reasoning string quoting the
// deciding values, and the numeric evidence behind the decision.
type Rule struct {
	ID       string
	Name     string
	Priority int
	Evaluate func(set signals.SignalSet) (bool, string, map[string]any)
}

// Rules is the persona table in priority order. Extending the persona set
// means appending here; the classifier never branches on persona ids.
var Rules = []Rule{
	{
		ID:       PersonaHighUtilization,
		Name:     "High Utilization",
		Priority: 1,
		Evaluate: evalHighUtilization,
	},
	{
		ID:       PersonaVariableIncome,
		Name:     "Variable Income Budgeter",
		Priority: 2,
		Evaluate: evalVariableIncome,
	},
	{
		ID:       PersonaSubscriptionHeavy,
		Name:     "Subscription-Heavy",
		Priority: 3,
		Evaluate: evalSubscriptionHeavy,
	},
	{
		ID:       PersonaDebtBurden,
		Name:     "Debt Burden",
		Priority: 4,
		Evaluate: evalDebtBurden,
	},
	{
		ID:       PersonaSavingsBuilder,
		Name:     "Savings Builder",
		Priority: 5,
		Evaluate: evalSavingsBuilder,
	},
}

// RuleByID returns the rule for a persona id, or nil.
func RuleByID(id string) *Rule {
	for i := range Rules {
		if Rules[i].ID == id {
			return &Rules[i]
		}
	}
	return nil
}

func evalHighUtilization(set signals.SignalSet) (bool, string, map[string]any) {
	credit := set.Credit
	used := map[string]any{}
	var reasons []string

	if credit.Flag50Percent {
		reasons = append(reasons, fmt.Sprintf("credit utilization at %.1f%%", credit.MaxUtilizationPercent))
		used["max_utilization_percent"] = credit.MaxUtilizationPercent
		used["flag_50_percent"] = true
	}
	if credit.InterestChargesPresent {
		reasons = append(reasons, "interest charges detected")
		used["interest_charges_present"] = true
	}
	if credit.MinimumPaymentOnly {
		reasons = append(reasons, "only making minimum payments")
		used["minimum_payment_only"] = true
	}
	if credit.IsOverdue {
		reasons = append(reasons, "has overdue payments")
		used["is_overdue"] = true
	}

	if len(reasons) == 0 {
		return false, "", nil
	}
	return true, "High Utilization: " + joinReasons(reasons), used
}

func evalVariableIncome(set signals.SignalSet) (bool, string, map[string]any) {
	income := set.Income
	if !income.PayrollDetected {
		return false, "", nil
	}
	if income.MedianPayGapDays <= 45 || income.CashFlowBufferMonths >= 1.0 {
		return false, "", nil
	}
	reasoning := fmt.Sprintf(
		"Variable Income Budgeter: median pay gap of %.1f days (>45 days) and cash-flow buffer of %.2f months (<1 month)",
		income.MedianPayGapDays, income.CashFlowBufferMonths,
	)
	return true, reasoning, map[string]any{
		"median_pay_gap_days":     income.MedianPayGapDays,
		"cash_flow_buffer_months": income.CashFlowBufferMonths,
	}
}

func evalSubscriptionHeavy(set signals.SignalSet) (bool, string, map[string]any) {
	subs := set.Subscriptions
	if subs.RecurringMerchantCount < 3 {
		return false, "", nil
	}
	spendMeets := subs.MonthlyRecurringSpend >= 50.0
	shareMeets := subs.SubscriptionSharePercent >= 10.0
	if !spendMeets && !shareMeets {
		return false, "", nil
	}

	reasons := []string{fmt.Sprintf("%d recurring merchants", subs.RecurringMerchantCount)}
	if spendMeets {
		reasons = append(reasons, fmt.Sprintf("$%.2f/month recurring spend", subs.MonthlyRecurringSpend))
	}
	if shareMeets {
		reasons = append(reasons, fmt.Sprintf("%.1f%% of total spend", subs.SubscriptionSharePercent))
	}
	return true, "Subscription-Heavy: " + joinReasons(reasons), map[string]any{
		"recurring_merchant_count":   subs.RecurringMerchantCount,
		"monthly_recurring_spend":    subs.MonthlyRecurringSpend,
		"subscription_share_percent": subs.SubscriptionSharePercent,
	}
}

func evalDebtBurden(set signals.SignalSet) (bool, string, map[string]any) {
	loans := set.Loans
	if !loans.HasMortgage && !loans.HasStudentLoan {
		return false, "", nil
	}

	used := map[string]any{
		"total_loan_balance":          loans.TotalLoanBalance,
		"total_monthly_loan_payments": loans.TotalMonthlyLoanPayments,
	}
	var reasons []string

	if loans.AnyLoanOverdue {
		reasons = append(reasons, "a loan payment is overdue")
		used["any_loan_overdue"] = true
	}
	if income := loans.MonthlyIncomeUsed; income > 0 {
		annual := income * 12
		if loans.HasMortgage {
			if ratio := loans.MortgageBalance / annual; ratio >= 4.0 {
				reasons = append(reasons, fmt.Sprintf("mortgage balance at %.1fx annual income", ratio))
				used["mortgage_balance_to_income"] = ratio
			}
			if burden := loans.MortgageMonthlyPayment / income * 100; burden >= 35.0 {
				reasons = append(reasons, fmt.Sprintf("mortgage payment at %.1f%% of income", burden))
				used["mortgage_payment_burden_percent"] = burden
			}
		}
		if loans.HasStudentLoan {
			if ratio := loans.StudentLoanBalance / annual; ratio >= 1.5 {
				reasons = append(reasons, fmt.Sprintf("student loan balance at %.1fx annual income", ratio))
				used["student_loan_balance_to_income"] = ratio
			}
			if burden := loans.StudentLoanMonthlyPayment / income * 100; burden >= 25.0 {
				reasons = append(reasons, fmt.Sprintf("student loan payment at %.1f%% of income", burden))
				used["student_loan_payment_burden_percent"] = burden
			}
		}
	}

	if len(reasons) == 0 {
		return false, "", nil
	}
	return true, "Debt Burden: " + joinReasons(reasons), used
}

func evalSavingsBuilder(set signals.SignalSet) (bool, string, map[string]any) {
	savings := set.Savings
	credit := set.Credit

	monthlyInflow := savings.NetInflow
	if set.WindowDays != 30 && set.WindowDays > 0 {
		monthlyInflow = savings.NetInflow / float64(set.WindowDays) * 30
	}
	growthMeets := savings.GrowthRatePercent >= 2.0
	inflowMeets := monthlyInflow >= 200.0
	if !growthMeets && !inflowMeets {
		return false, "", nil
	}
	if credit.NumCreditCards > 0 && credit.Flag30Percent {
		return false, "", nil
	}

	var reasons []string
	if growthMeets {
		reasons = append(reasons, fmt.Sprintf("%.1f%% savings growth rate", savings.GrowthRatePercent))
	}
	if inflowMeets {
		reasons = append(reasons, fmt.Sprintf("$%.2f/month net savings inflow", monthlyInflow))
	}
	reasons = append(reasons, "all credit cards below 30% utilization")
	return true, "Savings Builder: " + joinReasons(reasons), map[string]any{
		"growth_rate_percent":     savings.GrowthRatePercent,
		"net_inflow_monthly":      monthlyInflow,
		"max_utilization_percent": credit.MaxUtilizationPercent,
	}
}

func joinReasons(reasons []string) string {
	out := ""
	for i, r := range reasons {
		if i > 0 {
			out += ", "
		}
		out += r
	}
	return out
}
