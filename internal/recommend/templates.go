package recommend

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Template is one piece of educational content. Placeholders use {name}
// syntax and are filled from the triggering signal's context variables;
// Variables lists the placeholders the template requires.
type Template struct {
	ID        string
	SignalID  SignalID
	Category  string
	Title     string
	Content   string
	Variables []string
}

// Content categories, used for diversity: at most one education item per
// category in a single generation run.
const (
	CategoryCreditBasics  = "credit_basics"
	CategoryPaymentPlan   = "payment_planning"
	CategoryInterestCost  = "interest_cost"
	CategoryAutopay       = "autopay"
	CategoryOverdueAction = "overdue_action"
	CategoryBudgeting     = "budgeting"
	CategoryEmergencyFund = "emergency_fund"
	CategoryIncomeSmooth  = "income_smoothing"
	CategorySubscriptions = "subscription_audit"
	CategorySavingsGrowth = "savings_growth"
	CategorySavingsRate   = "savings_rate"
	CategoryMortgage      = "mortgage_strategy"
	CategoryStudentLoans  = "student_loan_strategy"
)

// templates is the education catalog, keyed by the signal that triggers each
// entry. Catalog order within a signal is the preference order.
var templates = map[SignalID][]Template{
	SignalHighUtilization: {
		{
			ID:       "edu_utilization_basics",
			SignalID: SignalHighUtilization,
			Category: CategoryCreditBasics,
			Title:    "Understanding Credit Utilization",
			Content: "Your {card_name} (...{last_four}) is at {utilization}% utilization " +
				"with a balance of ${balance} against a ${limit} limit. Utilization above " +
				"30% can lower your credit score, and above 50% the impact grows quickly. " +
				"Paying the balance down below 30% of the limit is one of the fastest ways " +
				"to improve your score.",
			Variables: []string{"card_name", "last_four", "utilization", "balance", "limit"},
		},
		{
			ID:       "edu_paydown_plan",
			SignalID: SignalHighUtilization,
			Category: CategoryPaymentPlan,
			Title:    "A Paydown Plan for Your {card_name}",
			Content: "At your current minimum payment of ${min_payment}, the balance on " +
				"your {card_name} will shrink slowly while interest accrues. Paying " +
				"${target_payment} per month instead would bring the card under 30% " +
				"utilization in roughly {months} months. Even a smaller extra amount " +
				"shortens the timeline and cuts total interest.",
			Variables: []string{"card_name", "min_payment", "target_payment", "months"},
		},
	},
	SignalInterestCharges: {
		{
			ID:       "edu_interest_cost",
			SignalID: SignalInterestCharges,
			Category: CategoryInterestCost,
			Title:    "What Interest Charges Are Costing You",
			Content: "Your {card_name} carried interest charges this period. At " +
				"{apr}% APR on a ${balance} balance, interest runs about " +
				"${monthly_interest} per month. Paying the statement balance in full " +
				"before the due date stops these charges entirely; if that is out of " +
				"reach, every extra dollar toward principal reduces next month's charge.",
			Variables: []string{"card_name", "apr", "balance", "monthly_interest"},
		},
	},
	SignalMinimumPaymentOnly: {
		{
			ID:       "edu_minimum_payment_trap",
			SignalID: SignalMinimumPaymentOnly,
			Category: CategoryPaymentPlan,
			Title:    "Why Minimum Payments Keep You in Debt",
			Content: "Recent payments on your {card_name} have stayed near the " +
				"${min_payment} minimum. Minimum payments mostly cover interest, so the " +
				"${balance} balance barely moves. Doubling the payment, or adding any " +
				"fixed extra amount each month, goes straight to principal and can cut " +
				"years off the payoff.",
			Variables: []string{"card_name", "min_payment", "balance"},
		},
		{
			ID:       "edu_autopay_above_minimum",
			SignalID: SignalMinimumPaymentOnly,
			Category: CategoryAutopay,
			Title:    "Set Autopay Above the Minimum",
			Content: "Setting autopay on your {card_name} to a fixed amount above the " +
				"${min_payment} minimum removes the monthly decision and guarantees " +
				"progress on the balance. Pick an amount you can sustain and let it run; " +
				"you can always pay more manually in good months.",
			Variables: []string{"card_name", "min_payment"},
		},
	},
	SignalOverdue: {
		{
			ID:       "edu_overdue_action",
			SignalID: SignalOverdue,
			Category: CategoryOverdueAction,
			Title:    "Your {card_name} Payment Is Past Due",
			Content: "Your {card_name} (...{last_four}) shows an overdue payment. Late " +
				"payments can trigger fees, penalty APRs, and credit-report marks that " +
				"last seven years. Making at least the ${min_payment} minimum right away " +
				"limits the damage, and many issuers will waive a first-time late fee if " +
				"you call and ask.",
			Variables: []string{"card_name", "last_four", "min_payment"},
		},
	},
	SignalVariableIncome: {
		{
			ID:       "edu_variable_income_budget",
			SignalID: SignalVariableIncome,
			Category: CategoryBudgeting,
			Title:    "Budgeting on an Irregular Income",
			Content: "Your deposits arrive about every {pay_gap} days, which makes a " +
				"fixed monthly budget hard to follow. A common approach is to budget " +
				"from your lowest recent month rather than the average: cover the " +
				"${avg_expenses} in essential expenses first, and treat anything above " +
				"that as a buffer rather than spending room.",
			Variables: []string{"pay_gap", "avg_expenses"},
		},
		{
			ID:       "edu_starter_emergency_fund",
			SignalID: SignalVariableIncome,
			Category: CategoryEmergencyFund,
			Title:    "Build a Buffer for the Gaps",
			Content: "Your cash buffer currently covers {buffer_months} months of " +
				"expenses. With income arriving irregularly, a starter emergency fund " +
				"of ${target_amount} (three months of expenses) smooths the gaps between " +
				"deposits. Setting aside ${monthly_savings} in the larger months gets " +
				"you there without squeezing the lean ones.",
			Variables: []string{"buffer_months", "target_amount", "monthly_savings"},
		},
		{
			ID:       "edu_income_smoothing",
			SignalID: SignalVariableIncome,
			Category: CategoryIncomeSmooth,
			Title:    "Pay Yourself a Salary",
			Content: "One way to tame irregular income: deposit everything into a " +
				"holding account, then transfer a fixed amount to checking on a set " +
				"schedule, like a paycheck. The holding account absorbs the swings and " +
				"your spending account sees a steady, predictable income.",
			Variables: nil,
		},
	},
	SignalSubscriptionHeavy: {
		{
			ID:       "edu_subscription_audit",
			SignalID: SignalSubscriptionHeavy,
			Category: CategorySubscriptions,
			Title:    "Time for a Subscription Audit",
			Content: "You have {recurring_count} recurring charges totaling " +
				"${monthly_total} per month, which is {subscription_percent}% of your " +
				"spending and ${annual_total} per year. Most people who audit their " +
				"subscriptions find at least one they forgot about; trimming the unused " +
				"ones could free up around ${potential_savings} per month.",
			Variables: []string{"recurring_count", "monthly_total", "subscription_percent", "annual_total", "potential_savings"},
		},
		{
			ID:       "edu_subscription_negotiate",
			SignalID: SignalSubscriptionHeavy,
			Category: CategoryBudgeting,
			Title:    "Negotiate or Rotate Your Subscriptions",
			Content: "Streaming and software services routinely offer retention " +
				"discounts when you start to cancel, and few shows or features are " +
				"exclusive forever. Rotating services (subscribe for a month, binge, " +
				"cancel) can cut your ${monthly_total} monthly subscription spend " +
				"substantially without giving anything up permanently.",
			Variables: []string{"monthly_total"},
		},
	},
	SignalSavingsBuilder: {
		{
			ID:       "edu_emergency_fund_progress",
			SignalID: SignalSavingsBuilder,
			Category: CategoryEmergencyFund,
			Title:    "Your Emergency Fund Progress",
			Content: "Your savings cover {emergency_months} months of expenses. The " +
				"usual target is six months, or ${emergency_fund_target} at your " +
				"current spending. You are adding about ${monthly_savings} per month; " +
				"keeping that pace steadily closes the gap.",
			Variables: []string{"emergency_months", "emergency_fund_target", "monthly_savings"},
		},
		{
			ID:       "edu_savings_yield",
			SignalID: SignalSavingsBuilder,
			Category: CategorySavingsGrowth,
			Title:    "Is Your Savings Balance Earning Its Keep?",
			Content: "With ${current_balance} in savings, the account's interest rate " +
				"matters. Moving to a high-yield account earning around 4.5% APY would " +
				"add roughly ${additional_interest} per year compared to a typical " +
				"near-zero rate, with no change in risk for FDIC-insured accounts.",
			Variables: []string{"current_balance", "additional_interest"},
		},
		{
			ID:       "edu_savings_rate_bump",
			SignalID: SignalSavingsBuilder,
			Category: CategorySavingsRate,
			Title:    "Small Raises to Your Savings Rate Compound",
			Content: "You saved at a {growth_rate}% growth rate this period. Raising " +
				"your automatic transfer by ${increase_amount} per month is barely " +
				"noticeable now but compounds meaningfully over the years, especially " +
				"once the emergency fund is full and the surplus moves to investments.",
			Variables: []string{"growth_rate", "increase_amount"},
		},
	},
	SignalMortgageDebt: {
		{
			ID:       "edu_mortgage_debt_ratio",
			SignalID: SignalMortgageDebt,
			Category: CategoryMortgage,
			Title:    "Your Mortgage Relative to Your Income",
			Content: "Your mortgage balance of ${mortgage_balance} is " +
				"{balance_to_income}x your annual income of ${annual_income}. Ratios " +
				"above 4x leave little room for other goals. Options worth " +
				"understanding: refinancing if rates have fallen below your " +
				"{interest_rate}%, recasting after a lump-sum payment, or simply " +
				"directing windfalls at principal.",
			Variables: []string{"mortgage_balance", "balance_to_income", "annual_income", "interest_rate"},
		},
	},
	SignalMortgagePayment: {
		{
			ID:       "edu_mortgage_payment_burden",
			SignalID: SignalMortgagePayment,
			Category: CategoryMortgage,
			Title:    "When the House Payment Crowds Out Everything Else",
			Content: "Your ${monthly_payment} mortgage payment is {payment_burden}% of " +
				"your ${monthly_income} monthly income; lenders consider anything above " +
				"28-35% a strain. A longer amortization via refinance lowers the " +
				"payment (at the cost of total interest), and confirming your escrowed " +
				"taxes and insurance are competitive sometimes recovers real money.",
			Variables: []string{"monthly_payment", "payment_burden", "monthly_income"},
		},
	},
	SignalStudentDebt: {
		{
			ID:       "edu_student_debt_strategies",
			SignalID: SignalStudentDebt,
			Category: CategoryStudentLoans,
			Title:    "Strategies for a Large Student Loan Balance",
			Content: "Your student loan balance of ${student_loan_balance} is " +
				"{balance_to_income}x your annual income. For federal loans, " +
				"income-driven plans and forgiveness programs may apply; for private " +
				"loans at {interest_rate}%, refinancing to a lower rate directly cuts " +
				"the cost. Avalanche ordering (highest rate first) minimizes total " +
				"interest across multiple loans.",
			Variables: []string{"student_loan_balance", "balance_to_income", "interest_rate"},
		},
	},
	SignalStudentPayment: {
		{
			ID:       "edu_student_idr",
			SignalID: SignalStudentPayment,
			Category: CategoryStudentLoans,
			Title:    "Income-Driven Repayment Could Lower Your Payment",
			Content: "Your ${monthly_payment} student loan payment is " +
				"{payment_burden}% of your monthly income. Federal income-driven " +
				"repayment plans cap payments near 10% of discretionary income, which " +
				"for you would be roughly ${estimated_idr_payment} per month. The " +
				"trade-off is a longer term and more total interest, so it fits best " +
				"when the current payment is genuinely unaffordable.",
			Variables: []string{"monthly_payment", "payment_burden", "estimated_idr_payment"},
		},
	},
}

// TemplatesForSignal returns the catalog entries for a signal in preference
// order.
func TemplatesForSignal(id SignalID) []Template {
	return templates[id]
}

// TemplateByID looks a template up across the whole catalog.
func TemplateByID(id string) (Template, bool) {
	for _, list := range templates {
		for _, t := range list {
			if t.ID == id {
				return t, true
			}
		}
	}
	return Template{}, false
}

var placeholderRe = regexp.MustCompile(`\{([a-z_]+)\}`)

// RenderTemplate fills a template's placeholders from the context variables.
// A missing required variable is an error; the caller skips the template and
// moves on rather than emitting text with holes in it.
func RenderTemplate(tpl Template, vars map[string]any) (title, content string, err error) {
	for _, name := range tpl.Variables {
		if _, ok := vars[name]; !ok {
			return "", "", fmt.Errorf("template %s: missing variable %q", tpl.ID, name)
		}
	}
	fill := func(text string) string {
		return placeholderRe.ReplaceAllStringFunc(text, func(m string) string {
			name := m[1 : len(m)-1]
			v, ok := vars[name]
			if !ok {
				return m
			}
			return formatValue(v)
		})
	}
	return fill(tpl.Title), fill(tpl.Content), nil
}

// formatValue renders a context value for prose: floats get at most two
// decimals with trailing zeros trimmed.
func formatValue(v any) string {
	switch val := v.(type) {
	case float64:
		s := strconv.FormatFloat(val, 'f', 2, 64)
		s = strings.TrimRight(s, "0")
		return strings.TrimSuffix(s, ".")
	case float32:
		return formatValue(float64(val))
	case int:
		return strconv.Itoa(val)
	case string:
		return val
	default:
		return fmt.Sprintf("%v", val)
	}
}
