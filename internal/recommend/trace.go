package recommend

import (
	"sort"
	"time"

	"spendlens/internal/models"
	"spendlens/internal/personas"

	"github.com/google/uuid"
)

// TraceSchemaVersion is stamped on every trace so stored payloads can be
// migrated if the shape changes.
const TraceSchemaVersion = "1.0"

// TraceVariable is one value used by the recommendation, with how it was
// obtained: copied from an input field or computed, and if computed, the
// formula.
type TraceVariable struct {
	Name       string `json:"name"`
	Value      any    `json:"value"`
	Derivation string `json:"derivation"`
}

// AccountSnapshot is the slice of an account a trace needs to be audited.
type AccountSnapshot struct {
	AccountID string  `json:"account_id"`
	Name      string  `json:"name"`
	Type      string  `json:"type"`
	Balance   float64 `json:"balance"`
	Limit     float64 `json:"limit,omitempty"`
}

// LiabilitySnapshot mirrors AccountSnapshot for liability records.
type LiabilitySnapshot struct {
	AccountID      string  `json:"account_id"`
	Type           string  `json:"type"`
	APRPercent     float64 `json:"apr_percent,omitempty"`
	MinimumPayment float64 `json:"minimum_payment,omitempty"`
	IsOverdue      bool    `json:"is_overdue"`
}

// TransactionRef points at a transaction that contributed to the decision.
type TransactionRef struct {
	TransactionID string    `json:"transaction_id"`
	Date          time.Time `json:"date"`
	Amount        float64   `json:"amount"`
	Merchant      string    `json:"merchant,omitempty"`
	Category      string    `json:"category,omitempty"`
}

// TraceInputs holds only the records relevant to the triggering signal, not
// the user's full ledger.
type TraceInputs struct {
	Accounts     []AccountSnapshot   `json:"accounts"`
	Liabilities  []LiabilitySnapshot `json:"liabilities,omitempty"`
	Transactions []TransactionRef    `json:"transactions,omitempty"`
}

// Trace is the complete audit record for one recommendation: enough to
// reconstruct the decision without re-querying the user's data.
type Trace struct {
	SchemaVersion    string             `json:"schema_version"`
	RecommendationID uuid.UUID          `json:"recommendation_id"`
	UserID           uuid.UUID          `json:"user_id"`
	PersonaID        string             `json:"persona_id,omitempty"`
	PersonaName      string             `json:"persona_name"`
	PersonaReasoning string             `json:"persona_reasoning"`
	Signal           SignalContext      `json:"signal"`
	TemplateID       string             `json:"template_id,omitempty"`
	OfferID          string             `json:"offer_id,omitempty"`
	Inputs           TraceInputs        `json:"inputs"`
	Variables        []TraceVariable    `json:"variables"`
	Eligibility      *EligibilityResult `json:"eligibility,omitempty"`
	CreatedAt        time.Time          `json:"created_at"`
}

// derivations maps computed variable names to their formulas. Variables not
// listed here are literal copies of an input field.
var derivations = map[string]string{
	"utilization":           "balance / limit * 100",
	"max_utilization":       "max over cards of balance / limit * 100",
	"monthly_interest":      "balance * apr / 100 / 12",
	"target_payment":        "min_payment * 2",
	"months":                "ceil((balance - limit * 0.30) / target_payment)",
	"buffer_months":         "checking balance / avg monthly expenses",
	"avg_expenses":          "sum of window expenses under the large-expense cutoff, normalized to 30 days",
	"target_amount":         "avg_expenses * 3",
	"monthly_savings":       "avg_expenses * 0.20",
	"pay_gap":               "median gap in days between income deposits",
	"monthly_total":         "recurring spend in window, normalized to 30 days",
	"subscription_percent":  "recurring spend / total spend * 100",
	"annual_total":          "monthly_total * 12",
	"potential_savings":     "monthly_total * 0.30",
	"growth_rate":           "net inflow / starting balance * 100",
	"emergency_months":      "savings balance / avg monthly expenses",
	"emergency_fund_target": "avg monthly expenses * 6",
	"additional_interest":   "current_balance * 0.045",
	"increase_amount":       "monthly net inflow * 0.20",
	"annual_income":         "monthly income * 12",
	"balance_to_income":     "loan balance / annual income",
	"payment_burden":        "monthly payment / monthly income * 100",
	"estimated_idr_payment": "monthly income * 0.10",
	"monthly_income":        "income deposits in window, normalized to 30 days",
}

// BuildTrace assembles the audit record for one selected recommendation.
func BuildTrace(
	recommendationID uuid.UUID,
	assignment personas.Assignment,
	ctx SignalContext,
	templateID, offerID string,
	eligibility *EligibilityResult,
	accounts []models.Account,
	liabilities []models.Liability,
	transactions []models.Transaction,
	createdAt time.Time,
) Trace {
	return Trace{
		SchemaVersion:    TraceSchemaVersion,
		RecommendationID: recommendationID,
		UserID:           assignment.UserID,
		PersonaID:        assignment.PersonaID,
		PersonaName:      assignment.PersonaName,
		PersonaReasoning: assignment.Reasoning,
		Signal:           ctx,
		TemplateID:       templateID,
		OfferID:          offerID,
		Inputs:           relevantInputs(ctx, accounts, liabilities, transactions),
		Variables:        traceVariables(ctx),
		Eligibility:      eligibility,
		CreatedAt:        createdAt,
	}
}

// traceVariables lists the context's variables sorted by name, each tagged
// with its derivation.
func traceVariables(ctx SignalContext) []TraceVariable {
	vars := ctx.Data.Variables()
	names := make([]string, 0, len(vars))
	for name := range vars {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]TraceVariable, 0, len(names))
	for _, name := range names {
		derivation, computed := derivations[name]
		if !computed {
			derivation = "input field"
		}
		out = append(out, TraceVariable{Name: name, Value: vars[name], Derivation: derivation})
	}
	return out
}

// relevantInputs narrows the user's records to the ones the signal actually
// looked at.
func relevantInputs(ctx SignalContext, accounts []models.Account, liabilities []models.Liability, transactions []models.Transaction) TraceInputs {
	var types map[models.AccountType]bool
	switch ctx.ID {
	case SignalHighUtilization, SignalInterestCharges, SignalMinimumPaymentOnly, SignalOverdue:
		types = map[models.AccountType]bool{models.AccountCreditCard: true}
	case SignalVariableIncome:
		types = map[models.AccountType]bool{models.AccountChecking: true}
	case SignalSubscriptionHeavy:
		types = map[models.AccountType]bool{models.AccountChecking: true, models.AccountCreditCard: true}
	case SignalSavingsBuilder:
		types = map[models.AccountType]bool{}
		for t := range models.SavingsLikeTypes {
			types[t] = true
		}
	case SignalMortgageDebt, SignalMortgagePayment:
		types = map[models.AccountType]bool{models.AccountMortgage: true, models.AccountChecking: true}
	case SignalStudentDebt, SignalStudentPayment:
		types = map[models.AccountType]bool{models.AccountStudentLoan: true, models.AccountChecking: true}
	}

	inputs := TraceInputs{}
	included := map[uuid.UUID]bool{}
	for _, a := range accounts {
		if !types[a.Type] {
			continue
		}
		included[a.ID] = true
		snap := AccountSnapshot{
			AccountID: a.ID.String(),
			Name:      a.DisplayName(),
			Type:      string(a.Type),
			Balance:   a.BalanceCurrent,
		}
		if a.CreditLimit != nil {
			snap.Limit = *a.CreditLimit
		}
		inputs.Accounts = append(inputs.Accounts, snap)
	}
	for _, l := range liabilities {
		if !included[l.AccountID] {
			continue
		}
		inputs.Liabilities = append(inputs.Liabilities, LiabilitySnapshot{
			AccountID:      l.AccountID.String(),
			Type:           string(l.Type),
			APRPercent:     l.APRPercent,
			MinimumPayment: l.MinimumPayment,
			IsOverdue:      l.IsOverdue,
		})
	}

	// Transactions only matter for the behavior-driven signals; balance and
	// liability driven ones are fully explained by the snapshots above.
	switch ctx.ID {
	case SignalInterestCharges, SignalMinimumPaymentOnly, SignalVariableIncome, SignalSubscriptionHeavy, SignalSavingsBuilder:
		merchants := map[string]bool{}
		if d, ok := ctx.Data.(SubscriptionData); ok {
			for _, m := range d.Merchants {
				merchants[m] = true
			}
		}
		for _, t := range transactions {
			keep := included[t.AccountID]
			if len(merchants) > 0 {
				keep = merchants[t.MerchantName]
			}
			if !keep {
				continue
			}
			inputs.Transactions = append(inputs.Transactions, TransactionRef{
				TransactionID: t.ID.String(),
				Date:          t.Date,
				Amount:        t.Amount,
				Merchant:      t.MerchantName,
				Category:      t.CategoryPrimary,
			})
		}
	}
	return inputs
}
