package signals

import (
	"strings"

	"spendlens/internal/models"

	"github.com/google/uuid"
)

// utilizationCeiling caps reported per-card utilization. Balances can exceed
// the limit after fees and interest, but never report beyond 200%.
const utilizationCeiling = 200.0

// CreditSignals describes revolving-credit usage and payment behavior for
// one window.
type CreditSignals struct {
	Utilizations           map[string]float64 `json:"utilizations"` // account id -> percent
	MaxUtilizationPercent  float64            `json:"max_utilization_percent"`
	Flag30Percent          bool               `json:"flag_30_percent"`
	Flag50Percent          bool               `json:"flag_50_percent"`
	Flag80Percent          bool               `json:"flag_80_percent"`
	MinimumPaymentOnly     bool               `json:"minimum_payment_only"`
	InterestChargesPresent bool               `json:"interest_charges_present"`
	IsOverdue              bool               `json:"is_overdue"`
	NumCreditCards         int                `json:"num_credit_cards"`
	WindowDays             int                `json:"window_days"`
}

// computeCredit derives per-card utilization, threshold flags, and the three
// payment-behavior booleans. Cards without a stated limit are counted but
// carry no utilization.
func (e *Engine) computeCredit(
	creditAccounts []models.Account,
	liabilities []models.Liability,
	creditTxns []models.Transaction,
	windowDays int,
) CreditSignals {
	out := CreditSignals{
		Utilizations: map[string]float64{},
		WindowDays:   windowDays,
	}
	if len(creditAccounts) == 0 {
		return out
	}
	out.NumCreditCards = len(creditAccounts)

	for _, a := range creditAccounts {
		if a.CreditLimit == nil || *a.CreditLimit <= 0 {
			continue
		}
		util := a.BalanceCurrent / *a.CreditLimit * 100
		if util < 0 {
			util = 0
		}
		if util > utilizationCeiling {
			util = utilizationCeiling
		}
		out.Utilizations[a.ID.String()] = util
		if util > out.MaxUtilizationPercent {
			out.MaxUtilizationPercent = util
		}
		out.Flag30Percent = out.Flag30Percent || util >= 30
		out.Flag50Percent = out.Flag50Percent || util >= 50
		out.Flag80Percent = out.Flag80Percent || util >= 80
	}

	out.MinimumPaymentOnly = e.detectMinimumPaymentOnly(liabilities, creditTxns)
	out.InterestChargesPresent = e.detectInterestCharges(creditTxns)

	for _, l := range liabilities {
		if l.Type == models.AccountCreditCard && l.IsOverdue {
			out.IsOverdue = true
			break
		}
	}
	return out
}

// detectMinimumPaymentOnly reports whether, for any card with a stated
// minimum, the average in-window payment stays at or below slack x minimum.
func (e *Engine) detectMinimumPaymentOnly(liabilities []models.Liability, creditTxns []models.Transaction) bool {
	payments := map[uuid.UUID][]float64{}
	for _, t := range creditTxns {
		if t.IsInflow() {
			payments[t.AccountID] = append(payments[t.AccountID], -t.Amount)
		}
	}
	if len(payments) == 0 {
		return false
	}

	for _, l := range liabilities {
		if l.Type != models.AccountCreditCard || l.MinimumPayment <= 0 {
			continue
		}
		amounts := payments[l.AccountID]
		if len(amounts) == 0 {
			continue
		}
		var sum float64
		for _, a := range amounts {
			sum += a
		}
		avg := sum / float64(len(amounts))
		if avg <= l.MinimumPayment*e.cfg.MinPaymentSlack {
			return true
		}
	}
	return false
}

// detectInterestCharges scans merchant names and detailed categories for
// interest and penalty keywords.
func (e *Engine) detectInterestCharges(creditTxns []models.Transaction) bool {
	for _, t := range creditTxns {
		merchant := strings.ToLower(t.MerchantName)
		category := strings.ToLower(t.CategoryDetailed)
		for _, kw := range e.cfg.InterestKeywords {
			if (merchant != "" && strings.Contains(merchant, kw)) ||
				(category != "" && strings.Contains(category, kw)) {
				return true
			}
		}
	}
	return false
}
