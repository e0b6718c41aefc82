package signals

import (
	"math"
	"sort"
	"time"

	"spendlens/internal/models"
)

// SubscriptionSignals describes recurring-merchant behavior for one window.
// Pattern verification may look further back than the reporting window, but
// spend figures only count in-window charges.
type SubscriptionSignals struct {
	RecurringMerchants       []string `json:"recurring_merchants"`
	RecurringMerchantCount   int      `json:"recurring_merchant_count"`
	MonthlyRecurringSpend    float64  `json:"monthly_recurring_spend"`
	SubscriptionSharePercent float64  `json:"subscription_share_percent"`
	TotalSpend               float64  `json:"total_spend"`
	WindowDays               int      `json:"window_days"`
}

// detectSubscriptions finds merchants billed on a weekly or monthly cadence.
// A merchant is recurring when it has at least MinRecurringCount charges
// inside the lookback whose gaps fit a cadence band. Spend share and the
// monthly-normalized figure come from reporting-window charges only.
func (e *Engine) detectSubscriptions(all []models.Transaction, reference time.Time, windowDays int) SubscriptionSignals {
	out := SubscriptionSignals{WindowDays: windowDays}

	lookbackDays := windowDays
	if e.cfg.SubscriptionLookbackDays > lookbackDays {
		lookbackDays = e.cfg.SubscriptionLookbackDays
	}

	lookback := map[string][]models.Transaction{}
	for _, t := range all {
		if !t.IsExpense() || t.MerchantName == "" {
			continue
		}
		if inWindow(t.Date, reference, lookbackDays) {
			lookback[t.MerchantName] = append(lookback[t.MerchantName], t)
		}
	}

	for _, t := range all {
		if t.IsExpense() && inWindow(t.Date, reference, windowDays) {
			out.TotalSpend += t.Amount
		}
	}

	var recurringSpend float64
	for merchant, txns := range lookback {
		if len(txns) < e.cfg.MinRecurringCount || !e.hasConsistentCadence(txns) {
			continue
		}
		var inWindowSpend float64
		for _, t := range txns {
			if inWindow(t.Date, reference, windowDays) {
				inWindowSpend += t.Amount
			}
		}
		if inWindowSpend == 0 {
			// Pattern verified but no charge inside the reporting window.
			continue
		}
		out.RecurringMerchants = append(out.RecurringMerchants, merchant)
		recurringSpend += inWindowSpend
	}
	sort.Strings(out.RecurringMerchants)

	out.RecurringMerchantCount = len(out.RecurringMerchants)
	out.MonthlyRecurringSpend = monthlyRate(recurringSpend, windowDays)
	if out.TotalSpend > 0 {
		out.SubscriptionSharePercent = recurringSpend / out.TotalSpend * 100
	}
	return out
}

// hasConsistentCadence checks whether a merchant's charge gaps fit one of the
// accepted cadence bands: the mean gap must sit inside the band and at least
// CadenceAgreement of individual gaps must too.
func (e *Engine) hasConsistentCadence(txns []models.Transaction) bool {
	if len(txns) < 2 {
		return false
	}
	gaps := gapDays(sortByDate(txns))
	if len(gaps) == 0 {
		return false
	}

	var sum float64
	for _, g := range gaps {
		sum += g
	}
	mean := sum / float64(len(gaps))

	for _, band := range e.cfg.CadenceBands {
		if math.Abs(mean-band.TargetDays) > band.ToleranceDays {
			continue
		}
		within := 0
		for _, g := range gaps {
			if math.Abs(g-band.TargetDays) <= band.ToleranceDays {
				within++
			}
		}
		if float64(within) >= float64(len(gaps))*e.cfg.CadenceAgreement {
			return true
		}
	}
	return false
}
