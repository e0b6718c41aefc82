package signals

import (
	"math"
	"sort"
	"strings"

	"spendlens/internal/models"
)

// PaymentFrequency labels inferred from the median gap between income
// deposits.
const (
	FrequencyWeekly   = "weekly"
	FrequencyBiweekly = "biweekly"
	FrequencyMonthly  = "monthly"
	FrequencyVariable = "variable"
)

// IncomeSignals describes payroll detection and cash-flow stability for one
// window.
type IncomeSignals struct {
	PayrollDetected      bool    `json:"payroll_detected"`
	PaymentFrequency     string  `json:"payment_frequency,omitempty"`
	MedianPayGapDays     float64 `json:"median_pay_gap_days"`
	PaymentVariability   float64 `json:"payment_variability"`
	CashFlowBufferMonths float64 `json:"cash_flow_buffer_months"`
	NumIncomeDeposits    int     `json:"num_income_deposits"`
	TotalIncome          float64 `json:"total_income"`
	MonthlyIncome        float64 `json:"monthly_income"`
	WindowDays           int     `json:"window_days"`
}

// computeIncome detects payroll deposits, infers payment cadence, and
// measures the checking-balance buffer against average monthly expenses.
func (e *Engine) computeIncome(
	checkingAccounts []models.Account,
	windowTxns []models.Transaction,
	windowDays int,
) IncomeSignals {
	out := IncomeSignals{WindowDays: windowDays}

	income := e.detectIncomeDeposits(windowTxns)
	out.NumIncomeDeposits = len(income)
	out.PayrollDetected = len(income) > 0
	for _, t := range income {
		out.TotalIncome += -t.Amount
	}
	if out.PayrollDetected {
		out.MonthlyIncome = monthlyRate(out.TotalIncome, windowDays)
	}

	if len(income) >= 2 {
		gaps := positiveGaps(income)
		if len(gaps) > 0 {
			out.MedianPayGapDays = median(gaps)
			out.PaymentVariability = stddev(gaps)
			out.PaymentFrequency = frequencyFromGap(out.MedianPayGapDays)
		}
	}

	var checkingBalance float64
	for _, a := range checkingAccounts {
		checkingBalance += a.BalanceAvailable
	}
	if avg := e.avgMonthlyExpenses(windowTxns, windowDays); avg > 0 {
		out.CashFlowBufferMonths = checkingBalance / avg
	}
	return out
}

// detectIncomeDeposits picks the deposits that look like income: an income
// category, a payroll-style merchant, or any deposit at or above the
// configured floor.
func (e *Engine) detectIncomeDeposits(windowTxns []models.Transaction) []models.Transaction {
	var income []models.Transaction
	for _, t := range windowTxns {
		if !t.IsInflow() {
			continue
		}
		isIncome := strings.Contains(strings.ToLower(t.CategoryPrimary), "income") ||
			strings.Contains(strings.ToLower(t.CategoryDetailed), "income")
		if !isIncome && t.MerchantName != "" {
			merchant := strings.ToLower(t.MerchantName)
			for _, kw := range e.cfg.PayrollKeywords {
				if strings.Contains(merchant, kw) {
					isIncome = true
					break
				}
			}
		}
		if !isIncome && -t.Amount >= e.cfg.IncomeDepositFloor {
			isIncome = true
		}
		if isIncome {
			income = append(income, t)
		}
	}
	return income
}

// positiveGaps returns day gaps between consecutive income deposits,
// excluding same-day pairs.
func positiveGaps(income []models.Transaction) []float64 {
	var gaps []float64
	for _, g := range gapDays(sortByDate(income)) {
		if g > 0 {
			gaps = append(gaps, g)
		}
	}
	return gaps
}

// frequencyFromGap labels the cadence. Semi-monthly gaps (13-17 days) fall
// inside the biweekly band and read as biweekly.
func frequencyFromGap(medianGap float64) string {
	switch {
	case medianGap >= 5 && medianGap <= 10:
		return FrequencyWeekly
	case medianGap >= 12 && medianGap <= 18:
		return FrequencyBiweekly
	case medianGap >= 25 && medianGap <= 35:
		return FrequencyMonthly
	case medianGap > 45:
		return FrequencyVariable
	}
	return ""
}

func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

func stddev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))
	var sq float64
	for _, v := range values {
		sq += (v - mean) * (v - mean)
	}
	return math.Sqrt(sq / float64(len(values)-1))
}
