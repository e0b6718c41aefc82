package signals

import (
	"spendlens/internal/models"
)

// SavingsSignals describes deposit behavior across savings-like accounts
// (savings, money market, HSA, cash management) for one window.
type SavingsSignals struct {
	NetInflow           float64 `json:"net_inflow"`
	GrowthRatePercent   float64 `json:"growth_rate_percent"`
	EmergencyFundMonths float64 `json:"emergency_fund_months"`
	TotalSavingsBalance float64 `json:"total_savings_balance"`
	AvgMonthlyExpenses  float64 `json:"avg_monthly_expenses"`
	WindowDays          int     `json:"window_days"`
}

// computeSavings derives net inflow, growth rate, and emergency-fund
// coverage. The starting balance is estimated by unwinding the window's net
// inflow from the current balance; a non-positive start with positive inflow
// is reported as 100% growth.
func (e *Engine) computeSavings(
	savingsAccounts []models.Account,
	savingsTxns []models.Transaction,
	windowTxns []models.Transaction,
	windowDays int,
) SavingsSignals {
	out := SavingsSignals{WindowDays: windowDays}

	for _, a := range savingsAccounts {
		out.TotalSavingsBalance += a.BalanceCurrent
	}

	// Deposits are negative amounts, so net inflow is the negated sum.
	for _, t := range savingsTxns {
		out.NetInflow -= t.Amount
	}

	startingBalance := out.TotalSavingsBalance - out.NetInflow
	switch {
	case startingBalance > 0:
		out.GrowthRatePercent = out.NetInflow / startingBalance * 100
	case out.NetInflow > 0:
		out.GrowthRatePercent = 100
	}

	out.AvgMonthlyExpenses = e.avgMonthlyExpenses(windowTxns, windowDays)
	if out.AvgMonthlyExpenses > 0 {
		out.EmergencyFundMonths = out.TotalSavingsBalance / out.AvgMonthlyExpenses
	}
	return out
}

// avgMonthlyExpenses sums in-window expenses normalized to 30 days, skipping
// abnormally large single transactions that would skew the average.
func (e *Engine) avgMonthlyExpenses(windowTxns []models.Transaction, windowDays int) float64 {
	var total float64
	for _, t := range windowTxns {
		if t.IsExpense() && t.Amount < e.cfg.LargeExpenseCutoff {
			total += t.Amount
		}
	}
	return monthlyRate(total, windowDays)
}
