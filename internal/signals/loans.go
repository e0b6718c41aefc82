package signals

import (
	"time"

	"spendlens/internal/models"

	"github.com/google/uuid"
)

// LoanSignals describes mortgage and student-loan burden. The income ratios
// are zero when monthly income is unknown; callers must treat "no income" as
// its own branch rather than a zero burden.
type LoanSignals struct {
	HasMortgage    bool `json:"has_mortgage"`
	HasStudentLoan bool `json:"has_student_loan"`
	NumLoans       int  `json:"num_loans"`

	MortgageBalance         float64    `json:"mortgage_balance"`
	MortgageMonthlyPayment  float64    `json:"mortgage_monthly_payment"`
	MortgageInterestRate    float64    `json:"mortgage_interest_rate"`
	MortgageIsOverdue       bool       `json:"mortgage_is_overdue"`
	MortgageNextPaymentDue  *time.Time `json:"mortgage_next_payment_due,omitempty"`
	MortgageLastPaymentDate *time.Time `json:"mortgage_last_payment_date,omitempty"`

	StudentLoanBalance         float64    `json:"student_loan_balance"`
	StudentLoanMonthlyPayment  float64    `json:"student_loan_monthly_payment"`
	StudentLoanInterestRate    float64    `json:"student_loan_interest_rate"`
	StudentLoanIsOverdue       bool       `json:"student_loan_is_overdue"`
	StudentLoanNextPaymentDue  *time.Time `json:"student_loan_next_payment_due,omitempty"`
	StudentLoanLastPaymentDate *time.Time `json:"student_loan_last_payment_date,omitempty"`

	TotalLoanBalance         float64 `json:"total_loan_balance"`
	TotalMonthlyLoanPayments float64 `json:"total_monthly_loan_payments"`
	AnyLoanOverdue           bool    `json:"any_loan_overdue"`
	BalanceToIncomeRatio     float64 `json:"balance_to_income_ratio"`     // total balance / annual income
	PaymentBurdenPercent     float64 `json:"payment_burden_percent"`      // monthly payments / monthly income x 100
	MonthlyIncomeUsed        float64 `json:"monthly_income_used"`         // 0 = income unknown
}

// computeLoans aggregates loan accounts by type and, when monthly income is
// known, derives the combined burden ratios.
func (e *Engine) computeLoans(accounts []models.Account, liabilities []models.Liability, monthlyIncome float64) LoanSignals {
	out := LoanSignals{MonthlyIncomeUsed: monthlyIncome}

	byAccount := map[uuid.UUID]models.Liability{}
	for _, l := range liabilities {
		byAccount[l.AccountID] = l
	}

	for _, a := range accounts {
		switch a.Type {
		case models.AccountMortgage:
			out.HasMortgage = true
			out.NumLoans++
			out.MortgageBalance += a.BalanceCurrent
			if l, ok := byAccount[a.ID]; ok {
				out.MortgageMonthlyPayment += l.MinimumPayment
				if l.InterestRatePercent > 0 {
					out.MortgageInterestRate = l.InterestRatePercent
				}
				out.MortgageIsOverdue = out.MortgageIsOverdue || l.IsOverdue
				if l.NextPaymentDueDate != nil {
					out.MortgageNextPaymentDue = l.NextPaymentDueDate
				}
				if l.LastPaymentDate != nil {
					out.MortgageLastPaymentDate = l.LastPaymentDate
				}
			}
		case models.AccountStudentLoan:
			out.HasStudentLoan = true
			out.NumLoans++
			out.StudentLoanBalance += a.BalanceCurrent
			if l, ok := byAccount[a.ID]; ok {
				out.StudentLoanMonthlyPayment += l.MinimumPayment
				if l.InterestRatePercent > 0 {
					out.StudentLoanInterestRate = l.InterestRatePercent
				}
				out.StudentLoanIsOverdue = out.StudentLoanIsOverdue || l.IsOverdue
				if l.NextPaymentDueDate != nil {
					out.StudentLoanNextPaymentDue = l.NextPaymentDueDate
				}
				if l.LastPaymentDate != nil {
					out.StudentLoanLastPaymentDate = l.LastPaymentDate
				}
			}
		}
	}

	out.TotalLoanBalance = out.MortgageBalance + out.StudentLoanBalance
	out.TotalMonthlyLoanPayments = out.MortgageMonthlyPayment + out.StudentLoanMonthlyPayment
	out.AnyLoanOverdue = out.MortgageIsOverdue || out.StudentLoanIsOverdue

	if monthlyIncome > 0 {
		out.BalanceToIncomeRatio = out.TotalLoanBalance / (monthlyIncome * 12)
		out.PaymentBurdenPercent = out.TotalMonthlyLoanPayments / monthlyIncome * 100
	}
	return out
}
