package models

import (
	"time"

	"github.com/google/uuid"
)

type AccountType string

const (
	AccountChecking       AccountType = "checking"
	AccountSavings        AccountType = "savings"
	AccountCreditCard     AccountType = "credit_card"
	AccountMortgage       AccountType = "mortgage"
	AccountStudentLoan    AccountType = "student_loan"
	AccountMoneyMarket    AccountType = "money_market"
	AccountHSA            AccountType = "hsa"
	AccountCashManagement AccountType = "cash_management"
)

// SavingsLikeTypes are the account types counted toward savings balances
// and net savings inflow.
var SavingsLikeTypes = map[AccountType]bool{
	AccountSavings:        true,
	AccountMoneyMarket:    true,
	AccountHSA:            true,
	AccountCashManagement: true,
}

// LoanTypes are the account types carrying amortized debt.
var LoanTypes = map[AccountType]bool{
	AccountMortgage:    true,
	AccountStudentLoan: true,
}

type Account struct {
	ID               uuid.UUID   `db:"id"`
	UserID           uuid.UUID   `db:"user_id"`
	Name             string      `db:"name"`
	Mask             string      `db:"mask"` // last four digits for display
	Type             AccountType `db:"type"`
	BalanceCurrent   float64     `db:"balance_current"`
	BalanceAvailable float64     `db:"balance_available"`
	CreditLimit      *float64    `db:"credit_limit"` // nil for non-revolving accounts
	CreatedAt        time.Time   `db:"created_at"`
}

// DisplayName returns a human-readable card/account label for rendered content.
func (a *Account) DisplayName() string {
	if a.Name != "" {
		return a.Name
	}
	switch a.Type {
	case AccountCreditCard:
		return "Credit Card"
	case AccountMortgage:
		return "Mortgage"
	case AccountStudentLoan:
		return "Student Loan"
	default:
		return "Account"
	}
}

// LastFour returns the display mask, or a placeholder when none is on file.
func (a *Account) LastFour() string {
	if a.Mask != "" {
		return a.Mask
	}
	return "****"
}
