package models

import (
	"time"

	"github.com/google/uuid"
)

// Transaction is a single ledger entry. Amount follows the aggregator
// convention: positive = outflow (expense or payment), negative = inflow
// (income or deposit).
type Transaction struct {
	ID               uuid.UUID `db:"id"`
	AccountID        uuid.UUID `db:"account_id"`
	UserID           uuid.UUID `db:"user_id"`
	Date             time.Time `db:"date"`
	Amount           float64   `db:"amount"`
	MerchantName     string    `db:"merchant_name"`
	MerchantEntityID string    `db:"merchant_entity_id"`
	CategoryPrimary  string    `db:"category_primary"`
	CategoryDetailed string    `db:"category_detailed"`
	CreatedAt        time.Time `db:"created_at"`
}

// IsExpense reports whether the transaction is an outflow.
func (t *Transaction) IsExpense() bool {
	return t.Amount > 0
}

// IsInflow reports whether the transaction is a deposit or income.
func (t *Transaction) IsInflow() bool {
	return t.Amount < 0
}
