package models

import (
	"time"

	"github.com/google/uuid"
)

// Liability carries the lender-reported terms for a credit card or loan
// account.
type Liability struct {
	ID                  uuid.UUID   `db:"id"`
	AccountID           uuid.UUID   `db:"account_id"`
	Type                AccountType `db:"type"` // credit_card, mortgage, student_loan
	APRPercent          float64     `db:"apr_percent"`
	InterestRatePercent float64     `db:"interest_rate_percent"`
	MinimumPayment      float64     `db:"minimum_payment"`
	IsOverdue           bool        `db:"is_overdue"`
	NextPaymentDueDate  *time.Time  `db:"next_payment_due_date"`
	LastPaymentDate     *time.Time  `db:"last_payment_date"`
	LastPaymentAmount   float64     `db:"last_payment_amount"`
	CreatedAt           time.Time   `db:"created_at"`
}
