package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID               uuid.UUID  `db:"id"`
	Username         string     `db:"username"`
	Email            string     `db:"email"`
	Password         string     `db:"password"`
	CreditScore      *int       `db:"credit_score"`
	ConsentStatus    bool       `db:"consent_status"`
	ConsentUpdatedAt *time.Time `db:"consent_updated_at"`
	CreatedAt        time.Time  `db:"created_at"`
	UpdatedAt        time.Time  `db:"updated_at"`
}

// HasConsent reports whether the user has explicitly opted in to
// recommendation generation. Anything other than an explicit true is no.
func (u *User) HasConsent() bool {
	return u.ConsentStatus
}
