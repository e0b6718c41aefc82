package models

import (
	"time"

	"github.com/google/uuid"
)

// ConsentLog is one row of the consent audit trail. Every consent check and
// every status change is recorded.
type ConsentLog struct {
	ID            uuid.UUID `db:"id"`
	UserID        uuid.UUID `db:"user_id"`
	ConsentStatus bool      `db:"consent_status"`
	Source        string    `db:"source"` // api, operator, system
	Notes         string    `db:"notes"`
	CreatedAt     time.Time `db:"created_at"`
}
