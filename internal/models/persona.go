package models

import (
	"time"

	"github.com/google/uuid"
)

// PersonaHistory is one persisted persona assignment, kept per (user, window)
// for trend display. PersonaID is empty when no rule matched.
type PersonaHistory struct {
	ID          uuid.UUID `db:"id"`
	UserID      uuid.UUID `db:"user_id"`
	PersonaID   string    `db:"persona_id"`
	PersonaName string    `db:"persona_name"`
	WindowDays  int       `db:"window_days"`
	Reasoning   string    `db:"reasoning"`
	SignalsUsed []byte    `db:"signals_used"` // JSON map of the matched rule's evidence
	AssignedAt  time.Time `db:"assigned_at"`
}
