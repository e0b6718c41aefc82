package models

import (
	"time"

	"github.com/google/uuid"
)

type RecommendationType string

const (
	RecommendationEducation RecommendationType = "education"
	RecommendationOffer     RecommendationType = "offer"
)

type RecommendationStatus string

const (
	StatusPending  RecommendationStatus = "pending"
	StatusApproved RecommendationStatus = "approved"
	StatusRejected RecommendationStatus = "rejected"
	StatusFlagged  RecommendationStatus = "flagged"
	StatusHidden   RecommendationStatus = "hidden"
)

// ActiveStatuses are the statuses that block a new generation run. A user
// with any recommendation in one of these states keeps their current batch.
var ActiveStatuses = []RecommendationStatus{StatusPending, StatusFlagged, StatusApproved}

type Recommendation struct {
	ID         uuid.UUID            `db:"id"`
	UserID     uuid.UUID            `db:"user_id"`
	Type       RecommendationType   `db:"type"`
	Title      string               `db:"title"`
	Content    string               `db:"content"`
	Rationale  string               `db:"rationale"`
	Persona    string               `db:"persona"`
	SignalID   string               `db:"signal_id"`
	TemplateID string               `db:"template_id"` // education only
	OfferID    string               `db:"offer_id"`    // offer only
	Status     RecommendationStatus `db:"status"`
	CreatedAt  time.Time            `db:"created_at"`
	UpdatedAt  time.Time            `db:"updated_at"`
}

// IsActive reports whether the recommendation blocks regeneration.
func (r *Recommendation) IsActive() bool {
	switch r.Status {
	case StatusPending, StatusFlagged, StatusApproved:
		return true
	}
	return false
}

// DecisionTrace is the persisted audit record for one recommendation.
// Payload holds the full recommend.Trace as JSON; the indexed columns are
// duplicated for querying. Immutable once written.
type DecisionTrace struct {
	ID               uuid.UUID `db:"id"`
	RecommendationID uuid.UUID `db:"recommendation_id"`
	PersonaID        string    `db:"persona_id"`
	SignalID         string    `db:"signal_id"`
	SchemaVersion    string    `db:"schema_version"`
	Payload          []byte    `db:"payload"`
	CreatedAt        time.Time `db:"created_at"`
}
