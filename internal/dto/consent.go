package dto

import "spendlens/internal/models"

type ConsentRequest struct {
	Consent bool   `json:"consent"`
	Notes   string `json:"notes"`
}

type ConsentResponse struct {
	UserID    string `json:"user_id"`
	Consent   bool   `json:"consent"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

type ConsentLogResponse struct {
	ID        string `json:"id"`
	Consent   bool   `json:"consent"`
	Source    string `json:"source"`
	Notes     string `json:"notes,omitempty"`
	CreatedAt string `json:"created_at"`
}

func ToConsentLogResponses(logs []models.ConsentLog) []ConsentLogResponse {
	out := make([]ConsentLogResponse, 0, len(logs))
	for _, l := range logs {
		out = append(out, ConsentLogResponse{
			ID:        l.ID.String(),
			Consent:   l.ConsentStatus,
			Source:    l.Source,
			Notes:     l.Notes,
			CreatedAt: l.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		})
	}
	return out
}
