package dto

import "spendlens/internal/models"

// Signal and persona payloads serialize straight from the domain structs,
// which carry json tags; only history rows need reshaping.

type PersonaHistoryResponse struct {
	ID          string `json:"id"`
	PersonaID   string `json:"persona_id,omitempty"`
	PersonaName string `json:"persona_name"`
	WindowDays  int    `json:"window_days"`
	Reasoning   string `json:"reasoning"`
	AssignedAt  string `json:"assigned_at"`
}

func ToPersonaHistoryResponses(rows []models.PersonaHistory) []PersonaHistoryResponse {
	out := make([]PersonaHistoryResponse, 0, len(rows))
	for _, h := range rows {
		out = append(out, PersonaHistoryResponse{
			ID:          h.ID.String(),
			PersonaID:   h.PersonaID,
			PersonaName: h.PersonaName,
			WindowDays:  h.WindowDays,
			Reasoning:   h.Reasoning,
			AssignedAt:  h.AssignedAt.Format("2006-01-02T15:04:05Z07:00"),
		})
	}
	return out
}
