package dto

import "spendlens/internal/models"

type RecommendationResponse struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	Rationale string `json:"rationale"`
	Persona   string `json:"persona,omitempty"`
	SignalID  string `json:"signal_id"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
}

type GenerateResponse struct {
	Generated       bool                     `json:"generated"`
	Recommendations []RecommendationResponse `json:"recommendations"`
}

type ReviewRequest struct {
	Status string `json:"status" validate:"required,oneof=approved rejected hidden"`
}

type BatchGenerateRequest struct {
	UserIDs []string `json:"user_ids" validate:"required,min=1"`
}

func ToRecommendationResponse(rec models.Recommendation) RecommendationResponse {
	return RecommendationResponse{
		ID:        rec.ID.String(),
		Type:      string(rec.Type),
		Title:     rec.Title,
		Content:   rec.Content,
		Rationale: rec.Rationale,
		Persona:   rec.Persona,
		SignalID:  rec.SignalID,
		Status:    string(rec.Status),
		CreatedAt: rec.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

func ToRecommendationResponses(recs []models.Recommendation) []RecommendationResponse {
	out := make([]RecommendationResponse, 0, len(recs))
	for _, rec := range recs {
		out = append(out, ToRecommendationResponse(rec))
	}
	return out
}
