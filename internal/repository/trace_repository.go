package repository

import (
	"context"

	"spendlens/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

var traceColumns = []string{"id", "recommendation_id", "persona_id", "signal_id", "schema_version", "payload", "created_at"}

// TraceRepository reads decision traces. Traces are append-only and written
// only through RecommendationRepository, in the same transaction as the
// recommendations they explain.
type TraceRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewTraceRepository(db *pgxpool.Pool, logger *zap.Logger) *TraceRepository {
	return &TraceRepository{
		db:     db,
		logger: logger,
	}
}

func (r *TraceRepository) GetByRecommendationID(ctx context.Context, recommendationID uuid.UUID) (*models.DecisionTrace, error) {
	query := squirrel.Select(traceColumns...).
		From("decision_traces").
		Where(squirrel.Eq{"recommendation_id": recommendationID}).
		OrderBy("created_at DESC").
		Limit(1).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	var trace models.DecisionTrace
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&trace.ID, &trace.RecommendationID, &trace.PersonaID, &trace.SignalID, &trace.SchemaVersion, &trace.Payload, &trace.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &trace, nil
}
