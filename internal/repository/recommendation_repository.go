package repository

import (
	"context"
	"errors"
	"time"

	"spendlens/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

var recommendationColumns = []string{"id", "user_id", "type", "title", "content", "rationale", "persona", "signal_id", "template_id", "offer_id", "status", "created_at", "updated_at"}

// ErrActiveBatchExists reports a lost generation race: another run inserted
// an active batch for the user between the caller's check and its insert.
var ErrActiveBatchExists = errors.New("user already has an active recommendation batch")

type RecommendationRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewRecommendationRepository(db *pgxpool.Pool, logger *zap.Logger) *RecommendationRepository {
	return &RecommendationRepository{
		db:     db,
		logger: logger,
	}
}

// CreateBatchWithTraces inserts a batch and its decision traces in one
// transaction, serialized per user by an advisory lock. A failure rolls both
// inserts back, so a recommendation never lands without its trace.
func (r *RecommendationRepository) CreateBatchWithTraces(ctx context.Context, userID uuid.UUID, recommendations []*models.Recommendation, traces []*models.DecisionTrace) error {
	if len(recommendations) == 0 {
		return nil
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := lockUserBatch(ctx, tx, userID); err != nil {
		return err
	}
	if err := insertBatch(ctx, tx, recommendations, traces); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// CreateBatchExclusive is CreateBatchWithTraces with a duplicate guard: while
// holding the advisory lock it rechecks for active rows and returns
// ErrActiveBatchExists instead of inserting a second batch.
func (r *RecommendationRepository) CreateBatchExclusive(ctx context.Context, userID uuid.UUID, recommendations []*models.Recommendation, traces []*models.DecisionTrace) error {
	if len(recommendations) == 0 {
		return nil
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := lockUserBatch(ctx, tx, userID); err != nil {
		return err
	}

	sql, args, err := squirrel.Select("COUNT(*)").
		From("recommendations").
		Where(squirrel.Eq{"user_id": userID, "status": models.ActiveStatuses}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return err
	}
	var active int
	if err := tx.QueryRow(ctx, sql, args...).Scan(&active); err != nil {
		return err
	}
	if active > 0 {
		return ErrActiveBatchExists
	}

	if err := insertBatch(ctx, tx, recommendations, traces); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// lockUserBatch takes a transaction-scoped advisory lock keyed on the user,
// so concurrent generation runs for the same user execute one at a time.
func lockUserBatch(ctx context.Context, tx pgx.Tx, userID uuid.UUID) error {
	_, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock(hashtextextended($1, 0))", userID.String())
	return err
}

func insertBatch(ctx context.Context, tx pgx.Tx, recommendations []*models.Recommendation, traces []*models.DecisionTrace) error {
	builder := squirrel.Insert("recommendations").
		Columns(recommendationColumns...).
		PlaceholderFormat(squirrel.Dollar)

	for _, rec := range recommendations {
		builder = builder.Values(rec.ID, rec.UserID, rec.Type, rec.Title, rec.Content, rec.Rationale, rec.Persona, rec.SignalID, rec.TemplateID, rec.OfferID, rec.Status, rec.CreatedAt, rec.UpdatedAt)
	}

	sql, args, err := builder.ToSql()
	if err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, sql, args...); err != nil {
		return err
	}

	if len(traces) == 0 {
		return nil
	}

	traceBuilder := squirrel.Insert("decision_traces").
		Columns(traceColumns...).
		PlaceholderFormat(squirrel.Dollar)

	for _, t := range traces {
		traceBuilder = traceBuilder.Values(t.ID, t.RecommendationID, t.PersonaID, t.SignalID, t.SchemaVersion, t.Payload, t.CreatedAt)
	}

	sql, args, err = traceBuilder.ToSql()
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx, sql, args...)
	return err
}

func (r *RecommendationRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Recommendation, error) {
	query := squirrel.Select(recommendationColumns...).
		From("recommendations").
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	var rec models.Recommendation
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&rec.ID, &rec.UserID, &rec.Type, &rec.Title, &rec.Content, &rec.Rationale, &rec.Persona, &rec.SignalID, &rec.TemplateID, &rec.OfferID, &rec.Status, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &rec, nil
}

func (r *RecommendationRepository) GetByUserID(ctx context.Context, userID uuid.UUID) ([]models.Recommendation, error) {
	query := squirrel.Select(recommendationColumns...).
		From("recommendations").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("created_at DESC").
		PlaceholderFormat(squirrel.Dollar)

	return r.queryMany(ctx, query)
}

// GetActiveByUserID returns the recommendations that block a new generation
// run: pending, flagged, or approved.
func (r *RecommendationRepository) GetActiveByUserID(ctx context.Context, userID uuid.UUID) ([]models.Recommendation, error) {
	query := squirrel.Select(recommendationColumns...).
		From("recommendations").
		Where(squirrel.Eq{"user_id": userID, "status": models.ActiveStatuses}).
		OrderBy("created_at DESC").
		PlaceholderFormat(squirrel.Dollar)

	return r.queryMany(ctx, query)
}

func (r *RecommendationRepository) GetByStatus(ctx context.Context, status models.RecommendationStatus, limit uint64) ([]models.Recommendation, error) {
	query := squirrel.Select(recommendationColumns...).
		From("recommendations").
		Where(squirrel.Eq{"status": status}).
		OrderBy("created_at ASC").
		Limit(limit).
		PlaceholderFormat(squirrel.Dollar)

	return r.queryMany(ctx, query)
}

func (r *RecommendationRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.RecommendationStatus, at time.Time) error {
	query := squirrel.Update("recommendations").
		Set("status", status).
		Set("updated_at", at).
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

// DeletePendingByUserID clears only the not-yet-reviewed batch. Approved,
// rejected, flagged, and hidden rows are history and stay put.
func (r *RecommendationRepository) DeletePendingByUserID(ctx context.Context, userID uuid.UUID) error {
	query := squirrel.Delete("recommendations").
		Where(squirrel.Eq{"user_id": userID, "status": models.StatusPending}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

func (r *RecommendationRepository) queryMany(ctx context.Context, query squirrel.SelectBuilder) ([]models.Recommendation, error) {
	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recommendations []models.Recommendation
	for rows.Next() {
		var rec models.Recommendation
		if err := rows.Scan(
			&rec.ID, &rec.UserID, &rec.Type, &rec.Title, &rec.Content, &rec.Rationale, &rec.Persona, &rec.SignalID, &rec.TemplateID, &rec.OfferID, &rec.Status, &rec.CreatedAt, &rec.UpdatedAt,
		); err != nil {
			return nil, err
		}
		recommendations = append(recommendations, rec)
	}

	return recommendations, rows.Err()
}
