package repository

import (
	"context"

	"spendlens/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

var personaColumns = []string{"id", "user_id", "persona_id", "persona_name", "window_days", "reasoning", "signals_used", "assigned_at"}

// PersonaRepository stores the persona assignment history, one row per
// (user, window) per generation run.
type PersonaRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewPersonaRepository(db *pgxpool.Pool, logger *zap.Logger) *PersonaRepository {
	return &PersonaRepository{
		db:     db,
		logger: logger,
	}
}

func (r *PersonaRepository) Create(ctx context.Context, history *models.PersonaHistory) error {
	query := squirrel.Insert("persona_history").
		Columns(personaColumns...).
		Values(history.ID, history.UserID, history.PersonaID, history.PersonaName, history.WindowDays, history.Reasoning, history.SignalsUsed, history.AssignedAt).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

func (r *PersonaRepository) GetLatestByUserID(ctx context.Context, userID uuid.UUID, windowDays int) (*models.PersonaHistory, error) {
	query := squirrel.Select(personaColumns...).
		From("persona_history").
		Where(squirrel.Eq{"user_id": userID, "window_days": windowDays}).
		OrderBy("assigned_at DESC").
		Limit(1).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	var history models.PersonaHistory
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&history.ID, &history.UserID, &history.PersonaID, &history.PersonaName, &history.WindowDays, &history.Reasoning, &history.SignalsUsed, &history.AssignedAt,
	)
	if err != nil {
		return nil, err
	}

	return &history, nil
}

func (r *PersonaRepository) ListByUserID(ctx context.Context, userID uuid.UUID) ([]models.PersonaHistory, error) {
	query := squirrel.Select(personaColumns...).
		From("persona_history").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("assigned_at DESC").
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.PersonaHistory
	for rows.Next() {
		var h models.PersonaHistory
		if err := rows.Scan(
			&h.ID, &h.UserID, &h.PersonaID, &h.PersonaName, &h.WindowDays, &h.Reasoning, &h.SignalsUsed, &h.AssignedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, h)
	}

	return out, rows.Err()
}
