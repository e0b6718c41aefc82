package repository

import (
	"context"

	"spendlens/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

var consentColumns = []string{"id", "user_id", "consent_status", "source", "notes", "created_at"}

// ConsentRepository stores the consent audit trail. Append-only.
type ConsentRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewConsentRepository(db *pgxpool.Pool, logger *zap.Logger) *ConsentRepository {
	return &ConsentRepository{
		db:     db,
		logger: logger,
	}
}

func (r *ConsentRepository) Create(ctx context.Context, log *models.ConsentLog) error {
	query := squirrel.Insert("consent_logs").
		Columns(consentColumns...).
		Values(log.ID, log.UserID, log.ConsentStatus, log.Source, log.Notes, log.CreatedAt).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

func (r *ConsentRepository) ListByUserID(ctx context.Context, userID uuid.UUID) ([]models.ConsentLog, error) {
	query := squirrel.Select(consentColumns...).
		From("consent_logs").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("created_at DESC").
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

	var logs []models.ConsentLog
	for rows.Next() {
		var l models.ConsentLog
		if err := rows.Scan(
			&l.ID, &l.UserID, &l.ConsentStatus, &l.Source, &l.Notes, &l.CreatedAt,
		); err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}

	return logs, rows.Err()
}
