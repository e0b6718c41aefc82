package repository

import (
	"context"

	"spendlens/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

var liabilityColumns = []string{"id", "account_id", "type", "apr_percent", "interest_rate_percent", "minimum_payment", "is_overdue", "next_payment_due_date", "last_payment_date", "last_payment_amount", "created_at"}

type LiabilityRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewLiabilityRepository(db *pgxpool.Pool, logger *zap.Logger) *LiabilityRepository {
	return &LiabilityRepository{
		db:     db,
		logger: logger,
	}
}

func (r *LiabilityRepository) Create(ctx context.Context, liability *models.Liability) error {
	query := squirrel.Insert("liabilities").
		Columns(liabilityColumns...).
		Values(liability.ID, liability.AccountID, liability.Type, liability.APRPercent, liability.InterestRatePercent, liability.MinimumPayment, liability.IsOverdue, liability.NextPaymentDueDate, liability.LastPaymentDate, liability.LastPaymentAmount, liability.CreatedAt).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

func (r *LiabilityRepository) CreateBatch(ctx context.Context, liabilities []*models.Liability) error {
	if len(liabilities) == 0 {
		return nil
	}

	builder := squirrel.Insert("liabilities").
		Columns(liabilityColumns...).
		PlaceholderFormat(squirrel.Dollar)

	for _, l := range liabilities {
		builder = builder.Values(l.ID, l.AccountID, l.Type, l.APRPercent, l.InterestRatePercent, l.MinimumPayment, l.IsOverdue, l.NextPaymentDueDate, l.LastPaymentDate, l.LastPaymentAmount, l.CreatedAt)
	}

	sql, args, err := builder.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

// GetByUserID returns liabilities for every account the user owns.
func (r *LiabilityRepository) GetByUserID(ctx context.Context, userID uuid.UUID) ([]models.Liability, error) {
	query := squirrel.Select(
		"l.id", "l.account_id", "l.type", "l.apr_percent", "l.interest_rate_percent", "l.minimum_payment", "l.is_overdue", "l.next_payment_due_date", "l.last_payment_date", "l.last_payment_amount", "l.created_at",
	).
		From("liabilities l").
		Join("accounts a ON a.id = l.account_id").
		Where(squirrel.Eq{"a.user_id": userID}).
		OrderBy("l.created_at ASC").
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

	var liabilities []models.Liability
	for rows.Next() {
		var l models.Liability
		if err := rows.Scan(
			&l.ID, &l.AccountID, &l.Type, &l.APRPercent, &l.InterestRatePercent, &l.MinimumPayment, &l.IsOverdue, &l.NextPaymentDueDate, &l.LastPaymentDate, &l.LastPaymentAmount, &l.CreatedAt,
		); err != nil {
			return nil, err
		}
		liabilities = append(liabilities, l)
	}

	return liabilities, rows.Err()
}
