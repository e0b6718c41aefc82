package repository

import (
	"context"

	"spendlens/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

var transactionColumns = []string{"id", "account_id", "user_id", "date", "amount", "merchant_name", "merchant_entity_id", "category_primary", "category_detailed", "created_at"}

type TransactionRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewTransactionRepository(db *pgxpool.Pool, logger *zap.Logger) *TransactionRepository {
	return &TransactionRepository{
		db:     db,
		logger: logger,
	}
}

func (r *TransactionRepository) Create(ctx context.Context, tx *models.Transaction) error {
	query := squirrel.Insert("transactions").
		Columns(transactionColumns...).
		Values(tx.ID, tx.AccountID, tx.UserID, tx.Date, tx.Amount, tx.MerchantName, tx.MerchantEntityID, tx.CategoryPrimary, tx.CategoryDetailed, tx.CreatedAt).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

func (r *TransactionRepository) CreateBatch(ctx context.Context, transactions []*models.Transaction) error {
	if len(transactions) == 0 {
		return nil
	}

	builder := squirrel.Insert("transactions").
		Columns(transactionColumns...).
		PlaceholderFormat(squirrel.Dollar)

	for _, tx := range transactions {
		builder = builder.Values(tx.ID, tx.AccountID, tx.UserID, tx.Date, tx.Amount, tx.MerchantName, tx.MerchantEntityID, tx.CategoryPrimary, tx.CategoryDetailed, tx.CreatedAt)
	}

	sql, args, err := builder.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

func (r *TransactionRepository) GetByUserID(ctx context.Context, userID uuid.UUID) ([]models.Transaction, error) {
	query := squirrel.Select(transactionColumns...).
		From("transactions").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("date ASC").
		PlaceholderFormat(squirrel.Dollar)

	return r.queryMany(ctx, query)
}

func (r *TransactionRepository) GetByAccountID(ctx context.Context, accountID uuid.UUID) ([]models.Transaction, error) {
	query := squirrel.Select(transactionColumns...).
		From("transactions").
		Where(squirrel.Eq{"account_id": accountID}).
		OrderBy("date ASC").
		PlaceholderFormat(squirrel.Dollar)

	return r.queryMany(ctx, query)
}

func (r *TransactionRepository) queryMany(ctx context.Context, query squirrel.SelectBuilder) ([]models.Transaction, error) {
	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var transactions []models.Transaction
	for rows.Next() {
		var tx models.Transaction
		if err := rows.Scan(
			&tx.ID, &tx.AccountID, &tx.UserID, &tx.Date, &tx.Amount, &tx.MerchantName, &tx.MerchantEntityID, &tx.CategoryPrimary, &tx.CategoryDetailed, &tx.CreatedAt,
		); err != nil {
			return nil, err
		}
		transactions = append(transactions, tx)
	}

	return transactions, rows.Err()
}
