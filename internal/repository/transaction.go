package repository

import (
	"context"
	"fmt"

	"atmcore/internal/model"
)

type TransactionRepository interface {
	GetRecent(ctx context.Context, userID int64, limit int) ([]*model.Transaction, error)
}

type transactionRepository struct {
	db *Database
}

func NewTransactionRepository(db *Database) TransactionRepository {
	return &transactionRepository{db: db}
}

// GetRecent returns up to limit most recent transactions. Ties on the
// timestamp are broken by id so the order is a deterministic total order
// even when the clock resolution is coarse.
func (r *transactionRepository) GetRecent(ctx context.Context, userID int64, limit int) ([]*model.Transaction, error) {
	query := `SELECT id, user_id, type, amount, processed_at
              FROM transactions
              WHERE user_id = $1
              ORDER BY processed_at DESC, id DESC
              LIMIT $2`
	rows, err := r.db.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var txns []*model.Transaction
	for rows.Next() {
		var txn model.Transaction
		if err := rows.Scan(&txn.ID, &txn.UserID, &txn.Type, &txn.Amount, &txn.ProcessedAt); err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		txns = append(txns, &txn)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return txns, nil
}
