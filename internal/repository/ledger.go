package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"atmcore/internal/model"
)

// LedgerRepository performs the balance mutation together with its log
// append as one atomic unit.
type LedgerRepository interface {
	Apply(ctx context.Context, userID int64, txnType model.TransactionType, amount decimal.Decimal) (decimal.Decimal, *model.Transaction, error)
}

type ledgerRepository struct {
	db *Database
}

func NewLedgerRepository(db *Database) LedgerRepository {
	return &ledgerRepository{db: db}
}

// Apply adjusts the balance and inserts the matching transaction row in a
// single database transaction. The update is conditional: it only touches
// the row when the resulting balance stays non-negative, so two concurrent
// withdrawals on the same account can never both spend the same funds. The
// losing attempt sees zero rows updated and fails without writing anything.
func (r *ledgerRepository) Apply(ctx context.Context, userID int64, txnType model.TransactionType, amount decimal.Decimal) (decimal.Decimal, *model.Transaction, error) {
	delta := amount
	if txnType == model.TransactionWithdraw {
		delta = amount.Neg()
	}

	tx, err := r.db.BeginTx(ctx)
	if err != nil {
		return decimal.Zero, nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var newBalance decimal.Decimal
	query := `UPDATE users
              SET balance = balance + $1
              WHERE id = $2 AND balance + $1 >= 0
              RETURNING balance`
	err = tx.QueryRowContext(ctx, query, delta, userID).Scan(&newBalance)
	if errors.Is(err, sql.ErrNoRows) {
		// Nothing updated: either the account does not exist or the
		// precondition failed. Probe inside the same tx to tell them apart.
		var exists bool
		if probeErr := tx.QueryRowContext(ctx,
			`SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)`, userID,
		).Scan(&exists); probeErr != nil {
			return decimal.Zero, nil, fmt.Errorf("failed to probe account: %w", probeErr)
		}
		if !exists {
			return decimal.Zero, nil, ErrNotFound
		}
		return decimal.Zero, nil, ErrInsufficientFunds
	}
	if err != nil {
		return decimal.Zero, nil, fmt.Errorf("failed to update balance: %w", err)
	}

	txn := &model.Transaction{
		UserID:      userID,
		Type:        txnType,
		Amount:      amount,
		ProcessedAt: time.Now().UTC(),
	}
	err = tx.QueryRowContext(ctx,
		`INSERT INTO transactions (user_id, type, amount, processed_at)
         VALUES ($1, $2, $3, $4)
         RETURNING id`,
		txn.UserID, txn.Type, txn.Amount, txn.ProcessedAt,
	).Scan(&txn.ID)
	if err != nil {
		return decimal.Zero, nil, fmt.Errorf("failed to append transaction: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return decimal.Zero, nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return newBalance, txn, nil
}
