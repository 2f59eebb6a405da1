package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"atmcore/internal/core"
	"atmcore/internal/metrics"
	"atmcore/internal/model"
	"atmcore/internal/repository"
)

var ErrInvalidAmount = errors.New("amount must be positive")

const (
	// DefaultHistoryLimit is the window returned when the caller does not
	// ask for a specific one.
	DefaultHistoryLimit = 10
	maxHistoryLimit     = 100
)

type ledgerService struct {
	userRepo   repository.UserRepository
	ledgerRepo repository.LedgerRepository
	txnRepo    repository.TransactionRepository
	logger     *zap.Logger
}

func NewLedgerService(
	userRepo repository.UserRepository,
	ledgerRepo repository.LedgerRepository,
	txnRepo repository.TransactionRepository,
	logger *zap.Logger,
) core.LedgerService {
	return &ledgerService{
		userRepo:   userRepo,
		ledgerRepo: ledgerRepo,
		txnRepo:    txnRepo,
		logger:     logger,
	}
}

func (s *ledgerService) Balance(ctx context.Context, userID int64) (decimal.Decimal, error) {
	return s.userRepo.GetBalance(ctx, userID)
}

func (s *ledgerService) Deposit(ctx context.Context, userID int64, amount decimal.Decimal) (decimal.Decimal, error) {
	return s.apply(ctx, userID, model.TransactionDeposit, amount)
}

func (s *ledgerService) Withdraw(ctx context.Context, userID int64, amount decimal.Decimal) (decimal.Decimal, error) {
	return s.apply(ctx, userID, model.TransactionWithdraw, amount)
}

func (s *ledgerService) apply(ctx context.Context, userID int64, txnType model.TransactionType, amount decimal.Decimal) (decimal.Decimal, error) {
	opLabel := "deposit"
	if txnType == model.TransactionWithdraw {
		opLabel = "withdraw"
	}

	if !amount.IsPositive() {
		metrics.LedgerOperations.WithLabelValues(opLabel, "invalid_amount").Inc()
		return decimal.Zero, ErrInvalidAmount
	}

	newBalance, txn, err := s.ledgerRepo.Apply(ctx, userID, txnType, amount)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrInsufficientFunds):
			metrics.LedgerOperations.WithLabelValues(opLabel, "insufficient_funds").Inc()
			return decimal.Zero, err
		case errors.Is(err, repository.ErrNotFound):
			metrics.LedgerOperations.WithLabelValues(opLabel, "not_found").Inc()
			return decimal.Zero, err
		}
		metrics.LedgerOperations.WithLabelValues(opLabel, "error").Inc()
		return decimal.Zero, fmt.Errorf("failed to apply %s: %w", opLabel, err)
	}

	metrics.LedgerOperations.WithLabelValues(opLabel, "ok").Inc()
	s.logger.Info("Ledger operation applied",
		zap.Int64("user_id", userID),
		zap.String("type", string(txnType)),
		zap.String("amount", amount.String()),
		zap.Int64("transaction_id", txn.ID))

	return newBalance, nil
}

// History returns the most recent transactions, newest first. A zero or
// negative limit falls back to DefaultHistoryLimit; limits above
// maxHistoryLimit are clamped.
func (s *ledgerService) History(ctx context.Context, userID int64, limit int) ([]*model.Transaction, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}
	return s.txnRepo.GetRecent(ctx, userID, limit)
}
