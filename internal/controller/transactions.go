package controller

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/render"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"atmcore/internal/core"
	"atmcore/internal/middlewareinternal"
	"atmcore/internal/repository"
	"atmcore/internal/service"
)

type TransactionController struct {
	ledgerService core.LedgerService
	logger        *zap.Logger
}

func NewTransactionController(ledgerService core.LedgerService, logger *zap.Logger) *TransactionController {
	return &TransactionController{
		ledgerService: ledgerService,
		logger:        logger,
	}
}

type amountRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

func (c *TransactionController) Deposit(w http.ResponseWriter, r *http.Request) {
	c.mutate(w, r, c.ledgerService.Deposit)
}

func (c *TransactionController) Withdraw(w http.ResponseWriter, r *http.Request) {
	c.mutate(w, r, c.ledgerService.Withdraw)
}

func (c *TransactionController) mutate(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, userID int64, amount decimal.Decimal) (decimal.Decimal, error)) {
	userID, ok := middlewareinternal.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var request amountRequest
	if err := render.DecodeJSON(r.Body, &request); err != nil {
		http.Error(w, "Invalid request format", http.StatusBadRequest)
		return
	}

	newBalance, err := op(r.Context(), userID, request.Amount)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidAmount):
			http.Error(w, "Amount must be positive", http.StatusBadRequest)
		case errors.Is(err, repository.ErrInsufficientFunds):
			http.Error(w, "Insufficient funds", http.StatusPaymentRequired)
		case errors.Is(err, repository.ErrNotFound):
			http.Error(w, "Account not found", http.StatusNotFound)
		default:
			c.logger.Error("Ledger operation failed", zap.Error(err))
			http.Error(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	render.JSON(w, r, balanceResponse{Balance: newBalance})
}

func (c *TransactionController) GetTransactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := middlewareinternal.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			http.Error(w, "Invalid limit", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	txns, err := c.ledgerService.History(r.Context(), userID, limit)
	if err != nil {
		c.logger.Error("Failed to load transactions", zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	if len(txns) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	render.JSON(w, r, txns)
}
