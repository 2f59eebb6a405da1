package controller

import (
	"errors"
	"net/http"

	"github.com/go-chi/render"
	"github.com/shopspring/decimal"

	"atmcore/internal/core"
	"atmcore/internal/middlewareinternal"
	"atmcore/internal/repository"
)

type BalanceController struct {
	ledgerService core.LedgerService
}

func NewBalanceController(ledgerService core.LedgerService) *BalanceController {
	return &BalanceController{ledgerService: ledgerService}
}

type balanceResponse struct {
	Balance decimal.Decimal `json:"balance"`
}

func (c *BalanceController) GetBalance(w http.ResponseWriter, r *http.Request) {
	userID, ok := middlewareinternal.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	balance, err := c.ledgerService.Balance(r.Context(), userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			http.Error(w, "Account not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	render.JSON(w, r, balanceResponse{Balance: balance})
}
