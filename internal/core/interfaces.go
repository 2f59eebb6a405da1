package core

import (
	"context"

	"github.com/shopspring/decimal"

	"atmcore/internal/model"
)

type (
	AuthService interface {
		Register(ctx context.Context, login, password string) (*model.User, string, error)
		Login(ctx context.Context, login, password string) (*model.User, string, error)
		Logout(sessionID string)
		ValidateToken(tokenString string) (int64, string, error)
		SweepSessions() int
	}

	LedgerService interface {
		Balance(ctx context.Context, userID int64) (decimal.Decimal, error)
		Deposit(ctx context.Context, userID int64, amount decimal.Decimal) (decimal.Decimal, error)
		Withdraw(ctx context.Context, userID int64, amount decimal.Decimal) (decimal.Decimal, error)
		History(ctx context.Context, userID int64, limit int) ([]*model.Transaction, error)
	}
)
