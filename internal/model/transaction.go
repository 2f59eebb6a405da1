package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TransactionDeposit  TransactionType = "Deposit"
	TransactionWithdraw TransactionType = "Withdraw"
)

// Transaction is a single immutable ledger record. Rows are only ever
// inserted, never updated or deleted.
type Transaction struct {
	ID          int64           `json:"-"`
	UserID      int64           `json:"-"`
	Type        TransactionType `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	ProcessedAt time.Time       `json:"processed_at"`
}
