package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"atmcore/internal/model"
)

var defaultBalance = decimal.RequireFromString("1000.00")

// MemoryStore is an in-memory implementation of the repository interfaces
// with the same semantics as the Postgres-backed ones: mutation plus log
// append happen under one lock, the sufficiency check and the balance
// adjustment are a single conditional step, and unknown accounts are never
// provisioned implicitly.
type MemoryStore struct {
	mu         sync.Mutex
	nextUserID int64
	nextTxnID  int64
	users      map[int64]*model.User
	byLogin    map[string]int64
	txns       map[int64][]*model.Transaction
}

var (
	_ UserRepository        = (*MemoryStore)(nil)
	_ LedgerRepository      = (*MemoryStore)(nil)
	_ TransactionRepository = (*MemoryStore)(nil)
)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:   make(map[int64]*model.User),
		byLogin: make(map[string]int64),
		txns:    make(map[int64][]*model.Transaction),
	}
}

func (s *MemoryStore) Create(_ context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.byLogin[user.Login]; taken {
		return ErrDuplicateLogin
	}

	s.nextUserID++
	user.ID = s.nextUserID
	user.Balance = defaultBalance
	user.CreatedAt = time.Now().UTC()

	cp := *user
	s.users[user.ID] = &cp
	s.byLogin[user.Login] = user.ID
	return nil
}

func (s *MemoryStore) GetByLogin(_ context.Context, login string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.byLogin[login]
	if !ok {
		return nil, nil
	}
	cp := *s.users[id]
	return &cp, nil
}

func (s *MemoryStore) GetBalance(_ context.Context, userID int64) (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok {
		return decimal.Zero, ErrNotFound
	}
	return u.Balance, nil
}

// Apply mirrors the conditional-update semantics of the SQL implementation:
// the check and the adjustment are one step under the lock, and the log
// entry is appended before the lock is released so no caller can observe
// the balance change without its record.
func (s *MemoryStore) Apply(_ context.Context, userID int64, txnType model.TransactionType, amount decimal.Decimal) (decimal.Decimal, *model.Transaction, error) {
	delta := amount
	if txnType == model.TransactionWithdraw {
		delta = amount.Neg()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok {
		return decimal.Zero, nil, ErrNotFound
	}

	newBalance := u.Balance.Add(delta)
	if newBalance.IsNegative() {
		return decimal.Zero, nil, ErrInsufficientFunds
	}
	u.Balance = newBalance

	s.nextTxnID++
	txn := &model.Transaction{
		ID:          s.nextTxnID,
		UserID:      userID,
		Type:        txnType,
		Amount:      amount,
		ProcessedAt: time.Now().UTC(),
	}
	s.txns[userID] = append(s.txns[userID], txn)

	cp := *txn
	return newBalance, &cp, nil
}

func (s *MemoryStore) GetRecent(_ context.Context, userID int64, limit int) ([]*model.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all := s.txns[userID]
	out := make([]*model.Transaction, 0, len(all))
	for _, txn := range all {
		cp := *txn
		out = append(out, &cp)
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].ProcessedAt.Equal(out[j].ProcessedAt) {
			return out[i].ProcessedAt.After(out[j].ProcessedAt)
		}
		return out[i].ID > out[j].ID
	})

	if limit >= 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
