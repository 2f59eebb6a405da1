package repository

import "errors"

var (
	// ErrDuplicateLogin is returned by Create when the login is already taken.
	ErrDuplicateLogin = errors.New("login already exists")

	// ErrNotFound is returned when the account id does not exist. Unknown
	// accounts are never provisioned implicitly.
	ErrNotFound = errors.New("account not found")

	// ErrInsufficientFunds is returned by Apply when a withdrawal would
	// drive the balance negative. The balance stays unchanged and no
	// transaction row is written.
	ErrInsufficientFunds = errors.New("insufficient funds")
)
