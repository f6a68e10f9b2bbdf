// Package accounts holds the account store: balances, passwords and
// activity histories behind a linearizable repository contract, plus the
// service layer that gives the session loop its command semantics.
package accounts

import "context"

// Repository is the persistence boundary of the account store.
//
// Every implementation must behave as a linearizable key-value object:
// concurrent operations on the same account observe a total order, and a
// balance mutation and its history append are one atomic unit, never
// observable separately. Withdraw fails closed on insufficient funds.
type Repository interface {
	// Authenticate returns nil iff the account exists and the password
	// matches. Both failure causes map to common.ErrAuthenticationFailed so
	// callers cannot (and therefore do not) leak which one it was.
	Authenticate(ctx context.Context, accountID, password string) error

	// Balance returns the current balance, or common.ErrAccountNotFound.
	Balance(ctx context.Context, accountID string) (int64, error)

	// Deposit adds amount to the balance and appends rec to the history
	// atomically.
	Deposit(ctx context.Context, accountID string, amount int64, rec TransactionRecord) error

	// Withdraw subtracts amount and appends rec atomically. When amount
	// exceeds the balance it returns common.ErrInsufficientFunds and
	// nothing is mutated.
	Withdraw(ctx context.Context, accountID string, amount int64, rec TransactionRecord) error

	// History returns the account's records in append order.
	History(ctx context.Context, accountID string) ([]TransactionRecord, error)

	// Create adds a new account with a zero balance, or returns
	// common.ErrAccountExists.
	Create(ctx context.Context, accountID, password string) error

	// RecordActivity appends a history-only record (balance checks, session
	// end) without touching the balance.
	RecordActivity(ctx context.Context, accountID string, rec TransactionRecord) error
}

// DefaultSeed returns the accounts the legacy server booted with.
func DefaultSeed() []Account {
	return []Account{
		{ID: "124356", Password: "pass123", Balance: 1000},
		{ID: "654321", Password: "abc321", Balance: 2500},
	}
}
