package accounts

import (
	"context"
	"crypto/subtle"
	"fmt"
	"sync"

	"github.com/sbayu21/Secure-banking-system/internal/common"
)

// MemoryRepository is the in-memory account store used by the core server.
// A single mutex guards the whole map, which keeps every read-modify-write
// sequence (balance check + mutation + history append) one critical
// section. The sections are brief and CPU-only, so the global lock is not a
// bottleneck at this system's scale.
type MemoryRepository struct {
	mu       sync.Mutex
	accounts map[string]*Account
}

// NewMemoryRepository creates a store holding copies of the seed accounts.
func NewMemoryRepository(seed ...Account) *MemoryRepository {
	m := &MemoryRepository{accounts: make(map[string]*Account, len(seed))}
	for _, a := range seed {
		acc := a
		acc.History = append([]TransactionRecord(nil), a.History...)
		m.accounts[acc.ID] = &acc
	}
	return m
}

func (m *MemoryRepository) Authenticate(ctx context.Context, accountID, password string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	acc, ok := m.accounts[accountID]
	if !ok {
		return common.ErrAuthenticationFailed
	}
	if subtle.ConstantTimeCompare([]byte(acc.Password), []byte(password)) != 1 {
		return common.ErrAuthenticationFailed
	}
	return nil
}

func (m *MemoryRepository) Balance(ctx context.Context, accountID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	acc, ok := m.accounts[accountID]
	if !ok {
		return 0, fmt.Errorf("%w: %s", common.ErrAccountNotFound, accountID)
	}
	return acc.Balance, nil
}

func (m *MemoryRepository) Deposit(ctx context.Context, accountID string, amount int64, rec TransactionRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	acc, ok := m.accounts[accountID]
	if !ok {
		return fmt.Errorf("%w: %s", common.ErrAccountNotFound, accountID)
	}

	acc.Balance += amount
	acc.History = append(acc.History, rec)
	return nil
}

func (m *MemoryRepository) Withdraw(ctx context.Context, accountID string, amount int64, rec TransactionRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	acc, ok := m.accounts[accountID]
	if !ok {
		return fmt.Errorf("%w: %s", common.ErrAccountNotFound, accountID)
	}
	if amount > acc.Balance {
		return common.ErrInsufficientFunds
	}

	acc.Balance -= amount
	acc.History = append(acc.History, rec)
	return nil
}

func (m *MemoryRepository) History(ctx context.Context, accountID string) ([]TransactionRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	acc, ok := m.accounts[accountID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", common.ErrAccountNotFound, accountID)
	}
	return append([]TransactionRecord(nil), acc.History...), nil
}

func (m *MemoryRepository) Create(ctx context.Context, accountID, password string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.accounts[accountID]; ok {
		return fmt.Errorf("%w: %s", common.ErrAccountExists, accountID)
	}
	m.accounts[accountID] = &Account{ID: accountID, Password: password}
	return nil
}

func (m *MemoryRepository) RecordActivity(ctx context.Context, accountID string, rec TransactionRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	acc, ok := m.accounts[accountID]
	if !ok {
		return fmt.Errorf("%w: %s", common.ErrAccountNotFound, accountID)
	}
	acc.History = append(acc.History, rec)
	return nil
}
