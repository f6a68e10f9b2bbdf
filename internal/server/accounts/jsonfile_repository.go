package accounts

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/sbayu21/Secure-banking-system/internal/common"
)

// JSONFileRepository persists the account store to a single JSON file, the
// way the legacy HTTP deployment kept its user_db.json. Every operation
// loads, mutates and rewrites the file under one mutex, so the linearizable
// contract holds; throughput is whatever the disk gives. Suitable for demo
// deployments, not for load.
type JSONFileRepository struct {
	mu   sync.Mutex
	path string
}

type diskRecord struct {
	ID         string    `json:"id"`
	Timestamp  time.Time `json:"timestamp"`
	TerminalID string    `json:"terminal_id"`
	Action     string    `json:"action"`
}

type diskAccount struct {
	Password string       `json:"password"`
	Balance  int64        `json:"balance"`
	Activity []diskRecord `json:"activity"`
}

// NewJSONFileRepository opens (or lazily creates) the store at path and
// writes any seed accounts that are not present yet.
func NewJSONFileRepository(path string, seed ...Account) (*JSONFileRepository, error) {
	r := &JSONFileRepository{path: path}

	r.mu.Lock()
	defer r.mu.Unlock()

	users, err := r.load()
	if err != nil {
		return nil, err
	}

	changed := false
	for _, a := range seed {
		if _, ok := users[a.ID]; ok {
			continue
		}
		users[a.ID] = &diskAccount{Password: a.Password, Balance: a.Balance}
		changed = true
	}
	if changed {
		if err := r.save(users); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *JSONFileRepository) load() (map[string]*diskAccount, error) {
	raw, err := os.ReadFile(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]*diskAccount{}, nil
		}
		return nil, fmt.Errorf("read %s: %w", r.path, err)
	}

	users := map[string]*diskAccount{}
	if err := json.Unmarshal(raw, &users); err != nil {
		return nil, fmt.Errorf("parse %s: %w", r.path, err)
	}
	return users, nil
}

func (r *JSONFileRepository) save(users map[string]*diskAccount) error {
	raw, err := json.MarshalIndent(users, "", "    ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(r.path, raw, 0o640); err != nil {
		return fmt.Errorf("write %s: %w", r.path, err)
	}
	return nil
}

func toDiskRecord(rec TransactionRecord) diskRecord {
	return diskRecord{ID: rec.ID, Timestamp: rec.Timestamp, TerminalID: rec.TerminalID, Action: rec.Action}
}

func (r *JSONFileRepository) Authenticate(ctx context.Context, accountID, password string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	users, err := r.load()
	if err != nil {
		return err
	}
	acc, ok := users[accountID]
	if !ok {
		return common.ErrAuthenticationFailed
	}
	if subtle.ConstantTimeCompare([]byte(acc.Password), []byte(password)) != 1 {
		return common.ErrAuthenticationFailed
	}
	return nil
}

func (r *JSONFileRepository) Balance(ctx context.Context, accountID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	users, err := r.load()
	if err != nil {
		return 0, err
	}
	acc, ok := users[accountID]
	if !ok {
		return 0, fmt.Errorf("%w: %s", common.ErrAccountNotFound, accountID)
	}
	return acc.Balance, nil
}

func (r *JSONFileRepository) Deposit(ctx context.Context, accountID string, amount int64, rec TransactionRecord) error {
	return r.mutate(accountID, func(acc *diskAccount) error {
		acc.Balance += amount
		acc.Activity = append(acc.Activity, toDiskRecord(rec))
		return nil
	})
}

func (r *JSONFileRepository) Withdraw(ctx context.Context, accountID string, amount int64, rec TransactionRecord) error {
	return r.mutate(accountID, func(acc *diskAccount) error {
		if amount > acc.Balance {
			return common.ErrInsufficientFunds
		}
		acc.Balance -= amount
		acc.Activity = append(acc.Activity, toDiskRecord(rec))
		return nil
	})
}

func (r *JSONFileRepository) History(ctx context.Context, accountID string) ([]TransactionRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	users, err := r.load()
	if err != nil {
		return nil, err
	}
	acc, ok := users[accountID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", common.ErrAccountNotFound, accountID)
	}

	recs := make([]TransactionRecord, 0, len(acc.Activity))
	for _, d := range acc.Activity {
		recs = append(recs, TransactionRecord{
			ID:         d.ID,
			Timestamp:  d.Timestamp,
			TerminalID: d.TerminalID,
			AccountID:  accountID,
			Action:     d.Action,
		})
	}
	return recs, nil
}

func (r *JSONFileRepository) Create(ctx context.Context, accountID, password string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	users, err := r.load()
	if err != nil {
		return err
	}
	if _, ok := users[accountID]; ok {
		return fmt.Errorf("%w: %s", common.ErrAccountExists, accountID)
	}
	users[accountID] = &diskAccount{Password: password}
	return r.save(users)
}

func (r *JSONFileRepository) RecordActivity(ctx context.Context, accountID string, rec TransactionRecord) error {
	return r.mutate(accountID, func(acc *diskAccount) error {
		acc.Activity = append(acc.Activity, toDiskRecord(rec))
		return nil
	})
}

// mutate runs fn on the account inside the load/save critical section. The
// file is rewritten only when fn succeeds, which is what keeps a failed
// withdraw from leaving any trace.
func (r *JSONFileRepository) mutate(accountID string, fn func(*diskAccount) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	users, err := r.load()
	if err != nil {
		return err
	}
	acc, ok := users[accountID]
	if !ok {
		return fmt.Errorf("%w: %s", common.ErrAccountNotFound, accountID)
	}
	if err := fn(acc); err != nil {
		return err
	}
	return r.save(users)
}
