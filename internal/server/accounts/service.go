package accounts

import (
	"context"
	"fmt"

	"github.com/sbayu21/Secure-banking-system/internal/logging"
	"github.com/sbayu21/Secure-banking-system/internal/server/translog"
)

// Service sits between the session loop and the repository: it builds the
// transaction records, applies the mutation atomically through the
// repository and mirrors every committed record to the durable transaction
// log.
type Service struct {
	repo   Repository
	log    *translog.Writer
	logger logging.Logger
}

// NewService wires the account service. log may be nil (no durable log, as
// in tests).
func NewService(repo Repository, log *translog.Writer, logger logging.Logger) *Service {
	return &Service{repo: repo, log: log, logger: logger.With("module", "accounts")}
}

// Authenticate checks the credentials against the store.
func (s *Service) Authenticate(ctx context.Context, accountID, password string) error {
	return s.repo.Authenticate(ctx, accountID, password)
}

// CheckBalance returns the balance and records the lookup in the activity
// history, as the legacy server did.
func (s *Service) CheckBalance(ctx context.Context, terminalID, accountID string) (int64, error) {
	balance, err := s.repo.Balance(ctx, accountID)
	if err != nil {
		return 0, err
	}

	rec := NewRecord(terminalID, accountID, "Checked balance")
	if err := s.repo.RecordActivity(ctx, accountID, rec); err != nil {
		return 0, err
	}
	s.appendLog(ctx, rec)

	return balance, nil
}

// Deposit adds amount to the account.
func (s *Service) Deposit(ctx context.Context, terminalID, accountID string, amount int64) error {
	rec := NewRecord(terminalID, accountID, fmt.Sprintf("Deposited $%d", amount))
	if err := s.repo.Deposit(ctx, accountID, amount, rec); err != nil {
		return err
	}
	s.appendLog(ctx, rec)
	return nil
}

// Withdraw removes amount from the account; fails closed on insufficient
// funds.
func (s *Service) Withdraw(ctx context.Context, terminalID, accountID string, amount int64) error {
	rec := NewRecord(terminalID, accountID, fmt.Sprintf("Withdrew $%d", amount))
	if err := s.repo.Withdraw(ctx, accountID, amount, rec); err != nil {
		return err
	}
	s.appendLog(ctx, rec)
	return nil
}

// Activity returns the account history in append order.
func (s *Service) Activity(ctx context.Context, accountID string) ([]TransactionRecord, error) {
	return s.repo.History(ctx, accountID)
}

// EndSession records the session close in the activity history.
func (s *Service) EndSession(ctx context.Context, terminalID, accountID string) error {
	rec := NewRecord(terminalID, accountID, "Session ended")
	if err := s.repo.RecordActivity(ctx, accountID, rec); err != nil {
		return err
	}
	s.appendLog(ctx, rec)
	return nil
}

// Signup creates a new account with a zero balance.
func (s *Service) Signup(ctx context.Context, accountID, password string) error {
	return s.repo.Create(ctx, accountID, password)
}

// appendLog mirrors a committed record to the durable log. The store
// mutation already committed, so a log write failure is reported but does
// not undo anything.
func (s *Service) appendLog(ctx context.Context, rec TransactionRecord) {
	if s.log == nil {
		return
	}
	if err := s.log.Append(rec.String()); err != nil {
		s.logger.Error(ctx, "transaction log append failed", "error", err.Error())
	}
}
