package accounts

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Account is one bank account as held by the store.
//
// Password is kept in clear to stay faithful to the legacy system's
// credential model; Authenticate at least compares it in constant time.
// Treat any deployment of this store as a demo, not a product.
type Account struct {
	ID       string
	Password string
	Balance  int64
	History  []TransactionRecord
}

// TransactionRecord describes one committed account action. Records are
// append-only: added to the account history and the durable log, never
// mutated or removed.
type TransactionRecord struct {
	ID         string
	Timestamp  time.Time
	TerminalID string
	AccountID  string
	Action     string
}

// NewRecord builds a record for an action performed right now.
func NewRecord(terminalID, accountID, action string) TransactionRecord {
	return TransactionRecord{
		ID:         uuid.NewString(),
		Timestamp:  time.Now(),
		TerminalID: terminalID,
		AccountID:  accountID,
		Action:     action,
	}
}

// String renders the record in the legacy log line format.
func (r TransactionRecord) String() string {
	return fmt.Sprintf("[%s] %s %s: %s",
		r.Timestamp.Format("2006-01-02 15:04:05"), r.TerminalID, r.AccountID, r.Action)
}
