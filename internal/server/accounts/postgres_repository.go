package accounts

import (
	"context"
	"crypto/subtle"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/sbayu21/Secure-banking-system/internal/common"
	"github.com/sbayu21/Secure-banking-system/internal/server/migrations"
)

// PostgresRepository backs the account store with PostgreSQL. Balance
// mutations run inside a transaction holding a row lock, so the
// linearizable contract is enforced by the database rather than an
// in-process mutex.
type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository opens the database, runs migrations and inserts any
// seed accounts that do not exist yet.
func NewPostgresRepository(ctx context.Context, dsn string, seed ...Account) (*PostgresRepository, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	r := &PostgresRepository{db: db}

	if err := r.runMigrations(ctx); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	for _, a := range seed {
		query := `INSERT INTO accounts (id, password, balance)
		          VALUES ($1, $2, $3)
		          ON CONFLICT (id) DO NOTHING`
		if _, err := db.ExecContext(ctx, query, a.ID, a.Password, a.Balance); err != nil {
			return nil, fmt.Errorf("seed error: %w", err)
		}
	}

	return r, nil
}

func (r *PostgresRepository) runMigrations(ctx context.Context) error {
	goose.SetBaseFS(migrations.Postgres)

	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	if err := goose.UpContext(ctx, r.db, "postgres"); err != nil {
		return err
	}
	return nil
}

// Close releases the underlying connection pool.
func (r *PostgresRepository) Close() error {
	return r.db.Close()
}

func (r *PostgresRepository) Authenticate(ctx context.Context, accountID, password string) error {
	query := `SELECT password FROM accounts WHERE id = $1`

	var stored string
	err := r.db.QueryRowContext(ctx, query, accountID).Scan(&stored)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return common.ErrAuthenticationFailed
		}
		return fmt.Errorf("error performing sql request: %w", err)
	}

	if subtle.ConstantTimeCompare([]byte(stored), []byte(password)) != 1 {
		return common.ErrAuthenticationFailed
	}
	return nil
}

func (r *PostgresRepository) Balance(ctx context.Context, accountID string) (int64, error) {
	query := `SELECT balance FROM accounts WHERE id = $1`

	var balance int64
	err := r.db.QueryRowContext(ctx, query, accountID).Scan(&balance)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, fmt.Errorf("%w: %s", common.ErrAccountNotFound, accountID)
		}
		return 0, fmt.Errorf("error performing sql request: %w", err)
	}
	return balance, nil
}

func (r *PostgresRepository) Deposit(ctx context.Context, accountID string, amount int64, rec TransactionRecord) error {
	return r.applyDelta(ctx, accountID, amount, rec)
}

func (r *PostgresRepository) Withdraw(ctx context.Context, accountID string, amount int64, rec TransactionRecord) error {
	return r.applyDelta(ctx, accountID, -amount, rec)
}

// applyDelta mutates the balance and inserts the history row in one SQL
// transaction under a row lock.
func (r *PostgresRepository) applyDelta(ctx context.Context, accountID string, delta int64, rec TransactionRecord) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var balance int64
	err = tx.QueryRowContext(ctx,
		`SELECT balance FROM accounts WHERE id = $1 FOR UPDATE`, accountID).Scan(&balance)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: %s", common.ErrAccountNotFound, accountID)
		}
		return fmt.Errorf("error performing sql request: %w", err)
	}

	if balance+delta < 0 {
		return common.ErrInsufficientFunds
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE accounts SET balance = balance + $2 WHERE id = $1`, accountID, delta); err != nil {
		return fmt.Errorf("error performing sql request: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO transactions (id, account_id, terminal_id, action, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		rec.ID, accountID, rec.TerminalID, rec.Action, rec.Timestamp); err != nil {
		return fmt.Errorf("error performing sql request: %w", err)
	}

	return tx.Commit()
}

func (r *PostgresRepository) History(ctx context.Context, accountID string) ([]TransactionRecord, error) {
	if _, err := r.Balance(ctx, accountID); err != nil {
		return nil, err
	}

	query := `SELECT id, terminal_id, action, created_at
	          FROM transactions
	          WHERE account_id = $1
	          ORDER BY created_at, id`

	rows, err := r.db.QueryContext(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("error performing sql request: %w", err)
	}
	defer rows.Close()

	var recs []TransactionRecord
	for rows.Next() {
		rec := TransactionRecord{AccountID: accountID}
		if err := rows.Scan(&rec.ID, &rec.TerminalID, &rec.Action, &rec.Timestamp); err != nil {
			return nil, fmt.Errorf("error scanning row: %w", err)
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

func (r *PostgresRepository) Create(ctx context.Context, accountID, password string) error {
	query := `INSERT INTO accounts (id, password)
	          VALUES ($1, $2)
	          ON CONFLICT (id) DO NOTHING`

	res, err := r.db.ExecContext(ctx, query, accountID, password)
	if err != nil {
		return fmt.Errorf("error performing sql request: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error performing sql request: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", common.ErrAccountExists, accountID)
	}
	return nil
}

func (r *PostgresRepository) RecordActivity(ctx context.Context, accountID string, rec TransactionRecord) error {
	if _, err := r.Balance(ctx, accountID); err != nil {
		return err
	}

	query := `INSERT INTO transactions (id, account_id, terminal_id, action, created_at)
	          VALUES ($1, $2, $3, $4, $5)`

	if _, err := r.db.ExecContext(ctx, query,
		rec.ID, accountID, rec.TerminalID, rec.Action, rec.Timestamp); err != nil {
		return fmt.Errorf("error performing sql request: %w", err)
	}
	return nil
}
