package wallet

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

// Postgres is a Wallet backed by a wallets table plus an append-only ledger.
// Idempotency comes from a unique constraint on the ledger's idempotency key:
// a replayed operation hits the constraint and is treated as already applied.
type Postgres struct {
	db *sql.DB
}

// NewPostgres returns a Postgres wallet
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

// uniqueViolation is the postgres error code for a duplicate key
const uniqueViolation = "23505"

// Debit removes amount from the player's bankroll
func (p *Postgres) Debit(ctx context.Context, playerID int64, amount int, idempotencyKey string) error {
	return p.apply(ctx, playerID, -amount, idempotencyKey)
}

// Credit adds amount to the player's bankroll
func (p *Postgres) Credit(ctx context.Context, playerID int64, amount int, idempotencyKey string) error {
	return p.apply(ctx, playerID, amount, idempotencyKey)
}

func (p *Postgres) apply(ctx context.Context, playerID int64, amount int, idempotencyKey string) error {
	if amount == 0 {
		return nil
	}

	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	const insertLedger = `
INSERT INTO wallet_ledger (player_id, amount, idempotency_key)
VALUES ($1, $2, $3)`
	if _, err := tx.ExecContext(ctx, insertLedger, playerID, amount, idempotencyKey); err != nil {
		rollback(tx)

		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			// already applied
			return nil
		}

		return err
	}

	const updateBalance = `
UPDATE wallets
SET balance = balance + $2
WHERE player_id = $1
  AND balance + $2 >= 0`
	result, err := tx.ExecContext(ctx, updateBalance, playerID, amount)
	if err != nil {
		rollback(tx)
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		rollback(tx)
		return err
	}

	if rows == 0 {
		rollback(tx)
		return ErrInsufficientFunds
	}

	return tx.Commit()
}

// Balance returns the player's bankroll
func (p *Postgres) Balance(ctx context.Context, playerID int64) (int, error) {
	const query = `
SELECT balance
FROM wallets
WHERE player_id = $1`

	var balance int
	if err := p.db.QueryRowContext(ctx, query, playerID).Scan(&balance); err != nil {
		return 0, err
	}

	return balance, nil
}

func rollback(tx *sql.Tx) {
	if err := tx.Rollback(); err != nil {
		logrus.WithError(err).Error("could not roll back")
	}
}
