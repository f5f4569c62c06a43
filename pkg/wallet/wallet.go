// Package wallet is the chip bankroll collaborator. The engine never touches
// it directly; the table debits on buy-in and credits on leave/settlement.
package wallet

import (
	"context"
	"errors"
)

// ErrInsufficientFunds is returned when a debit would take the balance
// negative. It is client-safe.
var ErrInsufficientFunds = errors.New("insufficient funds")

// Wallet moves chips between a player's bankroll and a table. Implementations
// must be safe for concurrent use and idempotent per key: applying the same
// (playerID, idempotencyKey) operation twice has the effect of applying it
// once.
type Wallet interface {
	// Debit removes amount from the player's bankroll
	Debit(ctx context.Context, playerID int64, amount int, idempotencyKey string) error

	// Credit adds amount to the player's bankroll
	Credit(ctx context.Context, playerID int64, amount int, idempotencyKey string) error

	// Balance returns the player's bankroll
	Balance(ctx context.Context, playerID int64) (int, error)
}
