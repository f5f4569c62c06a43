package wallet

import (
	"context"
	"sync"
)

// Mem is an in-memory Wallet for tests and local development
type Mem struct {
	mu       sync.Mutex
	balances map[int64]int
	applied  map[string]bool

	// FailNext makes the next n operations return the given error. Lets tests
	// exercise the caller's retry and rollback paths.
	FailNext int
	FailWith error
}

// NewMem returns an in-memory wallet with the given starting balances
func NewMem(balances map[int64]int) *Mem {
	b := make(map[int64]int)
	for id, balance := range balances {
		b[id] = balance
	}

	return &Mem{
		balances: b,
		applied:  make(map[string]bool),
	}
}

// Debit removes amount from the player's balance
func (m *Mem) Debit(ctx context.Context, playerID int64, amount int, idempotencyKey string) error {
	return m.apply(playerID, -amount, idempotencyKey)
}

// Credit adds amount to the player's balance
func (m *Mem) Credit(ctx context.Context, playerID int64, amount int, idempotencyKey string) error {
	return m.apply(playerID, amount, idempotencyKey)
}

func (m *Mem) apply(playerID int64, amount int, idempotencyKey string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailNext > 0 {
		m.FailNext--
		return m.FailWith
	}

	if m.applied[idempotencyKey] {
		return nil
	}

	if m.balances[playerID]+amount < 0 {
		return ErrInsufficientFunds
	}

	m.applied[idempotencyKey] = true
	m.balances[playerID] += amount
	return nil
}

// Balance returns the player's balance
func (m *Mem) Balance(ctx context.Context, playerID int64) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.balances[playerID], nil
}
