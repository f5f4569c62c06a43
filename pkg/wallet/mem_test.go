package wallet

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMem(t *testing.T) {
	a := assert.New(t)
	ctx := context.Background()

	w := NewMem(map[int64]int{1: 500})

	a.NoError(w.Debit(ctx, 1, 200, "buy-in-1"))
	balance, err := w.Balance(ctx, 1)
	a.NoError(err)
	a.Equal(300, balance)

	// replaying the same key is a no-op
	a.NoError(w.Debit(ctx, 1, 200, "buy-in-1"))
	balance, _ = w.Balance(ctx, 1)
	a.Equal(300, balance)

	a.Equal(ErrInsufficientFunds, w.Debit(ctx, 1, 301, "buy-in-2"))

	a.NoError(w.Credit(ctx, 1, 100, "leave-1"))
	balance, _ = w.Balance(ctx, 1)
	a.Equal(400, balance)
}

func TestMem_FailNext(t *testing.T) {
	a := assert.New(t)
	ctx := context.Background()

	w := NewMem(map[int64]int{1: 500})
	w.FailNext = 2
	w.FailWith = errors.New("wallet offline")

	a.EqualError(w.Debit(ctx, 1, 100, "k1"), "wallet offline")
	a.EqualError(w.Debit(ctx, 1, 100, "k1"), "wallet offline")
	a.NoError(w.Debit(ctx, 1, 100, "k1"))

	balance, _ := w.Balance(ctx, 1)
	a.Equal(400, balance)
}
