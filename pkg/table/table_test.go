package table

import (
	"context"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"riverroom-server/pkg/holdem"
	"riverroom-server/pkg/wallet"
)

var ctx = context.Background()

func newTestTable(t *testing.T) (*Table, *wallet.Mem) {
	t.Helper()

	tbl, err := New(logrus.StandardLogger(), "test table", 6, 50, "")
	assert.NoError(t, err)

	w := wallet.NewMem(map[int64]int{1: 2000, 2: 2000, 3: 2000, 4: 2000, 5: 2000, 6: 2000, 7: 2000})
	return tbl, w
}

func TestNew_validation(t *testing.T) {
	a := assert.New(t)

	_, err := New(logrus.StandardLogger(), "t", 5, 50, "")
	a.EqualError(err, "tables seat either 6 or 9 players")

	_, err = New(logrus.StandardLogger(), "t", 9, 0, "")
	a.EqualError(err, "the minimum bet must be greater than zero")
}

func TestTable_password(t *testing.T) {
	a := assert.New(t)

	tbl, err := New(logrus.StandardLogger(), "private", 6, 50, "secret")
	a.NoError(err)
	a.True(tbl.Private)
	a.NoError(tbl.CheckPassword("secret"))
	a.Equal(ErrBadPassword, tbl.CheckPassword("wrong"))

	public, err := New(logrus.StandardLogger(), "public", 6, 50, "")
	a.NoError(err)
	a.NoError(public.CheckPassword(""))
}

func TestTable_Join(t *testing.T) {
	a := assert.New(t)
	tbl, w := newTestTable(t)

	seat, err := tbl.Join(ctx, 1, 1000, w)
	a.NoError(err)
	a.Equal(0, seat.Position)
	a.Equal(1000, seat.Chips)

	balance, _ := w.Balance(ctx, 1)
	a.Equal(1000, balance)

	_, err = tbl.Join(ctx, 1, 1000, w)
	a.Equal(ErrAlreadySeated, err)

	_, err = tbl.Join(ctx, 2, 49, w)
	a.Equal(ErrBelowMinimumBuyIn, err)

	_, err = tbl.Join(ctx, 2, 2001, w)
	a.Equal(wallet.ErrInsufficientFunds, err)

	for id := int64(2); id <= 6; id++ {
		_, err = tbl.Join(ctx, id, 1000, w)
		a.NoError(err)
	}

	_, err = tbl.Join(ctx, 7, 1000, w)
	a.Equal(ErrTableFull, err)
}

func TestTable_Join_retriesWallet(t *testing.T) {
	a := assert.New(t)
	tbl, w := newTestTable(t)

	w.FailNext = 2
	w.FailWith = errors.New("wallet offline")
	_, err := tbl.Join(ctx, 1, 1000, w)
	a.NoError(err)

	w.FailNext = 3
	_, err = tbl.Join(ctx, 2, 1000, w)
	a.EqualError(err, "wallet offline")
	_, seated := tbl.Seat(2)
	a.False(seated)
}

func TestTable_Leave(t *testing.T) {
	a := assert.New(t)
	tbl, w := newTestTable(t)

	a.Equal(ErrNotSeated, tbl.Leave(ctx, 1, w))

	_, err := tbl.Join(ctx, 1, 1000, w)
	a.NoError(err)
	a.NoError(tbl.Leave(ctx, 1, w))

	balance, _ := w.Balance(ctx, 1)
	a.Equal(2000, balance)
	a.Empty(tbl.Seats())
}

func TestTable_StartHand(t *testing.T) {
	a := assert.New(t)
	tbl, w := newTestTable(t)

	_, err := tbl.StartHand()
	a.Equal(holdem.ErrNotEnoughPlayers, err)

	for id := int64(1); id <= 3; id++ {
		_, err := tbl.Join(ctx, id, 1000, w)
		a.NoError(err)
	}

	hand, err := tbl.StartHand()
	a.NoError(err)
	a.True(tbl.GameInProgress())
	a.Equal(0, tbl.DealerPosition())

	_, err = tbl.StartHand()
	a.Equal(ErrHandInProgress, err)

	// with three players the seat after the big blind is the dealer, so the
	// dealer acts first preflop
	turn, _ := hand.CurrentTurn()
	a.Equal(int64(1), turn)
}

func TestTable_buttonRotates(t *testing.T) {
	a := assert.New(t)
	tbl, w := newTestTable(t)

	for id := int64(1); id <= 3; id++ {
		_, err := tbl.Join(ctx, id, 1000, w)
		a.NoError(err)
	}

	for _, wantDealer := range []int{0, 1, 2, 0} {
		_, err := tbl.StartHand()
		a.NoError(err)
		a.Equal(wantDealer, tbl.DealerPosition())

		// fold around to end the hand
		for tbl.Hand().Results() == nil {
			turn, _ := tbl.Hand().CurrentTurn()
			a.NoError(tbl.Action(turn, holdem.ActionFold, 0))
		}

		_, err = tbl.FinishHand(ctx, w)
		a.NoError(err)
		a.False(tbl.GameInProgress())
	}
}

func TestTable_headsUpDealerIsSmallBlind(t *testing.T) {
	a := assert.New(t)
	tbl, w := newTestTable(t)

	for id := int64(1); id <= 2; id++ {
		_, err := tbl.Join(ctx, id, 1000, w)
		a.NoError(err)
	}

	hand, err := tbl.StartHand()
	a.NoError(err)
	a.Equal(0, tbl.DealerPosition())

	chips, _ := hand.Chips(1)
	a.Equal(950, chips)
	chips, _ = hand.Chips(2)
	a.Equal(900, chips)

	turn, _ := hand.CurrentTurn()
	a.Equal(int64(1), turn)
}

func TestTable_sitOut(t *testing.T) {
	a := assert.New(t)
	tbl, w := newTestTable(t)

	for id := int64(1); id <= 3; id++ {
		_, err := tbl.Join(ctx, id, 1000, w)
		a.NoError(err)
	}

	a.Equal(ErrNotSeated, tbl.SitOut(99))
	a.NoError(tbl.SitOut(2))

	hand, err := tbl.StartHand()
	a.NoError(err)

	_, inHand := hand.Chips(2)
	a.False(inHand)

	// cannot deal a hand with fewer than two willing players
	for tbl.Hand().Results() == nil {
		turn, _ := tbl.Hand().CurrentTurn()
		a.NoError(tbl.Action(turn, holdem.ActionFold, 0))
	}
	_, err = tbl.FinishHand(ctx, w)
	a.NoError(err)

	a.NoError(tbl.SitOut(1))
	_, err = tbl.StartHand()
	a.Equal(holdem.ErrNotEnoughPlayers, err)

	a.NoError(tbl.SitIn(1))
	a.NoError(tbl.SitIn(2))
	_, err = tbl.StartHand()
	a.NoError(err)
}

func TestTable_leaveDuringHand(t *testing.T) {
	a := assert.New(t)
	tbl, w := newTestTable(t)

	for id := int64(1); id <= 3; id++ {
		_, err := tbl.Join(ctx, id, 1000, w)
		a.NoError(err)
	}

	_, err := tbl.StartHand()
	a.NoError(err)

	// player 1 is in turn and leaves: immediate fold. Player 2 (small blind)
	// leaves out of turn: folded as soon as their turn comes, which ends the
	// hand in player 3's favor.
	a.NoError(tbl.Leave(ctx, 1, w))
	a.NoError(tbl.Leave(ctx, 2, w))

	results := tbl.Hand().Results()
	a.NotNil(results)
	a.Equal(map[int64]int{3: 150}, results.Payouts)

	_, err = tbl.FinishHand(ctx, w)
	a.NoError(err)

	// the leavers' seats were released and their chips credited back
	seats := tbl.Seats()
	a.Equal(1, len(seats))
	a.Equal(int64(3), seats[0].PlayerID)
	a.Equal(1050, seats[0].Chips)

	balance, _ := w.Balance(ctx, 1)
	a.Equal(2000, balance)
	balance, _ = w.Balance(ctx, 2)
	a.Equal(1950, balance)

	// chip conservation across wallets and the remaining seat
	balance, _ = w.Balance(ctx, 3)
	a.Equal(6000, 2000+1950+balance+seats[0].Chips)
}

// commitThenFail applies every credit but reports a failure for the first n
// calls, simulating a wallet write whose response was lost after it committed
type commitThenFail struct {
	*wallet.Mem
	failures int
}

func (w *commitThenFail) Credit(ctx context.Context, playerID int64, amount int, key string) error {
	err := w.Mem.Credit(ctx, playerID, amount, key)
	if w.failures > 0 {
		w.failures--
		return errors.New("response lost")
	}

	return err
}

func TestTable_Leave_committedCreditIsNotPaidTwice(t *testing.T) {
	a := assert.New(t)
	tbl, mem := newTestTable(t)
	w := &commitThenFail{Mem: mem}

	_, err := tbl.Join(ctx, 1, 1000, w)
	a.NoError(err)

	// the credit lands but every response is lost
	w.failures = 3
	a.EqualError(tbl.Leave(ctx, 1, w), "response lost")

	balance, _ := w.Balance(ctx, 1)
	a.Equal(2000, balance)

	seat, seated := tbl.Seat(1)
	a.True(seated)
	a.True(seat.PendingLeave)

	// the retry replays the same key, so the wallet treats it as a no-op
	a.NoError(tbl.Leave(ctx, 1, w))
	balance, _ = w.Balance(ctx, 1)
	a.Equal(2000, balance)
	a.Empty(tbl.Seats())
}

func TestTable_FinishHand_committedCreditIsNotPaidTwice(t *testing.T) {
	a := assert.New(t)
	tbl, mem := newTestTable(t)
	w := &commitThenFail{Mem: mem}

	for id := int64(1); id <= 3; id++ {
		_, err := tbl.Join(ctx, id, 1000, w)
		a.NoError(err)
	}

	_, err := tbl.StartHand()
	a.NoError(err)

	// player 2 posted the small blind and leaves mid-hand; when player 1
	// folds, player 2's pending leave folds behind it and the hand ends
	a.NoError(tbl.Leave(ctx, 2, w))
	a.NoError(tbl.Action(1, holdem.ActionFold, 0))
	a.NotNil(tbl.Hand().Results())

	// the leaver's 950 credit lands but every response is lost, so the
	// seat must stay pending with the settlement reporting the failure
	w.failures = 3
	_, err = tbl.FinishHand(ctx, w)
	a.EqualError(err, "response lost")

	balance, _ := w.Balance(ctx, 2)
	a.Equal(1950, balance)
	seat, seated := tbl.Seat(2)
	a.True(seated)
	a.True(seat.PendingLeave)

	// the next settlement retries under the same key; the replay is a
	// no-op and the seat is finally released
	_, err = tbl.StartHand()
	a.NoError(err)
	for tbl.Hand().Results() == nil {
		turn, _ := tbl.Hand().CurrentTurn()
		a.NoError(tbl.Action(turn, holdem.ActionFold, 0))
	}

	_, err = tbl.FinishHand(ctx, w)
	a.NoError(err)

	balance, _ = w.Balance(ctx, 2)
	a.Equal(1950, balance)
	_, seated = tbl.Seat(2)
	a.False(seated)
}

func TestTable_ForceEnd_committedCreditIsNotPaidTwice(t *testing.T) {
	a := assert.New(t)
	tbl, mem := newTestTable(t)
	w := &commitThenFail{Mem: mem}

	for id := int64(1); id <= 2; id++ {
		_, err := tbl.Join(ctx, id, 1000, w)
		a.NoError(err)
	}

	w.failures = 3
	a.EqualError(tbl.ForceEnd(ctx, w), "response lost")

	// the retry replays the first seat's key and refunds the second
	a.NoError(tbl.ForceEnd(ctx, w))
	a.Empty(tbl.Seats())

	for id := int64(1); id <= 2; id++ {
		balance, _ := w.Balance(ctx, id)
		a.Equal(2000, balance)
	}
}

func TestTable_ForceEnd(t *testing.T) {
	a := assert.New(t)
	tbl, w := newTestTable(t)

	for id := int64(1); id <= 3; id++ {
		_, err := tbl.Join(ctx, id, 1000, w)
		a.NoError(err)
	}

	_, err := tbl.StartHand()
	a.NoError(err)

	// chips in play were snapshotted at the deal, so a force-ended hand
	// refunds the pre-hand stacks
	a.NoError(tbl.ForceEnd(ctx, w))
	a.False(tbl.GameInProgress())
	a.Empty(tbl.Seats())

	for id := int64(1); id <= 3; id++ {
		balance, _ := w.Balance(ctx, id)
		a.Equal(2000, balance)
	}
}

func TestTable_stateHidesOtherHoleCards(t *testing.T) {
	a := assert.New(t)
	tbl, w := newTestTable(t)

	for id := int64(1); id <= 3; id++ {
		_, err := tbl.Join(ctx, id, 1000, w)
		a.NoError(err)
	}

	_, err := tbl.StartHand()
	a.NoError(err)

	state := tbl.State(1)
	a.NotNil(state.Hand)
	for _, seat := range state.Hand.Seats {
		if seat.PlayerID == 1 {
			a.Equal(2, len(seat.Cards))
		} else {
			a.Nil(seat.Cards)
		}
	}
}
