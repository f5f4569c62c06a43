package potmanager

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type testParticipant struct {
	id        int64
	balance   int
	streetBet int
}

func (t *testParticipant) ID() int64 {
	return t.id
}

func (t *testParticipant) Balance() int {
	return t.balance
}

func (t *testParticipant) AdjustBalance(amount int) {
	t.balance += amount
}

func (t *testParticipant) SetAmountInPlay(amount int) {
	t.streetBet = amount
}

// setupThreeHanded seats three players in order from the dealer's left
// (small blind first) and posts 50/100 blinds
func setupThreeHanded(t *testing.T, stacks ...int) (*PotManager, []*testParticipant) {
	t.Helper()

	participants := make([]*testParticipant, len(stacks))
	pm := New(100)
	for i, stack := range stacks {
		participants[i] = &testParticipant{id: int64(i + 1), balance: stack}
		assert.NoError(t, pm.SeatParticipant(participants[i]))
	}

	pm.PostBlind(participants[0], 50)
	pm.PostBlind(participants[1], 100)
	pm.StartPreflop(2 % len(stacks))

	return pm, participants
}

func TestPotManager_SeatParticipant(t *testing.T) {
	a := assert.New(t)

	pm := New(100)
	p := &testParticipant{id: 1, balance: 500}
	a.NoError(pm.SeatParticipant(p))
	a.EqualError(pm.SeatParticipant(p), "participant is already seated")
	a.EqualError(pm.SeatParticipant(&testParticipant{id: 2}), "cannot seat participant without chips")
}

func TestPotManager_blindsAndTurnOrder(t *testing.T) {
	a := assert.New(t)

	pm, p := setupThreeHanded(t, 1000, 1000, 1000)

	a.Equal(950, p[0].balance)
	a.Equal(900, p[1].balance)
	a.Equal(100, pm.GetBet())
	a.Equal(200, pm.GetMinRaise())

	// action starts left of the big blind
	a.Equal(int64(3), pm.GetInTurnParticipant().ID())

	a.Equal(ErrNotYourTurn, pm.ParticipantChecks(p[0]))

	a.NoError(pm.ParticipantCalls(p[2]))
	a.NoError(pm.ParticipantCalls(p[0]))

	// big blind has the option
	a.False(pm.IsRoundOver())
	a.NoError(pm.ParticipantChecks(p[1]))
	a.True(pm.IsRoundOver())

	a.NoError(pm.NextRound())
	a.Equal(Pots{{Amount: 300, AllInParticipants: []Participant{}}}, pm.Pots())
	a.Equal(0, pm.GetBet())

	// post-flop action starts left of the dealer
	a.Equal(int64(1), pm.GetInTurnParticipant().ID())
}

func TestPotManager_checkAndCallValidation(t *testing.T) {
	a := assert.New(t)

	pm, p := setupThreeHanded(t, 1000, 1000, 1000)

	a.EqualError(pm.ParticipantChecks(p[2]), "you cannot check with an active bet")
	a.NoError(pm.ParticipantCalls(p[2]))
	a.NoError(pm.ParticipantCalls(p[0]))
	a.EqualError(pm.ParticipantCalls(p[1]), "you cannot call without an active bet")
}

func TestPotManager_raiseValidation(t *testing.T) {
	a := assert.New(t)

	pm, p := setupThreeHanded(t, 1000, 1000, 1000)

	err := pm.ParticipantBetsOrRaises(p[2], 100)
	a.EqualError(err, "your raise to 100 must be greater than the previous bet of 100")

	a.EqualError(pm.ParticipantBetsOrRaises(p[2], 1500), "bet exceeds participant's stack")

	a.NoError(pm.ParticipantBetsOrRaises(p[2], 300))
	a.Equal(300, pm.GetBet())
	a.Equal(500, pm.GetMinRaise())

	// the raise re-opens the action; everyone else must respond
	a.NoError(pm.ParticipantFolds(p[0]))
	a.NoError(pm.ParticipantCalls(p[1]))
	a.True(pm.IsRoundOver())
}

func TestPotManager_sidePots(t *testing.T) {
	a := assert.New(t)

	// blinds 50/100. Seat 3 (first to act) raises to 300, seat 1 goes all-in
	// for 250 total, seat 2 calls 300.
	pm, p := setupThreeHanded(t, 250, 1000, 1000)

	a.NoError(pm.ParticipantBetsOrRaises(p[2], 300))
	a.NoError(pm.ParticipantGoesAllIn(p[0]))
	a.Equal(0, p[0].balance)

	// a short all-in does not change the bet to match
	a.Equal(300, pm.GetBet())

	a.NoError(pm.ParticipantCalls(p[1]))
	a.True(pm.IsRoundOver())
	a.NoError(pm.NextRound())

	pots := pm.Pots()
	a.Equal(2, len(pots))
	a.Equal(750, pots[0].Amount)
	a.Equal(1, len(pots[0].AllInParticipants))
	a.Equal(int64(1), pots[0].AllInParticipants[0].ID())
	a.Equal(100, pots[1].Amount)
	a.Equal(0, len(pots[1].AllInParticipants))

	a.Equal(850, pm.TotalCommitted())
}

func TestPotManager_allInRaiseBecomesNewBet(t *testing.T) {
	a := assert.New(t)

	pm, p := setupThreeHanded(t, 1000, 1000, 450)

	a.NoError(pm.ParticipantGoesAllIn(p[2]))
	a.Equal(450, pm.GetBet())

	// a full raise (450 >= 100+100) resets the minimum raise increment
	a.Equal(800, pm.GetMinRaise())

	a.NoError(pm.ParticipantCalls(p[0]))
	a.NoError(pm.ParticipantCalls(p[1]))
	a.True(pm.IsRoundOver())
	a.NoError(pm.NextRound())

	a.Equal(1350, pm.Pots().Total())
}

func TestPotManager_PayWinners(t *testing.T) {
	a := assert.New(t)

	pm, p := setupThreeHanded(t, 250, 1000, 1000)
	a.NoError(pm.ParticipantBetsOrRaises(p[2], 300))
	a.NoError(pm.ParticipantGoesAllIn(p[0]))
	a.NoError(pm.ParticipantCalls(p[1]))
	a.NoError(pm.NextRound())

	_, err := pm.PayWinners([][]Participant{{p[0]}, {p[1]}, {p[2]}})
	a.EqualError(err, "hand is not over")

	pm.EndHand()

	// seat 1 has the best hand but is all-in for the 750 main pot;
	// the 100 side pot goes to the next-best hand
	payouts, err := pm.PayWinners([][]Participant{{p[0]}, {p[1]}, {p[2]}})
	a.NoError(err)
	a.Equal(map[int64]int{1: 750, 2: 100}, payouts)
	a.Equal(750, p[0].balance)
	a.Equal(800, p[1].balance)
	a.Equal(700, p[2].balance)

	// chip conservation
	a.Equal(250+1000+1000, p[0].balance+p[1].balance+p[2].balance)
}

func TestPotManager_PayWinners_oddChipSplit(t *testing.T) {
	a := assert.New(t)

	pm := New(100)
	p1 := &testParticipant{id: 1, balance: 1000}
	p2 := &testParticipant{id: 2, balance: 1000}
	p3 := &testParticipant{id: 3, balance: 1000}
	for _, pt := range []*testParticipant{p1, p2, p3} {
		a.NoError(pm.SeatParticipant(pt))
	}

	pm.PostBlind(p1, 50)
	pm.PostBlind(p2, 100)
	pm.StartPreflop(2)

	a.NoError(pm.ParticipantBetsOrRaises(p3, 151))
	a.NoError(pm.ParticipantCalls(p1))
	a.NoError(pm.ParticipantCalls(p2))
	a.NoError(pm.NextRound())

	a.NoError(pm.ParticipantBetsOrRaises(p1, 100))
	a.NoError(pm.ParticipantFolds(p2))
	a.NoError(pm.ParticipantCalls(p3))
	a.NoError(pm.NextRound())

	pm.EndHand()

	// seats 1 and 3 split the pot of 653; the odd chip goes to the seat
	// closest to the dealer's left
	payouts, err := pm.PayWinners([][]Participant{{p3, p1}})
	a.NoError(err)
	a.Equal(map[int64]int{1: 327, 3: 326}, payouts)
	a.Equal(1076, p1.balance)
	a.Equal(849, p2.balance)
	a.Equal(1075, p3.balance)
	a.Equal(3000, p1.balance+p2.balance+p3.balance)
}

func TestWinManager(t *testing.T) {
	a := assert.New(t)

	p1 := &testParticipant{id: 1}
	p2 := &testParticipant{id: 2}
	p3 := &testParticipant{id: 3}

	wm := NewWinManager()
	wm.AddParticipant(p1, 500)
	wm.AddParticipant(p2, 900)
	wm.AddParticipant(p3, 900)

	tiers := wm.GetSortedTiers()
	a.Equal(2, len(tiers))
	a.Equal([]Participant{p2, p3}, tiers[0])
	a.Equal([]Participant{p1}, tiers[1])
}
