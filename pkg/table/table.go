package table

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/synacor/argon2id"

	"riverroom-server/pkg/holdem"
	"riverroom-server/pkg/wallet"
)

// collaborator calls are retried this many times before giving up
const retryAttempts = 3

// Table is an in-memory poker table: a fixed array of seats, a dealer button,
// and at most one hand in flight. A Table is not safe for concurrent use; the
// room's run loop owns it.
type Table struct {
	ID       uuid.UUID
	Name     string
	Capacity int
	// MinBet is the small blind; the big blind is twice this
	MinBet  int
	Private bool

	passwordHash string
	logger       logrus.FieldLogger
	seats        []*Seat
	dealerIndex  int
	handSeq      int64
	hand         *holdem.Hand
}

// New returns a new table. Capacity must be 6 or 9. A non-empty password
// makes the table private.
func New(logger logrus.FieldLogger, name string, capacity, minBet int, password string) (*Table, error) {
	if capacity != 6 && capacity != 9 {
		return nil, UserError("tables seat either 6 or 9 players")
	}

	if minBet <= 0 {
		return nil, UserError("the minimum bet must be greater than zero")
	}

	t := &Table{
		ID:          uuid.New(),
		Name:        name,
		Capacity:    capacity,
		MinBet:      minBet,
		seats:       make([]*Seat, capacity),
		dealerIndex: -1,
	}
	t.logger = logger.WithField("tableId", t.ID)

	if password != "" {
		hash, err := argon2id.DefaultHashPassword(password)
		if err != nil {
			return nil, err
		}

		t.Private = true
		t.passwordHash = hash
	}

	return t, nil
}

// BigBlind returns the table's big blind
func (t *Table) BigBlind() int {
	return t.MinBet * 2
}

// CheckPassword verifies the password for a private table
func (t *Table) CheckPassword(password string) error {
	if !t.Private {
		return nil
	}

	if err := argon2id.Compare(t.passwordHash, password); err != nil {
		return ErrBadPassword
	}

	return nil
}

// Hand returns the hand in flight, or nil
func (t *Table) Hand() *holdem.Hand {
	return t.hand
}

// GameInProgress returns true if a hand is being played
func (t *Table) GameInProgress() bool {
	return t.hand != nil
}

// Seat returns the player's seat
func (t *Table) Seat(playerID int64) (*Seat, bool) {
	for _, seat := range t.seats {
		if seat != nil && seat.PlayerID == playerID {
			return seat, true
		}
	}

	return nil, false
}

// Seats returns the occupied seats in position order
func (t *Table) Seats() []*Seat {
	seats := make([]*Seat, 0, t.Capacity)
	for _, seat := range t.seats {
		if seat != nil {
			seats = append(seats, seat)
		}
	}

	return seats
}

// Join debits the buy-in from the player's wallet and assigns the lowest free
// seat. A join during a hand is allowed; the player is dealt in next hand.
func (t *Table) Join(ctx context.Context, playerID int64, chips int, w wallet.Wallet) (*Seat, error) {
	if _, ok := t.Seat(playerID); ok {
		return nil, ErrAlreadySeated
	}

	position := -1
	for i, seat := range t.seats {
		if seat == nil {
			position = i
			break
		}
	}

	if position == -1 {
		return nil, ErrTableFull
	}

	if chips < t.MinBet {
		return nil, ErrBelowMinimumBuyIn
	}

	key := fmt.Sprintf("join:%s:%d:%s", t.ID, playerID, uuid.New())
	if err := retryIdempotent(func() error {
		return w.Debit(ctx, playerID, chips, key)
	}); err != nil {
		return nil, err
	}

	seat := &Seat{
		Position:  position,
		PlayerID:  playerID,
		Chips:     chips,
		creditKey: fmt.Sprintf("cashout:%s:%d:%s", t.ID, playerID, uuid.New()),
	}
	t.seats[position] = seat

	t.logger.WithFields(logrus.Fields{
		"playerId": playerID,
		"position": position,
		"chips":    chips,
	}).Info("player joined")

	return seat, nil
}

// Leave removes the player and credits their chips in play back to the
// wallet. If the player is in a live hand they are folded and the seat is
// released after settlement instead.
func (t *Table) Leave(ctx context.Context, playerID int64, w wallet.Wallet) error {
	seat, ok := t.Seat(playerID)
	if !ok {
		return ErrNotSeated
	}

	if t.hand != nil {
		if _, inHand := t.hand.Chips(playerID); inHand {
			seat.PendingLeave = true
			return t.foldPendingLeaves()
		}
	}

	if err := retryIdempotent(func() error {
		return w.Credit(ctx, playerID, seat.Chips, seat.creditKey)
	}); err != nil {
		// freeze the seat so the amount cannot change before the retry; the
		// key is stable, so a credit that committed is not paid again
		seat.PendingLeave = true
		return err
	}

	t.vacate(seat)
	return nil
}

// SitOut marks the player as sitting out starting with the next hand
func (t *Table) SitOut(playerID int64) error {
	seat, ok := t.Seat(playerID)
	if !ok {
		return ErrNotSeated
	}

	seat.SittingOut = true
	return nil
}

// SitIn marks the player as playing again starting with the next hand
func (t *Table) SitIn(playerID int64) error {
	seat, ok := t.Seat(playerID)
	if !ok {
		return ErrNotSeated
	}

	seat.SittingOut = false
	return nil
}

// StartHand advances the dealer button to the next eligible seat and deals a
// new hand
func (t *Table) StartHand() (*holdem.Hand, error) {
	if t.hand != nil {
		return nil, ErrHandInProgress
	}

	eligible := 0
	for _, seat := range t.seats {
		if seat != nil && seat.eligible() {
			eligible++
		}
	}

	if eligible < 2 {
		return nil, holdem.ErrNotEnoughPlayers
	}

	t.advanceButton()

	// deal in eligible seats clockwise from the dealer's left; the dealer is
	// last, which heads-up makes them the small blind
	seatInfos := make([]holdem.SeatInfo, 0, eligible)
	for i := 1; i <= t.Capacity; i++ {
		position := (t.dealerIndex + i) % t.Capacity
		if seat := t.seats[position]; seat != nil && seat.eligible() {
			seatInfos = append(seatInfos, holdem.SeatInfo{
				PlayerID: seat.PlayerID,
				Position: seat.Position,
				Chips:    seat.Chips,
			})
		}
	}

	t.handSeq++
	hand, err := holdem.New(t.logger, t.handSeq, seatInfos, holdem.Options{SmallBlind: t.MinBet})
	if err != nil {
		return nil, err
	}

	t.hand = hand
	return hand, nil
}

func (t *Table) advanceButton() {
	for i := 1; i <= t.Capacity; i++ {
		position := (t.dealerIndex + i) % t.Capacity
		if seat := t.seats[position]; seat != nil && seat.eligible() {
			t.dealerIndex = position
			return
		}
	}
}

// DealerPosition returns the seat position holding the dealer button, or -1
// before the first hand
func (t *Table) DealerPosition() int {
	return t.dealerIndex
}

// Action applies a player action to the hand in flight
func (t *Table) Action(playerID int64, action holdem.Action, amount int) error {
	if t.hand == nil {
		return ErrNoHandInProgress
	}

	if err := t.hand.Action(playerID, action, amount); err != nil {
		return err
	}

	return t.foldPendingLeaves()
}

// foldPendingLeaves folds players who asked to leave whenever they come in
// turn
func (t *Table) foldPendingLeaves() error {
	for t.hand != nil && t.hand.Results() == nil {
		playerID, ok := t.hand.CurrentTurn()
		if !ok {
			return nil
		}

		seat, seated := t.Seat(playerID)
		if !seated || !seat.PendingLeave {
			return nil
		}

		if err := t.hand.Action(playerID, holdem.ActionFold, 0); err != nil {
			return err
		}
	}

	return nil
}

// FinishHand copies the settled stacks back to the seats, releases seats with
// a pending leave, and clears the hand. It must be called once the hand's
// Results are available.
func (t *Table) FinishHand(ctx context.Context, w wallet.Wallet) (*holdem.Results, error) {
	if t.hand == nil {
		return nil, ErrNoHandInProgress
	}

	results := t.hand.Results()
	if results == nil {
		return nil, UserError("the hand is still being played")
	}

	for _, seat := range t.seats {
		if seat == nil {
			continue
		}

		if chips, ok := t.hand.Chips(seat.PlayerID); ok {
			seat.Chips = chips
		}
	}

	t.hand = nil

	for _, seat := range t.seats {
		if seat == nil || !seat.PendingLeave {
			continue
		}

		playerID, chips, key := seat.PlayerID, seat.Chips, seat.creditKey
		if err := retryIdempotent(func() error {
			return w.Credit(ctx, playerID, chips, key)
		}); err != nil {
			// the seat stays pending; the credit is retried with the same
			// key on the next settlement
			return results, err
		}

		t.vacate(seat)
	}

	return results, nil
}

// ForceEnd abandons any hand in flight and refunds every seat's chips in
// play. Used when a table is deleted.
func (t *Table) ForceEnd(ctx context.Context, w wallet.Wallet) error {
	t.hand = nil

	for _, seat := range t.seats {
		if seat == nil {
			continue
		}

		playerID, chips, key := seat.PlayerID, seat.Chips, seat.creditKey
		if err := retryIdempotent(func() error {
			return w.Credit(ctx, playerID, chips, key)
		}); err != nil {
			return err
		}

		t.vacate(seat)
	}

	return nil
}

func (t *Table) vacate(seat *Seat) {
	t.seats[seat.Position] = nil

	t.logger.WithFields(logrus.Fields{
		"playerId": seat.PlayerID,
		"position": seat.Position,
		"chips":    seat.Chips,
	}).Info("player left")
}

// Occupancy is a lobby listing for the table
type Occupancy struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	Capacity       int       `json:"capacity"`
	Occupied       int       `json:"occupied"`
	MinBet         int       `json:"minBet"`
	BigBlind       int       `json:"bigBlind"`
	Private        bool      `json:"private"`
	GameInProgress bool      `json:"gameInProgress"`
}

// Occupancy returns the lobby listing for the table
func (t *Table) Occupancy() *Occupancy {
	return &Occupancy{
		ID:             t.ID,
		Name:           t.Name,
		Capacity:       t.Capacity,
		Occupied:       len(t.Seats()),
		MinBet:         t.MinBet,
		BigBlind:       t.BigBlind(),
		Private:        t.Private,
		GameInProgress: t.GameInProgress(),
	}
}

// State is the table as seen by one player
type State struct {
	ID             uuid.UUID     `json:"id"`
	Name           string        `json:"name"`
	Capacity       int           `json:"capacity"`
	MinBet         int           `json:"minBet"`
	BigBlind       int           `json:"bigBlind"`
	DealerPosition int           `json:"dealerPosition"`
	GameInProgress bool          `json:"gameInProgress"`
	Seats          []*Seat       `json:"seats"`
	Hand           *holdem.State `json:"hand"`
}

// State returns the table as seen by the given player
func (t *Table) State(viewerID int64) *State {
	var handState *holdem.State
	if t.hand != nil {
		handState = t.hand.State(viewerID)
	}

	return &State{
		ID:             t.ID,
		Name:           t.Name,
		Capacity:       t.Capacity,
		MinBet:         t.MinBet,
		BigBlind:       t.BigBlind(),
		DealerPosition: t.dealerIndex,
		GameInProgress: t.GameInProgress(),
		Seats:          t.Seats(),
		Hand:           handState,
	}
}

// retryIdempotent retries a collaborator call a bounded number of times. The
// callback must use a stable idempotency key so a retry after a half-applied
// failure cannot double-apply.
func retryIdempotent(fn func() error) error {
	var err error
	for i := 0; i < retryAttempts; i++ {
		if err = fn(); err == nil {
			return nil
		}

		if err == wallet.ErrInsufficientFunds {
			return err
		}
	}

	return err
}
