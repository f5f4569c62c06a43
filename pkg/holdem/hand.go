package holdem

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"riverroom-server/pkg/deck"
	"riverroom-server/pkg/poker"
	"riverroom-server/pkg/potmanager"
)

// SeatInfo describes one player entering a hand
type SeatInfo struct {
	PlayerID int64
	Position int
	Chips    int
}

// Hand is a single hand of no-limit Texas Hold'em. Seats must be provided in
// clockwise order starting at the dealer's left; heads-up the dealer posts the
// small blind and is therefore the second seat.
//
// A Hand is not safe for concurrent use. The table's run loop owns it.
type Hand struct {
	id      uuid.UUID
	seq     int64
	options Options
	logger  logrus.FieldLogger
	deck    *deck.Deck
	seats   []*Seat
	byID    map[int64]*Seat
	pm      *potmanager.PotManager

	street         Street
	community      deck.Hand
	actions        []*ActionRecord
	events         []Event
	results        *Results
	aborted        bool
	wentToShowdown bool
}

// Results is the outcome of a finished hand
type Results struct {
	// Payouts is the amount returned to each winning player
	Payouts map[int64]int
	// Category is the winning hand's category, nil when the hand ended on folds
	Category *poker.Category
	// Aborted is true if the hand ended on an integrity fault with the
	// pre-hand stacks restored
	Aborted bool
}

// New returns a new hand with a crypto-shuffled deck. The blinds are posted
// and the hole cards dealt before it returns; if the blinds leave fewer than
// two seats able to act, the hand runs out to showdown immediately.
func New(logger logrus.FieldLogger, seq int64, seats []SeatInfo, opts Options) (*Hand, error) {
	d := deck.New()
	d.Shuffle()

	return newHand(logger, seq, seats, opts, d)
}

func newHand(logger logrus.FieldLogger, seq int64, seats []SeatInfo, opts Options, d *deck.Deck) (*Hand, error) {
	if err := validateOptions(opts); err != nil {
		return nil, err
	}

	if len(seats) < 2 {
		return nil, ErrNotEnoughPlayers
	}

	h := &Hand{
		id:        uuid.New(),
		seq:       seq,
		options:   opts,
		deck:      d,
		seats:     make([]*Seat, 0, len(seats)),
		byID:      make(map[int64]*Seat),
		pm:        potmanager.New(opts.BigBlind()),
		street:    StreetPreflop,
		community: make(deck.Hand, 0, 5),
	}
	h.logger = logger.WithFields(logrus.Fields{
		"handId": h.id,
		"seq":    seq,
	})

	playerIDs := make([]int64, len(seats))
	for i, info := range seats {
		seat := newSeat(info.PlayerID, info.Position, info.Chips)
		if _, ok := h.byID[seat.PlayerID]; ok {
			return nil, fmt.Errorf("player %d is seated twice", seat.PlayerID)
		}

		if err := h.pm.SeatParticipant(seat); err != nil {
			return nil, err
		}

		h.seats = append(h.seats, seat)
		h.byID[seat.PlayerID] = seat
		playerIDs[i] = seat.PlayerID
	}

	// heads-up the dealer posts the small blind and acts first preflop
	sbIndex, bbIndex, startIndex := 0, 1, 2%len(h.seats)
	if len(h.seats) == 2 {
		sbIndex, bbIndex, startIndex = 1, 0, 1
	}

	h.pm.PostBlind(h.seats[sbIndex], opts.SmallBlind)
	h.pm.PostBlind(h.seats[bbIndex], opts.BigBlind())
	h.pm.StartPreflop(startIndex)

	if err := h.dealHoleCards(); err != nil {
		return nil, err
	}

	// seats run clockwise from the dealer's left, so the dealer is last
	h.emit(&HandStartedEvent{
		HandID:     h.id,
		Seq:        seq,
		PlayerIDs:  playerIDs,
		DealerPos:  h.seats[len(h.seats)-1].Position,
		SmallBlind: opts.SmallBlind,
		BigBlind:   opts.BigBlind(),
	})

	h.logger.WithField("players", len(h.seats)).Info("hand started")

	if err := h.advance(); err != nil {
		return nil, err
	}

	return h, nil
}

// dealHoleCards deals one card per seat per pass, two passes, starting at the
// dealer's left
func (h *Hand) dealHoleCards() error {
	for pass := 0; pass < 2; pass++ {
		for _, seat := range h.seats {
			card, err := h.deck.Draw()
			if err != nil {
				return err
			}

			seat.cards.AddCard(card)
		}
	}

	return nil
}

// ID returns the hand's unique ID
func (h *Hand) ID() uuid.UUID {
	return h.id
}

// Seq returns the hand's sequence number at the table
func (h *Hand) Seq() int64 {
	return h.seq
}

// Street returns the current street
func (h *Hand) Street() Street {
	return h.street
}

// Community returns a copy of the community cards
func (h *Hand) Community() deck.Hand {
	return h.community.Clone()
}

// Pots returns the current pot layers
func (h *Hand) Pots() potmanager.Pots {
	return h.pm.Pots()
}

// PotTotal returns every chip committed to the hand so far
func (h *Hand) PotTotal() int {
	return h.pm.TotalCommitted()
}

// CurrentBet returns the bet to match on the current street
func (h *Hand) CurrentBet() int {
	return h.pm.GetBet()
}

// MinRaise returns the smallest total a raise must reach
func (h *Hand) MinRaise() int {
	return h.pm.GetMinRaise()
}

// CurrentTurn returns the player who must act, or false if no action is
// pending
func (h *Hand) CurrentTurn() (int64, bool) {
	if h.street >= StreetShowdown {
		return 0, false
	}

	pt := h.pm.GetInTurnParticipant()
	if pt == nil {
		return 0, false
	}

	return pt.ID(), true
}

// Actions returns the audit log of accepted actions
func (h *Hand) Actions() []*ActionRecord {
	actions := make([]*ActionRecord, len(h.actions))
	copy(actions, h.actions)
	return actions
}

// Results returns the outcome of the hand, or nil if it is still being played
func (h *Hand) Results() *Results {
	return h.results
}

// Chips returns the chips the player has behind
func (h *Hand) Chips(playerID int64) (int, bool) {
	seat, ok := h.byID[playerID]
	if !ok {
		return 0, false
	}

	return seat.balance, true
}

// HoleCards returns the player's hole cards
func (h *Hand) HoleCards(playerID int64) (deck.Hand, bool) {
	seat, ok := h.byID[playerID]
	if !ok {
		return nil, false
	}

	return seat.HoleCards(), true
}

// DefaultAction returns the action applied on the player's behalf when their
// turn clock expires: check when it is free, otherwise fold.
func (h *Hand) DefaultAction(playerID int64) Action {
	seat, ok := h.byID[playerID]
	if !ok {
		return ActionFold
	}

	if h.pm.GetParticipantBet(seat) == h.pm.GetBet() {
		return ActionCheck
	}

	return ActionFold
}

// Action applies a player action. Rejections satisfy IsUserError and leave
// the hand untouched; any other error means the hand aborted.
func (h *Hand) Action(playerID int64, action Action, amount int) error {
	if h.street >= StreetShowdown {
		return ErrHandFinished
	}

	seat, ok := h.byID[playerID]
	if !ok {
		return ErrNotInHand
	}

	potBefore := h.pm.TotalCommitted()

	var err error
	switch action {
	case ActionFold:
		err = h.pm.ParticipantFolds(seat)
	case ActionCheck:
		err = h.pm.ParticipantChecks(seat)
	case ActionCall:
		err = h.pm.ParticipantCalls(seat)
	case ActionRaise:
		allIn := h.pm.GetParticipantAllInAmount(seat)
		if amount > allIn {
			return ErrInsufficientChips
		}

		if amount < h.pm.GetMinRaise() && amount != allIn {
			return ErrInvalidRaiseAmount
		}

		err = h.pm.ParticipantBetsOrRaises(seat, amount)
	case ActionAllIn:
		err = h.pm.ParticipantGoesAllIn(seat)
	default:
		return ErrInvalidAction
	}

	if err != nil {
		return err
	}

	h.record(seat, action, potBefore)
	return h.advance()
}

func (h *Hand) record(seat *Seat, action Action, potBefore int) {
	amount := 0
	if action != ActionFold && action != ActionCheck {
		amount = h.pm.GetParticipantBet(seat)
	}

	record := &ActionRecord{
		HandID:    h.id,
		PlayerID:  seat.PlayerID,
		Position:  seat.Position,
		Action:    action,
		Amount:    amount,
		Street:    h.street,
		PotBefore: potBefore,
		PotAfter:  h.pm.TotalCommitted(),
		Time:      time.Now(),
	}

	h.actions = append(h.actions, record)
	h.emit(&ActionAppliedEvent{Record: record})

	h.logger.WithFields(logrus.Fields{
		"playerId": seat.PlayerID,
		"street":   h.street.String(),
	}).Debug(action.LogMessage(amount))
}

// advance moves the hand forward until a player decision is pending or the
// hand is finished
func (h *Hand) advance() error {
	for {
		if h.pm.GetLiveParticipantCount() == 1 {
			return h.finish(false)
		}

		if !h.pm.IsRoundOver() {
			if h.pm.GetCanActParticipantCount() >= 2 {
				return nil
			}

			pt := h.pm.GetInTurnParticipant()
			if pt == nil || h.pm.GetParticipantBet(pt) != h.pm.GetBet() {
				return nil
			}

			// the last player with chips has matched the bet and every
			// opponent is all-in, so no bet they make could be called
			if err := h.pm.ParticipantChecks(pt); err != nil {
				return err
			}

			continue
		}

		if h.street >= StreetRiver {
			return h.finish(true)
		}

		if err := h.pm.NextRound(); err != nil {
			return err
		}

		h.street++
		if err := h.dealCommunity(); err != nil {
			return h.abort(err)
		}
	}
}

func (h *Hand) dealCommunity() error {
	cards, err := h.deck.DrawMany(h.street.communityCardCount())
	if err != nil {
		return err
	}

	h.community = append(h.community, cards...)
	h.emit(&CommunityDealtEvent{
		Street: h.street,
		Cards:  cards,
	})

	h.logger.WithFields(logrus.Fields{
		"street": h.street.String(),
		"cards":  deck.CardsToString(cards),
	}).Debug("community dealt")
	return nil
}

// finish settles the hand. With a showdown every live seat's best hand is
// evaluated against the full board; otherwise the lone live seat takes
// everything without revealing.
func (h *Hand) finish(showdown bool) error {
	h.pm.EndHand()

	var tiers [][]potmanager.Participant
	var category *poker.Category

	live := h.pm.GetLiveParticipants()
	if showdown {
		h.street = StreetShowdown
		h.wentToShowdown = true

		wm := potmanager.NewWinManager()
		best := 0
		for _, pt := range live {
			seat := h.byID[pt.ID()]
			rank, err := poker.Evaluate(append(seat.HoleCards(), h.community...))
			if err != nil {
				return h.abort(err)
			}

			seat.handRank = rank
			strength := rank.Strength()
			wm.AddParticipant(seat, strength)

			if strength > best {
				best = strength
				c := rank.Category
				category = &c
			}
		}

		tiers = wm.GetSortedTiers()
	} else {
		tiers = [][]potmanager.Participant{{live[0]}}
	}

	payouts, err := h.pm.PayWinners(tiers)
	if err != nil {
		return h.abort(err)
	}

	paid := 0
	for _, amount := range payouts {
		paid += amount
	}

	if committed := h.pm.TotalCommitted(); paid != committed {
		return h.abort(fmt.Errorf("paid %d chips from a pot of %d", paid, committed))
	}

	for _, seat := range h.seats {
		switch {
		case payouts[seat.PlayerID] > 0:
			seat.result = resultWon
			seat.winnings = payouts[seat.PlayerID]
		case h.pm.IsParticipantFolded(seat):
			seat.result = resultFolded
		default:
			seat.result = resultLost
		}
	}

	h.street = StreetFinished
	h.results = &Results{
		Payouts:  payouts,
		Category: category,
	}

	h.emit(&HandFinishedEvent{
		HandID:   h.id,
		Payouts:  payouts,
		Category: category,
	})

	h.logger.WithField("payouts", payouts).Info("hand finished")
	return nil
}

// abort ends the hand on an integrity fault and restores the pre-hand stacks
func (h *Hand) abort(cause error) error {
	h.pm.EndHand()

	for _, seat := range h.seats {
		seat.balance = seat.starting
		seat.bet = 0
		seat.result = resultPending
		seat.winnings = 0
	}

	h.street = StreetFinished
	h.aborted = true
	h.results = &Results{
		Payouts: map[int64]int{},
		Aborted: true,
	}

	h.emit(&FaultEvent{
		HandID:  h.id,
		Message: cause.Error(),
	})

	h.logger.WithError(cause).Error("hand aborted")
	return fmt.Errorf("%w: %s", ErrIntegrityFault, cause)
}
