package holdem

import (
	"riverroom-server/pkg/deck"
	"riverroom-server/pkg/poker"
)

type result string

const (
	resultPending result = ""
	resultFolded  result = "folded"
	resultLost    result = "lost"
	resultWon     result = "won"
)

// Seat is one player's stake in a single hand. The balance is a snapshot of
// the chips the player brought into the hand; the table copies it back when
// the hand settles.
type Seat struct {
	PlayerID int64
	Position int

	balance  int
	starting int
	bet      int
	cards    deck.Hand

	result   result
	winnings int
	handRank *poker.HandRank
}

func newSeat(playerID int64, position, chips int) *Seat {
	return &Seat{
		PlayerID: playerID,
		Position: position,
		balance:  chips,
		starting: chips,
		cards:    make(deck.Hand, 0, 2),
		result:   resultPending,
	}
}

// HoleCards returns a copy of the seat's hole cards
func (s *Seat) HoleCards() deck.Hand {
	return s.cards.Clone()
}

// potmanager.Participant interface

// ID returns the player ID
func (s *Seat) ID() int64 {
	return s.PlayerID
}

// Balance returns the chips the seat has behind
func (s *Seat) Balance() int {
	return s.balance
}

// AdjustBalance adds the amount to the seat's chips
func (s *Seat) AdjustBalance(amount int) {
	s.balance += amount
}

// SetAmountInPlay records the seat's total bet on the current street
func (s *Seat) SetAmountInPlay(amount int) {
	s.bet = amount
}

type seatJSON struct {
	PlayerID int64     `json:"playerId"`
	Position int       `json:"position"`
	Balance  int       `json:"balance"`
	Bet      int       `json:"currentBet"`
	Cards    deck.Hand `json:"cards"`
	Folded   bool      `json:"folded"`
	AllIn    bool      `json:"allIn"`
	Hand     string    `json:"hand"`
	Result   result    `json:"result"`
	Winnings int       `json:"winnings"`
}

func (h *Hand) seatJSON(s *Seat, reveal bool) *seatJSON {
	var cards deck.Hand
	var hand string
	if reveal {
		cards = s.cards
		if s.handRank != nil {
			hand = s.handRank.Category.String()
		}
	}

	return &seatJSON{
		PlayerID: s.PlayerID,
		Position: s.Position,
		Balance:  s.balance,
		Bet:      s.bet,
		Cards:    cards,
		Folded:   h.pm.IsParticipantFolded(s),
		AllIn:    h.pm.IsParticipantAllIn(s),
		Hand:     hand,
		Result:   s.result,
		Winnings: s.winnings,
	}
}
