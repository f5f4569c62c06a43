package holdem

import (
	"github.com/google/uuid"

	"riverroom-server/pkg/deck"
	"riverroom-server/pkg/potmanager"
)

// State is a view of the hand for one player. Hole cards are only revealed
// for the viewer, and for every live seat once the hand reaches showdown.
type State struct {
	HandID      uuid.UUID       `json:"handId"`
	Seq         int64           `json:"seq"`
	Street      Street          `json:"street"`
	Community   deck.Hand       `json:"community"`
	Pots        potmanager.Pots `json:"pots"`
	PotTotal    int             `json:"potTotal"`
	CurrentBet  int             `json:"currentBet"`
	MinRaise    int             `json:"minRaise"`
	CurrentTurn int64           `json:"currentTurn"`
	Seats       []*seatJSON     `json:"seats"`
	Actions     []Action        `json:"actions"`
}

// State returns the hand as seen by the given player
func (h *Hand) State(viewerID int64) *State {
	showdown := h.wentToShowdown && !h.aborted

	seats := make([]*seatJSON, len(h.seats))
	for i, seat := range h.seats {
		reveal := seat.PlayerID == viewerID ||
			(showdown && !h.pm.IsParticipantFolded(seat))
		seats[i] = h.seatJSON(seat, reveal)
	}

	var currentTurn int64
	if id, ok := h.CurrentTurn(); ok {
		currentTurn = id
	}

	return &State{
		HandID:      h.id,
		Seq:         h.seq,
		Street:      h.street,
		Community:   h.community,
		Pots:        h.pm.Pots(),
		PotTotal:    h.pm.TotalCommitted(),
		CurrentBet:  h.pm.GetBet(),
		MinRaise:    h.pm.GetMinRaise(),
		CurrentTurn: currentTurn,
		Seats:       seats,
		Actions:     h.actionsFor(viewerID),
	}
}

// actionsFor returns the actions the player may take right now
func (h *Hand) actionsFor(playerID int64) []Action {
	id, ok := h.CurrentTurn()
	if !ok || id != playerID {
		return nil
	}

	seat := h.byID[playerID]
	currentBet := h.pm.GetBet()
	bet := h.pm.GetParticipantBet(seat)

	actions := make([]Action, 0, 4)
	if bet == currentBet {
		actions = append(actions, ActionCheck)
	} else {
		actions = append(actions, ActionCall)
	}

	allIn := h.pm.GetParticipantAllInAmount(seat)
	if allIn >= h.pm.GetMinRaise() {
		actions = append(actions, ActionRaise)
	}

	if allIn > currentBet {
		actions = append(actions, ActionAllIn)
	}

	return append(actions, ActionFold)
}
