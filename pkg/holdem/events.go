package holdem

import (
	"github.com/google/uuid"

	"riverroom-server/pkg/deck"
	"riverroom-server/pkg/poker"
)

// Event is a notification produced by the hand. Events accumulate in order
// and are collected with DrainEvents.
type Event interface {
	Kind() string
}

// HandStartedEvent is emitted once when the hand is dealt
type HandStartedEvent struct {
	HandID     uuid.UUID `json:"handId"`
	Seq        int64     `json:"seq"`
	PlayerIDs  []int64   `json:"playerIds"`
	DealerPos  int       `json:"dealerPos"`
	SmallBlind int       `json:"smallBlind"`
	BigBlind   int       `json:"bigBlind"`
}

// Kind implements Event
func (e *HandStartedEvent) Kind() string { return "handStarted" }

// ActionAppliedEvent is emitted for every accepted action
type ActionAppliedEvent struct {
	Record *ActionRecord `json:"record"`
}

// Kind implements Event
func (e *ActionAppliedEvent) Kind() string { return "actionApplied" }

// CommunityDealtEvent is emitted when community cards hit the board
type CommunityDealtEvent struct {
	Street Street    `json:"street"`
	Cards  deck.Hand `json:"cards"`
}

// Kind implements Event
func (e *CommunityDealtEvent) Kind() string { return "communityDealt" }

// HandFinishedEvent is emitted once when the hand settles
type HandFinishedEvent struct {
	HandID   uuid.UUID       `json:"handId"`
	Payouts  map[int64]int   `json:"payouts"`
	Category *poker.Category `json:"category"`
}

// Kind implements Event
func (e *HandFinishedEvent) Kind() string { return "handFinished" }

// FaultEvent is emitted when the hand aborts on an integrity fault
type FaultEvent struct {
	HandID  uuid.UUID `json:"handId"`
	Message string    `json:"message"`
}

// Kind implements Event
func (e *FaultEvent) Kind() string { return "fault" }

func (h *Hand) emit(event Event) {
	h.events = append(h.events, event)
}

// DrainEvents returns the events accumulated since the last call
func (h *Hand) DrainEvents() []Event {
	events := h.events
	h.events = nil
	return events
}
