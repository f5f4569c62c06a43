package holdem

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Action represents an action a player can take
type Action string

// action constants
const (
	ActionFold  Action = "fold"
	ActionCheck Action = "check"
	ActionCall  Action = "call"
	ActionRaise Action = "raise"
	ActionAllIn Action = "all_in"
)

var allowedActions = map[Action]bool{
	ActionFold:  true,
	ActionCheck: true,
	ActionCall:  true,
	ActionRaise: true,
	ActionAllIn: true,
}

// ActionFromString returns an action for the given identifier
func ActionFromString(s string) (Action, error) {
	if _, ok := allowedActions[Action(s)]; ok {
		return Action(s), nil
	}

	return "", fmt.Errorf("unknown action for identifier: %s", s)
}

func (a Action) String() string {
	switch a {
	case ActionFold:
		return "Fold"
	case ActionCheck:
		return "Check"
	case ActionCall:
		return "Call"
	case ActionRaise:
		return "Raise"
	case ActionAllIn:
		return "All-In"
	}

	panic("unknown action")
}

// MarshalJSON encodes the action into JSON
func (a Action) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}{
		ID:   string(a),
		Name: a.String(),
	})
}

// IsValid returns true if the action is permitted
func (a Action) IsValid() bool {
	_, ok := allowedActions[a]
	return ok
}

// LogMessage returns a message formatted for the table log
func (a Action) LogMessage(amount int) string {
	switch a {
	case ActionFold:
		return "folded"
	case ActionCheck:
		return "checked"
	case ActionCall:
		return fmt.Sprintf("called to ${%d}", amount)
	case ActionRaise:
		return fmt.Sprintf("raised to ${%d}", amount)
	case ActionAllIn:
		return fmt.Sprintf("went all-in for ${%d}", amount)
	}

	return ""
}

// ActionRecord is an immutable audit entry for one accepted action.
// Amount is the player's total bet on the street after the action was applied.
type ActionRecord struct {
	HandID    uuid.UUID `json:"handId"`
	PlayerID  int64     `json:"playerId"`
	Position  int       `json:"position"`
	Action    Action    `json:"action"`
	Amount    int       `json:"amount"`
	Street    Street    `json:"street"`
	PotBefore int       `json:"potBefore"`
	PotAfter  int       `json:"potAfter"`
	Time      time.Time `json:"time"`
}
