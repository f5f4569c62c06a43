package holdem

import (
	"errors"

	"riverroom-server/pkg/potmanager"
)

// UserError is a client-safe rejection of a player's input. The hand state is
// never mutated when one is returned.
type UserError string

func (u UserError) Error() string {
	return string(u)
}

// user errors
var (
	ErrNotEnoughPlayers   = UserError("at least two players are required")
	ErrHandFinished       = UserError("the hand is already finished")
	ErrNotInHand          = UserError("you are not in this hand")
	ErrInvalidAction      = UserError("that action is not recognized")
	ErrInvalidRaiseAmount = UserError("your raise is below the minimum raise")
	ErrInsufficientChips  = UserError("you do not have enough chips")
)

// ErrIntegrityFault is returned when the hand had to be aborted and the
// pre-hand stacks were restored
var ErrIntegrityFault = errors.New("hand aborted due to an integrity fault")

// IsUserError returns true if the error is a safe rejection that can be shown
// to the player as-is
func IsUserError(err error) bool {
	var userError UserError
	if errors.As(err, &userError) {
		return true
	}

	var participantError potmanager.ParticipantError
	return errors.As(err, &participantError)
}
