package table

// UserError is an error that is safe to return in a response
type UserError string

func (u UserError) Error() string {
	return string(u)
}

// user errors
var (
	ErrTableFull         = UserError("the table is full")
	ErrAlreadySeated     = UserError("you are already seated at this table")
	ErrNotSeated         = UserError("you are not seated at this table")
	ErrBelowMinimumBuyIn = UserError("your buy-in is below the table minimum")
	ErrHandInProgress    = UserError("a hand is already in progress")
	ErrNoHandInProgress  = UserError("no hand is in progress")
	ErrBadPassword       = UserError("incorrect table password")
)
