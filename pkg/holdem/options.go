package holdem

import "errors"

// Options configures how a hand of Texas Hold'em is played
type Options struct {
	// SmallBlind is the table's minimum bet; the big blind is twice this
	SmallBlind int
}

// DefaultOptions returns the default options
func DefaultOptions() Options {
	return Options{
		SmallBlind: 25,
	}
}

// BigBlind returns the big blind for the options
func (o Options) BigBlind() int {
	return o.SmallBlind * 2
}

func validateOptions(o Options) error {
	if o.SmallBlind <= 0 {
		return errors.New("small blind must be greater than zero")
	}

	return nil
}
