package holdem

import "encoding/json"

// Street represents the phase of a hand
type Street int

// constants for Street
const (
	StreetPreflop Street = iota
	StreetFlop
	StreetTurn
	StreetRiver
	StreetShowdown
	StreetFinished
)

func (s Street) String() string {
	switch s {
	case StreetPreflop:
		return "preflop"
	case StreetFlop:
		return "flop"
	case StreetTurn:
		return "turn"
	case StreetRiver:
		return "river"
	case StreetShowdown:
		return "showdown"
	case StreetFinished:
		return "finished"
	}

	return ""
}

// MarshalJSON encodes JSON
func (s Street) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	}{
		ID:   int(s),
		Name: s.String(),
	})
}

// communityCardCount returns the number of community cards dealt entering the street
func (s Street) communityCardCount() int {
	switch s {
	case StreetFlop:
		return 3
	case StreetTurn, StreetRiver:
		return 1
	}

	return 0
}
