package table

// Seat is one position at a table. Chips are the player's chips in play,
// distinct from their wallet bankroll.
type Seat struct {
	Position     int   `json:"position"`
	PlayerID     int64 `json:"playerId"`
	Chips        int   `json:"chips"`
	SittingOut   bool  `json:"sittingOut"`
	PendingLeave bool  `json:"pendingLeave"`

	// creditKey is the idempotency key for returning this seat's chips to the
	// wallet. A seat cashes out exactly once, so the key is minted at Join and
	// reused on every retry; a credit that committed but reported a transient
	// error can never pay twice.
	creditKey string
}

// eligible returns true if the seat can be dealt into the next hand
func (s *Seat) eligible() bool {
	return !s.SittingOut && !s.PendingLeave && s.Chips > 0
}
