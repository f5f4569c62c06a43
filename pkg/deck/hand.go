package deck

import "strings"

// Hand represents a hand of cards
type Hand []*Card

// AddCard will add a card to the hand
func (h *Hand) AddCard(card *Card) {
	*h = append(*h, card)
}

// Clone makes a shallow copy of the hand
func (h Hand) Clone() Hand {
	cards := make(Hand, len(h))
	copy(cards, h)
	return cards
}

// HasCard returns true if the hand contains the card
func (h Hand) HasCard(card *Card) bool {
	for _, c := range h {
		if c.Equal(card) {
			return true
		}
	}

	return false
}

func (h Hand) String() string {
	cards := make([]string, len(h))
	for i, card := range h {
		cards[i] = CardToString(card)
	}

	return strings.Join(cards, ",")
}
