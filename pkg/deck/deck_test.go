package deck

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"riverroom-server/internal/rng"
)

func TestNew(t *testing.T) {
	a := assert.New(t)

	d := New()
	a.Equal(52, d.CardsLeft())

	seen := make(map[string]bool)
	for _, card := range d.Cards {
		key := CardToString(card)
		a.False(seen[key], "card %s must be unique", key)
		seen[key] = true
	}
	a.Equal(52, len(seen))
}

func TestDeck_Shuffle(t *testing.T) {
	a := assert.New(t)

	d := New()
	unshuffled := d.HashCode()
	d.Shuffle()
	a.NotEqual(unshuffled, d.HashCode())

	// still 52 unique cards after the shuffle
	seen := make(map[string]bool)
	for _, card := range d.Cards {
		seen[CardToString(card)] = true
	}
	a.Equal(52, len(seen))
}

func TestDeck_Shuffle_deterministicWithSeed(t *testing.T) {
	a := assert.New(t)

	d1 := New()
	d1.SetGenerator(rng.NewSeeded(7))
	d1.Shuffle()

	d2 := New()
	d2.SetGenerator(rng.NewSeeded(7))
	d2.Shuffle()

	a.Equal(d1.HashCode(), d2.HashCode())
}

func TestDeck_Draw(t *testing.T) {
	a := assert.New(t)

	d := New()
	first := d.Cards[0]

	card, err := d.Draw()
	a.NoError(err)
	a.True(first.Equal(card))
	a.Equal(51, d.CardsLeft())

	d.Cards = d.Cards[0:0]
	card, err = d.Draw()
	a.Equal(ErrEndOfDeck, err)
	a.Nil(card)
}

func TestDeck_DrawMany(t *testing.T) {
	a := assert.New(t)

	d := New()
	cards, err := d.DrawMany(3)
	a.NoError(err)
	a.Equal(3, len(cards))
	a.Equal(49, d.CardsLeft())

	a.True(d.CanDraw(49))
	a.False(d.CanDraw(50))

	cards, err = d.DrawMany(50)
	a.Equal(ErrEndOfDeck, err)
	a.Nil(cards)
}
