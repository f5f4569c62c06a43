package deck

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCard_String(t *testing.T) {
	a := assert.New(t)
	a.Equal("A♠", CardFromString("14s").String())
	a.Equal("10♡", CardFromString("10h").String())
	a.Equal("J♣", CardFromString("11c").String())
	a.Equal("2♢", CardFromString("2d").String())
}

func TestCardFromString(t *testing.T) {
	a := assert.New(t)

	card := CardFromString("13h")
	a.Equal(King, card.Rank)
	a.Equal(Hearts, card.Suit)

	a.Nil(CardFromString(""))
	a.PanicsWithValue("could not parse card: 15s", func() {
		CardFromString("15s")
	})
}

func TestCardsRoundTrip(t *testing.T) {
	a := assert.New(t)

	const s = "2c,10d,14s"
	cards := CardsFromString(s)
	a.Equal(3, len(cards))
	a.Equal(s, CardsToString(cards))
}

func TestCard_AceLowRank(t *testing.T) {
	a := assert.New(t)
	a.Equal(1, CardFromString("14s").AceLowRank())
	a.Equal(13, CardFromString("13s").AceLowRank())
}

func TestHand(t *testing.T) {
	a := assert.New(t)

	h := Hand{}
	h.AddCard(CardFromString("2c"))
	h.AddCard(CardFromString("3d"))

	a.True(h.HasCard(CardFromString("2c")))
	a.False(h.HasCard(CardFromString("2d")))
	a.Equal("2c,3d", h.String())

	clone := h.Clone()
	clone[0] = CardFromString("14s")
	a.Equal("2c,3d", h.String())
}
