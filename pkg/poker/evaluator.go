package poker

import (
	"errors"
	"sort"

	"riverroom-server/pkg/deck"
)

// ErrTooFewCards is an error when fewer than five cards are evaluated
var ErrTooFewCards = errors.New("need at least five cards to evaluate a hand")

// HandRank is the result of evaluating a set of cards: the category plus an
// ordered tiebreak key sufficient to compare two hands of the same category.
type HandRank struct {
	Category Category  `json:"category"`
	Tiebreak []int     `json:"tiebreak"`
	Cards    deck.Hand `json:"cards"`
}

// Evaluate returns the best five-card hand the cards can make.
// With more than five cards, every five-card combination is considered and the
// strongest kept. Picking the top five cards by raw value is not equivalent: a
// pair sitting below the top five would be lost.
func Evaluate(cards []*deck.Card) (*HandRank, error) {
	if len(cards) < 5 {
		return nil, ErrTooFewCards
	}

	if len(cards) == 5 {
		five := [5]*deck.Card{cards[0], cards[1], cards[2], cards[3], cards[4]}
		return rankFive(five), nil
	}

	var best *HandRank
	combination(len(cards), func(indexes [5]int) {
		five := [5]*deck.Card{
			cards[indexes[0]],
			cards[indexes[1]],
			cards[indexes[2]],
			cards[indexes[3]],
			cards[indexes[4]],
		}

		hr := rankFive(five)
		if best == nil || hr.Compare(best) > 0 {
			best = hr
		}
	})

	return best, nil
}

// combination visits every 5-element combination of n indexes
func combination(n int, visit func(indexes [5]int)) {
	var indexes [5]int
	for a := 0; a < n-4; a++ {
		for b := a + 1; b < n-3; b++ {
			for c := b + 1; c < n-2; c++ {
				for d := c + 1; d < n-1; d++ {
					for e := d + 1; e < n; e++ {
						indexes[0], indexes[1], indexes[2], indexes[3], indexes[4] = a, b, c, d, e
						visit(indexes)
					}
				}
			}
		}
	}
}

// rankFive classifies exactly five cards
func rankFive(five [5]*deck.Card) *HandRank {
	cards := make(deck.Hand, 5)
	copy(cards, five[:])
	sort.Sort(sort.Reverse(sortByRank(cards)))

	flush := cards[0].Suit == cards[1].Suit &&
		cards[0].Suit == cards[2].Suit &&
		cards[0].Suit == cards[3].Suit &&
		cards[0].Suit == cards[4].Suit

	straightHigh := straightHighCard(cards)

	if flush && straightHigh > 0 {
		if straightHigh == deck.Ace {
			return &HandRank{Category: RoyalFlush, Tiebreak: []int{}, Cards: cards}
		}

		return &HandRank{Category: StraightFlush, Tiebreak: []int{straightHigh}, Cards: cards}
	}

	// group ranks: counts is sorted by (count, rank) descending
	groups := groupByRank(cards)

	switch {
	case groups[0].count == 4:
		return &HandRank{
			Category: FourOfAKind,
			Tiebreak: []int{groups[0].rank, groups[1].rank},
			Cards:    cards,
		}
	case groups[0].count == 3 && groups[1].count == 2:
		return &HandRank{
			Category: FullHouse,
			Tiebreak: []int{groups[0].rank, groups[1].rank},
			Cards:    cards,
		}
	case flush:
		return &HandRank{Category: Flush, Tiebreak: ranksOf(cards), Cards: cards}
	case straightHigh > 0:
		return &HandRank{Category: Straight, Tiebreak: []int{straightHigh}, Cards: cards}
	case groups[0].count == 3:
		return &HandRank{
			Category: ThreeOfAKind,
			Tiebreak: []int{groups[0].rank, groups[1].rank, groups[2].rank},
			Cards:    cards,
		}
	case groups[0].count == 2 && groups[1].count == 2:
		return &HandRank{
			Category: TwoPair,
			Tiebreak: []int{groups[0].rank, groups[1].rank, groups[2].rank},
			Cards:    cards,
		}
	case groups[0].count == 2:
		return &HandRank{
			Category: OnePair,
			Tiebreak: []int{groups[0].rank, groups[1].rank, groups[2].rank, groups[3].rank},
			Cards:    cards,
		}
	}

	return &HandRank{Category: HighCard, Tiebreak: ranksOf(cards), Cards: cards}
}

// straightHighCard returns the high card of a straight formed by the five
// sorted (descending) cards, or 0 if there is no straight. The wheel
// (A-2-3-4-5) is a 5-high straight.
func straightHighCard(cards deck.Hand) int {
	run := true
	for i := 1; i < 5; i++ {
		if cards[i-1].Rank != cards[i].Rank+1 {
			run = false
			break
		}
	}

	if run {
		return cards[0].Rank
	}

	// wheel: A,5,4,3,2
	if cards[0].Rank == deck.Ace &&
		cards[1].Rank == 5 &&
		cards[2].Rank == 4 &&
		cards[3].Rank == 3 &&
		cards[4].Rank == 2 {
		return 5
	}

	return 0
}

type rankGroup struct {
	rank  int
	count int
}

// groupByRank groups the sorted cards by rank, ordered by count then rank descending
func groupByRank(cards deck.Hand) []rankGroup {
	groups := make([]rankGroup, 0, 5)
	for _, card := range cards {
		if n := len(groups); n > 0 && groups[n-1].rank == card.Rank {
			groups[n-1].count++
			continue
		}

		groups = append(groups, rankGroup{rank: card.Rank, count: 1})
	}

	sort.SliceStable(groups, func(i, j int) bool {
		if groups[i].count != groups[j].count {
			return groups[i].count > groups[j].count
		}

		return groups[i].rank > groups[j].rank
	})

	return groups
}

func ranksOf(cards deck.Hand) []int {
	ranks := make([]int, len(cards))
	for i, card := range cards {
		ranks[i] = card.Rank
	}

	return ranks
}

// Compare returns >0 if h beats other, <0 if other beats h, and 0 on a tie
func (h *HandRank) Compare(other *HandRank) int {
	if h.Category != other.Category {
		return int(h.Category) - int(other.Category)
	}

	for i := 0; i < len(h.Tiebreak) && i < len(other.Tiebreak); i++ {
		if h.Tiebreak[i] != other.Tiebreak[i] {
			return h.Tiebreak[i] - other.Tiebreak[i]
		}
	}

	return 0
}

// Strength packs the category and tiebreak key into a single comparable integer
func (h *HandRank) Strength() int {
	tiebreak := make([]int, 5)
	copy(tiebreak, h.Tiebreak)

	strength := int(h.Category)
	for i := 0; i < 5; i++ {
		strength = strength*15 + tiebreak[i]
	}

	return strength
}
