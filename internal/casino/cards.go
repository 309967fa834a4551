// internal/casino/cards.go
package casino

import (
	"math/rand"
	"strconv"
)

// Suit is the card suit, stored as the symbol itself so persisted state and
// API payloads read the same way the table renders them.
type Suit string

const (
	Spades   Suit = "♠"
	Hearts   Suit = "♥"
	Diamonds Suit = "♦"
	Clubs    Suit = "♣"
)

// Rank is the card rank ("2".."10", "J", "Q", "K", "A").
type Rank string

const (
	Jack  Rank = "J"
	Queen Rank = "Q"
	King  Rank = "K"
	Ace   Rank = "A"
)

var suits = []Suit{Spades, Hearts, Diamonds, Clubs}

var ranks = []Rank{"2", "3", "4", "5", "6", "7", "8", "9", "10", Jack, Queen, King, Ace}

// Card is an immutable rank/suit pair.
type Card struct {
	Rank Rank `json:"rank"`
	Suit Suit `json:"suit"`
}

// shoeDecks is the number of 52-card decks in a freshly built shoe.
const shoeDecks = 6

// newShoe builds a uniformly shuffled six-deck shoe (312 cards).
func newShoe() []Card {
	shoe := make([]Card, 0, shoeDecks*len(suits)*len(ranks))
	for i := 0; i < shoeDecks; i++ {
		for _, s := range suits {
			for _, r := range ranks {
				shoe = append(shoe, Card{Rank: r, Suit: s})
			}
		}
	}
	rand.Shuffle(len(shoe), func(i, j int) {
		shoe[i], shoe[j] = shoe[j], shoe[i]
	})
	return shoe
}

// drawCard removes and returns the top card of the shoe. An empty shoe is
// replaced with a freshly shuffled one first; drawing never fails.
func drawCard(shoe *[]Card) Card {
	if len(*shoe) == 0 {
		*shoe = newShoe()
	}
	c := (*shoe)[len(*shoe)-1]
	*shoe = (*shoe)[:len(*shoe)-1]
	return c
}

// cardValue returns the blackjack value of a card, counting the Ace as 11.
func cardValue(c Card) int {
	switch c.Rank {
	case Jack, Queen, King:
		return 10
	case Ace:
		return 11
	default:
		v, _ := strconv.Atoi(string(c.Rank))
		return v
	}
}

// handScore computes the soft-ace-aware score of a hand: aces count 11 first,
// then drop to 1 one at a time while the total is over 21. A bust score is
// returned as the true over-21 total.
func handScore(cards []Card) int {
	score := 0
	aces := 0
	for _, c := range cards {
		if c.Rank == Ace {
			aces++
		}
		score += cardValue(c)
	}
	for score > 21 && aces > 0 {
		score -= 10
		aces--
	}
	return score
}

// isNaturalBlackjack reports whether the hand is a two-card 21.
func isNaturalBlackjack(cards []Card) bool {
	return len(cards) == 2 && handScore(cards) == 21
}

// isSplittablePair reports whether the hand is exactly two cards of equal
// rank, regardless of suit.
func isSplittablePair(cards []Card) bool {
	return len(cards) == 2 && cards[0].Rank == cards[1].Rank
}

func isTenValue(c Card) bool {
	switch c.Rank {
	case "10", Jack, Queen, King:
		return true
	}
	return false
}
