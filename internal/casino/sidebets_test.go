// internal/casino/sidebets_test.go
package casino

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSettlePair(t *testing.T) {
	tests := []struct {
		name      string
		cards     []Card
		wantMult  int
		wantLabel string
	}{
		{
			"different ranks pay nothing",
			[]Card{{Rank: King, Suit: Spades}, {Rank: Queen, Suit: Spades}},
			0, "",
		},
		{
			"perfect pair",
			[]Card{{Rank: "9", Suit: Hearts}, {Rank: "9", Suit: Hearts}},
			25, "Perfect Pair (25x)",
		},
		{
			"colored pair both black",
			[]Card{{Rank: King, Suit: Spades}, {Rank: King, Suit: Clubs}},
			12, "Colored Pair (12x)",
		},
		{
			"colored pair both red",
			[]Card{{Rank: "4", Suit: Hearts}, {Rank: "4", Suit: Diamonds}},
			12, "Colored Pair (12x)",
		},
		{
			"mixed pair across colors",
			[]Card{{Rank: King, Suit: Spades}, {Rank: King, Suit: Diamonds}},
			6, "Mixed Pair (6x)",
		},
		{
			"single card pays nothing",
			[]Card{{Rank: King, Suit: Spades}},
			0, "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mult, label := settlePair(tt.cards)
			assert.Equal(t, tt.wantMult, mult)
			assert.Equal(t, tt.wantLabel, label)
		})
	}
}

func TestSettle21Plus3(t *testing.T) {
	tests := []struct {
		name      string
		player    []Card
		dealerUp  Card
		wantMult  int
		wantLabel string
	}{
		{
			"three of a kind",
			[]Card{{Rank: Ace, Suit: Spades}, {Rank: Ace, Suit: Hearts}},
			Card{Rank: Ace, Suit: Diamonds},
			30, "Three of a Kind (30x)",
		},
		{
			"straight flush",
			[]Card{{Rank: "5", Suit: Clubs}, {Rank: "6", Suit: Clubs}},
			Card{Rank: "7", Suit: Clubs},
			40, "Straight Flush (40x)",
		},
		{
			"straight mixed suits",
			[]Card{{Rank: "9", Suit: Clubs}, {Rank: Jack, Suit: Hearts}},
			Card{Rank: "10", Suit: Spades},
			10, "Straight (10x)",
		},
		{
			"wheel straight ace low",
			[]Card{{Rank: Ace, Suit: Clubs}, {Rank: "2", Suit: Hearts}},
			Card{Rank: "3", Suit: Spades},
			10, "Straight (10x)",
		},
		{
			"ace high straight",
			[]Card{{Rank: Queen, Suit: Clubs}, {Rank: Ace, Suit: Hearts}},
			Card{Rank: King, Suit: Spades},
			10, "Straight (10x)",
		},
		{
			"flush",
			[]Card{{Rank: "2", Suit: Hearts}, {Rank: "9", Suit: Hearts}},
			Card{Rank: King, Suit: Hearts},
			5, "Flush (5x)",
		},
		{
			"one pair",
			[]Card{{Rank: "8", Suit: Hearts}, {Rank: "8", Suit: Spades}},
			Card{Rank: King, Suit: Clubs},
			5, "One Pair (5x)",
		},
		{
			"nothing",
			[]Card{{Rank: "2", Suit: Hearts}, {Rank: "9", Suit: Spades}},
			Card{Rank: King, Suit: Clubs},
			0, "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			up := tt.dealerUp
			mult, label := settle21Plus3(tt.player, &up)
			assert.Equal(t, tt.wantMult, mult)
			assert.Equal(t, tt.wantLabel, label)
		})
	}
}

func TestSettle21Plus3MissingDealerUpcard(t *testing.T) {
	mult, label := settle21Plus3([]Card{{Rank: "8", Suit: Hearts}, {Rank: "8", Suit: Spades}}, nil)
	assert.Zero(t, mult)
	assert.Empty(t, label)
}
