// internal/casino/sidebets.go
package casino

// Side-bet payout multipliers. A winning side bet returns stake*(multiplier+1):
// the multiplier is the profit ratio, the stake comes back on top.
const (
	payoutPerfectPair = 25
	payoutColoredPair = 12
	payoutMixedPair   = 6

	payoutStraightFlush = 40
	payoutThreeOfAKind  = 30
	payoutStraight      = 10
	payoutFlush         = 5
	payoutOnePair       = 5
)

// rankOrder21p3 maps ranks to poker ordering for the 21+3 bet, Ace high.
var rankOrder21p3 = map[Rank]int{
	"2": 2, "3": 3, "4": 4, "5": 5, "6": 6, "7": 7, "8": 8, "9": 9, "10": 10,
	Jack: 11, Queen: 12, King: 13, Ace: 14,
}

// suitColor groups suits into red (hearts, diamonds) and black (spades, clubs).
func suitColor(s Suit) string {
	if s == Hearts || s == Diamonds {
		return "red"
	}
	return "black"
}

// settlePair evaluates the Pair side bet against the player's first two cards.
// Same rank and suit pays 25x, same rank and color 12x, same rank 6x.
func settlePair(cards []Card) (int, string) {
	if len(cards) < 2 {
		return 0, ""
	}
	c1, c2 := cards[0], cards[1]
	if c1.Rank != c2.Rank {
		return 0, ""
	}
	if c1.Suit == c2.Suit {
		return payoutPerfectPair, "Perfect Pair (25x)"
	}
	if suitColor(c1.Suit) == suitColor(c2.Suit) {
		return payoutColoredPair, "Colored Pair (12x)"
	}
	return payoutMixedPair, "Mixed Pair (6x)"
}

// settle21Plus3 evaluates the 21+3 side bet over the player's two cards plus
// the dealer upcard. Only the single highest-priority hand pays. The wheel
// straight A-2-3 counts as a straight.
func settle21Plus3(playerCards []Card, dealerUp *Card) (int, string) {
	if len(playerCards) < 2 || dealerUp == nil {
		return 0, ""
	}
	cards := []Card{playerCards[0], playerCards[1], *dealerUp}

	flush := cards[0].Suit == cards[1].Suit && cards[1].Suit == cards[2].Suit

	counts := map[Rank]int{}
	for _, c := range cards {
		counts[c.Rank]++
	}
	threeKind := false
	pair := false
	for _, n := range counts {
		if n == 3 {
			threeKind = true
		}
		if n == 2 {
			pair = true
		}
	}

	vals := []int{rankOrder21p3[cards[0].Rank], rankOrder21p3[cards[1].Rank], rankOrder21p3[cards[2].Rank]}
	if vals[0] > vals[1] {
		vals[0], vals[1] = vals[1], vals[0]
	}
	if vals[1] > vals[2] {
		vals[1], vals[2] = vals[2], vals[1]
	}
	if vals[0] > vals[1] {
		vals[0], vals[1] = vals[1], vals[0]
	}
	straight := (vals[0] == 2 && vals[1] == 3 && vals[2] == 14) ||
		(vals[0]+1 == vals[1] && vals[1]+1 == vals[2])

	switch {
	case straight && flush:
		return payoutStraightFlush, "Straight Flush (40x)"
	case threeKind:
		return payoutThreeOfAKind, "Three of a Kind (30x)"
	case straight:
		return payoutStraight, "Straight (10x)"
	case flush:
		return payoutFlush, "Flush (5x)"
	case pair:
		return payoutOnePair, "One Pair (5x)"
	}
	return 0, ""
}
