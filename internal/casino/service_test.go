// internal/casino/service_test.go
package casino

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newTestService(t *testing.T) (*TableService, *MemoryRepository) {
	t.Helper()
	repo := NewMemoryRepository()
	ts, err := NewTableService(context.Background(), repo, testLogger())
	require.NoError(t, err)
	return ts, repo
}

func c(r Rank, s Suit) Card { return Card{Rank: r, Suit: s} }

// stackShoe makes StartGame deal the given cards in order: first two to the
// dealer, then two per seat in seating order, then one per subsequent draw.
func stackShoe(ts *TableService, cards ...Card) {
	ts.buildShoe = func() []Card {
		shoe := make([]Card, len(cards))
		for i, card := range cards {
			shoe[len(cards)-1-i] = card
		}
		return shoe
	}
}

func seatWithBet(t *testing.T, ts *TableService, username string, main int) {
	t.Helper()
	ctx := context.Background()
	already, err := ts.Seat(ctx, username)
	require.NoError(t, err)
	require.False(t, already)
	require.NoError(t, ts.SetBets(ctx, username, main, 0, 0))
}

func seatView(t *testing.T, ts *TableService, username string) SeatView {
	t.Helper()
	for _, s := range ts.Snapshot().Seats {
		if s.Username == username {
			return s
		}
	}
	t.Fatalf("no seat for %s", username)
	return SeatView{}
}

func TestSeatIdempotentAndUnseat(t *testing.T) {
	ts, _ := newTestService(t)
	ctx := context.Background()

	already, err := ts.Seat(ctx, "alice")
	require.NoError(t, err)
	assert.False(t, already)

	already, err = ts.Seat(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, already, "second seat reports already seated")
	require.Len(t, ts.Snapshot().Seats, 1, "no duplicate seat")
	assert.Equal(t, InitialBankroll, seatView(t, ts, "alice").Bankroll)

	err = ts.Unseat(ctx, "ghost")
	assert.ErrorIs(t, err, ErrNotSeated)

	require.NoError(t, ts.Unseat(ctx, "alice"))
	snap := ts.Snapshot()
	assert.Empty(t, snap.Seats)
	assert.Equal(t, PhaseWaiting, snap.Phase)
	assert.Zero(t, snap.ShoeSize, "empty table clears the shoe")
}

func TestStartGameInvalidBets(t *testing.T) {
	ts, _ := newTestService(t)
	ctx := context.Background()

	seatWithBet(t, ts, "alice", 100)
	_, err := ts.Seat(ctx, "bob") // bob never places a main bet
	require.NoError(t, err)

	err = ts.StartGame(ctx, "alice")
	require.ErrorIs(t, err, ErrInvalidBets)
	var ibe *InvalidBetsError
	require.ErrorAs(t, err, &ibe)
	assert.Equal(t, []string{"bob"}, ibe.Players)

	snap := ts.Snapshot()
	assert.Equal(t, PhaseWaiting, snap.Phase, "round did not start")
	assert.Equal(t, InitialBankroll, seatView(t, ts, "alice").Bankroll)

	// Over-bankroll wagers are caught too.
	require.NoError(t, ts.SetBets(ctx, "bob", InitialBankroll+1, 0, 0))
	err = ts.StartGame(ctx, "alice")
	require.ErrorAs(t, err, &ibe)
	assert.Equal(t, []string{"bob"}, ibe.Players)
}

func TestStartGameDealsAndDebits(t *testing.T) {
	ts, _ := newTestService(t)
	ctx := context.Background()

	seatWithBet(t, ts, "alice", 100)
	seatWithBet(t, ts, "bob", 100)
	stackShoe(ts,
		c("9", Spades), c("7", Diamonds), // dealer
		c("10", Spades), c("8", Hearts), // alice: 18
		c("5", Clubs), c("9", Diamonds), // bob: 14
	)

	require.NoError(t, ts.StartGame(ctx, "alice"))

	snap := ts.Snapshot()
	assert.Equal(t, PhasePlaying, snap.Phase)
	assert.Zero(t, snap.ShoeSize, "two dealer cards plus two per player dealt")
	require.NotNil(t, snap.Turn)
	assert.Equal(t, "alice", snap.Turn.Username)
	assert.Equal(t, 0, snap.Turn.HandIndex)

	require.Len(t, snap.Dealer.Cards, 1, "hole card hidden during play")
	assert.True(t, snap.Dealer.HoleHidden)
	assert.Nil(t, snap.Dealer.Score)
	assert.Equal(t, c("9", Spades), snap.Dealer.Cards[0])

	for _, name := range []string{"alice", "bob"} {
		sv := seatView(t, ts, name)
		assert.Equal(t, 1900, sv.Bankroll, "wager debited at deal")
		require.Len(t, sv.Hands, 1)
		assert.Len(t, sv.Hands[0].Cards, 2)
		assert.Equal(t, 100, sv.Hands[0].Bet)
	}
	assert.Equal(t, 18, seatView(t, ts, "alice").Hands[0].Score)
	assert.Equal(t, 14, seatView(t, ts, "bob").Hands[0].Score)
}

func TestStartGameSettlesSideBetsImmediately(t *testing.T) {
	ts, _ := newTestService(t)
	ctx := context.Background()

	_, err := ts.Seat(ctx, "alice")
	require.NoError(t, err)
	require.NoError(t, ts.SetBets(ctx, "alice", 100, 10, 10))
	stackShoe(ts,
		c(King, Diamonds), c("9", Spades), // dealer: K up, 19, no natural
		c(King, Spades), c(King, Clubs), // alice: colored pair, trips with upcard
	)

	require.NoError(t, ts.StartGame(ctx, "alice"))

	// 2000 - 120 staked, +10*13 colored pair, +10*31 three of a kind.
	sv := seatView(t, ts, "alice")
	assert.Equal(t, 2320, sv.Bankroll, "side bets credited before any player action")
	assert.Equal(t, "Colored Pair (12x) | Three of a Kind (30x)", sv.SideResult)
	assert.Equal(t, PhasePlaying, ts.Snapshot().Phase, "main hand still plays out")

	require.NoError(t, ts.Stand(ctx, "alice"))
	sv = seatView(t, ts, "alice")
	assert.Equal(t, "Vinto", sv.MainResult, "20 beats dealer 19")
	assert.Equal(t, 2520, sv.Bankroll)
}

func TestStartGameTenUpDealerNaturalSettlesImmediately(t *testing.T) {
	ts, _ := newTestService(t)
	ctx := context.Background()

	seatWithBet(t, ts, "alice", 100)
	stackShoe(ts,
		c(King, Spades), c(Ace, Hearts), // dealer natural, ten-value up
		c("8", Spades), c("9", Hearts), // alice: 17
	)

	require.NoError(t, ts.StartGame(ctx, "alice"))

	snap := ts.Snapshot()
	assert.Equal(t, PhaseFinished, snap.Phase, "no player turns on a ten-up peek")
	require.NotNil(t, snap.Dealer.Score)
	assert.Equal(t, 21, *snap.Dealer.Score)
	assert.False(t, snap.Dealer.HoleHidden)

	sv := seatView(t, ts, "alice")
	assert.Equal(t, "Banco BJ", sv.MainResult)
	assert.Equal(t, 1900, sv.Bankroll)
}

func TestStartGameNaturalBlackjackFastPath(t *testing.T) {
	ts, _ := newTestService(t)
	ctx := context.Background()

	seatWithBet(t, ts, "alice", 100)
	stackShoe(ts,
		c("10", Spades), c("9", Diamonds), // dealer: 19, no natural
		c(Ace, Spades), c(King, Hearts), // alice: natural
	)

	require.NoError(t, ts.StartGame(ctx, "alice"))

	// The only hand stood at the deal, so the round settles from StartGame.
	sv := seatView(t, ts, "alice")
	assert.Equal(t, PhaseFinished, ts.Snapshot().Phase)
	assert.Equal(t, "Blackjack!", sv.MainResult)
	assert.Equal(t, 2150, sv.Bankroll, "3:2 plus stake on 100")
}

func TestInsurancePhaseFlow(t *testing.T) {
	ts, _ := newTestService(t)
	ctx := context.Background()

	seatWithBet(t, ts, "alice", 100)
	stackShoe(ts,
		c(Ace, Spades), c("9", Diamonds), // dealer: ace up, no natural
		c("10", Spades), c("8", Hearts), // alice: 18
	)

	require.NoError(t, ts.StartGame(ctx, "alice"))
	assert.Equal(t, PhaseInsurance, ts.Snapshot().Phase)
	assert.Nil(t, ts.Snapshot().Turn, "no active turn during the insurance phase")

	require.NoError(t, ts.BuyInsurance(ctx, "alice"))
	sv := seatView(t, ts, "alice")
	assert.True(t, sv.InsuranceTaken)
	assert.Equal(t, 1850, sv.Bankroll, "half the main bet debited")

	assert.ErrorIs(t, ts.BuyInsurance(ctx, "alice"), ErrNotAllowed, "no re-purchase")
	assert.ErrorIs(t, ts.BuyInsurance(ctx, "ghost"), ErrNotSeated)

	require.NoError(t, ts.CloseInsurance(ctx, "alice"))
	snap := ts.Snapshot()
	assert.Equal(t, PhasePlaying, snap.Phase, "no dealer natural: play on")
	require.NotNil(t, snap.Turn)
	assert.Equal(t, "alice", snap.Turn.Username)

	require.NoError(t, ts.Stand(ctx, "alice"))
	sv = seatView(t, ts, "alice")
	assert.Equal(t, "Perso", sv.MainResult, "18 loses to dealer 20")
	assert.Equal(t, 1850, sv.Bankroll, "losing insurance pays nothing back")
}

func TestInsurancePaysOnDealerNatural(t *testing.T) {
	ts, _ := newTestService(t)
	ctx := context.Background()

	seatWithBet(t, ts, "alice", 100)
	stackShoe(ts,
		c(Ace, Spades), c(King, Diamonds), // dealer natural behind the ace
		c("9", Spades), c("9", Hearts), // alice: 18
	)

	require.NoError(t, ts.StartGame(ctx, "alice"))
	require.NoError(t, ts.BuyInsurance(ctx, "alice"))
	require.NoError(t, ts.CloseInsurance(ctx, "alice"))

	snap := ts.Snapshot()
	assert.Equal(t, PhaseFinished, snap.Phase, "dealer natural ends the round at reveal")

	// 2000 - 100 main - 50 insurance + 150 insurance payout = 2000.
	sv := seatView(t, ts, "alice")
	assert.Equal(t, 2000, sv.Bankroll)
	assert.Equal(t, "Banco BJ", sv.MainResult)
}

func TestInsuranceOutsidePhaseNotAllowed(t *testing.T) {
	ts, _ := newTestService(t)
	ctx := context.Background()

	seatWithBet(t, ts, "alice", 100)
	stackShoe(ts,
		c("9", Spades), c("7", Diamonds),
		c("10", Spades), c("8", Hearts),
	)
	require.NoError(t, ts.StartGame(ctx, "alice"))

	assert.ErrorIs(t, ts.BuyInsurance(ctx, "alice"), ErrNotAllowed)
	assert.ErrorIs(t, ts.CloseInsurance(ctx, "alice"), ErrNotAllowed)
}

func TestHitFlowAndStaleTurnRejection(t *testing.T) {
	ts, _ := newTestService(t)
	ctx := context.Background()

	seatWithBet(t, ts, "alice", 100)
	seatWithBet(t, ts, "bob", 100)
	stackShoe(ts,
		c("10", Diamonds), c("8", Clubs), // dealer: 18
		c("10", Spades), c("7", Hearts), // alice: 17
		c("9", Spades), c("5", Hearts), // bob: 14
		c("4", Spades), // alice's hit -> 21
		c(King, Spades), // bob's hit -> 24, bust
	)
	require.NoError(t, ts.StartGame(ctx, "alice"))

	// Bob acts against a stale turn pointer: rejected, nothing changes.
	before := ts.Snapshot()
	assert.ErrorIs(t, ts.Hit(ctx, "bob"), ErrNotYourTurn)
	assert.ErrorIs(t, ts.Stand(ctx, "bob"), ErrNotYourTurn)
	assert.ErrorIs(t, ts.Double(ctx, "bob"), ErrNotYourTurn)
	assert.ErrorIs(t, ts.Hit(ctx, "ghost"), ErrNotYourTurn)
	after := ts.Snapshot()
	assert.Equal(t, before.ShoeSize, after.ShoeSize, "no card left the shoe")
	assert.Equal(t, before.Turn, after.Turn)
	assert.Equal(t, before.Seats[1].Hands[0].Cards, after.Seats[1].Hands[0].Cards)

	// Alice hits to exactly 21: the hand stands automatically and the turn
	// moves to Bob without an explicit stand.
	require.NoError(t, ts.Hit(ctx, "alice"))
	sv := seatView(t, ts, "alice")
	assert.Equal(t, 21, sv.Hands[0].Score)
	assert.Equal(t, HandStand, sv.Hands[0].Status)
	require.NotNil(t, ts.Snapshot().Turn)
	assert.Equal(t, "bob", ts.Snapshot().Turn.Username)

	// Bob busts; no hands remain, so the dealer plays and settles.
	require.NoError(t, ts.Hit(ctx, "bob"))
	snap := ts.Snapshot()
	assert.Equal(t, PhaseFinished, snap.Phase)
	assert.Equal(t, "Sballato", seatView(t, ts, "bob").MainResult)
	assert.Equal(t, 1900, seatView(t, ts, "bob").Bankroll)
	assert.Equal(t, "Vinto", seatView(t, ts, "alice").MainResult, "21 beats dealer 18")
	assert.Equal(t, 2100, seatView(t, ts, "alice").Bankroll)
}

func TestDealerDrawsToSeventeen(t *testing.T) {
	ts, _ := newTestService(t)
	ctx := context.Background()

	seatWithBet(t, ts, "alice", 100)
	stackShoe(ts,
		c("10", Diamonds), c("6", Clubs), // dealer: 16, must draw
		c("10", Hearts), c("9", Clubs), // alice: 19
		c("5", Spades), // dealer's draw -> 21
	)
	require.NoError(t, ts.StartGame(ctx, "alice"))
	require.NoError(t, ts.Stand(ctx, "alice"))

	snap := ts.Snapshot()
	require.NotNil(t, snap.Dealer.Score)
	assert.Equal(t, 21, *snap.Dealer.Score)
	assert.Len(t, snap.Dealer.Cards, 3)
	assert.Equal(t, "Perso", seatView(t, ts, "alice").MainResult)
}

func TestDoubleFlow(t *testing.T) {
	ts, _ := newTestService(t)
	ctx := context.Background()

	seatWithBet(t, ts, "alice", 100)
	stackShoe(ts,
		c("10", Diamonds), c("8", Clubs), // dealer: 18
		c("5", Spades), c("6", Diamonds), // alice: 11
		c("10", Hearts), // the double card -> 21
	)
	require.NoError(t, ts.StartGame(ctx, "alice"))
	require.NoError(t, ts.Double(ctx, "alice"))

	sv := seatView(t, ts, "alice")
	require.Len(t, sv.Hands, 1)
	assert.Equal(t, 200, sv.Hands[0].Bet, "bet doubled")
	assert.True(t, sv.Hands[0].Doubled)
	assert.Equal(t, HandStand, sv.Hands[0].Status)
	assert.Len(t, sv.Hands[0].Cards, 3, "exactly one extra card")

	// Round settled: 21 over dealer 18 pays even money on the doubled bet.
	assert.Equal(t, PhaseFinished, ts.Snapshot().Phase)
	assert.Equal(t, 2200, seatView(t, ts, "alice").Bankroll)
}

func TestDoubleIneligible(t *testing.T) {
	ts, _ := newTestService(t)
	ctx := context.Background()

	seatWithBet(t, ts, "alice", 100)
	seatWithBet(t, ts, "bob", 100)
	stackShoe(ts,
		c("10", Diamonds), c("8", Clubs), // dealer: 18
		c("5", Spades), c("6", Diamonds), // alice: 11
		c("9", Spades), c("5", Hearts), // bob: 14
		c("2", Hearts), // alice's hit -> 13
	)
	require.NoError(t, ts.StartGame(ctx, "alice"))

	require.NoError(t, ts.Hit(ctx, "alice"))
	assert.ErrorIs(t, ts.Double(ctx, "alice"), ErrNotAllowed, "three-card hand cannot double")
}

func TestDoubleInsufficientFunds(t *testing.T) {
	ts, _ := newTestService(t)
	ctx := context.Background()

	seatWithBet(t, ts, "alice", InitialBankroll) // all-in main bet
	stackShoe(ts,
		c("10", Diamonds), c("8", Clubs),
		c("5", Spades), c("6", Diamonds),
	)
	require.NoError(t, ts.StartGame(ctx, "alice"))

	assert.ErrorIs(t, ts.Double(ctx, "alice"), ErrInsufficientFunds)
	sv := seatView(t, ts, "alice")
	assert.Equal(t, InitialBankroll, sv.Hands[0].Bet, "bet unchanged on failure")
	assert.Len(t, sv.Hands[0].Cards, 2)
}

func TestSplitFlowAndTurnOrdering(t *testing.T) {
	ts, _ := newTestService(t)
	ctx := context.Background()

	seatWithBet(t, ts, "alice", 100)
	seatWithBet(t, ts, "bob", 100)
	stackShoe(ts,
		c("9", Diamonds), c("8", Clubs), // dealer: 17
		c("8", Spades), c("8", Diamonds), // alice: the pair
		c("10", Spades), c("7", Hearts), // bob: 17
		c("3", Spades), c("2", Diamonds), // split completion cards
	)
	require.NoError(t, ts.StartGame(ctx, "alice"))
	require.NoError(t, ts.Split(ctx, "alice"))

	sv := seatView(t, ts, "alice")
	require.Len(t, sv.Hands, 2)
	assert.Equal(t, []Card{c("8", Spades), c("3", Spades)}, sv.Hands[0].Cards)
	assert.Equal(t, []Card{c("8", Diamonds), c("2", Diamonds)}, sv.Hands[1].Cards)
	assert.True(t, sv.Hands[0].FromSplit)
	assert.True(t, sv.Hands[1].FromSplit)
	assert.Equal(t, 100, sv.Hands[1].Bet, "split hand keeps the original bet")
	assert.Equal(t, 1800, sv.Bankroll, "second bet unit debited")

	// Turn stays on alice's first hand.
	turn := ts.Snapshot().Turn
	require.NotNil(t, turn)
	assert.Equal(t, "alice", turn.Username)
	assert.Equal(t, 0, turn.HandIndex)

	assert.ErrorIs(t, ts.Split(ctx, "alice"), ErrMaxSplitReached)

	// Both split hands play before bob: A-hand0, A-hand1, B-hand0.
	require.NoError(t, ts.Stand(ctx, "alice"))
	turn = ts.Snapshot().Turn
	require.NotNil(t, turn)
	assert.Equal(t, "alice", turn.Username)
	assert.Equal(t, 1, turn.HandIndex)

	assert.ErrorIs(t, ts.Split(ctx, "alice"), ErrNotAllowed, "only hand 0 may split")

	require.NoError(t, ts.Stand(ctx, "alice"))
	turn = ts.Snapshot().Turn
	require.NotNil(t, turn)
	assert.Equal(t, "bob", turn.Username)

	require.NoError(t, ts.Stand(ctx, "bob"))
	assert.Equal(t, PhaseFinished, ts.Snapshot().Phase)
}

func TestSplitNonPairNotAllowed(t *testing.T) {
	ts, _ := newTestService(t)
	ctx := context.Background()

	seatWithBet(t, ts, "alice", 100)
	stackShoe(ts,
		c("9", Diamonds), c("8", Clubs),
		c("10", Spades), c("7", Hearts),
	)
	require.NoError(t, ts.StartGame(ctx, "alice"))
	assert.ErrorIs(t, ts.Split(ctx, "alice"), ErrNotAllowed)
}

func TestSplitAcesStandImmediately(t *testing.T) {
	ts, _ := newTestService(t)
	ctx := context.Background()

	seatWithBet(t, ts, "alice", 100)
	stackShoe(ts,
		c("10", Spades), c("9", Diamonds), // dealer: 19
		c(Ace, Spades), c(Ace, Diamonds), // alice: the aces
		c(King, Spades), c("5", Diamonds), // split completion cards
	)
	require.NoError(t, ts.StartGame(ctx, "alice"))
	require.NoError(t, ts.Split(ctx, "alice"))

	// No further action on split aces; the only seat is done, so the round
	// settles straight from the split.
	snap := ts.Snapshot()
	assert.Equal(t, PhaseFinished, snap.Phase)

	sv := seatView(t, ts, "alice")
	require.Len(t, sv.Hands, 2)
	assert.Equal(t, HandStand, sv.Hands[0].Status)
	assert.Equal(t, HandStand, sv.Hands[1].Status)

	// [A,K] on a split hand is 21 but never a natural: even money, not 3:2.
	assert.Equal(t, "21 (Split) | Perso", sv.MainResult)
	assert.Equal(t, 2000, sv.Bankroll, "200 staked, 200 back on the split 21")
}

func TestSplitTwentyOnePaysEvenMoneyNotNatural(t *testing.T) {
	ts, _ := newTestService(t)
	ctx := context.Background()

	seatWithBet(t, ts, "alice", 100)
	stackShoe(ts,
		c("10", Spades), c("9", Diamonds), // dealer: 19
		c(Ace, Spades), c(Ace, Diamonds),
		c(King, Spades), c(Queen, Diamonds), // both hands reach 21
	)
	require.NoError(t, ts.StartGame(ctx, "alice"))
	require.NoError(t, ts.Split(ctx, "alice"))

	sv := seatView(t, ts, "alice")
	assert.Equal(t, "21 (Split) | 21 (Split)", sv.MainResult)
	// 2000 - 200 staked + 2*200 even-money returns.
	assert.Equal(t, 2200, sv.Bankroll)
}

func TestPushReturnsStake(t *testing.T) {
	ts, _ := newTestService(t)
	ctx := context.Background()

	seatWithBet(t, ts, "alice", 100)
	stackShoe(ts,
		c("10", Diamonds), c("8", Clubs), // dealer: 18
		c("10", Spades), c("8", Hearts), // alice: 18
	)
	require.NoError(t, ts.StartGame(ctx, "alice"))
	require.NoError(t, ts.Stand(ctx, "alice"))

	sv := seatView(t, ts, "alice")
	assert.Equal(t, "Push", sv.MainResult)
	assert.Equal(t, 2000, sv.Bankroll)
}

func TestTableBusyGuards(t *testing.T) {
	ts, _ := newTestService(t)
	ctx := context.Background()

	seatWithBet(t, ts, "alice", 100)
	stackShoe(ts,
		c("9", Spades), c("7", Diamonds),
		c("10", Spades), c("8", Hearts),
	)
	require.NoError(t, ts.StartGame(ctx, "alice"))
	require.Equal(t, PhasePlaying, ts.Snapshot().Phase)

	_, err := ts.Seat(ctx, "carol")
	assert.ErrorIs(t, err, ErrTableBusy)
	assert.ErrorIs(t, ts.Unseat(ctx, "alice"), ErrTableBusy)
	assert.ErrorIs(t, ts.SetBets(ctx, "alice", 50, 0, 0), ErrTableBusy)
	assert.ErrorIs(t, ts.StartGame(ctx, "alice"), ErrTableBusy)
}

func TestResetRound(t *testing.T) {
	ts, _ := newTestService(t)
	ctx := context.Background()

	seatWithBet(t, ts, "alice", 100)
	assert.ErrorIs(t, ts.ResetRound(ctx, "alice"), ErrNotAllowed, "nothing to reset while waiting")

	stackShoe(ts,
		c("10", Diamonds), c("8", Clubs),
		c("10", Spades), c("7", Hearts),
	)
	require.NoError(t, ts.StartGame(ctx, "alice"))
	require.NoError(t, ts.Stand(ctx, "alice"))
	require.Equal(t, PhaseFinished, ts.Snapshot().Phase)

	assert.ErrorIs(t, ts.ResetRound(ctx, "ghost"), ErrNotSeated)
	require.NoError(t, ts.ResetRound(ctx, "alice"))

	snap := ts.Snapshot()
	assert.Equal(t, PhaseWaiting, snap.Phase)
	assert.Empty(t, snap.Dealer.Cards)

	sv := seatView(t, ts, "alice")
	assert.Equal(t, 1900, sv.Bankroll, "bankroll survives the reset")
	assert.Equal(t, 100, sv.BetMain, "saved bet survives the reset")
	assert.Empty(t, sv.MainResult)
	require.Len(t, sv.Hands, 1)
	assert.Equal(t, HandReady, sv.Hands[0].Status)
	assert.Empty(t, sv.Hands[0].Cards)
}

func TestStatePersistsAcrossRestart(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	ts, err := NewTableService(ctx, repo, testLogger())
	require.NoError(t, err)
	_, err = ts.Seat(ctx, "alice")
	require.NoError(t, err)
	require.NoError(t, ts.SetBets(ctx, "alice", 100, 5, 0))

	// A new service over the same repository sees the seated player.
	restarted, err := NewTableService(ctx, repo, testLogger())
	require.NoError(t, err)
	snap := restarted.Snapshot()
	require.Len(t, snap.Seats, 1)
	assert.Equal(t, "alice", snap.Seats[0].Username)
	assert.Equal(t, 100, snap.Seats[0].BetMain)
	assert.Equal(t, 5, snap.Seats[0].BetPair)
}

func TestOnRoundEndSummary(t *testing.T) {
	ts, _ := newTestService(t)
	ctx := context.Background()

	done := make(chan RoundSummary, 1)
	ts.OnRoundEnd = func(s RoundSummary) { done <- s }

	seatWithBet(t, ts, "alice", 100)
	stackShoe(ts,
		c("10", Diamonds), c("8", Clubs),
		c("10", Spades), c("7", Hearts),
	)
	require.NoError(t, ts.StartGame(ctx, "alice"))
	require.NoError(t, ts.Stand(ctx, "alice"))

	select {
	case summary := <-done:
		assert.Equal(t, 18, summary.DealerScore)
		assert.False(t, summary.DealerBlackjack)
		require.Len(t, summary.Players, 1)
		assert.Equal(t, "alice", summary.Players[0].Username)
		assert.Equal(t, "Perso", summary.Players[0].MainResult)
	case <-time.After(time.Second):
		t.Fatal("round summary never delivered")
	}
}

func TestActionPublisherReceivesAcceptedActions(t *testing.T) {
	ts, _ := newTestService(t)
	ctx := context.Background()

	var actions []string
	ts.PublishAction = func(ctx context.Context, rec ActionRecord) error {
		actions = append(actions, rec.Action)
		return nil
	}

	_, err := ts.Seat(ctx, "alice")
	require.NoError(t, err)
	require.NoError(t, ts.SetBets(ctx, "alice", 100, 0, 0))
	assert.ErrorIs(t, ts.Hit(ctx, "alice"), ErrNotYourTurn)

	assert.Equal(t, []string{"seat", "bets"}, actions, "rejected actions are not published")
}
