// internal/casino/service.go
//
// TableService serializes every action against the single shared blackjack
// table. Clients synchronize by polling Snapshot; the turn pointer is the
// sole arbiter of whose action is accepted, so an action issued against a
// stale snapshot fails with ErrNotYourTurn instead of corrupting state.
package casino

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// InitialBankroll is credited to every newly seated player.
const InitialBankroll = 2000

// dealerStandScore is the total the dealer draws to, soft or hard.
const dealerStandScore = 17

// ActionRecord describes one accepted table action for the audit queue.
type ActionRecord struct {
	Username  string         `json:"username"`
	Action    string         `json:"action"`
	Detail    map[string]any `json:"detail,omitempty"`
	Timestamp int64          `json:"timestamp"`
}

// RoundResult summarizes one seat's finished round for the stats indexer.
type RoundResult struct {
	Username   string `json:"username"`
	Bankroll   int    `json:"bankroll"`
	MainResult string `json:"main_result"`
	SideResult string `json:"side_result"`
}

// RoundSummary is emitted once per settled round.
type RoundSummary struct {
	FinishedAt      time.Time     `json:"finished_at"`
	DealerScore     int           `json:"dealer_score"`
	DealerBlackjack bool          `json:"dealer_blackjack"`
	Players         []RoundResult `json:"players"`
}

// TableService owns the single global table. All methods take the internal
// lock, perform one read-modify-write, persist, and release on every exit
// path; no caller ever sees the mutable state directly.
type TableService struct {
	mu    sync.Mutex
	state *TableState
	repo  Repository
	log   *logrus.Logger

	// PublishAction, when set, receives a record for every accepted action.
	PublishAction func(ctx context.Context, rec ActionRecord) error

	// OnRoundEnd, when set, is invoked (on its own goroutine) after each
	// settled round.
	OnRoundEnd func(summary RoundSummary)

	// buildShoe overrides shoe construction; tests use it to stack deals.
	buildShoe func() []Card
}

// NewTableService loads the persisted table state, starting from an empty
// WAITING table when none exists.
func NewTableService(ctx context.Context, repo Repository, logger *logrus.Logger) (*TableService, error) {
	state, err := repo.Load(ctx)
	if err != nil {
		return nil, err
	}
	if state == nil {
		state = newTableState()
	}
	return &TableService{state: state, repo: repo, log: logger}, nil
}

// persist writes the current state through to the repository. Persistence is
// best-effort: a failed write is logged and the in-memory state stays
// authoritative for the life of the process.
func (ts *TableService) persist(ctx context.Context) {
	if err := ts.repo.Save(ctx, ts.state); err != nil {
		ts.log.WithError(err).Error("failed to persist table state")
	}
}

func (ts *TableService) publish(ctx context.Context, username, action string, detail map[string]any) {
	if ts.PublishAction == nil {
		return
	}
	rec := ActionRecord{
		Username:  username,
		Action:    action,
		Detail:    detail,
		Timestamp: time.Now().UnixMilli(),
	}
	if err := ts.PublishAction(ctx, rec); err != nil {
		ts.log.WithError(err).Warn("failed to publish table action")
	}
}

// Seat adds a player to the table with a fresh bankroll and an empty
// placeholder hand. Seating an already-seated user reports already=true
// without touching their seat or bankroll.
func (ts *TableService) Seat(ctx context.Context, username string) (already bool, err error) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	if ts.state.Phase == PhasePlaying || ts.state.Phase == PhaseInsurance {
		return false, ErrTableBusy
	}
	if ts.state.seatOf(username) != nil {
		return true, nil
	}

	ts.state.Seats = append(ts.state.Seats, &Seat{
		Username: username,
		Status:   "READY",
		Bankroll: InitialBankroll,
		Hands:    []*Hand{{Cards: []Card{}, Status: HandReady}},
	})
	ts.persist(ctx)
	ts.publish(ctx, username, "seat", nil)
	return false, nil
}

// Unseat removes a player's seat and hands. When the last seat leaves, the
// table resets to an empty WAITING state.
func (ts *TableService) Unseat(ctx context.Context, username string) error {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	if ts.state.Phase == PhasePlaying || ts.state.Phase == PhaseInsurance {
		return ErrTableBusy
	}
	idx := -1
	for i, seat := range ts.state.Seats {
		if seat.Username == username {
			idx = i
			break
		}
	}
	if idx == -1 {
		return ErrNotSeated
	}

	ts.state.Seats = append(ts.state.Seats[:idx], ts.state.Seats[idx+1:]...)
	if len(ts.state.Seats) == 0 {
		ts.state.clearTable()
	}
	ts.persist(ctx)
	ts.publish(ctx, username, "leave", nil)
	return nil
}

// SetBets stores a player's main and side bet amounts. Amounts are taken as
// given; validation against the bankroll happens at round start.
func (ts *TableService) SetBets(ctx context.Context, username string, main, pair, twentyOnePlus3 int) error {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	if ts.state.Phase != PhaseWaiting {
		return ErrTableBusy
	}
	seat := ts.state.seatOf(username)
	if seat == nil {
		return ErrNotSeated
	}
	if main < 0 || pair < 0 || twentyOnePlus3 < 0 {
		return ErrNotAllowed
	}

	seat.BetMain = main
	seat.BetPair = pair
	seat.Bet21p3 = twentyOnePlus3
	ts.persist(ctx)
	ts.publish(ctx, username, "bets", map[string]any{"main": main, "pair": pair, "21p3": twentyOnePlus3})
	return nil
}

// StartGame validates every seated player's bets, builds a fresh shoe, deals
// the dealer and each seat two cards, debits wagers, settles side bets
// immediately, and decides the post-deal phase. A ten-value upcard over a
// dealer natural settles the round on the spot; an Ace upcard opens the
// insurance phase instead.
func (ts *TableService) StartGame(ctx context.Context, username string) error {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	s := ts.state
	if s.Phase != PhaseWaiting {
		return ErrTableBusy
	}
	if s.seatOf(username) == nil {
		return ErrNotSeated
	}
	if len(s.Seats) == 0 {
		return ErrNoPlayers
	}

	var bad []string
	for _, seat := range s.Seats {
		if seat.BetMain <= 0 || seat.BetMain+seat.BetPair+seat.Bet21p3 > seat.Bankroll {
			bad = append(bad, seat.Username)
		}
	}
	if len(bad) > 0 {
		return &InvalidBetsError{Players: bad}
	}

	if ts.buildShoe != nil {
		s.Shoe = ts.buildShoe()
	} else {
		s.Shoe = newShoe()
	}
	s.Dealer = []Card{drawCard(&s.Shoe), drawCard(&s.Shoe)}
	s.DealerInitial = append([]Card(nil), s.Dealer...)
	up := s.Dealer[0]

	for _, seat := range s.Seats {
		cards := []Card{drawCard(&s.Shoe), drawCard(&s.Shoe)}
		score := handScore(cards)

		// The whole wager leaves the bankroll before any side-bet credit.
		seat.Bankroll -= seat.BetMain + seat.BetPair + seat.Bet21p3

		var sideMsgs []string
		if seat.BetPair > 0 {
			if mult, label := settlePair(cards); mult > 0 {
				seat.Bankroll += seat.BetPair * (mult + 1)
				sideMsgs = append(sideMsgs, label)
			}
		}
		if seat.Bet21p3 > 0 {
			if mult, label := settle21Plus3(cards, &up); mult > 0 {
				seat.Bankroll += seat.Bet21p3 * (mult + 1)
				sideMsgs = append(sideMsgs, label)
			}
		}

		status := HandPlaying
		if score == 21 {
			// Natural 21 takes no further action; it is settled with
			// everyone else at round end.
			status = HandStand
		}

		seat.Status = "PLAYING"
		seat.SideResult = strings.Join(sideMsgs, " | ")
		seat.MainResult = ""
		seat.InsuranceBet = 0
		seat.InsuranceTaken = false
		seat.Hands = []*Hand{{
			Cards:  cards,
			Score:  score,
			Status: status,
			Bet:    seat.BetMain,
		}}
	}

	s.SeatIndex = 0
	s.HandIndex = 0

	dealerBlackjack := isNaturalBlackjack(s.DealerInitial)
	switch {
	case up.Rank == Ace:
		// The Ace-up peek is deferred to the explicit insurance close.
		s.Phase = PhaseInsurance
	case isTenValue(up) && dealerBlackjack:
		// Ten-up peek happens with the deal: settle without player turns.
		s.Phase = PhasePlaying
		ts.endRoundLocked()
	default:
		s.Phase = PhasePlaying
		if !s.advanceTurn() {
			// Every hand dealt a natural; straight to settlement.
			ts.endRoundLocked()
		}
	}

	ts.persist(ctx)
	ts.publish(ctx, username, "start", nil)
	return nil
}

// BuyInsurance places an insurance wager of half the player's main bet. It is
// allowed once per round, only during the insurance phase, and only while the
// player's single hand still has its original two cards.
func (ts *TableService) BuyInsurance(ctx context.Context, username string) error {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	if ts.state.Phase != PhaseInsurance {
		return ErrNotAllowed
	}
	seat := ts.state.seatOf(username)
	if seat == nil {
		return ErrNotSeated
	}
	if len(seat.Hands) != 1 || len(seat.Hands[0].Cards) != 2 || seat.InsuranceTaken {
		return ErrNotAllowed
	}

	amount := seat.Hands[0].Bet / 2
	if seat.Bankroll < amount {
		return ErrInsufficientFunds
	}

	seat.Bankroll -= amount
	seat.InsuranceBet = amount
	seat.InsuranceTaken = true
	ts.persist(ctx)
	ts.publish(ctx, username, "insurance", map[string]any{"amount": amount})
	return nil
}

// CloseInsurance ends the insurance phase: the dealer peeks at the hole card.
// A dealer natural settles the round immediately; otherwise play begins at
// the first actionable hand. Any seated player may close the phase.
func (ts *TableService) CloseInsurance(ctx context.Context, username string) error {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	if ts.state.seatOf(username) == nil {
		return ErrNotSeated
	}
	if ts.state.Phase != PhaseInsurance {
		return ErrNotAllowed
	}

	if isNaturalBlackjack(ts.state.DealerInitial) {
		ts.endRoundLocked()
	} else {
		ts.state.Phase = PhasePlaying
		if !ts.state.advanceTurn() {
			ts.endRoundLocked()
		}
	}
	ts.persist(ctx)
	ts.publish(ctx, username, "close_insurance", nil)
	return nil
}

// turnHand validates that username holds the hand under the turn pointer and
// returns it. Must be called with the lock held.
func (ts *TableService) turnHand(username string) (*Seat, *Hand, error) {
	if ts.state.Phase != PhasePlaying {
		return nil, nil, ErrNotYourTurn
	}
	seat, hand := ts.state.currentHand()
	if seat == nil || hand == nil || seat.Username != username {
		return nil, nil, ErrNotYourTurn
	}
	return seat, hand, nil
}

// Hit draws one card into the active hand. The hand busts over 21 and stands
// on exactly 21; the turn advances only when the hand leaves PLAYING.
func (ts *TableService) Hit(ctx context.Context, username string) error {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	_, hand, err := ts.turnHand(username)
	if err != nil {
		return err
	}

	hand.Cards = append(hand.Cards, drawCard(&ts.state.Shoe))
	hand.Score = handScore(hand.Cards)
	switch {
	case hand.Score > 21:
		hand.Status = HandBust
	case hand.Score == 21:
		hand.Status = HandStand
	}

	if hand.Status != HandPlaying && !ts.state.advanceTurn() {
		ts.endRoundLocked()
	}
	ts.persist(ctx)
	ts.publish(ctx, username, "hit", map[string]any{"score": hand.Score})
	return nil
}

// Stand marks the active hand as standing and always advances the turn.
func (ts *TableService) Stand(ctx context.Context, username string) error {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	_, hand, err := ts.turnHand(username)
	if err != nil {
		return err
	}

	hand.Status = HandStand
	if !ts.state.advanceTurn() {
		ts.endRoundLocked()
	}
	ts.persist(ctx)
	ts.publish(ctx, username, "stand", nil)
	return nil
}

// Double doubles the active hand's wager for exactly one more card, then
// stands (or busts). Only a two-card, not-yet-doubled hand qualifies, and the
// bankroll must cover the second bet unit.
func (ts *TableService) Double(ctx context.Context, username string) error {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	seat, hand, err := ts.turnHand(username)
	if err != nil {
		return err
	}
	if len(hand.Cards) != 2 || hand.Doubled || hand.Status != HandPlaying {
		return ErrNotAllowed
	}
	if seat.Bankroll < hand.Bet {
		return ErrInsufficientFunds
	}

	seat.Bankroll -= hand.Bet
	hand.Cards = append(hand.Cards, drawCard(&ts.state.Shoe))
	hand.Score = handScore(hand.Cards)
	hand.Bet *= 2
	hand.Doubled = true
	if hand.Score > 21 {
		hand.Status = HandBust
	} else {
		hand.Status = HandStand
	}

	if !ts.state.advanceTurn() {
		ts.endRoundLocked()
	}
	ts.persist(ctx)
	ts.publish(ctx, username, "double", map[string]any{"score": hand.Score})
	return nil
}

// Split divides a two-card pair into two hands, dealing one fresh card to
// each half; both hands keep the original bet and are marked split-derived.
// Split aces stand immediately and the turn moves on; otherwise play resumes
// on the first of the two hands. A seat may split once per round.
func (ts *TableService) Split(ctx context.Context, username string) error {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	seat, hand, err := ts.turnHand(username)
	if err != nil {
		return err
	}
	if ts.state.HandIndex != 0 {
		return ErrNotAllowed
	}
	if len(seat.Hands) > 1 {
		return ErrMaxSplitReached
	}
	if hand.Status != HandPlaying || !isSplittablePair(hand.Cards) {
		return ErrNotAllowed
	}
	if seat.Bankroll < hand.Bet {
		return ErrInsufficientFunds
	}

	c1, c2 := hand.Cards[0], hand.Cards[1]
	splitAces := c1.Rank == Ace && c2.Rank == Ace
	status := HandPlaying
	if splitAces {
		// No further hits on split aces.
		status = HandStand
	}

	seat.Bankroll -= hand.Bet

	first := []Card{c1, drawCard(&ts.state.Shoe)}
	second := []Card{c2, drawCard(&ts.state.Shoe)}

	hand.Cards = first
	hand.Score = handScore(first)
	hand.Status = status
	hand.FromSplit = true
	seat.Hands = append(seat.Hands, &Hand{
		Cards:     second,
		Score:     handScore(second),
		Status:    status,
		Bet:       hand.Bet,
		FromSplit: true,
	})

	if splitAces && !ts.state.advanceTurn() {
		ts.endRoundLocked()
	}
	ts.persist(ctx)
	ts.publish(ctx, username, "split", map[string]any{"aces": splitAces})
	return nil
}

// ResetRound returns a FINISHED table to WAITING: dealer hands and turn
// pointer cleared, every seat back to a single empty hand. Seats, bankrolls,
// and saved bet amounts carry over.
func (ts *TableService) ResetRound(ctx context.Context, username string) error {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	if ts.state.seatOf(username) == nil {
		return ErrNotSeated
	}
	if ts.state.Phase != PhaseFinished {
		return ErrNotAllowed
	}

	ts.state.resetForNewRound()
	ts.persist(ctx)
	ts.publish(ctx, username, "reset", nil)
	return nil
}

// endRoundLocked plays out the dealer and settles every hand. The dealer
// draws to 17 or better regardless of softness; naturals are checked against
// the dealer's original two cards, not the drawn-out hand. Must be called
// with the lock held.
func (ts *TableService) endRoundLocked() {
	s := ts.state

	dealerScore := handScore(s.Dealer)
	for dealerScore < dealerStandScore {
		s.Dealer = append(s.Dealer, drawCard(&s.Shoe))
		dealerScore = handScore(s.Dealer)
	}

	dealerBlackjack := isNaturalBlackjack(s.DealerInitial)

	for _, seat := range s.Seats {
		if seat.InsuranceBet > 0 && dealerBlackjack {
			// 2:1 payout plus the stake back.
			seat.Bankroll += seat.InsuranceBet * 3
		}

		var outcomes []string
		for _, hand := range seat.Hands {
			playerBlackjack := isNaturalBlackjack(hand.Cards)
			outcome := "Perso"

			switch {
			case hand.Status == HandBust:
				outcome = "Sballato"
			case dealerBlackjack:
				if playerBlackjack && !hand.FromSplit {
					outcome = "Push"
					seat.Bankroll += hand.Bet
				} else {
					outcome = "Banco BJ"
				}
			case playerBlackjack && !hand.FromSplit:
				outcome = "Blackjack!"
				seat.Bankroll += hand.Bet * 5 / 2
			case playerBlackjack && hand.FromSplit:
				// A split 21 is never natural: even money only.
				outcome = "21 (Split)"
				seat.Bankroll += hand.Bet * 2
			case dealerScore > 21 || hand.Score > dealerScore:
				outcome = "Vinto"
				seat.Bankroll += hand.Bet * 2
			case hand.Score == dealerScore:
				outcome = "Push"
				seat.Bankroll += hand.Bet
			}

			outcomes = append(outcomes, outcome)
		}
		seat.MainResult = strings.Join(outcomes, " | ")
	}

	s.Phase = PhaseFinished

	if ts.OnRoundEnd != nil {
		summary := RoundSummary{
			FinishedAt:      time.Now(),
			DealerScore:     dealerScore,
			DealerBlackjack: dealerBlackjack,
		}
		for _, seat := range s.Seats {
			summary.Players = append(summary.Players, RoundResult{
				Username:   seat.Username,
				Bankroll:   seat.Bankroll,
				MainResult: seat.MainResult,
				SideResult: seat.SideResult,
			})
		}
		go ts.OnRoundEnd(summary)
	}
}
