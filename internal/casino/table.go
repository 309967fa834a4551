// internal/casino/table.go
package casino

// Phase is the table lifecycle phase.
type Phase string

const (
	PhaseWaiting   Phase = "WAITING"
	PhaseInsurance Phase = "INSURANCE"
	PhasePlaying   Phase = "PLAYING"
	PhaseFinished  Phase = "FINISHED"
)

// HandStatus is the lifecycle of a single hand.
type HandStatus string

const (
	// HandReady marks the empty placeholder hand a seat holds between rounds.
	HandReady   HandStatus = "READY"
	HandPlaying HandStatus = "PLAYING"
	HandStand   HandStatus = "STAND"
	HandBust    HandStatus = "BUST"
)

// Hand is one playable hand of a seat. A seat owns one hand normally and two
// after a split; split hands cannot be re-split.
type Hand struct {
	Cards     []Card     `json:"cards"`
	Score     int        `json:"score"`
	Status    HandStatus `json:"status"`
	Bet       int        `json:"bet"`
	Doubled   bool       `json:"doubled"`
	FromSplit bool       `json:"from_split"`
}

// Seat is one seated player. Seats persist across round resets; hands and
// per-round fields are rebuilt each round.
type Seat struct {
	Username       string  `json:"username"`
	Status         string  `json:"status"`
	Bankroll       int     `json:"bankroll"`
	BetMain        int     `json:"bet_main"`
	BetPair        int     `json:"bet_pair"`
	Bet21p3        int     `json:"bet_21p3"`
	InsuranceBet   int     `json:"insurance_bet"`
	InsuranceTaken bool    `json:"insurance_taken"`
	SideResult     string  `json:"side_result"`
	MainResult     string  `json:"main_result"`
	Hands          []*Hand `json:"hands"`
}

// TableState is the full persisted state of the single global table. The
// dealer's original two-card hand is kept separately from the drawn-out hand
// because natural-blackjack checks must see it unmodified after the dealer
// draws, and the hole card stays hidden until reveal.
type TableState struct {
	Phase         Phase   `json:"phase"`
	Dealer        []Card  `json:"dealer_hand"`
	DealerInitial []Card  `json:"dealer_initial_hand"`
	Shoe          []Card  `json:"shoe"`
	SeatIndex     int     `json:"current_seat_index"`
	HandIndex     int     `json:"current_hand_index"`
	Seats         []*Seat `json:"seats"`
}

func newTableState() *TableState {
	return &TableState{Phase: PhaseWaiting}
}

// seatOf returns the seat for a username, or nil.
func (s *TableState) seatOf(username string) *Seat {
	for _, seat := range s.Seats {
		if seat.Username == username {
			return seat
		}
	}
	return nil
}

// currentHand returns the seat and hand under the turn pointer, or nils if
// the pointer is out of range.
func (s *TableState) currentHand() (*Seat, *Hand) {
	if s.SeatIndex < 0 || s.SeatIndex >= len(s.Seats) {
		return nil, nil
	}
	seat := s.Seats[s.SeatIndex]
	if s.HandIndex < 0 || s.HandIndex >= len(seat.Hands) {
		return seat, nil
	}
	return seat, seat.Hands[s.HandIndex]
}

// advanceTurn moves the turn pointer to the next hand anywhere on the table
// whose status is PLAYING and reports whether one was found. The scan runs
// forward from the current seat (current hand index on that seat, hand 0 on
// later seats), then wraps from seat 0 back to the current seat, excluding
// hand indices at or past the current one on the current seat so the scan
// terminates. The wrap pass is what lets a split hand injected behind the
// pointer, or an earlier seat's untouched hand, still get its turn.
// When no PLAYING hand exists the pointer is left unchanged and the caller
// runs dealer play and settlement.
func (s *TableState) advanceTurn() bool {
	if len(s.Seats) == 0 {
		return false
	}

	for i := s.SeatIndex; i < len(s.Seats); i++ {
		start := 0
		if i == s.SeatIndex {
			start = s.HandIndex
		}
		for h := start; h < len(s.Seats[i].Hands); h++ {
			if s.Seats[i].Hands[h].Status == HandPlaying {
				s.SeatIndex, s.HandIndex = i, h
				return true
			}
		}
	}

	for i := 0; i <= s.SeatIndex && i < len(s.Seats); i++ {
		limit := len(s.Seats[i].Hands)
		if i == s.SeatIndex && s.HandIndex < limit {
			limit = s.HandIndex
		}
		for h := 0; h < limit; h++ {
			if s.Seats[i].Hands[h].Status == HandPlaying {
				s.SeatIndex, s.HandIndex = i, h
				return true
			}
		}
	}

	return false
}

// resetForNewRound clears the round-scoped fields while keeping seats,
// bankrolls, and saved bet amounts.
func (s *TableState) resetForNewRound() {
	s.Phase = PhaseWaiting
	s.Dealer = nil
	s.DealerInitial = nil
	s.SeatIndex = 0
	s.HandIndex = 0
	for _, seat := range s.Seats {
		seat.Status = "READY"
		seat.InsuranceBet = 0
		seat.InsuranceTaken = false
		seat.SideResult = ""
		seat.MainResult = ""
		seat.Hands = []*Hand{{Cards: []Card{}, Status: HandReady}}
	}
}

// clearTable wipes all game state; used when the last seat leaves.
func (s *TableState) clearTable() {
	s.Phase = PhaseWaiting
	s.Dealer = nil
	s.DealerInitial = nil
	s.Shoe = nil
	s.SeatIndex = 0
	s.HandIndex = 0
}
