// internal/casino/snapshot.go
package casino

// TurnInfo identifies the seat and hand the turn pointer is on.
type TurnInfo struct {
	Username  string `json:"username"`
	HandIndex int    `json:"hand_index"`
}

// DealerView is the dealer hand as a player is allowed to see it. While the
// round is live only the upcard is included and HoleHidden is set; the score
// is withheld until the round is finished.
type DealerView struct {
	Cards      []Card `json:"cards"`
	HoleHidden bool   `json:"hole_hidden"`
	Score      *int   `json:"score,omitempty"`
}

// HandView is a read-only copy of one hand.
type HandView struct {
	Cards     []Card     `json:"cards"`
	Score     int        `json:"score"`
	Status    HandStatus `json:"status"`
	Bet       int        `json:"bet"`
	Doubled   bool       `json:"doubled"`
	FromSplit bool       `json:"from_split"`
}

// SeatView is a read-only copy of one seat.
type SeatView struct {
	Username       string     `json:"username"`
	Bankroll       int        `json:"bankroll"`
	BetMain        int        `json:"bet_main"`
	BetPair        int        `json:"bet_pair"`
	Bet21p3        int        `json:"bet_21p3"`
	InsuranceTaken bool       `json:"insurance_taken"`
	SideResult     string     `json:"side_result,omitempty"`
	MainResult     string     `json:"main_result,omitempty"`
	Hands          []HandView `json:"hands"`
}

// TableSnapshot is the full pull-based view of the table. Any transport
// (HTTP polling, WebSocket, SSE) can serve it; the core never pushes.
type TableSnapshot struct {
	Phase    Phase      `json:"phase"`
	Dealer   DealerView `json:"dealer"`
	Seats    []SeatView `json:"seats"`
	Turn     *TurnInfo  `json:"turn,omitempty"`
	ShoeSize int        `json:"shoe_size"`
}

// Snapshot returns a deep copy of the visible table state. The dealer's hole
// card and running score stay hidden while the phase is PLAYING or INSURANCE.
func (ts *TableService) Snapshot() TableSnapshot {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	s := ts.state
	snap := TableSnapshot{
		Phase:    s.Phase,
		ShoeSize: len(s.Shoe),
	}

	hideHole := s.Phase == PhasePlaying || s.Phase == PhaseInsurance
	if len(s.Dealer) > 0 {
		if hideHole {
			snap.Dealer = DealerView{
				Cards:      []Card{s.Dealer[0]},
				HoleHidden: true,
			}
		} else {
			score := handScore(s.Dealer)
			snap.Dealer = DealerView{
				Cards: append([]Card(nil), s.Dealer...),
				Score: &score,
			}
		}
	}

	if s.Phase == PhasePlaying {
		if seat, hand := s.currentHand(); seat != nil && hand != nil {
			snap.Turn = &TurnInfo{Username: seat.Username, HandIndex: s.HandIndex}
		}
	}

	for _, seat := range s.Seats {
		sv := SeatView{
			Username:       seat.Username,
			Bankroll:       seat.Bankroll,
			BetMain:        seat.BetMain,
			BetPair:        seat.BetPair,
			Bet21p3:        seat.Bet21p3,
			InsuranceTaken: seat.InsuranceTaken,
			SideResult:     seat.SideResult,
			MainResult:     seat.MainResult,
		}
		for _, hand := range seat.Hands {
			sv.Hands = append(sv.Hands, HandView{
				Cards:     append([]Card(nil), hand.Cards...),
				Score:     hand.Score,
				Status:    hand.Status,
				Bet:       hand.Bet,
				Doubled:   hand.Doubled,
				FromSplit: hand.FromSplit,
			})
		}
		snap.Seats = append(snap.Seats, sv)
	}

	return snap
}
