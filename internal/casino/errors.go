// internal/casino/errors.go
package casino

import (
	"errors"
	"fmt"
	"strings"
)

// Table action errors. Every failed action leaves the table unchanged and is
// reported back to the caller for display; none are fatal to the table.
var (
	// ErrTableBusy rejects seat/leave/bet attempts while a round is running.
	ErrTableBusy = errors.New("game in progress")

	// ErrNotSeated rejects actions from users without a seat at the table.
	ErrNotSeated = errors.New("not seated at the table")

	// ErrNoPlayers rejects a round start on an empty table.
	ErrNoPlayers = errors.New("no players at the table")

	// ErrInvalidBets rejects a round start with zero or over-bankroll wagers.
	// Use via InvalidBetsError, which names the offending players.
	ErrInvalidBets = errors.New("invalid bets")

	// ErrNotYourTurn rejects a turn action from a seat or hand the turn
	// pointer is not on, including actions issued against a stale snapshot.
	ErrNotYourTurn = errors.New("not your turn")

	// ErrNotAllowed rejects structurally ineligible actions: double on a
	// drawn-out or already-doubled hand, split on the wrong hand, insurance
	// re-purchase or insurance outside the insurance phase.
	ErrNotAllowed = errors.New("action not allowed")

	// ErrInsufficientFunds rejects double/split/insurance the bankroll
	// cannot cover.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrMaxSplitReached rejects a second split on an already-split seat.
	ErrMaxSplitReached = errors.New("hand already split")
)

// InvalidBetsError reports which seated players have a missing main bet or a
// total wager exceeding their bankroll.
type InvalidBetsError struct {
	Players []string
}

func (e *InvalidBetsError) Error() string {
	return fmt.Sprintf("invalid bets for: %s", strings.Join(e.Players, ", "))
}

func (e *InvalidBetsError) Unwrap() error { return ErrInvalidBets }
