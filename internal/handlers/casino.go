package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gianlucanapo/terrazzo-manager/internal/casino"
)

// casinoError translates the table's error taxonomy onto HTTP statuses:
// 409 for phase and turn violations, 400 for bad bets, 402 for a short
// bankroll.
func casinoError(w http.ResponseWriter, err error) {
	var ibe *casino.InvalidBetsError
	switch {
	case errors.As(err, &ibe):
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":   "invalid bets",
			"players": ibe.Players,
		})
	case errors.Is(err, casino.ErrInsufficientFunds):
		http.Error(w, err.Error(), http.StatusPaymentRequired)
	case errors.Is(err, casino.ErrTableBusy),
		errors.Is(err, casino.ErrNotYourTurn),
		errors.Is(err, casino.ErrNotAllowed),
		errors.Is(err, casino.ErrMaxSplitReached),
		errors.Is(err, casino.ErrNotSeated),
		errors.Is(err, casino.ErrNoPlayers):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		http.Error(w, "casino error", http.StatusInternalServerError)
	}
}

// CasinoHandlers bundles the HTTP surface over a TableService.
type CasinoHandlers struct {
	Table *casino.TableService
}

func NewCasinoHandlers(table *casino.TableService) *CasinoHandlers {
	return &CasinoHandlers{Table: table}
}

// action wraps the common shape of the POST endpoints: authenticate, run the
// table operation, return either the mapped error or the fresh snapshot.
func (ch *CasinoHandlers) action(fn func(r *http.Request, username string) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		username, ok := requireUser(w, r)
		if !ok {
			return
		}
		if err := fn(r, username); err != nil {
			casinoError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, ch.Table.Snapshot())
	}
}

func (ch *CasinoHandlers) Seat() http.HandlerFunc {
	return ch.action(func(r *http.Request, username string) error {
		_, err := ch.Table.Seat(r.Context(), username)
		return err
	})
}

func (ch *CasinoHandlers) Leave() http.HandlerFunc {
	return ch.action(func(r *http.Request, username string) error {
		return ch.Table.Unseat(r.Context(), username)
	})
}

func (ch *CasinoHandlers) Bets() http.HandlerFunc {
	return ch.action(func(r *http.Request, username string) error {
		var req struct {
			Main           int `json:"main"`
			Pair           int `json:"pair"`
			TwentyOnePlus3 int `json:"twenty_one_plus_3"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return casino.ErrNotAllowed
		}
		return ch.Table.SetBets(r.Context(), username, req.Main, req.Pair, req.TwentyOnePlus3)
	})
}

func (ch *CasinoHandlers) Start() http.HandlerFunc {
	return ch.action(func(r *http.Request, username string) error {
		return ch.Table.StartGame(r.Context(), username)
	})
}

func (ch *CasinoHandlers) BuyInsurance() http.HandlerFunc {
	return ch.action(func(r *http.Request, username string) error {
		return ch.Table.BuyInsurance(r.Context(), username)
	})
}

func (ch *CasinoHandlers) CloseInsurance() http.HandlerFunc {
	return ch.action(func(r *http.Request, username string) error {
		return ch.Table.CloseInsurance(r.Context(), username)
	})
}

func (ch *CasinoHandlers) Hit() http.HandlerFunc {
	return ch.action(func(r *http.Request, username string) error {
		return ch.Table.Hit(r.Context(), username)
	})
}

func (ch *CasinoHandlers) Stand() http.HandlerFunc {
	return ch.action(func(r *http.Request, username string) error {
		return ch.Table.Stand(r.Context(), username)
	})
}

func (ch *CasinoHandlers) Double() http.HandlerFunc {
	return ch.action(func(r *http.Request, username string) error {
		return ch.Table.Double(r.Context(), username)
	})
}

func (ch *CasinoHandlers) Split() http.HandlerFunc {
	return ch.action(func(r *http.Request, username string) error {
		return ch.Table.Split(r.Context(), username)
	})
}

func (ch *CasinoHandlers) Reset() http.HandlerFunc {
	return ch.action(func(r *http.Request, username string) error {
		return ch.Table.ResetRound(r.Context(), username)
	})
}

// Snapshot serves GET /casino/table: the polling view of the table.
func (ch *CasinoHandlers) Snapshot() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := requireUser(w, r); !ok {
			return
		}
		writeJSON(w, http.StatusOK, ch.Table.Snapshot())
	}
}
