package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sirupsen/logrus"

	"github.com/gianlucanapo/terrazzo-manager/internal/database"
	"github.com/gianlucanapo/terrazzo-manager/internal/models"
)

// SlotsHandler serves GET /slots (list) and POST /slots (create).
func SlotsHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		slots, err := database.ListSlots(r.Context())
		if err != nil {
			http.Error(w, "failed to list slots", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, slots)

	case http.MethodPost:
		username, ok := requireUser(w, r)
		if !ok {
			return
		}
		var req struct {
			Date        string `json:"date"`
			Time        string `json:"time"`
			Theme       string `json:"theme"`
			Description string `json:"description"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid payload", http.StatusBadRequest)
			return
		}
		if _, err := time.Parse("2006-01-02", req.Date); err != nil {
			http.Error(w, "invalid date, want YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		if _, err := time.Parse("15:04", req.Time); err != nil {
			http.Error(w, "invalid time, want HH:MM", http.StatusBadRequest)
			return
		}

		slot := models.Slot{
			Date:        req.Date,
			Time:        req.Time,
			Theme:       req.Theme,
			Description: req.Description,
			CreatedBy:   username,
		}
		if err := database.CreateSlot(r.Context(), &slot); err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23505" {
				http.Error(w, "a slot already exists at that date and time", http.StatusConflict)
				return
			}
			http.Error(w, "failed to create slot", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusCreated, slot)

	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// NextSlotHandler serves GET /slots/next: the soonest confirmed slot with a
// free seat.
func NextSlotHandler(w http.ResponseWriter, r *http.Request) {
	slot, err := database.NextAvailableSlot(r.Context())
	if err != nil {
		http.Error(w, "failed to find next slot", http.StatusInternalServerError)
		return
	}
	if slot == nil {
		http.Error(w, "no available slot", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, slot)
}

// slotSubroute splits "/slots/{id}/{action}" and parses the slot id.
func slotSubroute(w http.ResponseWriter, r *http.Request) (uuid.UUID, string, bool) {
	rest := strings.TrimPrefix(r.URL.Path, "/slots/")
	parts := strings.SplitN(rest, "/", 2)
	id, err := uuid.Parse(parts[0])
	if err != nil {
		http.Error(w, "invalid slot id", http.StatusBadRequest)
		return uuid.Nil, "", false
	}
	action := ""
	if len(parts) == 2 {
		action = parts[1]
	}
	return id, action, true
}

// SlotActionHandler routes /slots/{id} and its sub-resources: book, cancel,
// waitlist, bring, messages.
func SlotActionHandler(logger *logrus.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slotID, action, ok := slotSubroute(w, r)
		if !ok {
			return
		}

		if action == "" && r.Method == http.MethodGet {
			slot, err := database.GetSlot(r.Context(), slotID)
			if errors.Is(err, pgx.ErrNoRows) {
				http.Error(w, "slot not found", http.StatusNotFound)
				return
			}
			if err != nil {
				http.Error(w, "failed to load slot", http.StatusInternalServerError)
				return
			}
			writeJSON(w, http.StatusOK, slot)
			return
		}

		if action == "messages" {
			slotMessages(w, r, slotID)
			return
		}

		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		username, ok := requireUser(w, r)
		if !ok {
			return
		}

		switch action {
		case "book":
			var req struct {
				PlusOne bool `json:"plus_one"`
			}
			if r.ContentLength > 0 {
				if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
					http.Error(w, "invalid payload", http.StatusBadRequest)
					return
				}
			}
			err := database.BookSlot(r.Context(), slotID, username, req.PlusOne)
			switch {
			case errors.Is(err, database.ErrSlotFull):
				http.Error(w, "slot is full", http.StatusConflict)
			case errors.Is(err, database.ErrAlreadyBooked):
				http.Error(w, "already booked", http.StatusConflict)
			case err != nil:
				http.Error(w, "booking failed", http.StatusInternalServerError)
			default:
				writeJSON(w, http.StatusOK, map[string]string{"status": "booked"})
			}

		case "cancel":
			promoted, err := database.CancelBooking(r.Context(), slotID, username)
			switch {
			case errors.Is(err, database.ErrNotBooked):
				http.Error(w, "no booking to cancel", http.StatusNotFound)
			case err != nil:
				http.Error(w, "cancel failed", http.StatusInternalServerError)
			default:
				if promoted != "" {
					logger.WithFields(logrus.Fields{
						"slot": slotID, "promoted": promoted,
					}).Info("waitlist promotion")
				}
				writeJSON(w, http.StatusOK, map[string]string{
					"status":   "cancelled",
					"promoted": promoted,
				})
			}

		case "waitlist":
			if err := database.JoinWaitlist(r.Context(), slotID, username); err != nil {
				http.Error(w, "failed to join waitlist", http.StatusInternalServerError)
				return
			}
			writeJSON(w, http.StatusOK, map[string]string{"status": "waitlisted"})

		case "bring":
			var req struct {
				Item string `json:"item"`
			}
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Item == "" {
				http.Error(w, "item is required", http.StatusBadRequest)
				return
			}
			if err := database.AddBringing(r.Context(), slotID, username, req.Item); err != nil {
				http.Error(w, "failed to record item", http.StatusInternalServerError)
				return
			}
			writeJSON(w, http.StatusOK, map[string]string{"status": "recorded"})

		default:
			http.Error(w, "unknown slot action", http.StatusNotFound)
		}
	}
}
