package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gianlucanapo/terrazzo-manager/internal/auth"
	"github.com/gianlucanapo/terrazzo-manager/internal/database"
	"github.com/gianlucanapo/terrazzo-manager/internal/models"
)

// DonationsHandler serves GET /donations (ledger) and POST /donations.
// Donations do not require a session; a logged-in donor is linked to their
// account.
func DonationsHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		donations, err := database.ListDonations(r.Context())
		if err != nil {
			http.Error(w, "failed to list donations", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, donations)

	case http.MethodPost:
		var req struct {
			DonorName string  `json:"donor_name"`
			Amount    float64 `json:"amount"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid payload", http.StatusBadRequest)
			return
		}
		if req.DonorName == "" || req.Amount <= 0 {
			http.Error(w, "donor name and a positive amount are required", http.StatusBadRequest)
			return
		}

		d := models.Donation{
			DonorName: req.DonorName,
			Amount:    req.Amount,
		}
		if token := extractCookieToken(r.Header.Get("Cookie"), auth.CookieName); token != "" {
			if username, err := auth.VerifyToken(token); err == nil {
				d.Username = username
			}
		}

		if err := database.AddDonation(r.Context(), &d); err != nil {
			http.Error(w, "failed to record donation", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusCreated, d)

	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// GoalHandler serves GET /donations/goal: the fund target and running total.
func GoalHandler(w http.ResponseWriter, r *http.Request) {
	progress, err := database.GetGoalProgress(r.Context())
	if err != nil {
		http.Error(w, "failed to load goal", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, progress)
}
