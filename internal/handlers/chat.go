package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/gianlucanapo/terrazzo-manager/internal/database"
	"github.com/gianlucanapo/terrazzo-manager/internal/models"
)

// slotMessages serves GET and POST on /slots/{id}/messages.
func slotMessages(w http.ResponseWriter, r *http.Request, slotID uuid.UUID) {
	switch r.Method {
	case http.MethodGet:
		msgs, err := database.ListMessages(r.Context(), slotID)
		if err != nil {
			http.Error(w, "failed to list messages", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, msgs)

	case http.MethodPost:
		username, ok := requireUser(w, r)
		if !ok {
			return
		}
		var req struct {
			Body string `json:"body"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Body == "" {
			http.Error(w, "message body is required", http.StatusBadRequest)
			return
		}

		msg := models.Message{
			SlotID:   slotID,
			Username: username,
			Body:     req.Body,
		}
		if err := database.AddMessage(r.Context(), &msg); err != nil {
			http.Error(w, "failed to post message", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusCreated, msg)

	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}
