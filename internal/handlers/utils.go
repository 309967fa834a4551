package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gianlucanapo/terrazzo-manager/internal/auth"
)

// extractCookieToken extracts a named cookie value from the "Cookie" header,
// or returns empty if not found.
func extractCookieToken(cookieHeader, cookieName string) string {
	parts := strings.Split(cookieHeader, cookieName+"=")
	if len(parts) < 2 {
		return ""
	}
	token := parts[1]
	if idx := strings.Index(token, ";"); idx != -1 {
		token = token[:idx]
	}
	return token
}

// requireUser resolves the authenticated username from the session cookie.
// On failure it writes 403 and returns ok=false.
func requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	token := extractCookieToken(r.Header.Get("Cookie"), auth.CookieName)
	if token == "" {
		http.Error(w, "authentication required", http.StatusForbidden)
		return "", false
	}
	username, err := auth.VerifyToken(token)
	if err != nil {
		http.Error(w, "invalid session", http.StatusForbidden)
		return "", false
	}
	return username, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// PingHandler answers health checks.
func PingHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
