// internal/auth/session.go
package auth

import (
	"crypto/ed25519"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// CookieName is the session cookie carrying the signed token.
const CookieName = "auth_token"

var (
	signingKey ed25519.PrivateKey
	verifyKey  ed25519.PublicKey

	// TokenTTLSeconds is how long issued tokens (and their cookies) live.
	// Zero means tokens never expire.
	TokenTTLSeconds int
)

// Init generates a fresh ed25519 key pair for this process and reads the
// token lifetime from SESSION_TTL (a time.Duration string; empty, "0" or
// "never" disables expiry). Sessions do not survive a restart, which is
// acceptable for a single-instance service.
func Init() error {
	var err error
	verifyKey, signingKey, err = ed25519.GenerateKey(nil)
	if err != nil {
		return fmt.Errorf("failed to generate session keys: %w", err)
	}

	ttl := os.Getenv("SESSION_TTL")
	if ttl == "" || ttl == "0" || ttl == "never" {
		TokenTTLSeconds = 0
		return nil
	}
	d, err := time.ParseDuration(ttl)
	if err != nil {
		return fmt.Errorf("invalid SESSION_TTL %q: %w", ttl, err)
	}
	TokenTTLSeconds = int(d.Seconds())
	return nil
}

// IssueToken signs a session token whose subject is the username.
func IssueToken(username string) (string, error) {
	claims := jwt.MapClaims{
		"sub": username,
		"iat": time.Now().Unix(),
	}
	if TokenTTLSeconds > 0 {
		claims["exp"] = time.Now().Add(time.Duration(TokenTTLSeconds) * time.Second).Unix()
	}

	return jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims).SignedString(signingKey)
}

// VerifyToken validates a session token and returns the username it names.
func VerifyToken(token string) (string, error) {
	t, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodEd25519); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return verifyKey, nil
	})
	if err != nil {
		return "", fmt.Errorf("token parse error: %w", err)
	}
	if !t.Valid {
		return "", fmt.Errorf("invalid token")
	}

	claims, ok := t.Claims.(jwt.MapClaims)
	if !ok {
		return "", fmt.Errorf("invalid token claims")
	}
	username, ok := claims["sub"].(string)
	if !ok || username == "" {
		return "", fmt.Errorf("token has no subject")
	}
	return username, nil
}
