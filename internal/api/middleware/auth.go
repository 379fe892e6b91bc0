package middleware

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/fernet/fernet-go"
)

// TokenAuth verifies fernet bearer tokens on protected routes. Tokens are
// minted out-of-band with the shared key and expire after the configured TTL.
type TokenAuth struct {
	keys []*fernet.Key
	ttl  time.Duration
}

// NewTokenAuth creates a TokenAuth from a base64-encoded fernet key.
func NewTokenAuth(key string, ttl time.Duration) (*TokenAuth, error) {
	decoded, err := fernet.DecodeKey(key)
	if err != nil {
		return nil, fmt.Errorf("invalid auth token key: %w", err)
	}
	return &TokenAuth{
		keys: []*fernet.Key{decoded},
		ttl:  ttl,
	}, nil
}

// Handler rejects requests without a valid, unexpired bearer token.
func (a *TokenAuth) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || token == "" {
			unauthorized(w)
			return
		}

		if msg := fernet.VerifyAndDecrypt([]byte(token), a.ttl, a.keys); msg == nil {
			unauthorized(w)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"unauthorized"}`))
}
