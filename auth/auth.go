// --- auth/auth.go ---
package auth

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/Susanth-Aluru/to-do-web/models"
	"github.com/Susanth-Aluru/to-do-web/storage"
)

var (
	// ErrMissingToken means the Authorization header was absent or not
	// of the form "Bearer <token>".
	ErrMissingToken = errors.New("missing token")
	// ErrInvalidToken means the presented token is not in the sessions
	// document.
	ErrInvalidToken = errors.New("invalid token")
)

const bearerPrefix = "Bearer "

// tokenBytes is the entropy of an issued token before encoding.
const tokenBytes = 32

// Auth issues and validates bearer tokens against the sessions file
// and hashes passwords for the users file.
type Auth struct {
	store *storage.Store
	cost  int
}

// New builds an Auth over store. Costs below bcrypt.MinCost fall back
// to bcrypt.DefaultCost.
func New(store *storage.Store, cost int) *Auth {
	if cost < bcrypt.MinCost {
		cost = bcrypt.DefaultCost
	}
	return &Auth{store: store, cost: cost}
}

// Hash returns a salted one-way hash of password for storage. The
// plaintext is never persisted or logged.
func (a *Auth) Hash(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), a.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hashed), nil
}

// Verify reports whether password matches hash.
func (a *Auth) Verify(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// IssueToken generates a random URL-safe token, records it in the
// sessions document, and returns it. Each login gets a fresh token;
// earlier tokens for the same user stay valid.
func (a *Auth) IssueToken(username string) (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	token := base64.RawURLEncoding.EncodeToString(buf)

	sessions := a.store.LoadSessions()
	sessions[token] = models.Session{Username: username, CreatedAt: models.Now()}
	if err := a.store.SaveSessions(sessions); err != nil {
		return "", err
	}
	return token, nil
}

// Authenticate resolves an Authorization header value to the username
// that owns the token. The header must be exactly "Bearer <token>".
func (a *Auth) Authenticate(header string) (string, error) {
	token, ok := TokenFromHeader(header)
	if !ok {
		return "", ErrMissingToken
	}
	sess, ok := a.store.LoadSessions()[token]
	if !ok {
		return "", ErrInvalidToken
	}
	return sess.Username, nil
}

// RevokeToken removes token from the sessions document. Revoking an
// absent token is a no-op.
func (a *Auth) RevokeToken(token string) error {
	sessions := a.store.LoadSessions()
	if _, ok := sessions[token]; !ok {
		return nil
	}
	delete(sessions, token)
	return a.store.SaveSessions(sessions)
}

// TokenFromHeader extracts the token from a "Bearer <token>" header
// value. The prefix match is case-sensitive.
func TokenFromHeader(header string) (string, bool) {
	if !strings.HasPrefix(header, bearerPrefix) {
		return "", false
	}
	return header[len(bearerPrefix):], true
}
