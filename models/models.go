// --- models/models.go ---
package models

import "time"

// User represents a signed-up user as stored in the users file.
type User struct {
	Username     string `json:"username"`
	PasswordHash string `json:"password_hash"`
	CreatedAt    string `json:"createdAt"`
}

// PublicUser is the user shape returned by the API; it never carries
// the password hash.
type PublicUser struct {
	Username  string `json:"username"`
	CreatedAt string `json:"createdAt"`
}

// Public returns the API-safe view of a user.
func (u User) Public() PublicUser {
	return PublicUser{Username: u.Username, CreatedAt: u.CreatedAt}
}

// Session is the record stored per token in the sessions file.
type Session struct {
	Username  string `json:"username"`
	CreatedAt string `json:"createdAt"`
}

// LoginRequest defines the structure for user login and signup requests.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Now returns the timestamp string used in persisted data and API
// responses.
func Now() string {
	return time.Now().UTC().Format(time.RFC3339)
}
