package types

import "time"

// Session binds an opaque bearer token to a user identity. The token is
// the only credential the client holds; everything else lives server-side
// so a session can be revoked at any time. A user may hold any number of
// concurrent sessions.
type Session struct {
	// Token is the opaque, unguessable session credential.
	Token string `json:"token" db:"token"`

	// UserID is the account this session authenticates as.
	UserID int `json:"user_id" db:"user_id"`

	// CreatedAt is the timestamp at which the session was issued.
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
