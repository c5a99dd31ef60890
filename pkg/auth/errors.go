// Package auth covers both sides of authentication: operator logins with
// JWT issuance and failed-login blacklisting, and agent admission on the
// WebSocket upgrade.
package auth

import "errors"

// Login and token errors. Handlers map these onto HTTP statuses; the
// messages are what API clients see.
var (
	ErrWrongCredentials   = errors.New("wrong credentials")
	ErrMissingCredentials = errors.New("missing credentials")
	ErrInvalidEmail       = errors.New("invalid email")
	ErrTokenCreation      = errors.New("token creation error")
	ErrInvalidToken       = errors.New("invalid token")

	// ErrAgentUnauthorized covers every agent admission failure. The reason
	// is logged server-side; agents only ever see the 401.
	ErrAgentUnauthorized = errors.New("agent unauthorized")
)
