package domain

import "time"

// Principal is the identity behind the configured source credentials.
type Principal struct {
	// ClientID is the application identifier the credentials belong to.
	ClientID string

	// Login is the user login, empty for app-only credentials.
	Login string

	// Scopes lists the granted scopes.
	Scopes []string

	// ExpiresAt is when the current access token expires.
	ExpiresAt time.Time
}

// IsAppOnly reports whether the principal is an application rather than a user.
func (p *Principal) IsAppOnly() bool {
	return p.Login == ""
}
