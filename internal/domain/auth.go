package domain

import "time"

// TokenIssuer issues tokens (e.g. JWT) for an authenticated admin user.
// Authentication itself lives outside this service; only the token boundary
// is modeled here.
type TokenIssuer interface {
	Issue(userID string, expiry time.Duration) (string, error)
}

// TokenVerifier verifies a token and returns the authenticated user ID.
type TokenVerifier interface {
	Verify(token string) (userID string, err error)
}
