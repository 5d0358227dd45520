package auth

import (
	"errors"

	"github.com/gin-gonic/gin"
)

// Strategy errors. Handlers map all of them to 401; the expiry variants stay
// distinct so tests and logs can tell a stale proof from a forged one.
var (
	ErrMissingProof   = errors.New("authentication required")
	ErrInvalidToken   = errors.New("invalid token")
	ErrTokenExpired   = errors.New("token expired")
	ErrSessionExpired = errors.New("session expired")
)

// Grant is what a strategy hands back after establishing identity. Token is
// empty for the session strategy, which transports its proof in a cookie
// instead.
type Grant struct {
	Token     string
	ExpiresIn int // seconds
}

// Strategy establishes, resolves, and revokes identity proofs. Exactly one
// implementation is wired into a running process; the two are never mixed on
// the same route.
type Strategy interface {
	// Issue creates a proof for the given user after successful signup or
	// login, attaching it to the response as needed (cookie or response body).
	Issue(c *gin.Context, userID string) (*Grant, error)

	// ResolveCaller extracts and verifies the proof on the request and
	// returns the user ID it identifies.
	ResolveCaller(c *gin.Context) (string, error)

	// Invalidate revokes the proof on the request, if the strategy keeps
	// server-side state for it.
	Invalidate(c *gin.Context) error
}
