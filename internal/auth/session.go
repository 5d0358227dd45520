package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"finance-tracker/internal/models"
	"finance-tracker/internal/repository"
	"finance-tracker/internal/utils"
)

// SessionCookieName is the cookie carrying the opaque session identifier.
const SessionCookieName = "ft_session"

const sessionTokenBytes = 32

// SessionStrategy keeps identity server-side: an opaque random identifier in
// an http-only cookie, backed by a durable sessions table so a redeploy does
// not log everyone out.
type SessionStrategy struct {
	repo   repository.Repository
	ttl    time.Duration
	secure bool // Secure cookie flag, on in production deployments
}

// NewSessionStrategy creates a session strategy backed by the given repository.
func NewSessionStrategy(repo repository.Repository, ttl time.Duration, secure bool) *SessionStrategy {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &SessionStrategy{
		repo:   repo,
		ttl:    ttl,
		secure: secure,
	}
}

func (s *SessionStrategy) Issue(c *gin.Context, userID string) (*Grant, error) {
	token, err := newSessionToken()
	if err != nil {
		return nil, fmt.Errorf("error generating session token: %w", err)
	}

	session := &models.Session{
		Token:     token,
		UserID:    userID,
		ExpiresAt: time.Now().UTC().Add(s.ttl),
	}

	if err := s.repo.CreateSession(c.Request.Context(), session); err != nil {
		return nil, fmt.Errorf("error storing session: %w", err)
	}

	s.setCookie(c, token, int(s.ttl.Seconds()))

	// The proof travels in the cookie, not the response body
	return &Grant{ExpiresIn: int(s.ttl.Seconds())}, nil
}

func (s *SessionStrategy) ResolveCaller(c *gin.Context) (string, error) {
	token, err := c.Cookie(SessionCookieName)
	if err != nil || token == "" {
		return "", ErrMissingProof
	}

	session, err := s.repo.GetSession(c.Request.Context(), token)
	if err != nil {
		return "", fmt.Errorf("error loading session: %w", err)
	}
	if session == nil {
		return "", ErrSessionExpired
	}

	if session.Expired(time.Now().UTC()) {
		// Stale record; drop it so it cannot be replayed
		_ = s.repo.DeleteSession(c.Request.Context(), token)
		return "", ErrSessionExpired
	}

	return session.UserID, nil
}

func (s *SessionStrategy) Invalidate(c *gin.Context) error {
	token, err := c.Cookie(SessionCookieName)
	if err != nil || token == "" {
		return nil
	}

	if err := s.repo.DeleteSession(c.Request.Context(), token); err != nil {
		return fmt.Errorf("error destroying session: %w", err)
	}

	s.setCookie(c, "", -1)
	return nil
}

// StartSweeper purges expired sessions on the given interval until the
// context is cancelled.
func (s *SessionStrategy) StartSweeper(ctx context.Context, interval time.Duration, logger *utils.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := s.repo.DeleteExpiredSessions(ctx, time.Now().UTC())
			if err != nil {
				logger.Error("session sweeper: %v", err)
				continue
			}
			if removed > 0 {
				logger.Info("session sweeper: removed %d expired sessions", removed)
			}
		}
	}
}

func (s *SessionStrategy) setCookie(c *gin.Context, token string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookieName, token, maxAge, "/", "", s.secure, true)
}

func newSessionToken() (string, error) {
	buf := make([]byte, sessionTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
