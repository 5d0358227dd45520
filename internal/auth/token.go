package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// TokenStrategy issues self-contained bearer tokens (HS256 JWTs) carrying
// the user ID and a 24 hour expiry. No server-side record is kept; logout is
// a client-side discard.
type TokenStrategy struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenStrategy creates a token strategy signing with the given secret.
func NewTokenStrategy(secret string, ttl time.Duration) *TokenStrategy {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &TokenStrategy{
		secret: []byte(secret),
		ttl:    ttl,
	}
}

func (s *TokenStrategy) Issue(c *gin.Context, userID string) (*Grant, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": userID,
		"iat": now.Unix(),
		"exp": now.Add(s.ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return nil, err
	}

	return &Grant{
		Token:     signed,
		ExpiresIn: int(s.ttl.Seconds()),
	}, nil
}

func (s *TokenStrategy) ResolveCaller(c *gin.Context) (string, error) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", ErrMissingProof
	}

	// The header must be of the form "Bearer <token>"
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", ErrInvalidToken
	}

	return s.VerifyToken(parts[1])
}

// VerifyToken checks signature, algorithm, and expiry, and returns the user
// ID embedded in the token. It is a pure function of the token and secret.
func (s *TokenStrategy) VerifyToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		// Validate the signing method
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrTokenExpired
		}
		return "", ErrInvalidToken
	}
	if !token.Valid {
		return "", ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrInvalidToken
	}

	userID, ok := claims["sub"].(string)
	if !ok || userID == "" {
		return "", ErrInvalidToken
	}

	return userID, nil
}

// Invalidate is a no-op: bearer tokens carry no server-side state and simply
// age out of their validity window.
func (s *TokenStrategy) Invalidate(c *gin.Context) error {
	return nil
}
