package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testRequestContext(req *http.Request) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req
	return c, w
}

func TestTokenIssueAndResolve(t *testing.T) {
	strategy := NewTokenStrategy("secret-one", 24*time.Hour)

	c, _ := testRequestContext(httptest.NewRequest(http.MethodPost, "/login", nil))
	grant, err := strategy.Issue(c, "user-123")
	require.NoError(t, err)
	require.NotEmpty(t, grant.Token)
	assert.Equal(t, int((24 * time.Hour).Seconds()), grant.ExpiresIn)

	req := httptest.NewRequest(http.MethodGet, "/profile", nil)
	req.Header.Set("Authorization", "Bearer "+grant.Token)
	c, _ = testRequestContext(req)

	userID, err := strategy.ResolveCaller(c)
	require.NoError(t, err)
	assert.Equal(t, "user-123", userID)
}

func TestTokenResolveRejectsBadHeaders(t *testing.T) {
	strategy := NewTokenStrategy("secret-one", 24*time.Hour)

	cases := []struct {
		name   string
		header string
		want   error
	}{
		{"missing header", "", ErrMissingProof},
		{"wrong scheme", "Basic abc123", ErrInvalidToken},
		{"bare token", "sometoken", ErrInvalidToken},
		{"garbage token", "Bearer not.a.jwt", ErrInvalidToken},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/profile", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			c, _ := testRequestContext(req)

			_, err := strategy.ResolveCaller(c)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestTokenExpiry(t *testing.T) {
	strategy := NewTokenStrategy("secret-one", 24*time.Hour)

	// Craft a token whose 24h validity window has already passed
	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "user-123",
		"iat": time.Now().Add(-25 * time.Hour).Unix(),
		"exp": time.Now().Add(-1 * time.Hour).Unix(),
	})
	signed, err := expired.SignedString([]byte("secret-one"))
	require.NoError(t, err)

	_, err = strategy.VerifyToken(signed)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestTokenTampering(t *testing.T) {
	strategy := NewTokenStrategy("secret-one", 24*time.Hour)

	c, _ := testRequestContext(httptest.NewRequest(http.MethodPost, "/login", nil))
	grant, err := strategy.Issue(c, "user-123")
	require.NoError(t, err)

	// Flip the last character of the signature
	tampered := grant.Token[:len(grant.Token)-1]
	if grant.Token[len(grant.Token)-1] == 'A' {
		tampered += "B"
	} else {
		tampered += "A"
	}

	_, err = strategy.VerifyToken(tampered)
	assert.ErrorIs(t, err, ErrInvalidToken)

	// A token signed with a different secret is rejected too
	other := NewTokenStrategy("secret-two", 24*time.Hour)
	_, err = other.VerifyToken(grant.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenWithoutSubjectRejected(t *testing.T) {
	strategy := NewTokenStrategy("secret-one", 24*time.Hour)

	anonymous := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := anonymous.SignedString([]byte("secret-one"))
	require.NoError(t, err)

	_, err = strategy.VerifyToken(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
