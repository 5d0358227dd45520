package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"finance-tracker/internal/auth"
	"finance-tracker/internal/models"
)

// callerKey is the gin context key holding the resolved caller's user ID.
const callerKey = "userId"

// AuthMiddleware returns a Gin middleware that resolves the caller through
// the configured auth strategy. Requests without a valid identity proof are
// rejected before any handler runs.
func AuthMiddleware(strategy auth.Strategy) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := strategy.ResolveCaller(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, models.ErrorResponse{
				Status:  "error",
				Code:    "UNAUTHORIZED",
				Message: authFailureMessage(err),
			})
			c.Abort()
			return
		}

		// Set user ID in the context
		c.Set(callerKey, userID)
		c.Next()
	}
}

// CallerID returns the resolved caller set by AuthMiddleware.
func CallerID(c *gin.Context) string {
	return c.GetString(callerKey)
}

func authFailureMessage(err error) string {
	switch {
	case errors.Is(err, auth.ErrMissingProof):
		return "Authentication required"
	case errors.Is(err, auth.ErrTokenExpired):
		return "Token expired"
	case errors.Is(err, auth.ErrSessionExpired):
		return "Session expired"
	default:
		return "Invalid token"
	}
}

// CORSMiddleware adds Access-Control headers for allowed origins and
// short-circuits preflight requests. An entry of "*" allows every origin.
func CORSMiddleware(allowedOrigins []string) gin.HandlerFunc {
	allowAll := false
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		if origin == "*" {
			allowAll = true
			break
		}
		allowed[origin] = true
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" && (allowAll || allowed[origin]) {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Vary", "Origin")
			c.Header("Access-Control-Allow-Credentials", "true")
			c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
			c.Header("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,OPTIONS")
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
