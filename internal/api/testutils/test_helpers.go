package testutils

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"finance-tracker/internal/api"
	"finance-tracker/internal/auth"
	"finance-tracker/internal/models"
	"finance-tracker/internal/repository"
	"finance-tracker/internal/service"
	"finance-tracker/internal/utils"
)

// TestJWTSecret signs tokens in tests
const TestJWTSecret = "test-secret-key"

// TestContext holds all dependencies for tests
type TestContext struct {
	Router     *gin.Engine
	Repository *repository.MemoryRepository
	Service    service.Service
	Strategy   auth.Strategy
}

// SetupTestContext builds a router wired exactly like production (handlers,
// auth middleware, token strategy) on top of the in-memory repository, so
// tests exercise the real request path without external services.
func SetupTestContext(t *testing.T) *TestContext {
	t.Helper()

	gin.SetMode(gin.TestMode)

	repo := repository.NewMemoryRepository()
	svc := service.NewDefaultService(repo)
	strategy := auth.NewTokenStrategy(TestJWTSecret, 24*time.Hour)
	handler := api.NewHandler(svc, strategy, utils.NewLogger(), "test", "token")

	router := gin.New()
	handler.SetupRoutes(router)

	return &TestContext{
		Router:     router,
		Repository: repo,
		Service:    svc,
		Strategy:   strategy,
	}
}

// SetupSessionTestContext is SetupTestContext with the session strategy
// wired in instead of bearer tokens.
func SetupSessionTestContext(t *testing.T) *TestContext {
	t.Helper()

	gin.SetMode(gin.TestMode)

	repo := repository.NewMemoryRepository()
	svc := service.NewDefaultService(repo)
	strategy := auth.NewSessionStrategy(repo, 24*time.Hour, false)
	handler := api.NewHandler(svc, strategy, utils.NewLogger(), "test", "session")

	router := gin.New()
	handler.SetupRoutes(router)

	return &TestContext{
		Router:     router,
		Repository: repo,
		Service:    svc,
		Strategy:   strategy,
	}
}

// SignUpUser registers a user through the signup endpoint and returns the
// created user's ID and a bearer token for it.
func SignUpUser(t *testing.T, router *gin.Engine, username, email, password string) (string, string) {
	t.Helper()

	w := PerformRequest(router, http.MethodPost, "/api/users/signup", models.SignUpRequest{
		Username: username,
		Email:    email,
		Password: password,
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code, "signup failed: %s", w.Body.String())

	var resp models.AuthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.User)
	require.NotEmpty(t, resp.Token)

	return resp.User.ID, resp.Token
}

// PerformRequest executes an HTTP request against the router
func PerformRequest(r http.Handler, method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer

	if body != nil {
		jsonBody, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(jsonBody)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req, _ := http.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// AuthHeaders returns headers with Authorization token
func AuthHeaders(token string) map[string]string {
	return map[string]string{
		"Authorization": fmt.Sprintf("Bearer %s", token),
	}
}
