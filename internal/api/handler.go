package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"finance-tracker/internal/auth"
	"finance-tracker/internal/models"
	"finance-tracker/internal/service"
	"finance-tracker/internal/utils"
)

// Handler wires the service and auth strategy into HTTP endpoints
type Handler struct {
	svc          service.Service
	strategy     auth.Strategy
	logger       *utils.Logger
	environment  string
	strategyName string
}

// NewHandler creates a new API handler
func NewHandler(svc service.Service, strategy auth.Strategy, logger *utils.Logger, environment, strategyName string) *Handler {
	return &Handler{
		svc:          svc,
		strategy:     strategy,
		logger:       logger,
		environment:  environment,
		strategyName: strategyName,
	}
}

// SetupRoutes registers all routes on the router
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.GET("/", h.Root)
	router.GET("/health", h.Health)

	users := router.Group("/api/users")
	{
		users.POST("/signup", h.SignUp)
		users.POST("/login", h.Login)
	}

	usersProtected := router.Group("/api/users", AuthMiddleware(h.strategy))
	{
		usersProtected.GET("/profile", h.Profile)
		usersProtected.POST("/logout", h.Logout)
		// Admin listing; requires an authenticated caller like everything else
		usersProtected.GET("", h.ListAllUsers)
	}

	transactions := router.Group("/api/transactions", AuthMiddleware(h.strategy))
	{
		transactions.POST("", h.CreateTransaction)
		transactions.GET("", h.ListAllTransactions)
		transactions.GET("/my", h.ListMyTransactions)
		transactions.GET("/summary", h.Summary)
		transactions.GET("/:id", h.GetTransaction)
		transactions.PUT("/:id", h.UpdateTransaction)
		transactions.DELETE("/:id", h.DeleteTransaction)
	}
}

// Root responds with a plain banner
func (h *Handler) Root(c *gin.Context) {
	c.String(http.StatusOK, "Finance Tracker API running")
}

// Health reports process status for deployment monitoring
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":         "OK",
		"timestamp":      time.Now().UTC().Format(time.RFC3339),
		"environment":    h.environment,
		"authentication": h.strategyName,
	})
}

// SignUp handles POST /api/users/signup
func (h *Handler) SignUp(c *gin.Context) {
	var req models.SignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "Invalid request body")
		return
	}

	user, err := h.svc.SignUp(c.Request.Context(), req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	grant, err := h.strategy.Issue(c, user.ID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, models.AuthResponse{
		Status:    "success",
		User:      user,
		Token:     grant.Token,
		ExpiresIn: grant.ExpiresIn,
	})
}

// Login handles POST /api/users/login
func (h *Handler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "Invalid request body")
		return
	}

	user, err := h.svc.Login(c.Request.Context(), req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	grant, err := h.strategy.Issue(c, user.ID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.AuthResponse{
		Status:    "success",
		User:      user,
		Token:     grant.Token,
		ExpiresIn: grant.ExpiresIn,
	})
}

// Profile handles GET /api/users/profile
func (h *Handler) Profile(c *gin.Context) {
	user, err := h.svc.GetProfile(c.Request.Context(), CallerID(c))
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.ProfileResponse{
		Status: "success",
		User:   user,
	})
}

// Logout handles POST /api/users/logout
func (h *Handler) Logout(c *gin.Context) {
	if err := h.strategy.Invalidate(c); err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.MessageResponse{
		Status:  "success",
		Message: "Logged out",
	})
}

// ListAllUsers handles GET /api/users
func (h *Handler) ListAllUsers(c *gin.Context) {
	users, err := h.svc.ListAllUsers(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.UserListResponse{
		Status: "success",
		Users:  users,
	})
}

// CreateTransaction handles POST /api/transactions
func (h *Handler) CreateTransaction(c *gin.Context) {
	var req models.CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "Invalid request body")
		return
	}

	tx, err := h.svc.CreateTransaction(c.Request.Context(), CallerID(c), req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, models.TransactionResponse{
		Status:      "success",
		Transaction: tx,
	})
}

// ListMyTransactions handles GET /api/transactions/my
func (h *Handler) ListMyTransactions(c *gin.Context) {
	transactions, err := h.svc.ListTransactions(c.Request.Context(), CallerID(c))
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.TransactionListResponse{
		Status:       "success",
		Transactions: transactions,
	})
}

// Summary handles GET /api/transactions/summary
func (h *Handler) Summary(c *gin.Context) {
	summary, err := h.svc.GetSummary(c.Request.Context(), CallerID(c), c.Query("month"))
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

// GetTransaction handles GET /api/transactions/:id
func (h *Handler) GetTransaction(c *gin.Context) {
	tx, err := h.svc.GetTransaction(c.Request.Context(), CallerID(c), c.Param("id"))
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.TransactionResponse{
		Status:      "success",
		Transaction: tx,
	})
}

// UpdateTransaction handles PUT /api/transactions/:id
func (h *Handler) UpdateTransaction(c *gin.Context) {
	var req models.UpdateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "Invalid request body")
		return
	}

	tx, err := h.svc.UpdateTransaction(c.Request.Context(), CallerID(c), c.Param("id"), req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.TransactionResponse{
		Status:      "success",
		Transaction: tx,
	})
}

// DeleteTransaction handles DELETE /api/transactions/:id
func (h *Handler) DeleteTransaction(c *gin.Context) {
	if err := h.svc.DeleteTransaction(c.Request.Context(), CallerID(c), c.Param("id")); err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.MessageResponse{
		Status:  "success",
		Message: "Transaction deleted",
	})
}

// ListAllTransactions handles GET /api/transactions
func (h *Handler) ListAllTransactions(c *gin.Context) {
	transactions, err := h.svc.ListAllTransactions(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.TransactionListResponse{
		Status:       "success",
		Transactions: transactions,
	})
}

func (h *Handler) badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, models.ErrorResponse{
		Status:  "error",
		Code:    "VALIDATION_ERROR",
		Message: message,
	})
}

// handleError maps service errors to the HTTP error taxonomy. Cross-owner
// access deliberately surfaces as 404, never 403, so one user cannot probe
// for the existence of another user's transactions.
func (h *Handler) handleError(c *gin.Context, err error) {
	var validationErr *service.ValidationError

	switch {
	case errors.As(err, &validationErr):
		h.badRequest(c, validationErr.Error())
	case errors.Is(err, service.ErrEmailTaken), errors.Is(err, service.ErrUsernameTaken):
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Status:  "error",
			Code:    "DUPLICATE",
			Message: err.Error(),
		})
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{
			Status:  "error",
			Code:    "INVALID_CREDENTIALS",
			Message: "Invalid credentials",
		})
	case errors.Is(err, service.ErrTransactionNotFound), errors.Is(err, service.ErrUserNotFound):
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Status:  "error",
			Code:    "NOT_FOUND",
			Message: err.Error(),
		})
	default:
		h.logger.Error("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Status:  "error",
			Code:    "SERVER_ERROR",
			Message: "Internal server error",
		})
	}
}
