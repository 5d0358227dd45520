package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"finance-tracker/internal/models"
	"finance-tracker/internal/repository"
)

// bcryptCost is the work factor used for password hashing.
const bcryptCost = 12

// Sentinel errors mapped to HTTP statuses at the API boundary
var (
	ErrEmailTaken          = errors.New("email already in use")
	ErrUsernameTaken       = errors.New("username already in use")
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrUserNotFound        = errors.New("user not found")
	ErrTransactionNotFound = errors.New("transaction not found")
)

// ValidationError reports a malformed request field
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// emailPattern matches the simple address shape accepted at signup
var emailPattern = regexp.MustCompile(`^\w+([.-]?\w+)*@\w+([.-]?\w+)*(\.\w{2,3})+$`)

// Service defines all the business logic operations
type Service interface {
	// Authentication
	SignUp(ctx context.Context, req models.SignUpRequest) (*models.User, error)
	Login(ctx context.Context, req models.LoginRequest) (*models.User, error)
	GetProfile(ctx context.Context, userID string) (*models.User, error)

	// Transaction operations
	CreateTransaction(ctx context.Context, userID string, req models.CreateTransactionRequest) (*models.Transaction, error)
	ListTransactions(ctx context.Context, userID string) ([]models.Transaction, error)
	GetTransaction(ctx context.Context, userID, transactionID string) (*models.Transaction, error)
	UpdateTransaction(ctx context.Context, userID, transactionID string, req models.UpdateTransactionRequest) (*models.Transaction, error)
	DeleteTransaction(ctx context.Context, userID, transactionID string) error

	// Analytics
	GetSummary(ctx context.Context, userID, month string) (*models.SummaryResponse, error)

	// Admin listings
	ListAllUsers(ctx context.Context) ([]models.User, error)
	ListAllTransactions(ctx context.Context) ([]models.Transaction, error)
}

// DefaultService implements the Service interface
type DefaultService struct {
	repo repository.Repository
}

// NewDefaultService creates a new DefaultService
func NewDefaultService(repo repository.Repository) Service {
	return &DefaultService{
		repo: repo,
	}
}

// Authentication methods
func (s *DefaultService) SignUp(ctx context.Context, req models.SignUpRequest) (*models.User, error) {
	username := strings.TrimSpace(req.Username)
	email := NormalizeEmail(req.Email)

	if len(username) < 3 || len(username) > 30 {
		return nil, &ValidationError{Field: "username", Message: "must be between 3 and 30 characters"}
	}
	if !emailPattern.MatchString(email) {
		return nil, &ValidationError{Field: "email", Message: "must be a valid email address"}
	}
	if len(req.Password) < 6 || len(req.Password) > 128 {
		return nil, &ValidationError{Field: "password", Message: "must be between 6 and 128 characters"}
	}

	// Check uniqueness before persisting
	existing, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("error checking user existence: %w", err)
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	existing, err = s.repo.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("error checking user existence: %w", err)
	}
	if existing != nil {
		return nil, ErrUsernameTaken
	}

	hashedPassword, err := HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	user := &models.User{
		ID:       uuid.New().String(),
		Username: username,
		Email:    email,
		Password: hashedPassword,
	}

	if err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	return user, nil
}

func (s *DefaultService) Login(ctx context.Context, req models.LoginRequest) (*models.User, error) {
	user, err := s.repo.GetUserByEmail(ctx, NormalizeEmail(req.Email))
	if err != nil {
		return nil, fmt.Errorf("error getting user: %w", err)
	}

	// Same answer for an unknown email and a wrong password
	if user == nil {
		return nil, ErrInvalidCredentials
	}
	if !VerifyPassword(req.Password, user.Password) {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

func (s *DefaultService) GetProfile(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error getting user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	return user, nil
}

// Transaction operations
func (s *DefaultService) CreateTransaction(
	ctx context.Context,
	userID string,
	req models.CreateTransactionRequest,
) (*models.Transaction, error) {
	if req.Type != models.TypeIncome && req.Type != models.TypeExpense {
		return nil, &ValidationError{Field: "type", Message: "must be income or expense"}
	}
	if !req.Amount.IsPositive() {
		return nil, &ValidationError{Field: "amount", Message: "must be a positive number"}
	}

	date, err := parseDate(req.Date)
	if err != nil {
		return nil, err
	}

	// Owner always comes from the resolved caller, never from the body
	tx := &models.Transaction{
		ID:              uuid.New().String(),
		Type:            req.Type,
		Amount:          req.Amount,
		Category:        strings.TrimSpace(req.Category),
		Date:            date,
		UserID:          userID,
		TransactionType: strings.TrimSpace(req.TransactionType),
		Note:            strings.TrimSpace(req.Note),
	}

	if err := s.repo.CreateTransaction(ctx, tx); err != nil {
		return nil, fmt.Errorf("error creating transaction: %w", err)
	}

	return tx, nil
}

func (s *DefaultService) ListTransactions(ctx context.Context, userID string) ([]models.Transaction, error) {
	transactions, err := s.repo.GetUserTransactions(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing transactions: %w", err)
	}

	return transactions, nil
}

func (s *DefaultService) GetTransaction(ctx context.Context, userID, transactionID string) (*models.Transaction, error) {
	tx, err := s.repo.GetTransactionByIDAndOwner(ctx, transactionID, userID)
	if err != nil {
		return nil, fmt.Errorf("error getting transaction: %w", err)
	}
	if tx == nil {
		return nil, ErrTransactionNotFound
	}

	return tx, nil
}

func (s *DefaultService) UpdateTransaction(
	ctx context.Context,
	userID string,
	transactionID string,
	req models.UpdateTransactionRequest,
) (*models.Transaction, error) {
	tx, err := s.repo.GetTransactionByIDAndOwner(ctx, transactionID, userID)
	if err != nil {
		return nil, fmt.Errorf("error getting transaction: %w", err)
	}
	if tx == nil {
		return nil, ErrTransactionNotFound
	}

	// Apply only the mutable fields; the owner never changes
	if req.Type != nil {
		if *req.Type != models.TypeIncome && *req.Type != models.TypeExpense {
			return nil, &ValidationError{Field: "type", Message: "must be income or expense"}
		}
		tx.Type = *req.Type
	}
	if req.Amount != nil {
		if !req.Amount.IsPositive() {
			return nil, &ValidationError{Field: "amount", Message: "must be a positive number"}
		}
		tx.Amount = *req.Amount
	}
	if req.Category != nil {
		tx.Category = strings.TrimSpace(*req.Category)
	}
	if req.Date != nil && *req.Date != "" {
		date, err := parseDate(*req.Date)
		if err != nil {
			return nil, err
		}
		tx.Date = date
	}
	if req.TransactionType != nil {
		tx.TransactionType = strings.TrimSpace(*req.TransactionType)
	}
	if req.Note != nil {
		tx.Note = strings.TrimSpace(*req.Note)
	}

	updated, err := s.repo.UpdateTransaction(ctx, tx)
	if err != nil {
		return nil, fmt.Errorf("error updating transaction: %w", err)
	}
	if !updated {
		// Deleted between lookup and write; delete wins
		return nil, ErrTransactionNotFound
	}

	return tx, nil
}

func (s *DefaultService) DeleteTransaction(ctx context.Context, userID, transactionID string) error {
	deleted, err := s.repo.DeleteTransaction(ctx, transactionID, userID)
	if err != nil {
		return fmt.Errorf("error deleting transaction: %w", err)
	}
	if !deleted {
		return ErrTransactionNotFound
	}

	return nil
}

// Analytics
func (s *DefaultService) GetSummary(ctx context.Context, userID, month string) (*models.SummaryResponse, error) {
	transactions, err := s.repo.GetUserTransactions(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing transactions: %w", err)
	}

	var filter time.Time
	if month != "" {
		filter, err = time.Parse("2006-01", month)
		if err != nil {
			return nil, &ValidationError{Field: "month", Message: "must be in YYYY-MM format"}
		}
	}

	summary := &models.SummaryResponse{
		Status:            "success",
		Month:             month,
		TotalIncome:       decimal.Zero,
		TotalExpense:      decimal.Zero,
		Balance:           decimal.Zero,
		ExpenseByCategory: make(map[string]decimal.Decimal),
	}

	for _, tx := range transactions {
		if month != "" {
			if tx.Date.Year() != filter.Year() || tx.Date.Month() != filter.Month() {
				continue
			}
		}

		switch tx.Type {
		case models.TypeIncome:
			summary.TotalIncome = summary.TotalIncome.Add(tx.Amount)
		case models.TypeExpense:
			summary.TotalExpense = summary.TotalExpense.Add(tx.Amount)
			category := tx.Category
			if category == "" {
				category = "Uncategorized"
			}
			summary.ExpenseByCategory[category] = summary.ExpenseByCategory[category].Add(tx.Amount)
		}
	}

	summary.Balance = summary.TotalIncome.Sub(summary.TotalExpense)
	return summary, nil
}

// Admin listings
func (s *DefaultService) ListAllUsers(ctx context.Context) ([]models.User, error) {
	users, err := s.repo.GetAllUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing users: %w", err)
	}

	return users, nil
}

func (s *DefaultService) ListAllTransactions(ctx context.Context) ([]models.Transaction, error) {
	transactions, err := s.repo.GetAllTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing transactions: %w", err)
	}

	return transactions, nil
}

// Helper methods

// HashPassword derives the stored credential from a plaintext password.
func HashPassword(plaintext string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// VerifyPassword checks a plaintext password against a stored credential
// using bcrypt's constant-time comparison. Plaintext equality is never used.
func VerifyPassword(plaintext, storedCredential string) bool {
	return bcrypt.CompareHashAndPassword([]byte(storedCredential), []byte(plaintext)) == nil
}

// NormalizeEmail lowercases and trims an address before lookup or storage.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func parseDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil // Repository defaults it to now
	}
	if date, err := time.Parse("2006-01-02", value); err == nil {
		return date, nil
	}
	if date, err := time.Parse(time.RFC3339, value); err == nil {
		return date, nil
	}
	return time.Time{}, &ValidationError{Field: "date", Message: "must be YYYY-MM-DD or RFC 3339"}
}
