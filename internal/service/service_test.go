package service_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"finance-tracker/internal/models"
	"finance-tracker/internal/repository"
	"finance-tracker/internal/service"
)

func newService() (service.Service, *repository.MemoryRepository) {
	repo := repository.NewMemoryRepository()
	return service.NewDefaultService(repo), repo
}

func TestSignUpStoresHashedCredential(t *testing.T) {
	svc, repo := newService()
	ctx := context.Background()

	user, err := svc.SignUp(ctx, models.SignUpRequest{
		Username: "alice",
		Email:    "Alice@Example.COM",
		Password: "correct horse",
	})
	require.NoError(t, err)

	// Email is normalized before storage
	assert.Equal(t, "alice@example.com", user.Email)

	stored, err := repo.GetUserByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	require.NotNil(t, stored)

	// The credential is never the plaintext, and re-verifies against it
	assert.NotEqual(t, "correct horse", stored.Password)
	assert.True(t, service.VerifyPassword("correct horse", stored.Password))
	assert.False(t, service.VerifyPassword("wrong horse", stored.Password))

	// Work factor of at least 12 rounds
	cost, err := bcrypt.Cost([]byte(stored.Password))
	require.NoError(t, err)
	assert.GreaterOrEqual(t, cost, 12)
}

func TestSignUpRejectsDuplicates(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	_, err := svc.SignUp(ctx, models.SignUpRequest{
		Username: "alice", Email: "alice@example.com", Password: "password1",
	})
	require.NoError(t, err)

	_, err = svc.SignUp(ctx, models.SignUpRequest{
		Username: "alice2", Email: "alice@example.com", Password: "password1",
	})
	assert.ErrorIs(t, err, service.ErrEmailTaken)

	// Duplicate email detection survives case differences
	_, err = svc.SignUp(ctx, models.SignUpRequest{
		Username: "alice3", Email: "ALICE@example.com", Password: "password1",
	})
	assert.ErrorIs(t, err, service.ErrEmailTaken)

	_, err = svc.SignUp(ctx, models.SignUpRequest{
		Username: "alice", Email: "other@example.com", Password: "password1",
	})
	assert.ErrorIs(t, err, service.ErrUsernameTaken)
}

func TestSignUpValidation(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	cases := []struct {
		name string
		req  models.SignUpRequest
	}{
		{"username too short", models.SignUpRequest{Username: "ab", Email: "a@example.com", Password: "password1"}},
		{"username too long", models.SignUpRequest{Username: "abcdefghijklmnopqrstuvwxyzabcde", Email: "a@example.com", Password: "password1"}},
		{"malformed email", models.SignUpRequest{Username: "carol", Email: "carol@@example.com", Password: "password1"}},
		{"email without domain", models.SignUpRequest{Username: "carol", Email: "carol@", Password: "password1"}},
		{"password too short", models.SignUpRequest{Username: "carol", Email: "carol@example.com", Password: "short"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.SignUp(ctx, tc.req)
			var validationErr *service.ValidationError
			assert.ErrorAs(t, err, &validationErr)
		})
	}
}

func TestLoginVerifiesThroughHash(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	_, err := svc.SignUp(ctx, models.SignUpRequest{
		Username: "bob", Email: "bob@example.com", Password: "hunter22",
	})
	require.NoError(t, err)

	user, err := svc.Login(ctx, models.LoginRequest{Email: "bob@example.com", Password: "hunter22"})
	require.NoError(t, err)
	assert.Equal(t, "bob", user.Username)

	// Submitting the stored hash itself as the password must fail: the
	// verifier compares hash-to-plaintext, never plaintext-to-plaintext
	_, err = svc.Login(ctx, models.LoginRequest{Email: "bob@example.com", Password: user.Password})
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)

	_, err = svc.Login(ctx, models.LoginRequest{Email: "bob@example.com", Password: "hunter23"})
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)

	_, err = svc.Login(ctx, models.LoginRequest{Email: "nobody@example.com", Password: "hunter22"})
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)
}

func TestCreateTransactionOwnership(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	alice, err := svc.SignUp(ctx, models.SignUpRequest{
		Username: "alice", Email: "alice@example.com", Password: "password1",
	})
	require.NoError(t, err)

	tx, err := svc.CreateTransaction(ctx, alice.ID, models.CreateTransactionRequest{
		Type:   models.TypeExpense,
		Amount: decimal.NewFromFloat(9.99),
	})
	require.NoError(t, err)
	assert.Equal(t, alice.ID, tx.UserID)
	assert.False(t, tx.Date.IsZero(), "date defaults to creation time")

	// Scoped lookups: a different caller cannot see it
	_, err = svc.GetTransaction(ctx, "other-user", tx.ID)
	assert.ErrorIs(t, err, service.ErrTransactionNotFound)

	got, err := svc.GetTransaction(ctx, alice.ID, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, tx.ID, got.ID)
}

func TestUpdateTransactionMutableFieldsOnly(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	owner, err := svc.SignUp(ctx, models.SignUpRequest{
		Username: "owner", Email: "owner@example.com", Password: "password1",
	})
	require.NoError(t, err)

	tx, err := svc.CreateTransaction(ctx, owner.ID, models.CreateTransactionRequest{
		Type:     models.TypeExpense,
		Amount:   decimal.NewFromInt(10),
		Category: "Food",
		Date:     "2024-06-01",
	})
	require.NoError(t, err)

	newType := models.TypeIncome
	updated, err := svc.UpdateTransaction(ctx, owner.ID, tx.ID, models.UpdateTransactionRequest{
		Type: &newType,
	})
	require.NoError(t, err)
	assert.Equal(t, models.TypeIncome, updated.Type)
	assert.Equal(t, "Food", updated.Category)
	assert.Equal(t, owner.ID, updated.UserID)
	assert.Equal(t, "2024-06-01", updated.Date.Format("2006-01-02"))

	// Cross-owner update is a not-found, and deleting twice is too
	_, err = svc.UpdateTransaction(ctx, "someone-else", tx.ID, models.UpdateTransactionRequest{Type: &newType})
	assert.ErrorIs(t, err, service.ErrTransactionNotFound)

	require.NoError(t, svc.DeleteTransaction(ctx, owner.ID, tx.ID))
	assert.ErrorIs(t, svc.DeleteTransaction(ctx, owner.ID, tx.ID), service.ErrTransactionNotFound)
}

func TestGetSummaryTotals(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	user, err := svc.SignUp(ctx, models.SignUpRequest{
		Username: "summer", Email: "summer@example.com", Password: "password1",
	})
	require.NoError(t, err)

	seed := []models.CreateTransactionRequest{
		{Type: models.TypeIncome, Amount: decimal.NewFromFloat(2500.00), Date: "2024-07-01"},
		{Type: models.TypeExpense, Amount: decimal.NewFromFloat(0.10), Category: "Fees", Date: "2024-07-02"},
		{Type: models.TypeExpense, Amount: decimal.NewFromFloat(0.20), Category: "Fees", Date: "2024-07-03"},
		{Type: models.TypeExpense, Amount: decimal.NewFromInt(99), Date: "2024-07-04"}, // no category
	}
	for _, req := range seed {
		_, err := svc.CreateTransaction(ctx, user.ID, req)
		require.NoError(t, err)
	}

	summary, err := svc.GetSummary(ctx, user.ID, "2024-07")
	require.NoError(t, err)

	// Decimal arithmetic keeps cents exact (0.10 + 0.20 is exactly 0.30)
	assert.True(t, summary.ExpenseByCategory["Fees"].Equal(decimal.NewFromFloat(0.30)),
		"fees were %s", summary.ExpenseByCategory["Fees"])
	assert.True(t, summary.TotalExpense.Equal(decimal.NewFromFloat(99.30)))
	assert.True(t, summary.Balance.Equal(decimal.NewFromFloat(2400.70)))
	assert.True(t, summary.ExpenseByCategory["Uncategorized"].Equal(decimal.NewFromInt(99)))

	// Out-of-range month is empty, not an error
	summary, err = svc.GetSummary(ctx, user.ID, "2023-07")
	require.NoError(t, err)
	assert.True(t, summary.TotalIncome.IsZero())
	assert.True(t, summary.TotalExpense.IsZero())

	_, err = svc.GetSummary(ctx, user.ID, "July 2024")
	var validationErr *service.ValidationError
	assert.ErrorAs(t, err, &validationErr)
}
