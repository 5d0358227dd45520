package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction types
const (
	TypeIncome  = "income"
	TypeExpense = "expense"
)

func init() {
	// Amounts go over the wire as JSON numbers, not quoted strings
	decimal.MarshalJSONWithoutQuotes = true
}

// User represents a user in the system
type User struct {
	ID        string    `db:"id" json:"id"`
	Username  string    `db:"username" json:"username"`
	Email     string    `db:"email" json:"email"`
	Password  string    `db:"password" json:"-"` // Password hash, not returned in JSON
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// Transaction represents a single income or expense event owned by one user
type Transaction struct {
	ID              string          `db:"id" json:"id"`
	Type            string          `db:"type" json:"type"` // "income" or "expense"
	Amount          decimal.Decimal `db:"amount" json:"amount"`
	Category        string          `db:"category" json:"category,omitempty"`
	Date            time.Time       `db:"date" json:"date"`
	UserID          string          `db:"user_id" json:"userId"`
	TransactionType string          `db:"transaction_type" json:"transactionType,omitempty"` // payment method tag
	Note            string          `db:"note" json:"note,omitempty"`
	CreatedAt       time.Time       `db:"created_at" json:"createdAt"`
}

// Session represents a server-side login session (session strategy only).
// The token is an opaque random identifier handed to the client in a cookie.
type Session struct {
	Token     string    `db:"token" json:"-"`
	UserID    string    `db:"user_id" json:"userId"`
	ExpiresAt time.Time `db:"expires_at" json:"expiresAt"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// Expired reports whether the session is past its validity window.
func (s *Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
