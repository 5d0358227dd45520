package models

import "github.com/shopspring/decimal"

// Request models
type SignUpRequest struct {
	Username string `json:"username" binding:"required,min=3,max=30"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6,max=128"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type CreateTransactionRequest struct {
	Type            string          `json:"type" binding:"required,oneof=income expense"`
	Amount          decimal.Decimal `json:"amount"`
	Category        string          `json:"category"`
	Date            string          `json:"date"` // "2006-01-02" or RFC 3339; defaults to now
	TransactionType string          `json:"transactionType"`
	Note            string          `json:"note"`
}

// UpdateTransactionRequest carries only the mutable fields. Nil pointers mean
// "leave unchanged"; the owner is never part of this request.
type UpdateTransactionRequest struct {
	Type            *string          `json:"type" binding:"omitempty,oneof=income expense"`
	Amount          *decimal.Decimal `json:"amount"`
	Category        *string          `json:"category"`
	Date            *string          `json:"date"`
	TransactionType *string          `json:"transactionType"`
	Note            *string          `json:"note"`
}

// Response models
type AuthResponse struct {
	Status    string `json:"status"`
	User      *User  `json:"user,omitempty"`
	Token     string `json:"token,omitempty"`
	ExpiresIn int    `json:"expiresIn,omitempty"`
}

type ProfileResponse struct {
	Status string `json:"status"`
	User   *User  `json:"user"`
}

type TransactionResponse struct {
	Status      string       `json:"status"`
	Transaction *Transaction `json:"transaction,omitempty"`
}

type TransactionListResponse struct {
	Status       string        `json:"status"`
	Transactions []Transaction `json:"transactions"`
}

type UserListResponse struct {
	Status string `json:"status"`
	Users  []User `json:"users"`
}

// SummaryResponse reports the caller's totals, optionally filtered to one month.
type SummaryResponse struct {
	Status            string                     `json:"status"`
	Month             string                     `json:"month,omitempty"`
	TotalIncome       decimal.Decimal            `json:"totalIncome"`
	TotalExpense      decimal.Decimal            `json:"totalExpense"`
	Balance           decimal.Decimal            `json:"balance"`
	ExpenseByCategory map[string]decimal.Decimal `json:"expenseByCategory"`
}

type MessageResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type ErrorResponse struct {
	Status  string `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}
