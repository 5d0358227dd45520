package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"finance-tracker/internal/models"
)

// MemoryRepository is an in-memory Repository used by the test suite. It
// mirrors the PostgreSQL behavior that callers depend on: nil results for
// missing rows, owner-scoped lookups, newest-first ordering.
type MemoryRepository struct {
	mu           sync.RWMutex
	users        map[string]models.User        // keyed by id
	transactions map[string]models.Transaction // keyed by id
	sessions     map[string]models.Session     // keyed by token
}

// NewMemoryRepository creates an empty in-memory repository
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		users:        make(map[string]models.User),
		transactions: make(map[string]models.Transaction),
		sessions:     make(map[string]models.Session),
	}
}

// User repository methods
func (r *MemoryRepository) CreateUser(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	r.users[user.ID] = *user
	return nil
}

func (r *MemoryRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, user := range r.users {
		if user.Email == email {
			u := user
			return &u, nil
		}
	}
	return nil, nil
}

func (r *MemoryRepository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, user := range r.users {
		if user.Username == username {
			u := user
			return &u, nil
		}
	}
	return nil, nil
}

func (r *MemoryRepository) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if user, ok := r.users[id]; ok {
		return &user, nil
	}
	return nil, nil
}

func (r *MemoryRepository) GetAllUsers(ctx context.Context) ([]models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]models.User, 0, len(r.users))
	for _, user := range r.users {
		users = append(users, user)
	}
	sort.Slice(users, func(i, j int) bool {
		return users[i].CreatedAt.After(users[j].CreatedAt)
	})
	return users, nil
}

// Transaction repository methods
func (r *MemoryRepository) CreateTransaction(ctx context.Context, tx *models.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if tx.ID == "" {
		tx.ID = uuid.New().String()
	}

	now := time.Now().UTC()
	if tx.Date.IsZero() {
		tx.Date = now
	}
	tx.CreatedAt = now

	r.transactions[tx.ID] = *tx
	return nil
}

func (r *MemoryRepository) GetUserTransactions(ctx context.Context, userID string) ([]models.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	transactions := make([]models.Transaction, 0)
	for _, tx := range r.transactions {
		if tx.UserID == userID {
			transactions = append(transactions, tx)
		}
	}
	sortNewestFirst(transactions)
	return transactions, nil
}

func (r *MemoryRepository) GetTransactionByIDAndOwner(ctx context.Context, id, userID string) (*models.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if tx, ok := r.transactions[id]; ok && tx.UserID == userID {
		return &tx, nil
	}
	return nil, nil
}

func (r *MemoryRepository) UpdateTransaction(ctx context.Context, tx *models.Transaction) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.transactions[tx.ID]
	if !ok || existing.UserID != tx.UserID {
		return false, nil
	}

	existing.Type = tx.Type
	existing.Amount = tx.Amount
	existing.Category = tx.Category
	existing.Date = tx.Date
	existing.TransactionType = tx.TransactionType
	existing.Note = tx.Note
	r.transactions[tx.ID] = existing
	return true, nil
}

func (r *MemoryRepository) DeleteTransaction(ctx context.Context, id, userID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if tx, ok := r.transactions[id]; ok && tx.UserID == userID {
		delete(r.transactions, id)
		return true, nil
	}
	return false, nil
}

func (r *MemoryRepository) GetAllTransactions(ctx context.Context) ([]models.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	transactions := make([]models.Transaction, 0, len(r.transactions))
	for _, tx := range r.transactions {
		transactions = append(transactions, tx)
	}
	sortNewestFirst(transactions)
	return transactions, nil
}

// Session repository methods
func (r *MemoryRepository) CreateSession(ctx context.Context, session *models.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now().UTC()
	}
	r.sessions[session.Token] = *session
	return nil
}

func (r *MemoryRepository) GetSession(ctx context.Context, token string) (*models.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if session, ok := r.sessions[token]; ok {
		return &session, nil
	}
	return nil, nil
}

func (r *MemoryRepository) DeleteSession(ctx context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.sessions, token)
	return nil
}

func (r *MemoryRepository) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var removed int64
	for token, session := range r.sessions {
		if session.Expired(now) {
			delete(r.sessions, token)
			removed++
		}
	}
	return removed, nil
}

// CountTransactions reports how many transactions are stored. The tests use
// it to verify that rejected requests performed no mutation.
func (r *MemoryRepository) CountTransactions() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.transactions)
}

func sortNewestFirst(transactions []models.Transaction) {
	sort.Slice(transactions, func(i, j int) bool {
		if !transactions[i].Date.Equal(transactions[j].Date) {
			return transactions[i].Date.After(transactions[j].Date)
		}
		return transactions[i].CreatedAt.After(transactions[j].CreatedAt)
	})
}
