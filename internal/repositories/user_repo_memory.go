package repositories

import (
	"sync"

	"gerbang/internal/models"

	"github.com/google/uuid"
)

// MemoryUserRepository is an in-memory implementation of UserRepository.
// It is used when no database DSN is configured and in tests. The mutex
// makes the uniqueness check and the insert atomic, mirroring what the
// database's unique index guarantees.
type MemoryUserRepository struct {
	byEmail map[string]models.User
	byID    map[string]string // id -> email
	mu      sync.RWMutex
}

// NewMemoryUserRepository creates a new instance of MemoryUserRepository.
func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{
		byEmail: make(map[string]models.User),
		byID:    make(map[string]string),
	}
}

// Create adds a new user, enforcing email uniqueness.
func (r *MemoryUserRepository) Create(user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byEmail[user.Email]; exists {
		return ErrDuplicateEmail
	}
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	r.byEmail[user.Email] = *user
	r.byID[user.ID] = user.Email
	return nil
}

// GetByEmail returns a user by their normalized email.
func (r *MemoryUserRepository) GetByEmail(email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.byEmail[email]
	if !ok {
		return nil, ErrNotFound
	}
	return &user, nil
}

// GetByID returns a user by their ID.
func (r *MemoryUserRepository) GetByID(id string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	email, ok := r.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	user := r.byEmail[email]
	return &user, nil
}
