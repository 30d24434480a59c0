package repositories

import (
	"sync"
	"time"

	"pharmacy/internal/apperr"
	"pharmacy/internal/models"

	"github.com/google/uuid"
)

// MockUserRepository is an in-memory implementation of UserRepository.
type MockUserRepository struct {
	users map[string]models.User
	mu    sync.RWMutex
}

// NewMockUserRepository creates a new instance of MockUserRepository.
func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		users: make(map[string]models.User),
	}
}

// Create adds a new user. Username and email must be unique.
func (r *MockUserRepository) Create(user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Username == user.Username || u.Email == user.Email {
			return apperr.Conflict("user %s already exists", user.Username)
		}
	}
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	r.users[user.ID] = cloneUser(*user)
	return nil
}

func (r *MockUserRepository) GetByUsername(username string) (*models.User, error) {
	return r.find(func(u models.User) bool { return u.Username == username }, "user with username %s not found", username)
}

func (r *MockUserRepository) GetByEmail(email string) (*models.User, error) {
	return r.find(func(u models.User) bool { return u.Email == email }, "user with email %s not found", email)
}

func (r *MockUserRepository) GetByID(id string) (*models.User, error) {
	return r.find(func(u models.User) bool { return u.ID == id }, "user with ID %s not found", id)
}

// Update replaces an existing user.
func (r *MockUserRepository) Update(user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[user.ID]; !ok {
		return apperr.NotFound("user with ID %s not found for update", user.ID)
	}
	user.UpdatedAt = time.Now().UTC()
	r.users[user.ID] = cloneUser(*user)
	return nil
}

func (r *MockUserRepository) find(match func(models.User) bool, format, arg string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if match(u) {
			found := cloneUser(u)
			return &found, nil
		}
	}
	return nil, apperr.NotFound(format, arg)
}

func cloneUser(u models.User) models.User {
	u.Wishlist = append([]string(nil), u.Wishlist...)
	return u
}
