package repositories

import (
	"sync"
	"time"

	"pharmacy/internal/apperr"
	"pharmacy/internal/models"

	"github.com/google/uuid"
)

// MockCartRepository is an in-memory implementation of CartRepository keyed by user.
type MockCartRepository struct {
	carts map[string]models.Cart
	mu    sync.RWMutex
}

func NewMockCartRepository() *MockCartRepository {
	return &MockCartRepository{
		carts: make(map[string]models.Cart),
	}
}

func (r *MockCartRepository) GetByUserID(userID string) (*models.Cart, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cart, ok := r.carts[userID]
	if !ok {
		return nil, apperr.NotFound("cart for user %s not found", userID)
	}
	cart = cloneCart(cart)
	return &cart, nil
}

// Save replaces the stored cart. Last write wins.
func (r *MockCartRepository) Save(cart *models.Cart) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	if cart.ID == "" {
		cart.ID = uuid.New().String()
		cart.CreatedAt = now
	}
	cart.UpdatedAt = now
	r.carts[cart.UserID] = cloneCart(*cart)
	return nil
}

func cloneCart(c models.Cart) models.Cart {
	c.Items = append([]models.CartItem{}, c.Items...)
	return c
}
