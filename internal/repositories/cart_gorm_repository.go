package repositories

import (
	"errors"
	"fmt"

	"pharmacy/internal/apperr"
	"pharmacy/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMCartRepository is a GORM implementation of CartRepository.
type GORMCartRepository struct {
	db *gorm.DB
}

func NewGORMCartRepository(db *gorm.DB) *GORMCartRepository {
	return &GORMCartRepository{db: db}
}

// GetByUserID retrieves the cart owned by userID.
func (r *GORMCartRepository) GetByUserID(userID string) (*models.Cart, error) {
	var cart models.Cart
	if err := r.db.First(&cart, "user_id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("cart for user %s not found", userID)
		}
		return nil, fmt.Errorf("failed to get cart for user %s: %w", userID, err)
	}
	if cart.Items == nil {
		cart.Items = []models.CartItem{}
	}
	return &cart, nil
}

// Save writes the full cart document, inserting it on first use.
func (r *GORMCartRepository) Save(cart *models.Cart) error {
	if cart.ID == "" {
		cart.ID = uuid.New().String()
		if err := r.db.Create(cart).Error; err != nil {
			return fmt.Errorf("failed to create cart: %w", err)
		}
		return nil
	}
	if err := r.db.Save(cart).Error; err != nil {
		return fmt.Errorf("failed to save cart: %w", err)
	}
	return nil
}
