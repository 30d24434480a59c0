package repositories

import "pharmacy/internal/models"

// CartRepository persists whole cart documents. There are no partial updates.
type CartRepository interface {
	GetByUserID(userID string) (*models.Cart, error)
	Save(cart *models.Cart) error
}
