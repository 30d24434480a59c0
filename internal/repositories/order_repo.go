package repositories

import (
	"pharmacy/internal/models"
)

// OrderRepository defines the interface for order data access.
//
// Create and Cancel touch product stock: Create decrements it for every item and
// Cancel gives it back. Each runs as one unit; on error nothing is written.
//
// Writes are conditional on the stored status. Update only applies while the
// stored order is still in status from, and Cancel only while it is pending or
// processing. Otherwise they fail with apperr.InvalidState.
type OrderRepository interface {
	GetAll(filter models.OrderFilter) ([]models.Order, error)
	GetByID(id string) (*models.Order, error)
	Create(order *models.Order) error
	Update(order *models.Order, from models.OrderStatus) error
	Cancel(order *models.Order) error
}
