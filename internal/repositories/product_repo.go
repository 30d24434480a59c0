package repositories

import (
	"time"

	"pharmacy/internal/models"
)

// ProductRepository defines the interface for product data access.
type ProductRepository interface {
	GetAll(filter models.ProductFilter) ([]models.Product, error)
	GetByID(id string) (*models.Product, error)
	Create(product *models.Product) error
	Update(product *models.Product) error
	Delete(id string) error
	// AdjustStock adds delta to the stock in place; stock never goes below zero.
	AdjustStock(id string, delta int) (*models.Product, error)
	// SetStock overwrites only the stock column.
	SetStock(id string, stock int) (*models.Product, error)
	ListLowStock(threshold int) ([]models.Product, error)
	ListExpired(now time.Time) ([]models.Product, error)
}
