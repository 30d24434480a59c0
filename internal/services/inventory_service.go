package services

import (
	"time"

	"pharmacy/internal/apperr"
	"pharmacy/internal/metrics"
	"pharmacy/internal/models"
	"pharmacy/internal/repositories"

	log "github.com/sirupsen/logrus"
)

// InventoryService adjusts stock levels outside of the order flow.
type InventoryService struct {
	products          repositories.ProductRepository
	lowStockThreshold int
	metrics           *metrics.Metrics
	now               func() time.Time
}

// NewInventoryService creates a new InventoryService. A non-positive
// lowStockThreshold falls back to 10.
func NewInventoryService(products repositories.ProductRepository, lowStockThreshold int, m *metrics.Metrics) *InventoryService {
	if lowStockThreshold <= 0 {
		lowStockThreshold = 10
	}
	return &InventoryService{
		products:          products,
		lowStockThreshold: lowStockThreshold,
		metrics:           m,
		now:               func() time.Time { return time.Now().UTC() },
	}
}

// SetStock overwrites a product's stock.
func (s *InventoryService) SetStock(productID string, stock int) (*models.Product, error) {
	if stock < 0 {
		return nil, apperr.Validation("stock must not be negative")
	}
	product, err := s.products.SetStock(productID, stock)
	if err != nil {
		return nil, err
	}
	s.metrics.IncStockAdjustment("set")
	log.WithFields(log.Fields{"product_id": productID, "stock": stock}).Info("stock set")
	return product, nil
}

// Restock adds quantity to a product's stock in the store.
func (s *InventoryService) Restock(productID string, quantity int) (*models.Product, error) {
	if quantity <= 0 {
		return nil, apperr.Validation("restock quantity must be greater than zero")
	}
	product, err := s.products.AdjustStock(productID, quantity)
	if err != nil {
		return nil, err
	}
	s.metrics.IncStockAdjustment("restock")
	log.WithFields(log.Fields{"product_id": productID, "added": quantity, "stock": product.Stock}).Info("product restocked")
	return product, nil
}

// ListLowStock returns products at or below threshold; zero uses the configured default.
func (s *InventoryService) ListLowStock(threshold int) ([]models.Product, error) {
	if threshold < 0 {
		return nil, apperr.Validation("threshold must not be negative")
	}
	if threshold == 0 {
		threshold = s.lowStockThreshold
	}
	return s.products.ListLowStock(threshold)
}

// ListExpired returns products whose expiry date has passed.
func (s *InventoryService) ListExpired() ([]models.Product, error) {
	return s.products.ListExpired(s.now())
}
