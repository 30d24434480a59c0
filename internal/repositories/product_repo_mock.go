package repositories

import (
	"sort"
	"strings"
	"sync"
	"time"

	"pharmacy/internal/apperr"
	"pharmacy/internal/models"

	"github.com/google/uuid"
)

// MockProductRepository is an in-memory implementation of ProductRepository.
type MockProductRepository struct {
	products map[string]models.Product
	mu       sync.RWMutex
}

// NewMockProductRepository creates a new instance of MockProductRepository.
func NewMockProductRepository() *MockProductRepository {
	return &MockProductRepository{
		products: make(map[string]models.Product),
	}
}

// GetAll returns the products matching filter, ordered by name.
func (r *MockProductRepository) GetAll(filter models.ProductFilter) ([]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	search := strings.ToLower(filter.Search)
	productList := make([]models.Product, 0, len(r.products))
	for _, p := range r.products {
		if filter.Category != "" && p.Category != filter.Category {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(p.Name), search) {
			continue
		}
		if filter.RequiresPrescription != nil && p.RequiresPrescription != *filter.RequiresPrescription {
			continue
		}
		productList = append(productList, p)
	}
	sort.Slice(productList, func(i, j int) bool { return productList[i].Name < productList[j].Name })
	return productList, nil
}

// GetByID returns a product by its ID.
func (r *MockProductRepository) GetByID(id string) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, ok := r.products[id]
	if !ok {
		return nil, apperr.NotFound("product with ID %s not found", id)
	}
	return &product, nil
}

// Create adds a new product.
func (r *MockProductRepository) Create(product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	product.CreatedAt = now
	product.UpdatedAt = now
	r.products[product.ID] = *product
	return nil
}

// Update modifies an existing product.
func (r *MockProductRepository) Update(product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.products[product.ID]
	if !ok {
		return apperr.NotFound("product with ID %s not found for update", product.ID)
	}
	product.CreatedAt = existing.CreatedAt
	product.UpdatedAt = time.Now().UTC()
	r.products[product.ID] = *product
	return nil
}

// Delete removes a product by its ID.
func (r *MockProductRepository) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.products[id]
	if !ok {
		return apperr.NotFound("product with ID %s not found for deletion", id)
	}
	delete(r.products, id)
	return nil
}

// AdjustStock adds delta to a product's stock under the store lock.
func (r *MockProductRepository) AdjustStock(id string, delta int) (*models.Product, error) {
	if err := r.applyStockDeltas(map[string]int{id: delta}, false); err != nil {
		return nil, err
	}
	return r.GetByID(id)
}

// SetStock overwrites a product's stock, leaving other fields alone.
func (r *MockProductRepository) SetStock(id string, stock int) (*models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.products[id]
	if !ok {
		return nil, apperr.NotFound("product with ID %s not found", id)
	}
	p.Stock = stock
	p.UpdatedAt = time.Now().UTC()
	r.products[id] = p
	return &p, nil
}

// ListLowStock returns products whose stock is at or below threshold, lowest first.
func (r *MockProductRepository) ListLowStock(threshold int) ([]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var low []models.Product
	for _, p := range r.products {
		if p.Stock <= threshold {
			low = append(low, p)
		}
	}
	sort.Slice(low, func(i, j int) bool {
		if low[i].Stock != low[j].Stock {
			return low[i].Stock < low[j].Stock
		}
		return low[i].Name < low[j].Name
	})
	return low, nil
}

// ListExpired returns products whose expiry date is at or before now.
func (r *MockProductRepository) ListExpired(now time.Time) ([]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var expired []models.Product
	for _, p := range r.products {
		if p.Expired(now) {
			expired = append(expired, p)
		}
	}
	sort.Slice(expired, func(i, j int) bool { return expired[i].ExpiryDate.Before(*expired[j].ExpiryDate) })
	return expired, nil
}

// applyStockDeltas adds every delta to the matching product's stock. All deltas
// are checked before any is applied. Missing products are skipped when
// skipMissing is set.
func (r *MockProductRepository) applyStockDeltas(deltas map[string]int, skipMissing bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, delta := range deltas {
		p, ok := r.products[id]
		if !ok {
			if skipMissing {
				continue
			}
			return apperr.NotFound("product with ID %s not found", id)
		}
		if p.Stock+delta < 0 {
			return apperr.Validation("insufficient stock for product %s (requested: %d, available: %d)", p.Name, -delta, p.Stock)
		}
	}
	for id, delta := range deltas {
		p, ok := r.products[id]
		if !ok {
			continue
		}
		p.Stock += delta
		r.products[id] = p
	}
	return nil
}
