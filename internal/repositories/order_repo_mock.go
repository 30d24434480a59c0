package repositories

import (
	"sort"
	"sync"
	"time"

	"pharmacy/internal/apperr"
	"pharmacy/internal/models"

	"github.com/google/uuid"
)

// MockOrderRepository is an in-memory implementation of OrderRepository.
// Stock changes go through the product store it was created with.
type MockOrderRepository struct {
	orders   map[string]models.Order
	products *MockProductRepository
	mu       sync.RWMutex
}

// NewMockOrderRepository creates a new instance of MockOrderRepository.
func NewMockOrderRepository(products *MockProductRepository) *MockOrderRepository {
	return &MockOrderRepository{
		orders:   make(map[string]models.Order),
		products: products,
	}
}

// GetAll returns the orders matching filter, newest first.
func (r *MockOrderRepository) GetAll(filter models.OrderFilter) ([]models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	orderList := make([]models.Order, 0, len(r.orders))
	for _, order := range r.orders {
		if filter.UserID != "" && order.UserID != filter.UserID {
			continue
		}
		if filter.Status != "" && order.Status != filter.Status {
			continue
		}
		orderList = append(orderList, cloneOrder(order))
	}
	sort.Slice(orderList, func(i, j int) bool { return orderList[i].CreatedAt.After(orderList[j].CreatedAt) })
	return orderList, nil
}

// GetByID returns an order by its ID.
func (r *MockOrderRepository) GetByID(id string) (*models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.orders[id]
	if !ok {
		return nil, apperr.NotFound("order with ID %s not found", id)
	}
	order = cloneOrder(order)
	return &order, nil
}

// Create consumes stock and stores the order.
func (r *MockOrderRepository) Create(order *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	deltas := order.StockDeltas()
	for id := range deltas {
		deltas[id] = -deltas[id]
	}
	if err := r.products.applyStockDeltas(deltas, false); err != nil {
		return err
	}

	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	order.CreatedAt = now
	order.UpdatedAt = now
	r.orders[order.ID] = cloneOrder(*order)
	return nil
}

// Update replaces an existing order still in status from.
func (r *MockOrderRepository) Update(order *models.Order, from models.OrderStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.orders[order.ID]
	if !ok {
		return apperr.NotFound("order with ID %s not found for update", order.ID)
	}
	if stored.Status != from {
		return apperr.InvalidState("order %s is %s: expected %s", order.ID, stored.Status, from)
	}
	order.UpdatedAt = time.Now().UTC()
	r.orders[order.ID] = cloneOrder(*order)
	return nil
}

// Cancel stores the order and returns its items to stock.
func (r *MockOrderRepository) Cancel(order *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.orders[order.ID]
	if !ok {
		return apperr.NotFound("order with ID %s not found for update", order.ID)
	}
	if !stored.Status.Editable() {
		return apperr.InvalidState("order %s is %s: it can no longer be cancelled", order.ID, stored.Status)
	}
	if err := r.products.applyStockDeltas(order.StockDeltas(), true); err != nil {
		return err
	}
	order.UpdatedAt = time.Now().UTC()
	r.orders[order.ID] = cloneOrder(*order)
	return nil
}

func cloneOrder(o models.Order) models.Order {
	o.Items = append([]models.OrderItem(nil), o.Items...)
	return o
}
