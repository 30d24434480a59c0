package repositories

import (
	"errors"
	"fmt"
	"sort"

	"pharmacy/internal/apperr"
	"pharmacy/internal/models"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// GORMOrderRepository is a GORM implementation of OrderRepository.
type GORMOrderRepository struct {
	db *gorm.DB
}

func NewGORMOrderRepository(db *gorm.DB) *GORMOrderRepository {
	return &GORMOrderRepository{db: db}
}

// GetAll returns the orders matching filter, newest first.
func (r *GORMOrderRepository) GetAll(filter models.OrderFilter) ([]models.Order, error) {
	q := r.db.Model(&models.Order{})
	if filter.UserID != "" {
		q = q.Where("user_id = ?", filter.UserID)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	var orders []models.Order
	if err := q.Order("created_at desc").Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to get orders: %w", err)
	}
	return orders, nil
}

func (r *GORMOrderRepository) GetByID(id string) (*models.Order, error) {
	var order models.Order
	if err := r.db.First(&order, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("order with ID %s not found", id)
		}
		return nil, fmt.Errorf("failed to get order by ID %s: %w", id, err)
	}
	return &order, nil
}

// Create decrements stock for every item and inserts the order in one transaction.
func (r *GORMOrderRepository) Create(order *models.Order) error {
	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		deltas := order.StockDeltas()
		for _, productID := range sortedKeys(deltas) {
			if err := consumeStock(tx, productID, deltas[productID]); err != nil {
				return err
			}
		}
		if err := tx.Create(order).Error; err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}
		return nil
	})
}

// Update overwrites an existing order without touching stock. The write only
// applies while the stored status is still from.
func (r *GORMOrderRepository) Update(order *models.Order, from models.OrderStatus) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(order).Where("status = ?", from).Select("*").Omit("created_at").Updates(order)
		if res.Error != nil {
			return fmt.Errorf("failed to update order %s: %w", order.ID, res.Error)
		}
		if res.RowsAffected == 0 {
			return staleOrder(tx, order.ID, "expected "+string(from))
		}
		return nil
	})
}

// Cancel saves the order and returns its items to stock in one transaction.
// Only a pending or processing order can be cancelled, so stock comes back once.
// Products deleted since the order was placed are skipped.
func (r *GORMOrderRepository) Cancel(order *models.Order) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(order).
			Where("status IN ?", []models.OrderStatus{models.OrderStatusPending, models.OrderStatusProcessing}).
			Select("*").Omit("created_at").Updates(order)
		if res.Error != nil {
			return fmt.Errorf("failed to cancel order %s: %w", order.ID, res.Error)
		}
		if res.RowsAffected == 0 {
			return staleOrder(tx, order.ID, "it can no longer be cancelled")
		}
		deltas := order.StockDeltas()
		for _, productID := range sortedKeys(deltas) {
			res := tx.Unscoped().Model(&models.Product{}).
				Where("id = ?", productID).
				UpdateColumn("stock", gorm.Expr("stock + ?", deltas[productID]))
			if res.Error != nil {
				return fmt.Errorf("failed to restore stock for product %s: %w", productID, res.Error)
			}
			if res.RowsAffected == 0 {
				log.WithFields(log.Fields{"order_id": order.ID, "product_id": productID}).
					Warn("product missing while restoring stock")
			}
		}
		return nil
	})
}

// staleOrder explains why a conditional write matched no row.
func staleOrder(tx *gorm.DB, id, reason string) error {
	var current models.Order
	if err := tx.Select("id", "status").First(&current, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("order with ID %s not found for update", id)
		}
		return fmt.Errorf("failed to get order by ID %s: %w", id, err)
	}
	return apperr.InvalidState("order %s is %s: %s", id, current.Status, reason)
}

func consumeStock(tx *gorm.DB, productID string, qty int) error {
	res := tx.Model(&models.Product{}).
		Where("id = ? AND stock >= ?", productID, qty).
		UpdateColumn("stock", gorm.Expr("stock - ?", qty))
	if res.Error != nil {
		return fmt.Errorf("failed to consume stock for product %s: %w", productID, res.Error)
	}
	if res.RowsAffected > 0 {
		return nil
	}

	var product models.Product
	if err := tx.First(&product, "id = ?", productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("product with ID %s not found", productID)
		}
		return fmt.Errorf("failed to get product by ID %s: %w", productID, err)
	}
	return apperr.Validation("insufficient stock for product %s (requested: %d, available: %d)", product.Name, qty, product.Stock)
}

// sortedKeys gives a stable row-locking order across concurrent transactions.
func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
