package repositories

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"pharmacy/internal/apperr"
	"pharmacy/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMProductRepository is a GORM implementation of ProductRepository.
type GORMProductRepository struct {
	db *gorm.DB
}

// NewGORMProductRepository creates a new instance of GORMProductRepository.
func NewGORMProductRepository(db *gorm.DB) *GORMProductRepository {
	return &GORMProductRepository{
		db: db,
	}
}

// GetAll retrieves the products matching filter, ordered by name.
func (r *GORMProductRepository) GetAll(filter models.ProductFilter) ([]models.Product, error) {
	q := r.db.Model(&models.Product{})
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	if filter.Search != "" {
		q = q.Where(`LOWER(name) LIKE ? ESCAPE '\'`, containsPattern(filter.Search))
	}
	if filter.RequiresPrescription != nil {
		q = q.Where("requires_prescription = ?", *filter.RequiresPrescription)
	}

	var products []models.Product
	if err := q.Order("name asc").Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to get products: %w", err)
	}
	return products, nil
}

// GetByID retrieves a single product by its ID from the database.
func (r *GORMProductRepository) GetByID(id string) (*models.Product, error) {
	var product models.Product
	if err := r.db.First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("product with ID %s not found", id)
		}
		return nil, fmt.Errorf("failed to get product by ID %s: %w", id, err)
	}
	return &product, nil
}

// Create creates a new product in the database.
func (r *GORMProductRepository) Create(product *models.Product) error {
	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	if err := r.db.Create(product).Error; err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

// Update overwrites an existing product.
func (r *GORMProductRepository) Update(product *models.Product) error {
	// Save inserts when nothing matched, so existence is checked first.
	var existing models.Product
	if err := r.db.Select("id", "created_at").First(&existing, "id = ?", product.ID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("product with ID %s not found for update", product.ID)
		}
		return fmt.Errorf("failed to update product: %w", err)
	}
	product.CreatedAt = existing.CreatedAt
	if err := r.db.Save(product).Error; err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}
	return nil
}

// Delete soft-deletes a product by its ID.
func (r *GORMProductRepository) Delete(id string) error {
	res := r.db.Delete(&models.Product{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete product: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("product with ID %s not found for deletion", id)
	}
	return nil
}

// AdjustStock adds delta to the stored stock in a single UPDATE.
func (r *GORMProductRepository) AdjustStock(id string, delta int) (*models.Product, error) {
	var product models.Product
	err := r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Product{}).
			Where("id = ? AND stock + ? >= 0", id, delta).
			Update("stock", gorm.Expr("stock + ?", delta))
		if res.Error != nil {
			return fmt.Errorf("failed to adjust stock for product %s: %w", id, res.Error)
		}
		if err := tx.First(&product, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("product with ID %s not found", id)
			}
			return fmt.Errorf("failed to get product by ID %s: %w", id, err)
		}
		if res.RowsAffected == 0 {
			return apperr.Validation("insufficient stock for product %s (requested: %d, available: %d)", product.Name, -delta, product.Stock)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// SetStock overwrites the stock column and nothing else.
func (r *GORMProductRepository) SetStock(id string, stock int) (*models.Product, error) {
	var product models.Product
	err := r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Product{}).Where("id = ?", id).Update("stock", stock)
		if res.Error != nil {
			return fmt.Errorf("failed to set stock for product %s: %w", id, res.Error)
		}
		if res.RowsAffected == 0 {
			return apperr.NotFound("product with ID %s not found", id)
		}
		if err := tx.First(&product, "id = ?", id).Error; err != nil {
			return fmt.Errorf("failed to get product by ID %s: %w", id, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// ListLowStock returns products whose stock is at or below threshold, lowest first.
func (r *GORMProductRepository) ListLowStock(threshold int) ([]models.Product, error) {
	var products []models.Product
	if err := r.db.Where("stock <= ?", threshold).Order("stock asc, name asc").Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to list low stock products: %w", err)
	}
	return products, nil
}

// ListExpired returns products whose expiry date is at or before now.
func (r *GORMProductRepository) ListExpired(now time.Time) ([]models.Product, error) {
	var products []models.Product
	err := r.db.Where("expiry_date IS NOT NULL AND expiry_date <= ?", now).
		Order("expiry_date asc").
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list expired products: %w", err)
	}
	return products, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds a lower-cased LIKE pattern that matches s literally.
// Queries using it must declare ESCAPE '\'.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(s)) + "%"
}
