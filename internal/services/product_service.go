package services

import (
	"pharmacy/internal/apperr"
	"pharmacy/internal/models"
	"pharmacy/internal/repositories"
)

// ProductService handles business logic related to products.
type ProductService struct {
	repo repositories.ProductRepository
}

// NewProductService creates a new ProductService.
func NewProductService(repo repositories.ProductRepository) *ProductService {
	return &ProductService{
		repo: repo,
	}
}

// GetAllProducts retrieves the products matching filter.
func (s *ProductService) GetAllProducts(filter models.ProductFilter) ([]models.Product, error) {
	return s.repo.GetAll(filter)
}

// GetProductByID retrieves a single product by its ID.
func (s *ProductService) GetProductByID(id string) (*models.Product, error) {
	return s.repo.GetByID(id)
}

// CreateProduct validates and stores a new product.
func (s *ProductService) CreateProduct(p models.Principal, product *models.Product) error {
	if !p.IsAdmin() {
		return apperr.Forbidden("admin access required")
	}
	if err := validateProduct(product); err != nil {
		return err
	}
	return s.repo.Create(product)
}

// UpdateProduct validates and overwrites an existing product.
func (s *ProductService) UpdateProduct(p models.Principal, product *models.Product) error {
	if !p.IsAdmin() {
		return apperr.Forbidden("admin access required")
	}
	if err := validateProduct(product); err != nil {
		return err
	}
	return s.repo.Update(product)
}

// DeleteProduct deletes a product by its ID.
func (s *ProductService) DeleteProduct(p models.Principal, id string) error {
	if !p.IsAdmin() {
		return apperr.Forbidden("admin access required")
	}
	return s.repo.Delete(id)
}

func validateProduct(product *models.Product) error {
	if err := validateStruct(product); err != nil {
		return err
	}
	if product.Price.IsNegative() {
		return apperr.Validation("price must not be negative")
	}
	return nil
}
