package services

import (
	"errors"
	"fmt"

	"pharmacy/internal/apperr"
	"pharmacy/internal/metrics"
	"pharmacy/internal/models"
	"pharmacy/internal/repositories"

	log "github.com/sirupsen/logrus"
)

// CartService manages the per-user cart. Every mutation reloads the product,
// recomputes the whole cart and persists the full document.
type CartService struct {
	carts    repositories.CartRepository
	products repositories.ProductRepository
	metrics  *metrics.Metrics
}

// NewCartService creates a new CartService.
func NewCartService(carts repositories.CartRepository, products repositories.ProductRepository, m *metrics.Metrics) *CartService {
	return &CartService{
		carts:    carts,
		products: products,
		metrics:  m,
	}
}

// CartItemRequest is the body of add and update calls.
type CartItemRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,min=1"`
}

// GetCart returns the caller's cart, or an empty unsaved one.
func (s *CartService) GetCart(p models.Principal) (*models.Cart, error) {
	cart, err := s.carts.GetByUserID(p.UserID)
	if errors.Is(err, apperr.ErrNotFound) {
		return models.NewCart(p.UserID), nil
	}
	if err != nil {
		return nil, err
	}
	cart.Recalculate()
	return cart, nil
}

// AddItem adds quantity of a product, merging into an existing line.
// Stock is checked against the requested quantity only.
func (s *CartService) AddItem(p models.Principal, req CartItemRequest) (*models.Cart, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	product, err := s.stockedProduct(req.ProductID, req.Quantity)
	if err != nil {
		return nil, err
	}

	cart, err := s.carts.GetByUserID(p.UserID)
	if errors.Is(err, apperr.ErrNotFound) {
		cart = models.NewCart(p.UserID)
	} else if err != nil {
		return nil, err
	}

	if idx := cart.FindItem(product.ID); idx >= 0 {
		item := &cart.Items[idx]
		item.Quantity += req.Quantity
		refreshLine(item, product)
	} else {
		item := models.CartItem{ProductID: product.ID, Quantity: req.Quantity}
		refreshLine(&item, product)
		cart.Items = append(cart.Items, item)
	}

	if err := s.save(cart, "add"); err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{"user_id": p.UserID, "product_id": product.ID, "quantity": req.Quantity}).Info("cart item added")
	return cart, nil
}

// UpdateItem overwrites the quantity of an existing line.
func (s *CartService) UpdateItem(p models.Principal, req CartItemRequest) (*models.Cart, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	product, err := s.stockedProduct(req.ProductID, req.Quantity)
	if err != nil {
		return nil, err
	}
	cart, err := s.carts.GetByUserID(p.UserID)
	if err != nil {
		return nil, err
	}
	idx := cart.FindItem(product.ID)
	if idx < 0 {
		return nil, apperr.NotFound("product %s is not in the cart", product.ID)
	}

	cart.Items[idx].Quantity = req.Quantity
	refreshLine(&cart.Items[idx], product)

	if err := s.save(cart, "update"); err != nil {
		return nil, err
	}
	return cart, nil
}

// RemoveItem drops the line for productID.
func (s *CartService) RemoveItem(p models.Principal, productID string) (*models.Cart, error) {
	cart, err := s.carts.GetByUserID(p.UserID)
	if err != nil {
		return nil, err
	}
	idx := cart.FindItem(productID)
	if idx < 0 {
		return nil, apperr.NotFound("product %s is not in the cart", productID)
	}
	cart.Items = append(cart.Items[:idx], cart.Items[idx+1:]...)

	if err := s.save(cart, "remove"); err != nil {
		return nil, err
	}
	return cart, nil
}

// Clear empties the caller's cart.
func (s *CartService) Clear(p models.Principal) (*models.Cart, error) {
	cart, err := s.carts.GetByUserID(p.UserID)
	if err != nil {
		return nil, err
	}
	cart.Items = []models.CartItem{}

	if err := s.save(cart, "clear"); err != nil {
		return nil, err
	}
	return cart, nil
}

func (s *CartService) stockedProduct(productID string, quantity int) (*models.Product, error) {
	product, err := s.products.GetByID(productID)
	if err != nil {
		return nil, err
	}
	if product.Stock < quantity {
		return nil, apperr.Validation("insufficient stock for product %s (requested: %d, available: %d)", product.Name, quantity, product.Stock)
	}
	return product, nil
}

func (s *CartService) save(cart *models.Cart, op string) error {
	cart.Recalculate()
	if err := s.carts.Save(cart); err != nil {
		return fmt.Errorf("failed to save cart: %w", err)
	}
	s.metrics.IncCartMutation(op)
	return nil
}

func refreshLine(item *models.CartItem, product *models.Product) {
	item.Name = product.Name
	item.UnitPrice = product.Price
	item.RequiresPrescription = product.RequiresPrescription
}
