package services

import (
	"pharmacy/internal/apperr"
	"pharmacy/internal/models"
	"pharmacy/internal/repositories"

	log "github.com/sirupsen/logrus"
)

// UserService manages user profiles, wishlists and account status.
type UserService struct {
	users    repositories.UserRepository
	products repositories.ProductRepository
}

func NewUserService(users repositories.UserRepository, products repositories.ProductRepository) *UserService {
	return &UserService{users: users, products: products}
}

// GetUser returns a user visible to the caller.
func (s *UserService) GetUser(p models.Principal, id string) (*models.User, error) {
	if !p.IsAdmin() && !p.Owns(id) {
		return nil, apperr.Forbidden("not allowed to view user %s", id)
	}
	return s.users.GetByID(id)
}

// Wishlist returns the products on the caller's wishlist. Products that have
// since been removed from the catalog are skipped.
func (s *UserService) Wishlist(p models.Principal) ([]models.Product, error) {
	user, err := s.users.GetByID(p.UserID)
	if err != nil {
		return nil, err
	}
	products := make([]models.Product, 0, len(user.Wishlist))
	for _, id := range user.Wishlist {
		product, err := s.products.GetByID(id)
		if apperr.KindOf(err) == apperr.KindNotFound {
			continue
		}
		if err != nil {
			return nil, err
		}
		products = append(products, *product)
	}
	return products, nil
}

// AddToWishlist adds productID to the caller's wishlist. Adding twice is a no-op.
func (s *UserService) AddToWishlist(p models.Principal, productID string) (*models.User, error) {
	if _, err := s.products.GetByID(productID); err != nil {
		return nil, err
	}
	user, err := s.users.GetByID(p.UserID)
	if err != nil {
		return nil, err
	}
	for _, id := range user.Wishlist {
		if id == productID {
			return user, nil
		}
	}
	user.Wishlist = append(user.Wishlist, productID)
	if err := s.users.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}

// RemoveFromWishlist drops productID from the caller's wishlist.
func (s *UserService) RemoveFromWishlist(p models.Principal, productID string) (*models.User, error) {
	user, err := s.users.GetByID(p.UserID)
	if err != nil {
		return nil, err
	}
	kept := make([]string, 0, len(user.Wishlist))
	for _, id := range user.Wishlist {
		if id != productID {
			kept = append(kept, id)
		}
	}
	if len(kept) == len(user.Wishlist) {
		return nil, apperr.NotFound("product %s is not in the wishlist", productID)
	}
	user.Wishlist = kept
	if err := s.users.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}

// SetStatus activates, deactivates or blocks an account. Admin only.
func (s *UserService) SetStatus(p models.Principal, id string, status models.UserStatus) (*models.User, error) {
	if !p.IsAdmin() {
		return nil, apperr.Forbidden("admin access required")
	}
	if !status.Valid() {
		return nil, apperr.Validation("invalid user status: %s", status)
	}
	if p.Owns(id) && status != models.UserStatusActive {
		return nil, apperr.InvalidState("admins cannot deactivate their own account")
	}
	user, err := s.users.GetByID(id)
	if err != nil {
		return nil, err
	}
	user.Status = status
	if err := s.users.Update(user); err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{"user_id": id, "status": status, "by": p.UserID}).Info("user status changed")
	return user, nil
}
