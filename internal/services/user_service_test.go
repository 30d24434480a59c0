package services_test

import (
	"testing"

	"pharmacy/internal/apperr"
	"pharmacy/internal/models"
	"pharmacy/internal/repositories"
	"pharmacy/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedUser(t *testing.T, repos repositories.Set, id, username string) {
	t.Helper()
	require.NoError(t, repos.Users.Create(&models.User{
		ID:       id,
		Username: username,
		Email:    username + "@example.com",
		Role:     models.RoleUser,
		Status:   models.UserStatusActive,
	}))
}

func TestUserService_Wishlist(t *testing.T) {
	repos := repositories.NewMockSet()
	svc := services.NewUserService(repos.Users, repos.Products)
	seedUser(t, repos, customer.UserID, customer.Username)
	product := seedProduct(t, repos, "Paracetamol", 10, 5, false)

	user, err := svc.AddToWishlist(customer, product.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{product.ID}, user.Wishlist)

	user, err = svc.AddToWishlist(customer, product.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{product.ID}, user.Wishlist)

	_, err = svc.AddToWishlist(customer, "missing")
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	products, err := svc.Wishlist(customer)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "Paracetamol", products[0].Name)

	// Products deleted from the catalog drop out of the listing.
	require.NoError(t, repos.Products.Delete(product.ID))
	products, err = svc.Wishlist(customer)
	require.NoError(t, err)
	assert.Empty(t, products)

	user, err = svc.RemoveFromWishlist(customer, product.ID)
	require.NoError(t, err)
	assert.Empty(t, user.Wishlist)

	_, err = svc.RemoveFromWishlist(customer, product.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestUserService_SetStatus(t *testing.T) {
	repos := repositories.NewMockSet()
	svc := services.NewUserService(repos.Users, repos.Products)
	seedUser(t, repos, customer.UserID, customer.Username)

	_, err := svc.SetStatus(customer, customer.UserID, models.UserStatusBlocked)
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	_, err = svc.SetStatus(admin, customer.UserID, "banned")
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = svc.SetStatus(admin, admin.UserID, models.UserStatusInactive)
	assert.ErrorIs(t, err, apperr.ErrInvalidState)

	user, err := svc.SetStatus(admin, customer.UserID, models.UserStatusBlocked)
	require.NoError(t, err)
	assert.Equal(t, models.UserStatusBlocked, user.Status)

	_, err = svc.SetStatus(admin, "missing", models.UserStatusActive)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestUserService_GetUser(t *testing.T) {
	repos := repositories.NewMockSet()
	svc := services.NewUserService(repos.Users, repos.Products)
	seedUser(t, repos, customer.UserID, customer.Username)

	user, err := svc.GetUser(customer, customer.UserID)
	require.NoError(t, err)
	assert.Equal(t, customer.Username, user.Username)

	_, err = svc.GetUser(admin, customer.UserID)
	assert.NoError(t, err)

	stranger := models.Principal{UserID: "user-2", Role: models.RoleUser}
	_, err = svc.GetUser(stranger, customer.UserID)
	assert.ErrorIs(t, err, apperr.ErrForbidden)
}
