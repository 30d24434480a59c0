package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"pharmacy/internal/apperr"
	"pharmacy/internal/metrics"
	"pharmacy/internal/models"
	"pharmacy/internal/repositories"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

const estimatedDeliveryLead = 5 * 24 * time.Hour

// OrderPricing holds the delivery charge rule applied when a caller does not
// supply one.
type OrderPricing struct {
	DeliveryCharge   decimal.Decimal
	FreeDeliveryOver decimal.Decimal // zero disables free delivery
}

func (p OrderPricing) deliveryChargeFor(subTotal decimal.Decimal) decimal.Decimal {
	if p.FreeDeliveryOver.IsPositive() && subTotal.GreaterThanOrEqual(p.FreeDeliveryOver) {
		return decimal.Zero
	}
	return p.DeliveryCharge
}

// OrderService handles business logic related to orders.
type OrderService struct {
	orders        repositories.OrderRepository
	products      repositories.ProductRepository
	carts         repositories.CartRepository
	prescriptions repositories.PrescriptionRepository
	notifier      *Notifier
	metrics       *metrics.Metrics
	pricing       OrderPricing
	now           func() time.Time
}

// NewOrderService creates a new OrderService.
func NewOrderService(
	orders repositories.OrderRepository,
	products repositories.ProductRepository,
	carts repositories.CartRepository,
	prescriptions repositories.PrescriptionRepository,
	notifier *Notifier,
	m *metrics.Metrics,
	pricing OrderPricing,
) *OrderService {
	return &OrderService{
		orders:        orders,
		products:      products,
		carts:         carts,
		prescriptions: prescriptions,
		notifier:      notifier,
		metrics:       m,
		pricing:       pricing,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

type OrderItemRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,min=1"`
}

// CreateOrderRequest places an order from explicit items. Total, when given,
// is stored as submitted.
type CreateOrderRequest struct {
	Items           []OrderItemRequest     `json:"items" validate:"required,min=1,dive"`
	ShippingAddress models.ShippingAddress `json:"shipping_address"`
	PaymentMethod   models.PaymentMethod   `json:"payment_method" validate:"required"`
	DeliveryCharge  *decimal.Decimal       `json:"delivery_charge,omitempty"`
	Total           *decimal.Decimal       `json:"total,omitempty"`
	PrescriptionID  *string                `json:"prescription_id,omitempty"`
	Notes           string                 `json:"notes" validate:"max=500"`
}

// CheckoutRequest places an order from the caller's cart.
type CheckoutRequest struct {
	ShippingAddress models.ShippingAddress `json:"shipping_address"`
	PaymentMethod   models.PaymentMethod   `json:"payment_method" validate:"required"`
	PrescriptionID  *string                `json:"prescription_id,omitempty"`
	Notes           string                 `json:"notes" validate:"max=500"`
}

// OrderPatch lists the fields an owner may change while the order is editable.
type OrderPatch struct {
	ShippingAddress *models.ShippingAddress `json:"shipping_address,omitempty"`
	PaymentMethod   *models.PaymentMethod   `json:"payment_method,omitempty"`
	Notes           *string                 `json:"notes,omitempty"`
}

type StatusUpdateRequest struct {
	Status   models.OrderStatus `json:"status"`
	Tracking string             `json:"tracking"`
}

// OrderEvent is the payload of order.* events.
type OrderEvent struct {
	OrderID       string               `json:"order_id"`
	UserID        string               `json:"user_id"`
	Status        models.OrderStatus   `json:"status"`
	PaymentStatus models.PaymentStatus `json:"payment_status"`
	Total         decimal.Decimal      `json:"total"`
}

func orderEvent(o *models.Order) OrderEvent {
	return OrderEvent{OrderID: o.ID, UserID: o.UserID, Status: o.Status, PaymentStatus: o.PaymentStatus, Total: o.Total}
}

// CreateOrder snapshots catalog prices for the requested items and places the order.
func (s *OrderService) CreateOrder(p models.Principal, req CreateOrderRequest) (*models.Order, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	if !req.PaymentMethod.Valid() {
		return nil, apperr.Validation("invalid payment method: %s", req.PaymentMethod)
	}

	var (
		items      = make([]models.OrderItem, 0, len(req.Items))
		subTotal   = decimal.Zero
		requiresRx []string
	)
	for _, it := range req.Items {
		product, err := s.products.GetByID(it.ProductID)
		if err != nil {
			return nil, err
		}
		item := models.OrderItem{ProductID: product.ID, Name: product.Name, Quantity: it.Quantity, Price: product.Price}
		items = append(items, item)
		subTotal = subTotal.Add(item.LineTotal())
		if product.RequiresPrescription {
			requiresRx = append(requiresRx, product.ID)
		}
	}

	delivery := s.pricing.deliveryChargeFor(subTotal)
	if req.DeliveryCharge != nil {
		if req.DeliveryCharge.IsNegative() {
			return nil, apperr.Validation("delivery charge must not be negative")
		}
		delivery = *req.DeliveryCharge
	}
	total := subTotal.Add(delivery)
	if req.Total != nil {
		if req.Total.IsNegative() {
			return nil, apperr.Validation("total must not be negative")
		}
		total = *req.Total
	}

	order := &models.Order{
		UserID:          p.UserID,
		Items:           items,
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   req.PaymentMethod,
		SubTotal:        subTotal,
		DeliveryCharge:  delivery,
		Total:           total,
		Notes:           req.Notes,
	}
	if err := s.place(p, order, requiresRx, req.PrescriptionID); err != nil {
		return nil, err
	}
	return order, nil
}

// Checkout places an order from the caller's cart and empties the cart.
func (s *OrderService) Checkout(p models.Principal, req CheckoutRequest) (*models.Order, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	if !req.PaymentMethod.Valid() {
		return nil, apperr.Validation("invalid payment method: %s", req.PaymentMethod)
	}

	cart, err := s.carts.GetByUserID(p.UserID)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, apperr.Validation("cart is empty")
	}
	if err != nil {
		return nil, err
	}
	cart.Recalculate()
	if len(cart.Items) == 0 {
		return nil, apperr.Validation("cart is empty")
	}

	items := make([]models.OrderItem, 0, len(cart.Items))
	var requiresRx []string
	for _, line := range cart.Items {
		items = append(items, models.OrderItem{ProductID: line.ProductID, Name: line.Name, Quantity: line.Quantity, Price: line.UnitPrice})
		if line.RequiresPrescription {
			requiresRx = append(requiresRx, line.ProductID)
		}
	}
	delivery := s.pricing.deliveryChargeFor(cart.TotalAmount)
	order := &models.Order{
		UserID:          p.UserID,
		Items:           items,
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   req.PaymentMethod,
		SubTotal:        cart.TotalAmount,
		DeliveryCharge:  delivery,
		Total:           cart.TotalAmount.Add(delivery),
		Notes:           req.Notes,
	}
	if err := s.place(p, order, requiresRx, req.PrescriptionID); err != nil {
		return nil, err
	}

	cart.Items = []models.CartItem{}
	cart.Recalculate()
	if err := s.carts.Save(cart); err != nil {
		// The order stands; a stale cart is only an inconvenience.
		log.WithError(err).WithField("user_id", p.UserID).Error("failed to clear cart after checkout")
	}
	return order, nil
}

// place applies prescription gating and persists the order, consuming stock.
func (s *OrderService) place(p models.Principal, order *models.Order, requiresRx []string, prescriptionID *string) error {
	if prescriptionID != nil && *prescriptionID != "" {
		rx, err := s.prescriptions.GetByID(*prescriptionID)
		if err != nil {
			return err
		}
		if !p.Owns(rx.UserID) {
			return apperr.Forbidden("prescription %s does not belong to the caller", rx.ID)
		}
		if len(requiresRx) > 0 {
			if err := checkPrescriptionCovers(rx, requiresRx, s.now()); err != nil {
				return err
			}
		}
		order.PrescriptionID = &rx.ID
	} else if len(requiresRx) > 0 {
		return apperr.Validation("an approved prescription is required for products: %s", strings.Join(requiresRx, ", "))
	}

	now := s.now()
	eta := now.Add(estimatedDeliveryLead)
	order.Status = models.OrderStatusPending
	order.PaymentStatus = models.PaymentPending
	order.EstimatedDeliveryDate = &eta

	if err := s.orders.Create(order); err != nil {
		if apperr.KindOf(err) != apperr.KindInternal {
			return err
		}
		return fmt.Errorf("failed to create order in repository: %w", err)
	}

	s.metrics.IncOrdersCreated()
	s.notifier.Emit(EventOrderCreated, orderEvent(order))
	log.WithFields(log.Fields{"order_id": order.ID, "user_id": order.UserID, "total": order.Total.String()}).Info("order created")
	return nil
}

func checkPrescriptionCovers(rx *models.Prescription, productIDs []string, now time.Time) error {
	if !rx.Usable(now) {
		return apperr.Validation("prescription %s is not approved or has expired", rx.ID)
	}
	if len(rx.ProductIDs) == 0 {
		return nil
	}
	linked := make(map[string]bool, len(rx.ProductIDs))
	for _, id := range rx.ProductIDs {
		linked[id] = true
	}
	for _, id := range productIDs {
		if !linked[id] {
			return apperr.Validation("prescription %s does not cover product %s", rx.ID, id)
		}
	}
	return nil
}

// GetOrder returns an order visible to the caller.
func (s *OrderService) GetOrder(p models.Principal, id string) (*models.Order, error) {
	order, err := s.orders.GetByID(id)
	if err != nil {
		return nil, err
	}
	if !p.IsAdmin() && !p.Owns(order.UserID) {
		return nil, apperr.Forbidden("not allowed to view order %s", id)
	}
	return order, nil
}

// ListUserOrders returns the caller's orders, newest first.
func (s *OrderService) ListUserOrders(p models.Principal) ([]models.Order, error) {
	return s.orders.GetAll(models.OrderFilter{UserID: p.UserID})
}

// ListAllOrders returns every order, optionally filtered by status. Admin only.
func (s *OrderService) ListAllOrders(p models.Principal, status models.OrderStatus) ([]models.Order, error) {
	if !p.IsAdmin() {
		return nil, apperr.Forbidden("admin access required")
	}
	if status != "" && !status.Valid() {
		return nil, apperr.Validation("invalid order status: %s", status)
	}
	return s.orders.GetAll(models.OrderFilter{Status: status})
}

// UpdateOrder applies an owner's patch while the order is still pending or processing.
func (s *OrderService) UpdateOrder(p models.Principal, id string, patch OrderPatch) (*models.Order, error) {
	order, err := s.orders.GetByID(id)
	if err != nil {
		return nil, err
	}
	if !p.Owns(order.UserID) {
		return nil, apperr.Forbidden("only the owner can update order %s", id)
	}
	if !order.Status.Editable() {
		return nil, apperr.InvalidState("order %s is %s and can no longer be updated", id, order.Status)
	}

	if patch.ShippingAddress != nil {
		if err := validateStruct(*patch.ShippingAddress); err != nil {
			return nil, err
		}
		order.ShippingAddress = *patch.ShippingAddress
	}
	if patch.PaymentMethod != nil {
		if !patch.PaymentMethod.Valid() {
			return nil, apperr.Validation("invalid payment method: %s", *patch.PaymentMethod)
		}
		order.PaymentMethod = *patch.PaymentMethod
	}
	if patch.Notes != nil {
		if len(*patch.Notes) > 500 {
			return nil, apperr.Validation("notes must be at most 500 characters")
		}
		order.Notes = *patch.Notes
	}

	if err := s.orders.Update(order, order.Status); err != nil {
		return nil, err
	}
	return order, nil
}

// CancelOrder cancels a pending or processing order and restores its stock.
func (s *OrderService) CancelOrder(p models.Principal, id string) (*models.Order, error) {
	order, err := s.orders.GetByID(id)
	if err != nil {
		return nil, err
	}
	if !p.IsAdmin() && !p.Owns(order.UserID) {
		return nil, apperr.Forbidden("not allowed to cancel order %s", id)
	}
	if !order.Status.Editable() {
		return nil, apperr.InvalidState("order %s cannot be cancelled from status %s", id, order.Status)
	}
	if err := s.cancel(order); err != nil {
		return nil, err
	}
	return order, nil
}

// cancel writes the cancellation. The repository rejects it if the order left
// pending or processing since it was read.
func (s *OrderService) cancel(order *models.Order) error {
	now := s.now()
	order.Status = models.OrderStatusCancelled
	order.CancelledAt = &now
	if err := s.orders.Cancel(order); err != nil {
		return err
	}
	s.metrics.IncOrderTransition(string(models.OrderStatusCancelled))
	s.notifier.Emit(EventOrderCancelled, orderEvent(order))
	log.WithFields(log.Fields{"order_id": order.ID, "user_id": order.UserID}).Info("order cancelled")
	return nil
}

// UpdateOrderStatus moves an order along the status table. Admin only.
// in-transit requires a tracking reference; delivered stamps the delivery date.
func (s *OrderService) UpdateOrderStatus(p models.Principal, id string, req StatusUpdateRequest) (*models.Order, error) {
	if !p.IsAdmin() {
		return nil, apperr.Forbidden("admin access required")
	}
	if !req.Status.Valid() {
		return nil, apperr.Validation("invalid order status: %s", req.Status)
	}
	tracking := strings.TrimSpace(req.Tracking)
	if req.Status == models.OrderStatusInTransit && tracking == "" {
		return nil, apperr.Validation("tracking is required when moving an order to %s", models.OrderStatusInTransit)
	}

	order, err := s.orders.GetByID(id)
	if err != nil {
		return nil, err
	}
	if !order.Status.CanTransitionTo(req.Status) {
		return nil, apperr.InvalidState("cannot move order %s from %s to %s", id, order.Status, req.Status)
	}

	if req.Status == models.OrderStatusCancelled {
		if err := s.cancel(order); err != nil {
			return nil, err
		}
		return order, nil
	}

	from := order.Status
	order.Status = req.Status
	if tracking != "" {
		order.Tracking = tracking
	}
	if req.Status == models.OrderStatusDelivered {
		now := s.now()
		order.ActualDeliveryDate = &now
	}
	if err := s.orders.Update(order, from); err != nil {
		return nil, err
	}

	s.metrics.IncOrderTransition(string(req.Status))
	s.notifier.Emit(EventOrderStatusChanged, orderEvent(order))
	log.WithFields(log.Fields{"order_id": order.ID, "from": from, "to": order.Status}).Info("order status updated")
	return order, nil
}

// UpdatePaymentStatus sets the payment status. It is independent of the order status.
func (s *OrderService) UpdatePaymentStatus(p models.Principal, id string, status models.PaymentStatus) (*models.Order, error) {
	if !p.IsAdmin() {
		return nil, apperr.Forbidden("admin access required")
	}
	if !status.Valid() {
		return nil, apperr.Validation("invalid payment status: %s", status)
	}
	order, err := s.orders.GetByID(id)
	if err != nil {
		return nil, err
	}
	order.PaymentStatus = status
	if err := s.orders.Update(order, order.Status); err != nil {
		return nil, err
	}
	s.notifier.Emit(EventOrderPaymentChanged, orderEvent(order))
	return order, nil
}
