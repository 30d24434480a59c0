package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the fulfilment state of an order.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusInTransit  OrderStatus = "in-transit"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:    {OrderStatusProcessing, OrderStatusCancelled},
	OrderStatusProcessing: {OrderStatusInTransit, OrderStatusCancelled},
	OrderStatusInTransit:  {OrderStatusDelivered},
}

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusInTransit,
		OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo reports whether next is a legal successor of s.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s OrderStatus) Terminal() bool {
	return len(orderTransitions[s]) == 0
}

// Editable reports whether an order in s still accepts owner edits and cancellation.
func (s OrderStatus) Editable() bool {
	return s == OrderStatusPending || s == OrderStatusProcessing
}

type PaymentStatus string

const (
	PaymentPending    PaymentStatus = "pending"
	PaymentProcessing PaymentStatus = "processing"
	PaymentCompleted  PaymentStatus = "completed"
	PaymentFailed     PaymentStatus = "failed"
	PaymentRefunded   PaymentStatus = "refunded"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentPending, PaymentProcessing, PaymentCompleted, PaymentFailed, PaymentRefunded:
		return true
	}
	return false
}

type PaymentMethod string

const (
	PaymentMethodCOD    PaymentMethod = "cod"
	PaymentMethodCard   PaymentMethod = "card"
	PaymentMethodUPI    PaymentMethod = "upi"
	PaymentMethodWallet PaymentMethod = "wallet"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodCOD, PaymentMethodCard, PaymentMethodUPI, PaymentMethodWallet:
		return true
	}
	return false
}

// ShippingAddress is where an order is delivered. All six fields are required
// and must not be blank.
type ShippingAddress struct {
	FullName   string `json:"full_name" validate:"required,notblank"`
	Phone      string `json:"phone" validate:"required,notblank"`
	Street     string `json:"street" validate:"required,notblank"`
	City       string `json:"city" validate:"required,notblank"`
	State      string `json:"state" validate:"required,notblank"`
	PostalCode string `json:"postal_code" validate:"required,notblank"`
}

// OrderItem is an immutable copy of a purchased line. Price is the unit price
// at the time the order was placed.
type OrderItem struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

// LineTotal is Price × Quantity.
func (i OrderItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Order represents a customer order.
type Order struct {
	ID                    string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID                string          `json:"user_id" gorm:"index;type:varchar(36)"`
	Items                 []OrderItem     `json:"items" gorm:"type:text;serializer:json"`
	ShippingAddress       ShippingAddress `json:"shipping_address" gorm:"embedded;embeddedPrefix:shipping_"`
	Status                OrderStatus     `json:"status" gorm:"index;type:varchar(16)"`
	PaymentStatus         PaymentStatus   `json:"payment_status" gorm:"type:varchar(16)"`
	PaymentMethod         PaymentMethod   `json:"payment_method" gorm:"type:varchar(16)"`
	SubTotal              decimal.Decimal `json:"sub_total" gorm:"type:decimal(12,2)"`
	DeliveryCharge        decimal.Decimal `json:"delivery_charge" gorm:"type:decimal(12,2)"`
	Total                 decimal.Decimal `json:"total" gorm:"type:decimal(12,2)"`
	PrescriptionID        *string         `json:"prescription_id,omitempty" gorm:"type:varchar(36)"`
	Tracking              string          `json:"tracking"`
	Notes                 string          `json:"notes"`
	EstimatedDeliveryDate *time.Time      `json:"estimated_delivery_date,omitempty"`
	ActualDeliveryDate    *time.Time      `json:"actual_delivery_date,omitempty"`
	CancelledAt           *time.Time      `json:"cancelled_at,omitempty"`
	CreatedAt             time.Time       `json:"created_at"`
	UpdatedAt             time.Time       `json:"updated_at"`
}

// StockDeltas sums item quantities per product.
func (o *Order) StockDeltas() map[string]int {
	deltas := make(map[string]int, len(o.Items))
	for _, item := range o.Items {
		deltas[item.ProductID] += item.Quantity
	}
	return deltas
}

// OrderFilter narrows order listings.
type OrderFilter struct {
	UserID string
	Status OrderStatus
}
