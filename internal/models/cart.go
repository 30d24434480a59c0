package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CartItem is a single line of a cart. Price is UnitPrice × Quantity.
type CartItem struct {
	ProductID            string          `json:"product_id"`
	Name                 string          `json:"name"`
	UnitPrice            decimal.Decimal `json:"unit_price"`
	Quantity             int             `json:"quantity"`
	Price                decimal.Decimal `json:"price"`
	RequiresPrescription bool            `json:"requires_prescription"`
}

// Cart is the per-user staging area of purchase lines.
type Cart struct {
	ID                   string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID               string          `json:"user_id" gorm:"uniqueIndex;type:varchar(36)"`
	Items                []CartItem      `json:"items" gorm:"type:text;serializer:json"`
	TotalAmount          decimal.Decimal `json:"total_amount" gorm:"type:decimal(12,2)"`
	PrescriptionRequired bool            `json:"prescription_required"`
	CreatedAt            time.Time       `json:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at"`
}

// NewCart returns an empty cart for userID.
func NewCart(userID string) *Cart {
	return &Cart{UserID: userID, Items: []CartItem{}, TotalAmount: decimal.Zero}
}

// FindItem returns the index of the line for productID, or -1.
func (c *Cart) FindItem(productID string) int {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return i
		}
	}
	return -1
}

// Recalculate recomputes every line price, the total and the prescription flag
// from scratch.
func (c *Cart) Recalculate() {
	if c.Items == nil {
		c.Items = []CartItem{}
	}
	total := decimal.Zero
	required := false
	for i := range c.Items {
		item := &c.Items[i]
		item.Price = item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
		total = total.Add(item.Price)
		required = required || item.RequiresPrescription
	}
	c.TotalAmount = total
	c.PrescriptionRequired = required
}
