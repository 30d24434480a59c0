package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product represents a catalog item.
type Product struct {
	ID                   string          `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Name                 string          `json:"name" gorm:"index" validate:"required,min=2,max=100"`
	Description          string          `json:"description" validate:"omitempty,max=1000"`
	Price                decimal.Decimal `json:"price" gorm:"type:decimal(12,2);not null"`
	Stock                int             `json:"stock" validate:"gte=0"`
	RequiresPrescription bool            `json:"requires_prescription"`
	Category             string          `json:"category" gorm:"index;type:varchar(60)" validate:"omitempty,max=60"`
	Manufacturer         string          `json:"manufacturer" validate:"omitempty,max=100"`
	ImageURL             string          `json:"image_url" validate:"omitempty,max=500"`
	ExpiryDate           *time.Time      `json:"expiry_date,omitempty"`
	CreatedAt            time.Time       `json:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at"`
	DeletedAt            gorm.DeletedAt  `json:"-" gorm:"index"`
}

// Expired reports whether the product's expiry date is at or before now.
func (p *Product) Expired(now time.Time) bool {
	return p.ExpiryDate != nil && !p.ExpiryDate.After(now)
}

// ProductFilter narrows catalog listings. Zero values match everything.
type ProductFilter struct {
	Category             string
	Search               string // case-insensitive substring of Name
	RequiresPrescription *bool
}
