package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type ProductType string

const (
	ProductTypeCourse ProductType = "course"
	ProductTypeDiet   ProductType = "diet"
)

func (t ProductType) Valid() bool {
	return t == ProductTypeCourse || t == ProductTypeDiet
}

// Product is a purchasable catalog item. Checkout snapshots title and price
// from here at intent time; records created later never re-fetch them.
type Product struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	Slug        string       `gorm:"not null;uniqueIndex" json:"slug"`
	Type        ProductType  `gorm:"not null;index" json:"type"`
	Title       string       `gorm:"not null" json:"title"`
	Description string       `json:"description,omitempty"`
	PriceMinor  int64        `gorm:"not null" json:"price_minor"`
	Currency    string       `gorm:"not null" json:"currency"`
	Active      bool         `gorm:"not null;default:true" json:"active"`
	CreatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Product) TableName() string { return "products" }
