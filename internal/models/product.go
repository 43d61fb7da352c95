package models

import "time"

// ProductStatus is the approval lifecycle of a product listing.
type ProductStatus string

const (
	ProductPending   ProductStatus = "pending"
	ProductActive    ProductStatus = "active"
	ProductRejected  ProductStatus = "rejected"
	ProductInactive  ProductStatus = "inactive"
	ProductAbandoned ProductStatus = "abandoned"
)

// Categories offered by the product form.
var Categories = []string{"GPU", "CPU", "RAM", "Storage"}

// Specifications is an open mapping. Values may be scalars, nested objects
// (map[string]any) or arrays ([]any) as decoded from JSON.
type Specifications map[string]any

// MemorySize is the size dimension that distinguishes variants.
type MemorySize struct {
	Size float64 `json:"size" validate:"gte=0"`
	Unit string  `json:"unit"`
}

// Discount applies to a single variant.
type Discount struct {
	Percentage float64    `json:"percentage" validate:"gte=0,lte=100"`
	ValidUntil *time.Time `json:"validUntil,omitempty"`
}

// Variant is one purchasable configuration of a product.
type Variant struct {
	MemorySize MemorySize `json:"memorySize"`
	Price      float64    `json:"price" validate:"gte=0"`
	Stock      int        `json:"stock" validate:"gte=0"`
	Discount   Discount   `json:"discount"`
}

// Image is a stored product picture.
type Image struct {
	URL string `json:"url"`
	Alt string `json:"alt"`
}

// SellerRef is the populated seller of a product.
type SellerRef struct {
	ID   string `json:"_id,omitempty"`
	Name string `json:"name"`
}

// Product is a catalogue listing.
type Product struct {
	ID             string         `json:"_id" gorm:"primaryKey;type:varchar(36)"`
	Title          string         `json:"title" gorm:"type:varchar(200)"`
	Category       string         `json:"category" gorm:"type:varchar(50);index"`
	Description    string         `json:"description" gorm:"type:text"`
	Brand          string         `json:"brand" gorm:"type:varchar(100)"`
	Specifications Specifications `json:"specifications" gorm:"serializer:json;type:text"`
	Variants       []Variant      `json:"variants" gorm:"serializer:json;type:text"`
	Images         []Image        `json:"images" gorm:"serializer:json;type:text"`
	Status         ProductStatus  `json:"status" gorm:"type:varchar(16);index"`
	Seller         *SellerRef     `json:"seller,omitempty" gorm:"serializer:json;type:text"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
}

// ProductList is the envelope of GET /products.
type ProductList struct {
	Products []Product `json:"products"`
}
