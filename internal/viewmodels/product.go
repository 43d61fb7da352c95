package viewmodels

import (
	"fmt"
	"time"

	"tokoadmin/internal/models"
)

// ImageCell is either an image reference or a placeholder, never both.
type ImageCell struct {
	URL         string `json:"url,omitempty"`
	Alt         string `json:"alt,omitempty"`
	Placeholder bool   `json:"placeholder"`
}

// NewImageCell uses the first image; a missing image or an empty first URL
// yields a placeholder.
func NewImageCell(images []models.Image, fallbackAlt string) ImageCell {
	if len(images) == 0 || images[0].URL == "" {
		return ImageCell{Placeholder: true}
	}
	alt := images[0].Alt
	if alt == "" {
		alt = fallbackAlt
	}
	return ImageCell{URL: images[0].URL, Alt: alt}
}

// ProductRow is a row of the product management and product approval tables.
type ProductRow struct {
	ID             string                `json:"id"`
	Name           string                `json:"name"`
	Category       string                `json:"category"`
	Brand          string                `json:"brand"`
	Description    string                `json:"description"`
	Price          float64               `json:"price"`
	PriceLabel     string                `json:"priceLabel"`
	Stock          int                   `json:"stock"`
	Image          ImageCell             `json:"image"`
	Images         []models.Image        `json:"images"`
	SellerName     string                `json:"sellerName"`
	Status         models.ProductStatus  `json:"status"`
	StatusLabel    string                `json:"statusLabel"`
	CreatedAt      time.Time             `json:"createdAt"`
	Created        string                `json:"created"`
	Specifications models.Specifications `json:"specifications"`
	Variants       []models.Variant      `json:"variants"`
}

// Reviewable reports whether accept and reject are offered on the approval screen.
func (r ProductRow) Reviewable() bool {
	return r.Status == models.ProductPending || r.Status == models.ProductInactive
}

// NewProductRow flattens a product record. Price and stock come from the first
// variant, or zero when there is none.
func NewProductRow(p models.Product) ProductRow {
	var price float64
	var stock int
	if len(p.Variants) > 0 {
		price = p.Variants[0].Price
		stock = p.Variants[0].Stock
	}
	seller := ""
	if p.Seller != nil {
		seller = p.Seller.Name
	}
	return ProductRow{
		ID:             p.ID,
		Name:           p.Title,
		Category:       p.Category,
		Brand:          p.Brand,
		Description:    p.Description,
		Price:          price,
		PriceLabel:     FormatRupees(Money(price)),
		Stock:          stock,
		Image:          NewImageCell(p.Images, p.Title),
		Images:         p.Images,
		SellerName:     seller,
		Status:         p.Status,
		StatusLabel:    StatusLabel(string(p.Status)),
		CreatedAt:      p.CreatedAt,
		Created:        FormatDate(p.CreatedAt),
		Specifications: p.Specifications,
		Variants:       p.Variants,
	}
}

// VariantLine is one entry of "Available Variants".
type VariantLine struct {
	Size       string `json:"size"`
	PriceLabel string `json:"priceLabel"`
	Stock      int    `json:"stock"`
	Discount   string `json:"discount,omitempty"`
}

// ProductDetail is the expanded panel under a product row.
type ProductDetail struct {
	Heading        string        `json:"heading"`
	Category       string        `json:"category"`
	Image          ImageCell     `json:"image"`
	Description    string        `json:"description"`
	PriceLabel     string        `json:"priceLabel"`
	StockLabel     string        `json:"stockLabel"`
	DiscountBadge  string        `json:"discountBadge,omitempty"`
	Specifications []SpecEntry   `json:"specifications"`
	Variants       []VariantLine `json:"variants"`
}

// NewProductDetail builds the detail panel of a row.
func NewProductDetail(r ProductRow) ProductDetail {
	d := ProductDetail{
		Heading:        joinNonEmpty(r.Brand, r.Name),
		Category:       r.Category,
		Image:          r.Image,
		Description:    r.Description,
		PriceLabel:     r.PriceLabel,
		StockLabel:     fmt.Sprintf("Stock: %d units", r.Stock),
		Specifications: RenderSpecifications(r.Specifications),
		Variants:       make([]VariantLine, 0, len(r.Variants)),
	}
	if len(r.Variants) > 0 {
		d.DiscountBadge = discountBadge(r.Variants[0].Discount)
	}
	for _, v := range r.Variants {
		d.Variants = append(d.Variants, VariantLine{
			Size:       joinNonEmpty(scalarText(v.MemorySize.Size), v.MemorySize.Unit),
			PriceLabel: FormatRupees(Money(v.Price)),
			Stock:      v.Stock,
			Discount:   discountBadge(v.Discount),
		})
	}
	return d
}

// discountBadge renders "N% off until DATE" for a positive discount.
func discountBadge(d models.Discount) string {
	if d.Percentage <= 0 {
		return ""
	}
	pct := scalarText(d.Percentage)
	if d.ValidUntil == nil {
		return pct + "% off"
	}
	return fmt.Sprintf("%s%% off until %s", pct, FormatDate(*d.ValidUntil))
}

func joinNonEmpty(a, b string) string {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	}
	return a + " " + b
}
