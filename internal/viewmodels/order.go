package viewmodels

import (
	"time"

	"github.com/shopspring/decimal"

	"tokoadmin/internal/models"
)

// OrderRow is a row of the order management table.
type OrderRow struct {
	ID          string                 `json:"id"`
	ShortID     string                 `json:"shortId"`
	Customer    string                 `json:"customer"`
	Total       float64                `json:"total"`
	TotalLabel  string                 `json:"totalLabel"`
	Status      models.OrderStatus     `json:"status"`
	PlacedAt    time.Time              `json:"placedAt"`
	Placed      string                 `json:"placed"`
	ShippedAt   *time.Time             `json:"shippedAt,omitempty"`
	DeliveredAt *time.Time             `json:"deliveredAt,omitempty"`
	Items       []models.OrderItem     `json:"items"`
	Shipping    models.ShippingAddress `json:"shipping"`
}

// ShortID is "#" followed by the last six characters of id.
func ShortID(id string) string {
	if len(id) > 6 {
		id = id[len(id)-6:]
	}
	return "#" + id
}

// NewOrderRow flattens an order record.
func NewOrderRow(o models.Order) OrderRow {
	return OrderRow{
		ID:          o.ID,
		ShortID:     ShortID(o.ID),
		Customer:    o.ShippingAddress.FullName,
		Total:       o.TotalAmount,
		TotalLabel:  FormatRupees(Money(o.TotalAmount)),
		Status:      o.Status,
		PlacedAt:    o.PlacedAt,
		Placed:      FormatDate(o.PlacedAt),
		ShippedAt:   o.ShippedAt,
		DeliveredAt: o.DeliveredAt,
		Items:       o.Items,
		Shipping:    o.ShippingAddress,
	}
}

// OrderLine is an item of the order detail with its line total.
type OrderLine struct {
	ProductID  string `json:"productId"`
	Title      string `json:"title"`
	Quantity   int    `json:"quantity"`
	PriceLabel string `json:"priceLabel"`
	LineTotal  string `json:"lineTotal"`
}

// TimelineEntry is a dated step of the order timeline.
type TimelineEntry struct {
	Label string `json:"label"`
	Date  string `json:"date"`
}

// OrderDetail is the expanded panel under an order row.
type OrderDetail struct {
	ShortID    string                 `json:"shortId"`
	Lines      []OrderLine            `json:"lines"`
	TotalLabel string                 `json:"totalLabel"`
	Shipping   models.ShippingAddress `json:"shipping"`
	Timeline   []TimelineEntry        `json:"timeline"`
}

// NewOrderDetail builds the detail panel of a row. Shipped and delivered
// steps appear only once they happened.
func NewOrderDetail(r OrderRow) OrderDetail {
	d := OrderDetail{
		ShortID:    r.ShortID,
		Lines:      make([]OrderLine, 0, len(r.Items)),
		TotalLabel: r.TotalLabel,
		Shipping:   r.Shipping,
		Timeline:   []TimelineEntry{{Label: "Placed", Date: FormatDate(r.PlacedAt)}},
	}
	for _, item := range r.Items {
		price := Money(item.Price)
		d.Lines = append(d.Lines, OrderLine{
			ProductID:  item.Product.ID,
			Title:      item.Product.Title,
			Quantity:   item.Quantity,
			PriceLabel: FormatRupees(price),
			LineTotal:  FormatRupees(price.Mul(decimal.NewFromInt(int64(item.Quantity)))),
		})
	}
	if r.ShippedAt != nil {
		d.Timeline = append(d.Timeline, TimelineEntry{Label: "Shipped", Date: FormatDate(*r.ShippedAt)})
	}
	if r.DeliveredAt != nil {
		d.Timeline = append(d.Timeline, TimelineEntry{Label: "Delivered", Date: FormatDate(*r.DeliveredAt)})
	}
	return d
}
