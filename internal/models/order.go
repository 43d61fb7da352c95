package models

import "time"

// OrderStatus is the fulfilment state of an order.
type OrderStatus string

const (
	OrderPending    OrderStatus = "Pending"
	OrderProcessing OrderStatus = "Processing"
	OrderShipped    OrderStatus = "Shipped"
	OrderDelivered  OrderStatus = "Delivered"
	OrderCancelled  OrderStatus = "Cancelled"
	OrderReturned   OrderStatus = "Returned"
)

// OrderStatuses lists the statuses in the order the status dropdown shows them.
var OrderStatuses = []OrderStatus{
	OrderPending, OrderProcessing, OrderShipped, OrderDelivered, OrderCancelled, OrderReturned,
}

// Valid reports whether s is a known order status.
func (s OrderStatus) Valid() bool {
	for _, known := range OrderStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// ProductRef is the populated product of an order line.
type ProductRef struct {
	ID    string `json:"_id"`
	Title string `json:"title"`
}

// OrderItem represents a single line within an order.
type OrderItem struct {
	Product  ProductRef `json:"productId"`
	Quantity int        `json:"quantity"`
	Price    float64    `json:"price"` // Price at the time of order
}

// ShippingAddress is where an order is delivered.
type ShippingAddress struct {
	FullName      string `json:"fullName"`
	Phone         string `json:"phone"`
	StreetAddress string `json:"streetAddress"`
	City          string `json:"city"`
	State         string `json:"state"`
	ZipCode       string `json:"zipCode"`
	Country       string `json:"country"`
}

// Order represents a customer order.
type Order struct {
	ID              string          `json:"_id" gorm:"primaryKey;type:varchar(36)"`
	UserID          string          `json:"userId" gorm:"type:varchar(36);index"`
	Items           []OrderItem     `json:"items" gorm:"serializer:json;type:text"`
	ShippingAddress ShippingAddress `json:"shippingAddress" gorm:"serializer:json;type:text"`
	TotalAmount     float64         `json:"totalAmount"`
	Status          OrderStatus     `json:"status" gorm:"type:varchar(16)"`
	PlacedAt        time.Time       `json:"placedAt"`
	ShippedAt       *time.Time      `json:"shippedAt,omitempty"`
	DeliveredAt     *time.Time      `json:"deliveredAt,omitempty"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// OrderList is the envelope of GET /order/user/:id.
type OrderList struct {
	Orders []Order `json:"orders"`
}
