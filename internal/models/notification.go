package models

import "time"

// NotificationType tells the console which kind of request arrived.
type NotificationType string

const (
	NotificationSellerRequest  NotificationType = "SELLER_REQUEST"
	NotificationProductRequest NotificationType = "PRODUCT_REQUEST"
)

// Notification is an unsolicited event pushed to operators.
type Notification struct {
	ID        string           `json:"id"`
	Type      NotificationType `json:"type"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	RequestID string           `json:"requestId"`
	ProductID string           `json:"productId,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
	Read      bool             `json:"read"`
}
