package state

import "tokoadmin/internal/models"

// FeedLimit is how many notifications the dropdown keeps.
const FeedLimit = 10

// Feed is the notification dropdown: newest first, bounded, with an unread
// counter.
type Feed struct {
	Items  []models.Notification `json:"items"`
	Unread int                   `json:"unread"`
}

// NewFeed returns an empty feed.
func NewFeed() Feed {
	return Feed{Items: []models.Notification{}}
}

// Push prepends n and drops the oldest entries beyond FeedLimit.
func (f Feed) Push(n models.Notification) Feed {
	items := make([]models.Notification, 0, FeedLimit)
	items = append(items, n)
	for _, old := range f.Items {
		if len(items) == FeedLimit {
			break
		}
		items = append(items, old)
	}
	return Feed{Items: items, Unread: f.Unread + 1}
}

// MarkAllRead resets the counter and flags every entry read.
func (f Feed) MarkAllRead() Feed {
	items := make([]models.Notification, len(f.Items))
	for i, n := range f.Items {
		n.Read = true
		items[i] = n
	}
	return Feed{Items: items, Unread: 0}
}

func reduceNotifications(f Feed, a Action) Feed {
	switch a := a.(type) {
	case NotificationReceived:
		return f.Push(a.Notification)
	case NotificationsRead:
		return f.MarkAllRead()
	case LoggedOut:
		return NewFeed()
	}
	return f
}
