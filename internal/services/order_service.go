package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sync"

	"github.com/rs/zerolog"

	"tokoadmin/internal/loader"
	"tokoadmin/internal/models"
	"tokoadmin/internal/viewmodels"
)

type orderCollection = loader.Collection[models.Order, viewmodels.OrderRow]

// MaxOrderCollections bounds how many users' orders are kept at once. The
// least recently used user is dropped first.
const MaxOrderCollections = 32

// OrderService backs the order management screen. Orders are listed per user.
type OrderService struct {
	api   API
	log   zerolog.Logger
	limit int

	mu          sync.Mutex
	collections map[string]*orderCollection
	recent      []string // user ids, least recently used first
}

// NewOrderService creates a new OrderService.
func NewOrderService(api API, log zerolog.Logger) *OrderService {
	return &OrderService{
		api:         api,
		log:         log,
		limit:       MaxOrderCollections,
		collections: make(map[string]*orderCollection),
	}
}

func (s *OrderService) collection(userID string) *orderCollection {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch(userID)
	if c, ok := s.collections[userID]; ok {
		return c
	}

	path := "/order/user/" + url.PathEscape(userID)
	fetch := func(ctx context.Context) ([]models.Order, error) {
		var out models.OrderList
		if err := s.api.GetJSON(ctx, path, &out); err != nil {
			return nil, err
		}
		return out.Orders, nil
	}
	c := loader.New("orders:"+userID, fetch, viewmodels.NewOrderRow, s.log)
	s.collections[userID] = c

	for len(s.collections) > s.limit {
		evicted := s.recent[0]
		s.recent = s.recent[1:]
		delete(s.collections, evicted)
		s.log.Debug().Str("user", evicted).Msg("dropped order collection")
	}
	return c
}

// touch moves userID to the most recently used end. Callers hold mu.
func (s *OrderService) touch(userID string) {
	for i, id := range s.recent {
		if id == userID {
			s.recent = append(s.recent[:i], s.recent[i+1:]...)
			break
		}
	}
	s.recent = append(s.recent, userID)
}


// List returns the order rows of userID.
func (s *OrderService) List(ctx context.Context, userID string, refresh bool) (loader.Snapshot[viewmodels.OrderRow], error) {
	return snapshot(ctx, s.collection(userID), refresh)
}

// Get returns the expanded detail of one order.
func (s *OrderService) Get(ctx context.Context, userID, orderID string) (viewmodels.OrderRow, viewmodels.OrderDetail, error) {
	row, err := find(ctx, s.collection(userID), func(r viewmodels.OrderRow) bool { return r.ID == orderID })
	if err != nil {
		return viewmodels.OrderRow{}, viewmodels.OrderDetail{}, err
	}
	return row, viewmodels.NewOrderDetail(row), nil
}

// UpdateStatus changes the status of one of userID's orders.
func (s *OrderService) UpdateStatus(ctx context.Context, userID, orderID string, status models.OrderStatus) error {
	if !status.Valid() {
		return fmt.Errorf("%q: %w", status, ErrInvalidStatus)
	}
	c := s.collection(userID)
	if _, err := find(ctx, c, func(r viewmodels.OrderRow) bool { return r.ID == orderID }); err != nil {
		return err
	}

	body := map[string]models.OrderStatus{"status": status}
	if _, err := s.api.SendJSON(ctx, http.MethodPatch, "/order/"+url.PathEscape(orderID), body, nil); err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}
	s.log.Info().Str("order", orderID).Str("status", string(status)).Msg("order status updated")
	refetch(ctx, c)
	return nil
}
