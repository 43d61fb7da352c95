package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/rs/zerolog"

	"tokoadmin/internal/loader"
	"tokoadmin/internal/models"
	"tokoadmin/internal/viewmodels"
)

// SellerService backs the seller requests screen.
type SellerService struct {
	api     API
	sellers *loader.Collection[models.User, viewmodels.SellerRow]
	log     zerolog.Logger
}

// NewSellerService creates a new SellerService.
func NewSellerService(api API, log zerolog.Logger) *SellerService {
	s := &SellerService{api: api, log: log}
	s.sellers = loader.New("sellers", s.fetch, viewmodels.NewSellerRow, log)
	return s
}

func (s *SellerService) fetch(ctx context.Context) ([]models.User, error) {
	var out models.SellerList
	if err := s.api.GetJSON(ctx, "/users/sellers", &out); err != nil {
		return nil, err
	}
	return out.Sellers, nil
}

// List returns the seller rows, fetching them on first use or when refresh is set.
func (s *SellerService) List(ctx context.Context, refresh bool) (loader.Snapshot[viewmodels.SellerRow], error) {
	return snapshot(ctx, s.sellers, refresh)
}

// Get returns the expanded detail of one seller.
func (s *SellerService) Get(ctx context.Context, id string) (viewmodels.SellerDetail, error) {
	row, err := find(ctx, s.sellers, func(r viewmodels.SellerRow) bool { return r.ID == id })
	if err != nil {
		return viewmodels.SellerDetail{}, err
	}
	return viewmodels.NewSellerDetail(row), nil
}

// Accept approves a pending seller.
func (s *SellerService) Accept(ctx context.Context, id string) error {
	return s.review(ctx, id, "accept")
}

// Reject declines a pending seller.
func (s *SellerService) Reject(ctx context.Context, id string) error {
	return s.review(ctx, id, "reject")
}

func (s *SellerService) review(ctx context.Context, id, action string) error {
	row, err := find(ctx, s.sellers, func(r viewmodels.SellerRow) bool { return r.ID == id })
	if err != nil {
		return err
	}
	if !row.Pending() {
		return fmt.Errorf("cannot %s seller in status %s: %w", action, row.Status, ErrActionNotAllowed)
	}

	if _, err := s.api.SendJSON(ctx, http.MethodPatch, "/users/"+url.PathEscape(id)+"/"+action, nil, nil); err != nil {
		return fmt.Errorf("failed to %s seller: %w", action, err)
	}
	s.log.Info().Str("seller", id).Str("action", action).Msg("seller reviewed")
	refetch(ctx, s.sellers)
	return nil
}
