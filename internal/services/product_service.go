package services

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/rs/zerolog"

	"tokoadmin/internal/forms"
	"tokoadmin/internal/loader"
	"tokoadmin/internal/models"
	"tokoadmin/internal/viewmodels"
	"tokoadmin/pkg/apiclient"
)

// ProductService backs the product management and product approval screens.
// Both read the same upstream collection.
type ProductService struct {
	api      API
	products *loader.Collection[models.Product, viewmodels.ProductRow]
	log      zerolog.Logger
}

// NewProductService creates a new ProductService.
func NewProductService(api API, log zerolog.Logger) *ProductService {
	s := &ProductService{api: api, log: log}
	s.products = loader.New("products", s.fetch, viewmodels.NewProductRow, log)
	return s
}

func (s *ProductService) fetch(ctx context.Context) ([]models.Product, error) {
	var out models.ProductList
	if err := s.api.GetJSON(ctx, "/products", &out); err != nil {
		return nil, err
	}
	return out.Products, nil
}

// List returns the product rows.
func (s *ProductService) List(ctx context.Context, refresh bool) (loader.Snapshot[viewmodels.ProductRow], error) {
	return snapshot(ctx, s.products, refresh)
}

// Get returns one product row.
func (s *ProductService) Get(ctx context.Context, id string) (viewmodels.ProductRow, error) {
	return find(ctx, s.products, func(r viewmodels.ProductRow) bool { return r.ID == id })
}

// Create submits the add-product form as multipart.
func (s *ProductService) Create(ctx context.Context, draft *forms.ProductDraft) error {
	if err := draft.Validate(); err != nil {
		return err
	}
	body, contentType, err := draft.BuildCreatePayload()
	if err != nil {
		return err
	}

	req := apiclient.Request{Method: http.MethodPost, Path: "/products", Body: body, ContentType: contentType}
	if _, err := s.api.Do(ctx, req, nil); err != nil {
		return fmt.Errorf("failed to add product: %w", err)
	}
	s.log.Info().Str("name", draft.Name).Int("images", len(draft.Images)).Msg("product added")
	refetch(ctx, s.products)
	return nil
}

// Update submits the edit-product form as JSON.
func (s *ProductService) Update(ctx context.Context, id string, draft *forms.ProductDraft) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := draft.Validate(); err != nil {
		return err
	}
	payload, err := draft.BuildUpdatePayload()
	if err != nil {
		return err
	}

	req := apiclient.Request{Method: http.MethodPut, Path: "/products/" + url.PathEscape(id), Body: bytes.NewReader(payload), ContentType: "application/json"}
	if _, err := s.api.Do(ctx, req, nil); err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}
	s.log.Info().Str("product", id).Msg("product updated")
	refetch(ctx, s.products)
	return nil
}

// Delete removes a product once the operator confirmed it.
func (s *ProductService) Delete(ctx context.Context, id string, confirmed bool) error {
	if !confirmed {
		return ErrConfirmationRequired
	}
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}

	if _, err := s.api.SendJSON(ctx, http.MethodDelete, "/products/"+url.PathEscape(id), nil, nil); err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	s.log.Info().Str("product", id).Msg("product deleted")
	refetch(ctx, s.products)
	return nil
}

// Accept approves a product awaiting review.
func (s *ProductService) Accept(ctx context.Context, id string) error {
	return s.review(ctx, id, "accept")
}

// Reject declines a product awaiting review.
func (s *ProductService) Reject(ctx context.Context, id string) error {
	return s.review(ctx, id, "reject")
}

func (s *ProductService) review(ctx context.Context, id, action string) error {
	row, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if !row.Reviewable() {
		return fmt.Errorf("cannot %s product in status %s: %w", action, row.Status, ErrActionNotAllowed)
	}

	if _, err := s.api.SendJSON(ctx, http.MethodPatch, "/products/"+url.PathEscape(id)+"/"+action, nil, nil); err != nil {
		return fmt.Errorf("failed to %s product: %w", action, err)
	}
	s.log.Info().Str("product", id).Str("action", action).Msg("product reviewed")
	refetch(ctx, s.products)
	return nil
}
