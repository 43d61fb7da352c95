// Package services implements the console screens' reads and mutations on top
// of the storefront API.
package services

import (
	"context"
	"errors"

	"tokoadmin/internal/loader"
	"tokoadmin/pkg/apiclient"
)

var (
	ErrNotFound             = errors.New("not found")
	ErrActionNotAllowed     = errors.New("action not allowed in the current status")
	ErrConfirmationRequired = errors.New("confirmation required")
	ErrInvalidStatus        = errors.New("invalid order status")
)

// API is the part of *apiclient.Client the services use.
type API interface {
	GetJSON(ctx context.Context, path string, out any) error
	SendJSON(ctx context.Context, method, path string, in, out any) (*apiclient.Response, error)
	Do(ctx context.Context, req apiclient.Request, out any) (*apiclient.Response, error)
}

// snapshot loads c on first use, or again when refresh is set, and returns its
// state. On a failed load the snapshot still carries the previous data.
func snapshot[R, V any](ctx context.Context, c *loader.Collection[R, V], refresh bool) (loader.Snapshot[V], error) {
	var err error
	if refresh {
		err = c.Load(ctx)
	} else {
		err = c.EnsureLoaded(ctx)
	}
	return c.Snapshot(), err
}

// find returns the first row accepted by match, loading c if needed.
func find[R, V any](ctx context.Context, c *loader.Collection[R, V], match func(V) bool) (V, error) {
	var zero V
	if err := c.EnsureLoaded(ctx); err != nil && len(c.Data()) == 0 {
		return zero, err
	}
	for _, row := range c.Data() {
		if match(row) {
			return row, nil
		}
	}
	return zero, ErrNotFound
}

// refetch reloads c after a successful mutation. A failed reload is logged by
// the loader and leaves the previous data in place.
func refetch[R, V any](ctx context.Context, c *loader.Collection[R, V]) {
	_ = c.Load(ctx)
}
