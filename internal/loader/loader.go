// Package loader keeps a screen's remote collection: fetch once, map every
// record to a view-model, keep the previous data when a refresh fails.
package loader

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// FetchFunc reads the raw records of a collection.
type FetchFunc[R any] func(ctx context.Context) ([]R, error)

// Snapshot is a consistent view of a collection.
type Snapshot[V any] struct {
	Data     []V       `json:"data"`
	Loading  bool      `json:"loading"`
	Stale    bool      `json:"stale"`
	LoadedAt time.Time `json:"loadedAt"`
	Err      string    `json:"error,omitempty"`
}

// Collection is safe for concurrent use.
type Collection[R, V any] struct {
	name  string
	fetch FetchFunc[R]
	mapFn func(R) V
	log   zerolog.Logger

	mu       sync.RWMutex
	data     []V
	inFlight int
	seq      uint64 // id of the latest started load
	applied  uint64 // id of the load whose result is in data
	loaded   bool
	loadedAt time.Time
	lastErr  error
}

// New creates an empty collection. Nothing is fetched until Load.
func New[R, V any](name string, fetch FetchFunc[R], mapFn func(R) V, log zerolog.Logger) *Collection[R, V] {
	return &Collection[R, V]{
		name:  name,
		fetch: fetch,
		mapFn: mapFn,
		log:   log.With().Str("collection", name).Logger(),
		data:  []V{},
	}
}

// Name returns the collection name used in logs.
func (c *Collection[R, V]) Name() string { return c.name }

// Load fetches the collection and replaces the data. On failure the previous
// data is kept and the error is returned. A load that finishes after a newer
// one has already been applied is discarded.
func (c *Collection[R, V]) Load(ctx context.Context) error {
	c.mu.Lock()
	c.seq++
	id := c.seq
	c.inFlight++
	c.mu.Unlock()

	records, err := c.fetch(ctx)

	var mapped []V
	if err == nil {
		mapped = make([]V, 0, len(records))
		for _, r := range records {
			mapped = append(mapped, c.mapFn(r))
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.inFlight--

	if id < c.applied {
		c.log.Debug().Uint64("load", id).Msg("discarding superseded result")
		return nil
	}

	if err != nil {
		c.lastErr = err
		c.log.Error().Err(err).Int("kept", len(c.data)).Msg("failed to load collection")
		return fmt.Errorf("failed to load %s: %w", c.name, err)
	}

	c.applied = id
	c.data = mapped
	c.loaded = true
	c.loadedAt = time.Now()
	c.lastErr = nil
	c.log.Debug().Int("records", len(mapped)).Msg("collection loaded")
	return nil
}

// EnsureLoaded loads the collection on first use only.
func (c *Collection[R, V]) EnsureLoaded(ctx context.Context) error {
	c.mu.RLock()
	loaded := c.loaded
	c.mu.RUnlock()
	if loaded {
		return nil
	}
	return c.Load(ctx)
}

// Loading reports whether a fetch is in flight.
func (c *Collection[R, V]) Loading() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.inFlight > 0
}

// Data returns a copy of the current view-models.
func (c *Collection[R, V]) Data() []V {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]V, len(c.data))
	copy(out, c.data)
	return out
}

// Snapshot returns data and status together.
func (c *Collection[R, V]) Snapshot() Snapshot[V] {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s := Snapshot[V]{
		Data:     make([]V, len(c.data)),
		Loading:  c.inFlight > 0,
		Stale:    c.lastErr != nil,
		LoadedAt: c.loadedAt,
	}
	copy(s.Data, c.data)
	if c.lastErr != nil {
		s.Err = c.lastErr.Error()
	}
	return s
}
