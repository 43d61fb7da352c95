package loader_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tokoadmin/internal/loader"
)

type fakeSource struct {
	mu      sync.Mutex
	records []string
	err     error
}

func (f *fakeSource) fetch(ctx context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return append([]string(nil), f.records...), nil
}

func (f *fakeSource) set(records []string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records, f.err = records, err
}

func TestLoad_MapsRecords(t *testing.T) {
	src := &fakeSource{records: []string{"a", "b"}}
	c := loader.New("letters", src.fetch, strings.ToUpper, zerolog.Nop())

	assert.Empty(t, c.Data())
	require.NoError(t, c.Load(context.Background()))

	snap := c.Snapshot()
	assert.Equal(t, []string{"A", "B"}, snap.Data)
	assert.False(t, snap.Loading)
	assert.False(t, snap.Stale)
	assert.False(t, snap.LoadedAt.IsZero())
}

func TestLoad_KeepsPreviousDataOnError(t *testing.T) {
	src := &fakeSource{records: []string{"a"}}
	c := loader.New("letters", src.fetch, strings.ToUpper, zerolog.Nop())
	require.NoError(t, c.Load(context.Background()))

	src.set(nil, errors.New("connection refused"))
	err := c.Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "letters")

	snap := c.Snapshot()
	assert.Equal(t, []string{"A"}, snap.Data)
	assert.True(t, snap.Stale)
	assert.Contains(t, snap.Err, "connection refused")

	src.set([]string{"c"}, nil)
	require.NoError(t, c.Load(context.Background()))
	assert.False(t, c.Snapshot().Stale)
	assert.Equal(t, []string{"C"}, c.Data())
}

func TestLoad_FirstLoadFailureLeavesEmpty(t *testing.T) {
	src := &fakeSource{err: errors.New("boom")}
	c := loader.New("letters", src.fetch, strings.ToUpper, zerolog.Nop())

	assert.Error(t, c.Load(context.Background()))
	assert.Empty(t, c.Data())
	assert.NotNil(t, c.Data(), "empty, not nil")
}

func TestLoad_DiscardsSupersededResult(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	calls := 0
	var mu sync.Mutex

	fetch := func(ctx context.Context) ([]string, error) {
		mu.Lock()
		calls++
		n := calls
		mu.Unlock()
		if n == 1 {
			close(started)
			<-release
			return []string{"old"}, nil
		}
		return []string{"new"}, nil
	}
	c := loader.New("letters", fetch, strings.ToUpper, zerolog.Nop())

	done := make(chan error)
	go func() { done <- c.Load(context.Background()) }()
	<-started
	assert.True(t, c.Loading())

	require.NoError(t, c.Load(context.Background()))
	assert.Equal(t, []string{"NEW"}, c.Data())

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, []string{"NEW"}, c.Data(), "late result of the older load is dropped")
	assert.False(t, c.Loading())
}

func TestEnsureLoaded_FetchesOnce(t *testing.T) {
	calls := 0
	fetch := func(ctx context.Context) ([]string, error) {
		calls++
		return []string{"x"}, nil
	}
	c := loader.New("letters", fetch, strings.ToUpper, zerolog.Nop())

	require.NoError(t, c.EnsureLoaded(context.Background()))
	require.NoError(t, c.EnsureLoaded(context.Background()))
	assert.Equal(t, 1, calls)
}
