package places_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storeradar/radar/internal/places"
)

type fakeProvider struct {
	mu           sync.Mutex
	queries      []string
	resolveCalls int
	suggestions  []places.Suggestion
	err          error
}

func (f *fakeProvider) Autocomplete(_ context.Context, input string) ([]places.Suggestion, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, input)
	return f.suggestions, f.err
}

func (f *fakeProvider) Resolve(_ context.Context, placeID string) (*places.Place, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resolveCalls++
	if f.err != nil {
		return nil, f.err
	}
	return &places.Place{PlaceID: placeID, Lat: 25.7, Lng: -100.3}, nil
}

func (f *fakeProvider) Name() string { return "fake" }

func TestQualifies(t *testing.T) {
	assert.False(t, places.Qualifies(""))
	assert.False(t, places.Qualifies("ab"))
	assert.False(t, places.Qualifies("  ab  "))
	assert.True(t, places.Qualifies("abc"))
	assert.True(t, places.Qualifies("Só1"), "multi-byte characters count once")
	assert.False(t, places.Qualifies("Só"))
}

func TestService_Suggest(t *testing.T) {
	provider := &fakeProvider{suggestions: []places.Suggestion{{PlaceID: "1", Description: "Monterrey"}}}
	svc := places.NewService(places.ServiceConfig{Provider: provider, Logger: zerolog.Nop()})

	assert.Empty(t, svc.Suggest(context.Background(), "mo"))
	assert.Empty(t, provider.queries, "short input must not reach the provider")

	got := svc.Suggest(context.Background(), " Monte ")
	assert.Equal(t, provider.suggestions, got)
	assert.Equal(t, []string{"Monte"}, provider.queries)
}

func TestService_SuggestDegradesOnError(t *testing.T) {
	provider := &fakeProvider{err: errors.New("quota exceeded")}
	svc := places.NewService(places.ServiceConfig{Provider: provider, Logger: zerolog.Nop()})

	got := svc.Suggest(context.Background(), "Monterrey")

	assert.NotNil(t, got)
	assert.Empty(t, got)
}

type cacheCounter struct {
	hits, misses int
}

func (c *cacheCounter) RecordCacheHit(provider, operation string) {
	if provider == "fake" && operation == "resolve" {
		c.hits++
	}
}

func (c *cacheCounter) RecordCacheMiss(provider, operation string) {
	if provider == "fake" && operation == "resolve" {
		c.misses++
	}
}

func TestService_ResolveCaches(t *testing.T) {
	provider := &fakeProvider{}
	counter := &cacheCounter{}
	svc := places.NewService(places.ServiceConfig{Provider: provider, Logger: zerolog.Nop(), Metrics: counter})

	first, err := svc.Resolve(context.Background(), "abc")
	require.NoError(t, err)
	second, err := svc.Resolve(context.Background(), "abc")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, provider.resolveCalls)
	assert.Equal(t, 1, counter.hits)
	assert.Equal(t, 1, counter.misses)

	_, err = svc.Resolve(context.Background(), " ")
	assert.ErrorIs(t, err, places.ErrInvalidPlaceID)
}

func TestService_ResolveCachePrunesExpired(t *testing.T) {
	provider := &fakeProvider{}
	svc := places.NewService(places.ServiceConfig{
		Provider:        provider,
		Logger:          zerolog.Nop(),
		ResolveCacheTTL: 20 * time.Millisecond,
	})

	for _, id := range []string{"a", "b", "c"} {
		_, err := svc.Resolve(context.Background(), id)
		require.NoError(t, err)
	}
	assert.Equal(t, 3, svc.CachedPlaces())

	time.Sleep(40 * time.Millisecond)

	_, err := svc.Resolve(context.Background(), "d")
	require.NoError(t, err)
	assert.Equal(t, 1, svc.CachedPlaces(), "expired entries are dropped on insert")
}

func TestService_ResolveCacheBounded(t *testing.T) {
	provider := &fakeProvider{}
	svc := places.NewService(places.ServiceConfig{
		Provider:         provider,
		Logger:           zerolog.Nop(),
		ResolveCacheSize: 2,
	})

	for _, id := range []string{"a", "b", "c"} {
		_, err := svc.Resolve(context.Background(), id)
		require.NoError(t, err)
		time.Sleep(time.Millisecond)
	}
	assert.Equal(t, 2, svc.CachedPlaces())

	// "a" was evicted, "c" is still cached.
	_, err := svc.Resolve(context.Background(), "c")
	require.NoError(t, err)
	assert.Equal(t, 3, provider.resolveCalls)

	_, err = svc.Resolve(context.Background(), "a")
	require.NoError(t, err)
	assert.Equal(t, 4, provider.resolveCalls)
}

func TestService_ResolveError(t *testing.T) {
	provider := &fakeProvider{err: places.ErrNoResults}
	svc := places.NewService(places.ServiceConfig{Provider: provider, Logger: zerolog.Nop()})

	_, err := svc.Resolve(context.Background(), "abc")
	assert.ErrorIs(t, err, places.ErrNoResults)
}

func TestDebouncer_OnlyLastFires(t *testing.T) {
	d := places.NewDebouncer(30 * time.Millisecond)
	defer d.Stop()

	var fired atomic.Int32
	var lastGen atomic.Uint64
	done := make(chan struct{}, 3)

	for i := 0; i < 3; i++ {
		d.Schedule(func(gen uint64) {
			fired.Add(1)
			lastGen.Store(gen)
			done <- struct{}{}
		})
	}
	assert.True(t, d.Pending())

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("debounced call never fired")
	}
	time.Sleep(60 * time.Millisecond)

	assert.Equal(t, int32(1), fired.Load())
	assert.Equal(t, uint64(3), lastGen.Load())
	assert.False(t, d.Pending())
}

func TestDebouncer_Cancel(t *testing.T) {
	d := places.NewDebouncer(20 * time.Millisecond)

	var fired atomic.Int32
	d.Schedule(func(uint64) { fired.Add(1) })
	d.Cancel()

	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, int32(0), fired.Load())
}

func TestDebouncer_Stop(t *testing.T) {
	d := places.NewDebouncer(10 * time.Millisecond)
	d.Stop()

	var fired atomic.Int32
	d.Schedule(func(uint64) { fired.Add(1) })

	time.Sleep(40 * time.Millisecond)
	assert.Equal(t, int32(0), fired.Load())
	assert.False(t, d.Pending())
}
