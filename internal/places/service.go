package places

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"
)

// CacheMetrics records resolve cache outcomes.
type CacheMetrics interface {
	RecordCacheHit(provider, operation string)
	RecordCacheMiss(provider, operation string)
}

// ServiceConfig holds configuration for the places service.
type ServiceConfig struct {
	// Provider is the place search provider.
	Provider Provider

	// Logger for service operations.
	Logger zerolog.Logger

	// ResolveCacheTTL is how long resolved coordinates are kept (default: 1 hour).
	ResolveCacheTTL time.Duration

	// ResolveCacheSize bounds the number of cached places (default: 1000).
	ResolveCacheSize int

	// Metrics is optional.
	Metrics CacheMetrics
}

// Service wraps a provider with the search policy. Lookup failures degrade to
// empty results and are only logged.
type Service struct {
	provider Provider
	logger   zerolog.Logger
	cacheTTL  time.Duration
	cacheSize int
	metrics   CacheMetrics

	mu           sync.RWMutex
	resolveCache map[string]*cachedPlace
}

type cachedPlace struct {
	place     Place
	expiresAt time.Time
}

// NewService creates a new places service.
func NewService(cfg ServiceConfig) *Service {
	ttl := cfg.ResolveCacheTTL
	if ttl == 0 {
		ttl = time.Hour
	}

	size := cfg.ResolveCacheSize
	if size <= 0 {
		size = 1000
	}

	return &Service{
		provider:     cfg.Provider,
		logger:       cfg.Logger,
		cacheTTL:     ttl,
		cacheSize:    size,
		metrics:      cfg.Metrics,
		resolveCache: make(map[string]*cachedPlace),
	}
}

// Qualifies reports whether text is long enough to be looked up.
func Qualifies(text string) bool {
	return utf8.RuneCountInString(strings.TrimSpace(text)) >= MinQueryLength
}

// Suggest returns candidates for text. Short input, provider errors and
// empty answers all yield an empty list.
func (s *Service) Suggest(ctx context.Context, text string) []Suggestion {
	if !Qualifies(text) || s.provider == nil {
		return []Suggestion{}
	}

	suggestions, err := s.provider.Autocomplete(ctx, strings.TrimSpace(text))
	if err != nil {
		s.logger.Warn().
			Err(err).
			Str("provider", s.provider.Name()).
			Str("input", text).
			Msg("place autocomplete failed")
		return []Suggestion{}
	}
	if suggestions == nil {
		return []Suggestion{}
	}
	return suggestions
}

// Resolve returns the coordinate for placeID.
func (s *Service) Resolve(ctx context.Context, placeID string) (*Place, error) {
	placeID = strings.TrimSpace(placeID)
	if placeID == "" {
		return nil, ErrInvalidPlaceID
	}

	s.mu.RLock()
	if cached, ok := s.resolveCache[placeID]; ok && time.Now().Before(cached.expiresAt) {
		s.mu.RUnlock()
		s.recordCache(true)
		p := cached.place
		return &p, nil
	}
	s.mu.RUnlock()
	s.recordCache(false)

	if s.provider == nil {
		return nil, ErrNoResults
	}

	place, err := s.provider.Resolve(ctx, placeID)
	if err != nil {
		s.logger.Warn().
			Err(err).
			Str("provider", s.provider.Name()).
			Str("place_id", placeID).
			Msg("place resolution failed")
		return nil, fmt.Errorf("resolving place %s: %w", placeID, err)
	}

	s.store(placeID, *place)

	return place, nil
}

// store caches place under placeID. Expired entries are pruned first; a full
// cache then drops the entry closest to expiry.
func (s *Service) store(placeID string, place Place) {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	for id, cached := range s.resolveCache {
		if !now.Before(cached.expiresAt) {
			delete(s.resolveCache, id)
		}
	}
	if _, ok := s.resolveCache[placeID]; !ok && len(s.resolveCache) >= s.cacheSize {
		var (
			oldestID string
			oldest   time.Time
		)
		for id, cached := range s.resolveCache {
			if oldestID == "" || cached.expiresAt.Before(oldest) {
				oldestID, oldest = id, cached.expiresAt
			}
		}
		delete(s.resolveCache, oldestID)
	}
	s.resolveCache[placeID] = &cachedPlace{place: place, expiresAt: now.Add(s.cacheTTL)}
}

// CachedPlaces returns the number of entries in the resolve cache.
func (s *Service) CachedPlaces() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.resolveCache)
}

func (s *Service) recordCache(hit bool) {
	if s.metrics == nil {
		return
	}
	name := "places"
	if s.provider != nil {
		name = s.provider.Name()
	}
	if hit {
		s.metrics.RecordCacheHit(name, "resolve")
	} else {
		s.metrics.RecordCacheMiss(name, "resolve")
	}
}
