package dataset

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/paulmach/orb"
	"github.com/rs/zerolog"
)

// Snapshot is a read-only view of the store at a given version.
// Points must not be modified by callers.
type Snapshot struct {
	Points   []Point
	Version  uint64
	LoadedAt time.Time
}

// Bound returns the bounding box enclosing every point in the snapshot.
func (s Snapshot) Bound() orb.Bound {
	if len(s.Points) == 0 {
		return orb.Bound{}
	}
	b := s.Points[0].Location.Bound()
	for _, p := range s.Points[1:] {
		b = b.Extend(p.Location)
	}
	return b
}

// Find returns the point with the given key.
func (s Snapshot) Find(key string) (Point, bool) {
	for _, p := range s.Points {
		if p.Key == key {
			return p, true
		}
	}
	return Point{}, false
}

// Store holds the full point collection. Every reload replaces the collection
// wholesale and bumps the version, so derived layers can tell when to rebuild.
type Store struct {
	logger zerolog.Logger

	mu       sync.RWMutex
	points   []Point
	version  uint64
	loadedAt time.Time
}

// NewStore creates an empty store.
func NewStore(logger zerolog.Logger) *Store {
	return &Store{logger: logger}
}

// Snapshot returns the current collection.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		Points:   s.points,
		Version:  s.version,
		LoadedAt: s.loadedAt,
	}
}

// Loaded reports whether a collection has been loaded at least once.
func (s *Store) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version > 0
}

// Replace swaps in a new collection. Invalid points are dropped.
// It returns the number of points kept.
func (s *Store) Replace(points []Point) int {
	kept := make([]Point, 0, len(points))
	rejected := 0
	for _, p := range points {
		if err := p.Validate(); err != nil {
			rejected++
			s.logger.Warn().
				Str("store_id", p.StoreID).
				Err(err).
				Msg("skipping invalid store point")
			continue
		}
		kept = append(kept, p)
	}
	duplicates := assignKeys(kept)

	s.mu.Lock()
	s.points = kept
	s.version++
	s.loadedAt = time.Now()
	version := s.version
	s.mu.Unlock()

	s.logger.Info().
		Int("points", len(kept)).
		Int("rejected", rejected).
		Int("duplicate_ids", duplicates).
		Uint64("version", version).
		Msg("dataset replaced")

	return len(kept)
}

// assignKeys gives every point a unique key: its store id on first use,
// "<id>~<n>" for later rows sharing that id and "row-<n>" when the id is
// missing. It returns the number of repeated ids.
func assignKeys(points []Point) int {
	seen := make(map[string]bool, len(points))
	duplicates := 0
	for i := range points {
		base := points[i].StoreID
		if base == "" {
			base = "row-" + strconv.Itoa(i+1)
		} else if seen[base] {
			duplicates++
		}
		key := base
		for n := 2; seen[key]; n++ {
			key = base + "~" + strconv.Itoa(n)
		}
		seen[key] = true
		points[i].Key = key
	}
	return duplicates
}

// Reload loads the collection from repo and replaces the current one.
// On error the current collection is kept.
func (s *Store) Reload(ctx context.Context, repo Repository) (int, error) {
	points, err := repo.Load(ctx)
	if err != nil {
		return 0, fmt.Errorf("loading dataset from %s: %w", repo.Name(), err)
	}
	return s.Replace(points), nil
}
