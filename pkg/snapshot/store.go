package snapshot

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/singleflight"

	"github.com/matzehuels/stagger/pkg/cache"
	"github.com/matzehuels/stagger/pkg/layout"
	"github.com/matzehuels/stagger/pkg/observability"
)

// keyType labels snapshot traffic in cache hooks.
const keyType = "snapshot"

// Store saves and restores snapshots through a [cache.Cache]. Keys combine
// the dataset hash with the engine's lane configuration, so engines with
// different settings never see each other's entries.
//
// A Store holds no per-dataset state and may be shared between goroutines
// as long as each goroutine uses its own engine. Concurrent loads of the same
// key share one cache read.
type Store struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
	TTL    time.Duration

	flight singleflight.Group
}

// fetched is the shared result of one coalesced cache read.
type fetched struct {
	data []byte
	hit  bool
}

// NewStore creates a store. A nil cache disables persistence, a nil keyer
// uses [cache.DefaultKeyer] and a nil logger uses log.Default().
func NewStore(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Store {
	if c == nil {
		c = cache.NewNullCache()
	}
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Store{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
		TTL:    cache.TTLSnapshot,
	}
}

// Key returns the cache key for the snapshot of dataset laid out by e.
func (s *Store) Key(dataset string, e *layout.Engine) string {
	ls := e.Lanes()
	return s.Keyer.SnapshotKey(dataset, cache.SnapshotKeyOpts{
		Lanes:       ls.Count(),
		LaneSize:    ls.LaneSize(),
		Orientation: ls.Orientation().String(),
		Strategy:    e.Strategy().Name(),
	})
}

// Save captures e's entries and writes them under dataset's key.
func (s *Store) Save(ctx context.Context, dataset string, e *layout.Engine) (*Snapshot, error) {
	snap := Capture(e)
	data, err := Encode(snap)
	if err != nil {
		return nil, err
	}

	key := s.Key(dataset, e)
	err = cache.RetryWithBackoff(ctx, func() error {
		return s.Cache.Set(ctx, key, data, s.TTL)
	})
	if err != nil {
		return nil, fmt.Errorf("save snapshot: %w", err)
	}
	observability.Cache().OnCacheSet(ctx, keyType, len(data))

	s.Logger.Debug("saved snapshot", "id", snap.ID, "entries", len(snap.Entries), "bytes", len(data))
	return snap, nil
}

// Load restores the snapshot stored for dataset into e. It returns the number
// of entries restored and whether a snapshot was found. A stored snapshot
// that fails to decode or does not fit e is deleted and reported as a miss.
func (s *Store) Load(ctx context.Context, dataset string, e *layout.Engine) (int, bool, error) {
	key := s.Key(dataset, e)

	v, err, shared := s.flight.Do(key, func() (any, error) {
		var f fetched
		err := cache.RetryWithBackoff(ctx, func() error {
			var err error
			f.data, f.hit, err = s.Cache.Get(ctx, key)
			return err
		})
		return f, err
	})
	if err != nil {
		return 0, false, fmt.Errorf("load snapshot: %w", err)
	}
	f := v.(fetched)
	data, hit := f.data, f.hit
	if shared {
		s.Logger.Debug("shared snapshot read", "key", key)
	}
	if !hit {
		observability.Cache().OnCacheMiss(ctx, keyType)
		return 0, false, nil
	}

	snap, err := Decode(data)
	var n int
	if err == nil {
		n, err = snap.Restore(e)
	}
	if err != nil {
		observability.Cache().OnCacheMiss(ctx, keyType)
		s.Logger.Warn("discarding stored snapshot", "err", err)
		_ = s.Cache.Delete(ctx, key)
		return 0, false, nil
	}

	observability.Cache().OnCacheHit(ctx, keyType)
	s.Logger.Debug("restored snapshot", "id", snap.ID, "entries", n)
	return n, true, nil
}

// Delete removes the snapshot stored for dataset under e's configuration.
func (s *Store) Delete(ctx context.Context, dataset string, e *layout.Engine) error {
	return s.Cache.Delete(ctx, s.Key(dataset, e))
}
