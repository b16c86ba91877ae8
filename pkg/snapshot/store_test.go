package snapshot

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/stagger/pkg/cache"
	"github.com/matzehuels/stagger/pkg/layout"
	"github.com/matzehuels/stagger/pkg/observability"
)

type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemCache() *memCache { return &memCache{data: make(map[string][]byte)} }

func (c *memCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	d, ok := c.data[key]
	return d, ok, nil
}

func (c *memCache) Set(_ context.Context, key string, data []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = data
	return nil
}

func (c *memCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

func (c *memCache) Close() error { return nil }

type countingCacheHooks struct {
	hits, misses, sets int
}

func (h *countingCacheHooks) OnCacheHit(context.Context, string)      { h.hits++ }
func (h *countingCacheHooks) OnCacheMiss(context.Context, string)     { h.misses++ }
func (h *countingCacheHooks) OnCacheSet(context.Context, string, int) { h.sets++ }

func TestStoreSaveLoad(t *testing.T) {
	hooks := &countingCacheHooks{}
	observability.SetCacheHooks(hooks)
	defer observability.Reset()

	ctx := context.Background()
	store := NewStore(newMemCache(), nil, log.New(io.Discard))
	src := sizes(12)

	first := newEngine(t, src)
	if n, found, err := store.Load(ctx, "ds", first); err != nil || found || n != 0 {
		t.Fatalf("Load() on empty store = %d, %v, %v; want miss", n, found, err)
	}
	if _, err := first.Layout(0, 0, 12); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Save(ctx, "ds", first); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	second := newEngine(t, src)
	n, found, err := store.Load(ctx, "ds", second)
	if err != nil || !found {
		t.Fatalf("Load() = %d, %v, %v; want hit", n, found, err)
	}
	if n != 12 {
		t.Errorf("Load() restored %d, want 12", n)
	}

	if hooks.hits != 1 || hooks.misses != 1 || hooks.sets != 1 {
		t.Errorf("hooks hits/misses/sets = %d/%d/%d, want 1/1/1", hooks.hits, hooks.misses, hooks.sets)
	}
}

func TestStoreKeysByConfiguration(t *testing.T) {
	ctx := context.Background()
	store := NewStore(newMemCache(), nil, log.New(io.Discard))
	src := sizes(6)

	two := newEngine(t, src, layout.WithLanes(2))
	if _, err := two.Layout(0, 0, 6); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Save(ctx, "ds", two); err != nil {
		t.Fatal(err)
	}

	three := newEngine(t, src, layout.WithLanes(3))
	if _, found, _ := store.Load(ctx, "ds", three); found {
		t.Error("three-lane engine should not see the two-lane snapshot")
	}
	if _, found, _ := store.Load(ctx, "other", newEngine(t, src, layout.WithLanes(2))); found {
		t.Error("different dataset should not see the snapshot")
	}
}

func TestStoreDiscardsCorruptSnapshot(t *testing.T) {
	ctx := context.Background()
	mc := newMemCache()
	store := NewStore(mc, nil, log.New(io.Discard))
	e := newEngine(t, sizes(3))

	key := store.Key("ds", e)
	mc.data[key] = []byte("not json")

	_, found, err := store.Load(ctx, "ds", e)
	if err != nil || found {
		t.Errorf("Load(corrupt) = found %v, err %v; want clean miss", found, err)
	}
	if _, ok := mc.data[key]; ok {
		t.Error("corrupt snapshot should be deleted")
	}
}

func TestStoreNilDefaults(t *testing.T) {
	store := NewStore(nil, nil, nil)
	if _, ok := store.Cache.(*cache.NullCache); !ok {
		t.Errorf("Cache = %T, want *cache.NullCache", store.Cache)
	}
	if store.TTL != cache.TTLSnapshot {
		t.Errorf("TTL = %v, want %v", store.TTL, cache.TTLSnapshot)
	}
}

func TestStoreConcurrentLoad(t *testing.T) {
	ctx := context.Background()
	store := NewStore(newMemCache(), nil, log.New(io.Discard))
	src := sizes(20)

	seed := newEngine(t, src)
	if _, err := seed.Layout(0, 0, 20); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Save(ctx, "ds", seed); err != nil {
		t.Fatal(err)
	}

	const readers = 8
	engines := make([]*layout.Engine, readers)
	for i := range engines {
		engines[i] = newEngine(t, src)
	}
	restored := make([]int, readers)
	var wg sync.WaitGroup
	for i := range engines {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			n, found, err := store.Load(ctx, "ds", engines[i])
			if err != nil || !found {
				t.Errorf("Load() = %d, %v, %v; want hit", n, found, err)
			}
			restored[i] = n
		}(i)
	}
	wg.Wait()

	for i, n := range restored {
		if n != 20 {
			t.Errorf("reader %d restored %d entries, want 20", i, n)
		}
	}
}
