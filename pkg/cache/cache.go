// Package cache stores opaque byte blobs for stagger, primarily serialized
// layout snapshots.
//
// Backends:
//   - [FileCache]: one JSON file per key under a directory (CLI default)
//   - [RedisCache]: shared store for several hosts of the same dataset
//   - [MongoCache]: durable shared store with server-side expiry
//   - [NullCache]: caching disabled
//
// Keys come from a [Keyer] so that snapshots taken under different lane
// configurations never collide.
package cache

import (
	"context"
	"time"
)

// TTLSnapshot is how long a layout snapshot stays valid. Measured sizes only
// change when the dataset does, and a changed dataset hashes to a new key.
const TTLSnapshot = 30 * 24 * time.Hour

// Cache is a byte-oriented key/value store with per-entry TTL.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get returns the data for key and whether it was found.
	// A miss is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl <= 0 means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// SnapshotKeyOpts are the layout settings a snapshot depends on. Entries
// measured under one configuration are meaningless under another.
type SnapshotKeyOpts struct {
	Lanes       int    `json:"lanes"`
	LaneSize    int    `json:"lane_size"`
	Orientation string `json:"orientation"`
	Strategy    string `json:"strategy"`
}

// Keyer derives cache keys.
type Keyer interface {
	// SnapshotKey returns the key for the snapshot of the dataset whose
	// content hash is datasetHash.
	SnapshotKey(datasetHash string, opts SnapshotKeyOpts) string
}

// DefaultKeyer hashes key components with SHA-256.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// SnapshotKey implements Keyer.
func (DefaultKeyer) SnapshotKey(datasetHash string, opts SnapshotKeyOpts) string {
	return hashKey("snapshot", datasetHash, opts)
}
