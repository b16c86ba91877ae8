package cache

// ScopedKeyer wraps a Keyer with a prefix, so several datasets or tenants
// can share one Redis instance without their snapshots colliding.
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "feed:home:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// SnapshotKey generates a prefixed snapshot key.
func (k *ScopedKeyer) SnapshotKey(datasetHash string, opts SnapshotKeyOpts) string {
	return k.prefix + k.inner.SnapshotKey(datasetHash, opts)
}
