// Package snapshot persists the entry cache of a layout engine.
//
// A [Snapshot] is the engine's write-once placement records plus the lane
// configuration they were computed under. Restoring a snapshot into a fresh
// engine lets a replay to any position skip the measurement collaborator for
// every item placed in an earlier session.
//
// # JSON Format
//
//	{
//	  "version": 1,
//	  "id": "0b6f5c1e-...",
//	  "created_at": "2024-05-01T12:00:00Z",
//	  "lanes": 2,
//	  "lane_size": 100,
//	  "orientation": "vertical",
//	  "strategy": "staggered",
//	  "entries": [
//	    {"position": 0, "lane": 0, "width": 100, "height": 100},
//	    {"position": 1, "lane": 1, "width": 100, "height": 80}
//	  ]
//	}
//
// Entries are ordered by position. A snapshot taken under a different lane
// count or orientation is rejected on restore with
// [errs.ErrCodeInvalidSnapshot]; lane assignments are meaningless under any
// other configuration.
//
// Use [Read]/[Write] for streams, [Import]/[Export] for files and [Store] to
// keep snapshots in a [cache.Cache].
//
// [errs.ErrCodeInvalidSnapshot]: github.com/matzehuels/stagger/pkg/errors
// [cache.Cache]: github.com/matzehuels/stagger/pkg/cache
package snapshot

import (
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/stagger/pkg/entry"
	errs "github.com/matzehuels/stagger/pkg/errors"
	"github.com/matzehuels/stagger/pkg/layout"
)

// Version is the snapshot format version written by this package.
const Version = 1

// Snapshot is a serializable copy of an engine's entry cache.
type Snapshot struct {
	Version     int            `json:"version"`
	ID          string         `json:"id"`
	CreatedAt   time.Time      `json:"created_at"`
	Lanes       int            `json:"lanes"`
	LaneSize    int            `json:"lane_size"`
	Orientation string         `json:"orientation"`
	Strategy    string         `json:"strategy"`
	Entries     []entry.Record `json:"entries"`
}

// Capture copies the current entries of e into a new snapshot.
func Capture(e *layout.Engine) *Snapshot {
	ls := e.Lanes()
	return &Snapshot{
		Version:     Version,
		ID:          uuid.NewString(),
		CreatedAt:   time.Now().UTC(),
		Lanes:       ls.Count(),
		LaneSize:    ls.LaneSize(),
		Orientation: ls.Orientation().String(),
		Strategy:    e.Strategy().Name(),
		Entries:     e.Entries().Records(),
	}
}

// Validate checks the header fields. Entry records are validated when they
// are loaded.
func (s *Snapshot) Validate() error {
	if s.Version != Version {
		return errs.New(errs.ErrCodeInvalidSnapshot, "unsupported snapshot version %d", s.Version)
	}
	if s.Lanes <= 0 {
		return errs.New(errs.ErrCodeInvalidSnapshot, "snapshot lane count must be positive, got %d", s.Lanes)
	}
	for _, r := range s.Entries {
		if r.Lane >= s.Lanes {
			return errs.New(errs.ErrCodeInvalidSnapshot,
				"position %d: lane %d out of range for %d lanes", r.Position, r.Lane, s.Lanes)
		}
	}
	return nil
}

// Compatible reports whether s can be restored into e. Lane count,
// orientation and strategy must match: restored lanes are final, so a grid
// snapshot would pin a staggered engine to grid lanes. Lane size only scales
// cross-axis geometry, which is recomputed on replay.
func (s *Snapshot) Compatible(e *layout.Engine) error {
	ls := e.Lanes()
	if s.Lanes != ls.Count() {
		return errs.New(errs.ErrCodeInvalidSnapshot,
			"snapshot has %d lanes, engine has %d", s.Lanes, ls.Count())
	}
	if s.Orientation != ls.Orientation().String() {
		return errs.New(errs.ErrCodeInvalidSnapshot,
			"snapshot orientation %s, engine orientation %s", s.Orientation, ls.Orientation())
	}
	if name := e.Strategy().Name(); s.Strategy != name {
		return errs.New(errs.ErrCodeInvalidSnapshot,
			"snapshot strategy %q, engine strategy %q", s.Strategy, name)
	}
	return nil
}

// Restore loads the snapshot's entries into e and returns how many were
// stored. Records at or past the engine's item count are skipped. Entries
// already cached in e are kept.
func (s *Snapshot) Restore(e *layout.Engine) (int, error) {
	if err := s.Validate(); err != nil {
		return 0, err
	}
	if err := s.Compatible(e); err != nil {
		return 0, err
	}

	count := e.Source().Count()
	records := make([]entry.Record, 0, len(s.Entries))
	for _, r := range s.Entries {
		if r.Position < count {
			records = append(records, r)
		}
	}
	return e.Entries().Load(records)
}
