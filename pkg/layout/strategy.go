package layout

import (
	"strings"

	errs "github.com/matzehuels/stagger/pkg/errors"
	"github.com/matzehuels/stagger/pkg/lanes"
)

// Strategy decides which lane an item goes to and how lane state is rebuilt
// for a jump to an arbitrary position.
type Strategy interface {
	// Name identifies the strategy in logs, metrics and snapshots.
	Name() string

	// LaneForPosition returns the lane of position when extending toward
	// dir, predicting it if position has not been placed yet. It must not
	// record anything.
	LaneForPosition(e *Engine, position int, dir lanes.Direction) lanes.LaneID

	// MoveToPosition rebuilds e's lanes so the item at position starts at
	// offset. position has already been range-checked.
	MoveToPosition(e *Engine, position, offset int) error
}

// Strategy names accepted by [ParseStrategy].
const (
	StrategyStaggered = "staggered"
	StrategyGrid      = "grid"
)

// ParseStrategy returns the strategy registered under name.
func ParseStrategy(name string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case StrategyStaggered, "":
		return Staggered{}, nil
	case StrategyGrid:
		return Grid{}, nil
	}
	return nil, errs.ValidateChoice("strategy", name, StrategyStaggered, StrategyGrid)
}
