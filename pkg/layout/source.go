package layout

// Size is the measured size of an item in layout units.
type Size struct {
	Width  int
	Height int
}

// Source is the dataset an engine lays out.
//
// Measure is called at most once per position while the position's entry is
// cached, and it must return the same size for the same position under the
// same lane constraints. It may have side effects (attaching a view to
// measure it) but must not call back into the engine.
type Source interface {
	Count() int
	Measure(position int) (Size, error)
}

type funcSource struct {
	count   int
	measure func(int) (Size, error)
}

func (s funcSource) Count() int { return s.count }

func (s funcSource) Measure(position int) (Size, error) {
	return s.measure(position)
}

// SourceFunc adapts a fixed item count and a measuring function to a Source.
func SourceFunc(count int, measure func(position int) (Size, error)) Source {
	return funcSource{count: count, measure: measure}
}

// Sizes is a Source over a slice of precomputed sizes.
type Sizes []Size

// Count returns the number of sizes.
func (s Sizes) Count() int { return len(s) }

// Measure returns the size at position.
func (s Sizes) Measure(position int) (Size, error) {
	return s[position], nil
}
