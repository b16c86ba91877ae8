// Package items loads item-size datasets from disk.
//
// A [Dataset] is an ordered list of items with fixed sizes. It implements
// layout.Source, so a file can drive the layout engine directly from the CLI
// or from tests.
//
// # Formats
//
// JSON:
//
//	{
//	  "items": [
//	    {"id": "a", "width": 100, "height": 80},
//	    {"id": "b", "width": 100, "height": 140}
//	  ]
//	}
//
// TOML:
//
//	[[items]]
//	id = "a"
//	width = 100
//	height = 80
//
// The id is optional and only used for labels in rendered output. The file
// format is chosen by extension (.json, .toml).
package items

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/stagger/pkg/cache"
	errs "github.com/matzehuels/stagger/pkg/errors"
	"github.com/matzehuels/stagger/pkg/layout"
)

// Item is a single measured element.
type Item struct {
	ID     string `json:"id,omitempty" toml:"id"`
	Width  int    `json:"width" toml:"width"`
	Height int    `json:"height" toml:"height"`
}

// Dataset is an ordered collection of items.
type Dataset struct {
	Items []Item `json:"items" toml:"items"`
}

// New builds a dataset from items after validating their sizes.
func New(items []Item) (*Dataset, error) {
	d := &Dataset{Items: items}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}

// Validate rejects negative sizes.
func (d *Dataset) Validate() error {
	for i, it := range d.Items {
		if err := errs.ValidateSize(it.Width, it.Height); err != nil {
			return errs.Wrap(errs.ErrCodeInvalidInput, err, "item %d", i)
		}
	}
	return nil
}

// Count implements layout.Source.
func (d *Dataset) Count() int { return len(d.Items) }

// Measure implements layout.Source.
func (d *Dataset) Measure(position int) (layout.Size, error) {
	if position < 0 || position >= len(d.Items) {
		return layout.Size{}, errs.OutOfRange(position, len(d.Items))
	}
	it := d.Items[position]
	return layout.Size{Width: it.Width, Height: it.Height}, nil
}

// Label returns the id of the item at position, or its index when it has none.
func (d *Dataset) Label(position int) string {
	if position >= 0 && position < len(d.Items) && d.Items[position].ID != "" {
		return d.Items[position].ID
	}
	return fmt.Sprint(position)
}

// Hash returns a content hash of the dataset. Two datasets with the same
// items in the same order hash equally regardless of source format.
func (d *Dataset) Hash() string {
	data, _ := json.Marshal(d.Items)
	return cache.Hash(data)
}

// ReadJSON decodes a JSON dataset from r. ReadJSON does not close r.
func ReadJSON(r io.Reader) (*Dataset, error) {
	var d Dataset
	if err := json.NewDecoder(r).Decode(&d); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidFormat, err, "decode items")
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return &d, nil
}

// ReadTOML decodes a TOML dataset from r.
func ReadTOML(r io.Reader) (*Dataset, error) {
	var d Dataset
	if _, err := toml.NewDecoder(r).Decode(&d); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidFormat, err, "decode items")
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return &d, nil
}

// WriteJSON encodes d as indented JSON to w.
func WriteJSON(d *Dataset, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(d); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// Import reads the dataset at path, choosing the decoder by extension.
func Import(path string) (*Dataset, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errs.Wrap(errs.ErrCodeFileNotFound, err, "items %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var d *Dataset
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		d, err = ReadJSON(bytes.NewReader(data))
	case ".toml":
		d, err = ReadTOML(bytes.NewReader(data))
	default:
		return nil, errs.New(errs.ErrCodeUnsupported, "unsupported items format %q (must be .json or .toml)", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}

var _ layout.Source = (*Dataset)(nil)
