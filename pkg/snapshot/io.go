package snapshot

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	errs "github.com/matzehuels/stagger/pkg/errors"
)

// Read decodes and validates a snapshot from r. Read does not close r.
func Read(r io.Reader) (*Snapshot, error) {
	var s Snapshot
	if err := json.NewDecoder(r).Decode(&s); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidSnapshot, err, "decode snapshot")
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Write encodes s as indented JSON to w.
func Write(s *Snapshot, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// Encode returns the compact JSON form of s, as stored in caches.
func Encode(s *Snapshot) ([]byte, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	return data, nil
}

// Decode is [Read] for an in-memory buffer.
func Decode(data []byte) (*Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidSnapshot, err, "decode snapshot")
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Import reads a snapshot file.
func Import(path string) (*Snapshot, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, errs.Wrap(errs.ErrCodeFileNotFound, err, "snapshot %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return Read(f)
}

// Export writes s to a file at path.
func Export(s *Snapshot, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := Write(s, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
