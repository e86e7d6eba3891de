// Package file implements ports.ConfigStore over a single YAML document on
// disk. This is the store the CLI uses: the same config file the tracking
// pipeline reads, with the wizard only touching the keys it owns.
package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Store implements ports.ConfigStore over one YAML file. Keys the wizard does
// not know are preserved across writes.
type Store struct {
	// Path is the backing YAML document.
	Path string

	doc    map[string]any
	staged map[string]any
}

// New creates a store over the YAML document at path. Nothing is read until
// Load.
func New(path string) *Store {
	return &Store{
		Path:   path,
		doc:    make(map[string]any),
		staged: make(map[string]any),
	}
}

// Load reads and parses the document. A missing file is a normal first run
// and leaves the store empty; read and parse failures also leave it empty
// but return the cause.
func (s *Store) Load(ctx context.Context) error {
	s.doc = make(map[string]any)

	data, err := os.ReadFile(s.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading config %s: %w", s.Path, err)
	}

	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parsing config %s: %w", s.Path, err)
	}
	if doc != nil {
		s.doc = doc
	}
	return nil
}

// Get returns the value for key, staged values first.
func (s *Store) Get(key string) (any, bool) {
	if v, ok := s.staged[key]; ok {
		return v, true
	}
	v, ok := s.doc[key]
	return v, ok
}

// Add stages a value for the next Write.
func (s *Store) Add(key string, value any) {
	s.staged[key] = value
}

// Write folds the staged values into the document and replaces the file
// atomically: temp file in the same directory, fsync, then rename. Staged
// values survive a failed write so a retry can flush them.
func (s *Store) Write(ctx context.Context) error {
	merged := make(map[string]any, len(s.doc)+len(s.staged))
	for k, v := range s.doc {
		merged[k] = v
	}
	for k, v := range s.staged {
		merged[k] = v
	}

	data, err := yaml.Marshal(merged)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	dir := filepath.Dir(s.Path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("ensuring config directory: %w", err)
	}

	// Temp file in the same directory keeps it on the same filesystem, which
	// the atomic rename requires.
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.Path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp config: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath) // no-op once renamed
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("writing temp config: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("syncing temp config: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp config: %w", err)
	}

	// On Windows os.Rename refuses to replace an existing file, so remove the
	// destination first. The window this opens is small and beats a torn write.
	if _, err := os.Stat(s.Path); err == nil {
		if err := os.Remove(s.Path); err != nil {
			return fmt.Errorf("replacing config: %w", err)
		}
	}
	if err := os.Rename(tmpPath, s.Path); err != nil {
		return fmt.Errorf("renaming temp config: %w", err)
	}

	s.doc = merged
	s.staged = make(map[string]any)
	return nil
}
