// trace/store.go
// Copyright(c) 2022-2025 a32nx contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package trace

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/salvapatuel/a32nx/log"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Store is a directory of reference traces. Decoded traces are cached
// since the same reference is typically replayed many times in a run.
// Traces returned by the store are shared and must not be modified.
type Store struct {
	dir   string
	lg    *log.Logger
	cache *expirable.LRU[string, *Trace]
}

func NewStore(dir string, lg *log.Logger) *Store {
	return &Store{
		dir:   dir,
		lg:    lg,
		cache: expirable.NewLRU[string, *Trace](16, nil, 30*time.Minute),
	}
}

func (s *Store) Path(name string) string {
	return filepath.Join(s.dir, name+FileSuffix)
}

// Get returns the named trace, loading it if it is not cached.
func (s *Store) Get(name string) (*Trace, error) {
	if t, ok := s.cache.Get(name); ok {
		return t, nil
	}

	t, err := LoadFile(s.Path(name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", name, ErrTraceNotFound)
	} else if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	s.lg.Debugf("%s: loaded trace with %d frames", name, len(t.Frames))
	s.cache.Add(name, t)
	return t, nil
}

// Put saves the trace under its name, replacing any existing one.
func (s *Store) Put(t *Trace) error {
	if t.Name == "" || strings.ContainsAny(t.Name, `/\`) {
		return fmt.Errorf("%q: invalid trace name", t.Name)
	}
	if err := SaveFile(s.Path(t.Name), t); err != nil {
		return err
	}
	s.cache.Add(t.Name, t)
	return nil
}

// List returns the names of the traces in the store, sorted.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	} else if err != nil {
		return nil, err
	}

	var names []string
	for _, e := range entries {
		if n, ok := strings.CutSuffix(e.Name(), FileSuffix); ok && !e.IsDir() {
			names = append(names, n)
		}
	}
	slices.Sort(names)
	return names, nil
}
