package store

import (
	"fmt"
	"os"
	"time"

	"github.com/fxamacker/cbor/v2"

	"github.com/padrec/padrec/library"
	"github.com/padrec/padrec/macro"
)

// snapshot is the autosave form: the whole library, metadata included, in a
// compact binary encoding.
type snapshot struct {
	Version   string                      `cbor:"version"`
	Created   time.Time                   `cbor:"created"`
	Macros    map[string][]macro.Event    `cbor:"macros"`
	Meta      map[string]library.Metadata `cbor:"meta"`
	Favorites []string                    `cbor:"favorites"`
}

// WriteSnapshot saves the full library state to path.
func WriteSnapshot(path string, lib *library.Library) error {
	snap := snapshot{
		Version:   FormatVersion,
		Created:   time.Now(),
		Macros:    map[string][]macro.Event{},
		Meta:      map[string]library.Metadata{},
		Favorites: lib.Favorites(),
	}
	for _, name := range lib.List("") {
		events, _ := lib.Get(name)
		snap.Macros[name] = events
		if meta, ok := lib.Metadata(name); ok {
			snap.Meta[name] = meta
		}
	}

	data, err := cbor.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	return nil
}

// ReadSnapshot restores a library saved by WriteSnapshot.
func ReadSnapshot(path string) (*library.Library, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}

	var snap snapshot
	if err := cbor.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}

	lib := library.New()
	for name, events := range snap.Macros {
		meta, ok := snap.Meta[name]
		if !ok {
			meta = library.Metadata{
				Name:       name,
				Duration:   macro.Duration(events),
				InputCount: len(events),
				Kind:       library.KindSimple,
			}
		}
		if err := lib.Put(name, events, meta); err != nil {
			return nil, err
		}
	}
	lib.SetFavorites(snap.Favorites)
	return lib, nil
}
