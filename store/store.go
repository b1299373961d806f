// Package store persists macros. The interchange format is JSON; a compact
// CBOR snapshot carries the full library including metadata for autosave.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/bytedance/sonic"

	"github.com/padrec/padrec/logging"
	"github.com/padrec/padrec/macro"
)

var slog = logging.NewLogger("store")

const FormatVersion = "1.0"

// UnnamedMacro is the name assigned when a file holds a bare event array
// instead of a named mapping.
const UnnamedMacro = "unnamed"

// macroFile is the canonical on-disk JSON shape.
type macroFile struct {
	Version string                       `json:"version"`
	Created string                       `json:"created"`
	Macros  map[string][]json.RawMessage `json:"macros"`
}

// SaveMacros writes the named event logs to path in the interchange format.
func SaveMacros(path string, macros map[string][]macro.Event) error {
	out := struct {
		Version string                   `json:"version"`
		Created string                   `json:"created"`
		Macros  map[string][]macro.Event `json:"macros"`
	}{
		Version: FormatVersion,
		Created: time.Now().Format(time.RFC3339),
		Macros:  macros,
	}

	data, err := sonic.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal macros: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write macro file: %w", err)
	}
	return nil
}

// LoadMacros reads a macro file. Three payload shapes are accepted: the
// canonical wrapper object, a bare name-to-events mapping, and a bare event
// array treated as a single unnamed macro. Malformed events are skipped and
// counted; valid events in the same file load normally.
func LoadMacros(path string) (map[string][]macro.Event, int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read macro file: %w", err)
	}
	return decodeMacros(data)
}

func decodeMacros(data []byte) (map[string][]macro.Event, int, error) {
	var file macroFile
	if err := sonic.Unmarshal(data, &file); err == nil && file.Macros != nil {
		return decodeEntries(file.Macros)
	}

	var bare map[string][]json.RawMessage
	if err := sonic.Unmarshal(data, &bare); err == nil && bare != nil {
		return decodeEntries(bare)
	}

	var list []json.RawMessage
	if err := sonic.Unmarshal(data, &list); err == nil {
		return decodeEntries(map[string][]json.RawMessage{UnnamedMacro: list})
	}

	return nil, 0, fmt.Errorf("unrecognized macro file payload")
}

func decodeEntries(entries map[string][]json.RawMessage) (map[string][]macro.Event, int, error) {
	macros := make(map[string][]macro.Event, len(entries))
	skipped := 0

	for name, raws := range entries {
		events := make([]macro.Event, 0, len(raws))
		for _, raw := range raws {
			var e macro.Event
			if err := sonic.Unmarshal(raw, &e); err != nil {
				slog.Warn("skipping malformed event", "macro", name, "error", err)
				skipped++
				continue
			}
			if err := e.Validate(); err != nil {
				slog.Warn("skipping invalid event", "macro", name, "error", err)
				skipped++
				continue
			}
			events = append(events, e)
		}
		macros[name] = events
	}

	return macros, skipped, nil
}
