// Package library organizes stored macros: naming, tagging, favorites,
// chaining, and usage statistics. It holds event logs by value and never
// shares backing storage with an active recorder or player.
package library

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/padrec/padrec/macro"
)

var (
	ErrNotFound  = errors.New("macro not found")
	ErrEmptyName = errors.New("macro name is empty")
)

// Kind distinguishes plainly recorded macros from composed ones.
type Kind string

const (
	KindSimple Kind = "simple"
	KindChain  Kind = "chain"
)

// Metadata describes a stored macro.
type Metadata struct {
	Name        string
	Description string
	Tags        []string
	CreatedAt   time.Time
	ModifiedAt  time.Time
	UsageCount  int
	LastUsed    time.Time
	// Duration is the highest event timestamp in seconds.
	Duration   float64
	InputCount int
	Kind       Kind
}

// Stats aggregates the whole library.
type Stats struct {
	TotalMacros  int
	TotalUsage   int
	AvgDuration  float64
	Favorites    int
	KindCounts   map[Kind]int
	MostUsed     []string
	RecentlyUsed []string
}

// Library is an in-memory macro collection. It is not safe for concurrent
// use; callers own synchronization.
type Library struct {
	macros    map[string][]macro.Event
	meta      map[string]*Metadata
	favorites []string
	now       func() time.Time
}

func New() *Library {
	return &Library{
		macros: map[string][]macro.Event{},
		meta:   map[string]*Metadata{},
		now:    time.Now,
	}
}

// Add stores a macro under name, replacing any previous entry. Events are
// copied and validated; an entry with an invalid event is rejected whole.
func (l *Library) Add(name string, events []macro.Event, description string, tags ...string) error {
	return l.add(name, events, description, KindSimple, tags)
}

func (l *Library) add(name string, events []macro.Event, description string, kind Kind, tags []string) error {
	if name == "" {
		return ErrEmptyName
	}
	for i, e := range events {
		if err := e.Validate(); err != nil {
			return fmt.Errorf("event %d: %w", i, err)
		}
	}

	now := l.now()
	created := now
	if m, ok := l.meta[name]; ok {
		created = m.CreatedAt
	}

	l.macros[name] = slices.Clone(events)
	l.meta[name] = &Metadata{
		Name:        name,
		Description: description,
		Tags:        slices.Clone(tags),
		CreatedAt:   created,
		ModifiedAt:  now,
		Duration:    macro.Duration(events),
		InputCount:  len(events),
		Kind:        kind,
	}
	return nil
}

// Put stores a macro with explicit metadata. It exists for persistence
// layers restoring a saved library; interactive callers use Add.
func (l *Library) Put(name string, events []macro.Event, meta Metadata) error {
	if name == "" {
		return ErrEmptyName
	}
	meta.Name = name
	l.macros[name] = slices.Clone(events)
	l.meta[name] = &meta
	return nil
}

// SetFavorites replaces the favorites list, dropping unknown names.
func (l *Library) SetFavorites(names []string) {
	l.favorites = l.favorites[:0]
	for _, name := range names {
		if _, ok := l.macros[name]; ok && !slices.Contains(l.favorites, name) {
			l.favorites = append(l.favorites, name)
		}
	}
}

func (l *Library) Delete(name string) bool {
	if _, ok := l.macros[name]; !ok {
		return false
	}
	delete(l.macros, name)
	delete(l.meta, name)
	if i := slices.Index(l.favorites, name); i >= 0 {
		l.favorites = slices.Delete(l.favorites, i, i+1)
	}
	return true
}

// Get returns a copy of the stored events.
func (l *Library) Get(name string) ([]macro.Event, bool) {
	events, ok := l.macros[name]
	if !ok {
		return nil, false
	}
	return slices.Clone(events), true
}

func (l *Library) Metadata(name string) (Metadata, bool) {
	m, ok := l.meta[name]
	if !ok {
		return Metadata{}, false
	}
	return *m, true
}

// List returns all macro names sorted, optionally filtered by tag.
func (l *Library) List(tag string) []string {
	var names []string
	for name, m := range l.meta {
		if tag != "" && !slices.Contains(m.Tags, tag) {
			continue
		}
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Search matches the query case-insensitively against names, descriptions,
// and tags.
func (l *Library) Search(query string) []string {
	query = strings.ToLower(query)
	var names []string
	for name, m := range l.meta {
		if strings.Contains(strings.ToLower(name), query) ||
			strings.Contains(strings.ToLower(m.Description), query) ||
			slices.ContainsFunc(m.Tags, func(t string) bool {
				return strings.Contains(strings.ToLower(t), query)
			}) {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names
}

// MarkUsed records one use of a macro for statistics.
func (l *Library) MarkUsed(name string) {
	if m, ok := l.meta[name]; ok {
		m.UsageCount++
		m.LastUsed = l.now()
	}
}

// ToggleFavorite flips the favorite status and returns the new state.
func (l *Library) ToggleFavorite(name string) (bool, error) {
	if _, ok := l.macros[name]; !ok {
		return false, ErrNotFound
	}
	if i := slices.Index(l.favorites, name); i >= 0 {
		l.favorites = slices.Delete(l.favorites, i, i+1)
		return false, nil
	}
	l.favorites = append(l.favorites, name)
	return true, nil
}

func (l *Library) Favorites() []string {
	return slices.Clone(l.favorites)
}

// Chain composes existing macros into a new one, separated by injected
// delay events. delays holds the gap in seconds before each subsequent
// macro; missing entries default to half a second. Each part's timestamps
// are rebased onto the end of the preceding parts so the combined log stays
// non-decreasing; the delay events carry the gap itself, which playback
// applies on top of the rebased timeline.
func (l *Library) Chain(name string, parts []string, delays []float64) error {
	for _, part := range parts {
		if _, ok := l.macros[part]; !ok {
			return fmt.Errorf("%w: %s", ErrNotFound, part)
		}
	}

	var events []macro.Event
	base := 0.0
	for i, part := range parts {
		for _, e := range l.macros[part] {
			e.Timestamp += base
			events = append(events, e)
		}
		base += macro.Duration(l.macros[part])
		if i == len(parts)-1 {
			continue
		}
		gap := 0.5
		if i < len(delays) {
			gap = delays[i]
		}
		events = append(events, macro.Event{
			Type:      macro.Delay,
			Timestamp: base,
			Source:    "delay",
			Value:     macro.Analog(gap * 1000),
		})
	}

	return l.add(name, events, "chain of: "+strings.Join(parts, ", "), KindChain, []string{"chain"})
}

// Optimize removes redundant button and dpad events that repeat the channel's
// previous value. It reports whether anything was removed.
func (l *Library) Optimize(name string) (bool, error) {
	events, ok := l.macros[name]
	if !ok {
		return false, ErrNotFound
	}

	lastState := map[string]bool{}
	kept := events[:0:0]
	for _, e := range events {
		if e.Type == macro.Button || e.Type == macro.Dpad {
			if v, seen := lastState[e.Source]; seen && v == e.Value.Bool() {
				continue
			}
			lastState[e.Source] = e.Value.Bool()
		}
		kept = append(kept, e)
	}

	if len(kept) == len(events) {
		return false, nil
	}
	l.macros[name] = kept
	m := l.meta[name]
	m.InputCount = len(kept)
	m.ModifiedAt = l.now()
	return true, nil
}

// Recent returns up to limit macro names ordered by last use, newest first.
func (l *Library) Recent(limit int) []string {
	return l.ranked(limit, func(a, b *Metadata) bool {
		return a.LastUsed.After(b.LastUsed)
	})
}

// Popular returns up to limit macro names ordered by usage count.
func (l *Library) Popular(limit int) []string {
	return l.ranked(limit, func(a, b *Metadata) bool {
		return a.UsageCount > b.UsageCount
	})
}

func (l *Library) ranked(limit int, less func(a, b *Metadata) bool) []string {
	metas := make([]*Metadata, 0, len(l.meta))
	for _, m := range l.meta {
		metas = append(metas, m)
	}
	sort.SliceStable(metas, func(i, j int) bool { return less(metas[i], metas[j]) })

	names := make([]string, 0, limit)
	for _, m := range metas {
		if len(names) == limit {
			break
		}
		names = append(names, m.Name)
	}
	return names
}

func (l *Library) Stats() Stats {
	s := Stats{
		TotalMacros:  len(l.macros),
		Favorites:    len(l.favorites),
		KindCounts:   map[Kind]int{},
		MostUsed:     l.Popular(5),
		RecentlyUsed: l.Recent(5),
	}
	var total float64
	for _, m := range l.meta {
		s.TotalUsage += m.UsageCount
		total += m.Duration
		s.KindCounts[m.Kind]++
	}
	if len(l.meta) > 0 {
		s.AvgDuration = total / float64(len(l.meta))
	}
	return s
}
