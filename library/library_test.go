package library

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/padrec/padrec/macro"
)

func pressRelease(name string, at float64) []macro.Event {
	return []macro.Event{
		{Type: macro.Button, Timestamp: at, Source: name, Value: macro.Bool(true)},
		{Type: macro.Button, Timestamp: at + 0.1, Source: name, Value: macro.Bool(false)},
	}
}

func TestAddAndGetCopies(t *testing.T) {
	lib := New()
	events := pressRelease("A", 0.1)
	require.NoError(t, lib.Add("jump", events, "tap A"))

	got, ok := lib.Get("jump")
	require.True(t, ok)
	assert.Equal(t, events, got)

	// Mutating the returned slice must not affect the stored macro.
	got[0].Source = "B"
	again, _ := lib.Get("jump")
	assert.Equal(t, "A", again[0].Source)
}

func TestAddRejectsEmptyNameAndInvalidEvents(t *testing.T) {
	lib := New()
	assert.ErrorIs(t, lib.Add("", pressRelease("A", 0), ""), ErrEmptyName)

	bad := []macro.Event{{Type: macro.Stick, Source: "stick_left", Value: macro.Bool(true)}}
	assert.Error(t, lib.Add("broken", bad, ""))
	_, ok := lib.Get("broken")
	assert.False(t, ok)
}

func TestAddReplacePreservesCreatedAt(t *testing.T) {
	lib := New()
	base := time.Date(2026, 1, 2, 12, 0, 0, 0, time.UTC)
	lib.now = func() time.Time { return base }
	require.NoError(t, lib.Add("jump", pressRelease("A", 0), ""))

	lib.now = func() time.Time { return base.Add(time.Hour) }
	require.NoError(t, lib.Add("jump", pressRelease("B", 0), "updated"))

	meta, ok := lib.Metadata("jump")
	require.True(t, ok)
	assert.Equal(t, base, meta.CreatedAt)
	assert.Equal(t, base.Add(time.Hour), meta.ModifiedAt)
	assert.Equal(t, "updated", meta.Description)
}

func TestDelete(t *testing.T) {
	lib := New()
	require.NoError(t, lib.Add("jump", pressRelease("A", 0), ""))
	_, err := lib.ToggleFavorite("jump")
	require.NoError(t, err)

	assert.True(t, lib.Delete("jump"))
	assert.False(t, lib.Delete("jump"))
	assert.Empty(t, lib.Favorites())
}

func TestListFiltersByTag(t *testing.T) {
	lib := New()
	require.NoError(t, lib.Add("jump", pressRelease("A", 0), "", "movement"))
	require.NoError(t, lib.Add("shoot", pressRelease("B", 0), "", "combat"))
	require.NoError(t, lib.Add("dash", pressRelease("X", 0), "", "movement"))

	assert.Equal(t, []string{"dash", "jump", "shoot"}, lib.List(""))
	assert.Equal(t, []string{"dash", "jump"}, lib.List("movement"))
	assert.Empty(t, lib.List("nothing"))
}

func TestSearchMatchesNameDescriptionAndTags(t *testing.T) {
	lib := New()
	require.NoError(t, lib.Add("jump", pressRelease("A", 0), "hop over gaps", "movement"))
	require.NoError(t, lib.Add("shoot", pressRelease("B", 0), "fire weapon", "combat"))

	assert.Equal(t, []string{"jump"}, lib.Search("JUMP"))
	assert.Equal(t, []string{"shoot"}, lib.Search("weapon"))
	assert.Equal(t, []string{"shoot"}, lib.Search("combat"))
	assert.Empty(t, lib.Search("swim"))
}

func TestToggleFavorite(t *testing.T) {
	lib := New()
	require.NoError(t, lib.Add("jump", pressRelease("A", 0), ""))

	on, err := lib.ToggleFavorite("jump")
	require.NoError(t, err)
	assert.True(t, on)
	assert.Equal(t, []string{"jump"}, lib.Favorites())

	on, err = lib.ToggleFavorite("jump")
	require.NoError(t, err)
	assert.False(t, on)
	assert.Empty(t, lib.Favorites())

	_, err = lib.ToggleFavorite("nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSetFavoritesDropsUnknown(t *testing.T) {
	lib := New()
	require.NoError(t, lib.Add("jump", pressRelease("A", 0), ""))
	lib.SetFavorites([]string{"jump", "ghost", "jump"})
	assert.Equal(t, []string{"jump"}, lib.Favorites())
}

func TestChainInsertsDelays(t *testing.T) {
	lib := New()
	require.NoError(t, lib.Add("jump", pressRelease("A", 0), ""))
	require.NoError(t, lib.Add("shoot", pressRelease("B", 0), ""))
	require.NoError(t, lib.Add("dash", pressRelease("X", 0), ""))

	require.NoError(t, lib.Chain("combo", []string{"jump", "shoot", "dash"}, []float64{0.2}))

	events, ok := lib.Get("combo")
	require.True(t, ok)
	// Two macros' worth of events plus a delay between each pair.
	require.Len(t, events, 8)
	assert.Equal(t, macro.Delay, events[2].Type)
	assert.Equal(t, 200.0, events[2].Value.Analog())
	assert.Equal(t, macro.Delay, events[5].Type)
	// Unspecified gaps default to half a second.
	assert.Equal(t, 500.0, events[5].Value.Analog())

	// Later parts are rebased onto the end of the preceding ones.
	assert.Equal(t, 0.1, events[3].Timestamp)
	assert.Equal(t, 0.2, events[4].Timestamp)
	assert.Equal(t, 0.2, events[6].Timestamp)
	assert.Equal(t, 0.3, events[7].Timestamp)

	meta, _ := lib.Metadata("combo")
	assert.Equal(t, KindChain, meta.Kind)
	assert.Contains(t, meta.Tags, "chain")
	assert.Equal(t, 0.3, meta.Duration)
}

func TestChainTimestampsAreNonDecreasing(t *testing.T) {
	lib := New()
	require.NoError(t, lib.Add("long", []macro.Event{
		{Type: macro.Button, Timestamp: 0.0, Source: "A", Value: macro.Bool(true)},
		{Type: macro.Button, Timestamp: 5.0, Source: "A", Value: macro.Bool(false)},
	}, ""))
	// The second part's own timestamps restart near zero.
	require.NoError(t, lib.Add("short", []macro.Event{
		{Type: macro.Button, Timestamp: 0.2, Source: "B", Value: macro.Bool(true)},
		{Type: macro.Button, Timestamp: 1.2, Source: "B", Value: macro.Bool(false)},
	}, ""))

	require.NoError(t, lib.Chain("combo", []string{"long", "short"}, []float64{0.5}))

	events, ok := lib.Get("combo")
	require.True(t, ok)
	for i := 1; i < len(events); i++ {
		assert.GreaterOrEqual(t, events[i].Timestamp, events[i-1].Timestamp)
	}
	// The short part keeps its internal one-second spacing.
	assert.Equal(t, 5.2, events[3].Timestamp)
	assert.Equal(t, 6.2, events[4].Timestamp)
}

func TestChainUnknownPartFails(t *testing.T) {
	lib := New()
	require.NoError(t, lib.Add("jump", pressRelease("A", 0), ""))
	err := lib.Chain("combo", []string{"jump", "ghost"}, nil)
	assert.ErrorIs(t, err, ErrNotFound)
	_, ok := lib.Get("combo")
	assert.False(t, ok)
}

func TestOptimizeRemovesRedundantFlips(t *testing.T) {
	lib := New()
	events := []macro.Event{
		{Type: macro.Button, Timestamp: 0.1, Source: "A", Value: macro.Bool(true)},
		{Type: macro.Button, Timestamp: 0.2, Source: "A", Value: macro.Bool(true)},
		{Type: macro.Stick, Timestamp: 0.3, Source: "stick_left", Value: macro.StickXY(0.5, 0)},
		{Type: macro.Button, Timestamp: 0.4, Source: "A", Value: macro.Bool(false)},
	}
	require.NoError(t, lib.Add("noisy", events, ""))

	changed, err := lib.Optimize("noisy")
	require.NoError(t, err)
	assert.True(t, changed)

	kept, _ := lib.Get("noisy")
	require.Len(t, kept, 3)
	assert.Equal(t, 0.1, kept[0].Timestamp)
	assert.Equal(t, macro.Stick, kept[1].Type)
	assert.Equal(t, 0.4, kept[2].Timestamp)

	changed, err = lib.Optimize("noisy")
	require.NoError(t, err)
	assert.False(t, changed)

	_, err = lib.Optimize("ghost")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRecentAndPopular(t *testing.T) {
	lib := New()
	base := time.Date(2026, 1, 2, 12, 0, 0, 0, time.UTC)
	current := base
	lib.now = func() time.Time { return current }

	for _, name := range []string{"jump", "shoot", "dash"} {
		require.NoError(t, lib.Add(name, pressRelease("A", 0), ""))
	}

	current = base.Add(time.Minute)
	lib.MarkUsed("shoot")
	lib.MarkUsed("shoot")
	current = base.Add(2 * time.Minute)
	lib.MarkUsed("dash")

	assert.Equal(t, []string{"dash", "shoot"}, lib.Recent(2))
	assert.Equal(t, []string{"shoot", "dash"}, lib.Popular(2))
}

func TestStats(t *testing.T) {
	lib := New()
	require.NoError(t, lib.Add("jump", pressRelease("A", 0), ""))
	require.NoError(t, lib.Add("shoot", pressRelease("B", 0.9), ""))
	require.NoError(t, lib.Chain("combo", []string{"jump", "shoot"}, nil))
	lib.MarkUsed("jump")
	lib.MarkUsed("combo")
	_, err := lib.ToggleFavorite("jump")
	require.NoError(t, err)

	s := lib.Stats()
	assert.Equal(t, 3, s.TotalMacros)
	assert.Equal(t, 2, s.TotalUsage)
	assert.Equal(t, 1, s.Favorites)
	assert.Equal(t, 2, s.KindCounts[KindSimple])
	assert.Equal(t, 1, s.KindCounts[KindChain])
	assert.Greater(t, s.AvgDuration, 0.0)
	assert.Contains(t, s.MostUsed, "jump")
}
