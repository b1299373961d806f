package macro

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogOverflowDropsOldest(t *testing.T) {
	l := NewLog(100)
	for i := 0; i < 150; i++ {
		l.Append(Event{Type: Button, Timestamp: float64(i), Source: fmt.Sprint(i), Value: Bool(true)})
	}

	require.Equal(t, 100, l.Len())
	events := l.Snapshot()
	// The oldest events were dropped, not the newest.
	assert.Equal(t, "50", events[0].Source)
	assert.Equal(t, "149", events[99].Source)
}

func TestLogSnapshotDoesNotAliasLiveLog(t *testing.T) {
	l := NewLog(0)
	l.Append(Event{Type: Button, Timestamp: 0.1, Source: "A", Value: Bool(true)})

	snap := l.Snapshot()
	l.Append(Event{Type: Button, Timestamp: 0.2, Source: "A", Value: Bool(false)})

	require.Len(t, snap, 1)
	assert.Equal(t, 2, l.Len())
}

func TestLogLastTimestamp(t *testing.T) {
	l := NewLog(0)
	assert.Equal(t, 0.0, l.LastTimestamp())

	l.Append(Event{Type: Button, Timestamp: 0.4, Source: "A", Value: Bool(true)})
	assert.Equal(t, 0.4, l.LastTimestamp())
}

func TestDuration(t *testing.T) {
	assert.Equal(t, 0.0, Duration(nil))
	events := []Event{
		{Type: Button, Timestamp: 0.1, Source: "A", Value: Bool(true)},
		{Type: Button, Timestamp: 2.5, Source: "A", Value: Bool(false)},
	}
	assert.Equal(t, 2.5, Duration(events))
}

func TestNewPlaybackSettings(t *testing.T) {
	s, err := NewPlaybackSettings(3, 2.0)
	require.NoError(t, err)
	assert.Equal(t, PlaybackSettings{Loops: 3, Speed: 2.0}, s)

	_, err = NewPlaybackSettings(0, 1.0)
	assert.ErrorIs(t, err, ErrInvalidLoops)

	_, err = NewPlaybackSettings(1, 0)
	assert.ErrorIs(t, err, ErrInvalidSpeed)

	_, err = NewPlaybackSettings(1, -1)
	assert.ErrorIs(t, err, ErrInvalidSpeed)
}
