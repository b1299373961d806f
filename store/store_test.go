package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/padrec/padrec/macro"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "macros.json")
	macros := map[string][]macro.Event{
		"combo": {
			{Type: macro.Button, Timestamp: 0.1, Source: "A", Value: macro.Bool(true)},
			{Type: macro.Button, Timestamp: 0.25, Source: "A", Value: macro.Bool(false)},
			{Type: macro.Stick, Timestamp: 0.25, Source: "stick_left", Value: macro.StickXY(0, 0)},
		},
		"empty": {},
	}

	require.NoError(t, SaveMacros(path, macros))

	loaded, skipped, err := LoadMacros(path)
	require.NoError(t, err)
	assert.Zero(t, skipped)
	assert.Equal(t, macros["combo"], loaded["combo"])
	assert.Empty(t, loaded["empty"])
}

func TestLoadWrapperPayload(t *testing.T) {
	path := writeFile(t, `{
		"version": "1.0",
		"created": "2026-01-02T15:04:05Z",
		"macros": {
			"jump": [
				{"type": "button", "timestamp": 0.1, "button": "A", "value": true},
				{"type": "button", "timestamp": 0.2, "button": "A", "value": false}
			]
		}
	}`)

	loaded, skipped, err := LoadMacros(path)
	require.NoError(t, err)
	assert.Zero(t, skipped)
	require.Len(t, loaded["jump"], 2)
	assert.Equal(t, "A", loaded["jump"][0].Source)
}

func TestLoadBareMappingPayload(t *testing.T) {
	path := writeFile(t, `{
		"dash": [
			{"type": "stick", "timestamp": 0.0, "button": "stick_left", "value": [1, 0]}
		]
	}`)

	loaded, skipped, err := LoadMacros(path)
	require.NoError(t, err)
	assert.Zero(t, skipped)
	require.Len(t, loaded["dash"], 1)
	x, y := loaded["dash"][0].Value.XY()
	assert.Equal(t, 1.0, x)
	assert.Equal(t, 0.0, y)
}

func TestLoadBareArrayPayload(t *testing.T) {
	path := writeFile(t, `[
		{"type": "trigger", "timestamp": 0.3, "button": "RT", "value": 0.9}
	]`)

	loaded, skipped, err := LoadMacros(path)
	require.NoError(t, err)
	assert.Zero(t, skipped)
	require.Contains(t, loaded, UnnamedMacro)
	require.Len(t, loaded[UnnamedMacro], 1)
	assert.Equal(t, 0.9, loaded[UnnamedMacro][0].Value.Analog())
}

func TestLoadSkipsMalformedEvents(t *testing.T) {
	path := writeFile(t, `{
		"mixed": [
			{"type": "button", "timestamp": 0.1, "button": "A", "value": true},
			{"type": "warp", "timestamp": 0.2, "button": "A", "value": true},
			{"type": "stick", "timestamp": 0.3, "button": "stick_left", "value": true},
			{"type": "button", "timestamp": 0.4, "button": "A", "value": false}
		]
	}`)

	loaded, skipped, err := LoadMacros(path)
	require.NoError(t, err)
	assert.Equal(t, 2, skipped)
	require.Len(t, loaded["mixed"], 2)
	assert.True(t, loaded["mixed"][0].Value.Bool())
	assert.False(t, loaded["mixed"][1].Value.Bool())
}

func TestLoadRejectsUnrecognizedPayload(t *testing.T) {
	path := writeFile(t, `"just a string"`)
	_, _, err := LoadMacros(path)
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, _, err := LoadMacros(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "macros.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}
