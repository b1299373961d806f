package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/padrec/padrec/padstate"
)

func TestReadConfig(t *testing.T) {
	c, err := readConfigString(`
log_level = "debug"

[recorder]
profile = "coarse"
max_events = 5000

[player]
prefer_virtual = false
mouse_stick = "stick_right"
mouse_sensitivity = 25

[player.keys]
A = "j"
B = "k"

[library]
path = "/tmp/macros.json"
snapshot_path = "/tmp/library.snap"
`)
	require.NoError(t, err)

	assert.Equal(t, "debug", c.LogLevel)
	assert.Equal(t, "coarse", c.Recorder.Profile)
	assert.Equal(t, 5000, c.Recorder.MaxEvents)
	assert.False(t, c.Player.PreferVirtual)
	assert.Equal(t, "stick_right", c.Player.MouseStick)
	assert.Equal(t, 25.0, c.Player.MouseSensitivity)
	assert.Equal(t, map[string]string{"A": "j", "B": "k"}, c.Player.Keys)
	assert.Equal(t, "/tmp/macros.json", c.Library.Path)
	assert.Equal(t, "/tmp/library.snap", c.Library.SnapshotPath)
}

func TestReadConfigEmptyYieldsDefaults(t *testing.T) {
	c, err := readConfigString("")
	require.NoError(t, err)
	assert.Equal(t, Default(), c)
}

func TestReadConfigInvalidToml(t *testing.T) {
	_, err := readConfigString("log_level = [broken")
	assert.Error(t, err)
}

func TestRecorderThresholds(t *testing.T) {
	th, err := Recorder{}.Thresholds()
	require.NoError(t, err)
	assert.Equal(t, padstate.HighPrecision, th)

	th, err = Recorder{Profile: "coarse"}.Thresholds()
	require.NoError(t, err)
	assert.Equal(t, padstate.CoarsePrecision, th)

	th, err = Recorder{Profile: "high", StickDeadzone: 0.2}.Thresholds()
	require.NoError(t, err)
	assert.Equal(t, 0.2, th.StickDeadzone)
	assert.Equal(t, padstate.HighPrecision.TriggerThreshold, th.TriggerThreshold)

	_, err = Recorder{Profile: "ultra"}.Thresholds()
	assert.Error(t, err)
}
