package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/padrec/padrec/padstate"
)

const filePath = "./padrec.toml"

type Config struct {
	LogLevel string   `toml:"log_level"`
	Recorder Recorder `toml:"recorder"`
	Player   Player   `toml:"player"`
	Library  Library  `toml:"library"`
}

type Recorder struct {
	// Profile selects a precision profile: "high" (default) or "coarse".
	Profile string `toml:"profile"`
	// Explicit threshold overrides. Zero means "use the profile value".
	StickDeadzone    float64 `toml:"stick_deadzone"`
	TriggerThreshold float64 `toml:"trigger_threshold"`
	MaxEvents        int     `toml:"max_events"`
}

type Player struct {
	PreferVirtual    bool              `toml:"prefer_virtual"`
	MouseStick       string            `toml:"mouse_stick"`
	MouseSensitivity float64           `toml:"mouse_sensitivity"`
	Keys             map[string]string `toml:"keys"`
}

type Library struct {
	Path         string `toml:"path"`
	SnapshotPath string `toml:"snapshot_path"`
}

func Default() Config {
	return Config{
		LogLevel: "info",
		Recorder: Recorder{Profile: "high"},
		Player:   Player{PreferVirtual: true},
		Library:  Library{Path: "./macros.json"},
	}
}

// ReadConfig loads padrec.toml from the working directory. A missing file
// yields the defaults.
func ReadConfig() (Config, error) {
	file, err := os.ReadFile(filePath)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return Config{}, err
	}
	return readConfigString(string(file))
}

func readConfigString(s string) (Config, error) {
	c := Default()
	if err := toml.Unmarshal([]byte(s), &c); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Thresholds resolves the configured precision profile and any explicit
// overrides into recorder thresholds.
func (r Recorder) Thresholds() (padstate.Thresholds, error) {
	var th padstate.Thresholds
	switch r.Profile {
	case "", "high":
		th = padstate.HighPrecision
	case "coarse":
		th = padstate.CoarsePrecision
	default:
		return th, fmt.Errorf("unknown recorder profile %q", r.Profile)
	}
	if r.StickDeadzone > 0 {
		th.StickDeadzone = r.StickDeadzone
	}
	if r.TriggerThreshold > 0 {
		th.TriggerThreshold = r.TriggerThreshold
	}
	return th, nil
}
