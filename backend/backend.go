// Package backend abstracts the output sink that receives synthesized
// input: either a virtual composite gamepad device or keyboard/mouse
// emulation. The player dispatches recorded events through this interface.
package backend

import (
	"github.com/padrec/padrec/logging"
)

var slog = logging.NewLogger("backend")

// Backend is the capability set the player dispatches against. Unknown
// control names are logged and ignored by implementations; they never
// error.
type Backend interface {
	Name() string
	// PressButton and ReleaseButton actuate a named button or dpad
	// direction.
	PressButton(name string) error
	ReleaseButton(name string) error
	// SetTrigger applies a trigger pressure in [0, 1].
	SetTrigger(name string, value float64) error
	// SetStick applies a 2-axis stick position, both axes in [-1, 1].
	SetStick(name string, x, y float64) error
	Close() error
}

// Options configure backend construction and selection.
type Options struct {
	// PreferVirtual selects the virtual composite device when it probes
	// healthy at construction.
	PreferVirtual bool
	// Keys maps button/dpad/trigger names to emulated keyboard keys.
	Keys map[string]string
	// MouseStick is the stick whose motion is translated into relative
	// pointer movement on the emulated backend.
	MouseStick string
	// MouseSensitivity scales stick deflection into pixels.
	MouseSensitivity float64
}

// Select builds the preferred and fallback backends for a session. The
// virtual composite device is preferred when requested and its self-test
// passes; the keyboard/mouse emulation is always available and serves as
// the fallback. When the virtual device is unavailable the emulated backend
// is returned as primary with no fallback.
func Select(opts Options) (primary, fallback Backend) {
	hid := NewHID(opts)

	if !opts.PreferVirtual {
		return hid, nil
	}

	pad, err := NewVirtualPad()
	if err != nil {
		slog.Warn("virtual gamepad unavailable, using keyboard/mouse emulation", "error", err)
		return hid, nil
	}
	return pad, hid
}
