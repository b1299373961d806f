// Package devices exposes connected gamepad-class devices to the recorder.
// The Provider interface is the boundary the core samples against; the
// evdev implementation is one concrete provider.
package devices

import "github.com/padrec/padrec/padstate"

// Provider lists connected devices and reads their current normalized
// state. Implementations must be safe to call at high frequency (240 Hz and
// above) without side effects beyond normal device I/O.
type Provider interface {
	// ConnectedIDs returns the identifiers of currently connected devices.
	ConnectedIDs() []string
	// ReadState reads the normalized state of a device. The second return
	// is false when the device is unknown or the read failed this cycle.
	ReadState(id string) (padstate.State, bool)
}
