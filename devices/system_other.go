//go:build !linux

package devices

import "github.com/padrec/padrec/padstate"

type noProvider struct{}

func (noProvider) ConnectedIDs() []string { return nil }

func (noProvider) ReadState(string) (padstate.State, bool) { return padstate.State{}, false }

// NewSystemProvider returns the platform's gamepad provider. Only evdev on
// Linux is implemented; elsewhere no devices are reported and recording
// yields an empty log.
func NewSystemProvider() Provider {
	return noProvider{}
}
