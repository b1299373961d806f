//go:build !linux

package backend

import "errors"

var errVirtualPadUnsupported = errors.New("virtual gamepad requires linux uinput")

// VirtualPad is only available on Linux. On other platforms construction
// fails and selection falls back to keyboard/mouse emulation.
type VirtualPad struct{}

func NewVirtualPad() (*VirtualPad, error) {
	return nil, errVirtualPadUnsupported
}

func (v *VirtualPad) Name() string { return "virtualpad" }

func (v *VirtualPad) PressButton(string) error { return errVirtualPadUnsupported }

func (v *VirtualPad) ReleaseButton(string) error { return errVirtualPadUnsupported }

func (v *VirtualPad) SetTrigger(string, float64) error { return errVirtualPadUnsupported }

func (v *VirtualPad) SetStick(string, float64, float64) error { return errVirtualPadUnsupported }

func (v *VirtualPad) Close() error { return nil }
