package backend

import (
	"fmt"
	"sync"

	"github.com/bendahl/uinput"

	"github.com/padrec/padrec/padstate"
)

const uinputPath = "/dev/uinput"

var padButtons = map[string]int{
	padstate.ButtonA:     uinput.ButtonSouth,
	padstate.ButtonB:     uinput.ButtonEast,
	padstate.ButtonX:     uinput.ButtonNorth,
	padstate.ButtonY:     uinput.ButtonWest,
	padstate.ButtonLB:    uinput.ButtonBumperLeft,
	padstate.ButtonRB:    uinput.ButtonBumperRight,
	padstate.ButtonBack:  uinput.ButtonSelect,
	padstate.ButtonStart: uinput.ButtonStart,
	padstate.ButtonLS:    uinput.ButtonThumbLeft,
	padstate.ButtonRS:    uinput.ButtonThumbRight,
}

var padHats = map[string]uinput.HatDirection{
	padstate.DpadUp:    uinput.HatUp,
	padstate.DpadDown:  uinput.HatDown,
	padstate.DpadLeft:  uinput.HatLeft,
	padstate.DpadRight: uinput.HatRight,
}

var padTriggers = map[string]int{
	padstate.TriggerLT: uinput.ButtonTriggerLeft,
	padstate.TriggerRT: uinput.ButtonTriggerRight,
}

// gamepadDevice is the subset of uinput.Gamepad the backend drives.
type gamepadDevice interface {
	ButtonPress(key int) error
	ButtonDown(key int) error
	ButtonUp(key int) error
	HatPress(direction uinput.HatDirection) error
	HatRelease(direction uinput.HatDirection) error
	LeftStickMove(x, y float32) error
	RightStickMove(x, y float32) error
	Close() error
}

// VirtualPad is a uinput-backed virtual composite gamepad. Downstream
// consumers see native button, trigger, and stick primitives instead of
// translated keyboard input.
type VirtualPad struct {
	pad gamepadDevice

	mu   sync.Mutex
	held map[string]bool
}

// NewVirtualPad creates the uinput device and probes it with a harmless
// press+release self-test. Any failure permanently disables the virtual
// backend for the session; callers fall back to keyboard/mouse emulation.
func NewVirtualPad() (*VirtualPad, error) {
	pad, err := uinput.CreateGamepad(uinputPath, []byte("padrec virtual gamepad"), 0x045e, 0x028e)
	if err != nil {
		return nil, fmt.Errorf("failed to create uinput gamepad: %w", err)
	}

	if err := pad.ButtonPress(uinput.ButtonMode); err != nil {
		pad.Close()
		return nil, fmt.Errorf("self-test failed: %w", err)
	}

	return newVirtualPad(pad), nil
}

func newVirtualPad(pad gamepadDevice) *VirtualPad {
	return &VirtualPad{pad: pad, held: map[string]bool{}}
}

func (v *VirtualPad) Name() string {
	return "virtualpad"
}

func (v *VirtualPad) PressButton(name string) error {
	if code, ok := padButtons[name]; ok {
		return v.pad.ButtonDown(code)
	}
	if dir, ok := padHats[name]; ok {
		return v.pad.HatPress(dir)
	}
	slog.Debug("no gamepad mapping for control", "control", name)
	return nil
}

func (v *VirtualPad) ReleaseButton(name string) error {
	if code, ok := padButtons[name]; ok {
		return v.pad.ButtonUp(code)
	}
	if dir, ok := padHats[name]; ok {
		return v.pad.HatRelease(dir)
	}
	slog.Debug("no gamepad mapping for control", "control", name)
	return nil
}

// SetTrigger maps pressure onto the digital trigger buttons: the uinput
// gamepad exposes no analog trigger axes, so crossing the pulse threshold
// presses, and dropping back below it releases.
func (v *VirtualPad) SetTrigger(name string, value float64) error {
	code, ok := padTriggers[name]
	if !ok {
		slog.Debug("no gamepad mapping for trigger", "control", name)
		return nil
	}

	pressed := padstate.ClampTrigger(value) >= triggerPulseThreshold

	v.mu.Lock()
	held := v.held[name]
	v.held[name] = pressed
	v.mu.Unlock()

	if pressed == held {
		return nil
	}
	if pressed {
		return v.pad.ButtonDown(code)
	}
	return v.pad.ButtonUp(code)
}

func (v *VirtualPad) SetStick(name string, x, y float64) error {
	fx := float32(padstate.ClampAxis(x))
	fy := float32(padstate.ClampAxis(y))
	switch name {
	case padstate.StickLeft:
		return v.pad.LeftStickMove(fx, fy)
	case padstate.StickRight:
		return v.pad.RightStickMove(fx, fy)
	}
	slog.Debug("no gamepad mapping for stick", "control", name)
	return nil
}

func (v *VirtualPad) Close() error {
	return v.pad.Close()
}
