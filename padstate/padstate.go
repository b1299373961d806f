// Package padstate models one normalized snapshot of a polled gamepad-class
// device and the diff semantics the recorder consumes.
package padstate

import "math"

// Well-known channel names. The vocabulary is fixed; providers and backends
// translate these into their native identifiers.
const (
	ButtonA     = "A"
	ButtonB     = "B"
	ButtonX     = "X"
	ButtonY     = "Y"
	ButtonLB    = "LB"
	ButtonRB    = "RB"
	ButtonBack  = "Back"
	ButtonStart = "Start"
	ButtonLS    = "LS"
	ButtonRS    = "RS"

	DpadUp    = "dpad_up"
	DpadDown  = "dpad_down"
	DpadLeft  = "dpad_left"
	DpadRight = "dpad_right"

	StickLeft  = "stick_left"
	StickRight = "stick_right"

	TriggerLT = "LT"
	TriggerRT = "RT"
)

// StickPos is a 2-axis stick position, both axes in [-1, 1].
type StickPos struct {
	X float64
	Y float64
}

// State is a normalized snapshot of a polled device. Stick values are in
// [-1, 1] on both axes and trigger values in [0, 1]; Set* clamp before
// storing so a State never holds out-of-range values.
type State struct {
	Buttons  map[string]bool
	Dpad     map[string]bool
	Sticks   map[string]StickPos
	Triggers map[string]float64
}

// Neutral returns a state with no channels populated. Absent channels read
// as released / centered.
func Neutral() State {
	return State{
		Buttons:  map[string]bool{},
		Dpad:     map[string]bool{},
		Sticks:   map[string]StickPos{},
		Triggers: map[string]float64{},
	}
}

func (s State) Clone() State {
	c := Neutral()
	for k, v := range s.Buttons {
		c.Buttons[k] = v
	}
	for k, v := range s.Dpad {
		c.Dpad[k] = v
	}
	for k, v := range s.Sticks {
		c.Sticks[k] = v
	}
	for k, v := range s.Triggers {
		c.Triggers[k] = v
	}
	return c
}

func (s State) SetButton(name string, pressed bool) {
	s.Buttons[name] = pressed
}

func (s State) SetDpad(name string, pressed bool) {
	s.Dpad[name] = pressed
}

func (s State) SetStick(name string, x, y float64) {
	s.Sticks[name] = StickPos{X: ClampAxis(x), Y: ClampAxis(y)}
}

func (s State) SetTrigger(name string, value float64) {
	s.Triggers[name] = ClampTrigger(value)
}

// ClampAxis clamps a stick axis to [-1, 1].
func ClampAxis(v float64) float64 {
	return math.Max(-1, math.Min(1, v))
}

// ClampTrigger clamps a trigger value to [0, 1].
func ClampTrigger(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
