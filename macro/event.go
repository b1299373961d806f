// Package macro defines the recorded event log: the ordered, timestamped
// sequence of input changes exchanged between the recorder and the player
// and persisted to the macro library.
package macro

import (
	"errors"
	"fmt"
)

// EventType is the closed set of recordable event kinds. Unknown tags are
// rejected during deserialization rather than silently mis-typed.
type EventType uint8

const (
	Button EventType = iota + 1
	Dpad
	Stick
	Trigger
	// Delay is the only kind whose timestamp does not correspond to a state
	// change; its value is an explicit injected wait in milliseconds.
	Delay
)

var ErrUnknownEventType = errors.New("unknown event type")

func (t EventType) String() string {
	switch t {
	case Button:
		return "button"
	case Dpad:
		return "dpad"
	case Stick:
		return "stick"
	case Trigger:
		return "trigger"
	case Delay:
		return "delay"
	}
	return fmt.Sprintf("EventType(%d)", uint8(t))
}

func ParseEventType(s string) (EventType, error) {
	switch s {
	case "button":
		return Button, nil
	case "dpad":
		return Dpad, nil
	case "stick":
		return Stick, nil
	case "trigger":
		return Trigger, nil
	case "delay":
		return Delay, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownEventType, s)
}

// ValueKind tags the payload variant carried by an event value.
type ValueKind uint8

const (
	BoolValue ValueKind = iota + 1
	StickValue
	AnalogValue
)

// Value is the tagged payload variant of an event: a button/dpad flip
// carries a bool, a stick event a 2-axis position, a trigger or delay event
// a single number.
type Value struct {
	kind   ValueKind
	b      bool
	x, y   float64
	analog float64
}

func Bool(b bool) Value {
	return Value{kind: BoolValue, b: b}
}

func StickXY(x, y float64) Value {
	return Value{kind: StickValue, x: x, y: y}
}

func Analog(v float64) Value {
	return Value{kind: AnalogValue, analog: v}
}

func (v Value) Kind() ValueKind {
	return v.kind
}

func (v Value) Bool() bool {
	return v.b
}

func (v Value) XY() (float64, float64) {
	return v.x, v.y
}

func (v Value) Analog() float64 {
	return v.analog
}

// Event is one recorded input change. Timestamp is elapsed seconds since
// recording start, measured against a monotonic clock. Source names the
// originating channel (button name, dpad direction, stick name, trigger
// name, or the literal "delay"). Duration is reserved and defaults to 0.
type Event struct {
	Type      EventType
	Timestamp float64
	Source    string
	Value     Value
	Duration  float64
}

// expectedKind reports which value variant an event type carries.
func (t EventType) expectedKind() ValueKind {
	switch t {
	case Button, Dpad:
		return BoolValue
	case Stick:
		return StickValue
	default:
		return AnalogValue
	}
}

// Validate checks the type tag and that the payload variant matches it.
func (e Event) Validate() error {
	switch e.Type {
	case Button, Dpad, Stick, Trigger, Delay:
	default:
		return fmt.Errorf("%w: %d", ErrUnknownEventType, e.Type)
	}
	if e.Value.kind != e.Type.expectedKind() {
		return fmt.Errorf("event %q carries %v payload", e.Type, e.Value.kind)
	}
	return nil
}
