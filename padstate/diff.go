package padstate

import (
	"cmp"
	"math"
	"slices"
)

// Thresholds define the minimum per-channel change that counts as a state
// change. Raw inequality is not enough for analog channels; sensor jitter
// sits below these values.
type Thresholds struct {
	StickDeadzone    float64
	TriggerThreshold float64
}

// Precision profiles. High matches the tightest capture the hardware
// supports, Coarse suppresses more jitter at the cost of fidelity.
var (
	HighPrecision   = Thresholds{StickDeadzone: 0.01, TriggerThreshold: 0.01}
	CoarsePrecision = Thresholds{StickDeadzone: 0.1, TriggerThreshold: 0.05}
)

// ChannelKind tags which channel family a change belongs to.
type ChannelKind uint8

const (
	KindButton ChannelKind = iota + 1
	KindDpad
	KindStick
	KindTrigger
)

// Change is one significant per-channel difference between two states.
// Analog payloads are clamped to their declared ranges.
type Change struct {
	Kind    ChannelKind
	Name    string
	Pressed bool
	Stick   StickPos
	Value   float64
}

// Diff compares cur against prev channel-wise and returns the significant
// changes. Button and dpad channels change on any flip; stick channels when
// the Euclidean delta exceeds the deadzone; trigger channels when the
// absolute delta exceeds the threshold. Channels absent from prev compare
// against the neutral value.
func Diff(prev, cur State, th Thresholds) []Change {
	var changes []Change

	for name, pressed := range cur.Buttons {
		if prev.Buttons[name] != pressed {
			changes = append(changes, Change{Kind: KindButton, Name: name, Pressed: pressed})
		}
	}

	for name, pressed := range cur.Dpad {
		if prev.Dpad[name] != pressed {
			changes = append(changes, Change{Kind: KindDpad, Name: name, Pressed: pressed})
		}
	}

	for name, pos := range cur.Sticks {
		last := prev.Sticks[name]
		dx := pos.X - last.X
		dy := pos.Y - last.Y
		if math.Hypot(dx, dy) > th.StickDeadzone {
			clamped := StickPos{X: ClampAxis(pos.X), Y: ClampAxis(pos.Y)}
			changes = append(changes, Change{Kind: KindStick, Name: name, Stick: clamped})
		}
	}

	for name, value := range cur.Triggers {
		if math.Abs(value-prev.Triggers[name]) > th.TriggerThreshold {
			changes = append(changes, Change{Kind: KindTrigger, Name: name, Value: ClampTrigger(value)})
		}
	}

	// Map iteration order is random; keep emission order stable across runs.
	slices.SortFunc(changes, func(a, b Change) int {
		if c := cmp.Compare(a.Kind, b.Kind); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})

	return changes
}
