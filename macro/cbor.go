package macro

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// Compact binary form used by library snapshots. Mirrors the JSON wire form
// so the two encodings stay field-compatible.
type cborEvent struct {
	Type      string          `cbor:"type"`
	Timestamp float64         `cbor:"timestamp"`
	Button    string          `cbor:"button"`
	Value     cbor.RawMessage `cbor:"value"`
	Duration  float64         `cbor:"duration,omitempty"`
}

func (e Event) MarshalCBOR() ([]byte, error) {
	var value any
	switch e.Value.kind {
	case BoolValue:
		value = e.Value.b
	case StickValue:
		value = [2]float64{e.Value.x, e.Value.y}
	case AnalogValue:
		value = e.Value.analog
	default:
		return nil, fmt.Errorf("event %q has no value payload", e.Type)
	}

	raw, err := cbor.Marshal(value)
	if err != nil {
		return nil, err
	}

	return cbor.Marshal(cborEvent{
		Type:      e.Type.String(),
		Timestamp: e.Timestamp,
		Button:    e.Source,
		Value:     raw,
		Duration:  e.Duration,
	})
}

func (e *Event) UnmarshalCBOR(data []byte) error {
	var w cborEvent
	if err := cbor.Unmarshal(data, &w); err != nil {
		return err
	}

	typ, err := ParseEventType(w.Type)
	if err != nil {
		return err
	}

	var value Value
	switch typ.expectedKind() {
	case BoolValue:
		var b bool
		if err := cbor.Unmarshal(w.Value, &b); err != nil {
			return fmt.Errorf("event %q value: %w", w.Type, err)
		}
		value = Bool(b)
	case StickValue:
		var xy [2]float64
		if err := cbor.Unmarshal(w.Value, &xy); err != nil {
			return fmt.Errorf("event %q value: %w", w.Type, err)
		}
		value = StickXY(xy[0], xy[1])
	case AnalogValue:
		var f float64
		if err := cbor.Unmarshal(w.Value, &f); err != nil {
			return fmt.Errorf("event %q value: %w", w.Type, err)
		}
		value = Analog(f)
	}

	*e = Event{
		Type:      typ,
		Timestamp: w.Timestamp,
		Source:    w.Button,
		Value:     value,
		Duration:  w.Duration,
	}
	return nil
}
