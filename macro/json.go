package macro

import (
	"encoding/json"
	"fmt"
)

// Wire form shared with the original macro files: the source channel is
// stored under the "button" key regardless of event kind, and the value is a
// bare bool, number, or 2-element array.
type wireEvent struct {
	Type      string          `json:"type"`
	Timestamp float64         `json:"timestamp"`
	Button    string          `json:"button"`
	Value     json.RawMessage `json:"value"`
	Duration  float64         `json:"duration"`
}

func (e Event) MarshalJSON() ([]byte, error) {
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

	raw, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}

	return json.Marshal(wireEvent{
		Type:      e.Type.String(),
		Timestamp: e.Timestamp,
		Button:    e.Source,
		Value:     raw,
		Duration:  e.Duration,
	})
}

func (e *Event) UnmarshalJSON(data []byte) error {
	var w wireEvent
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	if w.Type == "" {
		return fmt.Errorf("event is missing type")
	}

	typ, err := ParseEventType(w.Type)
	if err != nil {
		return err
	}

	var value Value
	switch typ.expectedKind() {
	case BoolValue:
		var b bool
		if err := json.Unmarshal(w.Value, &b); err != nil {
			return fmt.Errorf("event %q value: %w", w.Type, err)
		}
		value = Bool(b)
	case StickValue:
		var xy [2]float64
		if err := json.Unmarshal(w.Value, &xy); err != nil {
			return fmt.Errorf("event %q value: %w", w.Type, err)
		}
		value = StickXY(xy[0], xy[1])
	case AnalogValue:
		var f float64
		if err := json.Unmarshal(w.Value, &f); err != nil {
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
