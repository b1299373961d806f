package backend

import (
	"math"
	"sync"
	"time"

	"github.com/go-vgo/robotgo"

	"github.com/padrec/padrec/padstate"
)

// DefaultKeys maps the fixed button/dpad/trigger vocabulary to robotgo key
// names. Entries can be overridden per session through Options.Keys.
var DefaultKeys = map[string]string{
	padstate.ButtonA:     "space",
	padstate.ButtonB:     "x",
	padstate.ButtonX:     "z",
	padstate.ButtonY:     "c",
	padstate.ButtonLB:    "q",
	padstate.ButtonRB:    "e",
	padstate.ButtonStart: "enter",
	padstate.ButtonBack:  "esc",
	padstate.DpadUp:      "up",
	padstate.DpadDown:    "down",
	padstate.DpadLeft:    "left",
	padstate.DpadRight:   "right",
	padstate.TriggerLT:   "shift",
	padstate.TriggerRT:   "ctrl",
}

const (
	// Trigger pressure past this point counts as a discrete press.
	triggerPulseThreshold = 0.5
	triggerPulseHold      = 50 * time.Millisecond

	defaultMouseSensitivity = 50
	// Pixel deadzone below which stick motion is not forwarded.
	mouseDeadzonePx = 5
)

// HID emulates recorded gamepad events with keyboard key presses and
// relative mouse motion. It is always available.
type HID struct {
	keys        map[string]string
	mouseStick  string
	sensitivity float64

	mu       sync.Mutex
	triggers map[string]float64
}

func NewHID(opts Options) *HID {
	keys := opts.Keys
	if len(keys) == 0 {
		keys = DefaultKeys
	}
	stick := opts.MouseStick
	if stick == "" {
		stick = padstate.StickRight
	}
	sensitivity := opts.MouseSensitivity
	if sensitivity <= 0 {
		sensitivity = defaultMouseSensitivity
	}
	return &HID{
		keys:        keys,
		mouseStick:  stick,
		sensitivity: sensitivity,
		triggers:    map[string]float64{},
	}
}

func (h *HID) Name() string {
	return "hid"
}

func (h *HID) PressButton(name string) error {
	key, ok := h.keys[name]
	if !ok {
		slog.Debug("no key mapping for control", "control", name)
		return nil
	}
	return robotgo.KeyToggle(key, "down")
}

func (h *HID) ReleaseButton(name string) error {
	key, ok := h.keys[name]
	if !ok {
		slog.Debug("no key mapping for control", "control", name)
		return nil
	}
	return robotgo.KeyToggle(key, "up")
}

// SetTrigger has no continuous representation on a keyboard; crossing the
// pulse threshold upward produces a brief press-hold-release pulse.
func (h *HID) SetTrigger(name string, value float64) error {
	h.mu.Lock()
	last := h.triggers[name]
	h.triggers[name] = value
	h.mu.Unlock()

	if last >= triggerPulseThreshold || value < triggerPulseThreshold {
		return nil
	}

	key, ok := h.keys[name]
	if !ok {
		slog.Debug("no key mapping for trigger", "control", name)
		return nil
	}

	if err := robotgo.KeyToggle(key, "down"); err != nil {
		return err
	}
	time.Sleep(triggerPulseHold)
	return robotgo.KeyToggle(key, "up")
}

// SetStick translates the designated stick's deflection into relative
// pointer motion. Other sticks have no keyboard/mouse representation and
// are ignored.
func (h *HID) SetStick(name string, x, y float64) error {
	if name != h.mouseStick {
		return nil
	}

	dx := int(x * h.sensitivity)
	dy := int(y * h.sensitivity)
	if math.Abs(float64(dx)) <= mouseDeadzonePx && math.Abs(float64(dy)) <= mouseDeadzonePx {
		return nil
	}

	robotgo.MoveRelative(dx, dy)
	return nil
}

func (h *HID) Close() error {
	return nil
}
