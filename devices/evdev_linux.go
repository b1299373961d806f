package devices

import (
	"slices"
	"sync"
	"time"

	evdev "github.com/holoplot/go-evdev"
	"golang.org/x/sys/unix"

	"github.com/padrec/padrec/logging"
	"github.com/padrec/padrec/padstate"
)

var slog = logging.NewLogger("devices")

// Rescanning /dev/input on every 240 Hz sampling cycle would dominate the
// loop, so enumeration results are cached briefly.
const rescanInterval = 1 * time.Second

// EvdevProvider reads gamepads through the Linux evdev interface. A device
// qualifies as a gamepad when it reports the BTN_SOUTH key capability per
// the kernel gamepad API.
type EvdevProvider struct {
	mu      sync.Mutex
	open    map[string]*evdev.InputDevice
	ids     []string
	scanned time.Time
}

func NewEvdevProvider() *EvdevProvider {
	return &EvdevProvider{open: map[string]*evdev.InputDevice{}}
}

// NewSystemProvider returns the platform's gamepad provider.
func NewSystemProvider() Provider {
	return NewEvdevProvider()
}

func (p *EvdevProvider) ConnectedIDs() []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	if time.Since(p.scanned) >= rescanInterval {
		p.rescan()
		p.scanned = time.Now()
	}
	return slices.Clone(p.ids)
}

// rescan refreshes the set of open gamepad nodes. Must be called with p.mu
// held.
func (p *EvdevProvider) rescan() {
	paths, err := evdev.ListDevicePaths()
	if err != nil {
		slog.Debug("failed to list input devices", "error", err)
		return
	}

	seen := map[string]bool{}
	for _, ip := range paths {
		seen[ip.Path] = true
		if _, ok := p.open[ip.Path]; ok {
			continue
		}
		if err := unix.Access(ip.Path, unix.R_OK); err != nil {
			continue
		}
		dev, err := evdev.Open(ip.Path)
		if err != nil {
			slog.Debug("failed to open input device", "path", ip.Path, "error", err)
			continue
		}
		if !isGamepad(dev) {
			dev.Close()
			continue
		}
		slog.Info("gamepad connected", "path", ip.Path, "name", ip.Name)
		p.open[ip.Path] = dev
	}

	for path, dev := range p.open {
		if !seen[path] {
			slog.Info("gamepad disconnected", "path", path)
			dev.Close()
			delete(p.open, path)
		}
	}

	p.ids = p.ids[:0]
	for path := range p.open {
		p.ids = append(p.ids, path)
	}
	slices.Sort(p.ids)
}

func isGamepad(dev *evdev.InputDevice) bool {
	if !slices.Contains(dev.CapableTypes(), evdev.EV_KEY) {
		return false
	}
	return slices.Contains(dev.CapableEvents(evdev.EV_KEY), evdev.BTN_SOUTH)
}

var buttonCodes = map[evdev.EvCode]string{
	evdev.BTN_SOUTH:  padstate.ButtonA,
	evdev.BTN_EAST:   padstate.ButtonB,
	evdev.BTN_NORTH:  padstate.ButtonX,
	evdev.BTN_WEST:   padstate.ButtonY,
	evdev.BTN_TL:     padstate.ButtonLB,
	evdev.BTN_TR:     padstate.ButtonRB,
	evdev.BTN_SELECT: padstate.ButtonBack,
	evdev.BTN_START:  padstate.ButtonStart,
	evdev.BTN_THUMBL: padstate.ButtonLS,
	evdev.BTN_THUMBR: padstate.ButtonRS,
}

func (p *EvdevProvider) ReadState(id string) (padstate.State, bool) {
	p.mu.Lock()
	dev, ok := p.open[id]
	p.mu.Unlock()
	if !ok {
		return padstate.State{}, false
	}

	keys, err := dev.State(evdev.EV_KEY)
	if err != nil {
		slog.Debug("failed to read key state", "path", id, "error", err)
		return padstate.State{}, false
	}

	abs, err := dev.AbsInfos()
	if err != nil {
		slog.Debug("failed to read abs state", "path", id, "error", err)
		return padstate.State{}, false
	}

	state := padstate.Neutral()

	for code, name := range buttonCodes {
		state.SetButton(name, keys[code])
	}

	lx, ly := axisValue(abs, evdev.ABS_X), axisValue(abs, evdev.ABS_Y)
	state.SetStick(padstate.StickLeft, lx, ly)
	rx, ry := axisValue(abs, evdev.ABS_RX), axisValue(abs, evdev.ABS_RY)
	state.SetStick(padstate.StickRight, rx, ry)

	state.SetTrigger(padstate.TriggerLT, triggerValue(abs, evdev.ABS_Z))
	state.SetTrigger(padstate.TriggerRT, triggerValue(abs, evdev.ABS_RZ))

	hatX := hatValue(abs, evdev.ABS_HAT0X)
	hatY := hatValue(abs, evdev.ABS_HAT0Y)
	state.SetDpad(padstate.DpadLeft, hatX < 0)
	state.SetDpad(padstate.DpadRight, hatX > 0)
	state.SetDpad(padstate.DpadUp, hatY < 0)
	state.SetDpad(padstate.DpadDown, hatY > 0)

	return state, true
}

// axisValue normalizes an absolute axis into [-1, 1] using its reported
// range. Axes the device does not advertise read as centered.
func axisValue(abs map[evdev.EvCode]evdev.AbsInfo, code evdev.EvCode) float64 {
	info, ok := abs[code]
	if !ok || info.Maximum == info.Minimum {
		return 0
	}
	span := float64(info.Maximum - info.Minimum)
	return 2*float64(info.Value-info.Minimum)/span - 1
}

// triggerValue normalizes an absolute axis into [0, 1].
func triggerValue(abs map[evdev.EvCode]evdev.AbsInfo, code evdev.EvCode) float64 {
	info, ok := abs[code]
	if !ok || info.Maximum == info.Minimum {
		return 0
	}
	span := float64(info.Maximum - info.Minimum)
	return float64(info.Value-info.Minimum) / span
}

func hatValue(abs map[evdev.EvCode]evdev.AbsInfo, code evdev.EvCode) int32 {
	info, ok := abs[code]
	if !ok {
		return 0
	}
	return info.Value
}

// Close releases all open device nodes.
func (p *EvdevProvider) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for path, dev := range p.open {
		dev.Close()
		delete(p.open, path)
	}
	p.ids = nil
}
