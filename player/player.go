// Package player replays a recorded event log on a background schedule,
// honoring relative timing, loop count, and speed multiplier, and
// dispatches each event to an output backend.
package player

import (
	"errors"
	"sync"
	"time"

	"github.com/padrec/padrec/backend"
	"github.com/padrec/padrec/clock"
	"github.com/padrec/padrec/logging"
	"github.com/padrec/padrec/macro"
	"github.com/padrec/padrec/padstate"
)

var slog = logging.NewLogger("player")

var (
	ErrBusy     = errors.New("playback already in progress")
	ErrEmptyLog = errors.New("event log is empty")
)

const joinTimeout = 2 * time.Second

// Status is a point-in-time view of the player.
type Status struct {
	Playing bool
	// BackendAlive reports whether the session's preferred backend is still
	// serving dispatches. It turns false after a fallback switch.
	BackendAlive bool
}

// Player owns at most one active playback session. The replayed log is
// borrowed read-only; the player never mutates it.
type Player struct {
	primary  backend.Backend
	fallback backend.Backend
	clk      clock.Clock

	mu           sync.Mutex
	playing      bool
	stop         chan struct{}
	done         chan struct{}
	backendAlive bool
	mirror       padstate.State
	// gen counts sessions; Stop only resets the session it was called for.
	gen uint64
}

// New creates a player dispatching to primary, switching to fallback for
// the rest of the session if primary fails mid-playback. fallback may be
// nil when no alternative backend exists.
func New(primary, fallback backend.Backend, clk clock.Clock) *Player {
	if clk == nil {
		clk = clock.NewReal()
	}
	return &Player{primary: primary, fallback: fallback, clk: clk}
}

// Play starts replaying events in the background and returns immediately.
// It fails with ErrBusy while another session is active, ErrEmptyLog for an
// empty log, and the settings validation error for out-of-range settings.
func (p *Player) Play(events []macro.Event, settings macro.PlaybackSettings) error {
	if _, err := macro.NewPlaybackSettings(settings.Loops, settings.Speed); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.reconcileLocked() {
		return ErrBusy
	}
	if len(events) == 0 {
		return ErrEmptyLog
	}

	p.gen++
	p.playing = true
	p.backendAlive = true
	p.mirror = padstate.Neutral()
	p.stop = make(chan struct{})
	p.done = make(chan struct{})

	slog.Info("playback started", "events", len(events), "loops", settings.Loops, "speed", settings.Speed)
	go p.replay(events, settings, p.stop, p.done)
	return nil
}

// Stop signals the replay goroutine, waits for it with a bounded timeout,
// and resets the mirrored state. Stopping an idle player is a no-op.
func (p *Player) Stop() {
	p.mu.Lock()
	gen := p.gen
	stop, done := p.stop, p.done
	if stop != nil {
		close(stop)
		p.stop = nil
	}
	p.mu.Unlock()

	if done == nil {
		return
	}
	select {
	case <-done:
	case <-p.clk.After(joinTimeout):
		slog.Warn("replay loop did not stop in time")
	}

	p.mu.Lock()
	// A newer session may have started while we waited for the join; only
	// reset the one this Stop was called for.
	if p.gen == gen {
		p.playing = false
		p.mirror = padstate.State{}
	}
	p.mu.Unlock()
}

// IsPlaying reports whether a session is active. The check self-heals: if
// the replay goroutine has terminated on its own the stale flag is
// corrected before reporting.
func (p *Player) IsPlaying() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.reconcileLocked()
}

func (p *Player) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Status{Playing: p.reconcileLocked(), BackendAlive: p.backendAlive}
}

// VirtualState returns a copy of what the player is currently emitting,
// distinct from any physically attached device's state. It reports false
// when idle.
func (p *Player) VirtualState() (padstate.State, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.reconcileLocked() {
		return padstate.State{}, false
	}
	return p.mirror.Clone(), true
}

// reconcileLocked corrects the playing flag against the replay goroutine's
// actual liveness. Must be called with p.mu held.
func (p *Player) reconcileLocked() bool {
	if !p.playing {
		return false
	}
	select {
	case <-p.done:
		p.playing = false
		p.mirror = padstate.State{}
		return false
	default:
		return true
	}
}

// replay walks the log settings.Loops times. Timing is additive from a
// fixed loop-start anchor rather than daisy-chained sleeps, so scheduling
// error does not accumulate across events.
func (p *Player) replay(events []macro.Event, settings macro.PlaybackSettings, stop, done chan struct{}) {
	defer close(done)

	alive := p.primary != nil

loops:
	for loop := 0; loop < settings.Loops; loop++ {
		anchor := p.clk.Now()

		for _, e := range events {
			target := anchor.Add(time.Duration(e.Timestamp / settings.Speed * float64(time.Second)))
			if wait := target.Sub(p.clk.Now()); wait > 0 {
				select {
				case <-stop:
					break loops
				case <-p.clk.After(wait):
				}
			}

			alive = p.dispatch(e, alive)
			p.observe(e)

			// A delay event injects extra wait beyond normal inter-event
			// timing; the anchor advances with it so later events are not
			// scheduled as if the wait never happened.
			if e.Type == macro.Delay {
				extra := time.Duration(e.Value.Analog() * float64(time.Millisecond))
				if extra > 0 {
					select {
					case <-stop:
						break loops
					case <-p.clk.After(extra):
					}
					anchor = anchor.Add(extra)
				}
			}

			select {
			case <-stop:
				break loops
			default:
			}
		}
	}

	p.mu.Lock()
	p.playing = false
	p.mirror = padstate.State{}
	p.mu.Unlock()
	slog.Info("playback finished")
}

// dispatch sends one event to the active backend. If the preferred backend
// errors it is disabled for the remainder of the session and the same event
// is re-dispatched through the fallback; the event is never lost.
func (p *Player) dispatch(e macro.Event, alive bool) bool {
	if alive {
		err := send(p.primary, e)
		if err == nil {
			return true
		}
		if p.fallback == nil {
			// No alternative backend; log and stay on the primary.
			slog.Debug("dispatch failed", "backend", p.primary.Name(), "error", err)
			return true
		}
		slog.Warn("preferred backend failed, switching to fallback",
			"backend", p.primary.Name(), "error", err)
		p.mu.Lock()
		p.backendAlive = false
		p.mu.Unlock()
	}

	if p.fallback == nil {
		return false
	}
	if err := send(p.fallback, e); err != nil {
		slog.Debug("fallback dispatch failed", "error", err)
	}
	return false
}

func send(b backend.Backend, e macro.Event) error {
	switch e.Type {
	case macro.Button, macro.Dpad:
		if e.Value.Bool() {
			return b.PressButton(e.Source)
		}
		return b.ReleaseButton(e.Source)
	case macro.Trigger:
		return b.SetTrigger(e.Source, e.Value.Analog())
	case macro.Stick:
		x, y := e.Value.XY()
		return b.SetStick(e.Source, x, y)
	case macro.Delay:
		return nil
	}
	return nil
}

// observe folds a dispatched event into the mirrored virtual state.
func (p *Player) observe(e macro.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.mirror.Buttons == nil {
		return
	}
	switch e.Type {
	case macro.Button:
		p.mirror.SetButton(e.Source, e.Value.Bool())
	case macro.Dpad:
		p.mirror.SetDpad(e.Source, e.Value.Bool())
	case macro.Stick:
		x, y := e.Value.XY()
		p.mirror.SetStick(e.Source, x, y)
	case macro.Trigger:
		p.mirror.SetTrigger(e.Source, e.Value.Analog())
	}
}
