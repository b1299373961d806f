// Package recorder samples a polled input device on a background schedule,
// diffs against the last known state, and appends timestamped events to a
// capped log.
package recorder

import (
	"errors"
	"time"

	"github.com/padrec/padrec/clock"
	"github.com/padrec/padrec/devices"
	"github.com/padrec/padrec/logging"
	"github.com/padrec/padrec/macro"
	"github.com/padrec/padrec/padstate"
)

var slog = logging.NewLogger("recorder")

var ErrAlreadyRecording = errors.New("recording already in progress")

// Sampling tiers. The idle rate balances capture latency against CPU while
// nothing changes; a cycle that emits events switches to the burst rate for
// activityWindow cycles before decaying back.
const (
	idleInterval     = time.Second / 120
	burstInterval    = time.Second / 240
	noDeviceInterval = time.Second / 60
	activityWindow   = 20

	joinTimeout = time.Second
)

// Options tune a recorder instance.
type Options struct {
	// Thresholds select the precision profile for analog diffing. The zero
	// value means padstate.HighPrecision.
	Thresholds padstate.Thresholds
	// MaxEvents caps the accumulated log. Non-positive means
	// macro.DefaultMaxEvents.
	MaxEvents int
}

// Status is a point-in-time view of the recorder.
type Status struct {
	Recording  bool
	EventCount int
	Elapsed    float64
}

// Recorder owns at most one active recording session. Starting a new
// session discards the previous session's log unless it was stopped and
// retrieved first.
type Recorder struct {
	provider devices.Provider
	clk      clock.Clock
	opts     Options

	ctl chan request
}

type request struct {
	op    string
	reply chan response
}

type response struct {
	log    *macro.Log
	events []macro.Event
	status Status
	err    error
}

func New(provider devices.Provider, clk clock.Clock, opts Options) *Recorder {
	if clk == nil {
		clk = clock.NewReal()
	}
	if opts.Thresholds == (padstate.Thresholds{}) {
		opts.Thresholds = padstate.HighPrecision
	}
	r := &Recorder{
		provider: provider,
		clk:      clk,
		opts:     opts,
		ctl:      make(chan request),
	}
	go r.control()
	return r
}

// Start resets to a fresh empty log, captures a neutral baseline, and
// begins background sampling. It returns a handle to the live-growing log.
func (r *Recorder) Start() (*macro.Log, error) {
	resp := r.request("start")
	return resp.log, resp.err
}

// Stop halts sampling, joins the sampling goroutine with a bounded wait,
// appends terminal stick-reset events so playback ends in a clean state,
// and returns a snapshot of the recorded events. Calling Stop when not
// recording is a no-op returning an empty sequence.
func (r *Recorder) Stop() []macro.Event {
	return r.request("stop").events
}

// Status reports whether a session is active, how many events it has
// accumulated, and its elapsed seconds.
func (r *Recorder) Status() Status {
	return r.request("status").status
}

// Close stops any active session and releases the recorder. The recorder
// must not be used afterwards.
func (r *Recorder) Close() {
	r.Stop()
	close(r.ctl)
}

func (r *Recorder) request(op string) response {
	req := request{op: op, reply: make(chan response, 1)}
	r.ctl <- req
	return <-req.reply
}

// control serializes session lifecycle; only this goroutine touches the
// session fields, so Start/Stop/Status are safe from any goroutine.
func (r *Recorder) control() {
	var (
		log    *macro.Log
		origin time.Time
		stop   chan struct{}
		done   chan struct{}
	)
	recording := func() bool { return stop != nil }

	for req := range r.ctl {
		switch req.op {
		case "start":
			if recording() {
				req.reply <- response{err: ErrAlreadyRecording}
				continue
			}
			log = macro.NewLog(r.opts.MaxEvents)
			origin = r.clk.Now()
			stop = make(chan struct{})
			done = make(chan struct{})
			go r.sample(log, origin, stop, done)
			slog.Info("recording started")
			req.reply <- response{log: log}

		case "stop":
			if !recording() {
				req.reply <- response{events: []macro.Event{}}
				continue
			}
			close(stop)
			select {
			case <-done:
			case <-r.clk.After(joinTimeout):
				slog.Warn("sampling loop did not stop in time")
			}
			stop, done = nil, nil

			if log.Len() > 0 {
				final := log.LastTimestamp()
				for _, name := range []string{padstate.StickLeft, padstate.StickRight} {
					log.Append(macro.Event{
						Type:      macro.Stick,
						Timestamp: final,
						Source:    name,
						Value:     macro.StickXY(0, 0),
					})
				}
			}

			events := log.Snapshot()
			slog.Info("recording stopped", "events", len(events))
			req.reply <- response{events: events}

		case "status":
			st := Status{}
			if recording() {
				st.Recording = true
				st.EventCount = log.Len()
				st.Elapsed = r.clk.Since(origin).Seconds()
			} else if log != nil {
				st.EventCount = log.Len()
			}
			req.reply <- response{status: st}
		}
	}
}

// sample is the background sampling loop. Transient read failures within a
// cycle are skipped and retried next cycle; they never end the session.
func (r *Recorder) sample(log *macro.Log, origin time.Time, stop, done chan struct{}) {
	defer close(done)

	last := padstate.Neutral()
	activity := 0

	for {
		interval := r.cycle(log, origin, &last, &activity)

		select {
		case <-stop:
			return
		case <-r.clk.After(interval):
		}
	}
}

// cycle performs one sampling pass and returns the interval to the next.
func (r *Recorder) cycle(log *macro.Log, origin time.Time, last *padstate.State, activity *int) time.Duration {
	ids := r.provider.ConnectedIDs()
	if len(ids) == 0 {
		return noDeviceInterval
	}

	state, ok := r.provider.ReadState(ids[0])
	if !ok {
		return idleInterval
	}

	elapsed := r.clk.Since(origin).Seconds()
	changes := padstate.Diff(*last, state, r.opts.Thresholds)
	for _, ch := range changes {
		log.Append(changeEvent(ch, elapsed))
	}
	// Replace, not merge: a transient missed between cycles is simply not
	// recorded.
	*last = state

	switch {
	case len(changes) > 0:
		*activity = activityWindow
		return burstInterval
	case *activity > 0:
		*activity--
		return burstInterval
	default:
		return idleInterval
	}
}

func changeEvent(ch padstate.Change, elapsed float64) macro.Event {
	e := macro.Event{Timestamp: elapsed, Source: ch.Name}
	switch ch.Kind {
	case padstate.KindButton:
		e.Type = macro.Button
		e.Value = macro.Bool(ch.Pressed)
	case padstate.KindDpad:
		e.Type = macro.Dpad
		e.Value = macro.Bool(ch.Pressed)
	case padstate.KindStick:
		e.Type = macro.Stick
		e.Value = macro.StickXY(ch.Stick.X, ch.Stick.Y)
	case padstate.KindTrigger:
		e.Type = macro.Trigger
		e.Value = macro.Analog(ch.Value)
	}
	return e
}
