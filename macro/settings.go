package macro

import "errors"

var (
	ErrInvalidLoops = errors.New("loop count must be at least 1")
	ErrInvalidSpeed = errors.New("speed multiplier must be positive")
)

// PlaybackSettings control one playback invocation. Construct through
// NewPlaybackSettings; the zero value is not valid.
type PlaybackSettings struct {
	Loops int
	Speed float64
}

func NewPlaybackSettings(loops int, speed float64) (PlaybackSettings, error) {
	if loops < 1 {
		return PlaybackSettings{}, ErrInvalidLoops
	}
	if speed <= 0 {
		return PlaybackSettings{}, ErrInvalidSpeed
	}
	return PlaybackSettings{Loops: loops, Speed: speed}, nil
}

// DefaultPlaybackSettings plays once at recorded speed.
func DefaultPlaybackSettings() PlaybackSettings {
	return PlaybackSettings{Loops: 1, Speed: 1.0}
}
