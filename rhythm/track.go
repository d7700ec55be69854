package rhythm

import (
	"errors"
	"time"
)

// ErrNoTrack is returned by SongClock.Start when no audio track is assigned. It is advisory:
// the clock stays stopped until the caller assigns a track or starts without one.
var ErrNoTrack = errors.New("no audio track assigned to the song clock")

// Track is the audio playback capability the song clock drives.
type Track interface {
	// PlayScheduled starts playback from the beginning after delay.
	PlayScheduled(delay time.Duration) error
	Pause()
	Resume()
	Stop()
}

// Pauser is implemented by anything that owns the run's pause flag.
type Pauser interface {
	IsPaused() bool
}

// NeverPaused is a Pauser for components driven outside of a song clock.
type NeverPaused struct{}

func (NeverPaused) IsPaused() bool { return false }
