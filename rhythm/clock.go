package rhythm

import (
	"sync"
	"time"

	"github.com/robmorgan/hellsmelody/logger"
	"github.com/robmorgan/hellsmelody/utils"
	"github.com/sirupsen/logrus"
	"k8s.io/utils/clock"
)

// MaxLatencyOffset bounds the calibration offset in both directions, in seconds.
const MaxLatencyOffset = 0.2

// SongClock owns the canonical song time of a performance: seconds since the song's logical
// start, latency compensated and pausable. It may be negative during the lead-in.
type SongClock struct {
	mu sync.RWMutex

	source clock.PassiveClock
	track  Track

	latencyOffset float64

	origin   time.Time // hardware instant at which song time is zero
	running  bool
	paused   bool
	pausedAt float64 // raw song time at the pause instant
	elapsed  float64 // last sampled song time, latency included
}

// NewSongClock creates a stopped clock reading hardware time from source.
func NewSongClock(source clock.PassiveClock, latencyOffset float64) *SongClock {
	if source == nil {
		source = clock.RealClock{}
	}
	return &SongClock{
		source:        source,
		latencyOffset: utils.Clamp(latencyOffset, -MaxLatencyOffset, MaxLatencyOffset),
	}
}

// SetTrack assigns the audio track played by Start and Restart. nil removes it.
func (c *SongClock) SetTrack(t Track) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.track = t
}

// SetLatencyOffset changes the calibration bias, clamped to ±MaxLatencyOffset.
func (c *SongClock) SetLatencyOffset(offset float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.latencyOffset = utils.Clamp(offset, -MaxLatencyOffset, MaxLatencyOffset)
}

func (c *SongClock) LatencyOffset() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.latencyOffset
}

// Start schedules song time zero leadIn seconds from now and plays the track at that instant.
func (c *SongClock) Start(leadIn float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.track == nil {
		logger.GetProjectLogger().Warn("song clock: no audio track assigned, start ignored")
		return ErrNoTrack
	}
	if err := c.track.PlayScheduled(seconds(leadIn)); err != nil {
		return err
	}
	c.anchor(leadIn)
	return nil
}

// StartWithoutTrack has the same timing contract as Start but never touches audio.
func (c *SongClock) StartWithoutTrack(leadIn float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.anchor(leadIn)
}

// Restart resets to a fresh lead-in, clearing the paused state. Song time restarts even when
// the track fails to play again; that error is returned.
func (c *SongClock) Restart(leadIn float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var err error
	if c.track != nil {
		c.track.Stop()
		err = c.track.PlayScheduled(seconds(leadIn))
		if err != nil {
			logger.GetProjectLogger().WithError(err).Warn("song clock: track restart failed")
		}
	}
	c.anchor(leadIn)
	return err
}

// Stop halts the track and freezes song time where it is.
func (c *SongClock) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running {
		return
	}
	c.elapsed = c.now()
	c.running = false
	c.paused = false
	if c.track != nil {
		c.track.Stop()
	}
}

func (c *SongClock) anchor(leadIn float64) {
	c.origin = c.source.Now().Add(seconds(leadIn))
	c.running = true
	c.paused = false
	c.pausedAt = 0
	c.elapsed = -leadIn + c.latencyOffset

	logger.GetProjectLogger().WithFields(logrus.Fields{
		"lead_in": leadIn,
		"latency": c.latencyOffset,
	}).Debug("song clock anchored")
}

// Pause freezes song time. It is a no-op when stopped or already paused.
func (c *SongClock) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running || c.paused {
		return
	}
	c.pausedAt = c.raw()
	c.paused = true
	c.elapsed = c.pausedAt + c.latencyOffset
	if c.track != nil {
		c.track.Pause()
	}
}

// Resume re-anchors the origin so song time continues from the frozen value.
func (c *SongClock) Resume() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.paused {
		return
	}
	c.origin = c.source.Now().Add(-seconds(c.pausedAt))
	c.paused = false
	if c.track != nil {
		c.track.Resume()
	}
}

// Update samples song time and stores it as the value returned by Elapsed. Drivers call it
// once per tick.
func (c *SongClock) Update() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running {
		return c.elapsed
	}
	c.elapsed = c.now()
	return c.elapsed
}

// Now reads the current song time without storing it.
func (c *SongClock) Now() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.running {
		return c.elapsed
	}
	return c.now()
}

// Elapsed is the song time sampled by the last Update.
func (c *SongClock) Elapsed() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.elapsed
}

func (c *SongClock) IsPaused() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.paused
}

func (c *SongClock) IsRunning() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.running
}

func (c *SongClock) now() float64 {
	if c.paused {
		return c.pausedAt + c.latencyOffset
	}
	return c.raw() + c.latencyOffset
}

func (c *SongClock) raw() float64 {
	return c.source.Since(c.origin).Seconds()
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
