package rhythm

import (
	"math"
	"sync"
)

// Metronome establishes a beat grid on the song timeline.
// Originally based on https://github.com/Deep-Symmetry/electro/blob/main/src/main/java/org/deepsymmetry/electro/Metronome.java#L449
// but measured in song seconds instead of wall-clock milliseconds.
type Metronome struct {
	mu          sync.Mutex
	startTime   float64 // song time of beat 1
	tempo       float64
	beatsPerBar int
}

// NewMetronome creates a new Metronome with default values
func NewMetronome() *Metronome {
	return &Metronome{
		tempo:       120.0,
		beatsPerBar: 4,
	}
}

// NewMetronomeAt creates a metronome at bpm whose first beat falls on startTime.
func NewMetronomeAt(bpm float64, startTime float64) *Metronome {
	m := NewMetronome()
	m.tempo = bpm
	m.startTime = startTime
	return m
}

func (m *Metronome) GetTempo() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tempo
}

// SetTempo sets a new tempo at song time now. The start time is adjusted so that the current
// beat and phase are unaffected by the tempo change.
func (m *Metronome) SetTempo(bpm float64, now float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	interval := beatsToSeconds(1, m.tempo)
	beat := markerNumber(now, m.startTime, interval)
	phase := markerPhase(now, m.startTime, interval)
	newInterval := beatsToSeconds(1, bpm)
	m.startTime = now - newInterval*(phase+float64(beat)-1)
	m.tempo = bpm
}

// GetBeatInterval returns the number of seconds a beat lasts.
func (m *Metronome) GetBeatInterval() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return beatsToSeconds(1, m.tempo)
}

// TimeOfBeat returns the song time at which a particular beat (1-based) occurs.
func (m *Metronome) TimeOfBeat(beat int) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.startTime + beatsToSeconds(beat-1, m.tempo)
}

// BeatAt returns the beat number in progress at song time now.
func (m *Metronome) BeatAt(now float64) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return markerNumber(now, m.startTime, beatsToSeconds(1, m.tempo))
}

// PhaseAt returns how far through its beat song time now is, in [0, 1).
func (m *Metronome) PhaseAt(now float64) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return markerPhase(now, m.startTime, beatsToSeconds(1, m.tempo))
}

// IsDownBeat checks whether the beat in progress at now is the first beat in its bar.
func (m *Metronome) IsDownBeat(now float64) bool {
	beat := m.BeatAt(now)
	m.mu.Lock()
	defer m.mu.Unlock()
	return (beat-1)%m.beatsPerBar == 0
}

// beatsToSeconds calculates seconds for given beats and tempo
func beatsToSeconds(beats int, tempo float64) float64 {
	return (60.0 / tempo) * float64(beats)
}

// markerNumber calculates the marker number
func markerNumber(instant, start, interval float64) int {
	return int(math.Floor((instant-start)/interval)) + 1
}

// markerPhase calculates the phase of a marker
func markerPhase(instant, start, interval float64) float64 {
	ratio := (instant - start) / interval
	return ratio - math.Floor(ratio)
}
