// Package audio plays a song file through the speaker as the song clock's backing track.
package audio

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/speaker"
	"github.com/faiface/beep/vorbis"
	"github.com/faiface/beep/wav"
	"github.com/gruntwork-io/go-commons/errors"
	"github.com/robmorgan/hellsmelody/logger"
	"github.com/sirupsen/logrus"
)

// Output is the audio device. The speaker package implements it through Speaker.
type Output interface {
	Init(sampleRate beep.SampleRate, bufferSize int) error
	Play(s ...beep.Streamer)
	Lock()
	Unlock()
	Clear()
}

// Speaker is the default Output.
type Speaker struct{}

func (Speaker) Init(sampleRate beep.SampleRate, bufferSize int) error {
	return speaker.Init(sampleRate, bufferSize)
}
func (Speaker) Play(s ...beep.Streamer) { speaker.Play(s...) }
func (Speaker) Lock()                   { speaker.Lock() }
func (Speaker) Unlock()                 { speaker.Unlock() }
func (Speaker) Clear()                  { speaker.Clear() }

// Track is a decoded song. It implements rhythm.Track.
type Track struct {
	mu sync.Mutex

	Name     string
	out      Output
	streamer beep.StreamSeekCloser
	format   beep.Format
	ctrl     *beep.Ctrl
	ready    bool
}

// Open decodes a wav, mp3 or ogg file for playback on the speaker.
func Open(path string) (*Track, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.WithStackTrace(err)
	}

	var streamer beep.StreamSeekCloser
	var format beep.Format
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".wav":
		streamer, format, err = wav.Decode(f)
	case ".mp3":
		streamer, format, err = mp3.Decode(f)
	case ".ogg":
		streamer, format, err = vorbis.Decode(f)
	default:
		f.Close()
		return nil, errors.WithStackTrace(fmt.Errorf("unsupported audio format %q", ext))
	}
	if err != nil {
		f.Close()
		return nil, errors.WithStackTrace(err)
	}

	logger.GetProjectLogger().WithFields(logrus.Fields{
		"file":        path,
		"sample_rate": int(format.SampleRate),
		"length":      format.SampleRate.D(streamer.Len()).String(),
	}).Info("Audio track loaded")

	t := NewTrack(streamer, format, Speaker{})
	t.Name = filepath.Base(path)
	return t, nil
}

func NewTrack(streamer beep.StreamSeekCloser, format beep.Format, out Output) *Track {
	return &Track{streamer: streamer, format: format, out: out}
}

// PlayScheduled rewinds the song and starts it after delay of silence.
func (t *Track) PlayScheduled(delay time.Duration) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.ready {
		if err := t.out.Init(t.format.SampleRate, t.format.SampleRate.N(time.Second/60)); err != nil {
			return errors.WithStackTrace(err)
		}
		t.ready = true
	}
	if delay < 0 {
		delay = 0
	}

	t.out.Clear()
	t.out.Lock()
	err := t.streamer.Seek(0)
	t.out.Unlock()
	if err != nil {
		return errors.WithStackTrace(err)
	}

	silence := beep.Silence(t.format.SampleRate.N(delay))
	t.ctrl = &beep.Ctrl{Streamer: beep.Seq(silence, t.streamer)}
	t.out.Play(t.ctrl)
	return nil
}

func (t *Track) Pause()  { t.setPaused(true) }
func (t *Track) Resume() { t.setPaused(false) }

func (t *Track) setPaused(paused bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.ctrl == nil {
		return
	}
	t.out.Lock()
	t.ctrl.Paused = paused
	t.out.Unlock()
}

// Stop silences the track. It can be started again with PlayScheduled.
func (t *Track) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.ready {
		t.out.Clear()
	}
	t.ctrl = nil
}

// Length is the duration of the song.
func (t *Track) Length() time.Duration {
	return t.format.SampleRate.D(t.streamer.Len())
}

func (t *Track) Close() error {
	t.Stop()
	return t.streamer.Close()
}
