package audio

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/faiface/beep"
	"github.com/robmorgan/hellsmelody/rhythm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// constant is a seekable stream of n samples of value v.
type constant struct {
	v   float64
	n   int
	pos int
}

func (c *constant) Stream(samples [][2]float64) (int, bool) {
	if c.pos >= c.n {
		return 0, false
	}
	i := 0
	for ; i < len(samples) && c.pos < c.n; i++ {
		samples[i] = [2]float64{c.v, c.v}
		c.pos++
	}
	return i, true
}

func (c *constant) Err() error       { return nil }
func (c *constant) Len() int         { return c.n }
func (c *constant) Position() int    { return c.pos }
func (c *constant) Seek(p int) error { c.pos = p; return nil }
func (c *constant) Close() error     { return nil }

type fakeOutput struct {
	inits   int
	clears  int
	playing []beep.Streamer
}

func (f *fakeOutput) Init(beep.SampleRate, int) error { f.inits++; return nil }
func (f *fakeOutput) Play(s ...beep.Streamer)         { f.playing = append(f.playing, s...) }
func (f *fakeOutput) Lock()                           {}
func (f *fakeOutput) Unlock()                         {}
func (f *fakeOutput) Clear()                          { f.clears++; f.playing = nil }

var _ rhythm.Track = (*Track)(nil)

func newTestTrack() (*Track, *constant, *fakeOutput) {
	stream := &constant{v: 0.5, n: 100}
	out := &fakeOutput{}
	return NewTrack(stream, beep.Format{SampleRate: 100, NumChannels: 2, Precision: 2}, out), stream, out
}

func TestPlayScheduledPrependsSilence(t *testing.T) {
	t.Parallel()

	track, stream, out := newTestTrack()
	stream.pos = 40

	require.NoError(t, track.PlayScheduled(50*time.Millisecond))
	require.Len(t, out.playing, 1)
	assert.Equal(t, 1, out.inits)
	assert.Zero(t, stream.pos)

	buf := make([][2]float64, 8)
	n, ok := out.playing[0].Stream(buf)
	require.True(t, ok)
	require.Equal(t, 8, n)
	assert.Equal(t, 0.0, buf[4][0])
	assert.Equal(t, 0.5, buf[5][0])
	assert.Equal(t, time.Second, track.Length())
}

func TestPauseResumeStop(t *testing.T) {
	t.Parallel()

	track, _, out := newTestTrack()
	track.Pause()

	require.NoError(t, track.PlayScheduled(0))
	track.Pause()
	ctrl := out.playing[0].(*beep.Ctrl)
	assert.True(t, ctrl.Paused)

	track.Resume()
	assert.False(t, ctrl.Paused)

	track.Stop()
	assert.Empty(t, out.playing)

	require.NoError(t, track.PlayScheduled(0))
	assert.Equal(t, 1, out.inits)
	require.NoError(t, track.Close())
}

func TestOpenRejectsUnknownFormat(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "song.flac")
	require.NoError(t, os.WriteFile(path, []byte("fLaC"), 0o644))

	_, err := Open(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported audio format")

	_, err = Open(filepath.Join(t.TempDir(), "missing.wav"))
	require.Error(t, err)
}
