package rhythm

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	testingclock "k8s.io/utils/clock/testing"
)

type fakeTrack struct {
	scheduled []time.Duration
	pauses    int
	resumes   int
	stops     int
	failWith  error
}

func (f *fakeTrack) PlayScheduled(delay time.Duration) error {
	if f.failWith != nil {
		return f.failWith
	}
	f.scheduled = append(f.scheduled, delay)
	return nil
}
func (f *fakeTrack) Pause()  { f.pauses++ }
func (f *fakeTrack) Resume() { f.resumes++ }
func (f *fakeTrack) Stop()   { f.stops++ }

func newTestClock(latency float64) (*SongClock, *testingclock.FakeClock) {
	fc := testingclock.NewFakeClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	return NewSongClock(fc, latency), fc
}

func TestStartRequiresTrack(t *testing.T) {
	t.Parallel()

	c, fc := newTestClock(0)
	require.ErrorIs(t, c.Start(1.0), ErrNoTrack)
	require.False(t, c.IsRunning())

	fc.Step(2 * time.Second)
	require.Equal(t, 0.0, c.Update(), "a clock that never started does not advance")
}

func TestStartWithTrack(t *testing.T) {
	t.Parallel()

	c, fc := newTestClock(0)
	track := &fakeTrack{}
	c.SetTrack(track)

	require.NoError(t, c.Start(1.0))
	require.Equal(t, []time.Duration{time.Second}, track.scheduled)
	require.InDelta(t, -1.0, c.Update(), 1e-9, "song time is negative during the lead-in")

	fc.Step(1500 * time.Millisecond)
	require.InDelta(t, 0.5, c.Update(), 1e-9)
}

func TestStartPropagatesTrackError(t *testing.T) {
	t.Parallel()

	c, _ := newTestClock(0)
	boom := errors.New("device busy")
	c.SetTrack(&fakeTrack{failWith: boom})
	require.ErrorIs(t, c.Start(1.0), boom)
	require.False(t, c.IsRunning())
}

func TestLatencyOffsetIsApplied(t *testing.T) {
	t.Parallel()

	c, fc := newTestClock(0.05)
	c.StartWithoutTrack(0.5)
	fc.Step(time.Second)
	require.InDelta(t, 0.55, c.Update(), 1e-9)

	c.SetLatencyOffset(0.9)
	require.Equal(t, MaxLatencyOffset, c.LatencyOffset())
	c.SetLatencyOffset(-0.9)
	require.Equal(t, -MaxLatencyOffset, c.LatencyOffset())
}

func TestPauseResumeContinuity(t *testing.T) {
	t.Parallel()

	c, fc := newTestClock(0.03)
	track := &fakeTrack{}
	c.SetTrack(track)
	require.NoError(t, c.Start(0.8))

	fc.Step(2300 * time.Millisecond)
	before := c.Update()

	c.Pause()
	c.Pause()
	require.True(t, c.IsPaused())
	require.Equal(t, 1, track.pauses, "pause is idempotent")

	fc.Step(7 * time.Second)
	require.InDelta(t, before, c.Update(), 1e-9, "song time is frozen while paused")

	c.Resume()
	c.Resume()
	require.False(t, c.IsPaused())
	require.Equal(t, 1, track.resumes, "resume is idempotent")
	require.InDelta(t, before, c.Update(), 1e-9, "no jump after resume")

	fc.Step(250 * time.Millisecond)
	require.InDelta(t, before+0.25, c.Update(), 1e-9)
}

func TestResumeWithoutPauseIsNoop(t *testing.T) {
	t.Parallel()

	c, fc := newTestClock(0)
	c.StartWithoutTrack(0)
	fc.Step(time.Second)
	c.Resume()
	require.InDelta(t, 1.0, c.Update(), 1e-9)
}

func TestRestartClearsPause(t *testing.T) {
	t.Parallel()

	c, fc := newTestClock(0)
	track := &fakeTrack{}
	c.SetTrack(track)
	require.NoError(t, c.Start(1))
	fc.Step(5 * time.Second)
	c.Pause()

	require.NoError(t, c.Restart(0.8))
	require.False(t, c.IsPaused())
	require.Equal(t, 1, track.stops)
	require.Len(t, track.scheduled, 2)
	require.InDelta(t, -0.8, c.Update(), 1e-9)
}

func TestNowDoesNotStore(t *testing.T) {
	t.Parallel()

	c, fc := newTestClock(0)
	c.StartWithoutTrack(0)
	c.Update()
	fc.Step(time.Second)
	require.InDelta(t, 1.0, c.Now(), 1e-9)
	require.InDelta(t, 0.0, c.Elapsed(), 1e-9)
}

func TestPassiveSourceDrivesSyntheticRun(t *testing.T) {
	t.Parallel()

	start := time.Unix(100, 0)
	src := testingclock.NewFakePassiveClock(start)
	c := NewSongClock(src, 0)
	c.StartWithoutTrack(0.5)

	src.SetTime(start.Add(time.Second / 2))
	require.InDelta(t, 0.0, c.Update(), 1e-9)
	src.SetTime(start.Add(2 * time.Second))
	require.InDelta(t, 1.5, c.Update(), 1e-9)
}

func TestRestartReturnsTrackError(t *testing.T) {
	t.Parallel()

	c, fc := newTestClock(0)
	track := &fakeTrack{}
	c.SetTrack(track)
	require.NoError(t, c.Start(0))
	fc.Step(3 * time.Second)

	boom := errors.New("device lost")
	track.failWith = boom
	require.ErrorIs(t, c.Restart(0.5), boom)
	require.Equal(t, 1, track.stops)
	require.True(t, c.IsRunning())
	require.InDelta(t, -0.5, c.Update(), 1e-9)
}

func TestStopFreezesSongTime(t *testing.T) {
	t.Parallel()

	c, fc := newTestClock(0)
	track := &fakeTrack{}
	c.SetTrack(track)
	require.NoError(t, c.Start(0))

	fc.Step(2 * time.Second)
	c.Stop()
	require.False(t, c.IsRunning())
	require.Equal(t, 1, track.stops)

	fc.Step(time.Second)
	require.InDelta(t, 2.0, c.Update(), 1e-9)

	c.Stop()
	require.Equal(t, 1, track.stops)
}
