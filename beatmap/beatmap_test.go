package beatmap

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	commonerrors "github.com/gruntwork-io/go-commons/errors"
	"github.com/robmorgan/hellsmelody/schedule"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const chartJSON = `{
  "songName": "sandbox",
  "offset": 0.25,
  "approachTime": 1.1,
  "notes": [
    {"t": 2.0, "type": "tap"},
    {"t": 1.0, "type": "tap", "lane": 1}
  ],
  "events": [
    {"t": 4.0, "type": "clash", "windup": 1.5},
    {"t": 3.0, "type": "volley"}
  ]
}`

func TestLoadJSON(t *testing.T) {
	t.Parallel()

	b, err := Load(strings.NewReader(chartJSON))
	require.NoError(t, err)
	assert.Equal(t, "sandbox", b.SongName)
	assert.Equal(t, 1.1, b.ApproachTime)
	require.Len(t, b.Notes, 2)
	assert.Equal(t, 1.0, b.Notes[0].T)
	assert.Equal(t, 1, b.Notes[0].Lane)

	notes := b.NoteEntries()
	assert.Equal(t, 1.25, notes[0].TargetTime)
	assert.Equal(t, schedule.KindNote, notes[1].Kind)

	boss, err := b.BossEntries(schedule.Volley{Count: 3, Interval: 0.3}, 1.2)
	require.NoError(t, err)
	require.Len(t, boss, 2)
	assert.Equal(t, schedule.KindVolley, boss[0].Kind)
	assert.Equal(t, 3, boss[0].Volley.Count)
	assert.Equal(t, schedule.KindClash, boss[1].Kind)
	assert.Equal(t, 5.5, boss[1].TargetTime)
	assert.Equal(t, 1.5, boss[1].Windup)
}

func TestLoadRejectsEmpty(t *testing.T) {
	t.Parallel()

	for _, input := range []string{"", `{"songName": "x", "notes": []}`} {
		_, err := Load(strings.NewReader(input))
		require.Error(t, err)
		assert.ErrorIs(t, commonerrors.Unwrap(err), ErrEmptyBeatmap)
	}

	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
	assert.ErrorIs(t, commonerrors.Unwrap(err), ErrEmptyBeatmap)
}

func TestUnknownEventType(t *testing.T) {
	t.Parallel()

	b := &Beatmap{Notes: []Note{{T: 1}}, Events: []Event{{T: 1, Type: "laser"}}}
	_, err := b.BossEntries(schedule.Volley{Count: 1}, 1)
	require.Error(t, err)
}

func TestGenerateGrid(t *testing.T) {
	t.Parallel()

	b := GenerateGrid(120, 4, 2.0, 1.1)
	require.Len(t, b.Notes, 4)
	assert.Equal(t, 2.0, b.Notes[0].T)
	assert.Equal(t, 3.5, b.Notes[3].T)
	assert.Equal(t, "grid-120bpm", b.SongName)
}

func TestRecorderRoundTrip(t *testing.T) {
	t.Parallel()

	r := NewRecorder()
	r.Record(1.5)
	r.Record(2.25)
	assert.Equal(t, 2, r.Len())

	var buf bytes.Buffer
	require.NoError(t, r.Dump(&buf))

	b, err := Load(&buf)
	require.NoError(t, err)
	assert.Equal(t, "recorded", b.SongName)
	require.Len(t, b.Notes, 2)
	assert.Equal(t, 2.25, b.Notes[1].T)
}
