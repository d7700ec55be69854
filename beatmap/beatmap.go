// Package beatmap loads charts from YAML or JSON files and turns them into schedule entries.
package beatmap

import (
	"errors"
	"fmt"
	"io"
	"os"

	commonerrors "github.com/gruntwork-io/go-commons/errors"
	"github.com/robmorgan/hellsmelody/logger"
	"github.com/robmorgan/hellsmelody/rhythm"
	"github.com/robmorgan/hellsmelody/schedule"
	"github.com/sirupsen/logrus"
	"golang.org/x/exp/slices"
	"gopkg.in/yaml.v3"
)

// ErrEmptyBeatmap is returned for a missing, unreadable or note-less beatmap.
var ErrEmptyBeatmap = errors.New("beatmap has no notes")

const (
	EventClash  = "clash"
	EventVolley = "volley"
)

// Note is one tap of the chart.
type Note struct {
	T        float64 `yaml:"t"`
	Type     string  `yaml:"type,omitempty"`
	Duration float64 `yaml:"duration,omitempty"`
	Lane     int     `yaml:"lane,omitempty"`
}

// Event is one entry of the boss timeline. T is when the event triggers: a volley fires its
// first projectile at T and a clash arms at T and strikes Windup seconds later.
type Event struct {
	T        float64 `yaml:"t"`
	Type     string  `yaml:"type"`
	Windup   float64 `yaml:"windup,omitempty"`
	Count    int     `yaml:"count,omitempty"`
	Interval float64 `yaml:"interval,omitempty"`
}

// Beatmap is a chart. Keys are camelCase as in exported JSON charts; YAML is a superset of
// JSON so both formats load.
type Beatmap struct {
	SongName     string  `yaml:"songName"`
	Offset       float64 `yaml:"offset"`
	ApproachTime float64 `yaml:"approachTime"`
	Notes        []Note  `yaml:"notes"`
	Events       []Event `yaml:"events,omitempty"`
}

// Load decodes a beatmap and sorts its notes and events by time.
func Load(r io.Reader) (*Beatmap, error) {
	var b Beatmap
	if err := yaml.NewDecoder(r).Decode(&b); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, commonerrors.WithStackTrace(ErrEmptyBeatmap)
		}
		return nil, commonerrors.WithStackTrace(fmt.Errorf("decoding beatmap: %w", err))
	}
	if len(b.Notes) == 0 {
		return nil, commonerrors.WithStackTrace(ErrEmptyBeatmap)
	}

	slices.SortStableFunc(b.Notes, func(x, y Note) bool { return x.T < y.T })
	slices.SortStableFunc(b.Events, func(x, y Event) bool { return x.T < y.T })

	logger.GetProjectLogger().WithFields(logrus.Fields{
		"song":   b.SongName,
		"notes":  len(b.Notes),
		"events": len(b.Events),
	}).Debug("Beatmap loaded")

	return &b, nil
}

// LoadFile loads a beatmap from disk. A missing file is reported as ErrEmptyBeatmap.
func LoadFile(path string) (*Beatmap, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, commonerrors.WithStackTrace(fmt.Errorf("%w: %v", ErrEmptyBeatmap, err))
	}
	defer f.Close()

	return Load(f)
}

// Save writes the beatmap as YAML.
func (b *Beatmap) Save(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(b); err != nil {
		return commonerrors.WithStackTrace(err)
	}
	return enc.Close()
}

// NoteEntries returns the notes as schedule entries, shifted by the chart offset.
func (b *Beatmap) NoteEntries() []schedule.Entry {
	entries := make([]schedule.Entry, 0, len(b.Notes))
	for _, n := range b.Notes {
		entries = append(entries, schedule.Entry{
			TargetTime: n.T + b.Offset,
			Kind:       schedule.KindNote,
			Lane:       n.Lane,
		})
	}
	return entries
}

// BossEntries returns the boss timeline as schedule entries. Fields an event leaves out take the
// given defaults. A clash's target is its trigger time plus its windup.
func (b *Beatmap) BossEntries(volley schedule.Volley, windup float64) ([]schedule.Entry, error) {
	entries := make([]schedule.Entry, 0, len(b.Events))
	for i, ev := range b.Events {
		switch ev.Type {
		case EventVolley:
			v := schedule.Volley{Count: ev.Count, Interval: ev.Interval}
			if v.Count == 0 {
				v = volley
			}
			entries = append(entries, schedule.Entry{
				TargetTime: ev.T,
				Kind:       schedule.KindVolley,
				Volley:     v,
			})
		case EventClash:
			w := ev.Windup
			if w <= 0 {
				w = windup
			}
			entries = append(entries, schedule.Entry{
				TargetTime: ev.T + w,
				Kind:       schedule.KindClash,
				Windup:     w,
			})
		default:
			return nil, commonerrors.WithStackTrace(fmt.Errorf("event %d has unknown type %q", i, ev.Type))
		}
	}
	return entries, nil
}

// GenerateGrid builds a single-lane chart with one note per beat, the fallback when no beatmap
// is given.
func GenerateGrid(bpm float64, beats int, startAt, approach float64) *Beatmap {
	m := rhythm.NewMetronomeAt(bpm, startAt)
	b := &Beatmap{
		SongName:     fmt.Sprintf("grid-%.0fbpm", bpm),
		ApproachTime: approach,
		Notes:        make([]Note, 0, beats),
	}
	for beat := 1; beat <= beats; beat++ {
		b.Notes = append(b.Notes, Note{T: m.TimeOfBeat(beat), Type: "tap"})
	}
	return b
}
