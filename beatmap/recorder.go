package beatmap

import (
	"io"
	"sync"

	"github.com/robmorgan/hellsmelody/logger"
)

// Recorder collects the song time of every press and dumps them as a beatmap.
type Recorder struct {
	mu    sync.Mutex
	times []float64
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Record(songTime float64) {
	r.mu.Lock()
	r.times = append(r.times, songTime)
	r.mu.Unlock()

	logger.GetProjectLogger().Debugf("rec %.3f", songTime)
}

func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.times)
}

// Beatmap returns the recorded presses as a chart.
func (r *Recorder) Beatmap() *Beatmap {
	r.mu.Lock()
	defer r.mu.Unlock()

	b := &Beatmap{SongName: "recorded", ApproachTime: 1.1, Notes: make([]Note, 0, len(r.times))}
	for _, t := range r.times {
		b.Notes = append(b.Notes, Note{T: t})
	}
	return b
}

// Dump writes the recorded chart to w.
func (r *Recorder) Dump(w io.Writer) error {
	return r.Beatmap().Save(w)
}
