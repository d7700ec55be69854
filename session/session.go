// Package session drives one run of the game: it owns the song clock and advances the
// schedules, judge and clash encounter from a single tick.
package session

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/gruntwork-io/go-commons/errors"
	"github.com/robmorgan/hellsmelody/clash"
	"github.com/robmorgan/hellsmelody/config"
	"github.com/robmorgan/hellsmelody/geom"
	"github.com/robmorgan/hellsmelody/health"
	"github.com/robmorgan/hellsmelody/judge"
	"github.com/robmorgan/hellsmelody/logger"
	"github.com/robmorgan/hellsmelody/pool"
	"github.com/robmorgan/hellsmelody/rhythm"
	"github.com/robmorgan/hellsmelody/schedule"
	"github.com/robmorgan/hellsmelody/sink"
	"github.com/robmorgan/hellsmelody/timing"
	"github.com/robmorgan/hellsmelody/utils"
	"github.com/sirupsen/logrus"
	"k8s.io/utils/clock"
)

// State is where a session is in its lifecycle.
type State int

const (
	Idle State = iota
	Running
	GameOver
	Finished
	// Faulted sessions could not start a run and stay inert
	Faulted
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case GameOver:
		return "game-over"
	case Finished:
		return "finished"
	case Faulted:
		return "faulted"
	default:
		return "idle"
	}
}

// Recorder receives the song time of every input.
type Recorder interface {
	Record(songTime float64)
}

// Options configure a session. Only Config is required.
type Options struct {
	Config *config.GameConfig
	// Source is the hardware time source; nil means the real clock
	Source clock.PassiveClock
	Track  rhythm.Track

	Score     sink.ScoreSink
	Presenter sink.Presenter
	Recorder  Recorder

	// Autoplay enables the autoplayer, seeded from Rand
	Autoplay bool
	Rand     *rand.Rand
}

// Run is the chart of one run.
type Run struct {
	Notes []schedule.Entry
	// Boss holds volleys and clashes; it may be empty
	Boss []schedule.Entry
	// Approach is the requested approach duration; zero uses the configured one
	Approach float64
	// Audio starts the clock with the track
	Audio bool
}

// Session is safe for concurrent use: Tick, input and lifecycle calls are serialized.
type Session struct {
	mu sync.Mutex

	cfg    *config.GameConfig
	source clock.PassiveClock
	clock  *rhythm.SongClock
	sinks  *sink.Sinks

	pool      *pool.Pool[*schedule.Entity]
	active    *schedule.ActiveSet
	notes     *schedule.Schedule
	boss      *schedule.Schedule
	judge     *judge.Judge
	encounter *clash.Encounter
	volleys   []*volley
	auto      *autoplayer
	recorder  Recorder

	player   *health.Meter
	opponent *health.Meter

	mouth        geom.Vec
	playerCenter geom.Vec

	state     State
	fault     error
	justArmed bool
	approach  float64
	lastSong  float64
	lastReal  time.Time
}

// New wires a session. A configuration that cannot run is returned as a ConfigurationFault.
func New(opts Options) (*Session, error) {
	cfg := opts.Config
	if cfg == nil {
		return nil, config.Fault("config", "no configuration given")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	source := opts.Source
	if source == nil {
		source = clock.RealClock{}
	}

	s := &Session{
		cfg:      cfg,
		source:   source,
		clock:    rhythm.NewSongClock(source, cfg.LatencyOffset),
		recorder: opts.Recorder,
		player:   health.NewMeter("player", cfg.Health.Lives),
		opponent: health.NewMeter("boss", cfg.Health.BossHP),
	}
	if opts.Track != nil {
		s.clock.SetTrack(opts.Track)
	}

	s.sinks = &sink.Sinks{
		Score:     opts.Score,
		Player:    s.player,
		Opponent:  s.opponent,
		Presenter: opts.Presenter,
	}
	s.player.OnDeath = s.gameOver
	s.opponent.OnDeath = func() {
		logger.GetProjectLogger().Info("Boss defeated")
	}

	s.pool = pool.New(cfg.Pool.Initial, func() *schedule.Entity { return &schedule.Entity{} })
	s.active = schedule.NewActiveSet(s.pool, cfg.DespawnGrace())
	s.active.OnSpawn = s.sinks.Spawn
	s.active.OnRelease = s.sinks.Despawn

	s.notes, s.boss = s.buildSchedules(cfg.Approach.ApproachTime)

	s.judge = judge.New(cfg.Timing, s.active, s.sinks, s.clock)
	s.judge.OnTimeout = s.onTimeout

	encounter, err := clash.NewEncounter(cfg.Clash, cfg.Stage, cfg.Timing, s.pool, s.sinks, s.clock)
	if err != nil {
		return nil, err
	}
	s.encounter = encounter

	s.mouth = cfg.Stage.BossRest
	if cfg.Stage.BossMouth != nil {
		s.mouth = *cfg.Stage.BossMouth
	}
	if cfg.Stage.PlayerCenter != nil {
		s.playerCenter = *cfg.Stage.PlayerCenter
	} else {
		s.playerCenter = s.mouth.Add(geom.Left.Scale(5))
	}

	if opts.Autoplay {
		rng := opts.Rand
		if rng == nil {
			rng = rand.New(rand.NewSource(time.Now().UnixNano()))
		}
		s.auto = newAutoplayer(cfg.Autoplay, cfg.Timing, rng)
	}

	return s, nil
}

// Start loads the chart and starts the song clock after the configured lead-in. An empty chart
// faults the session, which then stays inert. With Audio set and no track, the run is set up
// but the clock does not advance and rhythm.ErrNoTrack is returned.
func (s *Session) Start(run Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	approach := s.cfg.Approach.EffectiveApproach(run.Approach)
	if approach != run.Approach && run.Approach > 0 {
		logger.GetProjectLogger().WithFields(logrus.Fields{
			"requested": run.Approach,
			"effective": approach,
		}).Info("Approach widened so notes spawn off screen")
	}

	notes, boss := s.buildSchedules(approach)
	if err := notes.Load(run.Notes); err != nil {
		return s.faultWith(err)
	}
	if len(run.Boss) > 0 {
		if err := boss.Load(run.Boss); err != nil {
			return s.faultWith(err)
		}
	}

	s.reset()
	s.notes = notes
	s.boss = boss
	s.approach = approach
	s.fault = nil
	s.state = Running

	logger.GetProjectLogger().WithFields(logrus.Fields{
		"notes":    notes.Len(),
		"boss":     boss.Len(),
		"approach": approach,
		"lead_in":  s.cfg.LeadIn,
	}).Info("Run started")

	if !run.Audio {
		s.clock.StartWithoutTrack(s.cfg.LeadIn)
		s.anchorDeltas()
		return nil
	}
	if err := s.clock.Start(s.cfg.LeadIn); err != nil {
		return errors.WithStackTrace(err)
	}
	s.anchorDeltas()
	return nil
}

// Notes activate one approach ahead of their target. The boss timeline fires volleys on their
// time and arms clashes one windup ahead.
func (s *Session) buildSchedules(approach float64) (notes, boss *schedule.Schedule) {
	notes = schedule.New("notes", s.clock)
	notes.SetLead(schedule.KindLead(approach))
	notes.Handle(schedule.KindNote, s.spawnNote)

	boss = schedule.New("boss", s.clock)
	boss.SetLead(schedule.KindLead(approach))
	boss.Handle(schedule.KindVolley, s.startVolley)
	boss.Handle(schedule.KindClash, s.armClash)
	return notes, boss
}

func (s *Session) faultWith(err error) error {
	s.fault = err
	s.state = Faulted
	logger.GetProjectLogger().WithError(err).Error("Run could not start")
	return errors.WithStackTrace(fmt.Errorf("starting run: %w", err))
}

// Tick advances the run by the time that passed since the previous tick.
func (s *Session) Tick() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != Running {
		return
	}

	realNow := s.source.Now()
	realDelta := realNow.Sub(s.lastReal).Seconds()
	s.lastReal = realNow

	now := s.clock.Update()
	delta := now - s.lastSong
	s.lastSong = now

	s.notes.Tick(now)
	s.boss.Tick(now)
	s.driveVolleys(now)
	s.judge.SweepTimeouts(now)
	if s.auto != nil && !s.clock.IsPaused() {
		s.autoplay(now)
	}
	s.active.Sweep(now)
	if s.justArmed {
		// a clash armed this tick starts at now
		delta, realDelta = 0, 0
		s.justArmed = false
	}
	s.encounter.Tick(delta, realDelta)
	s.present(now)

	if s.state == Running && s.done() {
		s.state = Finished
		logger.GetProjectLogger().WithFields(logrus.Fields{
			"song_time": now,
			"lives":     s.player.Current(),
			"boss_hp":   s.opponent.Current(),
		}).Info("Run finished")
	}
}

// Input judges a press at the current song time.
func (s *Session) Input() judge.Verdict {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inputAt(s.clock.Now())
}

// InputAt judges a press at the given song time.
func (s *Session) InputAt(songTime float64) judge.Verdict {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inputAt(songTime)
}

// A press goes to the clash while one is on the field. A press the clash does not take, too
// early or after it resolved, only counts against notes and projectiles when there is one to hit.
func (s *Session) inputAt(now float64) judge.Verdict {
	if s.state != Running || s.clock.IsPaused() {
		return judge.Verdict{Disposition: judge.Ignored}
	}
	if s.recorder != nil {
		s.recorder.Record(now)
	}

	if s.encounter.Actor() != nil {
		v := s.encounter.Parry(now)
		taken := v.Disposition == judge.Judged || v.Disposition == judge.Missed
		if taken || s.active.Unresolved() == 0 {
			return v
		}
	}
	return s.judge.Evaluate(now)
}

func (s *Session) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Running {
		return
	}
	s.clock.Pause()
}

func (s *Session) Resume() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Running {
		return
	}
	s.clock.Resume()
	s.lastReal = s.source.Now()
}

// TogglePause pauses a running session or resumes a paused one.
func (s *Session) TogglePause() {
	s.mu.Lock()
	paused := s.clock.IsPaused()
	s.mu.Unlock()

	if paused {
		s.Resume()
	} else {
		s.Pause()
	}
}

// Retry restarts the loaded chart from a fresh lead-in, whether the previous run ended or not.
func (s *Session) Retry() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == Faulted || s.state == Idle {
		return errors.WithStackTrace(fmt.Errorf("no run to retry (state %s)", s.state))
	}

	s.reset()
	s.notes.Rewind()
	s.boss.Rewind()
	s.state = Running

	err := s.clock.Restart(s.cfg.RestartLeadIn)
	s.anchorDeltas()
	if err != nil {
		return errors.WithStackTrace(err)
	}

	logger.GetProjectLogger().Info("Run restarted")
	return nil
}

func (s *Session) reset() {
	s.active.Clear()
	s.encounter.Cancel()
	s.justArmed = false
	s.volleys = nil
	if r, ok := s.sinks.Score.(interface{ Reset() }); ok {
		r.Reset()
	}
	s.player.Reset()
	s.opponent.Reset()
	if s.auto != nil {
		s.auto.reset()
	}
}

func (s *Session) anchorDeltas() {
	s.lastSong = s.clock.Update()
	s.lastReal = s.source.Now()
}

// Runs with the lock held, from a damage sink inside Tick or input.
func (s *Session) gameOver() {
	if s.state != Running {
		return
	}
	s.state = GameOver
	s.clock.Pause()
	logger.GetProjectLogger().WithFields(logrus.Fields{
		"song_time": s.clock.Elapsed(),
	}).Info("Game over")
}

func (s *Session) done() bool {
	return s.notes.Done() && s.boss.Done() && len(s.volleys) == 0 &&
		s.active.Len() == 0 && s.encounter.Phase() == clash.Idle
}

func (s *Session) spawnNote(e schedule.Entry, now float64) {
	s.active.Spawn(schedule.KindNote, e.Lane, e.TargetTime, s.approach, s.cfg.Approach.UnitsPerSecond, now)
}

func (s *Session) armClash(e schedule.Entry, now float64) {
	s.encounter.Arm(now, e)
	s.justArmed = true
}

func (s *Session) onTimeout(e *schedule.Entity) {
	if e.Kind == schedule.KindProjectile {
		s.sinks.DamagePlayer(1)
	}
}

// Positions of everything on the field, for presenters.
func (s *Session) present(now float64) {
	if s.sinks.Presenter == nil {
		return
	}
	for _, e := range s.active.Active() {
		if e.Resolved() {
			continue
		}
		s.sinks.Move(e, s.positionOf(e, now))
	}
}

func (s *Session) positionOf(e *schedule.Entity, now float64) geom.Vec {
	if e.Kind == schedule.KindProjectile {
		if e.Approach <= 0 {
			return s.playerCenter
		}
		return geom.Lerp(s.mouth, s.playerCenter, (now-e.SpawnTime)/e.Approach)
	}
	return geom.Vec{X: s.cfg.Approach.HitX + e.Offset(now), Y: float64(e.Lane)}
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Fault is the error that faulted the session, if any.
func (s *Session) Fault() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fault
}

func (s *Session) Clock() *rhythm.SongClock { return s.clock }

func (s *Session) Windows() timing.Windows { return s.cfg.Timing }

// Status is a snapshot of a run for display.
type Status struct {
	State    State
	SongTime float64
	// Progress runs from 0 to 1 over the chart
	Progress float64
	Paused   bool
	Lives    int
	MaxLives int
	BossHP   int
	MaxHP    int
	Clash    clash.Phase
	Active   int
}

func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := Status{
		State:    s.state,
		SongTime: s.clock.Now(),
		Paused:   s.clock.IsPaused(),
		Lives:    s.player.Current(),
		MaxLives: s.player.Max(),
		BossHP:   s.opponent.Current(),
		MaxHP:    s.opponent.Max(),
		Clash:    s.encounter.Phase(),
		Active:   s.active.Len(),
	}
	end := s.notes.LastTarget()
	if b := s.boss.LastTarget(); b > end {
		end = b
	}
	if end > 0 {
		st.Progress = utils.Clamp01(st.SongTime / end)
	}
	if s.state == Finished {
		st.Progress = 1
	}
	return st
}
