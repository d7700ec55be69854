package main

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"net"
	"os"
	"strconv"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/gruntwork-io/go-commons/errors"
	"github.com/robmorgan/hellsmelody/audio"
	"github.com/robmorgan/hellsmelody/beatmap"
	"github.com/robmorgan/hellsmelody/config"
	"github.com/robmorgan/hellsmelody/console"
	"github.com/robmorgan/hellsmelody/engine"
	"github.com/robmorgan/hellsmelody/logger"
	"github.com/robmorgan/hellsmelody/present"
	"github.com/robmorgan/hellsmelody/schedule"
	"github.com/robmorgan/hellsmelody/score"
	"github.com/robmorgan/hellsmelody/session"
	"github.com/robmorgan/hellsmelody/sink"
	"github.com/robmorgan/hellsmelody/timing"
	"gopkg.in/alecthomas/kingpin.v2"
	"k8s.io/utils/clock"
	testingclock "k8s.io/utils/clock/testing"
)

const fieldWidth = 64

var (
	app        = kingpin.New("hellsmelody", "A rhythm boss fight for the terminal.")
	configPath = app.Flag("config", "YAML or JSON game config").Short('c').ExistingFile()
	logLevel   = app.Flag("log-level", "Overrides the configured log level").String()

	playCmd      = app.Command("play", "Play a beatmap, or a generated grid when none is given").Default()
	playChart    = playCmd.Arg("beatmap", "Beatmap file").ExistingFile()
	playAudio    = playCmd.Flag("audio", "Song file (wav, mp3 or ogg)").Short('a').ExistingFile()
	playOSC      = playCmd.Flag("osc", "host:port to mirror the field to over OSC").String()
	playRecord   = playCmd.Flag("record", "Write every press to this beatmap file on exit").String()
	playTickRate = playCmd.Flag("tick-rate", "Frames per second").Default(strconv.Itoa(engine.DefaultTickRate)).Int()
	playBPM      = playCmd.Flag("bpm", "Tempo of the generated grid").Default("120").Float64()
	playBeats    = playCmd.Flag("beats", "Length of the generated grid").Default("32").Int()

	autoCmd   = app.Command("auto", "Simulate a run with the autoplayer and print the result")
	autoChart = autoCmd.Arg("beatmap", "Beatmap file").ExistingFile()
	autoSeed  = autoCmd.Flag("seed", "Autoplayer seed").Default("1").Int64()
	autoRate  = autoCmd.Flag("tick-rate", "Simulated frames per second").Default("64").Int()
	autoBPM   = autoCmd.Flag("bpm", "Tempo of the generated grid").Default("120").Float64()
	autoBeats = autoCmd.Flag("beats", "Length of the generated grid").Default("32").Int()

	gridCmd   = app.Command("grid", "Write a generated one-note-per-beat beatmap")
	gridOut   = gridCmd.Arg("out", "Output file").Required().String()
	gridBPM   = gridCmd.Flag("bpm", "Tempo").Default("120").Float64()
	gridBeats = gridCmd.Flag("beats", "Number of notes").Default("32").Int()
	gridStart = gridCmd.Flag("start", "Song time of beat zero, in seconds").Default("2").Float64()

	summaryStyle = lipgloss.NewStyle().Bold(true)
)

func main() {
	app.Version("0.1.0")

	var err error
	switch kingpin.MustParse(app.Parse(os.Args[1:])) {
	case playCmd.FullCommand():
		err = play()
	case autoCmd.FullCommand():
		err = auto()
	case gridCmd.FullCommand():
		err = grid()
	}
	if err != nil {
		logger.GetProjectLogger().WithError(err).Error("hellsmelody failed")
		os.Exit(1)
	}
}

func loadConfig() (*config.GameConfig, error) {
	var cfg *config.GameConfig
	var err error
	if *configPath == "" {
		cfg, err = config.NewGameConfig()
	} else {
		cfg, err = config.LoadGameConfig(*configPath)
	}
	if err != nil {
		return nil, err
	}

	level := cfg.Logging.Level
	if *logLevel != "" {
		level = *logLevel
	}
	if err := logger.SetLevel(level); err != nil {
		return nil, errors.WithStackTrace(err)
	}
	return cfg, nil
}

func loadChart(path string, bpm float64, beats int, cfg *config.GameConfig) (*beatmap.Beatmap, error) {
	if path == "" {
		return beatmap.GenerateGrid(bpm, beats, cfg.LeadIn+1, cfg.Approach.ApproachTime), nil
	}
	return beatmap.LoadFile(path)
}

func runOf(bm *beatmap.Beatmap, cfg *config.GameConfig) (session.Run, error) {
	boss, err := bm.BossEntries(schedule.Volley{Count: cfg.Volley.Count, Interval: cfg.Volley.Interval}, cfg.Clash.Windup)
	if err != nil {
		return session.Run{}, err
	}
	return session.Run{Notes: bm.NoteEntries(), Boss: boss, Approach: bm.ApproachTime}, nil
}

func play() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// the terminal UI owns stderr while it runs
	log := logger.GetProjectLogger()
	log.SetOutput(io.Discard)
	defer log.SetOutput(os.Stderr)
	if cfg.Logging.File != "" {
		f, err := os.OpenFile(cfg.Logging.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return errors.WithStackTrace(err)
		}
		defer f.Close()
		log.SetOutput(f)
	}

	bm, err := loadChart(*playChart, *playBPM, *playBeats, cfg)
	if err != nil {
		return err
	}
	run, err := runOf(bm, cfg)
	if err != nil {
		return err
	}

	tracker := score.NewTracker()
	field := present.NewConsole(cfg.Approach, fieldWidth)
	var presenter sink.Presenter = field
	if *playOSC != "" {
		host, port, err := splitHostPort(*playOSC)
		if err != nil {
			return err
		}
		presenter = present.Multi{field, present.NewOSC(host, port, "/hellsmelody")}
	}

	opts := session.Options{Config: cfg, Score: tracker, Presenter: presenter}
	if *playAudio != "" {
		track, err := audio.Open(*playAudio)
		if err != nil {
			return err
		}
		defer track.Close()
		opts.Track = track
		run.Audio = true
	}
	var recorder *beatmap.Recorder
	if *playRecord != "" {
		recorder = beatmap.NewRecorder()
		opts.Recorder = recorder
	}

	s, err := session.New(opts)
	if err != nil {
		return err
	}
	if err := s.Start(run); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	wg := sync.WaitGroup{}
	loop, err := engine.New(clock.RealClock{}, *playTickRate, s.Tick)
	if err != nil {
		cancel()
		return err
	}
	loop.Start(ctx, &wg)

	err = tea.NewProgram(console.New(bm.SongName, s, field, tracker)).Start()
	cancel()
	wg.Wait()
	s.Clock().Stop()
	if err != nil {
		return errors.WithStackTrace(err)
	}

	if recorder != nil {
		if err := writeFile(*playRecord, recorder.Dump); err != nil {
			return err
		}
	}
	printSummary(bm.SongName, s.Status(), tracker.Summary())
	return nil
}

func auto() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if *autoRate <= 0 {
		return errors.WithStackTrace(fmt.Errorf("tick rate must be positive, got %d", *autoRate))
	}
	bm, err := loadChart(*autoChart, *autoBPM, *autoBeats, cfg)
	if err != nil {
		return err
	}
	run, err := runOf(bm, cfg)
	if err != nil {
		return err
	}

	source := testingclock.NewFakeClock(time.Unix(0, 0))
	tracker := score.NewTracker()
	s, err := session.New(session.Options{
		Config:   cfg,
		Source:   source,
		Score:    tracker,
		Autoplay: true,
		Rand:     rand.New(rand.NewSource(*autoSeed)),
	})
	if err != nil {
		return err
	}
	if err := s.Start(run); err != nil {
		return err
	}

	frame := time.Second / time.Duration(*autoRate)
	limit := time.Duration((lastTarget(run)+cfg.LeadIn+30)*float64(time.Second))
	for elapsed := time.Duration(0); s.State() == session.Running && elapsed < limit; elapsed += frame {
		source.Step(frame)
		s.Tick()
	}

	printSummary(bm.SongName, s.Status(), tracker.Summary())
	return nil
}

func grid() error {
	if _, err := loadConfig(); err != nil {
		return err
	}
	bm := beatmap.GenerateGrid(*gridBPM, *gridBeats, *gridStart, 0)
	return writeFile(*gridOut, bm.Save)
}

func lastTarget(run session.Run) float64 {
	last := 0.0
	for _, e := range append(append([]schedule.Entry{}, run.Notes...), run.Boss...) {
		if e.TargetTime > last {
			last = e.TargetTime
		}
	}
	return last
}

func splitHostPort(addr string) (string, int, error) {
	host, p, err := net.SplitHostPort(addr)
	if err != nil {
		return "", 0, errors.WithStackTrace(err)
	}
	port, err := strconv.Atoi(p)
	if err != nil {
		return "", 0, errors.WithStackTrace(fmt.Errorf("bad OSC port %q: %w", p, err))
	}
	return host, port, nil
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.WithStackTrace(err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return errors.WithStackTrace(f.Close())
}

func printSummary(name string, st session.Status, sum score.Summary) {
	fmt.Println(summaryStyle.Render(fmt.Sprintf("%s: %s", name, st.State)))
	fmt.Printf("score %d  max combo %d  lives %d/%d  boss %d/%d\n",
		sum.Score, sum.MaxCombo, st.Lives, st.MaxLives, st.BossHP, st.MaxHP)
	for _, r := range []timing.Rank{timing.Perfect, timing.Great, timing.Good, timing.Miss} {
		fmt.Printf("  %-8s %d\n", r, sum.Counts[r])
	}
	fmt.Printf("timing error mean %.1fms  stdev %.1fms\n", sum.Mean*1000, sum.Stdev*1000)
}
