// Package console is the terminal front end of a run.
package console

import (
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/robmorgan/hellsmelody/judge"
	"github.com/robmorgan/hellsmelody/score"
	"github.com/robmorgan/hellsmelody/session"
)

// RefreshRate is how often the screen is redrawn. The run itself is ticked elsewhere.
const RefreshRate = 25 * time.Millisecond

// Game is the part of a session the console drives.
type Game interface {
	Input() judge.Verdict
	TogglePause()
	Retry() error
	Status() session.Status
}

// Field draws the play field.
type Field interface {
	Render() string
	Judgement() string
}

type model struct {
	title    string
	game     Game
	field    Field
	score    *score.Tracker
	spinner  spinner.Model
	progress progress.Model
	status   session.Status
	last     judge.Verdict
	presses  int
	err      error
	quitting bool
}

// New builds the bubbletea model for a run. Score may be nil.
func New(title string, game Game, field Field, tracker *score.Tracker) tea.Model {
	s := spinner.New()
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("63"))

	return model{
		title:   title,
		game:    game,
		field:   field,
		score:   tracker,
		spinner: s,
		progress: progress.New(
			progress.WithDefaultGradient(),
			progress.WithWidth(40),
			progress.WithoutPercentage(),
		),
		status: game.Status(),
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(tickCmd(), m.spinner.Tick)
}

type tickMsg time.Time

func tickCmd() tea.Cmd {
	return tea.Tick(RefreshRate, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}
