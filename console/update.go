package console

import (
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case " ", "j", "f":
			m.last = m.game.Input()
			m.presses++
		case "p":
			m.game.TogglePause()
		case "r":
			m.err = m.game.Retry()
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		}
		m.status = m.game.Status()
		return m, nil
	case tickMsg:
		m.status = m.game.Status()
		return m, tickCmd()
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}
