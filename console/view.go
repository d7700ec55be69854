package console

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/robmorgan/hellsmelody/judge"
	"github.com/robmorgan/hellsmelody/session"
	"github.com/robmorgan/hellsmelody/timing"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("160"))
	helpStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Margin(1, 0)
	dimStyle   = helpStyle.Copy().UnsetMargins()
	heartStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	appStyle   = lipgloss.NewStyle().Margin(1, 2, 0, 2)
)

func (m model) View() string {
	st := m.status
	var s strings.Builder

	s.WriteString(titleStyle.Render(m.title))
	s.WriteString("  ")
	s.WriteString(m.stateLine(st))
	s.WriteString("\n\n")

	s.WriteString(m.progress.ViewAs(st.Progress))
	s.WriteString(dimStyle.Render(fmt.Sprintf("  %6.2fs", st.SongTime)))
	s.WriteString("\n\n")

	s.WriteString(fmt.Sprintf("Lives %s   Boss %d/%d   Clash %s\n\n",
		hearts(st.Lives, st.MaxLives), st.BossHP, st.MaxHP, st.Clash))

	if m.field != nil {
		s.WriteString(m.field.Render())
		s.WriteString("\n\n")
		s.WriteString(m.field.Judgement())
		s.WriteString(" ")
	}
	s.WriteString(dimStyle.Render(describe(m.last, m.presses)))
	s.WriteString("\n")

	if m.score != nil {
		sum := m.score.Summary()
		s.WriteString(fmt.Sprintf("\nScore %d   Combo %d (max %d)   P/G/Gd/M %d/%d/%d/%d   mean %.1fms\n",
			sum.Score, sum.Combo, sum.MaxCombo,
			sum.Counts[timing.Perfect], sum.Counts[timing.Great], sum.Counts[timing.Good], sum.Counts[timing.Miss],
			sum.Mean*1000))
	}

	if m.err != nil {
		s.WriteString(errStyle.Render(m.err.Error()))
		s.WriteString("\n")
	}

	s.WriteString(helpStyle.Render("(space) hit  (p) pause  (r) retry  (q) quit"))
	if m.quitting {
		s.WriteString("\n")
	}
	return appStyle.Render(s.String())
}

func (m model) stateLine(st session.Status) string {
	switch {
	case st.Paused:
		return dimStyle.Render("paused")
	case st.State == session.Running:
		return m.spinner.View()
	default:
		return dimStyle.Render(st.State.String())
	}
}

func hearts(n, total int) string {
	if n < 0 {
		n = 0
	}
	if total < n {
		total = n
	}
	return heartStyle.Render(strings.Repeat("♥", n)) + dimStyle.Render(strings.Repeat("♡", total-n))
}

func describe(v judge.Verdict, presses int) string {
	if presses == 0 {
		return ""
	}
	switch v.Disposition {
	case judge.Judged:
		return fmt.Sprintf("%s %.0fms", v.Rank, v.AbsDiff*1000)
	case judge.Missed:
		return "miss"
	default:
		return ""
	}
}
