package present

import (
	"math"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/robmorgan/hellsmelody/config"
	"github.com/robmorgan/hellsmelody/geom"
	"github.com/robmorgan/hellsmelody/schedule"
	"github.com/robmorgan/hellsmelody/timing"
	"github.com/robmorgan/hellsmelody/utils"
)

var (
	hitLineStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("63"))
	bossStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("160")).Bold(true)
	fieldStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

type sprite struct {
	kind schedule.Kind
	lane int
	pos  geom.Vec
}

// Console keeps the last known position of every entity and renders the field as text. Calls
// come from the run while Render is called from the terminal UI.
type Console struct {
	mu sync.Mutex

	width   int
	hitX    float64
	toUnit  func(float64) float64
	sprites map[uint64]sprite

	judgement    timing.Rank
	hasJudgement bool
	judgements   int
}

func NewConsole(field config.ApproachConfig, width int) *Console {
	if width < 10 {
		width = 10
	}
	return &Console{
		width:   width,
		hitX:    field.HitX,
		toUnit:  utils.ToUnitClamp(field.FieldLeft, field.FieldRight),
		sprites: map[uint64]sprite{},
	}
}

func (c *Console) Spawn(e *schedule.Entity) {
	c.mu.Lock()
	defer c.mu.Unlock()
	// position unknown until the first move
	c.sprites[e.ID] = sprite{kind: e.Kind, lane: e.Lane, pos: geom.Vec{X: math.Inf(1)}}
}

func (c *Console) Move(e *schedule.Entity, pos geom.Vec) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sprites[e.ID] = sprite{kind: e.Kind, lane: e.Lane, pos: pos}
}

func (c *Console) ShowJudgement(_ *schedule.Entity, rank timing.Rank) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.judgement = rank
	c.hasJudgement = true
	c.judgements++
}

func (c *Console) Despawn(e *schedule.Entity) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.sprites, e.ID)
}

// Judgement returns the latest judgement, styled in its rank color.
func (c *Console) Judgement() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.hasJudgement {
		return ""
	}
	return lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(c.judgement.Hex())).Render(c.judgement.String())
}

// Visible is the number of entities currently known to the console.
func (c *Console) Visible() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.sprites)
}

// Render draws one row for the boss side and one row per note lane.
func (c *Console) Render() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	lanes := 1
	for _, s := range c.sprites {
		if s.kind == schedule.KindNote && s.lane+1 > lanes {
			lanes = s.lane + 1
		}
	}

	hit := c.column(c.hitX)
	boss := c.emptyRow(hit)
	rows := make([][]rune, lanes)
	for i := range rows {
		rows[i] = c.emptyRow(hit)
	}

	for _, s := range c.sprites {
		if math.IsInf(s.pos.X, 0) {
			continue
		}
		col := c.column(s.pos.X)
		switch s.kind {
		case schedule.KindNote:
			if s.lane >= 0 {
				rows[s.lane][col] = 'o'
			}
		case schedule.KindProjectile:
			boss[col] = '*'
		case schedule.KindClash:
			boss[col] = 'B'
		}
	}

	var b strings.Builder
	b.WriteString(bossStyle.Render(string(boss)))
	for _, row := range rows {
		b.WriteString("\n")
		b.WriteString(fieldStyle.Render(string(row[:hit])))
		b.WriteString(hitLineStyle.Render(string(row[hit])))
		b.WriteString(fieldStyle.Render(string(row[hit+1:])))
	}
	return b.String()
}

func (c *Console) emptyRow(hit int) []rune {
	row := []rune(strings.Repeat("·", c.width))
	row[hit] = '|'
	return row
}

func (c *Console) column(x float64) int {
	return int(math.Round(c.toUnit(x) * float64(c.width-1)))
}
