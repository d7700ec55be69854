package sink

import (
	"testing"

	"github.com/robmorgan/hellsmelody/geom"
	"github.com/robmorgan/hellsmelody/schedule"
	"github.com/robmorgan/hellsmelody/timing"
	"github.com/stretchr/testify/assert"
)

func TestNilSinksAreNoops(t *testing.T) {
	t.Parallel()

	var nilSinks *Sinks
	empty := &Sinks{}

	for _, s := range []*Sinks{nilSinks, empty} {
		assert.NotPanics(t, func() {
			s.Hit(timing.Perfect, 0.01)
			s.Miss()
			s.DamagePlayer(1)
			s.DamageOpponent(1)
			s.Spawn(&schedule.Entity{})
			s.Move(&schedule.Entity{}, geom.Vec{})
			s.Judgement(nil, timing.Miss)
			s.Despawn(&schedule.Entity{})
		})
	}
}

func TestFuncAdapters(t *testing.T) {
	t.Parallel()

	var hits, misses, damage int
	s := &Sinks{
		Score: ScoreFunc{
			Hit:  func(timing.Rank, float64) { hits++ },
			Miss: func() { misses++ },
		},
		Player: HealthFunc(func(amount int) { damage += amount }),
	}

	s.Hit(timing.Good, 0.12)
	s.Miss()
	s.DamagePlayer(2)
	s.DamagePlayer(0)

	assert.Equal(t, 1, hits)
	assert.Equal(t, 1, misses)
	assert.Equal(t, 2, damage)
}
