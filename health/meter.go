// Package health tracks the remaining lives of the player and hit points of the boss.
package health

import (
	"sync"

	"github.com/robmorgan/hellsmelody/logger"
	"github.com/sirupsen/logrus"
)

// Meter is a health pool that counts down to zero. It implements the health sink.
type Meter struct {
	mu sync.Mutex

	Name    string
	max     int
	current int

	// OnChanged is called with the new value after every change.
	OnChanged func(current int)
	// OnDeath is called once when the meter reaches zero.
	OnDeath func()
}

func NewMeter(name string, max int) *Meter {
	if max < 1 {
		max = 1
	}
	return &Meter{Name: name, max: max, current: max}
}

// TakeHit removes amount from the meter. A depleted meter ignores further hits.
func (m *Meter) TakeHit(amount int) {
	m.mu.Lock()
	if m.current <= 0 || amount <= 0 {
		m.mu.Unlock()
		return
	}
	m.current -= amount
	if m.current < 0 {
		m.current = 0
	}
	current := m.current
	m.mu.Unlock()

	logger.GetProjectLogger().WithFields(logrus.Fields{
		"meter":   m.Name,
		"damage":  amount,
		"current": current,
	}).Debug("Damage taken")

	if m.OnChanged != nil {
		m.OnChanged(current)
	}
	if current == 0 && m.OnDeath != nil {
		m.OnDeath()
	}
}

func (m *Meter) OnDamage(amount int) { m.TakeHit(amount) }

// Reset refills the meter.
func (m *Meter) Reset() {
	m.mu.Lock()
	m.current = m.max
	current := m.current
	m.mu.Unlock()

	if m.OnChanged != nil {
		m.OnChanged(current)
	}
}

func (m *Meter) Current() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

func (m *Meter) Max() int { return m.max }

func (m *Meter) Dead() bool { return m.Current() == 0 }
