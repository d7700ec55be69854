package session

import (
	"github.com/robmorgan/hellsmelody/geom"
	"github.com/robmorgan/hellsmelody/logger"
	"github.com/robmorgan/hellsmelody/schedule"
	"github.com/sirupsen/logrus"
)

// volley fires its projectiles interval seconds of song time apart, starting at its activation.
type volley struct {
	remaining int
	interval  float64
	next      float64
}

func (s *Session) startVolley(e schedule.Entry, now float64) {
	count, interval := e.Volley.Count, e.Volley.Interval
	if count < 1 {
		count = s.cfg.Volley.Count
		interval = s.cfg.Volley.Interval
	}

	logger.GetProjectLogger().WithFields(logrus.Fields{
		"count":    count,
		"interval": interval,
		"at":       e.TargetTime,
	}).Debug("Volley started")

	s.volleys = append(s.volleys, &volley{
		remaining: count,
		interval:  interval,
		next:      e.TargetTime,
	})
	s.driveVolleys(now)
}

// Spawns every projectile that is due. Each projectile keeps its own launch time, so a slow
// tick does not shift the impacts.
func (s *Session) driveVolleys(now float64) {
	if s.clock.IsPaused() {
		return
	}

	speed := s.cfg.Volley.ProjectileSpeed
	approach := geom.Distance(s.mouth, s.playerCenter) / speed

	live := s.volleys[:0]
	for _, v := range s.volleys {
		for v.remaining > 0 && now >= v.next {
			s.active.Spawn(schedule.KindProjectile, 0, v.next+approach, approach, speed, v.next)
			v.remaining--
			v.next += v.interval
		}
		if v.remaining > 0 {
			live = append(live, v)
		}
	}
	s.volleys = live
}
