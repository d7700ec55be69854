// Package engine runs the fixed-rate frame loop.
package engine

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gruntwork-io/go-commons/errors"
	"github.com/robmorgan/hellsmelody/logger"
	"github.com/sirupsen/logrus"
	"k8s.io/utils/clock"
)

// DefaultTickRate is frames per second.
const DefaultTickRate = 120

type Loop struct {
	clock    clock.WithTicker
	tickRate int
	onTick   func()
	frames   atomic.Int64
}

// New creates a loop that calls onTick tickRate times a second.
func New(clk clock.WithTicker, tickRate int, onTick func()) (*Loop, error) {
	if tickRate <= 0 {
		return nil, errors.WithStackTrace(fmt.Errorf("tick rate must be positive, got %d", tickRate))
	}
	if clk == nil {
		clk = clock.RealClock{}
	}
	return &Loop{clock: clk, tickRate: tickRate, onTick: onTick}, nil
}

func (l *Loop) TickRate() int { return l.tickRate }

// Frames is the number of ticks delivered so far.
func (l *Loop) Frames() int64 { return l.frames.Load() }

// Run ticks until the context ends and returns its error.
func (l *Loop) Run(ctx context.Context) error {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	interval := time.Second / time.Duration(l.tickRate)
	ticker := l.clock.NewTicker(interval)
	defer ticker.Stop()

	logger.GetProjectLogger().WithFields(logrus.Fields{
		"tick_rate": l.tickRate,
		"interval":  interval.String(),
	}).Debug("Frame loop started")

	for {
		select {
		case <-ctx.Done():
			logger.GetProjectLogger().WithField("frames", l.frames.Load()).Debug("Frame loop stopped")
			return ctx.Err()
		case <-ticker.C():
			l.onTick()
			l.frames.Add(1)
		}
	}
}

// Start runs the loop in the background and marks wg done when it stops.
func (l *Loop) Start(ctx context.Context, wg *sync.WaitGroup) {
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = l.Run(ctx)
	}()
}
