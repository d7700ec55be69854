package present

import (
	"errors"
	"strings"
	"testing"

	"github.com/hypebeast/go-osc/osc"
	"github.com/robmorgan/hellsmelody/config"
	"github.com/robmorgan/hellsmelody/geom"
	"github.com/robmorgan/hellsmelody/schedule"
	"github.com/robmorgan/hellsmelody/timing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	messages []*osc.Message
	err      error
}

func (f *fakeSender) Send(packet osc.Packet) error {
	if msg, ok := packet.(*osc.Message); ok {
		f.messages = append(f.messages, msg)
	}
	return f.err
}

func testField() config.ApproachConfig {
	return config.ApproachConfig{HitX: -4, FieldLeft: -8, FieldRight: 8}
}

func TestOSCMessages(t *testing.T) {
	t.Parallel()

	sender := &fakeSender{}
	o := NewOSCWithSender(sender, "")
	e := &schedule.Entity{ID: 7, Kind: schedule.KindNote, TargetTime: 2}

	o.Spawn(e)
	o.Move(e, geom.Vec{X: 1, Y: 0})
	o.ShowJudgement(e, timing.Great)
	o.ShowJudgement(nil, timing.Miss)
	o.Despawn(e)

	require.Len(t, sender.messages, 5)
	assert.Equal(t, "/hellsmelody/spawn", sender.messages[0].Address)
	assert.Equal(t, int32(7), sender.messages[0].Arguments[0])
	assert.Equal(t, "note", sender.messages[0].Arguments[1])
	assert.Equal(t, float32(1), sender.messages[1].Arguments[1])
	assert.Equal(t, "GREAT", sender.messages[2].Arguments[1])
	assert.Equal(t, int32(-1), sender.messages[3].Arguments[0])
	assert.Equal(t, "/hellsmelody/despawn", sender.messages[4].Address)
}

func TestOSCSendErrorsAreDropped(t *testing.T) {
	t.Parallel()

	o := NewOSCWithSender(&fakeSender{err: errors.New("unreachable")}, "/x")
	assert.NotPanics(t, func() {
		o.Despawn(&schedule.Entity{ID: 1})
	})
}

func TestConsoleRender(t *testing.T) {
	t.Parallel()

	c := NewConsole(testField(), 17)
	note := &schedule.Entity{ID: 1, Kind: schedule.KindNote, Lane: 1}
	boss := &schedule.Entity{ID: 2, Kind: schedule.KindClash}

	c.Spawn(note)
	c.Move(note, geom.Vec{X: 0, Y: 1})
	c.Move(boss, geom.Vec{X: 6})
	assert.Equal(t, 2, c.Visible())

	out := c.Render()
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "B")
	assert.Contains(t, lines[2], "o")
	assert.Contains(t, lines[1], "|")

	c.Despawn(note)
	assert.Equal(t, 1, c.Visible())

	assert.Empty(t, c.Judgement())
	c.ShowJudgement(nil, timing.Perfect)
	assert.Contains(t, c.Judgement(), "PERFECT")
}

func TestMultiFansOut(t *testing.T) {
	t.Parallel()

	a := NewConsole(testField(), 20)
	b := NewConsole(testField(), 20)
	m := Multi{a, nil, b}

	e := &schedule.Entity{ID: 3, Kind: schedule.KindProjectile}
	m.Spawn(e)
	m.Move(e, geom.Vec{X: 2})
	m.ShowJudgement(e, timing.Good)
	assert.Equal(t, 1, a.Visible())
	assert.Equal(t, 1, b.Visible())

	m.Despawn(e)
	assert.Zero(t, a.Visible())
	assert.Zero(t, b.Visible())
}
