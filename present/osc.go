package present

import (
	"github.com/hypebeast/go-osc/osc"
	"github.com/robmorgan/hellsmelody/geom"
	"github.com/robmorgan/hellsmelody/logger"
	"github.com/robmorgan/hellsmelody/schedule"
	"github.com/robmorgan/hellsmelody/timing"
)

// Sender delivers OSC packets. *osc.Client implements it.
type Sender interface {
	Send(packet osc.Packet) error
}

// OSC mirrors spawns, movement and judgements to an external renderer as OSC messages under
// a common address prefix.
type OSC struct {
	sender Sender
	prefix string
}

// NewOSC sends to host:port over UDP.
func NewOSC(host string, port int, prefix string) *OSC {
	return NewOSCWithSender(osc.NewClient(host, port), prefix)
}

func NewOSCWithSender(sender Sender, prefix string) *OSC {
	if prefix == "" {
		prefix = "/hellsmelody"
	}
	return &OSC{sender: sender, prefix: prefix}
}

func (o *OSC) Spawn(e *schedule.Entity) {
	msg := osc.NewMessage(o.prefix + "/spawn")
	msg.Append(int32(e.ID))
	msg.Append(e.Kind.String())
	msg.Append(int32(e.Lane))
	msg.Append(float32(e.TargetTime))
	o.send(msg)
}

func (o *OSC) Move(e *schedule.Entity, pos geom.Vec) {
	msg := osc.NewMessage(o.prefix + "/move")
	msg.Append(int32(e.ID))
	msg.Append(float32(pos.X))
	msg.Append(float32(pos.Y))
	o.send(msg)
}

func (o *OSC) ShowJudgement(e *schedule.Entity, rank timing.Rank) {
	msg := osc.NewMessage(o.prefix + "/judge")
	var id int32 = -1
	if e != nil {
		id = int32(e.ID)
	}
	msg.Append(id)
	msg.Append(rank.String())
	msg.Append(rank.Hex())
	o.send(msg)
}

func (o *OSC) Despawn(e *schedule.Entity) {
	msg := osc.NewMessage(o.prefix + "/despawn")
	msg.Append(int32(e.ID))
	o.send(msg)
}

// Delivery failures are logged and dropped.
func (o *OSC) send(msg *osc.Message) {
	if err := o.sender.Send(msg); err != nil {
		logger.GetProjectLogger().WithError(err).Debugf("OSC send to %s failed", msg.Address)
	}
}
