package vmc

import (
	"fmt"
	"net"
	"strconv"

	"github.com/hypebeast/go-osc/osc"

	"github.com/avatarkit/go-vrig/pkg/vrm"
)

// Sender emits VMC performer messages. It exists for the probe tool and for
// loopback testing of the receiver; go-vrig itself is a consumer.
type Sender struct {
	client *osc.Client
}

// NewSender creates a sender targeting the given "host:port" address.
func NewSender(addr string) (*Sender, error) {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return nil, fmt.Errorf("split address %s: %w", addr, err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("parse port %s: %w", portStr, err)
	}
	return &Sender{client: osc.NewClient(host, port)}, nil
}

// SendBone sends one bone transform. The bone name goes out in the
// protocol's PascalCase form.
func (s *Sender) SendBone(b vrm.Bone, pos vrm.Vec3, rot vrm.Quat) error {
	msg := osc.NewMessage(addrBonePos,
		pascalName(b),
		float32(pos.X), float32(pos.Y), float32(pos.Z),
		float32(rot.X), float32(rot.Y), float32(rot.Z), float32(rot.W))
	return s.client.Send(msg)
}

// SendBlend stages one blendshape value on the remote side.
func (s *Sender) SendBlend(name string, v float64) error {
	return s.client.Send(osc.NewMessage(addrBlendVal, name, float32(v)))
}

// SendBlendApply commits all staged blendshape values.
func (s *Sender) SendBlendApply() error {
	return s.client.Send(osc.NewMessage(addrBlendApply))
}

// SendRoot sends the root transform.
func (s *Sender) SendRoot(pos vrm.Vec3, rot vrm.Quat) error {
	msg := osc.NewMessage(addrRootPos,
		"root",
		float32(pos.X), float32(pos.Y), float32(pos.Z),
		float32(rot.X), float32(rot.Y), float32(rot.Z), float32(rot.W))
	return s.client.Send(msg)
}

// SendOK reports avatar loaded state (0 = not loaded, 1 = loaded).
func (s *Sender) SendOK(loaded bool) error {
	v := int32(0)
	if loaded {
		v = 1
	}
	return s.client.Send(osc.NewMessage(addrOK, v))
}

func pascalName(b vrm.Bone) string {
	name := b.String()
	if name == "" {
		return name
	}
	c := name[0]
	if c >= 'a' && c <= 'z' {
		c -= 'a' - 'A'
	}
	return string(c) + name[1:]
}
