// Package vmc implements the VMC motion protocol: OSC messages over UDP
// carrying pre-solved bone rotations, blendshape values and the root
// transform from an external motion application. The external source is
// treated as authoritative; its channels bypass the pipeline's mode gate.
package vmc

import (
	"github.com/hypebeast/go-osc/osc"

	"github.com/avatarkit/go-vrig/pkg/vrm"
)

// VMC OSC addresses (performer side).
const (
	addrBonePos    = "/VMC/Ext/Bone/Pos"
	addrBlendVal   = "/VMC/Ext/Blend/Val"
	addrBlendApply = "/VMC/Ext/Blend/Apply"
	addrRootPos    = "/VMC/Ext/Root/Pos"
	addrOK         = "/VMC/Ext/OK"
)

// BoneSample is one decoded /VMC/Ext/Bone/Pos message. Position is carried
// by the protocol but only rotation drives the skeleton.
type BoneSample struct {
	Bone vrm.Bone
	Rot  vrm.Quat
	Pos  vrm.Vec3
}

// floatArg reads argument i as a float. OSC floats arrive as float32;
// integer-typed senders are tolerated.
func floatArg(args []interface{}, i int) (float64, bool) {
	if i >= len(args) {
		return 0, false
	}
	switch v := args[i].(type) {
	case float32:
		return float64(v), true
	case float64:
		return v, true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}

func stringArg(args []interface{}, i int) (string, bool) {
	if i >= len(args) {
		return "", false
	}
	s, ok := args[i].(string)
	return s, ok
}

// parseBonePos decodes name, position (xyz) and rotation (xyzw). Unknown
// bone names report ok=false and are dropped by the caller.
func parseBonePos(msg *osc.Message) (BoneSample, bool) {
	name, ok := stringArg(msg.Arguments, 0)
	if !ok {
		return BoneSample{}, false
	}
	bone, ok := vrm.ParseBone(name)
	if !ok {
		return BoneSample{}, false
	}

	var f [7]float64
	for i := range f {
		v, ok := floatArg(msg.Arguments, i+1)
		if !ok {
			return BoneSample{}, false
		}
		f[i] = v
	}

	return BoneSample{
		Bone: bone,
		Pos:  vrm.Vec3{X: f[0], Y: f[1], Z: f[2]},
		Rot:  vrm.Quat{X: f[3], Y: f[4], Z: f[5], W: f[6]},
	}, true
}

// parseBlendVal decodes an expression name and weight.
func parseBlendVal(msg *osc.Message) (string, float64, bool) {
	name, ok := stringArg(msg.Arguments, 0)
	if !ok {
		return "", 0, false
	}
	v, ok := floatArg(msg.Arguments, 1)
	if !ok {
		return "", 0, false
	}
	return name, v, true
}

// parseRootPos decodes the root transform ("root", xyz position, xyzw
// rotation; trailing scale/offset fields from protocol 2.1 are ignored).
func parseRootPos(msg *osc.Message) (vrm.Vec3, vrm.Quat, bool) {
	if _, ok := stringArg(msg.Arguments, 0); !ok {
		return vrm.Vec3{}, vrm.Quat{}, false
	}
	var f [7]float64
	for i := range f {
		v, ok := floatArg(msg.Arguments, i+1)
		if !ok {
			return vrm.Vec3{}, vrm.Quat{}, false
		}
		f[i] = v
	}
	return vrm.Vec3{X: f[0], Y: f[1], Z: f[2]},
		vrm.Quat{X: f[3], Y: f[4], Z: f[5], W: f[6]}, true
}
