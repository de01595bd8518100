package motionlink

import (
	"testing"
	"time"

	"github.com/avatarkit/go-vrig/pkg/pipeline"
	"github.com/avatarkit/go-vrig/pkg/vrm"
)

func TestMessageRoundTrip(t *testing.T) {
	msg, err := NewMessage(TypeBoneFrame, &BoneFrameData{
		Bones: map[string]Rotation{"head": {0, 0.3827, 0, 0.9239}},
	})
	if err != nil {
		t.Fatalf("NewMessage failed: %v", err)
	}
	if msg.Timestamp == 0 {
		t.Error("timestamp not set")
	}

	frame, err := msg.GetBoneFrame()
	if err != nil {
		t.Fatalf("GetBoneFrame failed: %v", err)
	}
	rot, ok := frame.Bones["head"]
	if !ok || rot[3] != 0.9239 {
		t.Errorf("bones = %v", frame.Bones)
	}
}

func TestParseMessage(t *testing.T) {
	msg, err := ParseMessage([]byte(`{"type":"blends","ts":123,"data":{"values":{"Joy":0.5}}}`))
	if err != nil {
		t.Fatalf("ParseMessage failed: %v", err)
	}
	if msg.Type != TypeBlendFrame || msg.Timestamp != 123 {
		t.Errorf("message = %+v", msg)
	}

	frame, err := msg.GetBlendFrame()
	if err != nil {
		t.Fatalf("GetBlendFrame failed: %v", err)
	}
	if frame.Values["Joy"] != 0.5 {
		t.Errorf("values = %v", frame.Values)
	}
}

func TestParseMessageInvalid(t *testing.T) {
	if _, err := ParseMessage([]byte("not json")); err == nil {
		t.Error("invalid JSON parsed")
	}
}

func TestParseDataNil(t *testing.T) {
	msg := &Message{Type: TypePing}
	var data BlendFrameData
	if err := msg.ParseData(&data); err != nil {
		t.Errorf("ParseData on empty payload failed: %v", err)
	}
}

func newTestClient() (*Client, *vrm.MemorySkeleton, *pipeline.Pipeline) {
	skel := vrm.NewMemorySkeleton()
	pipe := pipeline.New(skel, skel, pipeline.DefaultConfig())
	pipe.SetAvatar([]string{"Joy"})
	pipe.Attach(pipeline.SourceExternal)
	return NewClient("ws://test", pipe), skel, pipe
}

func TestApplyBoneFrame(t *testing.T) {
	c, skel, pipe := newTestClient()

	msg, _ := NewMessage(TypeBoneFrame, &BoneFrameData{
		Bones: map[string]Rotation{
			"head":     {0, 0.3827, 0, 0.9239},
			"notABone": {0, 0, 0, 1},
		},
	})
	c.apply(nil, msg)
	pipe.Tick(time.Now())

	if _, ok := skel.BoneRotation(vrm.BoneHead); !ok {
		t.Error("head frame not applied")
	}
	if len(skel.Rotations()) != 1 {
		t.Errorf("unknown bone names should be skipped: %v", skel.Rotations())
	}
}

func TestApplyBlendFrame(t *testing.T) {
	c, skel, pipe := newTestClient()

	msg, _ := NewMessage(TypeBlendFrame, &BlendFrameData{Values: map[string]float64{"Joy": 0.6}})
	c.apply(nil, msg)
	pipe.Tick(time.Now())

	got, ok := skel.Expression("Joy")
	if !ok || got != 0.6 {
		t.Errorf("Joy = %v, %v", got, ok)
	}
}

func TestApplyRootFrame(t *testing.T) {
	c, skel, pipe := newTestClient()

	msg, _ := NewMessage(TypeRootFrame, &RootFrameData{Position: [3]float64{0.1, 1.2, -0.3}})
	c.apply(nil, msg)
	pipe.Tick(time.Now())

	got, ok := skel.RootPosition()
	if !ok || got != (vrm.Vec3{X: 0.1, Y: 1.2, Z: -0.3}) {
		t.Errorf("root = %+v, %v", got, ok)
	}
}
