package calibration

import (
	"testing"

	"github.com/avatarkit/go-vrig/pkg/vrm"
)

func TestBodyLifecycle(t *testing.T) {
	s := NewStore()

	if s.BodyState() != StateIdle {
		t.Fatalf("initial state = %v, want idle", s.BodyState())
	}

	s.RequestBody()
	if s.BodyState() != StatePending {
		t.Fatalf("state after request = %v, want pending", s.BodyState())
	}

	s.ObserveBodyFrame(&vrm.RigFrame{
		Rotations: map[vrm.Bone]vrm.Quat{
			vrm.BoneHead: vrm.QuatFromAxisAngle(0, 1, 0, 0.4),
		},
	})
	if s.BodyState() != StateCalibrated {
		t.Errorf("state after sample = %v, want calibrated", s.BodyState())
	}
}

func TestCalibrationPoseMapsToIdentity(t *testing.T) {
	s := NewStore()
	pose := vrm.QuatFromAxisAngle(1, 0, 0, 0.6)

	s.RequestBody()
	s.ObserveBodyFrame(&vrm.RigFrame{
		Rotations: map[vrm.Bone]vrm.Quat{vrm.BoneSpine: pose},
	})

	got := s.ApplyRotation(vrm.BoneSpine, pose)
	if got.AngleTo(vrm.IdentityQuat()) > 1e-9 {
		t.Errorf("calibration pose maps to %+v, want identity", got)
	}

	// A different pose maps to the delta from the calibration pose.
	moved := vrm.QuatFromAxisAngle(1, 0, 0, 0.9)
	got = s.ApplyRotation(vrm.BoneSpine, moved)
	if d := got.AngleTo(vrm.QuatFromAxisAngle(1, 0, 0, 0.3)); d > 1e-9 {
		t.Errorf("moved pose off by %v rad from expected delta", d)
	}
}

func TestObserveIgnoredWhenNotPending(t *testing.T) {
	s := NewStore()

	s.ObserveBodyFrame(&vrm.RigFrame{
		Rotations: map[vrm.Bone]vrm.Quat{vrm.BoneHead: vrm.QuatFromAxisAngle(0, 1, 0, 1)},
	})
	if s.BodyState() != StateIdle {
		t.Errorf("state = %v, observation without a request must not calibrate", s.BodyState())
	}

	q := vrm.QuatFromAxisAngle(0, 1, 0, 0.2)
	if got := s.ApplyRotation(vrm.BoneHead, q); got != q {
		t.Errorf("uncalibrated bone changed: %+v", got)
	}
}

func TestSingleSampleNotAveraged(t *testing.T) {
	s := NewStore()
	first := vrm.QuatFromAxisAngle(0, 0, 1, 0.5)
	second := vrm.QuatFromAxisAngle(0, 0, 1, 1.5)

	s.RequestBody()
	s.ObserveBodyFrame(&vrm.RigFrame{Rotations: map[vrm.Bone]vrm.Quat{vrm.BoneNeck: first}})
	s.ObserveBodyFrame(&vrm.RigFrame{Rotations: map[vrm.Bone]vrm.Quat{vrm.BoneNeck: second}})

	// Only the first frame after arming is sampled.
	if got := s.ApplyRotation(vrm.BoneNeck, first); got.AngleTo(vrm.IdentityQuat()) > 1e-9 {
		t.Errorf("offset drifted after a second frame: %+v", got)
	}
}

func TestRecalibrationClearsOldOffsets(t *testing.T) {
	s := NewStore()

	s.RequestBody()
	s.ObserveBodyFrame(&vrm.RigFrame{
		Rotations: map[vrm.Bone]vrm.Quat{vrm.BoneHead: vrm.QuatFromAxisAngle(0, 1, 0, 0.7)},
	})

	// Re-arm: head offset is gone until the next sampled frame, and the new
	// frame only covers the spine.
	s.RequestBody()
	q := vrm.QuatFromAxisAngle(0, 1, 0, 0.7)
	if got := s.ApplyRotation(vrm.BoneHead, q); got != q {
		t.Errorf("stale offset still applied while pending: %+v", got)
	}

	s.ObserveBodyFrame(&vrm.RigFrame{
		Rotations: map[vrm.Bone]vrm.Quat{vrm.BoneSpine: vrm.QuatFromAxisAngle(1, 0, 0, 0.1)},
	})
	if got := s.ApplyRotation(vrm.BoneHead, q); got != q {
		t.Errorf("head offset reappeared after recalibration: %+v", got)
	}
}

func TestRootReference(t *testing.T) {
	s := NewStore()
	ref := vrm.Vec3{X: 0.1, Y: 0.9, Z: -0.2}

	s.RequestBody()
	s.ObserveBodyFrame(&vrm.RigFrame{
		Rotations: map[vrm.Bone]vrm.Quat{},
		Root:      &ref,
	})

	got := s.ApplyRoot(vrm.Vec3{X: 0.15, Y: 0.9, Z: -0.2})
	want := vrm.Vec3{X: 0.05}
	if got.DistanceTo(want) > 1e-12 {
		t.Errorf("ApplyRoot = %+v, want %+v", got, want)
	}
}

func TestFaceGaze(t *testing.T) {
	s := NewStore()

	if _, ok := s.GazeOffset(); ok {
		t.Fatal("gaze offset reported before calibration")
	}

	s.ObserveGaze(vrm.Vec2{X: 0.5}) // not pending, ignored
	if _, ok := s.GazeOffset(); ok {
		t.Fatal("gaze sampled without a request")
	}

	s.RequestFace()
	s.ObserveGaze(vrm.Vec2{X: 0.02, Y: -0.01})
	got, ok := s.GazeOffset()
	if !ok || got != (vrm.Vec2{X: 0.02, Y: -0.01}) {
		t.Errorf("GazeOffset = %+v, %v", got, ok)
	}
}

func TestExternalRootZeroing(t *testing.T) {
	s := NewStore()

	// Before arming, positions pass through.
	p := vrm.Vec3{X: 1, Y: 2, Z: 3}
	if got := s.ApplyExternalRoot(p); got != p {
		t.Fatalf("unarmed external root changed: %+v", got)
	}

	s.ArmExternalRoot()
	if got := s.ApplyExternalRoot(p); got != (vrm.Vec3{}) {
		t.Errorf("first armed position = %+v, want zero", got)
	}
	got := s.ApplyExternalRoot(vrm.Vec3{X: 1.5, Y: 2, Z: 3})
	if got.DistanceTo(vrm.Vec3{X: 0.5}) > 1e-12 {
		t.Errorf("offset position = %+v, want {0.5 0 0}", got)
	}
}

func TestResetClearsEverything(t *testing.T) {
	s := NewStore()

	s.RequestBody()
	s.ObserveBodyFrame(&vrm.RigFrame{
		Rotations: map[vrm.Bone]vrm.Quat{vrm.BoneHead: vrm.QuatFromAxisAngle(0, 1, 0, 0.3)},
	})
	s.RequestFace()
	s.ObserveGaze(vrm.Vec2{X: 1})
	s.ArmExternalRoot()
	s.ApplyExternalRoot(vrm.Vec3{X: 4})

	s.Reset()

	if s.BodyState() != StateIdle || s.FaceState() != StateIdle {
		t.Errorf("states after reset: body=%v face=%v", s.BodyState(), s.FaceState())
	}
	q := vrm.QuatFromAxisAngle(0, 1, 0, 0.3)
	if got := s.ApplyRotation(vrm.BoneHead, q); got != q {
		t.Error("bone offset survived reset")
	}
	if got := s.ApplyExternalRoot(vrm.Vec3{X: 4}); got != (vrm.Vec3{X: 4}) {
		t.Error("external root offset survived reset")
	}
}

func TestStateString(t *testing.T) {
	if StateIdle.String() != "idle" || StatePending.String() != "pending" || StateCalibrated.String() != "calibrated" {
		t.Error("unexpected state names")
	}
}
