package recorder

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/avatarkit/go-vrig/pkg/vrm"
)

func recordThreeFrames(t *testing.T) *AnimationClip {
	t.Helper()

	r := New()
	epoch := time.Now()
	r.StartAt(epoch)

	for i := 0; i < 3; i++ {
		root := vrm.Vec3{Y: float64(i) * 0.01}
		r.Sample(epoch.Add(time.Duration(i)*100*time.Millisecond),
			map[vrm.Bone]vrm.Quat{
				vrm.BoneHips: vrm.QuatFromAxisAngle(0, 1, 0, float64(i)*0.1),
				vrm.BoneHead: vrm.QuatFromAxisAngle(1, 0, 0, float64(i)*0.05),
			}, &root)
	}

	clip, ok := r.Stop()
	if !ok {
		t.Fatal("Stop returned no clip")
	}
	return clip
}

func TestRecordRoundTrip(t *testing.T) {
	clip := recordThreeFrames(t)

	if clip.ID == "" {
		t.Error("clip has no ID")
	}
	if absF(clip.Duration-0.2) > 1e-6 {
		t.Errorf("Duration = %v, want 0.2", clip.Duration)
	}
	if len(clip.Tracks) != 2 {
		t.Fatalf("clip has %d tracks, want 2", len(clip.Tracks))
	}
	for b, tr := range clip.Tracks {
		if len(tr.Times) != 3 || len(tr.Values) != 3 {
			t.Errorf("%s track has %d/%d keys, want 3", b, len(tr.Times), len(tr.Values))
		}
	}
	if clip.RootTrack == nil || len(clip.RootTrack.Times) != 3 {
		t.Fatal("root track missing or incomplete")
	}
}

func TestClipInterpolation(t *testing.T) {
	clip := recordThreeFrames(t)
	tr := clip.Tracks[vrm.BoneHips]

	// Midpoint between the 0.0 and 0.1 rad keyframes.
	got := tr.At(0.05)
	want := vrm.QuatFromAxisAngle(0, 1, 0, 0.05)
	if got.AngleTo(want) > 1e-3 {
		t.Errorf("At(0.05) off by %v rad", got.AngleTo(want))
	}

	// Exact keyframe time returns the keyed value.
	if got := tr.At(0.1); got.AngleTo(vrm.QuatFromAxisAngle(0, 1, 0, 0.1)) > 1e-9 {
		t.Error("exact keyframe time not returned verbatim")
	}

	// Out-of-range times clamp.
	if got := tr.At(-1); got != tr.Values[0] {
		t.Error("time before track start did not clamp")
	}
	if got := tr.At(99); got != tr.Values[2] {
		t.Error("time past track end did not clamp")
	}
}

func TestClipSample(t *testing.T) {
	clip := recordThreeFrames(t)

	pose, root, ok := clip.Sample(0.2)
	if !ok {
		t.Fatal("Sample reported no root track")
	}
	if len(pose) != 2 {
		t.Errorf("pose has %d bones, want 2", len(pose))
	}
	if absF(root.Y-0.02) > 1e-9 {
		t.Errorf("root.Y = %v, want 0.02", root.Y)
	}
}

func TestStopWithoutFrames(t *testing.T) {
	r := New()
	r.Start()

	clip, ok := r.Stop()
	if ok || clip != nil {
		t.Error("empty session should produce no clip")
	}
	if r.Recording() {
		t.Error("recorder still recording after Stop")
	}
}

func TestStopWhenIdle(t *testing.T) {
	r := New()
	if _, ok := r.Stop(); ok {
		t.Error("idle Stop should produce no clip")
	}
}

func TestRestartClearsBuffer(t *testing.T) {
	r := New()
	epoch := time.Now()
	r.StartAt(epoch)
	r.Sample(epoch.Add(10*time.Millisecond), map[vrm.Bone]vrm.Quat{vrm.BoneHead: vrm.IdentityQuat()}, nil)

	later := epoch.Add(time.Second)
	r.StartAt(later)
	if r.FrameCount() != 0 {
		t.Fatalf("FrameCount after restart = %d, want 0", r.FrameCount())
	}

	r.Sample(later.Add(10*time.Millisecond), map[vrm.Bone]vrm.Quat{vrm.BoneHead: vrm.IdentityQuat()}, nil)
	clip, ok := r.Stop()
	if !ok || len(clip.Tracks[vrm.BoneHead].Times) != 1 {
		t.Error("clip contains frames from before the restart")
	}
}

func TestSampleOrderingInvariants(t *testing.T) {
	r := New()
	epoch := time.Now()
	r.StartAt(epoch)

	rot := map[vrm.Bone]vrm.Quat{vrm.BoneHead: vrm.IdentityQuat()}
	r.Sample(epoch.Add(-time.Millisecond), rot, nil) // before epoch
	r.Sample(epoch.Add(100*time.Millisecond), rot, nil)
	r.Sample(epoch.Add(100*time.Millisecond), rot, nil) // duplicate time
	r.Sample(epoch.Add(50*time.Millisecond), rot, nil)  // going backward

	if got := r.FrameCount(); got != 1 {
		t.Errorf("FrameCount = %d, want 1 strictly-increasing frame", got)
	}
}

func TestSampleWhenIdleIgnored(t *testing.T) {
	r := New()
	r.Sample(time.Now(), map[vrm.Bone]vrm.Quat{vrm.BoneHead: vrm.IdentityQuat()}, nil)
	if r.FrameCount() != 0 {
		t.Error("idle recorder captured a frame")
	}
}

func TestSampleCopiesInput(t *testing.T) {
	r := New()
	epoch := time.Now()
	r.StartAt(epoch)

	rot := map[vrm.Bone]vrm.Quat{vrm.BoneHips: vrm.QuatFromAxisAngle(0, 1, 0, 0.5)}
	root := vrm.Vec3{X: 1}
	r.Sample(epoch.Add(10*time.Millisecond), rot, &root)

	// Mutating the caller's data must not reach the recorded frame.
	rot[vrm.BoneHips] = vrm.IdentityQuat()
	root.X = 99

	clip, _ := r.Stop()
	if got := clip.Tracks[vrm.BoneHips].Values[0]; got.AngleTo(vrm.QuatFromAxisAngle(0, 1, 0, 0.5)) > 1e-9 {
		t.Error("recorded rotation aliased the caller's map")
	}
	if clip.RootTrack.Values[0].X != 1 {
		t.Error("recorded root aliased the caller's vector")
	}
}

func TestPoseExport(t *testing.T) {
	clip := recordThreeFrames(t)

	var buf bytes.Buffer
	if err := clip.WritePoseJSON(&buf, 0.2); err != nil {
		t.Fatalf("WritePoseJSON failed: %v", err)
	}

	var doc PoseDocument
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("export is not valid JSON: %v", err)
	}

	hips, ok := doc.VRMPose["hips"]
	if !ok {
		t.Fatalf("export lacks hips entry: %v", doc.VRMPose)
	}
	if hips.Position == nil {
		t.Error("root bone entry lacks position")
	}
	head, ok := doc.VRMPose["head"]
	if !ok {
		t.Fatal("export lacks head entry")
	}
	if head.Position != nil {
		t.Error("non-root bone carries a position")
	}
	want := vrm.QuatFromAxisAngle(1, 0, 0, 0.1)
	got := vrm.Quat{X: head.Rotation[0], Y: head.Rotation[1], Z: head.Rotation[2], W: head.Rotation[3]}
	if got.AngleTo(want) > 1e-6 {
		t.Errorf("head rotation off by %v rad", got.AngleTo(want))
	}
}

func TestClipExport(t *testing.T) {
	clip := recordThreeFrames(t)

	var buf bytes.Buffer
	if err := clip.WriteClipJSON(&buf, 30); err != nil {
		t.Fatalf("WriteClipJSON failed: %v", err)
	}

	var doc ClipDocument
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("export is not valid JSON: %v", err)
	}
	if doc.ID != clip.ID || doc.FPS != 30 {
		t.Errorf("doc header = %q fps %v", doc.ID, doc.FPS)
	}
	// 0.2 s at 30 fps: frames at 0, 1/30, ..., ending exactly at the clip
	// duration.
	if len(doc.Frames) < 7 {
		t.Errorf("resampled frame count = %d, want at least 7", len(doc.Frames))
	}
	for i := 1; i < len(doc.Frames); i++ {
		if doc.Frames[i].Time <= doc.Frames[i-1].Time {
			t.Fatalf("frame times not strictly increasing at %d", i)
		}
	}
	last := doc.Frames[len(doc.Frames)-1]
	if absF(last.Time-clip.Duration) > 1e-9 {
		t.Errorf("last frame time = %v, want clip duration %v", last.Time, clip.Duration)
	}
}

func absF(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
