// Package recorder captures filtered skeletal state per tick and assembles
// the recorded time series into a playable animation clip.
package recorder

import (
	"sync"
	"time"

	"github.com/avatarkit/go-vrig/internal/log"
	"github.com/avatarkit/go-vrig/pkg/vrm"
)

// Frame is one recorded sample: a relative timestamp in seconds plus the
// applied rotation of every bone, and the root position when present.
type Frame struct {
	Time      float64
	Rotations map[vrm.Bone]vrm.Quat
	Root      *vrm.Vec3
}

// Recorder samples skeletal state while recording and builds a clip on
// stop. The state machine is Idle → Recording → Idle; there is no pause.
// Starting while already recording restarts with a cleared buffer.
type Recorder struct {
	mu        sync.Mutex
	recording bool
	epoch     time.Time
	frames    []Frame
}

// New returns an idle recorder.
func New() *Recorder {
	return &Recorder{}
}

// Start begins a recording session now.
func (r *Recorder) Start() {
	r.StartAt(time.Now())
}

// StartAt begins a recording session with an explicit epoch. The previous
// frame buffer is destroyed.
func (r *Recorder) StartAt(epoch time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.recording {
		log.Debug("recorder restarted, buffer cleared", "frames_discarded", len(r.frames))
	}
	r.recording = true
	r.epoch = epoch
	r.frames = nil
}

// Recording reports whether a session is active.
func (r *Recorder) Recording() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.recording
}

// FrameCount returns the number of frames captured so far.
func (r *Recorder) FrameCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.frames)
}

// Sample records the applied state at now. The tick scheduler calls this
// immediately after bone application, so samples always reflect fully
// filtered, fully applied state. Samples whose relative time would not
// strictly increase are dropped to keep the sequence invariant.
func (r *Recorder) Sample(now time.Time, rotations map[vrm.Bone]vrm.Quat, root *vrm.Vec3) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.recording {
		return
	}

	t := now.Sub(r.epoch).Seconds()
	if t < 0 {
		return
	}
	if n := len(r.frames); n > 0 && t <= r.frames[n-1].Time {
		return
	}

	f := Frame{
		Time:      t,
		Rotations: make(map[vrm.Bone]vrm.Quat, len(rotations)),
	}
	for b, q := range rotations {
		f.Rotations[b] = q
	}
	if root != nil {
		p := *root
		f.Root = &p
	}
	r.frames = append(r.frames, f)
}

// Stop ends the session and builds a clip from the captured frames. The
// second result is false when no frames were captured ("no motion data").
func (r *Recorder) Stop() (*AnimationClip, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.recording && len(r.frames) == 0 {
		return nil, false
	}
	r.recording = false

	frames := r.frames
	r.frames = nil
	if len(frames) == 0 {
		log.Info("recording stopped with no motion data")
		return nil, false
	}

	clip := buildClip(frames)
	log.Info("recording stopped",
		"clip_id", clip.ID,
		"frames", len(frames),
		"duration_s", clip.Duration,
		"tracks", len(clip.Tracks))
	return clip, true
}
