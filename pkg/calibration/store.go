// Package calibration captures and applies per-channel baseline offsets so
// a performer's current physical pose becomes the avatar's neutral
// reference. Every calibratable quantity follows the same one-shot pattern:
// a request arms a pending flag, the next solved frame supplies exactly one
// sample (not an average), and the captured offset applies until re-armed
// or the avatar changes.
package calibration

import (
	"sync"

	"github.com/avatarkit/go-vrig/pkg/vrm"
)

// State is the lifecycle of one calibratable quantity.
type State int

const (
	// StateIdle means no offset is captured and none is pending.
	StateIdle State = iota

	// StatePending means a request was made and the next solved frame
	// will be sampled. The flag holds indefinitely if no frame arrives;
	// that is deliberate, not an error.
	StatePending

	// StateCalibrated means an offset is captured and being applied.
	StateCalibrated
)

// String returns a short state name for logging.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePending:
		return "pending"
	case StateCalibrated:
		return "calibrated"
	default:
		return "unknown"
	}
}

// Store holds all calibration offsets for one avatar instance.
type Store struct {
	mu sync.RWMutex

	body    State
	offsets map[vrm.Bone]vrm.Quat
	refRoot vrm.Vec3
	hasRoot bool

	face State
	gaze vrm.Vec2

	// External-protocol root calibration is independent of body
	// calibration: the first position received after arming is negated
	// into an additive offset.
	extArmed  bool
	extOffset vrm.Vec3
	hasExt    bool
}

// NewStore returns an empty calibration store.
func NewStore() *Store {
	return &Store{offsets: make(map[vrm.Bone]vrm.Quat, vrm.NumBones)}
}

// RequestBody arms body calibration: previous bone offsets and the root
// reference are cleared immediately, and the next solved body frame is
// sampled verbatim.
func (s *Store) RequestBody() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.body = StatePending
	s.offsets = make(map[vrm.Bone]vrm.Quat, vrm.NumBones)
	s.refRoot = vrm.Vec3{}
	s.hasRoot = false
}

// RequestFace arms face calibration: the next solved pupil reading becomes
// the gaze offset.
func (s *Store) RequestFace() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.face = StatePending
	s.gaze = vrm.Vec2{}
}

// ObserveBodyFrame samples the frame if body calibration is pending. Each
// solved rotation is stored verbatim as that bone's offset, and the solved
// hips position (if present) becomes the root reference.
func (s *Store) ObserveBodyFrame(frame *vrm.RigFrame) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.body != StatePending || frame == nil {
		return
	}
	for b, q := range frame.Rotations {
		s.offsets[b] = q
	}
	if frame.Root != nil {
		s.refRoot = *frame.Root
		s.hasRoot = true
	}
	s.body = StateCalibrated
}

// ObserveGaze samples the pupil reading if face calibration is pending.
func (s *Store) ObserveGaze(g vrm.Vec2) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.face != StatePending {
		return
	}
	s.gaze = g
	s.face = StateCalibrated
}

// ApplyRotation maps a newly solved rotation into calibrated space by
// right-multiplying the inverse of the bone's captured offset. The pose at
// calibration time therefore maps to the identity. Bones without an offset
// pass through unchanged.
func (s *Store) ApplyRotation(b vrm.Bone, q vrm.Quat) vrm.Quat {
	s.mu.RLock()
	defer s.mu.RUnlock()
	off, ok := s.offsets[b]
	if !ok {
		return q
	}
	return q.Mul(off.Inverse())
}

// ApplyRoot subtracts the captured reference root position.
func (s *Store) ApplyRoot(p vrm.Vec3) vrm.Vec3 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.hasRoot {
		return p
	}
	return p.Sub(s.refRoot)
}

// GazeOffset returns the captured pupil offset, if face calibration has
// completed.
func (s *Store) GazeOffset() (vrm.Vec2, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.gaze, s.face == StateCalibrated
}

// ArmExternalRoot re-arms external-protocol root calibration. The next
// position received through ApplyExternalRoot is negated into the offset
// applied to all subsequent positions from that source.
func (s *Store) ArmExternalRoot() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.extArmed = true
}

// ApplyExternalRoot offsets a protocol-delivered root position. When armed,
// the first position seen becomes the new zero.
func (s *Store) ApplyExternalRoot(p vrm.Vec3) vrm.Vec3 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.extArmed {
		s.extOffset = p.Scale(-1)
		s.hasExt = true
		s.extArmed = false
	}
	if !s.hasExt {
		return p
	}
	return p.Add(s.extOffset)
}

// BodyState returns the body calibration lifecycle state.
func (s *Store) BodyState() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.body
}

// FaceState returns the face calibration lifecycle state.
func (s *Store) FaceState() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.face
}

// Reset clears all offsets and pending flags (avatar swap).
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.body = StateIdle
	s.face = StateIdle
	s.offsets = make(map[vrm.Bone]vrm.Quat, vrm.NumBones)
	s.refRoot = vrm.Vec3{}
	s.hasRoot = false
	s.gaze = vrm.Vec2{}
	s.extArmed = false
	s.extOffset = vrm.Vec3{}
	s.hasExt = false
}
