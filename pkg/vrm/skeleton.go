package vrm

import "sync"

// SkeletonWriter receives filtered bone rotations and the root position.
// Implementations are rendering-system adapters; MemorySkeleton is the
// in-process reference used by tests and the daemon's headless mode.
type SkeletonWriter interface {
	SetBoneRotation(b Bone, q Quat)
	SetRootPosition(p Vec3)
}

// FaceWriter receives filtered expression weights in [0,1].
type FaceWriter interface {
	SetExpression(name string, value float64)
}

// RigFrame is one solved frame from a vision-based body/face/hand solver:
// named-bone rotations, expression weights, and optionally the hips position
// and a pupil gaze reading.
type RigFrame struct {
	Rotations   map[Bone]Quat
	Expressions map[string]float64
	Root        *Vec3
	Gaze        *Vec2
}

// MemorySkeleton is a thread-safe in-memory skeleton and face. It records
// the most recently applied value per channel.
type MemorySkeleton struct {
	mu          sync.RWMutex
	rotations   map[Bone]Quat
	root        Vec3
	hasRoot     bool
	expressions map[string]float64
}

// NewMemorySkeleton returns an empty in-memory skeleton.
func NewMemorySkeleton() *MemorySkeleton {
	return &MemorySkeleton{
		rotations:   make(map[Bone]Quat, NumBones),
		expressions: make(map[string]float64),
	}
}

// SetBoneRotation stores the applied rotation for a bone.
func (s *MemorySkeleton) SetBoneRotation(b Bone, q Quat) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rotations[b] = q
}

// SetRootPosition stores the applied root position.
func (s *MemorySkeleton) SetRootPosition(p Vec3) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.root = p
	s.hasRoot = true
}

// SetExpression stores the applied expression weight.
func (s *MemorySkeleton) SetExpression(name string, value float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expressions[name] = value
}

// BoneRotation returns the applied rotation for a bone, if any.
func (s *MemorySkeleton) BoneRotation(b Bone) (Quat, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	q, ok := s.rotations[b]
	return q, ok
}

// RootPosition returns the applied root position, if any.
func (s *MemorySkeleton) RootPosition() (Vec3, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.root, s.hasRoot
}

// Expression returns the applied weight for an expression, if any.
func (s *MemorySkeleton) Expression(name string) (float64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.expressions[name]
	return v, ok
}

// Rotations returns a copy of all applied bone rotations.
func (s *MemorySkeleton) Rotations() map[Bone]Quat {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[Bone]Quat, len(s.rotations))
	for b, q := range s.rotations {
		out[b] = q
	}
	return out
}

// Reset clears all applied state (avatar swap).
func (s *MemorySkeleton) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rotations = make(map[Bone]Quat, NumBones)
	s.expressions = make(map[string]float64)
	s.hasRoot = false
	s.root = Vec3{}
}
