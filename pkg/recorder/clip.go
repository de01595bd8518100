package recorder

import (
	"sort"

	"github.com/google/uuid"

	"github.com/avatarkit/go-vrig/pkg/vrm"
)

// QuatTrack is a quaternion keyframe track for one bone.
type QuatTrack struct {
	Times  []float64
	Values []vrm.Quat
}

// Vec3Track is a position keyframe track.
type Vec3Track struct {
	Times  []float64
	Values []vrm.Vec3
}

// AnimationClip is an immutable keyed animation built from a recording:
// one quaternion track per bone plus a position track for the root bone.
// It is independent of live channel state after construction.
type AnimationClip struct {
	// ID uniquely identifies the clip.
	ID string

	// Duration is the last recorded frame's relative time in seconds.
	Duration float64

	// Tracks maps each recorded bone to its rotation keyframes.
	Tracks map[vrm.Bone]*QuatTrack

	// RootTrack holds root positions, nil if no positions were recorded.
	RootTrack *Vec3Track
}

// buildClip assembles keyframe tracks from an ordered frame sequence.
func buildClip(frames []Frame) *AnimationClip {
	clip := &AnimationClip{
		ID:       uuid.NewString(),
		Duration: frames[len(frames)-1].Time,
		Tracks:   make(map[vrm.Bone]*QuatTrack),
	}

	for _, f := range frames {
		for b, q := range f.Rotations {
			tr, ok := clip.Tracks[b]
			if !ok {
				tr = &QuatTrack{}
				clip.Tracks[b] = tr
			}
			tr.Times = append(tr.Times, f.Time)
			tr.Values = append(tr.Values, q)
		}
		if f.Root != nil {
			if clip.RootTrack == nil {
				clip.RootTrack = &Vec3Track{}
			}
			clip.RootTrack.Times = append(clip.RootTrack.Times, f.Time)
			clip.RootTrack.Values = append(clip.RootTrack.Values, *f.Root)
		}
	}

	return clip
}

// At returns the interpolated rotation at time t, clamping outside the
// track's range.
func (tr *QuatTrack) At(t float64) vrm.Quat {
	i, alpha, single := locate(tr.Times, t)
	if single {
		return tr.Values[i]
	}
	return tr.Values[i].Lerp(tr.Values[i+1], alpha)
}

// At returns the interpolated position at time t, clamping outside the
// track's range.
func (tr *Vec3Track) At(t float64) vrm.Vec3 {
	i, alpha, single := locate(tr.Times, t)
	if single {
		return tr.Values[i]
	}
	return tr.Values[i].Lerp(tr.Values[i+1], alpha)
}

// locate finds the keyframe interval containing t. It returns the lower
// index and interpolation fraction, or single=true when t clamps to one
// keyframe.
func locate(times []float64, t float64) (i int, alpha float64, single bool) {
	n := len(times)
	if n == 0 {
		return 0, 0, true
	}
	if t <= times[0] {
		return 0, 0, true
	}
	if t >= times[n-1] {
		return n - 1, 0, true
	}

	idx := sort.SearchFloat64s(times, t)
	if times[idx] == t {
		return idx, 0, true
	}
	lo := idx - 1
	span := times[idx] - times[lo]
	if span <= 0 {
		return lo, 0, true
	}
	return lo, (t - times[lo]) / span, false
}

// Sample evaluates every track at time t, returning the interpolated pose
// and root position (ok false when the clip has no root track).
func (c *AnimationClip) Sample(t float64) (map[vrm.Bone]vrm.Quat, vrm.Vec3, bool) {
	pose := make(map[vrm.Bone]vrm.Quat, len(c.Tracks))
	for b, tr := range c.Tracks {
		pose[b] = tr.At(t)
	}
	if c.RootTrack == nil {
		return pose, vrm.Vec3{}, false
	}
	return pose, c.RootTrack.At(t), true
}
