package recorder

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/avatarkit/go-vrig/pkg/vrm"
)

// BonePose is one bone entry of an exported pose document. Rotation is in
// VRM component order [x, y, z, w]; only the root bone carries a position.
type BonePose struct {
	Rotation [4]float64  `json:"rotation"`
	Position *[3]float64 `json:"position,omitempty"`
}

// SceneRotation is an optional whole-scene rotation in degrees.
type SceneRotation struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// PoseDocument is the JSON layout consumed by the Blender VRM pose
// importer: bone rotations keyed by camelCase VRM bone name.
type PoseDocument struct {
	VRMPose       map[string]BonePose `json:"vrmPose"`
	SceneRotation *SceneRotation      `json:"sceneRotation,omitempty"`
}

// PoseAt exports the clip's pose at time t as an importable document.
func (c *AnimationClip) PoseAt(t float64) *PoseDocument {
	doc := &PoseDocument{VRMPose: make(map[string]BonePose, len(c.Tracks))}
	for b, tr := range c.Tracks {
		q := tr.At(t)
		bp := BonePose{Rotation: [4]float64{q.X, q.Y, q.Z, q.W}}
		if b == vrm.RootBone && c.RootTrack != nil {
			p := c.RootTrack.At(t)
			bp.Position = &[3]float64{p.X, p.Y, p.Z}
		}
		doc.VRMPose[b.String()] = bp
	}
	return doc
}

// WritePoseJSON writes the clip's pose at time t as indented JSON.
func (c *AnimationClip) WritePoseJSON(w io.Writer, t float64) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(c.PoseAt(t)); err != nil {
		return fmt.Errorf("encode pose: %w", err)
	}
	return nil
}

// ClipDocument is the JSON layout of a full exported clip: the pose
// document format repeated per keyed frame.
type ClipDocument struct {
	ID       string  `json:"id"`
	Duration float64 `json:"duration"`
	FPS      float64 `json:"fps"`
	Frames   []struct {
		Time float64             `json:"time"`
		Pose map[string]BonePose `json:"vrmPose"`
	} `json:"frames"`
}

// WriteClipJSON resamples the clip at the given rate and writes every frame
// as JSON. A rate of 0 defaults to 30 fps.
func (c *AnimationClip) WriteClipJSON(w io.Writer, fps float64) error {
	if fps <= 0 {
		fps = 30
	}
	doc := ClipDocument{ID: c.ID, Duration: c.Duration, FPS: fps}

	step := 1 / fps
	for t := 0.0; ; t += step {
		if t > c.Duration {
			t = c.Duration
		}
		frame := struct {
			Time float64             `json:"time"`
			Pose map[string]BonePose `json:"vrmPose"`
		}{Time: t, Pose: c.PoseAt(t).VRMPose}
		doc.Frames = append(doc.Frames, frame)
		if t >= c.Duration {
			break
		}
	}

	enc := json.NewEncoder(w)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode clip: %w", err)
	}
	return nil
}
