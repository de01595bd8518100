package pipeline

import (
	"time"

	"github.com/avatarkit/go-vrig/pkg/filter"
	"github.com/avatarkit/go-vrig/pkg/vrm"
)

// Tick runs one integration frame at the given time. Expressions are always
// resolved before bones, then the root, so recorded output is reproducible.
// Tick is a no-op while no source is attached. It must be called from a
// single goroutine; producers only ever swap targets into slots.
func (p *Pipeline) Tick(now time.Time) {
	if !p.Active() {
		return
	}
	t := now.Sub(p.epoch).Seconds()

	p.tickExpressions(t)
	p.tickBones(t)
	p.tickRoot(t)

	if p.rec != nil && p.rec.Recording() {
		p.sampleRecorder(now)
	}

	p.ticks.Add(1)
	p.filters.Store(int64(p.bank.Len()))
}

// tickExpressions drains the expression slots in deterministic (sorted
// name) order. While the voice analyzer is active it owns the mouth
// channels outright: its vowel levels are applied every tick and any
// camera- or protocol-sourced target for a mouth channel is discarded, not
// merely overridden.
func (p *Pipeline) tickExpressions(t float64) {
	voiceActive := p.voice != nil && p.voice.Active()

	if voiceActive {
		levels := p.voice.Levels()
		set := p.exprSet.Load()
		for i, vowel := range vrm.Vowels {
			name, ok := set.Resolve(vowel)
			if !ok {
				continue
			}
			v := p.bank.Scalar("expr/"+name,
				filter.ParamsFor(filter.ClassExpression, false),
				levels[i], t)
			p.face.SetExpression(name, clamp01(v))
		}
	}

	p.exprMu.RLock()
	order := make([]*exprSlot, 0, len(p.exprOrder))
	for _, name := range p.exprOrder {
		order = append(order, p.exprSlots[name])
	}
	p.exprMu.RUnlock()

	for _, slot := range order {
		u := slot.slot.Swap(nil)
		if u == nil {
			continue
		}
		if voiceActive && u.src != SourceVoice && vrm.IsMouthExpression(slot.name) {
			continue
		}
		v := p.bank.Scalar("expr/"+slot.name,
			filter.ParamsFor(filter.ClassExpression, u.src == SourceExternal),
			u.value, t)
		p.face.SetExpression(slot.name, clamp01(v))
	}
}

// tickBones drains the bone slots in index order. Camera targets blocked by
// the mode gate stay in their slots so a later mode switch can still apply
// them; everything else is consumed, filtered and written to the skeleton.
// Externally-sourced updates inside the rotational deadzone are discarded
// to suppress residual micro-jitter.
func (p *Pipeline) tickBones(t float64) {
	mode := p.Mode()

	for i := 0; i < int(vrm.NumBones); i++ {
		b := vrm.Bone(i)
		u := p.bones[i].Load()
		if u == nil {
			continue
		}
		if u.src == SourceCamera && mode == ModeFaceOnly && !b.IsUpperBody() {
			continue
		}
		// A failed swap means a producer raced in a newer target; it
		// stays for the next tick and we apply what we loaded.
		p.bones[i].CompareAndSwap(u, nil)

		q := p.bank.Quat("bone/"+b.String(),
			filter.ParamsFor(classFor(b), u.src == SourceExternal),
			u.rot, t)

		if u.src == SourceExternal && p.appliedSet[i] &&
			q.AngleTo(p.applied[i]) < p.cfg.RotationDeadzone {
			continue
		}

		p.skeleton.SetBoneRotation(b, q)
		p.applied[i] = q
		p.appliedSet[i] = true
	}
}

// tickRoot drains the root position slot with a positional deadzone.
func (p *Pipeline) tickRoot(t float64) {
	u := p.root.Load()
	if u == nil {
		return
	}
	p.root.CompareAndSwap(u, nil)

	pos := p.bank.Vec3("root",
		filter.ParamsFor(filter.ClassRoot, u.src == SourceExternal),
		u.pos, t)

	if u.src == SourceExternal && p.appliedRootSet &&
		pos.DistanceTo(p.appliedRoot) < p.cfg.PositionDeadzone {
		return
	}

	p.skeleton.SetRootPosition(pos)
	p.appliedRoot = pos
	p.appliedRootSet = true
}

// sampleRecorder snapshots the post-application state into the recorder
// within the same tick, so recorded frames reflect exactly what was applied.
func (p *Pipeline) sampleRecorder(now time.Time) {
	rotations := make(map[vrm.Bone]vrm.Quat)
	for i := 0; i < int(vrm.NumBones); i++ {
		if p.appliedSet[i] {
			rotations[vrm.Bone(i)] = p.applied[i]
		}
	}
	var root *vrm.Vec3
	if p.appliedRootSet {
		r := p.appliedRoot
		root = &r
	}
	p.rec.Sample(now, rotations, root)
}

// classFor maps a bone to its filter tuning class.
func classFor(b vrm.Bone) filter.Class {
	switch {
	case b.IsHeadGroup():
		return filter.ClassHead
	case b.IsFinger() || b == vrm.BoneLeftHand || b == vrm.BoneRightHand:
		return filter.ClassFinger
	default:
		return filter.ClassBody
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
