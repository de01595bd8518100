package pipeline

import (
	"sort"

	"github.com/avatarkit/go-vrig/internal/log"
	"github.com/avatarkit/go-vrig/pkg/vrm"
)

// SubmitRig accepts one solved frame from the camera rig solver. Pending
// body/face calibration is sampled from this frame first, then the
// calibration inverse is applied and the results are swapped into the
// target slots. Called from the solver's frame callback; never blocks.
func (p *Pipeline) SubmitRig(frame *vrm.RigFrame) {
	if frame == nil {
		return
	}

	p.calib.ObserveBodyFrame(frame)
	if frame.Gaze != nil {
		p.calib.ObserveGaze(*frame.Gaze)
	}

	for b, q := range frame.Rotations {
		if !b.Valid() {
			continue
		}
		p.bones[b].Store(&boneTarget{
			rot: p.calib.ApplyRotation(b, q),
			src: SourceCamera,
		})
	}

	for name, v := range frame.Expressions {
		p.submitExpression(name, v, SourceCamera)
	}

	if frame.Root != nil {
		pos := p.calib.ApplyRoot(*frame.Root).Scale(p.cfg.RootScale)
		p.root.Store(&rootTarget{pos: pos, src: SourceCamera})
	}
}

// SubmitExternalBone accepts one protocol-delivered bone rotation.
func (p *Pipeline) SubmitExternalBone(b vrm.Bone, q vrm.Quat) {
	if !b.Valid() {
		return
	}
	p.bones[b].Store(&boneTarget{rot: q, src: SourceExternal})
}

// SubmitExternalExpression accepts one protocol-delivered expression value.
func (p *Pipeline) SubmitExternalExpression(name string, v float64) {
	p.submitExpression(name, v, SourceExternal)
}

// SubmitExternalRoot accepts a protocol-delivered root position, applying
// the independent external root calibration offset.
func (p *Pipeline) SubmitExternalRoot(pos vrm.Vec3) {
	p.root.Store(&rootTarget{
		pos: p.calib.ApplyExternalRoot(pos),
		src: SourceExternal,
	})
}

// submitExpression resolves the name against the avatar's expression set
// (exact, then alias) and swaps the value into the channel slot. Unmatched
// names are silently dropped; the drop counter keeps them observable.
func (p *Pipeline) submitExpression(name string, v float64, src Source) {
	resolved, ok := p.exprSet.Load().Resolve(name)
	if !ok {
		n := p.dropped.Add(1)
		if n == 1 || n%1000 == 0 {
			log.Debug("expression target dropped", "name", name, "total_dropped", n)
		}
		return
	}

	p.exprMu.RLock()
	slot, ok := p.exprSlots[resolved]
	p.exprMu.RUnlock()

	if !ok {
		p.exprMu.Lock()
		slot, ok = p.exprSlots[resolved]
		if !ok {
			slot = &exprSlot{name: resolved}
			p.exprSlots[resolved] = slot
			p.exprOrder = append(p.exprOrder, resolved)
			sort.Strings(p.exprOrder)
		}
		p.exprMu.Unlock()
	}

	slot.slot.Store(&exprTarget{value: v, src: src})
}
