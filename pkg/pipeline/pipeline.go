// Package pipeline is the per-frame integration point between asynchronous
// motion sources and the skeleton. Producers (vision solver, protocol
// receiver, voice analyzer) swap immutable updates into per-channel slots;
// once per render frame the tick drains the slots through the mode gate,
// source arbitration, calibration and the filter bank, then applies the
// result to the skeleton and face.
package pipeline

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/avatarkit/go-vrig/internal/log"
	"github.com/avatarkit/go-vrig/pkg/calibration"
	"github.com/avatarkit/go-vrig/pkg/filter"
	"github.com/avatarkit/go-vrig/pkg/recorder"
	"github.com/avatarkit/go-vrig/pkg/vrm"
)

// Source identifies which input wrote a channel target.
type Source int

const (
	// SourceCamera is the local vision-based rig solver.
	SourceCamera Source = iota

	// SourceExternal is the network motion protocol (VMC or motion link).
	// It is assumed authoritative when active and bypasses the mode gate.
	SourceExternal

	// SourceVoice is the vowel analyzer driving the mouth channels.
	SourceVoice
)

// String returns a short source name for logging.
func (s Source) String() string {
	switch s {
	case SourceCamera:
		return "camera"
	case SourceExternal:
		return "external"
	case SourceVoice:
		return "voice"
	default:
		return "unknown"
	}
}

// Mode restricts which bones camera-sourced targets may drive.
type Mode int32

const (
	// ModeFullBody applies camera targets to every bone.
	ModeFullBody Mode = iota

	// ModeFaceOnly applies camera targets only to the upper body (head,
	// neck, spine group, shoulders, arms, hands, fingers), leaving the
	// lower body to a procedural animation authority.
	ModeFaceOnly
)

// String returns a short mode name.
func (m Mode) String() string {
	switch m {
	case ModeFullBody:
		return "fullBody"
	case ModeFaceOnly:
		return "faceOnly"
	default:
		return "unknown"
	}
}

// ParseMode resolves a mode name. Unknown names report ok=false.
func ParseMode(name string) (Mode, bool) {
	switch name {
	case "fullBody":
		return ModeFullBody, true
	case "faceOnly":
		return ModeFaceOnly, true
	default:
		return ModeFullBody, false
	}
}

// VoiceSource is the per-tick view of the voice analyzer.
type VoiceSource interface {
	Active() bool
	Levels() [len(vrm.Vowels)]float64
}

// Config tunes the pipeline's application stage.
type Config struct {
	// Mode is the initial tracking mode.
	Mode Mode

	// RotationDeadzone discards externally-sourced bone updates whose
	// angular delta from the applied rotation is below this (radians).
	RotationDeadzone float64

	// PositionDeadzone discards externally-sourced root updates whose
	// distance from the applied position is below this (meters).
	PositionDeadzone float64

	// RootScale scales the calibrated camera root displacement before
	// application.
	RootScale float64
}

// DefaultConfig returns the recommended application tuning.
func DefaultConfig() Config {
	return Config{
		Mode:             ModeFullBody,
		RotationDeadzone: 0.0035, // ~0.2 degrees
		PositionDeadzone: 0.001,  // 1 mm
		RootScale:        1.0,
	}
}

type boneTarget struct {
	rot vrm.Quat
	src Source
}

type rootTarget struct {
	pos vrm.Vec3
	src Source
}

type exprTarget struct {
	value float64
	src   Source
}

type exprSlot struct {
	name string
	slot atomic.Pointer[exprTarget]
}

// Pipeline owns the target slots, calibration store and filter bank for one
// avatar instance. One instance per active avatar; nothing is shared across
// avatars.
type Pipeline struct {
	cfg      Config
	skeleton vrm.SkeletonWriter
	face     vrm.FaceWriter
	voice    VoiceSource
	rec      *recorder.Recorder

	calib *calibration.Store
	bank  *filter.Bank
	epoch time.Time

	mode atomic.Int32

	bones [vrm.NumBones]atomic.Pointer[boneTarget]
	root  atomic.Pointer[rootTarget]

	exprMu    sync.RWMutex
	exprSlots map[string]*exprSlot
	exprOrder []string
	exprSet   atomic.Pointer[vrm.ExpressionSet]

	refMu   sync.Mutex
	refs    map[Source]int
	total   int
	dropped atomic.Uint64
	ticks   atomic.Uint64
	filters atomic.Int64

	// Applied state is owned by the tick consumer; no lock.
	applied        [vrm.NumBones]vrm.Quat
	appliedSet     [vrm.NumBones]bool
	appliedRoot    vrm.Vec3
	appliedRootSet bool
}

// New creates a pipeline writing to the given skeleton and face.
func New(skeleton vrm.SkeletonWriter, face vrm.FaceWriter, cfg Config) *Pipeline {
	p := &Pipeline{
		cfg:       cfg,
		skeleton:  skeleton,
		face:      face,
		calib:     calibration.NewStore(),
		bank:      filter.NewBank(),
		epoch:     time.Now(),
		exprSlots: make(map[string]*exprSlot),
		refs:      make(map[Source]int),
	}
	p.mode.Store(int32(cfg.Mode))
	p.exprSet.Store(vrm.NewExpressionSet(nil))
	return p
}

// SetVoice installs the voice analyzer queried each tick for mouth
// ownership.
func (p *Pipeline) SetVoice(v VoiceSource) {
	p.voice = v
}

// SetRecorder installs the frame recorder sampled after bone application.
func (p *Pipeline) SetRecorder(r *recorder.Recorder) {
	p.rec = r
}

// Calibration exposes the calibration store for request/arm calls.
func (p *Pipeline) Calibration() *calibration.Store {
	return p.calib
}

// SetMode switches the tracking mode. Stored targets are kept; only future
// eligibility changes.
func (p *Pipeline) SetMode(m Mode) {
	old := Mode(p.mode.Swap(int32(m)))
	if old != m {
		log.Info("tracking mode changed", "from", old.String(), "to", m.String())
	}
}

// Mode returns the current tracking mode.
func (p *Pipeline) Mode() Mode {
	return Mode(p.mode.Load())
}

// SetAvatar swaps the driven avatar: the declared expression set is
// re-resolved and calibration, filters and all pending targets are fully
// reset. The caller resets its own skeleton adapter.
func (p *Pipeline) SetAvatar(expressionNames []string) {
	p.exprMu.Lock()
	p.exprSlots = make(map[string]*exprSlot)
	p.exprOrder = nil
	p.exprMu.Unlock()

	p.exprSet.Store(vrm.NewExpressionSet(expressionNames))
	p.calib.Reset()
	p.bank.Reset()

	for i := range p.bones {
		p.bones[i].Store(nil)
		p.appliedSet[i] = false
	}
	p.root.Store(nil)
	p.appliedRootSet = false

	log.Info("avatar swapped", "expressions", len(expressionNames))
}

// AvailableExpressions returns the expressions the current avatar declares.
func (p *Pipeline) AvailableExpressions() []string {
	return p.exprSet.Load().Available()
}

// Attach registers an active input source. The tick consumer is considered
// installed while at least one source is attached; Tick is a no-op
// otherwise.
func (p *Pipeline) Attach(src Source) {
	p.refMu.Lock()
	defer p.refMu.Unlock()
	p.refs[src]++
	p.total++
	if p.total == 1 {
		log.Info("tick consumer installed", "source", src.String())
	}
}

// Detach deregisters an input source. Targets already applied to the
// skeleton remain until overwritten.
func (p *Pipeline) Detach(src Source) {
	p.refMu.Lock()
	defer p.refMu.Unlock()
	if p.refs[src] == 0 {
		return
	}
	p.refs[src]--
	p.total--
	if p.total == 0 {
		log.Info("tick consumer removed", "source", src.String())
	}
}

// Active reports whether any input source is attached.
func (p *Pipeline) Active() bool {
	p.refMu.Lock()
	defer p.refMu.Unlock()
	return p.total > 0
}

// Status is a point-in-time snapshot for the control surface.
type Status struct {
	Mode            string         `json:"mode"`
	Sources         map[string]int `json:"sources"`
	VoiceActive     bool           `json:"voice_active"`
	Recording       bool           `json:"recording"`
	Ticks           uint64         `json:"ticks"`
	Filters         int            `json:"filters"`
	DroppedTargets  uint64         `json:"dropped_targets"`
	BodyCalibration string         `json:"body_calibration"`
	FaceCalibration string         `json:"face_calibration"`
	Expressions     []string       `json:"expressions"`
}

// Status returns a snapshot of pipeline state.
func (p *Pipeline) Status() Status {
	p.refMu.Lock()
	sources := make(map[string]int, len(p.refs))
	for s, n := range p.refs {
		if n > 0 {
			sources[s.String()] = n
		}
	}
	p.refMu.Unlock()

	st := Status{
		Mode:            p.Mode().String(),
		Sources:         sources,
		Ticks:           p.ticks.Load(),
		Filters:         int(p.filters.Load()),
		DroppedTargets:  p.dropped.Load(),
		BodyCalibration: p.calib.BodyState().String(),
		FaceCalibration: p.calib.FaceState().String(),
		Expressions:     p.AvailableExpressions(),
	}
	if p.voice != nil {
		st.VoiceActive = p.voice.Active()
	}
	if p.rec != nil {
		st.Recording = p.rec.Recording()
	}
	return st
}
