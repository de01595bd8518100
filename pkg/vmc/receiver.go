package vmc

import (
	"fmt"
	"net"
	"sync"
	"sync/atomic"

	"github.com/hypebeast/go-osc/osc"

	"github.com/avatarkit/go-vrig/internal/log"
	"github.com/avatarkit/go-vrig/pkg/pipeline"
)

// Receiver listens for VMC performer traffic on UDP and feeds the decoded
// channels into the pipeline as the external source. Bone and root messages
// apply immediately; blend values stage until /VMC/Ext/Blend/Apply, per the
// protocol's frame contract.
type Receiver struct {
	addr string
	pipe *pipeline.Pipeline

	mu     sync.Mutex
	blends map[string]float64

	conn    net.PacketConn
	started bool

	bones  atomic.Uint64
	frames atomic.Uint64
}

// NewReceiver creates a receiver for the given UDP listen address
// (conventionally port 39539).
func NewReceiver(addr string, pipe *pipeline.Pipeline) *Receiver {
	return &Receiver{
		addr:   addr,
		pipe:   pipe,
		blends: make(map[string]float64),
	}
}

// Start binds the UDP socket, attaches the external source to the pipeline
// and begins serving in a background goroutine.
func (r *Receiver) Start() error {
	if r.started {
		return fmt.Errorf("vmc receiver already started")
	}

	conn, err := net.ListenPacket("udp", r.addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", r.addr, err)
	}

	d := osc.NewStandardDispatcher()
	handlers := map[string]osc.HandlerFunc{
		addrBonePos:    r.handleBonePos,
		addrBlendVal:   r.handleBlendVal,
		addrBlendApply: r.handleBlendApply,
		addrRootPos:    r.handleRootPos,
		addrOK:         r.handleOK,
	}
	for addr, h := range handlers {
		if err := d.AddMsgHandler(addr, h); err != nil {
			conn.Close()
			return fmt.Errorf("register handler %s: %w", addr, err)
		}
	}

	server := &osc.Server{Addr: r.addr, Dispatcher: d}
	r.conn = conn
	r.started = true
	r.pipe.Attach(pipeline.SourceExternal)

	go func() {
		if err := server.Serve(conn); err != nil {
			// Expected on Stop when the socket closes underneath Serve.
			log.Debug("vmc serve exited", "err", err)
		}
	}()

	log.Info("vmc receiver listening", "addr", r.addr)
	return nil
}

// Stop closes the socket and detaches the external source. Targets already
// applied to the skeleton remain until overwritten.
func (r *Receiver) Stop() {
	if !r.started {
		return
	}
	r.started = false
	r.conn.Close()
	r.pipe.Detach(pipeline.SourceExternal)
	log.Info("vmc receiver stopped", "bones", r.bones.Load(), "frames", r.frames.Load())
}

func (r *Receiver) handleBonePos(msg *osc.Message) {
	sample, ok := parseBonePos(msg)
	if !ok {
		return
	}
	r.pipe.SubmitExternalBone(sample.Bone, sample.Rot)
	r.bones.Add(1)
}

func (r *Receiver) handleBlendVal(msg *osc.Message) {
	name, v, ok := parseBlendVal(msg)
	if !ok {
		return
	}
	r.mu.Lock()
	r.blends[name] = v
	r.mu.Unlock()
}

func (r *Receiver) handleBlendApply(_ *osc.Message) {
	r.mu.Lock()
	staged := r.blends
	r.blends = make(map[string]float64, len(staged))
	r.mu.Unlock()

	for name, v := range staged {
		r.pipe.SubmitExternalExpression(name, v)
	}
	r.frames.Add(1)
}

func (r *Receiver) handleRootPos(msg *osc.Message) {
	pos, _, ok := parseRootPos(msg)
	if !ok {
		return
	}
	r.pipe.SubmitExternalRoot(pos)
}

func (r *Receiver) handleOK(msg *osc.Message) {
	if loaded, ok := floatArg(msg.Arguments, 0); ok {
		log.Debug("vmc sender state", "loaded", loaded)
	}
}
