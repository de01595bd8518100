package pipeline

import (
	"time"

	"github.com/avatarkit/go-vrig/internal/log"
)

// Driver runs the pipeline tick at a fixed rate for hosts without their own
// render loop (the daemon's headless mode). Hosts that render call
// Pipeline.Tick from their frame callback instead and do not use a Driver.
type Driver struct {
	pipe *Pipeline
	rate time.Duration
	stop chan struct{}
}

// NewDriver creates a driver ticking at the given interval.
func NewDriver(p *Pipeline, rate time.Duration) *Driver {
	return &Driver{
		pipe: p,
		rate: rate,
		stop: make(chan struct{}),
	}
}

// Run starts the tick loop and blocks until Stop is called. At most one
// Driver should run per pipeline; the pipeline itself ignores ticks while
// no source is attached.
func (d *Driver) Run() {
	ticker := time.NewTicker(d.rate)
	defer ticker.Stop()

	log.Info("pipeline driver started", "rate_hz", 1/d.rate.Seconds())

	for {
		select {
		case <-d.stop:
			log.Info("pipeline driver stopped")
			return
		case now := <-ticker.C:
			d.pipe.Tick(now)
		}
	}
}

// Stop halts the tick loop.
func (d *Driver) Stop() {
	close(d.stop)
}
