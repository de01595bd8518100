// Package filter implements the adaptive low-pass filtering used to smooth
// noisy motion channels. The core is the One Euro filter: a first-order
// low-pass whose cutoff frequency rises with estimated signal speed, trading
// lag for responsiveness. Slow signals get heavy smoothing, fast motion
// passes through with little delay.
package filter

import (
	"math"

	"github.com/avatarkit/go-vrig/pkg/vrm"
)

// Params tunes one filter. They are chosen per channel class and source at
// first use and fixed for the filter's lifetime.
type Params struct {
	// MinCutoff is the cutoff frequency (Hz) at zero speed. Lower values
	// smooth harder and lag more.
	MinCutoff float64

	// Beta scales how much the cutoff rises with signal speed.
	Beta float64

	// DCutoff is the cutoff used when smoothing the speed estimate itself.
	DCutoff float64
}

// lowPass is a single exponential smoothing stage.
type lowPass struct {
	init bool
	hat  float64
}

func (f *lowPass) filter(x, alpha float64) float64 {
	if !f.init {
		f.init = true
		f.hat = x
		return x
	}
	f.hat = alpha*x + (1-alpha)*f.hat
	return f.hat
}

func smoothingFactor(cutoff, dt float64) float64 {
	tau := 1 / (2 * math.Pi * cutoff)
	return 1 / (1 + tau/dt)
}

// OneEuro filters a single scalar channel.
type OneEuro struct {
	p     Params
	x     lowPass
	dx    lowPass
	lastT float64
	seen  bool
}

// NewOneEuro creates a scalar filter with the given parameters.
func NewOneEuro(p Params) *OneEuro {
	if p.DCutoff <= 0 {
		p.DCutoff = 1
	}
	return &OneEuro{p: p}
}

// Filter smooths x observed at monotonic time t (seconds). The first sample
// passes through unchanged. Samples with non-increasing timestamps return
// the previous output.
func (f *OneEuro) Filter(x, t float64) float64 {
	if !f.seen {
		f.seen = true
		f.lastT = t
		f.dx.filter(0, 1)
		return f.x.filter(x, 1)
	}

	dt := t - f.lastT
	if dt <= 0 {
		return f.x.hat
	}
	f.lastT = t

	speed := (x - f.x.hat) / dt
	edx := f.dx.filter(speed, smoothingFactor(f.p.DCutoff, dt))
	cutoff := f.p.MinCutoff + f.p.Beta*math.Abs(edx)
	return f.x.filter(x, smoothingFactor(cutoff, dt))
}

// Vec3Filter filters a 3-vector channel, one scalar filter per component.
type Vec3Filter struct {
	x, y, z *OneEuro
}

// NewVec3Filter creates a vector filter with the given parameters.
func NewVec3Filter(p Params) *Vec3Filter {
	return &Vec3Filter{
		x: NewOneEuro(p),
		y: NewOneEuro(p),
		z: NewOneEuro(p),
	}
}

// Filter smooths v observed at time t.
func (f *Vec3Filter) Filter(v vrm.Vec3, t float64) vrm.Vec3 {
	return vrm.Vec3{
		X: f.x.Filter(v.X, t),
		Y: f.y.Filter(v.Y, t),
		Z: f.z.Filter(v.Z, t),
	}
}

// QuatFilter filters a rotation channel component-wise: each of x, y, z, w
// runs through its own One Euro filter and the result is renormalized to a
// unit quaternion. Incoming samples are flipped onto the hemisphere of the
// previous output first, so the double cover cannot alias into a sign flip
// mid-stream.
type QuatFilter struct {
	x, y, z, w *OneEuro
	last       vrm.Quat
	seen       bool
}

// NewQuatFilter creates a quaternion filter with the given parameters.
func NewQuatFilter(p Params) *QuatFilter {
	return &QuatFilter{
		x: NewOneEuro(p),
		y: NewOneEuro(p),
		z: NewOneEuro(p),
		w: NewOneEuro(p),
	}
}

// Filter smooths q observed at time t and returns a unit quaternion.
func (f *QuatFilter) Filter(q vrm.Quat, t float64) vrm.Quat {
	if f.seen && f.last.Dot(q) < 0 {
		q = q.Neg()
	}
	out := vrm.Quat{
		X: f.x.Filter(q.X, t),
		Y: f.y.Filter(q.Y, t),
		Z: f.z.Filter(q.Z, t),
		W: f.w.Filter(q.W, t),
	}.Normalize()
	f.last = out
	f.seen = true
	return out
}
