package filter

import "github.com/avatarkit/go-vrig/pkg/vrm"

// Bank owns one filter instance per channel key, allocated lazily on first
// use with the parameters supplied then. Parameters passed on later calls
// for the same key are ignored; the filter keeps its original tuning until
// the bank is reset.
//
// The bank is written only by the single per-frame tick consumer and is not
// safe for concurrent use.
type Bank struct {
	scalars map[string]*OneEuro
	vecs    map[string]*Vec3Filter
	quats   map[string]*QuatFilter
}

// NewBank returns an empty filter bank.
func NewBank() *Bank {
	b := &Bank{}
	b.Reset()
	return b
}

// Scalar filters a scalar channel identified by key.
func (b *Bank) Scalar(key string, p Params, x, t float64) float64 {
	f, ok := b.scalars[key]
	if !ok {
		f = NewOneEuro(p)
		b.scalars[key] = f
	}
	return f.Filter(x, t)
}

// Vec3 filters a vector channel identified by key.
func (b *Bank) Vec3(key string, p Params, v vrm.Vec3, t float64) vrm.Vec3 {
	f, ok := b.vecs[key]
	if !ok {
		f = NewVec3Filter(p)
		b.vecs[key] = f
	}
	return f.Filter(v, t)
}

// Quat filters a rotation channel identified by key.
func (b *Bank) Quat(key string, p Params, q vrm.Quat, t float64) vrm.Quat {
	f, ok := b.quats[key]
	if !ok {
		f = NewQuatFilter(p)
		b.quats[key] = f
	}
	return f.Filter(q, t)
}

// Len returns the number of live filter instances.
func (b *Bank) Len() int {
	return len(b.scalars) + len(b.vecs) + len(b.quats)
}

// Reset discards every filter instance. Used on avatar swap: filters are
// re-created, never reused across channel topology changes.
func (b *Bank) Reset() {
	b.scalars = make(map[string]*OneEuro)
	b.vecs = make(map[string]*Vec3Filter)
	b.quats = make(map[string]*QuatFilter)
}
