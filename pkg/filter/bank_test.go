package filter

import (
	"testing"

	"github.com/avatarkit/go-vrig/pkg/vrm"
)

func TestBankLazyInstancing(t *testing.T) {
	b := NewBank()
	p := ParamsFor(ClassBody, false)

	if b.Len() != 0 {
		t.Fatalf("new bank has %d filters, want 0", b.Len())
	}

	b.Quat("bone/head", p, vrm.IdentityQuat(), 0)
	b.Quat("bone/head", p, vrm.IdentityQuat(), 0.1)
	b.Vec3("root", p, vrm.Vec3{}, 0)
	b.Scalar("expr/Joy", p, 0.5, 0)

	if got := b.Len(); got != 3 {
		t.Errorf("Len = %d, want 3 (one per distinct key)", got)
	}
}

func TestBankKeepsFilterState(t *testing.T) {
	b := NewBank()
	p := Params{MinCutoff: 1, Beta: 0}

	b.Scalar("k", p, 0, 0)
	got := b.Scalar("k", p, 1, 1.0/60)
	if got <= 0 || got >= 1 {
		t.Errorf("second sample = %v, want smoothed between 0 and 1", got)
	}
}

func TestBankFirstParamsWin(t *testing.T) {
	b := NewBank()

	// Filter instantiated with a heavy cutoff; later calls passing different
	// params must not re-tune it.
	heavy := Params{MinCutoff: 0.01, Beta: 0}
	light := Params{MinCutoff: 100, Beta: 0}

	b.Scalar("k", heavy, 0, 0)
	got := b.Scalar("k", light, 1, 1.0/60)
	if got > 0.01 {
		t.Errorf("sample = %v, later params appear to have replaced the original tuning", got)
	}
}

func TestBankReset(t *testing.T) {
	b := NewBank()
	p := ParamsFor(ClassRoot, false)

	b.Vec3("root", p, vrm.Vec3{X: 5}, 0)
	b.Reset()

	if b.Len() != 0 {
		t.Fatalf("Len after Reset = %d, want 0", b.Len())
	}

	// A fresh filter passes its first sample through unchanged.
	got := b.Vec3("root", p, vrm.Vec3{X: 1}, 1)
	if got.X != 1 {
		t.Errorf("first sample after Reset = %v, want passthrough", got.X)
	}
}

func TestParamsForTables(t *testing.T) {
	classes := []Class{ClassBody, ClassHead, ClassFinger, ClassRoot, ClassExpression}
	for _, c := range classes {
		local := ParamsFor(c, false)
		net := ParamsFor(c, true)
		if local.MinCutoff <= 0 || net.MinCutoff <= 0 {
			t.Errorf("%s: non-positive MinCutoff", c)
		}
		if net.MinCutoff >= local.MinCutoff {
			t.Errorf("%s: network cutoff %v should sit below local %v", c, net.MinCutoff, local.MinCutoff)
		}
	}
}
