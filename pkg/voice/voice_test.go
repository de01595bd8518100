package voice

import (
	"testing"

	"github.com/avatarkit/go-vrig/pkg/vrm"
)

func TestActiveFlag(t *testing.T) {
	a := New()
	if a.Active() {
		t.Fatal("new analyzer should be inactive")
	}
	a.SetActive(true)
	if !a.Active() {
		t.Error("SetActive(true) not reflected")
	}
	a.SetActive(false)
	if a.Active() {
		t.Error("SetActive(false) not reflected")
	}
}

func TestSetLevels(t *testing.T) {
	a := New()
	a.SetLevels([len(vrm.Vowels)]float64{0.1, 0.2, 0.3, 0.4, 0.5})

	got := a.Levels()
	for i, want := range []float64{0.1, 0.2, 0.3, 0.4, 0.5} {
		if got[i] != want {
			t.Errorf("level[%d] = %v, want %v", i, got[i], want)
		}
	}
}

func TestLevelsClamped(t *testing.T) {
	a := New()
	a.SetLevels([len(vrm.Vowels)]float64{-0.5, 1.5, 0.5, 2, -1})

	got := a.Levels()
	want := [len(vrm.Vowels)]float64{0, 1, 0.5, 1, 0}
	if got != want {
		t.Errorf("Levels = %v, want %v", got, want)
	}

	a.SetLevel(0, 3)
	if a.Levels()[0] != 1 {
		t.Error("SetLevel not clamped")
	}
}

func TestSetLevelBounds(t *testing.T) {
	a := New()
	a.SetLevel(-1, 0.5)
	a.SetLevel(len(vrm.Vowels), 0.5)

	if a.Levels() != ([len(vrm.Vowels)]float64{}) {
		t.Error("out-of-range index wrote a level")
	}
}

func TestSetVolume(t *testing.T) {
	a := New()
	a.SetLevels([len(vrm.Vowels)]float64{0.1, 0.2, 0.3, 0.4, 0.5})
	a.SetVolume(0.7)

	got := a.Levels()
	if got[0] != 0.7 {
		t.Errorf("open vowel = %v, want 0.7", got[0])
	}
	for i := 1; i < len(got); i++ {
		if got[i] != 0 {
			t.Errorf("level[%d] = %v, want 0", i, got[i])
		}
	}
}
