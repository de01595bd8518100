// Package voice holds the vowel-class mouth levels produced by an external
// voice analyzer. While the analyzer reports itself active, the pipeline
// treats it as the exclusive owner of the mouth expression channels.
package voice

import (
	"sync"

	"github.com/avatarkit/go-vrig/pkg/vrm"
)

// Analyzer is the shared state between the external audio analysis and the
// pipeline tick. The analyzer pushes levels at its own fixed rate; the tick
// reads the latest values and the ownership flag once per frame.
type Analyzer struct {
	mu     sync.RWMutex
	levels [len(vrm.Vowels)]float64
	active bool
}

// New returns an inactive analyzer with all vowels at zero.
func New() *Analyzer {
	return &Analyzer{}
}

// SetActive flips mouth ownership. While false, camera and protocol sources
// drive the mouth channels normally.
func (a *Analyzer) SetActive(active bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.active = active
}

// Active reports whether voice analysis currently owns the mouth channels.
func (a *Analyzer) Active() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.active
}

// SetLevels replaces all five vowel levels (order matches vrm.Vowels).
func (a *Analyzer) SetLevels(levels [len(vrm.Vowels)]float64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for i, v := range levels {
		a.levels[i] = clamp01(v)
	}
}

// SetLevel sets one vowel level by index into vrm.Vowels.
func (a *Analyzer) SetLevel(i int, v float64) {
	if i < 0 || i >= len(vrm.Vowels) {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.levels[i] = clamp01(v)
}

// Levels returns the current vowel levels.
func (a *Analyzer) Levels() [len(vrm.Vowels)]float64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.levels
}

// SetVolume is a convenience for hosts that only measure loudness: the
// whole envelope drives the open-mouth vowel and the rest decay to zero.
func (a *Analyzer) SetVolume(v float64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.levels[0] = clamp01(v)
	for i := 1; i < len(a.levels); i++ {
		a.levels[i] = 0
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
