package vrm

import "sort"

// Vowels are the canonical mouth-shape channels driven by voice analysis.
var Vowels = [5]string{"Aa", "Ih", "Ou", "Ee", "Oh"}

// aliasGroups lists expression names that refer to the same facial channel
// across avatar conventions (VRM 0.x presets, VRM 1.0 names, common custom
// clips). Names within a group are interchangeable when resolving against an
// avatar's declared expression set.
var aliasGroups = [][]string{
	{"Aa", "A", "a", "aa"},
	{"Ih", "I", "i", "ih"},
	{"Ou", "U", "u", "ou"},
	{"Ee", "E", "e", "ee"},
	{"Oh", "O", "o", "oh"},
	{"Joy", "Fun", "Happy", "joy", "happy", "fun"},
	{"Angry", "angry"},
	{"Sorrow", "Sad", "sorrow", "sad"},
	{"Surprised", "Surprise", "surprised"},
	{"Blink", "blink"},
	{"Blink_L", "BlinkLeft", "blinkLeft"},
	{"Blink_R", "BlinkRight", "blinkRight"},
	{"Neutral", "neutral"},
	{"LookUp", "lookUp"},
	{"LookDown", "lookDown"},
	{"LookLeft", "lookLeft"},
	{"LookRight", "lookRight"},
}

// aliasIndex maps every known expression name to its alias group.
var aliasIndex = func() map[string]int {
	m := make(map[string]int)
	for i, group := range aliasGroups {
		for _, name := range group {
			m[name] = i
		}
	}
	return m
}()

// mouthGroups are the alias groups owned by voice analysis while it runs.
var mouthGroups = func() map[int]bool {
	m := make(map[int]bool, len(Vowels))
	for _, v := range Vowels {
		m[aliasIndex[v]] = true
	}
	return m
}()

// IsMouthExpression reports whether the named channel belongs to the
// vowel/jaw-open set that voice analysis owns exclusively when active.
func IsMouthExpression(name string) bool {
	g, ok := aliasIndex[name]
	return ok && mouthGroups[g]
}

// ExpressionSet resolves incoming expression names against the expressions
// an avatar actually declares. It is built once per avatar load.
type ExpressionSet struct {
	available map[string]bool
	names     []string
}

// NewExpressionSet builds a resolver for the given declared expression names.
func NewExpressionSet(names []string) *ExpressionSet {
	s := &ExpressionSet{
		available: make(map[string]bool, len(names)),
		names:     make([]string, 0, len(names)),
	}
	for _, n := range names {
		if !s.available[n] {
			s.available[n] = true
			s.names = append(s.names, n)
		}
	}
	sort.Strings(s.names)
	return s
}

// Resolve maps an incoming expression name to an expression the avatar
// declares: exact match first, then any alias from the same group. The
// second result is false when no candidate matches; such updates are
// silently dropped by callers.
func (s *ExpressionSet) Resolve(name string) (string, bool) {
	if s.available[name] {
		return name, true
	}
	g, ok := aliasIndex[name]
	if !ok {
		return "", false
	}
	for _, alias := range aliasGroups[g] {
		if s.available[alias] {
			return alias, true
		}
	}
	return "", false
}

// Available returns the declared expression names, sorted.
func (s *ExpressionSet) Available() []string {
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

// Has reports whether the avatar declares the exact name.
func (s *ExpressionSet) Has(name string) bool {
	return s.available[name]
}
