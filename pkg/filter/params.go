package filter

// Class groups channels with similar noise and motion characteristics.
// Root position and the head group move slowly and tolerate lag, so they
// smooth harder than fingers, which need responsiveness.
type Class int

const (
	// ClassBody covers trunk and limb rotation channels.
	ClassBody Class = iota

	// ClassHead covers head, neck and eye rotation channels.
	ClassHead

	// ClassFinger covers finger and hand rotation channels.
	ClassFinger

	// ClassRoot covers the root position channel.
	ClassRoot

	// ClassExpression covers facial expression scalars.
	ClassExpression
)

// String returns a short class name for logging.
func (c Class) String() string {
	switch c {
	case ClassBody:
		return "body"
	case ClassHead:
		return "head"
	case ClassFinger:
		return "finger"
	case ClassRoot:
		return "root"
	case ClassExpression:
		return "expression"
	default:
		return "unknown"
	}
}

// localParams tunes channels solved locally from the camera.
var localParams = map[Class]Params{
	ClassBody:       {MinCutoff: 1.0, Beta: 0.5, DCutoff: 1},
	ClassHead:       {MinCutoff: 0.5, Beta: 0.2, DCutoff: 1},
	ClassFinger:     {MinCutoff: 1.5, Beta: 1.0, DCutoff: 1},
	ClassRoot:       {MinCutoff: 0.3, Beta: 0.1, DCutoff: 1},
	ClassExpression: {MinCutoff: 1.2, Beta: 0.8, DCutoff: 1},
}

// networkParams tunes channels arriving over the network protocol. Cutoffs
// sit lower across the board: transport jitter shows up as noise the sender
// already considers solved, so we buy stability with extra lag.
var networkParams = map[Class]Params{
	ClassBody:       {MinCutoff: 0.5, Beta: 0.2, DCutoff: 1},
	ClassHead:       {MinCutoff: 0.3, Beta: 0.1, DCutoff: 1},
	ClassFinger:     {MinCutoff: 0.8, Beta: 0.4, DCutoff: 1},
	ClassRoot:       {MinCutoff: 0.2, Beta: 0.05, DCutoff: 1},
	ClassExpression: {MinCutoff: 0.8, Beta: 0.4, DCutoff: 1},
}

// ParamsFor returns the tuning for a channel class. networked selects the
// heavier-smoothing table used for protocol-delivered input.
func ParamsFor(c Class, networked bool) Params {
	table := localParams
	if networked {
		table = networkParams
	}
	if p, ok := table[c]; ok {
		return p
	}
	return Params{MinCutoff: 1.0, Beta: 0.5, DCutoff: 1}
}
