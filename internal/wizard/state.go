package wizard

// State is one step of the setup flow.
type State string

const (
	StateDiscover       State = "discover"
	StateKeyCheck       State = "key-check"
	StateConnectionTest State = "connection-test"
	StateKeyCopy        State = "key-copy"
	StateVerify         State = "verify"
	StateComplete       State = "complete"
)

type transitionKind int

const (
	kindAdvance transitionKind = iota
	kindAbort
	kindComplete
)

// Transition is what a state decides.
type Transition struct {
	kind transitionKind
	next State

	reason   string
	guidance string
	err      error
	// silent aborts are user choices and aren't reported as failures.
	silent bool
}

func advance(next State) Transition {
	return Transition{kind: kindAdvance, next: next}
}

func abort(reason string, err error) Transition {
	return Transition{kind: kindAbort, reason: reason, err: err}
}

func abortSilently(reason string) Transition {
	return Transition{kind: kindAbort, reason: reason, silent: true}
}

func complete() Transition {
	return Transition{kind: kindComplete}
}

func (t Transition) withGuidance(g string) Transition {
	t.guidance = g
	return t
}

// Outcome is the result of a wizard run.
type Outcome struct {
	Completed bool
	TVIP      string
	// TVName is the friendly name picked during discovery, if any.
	TVName string
	// KeymapPath is set when a remote-button mapping was written.
	KeymapPath string

	// Reason explains an abort. Guidance holds follow-up instructions.
	Reason   string
	Guidance string
	Err      error
	// Cancelled is set when the user backed out.
	Cancelled bool

	Trace []State
}
