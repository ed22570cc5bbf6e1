package assistant

// State is the lifecycle of assistant requests as shown in the panel.
type State int

const (
	StateIdle State = iota
	StateSending
	StateSucceeded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateSending:
		return "sending"
	case StateSucceeded:
		return "ok"
	case StateFailed:
		return "failed"
	default:
		return "idle"
	}
}

// Tracker follows in-flight requests. It is not safe for concurrent use; the
// owner of the session drives it.
type Tracker struct {
	state    State
	inFlight int
}

func (t *Tracker) State() State { return t.state }

func (t *Tracker) Busy() bool { return t.inFlight > 0 }

func (t *Tracker) Begin() {
	t.inFlight++
	t.state = StateSending
}

// Finish records a completed request. The state leaves Sending only when the
// last outstanding request completes.
func (t *Tracker) Finish(failed bool) {
	if t.inFlight > 0 {
		t.inFlight--
	}
	if t.inFlight > 0 {
		return
	}
	if failed {
		t.state = StateFailed
	} else {
		t.state = StateSucceeded
	}
}
