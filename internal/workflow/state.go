package workflow

// State is the position of a session in the upload workflow.
type State int

const (
	Idle State = iota
	Presigning
	Ready
	Uploading
	Submitting
	Done
	Failed
)

var stateNames = [...]string{
	Idle:       "idle",
	Presigning: "presigning",
	Ready:      "ready",
	Uploading:  "uploading",
	Submitting: "submitting",
	Done:       "done",
	Failed:     "failed",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// Busy reports whether a network call is in flight in this state.
func (s State) Busy() bool {
	return s == Presigning || s == Uploading || s == Submitting
}
