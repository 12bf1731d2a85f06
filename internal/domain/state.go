package domain

type State string

const (
	StateIdle       State = "idle"
	StateListening  State = "listening"
	StateProcessing State = "processing"
	StateSpeaking   State = "speaking"
)

func (s State) String() string {
	return string(s)
}

// Active reports whether one of the engines (or the resolver) owns the session.
func (s State) Active() bool {
	return s == StateListening || s == StateProcessing || s == StateSpeaking
}
