package stream

// State is the lifecycle position of a Session. States only move forward.
type State int

const (
	StateConnecting State = iota
	StateOpen
	StateClosing
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateClosing:
		return "closing"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// UpdateKind tags an Update.
type UpdateKind int

const (
	UpdateState UpdateKind = iota
	UpdateSent
	UpdateServerError
	UpdateDone
)

// Update is delivered to Config.Observer from the session loop. Stats is
// filled on every update; the other fields depend on Kind.
type Update struct {
	Kind        UpdateKind
	State       State
	Event       string
	ServerError ServerError
	Stats       Stats
	Err         error
}

// ServerError is an error reported by the server on an open stream.
type ServerError struct {
	Err        string
	StatusCode string
}

func (e ServerError) String() string {
	if e.StatusCode == "" {
		return e.Err
	}
	return e.Err + " " + e.StatusCode
}
