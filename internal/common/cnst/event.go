package cnst

// EventType discriminates the payloads emitted on a session's event stream.
type EventType string

const (
	// EventStatus marks lifecycle transitions of a generation session.
	EventStatus EventType = "status"
	// EventMsg carries the session's conversation transcript.
	EventMsg EventType = "msg"
)

func (t EventType) String() string {
	return string(t)
}

// Statuses carried by EventStatus events.
const (
	StatusStart  = "start"
	StatusFinish = "finish"
	StatusError  = "error"
)

// Chat roles used in session transcripts.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Request types accepted by the generation endpoint.
const (
	RequestTypeQuery = "query"
	RequestTypeStop  = "stop"
)
