package session

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/Entropy136/intention-test-extension/internal/common/cnst"
)

// SupportedJUnitVersions lists the JUnit major versions a session may target.
var SupportedJUnitVersions = []int{4, 5}

// Message is a single role/content record in a session's transcript.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// RawData holds the validated parameters of one generation request.
// All five fields are required and non-empty; Validate enforces this
// before a session may be constructed.
type RawData struct {
	TargetFocalMethod string `json:"target_focal_method"`
	TargetFocalFile   string `json:"target_focal_file"`
	TestDesc          string `json:"test_desc"`
	ProjectPath       string `json:"project_path"`
	FocalFilePath     string `json:"focal_file_path"`
}

// RequiredFields names the mandatory RawData fields in wire order.
var RequiredFields = []string{
	"target_focal_method",
	"target_focal_file",
	"test_desc",
	"project_path",
	"focal_file_path",
}

// Validate reports every missing required field in a single error.
func (d RawData) Validate() error {
	var missing []string
	for field, value := range map[string]string{
		"target_focal_method": d.TargetFocalMethod,
		"target_focal_file":   d.TargetFocalFile,
		"test_desc":           d.TestDesc,
		"project_path":        d.ProjectPath,
		"focal_file_path":     d.FocalFilePath,
	} {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		// Stable order for error messages and tests.
		ordered := make([]string, 0, len(missing))
		for _, field := range RequiredFields {
			for _, m := range missing {
				if m == field {
					ordered = append(ordered, field)
				}
			}
		}
		return fmt.Errorf("missing required fields: %s", strings.Join(ordered, ", "))
	}
	return nil
}

// Writer is the sink a session emits events into. Implementations append
// the trailing newline and forward the payload to the underlying transport;
// write failures propagate to the emitting caller unretried.
type Writer interface {
	Write(p []byte) error
}

// WriterFunc adapts a plain function to the Writer interface.
type WriterFunc func(p []byte) error

func (f WriterFunc) Write(p []byte) error { return f(p) }

// Executor drives the generation work for one session. The session core
// only stores the handle; the owning request handler invokes it.
type Executor interface {
	Execute(ctx context.Context, s *Session) error
}

// Session represents one in-flight generation request: its validated input,
// its conversation transcript, and its cooperative stop flag.
//
// The owning work loop is the sole writer of every field except the stop
// flag, which a concurrent cancellation request may flip through
// RequestStop. The flag is atomic; nothing else needs locking.
type Session struct {
	id           string
	data         RawData
	junitVersion int
	writer       Writer
	executor     Executor
	messages     []Message
	stop         atomic.Bool
}

// New constructs a session after validating its inputs. The session is not
// registered anywhere; registration is the caller's responsibility.
func New(id string, data RawData, junitVersion int, w Writer, exec Executor) (*Session, error) {
	if id == "" {
		return nil, fmt.Errorf("session id must not be empty")
	}
	if err := data.Validate(); err != nil {
		return nil, err
	}
	if !isSupportedJUnit(junitVersion) {
		return nil, fmt.Errorf("unsupported junit version: %d", junitVersion)
	}
	if w == nil {
		return nil, fmt.Errorf("writer must not be nil")
	}
	return &Session{
		id:           id,
		data:         data,
		junitVersion: junitVersion,
		writer:       w,
		executor:     exec,
	}, nil
}

func isSupportedJUnit(v int) bool {
	for _, s := range SupportedJUnitVersions {
		if v == s {
			return true
		}
	}
	return false
}

// ID returns the session's immutable identifier.
func (s *Session) ID() string { return s.id }

// Data returns the validated request parameters.
func (s *Session) Data() RawData { return s.data }

// JUnitVersion returns the JUnit major version the session targets.
func (s *Session) JUnitVersion() int { return s.junitVersion }

// Executor returns the opaque work-driver handle stored at construction.
func (s *Session) Executor() Executor { return s.executor }

// RequestStop flips the cooperative stop flag. The transition is monotonic:
// once set it never resets, and repeated calls are harmless. Safe to call
// from any goroutine, typically a different request than the one running
// the work loop.
func (s *Session) RequestStop() {
	s.stop.Store(true)
}

// ShouldStop reports whether cancellation has been requested. The work loop
// polls this between generation steps and terminates gracefully when true.
func (s *Session) ShouldStop() bool {
	return s.stop.Load()
}

// Messages returns a copy of the current transcript.
func (s *Session) Messages() []Message {
	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// UpdateMessages replaces the transcript and emits one msg event carrying
// the full updated transcript. The transcript only ever grows over a
// session's lifetime; callers pass the previous messages plus their
// additions.
func (s *Session) UpdateMessages(msgs []Message) error {
	s.messages = msgs
	return s.emit(cnst.EventMsg, msgData{Messages: msgs})
}

// WriteStartMessage emits the status event that opens the stream. It is
// called exactly once per session, before any msg event.
func (s *Session) WriteStartMessage() error {
	return s.emit(cnst.EventStatus, statusData{
		Status:    cnst.StatusStart,
		SessionID: s.id,
	})
}

// WriteFinishMessage emits the terminal status event for normal completion.
// Mutually exclusive with WriteErrorMessage for the same session.
func (s *Session) WriteFinishMessage() error {
	return s.emit(cnst.EventStatus, statusData{
		Status:    cnst.StatusFinish,
		SessionID: s.id,
	})
}

// WriteErrorMessage emits the terminal status event for the failure and
// cancellation paths.
func (s *Session) WriteErrorMessage(reason string) error {
	return s.emit(cnst.EventStatus, statusData{
		Status:    cnst.StatusError,
		SessionID: s.id,
		Message:   reason,
	})
}

type statusData struct {
	Status    string `json:"status"`
	SessionID string `json:"session_id"`
	Message   string `json:"message,omitempty"`
}

type msgData struct {
	Messages []Message `json:"messages"`
}

type event struct {
	Type cnst.EventType `json:"type"`
	Data any            `json:"data"`
}

// emit serializes one event and hands it to the writer synchronously.
// Nothing is buffered; each call is one write.
func (s *Session) emit(typ cnst.EventType, data any) error {
	payload, err := json.Marshal(event{Type: typ, Data: data})
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", typ, err)
	}
	if err := s.writer.Write(payload); err != nil {
		return fmt.Errorf("write %s event: %w", typ, err)
	}
	return nil
}
