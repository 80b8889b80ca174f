package server

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Entropy136/intention-test-extension/internal/common/cnst"
	"github.com/Entropy136/intention-test-extension/internal/session"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"
)

// QueryRequest is the validated form of a type=query payload.
type QueryRequest struct {
	SessionID    string
	Data         session.RawData
	JUnitVersion int
}

// RequestType sniffs the type discriminator without decoding the whole
// payload.
func RequestType(body []byte) string {
	return gjson.GetBytes(body, "type").String()
}

// SessionIDField returns the session_id carried by the payload, empty when
// absent.
func SessionIDField(body []byte) string {
	return gjson.GetBytes(body, "session_id").String()
}

// ParseQueryPayload validates a query payload and fills in defaults: a
// fresh session id when the client omits one, the configured JUnit version
// when junit_version is absent.
func ParseQueryPayload(body []byte, defaultJUnit int) (*QueryRequest, error) {
	if typ := RequestType(body); typ != cnst.RequestTypeQuery {
		return nil, fmt.Errorf("unsupported request type: %q", typ)
	}

	data := gjson.GetBytes(body, "data")
	if !data.IsObject() {
		return nil, fmt.Errorf("data must be a JSON object")
	}

	var raw session.RawData
	if err := json.Unmarshal([]byte(data.Raw), &raw); err != nil {
		return nil, fmt.Errorf("decode data: %w", err)
	}
	if err := raw.Validate(); err != nil {
		return nil, err
	}

	junit := defaultJUnit
	if v := gjson.GetBytes(body, "junit_version"); v.Exists() {
		junit = int(v.Int())
	}
	supported := false
	for _, s := range session.SupportedJUnitVersions {
		if junit == s {
			supported = true
		}
	}
	if !supported {
		return nil, fmt.Errorf("unsupported junit version: %d", junit)
	}

	id := SessionIDField(body)
	if id == "" {
		id = GenerateSessionID()
	}

	return &QueryRequest{
		SessionID:    id,
		Data:         raw,
		JUnitVersion: junit,
	}, nil
}

// GenerateSessionID returns a fresh 32-character lowercase hex id.
func GenerateSessionID() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")
}
