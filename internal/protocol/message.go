// Package protocol defines the request/response envelope shared by every
// transport binding and the dispatch pipeline that drives it.
package protocol

import "encoding/json"

// Message types.
const (
	TypeRequest  = "request"
	TypeResponse = "response"
)

// Request is one incoming tool invocation.
type Request struct {
	ID     string         `json:"id"`
	Type   string         `json:"type"`
	Name   string         `json:"name"`
	Params map[string]any `json:"params"`
}

// Response always echoes the originating request's id, both as ID and as
// RequestID, so callers can correlate on either field.
type Response struct {
	ID        string `json:"id,omitempty"`
	Type      string `json:"type"`
	RequestID string `json:"request_id,omitempty"`
	Name      string `json:"name,omitempty"`
	Content   any    `json:"content"`
}

// ErrorContent is the content body of an error response.
type ErrorContent struct {
	Error string `json:"error"`
}

// ErrorKind classifies dispatch failures that bypass tool execution.
type ErrorKind int

const (
	// KindProtocol is a malformed request envelope: bad JSON or missing
	// required fields. It never reaches a tool.
	KindProtocol ErrorKind = iota + 1

	// KindUnknownTool is a well-formed envelope naming an unregistered or
	// disabled tool.
	KindUnknownTool
)

// DispatchError is a failure surfaced by the protocol layer itself, as
// opposed to a tool that ran and failed.
type DispatchError struct {
	Kind ErrorKind
	Msg  string
}

func (e *DispatchError) Error() string { return e.Msg }

// extractID pulls the id field out of a raw request line, if the line is
// JSON enough to carry one. Used to echo ids on parse failures.
func extractID(raw []byte) string {
	var probe struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return ""
	}
	return probe.ID
}
