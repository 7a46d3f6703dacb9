package protocol

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/CyberHandLLC/archguard/internal/engine"
	"github.com/CyberHandLLC/archguard/internal/registry"
	"github.com/CyberHandLLC/archguard/internal/storage"
)

// Dispatcher resolves tool names against the registry and executes them.
// Both transport bindings share one dispatcher, so a request takes the same
// path regardless of how it arrived.
type Dispatcher struct {
	registry *registry.Registry
	events   storage.EventWriter
	logger   *zap.Logger
}

// NewDispatcher creates a dispatcher. events may be nil.
func NewDispatcher(reg *registry.Registry, events storage.EventWriter, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		registry: reg,
		events:   events,
		logger:   logger,
	}
}

// Call resolves and executes one tool. An unknown tool comes back as a
// DispatchError; a tool that runs and fails comes back as failed-result
// content with a nil error, so the two stay distinguishable to the caller.
func (d *Dispatcher) Call(ctx context.Context, name string, params map[string]any) (any, *DispatchError) {
	start := time.Now()

	tool, ok := d.registry.Get(name)
	if !ok {
		return nil, &DispatchError{
			Kind: KindUnknownTool,
			Msg:  fmt.Sprintf("unknown tool: %s", name),
		}
	}

	content, err := tool.Invoke(ctx, params)
	if err != nil {
		d.logger.Warn("tool execution failed",
			zap.String("tool", name),
			zap.Error(err),
		)
		content = engine.FailedResult("tool "+name, err)
	}

	d.writeEvent(name, params, content, time.Since(start))
	return content, nil
}

// Handle runs the full pipeline for one raw request line: parse the
// envelope, dispatch, and wrap the outcome in a response. It always returns
// exactly one response, including for malformed input.
func (d *Dispatcher) Handle(ctx context.Context, raw []byte) *Response {
	var req Request
	if err := json.Unmarshal(raw, &req); err != nil {
		id := extractID(raw)
		return errorResponse(id, "", "invalid JSON: "+err.Error())
	}
	if req.Type != TypeRequest {
		return errorResponse(req.ID, req.Name, fmt.Sprintf("unsupported message type %q", req.Type))
	}
	if req.ID == "" {
		return errorResponse("", req.Name, "missing required field: id")
	}
	if req.Name == "" {
		return errorResponse(req.ID, "", "missing required field: name")
	}

	content, derr := d.Call(ctx, req.Name, req.Params)
	if derr != nil {
		return errorResponse(req.ID, req.Name, derr.Msg)
	}

	return &Response{
		ID:        req.ID,
		Type:      TypeResponse,
		RequestID: req.ID,
		Name:      req.Name,
		Content:   content,
	}
}

func errorResponse(id, name, msg string) *Response {
	return &Response{
		ID:        id,
		Type:      TypeResponse,
		RequestID: id,
		Name:      name,
		Content:   ErrorContent{Error: msg},
	}
}

// writeEvent records the dispatch outcome. Success and issue counts are read
// from the serialized content so every result shape reports uniformly.
func (d *Dispatcher) writeEvent(name string, params map[string]any, content any, elapsed time.Duration) {
	if d.events == nil {
		return
	}

	var base struct {
		Success  *bool    `json:"success"`
		Errors   []string `json:"errors"`
		Warnings []string `json:"warnings"`
	}
	if raw, err := json.Marshal(content); err == nil {
		_ = json.Unmarshal(raw, &base)
	}

	path, _ := params["path"].(string)
	d.events.Write(&storage.ValidationEvent{
		RequestID:    uuid.New().String(),
		Tool:         name,
		Path:         path,
		Success:      base.Success == nil || *base.Success,
		ErrorCount:   len(base.Errors),
		WarningCount: len(base.Warnings),
		LatencyMs:    float32(float64(elapsed) / float64(time.Millisecond)),
		Timestamp:    time.Now(),
	})
}
