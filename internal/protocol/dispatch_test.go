package protocol

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/CyberHandLLC/archguard/internal/engine"
	"github.com/CyberHandLLC/archguard/internal/registry"
)

func testDispatcher(t *testing.T) *Dispatcher {
	t.Helper()
	reg := registry.New()
	err := reg.Register(registry.ToolDefinition{
		Name: "echo",
		Handler: func(_ context.Context, params map[string]any) (any, error) {
			return map[string]any{"success": true, "params": params}, nil
		},
		Enabled: true,
	})
	if err != nil {
		t.Fatal(err)
	}
	err = reg.Register(registry.ToolDefinition{
		Name: "always_fails",
		Handler: func(_ context.Context, _ map[string]any) (any, error) {
			return nil, errors.New("validator exploded")
		},
		Enabled: true,
	})
	if err != nil {
		t.Fatal(err)
	}
	reg.Freeze()
	return NewDispatcher(reg, nil, zap.NewNop())
}

func TestCall_UnknownTool(t *testing.T) {
	d := testDispatcher(t)

	_, derr := d.Call(context.Background(), "nope", nil)
	if derr == nil {
		t.Fatal("expected dispatch error")
	}
	if derr.Kind != KindUnknownTool {
		t.Errorf("kind = %v, want KindUnknownTool", derr.Kind)
	}
	if !strings.Contains(derr.Msg, "nope") {
		t.Errorf("error should name the tool: %s", derr.Msg)
	}
}

func TestCall_HandlerErrorBecomesFailedResult(t *testing.T) {
	d := testDispatcher(t)

	content, derr := d.Call(context.Background(), "always_fails", nil)
	if derr != nil {
		t.Fatalf("handler failure must not be a dispatch error: %v", derr)
	}
	vr, ok := content.(*engine.ValidationResult)
	if !ok {
		t.Fatalf("expected failed-result content, got %T", content)
	}
	if vr.Success {
		t.Error("failed handler must yield success=false")
	}
	if len(vr.Errors) != 1 || !strings.Contains(vr.Errors[0], "validator exploded") {
		t.Errorf("expected the handler error in the result, got %v", vr.Errors)
	}
}

func TestHandle_WellFormedRequest(t *testing.T) {
	d := testDispatcher(t)

	resp := d.Handle(context.Background(), []byte(`{"id":"req-1","type":"request","name":"echo","params":{"path":"app"}}`))
	if resp.ID != "req-1" || resp.RequestID != "req-1" {
		t.Errorf("response must echo request id: id=%q request_id=%q", resp.ID, resp.RequestID)
	}
	if resp.Type != TypeResponse || resp.Name != "echo" {
		t.Errorf("unexpected envelope: type=%q name=%q", resp.Type, resp.Name)
	}
	if _, isErr := resp.Content.(ErrorContent); isErr {
		t.Errorf("unexpected error content: %+v", resp.Content)
	}
}

func TestHandle_MalformedJSON(t *testing.T) {
	d := testDispatcher(t)

	resp := d.Handle(context.Background(), []byte(`{not json`))
	ec, ok := resp.Content.(ErrorContent)
	if !ok {
		t.Fatalf("expected error content, got %+v", resp.Content)
	}
	if !strings.Contains(ec.Error, "invalid JSON") {
		t.Errorf("unexpected error: %s", ec.Error)
	}
	if resp.ID != "" {
		t.Errorf("unparseable line cannot echo an id, got %q", resp.ID)
	}
}

func TestHandle_MissingFields(t *testing.T) {
	d := testDispatcher(t)

	tests := []struct {
		name string
		line string
		want string
	}{
		{"missing id", `{"type":"request","name":"echo"}`, "missing required field: id"},
		{"missing name", `{"id":"r1","type":"request"}`, "missing required field: name"},
		{"wrong type", `{"id":"r1","type":"response","name":"echo"}`, "unsupported message type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := d.Handle(context.Background(), []byte(tt.line))
			ec, ok := resp.Content.(ErrorContent)
			if !ok {
				t.Fatalf("expected error content, got %+v", resp.Content)
			}
			if !strings.Contains(ec.Error, tt.want) {
				t.Errorf("error = %q, want substring %q", ec.Error, tt.want)
			}
		})
	}
}

func TestHandle_UnknownToolEchoesID(t *testing.T) {
	d := testDispatcher(t)

	resp := d.Handle(context.Background(), []byte(`{"id":"r9","type":"request","name":"ghost"}`))
	if resp.ID != "r9" || resp.RequestID != "r9" {
		t.Errorf("unknown-tool response must echo the id: %+v", resp)
	}
	ec, ok := resp.Content.(ErrorContent)
	if !ok || !strings.Contains(ec.Error, "ghost") {
		t.Errorf("expected error naming the tool, got %+v", resp.Content)
	}
}

func TestExtractID(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"present", `{"id":"abc","name":"x"}`, "abc"},
		{"absent", `{"name":"x"}`, ""},
		{"not json", `garbage`, ""},
		{"id wrong type", `{"id":7}`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractID([]byte(tt.raw)); got != tt.want {
				t.Errorf("extractID(%s) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}
