package httpapi

import (
	"net/http"
)

// ValidateRequest is the JSON body for POST /validate.
type ValidateRequest struct {
	Path    string          `json:"path"`
	Options ValidateOptions `json:"options"`
}

// ValidateOptions narrows a validation run.
type ValidateOptions struct {
	Rules []string `json:"rules,omitempty"`
}

// CheckDependencyRequest is the JSON body for POST /check-dependency.
type CheckDependencyRequest struct {
	Source  string         `json:"source"`
	Target  string         `json:"target"`
	Options map[string]any `json:"options,omitempty"`
}

// DispatchRequest is the JSON body for POST /mcp.
type DispatchRequest struct {
	Name       string         `json:"name"`
	ToolCallID string         `json:"tool_call_id"`
	Arguments  map[string]any `json:"arguments"`
}

// DispatchResponse is the JSON envelope returned by POST /mcp.
type DispatchResponse struct {
	Name       string `json:"name"`
	ToolCallID string `json:"tool_call_id"`
	Content    any    `json:"content"`
}

// ErrorResp is a standard error response body.
type ErrorResp struct {
	Error string `json:"error"`
}

// handleValidate implements POST /validate. A run that finds errors is a 400
// so CI callers can branch on status alone; the body carries the detail
// either way.
func (d *Dependencies) handleValidate(w http.ResponseWriter, r *http.Request) {
	var req ValidateRequest
	if err := readJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResp{Error: "invalid JSON body"})
		return
	}

	root := req.Path
	if root == "" {
		root = d.ProjectRoot
	}

	result := d.Orchestrator.ValidateProject(r.Context(), root, req.Options.Rules)
	status := http.StatusOK
	if !result.Success {
		status = http.StatusBadRequest
	}
	writeJSON(w, status, result)
}

// handleCheckDependency implements POST /check-dependency.
func (d *Dependencies) handleCheckDependency(w http.ResponseWriter, r *http.Request) {
	var req CheckDependencyRequest
	if err := readJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResp{Error: "invalid JSON body"})
		return
	}
	if req.Source == "" || req.Target == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResp{Error: "source and target are required"})
		return
	}

	writeJSON(w, http.StatusOK, d.DepChecker.CheckDependency(req.Source, req.Target))
}

// handleDispatch implements POST /mcp, the generic tool-dispatch route.
// Unknown tools and malformed envelopes are 400s; a tool that runs and
// fails is a 200 whose content carries success=false.
func (d *Dependencies) handleDispatch(w http.ResponseWriter, r *http.Request) {
	var req DispatchRequest
	if err := readJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResp{Error: "invalid JSON body"})
		return
	}
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResp{Error: "missing required field: name"})
		return
	}

	content, derr := d.Dispatcher.Call(r.Context(), req.Name, req.Arguments)
	if derr != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResp{Error: derr.Msg})
		return
	}

	writeJSON(w, http.StatusOK, DispatchResponse{
		Name:       req.Name,
		ToolCallID: req.ToolCallID,
		Content:    content,
	})
}
