// Package httpapi is the HTTP transport binding: fixed convenience routes
// plus the generic tool-dispatch route, sharing one dispatcher with the
// stdio binding.
package httpapi

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/CyberHandLLC/archguard/internal/depgraph"
	"github.com/CyberHandLLC/archguard/internal/engine"
	"github.com/CyberHandLLC/archguard/internal/protocol"
)

// Dependencies holds shared state injected into all HTTP handlers.
type Dependencies struct {
	Orchestrator *engine.Orchestrator
	DepChecker   *depgraph.Checker
	Dispatcher   *protocol.Dispatcher
	ProjectRoot  string
	Logger       *zap.Logger
}

// NewRouter builds the HTTP mux with all routes wired up.
func NewRouter(deps *Dependencies) http.Handler {
	mux := http.NewServeMux()

	// Fixed convenience routes, thin shims over the same validators the
	// dispatch route uses.
	mux.HandleFunc("/validate", requireMethod(http.MethodPost, deps.handleValidate))
	mux.HandleFunc("/check-dependency", requireMethod(http.MethodPost, deps.handleCheckDependency))

	// Generic tool dispatch.
	mux.HandleFunc("/mcp", requireMethod(http.MethodPost, deps.handleDispatch))

	// Health check
	mux.HandleFunc("/health", requireMethod(http.MethodGet, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}))

	return corsMiddleware(requestLogging(mux, deps.Logger))
}

// requireMethod restricts a route to one HTTP method, matching the
// behavior of method-qualified ServeMux patterns (Go 1.22+), which the
// current toolchain does not support.
func requireMethod(m string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != m {
			w.Header().Set("Allow", m)
			http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
			return
		}
		h(w, r)
	}
}
