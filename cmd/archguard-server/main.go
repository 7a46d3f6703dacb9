package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/CyberHandLLC/archguard/internal/depgraph"
	"github.com/CyberHandLLC/archguard/internal/engine"
	"github.com/CyberHandLLC/archguard/internal/engine/rules"
	"github.com/CyberHandLLC/archguard/internal/httpapi"
	"github.com/CyberHandLLC/archguard/internal/protocol"
	"github.com/CyberHandLLC/archguard/internal/registry"
	"github.com/CyberHandLLC/archguard/internal/stdio"
	"github.com/CyberHandLLC/archguard/internal/storage"
)

func main() {
	stdioMode := flag.Bool("stdio", false, "serve the line-delimited stdio protocol instead of HTTP")
	flag.Parse()

	// Logger. In stdio mode stdout carries protocol responses, so all
	// logging goes to stderr.
	logger := mustBuildLogger(envOrDefault("ARCHGUARD_LOG_LEVEL", "info"), *stdioMode)
	defer logger.Sync() //nolint:errcheck // best-effort flush

	// Config from env
	httpPort := envOrDefault("PORT", "8001")
	projectRoot := envOrDefault("PROJECT_ROOT", ".")
	maxLines := envOrDefaultInt("ARCHGUARD_MAX_LINES", rules.DefaultMaxLines)
	fileWorkers := envOrDefaultInt("ARCHGUARD_FILE_WORKERS", engine.DefaultFileWorkers)
	policyFile := os.Getenv("ARCHGUARD_POLICY_FILE")

	logger.Info("starting archguard server",
		zap.Bool("stdio", *stdioMode),
		zap.String("project_root", projectRoot),
		zap.Int("max_lines", maxLines),
	)

	// Dependency policy — file override or built-in layered defaults.
	policy := depgraph.DefaultPolicy()
	if policyFile != "" {
		loaded, err := depgraph.LoadPolicy(policyFile)
		if err != nil {
			logger.Fatal("failed to load dependency policy", zap.String("file", policyFile), zap.Error(err))
		}
		policy = loaded
		logger.Info("dependency policy loaded", zap.String("file", policyFile))
	}
	checker := depgraph.NewChecker(policy, logger)

	// Orchestrator — rules wired up here, fixed for the process lifetime.
	orch := engine.NewOrchestrator(rules.Default(maxLines), fileWorkers, logger)

	// Tool registry + dispatcher, shared by both transports.
	events := storage.NewLogWriter(logger)
	defer events.Close()

	reg := registry.New()
	if err := registerTools(reg, orch, checker, projectRoot); err != nil {
		logger.Fatal("tool registration failed", zap.Error(err))
	}
	reg.Freeze()
	dispatcher := protocol.NewDispatcher(reg, events, logger)

	if *stdioMode {
		runStdio(dispatcher, logger)
		return
	}
	runHTTP(httpPort, &httpapi.Dependencies{
		Orchestrator: orch,
		DepChecker:   checker,
		Dispatcher:   dispatcher,
		ProjectRoot:  projectRoot,
		Logger:       logger,
	}, logger)
}

// registerTools wires the three canonical tools. Individual rules are not
// separate tools; the validate_architecture rules param selects a subset,
// so every caller goes through the one orchestrator path.
func registerTools(reg *registry.Registry, orch *engine.Orchestrator, checker *depgraph.Checker, projectRoot string) error {
	tools := []registry.ToolDefinition{
		{
			Name:        "validate_architecture",
			Description: "Run architecture rules against all source files under a path",
			ParamSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"path":  map[string]any{"type": "string"},
					"rules": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
				},
				"additionalProperties": false,
			},
			Handler: func(ctx context.Context, params map[string]any) (any, error) {
				root := stringParam(params, "path", projectRoot)
				return orch.ValidateProject(ctx, root, stringSliceParam(params, "rules")), nil
			},
			Enabled: true,
		},
		{
			Name:        "check_dependencies",
			Description: "Evaluate the full import graph under a path against the dependency policy",
			ParamSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"path": map[string]any{"type": "string"},
				},
				"additionalProperties": false,
			},
			Handler: func(ctx context.Context, params map[string]any) (any, error) {
				root := stringParam(params, "path", projectRoot)
				return checker.CheckProject(ctx, root), nil
			},
			Enabled: true,
		},
		{
			Name:        "check_dependency",
			Description: "Check whether one source module may import one target module",
			ParamSchema: map[string]any{
				"type":     "object",
				"required": []any{"source", "target"},
				"properties": map[string]any{
					"source": map[string]any{"type": "string"},
					"target": map[string]any{"type": "string"},
				},
				"additionalProperties": false,
			},
			Handler: func(_ context.Context, params map[string]any) (any, error) {
				source := stringParam(params, "source", "")
				target := stringParam(params, "target", "")
				return checker.CheckDependency(source, target), nil
			},
			Enabled: true,
		},
	}

	for _, def := range tools {
		if err := reg.Register(def); err != nil {
			return err
		}
	}
	return nil
}

func runHTTP(port string, deps *httpapi.Dependencies, logger *zap.Logger) {
	httpServer := &http.Server{
		Addr:         ":" + port,
		Handler:      httpapi.NewRouter(deps),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("http server listening", zap.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("http server failed", zap.Error(err))
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.Info("received signal, shutting down", zap.String("signal", sig.String()))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", zap.Error(err))
	}

	logger.Info("archguard server stopped")
}

func runStdio(dispatcher *protocol.Dispatcher, logger *zap.Logger) {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	srv := stdio.NewServer(os.Stdin, os.Stdout, dispatcher, logger)
	if err := srv.Run(ctx); err != nil && ctx.Err() == nil {
		logger.Error("stdio loop failed", zap.Error(err))
	}
	logger.Info("archguard server stopped")
}

func mustBuildLogger(level string, stderrOnly bool) *zap.Logger {
	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	output := []string{"stdout"}
	if stderrOnly {
		output = []string{"stderr"}
	}

	cfg := zap.Config{
		Level:            zap.NewAtomicLevelAt(zapLevel),
		Development:      false,
		Encoding:         "json",
		EncoderConfig:    zap.NewProductionEncoderConfig(),
		OutputPaths:      output,
		ErrorOutputPaths: []string{"stderr"},
	}

	logger, err := cfg.Build()
	if err != nil {
		panic(fmt.Sprintf("failed to build logger: %v", err))
	}
	return logger
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envOrDefaultInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func stringParam(params map[string]any, key, defaultVal string) string {
	if v, ok := params[key].(string); ok && v != "" {
		return v
	}
	return defaultVal
}

func stringSliceParam(params map[string]any, key string) []string {
	raw, ok := params[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
