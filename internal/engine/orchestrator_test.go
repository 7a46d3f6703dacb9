package engine

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
)

// stubRule is a minimal rule for orchestrator tests.
type stubRule struct {
	name    string
	applies func(string) bool
	check   func(ctx context.Context, f *File) (*RuleResult, error)
}

func (r *stubRule) Name() string { return r.name }

func (r *stubRule) AppliesTo(path string) bool {
	if r.applies == nil {
		return true
	}
	return r.applies(path)
}

func (r *stubRule) Check(ctx context.Context, f *File) (*RuleResult, error) {
	return r.check(ctx, f)
}

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

func TestOrchestrator_CleanProject(t *testing.T) {
	root := writeTree(t, map[string]string{
		"app/page.tsx":      "export default function Page() { return null; }\n",
		"lib/util.ts":       "export const id = (x) => x;\n",
		"styles/global.css": "body { margin: 0; }\n",
	})

	clean := &stubRule{name: "noop", check: func(_ context.Context, _ *File) (*RuleResult, error) {
		return &RuleResult{}, nil
	}}
	orch := NewOrchestrator([]Rule{clean}, 2, zap.NewNop())

	result := orch.ValidateProject(context.Background(), root, nil)
	if !result.Success {
		t.Fatalf("expected success, got errors=%v", result.Errors)
	}
	// css is not a source file and must not be counted
	if !strings.Contains(result.Summary, "checked 2 files") {
		t.Errorf("unexpected summary: %s", result.Summary)
	}
}

func TestOrchestrator_SkipsDependencyDirs(t *testing.T) {
	root := writeTree(t, map[string]string{
		"app/page.tsx":                "export default function Page() { return null; }\n",
		"node_modules/pkg/index.js":   "module.exports = {};\n",
		".next/static/chunks/main.js": "var x;\n",
	})

	var seen []string
	spy := &stubRule{name: "spy", check: func(_ context.Context, f *File) (*RuleResult, error) {
		seen = append(seen, f.Path)
		return &RuleResult{}, nil
	}}
	orch := NewOrchestrator([]Rule{spy}, 1, zap.NewNop())
	orch.ValidateProject(context.Background(), root, nil)

	if len(seen) != 1 || seen[0] != "app/page.tsx" {
		t.Errorf("expected only app/page.tsx to be checked, got %v", seen)
	}
}

func TestOrchestrator_RuleErrorBecomesFileError(t *testing.T) {
	root := writeTree(t, map[string]string{
		"app/good.ts": "export const a = 1;\n",
		"app/bad.ts":  "export const b = 2;\n",
	})

	failing := &stubRule{name: "flaky", check: func(_ context.Context, f *File) (*RuleResult, error) {
		if strings.HasSuffix(f.Path, "bad.ts") {
			return nil, errors.New("boom")
		}
		return &RuleResult{}, nil
	}}
	orch := NewOrchestrator([]Rule{failing}, 2, zap.NewNop())

	result := orch.ValidateProject(context.Background(), root, nil)
	if result.Success {
		t.Fatal("expected failure")
	}
	if len(result.Errors) != 1 {
		t.Fatalf("expected exactly one error, got %v", result.Errors)
	}
	if !strings.Contains(result.Errors[0], "app/bad.ts") || !strings.Contains(result.Errors[0], "flaky") {
		t.Errorf("error should name file and rule: %s", result.Errors[0])
	}
	// the good file must still have been processed
	if !strings.Contains(result.Summary, "checked 2 files") {
		t.Errorf("run aborted early: %s", result.Summary)
	}
}

func TestOrchestrator_RulePanicContained(t *testing.T) {
	root := writeTree(t, map[string]string{
		"app/a.ts": "export const a = 1;\n",
		"app/b.ts": "export const b = 2;\n",
	})

	panicking := &stubRule{name: "panicky", check: func(_ context.Context, f *File) (*RuleResult, error) {
		if strings.HasSuffix(f.Path, "a.ts") {
			panic("unexpected content shape")
		}
		return &RuleResult{}, nil
	}}
	orch := NewOrchestrator([]Rule{panicking}, 2, zap.NewNop())

	result := orch.ValidateProject(context.Background(), root, nil)
	if result.Success {
		t.Fatal("expected failure from contained panic")
	}
	if len(result.Errors) != 1 || !strings.Contains(result.Errors[0], "panic") {
		t.Errorf("expected one panic-derived error, got %v", result.Errors)
	}
}

func TestOrchestrator_RuleSubset(t *testing.T) {
	root := writeTree(t, map[string]string{"app/a.ts": "export const a = 1;\n"})

	var ranFirst, ranSecond bool
	first := &stubRule{name: "first", check: func(_ context.Context, _ *File) (*RuleResult, error) {
		ranFirst = true
		return &RuleResult{}, nil
	}}
	second := &stubRule{name: "second", check: func(_ context.Context, _ *File) (*RuleResult, error) {
		ranSecond = true
		return &RuleResult{}, nil
	}}
	orch := NewOrchestrator([]Rule{first, second}, 1, zap.NewNop())

	result := orch.ValidateProject(context.Background(), root, []string{"second"})
	if !result.Success {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if ranFirst || !ranSecond {
		t.Errorf("subset not honored: first=%v second=%v", ranFirst, ranSecond)
	}
}

func TestOrchestrator_UnknownRuleName(t *testing.T) {
	root := writeTree(t, map[string]string{"app/a.ts": "export const a = 1;\n"})
	orch := NewOrchestrator(nil, 1, zap.NewNop())

	result := orch.ValidateProject(context.Background(), root, []string{"nope"})
	if result.Success {
		t.Fatal("expected failure for unknown rule name")
	}
	if len(result.Errors) != 1 || !strings.Contains(result.Errors[0], "nope") {
		t.Errorf("expected error naming the unknown rule, got %v", result.Errors)
	}
}

func TestOrchestrator_AppliesToFilter(t *testing.T) {
	root := writeTree(t, map[string]string{
		"components/Widget.tsx": "export default function Widget() { return null; }\n",
		"lib/util.ts":           "export const id = (x) => x;\n",
	})

	var seen []string
	tsxOnly := &stubRule{
		name:    "tsx-only",
		applies: func(path string) bool { return strings.HasSuffix(path, ".tsx") },
		check: func(_ context.Context, f *File) (*RuleResult, error) {
			seen = append(seen, f.Path)
			return &RuleResult{}, nil
		},
	}
	orch := NewOrchestrator([]Rule{tsxOnly}, 1, zap.NewNop())
	orch.ValidateProject(context.Background(), root, nil)

	if len(seen) != 1 || seen[0] != "components/Widget.tsx" {
		t.Errorf("AppliesTo not honored: %v", seen)
	}
}

func TestOrchestrator_MissingRoot(t *testing.T) {
	orch := NewOrchestrator(nil, 1, zap.NewNop())
	result := orch.ValidateProject(context.Background(), filepath.Join(t.TempDir(), "absent"), nil)
	if result.Success {
		t.Fatal("expected failure for missing root")
	}
	if len(result.Errors) == 0 {
		t.Error("expected an error entry describing the scan failure")
	}
}
