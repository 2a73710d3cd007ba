package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	coreerrors "crosscheck/internal/core/errors"
)

func writeBundle(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "bundle.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadBundleInlineAndByReference(t *testing.T) {
	a := newTestApp(t)
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "after_b.py"), []byte("result = foo()\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	path := writeBundle(t, dir, `{
  "version": 1,
  "files": [
    {
      "path": "service.py",
      "tasks": {
        "task-a": {"before": "def foo():\n    pass\n", "after": "def bar():\n    pass\n"},
        "task-b": {"before": "def foo():\n    pass\n", "after_path": "after_b.py"}
      }
    }
  ]
}`)

	req, err := a.LoadBundle(path)
	if err != nil {
		t.Fatalf("load bundle: %v", err)
	}
	if req.BundlePath != path {
		t.Errorf("bundle path = %q", req.BundlePath)
	}
	if len(req.Files) != 1 || req.Files[0].Path != "service.py" {
		t.Fatalf("unexpected files: %+v", req.Files)
	}
	if got := req.Files[0].Tasks["task-b"].After; got != "result = foo()\n" {
		t.Errorf("referenced text not resolved: %q", got)
	}

	// The loaded request is directly analyzable.
	res, err := a.Analyze(context.Background(), req)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if res.TotalConflicts != 1 {
		t.Fatalf("expected the rename conflict, got %+v", res.Files)
	}
}

func TestLoadBundleRejectsInvalidDocuments(t *testing.T) {
	a := newTestApp(t)
	cases := []struct {
		name    string
		content string
	}{
		{"not json", "{"},
		{"wrong version", `{"version": 2, "files": [{"path": "a.py", "tasks": {"x": {}, "y": {}}}]}`},
		{"no files", `{"version": 1, "files": []}`},
		{"single task", `{"version": 1, "files": [{"path": "a.py", "tasks": {"only": {}}}]}`},
		{"unknown field", `{"version": 1, "extra": true, "files": [{"path": "a.py", "tasks": {"x": {}, "y": {}}}]}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeBundle(t, t.TempDir(), tc.content)
			if _, err := a.LoadBundle(path); err == nil {
				t.Errorf("expected error for %s", tc.name)
			}
		})
	}
}

func TestLoadBundleRejectsInlineAndReferenceTogether(t *testing.T) {
	a := newTestApp(t)
	path := writeBundle(t, t.TempDir(), `{
  "version": 1,
  "files": [
    {
      "path": "a.py",
      "tasks": {
        "task-a": {"before": "x = 1", "before_path": "x.py"},
        "task-b": {}
      }
    }
  ]
}`)
	_, err := a.LoadBundle(path)
	if !coreerrors.IsCode(err, coreerrors.CodeValidationError) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestLoadBundleRejectsEscapingReference(t *testing.T) {
	a := newTestApp(t)
	path := writeBundle(t, t.TempDir(), `{
  "version": 1,
  "files": [
    {
      "path": "a.py",
      "tasks": {
        "task-a": {"before_path": "../../etc/passwd"},
        "task-b": {}
      }
    }
  ]
}`)
	if _, err := a.LoadBundle(path); err == nil {
		t.Fatal("expected error for path escaping the bundle directory")
	}
}

func TestLoadBundleMissingFile(t *testing.T) {
	a := newTestApp(t)
	_, err := a.LoadBundle(filepath.Join(t.TempDir(), "absent.json"))
	if !coreerrors.IsCode(err, coreerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
