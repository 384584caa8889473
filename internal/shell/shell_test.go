package shell_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/cinderforge/forge/internal/iostream"
	"github.com/cinderforge/forge/internal/shell"
)

func TestIntegratedRunnerCapturesOutput(t *testing.T) {
	r := shell.NewIntegratedRunner(0)
	result, err := r.Run(context.Background(), "echo hello", iostream.Null(), "test", nil, "")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !result.Ok() {
		t.Fatalf("Result.Ok() = false, status %d, stderr %q", result.Status, result.Stderr)
	}
	if result.Stdout != "hello\n" {
		t.Fatalf("Stdout = %q, want %q", result.Stdout, "hello\n")
	}
}

func TestIntegratedRunnerUsesWorkingDirectory(t *testing.T) {
	dir := t.TempDir()
	r := shell.NewIntegratedRunner(0)
	if _, err := r.Run(context.Background(), "echo here > marker.txt", iostream.Null(), "test", nil, dir); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "marker.txt")); err != nil {
		t.Fatalf("expected marker.txt to be created inside %s: %v", dir, err)
	}
}

func TestIntegratedRunnerReportsNonZeroStatus(t *testing.T) {
	r := shell.NewIntegratedRunner(0)
	result, err := r.Run(context.Background(), "exit 3", iostream.Null(), "test", nil, "")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Ok() || result.Status != 3 {
		t.Fatalf("Result = %#v, want status 3 and Ok()=false", result)
	}
}
