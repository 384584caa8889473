package runner_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cinderforge/forge/internal/forgefile"
	"github.com/cinderforge/forge/internal/logger"
	"github.com/cinderforge/forge/internal/runner"
	"github.com/cinderforge/forge/internal/settings"
)

func loadForgefile(t *testing.T, dir, contents string) *forgefile.File {
	t.Helper()
	path := filepath.Join(dir, forgefile.Name)
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	f, err := forgefile.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return f
}

func TestRunExecutesTaskAndWritesOutput(t *testing.T) {
	dir := t.TempDir()
	f := loadForgefile(t, dir, "task build() {\n  echo hello > out.txt\n}\n")

	r := runner.New(settings.Default(), logger.Noop{})
	defer r.Stop()

	results, err := r.Run(context.Background(), f, "build")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !results.Ok() {
		t.Fatalf("Results.Ok() = false, results: %#v", results)
	}

	data, err := os.ReadFile(filepath.Join(dir, "out.txt"))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != "hello\n" {
		t.Fatalf("out.txt = %q, want %q", data, "hello\n")
	}
}

func TestRunSkipsUnchangedDependencies(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "src.txt"), []byte("v1"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	f := loadForgefile(t, dir, `task build("src.txt") {`+"\n  echo built >> log.txt\n}\n")

	r := runner.New(settings.Default(), logger.Noop{})
	defer r.Stop()

	if _, err := r.Run(context.Background(), f, "build"); err != nil {
		t.Fatalf("first Run: %v", err)
	}

	f2 := loadForgefile(t, dir, `task build("src.txt") {`+"\n  echo built >> log.txt\n}\n")
	r2 := runner.New(settings.Default(), logger.Noop{})
	defer r2.Stop()

	results, err := r2.Run(context.Background(), f2, "build")
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if !results[0].Skipped {
		t.Fatalf("expected the second run to be skipped, got %#v", results[0])
	}
}

func TestRunDependencyOrderWithSingleWorker(t *testing.T) {
	dir := t.TempDir()
	f := loadForgefile(t, dir,
		"task first() {\n  echo one > order.txt\n}\n\n"+
			"task second(first) {\n  echo two >> order.txt\n}\n")

	s := settings.Default()
	s.Workers = 1
	r := runner.New(s, logger.Noop{})
	defer r.Stop()

	results, err := r.Run(context.Background(), f, "second")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !results.Ok() {
		t.Fatalf("Results.Ok() = false, results: %#v", results)
	}

	data, err := os.ReadFile(filepath.Join(dir, "order.txt"))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != "one\ntwo\n" {
		t.Fatalf("order.txt = %q, want %q", data, "one\ntwo\n")
	}
}

func TestRunUnknownTaskSuggestsClosestMatch(t *testing.T) {
	dir := t.TempDir()
	f := loadForgefile(t, dir, "task build() {\n  echo hi\n}\n")

	r := runner.New(settings.Default(), logger.Noop{})
	defer r.Stop()

	_, err := r.Run(context.Background(), f, "biuld")
	if err == nil {
		t.Fatal("expected an error for an unknown task")
	}
	if !strings.Contains(err.Error(), `"build"`) {
		t.Fatalf("error %q does not suggest %q", err, "build")
	}
}

func TestRunRespectsTaskDependencyOrder(t *testing.T) {
	dir := t.TempDir()
	f := loadForgefile(t, dir,
		"task first() {\n  echo one > order.txt\n}\n\n"+
			"task second(first) {\n  echo two >> order.txt\n}\n")

	r := runner.New(settings.Default(), logger.Noop{})
	defer r.Stop()

	results, err := r.Run(context.Background(), f, "second")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !results.Ok() {
		t.Fatalf("Results.Ok() = false, results: %#v", results)
	}

	data, err := os.ReadFile(filepath.Join(dir, "order.txt"))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != "one\ntwo\n" {
		t.Fatalf("order.txt = %q, want %q", data, "one\ntwo\n")
	}
}
