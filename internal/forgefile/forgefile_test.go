package forgefile_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cinderforge/forge/internal/forgefile"
)

func writeForgefile(t *testing.T, dir, contents string) string {
	t.Helper()
	path := filepath.Join(dir, forgefile.Name)
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestLoadParsesVarsAndTasks(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "main.go"), []byte("package main\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	writeForgefile(t, dir, `OUT := "bin/app"`+"\n\n"+
		`# builds the binary`+"\n"+
		`task build("main.go") -> OUT {`+"\n"+
		`  go build -o {{.OUT}} .`+"\n"+
		`}`+"\n")

	f, err := forgefile.Load(filepath.Join(dir, forgefile.Name))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if got := f.Vars["OUT"]; got != "bin/app" {
		t.Fatalf("Vars[OUT] = %q, want %q", got, "bin/app")
	}
	if !f.HasTask("build") {
		t.Fatal("expected a \"build\" task")
	}
	build := f.Tasks["build"]
	if build.Doc != "builds the binary" {
		t.Fatalf("Doc = %q, want %q", build.Doc, "builds the binary")
	}
	if want := "go build -o bin/app ."; len(build.Commands) != 1 || build.Commands[0] != want {
		t.Fatalf("Commands = %v, want [%s]", build.Commands, want)
	}
}

func TestLoadRejectsDuplicateTaskNames(t *testing.T) {
	dir := t.TempDir()
	writeForgefile(t, dir, "task build() {\n  echo one\n}\n\ntask build() {\n  echo two\n}\n")

	if _, err := forgefile.Load(filepath.Join(dir, forgefile.Name)); err == nil {
		t.Fatal("expected an error for a duplicate task name")
	}
}

func TestFindClosestTask(t *testing.T) {
	dir := t.TempDir()
	writeForgefile(t, dir, "task build() {\n  echo hi\n}\n\ntask test() {\n  echo hi\n}\n")

	f, err := forgefile.Load(filepath.Join(dir, forgefile.Name))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := f.FindClosestTask("buidl"); got != "build" {
		t.Fatalf("FindClosestTask(buidl) = %q, want %q", got, "build")
	}
}
