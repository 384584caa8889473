package builtins_test

import (
	"runtime"
	"testing"

	"github.com/cinderforge/forge/internal/forgefile/builtins"
)

func TestJoin(t *testing.T) {
	fn, ok := builtins.Get("join")
	if !ok {
		t.Fatal("expected a \"join\" builtin")
	}
	got, err := fn("a", "b", "c")
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	want := "a/b/c"
	if runtime.GOOS == "windows" {
		want = `a\b\c`
	}
	if got != want {
		t.Fatalf("join(a, b, c) = %q, want %q", got, want)
	}
}

func TestExecRunsAndCapturesStdout(t *testing.T) {
	fn, ok := builtins.Get("exec")
	if !ok {
		t.Fatal("expected an \"exec\" builtin")
	}
	got, err := fn("echo hello")
	if err != nil {
		t.Fatalf("exec: %v", err)
	}
	if got != "hello" {
		t.Fatalf("exec(echo hello) = %q, want %q", got, "hello")
	}
}

func TestExecRejectsMultipleArguments(t *testing.T) {
	fn, _ := builtins.Get("exec")
	if _, err := fn("echo", "hello"); err == nil {
		t.Fatal("expected an error when exec is given more than one argument")
	}
}

func TestGetUnknownBuiltin(t *testing.T) {
	if _, ok := builtins.Get("nope"); ok {
		t.Fatal("expected ok=false for an undefined builtin")
	}
}
