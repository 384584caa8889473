package ast_test

import (
	"testing"

	"github.com/cinderforge/forge/internal/forgefile/ast"
)

func ident(name string) ast.Ident {
	return ast.Ident{Name: name, NodeType: ast.NodeIdent}
}

func TestTaskStringSingleOutput(t *testing.T) {
	task := ast.Task{
		Name:     ident("build"),
		Outputs:  []ast.Node{ident("dist")},
		Commands: []ast.Command{{Command: "go build ./..."}},
	}

	want := "task build() -> dist {\n\tgo build ./...\n}"
	if got := task.String(); got != want {
		t.Fatalf("task.String() = %q, want %q", got, want)
	}
}

func TestTaskStringMultipleOutputs(t *testing.T) {
	task := ast.Task{
		Name:    ident("build"),
		Outputs: []ast.Node{ident("a"), ident("b")},
	}

	want := "task build() -> (a, b) {\n}"
	if got := task.String(); got != want {
		t.Fatalf("task.String() = %q, want %q", got, want)
	}
}

func TestTaskStringNoOutputsOmitsArrow(t *testing.T) {
	task := ast.Task{Name: ident("clean")}

	want := "task clean() {\n}"
	if got := task.String(); got != want {
		t.Fatalf("task.String() = %q, want %q", got, want)
	}
}

func TestTaskStringRendersRequiresClause(t *testing.T) {
	task := ast.Task{
		Name:     ident("build"),
		Requires: ast.String{Text: "go>=1.21", NodeType: ast.NodeString},
		Commands: []ast.Command{{Command: "go build ./..."}},
	}

	want := `task build() requires("go>=1.21") {` + "\n\tgo build ./...\n}"
	if got := task.String(); got != want {
		t.Fatalf("task.String() = %q, want %q", got, want)
	}
}

func TestTreeStringRoundTripsTaskOutputs(t *testing.T) {
	tree := ast.Tree{Nodes: []ast.Node{
		ast.Task{
			Name:         ident("build"),
			Dependencies: []ast.Node{ident("deps")},
			Outputs:      []ast.Node{ident("bin")},
			Commands:     []ast.Command{{Command: "go build -o bin ."}},
		},
	}}

	want := "task build(deps) -> bin {\n\tgo build -o bin .\n}\n"
	if got := tree.String(); got != want {
		t.Fatalf("tree.String() = %q, want %q", got, want)
	}
}
