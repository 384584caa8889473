package parser_test

import (
	"testing"

	"github.com/cinderforge/forge/internal/forgefile/ast"
	"github.com/cinderforge/forge/internal/forgefile/parser"
)

func TestParseAssignAndTask(t *testing.T) {
	input := "NAME := \"forge\"\n\n" +
		"# builds the binary\n" +
		"task build(\"main.go\") -> \"bin/app\" {\n" +
		"  go build -o bin/app .\n" +
		"}\n"

	tree, err := parser.New(input).Parse()
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(tree.Nodes) != 2 {
		t.Fatalf("len(tree.Nodes) = %d, want 2: %#v", len(tree.Nodes), tree.Nodes)
	}

	assign, ok := tree.Nodes[0].(ast.Assign)
	if !ok {
		t.Fatalf("tree.Nodes[0] = %T, want ast.Assign", tree.Nodes[0])
	}
	if assign.Name.Name != "NAME" {
		t.Fatalf("assign.Name.Name = %q, want %q", assign.Name.Name, "NAME")
	}
	str, ok := assign.Value.(ast.String)
	if !ok || str.Text != "forge" {
		t.Fatalf("assign.Value = %#v, want String{Text: %q}", assign.Value, "forge")
	}

	task, ok := tree.Nodes[1].(ast.Task)
	if !ok {
		t.Fatalf("tree.Nodes[1] = %T, want ast.Task", tree.Nodes[1])
	}
	if task.Name.Name != "build" {
		t.Fatalf("task.Name.Name = %q, want %q", task.Name.Name, "build")
	}
	if task.Docstring.Text != "builds the binary" {
		t.Fatalf("task.Docstring.Text = %q, want %q", task.Docstring.Text, "builds the binary")
	}
	if len(task.Dependencies) != 1 {
		t.Fatalf("len(task.Dependencies) = %d, want 1", len(task.Dependencies))
	}
	if len(task.Outputs) != 1 {
		t.Fatalf("len(task.Outputs) = %d, want 1", len(task.Outputs))
	}
	if len(task.Commands) != 1 || task.Commands[0].Command != "go build -o bin/app ." {
		t.Fatalf("task.Commands = %#v", task.Commands)
	}
}

func TestParseTaskNoDependenciesNoOutputs(t *testing.T) {
	tree, err := parser.New("task clean() {\n  rm -rf bin\n}\n").Parse()
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	task := tree.Nodes[0].(ast.Task)
	if len(task.Dependencies) != 0 || len(task.Outputs) != 0 {
		t.Fatalf("expected no dependencies or outputs, got %#v", task)
	}
}

func TestParseTaskRequires(t *testing.T) {
	input := `task build() requires("go>=1.21") -> "bin/app" {` + "\n" +
		"  go build -o bin/app .\n" +
		"}\n"
	tree, err := parser.New(input).Parse()
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	task := tree.Nodes[0].(ast.Task)
	if task.Requires.Text != "go>=1.21" {
		t.Fatalf("task.Requires.Text = %q, want %q", task.Requires.Text, "go>=1.21")
	}
	if len(task.Outputs) != 1 {
		t.Fatalf("len(task.Outputs) = %d, want 1", len(task.Outputs))
	}
}

func TestParseTaskNoRequiresLeavesStateUnchanged(t *testing.T) {
	tree, err := parser.New("task clean() -> \"bin\" {\n  rm -rf bin\n}\n").Parse()
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	task := tree.Nodes[0].(ast.Task)
	if task.Requires.Text != "" {
		t.Fatalf("task.Requires.Text = %q, want empty", task.Requires.Text)
	}
	if len(task.Outputs) != 1 {
		t.Fatalf("len(task.Outputs) = %d, want 1", len(task.Outputs))
	}
}

func TestParseIllegalTokenReturnsError(t *testing.T) {
	_, err := parser.New("123abc\n").Parse()
	if err == nil {
		t.Fatal("expected a parse error for input starting with a digit")
	}
}

func TestTreeStringRoundTrips(t *testing.T) {
	input := "task clean() {\n  rm -rf bin\n}\n"
	tree, err := parser.New(input).Parse()
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if tree.String() == "" {
		t.Fatal("Tree.String() returned an empty string for a non-empty tree")
	}
	again, err := parser.New(tree.String()).Parse()
	if err != nil {
		t.Fatalf("Parse(Tree.String()): %v", err)
	}
	if again.String() != tree.String() {
		t.Fatalf("round trip changed the tree: %q -> %q", tree.String(), again.String())
	}
}
