package graph_test

import (
	"reflect"
	"testing"

	"github.com/cinderforge/forge/internal/graph"
)

func buildDiamond(t *testing.T) *graph.Graph {
	t.Helper()
	g := graph.New()
	for _, name := range []string{"build", "lint", "test", "release"} {
		g.AddVertex(name)
	}
	// build -> lint, build -> test, {lint,test} -> release
	must := func(err error) {
		t.Helper()
		if err != nil {
			t.Fatalf("AddEdge: %v", err)
		}
	}
	must(g.AddEdge("build", "lint"))
	must(g.AddEdge("build", "test"))
	must(g.AddEdge("lint", "release"))
	must(g.AddEdge("test", "release"))
	return g
}

func TestLevelsDiamond(t *testing.T) {
	g := buildDiamond(t)
	levels, err := g.Levels()
	if err != nil {
		t.Fatalf("Levels: %v", err)
	}
	want := [][]string{
		{"build"},
		{"lint", "test"},
		{"release"},
	}
	if !reflect.DeepEqual(levels, want) {
		t.Fatalf("Levels() = %v, want %v", levels, want)
	}
}

func TestSortRespectsDependencies(t *testing.T) {
	g := buildDiamond(t)
	order, err := g.Sort()
	if err != nil {
		t.Fatalf("Sort: %v", err)
	}
	pos := make(map[string]int, len(order))
	for i, name := range order {
		pos[name] = i
	}
	if pos["build"] > pos["lint"] || pos["build"] > pos["test"] {
		t.Fatalf("build must come before lint and test: %v", order)
	}
	if pos["lint"] > pos["release"] || pos["test"] > pos["release"] {
		t.Fatalf("lint and test must come before release: %v", order)
	}
}

func TestLevelsDetectsCycle(t *testing.T) {
	g := graph.New()
	g.AddVertex("a")
	g.AddVertex("b")
	if err := g.AddEdge("a", "b"); err != nil {
		t.Fatal(err)
	}
	if err := g.AddEdge("b", "a"); err != nil {
		t.Fatal(err)
	}
	if _, err := g.Levels(); err == nil {
		t.Fatal("Levels should report a cycle")
	}
}

func TestAddEdgeUnknownVertex(t *testing.T) {
	g := graph.New()
	g.AddVertex("a")
	if err := g.AddEdge("a", "missing"); err == nil {
		t.Fatal("AddEdge should fail when the child vertex doesn't exist")
	}
	if err := g.AddEdge("missing", "a"); err == nil {
		t.Fatal("AddEdge should fail when the parent vertex doesn't exist")
	}
}

func TestContainsVertex(t *testing.T) {
	g := graph.New()
	if g.ContainsVertex("a") {
		t.Fatal("empty graph should not contain any vertex")
	}
	g.AddVertex("a")
	if !g.ContainsVertex("a") {
		t.Fatal("graph should contain a after AddVertex")
	}
}
