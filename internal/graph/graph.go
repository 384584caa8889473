// Package graph implements a specialised directed acyclic graph (DAG)
// and the topological sorting forge's task dependency system needs —
// both a flat run order and a leveled one (layers of mutually
// independent tasks). internal/runner uses the flat order to arrange
// its final report; it schedules tasks on demand rather than level by
// level.
package graph

import (
	"fmt"
	"sort"
)

// Vertex represents a single node in the graph, identified by name.
type Vertex struct {
	parents  map[string]struct{}
	children map[string]struct{}
	Name     string
}

// NewVertex constructs a Vertex with no edges yet.
func NewVertex(name string) *Vertex {
	return &Vertex{
		Name:     name,
		parents:  make(map[string]struct{}),
		children: make(map[string]struct{}),
	}
}

// InDegree returns the number of incoming edges to this vertex.
func (v *Vertex) InDegree() int {
	return len(v.parents)
}

// OutDegree returns the number of outgoing edges to this vertex.
func (v *Vertex) OutDegree() int {
	return len(v.children)
}

// Graph is a DAG designed to hold forge tasks.
type Graph struct {
	vertices map[string]*Vertex
}

// New constructs and returns a new Graph.
func New() *Graph {
	return &Graph{vertices: make(map[string]*Vertex)}
}

// ContainsVertex returns whether a vertex with the given name exists.
func (g *Graph) ContainsVertex(name string) bool {
	_, ok := g.vertices[name]
	return ok
}

// AddVertex adds a vertex with the given name to the graph, if one
// already exists with that name it is left untouched (so edges already
// added to it survive a duplicate AddVertex call).
func (g *Graph) AddVertex(name string) {
	if g.ContainsVertex(name) {
		return
	}
	g.vertices[name] = NewVertex(name)
}

// AddEdge creates an edge from parent to child, meaning parent must run
// before child.
func (g *Graph) AddEdge(parent, child string) error {
	parentVertex, ok := g.vertices[parent]
	if !ok {
		return fmt.Errorf("graph: parent vertex %q not in graph", parent)
	}
	childVertex, ok := g.vertices[child]
	if !ok {
		return fmt.Errorf("graph: child vertex %q not in graph", child)
	}

	parentVertex.children[child] = struct{}{}
	childVertex.parents[parent] = struct{}{}
	return nil
}

// Sort returns a flat topological run order: every vertex appears after
// all of its parents. Ties (vertices with no ordering constraint
// between them) are broken alphabetically for determinism.
func (g *Graph) Sort() ([]string, error) {
	levels, err := g.Levels()
	if err != nil {
		return nil, err
	}
	order := make([]string, 0, len(g.vertices))
	for _, level := range levels {
		order = append(order, level...)
	}
	return order, nil
}

// Levels returns the vertices grouped into layers: level 0 holds every
// vertex with no dependencies, level 1 holds every vertex whose
// dependencies are all satisfied once level 0 has run, and so on. Tasks
// within a level have no ordering constraint between them and are safe
// to run concurrently. Sort flattens this into a single order, which
// internal/runner uses to order its results. An error is returned if
// the graph contains a cycle.
func (g *Graph) Levels() ([][]string, error) {
	indegree := make(map[string]int, len(g.vertices))
	for name, v := range g.vertices {
		indegree[name] = v.InDegree()
	}

	remaining := len(g.vertices)
	var levels [][]string

	for remaining > 0 {
		var level []string
		for name, deg := range indegree {
			if deg == 0 {
				level = append(level, name)
			}
		}
		if len(level) == 0 {
			return nil, fmt.Errorf("graph: cycle detected among remaining %d vertices", remaining)
		}
		sort.Strings(level)
		levels = append(levels, level)

		for _, name := range level {
			delete(indegree, name)
			remaining--
			for child := range g.vertices[name].children {
				indegree[child]--
			}
		}
	}
	return levels, nil
}
