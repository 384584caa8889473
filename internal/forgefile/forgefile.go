// Package forgefile ties the forgefile DSL (its lexer, parser, ast and
// builtins, in the subpackages alongside this file) to a concrete,
// loaded File: the parsed global variables and tasks a forgefile
// defines, ready for internal/runner to turn into a dependency graph
// and execute.
package forgefile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/cinderforge/forge/internal/forgefile/ast"
	"github.com/cinderforge/forge/internal/forgefile/builtins"
	"github.com/cinderforge/forge/internal/forgefile/parser"
	"github.com/cinderforge/forge/internal/logger"
	"github.com/cinderforge/forge/internal/task"
	"github.com/lithammer/fuzzysearch/fuzzy"
)

// Name is the canonical forgefile filename forge looks for.
const Name = "forgefile"

// File represents a concrete, loaded forgefile.
type File struct {
	Vars  map[string]string    // global variables, in NAME: value form, builtins already evaluated
	Tasks map[string]task.Task // task name -> task
	Globs map[string][]string  // glob pattern -> expanded, absolute matches (computed lazily, cached)
	Path  string               // absolute path to the forgefile
	Dir   string                // the directory the forgefile sits in
}

// HasTask reports whether f declares a task named name.
func (f *File) HasTask(name string) bool {
	_, ok := f.Tasks[name]
	return ok
}

func (f *File) hasGlob(pattern string) bool {
	expanded, ok := f.Globs[pattern]
	return ok && len(expanded) > 0
}

// Env returns f's global variables rendered as `KEY=value` pairs,
// suitable for passing to a running task's environment.
func (f *File) Env() []string {
	env := make([]string, 0, len(f.Vars))
	for k, v := range f.Vars {
		env = append(env, k+"="+v)
	}
	return env
}

// ExpandGlobs expands every glob dependency and output pattern across
// every task once, caching the result in f.Globs so tasks sharing a
// pattern only pay for the directory walk a single time.
func (f *File) ExpandGlobs() error {
	for _, t := range f.Tasks {
		for _, pattern := range append(append([]string{}, t.GlobDependencies...), t.GlobOutputs...) {
			if f.hasGlob(pattern) {
				continue
			}
			matches, err := task.ExpandGlobs(f.Dir, pattern)
			if err != nil {
				return err
			}
			f.Globs[pattern] = matches
		}
	}
	return nil
}

// ResolvedFileDependencies returns t's complete file dependency list:
// its literal file dependencies plus every file its glob dependency
// patterns expanded to, via f.Globs. ExpandGlobs must have been called
// first.
func (f *File) ResolvedFileDependencies(t task.Task) []string {
	files := append([]string{}, t.FileDependencies...)
	for _, pattern := range t.GlobDependencies {
		files = append(files, f.Globs[pattern]...)
	}
	return files
}

// FindClosestTask returns the task name in f that most closely matches
// name (for "did you mean...?" suggestions), or "" if nothing is close
// enough.
func (f *File) FindClosestTask(name string) string {
	names := make([]string, 0, len(f.Tasks))
	for n := range f.Tasks {
		names = append(names, n)
	}
	matches := fuzzy.RankFindNormalizedFold(name, names)
	sort.Sort(matches)
	if len(matches) > 0 {
		return matches[0].Target
	}

	// No name contains name as a subsequence (e.g. a transposition typo
	// like "buidl"): fall back to the smallest edit distance, accepted up
	// to half of name's length.
	sort.Strings(names)
	best, bestDist := "", len(name)/2+1
	for _, n := range names {
		if d := fuzzy.LevenshteinDistance(name, n); d < bestDist {
			best, bestDist = n, d
		}
	}
	return best
}

// Find climbs the directory tree from start towards stop looking for a
// forgefile, returning its absolute path. An error is returned if stop
// is reached with no forgefile found.
func Find(log logger.Logger, start, stop string) (string, error) {
	dir := start
	for {
		log.Debug("looking in %s for a forgefile", dir)
		entries, err := os.ReadDir(dir)
		if err != nil {
			return "", fmt.Errorf("could not read directory %q: %w", dir, err)
		}
		for _, e := range entries {
			if !e.IsDir() && e.Name() == Name {
				return filepath.Abs(filepath.Join(dir, e.Name()))
			}
		}
		if dir == stop {
			return "", errors.New("no forgefile found")
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("no forgefile found")
		}
		dir = parent
	}
}

// Load reads the forgefile at path, parses it and converts the AST
// into a concrete File rooted at path's directory.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading forgefile %q: %w", path, err)
	}
	tree, err := parser.New(string(data)).Parse()
	if err != nil {
		return nil, fmt.Errorf("parsing forgefile %q: %w", path, err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	return New(tree, filepath.Dir(abs))
}

// New converts a parsed forgefile AST into a concrete File. root is the
// absolute directory to use for glob expansion, typically the
// forgefile's own directory.
func New(tree ast.Tree, root string) (*File, error) {
	f := &File{
		Vars:  make(map[string]string),
		Tasks: make(map[string]task.Task),
		Globs: make(map[string][]string),
		Path:  filepath.Join(root, Name),
		Dir:   root,
	}

	for _, node := range tree.Nodes {
		switch node.Type() {
		case ast.NodeAssign:
			assign, ok := node.(ast.Assign)
			if !ok {
				return nil, fmt.Errorf("ast node claims NodeAssign but is %T", node)
			}
			value, err := f.evalAssign(assign)
			if err != nil {
				return nil, err
			}
			f.Vars[assign.Name.Name] = value

		case ast.NodeTask:
			taskNode, ok := node.(ast.Task)
			if !ok {
				return nil, fmt.Errorf("ast node claims NodeTask but is %T", node)
			}
			t, err := task.New(taskNode, root, f.Vars)
			if err != nil {
				return nil, err
			}
			if f.HasTask(t.Name) {
				return nil, fmt.Errorf("forgefile already contains a task named %q, duplicate tasks not allowed", t.Name)
			}
			for _, pattern := range append(append([]string{}, t.GlobDependencies...), t.GlobOutputs...) {
				if _, ok := f.Globs[pattern]; !ok {
					f.Globs[pattern] = nil
				}
			}
			f.Tasks[t.Name] = t
		}
	}
	return f, nil
}

// evalAssign evaluates the right-hand side of a global variable
// assignment: a literal string, a reference to another already-assigned
// ident, or a builtin function call.
func (f *File) evalAssign(assign ast.Assign) (string, error) {
	switch assign.Value.Type() {
	case ast.NodeString:
		return assign.Value.Literal(), nil
	case ast.NodeIdent:
		val, ok := f.Vars[assign.Value.Literal()]
		if !ok {
			return "", fmt.Errorf("%s := %s references undefined variable %q", assign.Name.Name, assign.Value, assign.Value.Literal())
		}
		return val, nil
	case ast.NodeFunction:
		function, ok := assign.Value.(ast.Function)
		if !ok {
			return "", fmt.Errorf("ast node claims NodeFunction but is %T", assign.Value)
		}
		args := make([]string, 0, len(function.Arguments))
		for _, arg := range function.Arguments {
			if arg.Type() != ast.NodeString {
				return "", fmt.Errorf("builtin functions take only string arguments, got %s", arg.Type())
			}
			args = append(args, arg.Literal())
		}
		fn, ok := builtins.Get(function.Name.Name)
		if !ok {
			return "", fmt.Errorf("undefined builtin function: %s", function.Name.Name)
		}
		val, err := fn(args...)
		if err != nil {
			return "", fmt.Errorf("builtin %s: %w", function.Name.Name, err)
		}
		return val, nil
	default:
		return "", fmt.Errorf("unexpected node in assignment %s: %s", assign.Value.Type(), assign.Value)
	}
}
