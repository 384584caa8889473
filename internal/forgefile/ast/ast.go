// Package ast defines the abstract syntax tree produced by parsing a
// forgefile.
package ast

import (
	"strconv"
	"strings"
)

// NodeType identifies the kind of an AST node.
type NodeType int

// Type returns itself, letting NodeType be embedded into concrete node
// structs to satisfy Node.Type() for free.
func (t NodeType) Type() NodeType {
	return t
}

const (
	NodeComment  NodeType = iota // a comment, preceded by '#'
	NodeIdent                    // an identifier, e.g. a global variable or task name
	NodeString                   // a quoted string literal, e.g. "hello"
	NodeInteger                  // an integer literal, e.g. 27
	NodeFunction                 // a builtin function call, e.g. exec("go build")
	NodeAssign                   // a global variable assignment
	NodeTask                     // a task definition
	NodeCommand                  // a single shell command line inside a task body
)

func (t NodeType) String() string {
	switch t {
	case NodeComment:
		return "Comment"
	case NodeIdent:
		return "Ident"
	case NodeString:
		return "String"
	case NodeInteger:
		return "Integer"
	case NodeFunction:
		return "Function"
	case NodeAssign:
		return "Assign"
	case NodeTask:
		return "Task"
	case NodeCommand:
		return "Command"
	default:
		return "Unknown"
	}
}

// Tree is the full AST for a parsed forgefile: a flat, ordered list of
// top level nodes (comments, global variable assignments and task
// definitions).
type Tree struct {
	Nodes []Node
}

// Append adds node to the end of the tree.
func (t *Tree) Append(node Node) {
	t.Nodes = append(t.Nodes, node)
}

// String renders the tree back into forgefile source, one top level
// node per (blank-line separated) block. Used by `forge lint` as a
// canonical formatter.
func (t Tree) String() string {
	var sb strings.Builder
	for i, node := range t.Nodes {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		switch n := node.(type) {
		case Comment:
			sb.WriteString("# " + n.Text)
		default:
			sb.WriteString(node.String())
		}
	}
	sb.WriteString("\n")
	return sb.String()
}

// Node is a single element of the AST.
type Node interface {
	Type() NodeType
	String() string
	// Literal returns the node's Go-native value where that makes
	// sense (an Ident's name, a String's text); nodes with no scalar
	// value (Task, Function, Assign, Command) return their String().
	Literal() string
}

// Comment holds a single comment's text, with the leading '#' and
// surrounding whitespace already stripped by the lexer/parser.
type Comment struct {
	Text string
	NodeType
}

func (c Comment) String() string  { return c.Text }
func (c Comment) Literal() string { return c.Text }

// Ident holds the name of an identifier: a global variable or a task.
type Ident struct {
	Name string
	NodeType
}

func (i Ident) String() string  { return i.Name }
func (i Ident) Literal() string { return i.Name }

// String holds a quoted string literal's text (unquoted).
type String struct {
	Text string
	NodeType
}

func (s String) String() string  { return s.Text }
func (s String) Literal() string { return s.Text }

// Integer holds an integer literal.
type Integer struct {
	Value int
	NodeType
}

func (i Integer) String() string  { return strconv.Itoa(i.Value) }
func (i Integer) Literal() string { return i.String() }

// Function is a call to one of the builtin functions, e.g.
// exec("go build ./...").
type Function struct {
	Name      Ident
	Arguments []Node
	NodeType
}

func (f Function) String() string {
	var sb strings.Builder
	sb.WriteString(f.Name.Name)
	sb.WriteString("(")
	for i, arg := range f.Arguments {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(arg.String())
	}
	sb.WriteString(")")
	return sb.String()
}

func (f Function) Literal() string { return f.String() }

// Assign is a global variable assignment, e.g. VERSION := "1.2.3".
type Assign struct {
	Name  Ident
	Value Node
	NodeType
}

func (a Assign) String() string {
	return a.Name.Name + " := " + a.Value.String()
}

func (a Assign) Literal() string { return a.String() }

// Command is a single shell command line inside a task body.
type Command struct {
	Command string
	NodeType
}

func (c Command) String() string  { return c.Command }
func (c Command) Literal() string { return c.Command }

// Task is a full task definition.
type Task struct {
	Name         Ident
	Docstring    Comment
	Dependencies []Node
	Requires     String // a "requires(...)" version constraint, Text == "" if absent
	Outputs      []Node
	Commands     []Command
	NodeType
}

func (t Task) String() string {
	var sb strings.Builder
	sb.WriteString("task ")
	sb.WriteString(t.Name.Name)
	sb.WriteString("(")
	for i, dep := range t.Dependencies {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(dep.String())
	}
	sb.WriteString(")")
	if t.Requires.Text != "" {
		sb.WriteString(` requires("`)
		sb.WriteString(t.Requires.Text)
		sb.WriteString(`")`)
	}
	switch len(t.Outputs) {
	case 0:
	case 1:
		sb.WriteString(" -> ")
		sb.WriteString(t.Outputs[0].String())
	default:
		sb.WriteString(" -> (")
		for i, out := range t.Outputs {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(out.String())
		}
		sb.WriteString(")")
	}
	sb.WriteString(" {")
	for _, cmd := range t.Commands {
		sb.WriteString("\n\t")
		sb.WriteString(cmd.Command)
	}
	sb.WriteString("\n}")
	return sb.String()
}

func (t Task) Literal() string { return t.String() }
