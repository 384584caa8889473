// Package parser implements forge's parser for the forgefile DSL.
//
// The forgefile grammar is small and mostly declarative, so the parser
// is a simple top-down, single-token-lookahead parser: it switches on
// the token it encounters, dispatches to the matching parseXXX method
// to build the appropriate ast.Node, and appends it to the tree.
//
// If the parser encounters either an ERROR token from the lexer or an
// error of its own making, it returns immediately with whatever tree
// it managed to build and the error.
package parser

import (
	"errors"
	"strings"

	"github.com/cinderforge/forge/internal/forgefile/ast"
	"github.com/cinderforge/forge/internal/forgefile/lexer"
	"github.com/cinderforge/forge/internal/forgefile/token"
)

// Parser is forge's forgefile parser.
type Parser struct {
	lexer     lexer.Tokeniser // the lexer
	input     string          // raw input, for error line context
	buffer    [3]token.Token  // lookahead buffer
	peekCount int
}

// New creates a new Parser for input.
func New(input string) *Parser {
	return &Parser{
		lexer: lexer.New(input),
		input: input,
	}
}

// Parse parses the entire input to EOF or error and returns the full
// AST.
func (p *Parser) Parse() (ast.Tree, error) {
	tree := ast.Tree{}

	for next := p.next(); !next.Is(token.EOF); {
		switch {
		case next.Is(token.ERROR):
			return tree, errors.New(next.Value)

		case next.Is(token.HASH):
			comment := p.parseComment()
			switch {
			case p.next().Is(token.TASK):
				task, err := p.parseTask(comment)
				if err != nil {
					return tree, err
				}
				tree.Append(task)
			default:
				p.backup()
				tree.Append(comment)
			}

		case next.Is(token.IDENT):
			assign, err := p.parseAssign(next)
			if err != nil {
				return tree, err
			}
			tree.Append(assign)

		case next.Is(token.TASK):
			task, err := p.parseTask(ast.Comment{NodeType: ast.NodeComment})
			if err != nil {
				return tree, err
			}
			tree.Append(task)

		default:
			return tree, illegalToken{
				expected:    []token.Type{token.HASH, token.IDENT, token.TASK},
				encountered: next,
				line:        p.getLine(next),
			}
		}
		next = p.next()
	}

	return tree, nil
}

// next returns, and consumes, the next token from the lexer.
func (p *Parser) next() token.Token {
	if p.peekCount > 0 {
		p.peekCount--
	} else {
		p.buffer[0] = p.lexer.NextToken()
	}
	return p.buffer[p.peekCount]
}

// backup steps back one token in the stream.
func (p *Parser) backup() {
	p.peekCount++
}

// expect consumes the next token, returning an error unless it is of
// the expected type.
func (p *Parser) expect(expected token.Type) error {
	switch got := p.next(); {
	case got.Is(token.ERROR):
		return errors.New(got.Value)
	case !got.Is(expected):
		return illegalToken{
			expected:    []token.Type{expected},
			encountered: got,
			line:        p.getLine(got),
		}
	default:
		return nil
	}
}

// parseComment parses a COMMENT token into a comment node, the HASH
// has already been consumed.
func (p *Parser) parseComment() ast.Comment {
	return ast.Comment{Text: p.next().Value, NodeType: ast.NodeComment}
}

// parseIdent parses an IDENT token into an ident node.
func (p *Parser) parseIdent(ident token.Token) ast.Ident {
	return ast.Ident{Name: ident.Value, NodeType: ast.NodeIdent}
}

// parseString parses a STRING token into a string node.
func (p *Parser) parseString(s token.Token) ast.String {
	return ast.String{Text: s.Value, NodeType: ast.NodeString}
}

// parseFunction parses a builtin function call, the opening LPAREN has
// not yet been consumed.
func (p *Parser) parseFunction(ident token.Token) (ast.Function, error) {
	args := []ast.Node{}

	if err := p.expect(token.LPAREN); err != nil {
		return ast.Function{}, err
	}

	for next := p.next(); !next.Is(token.RPAREN); {
		switch {
		case next.Is(token.STRING):
			args = append(args, p.parseString(next))
		case next.Is(token.IDENT):
			args = append(args, p.parseIdent(next))
		case next.Is(token.COMMA):
			// absorb
		case next.Is(token.ERROR):
			return ast.Function{}, errors.New(next.Value)
		default:
			return ast.Function{}, illegalToken{
				expected:    []token.Type{token.STRING, token.IDENT, token.RPAREN},
				encountered: next,
				line:        p.getLine(next),
			}
		}
		next = p.next()
	}

	return ast.Function{
		Name:      p.parseIdent(ident),
		Arguments: args,
		NodeType:  ast.NodeFunction,
	}, nil
}

// parseAssign parses a global variable assignment; the DECLARE token
// is known to exist but not yet consumed.
func (p *Parser) parseAssign(ident token.Token) (ast.Assign, error) {
	name := p.parseIdent(ident)

	if err := p.expect(token.DECLARE); err != nil {
		return ast.Assign{}, err
	}

	var rhs ast.Node
	var err error

	switch next := p.next(); {
	case next.Is(token.STRING):
		rhs = p.parseString(next)
	case next.Is(token.IDENT):
		if p.next().Is(token.LPAREN) {
			p.backup()
			rhs, err = p.parseFunction(next)
			if err != nil {
				return ast.Assign{}, err
			}
		} else {
			p.backup()
			rhs = p.parseIdent(next)
		}
	case next.Is(token.ERROR):
		return ast.Assign{}, errors.New(next.Value)
	default:
		return ast.Assign{}, illegalToken{
			expected:    []token.Type{token.STRING, token.IDENT},
			encountered: next,
			line:        p.getLine(next),
		}
	}

	return ast.Assign{Name: name, Value: rhs, NodeType: ast.NodeAssign}, nil
}

// parseTask parses a task definition; 'task' has already been
// consumed, doc is its docstring (empty if there wasn't one).
func (p *Parser) parseTask(doc ast.Comment) (ast.Task, error) {
	name := p.parseIdent(p.next())

	if err := p.expect(token.LPAREN); err != nil {
		return ast.Task{}, err
	}

	dependencies, err := p.parseTaskDependencies()
	if err != nil {
		return ast.Task{}, err
	}

	requires, err := p.parseTaskRequires()
	if err != nil {
		return ast.Task{}, err
	}

	outputs, err := p.parseTaskOutputs()
	if err != nil {
		return ast.Task{}, err
	}

	if err := p.expect(token.LBRACE); err != nil {
		return ast.Task{}, err
	}

	commands, err := p.parseTaskCommands()
	if err != nil {
		return ast.Task{}, err
	}

	return ast.Task{
		Name:         name,
		Docstring:    doc,
		Dependencies: dependencies,
		Requires:     requires,
		Outputs:      outputs,
		Commands:     commands,
		NodeType:     ast.NodeTask,
	}, nil
}

// parseTaskRequires parses an optional 'requires("...")' clause. If no
// REQUIRES token is found, the parser backs up so its state is
// unchanged.
func (p *Parser) parseTaskRequires() (ast.String, error) {
	if !p.next().Is(token.REQUIRES) {
		p.backup()
		return ast.String{}, nil
	}

	if err := p.expect(token.LPAREN); err != nil {
		return ast.String{}, err
	}

	next := p.next()
	if next.Is(token.ERROR) {
		return ast.String{}, errors.New(next.Value)
	}
	if !next.Is(token.STRING) {
		return ast.String{}, illegalToken{
			expected:    []token.Type{token.STRING},
			encountered: next,
			line:        p.getLine(next),
		}
	}
	requires := p.parseString(next)

	if err := p.expect(token.RPAREN); err != nil {
		return ast.String{}, err
	}

	return requires, nil
}

// parseTaskDependencies parses the parenthesised dependency list, the
// opening LPAREN has already been consumed.
func (p *Parser) parseTaskDependencies() ([]ast.Node, error) {
	dependencies := []ast.Node{}
	for next := p.next(); !next.Is(token.RPAREN); {
		switch {
		case next.Is(token.STRING):
			dependencies = append(dependencies, p.parseString(next))
		case next.Is(token.IDENT):
			dependencies = append(dependencies, p.parseIdent(next))
		case next.Is(token.COMMA):
			// absorb
		case next.Is(token.ERROR):
			return nil, errors.New(next.Value)
		default:
			return nil, illegalToken{
				expected:    []token.Type{token.STRING, token.IDENT, token.RPAREN},
				encountered: next,
				line:        p.getLine(next),
			}
		}
		next = p.next()
	}
	return dependencies, nil
}

// parseTaskOutputs parses an optional '-> output' or '-> (outputs...)'
// clause. If no OUTPUT token is found, the parser backs up so its state
// is unchanged.
func (p *Parser) parseTaskOutputs() ([]ast.Node, error) {
	outputs := []ast.Node{}
	if !p.next().Is(token.OUTPUT) {
		p.backup()
		return outputs, nil
	}

	switch next := p.next(); {
	case next.Is(token.STRING):
		outputs = append(outputs, p.parseString(next))
	case next.Is(token.IDENT):
		outputs = append(outputs, p.parseIdent(next))
	case next.Is(token.LPAREN):
		for tok := p.next(); !tok.Is(token.RPAREN); {
			switch {
			case tok.Is(token.STRING):
				outputs = append(outputs, p.parseString(tok))
			case tok.Is(token.IDENT):
				outputs = append(outputs, p.parseIdent(tok))
			case tok.Is(token.COMMA):
				// absorb
			case tok.Is(token.ERROR):
				return nil, errors.New(tok.Value)
			default:
				return nil, illegalToken{
					expected:    []token.Type{token.STRING, token.IDENT, token.COMMA},
					encountered: tok,
					line:        p.getLine(tok),
				}
			}
			tok = p.next()
		}
	case next.Is(token.ERROR):
		return nil, errors.New(next.Value)
	default:
		return nil, illegalToken{
			expected:    []token.Type{token.STRING, token.IDENT, token.LPAREN},
			encountered: next,
			line:        p.getLine(next),
		}
	}

	return outputs, nil
}

// parseTaskCommands parses the command lines in a task body, the
// opening LBRACE has already been consumed.
func (p *Parser) parseTaskCommands() ([]ast.Command, error) {
	commands := []ast.Command{}
	for {
		next := p.next()
		if next.Is(token.ERROR) {
			return commands, errors.New(next.Value)
		}
		if next.Is(token.RBRACE) {
			break
		}
		if next.Is(token.COMMAND) {
			commands = append(commands, p.parseCommand(next))
		}
	}
	return commands, nil
}

// parseCommand parses a COMMAND token into a command node.
func (p *Parser) parseCommand(command token.Token) ast.Command {
	return ast.Command{Command: command.Value, NodeType: ast.NodeCommand}
}

// getLine returns the trimmed source line a token appears on, used to
// give parser errors context.
func (p *Parser) getLine(tok token.Token) string {
	lines := strings.Split(p.input, "\n")
	idx := tok.Line - 1
	if idx < 0 || idx >= len(lines) {
		return ""
	}
	return strings.TrimSpace(lines[idx])
}
