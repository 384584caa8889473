// Package lexer implements forge's semantic lexer for the forgefile
// DSL.
//
// It uses a concurrent, state-function based lexer similar to that
// described by Rob Pike in his talk "Lexical Scanning in Go", based on
// the implementation of text/template in the Go standard library.
package lexer

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/cinderforge/forge/internal/forgefile/token"
)

const eof = -1 // sigil for marking an EOF as a rune

// Tokeniser is satisfied by anything that can hand back a stream of
// tokens one at a time, letting the parser depend on an interface
// rather than the concrete lexer.
type Tokeniser interface {
	NextToken() token.Token
}

// lexFn represents the state of the scanner as a function that returns
// the next state.
type lexFn func(*lexer) lexFn

// lexer is forge's semantic lexer for forgefiles.
type lexer struct {
	tokens chan token.Token // channel of lexed tokens, received by the parser
	input  string           // the string being scanned
	start  int              // start position of the current token
	pos    int              // current position in the input
	line   int              // current line in the input
	width  int              // width of the last rune read from input
}

// New creates a new lexer for input and sets it running in its own
// goroutine, returning it as a Tokeniser.
func New(input string) Tokeniser {
	l := &lexer{
		tokens: make(chan token.Token),
		input:  input,
		line:   1,
	}
	go l.run()
	return l
}

// NextToken returns the next token from the input. Called by the
// parser, not the lexing goroutine.
func (l *lexer) NextToken() token.Token {
	return <-l.tokens
}

// run starts the state machine for the lexer.
func (l *lexer) run() {
	for state := lexStart; state != nil; {
		state = state(l)
	}
	close(l.tokens)
}

// rest returns the string from the current lexer position to the end
// of the input.
func (l *lexer) rest() string {
	if l.atEOF() {
		return ""
	}
	return l.input[l.pos:]
}

// all returns the string from the lexer start position to the current
// position.
func (l *lexer) all() string {
	if l.start >= len(l.input) {
		return ""
	}
	return l.input[l.start:l.pos]
}

// atEOL returns whether the lexer is currently at the end of a line.
func (l *lexer) atEOL() bool {
	return l.peek() == '\n' || strings.HasPrefix(l.rest(), "\r\n")
}

// atEOF returns whether the lexer is currently at the end of the
// input.
func (l *lexer) atEOF() bool {
	return l.pos >= len(l.input)
}

// skipWhitespace consumes utf-8 whitespace until something meaningful
// is hit.
func (l *lexer) skipWhitespace() {
	for {
		r := l.next()
		if r == eof {
			l.discard()
			return
		}
		if !unicode.IsSpace(r) {
			l.backup()
			l.discard()
			return
		}
	}
}

// next returns, and consumes, the next rune in the input.
func (l *lexer) next() rune {
	if l.atEOF() {
		l.width = 0
		return eof
	}
	r, width := utf8.DecodeRuneInString(l.rest())
	l.width = width
	l.pos += l.width
	if r == '\n' {
		l.line++
	}
	return r
}

// peek returns, but does not consume, the next rune in the input.
func (l *lexer) peek() rune {
	r := l.next()
	l.backup()
	return r
}

// backup steps back one rune. Can only be called once per call to
// next.
func (l *lexer) backup() {
	l.pos -= l.width
	if l.width == 1 && l.current() == '\n' {
		l.line--
	}
}

// current returns the rune the lexer is currently sat on.
func (l *lexer) current() rune {
	if l.atEOF() {
		return eof
	}
	return rune(l.input[l.pos])
}

// skip steps the lexer forward over the literal spelling of t.
func (l *lexer) skip(t token.Type) {
	l.pos += len(t.String())
}

// acceptRun consumes a run of runes from the valid set.
func (l *lexer) acceptRun(valid string) {
	for strings.ContainsRune(valid, l.next()) {
	}
	l.backup()
}

// emit passes a token back to the parser via the tokens channel.
func (l *lexer) emit(t token.Type) {
	l.tokens <- token.Token{
		Value: l.all(),
		Type:  t,
		Pos:   l.start,
		Line:  l.line,
	}
	l.start = l.pos
}

// discard brings the lexer's start position up to its current
// position, discarding everything in between but keeping the line
// count accurate.
func (l *lexer) discard() {
	l.line += strings.Count(l.all(), "\n")
	l.start = l.pos
}

// errorf emits an ERROR token and terminates the scan.
func (l *lexer) errorf(format string, args ...interface{}) lexFn {
	l.tokens <- token.Token{
		Value: fmt.Sprintf(format, args...),
		Type:  token.ERROR,
		Pos:   l.start,
		Line:  l.line,
	}
	return nil
}

// lexStart is the initial state of the lexer.
//
// At the top level a forgefile can only contain: whitespace (ignored),
// comments (preceded by '#'), global variable declarations, task
// definitions, or EOF. Anything else is an error.
func lexStart(l *lexer) lexFn {
	l.skipWhitespace()

	switch {
	case l.atEOF():
		l.emit(token.EOF)
		return nil
	case strings.HasPrefix(l.rest(), token.HASH.String()):
		return lexHash
	case strings.HasPrefix(l.rest(), token.TASK.String()) && followsKeyword(l.rest(), token.TASK.String()):
		return lexTaskKeyword
	case unicode.IsLetter(l.peek()) || l.peek() == '_':
		return lexIdent
	default:
		return l.errorf("unexpected token at top level")
	}
}

// followsKeyword reports whether rest, known to start with keyword,
// isn't actually the prefix of a longer identifier (e.g. "tasks" is not
// the "task" keyword).
func followsKeyword(rest, keyword string) bool {
	if len(rest) == len(keyword) {
		return true
	}
	next := rune(rest[len(keyword)])
	return !unicode.IsLetter(next) && next != '_'
}

// lexHash scans a comment marker '#'.
func lexHash(l *lexer) lexFn {
	l.skip(token.HASH)
	l.emit(token.HASH)
	return lexComment
}

// lexComment scans comment text, the '#' already consumed.
func lexComment(l *lexer) lexFn {
	for !l.atEOL() && !l.atEOF() {
		l.next()
	}
	text := strings.TrimSpace(l.all())
	l.tokens <- token.Token{Value: text, Type: token.COMMENT, Pos: l.start, Line: l.line}
	l.start = l.pos
	return lexStart
}

// lexTaskKeyword scans the 'task' keyword.
func lexTaskKeyword(l *lexer) lexFn {
	l.skip(token.TASK)
	l.emit(token.TASK)
	l.skipWhitespace()
	return lexIdent
}

// lexIdent scans an identifier: a global variable name or a task name.
func lexIdent(l *lexer) lexFn {
	for {
		r := l.next()
		if !isIdentRune(r) {
			l.backup()
			break
		}
	}
	l.emit(token.IDENT)
	l.skipWhitespace()

	switch {
	case strings.HasPrefix(l.rest(), token.LPAREN.String()):
		return lexLeftParen
	case strings.HasPrefix(l.rest(), token.DECLARE.String()):
		return lexDeclare
	default:
		return l.errorf("unexpected token after identifier")
	}
}

// lexLeftParen scans an opening parenthesis, beginning an argument
// list (task dependencies or builtin function args).
func lexLeftParen(l *lexer) lexFn {
	l.skip(token.LPAREN)
	l.emit(token.LPAREN)
	return lexArgs
}

// lexArgs scans the contents of a parenthesised argument list.
func lexArgs(l *lexer) lexFn {
	l.skipWhitespace()
	switch r := l.peek(); {
	case r == ')':
		l.next()
		l.emit(token.RPAREN)
		return lexAfterArgs
	case r == ',':
		l.next()
		l.emit(token.COMMA)
		return lexArgs
	case r == '"':
		l.next()
		l.discard()
		return lexString(lexArgs)
	case isIdentRune(r):
		return lexArgIdent
	default:
		return l.errorf("arguments may only be strings or identifiers")
	}
}

// lexArgIdent scans an identifier inside an argument list.
func lexArgIdent(l *lexer) lexFn {
	for isIdentRune(l.next()) {
	}
	l.backup()
	l.emit(token.IDENT)
	return lexArgs
}

// lexAfterArgs decides, once a task's dependency list has closed,
// whether a requires clause, an output clause, or the task body
// follows.
func lexAfterArgs(l *lexer) lexFn {
	l.skipWhitespace()
	switch {
	case strings.HasPrefix(l.rest(), token.REQUIRES.String()) && followsKeyword(l.rest(), token.REQUIRES.String()):
		return lexRequiresKeyword
	case strings.HasPrefix(l.rest(), token.OUTPUT.String()):
		l.skip(token.OUTPUT)
		l.emit(token.OUTPUT)
		l.skipWhitespace()
		return lexOutputs
	case strings.HasPrefix(l.rest(), token.LBRACE.String()):
		return lexLeftBrace
	default:
		return l.errorf("expected 'requires', '->' or '{' after task arguments")
	}
}

// lexRequiresKeyword scans a task's 'requires("...")' clause: the
// keyword, its single quoted string argument, and the closing paren.
func lexRequiresKeyword(l *lexer) lexFn {
	l.skip(token.REQUIRES)
	l.emit(token.REQUIRES)
	l.skipWhitespace()
	if l.peek() != '(' {
		return l.errorf("expected '(' after 'requires'")
	}
	l.next()
	l.emit(token.LPAREN)
	l.skipWhitespace()
	if l.peek() != '"' {
		return l.errorf("requires takes a single quoted version requirement string")
	}
	l.next()
	l.discard()
	return lexString(lexRequiresClose)
}

// lexRequiresClose scans the closing paren of a requires clause and
// decides whether an output clause or the task body follows, the
// string argument already emitted.
func lexRequiresClose(l *lexer) lexFn {
	l.skipWhitespace()
	if l.peek() != ')' {
		return l.errorf("expected ')' to close requires clause")
	}
	l.next()
	l.emit(token.RPAREN)
	l.skipWhitespace()
	switch {
	case strings.HasPrefix(l.rest(), token.OUTPUT.String()):
		l.skip(token.OUTPUT)
		l.emit(token.OUTPUT)
		l.skipWhitespace()
		return lexOutputs
	case strings.HasPrefix(l.rest(), token.LBRACE.String()):
		return lexLeftBrace
	default:
		return l.errorf("expected '->' or '{' after requires clause")
	}
}

// lexOutputs scans a task's declared outputs: either a single
// string/ident or a parenthesised list of them.
func lexOutputs(l *lexer) lexFn {
	if l.peek() == '(' {
		l.next()
		l.emit(token.LPAREN)
		return lexOutputArgs
	}
	switch r := l.peek(); {
	case r == '"':
		l.next()
		l.discard()
		return lexString(lexAfterOutputs)
	case isIdentRune(r):
		for isIdentRune(l.next()) {
		}
		l.backup()
		l.emit(token.IDENT)
		return lexAfterOutputs
	default:
		return l.errorf("expected an output after '->'")
	}
}

// lexOutputArgs scans a parenthesised list of outputs.
func lexOutputArgs(l *lexer) lexFn {
	l.skipWhitespace()
	switch r := l.peek(); {
	case r == ')':
		l.next()
		l.emit(token.RPAREN)
		return lexLeftBrace
	case r == ',':
		l.next()
		l.emit(token.COMMA)
		return lexOutputArgs
	case r == '"':
		l.next()
		l.discard()
		return lexString(lexOutputArgs)
	case isIdentRune(r):
		for isIdentRune(l.next()) {
		}
		l.backup()
		l.emit(token.IDENT)
		return lexOutputArgs
	default:
		return l.errorf("outputs may only be strings or identifiers")
	}
}

// lexAfterOutputs follows a single, un-parenthesised output.
func lexAfterOutputs(l *lexer) lexFn {
	l.skipWhitespace()
	return lexLeftBrace
}

// lexLeftBrace scans the opening curly brace of a task body.
func lexLeftBrace(l *lexer) lexFn {
	l.skipWhitespace()
	if !strings.HasPrefix(l.rest(), token.LBRACE.String()) {
		return l.errorf("expected '{' to open task body")
	}
	l.skip(token.LBRACE)
	l.emit(token.LBRACE)
	return lexTaskBody
}

// lexTaskBody scans the body of a task, one command line at a time,
// until the closing brace.
func lexTaskBody(l *lexer) lexFn {
	l.skipWhitespace()
	switch {
	case l.atEOF():
		return l.errorf("unterminated task body")
	case l.peek() == '}':
		l.next()
		l.emit(token.RBRACE)
		return lexStart
	default:
		return lexTaskCommand
	}
}

// lexTaskCommand scans a single command line inside a task body. A
// command ends at a newline, similar to a statement in many scripting
// languages; a command spanning multiple physical lines is not
// supported (command continuation belongs to the shell, not the
// forgefile grammar).
func lexTaskCommand(l *lexer) lexFn {
	for !l.atEOL() && !l.atEOF() {
		l.next()
	}
	text := strings.TrimSpace(l.all())
	if text != "" {
		l.tokens <- token.Token{Value: text, Type: token.COMMAND, Pos: l.start, Line: l.line}
	}
	l.start = l.pos
	return lexTaskBody
}

// lexDeclare scans the ':=' declaration operator and what follows it.
func lexDeclare(l *lexer) lexFn {
	l.skipWhitespace()
	l.skip(token.DECLARE)
	l.emit(token.DECLARE)
	l.skipWhitespace()

	switch r := l.peek(); {
	case r == '"':
		l.next()
		l.discard()
		return lexString(lexStart)
	case isIdentRune(r):
		return lexIdent
	default:
		return l.errorf("unexpected token after ':='")
	}
}

// lexString scans a quoted string, the opening quote already consumed
// and discarded, returning to next once the closing quote is found.
func lexString(next lexFn) lexFn {
	return func(l *lexer) lexFn {
		for {
			r := l.next()
			if r == '"' {
				break
			}
			if l.atEOF() || r == '\n' {
				return l.errorf("unterminated string literal")
			}
		}
		// Emit without the trailing quote.
		l.tokens <- token.Token{Value: l.input[l.start : l.pos-1], Type: token.STRING, Pos: l.start, Line: l.line}
		l.start = l.pos
		return next
	}
}

// isIdentRune reports whether r is valid inside an identifier.
func isIdentRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}
