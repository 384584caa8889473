package parser

import (
	"fmt"
	"strings"

	"github.com/cinderforge/forge/internal/forgefile/token"
)

// illegalToken is returned when the parser encounters a token it did
// not expect at the current point in the grammar.
type illegalToken struct {
	expected    []token.Type
	encountered token.Token
	line        string
}

func (e illegalToken) Error() string {
	want := make([]string, 0, len(e.expected))
	for _, t := range e.expected {
		want = append(want, t.String())
	}
	return fmt.Sprintf(
		"line %d: unexpected token %q (wanted one of: %s)\n\n%d |\t%s",
		e.encountered.Line,
		e.encountered.Value,
		strings.Join(want, ", "),
		e.encountered.Line,
		e.line,
	)
}
