package version

import (
	"strconv"
	"strings"
)

// ParseRange reads a version range expression:
//
//	expr   = term ( '||' term )*
//	term   = factor ( ( '&&' | ws ) factor )*
//	factor = wildcard | comparator | hyphen | tilde | caret | interval | bare | negation
//
// See the package doc and the factor-level comments below for the forms
// each alternative accepts. The grammar is whitespace-insensitive except
// inside a single version token.
func ParseRange(s string) (VersionRange, error) {
	p := &rangeParser{s: s, input: s}
	p.skipSpace()
	if p.eof() {
		return VersionRange{}, badRange(s, "empty range expression")
	}
	result, err := p.parseExpr()
	if err != nil {
		return VersionRange{}, err
	}
	p.skipSpace()
	if !p.eof() {
		return VersionRange{}, badRange(s, "unexpected trailing input at byte "+strconv.Itoa(p.pos))
	}
	return result, nil
}

// MustParseRange is ParseRange's panicking counterpart, for constants.
func MustParseRange(s string) VersionRange {
	r, err := ParseRange(s)
	if err != nil {
		panic(err)
	}
	return r
}

type rangeParser struct {
	s     string
	input string
	pos   int
}

func (p *rangeParser) eof() bool {
	return p.pos >= len(p.s)
}

func (p *rangeParser) peek() byte {
	if p.eof() {
		return 0
	}
	return p.s[p.pos]
}

func (p *rangeParser) skipSpace() {
	for !p.eof() && isSpaceByte(p.s[p.pos]) {
		p.pos++
	}
}

func isSpaceByte(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	default:
		return false
	}
}

func (p *rangeParser) consumeLiteral(lit string) bool {
	if strings.HasPrefix(p.s[p.pos:], lit) {
		p.pos += len(lit)
		return true
	}
	return false
}

// scanToken reads a maximal run of non-whitespace, non-structural
// characters: the building block for every version-like token a factor
// reads, since the version grammar itself never contains whitespace or
// any of '|', '&', ')', ']', ','.
func (p *rangeParser) scanToken() string {
	start := p.pos
	for !p.eof() {
		c := p.s[p.pos]
		if isSpaceByte(c) || c == '|' || c == '&' || c == ')' || c == ']' || c == ',' {
			break
		}
		p.pos++
	}
	return p.s[start:p.pos]
}

func (p *rangeParser) parseExpr() (VersionRange, error) {
	result, err := p.parseTerm()
	if err != nil {
		return VersionRange{}, err
	}
	for {
		p.skipSpace()
		if p.consumeLiteral("||") {
			p.skipSpace()
			next, err := p.parseTerm()
			if err != nil {
				return VersionRange{}, err
			}
			result = result.Union(next)
			continue
		}
		break
	}
	return result, nil
}

func (p *rangeParser) parseTerm() (VersionRange, error) {
	result, err := p.parseFactor()
	if err != nil {
		return VersionRange{}, err
	}
	for {
		p.skipSpace()
		if p.eof() || p.peek() == '|' || p.peek() == ')' {
			break
		}
		if p.consumeLiteral("&&") {
			p.skipSpace()
		}
		next, err := p.parseFactor()
		if err != nil {
			return VersionRange{}, err
		}
		result = result.Intersect(next)
	}
	return result, nil
}

func (p *rangeParser) parseFactor() (VersionRange, error) {
	p.skipSpace()
	if p.eof() {
		return VersionRange{}, badRange(p.input, "expected a range term, found end of input")
	}

	switch {
	case p.peek() == '*':
		p.pos++
		return Universal(), nil
	case p.peek() == '[' || p.peek() == '(':
		return p.parseInterval()
	case p.consumeLiteral(">="):
		return p.parseComparator(">=")
	case p.consumeLiteral("<="):
		return p.parseComparator("<=")
	case p.consumeLiteral("=="):
		return p.parseComparator("==")
	case p.consumeLiteral("!="):
		return p.parseComparator("!=")
	case p.peek() == '>':
		p.pos++
		return p.parseComparator(">")
	case p.peek() == '<':
		p.pos++
		return p.parseComparator("<")
	case p.peek() == '=':
		p.pos++
		return p.parseComparator("=")
	case p.peek() == '~':
		p.pos++
		return p.parseTilde()
	case p.peek() == '^':
		p.pos++
		return p.parseCaret()
	default:
		return p.parseBareOrHyphen()
	}
}

func (p *rangeParser) parseVersionOperand() (Version, error) {
	p.skipSpace()
	tok := p.scanToken()
	if tok == "" {
		return Version{}, badRange(p.input, "expected a version")
	}
	v, err := Parse(tok)
	if err != nil {
		return Version{}, badRange(p.input, err.Error())
	}
	return v, nil
}

func (p *rangeParser) parseComparator(op string) (VersionRange, error) {
	v, err := p.parseVersionOperand()
	if err != nil {
		return VersionRange{}, err
	}
	switch op {
	case ">=":
		return rangeFromPairs([]RangePair{pair(v, true, Max(), true)}), nil
	case ">":
		return rangeFromPairs([]RangePair{pair(v, false, Max(), true)}), nil
	case "<=":
		return rangeFromPairs([]RangePair{pair(Min(), true, v, true)}), nil
	case "<":
		return rangeFromPairs([]RangePair{pair(Min(), true, v, false)}), nil
	case "=", "==":
		return rangeFromPairs([]RangePair{pair(v, true, v, true)}), nil
	case "!=":
		return rangeFromPairs([]RangePair{
			pair(Min(), true, v, false),
			pair(v, false, Max(), true),
		}), nil
	default:
		return VersionRange{}, badRange(p.input, "unknown comparator "+op)
	}
}

// parseInterval reads explicit interval notation: '[' or '(' for the
// left bound's strictness, an optional left version (empty means
// min()), ',', an optional right version (empty means max()), and ']'
// or ')' for the right bound's strictness.
func (p *rangeParser) parseInterval() (VersionRange, error) {
	openChar := p.peek()
	p.pos++
	fromIncl := openChar == '['

	p.skipSpace()
	from := Min()
	if p.peek() != ',' {
		v, err := p.parseVersionOperand()
		if err != nil {
			return VersionRange{}, err
		}
		from = v
	}

	p.skipSpace()
	if p.peek() != ',' {
		return VersionRange{}, badRange(p.input, "expected ',' in interval notation")
	}
	p.pos++

	p.skipSpace()
	to := Max()
	if p.peek() != ']' && p.peek() != ')' {
		v, err := p.parseVersionOperand()
		if err != nil {
			return VersionRange{}, err
		}
		to = v
	}

	p.skipSpace()
	if p.peek() != ']' && p.peek() != ')' {
		return VersionRange{}, badRange(p.input, "expected ']' or ')' to close interval notation")
	}
	closeChar := p.peek()
	p.pos++
	toIncl := closeChar == ']'

	return rangeFromPairs([]RangePair{pair(from, fromIncl, to, toIncl)}), nil
}

// nextMinor implements the ceiling for '~': bump the minor component
// (index 1) and zero everything looser, falling back to bumping the
// sole component when only a major version was given.
func nextMinor(v Version) Version {
	if len(v.Numbers) < 2 {
		return v.bumpAt(0)
	}
	return v.bumpAt(1)
}

// nextNonZeroLeading implements the ceiling for '^': bump the leading
// non-zero component so an all-zero prefix shrinks the effective range
// accordingly (^0.2.3 = [0.2.3,0.3), ^0.0.3 = [0.0.3,0.0.4)).
func nextNonZeroLeading(v Version) Version {
	idx := v.firstNonZero()
	if idx < 0 {
		idx = len(v.Numbers) - 1
		if idx < 0 {
			idx = 0
		}
	}
	return v.bumpAt(idx)
}

func (p *rangeParser) parseTilde() (VersionRange, error) {
	v, err := p.parseVersionOperand()
	if err != nil {
		return VersionRange{}, err
	}
	return rangeFromPairs([]RangePair{pair(v, true, nextMinor(v), false)}), nil
}

func (p *rangeParser) parseCaret() (VersionRange, error) {
	v, err := p.parseVersionOperand()
	if err != nil {
		return VersionRange{}, err
	}
	return rangeFromPairs([]RangePair{pair(v, true, nextNonZeroLeading(v), false)}), nil
}

// bareCeiling is the truncated-ceiling rule shared by bare versions and
// wildcard prefixes: "1" = [1,2), "1.2" = [1.2,1.3), "1.2.3" =
// [1.2.3,1.2.4).
func bareCeiling(v Version) Version {
	n := len(v.Numbers)
	if n == 0 {
		return Version{Numbers: []uint64{1}}
	}
	return v.bumpAt(n - 1)
}

// parseBareOrHyphen reads a version-like token that may be a plain
// version, a wildcard-truncated version (1.2.x), or the left side of a
// hyphen range (a version token followed by whitespace, '-',
// whitespace, and another version token). Because the version grammar
// itself never contains whitespace, any '-' reached after skipping
// space following the first token can only be the hyphen-range
// operator, never part of a version's own extra-tag separator.
func (p *rangeParser) parseBareOrHyphen() (VersionRange, error) {
	tok := p.scanToken()
	if tok == "" {
		return VersionRange{}, badRange(p.input, "expected a range term")
	}

	if wildcardRange, ok, err := wildcardFactor(tok, p.input); ok || err != nil {
		if err != nil {
			return VersionRange{}, err
		}
		return wildcardRange, nil
	}

	v1, err := Parse(tok)
	if err != nil {
		return VersionRange{}, badRange(p.input, err.Error())
	}

	save := p.pos
	p.skipSpace()
	if p.peek() == '-' {
		p.pos++
		p.skipSpace()
		tok2 := p.scanToken()
		if tok2 == "" {
			return VersionRange{}, badRange(p.input, "expected a version after '-'")
		}
		v2, err := Parse(tok2)
		if err != nil {
			return VersionRange{}, badRange(p.input, err.Error())
		}
		return rangeFromPairs([]RangePair{hyphenUpper(v1, v2)}), nil
	}
	p.pos = save

	return rangeFromPairs([]RangePair{pair(v1, true, bareCeiling(v1), false)}), nil
}

// hyphenUpper implements "V1 - V2": when V2 was given at least three
// numeric components it is treated as exact and the interval is closed
// at V2; otherwise V2 is treated as a loose prefix and the interval's
// ceiling is V2's bare-version ceiling, open on the right (matching the
// same truncation rule a bare version uses on its own).
func hyphenUpper(v1, v2 Version) RangePair {
	if len(v2.Numbers) >= 3 {
		return pair(v1, true, v2, true)
	}
	return pair(v1, true, bareCeiling(v2), false)
}

// wildcardFactor recognises '*', 'x', 'X' used as a whole factor or as
// one or more trailing numeric components (e.g. "1.2.x"), which behaves
// exactly like the bare version formed by the components before the
// first wildcard. ok is false (with a nil error) when tok isn't a
// wildcard form at all, so the caller falls through to plain version
// parsing.
func wildcardFactor(tok, input string) (VersionRange, bool, error) {
	numericPart := tok
	if idx := strings.IndexByte(tok, '-'); idx >= 0 {
		numericPart = tok[:idx]
	}
	comps := strings.Split(numericPart, ".")

	wildcardIdx := -1
	for i, c := range comps {
		if isWildcardComponent(c) {
			wildcardIdx = i
			break
		}
	}
	if wildcardIdx < 0 {
		return VersionRange{}, false, nil
	}
	if wildcardIdx == 0 {
		return Universal(), true, nil
	}

	prefix := strings.Join(comps[:wildcardIdx], ".")
	v, err := Parse(prefix)
	if err != nil {
		return VersionRange{}, true, badRange(input, err.Error())
	}
	return rangeFromPairs([]RangePair{pair(v, true, bareCeiling(v), false)}), true, nil
}

func isWildcardComponent(c string) bool {
	return c == "*" || c == "x" || c == "X"
}
