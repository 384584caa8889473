package version

import (
	"strconv"
	"strings"
)

// Parse reads a version string of the grammar
//
//	version    = numbers ('-' extra)?
//	numbers    = number ('.' number)*
//	extra      = token ('.' token)*
//	token      = identifier | number
//	identifier = ('_' | letter) ('_' | letter | digit)*
//
// Leading and trailing whitespace is trimmed before parsing; any
// whitespace remaining inside the trimmed string is rejected, along
// with non-ASCII input, a trailing bare '-', and any empty numeric or
// extra token (e.g. "1..2", "1.0-").
func Parse(s string) (Version, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return Version{}, badVersion(s, "empty input")
	}
	if !isASCII(trimmed) {
		return Version{}, badVersion(s, "non-ASCII input")
	}
	if containsWhitespace(trimmed) {
		return Version{}, badVersion(s, "whitespace inside version")
	}

	numbersPart := trimmed
	extraPart := ""
	hasExtra := false
	if idx := strings.IndexByte(trimmed, '-'); idx >= 0 {
		numbersPart = trimmed[:idx]
		extraPart = trimmed[idx+1:]
		hasExtra = true
		if extraPart == "" {
			return Version{}, badVersion(s, "trailing '-' with no extra tags")
		}
	}

	numbers, err := parseNumbers(numbersPart)
	if err != nil {
		return Version{}, badVersion(s, err.Error())
	}

	var extra []ExtraToken
	if hasExtra {
		extra, err = parseExtra(extraPart)
		if err != nil {
			return Version{}, badVersion(s, err.Error())
		}
	}

	return Version{Numbers: numbers, Extra: extra}, nil
}

// MustParse is Parse's panicking counterpart, for tests and for
// wiring a small number of compile-time-known constants.
func MustParse(s string) Version {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

func parseNumbers(s string) ([]uint64, error) {
	if s == "" {
		return nil, errEmptyNumeric
	}
	parts := strings.Split(s, ".")
	numbers := make([]uint64, 0, len(parts))
	for _, p := range parts {
		if p == "" {
			return nil, errEmptyNumeric
		}
		n, err := parseUnsigned(p)
		if err != nil {
			return nil, err
		}
		numbers = append(numbers, n)
	}
	return numbers, nil
}

func parseExtra(s string) ([]ExtraToken, error) {
	parts := strings.Split(s, ".")
	tokens := make([]ExtraToken, 0, len(parts))
	for _, p := range parts {
		if p == "" {
			return nil, errEmptyExtra
		}
		tok, err := parseToken(p)
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
	}
	return tokens, nil
}

func parseToken(s string) (ExtraToken, error) {
	if isAllDigits(s) {
		n, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return ExtraToken{}, errBadToken(s)
		}
		return ExtraToken{IsNumeric: true, Num: n}, nil
	}
	if !isValidIdentifier(s) {
		return ExtraToken{}, errBadToken(s)
	}
	return ExtraToken{Ident: s}, nil
}

func parseUnsigned(s string) (uint64, error) {
	if !isAllDigits(s) {
		return 0, errBadToken(s)
	}
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, errBadToken(s)
	}
	return n, nil
}

func isAllDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func isValidIdentifier(s string) bool {
	for i, r := range s {
		switch {
		case r == '_':
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}

func containsWhitespace(s string) bool {
	return strings.ContainsAny(s, " \t\n\r\v\f")
}
