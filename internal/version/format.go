package version

import (
	"strconv"
	"strings"
)

// Format renders v according to a small placeholder pattern language:
// literal characters pass through unchanged, and "{X}", "{Xo}", "{XL}"
// or "{Xl}" placeholders substitute one of v's fields, where X is one
// of:
//
//	M  Major     m  Minor     p  Patch     t  Tweak     e  Extra (dot-joined)
//
// A bare "{X}" renders the field's decimal value. The "o" suffix, used
// on a placeholder that is the first one actually rendered, also erases
// the single literal separator character ('.' or '-') immediately
// preceding it in the pattern — so for version 0.1 the pattern "v.{mo}"
// renders as "v1" rather than "v.1". The "L" / "l" suffix instead
// renders the field as a base-26 letter sequence (0->A, 1->B, ...,
// 25->Z, 26->AA, ...; lowercase for "l"), per ToLetters.
func (v Version) Format(pattern string) (string, error) {
	var sb strings.Builder
	firstRendered := true
	i := 0
	for i < len(pattern) {
		c := pattern[i]
		if c != '{' {
			sb.WriteByte(c)
			i++
			continue
		}
		end := strings.IndexByte(pattern[i:], '}')
		if end < 0 {
			return "", badVersion(pattern, "unterminated '{' in format pattern")
		}
		spec := pattern[i+1 : i+end]
		i += end + 1
		if spec == "" {
			return "", badVersion(pattern, "empty {} placeholder")
		}

		field := spec[0]
		mode := byte(0)
		if len(spec) > 1 {
			mode = spec[1]
		}
		if len(spec) > 2 {
			return "", badVersion(pattern, "malformed placeholder {"+spec+"}")
		}

		rendered, err := v.renderField(field, mode)
		if err != nil {
			return "", err
		}
		if mode == 'o' && firstRendered {
			if buffered := sb.String(); strings.HasSuffix(buffered, ".") || strings.HasSuffix(buffered, "-") {
				trimmed := buffered[:len(buffered)-1]
				sb.Reset()
				sb.WriteString(trimmed)
			}
		}
		sb.WriteString(rendered)
		firstRendered = false
	}
	return sb.String(), nil
}

func (v Version) renderField(field, mode byte) (string, error) {
	var value uint64
	switch field {
	case 'M':
		value = v.Major()
	case 'm':
		value = v.Minor()
	case 'p':
		value = v.Patch()
	case 't':
		value = v.Tweak()
	case 'e':
		var extras []string
		for _, t := range v.Extra {
			extras = append(extras, t.String())
		}
		return strings.Join(extras, "."), nil
	default:
		return "", badVersion(string(field), "unknown format field")
	}

	switch mode {
	case 'L':
		return ToLetters(value, true), nil
	case 'l':
		return ToLetters(value, false), nil
	default:
		return strconv.FormatUint(value, 10), nil
	}
}

// ToLetters renders n as a bijective base-26 letter sequence: 0->A,
// 1->B, ..., 25->Z, 26->AA, 27->AB, .... This is the "spreadsheet
// column" numbering, distinct from plain base-26 in that there is no
// digit for zero, which is what lets "Z" be followed by "AA" instead of
// wrapping back to a shorter string.
func ToLetters(n uint64, upper bool) string {
	base := byte('a')
	if upper {
		base = 'A'
	}
	if n == 0 {
		return string(base)
	}
	var letters []byte
	n++ // shift into 1-indexed bijective base-26
	for n > 0 {
		n--
		letters = append([]byte{base + byte(n%26)}, letters...)
		n /= 26
	}
	return string(letters)
}

// FromLetters inverts ToLetters: it parses a bijective base-26 letter
// sequence (case-insensitive) back into the numeric value that produced
// it.
func FromLetters(s string) (uint64, error) {
	if s == "" {
		return 0, badVersion(s, "empty letter sequence")
	}
	var n uint64
	for _, r := range s {
		var digit uint64
		switch {
		case r >= 'A' && r <= 'Z':
			digit = uint64(r-'A') + 1
		case r >= 'a' && r <= 'z':
			digit = uint64(r-'a') + 1
		default:
			return 0, badVersion(s, "non-letter in letter sequence")
		}
		n = n*26 + digit
	}
	return n - 1, nil
}
