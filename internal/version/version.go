// Package version implements forge's version model: a numeric component
// sequence with an optional dash-separated extra (pre-release) tag
// sequence, plus the range grammar built on top of it.
//
// The parser here is a small hand-written recursive-descent scanner in
// the same vein as the teacher's token/lexer/parser trio, rather than a
// wrapper around an existing semver library, because forge's grammar
// (arbitrary-length numeric sequences, bare tokens, Masterminds-style
// ranges AND interval notation) is its own dialect. Where a caller only
// needs strict three-component semver comparisons against the wider Go
// ecosystem, VersionRange.ToConstraint adapts into
// github.com/Masterminds/semver/v3 instead of reimplementing it.
package version

import (
	"strconv"
	"strings"
)

// MaxNumber is the documented ceiling for any single numeric component.
// It exists only to give Max() a concrete, comparably-greater-than-every-
// real-version sentinel; ordinary parsed versions are never clamped to
// it.
const MaxNumber uint64 = (1 << 32) - 1

// ExtraToken is one dot-separated segment of a version's extra
// (pre-release) tag sequence. A token is either a plain unsigned integer
// or an identifier; the two compare differently (numeric sorts as an
// integer, identifier sorts lexically, and numeric always precedes
// identifier at the same position).
type ExtraToken struct {
	IsNumeric bool
	Num       uint64
	Ident     string
}

func (t ExtraToken) String() string {
	if t.IsNumeric {
		return strconv.FormatUint(t.Num, 10)
	}
	return t.Ident
}

// Version is an ordered numeric component sequence plus an optional
// extra tag sequence. Numbers is stored exactly as parsed or
// constructed — it is never zero-padded in place, so len(v.Numbers) is
// the version's "real level" (how many components it was actually
// given), while Compare pads two versions' sequences only transiently,
// for the comparison itself.
type Version struct {
	Numbers []uint64
	Extra   []ExtraToken
}

// Min returns the sentinel version that compares less than every
// version with at least one numeric component.
func Min() Version {
	return Version{Numbers: []uint64{0}}
}

// Max returns the sentinel version that compares greater than every
// version whose leading component is within MaxNumber.
func Max() Version {
	return Version{Numbers: []uint64{MaxNumber + 1}}
}

// New builds a Version directly from numeric components, with no extra
// tags.
func New(numbers ...uint64) Version {
	return Version{Numbers: append([]uint64(nil), numbers...)}
}

// component returns the numeric component at idx, or 0 if the version
// was not given that many components.
func (v Version) component(idx int) uint64 {
	if idx < len(v.Numbers) {
		return v.Numbers[idx]
	}
	return 0
}

func (v Version) Major() uint64 { return v.component(0) }
func (v Version) Minor() uint64 { return v.component(1) }
func (v Version) Patch() uint64 { return v.component(2) }
func (v Version) Tweak() uint64 { return v.component(3) }

// IsPrerelease reports whether v carries any extra tags.
func (v Version) IsPrerelease() bool {
	return len(v.Extra) > 0
}

// Level reports how many numeric components v was actually given (its
// "real level"), as distinct from the conventional four-component
// "default level" (Major.Minor.Patch.Tweak).
func (v Version) Level() int {
	return len(v.Numbers)
}

// String renders v in its canonical dotted form, e.g. "1.2.3-beta.1".
func (v Version) String() string {
	var sb strings.Builder
	for i, n := range v.Numbers {
		if i > 0 {
			sb.WriteByte('.')
		}
		sb.WriteString(strconv.FormatUint(n, 10))
	}
	if len(v.Numbers) == 0 {
		sb.WriteByte('0')
	}
	if len(v.Extra) > 0 {
		sb.WriteByte('-')
		for i, t := range v.Extra {
			if i > 0 {
				sb.WriteByte('.')
			}
			sb.WriteString(t.String())
		}
	}
	return sb.String()
}

// Equal reports whether v and o compare equal under Compare.
func (v Version) Equal(o Version) bool {
	return Compare(v, o) == 0
}

// Less reports whether v sorts strictly before o.
func (v Version) Less(o Version) bool {
	return Compare(v, o) < 0
}

// Compare orders two versions: numeric components first (virtually
// zero-padded to the longer of the two sequences), then extra tags.
// A version with no extra tags is considered newer than an otherwise
// identical version that does carry extra tags (release > pre-release),
// matching semver's pre-release ordering rule. Extra sequences compare
// element-wise, numeric-before-identifier at a shared position, and a
// shorter sequence that is a prefix of a longer one sorts first.
func Compare(a, b Version) int {
	n := len(a.Numbers)
	if len(b.Numbers) > n {
		n = len(b.Numbers)
	}
	for i := 0; i < n; i++ {
		av, bv := a.component(i), b.component(i)
		switch {
		case av < bv:
			return -1
		case av > bv:
			return 1
		}
	}

	switch {
	case len(a.Extra) == 0 && len(b.Extra) == 0:
		return 0
	case len(a.Extra) == 0:
		return 1
	case len(b.Extra) == 0:
		return -1
	}

	m := len(a.Extra)
	if len(b.Extra) < m {
		m = len(b.Extra)
	}
	for i := 0; i < m; i++ {
		if c := compareExtraToken(a.Extra[i], b.Extra[i]); c != 0 {
			return c
		}
	}
	switch {
	case len(a.Extra) < len(b.Extra):
		return -1
	case len(a.Extra) > len(b.Extra):
		return 1
	default:
		return 0
	}
}

func compareExtraToken(a, b ExtraToken) int {
	switch {
	case a.IsNumeric && b.IsNumeric:
		switch {
		case a.Num < b.Num:
			return -1
		case a.Num > b.Num:
			return 1
		default:
			return 0
		}
	case a.IsNumeric && !b.IsNumeric:
		return -1
	case !a.IsNumeric && b.IsNumeric:
		return 1
	default:
		return strings.Compare(a.Ident, b.Ident)
	}
}

// Increment returns a copy of v with its last numeric component bumped
// by one. Used by range normalization (e.g. computing the open upper
// bound one past a caret/tilde range's floor).
func (v Version) Increment() Version {
	if len(v.Numbers) == 0 {
		return Version{Numbers: []uint64{1}}
	}
	return v.bumpAt(len(v.Numbers) - 1)
}

// IncrementAt returns a copy of v with the component at pos bumped by
// one and every looser component zeroed, exporting bumpAt for callers
// that need to bump a specific named component (e.g. `forge version
// bump` choosing among major/minor/patch/tweak) rather than always the
// last one.
func (v Version) IncrementAt(pos int) Version {
	return v.bumpAt(pos)
}

// Decrement returns a copy of v with its last numeric component reduced
// by one, saturating at zero rather than going negative.
func (v Version) Decrement() Version {
	out := v.clone()
	if len(out.Numbers) == 0 {
		return out
	}
	last := len(out.Numbers) - 1
	if out.Numbers[last] > 0 {
		out.Numbers[last]--
	}
	out.Extra = nil
	return out
}

// bumpAt increments the component at pos by one and zeroes every
// component after it, extending Numbers with zeros if pos is beyond the
// version's current length. This is the building block range.go uses
// for nextMinor/nextPatch/nextNonZeroLeading-style "advance this
// position, reset everything looser" bumps (tilde/caret upper bounds).
func (v Version) bumpAt(pos int) Version {
	length := pos + 1
	if length < len(v.Numbers) {
		length = len(v.Numbers)
	}
	numbers := make([]uint64, length)
	copy(numbers, v.Numbers)
	numbers[pos]++
	for i := pos + 1; i < length; i++ {
		numbers[i] = 0
	}
	return Version{Numbers: numbers}
}

func (v Version) clone() Version {
	return Version{
		Numbers: append([]uint64(nil), v.Numbers...),
		Extra:   append([]ExtraToken(nil), v.Extra...),
	}
}

// firstNonZero returns the index of the leftmost non-zero numeric
// component, or -1 if every component is zero (or there are none). Used
// by caret-range semantics, where the "lowest non-zero component"
// determines what may vary freely.
func (v Version) firstNonZero() int {
	for i, n := range v.Numbers {
		if n != 0 {
			return i
		}
	}
	return -1
}
