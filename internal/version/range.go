package version

import (
	"sort"
	"strings"
)

// bound is one endpoint of a RangePair: the version value and whether
// the bound is inclusive (closed, "<=" / ">=") or exclusive (open,
// "<" / ">").
type bound struct {
	v         Version
	inclusive bool
}

// RangePair is a single closed/half-open/open interval over versions.
// Invariant: Compare(From.v, To.v) <= 0, and if they're equal both
// bounds are inclusive (a single-point interval).
type RangePair struct {
	From bound
	To   bound
}

func pair(from Version, fromIncl bool, to Version, toIncl bool) RangePair {
	return RangePair{From: bound{v: from, inclusive: fromIncl}, To: bound{v: to, inclusive: toIncl}}
}

// isValid reports whether the pair satisfies the from<=to invariant and
// isn't a degenerate open point (e.g. (1.0.0,1.0.0)).
func (p RangePair) isValid() bool {
	c := Compare(p.From.v, p.To.v)
	if c > 0 {
		return false
	}
	if c == 0 && !(p.From.inclusive && p.To.inclusive) {
		return false
	}
	return true
}

func (p RangePair) equal(o RangePair) bool {
	return Compare(p.From.v, o.From.v) == 0 && p.From.inclusive == o.From.inclusive &&
		Compare(p.To.v, o.To.v) == 0 && p.To.inclusive == o.To.inclusive
}

func stripExtra(v Version) Version {
	return Version{Numbers: v.Numbers}
}

// contains reports whether v falls within the pair, applying the
// pre-release admission rule: a bound that itself carries no extra tags
// never admits a pre-release version sitting exactly on it, only ones
// strictly inside the numeric range; a bound that does carry extra
// tags compares normally (extra-tag-aware) against v.
func (p RangePair) contains(v Version) bool {
	lowOK := Compare(v, p.From.v) > 0 || (p.From.inclusive && Compare(v, p.From.v) == 0)
	highOK := Compare(v, p.To.v) < 0 || (p.To.inclusive && Compare(v, p.To.v) == 0)
	if !lowOK || !highOK {
		return false
	}
	if v.IsPrerelease() && len(p.From.v.Extra) == 0 && len(p.To.v.Extra) == 0 {
		numeric := stripExtra(v)
		if Compare(numeric, stripExtra(p.From.v)) <= 0 || Compare(numeric, stripExtra(p.To.v)) >= 0 {
			return false
		}
	}
	return true
}

// Mode selects how VersionRange.String pads each endpoint's numeric
// component count.
type Mode int

const (
	// SameDefaultLevel pads every endpoint out to at least three
	// numeric components (Major.Minor.Patch).
	SameDefaultLevel Mode = iota
	// SameRealLevel pads both endpoints of a pair to the longer of the
	// two endpoints' own given component counts.
	SameRealLevel
	// IndividualRealLevel prints each endpoint with exactly the
	// component count it was given, no padding.
	IndividualRealLevel
)

// VersionRange is a normalized, sorted set of disjoint RangePairs.
type VersionRange struct {
	pairs []RangePair
}

// Universal returns the range that matches every version.
func Universal() VersionRange {
	return VersionRange{pairs: []RangePair{pair(Min(), true, Max(), true)}}
}

// Empty returns the range that matches no version.
func Empty() VersionRange {
	return VersionRange{}
}

func rangeFromPairs(pairs []RangePair) VersionRange {
	valid := make([]RangePair, 0, len(pairs))
	for _, p := range pairs {
		if p.isValid() {
			valid = append(valid, p)
		}
	}
	sort.Slice(valid, func(i, j int) bool {
		if c := Compare(valid[i].From.v, valid[j].From.v); c != 0 {
			return c < 0
		}
		return valid[i].From.inclusive && !valid[j].From.inclusive
	})

	merged := make([]RangePair, 0, len(valid))
	for _, p := range valid {
		if len(merged) == 0 {
			merged = append(merged, p)
			continue
		}
		last := &merged[len(merged)-1]
		if touchesOrOverlaps(*last, p) {
			last.To = maxUpper(last.To, p.To)
		} else {
			merged = append(merged, p)
		}
	}
	return VersionRange{pairs: merged}
}

// touchesOrOverlaps reports whether b's closure touches or overlaps a's,
// given a.From <= b.From (the caller always supplies sorted pairs).
func touchesOrOverlaps(a, b RangePair) bool {
	c := Compare(b.From.v, a.To.v)
	if c < 0 {
		return true
	}
	if c == 0 {
		return a.To.inclusive || b.From.inclusive
	}
	return false
}

func maxUpper(a, b bound) bound {
	c := Compare(a.v, b.v)
	switch {
	case c > 0:
		return a
	case c < 0:
		return b
	default:
		return bound{v: a.v, inclusive: a.inclusive || b.inclusive}
	}
}

func minUpper(a, b bound) bound {
	c := Compare(a.v, b.v)
	switch {
	case c < 0:
		return a
	case c > 0:
		return b
	default:
		return bound{v: a.v, inclusive: a.inclusive && b.inclusive}
	}
}

func maxLower(a, b bound) bound {
	c := Compare(a.v, b.v)
	switch {
	case c > 0:
		return a
	case c < 0:
		return b
	default:
		return bound{v: a.v, inclusive: a.inclusive && b.inclusive}
	}
}

// IsEmpty reports whether r matches no version at all.
func (r VersionRange) IsEmpty() bool {
	return len(r.pairs) == 0
}

// Contains reports whether v falls inside any of r's intervals.
func (r VersionRange) Contains(v Version) bool {
	for _, p := range r.pairs {
		if p.contains(v) {
			return true
		}
	}
	return false
}

// ContainsRange reports whether every version matched by o is also
// matched by r, i.e. r ∩ o == o.
func (r VersionRange) ContainsRange(o VersionRange) bool {
	return r.Intersect(o).Equal(o)
}

// Intersect returns the pairwise intersection of r and o's intervals.
func (r VersionRange) Intersect(o VersionRange) VersionRange {
	var out []RangePair
	for _, a := range r.pairs {
		for _, b := range o.pairs {
			if p, ok := intersectPair(a, b); ok {
				out = append(out, p)
			}
		}
	}
	return rangeFromPairs(out)
}

func intersectPair(a, b RangePair) (RangePair, bool) {
	from := maxLower(a.From, b.From)
	to := minUpper(a.To, b.To)
	p := RangePair{From: from, To: to}
	if !p.isValid() {
		return RangePair{}, false
	}
	return p, true
}

// Union merges r and o's intervals, fusing any that touch or overlap.
func (r VersionRange) Union(o VersionRange) VersionRange {
	all := make([]RangePair, 0, len(r.pairs)+len(o.pairs))
	all = append(all, r.pairs...)
	all = append(all, o.pairs...)
	return rangeFromPairs(all)
}

// Equal reports whether r and o describe the exact same canonical
// interval set.
func (r VersionRange) Equal(o VersionRange) bool {
	if len(r.pairs) != len(o.pairs) {
		return false
	}
	for i := range r.pairs {
		if !r.pairs[i].equal(o.pairs[i]) {
			return false
		}
	}
	return true
}

// Less orders two ranges lexicographically by their canonical interval
// lists, for use as a deterministic tie-break (e.g. sorting ranges in a
// diagnostic listing).
func (r VersionRange) Less(o VersionRange) bool {
	n := len(r.pairs)
	if len(o.pairs) < n {
		n = len(o.pairs)
	}
	for i := 0; i < n; i++ {
		a, b := r.pairs[i], o.pairs[i]
		if c := Compare(a.From.v, b.From.v); c != 0 {
			return c < 0
		}
		if a.From.inclusive != b.From.inclusive {
			return a.From.inclusive
		}
		if c := Compare(a.To.v, b.To.v); c != 0 {
			return c < 0
		}
		if a.To.inclusive != b.To.inclusive {
			return !a.To.inclusive
		}
	}
	return len(r.pairs) < len(o.pairs)
}

// Render renders r using the given padding Mode. Unbounded sides (Min
// on the left, Max on the right, both inclusive) are elided; the
// universal range always prints as "*"; an empty range prints as "".
func (r VersionRange) Render(mode Mode) string {
	if r.IsEmpty() {
		return ""
	}
	parts := make([]string, 0, len(r.pairs))
	for _, p := range r.pairs {
		parts = append(parts, pairString(p, mode))
	}
	return strings.Join(parts, " || ")
}

// String implements fmt.Stringer using IndividualRealLevel padding, the
// mode most forge commands and diagnostics use when no explicit mode is
// requested.
func (r VersionRange) String() string {
	return r.Render(IndividualRealLevel)
}

func pairString(p RangePair, mode Mode) string {
	fromElided := Compare(p.From.v, Min()) == 0 && p.From.inclusive
	toElided := Compare(p.To.v, Max()) == 0 && p.To.inclusive
	if fromElided && toElided {
		return "*"
	}

	var parts []string
	if !fromElided {
		op := ">="
		if !p.From.inclusive {
			op = ">"
		}
		parts = append(parts, op+padForMode(p, p.From.v, mode).String())
	}
	if !toElided {
		op := "<="
		if !p.To.inclusive {
			op = "<"
		}
		parts = append(parts, op+padForMode(p, p.To.v, mode).String())
	}
	if len(parts) == 0 {
		return "*"
	}
	return strings.Join(parts, " ")
}

func padForMode(p RangePair, v Version, mode Mode) Version {
	switch mode {
	case SameDefaultLevel:
		return padVersion(v, 3)
	case SameRealLevel:
		n := len(p.From.v.Numbers)
		if len(p.To.v.Numbers) > n {
			n = len(p.To.v.Numbers)
		}
		if n < 1 {
			n = 1
		}
		return padVersion(v, n)
	default:
		return v
	}
}

func padVersion(v Version, n int) Version {
	if len(v.Numbers) >= n {
		return v
	}
	numbers := make([]uint64, n)
	copy(numbers, v.Numbers)
	return Version{Numbers: numbers, Extra: v.Extra}
}
