package version

import (
	"fmt"

	mastersemver "github.com/Masterminds/semver/v3"
)

// ToSemver adapts v to a github.com/Masterminds/semver/v3 Version, for
// callers that need to compare against the wider Go ecosystem's
// conventional three-component semver (e.g. checking a forgefile's own
// declared forge-version requirement against a Masterminds-style
// constraint supplied by an external tool). Extra tags become the
// Masterminds pre-release segment; a version with more than three
// numeric components is lossy, since Masterminds/semver has no tweak
// component — Tweak (and anything beyond it) is dropped.
func (v Version) ToSemver() (*mastersemver.Version, error) {
	return mastersemver.NewVersion(v.semverString())
}

func (v Version) semverString() string {
	major, minor, patch := v.Major(), v.Minor(), v.Patch()
	s := fmt.Sprintf("%d.%d.%d", major, minor, patch)
	if len(v.Extra) > 0 {
		s += "-"
		for i, t := range v.Extra {
			if i > 0 {
				s += "."
			}
			s += t.String()
		}
	}
	return s
}

// ToConstraint renders r as a github.com/Masterminds/semver/v3
// Constraints value, one of the domain-stack adapters forge offers so a
// command can validate a range against a semver library the rest of the
// Go ecosystem already trusts, instead of only ever comparing through
// forge's own VersionRange.Contains. Because Masterminds' grammar is a
// subset of forge's (no unbounded numeric sequences, no arbitrary extra
// tag precedence rules), this is necessarily a best-effort projection:
// it succeeds for any range forge itself produced, and may reject a
// hand-written forge range that uses forge-only syntax.
func (r VersionRange) ToConstraint() (*mastersemver.Constraints, error) {
	if r.IsEmpty() {
		return mastersemver.NewConstraint("<0.0.0-0")
	}
	return mastersemver.NewConstraint(r.Render(SameDefaultLevel))
}
