package version_test

import (
	"testing"

	"github.com/cinderforge/forge/internal/version"
)

func TestParseAndString(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"1.2.3", "1.2.3"},
		{"01.02.03", "1.2.3"},
		{"1", "1"},
		{"1.2.3-beta.1", "1.2.3-beta.1"},
		{"1.2.3-0", "1.2.3-0"},
		{"1.2.3.4", "1.2.3.4"},
	}
	for _, tt := range tests {
		v, err := version.Parse(tt.in)
		if err != nil {
			t.Fatalf("Parse(%q): %v", tt.in, err)
		}
		if got := v.String(); got != tt.want {
			t.Errorf("Parse(%q).String() = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseRejectsInvalid(t *testing.T) {
	invalid := []string{
		"",
		"   ",
		"1.0-",
		"1..2",
		"1.0..beta",
		"1.0-beta..1",
		"1.0-beta!",
		"café.1",
		"1. 0",
	}
	for _, in := range invalid {
		if _, err := version.Parse(in); err == nil {
			t.Errorf("Parse(%q) should have failed", in)
		}
	}
}

func TestCompareNumericPadding(t *testing.T) {
	a := version.MustParse("1.2")
	b := version.MustParse("1.2.0")
	if version.Compare(a, b) != 0 {
		t.Fatalf("1.2 should equal 1.2.0 after virtual padding")
	}

	c := version.MustParse("1.2.1")
	if version.Compare(a, c) >= 0 {
		t.Fatalf("1.2 should be less than 1.2.1")
	}
}

func TestCompareExtraPrecedence(t *testing.T) {
	release := version.MustParse("1.0.0")
	pre := version.MustParse("1.0.0-beta")
	if version.Compare(release, pre) <= 0 {
		t.Fatalf("a release must compare greater than the same numerics with extra tags")
	}

	num := version.MustParse("1.0.0-2")
	ident := version.MustParse("1.0.0-beta")
	if version.Compare(num, ident) >= 0 {
		t.Fatalf("a numeric extra token must sort before an identifier token at the same position")
	}

	shorter := version.MustParse("1.0.0-alpha")
	longer := version.MustParse("1.0.0-alpha.1")
	if version.Compare(shorter, longer) >= 0 {
		t.Fatalf("a shorter extra sequence sharing a prefix must sort before the longer one")
	}
}

func TestMinMaxSentinels(t *testing.T) {
	min := version.Min()
	max := version.Max()
	v := version.MustParse("1.0.0")
	if version.Compare(min, v) >= 0 {
		t.Fatalf("min() must compare less than any real version")
	}
	if version.Compare(max, v) <= 0 {
		t.Fatalf("max() must compare greater than any real version")
	}
}

func TestRoundTrip(t *testing.T) {
	inputs := []string{"1", "1.2", "1.2.3", "1.2.3.4", "1.2.3-beta.1", "0.0.0-rc.2"}
	for _, in := range inputs {
		v, err := version.Parse(in)
		if err != nil {
			t.Fatalf("Parse(%q): %v", in, err)
		}
		again, err := version.Parse(v.String())
		if err != nil {
			t.Fatalf("Parse(%q) [round trip]: %v", v.String(), err)
		}
		if !v.Equal(again) {
			t.Fatalf("round trip failed for %q: got %q", in, again.String())
		}
	}
}

func TestFormatPlaceholders(t *testing.T) {
	v := version.MustParse("1.2.3-beta.1")
	got, err := v.Format("v{M}.{m}.{p}+{e}")
	if err != nil {
		t.Fatalf("Format: %v", err)
	}
	want := "v1.2.3+beta.1"
	if got != want {
		t.Fatalf("Format = %q, want %q", got, want)
	}
}

func TestFormatOmitSeparator(t *testing.T) {
	v := version.New(0, 5)
	got, err := v.Format(".{Mo}.{m}")
	if err != nil {
		t.Fatalf("Format: %v", err)
	}
	if got != "0.5" {
		t.Fatalf("Format with 'o' suffix = %q, want %q", got, "0.5")
	}
}

func TestToLettersRoundTrip(t *testing.T) {
	for _, n := range []uint64{0, 1, 25, 26, 27, 51, 52, 701, 702} {
		letters := version.ToLetters(n, true)
		back, err := version.FromLetters(letters)
		if err != nil {
			t.Fatalf("FromLetters(%q): %v", letters, err)
		}
		if back != n {
			t.Fatalf("ToLetters/FromLetters round trip failed for %d: got %q -> %d", n, letters, back)
		}
	}
}

func TestIncrementDecrement(t *testing.T) {
	v := version.MustParse("1.2.3")
	inc := v.Increment()
	if inc.String() != "1.2.4" {
		t.Fatalf("Increment() = %q, want 1.2.4", inc.String())
	}
	dec := inc.Decrement()
	if !dec.Equal(v) {
		t.Fatalf("Decrement() after Increment() = %q, want %q", dec.String(), v.String())
	}
}

func TestDecrementSaturatesAtZero(t *testing.T) {
	v := version.New(0)
	dec := v.Decrement()
	if dec.Major() != 0 {
		t.Fatalf("Decrement() of 0 should saturate at 0, got %d", dec.Major())
	}
}

func TestIncrementAtZeroesLooserComponents(t *testing.T) {
	v := version.MustParse("1.2.3")
	if got := v.IncrementAt(0); got.String() != "2.0.0" {
		t.Fatalf("IncrementAt(0) = %q, want 2.0.0", got.String())
	}
	if got := v.IncrementAt(1); got.String() != "1.3.0" {
		t.Fatalf("IncrementAt(1) = %q, want 1.3.0", got.String())
	}
	if got := v.IncrementAt(3); got.String() != "1.2.3.1" {
		t.Fatalf("IncrementAt(3) = %q, want 1.2.3.1", got.String())
	}
}
