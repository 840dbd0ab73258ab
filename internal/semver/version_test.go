package semver

import (
	"errors"
	"fmt"
	"testing"
)

func TestParse_Valid(t *testing.T) {
	tests := []struct {
		input      string
		major      uint64
		minor      uint64
		patch      uint64
		prerelease string
		metadata   string
	}{
		{"1.2.3", 1, 2, 3, "", ""},
		{"0.0.0", 0, 0, 0, "", ""},
		{"v1.2.3", 1, 2, 3, "", ""},
		{"V1.2.3", 1, 2, 3, "", ""},
		{"10.20.30", 10, 20, 30, "", ""},
		{"1.0.0-alpha", 1, 0, 0, "alpha", ""},
		{"1.0.0-alpha.1", 1, 0, 0, "alpha.1", ""},
		{"1.0.0-0.3.7", 1, 0, 0, "0.3.7", ""},
		{"1.0.0+20130313144700", 1, 0, 0, "", "20130313144700"},
		{"1.0.0-beta+exp.sha.5114f85", 1, 0, 0, "beta", "exp.sha.5114f85"},
		{" 2.0.0 ", 2, 0, 0, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			v, err := Parse(tt.input)
			if err != nil {
				t.Fatalf("Parse(%q) unexpected error: %v", tt.input, err)
			}
			if v.Major() != tt.major || v.Minor() != tt.minor || v.Patch() != tt.patch {
				t.Errorf("Parse(%q) = %d.%d.%d, want %d.%d.%d",
					tt.input, v.Major(), v.Minor(), v.Patch(), tt.major, tt.minor, tt.patch)
			}
			if v.Prerelease() != tt.prerelease {
				t.Errorf("Prerelease() = %q, want %q", v.Prerelease(), tt.prerelease)
			}
			if v.Metadata() != tt.metadata {
				t.Errorf("Metadata() = %q, want %q", v.Metadata(), tt.metadata)
			}
		})
	}
}

func TestParse_Invalid(t *testing.T) {
	invalid := []string{
		"",
		"   ",
		"not-a-version",
		"1",
		"1.2",
		"1.2.x",
		"a.b.c",
		"1.2.3.4",
		"vv1.2.3",
		"version1.2.3",
		"-1.2.3",
		"01.2.3",
	}

	for _, input := range invalid {
		t.Run(fmt.Sprintf("%q", input), func(t *testing.T) {
			_, err := Parse(input)
			if err == nil {
				t.Fatalf("Parse(%q) expected error, got nil", input)
			}
			if !errors.Is(err, ErrInvalid) {
				t.Errorf("Parse(%q) error = %v, want errors.Is(err, ErrInvalid)", input, err)
			}
			var pe *ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("Parse(%q) error type = %T, want *ParseError", input, err)
			}
			if pe.Text != input {
				t.Errorf("ParseError.Text = %q, want %q", pe.Text, input)
			}
		})
	}
}

func TestParse_PrefixTolerance(t *testing.T) {
	a := MustParse("v1.2.3")
	b := MustParse("1.2.3")
	if !a.Equal(b) {
		t.Errorf("v1.2.3 and 1.2.3 should be equal")
	}
	if a.String() != "1.2.3" {
		t.Errorf("String() = %q, want %q", a.String(), "1.2.3")
	}
}

func TestRoundTrip(t *testing.T) {
	for major := uint64(0); major < 4; major++ {
		for minor := uint64(0); minor < 4; minor++ {
			for patch := uint64(0); patch < 4; patch++ {
				text := fmt.Sprintf("%d.%d.%d", major, minor, patch)
				v := MustParse(text)
				again, err := Parse(v.String())
				if err != nil {
					t.Fatalf("Parse(%q) failed: %v", v.String(), err)
				}
				if !again.Equal(v) || again.String() != text {
					t.Errorf("round trip of %q produced %q", text, again.String())
				}
			}
		}
	}

	for _, text := range []string{"1.0.0-rc.1", "2.3.4-beta.2+build.7", "0.1.0+sha.abc"} {
		v := MustParse(text)
		if v.String() != text {
			t.Errorf("String() = %q, want %q", v.String(), text)
		}
	}
}

func TestCompare_PrecedenceChain(t *testing.T) {
	chain := []string{
		"1.0.0-alpha",
		"1.0.0-alpha.1",
		"1.0.0-alpha.beta",
		"1.0.0-beta",
		"1.0.0-beta.2",
		"1.0.0-beta.11",
		"1.0.0-rc.1",
		"1.0.0",
		"1.0.1",
		"1.1.0",
		"2.0.0",
	}

	for i := 0; i < len(chain)-1; i++ {
		lo, hi := MustParse(chain[i]), MustParse(chain[i+1])
		if Compare(lo, hi) != -1 {
			t.Errorf("Compare(%s, %s) = %d, want -1", lo, hi, Compare(lo, hi))
		}
		if Compare(hi, lo) != 1 {
			t.Errorf("Compare(%s, %s) = %d, want 1", hi, lo, Compare(hi, lo))
		}
	}
}

func TestCompare_NumericIdentifiers(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"1.10.0", "1.9.0", 1},
		{"1.0.10", "1.0.9", 1},
		{"1.0.0-2", "1.0.0-10", -1},
		{"1.0.0-1", "1.0.0-alpha", -1},
		{"1.0.0-alpha", "1.0.0-alpha.0", -1},
		{"1.0.0+build.1", "1.0.0+build.2", 0},
		{"1.0.0-rc.1+a", "1.0.0-rc.1+b", 0},
		{"v2.0.0", "2.0.0", 0},
	}

	for _, tt := range tests {
		t.Run(tt.a+"_vs_"+tt.b, func(t *testing.T) {
			got := Compare(MustParse(tt.a), MustParse(tt.b))
			if got != tt.want {
				t.Errorf("Compare(%s, %s) = %d, want %d", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestCompare_TotalOrder(t *testing.T) {
	samples := []string{
		"0.0.0", "0.0.1", "0.1.0", "1.0.0-0", "1.0.0-1", "1.0.0-alpha",
		"1.0.0-alpha.1", "1.0.0-beta", "1.0.0", "1.0.0+meta", "1.0.1", "2.0.0-rc.1", "2.0.0",
	}
	vs := make([]Version, len(samples))
	for i, s := range samples {
		vs[i] = MustParse(s)
	}

	for _, a := range vs {
		if Compare(a, a) != 0 {
			t.Errorf("Compare(%s, %s) != 0", a, a)
		}
		for _, b := range vs {
			if Compare(a, b) != -Compare(b, a) {
				t.Errorf("antisymmetry violated for %s and %s", a, b)
			}
			for _, c := range vs {
				if Compare(a, b) <= 0 && Compare(b, c) <= 0 && Compare(a, c) > 0 {
					t.Errorf("transitivity violated for %s <= %s <= %s", a, b, c)
				}
			}
		}
	}
}

func TestVersion_ZeroValue(t *testing.T) {
	var v Version
	if v.String() != "0.0.0" {
		t.Errorf("zero Version String() = %q, want 0.0.0", v.String())
	}
	if !v.Equal(MustParse("0.0.0")) {
		t.Error("zero Version should equal 0.0.0")
	}
}

func TestVersion_TextMarshaling(t *testing.T) {
	v := MustParse("v1.4.0-rc.2")
	text, err := v.MarshalText()
	if err != nil {
		t.Fatalf("MarshalText failed: %v", err)
	}
	if string(text) != "1.4.0-rc.2" {
		t.Errorf("MarshalText = %q, want %q", text, "1.4.0-rc.2")
	}

	var decoded Version
	if err := decoded.UnmarshalText(text); err != nil {
		t.Fatalf("UnmarshalText failed: %v", err)
	}
	if !decoded.Equal(v) {
		t.Errorf("decoded %s, want %s", decoded, v)
	}

	if err := decoded.UnmarshalText([]byte("bogus")); err == nil {
		t.Error("UnmarshalText(bogus) expected error")
	}
}

func TestMustParse_Panics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("MustParse(invalid) should panic")
		}
	}()
	MustParse("1.2")
}
