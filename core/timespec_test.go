package core

import "testing"

func TestParseTimeSpecRoundTrip(t *testing.T) {
	cases := []string{"1:05:03", "5.25", ".5", "0"}
	for _, s := range cases {
		spec, err := ParseTimeSpec(s)
		if err != nil {
			t.Fatalf("ParseTimeSpec(%q) error: %v", s, err)
		}
		if got := spec.String(); got != s {
			t.Errorf("ParseTimeSpec(%q).String() = %q, want %q", s, got, s)
		}
	}
}

func TestParseTimeSpecMinutesSeconds(t *testing.T) {
	spec, err := ParseTimeSpec("2:30")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if spec.Minutes != 2 || spec.Seconds != 30 {
		t.Errorf("got {Minutes:%d Seconds:%d}, want {2 30}", spec.Minutes, spec.Seconds)
	}
}

// ParseTimeSpec is display-only: it does not range-check minutes or
// seconds against 59, matching the original duration grammar it's
// grounded on. Out-of-range components round-trip through String()
// unchanged, just as any other component does.
func TestParseTimeSpecAllowsOutOfRangeComponents(t *testing.T) {
	cases := []string{"100:200:300", "1:60:00", "1:00:61"}
	for _, s := range cases {
		spec, err := ParseTimeSpec(s)
		if err != nil {
			t.Fatalf("ParseTimeSpec(%q) unexpected error: %v", s, err)
		}
		if got := spec.String(); got != s {
			t.Errorf("ParseTimeSpec(%q).String() = %q, want %q", s, got, s)
		}
	}
}

func TestParseTimeSpecRejectsMalformed(t *testing.T) {
	for _, s := range []string{"", "1:2:3:4", "1.2.3"} {
		if _, err := ParseTimeSpec(s); err == nil {
			t.Errorf("ParseTimeSpec(%q) expected error, got nil", s)
		}
	}
}

func TestTimeSpecDuration(t *testing.T) {
	spec := TimeSpec{Minutes: 1, Seconds: 5, Fraction: 0.25}
	got := spec.Duration()
	want := 65250 * 1e6 // nanoseconds
	if int64(got) != int64(want) {
		t.Errorf("Duration() = %v, want %dns", got, int64(want))
	}
}
