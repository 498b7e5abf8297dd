package schedule

import (
	"errors"
	"testing"
)

func TestTimeToMinutes_Valid(t *testing.T) {
	cases := []struct {
		clock string
		want  int
	}{
		{"00:00", 0},
		{"00:01", 1},
		{"08:10", 490},
		{"8:10", 490},
		{"12:00", 720},
		{"16:00", 960},
		{"17:30", 1050},
		{"23:59", 1439},
	}

	for _, tc := range cases {
		got, err := TimeToMinutes(tc.clock)
		if err != nil {
			t.Errorf("TimeToMinutes(%q) returned error: %v", tc.clock, err)
			continue
		}
		if got != tc.want {
			t.Errorf("TimeToMinutes(%q) = %d, want %d", tc.clock, got, tc.want)
		}
	}
}

func TestTimeToMinutes_Invalid(t *testing.T) {
	cases := []string{
		"",
		"noon",
		"12",
		"24:00",
		"12:60",
		"-1:30",
		"12:-5",
		"ab:cd",
		"12:3x",
	}

	for _, clock := range cases {
		if _, err := TimeToMinutes(clock); err == nil {
			t.Errorf("TimeToMinutes(%q) should fail", clock)
		} else if !errors.Is(err, ErrInvalidClock) {
			t.Errorf("TimeToMinutes(%q) error should wrap ErrInvalidClock, got: %v", clock, err)
		}
	}
}

func TestMinutesToTime_ZeroPadded(t *testing.T) {
	cases := []struct {
		minutes int
		want    string
	}{
		{0, "00:00"},
		{1, "00:01"},
		{490, "08:10"},
		{720, "12:00"},
		{1050, "17:30"},
		{1439, "23:59"},
	}

	for _, tc := range cases {
		if got := MinutesToTime(tc.minutes); got != tc.want {
			t.Errorf("MinutesToTime(%d) = %q, want %q", tc.minutes, got, tc.want)
		}
	}
}

func TestMinutesToTime_RoundTrip(t *testing.T) {
	for m := 0; m < MinutesPerDay; m++ {
		back, err := TimeToMinutes(MinutesToTime(m))
		if err != nil {
			t.Fatalf("round trip of %d failed to parse: %v", m, err)
		}
		if back != m {
			t.Fatalf("round trip of %d came back as %d", m, back)
		}
	}
}

func TestIntervalsOverlap(t *testing.T) {
	cases := []struct {
		name           string
		s1, e1, s2, e2 int
		want           bool
	}{
		{"partial overlap", 540, 660, 600, 720, true},
		{"contained", 540, 720, 600, 660, true},
		{"identical", 540, 660, 540, 660, true},
		{"disjoint", 540, 600, 660, 720, false},
		{"touching is not overlap", 540, 600, 600, 660, false},
		{"touching reversed", 600, 660, 540, 600, false},
		{"one minute shared", 540, 601, 600, 660, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IntervalsOverlap(tc.s1, tc.e1, tc.s2, tc.e2); got != tc.want {
				t.Errorf("IntervalsOverlap(%d,%d,%d,%d) = %v, want %v",
					tc.s1, tc.e1, tc.s2, tc.e2, got, tc.want)
			}
			// symmetry
			if got := IntervalsOverlap(tc.s2, tc.e2, tc.s1, tc.e1); got != tc.want {
				t.Errorf("IntervalsOverlap(%d,%d,%d,%d) = %v, want %v (argument order must not matter)",
					tc.s2, tc.e2, tc.s1, tc.e1, got, tc.want)
			}
		})
	}
}
