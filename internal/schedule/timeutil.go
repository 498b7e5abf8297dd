package schedule

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// MinutesPerDay is the number of minutes in one calendar day.
const MinutesPerDay = 24 * 60

// ErrInvalidClock reports a time-of-day string that is not a valid
// 24-hour "HH:MM" value.
var ErrInvalidClock = errors.New("invalid clock time, want \"HH:MM\"")

// TimeToMinutes converts a 24-hour "HH:MM" clock string into minutes
// since midnight (0..1439). Hours must be 0-23 and minutes 0-59; a
// single-digit hour ("8:30") is accepted. Rules are expected to be
// validated with this function once, where they are constructed, so the
// engine itself can assume well-formed input.
func TimeToMinutes(clock string) (int, error) {
	hh, mm, ok := strings.Cut(clock, ":")
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, clock)
	}
	h, err := strconv.Atoi(hh)
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, clock)
	}
	m, err := strconv.Atoi(mm)
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, clock)
	}
	return h*60 + m, nil
}

// MinutesToTime renders minutes since midnight as a zero-padded "HH:MM"
// string. It is the inverse of TimeToMinutes for inputs in 0..1439.
func MinutesToTime(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// IntervalsOverlap reports whether two half-open minute intervals share
// any time. The comparison is strictly exclusive of the endpoints:
// an interval ending exactly when another starts does NOT overlap it.
// Every grouping and width computation downstream depends on this
// tie-break.
func IntervalsOverlap(start1, end1, start2, end2 int) bool {
	return start1 < end2 && start2 < end1
}
