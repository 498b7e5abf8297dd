package schedule

import (
	"sort"
	"time"
)

// Rule is the read-only weekly recurrence view of a stored activity that
// the generator consumes. DaysOfWeek uses Go's weekday numbering,
// 0 = Sunday through 6 = Saturday. Timezone is the rule's IANA zone
// identifier; it is carried for collaborators but not applied here:
// occurrence times are materialized as wall-clock values in the location
// of the date window being walked.
type Rule struct {
	ID         string
	ChildID    string
	Title      string
	Location   string
	DaysOfWeek []int
	StartTime  string // "HH:MM"
	EndTime    string // "HH:MM"
	Timezone   string
}

// ChildInfo is the display data denormalized onto generated occurrences.
// The caller supplies the full child lookup; a rule whose ChildID is
// missing from it is skipped without error.
type ChildInfo struct {
	Name  string
	Color string
}

// Occurrence is one concrete materialization of a Rule on one calendar
// date. Occurrences are created fresh on every generation call, never
// mutated and never persisted; the caller owns each result outright.
type Occurrence struct {
	ID            string    // ActivityID + ":" + date, unique within a generation
	ActivityID    string    // back-reference to the rule
	Date          time.Time // calendar day, truncated to local midnight
	StartDateTime time.Time
	EndDateTime   time.Time
	StartMinutes  int // minutes since the occurrence day's midnight
	EndMinutes    int
	Title         string
	Location      string
	ChildName     string
	ChildColor    string
}

// Generate expands rules against the inclusive date window
// [rangeStart, rangeEnd] into a flat list of occurrences, sorted by
// start time ascending with ties broken by child display name.
//
// The walk is per calendar day, normalized to midnight in rangeStart's
// location. A backwards window yields an empty result rather than an
// error, as does a rule with an empty day set. Rules whose child cannot
// be resolved, or whose clock strings no longer parse, are skipped
// silently: the upstream data source is collaborative and eventually
// consistent, so a dangling reference is a normal transient state.
func Generate(rules []Rule, children map[string]ChildInfo, rangeStart, rangeEnd time.Time) []Occurrence {
	out := make([]Occurrence, 0)

	first := startOfDay(rangeStart)
	last := startOfDay(rangeEnd)

	for _, rule := range rules {
		child, ok := children[rule.ChildID]
		if !ok {
			continue
		}
		startMin, err := TimeToMinutes(rule.StartTime)
		if err != nil {
			continue
		}
		endMin, err := TimeToMinutes(rule.EndTime)
		if err != nil {
			continue
		}
		if len(rule.DaysOfWeek) == 0 {
			continue
		}
		days := make(map[int]bool, len(rule.DaysOfWeek))
		for _, d := range rule.DaysOfWeek {
			days[d] = true
		}

		for day := first; !day.After(last); day = day.AddDate(0, 0, 1) {
			if !days[int(day.Weekday())] {
				continue
			}
			out = append(out, Occurrence{
				ID:            rule.ID + ":" + day.Format("2006-01-02"),
				ActivityID:    rule.ID,
				Date:          day,
				StartDateTime: atClock(day, startMin),
				EndDateTime:   atClock(day, endMin),
				StartMinutes:  startMin,
				EndMinutes:    endMin,
				Title:         rule.Title,
				Location:      rule.Location,
				ChildName:     child.Name,
				ChildColor:    child.Color,
			})
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].StartDateTime.Equal(out[j].StartDateTime) {
			return out[i].StartDateTime.Before(out[j].StartDateTime)
		}
		return out[i].ChildName < out[j].ChildName
	})

	return out
}

// GenerateDay expands rules for a single calendar day.
func GenerateDay(rules []Rule, children map[string]ChildInfo, day time.Time) []Occurrence {
	return Generate(rules, children, day, day)
}

// GenerateWeek expands rules for the 7-day window beginning at weekStart.
func GenerateWeek(rules []Rule, children map[string]ChildInfo, weekStart time.Time) []Occurrence {
	return Generate(rules, children, weekStart, weekStart.AddDate(0, 0, 6))
}

// startOfDay truncates t to midnight in its own location.
func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// atClock combines a day with a minutes-since-midnight clock value as a
// wall-clock time in the day's location.
func atClock(day time.Time, minutes int) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), minutes/60, minutes%60, 0, 0, day.Location())
}
