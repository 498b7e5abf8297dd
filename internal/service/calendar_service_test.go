package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/LadaVilada/kido-sub000/internal/dto"
	"github.com/LadaVilada/kido-sub000/internal/model"
	"github.com/LadaVilada/kido-sub000/internal/repository"
	"github.com/LadaVilada/kido-sub000/internal/schedule"
)

// 2026-03-01 is a Sunday; 2026-03-04 a Wednesday. Fixed dates keep the
// weekday math in these tests honest.

func setupTestCalendarService() (CalendarService, *mockChildRepo, *mockActivityRepo, *mockSettingsRepo) {
	activityRepo := newMockActivityRepo()
	childRepo := newMockChildRepo(activityRepo)
	settingsRepo := newMockSettingsRepo()
	repo := &repository.Repository{
		User:     newMockUserRepo(),
		Child:    childRepo,
		Activity: activityRepo,
		Settings: settingsRepo,
	}

	svc := NewCalendarService(testConfig(), repo, nil, zap.NewNop())
	return svc, childRepo, activityRepo, settingsRepo
}

func seedWeeklyActivity(activityRepo *mockActivityRepo, userID, childID, title string, days []int, start, end string) *model.Activity {
	activity := &model.Activity{
		UserID:     userID,
		ChildID:    childID,
		Title:      title,
		DaysOfWeek: model.IntArray(days),
		StartTime:  start,
		EndTime:    end,
		Timezone:   "UTC",
		Source:     model.ActivitySourceManual,
	}
	_ = activityRepo.Create(context.Background(), activity)
	return activity
}

// ── DayView tests ──

func TestCalendarService_DayView_InvalidDate(t *testing.T) {
	svc, _, _, _ := setupTestCalendarService()

	_, err := svc.DayView(context.Background(), &dto.DayViewRequest{Date: "04/03/2026"}, "user-1")
	if !errors.Is(err, ErrInvalidDate) {
		t.Errorf("want ErrInvalidDate, got: %v", err)
	}
}

func TestCalendarService_DayView_SingleOccurrence(t *testing.T) {
	svc, childRepo, activityRepo, _ := setupTestCalendarService()
	child := createTestChild(childRepo, "user-1", "Mia")
	activity := seedWeeklyActivity(activityRepo, "user-1", child.ChildID, "Swimming", []int{3}, "16:00", "17:00")

	view, err := svc.DayView(context.Background(), &dto.DayViewRequest{Date: "2026-03-04"}, "user-1")
	if err != nil {
		t.Fatalf("DayView should succeed, got: %v", err)
	}

	if view.Date != "2026-03-04" {
		t.Errorf("want Date=2026-03-04, got %s", view.Date)
	}
	if len(view.Occurrences) != 1 {
		t.Fatalf("want 1 occurrence, got %d", len(view.Occurrences))
	}
	occ := view.Occurrences[0]
	if occ.ID != activity.ActivityID+":2026-03-04" {
		t.Errorf("occurrence ID = %s, want %s", occ.ID, activity.ActivityID+":2026-03-04")
	}
	if occ.StartTime != "16:00" || occ.EndTime != "17:00" {
		t.Errorf("clocks = %s-%s, want 16:00-17:00", occ.StartTime, occ.EndTime)
	}
	if occ.StartMinutes != 960 || occ.EndMinutes != 1020 {
		t.Errorf("minutes = %d-%d, want 960-1020", occ.StartMinutes, occ.EndMinutes)
	}
	if !strings.HasPrefix(occ.StartDateTime, "2026-03-04T16:00:00") {
		t.Errorf("StartDateTime = %s, want 2026-03-04T16:00:00 prefix", occ.StartDateTime)
	}
	if occ.ChildName != "Mia" || occ.ChildColor != "#FF5733" {
		t.Errorf("child fields = %s/%s, want Mia/#FF5733", occ.ChildName, occ.ChildColor)
	}

	if len(view.Layouts) != 1 {
		t.Fatalf("want 1 layout, got %d", len(view.Layouts))
	}
	layout := view.Layouts[0]
	if layout.Column != 0 || layout.IsOverflow {
		t.Errorf("lone occurrence layout = column %d overflow %v, want 0/false", layout.Column, layout.IsOverflow)
	}
	if len(layout.Segments) != 1 || layout.Segments[0].Width != 100 || layout.Segments[0].Left != 0 {
		t.Errorf("lone occurrence should span the full width, got %+v", layout.Segments)
	}
	if view.MaxColumns != schedule.DefaultMaxColumns {
		t.Errorf("want MaxColumns=%d, got %d", schedule.DefaultMaxColumns, view.MaxColumns)
	}
	if view.OverflowCount != 0 {
		t.Errorf("want OverflowCount=0, got %d", view.OverflowCount)
	}
}

func TestCalendarService_DayView_WrongWeekdayEmpty(t *testing.T) {
	svc, childRepo, activityRepo, _ := setupTestCalendarService()
	child := createTestChild(childRepo, "user-1", "Mia")
	seedWeeklyActivity(activityRepo, "user-1", child.ChildID, "Swimming", []int{3}, "16:00", "17:00")

	// Thursday; the rule only fires on Wednesday
	view, err := svc.DayView(context.Background(), &dto.DayViewRequest{Date: "2026-03-05"}, "user-1")
	if err != nil {
		t.Fatalf("DayView should succeed, got: %v", err)
	}
	if len(view.Occurrences) != 0 || len(view.Layouts) != 0 {
		t.Errorf("want empty day, got %d occurrences %d layouts", len(view.Occurrences), len(view.Layouts))
	}
}

func TestCalendarService_DayView_OverlapSharesWidth(t *testing.T) {
	svc, childRepo, activityRepo, _ := setupTestCalendarService()
	mia := createTestChild(childRepo, "user-1", "Mia")
	leo := createTestChild(childRepo, "user-1", "Leo")
	seedWeeklyActivity(activityRepo, "user-1", mia.ChildID, "Swimming", []int{3}, "16:00", "17:00")
	seedWeeklyActivity(activityRepo, "user-1", leo.ChildID, "Piano", []int{3}, "16:30", "17:30")

	view, err := svc.DayView(context.Background(), &dto.DayViewRequest{Date: "2026-03-04"}, "user-1")
	if err != nil {
		t.Fatalf("DayView should succeed, got: %v", err)
	}

	if len(view.Occurrences) != 2 {
		t.Fatalf("want 2 occurrences, got %d", len(view.Occurrences))
	}
	// sorted by start, earliest first
	if view.Occurrences[0].Title != "Swimming" {
		t.Errorf("want Swimming first, got %s", view.Occurrences[0].Title)
	}

	for _, layout := range view.Layouts {
		if len(layout.Segments) != 2 {
			t.Fatalf("%s: want 2 segments, got %d", layout.Occurrence.Title, len(layout.Segments))
		}
		var sharedWidth float64
		for _, seg := range layout.Segments {
			if seg.StartMinutes == 990 && seg.EndMinutes == 1020 {
				sharedWidth = seg.Width
			}
		}
		if sharedWidth != 50 {
			t.Errorf("%s: shared stretch width = %.2f, want 50.00", layout.Occurrence.Title, sharedWidth)
		}
	}
	if view.OverflowCount != 0 {
		t.Errorf("want OverflowCount=0, got %d", view.OverflowCount)
	}
}

func TestCalendarService_DayView_OverflowBeyondCap(t *testing.T) {
	svc, childRepo, activityRepo, settingsRepo := setupTestCalendarService()
	mia := createTestChild(childRepo, "user-1", "Mia")
	leo := createTestChild(childRepo, "user-1", "Leo")
	seedWeeklyActivity(activityRepo, "user-1", mia.ChildID, "Swimming", []int{3}, "16:00", "17:00")
	seedWeeklyActivity(activityRepo, "user-1", leo.ChildID, "Piano", []int{3}, "16:30", "17:30")
	_ = settingsRepo.Create(context.Background(), &model.CalendarSettings{
		UserID:          "user-1",
		MaxColumns:      1,
		WeekStartsOn:    0,
		DefaultTimezone: "UTC",
	})

	view, err := svc.DayView(context.Background(), &dto.DayViewRequest{Date: "2026-03-04"}, "user-1")
	if err != nil {
		t.Fatalf("DayView should succeed, got: %v", err)
	}

	if view.MaxColumns != 1 {
		t.Errorf("want MaxColumns=1 from settings, got %d", view.MaxColumns)
	}
	if view.OverflowCount != 1 {
		t.Errorf("want OverflowCount=1, got %d", view.OverflowCount)
	}
}

// ── WeekView tests ──

func TestCalendarService_WeekView_InvalidStart(t *testing.T) {
	svc, _, _, _ := setupTestCalendarService()

	_, err := svc.WeekView(context.Background(), &dto.WeekViewRequest{Start: "March 1"}, "user-1")
	if !errors.Is(err, ErrInvalidDate) {
		t.Errorf("want ErrInvalidDate, got: %v", err)
	}
}

func TestCalendarService_WeekView_ExplicitStart(t *testing.T) {
	svc, childRepo, activityRepo, _ := setupTestCalendarService()
	child := createTestChild(childRepo, "user-1", "Mia")
	seedWeeklyActivity(activityRepo, "user-1", child.ChildID, "Swimming", []int{3}, "16:00", "17:00")

	view, err := svc.WeekView(context.Background(), &dto.WeekViewRequest{Start: "2026-03-01"}, "user-1")
	if err != nil {
		t.Fatalf("WeekView should succeed, got: %v", err)
	}

	if view.StartDate != "2026-03-01" || view.EndDate != "2026-03-07" {
		t.Errorf("window = %s..%s, want 2026-03-01..2026-03-07", view.StartDate, view.EndDate)
	}
	if len(view.Days) != 7 {
		t.Fatalf("want 7 days, got %d", len(view.Days))
	}

	total := 0
	for i, day := range view.Days {
		wantDate := time.Date(2026, 3, 1+i, 0, 0, 0, 0, time.Local).Format("2006-01-02")
		if day.Date != wantDate {
			t.Errorf("day %d date = %s, want %s", i, day.Date, wantDate)
		}
		total += len(day.Occurrences)
	}
	if total != 1 {
		t.Errorf("want 1 occurrence across the week, got %d", total)
	}
	if len(view.Days[3].Occurrences) != 1 {
		t.Errorf("the Wednesday slot should hold the occurrence, got %d", len(view.Days[3].Occurrences))
	}
}

func TestCalendarService_WeekView_DefaultAnchorHonorsWeekStart(t *testing.T) {
	svc, _, _, settingsRepo := setupTestCalendarService()
	_ = settingsRepo.Create(context.Background(), &model.CalendarSettings{
		UserID:          "user-1",
		MaxColumns:      4,
		WeekStartsOn:    1, // Monday
		DefaultTimezone: "UTC",
	})

	view, err := svc.WeekView(context.Background(), &dto.WeekViewRequest{}, "user-1")
	if err != nil {
		t.Fatalf("WeekView should succeed, got: %v", err)
	}

	start, err := time.ParseInLocation("2006-01-02", view.StartDate, time.Local)
	if err != nil {
		t.Fatalf("StartDate %s not parseable: %v", view.StartDate, err)
	}
	if start.Weekday() != time.Monday {
		t.Errorf("anchor weekday = %s, want Monday", start.Weekday())
	}
	if view.EndDate != start.AddDate(0, 0, 6).Format("2006-01-02") {
		t.Errorf("EndDate = %s, want 6 days past %s", view.EndDate, view.StartDate)
	}
	if len(view.Days) != 7 {
		t.Errorf("want 7 days, got %d", len(view.Days))
	}
}

// ── Upcoming tests ──

func TestCalendarService_Upcoming_Limit(t *testing.T) {
	svc, childRepo, activityRepo, _ := setupTestCalendarService()
	child := createTestChild(childRepo, "user-1", "Mia")
	seedWeeklyActivity(activityRepo, "user-1", child.ChildID, "Daily Club",
		[]int{0, 1, 2, 3, 4, 5, 6}, "00:00", "23:59")

	result, err := svc.Upcoming(context.Background(), &dto.UpcomingRequest{Limit: 5}, "user-1")
	if err != nil {
		t.Fatalf("Upcoming should succeed, got: %v", err)
	}
	if len(result.Occurrences) != 5 {
		t.Fatalf("want 5 occurrences, got %d", len(result.Occurrences))
	}

	for i := 1; i < len(result.Occurrences); i++ {
		if result.Occurrences[i].Date < result.Occurrences[i-1].Date {
			t.Errorf("occurrences out of order: %s before %s",
				result.Occurrences[i-1].Date, result.Occurrences[i].Date)
		}
	}
}

func TestCalendarService_Upcoming_DefaultLimit(t *testing.T) {
	svc, childRepo, activityRepo, _ := setupTestCalendarService()
	child := createTestChild(childRepo, "user-1", "Mia")
	seedWeeklyActivity(activityRepo, "user-1", child.ChildID, "Daily Club",
		[]int{0, 1, 2, 3, 4, 5, 6}, "00:00", "23:59")

	result, err := svc.Upcoming(context.Background(), &dto.UpcomingRequest{}, "user-1")
	if err != nil {
		t.Fatalf("Upcoming should succeed, got: %v", err)
	}
	if len(result.Occurrences) != defaultUpcomingLimit {
		t.Errorf("want the default %d occurrences, got %d", defaultUpcomingLimit, len(result.Occurrences))
	}
}

func TestCalendarService_Upcoming_SkipsDanglingChild(t *testing.T) {
	svc, _, activityRepo, _ := setupTestCalendarService()
	// no child row backs this activity
	seedWeeklyActivity(activityRepo, "user-1", "ghost-child", "Orphaned",
		[]int{0, 1, 2, 3, 4, 5, 6}, "10:00", "11:00")

	result, err := svc.Upcoming(context.Background(), &dto.UpcomingRequest{}, "user-1")
	if err != nil {
		t.Fatalf("Upcoming should succeed, got: %v", err)
	}
	if len(result.Occurrences) != 0 {
		t.Errorf("unresolvable child should be skipped, got %d occurrences", len(result.Occurrences))
	}
}

// ── weekStart tests ──

func TestWeekStart(t *testing.T) {
	wednesday := time.Date(2026, 3, 4, 15, 30, 0, 0, time.Local)

	cases := []struct {
		name         string
		t            time.Time
		weekStartsOn int
		want         string
	}{
		{"sunday week from midweek", wednesday, 0, "2026-03-01"},
		{"monday week from midweek", wednesday, 1, "2026-03-02"},
		{"anchor day is its own start", time.Date(2026, 3, 1, 8, 0, 0, 0, time.Local), 0, "2026-03-01"},
		{"walks into previous month", time.Date(2026, 3, 2, 0, 0, 0, 0, time.Local), 3, "2026-02-25"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := weekStart(tc.t, tc.weekStartsOn)
			if got.Format("2006-01-02") != tc.want {
				t.Errorf("weekStart(%s, %d) = %s, want %s",
					tc.t.Format("2006-01-02"), tc.weekStartsOn, got.Format("2006-01-02"), tc.want)
			}
			if got.Hour() != 0 || got.Minute() != 0 {
				t.Errorf("weekStart must normalize to midnight, got %s", got.Format("15:04"))
			}
		})
	}
}
