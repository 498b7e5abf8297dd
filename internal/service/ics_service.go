package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/teambition/rrule-go"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/LadaVilada/kido-sub000/config"
	"github.com/LadaVilada/kido-sub000/internal/dto"
	"github.com/LadaVilada/kido-sub000/internal/model"
	"github.com/LadaVilada/kido-sub000/internal/repository"
	"github.com/LadaVilada/kido-sub000/internal/schedule"
	"github.com/LadaVilada/kido-sub000/pkg/redis"
)

// ── ICS business errors ──

var (
	ErrICSParseFail = errors.New("failed to parse ics content")
	ErrICSNoEvents  = errors.New("no importable events in ics content")
)

const (
	icsMaxFileSize = 5 * 1024 * 1024 // 5MB
	icsProductID   = "-//kido//calendar//EN"
)

// byDayCodes maps Go weekday numbering (0=Sunday) to RFC 5545 BYDAY codes.
var byDayCodes = [7]string{"SU", "MO", "TU", "WE", "TH", "FR", "SA"}

// ICSService bridges weekly activities and iCalendar feeds.
//
// Export writes one VEVENT per activity with a FREQ=WEEKLY RRULE.
// Import walks the opposite direction: VEVENTs are expanded over a
// bounded window, collapsed back into weekly rules (weekday set plus
// clock times) and created for a designated child with source "ics".
type ICSService interface {
	// ExportCalendar serializes the caller's activities as an iCalendar feed.
	ExportCalendar(ctx context.Context, callerID string) (*bytes.Buffer, string, error)
	// ImportActivities creates activities for a child from an .ics payload.
	ImportActivities(ctx context.Context, reader io.Reader, childID, callerID string) (*dto.ImportICSResponse, error)
}

type icsService struct {
	cfg    *config.Config
	repo   *repository.Repository
	rdb    *redis.Client
	logger *zap.Logger
}

// NewICSService creates an ICSService instance.
func NewICSService(cfg *config.Config, repo *repository.Repository, rdb *redis.Client, logger *zap.Logger) ICSService {
	return &icsService{cfg: cfg, repo: repo, rdb: rdb, logger: logger}
}

// ═══════════════════════════════════════════════════════════
// ExportCalendar — activities as an iCalendar feed
// ═══════════════════════════════════════════════════════════
//
// Clock times are wall-clock values; they are emitted as UTC instants
// so that HH:MM and the weekday survive a round trip verbatim. Rules
// the generator would skip (missing child, bad clocks, empty day set)
// are skipped here too.

func (s *icsService) ExportCalendar(ctx context.Context, callerID string) (*bytes.Buffer, string, error) {
	rules, children, err := loadScheduleInputs(ctx, s.repo, callerID)
	if err != nil {
		s.logger.Error("load schedule inputs failed", zap.Error(err))
		return nil, "", err
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(icsProductID)

	now := time.Now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	count := 0
	for _, rule := range rules {
		child, ok := children[rule.ChildID]
		if !ok {
			continue
		}
		startMin, err := schedule.TimeToMinutes(rule.StartTime)
		if err != nil {
			continue
		}
		endMin, err := schedule.TimeToMinutes(rule.EndTime)
		if err != nil {
			continue
		}
		if len(rule.DaysOfWeek) == 0 {
			continue
		}

		days := make(map[int]bool, len(rule.DaysOfWeek))
		codes := make([]string, 0, len(rule.DaysOfWeek))
		sorted := append([]int(nil), rule.DaysOfWeek...)
		sort.Ints(sorted)
		for _, d := range sorted {
			if d < 0 || d > 6 || days[d] {
				continue
			}
			days[d] = true
			codes = append(codes, byDayCodes[d])
		}
		if len(codes) == 0 {
			continue
		}

		// DTSTART anchors on the next matching weekday from today
		anchor := today
		for i := 0; i < 7; i++ {
			if days[int(anchor.Weekday())] {
				break
			}
			anchor = anchor.AddDate(0, 0, 1)
		}
		dtStart := anchor.Add(time.Duration(startMin) * time.Minute)
		dtEnd := anchor.Add(time.Duration(endMin) * time.Minute)

		event := cal.AddEvent(rule.ID + "@kido")
		event.SetDtStampTime(now)
		event.SetStartAt(dtStart)
		event.SetEndAt(dtEnd)
		event.SetSummary(rule.Title)
		if rule.Location != "" {
			event.SetLocation(rule.Location)
		}
		event.SetDescription("Child: " + child.Name)
		event.SetProperty(ics.ComponentPropertyRrule, "FREQ=WEEKLY;BYDAY="+strings.Join(codes, ","))
		count++
	}

	s.logger.Info("calendar exported",
		zap.String("user_id", callerID),
		zap.Int("events", count))

	return bytes.NewBufferString(cal.Serialize()), "kido-calendar.ics", nil
}

// ═══════════════════════════════════════════════════════════
// ImportActivities — weekly rules from an .ics payload
// ═══════════════════════════════════════════════════════════
//
// Recovery pipeline:
//  1. Parse VEVENTs; expand each RRULE over the import window and
//     collect the weekdays its occurrences land on. A single event
//     inside the window contributes its own weekday.
//  2. Merge events sharing title and clock times, uniting weekdays
//     (feeds often spell one weekly lesson as many single events).
//  3. Validate each recovered rule and batch-create the survivors.
//
// Clock times are read in the caller's default timezone so that a feed
// exported elsewhere lands on the clock the family actually sees.

// parsedEvent is the per-VEVENT intermediate form.
type parsedEvent struct {
	Title     string
	Location  string
	Days      map[int]bool
	StartTime string // "HH:MM"
	EndTime   string // "HH:MM"
}

func (s *icsService) ImportActivities(ctx context.Context, reader io.Reader, childID, callerID string) (*dto.ImportICSResponse, error) {
	// 1. The target child must exist and belong to the caller
	child, err := s.repo.Child.GetByID(ctx, childID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrChildNotFound
		}
		s.logger.Error("get child failed", zap.Error(err))
		return nil, err
	}
	if child.UserID != callerID {
		return nil, ErrChildNotFound
	}

	// 2. Parse, capped against oversized payloads
	cal, err := ics.ParseCalendar(io.LimitReader(reader, icsMaxFileSize))
	if err != nil {
		return nil, ErrICSParseFail
	}

	// 3. Resolve the caller's display timezone
	tz := "UTC"
	if settings, err := s.repo.Settings.GetByUser(ctx, callerID); err == nil && settings.DefaultTimezone != "" {
		tz = settings.DefaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		loc, tz = time.UTC, "UTC"
	}

	nowLocal := time.Now().In(loc)
	windowStart := time.Date(nowLocal.Year(), nowLocal.Month(), nowLocal.Day(), 0, 0, 0, 0, loc)
	windowEnd := windowStart.AddDate(0, 0, s.cfg.Calendar.ImportWindowDays)

	// 4. Per-VEVENT extraction
	var events []parsedEvent
	for _, evt := range cal.Events() {
		parsed, ok := s.parseVEvent(evt, loc, windowStart, windowEnd)
		if !ok {
			continue
		}
		events = append(events, parsed)
	}

	// 5. Merge same title + clock times, uniting weekday sets
	merged := mergeImportedEvents(events)

	// 6. Validate and map to activities
	activities := make([]model.Activity, 0, len(merged))
	imported := make([]dto.ImportedActivityEvent, 0, len(merged))
	for _, evt := range merged {
		days := make([]int, 0, len(evt.Days))
		for d := range evt.Days {
			days = append(days, d)
		}
		normalized := normalizeDays(days)
		if err := validateRule(evt.StartTime, evt.EndTime, normalized, tz); err != nil {
			s.logger.Warn("imported event rejected",
				zap.String("title", evt.Title),
				zap.Error(err))
			continue
		}

		activity := model.Activity{
			UserID:     callerID,
			ChildID:    childID,
			Title:      evt.Title,
			Location:   evt.Location,
			DaysOfWeek: normalized,
			StartTime:  evt.StartTime,
			EndTime:    evt.EndTime,
			Timezone:   tz,
			Source:     model.ActivitySourceICS,
		}
		activity.CreatedBy = &callerID
		activity.UpdatedBy = &callerID
		activities = append(activities, activity)

		imported = append(imported, dto.ImportedActivityEvent{
			Title:      evt.Title,
			Location:   evt.Location,
			DaysOfWeek: normalized,
			StartTime:  evt.StartTime,
			EndTime:    evt.EndTime,
		})
	}
	if len(activities) == 0 {
		return nil, ErrICSNoEvents
	}

	// 7. Persist and refresh views
	if err := s.repo.Activity.BatchCreate(ctx, activities); err != nil {
		s.logger.Error("batch create activities failed", zap.Error(err))
		return nil, err
	}
	s.invalidateViews(ctx, callerID)

	s.logger.Info("ics imported",
		zap.String("user_id", callerID),
		zap.String("child_id", childID),
		zap.Int("imported", len(activities)))

	return &dto.ImportICSResponse{
		ImportedCount: len(activities),
		Activities:    imported,
	}, nil
}

// parseVEvent extracts one weekly-rule candidate from a VEVENT.
func (s *icsService) parseVEvent(evt *ics.VEvent, loc *time.Location, windowStart, windowEnd time.Time) (parsedEvent, bool) {
	summary := evt.GetProperty(ics.ComponentPropertySummary)
	if summary == nil || strings.TrimSpace(summary.Value) == "" {
		return parsedEvent{}, false
	}
	title := strings.TrimSpace(summary.Value)

	start, err := evt.GetStartAt()
	if err != nil {
		return parsedEvent{}, false
	}
	end, err := evt.GetEndAt()
	if err != nil {
		// No DTEND; assume a one-hour slot
		end = start.Add(time.Hour)
	}

	location := ""
	if p := evt.GetProperty(ics.ComponentPropertyLocation); p != nil {
		location = strings.TrimSpace(p.Value)
	}

	days := s.collectWeekdays(evt, start, loc, windowStart, windowEnd)
	if len(days) == 0 {
		return parsedEvent{}, false
	}

	return parsedEvent{
		Title:     title,
		Location:  location,
		Days:      days,
		StartTime: start.In(loc).Format("15:04"),
		EndTime:   end.In(loc).Format("15:04"),
	}, true
}

// collectWeekdays expands the event's recurrence over the import window
// and returns the set of weekdays its occurrences land on.
func (s *icsService) collectWeekdays(evt *ics.VEvent, start time.Time, loc *time.Location, windowStart, windowEnd time.Time) map[int]bool {
	days := make(map[int]bool)

	rruleProp := evt.GetProperty(ics.ComponentPropertyRrule)
	if rruleProp == nil {
		// Single event; keep it only when it falls inside the window
		local := start.In(loc)
		if !local.Before(windowStart) && !local.After(windowEnd) {
			days[int(local.Weekday())] = true
		}
		return days
	}

	r, err := rrule.StrToRRule(rruleProp.Value)
	if err != nil {
		s.logger.Warn("unparseable RRULE, falling back to event weekday",
			zap.String("rrule", rruleProp.Value),
			zap.Error(err))
		days[int(start.In(loc).Weekday())] = true
		return days
	}
	r.DTStart(start)

	var set rrule.Set
	set.RRule(r)
	for _, prop := range evt.GetProperties(ics.ComponentPropertyExdate) {
		for _, part := range strings.Split(prop.Value, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			if t, err := parseICSTimestamp(part, start.Location()); err == nil {
				set.ExDate(t.In(start.Location()))
			}
		}
	}

	for _, occ := range set.Between(windowStart.In(start.Location()), windowEnd.In(start.Location()), true) {
		days[int(occ.In(loc).Weekday())] = true
	}
	return days
}

// mergeImportedEvents merges events that share title and clock times,
// uniting their weekday sets, preserving first-seen order.
func mergeImportedEvents(events []parsedEvent) []parsedEvent {
	type key struct {
		Title     string
		StartTime string
		EndTime   string
	}
	merged := make(map[key]*parsedEvent)
	order := []key{}

	for _, e := range events {
		k := key{Title: e.Title, StartTime: e.StartTime, EndTime: e.EndTime}
		if existing, ok := merged[k]; ok {
			for d := range e.Days {
				existing.Days[d] = true
			}
			if existing.Location == "" {
				existing.Location = e.Location
			}
		} else {
			cp := e
			merged[k] = &cp
			order = append(order, k)
		}
	}

	result := make([]parsedEvent, 0, len(merged))
	for _, k := range order {
		result = append(result, *merged[k])
	}
	return result
}

// ── Helpers ──

// parseICSTimestamp parses the common ICS date and date-time forms.
// Values without a Z suffix are interpreted in loc.
func parseICSTimestamp(v string, loc *time.Location) (time.Time, error) {
	if strings.HasSuffix(v, "Z") {
		return time.Parse("20060102T150405Z", v)
	}
	if strings.Contains(v, "T") {
		return time.ParseInLocation("20060102T150405", v, loc)
	}
	if t, err := time.ParseInLocation("20060102", v, loc); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("unrecognized ics timestamp: %s", v)
}

func (s *icsService) invalidateViews(ctx context.Context, userID string) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.InvalidateUserViews(ctx, userID); err != nil {
		s.logger.Warn("invalidate calendar cache failed", zap.Error(err))
	}
}
