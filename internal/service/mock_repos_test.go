package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"gorm.io/gorm"

	"github.com/LadaVilada/kido-sub000/internal/model"
	pkgerrors "github.com/LadaVilada/kido-sub000/pkg/errors"
)

// ── Mock ChildRepository ──

type mockChildRepo struct {
	children   map[string]*model.Child
	activities *mockActivityRepo
	idCounter  int
}

func newMockChildRepo(activities *mockActivityRepo) *mockChildRepo {
	return &mockChildRepo{
		children:   make(map[string]*model.Child),
		activities: activities,
	}
}

func (m *mockChildRepo) Create(_ context.Context, child *model.Child) error {
	if child.ChildID == "" {
		m.idCounter++
		child.ChildID = fmt.Sprintf("child-%d", m.idCounter)
	}
	if child.Version == 0 {
		child.Version = 1
	}
	child.CreatedAt = time.Now()
	child.UpdatedAt = time.Now()
	cp := *child
	m.children[child.ChildID] = &cp
	return nil
}

func (m *mockChildRepo) GetByID(_ context.Context, id string) (*model.Child, error) {
	if c, ok := m.children[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockChildRepo) ListByUser(_ context.Context, userID string) ([]model.Child, error) {
	var result []model.Child
	for _, c := range m.children {
		if c.UserID == userID {
			result = append(result, *c)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (m *mockChildRepo) Update(_ context.Context, child *model.Child) error {
	existing, ok := m.children[child.ChildID]
	if !ok || existing.Version != child.Version {
		return pkgerrors.ErrOptimisticLock
	}
	child.Version++
	child.UpdatedAt = time.Now()
	cp := *child
	m.children[child.ChildID] = &cp
	return nil
}

func (m *mockChildRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.children, id)
	return nil
}

func (m *mockChildRepo) CountActivities(_ context.Context, childID string) (int64, error) {
	var count int64
	for _, a := range m.activities.activities {
		if a.ChildID == childID {
			count++
		}
	}
	return count, nil
}

// ── Mock ActivityRepository ──

type mockActivityRepo struct {
	activities map[string]*model.Activity
	idCounter  int
}

func newMockActivityRepo() *mockActivityRepo {
	return &mockActivityRepo{activities: make(map[string]*model.Activity)}
}

func (m *mockActivityRepo) Create(_ context.Context, activity *model.Activity) error {
	if activity.ActivityID == "" {
		m.idCounter++
		activity.ActivityID = fmt.Sprintf("activity-%d", m.idCounter)
	}
	if activity.Version == 0 {
		activity.Version = 1
	}
	activity.CreatedAt = time.Now()
	activity.UpdatedAt = time.Now()
	cp := *activity
	m.activities[activity.ActivityID] = &cp
	return nil
}

func (m *mockActivityRepo) GetByID(_ context.Context, id string) (*model.Activity, error) {
	if a, ok := m.activities[id]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockActivityRepo) ListByUser(_ context.Context, userID string) ([]model.Activity, error) {
	var result []model.Activity
	for _, a := range m.activities {
		if a.UserID == userID {
			result = append(result, *a)
		}
	}
	sortActivities(result)
	return result, nil
}

func (m *mockActivityRepo) ListByChild(_ context.Context, childID string) ([]model.Activity, error) {
	var result []model.Activity
	for _, a := range m.activities {
		if a.ChildID == childID {
			result = append(result, *a)
		}
	}
	sortActivities(result)
	return result, nil
}

func (m *mockActivityRepo) ListPage(_ context.Context, userID, childID string, offset, limit int) ([]model.Activity, int64, error) {
	var all []model.Activity
	for _, a := range m.activities {
		if a.UserID != userID {
			continue
		}
		if childID != "" && a.ChildID != childID {
			continue
		}
		all = append(all, *a)
	}
	sortActivities(all)
	total := int64(len(all))
	if offset >= len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (m *mockActivityRepo) BatchCreate(_ context.Context, activities []model.Activity) error {
	for i := range activities {
		if activities[i].ActivityID == "" {
			m.idCounter++
			activities[i].ActivityID = fmt.Sprintf("activity-%d", m.idCounter)
		}
		cp := activities[i]
		m.activities[cp.ActivityID] = &cp
	}
	return nil
}

func (m *mockActivityRepo) Update(_ context.Context, activity *model.Activity) error {
	existing, ok := m.activities[activity.ActivityID]
	if !ok || existing.Version != activity.Version {
		return pkgerrors.ErrOptimisticLock
	}
	activity.Version++
	activity.UpdatedAt = time.Now()
	cp := *activity
	m.activities[activity.ActivityID] = &cp
	return nil
}

func (m *mockActivityRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.activities, id)
	return nil
}

func (m *mockActivityRepo) DeleteByChild(_ context.Context, childID string, _ string) error {
	for id, a := range m.activities {
		if a.ChildID == childID {
			delete(m.activities, id)
		}
	}
	return nil
}

// sortActivities mirrors the repository ordering, start time then title.
func sortActivities(activities []model.Activity) {
	sort.Slice(activities, func(i, j int) bool {
		if activities[i].StartTime != activities[j].StartTime {
			return activities[i].StartTime < activities[j].StartTime
		}
		return activities[i].Title < activities[j].Title
	})
}

// ── Mock CalendarSettingsRepository ──

type mockSettingsRepo struct {
	settings  map[string]*model.CalendarSettings // key: user_id
	idCounter int
}

func newMockSettingsRepo() *mockSettingsRepo {
	return &mockSettingsRepo{settings: make(map[string]*model.CalendarSettings)}
}

func (m *mockSettingsRepo) GetByUser(_ context.Context, userID string) (*model.CalendarSettings, error) {
	if s, ok := m.settings[userID]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSettingsRepo) Create(_ context.Context, settings *model.CalendarSettings) error {
	if settings.SettingsID == "" {
		m.idCounter++
		settings.SettingsID = fmt.Sprintf("settings-%d", m.idCounter)
	}
	settings.CreatedAt = time.Now()
	settings.UpdatedAt = time.Now()
	cp := *settings
	m.settings[settings.UserID] = &cp
	return nil
}

func (m *mockSettingsRepo) Update(_ context.Context, settings *model.CalendarSettings) error {
	settings.UpdatedAt = time.Now()
	cp := *settings
	m.settings[settings.UserID] = &cp
	return nil
}
