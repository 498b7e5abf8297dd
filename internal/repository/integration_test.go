//go:build integration

package repository_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	pkgerrors "github.com/LadaVilada/kido-sub000/pkg/errors"

	"github.com/LadaVilada/kido-sub000/internal/model"
	"github.com/LadaVilada/kido-sub000/internal/repository"
)

// ═══════════════════════════════════════════════════════════
// Test Setup
// ═══════════════════════════════════════════════════════════

var testDB *gorm.DB

func TestMain(m *testing.M) {
	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		dsn = "host=localhost port=5433 user=kido password=kido_password dbname=kido_test sslmode=disable TimeZone=UTC"
	}

	var err error
	testDB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "cannot connect to test database: %v\n", err)
		os.Exit(1)
	}

	err = testDB.AutoMigrate(
		&model.User{},
		&model.Child{},
		&model.Activity{},
		&model.CalendarSettings{},
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "AutoMigrate failed: %v\n", err)
		os.Exit(1)
	}

	code := m.Run()
	os.Exit(code)
}

// setupTestData creates a parent account plus one child and returns a
// cleanup function.
func setupTestData(t *testing.T) (user *model.User, child *model.Child, cleanup func()) {
	t.Helper()
	ctx := context.Background()

	user = &model.User{
		Name:         "Test Parent",
		Email:        fmt.Sprintf("parent%d@example.com", time.Now().UnixNano()),
		PasswordHash: "$2a$10$placeholder",
	}
	if err := testDB.WithContext(ctx).Create(user).Error; err != nil {
		t.Fatalf("create user failed: %v", err)
	}

	child = &model.Child{
		UserID: user.UserID,
		Name:   fmt.Sprintf("Kid-%d", time.Now().UnixNano()),
		Color:  "#F97316",
	}
	if err := testDB.WithContext(ctx).Create(child).Error; err != nil {
		t.Fatalf("create child failed: %v", err)
	}

	cleanup = func() {
		testDB.Unscoped().Where("child_id = ?", child.ChildID).Delete(&model.Activity{})
		testDB.Unscoped().Where("child_id = ?", child.ChildID).Delete(&model.Child{})
		testDB.Unscoped().Where("user_id = ?", user.UserID).Delete(&model.CalendarSettings{})
		testDB.Unscoped().Where("user_id = ?", user.UserID).Delete(&model.User{})
	}
	return
}

func newActivity(user *model.User, child *model.Child) *model.Activity {
	return &model.Activity{
		UserID:     user.UserID,
		ChildID:    child.ChildID,
		Title:      "Soccer practice",
		Location:   "City pitch",
		DaysOfWeek: model.IntArray{1, 3, 5},
		StartTime:  "16:00",
		EndTime:    "17:30",
		Timezone:   "Europe/Berlin",
		Source:     model.ActivitySourceManual,
	}
}

// ═══════════════════════════════════════════════════════════
// Test: Transaction Rollback / Commit
// ═══════════════════════════════════════════════════════════

func TestTransaction_Rollback(t *testing.T) {
	user, child, cleanup := setupTestData(t)
	defer cleanup()

	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	tx, err := repo.BeginTx(ctx)
	if err != nil {
		t.Fatalf("BeginTx failed: %v", err)
	}

	txRepo := repo.WithTx(tx)

	activity := newActivity(user, child)
	if err := txRepo.Activity.Create(ctx, activity); err != nil {
		tx.Rollback()
		t.Fatalf("create activity inside tx failed: %v", err)
	}

	tx.Rollback()

	_, err = repo.Activity.GetByID(ctx, activity.ActivityID)
	if err == nil {
		testDB.Unscoped().Where("activity_id = ?", activity.ActivityID).Delete(&model.Activity{})
		t.Fatal("activity should not exist after rollback")
	}
}

func TestTransaction_Commit(t *testing.T) {
	user, child, cleanup := setupTestData(t)
	defer cleanup()

	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	tx, err := repo.BeginTx(ctx)
	if err != nil {
		t.Fatalf("BeginTx failed: %v", err)
	}

	txRepo := repo.WithTx(tx)

	activity := newActivity(user, child)
	if err := txRepo.Activity.Create(ctx, activity); err != nil {
		tx.Rollback()
		t.Fatalf("create activity inside tx failed: %v", err)
	}

	if err := tx.Commit().Error; err != nil {
		t.Fatalf("Commit failed: %v", err)
	}

	found, err := repo.Activity.GetByID(ctx, activity.ActivityID)
	if err != nil {
		t.Fatalf("activity lookup after commit failed: %v", err)
	}
	if found.ActivityID != activity.ActivityID {
		t.Errorf("ID mismatch: expected %s, got %s", activity.ActivityID, found.ActivityID)
	}
}

// ═══════════════════════════════════════════════════════════
// Test: Optimistic Lock
// ═══════════════════════════════════════════════════════════

func TestOptimisticLock_Activity_ConflictDetected(t *testing.T) {
	user, child, cleanup := setupTestData(t)
	defer cleanup()

	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	activity := newActivity(user, child)
	if err := repo.Activity.Create(ctx, activity); err != nil {
		t.Fatalf("create activity failed: %v", err)
	}

	copy1, _ := repo.Activity.GetByID(ctx, activity.ActivityID)
	copy2, _ := repo.Activity.GetByID(ctx, activity.ActivityID)

	copy1.Title = "Soccer practice (moved)"
	if err := repo.Activity.Update(ctx, copy1); err != nil {
		t.Fatalf("first update should succeed: %v", err)
	}

	copy2.Title = "Swimming"
	err := repo.Activity.Update(ctx, copy2)
	if err == nil {
		t.Fatal("expected an optimistic lock conflict, but the update succeeded")
	}
	if err != pkgerrors.ErrOptimisticLock {
		t.Errorf("expected ErrOptimisticLock, got: %v", err)
	}
}

func TestOptimisticLock_VersionIncrement(t *testing.T) {
	user, child, cleanup := setupTestData(t)
	defer cleanup()

	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	activity := newActivity(user, child)
	if err := repo.Activity.Create(ctx, activity); err != nil {
		t.Fatalf("create activity failed: %v", err)
	}

	if activity.Version != 1 {
		t.Errorf("initial version should be 1, got: %d", activity.Version)
	}

	for i := 0; i < 3; i++ {
		got, _ := repo.Activity.GetByID(ctx, activity.ActivityID)
		got.Location = fmt.Sprintf("Pitch %d", i+1)
		if err := repo.Activity.Update(ctx, got); err != nil {
			t.Fatalf("update %d failed: %v", i+1, err)
		}
	}

	final, _ := repo.Activity.GetByID(ctx, activity.ActivityID)
	if final.Version != 4 {
		t.Errorf("expected version=4, got: %d", final.Version)
	}
}

// ═══════════════════════════════════════════════════════════
// Test: INT[] round trip
// ═══════════════════════════════════════════════════════════

func TestActivity_DaysOfWeekRoundTrip(t *testing.T) {
	user, child, cleanup := setupTestData(t)
	defer cleanup()

	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	activity := newActivity(user, child)
	activity.DaysOfWeek = model.IntArray{0, 2, 6}
	if err := repo.Activity.Create(ctx, activity); err != nil {
		t.Fatalf("create activity failed: %v", err)
	}

	found, err := repo.Activity.GetByID(ctx, activity.ActivityID)
	if err != nil {
		t.Fatalf("activity lookup failed: %v", err)
	}
	if len(found.DaysOfWeek) != 3 {
		t.Fatalf("expected 3 days, got %d", len(found.DaysOfWeek))
	}
	for i, want := range []int{0, 2, 6} {
		if found.DaysOfWeek[i] != want {
			t.Errorf("days_of_week[%d] = %d, want %d", i, found.DaysOfWeek[i], want)
		}
	}
}

// ═══════════════════════════════════════════════════════════
// Test: Batch Operations
// ═══════════════════════════════════════════════════════════

func TestActivity_BatchCreate(t *testing.T) {
	user, child, cleanup := setupTestData(t)
	defer cleanup()

	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	activities := make([]model.Activity, 5)
	for i := range activities {
		activities[i] = model.Activity{
			UserID:     user.UserID,
			ChildID:    child.ChildID,
			Title:      fmt.Sprintf("Imported class %d", i+1),
			DaysOfWeek: model.IntArray{i % 7},
			StartTime:  "09:00",
			EndTime:    "10:00",
			Timezone:   "UTC",
			Source:     model.ActivitySourceICS,
		}
	}

	if err := repo.Activity.BatchCreate(ctx, activities); err != nil {
		t.Fatalf("BatchCreate failed: %v", err)
	}

	list, err := repo.Activity.ListByChild(ctx, child.ChildID)
	if err != nil {
		t.Fatalf("ListByChild failed: %v", err)
	}
	if len(list) != 5 {
		t.Errorf("expected 5 activities, got %d", len(list))
	}
}

// ═══════════════════════════════════════════════════════════
// Test: Soft Delete
// ═══════════════════════════════════════════════════════════

func TestChild_SoftDelete(t *testing.T) {
	user, child, cleanup := setupTestData(t)
	defer cleanup()

	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	activity := newActivity(user, child)
	if err := repo.Activity.Create(ctx, activity); err != nil {
		t.Fatalf("create activity failed: %v", err)
	}

	if err := repo.Activity.DeleteByChild(ctx, child.ChildID, user.UserID); err != nil {
		t.Fatalf("DeleteByChild failed: %v", err)
	}
	if err := repo.Child.Delete(ctx, child.ChildID, user.UserID); err != nil {
		t.Fatalf("soft delete failed: %v", err)
	}

	_, err := repo.Child.GetByID(ctx, child.ChildID)
	if err == nil {
		t.Fatal("child should be invisible after soft delete")
	}
	list, err := repo.Activity.ListByChild(ctx, child.ChildID)
	if err != nil {
		t.Fatalf("ListByChild failed: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("activities of a deleted child should be gone, got %d", len(list))
	}

	var found model.Child
	err = testDB.Unscoped().Where("child_id = ?", child.ChildID).First(&found).Error
	if err != nil {
		t.Fatalf("unscoped lookup should still find the row: %v", err)
	}
	if found.DeletedAt.Time.IsZero() {
		t.Error("DeletedAt should be set")
	}
	if found.DeletedBy == nil || *found.DeletedBy != user.UserID {
		t.Error("DeletedBy should record the caller")
	}
}

// ═══════════════════════════════════════════════════════════
// Test: Settings provisioning
// ═══════════════════════════════════════════════════════════

func TestCalendarSettings_CreateAndUpdate(t *testing.T) {
	user, _, cleanup := setupTestData(t)
	defer cleanup()

	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	_, err := repo.Settings.GetByUser(ctx, user.UserID)
	if err == nil {
		t.Fatal("expected no settings row before provisioning")
	}

	settings := &model.CalendarSettings{
		UserID:          user.UserID,
		MaxColumns:      4,
		WeekStartsOn:    0,
		DefaultTimezone: "UTC",
	}
	if err := repo.Settings.Create(ctx, settings); err != nil {
		t.Fatalf("create settings failed: %v", err)
	}

	settings.MaxColumns = 6
	settings.WeekStartsOn = 1
	if err := repo.Settings.Update(ctx, settings); err != nil {
		t.Fatalf("update settings failed: %v", err)
	}

	found, err := repo.Settings.GetByUser(ctx, user.UserID)
	if err != nil {
		t.Fatalf("settings lookup failed: %v", err)
	}
	if found.MaxColumns != 6 || found.WeekStartsOn != 1 {
		t.Errorf("settings not persisted: max_columns=%d week_starts_on=%d", found.MaxColumns, found.WeekStartsOn)
	}
}
