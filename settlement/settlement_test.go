package settlement

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/Bhavnish15/taskoPro/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// openTestDB gives each test its own in-memory database. The shared-cache DSN
// keeps gorm's connection pool on the same database instead of a fresh
// :memory: per connection.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.TaskCompletion{}, &models.Transaction{}, &models.SystemStats{}); err != nil {
		t.Fatalf("migrating test db: %v", err)
	}
	return db
}

func seedUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	u := models.User{Email: "worker@example.com", DisplayName: "Worker", Password: "x", VIPLevel: 1}
	if err := db.Create(&u).Error; err != nil {
		t.Fatalf("seeding user: %v", err)
	}
	return &u
}

func fixedClock(day string) func() time.Time {
	ts, _ := time.Parse(time.DateOnly, day)
	return func() time.Time { return ts.Add(12 * time.Hour) }
}

func TestSettleCreditsOnce(t *testing.T) {
	db := openTestDB(t)
	u := seedUser(t, db)
	svc := NewServiceWithClock(db, fixedClock("2026-08-28"))

	got, err := svc.Settle(u.ID, 7, 20, "k-1")
	if err != nil {
		t.Fatalf("Settle: %v", err)
	}
	if got.Wallet != 20 || got.TasksToday != 1 || got.TotalTasksCompleted != 1 || got.TotalCreditsEarned != 20 {
		t.Fatalf("unexpected counters: %+v", got)
	}
	if got.LastTaskDate != "2026-08-28" {
		t.Fatalf("last_task_date = %q", got.LastTaskDate)
	}

	var completions int64
	db.Model(&models.TaskCompletion{}).Count(&completions)
	if completions != 1 {
		t.Fatalf("completions = %d, want 1", completions)
	}

	var ledger models.Transaction
	if err := db.Where("user_id = ?", u.ID).First(&ledger).Error; err != nil {
		t.Fatalf("loading ledger row: %v", err)
	}
	if ledger.Amount != 20 || ledger.Flow != "credit" || ledger.Type != "reward" {
		t.Fatalf("unexpected ledger row: %+v", ledger)
	}

	var stats models.SystemStats
	if err := db.First(&stats, 1).Error; err != nil {
		t.Fatalf("loading system stats: %v", err)
	}
	if stats.TotalCreditsDistributed != 20 {
		t.Fatalf("distributed = %d, want 20", stats.TotalCreditsDistributed)
	}
}

func TestSettleDuplicateKeyIsIdempotent(t *testing.T) {
	db := openTestDB(t)
	u := seedUser(t, db)
	svc := NewServiceWithClock(db, fixedClock("2026-08-28"))

	if _, err := svc.Settle(u.ID, 7, 20, "k-1"); err != nil {
		t.Fatalf("first Settle: %v", err)
	}
	got, err := svc.Settle(u.ID, 7, 20, "k-1")
	if err != nil {
		t.Fatalf("duplicate Settle must succeed, got %v", err)
	}
	if got.Wallet != 20 || got.TotalTasksCompleted != 1 {
		t.Fatalf("duplicate settle mutated the user: %+v", got)
	}

	var completions int64
	db.Model(&models.TaskCompletion{}).Count(&completions)
	if completions != 1 {
		t.Fatalf("completions = %d, want 1", completions)
	}
	var ledgerRows int64
	db.Model(&models.Transaction{}).Count(&ledgerRows)
	if ledgerRows != 1 {
		t.Fatalf("ledger rows = %d, want 1", ledgerRows)
	}
	var stats models.SystemStats
	db.First(&stats, 1)
	if stats.TotalCreditsDistributed != 20 {
		t.Fatalf("distributed = %d, want 20", stats.TotalCreditsDistributed)
	}
}

func TestSettleResetsDailyCounter(t *testing.T) {
	db := openTestDB(t)
	u := seedUser(t, db)

	day1 := NewServiceWithClock(db, fixedClock("2026-08-27"))
	if _, err := day1.Settle(u.ID, 7, 10, "k-1"); err != nil {
		t.Fatalf("day 1 settle: %v", err)
	}
	if _, err := day1.Settle(u.ID, 8, 10, "k-2"); err != nil {
		t.Fatalf("day 1 settle: %v", err)
	}

	day2 := NewServiceWithClock(db, fixedClock("2026-08-28"))
	got, err := day2.Settle(u.ID, 7, 10, "k-3")
	if err != nil {
		t.Fatalf("day 2 settle: %v", err)
	}
	if got.TasksToday != 1 {
		t.Fatalf("tasks_today = %d, want 1 after day rollover", got.TasksToday)
	}
	if got.LastTaskDate != "2026-08-28" {
		t.Fatalf("last_task_date = %q", got.LastTaskDate)
	}
	// Lifetime counters keep accumulating across days.
	if got.TotalTasksCompleted != 3 || got.TotalCreditsEarned != 30 {
		t.Fatalf("lifetime counters: %+v", got)
	}
}

func TestSettleUnknownUser(t *testing.T) {
	db := openTestDB(t)
	svc := NewServiceWithClock(db, fixedClock("2026-08-28"))

	_, err := svc.Settle(999, 7, 20, "k-1")
	if !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	if IsRetryable(err) {
		t.Fatal("unknown user is not a retryable failure")
	}

	var completions int64
	db.Model(&models.TaskCompletion{}).Count(&completions)
	if completions != 0 {
		t.Fatalf("completions = %d, want 0 after failed settle", completions)
	}
}

func TestSettleRejectsBadInput(t *testing.T) {
	db := openTestDB(t)
	u := seedUser(t, db)
	svc := NewServiceWithClock(db, fixedClock("2026-08-28"))

	if _, err := svc.Settle(u.ID, 7, 0, "k-1"); err == nil {
		t.Fatal("expected error for zero reward")
	}
	if _, err := svc.Settle(u.ID, 7, -5, "k-1"); err == nil {
		t.Fatal("expected error for negative reward")
	}
	if _, err := svc.Settle(u.ID, 7, 20, ""); err == nil {
		t.Fatal("expected error for empty attempt key")
	}
}

func TestSettleCreatesStatsRowOnFirstRun(t *testing.T) {
	db := openTestDB(t)
	u := seedUser(t, db)
	svc := NewServiceWithClock(db, fixedClock("2026-08-28"))

	if _, err := svc.Settle(u.ID, 7, 15, "k-1"); err != nil {
		t.Fatalf("Settle: %v", err)
	}
	if _, err := svc.Settle(u.ID, 8, 5, "k-2"); err != nil {
		t.Fatalf("Settle: %v", err)
	}

	var stats models.SystemStats
	if err := db.First(&stats, 1).Error; err != nil {
		t.Fatalf("stats row missing: %v", err)
	}
	if stats.TotalCreditsDistributed != 20 {
		t.Fatalf("distributed = %d, want 20", stats.TotalCreditsDistributed)
	}
}

func TestIsRetryable(t *testing.T) {
	inner := errors.New("disk full")
	wrapped := fmt.Errorf("claim failed: %w", &RetryableStorageError{Err: inner})
	if !IsRetryable(wrapped) {
		t.Fatal("wrapped RetryableStorageError must be retryable")
	}
	if IsRetryable(inner) {
		t.Fatal("plain errors are not retryable")
	}
	if !errors.Is(wrapped, inner) {
		t.Fatal("Unwrap must expose the cause")
	}
}
