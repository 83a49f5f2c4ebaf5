package catalog

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/Bhavnish15/taskoPro/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	if err := db.AutoMigrate(&models.Task{}); err != nil {
		t.Fatalf("migrating test db: %v", err)
	}
	return NewStore(db)
}

func mustCreate(t *testing.T, s *Store, task models.Task) models.Task {
	t.Helper()
	if err := s.Create(&task); err != nil {
		t.Fatalf("creating %q: %v", task.Title, err)
	}
	return task
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name string
		task models.Task
		ok   bool
	}{
		{"valid", models.Task{Title: "Watch Video", Category: "video", BaseDuration: 120, Reward: 5, RequiredVIPLevel: 1}, true},
		{"empty title", models.Task{Title: "  ", Category: "video", BaseDuration: 120, Reward: 5, RequiredVIPLevel: 1}, false},
		{"zero reward", models.Task{Title: "A", Category: "video", BaseDuration: 120, Reward: 0, RequiredVIPLevel: 1}, false},
		{"negative duration", models.Task{Title: "A", Category: "video", BaseDuration: -1, Reward: 5, RequiredVIPLevel: 1}, false},
		{"level below one", models.Task{Title: "A", Category: "video", BaseDuration: 120, Reward: 5, RequiredVIPLevel: 0}, false},
		{"unknown category", models.Task{Title: "A", Category: "gambling", BaseDuration: 120, Reward: 5, RequiredVIPLevel: 1}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := Validate(&tc.task)
			if tc.ok && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tc.ok {
				if !errors.Is(err, ErrValidation) {
					t.Fatalf("expected ErrValidation, got %v", err)
				}
			}
		})
	}
}

func TestValidateDefaultsCategory(t *testing.T) {
	task := models.Task{Title: "Misc", BaseDuration: 60, Reward: 1, RequiredVIPLevel: 1}
	if err := Validate(&task); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if task.Category != "other" {
		t.Fatalf("category = %q, want other", task.Category)
	}
}

func TestParseSortKey(t *testing.T) {
	cases := map[string]SortKey{
		"":          SortReward,
		"reward":    SortReward,
		"duration":  SortDuration,
		"  Title  ": SortTitle,
		"bogus":     SortReward,
	}
	for in, want := range cases {
		if got := ParseSortKey(in); got != want {
			t.Fatalf("ParseSortKey(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestListActiveOrdering(t *testing.T) {
	s := openTestStore(t)
	a := mustCreate(t, s, models.Task{Title: "Bravo", Category: "mining", BaseDuration: 300, Reward: 10, IsActive: true, RequiredVIPLevel: 1})
	b := mustCreate(t, s, models.Task{Title: "Alpha", Category: "video", BaseDuration: 120, Reward: 25, IsActive: true, RequiredVIPLevel: 1})
	c := mustCreate(t, s, models.Task{Title: "Charlie", Category: "survey", BaseDuration: 60, Reward: 10, IsActive: true, RequiredVIPLevel: 1})
	hidden := mustCreate(t, s, models.Task{Title: "Hidden", Category: "other", BaseDuration: 60, Reward: 99, IsActive: true, RequiredVIPLevel: 1})
	hidden.IsActive = false
	if err := s.Update(&hidden); err != nil {
		t.Fatalf("deactivating task: %v", err)
	}

	byReward, err := s.ListActive(SortReward)
	if err != nil {
		t.Fatalf("ListActive: %v", err)
	}
	// Highest reward first; equal rewards break ties by id ascending.
	wantIDs := []uint{b.ID, a.ID, c.ID}
	if len(byReward) != 3 {
		t.Fatalf("got %d tasks, want 3 (inactive excluded)", len(byReward))
	}
	for i, task := range byReward {
		if task.ID != wantIDs[i] {
			t.Fatalf("reward order[%d] = %d, want %d", i, task.ID, wantIDs[i])
		}
	}

	byDuration, err := s.ListActive(SortDuration)
	if err != nil {
		t.Fatalf("ListActive: %v", err)
	}
	if byDuration[0].ID != c.ID || byDuration[2].ID != a.ID {
		t.Fatalf("duration order wrong: %v", ids(byDuration))
	}

	byTitle, err := s.ListActive(SortTitle)
	if err != nil {
		t.Fatalf("ListActive: %v", err)
	}
	if byTitle[0].Title != "Alpha" || byTitle[2].Title != "Charlie" {
		t.Fatalf("title order wrong: %v", ids(byTitle))
	}
}

func ids(tasks []models.Task) []uint {
	out := make([]uint, len(tasks))
	for i, t := range tasks {
		out[i] = t.ID
	}
	return out
}

func TestStoreCRUD(t *testing.T) {
	s := openTestStore(t)
	created := mustCreate(t, s, models.Task{Title: "Survey Run", Category: "survey", BaseDuration: 180, Reward: 8, IsActive: true, RequiredVIPLevel: 2})

	got, err := s.Get(created.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Title != "Survey Run" || got.RequiredVIPLevel != 2 {
		t.Fatalf("unexpected task: %+v", got)
	}

	got.Reward = 12
	got.IsActive = false
	if err := s.Update(got); err != nil {
		t.Fatalf("Update: %v", err)
	}
	reloaded, err := s.Get(created.ID)
	if err != nil {
		t.Fatalf("Get after update: %v", err)
	}
	if reloaded.Reward != 12 || reloaded.IsActive {
		t.Fatalf("update not applied: %+v", reloaded)
	}

	missing := models.Task{ID: 9999, Title: "Ghost", Category: "other", BaseDuration: 60, Reward: 1, RequiredVIPLevel: 1}
	if err := s.Update(&missing); !errors.Is(err, ErrTaskNotFound) {
		t.Fatalf("update of missing id: got %v", err)
	}

	if err := s.Delete(created.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Get(created.ID); !errors.Is(err, ErrTaskNotFound) {
		t.Fatalf("get after delete: got %v", err)
	}
	if err := s.Delete(created.ID); !errors.Is(err, ErrTaskNotFound) {
		t.Fatalf("second delete: got %v", err)
	}
}

func TestCreateRejectsInvalid(t *testing.T) {
	s := openTestStore(t)
	bad := models.Task{Title: "", Category: "video", BaseDuration: 60, Reward: 1, RequiredVIPLevel: 1}
	if err := s.Create(&bad); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	all, err := s.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 0 {
		t.Fatalf("invalid task was persisted")
	}
}

func TestWatchEmitsSnapshotThenChanges(t *testing.T) {
	s := openTestStore(t)
	mustCreate(t, s, models.Task{Title: "Initial", Category: "other", BaseDuration: 60, Reward: 5, IsActive: true, RequiredVIPLevel: 1})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch := s.Watch(ctx, 10*time.Millisecond, SortReward)

	first := waitEvent(t, ch)
	if first.Kind != "snapshot" || len(first.Tasks) != 1 {
		t.Fatalf("first event = %q with %d tasks, want snapshot/1", first.Kind, len(first.Tasks))
	}

	mustCreate(t, s, models.Task{Title: "Added Later", Category: "other", BaseDuration: 60, Reward: 9, IsActive: true, RequiredVIPLevel: 1})

	second := waitEvent(t, ch)
	if second.Kind != "changed" || len(second.Tasks) != 2 {
		t.Fatalf("second event = %q with %d tasks, want changed/2", second.Kind, len(second.Tasks))
	}

	cancel()
	if _, ok := <-ch; ok {
		// Drain until closed; a buffered event may still be in flight.
		for range ch {
		}
	}
}

func waitEvent(t *testing.T, ch <-chan Event) Event {
	t.Helper()
	select {
	case ev, ok := <-ch:
		if !ok {
			t.Fatal("watch channel closed early")
		}
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for catalog event")
	}
	return Event{}
}
