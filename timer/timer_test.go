package timer

import (
	"errors"
	"testing"
	"time"

	"github.com/Bhavnish15/taskoPro/models"
	"github.com/Bhavnish15/taskoPro/vip"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) advance(d time.Duration) { c.now = c.now.Add(d) }

type fakeSettler struct {
	calls    []string
	failNext error
	user     models.User
}

func (s *fakeSettler) Settle(userID, taskID uint, reward int64, attemptKey string) (*models.User, error) {
	s.calls = append(s.calls, attemptKey)
	if s.failNext != nil {
		err := s.failNext
		s.failNext = nil
		return nil, err
	}
	s.user.Wallet += reward
	u := s.user
	return &u, nil
}

func defaultTiers(t *testing.T) *vip.Table {
	t.Helper()
	table, err := vip.NewTable(vip.Defaults())
	if err != nil {
		t.Fatalf("building tier table: %v", err)
	}
	return table
}

func goldTask() models.Task {
	return models.Task{ID: 7, Title: "Market Data Review", BaseDuration: 600, Reward: 20, IsActive: true, RequiredVIPLevel: 1}
}

func newTestSession(t *testing.T) (*Session, *fakeClock, *fakeSettler) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2026, 8, 28, 9, 0, 0, 0, time.UTC)}
	settler := &fakeSettler{user: models.User{ID: 42}}
	return NewSession(42, settler, clock), clock, settler
}

func TestStartComputesVIPDuration(t *testing.T) {
	s, _, _ := newTestSession(t)
	// Gold (level 3) runs a 600s task in 480s.
	snap, err := s.Start(goldTask(), 3, defaultTiers(t))
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if snap.State != "running" {
		t.Fatalf("state = %s, want running", snap.State)
	}
	if snap.DurationSeconds != 480 {
		t.Fatalf("duration = %ds, want 480", snap.DurationSeconds)
	}
}

func TestProgressHalfwayAndExpiry(t *testing.T) {
	s, clock, _ := newTestSession(t)
	task := goldTask()
	if _, err := s.Start(task, 3, defaultTiers(t)); err != nil {
		t.Fatalf("Start: %v", err)
	}

	clock.advance(240 * time.Second)
	snap, err := s.Progress(task.ID)
	if err != nil {
		t.Fatalf("Progress: %v", err)
	}
	if snap.State != "running" || snap.Percent != 50 {
		t.Fatalf("at +240s got state=%s percent=%v, want running 50", snap.State, snap.Percent)
	}
	if snap.RemainingSeconds != 240 {
		t.Fatalf("remaining = %ds, want 240", snap.RemainingSeconds)
	}

	clock.advance(240 * time.Second)
	snap, err = s.Progress(task.ID)
	if err != nil {
		t.Fatalf("Progress: %v", err)
	}
	if snap.State != "expired" || snap.Percent != 100 || snap.RemainingSeconds != 0 {
		t.Fatalf("at +480s got %+v, want expired/100/0", snap)
	}
}

func TestStartIsIdempotentWhileRunning(t *testing.T) {
	s, clock, _ := newTestSession(t)
	task := goldTask()
	tiers := defaultTiers(t)
	if _, err := s.Start(task, 3, tiers); err != nil {
		t.Fatalf("Start: %v", err)
	}
	clock.advance(120 * time.Second)

	snap, err := s.Start(task, 3, tiers)
	if err != nil {
		t.Fatalf("second Start: %v", err)
	}
	// The running attempt is untouched: 120/480 = 25%.
	if snap.State != "running" || snap.Percent != 25 {
		t.Fatalf("second start got state=%s percent=%v, want running 25", snap.State, snap.Percent)
	}
}

func TestStartDeniedBelowRequiredLevel(t *testing.T) {
	s, _, _ := newTestSession(t)
	task := goldTask()
	task.RequiredVIPLevel = 3

	_, err := s.Start(task, 2, defaultTiers(t))
	if !errors.Is(err, ErrAccessDenied) {
		t.Fatalf("expected ErrAccessDenied, got %v", err)
	}
	// No attempt must exist.
	snap, err := s.Progress(task.ID)
	if err != nil {
		t.Fatalf("Progress: %v", err)
	}
	if snap.State != "idle" {
		t.Fatalf("state after denied start = %s, want idle", snap.State)
	}
}

func TestPauseResumeKeepsProgress(t *testing.T) {
	s, clock, _ := newTestSession(t)
	task := goldTask()
	if _, err := s.Start(task, 3, defaultTiers(t)); err != nil {
		t.Fatalf("Start: %v", err)
	}

	clock.advance(240 * time.Second)
	snap, err := s.Pause(task.ID)
	if err != nil {
		t.Fatalf("Pause: %v", err)
	}
	if snap.State != "paused" || snap.Percent != 50 {
		t.Fatalf("paused at %v%%, want 50", snap.Percent)
	}

	// A long suspension changes nothing while paused.
	clock.advance(3 * time.Hour)
	snap, err = s.Progress(task.ID)
	if err != nil {
		t.Fatalf("Progress while paused: %v", err)
	}
	if snap.State != "paused" || snap.Percent != 50 {
		t.Fatalf("after suspension got state=%s percent=%v, want paused 50", snap.State, snap.Percent)
	}

	snap, err = s.Resume(task.ID)
	if err != nil {
		t.Fatalf("Resume: %v", err)
	}
	if snap.State != "running" || snap.Percent != 50 || snap.RemainingSeconds != 240 {
		t.Fatalf("after resume got %+v, want running/50/240", snap)
	}

	clock.advance(240 * time.Second)
	snap, err = s.Progress(task.ID)
	if err != nil {
		t.Fatalf("Progress: %v", err)
	}
	if snap.State != "expired" {
		t.Fatalf("state = %s, want expired after remaining time elapses", snap.State)
	}
}

func TestPauseResumeInvalidStates(t *testing.T) {
	s, clock, _ := newTestSession(t)
	task := goldTask()
	tiers := defaultTiers(t)

	if _, err := s.Pause(task.ID); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("pause with no attempt: got %v", err)
	}
	if _, err := s.Resume(task.ID); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("resume with no attempt: got %v", err)
	}

	if _, err := s.Start(task, 3, tiers); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if _, err := s.Resume(task.ID); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("resume while running: got %v", err)
	}
	if _, err := s.Pause(task.ID); err != nil {
		t.Fatalf("Pause: %v", err)
	}
	if _, err := s.Pause(task.ID); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("pause while paused: got %v", err)
	}

	if _, err := s.Resume(task.ID); err != nil {
		t.Fatalf("Resume: %v", err)
	}
	clock.advance(time.Hour)
	if _, err := s.Pause(task.ID); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("pause after expiry: got %v", err)
	}
}

func TestClaimBeforeExpiryFails(t *testing.T) {
	s, clock, settler := newTestSession(t)
	task := goldTask()
	if _, err := s.Start(task, 3, defaultTiers(t)); err != nil {
		t.Fatalf("Start: %v", err)
	}
	clock.advance(479 * time.Second)

	_, _, err := s.Claim(task.ID)
	if !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}
	if len(settler.calls) != 0 {
		t.Fatalf("settler must not be called on an early claim")
	}
}

func TestClaimSettlesExactlyOnce(t *testing.T) {
	s, clock, settler := newTestSession(t)
	task := goldTask()
	if _, err := s.Start(task, 3, defaultTiers(t)); err != nil {
		t.Fatalf("Start: %v", err)
	}
	clock.advance(480 * time.Second)

	user, snap, err := s.Claim(task.ID)
	if err != nil {
		t.Fatalf("Claim: %v", err)
	}
	if user.Wallet != 20 {
		t.Fatalf("wallet = %d, want 20", user.Wallet)
	}
	if snap.State != "claimed" {
		t.Fatalf("state = %s, want claimed", snap.State)
	}
	if len(settler.calls) != 1 {
		t.Fatalf("settler called %d times, want 1", len(settler.calls))
	}

	// Second claim: attempt is gone.
	if _, _, err := s.Claim(task.ID); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("second claim: got %v", err)
	}
	if len(settler.calls) != 1 {
		t.Fatalf("settler called again on repeat claim")
	}

	// Progress reports claimed until a fresh start.
	if got, _ := s.Progress(task.ID); got.State != "claimed" {
		t.Fatalf("progress after claim = %s, want claimed", got.State)
	}
}

func TestRetryableSettleFailureKeepsAttemptClaimable(t *testing.T) {
	s, clock, settler := newTestSession(t)
	task := goldTask()
	if _, err := s.Start(task, 3, defaultTiers(t)); err != nil {
		t.Fatalf("Start: %v", err)
	}
	clock.advance(480 * time.Second)

	transient := errors.New("store offline")
	settler.failNext = transient
	_, snap, err := s.Claim(task.ID)
	if !errors.Is(err, transient) {
		t.Fatalf("expected transient error, got %v", err)
	}
	if snap.State != "expired" {
		t.Fatalf("state after failed settle = %s, want expired", snap.State)
	}

	// Retry carries the same attempt key and succeeds.
	user, _, err := s.Claim(task.ID)
	if err != nil {
		t.Fatalf("retried claim: %v", err)
	}
	if user.Wallet != 20 {
		t.Fatalf("wallet = %d, want 20", user.Wallet)
	}
	if len(settler.calls) != 2 || settler.calls[0] != settler.calls[1] {
		t.Fatalf("retry must reuse the attempt key, got %v", settler.calls)
	}
}

func TestAutoClaimSettlesOnPoll(t *testing.T) {
	s, clock, settler := newTestSession(t)
	s.SetAutoClaim(true)
	task := goldTask()
	if _, err := s.Start(task, 3, defaultTiers(t)); err != nil {
		t.Fatalf("Start: %v", err)
	}
	clock.advance(480 * time.Second)

	snap, err := s.Progress(task.ID)
	if err != nil {
		t.Fatalf("Progress: %v", err)
	}
	if snap.State != "claimed" {
		t.Fatalf("state = %s, want claimed via auto-claim", snap.State)
	}
	if len(settler.calls) != 1 {
		t.Fatalf("settler called %d times, want 1", len(settler.calls))
	}

	// Subsequent polls do not settle again.
	if _, err := s.Progress(task.ID); err != nil {
		t.Fatalf("Progress: %v", err)
	}
	if len(settler.calls) != 1 {
		t.Fatalf("auto-claim settled twice")
	}
}

func TestRestartAfterClaimBeginsFreshAttempt(t *testing.T) {
	s, clock, settler := newTestSession(t)
	task := goldTask()
	tiers := defaultTiers(t)
	if _, err := s.Start(task, 3, tiers); err != nil {
		t.Fatalf("Start: %v", err)
	}
	clock.advance(480 * time.Second)
	if _, _, err := s.Claim(task.ID); err != nil {
		t.Fatalf("Claim: %v", err)
	}

	clock.advance(time.Second)
	snap, err := s.Start(task, 3, tiers)
	if err != nil {
		t.Fatalf("restart: %v", err)
	}
	if snap.State != "running" || snap.Percent != 0 {
		t.Fatalf("restart got %+v, want fresh running attempt", snap)
	}

	clock.advance(480 * time.Second)
	user, _, err := s.Claim(task.ID)
	if err != nil {
		t.Fatalf("second claim: %v", err)
	}
	if user.Wallet != 40 {
		t.Fatalf("wallet = %d, want 40 after two rewards", user.Wallet)
	}
	if len(settler.calls) != 2 || settler.calls[0] == settler.calls[1] {
		t.Fatalf("fresh attempt must use a new key, got %v", settler.calls)
	}
}

func TestAbandonDiscardsAttempt(t *testing.T) {
	s, clock, settler := newTestSession(t)
	task := goldTask()
	if _, err := s.Start(task, 3, defaultTiers(t)); err != nil {
		t.Fatalf("Start: %v", err)
	}
	clock.advance(480 * time.Second)
	s.Abandon(task.ID)

	if _, _, err := s.Claim(task.ID); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("claim after abandon: got %v", err)
	}
	if len(settler.calls) != 0 {
		t.Fatalf("abandon must not settle")
	}
	if snap, _ := s.Progress(task.ID); snap.State != "idle" {
		t.Fatalf("state after abandon = %s, want idle", snap.State)
	}
}

func TestRegistryIsolatesUsers(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 8, 28, 9, 0, 0, 0, time.UTC)}
	settler := &fakeSettler{}
	reg := NewRegistry(settler, clock)

	a := reg.Session(1)
	b := reg.Session(2)
	if a == b {
		t.Fatal("sessions of different users must not be shared")
	}
	if reg.Session(1) != a {
		t.Fatal("same user must get the same session")
	}

	task := goldTask()
	tiers := defaultTiers(t)
	if _, err := a.Start(task, 3, tiers); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if snap, _ := b.Progress(task.ID); snap.State != "idle" {
		t.Fatalf("user 2 sees user 1's attempt: %+v", snap)
	}

	reg.Drop(1)
	if reg.Session(1) == a {
		t.Fatal("Drop must discard the session")
	}
}

func TestAttemptKeyShape(t *testing.T) {
	start := time.Unix(1700000000, 0)
	if got := AttemptKey(42, 7, start); got != "42:7:1700000000" {
		t.Fatalf("AttemptKey = %q", got)
	}
}
