package timer

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Bhavnish15/taskoPro/models"
	"github.com/Bhavnish15/taskoPro/vip"
)

var (
	// ErrAccessDenied is returned when the caller's VIP level is below the
	// task's required level. No attempt is created.
	ErrAccessDenied = errors.New("timer: vip level too low for task")
	// ErrInvalidState is returned for transitions the state machine does not
	// allow (claiming before expiry, pausing a paused timer, acting on a task
	// with no attempt).
	ErrInvalidState = errors.New("timer: invalid state for transition")
)

type State int

const (
	StateIdle State = iota
	StateRunning
	StatePaused
	StateExpired
	StateClaimed
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StatePaused:
		return "paused"
	case StateExpired:
		return "expired"
	case StateClaimed:
		return "claimed"
	default:
		return "idle"
	}
}

// Clock abstracts wall-clock reads so tests can drive time explicitly.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Settler applies a completed attempt's reward. Implementations must be
// idempotent per attempt key (a retried key settles nothing and returns the
// current user) and must distinguish retryable storage failures.
type Settler interface {
	Settle(userID, taskID uint, reward int64, attemptKey string) (*models.User, error)
}

// AttemptKey derives the idempotency key for one attempt. Two settle calls
// for the same attempt carry the same key and credit the wallet once.
func AttemptKey(userID, taskID uint, start time.Time) string {
	return fmt.Sprintf("%d:%d:%d", userID, taskID, start.Unix())
}

// attempt holds the authoritative timer state. Progress is always recomputed
// from startTime and duration so a suspended poll loop loses nothing.
type attempt struct {
	task            models.Task
	startTime       time.Time
	duration        time.Duration
	paused          bool
	elapsedFraction float64
	expired         bool
}

func (a *attempt) elapsed(now time.Time) time.Duration {
	if a.paused {
		return time.Duration(a.elapsedFraction * float64(a.duration))
	}
	e := now.Sub(a.startTime)
	if e < 0 {
		e = 0
	}
	if e > a.duration {
		e = a.duration
	}
	return e
}

// Snapshot is a point-in-time readout of one attempt. It is derived data;
// clients poll it (1s recommended) and never treat it as authoritative.
type Snapshot struct {
	TaskID    uint          `json:"task_id"`
	State     string        `json:"state"`
	Duration  time.Duration `json:"-"`
	Remaining time.Duration `json:"-"`
	Percent   float64       `json:"percent"`

	DurationSeconds  int `json:"duration_seconds"`
	RemainingSeconds int `json:"remaining_seconds"`
}

func snapshotOf(taskID uint, st State, duration, remaining time.Duration, percent float64) Snapshot {
	if percent > 100 {
		percent = 100
	}
	return Snapshot{
		TaskID:           taskID,
		State:            st.String(),
		Duration:         duration,
		Remaining:        remaining,
		Percent:          percent,
		DurationSeconds:  int(duration / time.Second),
		RemainingSeconds: int((remaining + time.Second - 1) / time.Second),
	}
}

// Session owns the task attempts of one user. Attempts live only in memory;
// abandoning one needs no compensation because nothing is persisted before
// settlement.
type Session struct {
	userID  uint
	clock   Clock
	settler Settler

	// autoClaim settles automatically when a poll observes expiry, instead of
	// waiting for an explicit claim.
	autoClaim bool

	mu       sync.Mutex
	attempts map[uint]*attempt
	claimed  map[uint]bool
}

func NewSession(userID uint, settler Settler, clock Clock) *Session {
	if clock == nil {
		clock = systemClock{}
	}
	return &Session{
		userID:   userID,
		clock:    clock,
		settler:  settler,
		attempts: make(map[uint]*attempt),
		claimed:  make(map[uint]bool),
	}
}

func (s *Session) SetAutoClaim(on bool) {
	s.mu.Lock()
	s.autoClaim = on
	s.mu.Unlock()
}

// Start begins an attempt for the task. Starting a task that is already
// running or paused is a no-op returning the current snapshot. Starting a
// previously claimed task begins a fresh attempt.
func (s *Session) Start(task models.Task, userLevel int, tiers *vip.Table) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if a, ok := s.attempts[task.ID]; ok {
		return s.snapshotLocked(task.ID, a), nil
	}
	if userLevel < task.RequiredVIPLevel {
		return snapshotOf(task.ID, StateIdle, 0, 0, 0), fmt.Errorf("%w: need VIP %d, have %d", ErrAccessDenied, task.RequiredVIPLevel, userLevel)
	}
	seconds, err := tiers.DurationFor(&task, userLevel)
	if err != nil {
		return snapshotOf(task.ID, StateIdle, 0, 0, 0), err
	}
	delete(s.claimed, task.ID)
	a := &attempt{
		task:      task,
		startTime: s.clock.Now(),
		duration:  time.Duration(seconds) * time.Second,
	}
	s.attempts[task.ID] = a
	return s.snapshotLocked(task.ID, a), nil
}

// Pause freezes a running attempt, capturing the elapsed fraction.
func (s *Session) Pause(taskID uint) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.attempts[taskID]
	if !ok || a.paused || a.expired {
		return snapshotOf(taskID, StateIdle, 0, 0, 0), fmt.Errorf("%w: pause requires a running attempt", ErrInvalidState)
	}
	now := s.clock.Now()
	if s.checkExpiredLocked(a, now) {
		return s.snapshotLocked(taskID, a), fmt.Errorf("%w: attempt already expired", ErrInvalidState)
	}
	a.elapsedFraction = float64(a.elapsed(now)) / float64(a.duration)
	a.paused = true
	return s.snapshotLocked(taskID, a), nil
}

// Resume continues a paused attempt. The start time is reconstructed from the
// captured fraction so progress picks up exactly where it stopped no matter
// how long the process was suspended.
func (s *Session) Resume(taskID uint) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.attempts[taskID]
	if !ok || !a.paused {
		return snapshotOf(taskID, StateIdle, 0, 0, 0), fmt.Errorf("%w: resume requires a paused attempt", ErrInvalidState)
	}
	now := s.clock.Now()
	a.startTime = now.Add(-time.Duration(a.elapsedFraction * float64(a.duration)))
	a.paused = false
	return s.snapshotLocked(taskID, a), nil
}

// Progress recomputes the attempt state from the wall clock. A running
// attempt whose time is up transitions to Expired here; with auto-claim on,
// settlement is attempted in the same poll. A failed auto-settle leaves the
// attempt Expired and returns the error so the caller can prompt a retry.
func (s *Session) Progress(taskID uint) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.attempts[taskID]
	if !ok {
		if s.claimed[taskID] {
			return snapshotOf(taskID, StateClaimed, 0, 0, 100), nil
		}
		return snapshotOf(taskID, StateIdle, 0, 0, 0), nil
	}
	now := s.clock.Now()
	if s.checkExpiredLocked(a, now) && s.autoClaim && s.settler != nil {
		if _, err := s.settleLocked(taskID, a); err != nil {
			return s.snapshotLocked(taskID, a), err
		}
		return snapshotOf(taskID, StateClaimed, a.duration, 0, 100), nil
	}
	return s.snapshotLocked(taskID, a), nil
}

// Claim settles an expired attempt exactly once. Claiming a non-expired
// attempt fails with ErrInvalidState and changes nothing; a retryable
// settlement failure keeps the attempt Expired so the claim can be retried.
func (s *Session) Claim(taskID uint) (*models.User, Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.attempts[taskID]
	if !ok {
		return nil, snapshotOf(taskID, StateIdle, 0, 0, 0), fmt.Errorf("%w: no attempt to claim", ErrInvalidState)
	}
	now := s.clock.Now()
	if !s.checkExpiredLocked(a, now) {
		return nil, s.snapshotLocked(taskID, a), fmt.Errorf("%w: attempt not yet expired", ErrInvalidState)
	}
	user, err := s.settleLocked(taskID, a)
	if err != nil {
		return nil, s.snapshotLocked(taskID, a), err
	}
	return user, snapshotOf(taskID, StateClaimed, a.duration, 0, 100), nil
}

// Abandon discards an attempt in any state. Nothing was persisted for it.
func (s *Session) Abandon(taskID uint) {
	s.mu.Lock()
	delete(s.attempts, taskID)
	delete(s.claimed, taskID)
	s.mu.Unlock()
}

// Active lists snapshots for all live attempts, for session restore on page
// reload.
func (s *Session) Active() []Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.clock.Now()
	out := make([]Snapshot, 0, len(s.attempts))
	for id, a := range s.attempts {
		s.checkExpiredLocked(a, now)
		out = append(out, s.snapshotLocked(id, a))
	}
	return out
}

func (s *Session) checkExpiredLocked(a *attempt, now time.Time) bool {
	if a.expired {
		return true
	}
	if !a.paused && a.elapsed(now) >= a.duration {
		a.expired = true
	}
	return a.expired
}

func (s *Session) settleLocked(taskID uint, a *attempt) (*models.User, error) {
	key := AttemptKey(s.userID, taskID, a.startTime)
	user, err := s.settler.Settle(s.userID, taskID, a.task.Reward, key)
	if err != nil {
		return nil, err
	}
	delete(s.attempts, taskID)
	s.claimed[taskID] = true
	return user, nil
}

func (s *Session) snapshotLocked(taskID uint, a *attempt) Snapshot {
	now := s.clock.Now()
	st := StateRunning
	switch {
	case a.expired:
		st = StateExpired
	case a.paused:
		st = StatePaused
	default:
		if s.checkExpiredLocked(a, now) {
			st = StateExpired
		}
	}
	elapsed := a.elapsed(now)
	remaining := a.duration - elapsed
	if remaining < 0 || st == StateExpired {
		remaining = 0
	}
	percent := 0.0
	if a.duration > 0 {
		percent = 100 * float64(elapsed) / float64(a.duration)
	}
	if st == StateExpired {
		percent = 100
	}
	return snapshotOf(taskID, st, a.duration, remaining, percent)
}
