package settlement

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Bhavnish15/taskoPro/models"
	"github.com/Bhavnish15/taskoPro/utils"

	"gorm.io/gorm"
)

// ErrUserNotFound is returned when the settled user does not exist. This is
// not retryable.
var ErrUserNotFound = errors.New("settlement: user not found")

// RetryableStorageError marks a transient store failure. The attempt must
// stay claimable; callers retry the claim and the attempt key keeps the retry
// from double-crediting.
type RetryableStorageError struct {
	Err error
}

func (e *RetryableStorageError) Error() string {
	return fmt.Sprintf("settlement: transient storage failure: %v", e.Err)
}

func (e *RetryableStorageError) Unwrap() error { return e.Err }

// IsRetryable reports whether the error is a transient storage failure worth
// retrying.
func IsRetryable(err error) bool {
	var r *RetryableStorageError
	return errors.As(err, &r)
}

// Service applies task rewards. All effects of one settlement — wallet and
// counter increments, the completion record, the ledger row and the global
// distributed-credits counter — commit in a single store transaction.
type Service struct {
	db  *gorm.DB
	now func() time.Time
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db, now: time.Now}
}

// NewServiceWithClock is used by tests to pin the calendar day.
func NewServiceWithClock(db *gorm.DB, now func() time.Time) *Service {
	return &Service{db: db, now: now}
}

// Settle credits a completed attempt exactly once. A duplicate attempt key is
// treated as an already-finished settlement: no effects, current user
// returned. The per-user daily counter resets lazily when the stored
// last-task date is not today.
func (s *Service) Settle(userID, taskID uint, reward int64, attemptKey string) (*models.User, error) {
	if reward <= 0 {
		return nil, fmt.Errorf("settlement: reward must be positive, got %d", reward)
	}
	if attemptKey == "" {
		return nil, errors.New("settlement: empty attempt key")
	}

	now := s.now()
	today := now.Format(time.DateOnly)

	var updated models.User
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Model(&models.TaskCompletion{}).Where("attempt_key = ?", attemptKey).Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return errDuplicate
		}

		// Lazy daily reset before the increment so tasks_today counts only
		// today's completions.
		if err := tx.Model(&models.User{}).
			Where("id = ? AND last_task_date <> ?", userID, today).
			Update("tasks_today", 0).Error; err != nil {
			return err
		}

		res := tx.Model(&models.User{}).Where("id = ?", userID).Updates(map[string]interface{}{
			"wallet":                gorm.Expr("wallet + ?", reward),
			"tasks_today":           gorm.Expr("tasks_today + 1"),
			"total_tasks_completed": gorm.Expr("total_tasks_completed + 1"),
			"total_credits_earned":  gorm.Expr("total_credits_earned + ?", reward),
			"last_task_date":        today,
		})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrUserNotFound
		}

		completion := models.TaskCompletion{
			UserID:      userID,
			TaskID:      taskID,
			Reward:      reward,
			AttemptKey:  attemptKey,
			Date:        today,
			CompletedAt: now,
		}
		if err := tx.Create(&completion).Error; err != nil {
			if isDuplicateKey(err) {
				return errDuplicate
			}
			return err
		}

		msg := fmt.Sprintf("Task reward (task #%d)", taskID)
		ledger := models.Transaction{
			UserID:  userID,
			Amount:  reward,
			OrderID: utils.GenerateOrderID(userID),
			Flow:    "credit",
			Type:    "reward",
			Message: &msg,
			Status:  "Success",
		}
		if err := tx.Create(&ledger).Error; err != nil {
			return err
		}

		if err := bumpGlobalStats(tx, reward, now); err != nil {
			return err
		}

		return tx.First(&updated, userID).Error
	})

	if err == nil {
		return &updated, nil
	}
	if errors.Is(err, errDuplicate) {
		// Already settled: idempotent success.
		var u models.User
		if lerr := s.db.First(&u, userID).Error; lerr != nil {
			return nil, &RetryableStorageError{Err: lerr}
		}
		return &u, nil
	}
	if errors.Is(err, ErrUserNotFound) || errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	return nil, &RetryableStorageError{Err: err}
}

var errDuplicate = errors.New("settlement: duplicate attempt key")

func bumpGlobalStats(tx *gorm.DB, reward int64, now time.Time) error {
	res := tx.Model(&models.SystemStats{}).Where("id = ?", 1).Updates(map[string]interface{}{
		"total_credits_distributed": gorm.Expr("total_credits_distributed + ?", reward),
		"last_updated":              now,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		row := models.SystemStats{ID: 1, TotalCreditsDistributed: reward, LastUpdated: now}
		return tx.Create(&row).Error
	}
	return nil
}

// isDuplicateKey covers the MySQL and sqlite unique-violation shapes plus
// gorm's translated sentinel; the unique index on attempt_key is the backstop
// for settle races the pre-check misses.
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "Duplicate entry") || strings.Contains(msg, "UNIQUE constraint failed")
}
