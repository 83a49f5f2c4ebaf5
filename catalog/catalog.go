package catalog

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Bhavnish15/taskoPro/models"

	"gorm.io/gorm"
)

var (
	ErrValidation   = errors.New("catalog: invalid task definition")
	ErrTaskNotFound = errors.New("catalog: task not found")
)

// SortKey selects the catalog ordering. All orderings break ties by id
// ascending so pagination and tests are reproducible.
type SortKey string

const (
	SortReward   SortKey = "reward"
	SortDuration SortKey = "duration"
	SortTitle    SortKey = "title"
)

// ParseSortKey maps a query parameter to a sort key, defaulting to reward —
// the canonical catalog ordering.
func ParseSortKey(s string) SortKey {
	switch SortKey(strings.ToLower(strings.TrimSpace(s))) {
	case SortDuration:
		return SortDuration
	case SortTitle:
		return SortTitle
	default:
		return SortReward
	}
}

func orderClause(key SortKey) string {
	switch key {
	case SortDuration:
		return "base_duration ASC, id ASC"
	case SortTitle:
		return "title ASC, id ASC"
	default:
		return "reward DESC, id ASC"
	}
}

// Store is the read/write surface over task definitions.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// ListActive returns the active tasks in the given deterministic order.
func (s *Store) ListActive(key SortKey) ([]models.Task, error) {
	var tasks []models.Task
	if err := s.db.Where("is_active = ?", true).Order(orderClause(key)).Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// List returns every task, active or not, for the admin console.
func (s *Store) List() ([]models.Task, error) {
	var tasks []models.Task
	if err := s.db.Order("id ASC").Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

func (s *Store) Get(id uint) (*models.Task, error) {
	var task models.Task
	if err := s.db.First(&task, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: id %d", ErrTaskNotFound, id)
		}
		return nil, err
	}
	return &task, nil
}

// Create validates and inserts a task definition.
func (s *Store) Create(task *models.Task) error {
	if err := Validate(task); err != nil {
		return err
	}
	return s.db.Create(task).Error
}

// Update validates and saves an existing task definition.
func (s *Store) Update(task *models.Task) error {
	if task.ID == 0 {
		return fmt.Errorf("%w: missing id", ErrTaskNotFound)
	}
	if err := Validate(task); err != nil {
		return err
	}
	res := s.db.Model(&models.Task{}).Where("id = ?", task.ID).Updates(map[string]interface{}{
		"title":              task.Title,
		"description":        task.Description,
		"category":           task.Category,
		"base_duration":      task.BaseDuration,
		"reward":             task.Reward,
		"is_active":          task.IsActive,
		"required_vip_level": task.RequiredVIPLevel,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: id %d", ErrTaskNotFound, task.ID)
	}
	return nil
}

func (s *Store) Delete(id uint) error {
	res := s.db.Delete(&models.Task{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: id %d", ErrTaskNotFound, id)
	}
	return nil
}

// Validate rejects malformed task definitions before any write.
func Validate(task *models.Task) error {
	if strings.TrimSpace(task.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrValidation)
	}
	if task.Reward <= 0 {
		return fmt.Errorf("%w: reward must be positive, got %d", ErrValidation, task.Reward)
	}
	if task.BaseDuration <= 0 {
		return fmt.Errorf("%w: base duration must be positive, got %d", ErrValidation, task.BaseDuration)
	}
	if task.RequiredVIPLevel < 1 {
		return fmt.Errorf("%w: required VIP level must be >= 1, got %d", ErrValidation, task.RequiredVIPLevel)
	}
	if task.Category == "" {
		task.Category = "other"
	}
	if !models.ValidTaskCategory(task.Category) {
		return fmt.Errorf("%w: unknown category %q", ErrValidation, task.Category)
	}
	return nil
}
