package vip

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/Bhavnish15/taskoPro/models"

	"gorm.io/gorm"
)

var (
	ErrTierNotFound = errors.New("vip: tier not found")
	ErrInvalidTier  = errors.New("vip: invalid tier definition")
)

// EffectiveDuration computes the task duration in seconds after applying a
// tier multiplier: ceil(base * multiplier), never below 1 second.
func EffectiveDuration(baseSeconds int, multiplier float64) (int, error) {
	if baseSeconds <= 0 {
		return 0, fmt.Errorf("%w: base duration must be positive, got %d", ErrInvalidTier, baseSeconds)
	}
	if multiplier <= 0 || multiplier > 1 {
		return 0, fmt.Errorf("%w: multiplier must be in (0,1], got %v", ErrInvalidTier, multiplier)
	}
	d := int(math.Ceil(float64(baseSeconds) * multiplier))
	if d < 1 {
		d = 1
	}
	return d, nil
}

// Table is an ordered, validated snapshot of the VIP tier rows. It is
// read-only once built; reload it after admin edits.
type Table struct {
	tiers []models.VIPLevel
}

// NewTable sorts the tiers by level and enforces the tier-table invariants:
// unique levels, multipliers in (0,1] that never increase with level, and
// costs that never decrease with level.
func NewTable(tiers []models.VIPLevel) (*Table, error) {
	if len(tiers) == 0 {
		return nil, fmt.Errorf("%w: empty tier table", ErrInvalidTier)
	}
	sorted := make([]models.VIPLevel, len(tiers))
	copy(sorted, tiers)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Level < sorted[j].Level })

	for i, t := range sorted {
		if t.Level < 1 {
			return nil, fmt.Errorf("%w: level must be >= 1, got %d", ErrInvalidTier, t.Level)
		}
		if t.Multiplier <= 0 || t.Multiplier > 1 {
			return nil, fmt.Errorf("%w: level %d multiplier %v outside (0,1]", ErrInvalidTier, t.Level, t.Multiplier)
		}
		if t.Cost < 0 {
			return nil, fmt.Errorf("%w: level %d has negative cost", ErrInvalidTier, t.Level)
		}
		if i == 0 {
			continue
		}
		prev := sorted[i-1]
		if t.Level == prev.Level {
			return nil, fmt.Errorf("%w: duplicate level %d", ErrInvalidTier, t.Level)
		}
		if t.Multiplier > prev.Multiplier {
			return nil, fmt.Errorf("%w: level %d multiplier increases over level %d", ErrInvalidTier, t.Level, prev.Level)
		}
		if t.Cost < prev.Cost {
			return nil, fmt.Errorf("%w: level %d cost decreases under level %d", ErrInvalidTier, t.Level, prev.Level)
		}
	}
	return &Table{tiers: sorted}, nil
}

// Load reads the tier rows from the store and builds a validated table.
func Load(db *gorm.DB) (*Table, error) {
	var tiers []models.VIPLevel
	if err := db.Order("level ASC").Find(&tiers).Error; err != nil {
		return nil, err
	}
	return NewTable(tiers)
}

func (t *Table) Levels() []models.VIPLevel {
	out := make([]models.VIPLevel, len(t.tiers))
	copy(out, t.tiers)
	return out
}

func (t *Table) MaxLevel() int {
	return t.tiers[len(t.tiers)-1].Level
}

// TierFor returns the tier definition for the given level.
func (t *Table) TierFor(level int) (*models.VIPLevel, error) {
	for i := range t.tiers {
		if t.tiers[i].Level == level {
			tier := t.tiers[i]
			return &tier, nil
		}
	}
	return nil, fmt.Errorf("%w: level %d", ErrTierNotFound, level)
}

// NextTier returns the tier one level above, or nil at the top.
func (t *Table) NextTier(level int) *models.VIPLevel {
	for i := range t.tiers {
		if t.tiers[i].Level > level {
			tier := t.tiers[i]
			return &tier
		}
	}
	return nil
}

// CanUpgrade reports whether the user can buy the target tier with wallet
// credits: the target must be above the current level and affordable.
func (t *Table) CanUpgrade(u *models.User, targetLevel int) bool {
	if u == nil || u.VIPLevel >= targetLevel {
		return false
	}
	tier, err := t.TierFor(targetLevel)
	if err != nil {
		return false
	}
	return u.Wallet >= tier.Cost
}

// DurationFor computes the effective duration of a task for a user at the
// given VIP level.
func (t *Table) DurationFor(task *models.Task, level int) (int, error) {
	tier, err := t.TierFor(level)
	if err != nil {
		return 0, err
	}
	return EffectiveDuration(task.BaseDuration, tier.Multiplier)
}

// Defaults is the stock five-tier table seeded on first run.
func Defaults() []models.VIPLevel {
	mk := func(level int, name string, cost int64, multiplier float64, benefits []string) models.VIPLevel {
		v := models.VIPLevel{Level: level, Name: name, Cost: cost, Multiplier: multiplier}
		v.SetBenefits(benefits)
		return v
	}
	return []models.VIPLevel{
		mk(1, "Basic", 0, 1.0, []string{"Access to basic tasks", "Standard completion time"}),
		mk(2, "Silver", 100, 0.9, []string{"10% faster tasks", "Access to mining tasks", "Priority support"}),
		mk(3, "Gold", 250, 0.8, []string{"20% faster tasks", "Access to trading tasks", "Premium support"}),
		mk(4, "Platinum", 500, 0.7, []string{"30% faster tasks", "Access to all tasks", "VIP support"}),
		mk(5, "Diamond", 1000, 0.6, []string{"40% faster tasks", "Maximum rewards", "Dedicated support"}),
	}
}
