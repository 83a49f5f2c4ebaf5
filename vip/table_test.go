package vip

import (
	"errors"
	"testing"

	"github.com/Bhavnish15/taskoPro/models"
)

func TestEffectiveDuration(t *testing.T) {
	cases := []struct {
		name       string
		base       int
		multiplier float64
		want       int
		wantErr    bool
	}{
		{"no speedup", 600, 1.0, 600, false},
		{"gold tier", 600, 0.8, 480, false},
		{"diamond tier", 600, 0.6, 360, false},
		{"rounds up", 100, 0.35, 35, false},
		{"fractional rounds up", 101, 0.5, 51, false},
		{"floor of one second", 1, 0.1, 1, false},
		{"zero base", 0, 0.8, 0, true},
		{"negative base", -5, 0.8, 0, true},
		{"zero multiplier", 600, 0, 0, true},
		{"multiplier above one", 600, 1.2, 0, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := EffectiveDuration(tc.base, tc.multiplier)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %d", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("EffectiveDuration(%d, %v) = %d, want %d", tc.base, tc.multiplier, got, tc.want)
			}
		})
	}
}

func TestNewTableValidation(t *testing.T) {
	if _, err := NewTable(nil); err == nil {
		t.Fatal("expected error for empty table")
	}

	dup := []models.VIPLevel{
		{Level: 1, Name: "A", Cost: 0, Multiplier: 1},
		{Level: 1, Name: "B", Cost: 10, Multiplier: 0.9},
	}
	if _, err := NewTable(dup); err == nil {
		t.Fatal("expected error for duplicate levels")
	}

	increasing := []models.VIPLevel{
		{Level: 1, Name: "A", Cost: 0, Multiplier: 0.8},
		{Level: 2, Name: "B", Cost: 10, Multiplier: 0.9},
	}
	if _, err := NewTable(increasing); err == nil {
		t.Fatal("expected error for increasing multiplier")
	}

	cheaper := []models.VIPLevel{
		{Level: 1, Name: "A", Cost: 100, Multiplier: 1},
		{Level: 2, Name: "B", Cost: 50, Multiplier: 0.9},
	}
	if _, err := NewTable(cheaper); err == nil {
		t.Fatal("expected error for decreasing cost")
	}

	if _, err := NewTable(Defaults()); err != nil {
		t.Fatalf("stock table should validate: %v", err)
	}
}

func TestTierLookups(t *testing.T) {
	table, err := NewTable(Defaults())
	if err != nil {
		t.Fatalf("NewTable: %v", err)
	}

	gold, err := table.TierFor(3)
	if err != nil {
		t.Fatalf("TierFor(3): %v", err)
	}
	if gold.Name != "Gold" || gold.Multiplier != 0.8 || gold.Cost != 250 {
		t.Fatalf("unexpected Gold tier: %+v", gold)
	}

	if _, err := table.TierFor(99); !errors.Is(err, ErrTierNotFound) {
		t.Fatalf("expected ErrTierNotFound, got %v", err)
	}

	if next := table.NextTier(4); next == nil || next.Level != 5 {
		t.Fatalf("NextTier(4) = %+v, want level 5", next)
	}
	if next := table.NextTier(5); next != nil {
		t.Fatalf("NextTier at top should be nil, got %+v", next)
	}
	if table.MaxLevel() != 5 {
		t.Fatalf("MaxLevel = %d, want 5", table.MaxLevel())
	}
}

func TestCanUpgrade(t *testing.T) {
	table, err := NewTable(Defaults())
	if err != nil {
		t.Fatalf("NewTable: %v", err)
	}

	u := &models.User{VIPLevel: 1, Wallet: 100}
	if !table.CanUpgrade(u, 2) {
		t.Fatal("expected upgrade to Silver with exactly 100 credits")
	}
	if table.CanUpgrade(u, 3) {
		t.Fatal("should not afford Gold with 100 credits")
	}
	if table.CanUpgrade(u, 1) {
		t.Fatal("cannot upgrade to the current level")
	}

	top := &models.User{VIPLevel: 5, Wallet: 100000}
	if table.CanUpgrade(top, 5) {
		t.Fatal("cannot upgrade past the top tier")
	}
}

func TestDurationFor(t *testing.T) {
	table, err := NewTable(Defaults())
	if err != nil {
		t.Fatalf("NewTable: %v", err)
	}
	task := &models.Task{BaseDuration: 600}

	basic, err := table.DurationFor(task, 1)
	if err != nil || basic != 600 {
		t.Fatalf("basic duration = %d (%v), want 600", basic, err)
	}
	gold, err := table.DurationFor(task, 3)
	if err != nil || gold != 480 {
		t.Fatalf("gold duration = %d (%v), want 480", gold, err)
	}
	if _, err := table.DurationFor(task, 42); !errors.Is(err, ErrTierNotFound) {
		t.Fatalf("expected ErrTierNotFound, got %v", err)
	}
}
