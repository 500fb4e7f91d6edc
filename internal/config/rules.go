package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"castlebattle/internal/domain"
)

// RulesFile is the on-disk shape of the tunable game rules. Omitted fields keep their defaults.
type RulesFile struct {
	SupplyProbability *float64 `json:"supply_probability"`
	SupplyCooldown    *int     `json:"supply_cooldown"`
	SupplyMaxUses     *int     `json:"supply_max_uses"`
	SupplyBoost       *int     `json:"supply_boost"`
	SupplyDeficit     *int     `json:"supply_deficit"`
	SupplyCampsLost   *int     `json:"supply_camps_lost"`
	InactivityLimit   *int     `json:"inactivity_limit"`
}

var (
	rules    *domain.Rules
	loadOnce sync.Once
	loadErr  error
)

// LoadRules loads the rules file at path once. An empty path keeps the built-in rules.
func LoadRules(path string) error {
	loadOnce.Do(func() {
		if path == "" {
			r := domain.DefaultRules()
			rules = &r
			return
		}
		data, err := os.ReadFile(path)
		if err != nil {
			loadErr = fmt.Errorf("failed to read rules: %w", err)
			return
		}
		r, err := ParseRules(data)
		if err != nil {
			loadErr = err
			return
		}
		rules = &r
	})
	return loadErr
}

// Rules returns the loaded rules, or the defaults when nothing was loaded.
func Rules() domain.Rules {
	if rules == nil {
		return domain.DefaultRules()
	}
	return *rules
}

// ParseRules decodes a rules document over the defaults and validates the result.
func ParseRules(data []byte) (domain.Rules, error) {
	var f RulesFile
	if err := json.Unmarshal(data, &f); err != nil {
		return domain.Rules{}, fmt.Errorf("failed to unmarshal rules: %w", err)
	}

	r := domain.DefaultRules()
	if f.SupplyProbability != nil {
		r.SupplyProbability = *f.SupplyProbability
	}
	setInt(&r.SupplyCooldown, f.SupplyCooldown)
	setInt(&r.SupplyMaxUses, f.SupplyMaxUses)
	setInt(&r.SupplyBoost, f.SupplyBoost)
	setInt(&r.SupplyDeficit, f.SupplyDeficit)
	setInt(&r.SupplyCampsLost, f.SupplyCampsLost)
	setInt(&r.InactivityLimit, f.InactivityLimit)

	if err := validateRules(r); err != nil {
		return domain.Rules{}, err
	}
	return r, nil
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func validateRules(r domain.Rules) error {
	if r.SupplyProbability < 0 || r.SupplyProbability > 1 {
		return fmt.Errorf("supply_probability must be within [0,1], got %v", r.SupplyProbability)
	}
	limits := []struct {
		name  string
		value int
	}{
		{"supply_cooldown", r.SupplyCooldown},
		{"supply_max_uses", r.SupplyMaxUses},
		{"supply_boost", r.SupplyBoost},
		{"supply_deficit", r.SupplyDeficit},
		{"supply_camps_lost", r.SupplyCampsLost},
		{"inactivity_limit", r.InactivityLimit},
	}
	for _, l := range limits {
		if l.value <= 0 {
			return fmt.Errorf("%s must be positive, got %d", l.name, l.value)
		}
	}
	return nil
}
