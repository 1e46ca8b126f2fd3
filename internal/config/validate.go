package config

import (
	"fmt"
	"strings"

	"github.com/sadopc/tomato/internal/category"
)

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
func (c *Config) Validate() error {
	if err := c.Log.validate(); err != nil {
		return fmt.Errorf("log: %w", err)
	}
	if err := c.Categories.validate(); err != nil {
		return fmt.Errorf("categories: %w", err)
	}
	if err := c.Goals.validate(); err != nil {
		return fmt.Errorf("goals: %w", err)
	}
	return nil
}

func (l *LogConfig) validate() error {
	switch strings.ToLower(strings.TrimSpace(l.Level)) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("level must be debug, info, warn or error (got %q)", l.Level)
	}
	switch strings.ToLower(strings.TrimSpace(l.Format)) {
	case "text", "json":
	default:
		return fmt.Errorf("format must be text or json (got %q)", l.Format)
	}
	return nil
}

func (c *CategoriesConfig) validate() error {
	c.Known = ParseCategories(c.KnownRaw)
	if len(c.Known) == 0 && !c.Open {
		return fmt.Errorf("known must not be empty when the category set is closed")
	}
	return nil
}

func (g GoalsConfig) validate() error {
	for name, v := range map[string]float64{
		"weekly_minutes":  g.WeeklyMinutes,
		"monthly_minutes": g.MonthlyMinutes,
		"yearly_minutes":  g.YearlyMinutes,
	} {
		if v < 0 {
			return fmt.Errorf("%s must be >= 0 (got %v)", name, v)
		}
	}
	return nil
}

// ParseCategories splits a comma-separated list, normalizing and dropping
// empty and repeated names.
func ParseCategories(raw string) []string {
	var out []string
	seen := map[string]bool{}
	for _, part := range strings.Split(raw, ",") {
		name := category.Normalize(part)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	return out
}
