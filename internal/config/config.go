// Package config loads tomato's configuration from YAML and the environment.
package config

import (
	"os"
	"path/filepath"

	"github.com/sadopc/tomato/internal/category"
	"github.com/sadopc/tomato/internal/stats"
)

// Config is the root application configuration.
type Config struct {
	Storage    StorageConfig    `yaml:"storage"`
	Log        LogConfig        `yaml:"log"`
	Categories CategoriesConfig `yaml:"categories"`
	Goals      GoalsConfig      `yaml:"goals"`
}

// StorageConfig locates the SQLite database. An empty path means
// <config dir>/tomato/tomato.db.
type StorageConfig struct {
	Path string `yaml:"path" env:"TOMATO_DB_PATH"`
}

// LogConfig holds logging settings. The TUI owns the terminal, so logs go
// to File; an empty File means <config dir>/tomato/tomato.log.
type LogConfig struct {
	Level  string `yaml:"level"  env:"TOMATO_LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"TOMATO_LOG_FORMAT" env-default:"text"`
	File   string `yaml:"file"   env:"TOMATO_LOG_FILE"`
}

// CategoriesConfig holds the category policy.
type CategoriesConfig struct {
	KnownRaw string `yaml:"known" env:"TOMATO_CATEGORIES"      env-default:"work,study,creative,personal,health"`
	Open     bool   `yaml:"open"  env:"TOMATO_CATEGORIES_OPEN" env-default:"false"`

	// Known is parsed from KnownRaw during validation.
	Known []string `yaml:"-" env:"-"`
}

// GoalsConfig holds the weekly, monthly and yearly focus goals. The daily
// goal lives in the settings table so the TUI can edit it.
type GoalsConfig struct {
	WeeklyMinutes  float64 `yaml:"weekly_minutes"  env:"TOMATO_GOAL_WEEKLY"  env-default:"1200"`
	MonthlyMinutes float64 `yaml:"monthly_minutes" env:"TOMATO_GOAL_MONTHLY" env-default:"4800"`
	YearlyMinutes  float64 `yaml:"yearly_minutes"  env:"TOMATO_GOAL_YEARLY"  env-default:"60000"`
}

// Catalog builds the category catalog.
func (c CategoriesConfig) Catalog() category.Catalog {
	return category.NewCatalog(c.Known, c.Open)
}

// StatsGoals combines the configured goals with a daily goal in minutes.
func (g GoalsConfig) StatsGoals(dailyMinutes float64) stats.Goals {
	return stats.Goals{
		DailyMinutes:   dailyMinutes,
		WeeklyMinutes:  g.WeeklyMinutes,
		MonthlyMinutes: g.MonthlyMinutes,
		YearlyMinutes:  g.YearlyMinutes,
	}
}

// Dir returns <user config dir>/tomato.
func Dir() (string, error) {
	cfg, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cfg, "tomato"), nil
}
