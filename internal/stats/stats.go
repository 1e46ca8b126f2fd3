// Package stats keeps the daily, weekly, monthly and yearly focus rollups.
// Every credit is folded into all four periods of its timestamp at once.
package stats

import "maps"

// Totals are the counters every period carries.
type Totals struct {
	TotalFocusMinutes float64            `json:"total_focus_minutes" yaml:"total_focus_minutes"`
	TasksDone         int                `json:"tasks_done" yaml:"tasks_done"`
	TasksRemaining    int                `json:"tasks_remaining" yaml:"tasks_remaining"`
	CategoryBreakdown map[string]float64 `json:"category_breakdown" yaml:"category_breakdown"`
	GoalMinutes       float64            `json:"goal_minutes" yaml:"goal_minutes"`
}

// Progress is TotalFocusMinutes as a percentage of GoalMinutes. It is 0 when
// no goal is set and may exceed 100.
func (t Totals) Progress() float64 {
	if t.GoalMinutes <= 0 {
		return 0
	}
	return t.TotalFocusMinutes / t.GoalMinutes * 100
}

// CategorySum adds up the breakdown. It equals TotalFocusMinutes.
func (t Totals) CategorySum() float64 {
	var sum float64
	for _, m := range t.CategoryBreakdown {
		sum += m
	}
	return sum
}

func (t Totals) clone() Totals {
	t.CategoryBreakdown = maps.Clone(t.CategoryBreakdown)
	if t.CategoryBreakdown == nil {
		t.CategoryBreakdown = map[string]float64{}
	}
	return t
}

// Daily is keyed by a period.Day key.
type Daily struct {
	Date string `json:"date" yaml:"date"`
	Totals `yaml:",inline"`
	PomodoroCount int `json:"pomodoro_count" yaml:"pomodoro_count"`
}

// Weekly is keyed by the day key of the week's first day.
type Weekly struct {
	WeekStart string `json:"week_start" yaml:"week_start"`
	Totals `yaml:",inline"`
	// DailyFocusTime maps day keys to minutes.
	DailyFocusTime map[string]float64 `json:"daily_focus_time" yaml:"daily_focus_time"`
}

// Monthly is keyed by a period.Month key.
type Monthly struct {
	Month string `json:"month" yaml:"month"`
	Totals `yaml:",inline"`
	// WeeklyFocusTime maps week keys to minutes.
	WeeklyFocusTime map[string]float64 `json:"weekly_focus_time" yaml:"weekly_focus_time"`
}

// Yearly is keyed by a period.Year key.
type Yearly struct {
	Year string `json:"year" yaml:"year"`
	Totals `yaml:",inline"`
	// MonthlyFocusTime maps "01".."12" to minutes.
	MonthlyFocusTime map[string]float64 `json:"monthly_focus_time" yaml:"monthly_focus_time"`
}

func (d Daily) clone() Daily {
	d.Totals = d.Totals.clone()
	return d
}

func (w Weekly) clone() Weekly {
	w.Totals = w.Totals.clone()
	w.DailyFocusTime = cloneOrEmpty(w.DailyFocusTime)
	return w
}

func (m Monthly) clone() Monthly {
	m.Totals = m.Totals.clone()
	m.WeeklyFocusTime = cloneOrEmpty(m.WeeklyFocusTime)
	return m
}

func (y Yearly) clone() Yearly {
	y.Totals = y.Totals.clone()
	y.MonthlyFocusTime = cloneOrEmpty(y.MonthlyFocusTime)
	return y
}

func cloneOrEmpty(m map[string]float64) map[string]float64 {
	if m == nil {
		return map[string]float64{}
	}
	return maps.Clone(m)
}

// Snapshot is the full aggregator state, one map per period type.
type Snapshot struct {
	Daily   map[string]Daily   `json:"daily" yaml:"daily"`
	Weekly  map[string]Weekly  `json:"weekly" yaml:"weekly"`
	Monthly map[string]Monthly `json:"monthly" yaml:"monthly"`
	Yearly  map[string]Yearly  `json:"yearly" yaml:"yearly"`
}
