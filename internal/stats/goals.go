package stats

// Goals are per-period focus targets in minutes.
type Goals struct {
	DailyMinutes   float64
	WeeklyMinutes  float64
	MonthlyMinutes float64
	YearlyMinutes  float64
}

// DefaultGoals returns 8h a day, 20h a week, 80h a month and 1000h a year.
func DefaultGoals() Goals {
	return Goals{
		DailyMinutes:   8 * 60,
		WeeklyMinutes:  20 * 60,
		MonthlyMinutes: 80 * 60,
		YearlyMinutes:  1000 * 60,
	}
}
