package stats

import (
	"time"

	"github.com/sadopc/tomato/internal/period"
)

// Sample is one credited focus session, placed at its start time.
type Sample struct {
	At      time.Time
	Minutes float64
}

// Insights summarise where and when focus time goes.
type Insights struct {
	TopCategory        string
	TopCategoryMinutes float64

	// BestHour is the start hour (0-23) with the most focus minutes.
	BestHour    int
	HasBestHour bool

	// BestWeekday has the highest average minutes over the days it was active.
	BestWeekday        time.Weekday
	BestWeekdayAverage float64
	HasBestWeekday     bool
}

// ComputeInsights derives insights from a category breakdown and a list of
// focus samples. Ties go to the earlier category name, hour or weekday.
func ComputeInsights(breakdown map[string]float64, samples []Sample) Insights {
	var in Insights
	if cats := Categories(breakdown); len(cats) > 0 && breakdown[cats[0]] > 0 {
		in.TopCategory = cats[0]
		in.TopCategoryMinutes = breakdown[cats[0]]
	}

	var hours [24]float64
	perDay := map[string]float64{}
	dayWeekday := map[string]time.Weekday{}
	for _, s := range samples {
		if s.Minutes <= 0 {
			continue
		}
		hours[s.At.Hour()] += s.Minutes
		key := period.Day(s.At)
		perDay[key] += s.Minutes
		dayWeekday[key] = s.At.Weekday()
	}

	for h, m := range hours {
		if m > 0 && (!in.HasBestHour || m > hours[in.BestHour]) {
			in.BestHour = h
			in.HasBestHour = true
		}
	}

	var sum [7]float64
	var days [7]int
	for key, m := range perDay {
		wd := dayWeekday[key]
		sum[wd] += m
		days[wd]++
	}
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		if days[wd] == 0 {
			continue
		}
		avg := sum[wd] / float64(days[wd])
		if !in.HasBestWeekday || avg > in.BestWeekdayAverage {
			in.BestWeekday = wd
			in.BestWeekdayAverage = avg
			in.HasBestWeekday = true
		}
	}
	return in
}

// BestHourEnd is the end of the best focus window.
func (in Insights) BestHourEnd() int { return (in.BestHour + 1) % 24 }
