package stats

import (
	"cmp"
	"fmt"
	"maps"
	"math"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/sadopc/tomato/internal/category"
	"github.com/sadopc/tomato/internal/domain"
	"github.com/sadopc/tomato/internal/period"
)

// Aggregator owns the four period maps. All methods are safe for concurrent use.
type Aggregator struct {
	mu        sync.RWMutex
	catalog   category.Catalog
	goals     Goals
	weekStart time.Weekday

	daily   map[string]Daily
	weekly  map[string]Weekly
	monthly map[string]Monthly
	yearly  map[string]Yearly
}

// NewAggregator returns an empty aggregator. Weeks begin on weekStart.
func NewAggregator(catalog category.Catalog, goals Goals, weekStart time.Weekday) *Aggregator {
	return &Aggregator{
		catalog:   catalog,
		goals:     goals,
		weekStart: weekStart,
		daily:     map[string]Daily{},
		weekly:    map[string]Weekly{},
		monthly:   map[string]Monthly{},
		yearly:    map[string]Yearly{},
	}
}

// SetGoals changes the goals used for period records created from now on,
// and for the records containing at.
func (a *Aggregator) SetGoals(g Goals, at time.Time) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.goals = g
	r := a.records(at)
	r.d.GoalMinutes = g.DailyMinutes
	r.w.GoalMinutes = g.WeeklyMinutes
	r.m.GoalMinutes = g.MonthlyMinutes
	r.y.GoalMinutes = g.YearlyMinutes
	a.commit(r)
}

// Goals returns the current goals.
func (a *Aggregator) Goals() Goals {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.goals
}

// WeekStart returns the first day of the week.
func (a *Aggregator) WeekStart() time.Weekday { return a.weekStart }

// CreditFocusSession adds minutes of focus in cat to every period containing
// at. Minutes must be positive; cat must be accepted by the catalog.
func (a *Aggregator) CreditFocusSession(at time.Time, minutes float64, cat string) error {
	if minutes <= 0 || math.IsNaN(minutes) || math.IsInf(minutes, 0) {
		return domain.NewValidationError("minutes", fmt.Sprintf("must be > 0 (got %v)", minutes))
	}
	c, err := a.catalog.Resolve(cat)
	if err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	r := a.records(at)
	for _, t := range []*Totals{&r.d.Totals, &r.w.Totals, &r.m.Totals, &r.y.Totals} {
		t.TotalFocusMinutes += minutes
		t.CategoryBreakdown[c] += minutes
	}
	r.w.DailyFocusTime[r.d.Date] += minutes
	r.m.WeeklyFocusTime[r.w.WeekStart] += minutes
	r.y.MonthlyFocusTime[period.MonthOfYear(at)] += minutes
	a.commit(r)
	return nil
}

// CountPomodoro adds one finished focus session to the day containing at.
func (a *Aggregator) CountPomodoro(at time.Time) {
	a.mu.Lock()
	defer a.mu.Unlock()
	r := a.records(at)
	r.d.PomodoroCount++
	a.commit(r)
}

// CreditTaskCreation counts a new open task.
func (a *Aggregator) CreditTaskCreation(at time.Time) {
	a.fold(at, func(t *Totals) { t.TasksRemaining++ })
}

// CreditTaskCompletion moves one task from remaining to done.
func (a *Aggregator) CreditTaskCompletion(at time.Time) {
	a.fold(at, func(t *Totals) {
		t.TasksDone++
		t.TasksRemaining = max(0, t.TasksRemaining-1)
	})
}

// CreditTaskReopen moves one task from done back to remaining.
func (a *Aggregator) CreditTaskReopen(at time.Time) {
	a.fold(at, func(t *Totals) {
		t.TasksDone = max(0, t.TasksDone-1)
		t.TasksRemaining++
	})
}

// CreditTaskDeletion forgets one task.
func (a *Aggregator) CreditTaskDeletion(at time.Time, completed bool) {
	a.fold(at, func(t *Totals) {
		if completed {
			t.TasksDone = max(0, t.TasksDone-1)
		} else {
			t.TasksRemaining = max(0, t.TasksRemaining-1)
		}
	})
}

// Daily returns the day containing at. Absent periods come back zeroed.
func (a *Aggregator) Daily(at time.Time) Daily {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.dailyRecord(period.Day(at))
}

// Weekly returns the week containing at.
func (a *Aggregator) Weekly(at time.Time) Weekly {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.weeklyRecord(period.Week(at, a.weekStart))
}

// Monthly returns the month containing at.
func (a *Aggregator) Monthly(at time.Time) Monthly {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.monthlyRecord(period.Month(at))
}

// Yearly returns the year containing at.
func (a *Aggregator) Yearly(at time.Time) Yearly {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.yearlyRecord(period.Year(at))
}

// Snapshot returns a deep copy of every period.
func (a *Aggregator) Snapshot() Snapshot {
	a.mu.RLock()
	defer a.mu.RUnlock()
	s := Snapshot{
		Daily:   make(map[string]Daily, len(a.daily)),
		Weekly:  make(map[string]Weekly, len(a.weekly)),
		Monthly: make(map[string]Monthly, len(a.monthly)),
		Yearly:  make(map[string]Yearly, len(a.yearly)),
	}
	for k, v := range a.daily {
		s.Daily[k] = v.clone()
	}
	for k, v := range a.weekly {
		s.Weekly[k] = v.clone()
	}
	for k, v := range a.monthly {
		s.Monthly[k] = v.clone()
	}
	for k, v := range a.yearly {
		s.Yearly[k] = v.clone()
	}
	return s
}

// Restore replaces the aggregator state. Record keys are taken from the map
// keys and known categories missing from a breakdown are added at 0.
func (a *Aggregator) Restore(s Snapshot) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.daily = make(map[string]Daily, len(s.Daily))
	for k, v := range s.Daily {
		v = v.clone()
		v.Date = k
		a.seed(&v.Totals)
		a.daily[k] = v
	}
	a.weekly = make(map[string]Weekly, len(s.Weekly))
	for k, v := range s.Weekly {
		v = v.clone()
		v.WeekStart = k
		a.seed(&v.Totals)
		a.weekly[k] = v
	}
	a.monthly = make(map[string]Monthly, len(s.Monthly))
	for k, v := range s.Monthly {
		v = v.clone()
		v.Month = k
		a.seed(&v.Totals)
		a.monthly[k] = v
	}
	a.yearly = make(map[string]Yearly, len(s.Yearly))
	for k, v := range s.Yearly {
		v = v.clone()
		v.Year = k
		a.seed(&v.Totals)
		a.yearly[k] = v
	}
}

// Days returns copies of the daily records, for charts and insights.
func (a *Aggregator) Days() map[string]Daily {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make(map[string]Daily, len(a.daily))
	for k, v := range a.daily {
		out[k] = v.clone()
	}
	return out
}

// set is the four records a timestamp falls into, as private copies.
type set struct {
	d Daily
	w Weekly
	m Monthly
	y Yearly
}

// records builds copies of the periods containing at. Callers hold mu.
func (a *Aggregator) records(at time.Time) set {
	return set{
		d: a.dailyRecord(period.Day(at)),
		w: a.weeklyRecord(period.Week(at, a.weekStart)),
		m: a.monthlyRecord(period.Month(at)),
		y: a.yearlyRecord(period.Year(at)),
	}
}

// commit stores all four records together. Callers hold mu.
func (a *Aggregator) commit(r set) {
	a.daily[r.d.Date] = r.d
	a.weekly[r.w.WeekStart] = r.w
	a.monthly[r.m.Month] = r.m
	a.yearly[r.y.Year] = r.y
}

func (a *Aggregator) fold(at time.Time, fn func(*Totals)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	r := a.records(at)
	for _, t := range []*Totals{&r.d.Totals, &r.w.Totals, &r.m.Totals, &r.y.Totals} {
		fn(t)
	}
	a.commit(r)
}

func (a *Aggregator) dailyRecord(key string) Daily {
	if d, ok := a.daily[key]; ok {
		return d.clone()
	}
	return Daily{Date: key, Totals: a.fresh(a.goals.DailyMinutes)}
}

func (a *Aggregator) weeklyRecord(key string) Weekly {
	if w, ok := a.weekly[key]; ok {
		return w.clone()
	}
	return Weekly{WeekStart: key, Totals: a.fresh(a.goals.WeeklyMinutes), DailyFocusTime: map[string]float64{}}
}

func (a *Aggregator) monthlyRecord(key string) Monthly {
	if m, ok := a.monthly[key]; ok {
		return m.clone()
	}
	return Monthly{Month: key, Totals: a.fresh(a.goals.MonthlyMinutes), WeeklyFocusTime: map[string]float64{}}
}

func (a *Aggregator) yearlyRecord(key string) Yearly {
	if y, ok := a.yearly[key]; ok {
		return y.clone()
	}
	return Yearly{Year: key, Totals: a.fresh(a.goals.YearlyMinutes), MonthlyFocusTime: map[string]float64{}}
}

func (a *Aggregator) fresh(goal float64) Totals {
	t := Totals{GoalMinutes: goal, CategoryBreakdown: map[string]float64{}}
	a.seed(&t)
	return t
}

// seed makes sure every known category has an entry.
func (a *Aggregator) seed(t *Totals) {
	if t.CategoryBreakdown == nil {
		t.CategoryBreakdown = map[string]float64{}
	}
	for _, c := range a.catalog.Known() {
		if _, ok := t.CategoryBreakdown[c]; !ok {
			t.CategoryBreakdown[c] = 0
		}
	}
}

// Categories returns the categories present in b, sorted by minutes
// descending then name.
func Categories(b map[string]float64) []string {
	keys := slices.Collect(maps.Keys(b))
	slices.SortFunc(keys, func(x, y string) int {
		if c := cmp.Compare(b[y], b[x]); c != 0 {
			return c
		}
		return strings.Compare(x, y)
	})
	return keys
}
