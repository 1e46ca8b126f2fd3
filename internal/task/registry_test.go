package task

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sadopc/tomato/internal/category"
	"github.com/sadopc/tomato/internal/domain"
)

var baseTime = time.Date(2026, 3, 9, 10, 0, 0, 0, time.UTC)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time { return c.t }

func newTestRegistry(t *testing.T) (*Registry, *fakeClock) {
	t.Helper()
	clk := &fakeClock{t: baseTime}
	return NewRegistry(category.Closed(), clk.Now), clk
}

func ptr[T any](v T) *T { return &v }

// ==================== Add ====================

func TestAdd_EmptyTitle(t *testing.T) {
	t.Parallel()
	r, _ := newTestRegistry(t)

	_, err := r.Add("   ", category.Work, 1)
	require.ErrorIs(t, err, domain.ErrValidation)
	assert.Zero(t, r.Len())
}

func TestAdd_InvalidEstimateAndCategory(t *testing.T) {
	t.Parallel()
	r, _ := newTestRegistry(t)

	_, err := r.Add("Write report", "gardening", 0)
	require.ErrorIs(t, err, domain.ErrValidation)
	fields := domain.FieldErrors(err)
	require.Len(t, fields, 2)
	assert.Equal(t, "estimated_pomodoros", fields[0].Field)
	assert.Equal(t, "category", fields[1].Field)
}

func TestAdd_FrontInsert(t *testing.T) {
	t.Parallel()
	r, _ := newTestRegistry(t)

	first, err := r.Add("Read paper", category.Study, 2)
	require.NoError(t, err)
	second, err := r.Add("Write report", category.Work, 3)
	require.NoError(t, err)

	list := r.List()
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.Equal(t, first.ID, list[1].ID)
	assert.Equal(t, "Write report", list[0].Title)
	assert.Equal(t, 3, list[0].EstimatedPomodoros)
	assert.Zero(t, list[0].CompletedPomodoros)
	assert.False(t, list[0].Completed)
	assert.Nil(t, list[0].CompletedAt)
	assert.Equal(t, baseTime, list[0].CreatedAt)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestAdd_EmptyCategoryDefaults(t *testing.T) {
	t.Parallel()
	r, _ := newTestRegistry(t)

	tk, err := r.Add("Inbox zero", "", 1)
	require.NoError(t, err)
	assert.Equal(t, category.Default, tk.Category)
}

func TestAdd_OpenCatalogAcceptsAnyCategory(t *testing.T) {
	t.Parallel()
	r := NewRegistry(category.Open(), nil)

	tk, err := r.Add("Prune roses", "Gardening", 1)
	require.NoError(t, err)
	assert.Equal(t, "gardening", tk.Category)
}

// ==================== Get / Delete ====================

func TestGetDelete_NotFound(t *testing.T) {
	t.Parallel()
	r, _ := newTestRegistry(t)

	_, err := r.Get("missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = r.Delete("missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, _, err = r.IncrementPomodoro("missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, _, err = r.Update("missing", Patch{})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDelete(t *testing.T) {
	t.Parallel()
	r, _ := newTestRegistry(t)

	a, _ := r.Add("a", category.Work, 1)
	b, _ := r.Add("b", category.Work, 1)

	got, err := r.Delete(a.ID)
	require.NoError(t, err)
	assert.Equal(t, a.ID, got.ID)

	list := r.List()
	require.Len(t, list, 1)
	assert.Equal(t, b.ID, list[0].ID)
}

// ==================== Update ====================

func TestUpdate_CompleteAndReopen(t *testing.T) {
	t.Parallel()
	r, clk := newTestRegistry(t)

	tk, _ := r.Add("Write report", category.Work, 3)
	clk.t = baseTime.Add(time.Hour)

	got, ch, err := r.Update(tk.ID, Patch{Completed: ptr(true)})
	require.NoError(t, err)
	assert.True(t, ch.Completed)
	assert.False(t, ch.Reopened)
	require.NotNil(t, got.CompletedAt)
	assert.Equal(t, clk.t, *got.CompletedAt)

	got, ch, err = r.Update(tk.ID, Patch{Completed: ptr(false)})
	require.NoError(t, err)
	assert.True(t, ch.Reopened)
	assert.False(t, got.Completed)
	assert.Nil(t, got.CompletedAt)
}

func TestUpdate_ValidationLeavesTaskUnchanged(t *testing.T) {
	t.Parallel()
	r, _ := newTestRegistry(t)

	tk, _ := r.Add("Write report", category.Work, 3)
	_, _, err := r.Update(tk.ID, Patch{Title: ptr("New title"), EstimatedPomodoros: ptr(0)})
	require.ErrorIs(t, err, domain.ErrValidation)

	got, err := r.Get(tk.ID)
	require.NoError(t, err)
	assert.Equal(t, "Write report", got.Title)
	assert.Equal(t, 3, got.EstimatedPomodoros)
}

func TestUpdate_PomodorosReachEstimate(t *testing.T) {
	t.Parallel()
	r, _ := newTestRegistry(t)

	tk, _ := r.Add("Write report", category.Work, 3)
	got, ch, err := r.Update(tk.ID, Patch{CompletedPomodoros: ptr(3)})
	require.NoError(t, err)
	assert.True(t, ch.Completed)
	assert.True(t, got.Completed)

	// An explicit Completed wins over the threshold.
	tk2, _ := r.Add("Read paper", category.Study, 1)
	got, ch, err = r.Update(tk2.ID, Patch{CompletedPomodoros: ptr(5), Completed: ptr(false)})
	require.NoError(t, err)
	assert.False(t, ch.Completed)
	assert.False(t, got.Completed)
}

func TestUpdate_Category(t *testing.T) {
	t.Parallel()
	r, _ := newTestRegistry(t)

	tk, _ := r.Add("Run", category.Work, 1)
	got, _, err := r.Update(tk.ID, Patch{Category: ptr(" HEALTH ")})
	require.NoError(t, err)
	assert.Equal(t, category.Health, got.Category)

	_, _, err = r.Update(tk.ID, Patch{Category: ptr("gardening")})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

// ==================== Completion lifecycle ====================

func TestIncrementPomodoro_CompletesOnce(t *testing.T) {
	t.Parallel()
	r, _ := newTestRegistry(t)

	tk, _ := r.Add("Write report", category.Work, 2)

	got, done, err := r.IncrementPomodoro(tk.ID)
	require.NoError(t, err)
	assert.False(t, done)
	assert.Equal(t, 1, got.CompletedPomodoros)
	assert.Equal(t, 1, got.Remaining())

	got, done, err = r.IncrementPomodoro(tk.ID)
	require.NoError(t, err)
	assert.True(t, done)
	assert.True(t, got.Completed)
	require.NotNil(t, got.CompletedAt)

	got, done, err = r.IncrementPomodoro(tk.ID)
	require.NoError(t, err)
	assert.False(t, done, "already completed")
	assert.Equal(t, 3, got.CompletedPomodoros)
	assert.Zero(t, got.Remaining())
}

func TestComplete_Idempotent(t *testing.T) {
	t.Parallel()
	r, _ := newTestRegistry(t)

	tk, _ := r.Add("Write report", category.Work, 5)
	_, changed, err := r.Complete(tk.ID)
	require.NoError(t, err)
	assert.True(t, changed)

	_, changed, err = r.Complete(tk.ID)
	require.NoError(t, err)
	assert.False(t, changed)

	done, remaining := r.Counts()
	assert.Equal(t, 1, done)
	assert.Zero(t, remaining)
}

// ==================== Filters ====================

func TestToday(t *testing.T) {
	t.Parallel()
	r, clk := newTestRegistry(t)

	clk.t = baseTime.AddDate(0, 0, -1)
	_, _ = r.Add("yesterday", category.Work, 1)
	clk.t = baseTime
	today, _ := r.Add("today", category.Work, 1)

	got := r.Today(baseTime.Add(2 * time.Hour))
	require.Len(t, got, 1)
	assert.Equal(t, today.ID, got[0].ID)
}

func TestByCategory(t *testing.T) {
	t.Parallel()
	r, _ := newTestRegistry(t)

	_, _ = r.Add("a", category.Work, 1)
	b, _ := r.Add("b", category.Study, 1)
	_, _ = r.Add("c", category.Work, 1)

	got := r.ByCategory("Study")
	require.Len(t, got, 1)
	assert.Equal(t, b.ID, got[0].ID)
	assert.Len(t, r.ByCategory(category.Work), 2)
	assert.Empty(t, r.ByCategory(category.Creative))
}

// ==================== Restore ====================

func TestRestore_RepairsEntries(t *testing.T) {
	t.Parallel()
	r, _ := newTestRegistry(t)
	stale := baseTime.Add(time.Hour)

	r.Restore([]Task{
		{ID: "", Title: "no id"},
		{ID: "a", Title: "done", Completed: true, CreatedAt: baseTime},
		{ID: "b", Title: "open", CompletedAt: &stale},
	})

	list := r.List()
	require.Len(t, list, 2)
	require.NotNil(t, list[0].CompletedAt)
	assert.Equal(t, baseTime, *list[0].CompletedAt)
	assert.Nil(t, list[1].CompletedAt)
}

func TestSnapshot_IsCopy(t *testing.T) {
	t.Parallel()
	r, _ := newTestRegistry(t)

	_, _ = r.Add("a", category.Work, 1)
	snap := r.Snapshot()
	snap[0].Title = "changed"

	assert.Equal(t, "a", r.List()[0].Title)
}
