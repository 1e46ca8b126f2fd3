// Package task owns the task list and the pomodoro/completion lifecycle of
// each task.
package task

import (
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sadopc/tomato/internal/category"
	"github.com/sadopc/tomato/internal/domain"
	"github.com/sadopc/tomato/internal/period"
)

const kind = "task"

// Registry holds tasks most-recent-first.
type Registry struct {
	mu      sync.RWMutex
	catalog category.Catalog
	now     func() time.Time
	tasks   []Task
}

// NewRegistry returns an empty registry. now defaults to time.Now.
func NewRegistry(catalog category.Catalog, now func() time.Time) *Registry {
	if now == nil {
		now = time.Now
	}
	return &Registry{catalog: catalog, now: now}
}

// Add creates a task at the front of the list. An empty category means the
// default one.
func (r *Registry) Add(title, cat string, estimate int) (Task, error) {
	title = strings.TrimSpace(title)
	if strings.TrimSpace(cat) == "" {
		cat = category.Default
	}
	var errs []domain.FieldError
	if title == "" {
		errs = append(errs, domain.FieldError{Field: "title", Message: "required"})
	}
	if estimate < 1 {
		errs = append(errs, domain.FieldError{Field: "estimated_pomodoros", Message: "must be >= 1"})
	}
	resolved, err := r.catalog.Resolve(cat)
	if err != nil {
		errs = append(errs, domain.FieldErrors(err)...)
	}
	if err := domain.NewValidationErrors(errs); err != nil {
		return Task{}, err
	}

	t := Task{
		ID:                 uuid.NewString(),
		Title:              title,
		Category:           resolved,
		EstimatedPomodoros: estimate,
		CreatedAt:          r.now(),
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.tasks = slices.Insert(r.tasks, 0, t)
	return t, nil
}

// Get returns the task with id.
func (r *Registry) Get(id string) (Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i := r.index(id)
	if i < 0 {
		return Task{}, domain.NewNotFoundError(kind, id)
	}
	return r.tasks[i], nil
}

// Update merges p into the task. Setting Completed false clears CompletedAt.
// Raising CompletedPomodoros to the estimate completes the task unless the
// patch sets Completed explicitly.
func (r *Registry) Update(id string, p Patch) (Task, Change, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.index(id)
	if i < 0 {
		return Task{}, Change{}, domain.NewNotFoundError(kind, id)
	}
	t := r.tasks[i]
	wasCompleted := t.Completed

	var errs []domain.FieldError
	if p.Title != nil {
		title := strings.TrimSpace(*p.Title)
		if title == "" {
			errs = append(errs, domain.FieldError{Field: "title", Message: "required"})
		}
		t.Title = title
	}
	if p.Category != nil {
		c, err := r.catalog.Resolve(*p.Category)
		if err != nil {
			errs = append(errs, domain.FieldErrors(err)...)
		}
		t.Category = c
	}
	if p.EstimatedPomodoros != nil {
		if *p.EstimatedPomodoros < 1 {
			errs = append(errs, domain.FieldError{Field: "estimated_pomodoros", Message: "must be >= 1"})
		}
		t.EstimatedPomodoros = *p.EstimatedPomodoros
	}
	if p.CompletedPomodoros != nil {
		if *p.CompletedPomodoros < 0 {
			errs = append(errs, domain.FieldError{Field: "completed_pomodoros", Message: "must be >= 0"})
		}
		t.CompletedPomodoros = *p.CompletedPomodoros
	}
	if err := domain.NewValidationErrors(errs); err != nil {
		return Task{}, Change{}, err
	}

	switch {
	case p.Completed != nil:
		r.setCompleted(&t, *p.Completed)
	case (p.CompletedPomodoros != nil || p.EstimatedPomodoros != nil) &&
		t.CompletedPomodoros >= t.EstimatedPomodoros:
		r.setCompleted(&t, true)
	}

	r.tasks[i] = t
	return t, Change{
		Completed: !wasCompleted && t.Completed,
		Reopened:  wasCompleted && !t.Completed,
	}, nil
}

// Delete removes the task and returns it.
func (r *Registry) Delete(id string) (Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.index(id)
	if i < 0 {
		return Task{}, domain.NewNotFoundError(kind, id)
	}
	t := r.tasks[i]
	r.tasks = slices.Delete(r.tasks, i, i+1)
	return t, nil
}

// Complete marks the task done. The bool is false when it already was.
func (r *Registry) Complete(id string) (Task, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.index(id)
	if i < 0 {
		return Task{}, false, domain.NewNotFoundError(kind, id)
	}
	t := &r.tasks[i]
	if t.Completed {
		return *t, false, nil
	}
	r.setCompleted(t, true)
	return *t, true, nil
}

// IncrementPomodoro records one more pomodoro on the task. Reaching the
// estimate completes it; the bool reports whether this call did so.
func (r *Registry) IncrementPomodoro(id string) (Task, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.index(id)
	if i < 0 {
		return Task{}, false, domain.NewNotFoundError(kind, id)
	}
	t := &r.tasks[i]
	t.CompletedPomodoros++
	if t.Completed || t.CompletedPomodoros < t.EstimatedPomodoros {
		return *t, false, nil
	}
	r.setCompleted(t, true)
	return *t, true, nil
}

// List returns all tasks, most recent first.
func (r *Registry) List() []Task {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.tasks)
}

// Today returns tasks created on the calendar day of now, in now's location.
func (r *Registry) Today(now time.Time) []Task {
	return r.filter(func(t Task) bool { return period.SameDay(now, t.CreatedAt) })
}

// ByCategory returns tasks in cat.
func (r *Registry) ByCategory(cat string) []Task {
	cat = category.Normalize(cat)
	return r.filter(func(t Task) bool { return t.Category == cat })
}

// Counts returns the number of completed and open tasks.
func (r *Registry) Counts() (done, remaining int) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, t := range r.tasks {
		if t.Completed {
			done++
		} else {
			remaining++
		}
	}
	return done, remaining
}

// Len returns the number of tasks.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tasks)
}

// Snapshot is List under a name that pairs with Restore.
func (r *Registry) Snapshot() []Task { return r.List() }

// Restore replaces the task list. Entries without an id are dropped and the
// completed/completed_at pairing is repaired.
func (r *Registry) Restore(tasks []Task) {
	out := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		if t.ID == "" {
			continue
		}
		switch {
		case t.Completed && t.CompletedAt == nil:
			at := t.CreatedAt
			t.CompletedAt = &at
		case !t.Completed:
			t.CompletedAt = nil
		}
		out = append(out, t)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tasks = out
}

func (r *Registry) filter(keep func(Task) bool) []Task {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Task
	for _, t := range r.tasks {
		if keep(t) {
			out = append(out, t)
		}
	}
	return out
}

func (r *Registry) index(id string) int {
	return slices.IndexFunc(r.tasks, func(t Task) bool { return t.ID == id })
}

func (r *Registry) setCompleted(t *Task, done bool) {
	if done == t.Completed {
		return
	}
	t.Completed = done
	if done {
		at := r.now()
		t.CompletedAt = &at
	} else {
		t.CompletedAt = nil
	}
}
