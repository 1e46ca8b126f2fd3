package tracker

import (
	"github.com/sadopc/tomato/internal/task"
)

// AddTask creates a task and counts it as remaining.
func (t *Tracker) AddTask(title, cat string, estimate int) (task.Task, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	tk, err := t.tasks.Add(title, cat, estimate)
	if err != nil {
		return task.Task{}, err
	}
	t.stats.CreditTaskCreation(t.now())
	t.saveTasks()
	t.saveStats()
	return tk, nil
}

// UpdateTask applies a partial update.
func (t *Tracker) UpdateTask(id string, p task.Patch) (task.Task, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	tk, ch, err := t.tasks.Update(id, p)
	if err != nil {
		return task.Task{}, err
	}
	switch {
	case ch.Completed:
		t.stats.CreditTaskCompletion(t.now())
		t.saveStats()
	case ch.Reopened:
		t.stats.CreditTaskReopen(t.now())
		t.saveStats()
	}
	t.saveTasks()
	return tk, nil
}

// DeleteTask removes a task. If it was attached to the countdown it is
// detached.
func (t *Tracker) DeleteTask(id string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	tk, err := t.tasks.Delete(id)
	if err != nil {
		return err
	}
	t.engine.ClearTask(id)
	t.stats.CreditTaskDeletion(t.now(), tk.Completed)
	t.saveTasks()
	t.saveStats()
	return nil
}

// CompleteTask marks a task done. Completing a done task changes nothing.
func (t *Tracker) CompleteTask(id string) (task.Task, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	tk, changed, err := t.tasks.Complete(id)
	if err != nil {
		return task.Task{}, err
	}
	if changed {
		t.stats.CreditTaskCompletion(t.now())
		t.saveTasks()
		t.saveStats()
	}
	return tk, nil
}

// IncrementTaskPomodoro records a pomodoro on a task by hand.
func (t *Tracker) IncrementTaskPomodoro(id string) (task.Task, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	tk, done, err := t.tasks.IncrementPomodoro(id)
	if err != nil {
		return task.Task{}, err
	}
	if done {
		t.stats.CreditTaskCompletion(t.now())
		t.saveStats()
	}
	t.saveTasks()
	return tk, nil
}

// SelectActiveTask attaches a task to the countdown. An empty id detaches.
func (t *Tracker) SelectActiveTask(id string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if id != "" {
		if _, err := t.tasks.Get(id); err != nil {
			return err
		}
	}
	t.engine.SelectTask(id)
	return nil
}
