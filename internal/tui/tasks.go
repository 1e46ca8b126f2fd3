package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/tomato/internal/task"
	"github.com/sadopc/tomato/internal/tracker"
)

const (
	filterAll   = "all"
	filterToday = "today"
)

type tasksModel struct {
	tracker *tracker.Tracker
	width   int
	height  int

	tasks    []task.Task
	activeID string
	cursor   int
	filters  []string
	filter   int

	formActive bool
	form       *huh.Form
	editingID  string // "" while creating

	// Form field pointers (survive value copies)
	formTitle    *string
	formCategory *string
	formEstimate *string
}

func newTasksModel(tr *tracker.Tracker) tasksModel {
	title, cat, est := "", "", "1"
	filters := append([]string{filterAll, filterToday}, tr.Catalog().Known()...)
	m := tasksModel{
		tracker:      tr,
		filters:      filters,
		formTitle:    &title,
		formCategory: &cat,
		formEstimate: &est,
	}
	m.load()
	return m
}

func (p *tasksModel) setSize(w, h int) {
	p.width = w
	p.height = h
}

type tasksDataMsg struct {
	tasks    []task.Task
	activeID string
}

func (p tasksModel) fetch() tasksDataMsg {
	var tasks []task.Task
	switch f := p.filters[p.filter]; f {
	case filterAll:
		tasks = p.tracker.Tasks()
	case filterToday:
		tasks = p.tracker.TodayTasks()
	default:
		tasks = p.tracker.TasksByCategory(f)
	}
	return tasksDataMsg{tasks: tasks, activeID: p.tracker.Timer().ActiveTaskID}
}

func (p *tasksModel) load() {
	msg := p.fetch()
	p.tasks, p.activeID = msg.tasks, msg.activeID
}

func (p tasksModel) refresh() tea.Cmd {
	return func() tea.Msg { return p.fetch() }
}

func (p tasksModel) selected() (task.Task, bool) {
	if p.cursor < 0 || p.cursor >= len(p.tasks) {
		return task.Task{}, false
	}
	return p.tasks[p.cursor], true
}

func (p tasksModel) update(msg tea.Msg) (tasksModel, tea.Cmd) {
	if p.formActive && p.form != nil {
		return p.updateForm(msg)
	}

	switch msg := msg.(type) {
	case tasksDataMsg:
		p.tasks = msg.tasks
		p.activeID = msg.activeID
		if p.cursor >= len(p.tasks) {
			p.cursor = max(0, len(p.tasks)-1)
		}
		return p, nil

	case tea.KeyMsg:
		return p.updateList(msg)
	}
	return p, nil
}

func (p tasksModel) updateList(msg tea.KeyMsg) (tasksModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if p.cursor > 0 {
			p.cursor--
		}
	case key.Matches(msg, keys.Down):
		if p.cursor < len(p.tasks)-1 {
			p.cursor++
		}
	case key.Matches(msg, keys.Filter):
		p.filter = (p.filter + 1) % len(p.filters)
		p.cursor = 0
		return p, p.refresh()
	case key.Matches(msg, keys.New):
		return p.showForm(task.Task{})
	case key.Matches(msg, keys.Edit):
		if t, ok := p.selected(); ok {
			return p.showForm(t)
		}
	case key.Matches(msg, keys.Delete):
		if t, ok := p.selected(); ok {
			return p, p.mutate(func() error { return p.tracker.DeleteTask(t.ID) }, "Deleted "+t.Title)
		}
	case key.Matches(msg, keys.Done):
		if t, ok := p.selected(); ok {
			if t.Completed {
				reopen := false
				return p, p.mutate(func() error {
					_, err := p.tracker.UpdateTask(t.ID, task.Patch{Completed: &reopen})
					return err
				}, "Reopened "+t.Title)
			}
			return p, p.mutate(func() error {
				_, err := p.tracker.CompleteTask(t.ID)
				return err
			}, "Completed "+t.Title)
		}
	case key.Matches(msg, keys.Tally):
		if t, ok := p.selected(); ok {
			return p, p.mutate(func() error {
				_, err := p.tracker.IncrementTaskPomodoro(t.ID)
				return err
			}, "Added a pomodoro to "+t.Title)
		}
	case key.Matches(msg, keys.Select), key.Matches(msg, keys.Enter):
		if t, ok := p.selected(); ok {
			id, text := t.ID, "Active task: "+t.Title
			if t.ID == p.activeID {
				id, text = "", "Active task cleared"
			}
			return p, p.mutate(func() error { return p.tracker.SelectActiveTask(id) }, text)
		}
	}
	return p, nil
}

// mutate runs fn, then reports text or the error and reloads the list.
func (p tasksModel) mutate(fn func() error, text string) tea.Cmd {
	if err := fn(); err != nil {
		return tea.Batch(errorStatus(fmt.Sprintf("Error: %v", err)), p.refresh())
	}
	return tea.Batch(status(text), p.refresh())
}

func (p tasksModel) showForm(t task.Task) (tasksModel, tea.Cmd) {
	p.editingID = t.ID
	*p.formTitle = t.Title
	*p.formCategory = t.Category
	*p.formEstimate = "1"
	if t.ID != "" {
		*p.formEstimate = strconv.Itoa(t.EstimatedPomodoros)
	}

	catalog := p.tracker.Catalog()
	if *p.formCategory == "" && len(catalog.Known()) > 0 {
		*p.formCategory = catalog.Known()[0]
	}

	var catField huh.Field
	if catalog.IsOpen() {
		catField = huh.NewInput().Title("Category").
			Description(strings.Join(catalog.Known(), ", ")).
			Value(p.formCategory)
	} else {
		opts := make([]huh.Option[string], 0, len(catalog.Known()))
		for _, c := range catalog.Known() {
			opts = append(opts, huh.NewOption(c, c))
		}
		catField = huh.NewSelect[string]().Title("Category").Options(opts...).Value(p.formCategory)
	}

	p.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Task").Value(p.formTitle).Validate(requireText),
			catField,
			huh.NewInput().Title("Estimated pomodoros").Value(p.formEstimate).Validate(positiveInt),
		),
	).WithShowHelp(true).WithShowErrors(true)

	p.formActive = true
	return p, p.form.Init()
}

func (p tasksModel) updateForm(msg tea.Msg) (tasksModel, tea.Cmd) {
	// Check for escape to cancel form
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			p.formActive = false
			p.form = nil
			return p, nil
		}
	}

	form, cmd := p.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		p.form = f
	}

	if p.form.State == huh.StateCompleted {
		p.formActive = false
		return p, p.submitForm()
	}

	return p, cmd
}

func (p tasksModel) submitForm() tea.Cmd {
	title, cat := *p.formTitle, *p.formCategory
	est, _ := strconv.Atoi(strings.TrimSpace(*p.formEstimate))

	if p.editingID == "" {
		return p.mutate(func() error {
			_, err := p.tracker.AddTask(title, cat, est)
			return err
		}, "Added "+strings.TrimSpace(title))
	}
	id := p.editingID
	return p.mutate(func() error {
		_, err := p.tracker.UpdateTask(id, task.Patch{
			Title:              &title,
			Category:           &cat,
			EstimatedPomodoros: &est,
		})
		return err
	}, "Updated "+strings.TrimSpace(title))
}

func requireText(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("required")
	}
	return nil
}

func positiveInt(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return fmt.Errorf("enter a whole number of at least 1")
	}
	return nil
}

func (p tasksModel) view() string {
	if p.formActive && p.form != nil {
		title := titleStyle.Render("New Task")
		if p.editingID != "" {
			title = titleStyle.Render("Edit Task")
		}
		content := lipgloss.JoinVertical(lipgloss.Left, title, "", p.form.View())
		return panelStyle.Width(p.width - 4).Render(content)
	}
	return p.renderList()
}

func (p tasksModel) renderList() string {
	w := p.width - 4
	title := titleStyle.Render("Tasks") + mutedStyle.Render("  filter: "+p.filters[p.filter])

	if len(p.tasks) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			title,
			"",
			mutedStyle.Render("No tasks here. Press n to add one."),
		)
		return panelStyle.Width(w).Render(content)
	}

	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")

	header := mutedStyle.Render(fmt.Sprintf("  %-3s %-32s %-12s %s", "", "Task", "Category", "Pomodoros"))
	rows = append(rows, header)

	for i, t := range p.tasks {
		cursor := "  "
		style := normalItemStyle
		if i == p.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		if t.Completed {
			style = doneItemStyle
		}
		marker := " "
		if t.ID == p.activeID {
			marker = accentStyle.Render("▶")
		}
		row := fmt.Sprintf("%s%s %s %s %-12s %d/%d",
			cursor, marker, categoryDot(t.Category),
			style.Render(fmt.Sprintf("%-32s", truncate(t.Title, 32))),
			t.Category, t.CompletedPomodoros, t.EstimatedPomodoros,
		)
		rows = append(rows, row)
	}

	done, remaining := 0, 0
	for _, t := range p.tasks {
		if t.Completed {
			done++
		} else {
			remaining++
		}
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %d done, %d remaining", done, remaining)))
	rows = append(rows, mutedStyle.Render("  n: new  e: edit  d: delete  c: complete  +: pomodoro  a: set active  f: filter"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
