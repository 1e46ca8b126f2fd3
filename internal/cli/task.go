package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sadopc/tomato/internal/app"
	"github.com/sadopc/tomato/internal/domain"
	"github.com/sadopc/tomato/internal/task"
	"github.com/sadopc/tomato/internal/tracker"
)

// shortID is how many characters of a task id are printed.
const shortID = 8

func newTaskCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Manage tasks",
		Long:  `Create, list, complete and delete the tasks focus sessions are credited to.`,
	}
	cmd.AddCommand(newTaskAddCmd(opts))
	cmd.AddCommand(newTaskDeleteCmd(opts))
	cmd.AddCommand(newTaskDoneCmd(opts))
	cmd.AddCommand(newTaskEditCmd(opts))
	cmd.AddCommand(newTaskListCmd(opts))
	cmd.AddCommand(newTaskReopenCmd(opts))
	return cmd
}

func newTaskAddCmd(opts *options) *cobra.Command {
	var (
		cat      string
		estimate int
	)
	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a new task",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(a *app.App) error {
				t, err := a.Tracker.AddTask(strings.Join(args, " "), cat, estimate)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s\n",
					styleSuccess.Render("Added"), styleLabel.Render(t.ID[:shortID]), t.Title)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&cat, "category", "c", "", "category (default work)")
	cmd.Flags().IntVarP(&estimate, "estimate", "e", 1, "estimated pomodoros")
	return cmd
}

func newTaskListCmd(opts *options) *cobra.Command {
	var (
		today bool
		cat   string
	)
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List tasks",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(a *app.App) error {
				var tasks []task.Task
				switch {
				case today:
					tasks = a.Tracker.TodayTasks()
				case cat != "":
					tasks = a.Tracker.TasksByCategory(cat)
				default:
					tasks = a.Tracker.Tasks()
				}
				if cat != "" && today {
					tasks = filterCategory(tasks, cat)
				}
				printTasks(cmd.OutOrStdout(), tasks)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&today, "today", false, "only tasks created today")
	cmd.Flags().StringVarP(&cat, "category", "c", "", "only tasks in this category")
	return cmd
}

func filterCategory(tasks []task.Task, cat string) []task.Task {
	var out []task.Task
	for _, t := range tasks {
		if strings.EqualFold(t.Category, strings.TrimSpace(cat)) {
			out = append(out, t)
		}
	}
	return out
}

func printTasks(w io.Writer, tasks []task.Task) {
	if len(tasks) == 0 {
		fmt.Fprintln(w, "No tasks. Run 'tomato task add' to create one.")
		return
	}
	fmt.Fprintln(w, styleHeader.Render(fmt.Sprintf("  %-8s  %-4s  %-10s  %-5s  %s", "ID", "", "CATEGORY", "POMOS", "TITLE")))
	done := 0
	for _, t := range tasks {
		badge := badgeOpen.Render("open")
		if t.Completed {
			badge = badgeDone.Render("done")
			done++
		}
		fmt.Fprintf(w, "  %-8s  %s  %-10s  %-5s  %s\n",
			t.ID[:min(shortID, len(t.ID))], badge, t.Category,
			fmt.Sprintf("%d/%d", t.CompletedPomodoros, t.EstimatedPomodoros), t.Title)
	}
	fmt.Fprintln(w, styleHint.Render(fmt.Sprintf("  %d done, %d remaining", done, len(tasks)-done)))
}

func newTaskDoneCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:     "done <id>",
		Aliases: []string{"complete"},
		Short:   "Mark a task completed",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(a *app.App) error {
				id, err := resolveTask(a.Tracker, args[0])
				if err != nil {
					return err
				}
				t, err := a.Tracker.CompleteTask(id)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", badgeDone.Render("Completed"), t.Title)
				return nil
			})
		},
	}
}

func newTaskReopenCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "reopen <id>",
		Short: "Mark a completed task open again",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(a *app.App) error {
				id, err := resolveTask(a.Tracker, args[0])
				if err != nil {
					return err
				}
				open := false
				t, err := a.Tracker.UpdateTask(id, task.Patch{Completed: &open})
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", badgeOpen.Render("Reopened"), t.Title)
				return nil
			})
		},
	}
}

func newTaskEditCmd(opts *options) *cobra.Command {
	var (
		title     string
		cat       string
		estimate  int
		pomodoros int
	)
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change a task's title, category or estimate",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var p task.Patch
			if cmd.Flags().Changed("title") {
				p.Title = &title
			}
			if cmd.Flags().Changed("category") {
				p.Category = &cat
			}
			if cmd.Flags().Changed("estimate") {
				p.EstimatedPomodoros = &estimate
			}
			if cmd.Flags().Changed("pomodoros") {
				p.CompletedPomodoros = &pomodoros
			}
			if p == (task.Patch{}) {
				return fmt.Errorf("nothing to change; pass --title, --category, --estimate or --pomodoros")
			}
			return withApp(cmd, opts, func(a *app.App) error {
				id, err := resolveTask(a.Tracker, args[0])
				if err != nil {
					return err
				}
				t, err := a.Tracker.UpdateTask(id, p)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", styleSuccess.Render("Updated"), t.Title)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&title, "title", "t", "", "new title")
	cmd.Flags().StringVarP(&cat, "category", "c", "", "new category")
	cmd.Flags().IntVarP(&estimate, "estimate", "e", 0, "new estimate")
	cmd.Flags().IntVar(&pomodoros, "pomodoros", 0, "completed pomodoro count")
	return cmd
}

func newTaskDeleteCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a task",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(a *app.App) error {
				id, err := resolveTask(a.Tracker, args[0])
				if err != nil {
					return err
				}
				t, _ := a.Tracker.Task(id)
				if err := a.Tracker.DeleteTask(id); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", badgeGone.Render("Deleted"), t.Title)
				return nil
			})
		},
	}
}

// resolveTask accepts a full id or a unique prefix of one.
func resolveTask(tr *tracker.Tracker, ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", domain.NewValidationError("id", "required")
	}
	var matches []string
	for _, t := range tr.Tasks() {
		if t.ID == ref {
			return t.ID, nil
		}
		if strings.HasPrefix(t.ID, ref) {
			matches = append(matches, t.ID)
		}
	}
	switch len(matches) {
	case 0:
		return "", domain.NewNotFoundError("task", ref)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("task id %q is ambiguous (%d matches)", ref, len(matches))
	}
}
