package main

import (
	"context"
	"fmt"

	"tesnim/internal/app"
	"tesnim/internal/domain"
)

func (c *cli) tasks(ctx context.Context, args []string) error {
	store := app.NewTaskStore(c.api, c.creds)
	defer store.Close()
	_ = store.Restore(ctx)

	sub, rest := subcommand(args, "list")
	switch sub {
	case "list":
		fs := c.flags("tasks list")
		filter := fs.String("filter", "", "all|today|upcoming|completed|overdue|high")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		if *filter != "" {
			if err := store.SetFilter(ctx, domain.TaskFilter(*filter)); err != nil {
				return err
			}
		}
		if _, err := store.FetchTasks(ctx); err != nil {
			return fmt.Errorf("%s", store.Error())
		}
		c.printTasks(app.SortTasks(store.FilteredTasks(), c.now()))
		return nil

	case "add":
		fs := c.flags("tasks add")
		title := fs.String("title", "", "task title")
		desc := fs.String("desc", "", "description")
		due := fs.String("due", "", "due date (YYYY-MM-DD or RFC 3339)")
		priority := fs.String("priority", string(domain.PriorityMedium), "low|medium|high")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		dueDate, err := optionalTime(*due)
		if err != nil {
			return err
		}
		task, err := store.CreateTask(ctx, domain.TaskInput{
			Title:       *title,
			Description: *desc,
			DueDate:     dueDate,
			Priority:    domain.TaskPriority(*priority),
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(c.out, "Created task %s.\n", task.ID)
		return nil

	case "done":
		id, err := argID(rest)
		if err != nil {
			return err
		}
		if _, err := store.FetchTasks(ctx); err != nil {
			return fmt.Errorf("%s", store.Error())
		}
		completed := true
		if _, err := store.UpdateTask(ctx, id, domain.TaskPatch{Completed: &completed}); err != nil {
			return err
		}
		fmt.Fprintf(c.out, "Completed task %s.\n", id)
		return nil

	case "rm":
		id, err := argID(rest)
		if err != nil {
			return err
		}
		if err := store.DeleteTask(ctx, id); err != nil {
			return err
		}
		fmt.Fprintf(c.out, "Deleted task %s.\n", id)
		return nil

	case "stats":
		st := store.FetchTaskStats(ctx)
		fmt.Fprintf(c.out, "completed today: %d\nyesterday: %d\nthis week: %d\n",
			st.CompletedToday, st.CompletedYesterday, st.CompletedThisWeek)
		return nil
	}
	return errUsage
}

func (c *cli) printTasks(tasks []domain.Task) {
	if len(tasks) == 0 {
		fmt.Fprintln(c.out, "No tasks.")
		return
	}
	w := table(c.out)
	fmt.Fprintln(w, "ID\tTITLE\tPRIORITY\tDUE\tDONE")
	for _, t := range tasks {
		done := ""
		if t.Completed {
			done = "x"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", t.ID, t.Title, t.Priority, formatDay(t.DueDate), done)
	}
	_ = w.Flush()
}
