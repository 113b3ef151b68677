package main

import (
	"context"
	"fmt"
	"strings"

	"tesnim/internal/app"
	"tesnim/internal/domain"
)

func (c *cli) todos(ctx context.Context, args []string) error {
	store := app.NewTodoStore(c.api)
	defer store.Close()

	sub, rest := subcommand(args, "list")
	switch sub {
	case "list":
		fs := c.flags("todos list")
		var f domain.TodoFilter
		fs.StringVar(&f.Status, "status", "", "pending|completed")
		fs.StringVar(&f.Priority, "priority", "", "priority")
		fs.StringVar(&f.Tag, "tag", "", "tag")
		fs.StringVar(&f.DueDate, "due", "", "due day (YYYY-MM-DD)")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		if _, err := store.FetchTodos(ctx, f); err != nil {
			return fmt.Errorf("%s", store.Error())
		}
		c.printTodos(store.Todos())
		return nil

	case "add":
		fs := c.flags("todos add")
		var in domain.TodoInput
		fs.StringVar(&in.Text, "text", "", "todo text")
		fs.StringVar(&in.Priority, "priority", "", "priority")
		tags := fs.String("tags", "", "comma-separated tags")
		due := fs.String("due", "", "due date")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		for _, t := range strings.Split(*tags, ",") {
			if t = strings.TrimSpace(t); t != "" {
				in.Tags = append(in.Tags, t)
			}
		}
		var err error
		if in.DueDate, err = optionalTime(*due); err != nil {
			return err
		}
		todo, err := store.CreateTodo(ctx, in)
		if err != nil {
			return err
		}
		fmt.Fprintf(c.out, "Created todo %s.\n", todo.ID)
		return nil

	case "toggle":
		id, err := argID(rest)
		if err != nil {
			return err
		}
		if _, err := store.FetchTodos(ctx, domain.TodoFilter{}); err != nil {
			return fmt.Errorf("%s", store.Error())
		}
		todo, err := store.ToggleTodo(ctx, id)
		if err != nil {
			return err
		}
		fmt.Fprintf(c.out, "Todo %s is now %s.\n", todo.ID, todo.Status)
		return nil

	case "rm":
		id, err := argID(rest)
		if err != nil {
			return err
		}
		if err := store.DeleteTodo(ctx, id); err != nil {
			return err
		}
		fmt.Fprintf(c.out, "Deleted todo %s.\n", id)
		return nil
	}
	return errUsage
}

func (c *cli) printTodos(todos []domain.Todo) {
	if len(todos) == 0 {
		fmt.Fprintln(c.out, "No todos.")
		return
	}
	w := table(c.out)
	fmt.Fprintln(w, "ID\tTEXT\tSTATUS\tPRIORITY\tDUE\tTAGS")
	for _, t := range todos {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", t.ID, t.Text, t.Status, t.Priority, formatDay(t.DueDate), strings.Join(t.Tags, ","))
	}
	_ = w.Flush()
}
