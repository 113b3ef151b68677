package main

import (
	"context"
	"fmt"
	"time"

	"tesnim/internal/app"
	"tesnim/internal/domain"
)

func (c *cli) events(ctx context.Context, args []string) error {
	store := app.NewCalendarStore(c.api, c.creds)
	defer store.Close()
	_ = store.Restore(ctx)

	sub, rest := subcommand(args, "list")
	switch sub {
	case "list":
		fs := c.flags("events list")
		view := fs.String("view", "", "day|week|month")
		date := fs.String("date", "", "selected date (YYYY-MM-DD)")
		upcoming := fs.Bool("upcoming", false, "list every event after now")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		if *view != "" {
			if err := store.SetView(ctx, domain.CalendarView(*view)); err != nil {
				return err
			}
		}
		if *date != "" {
			d, err := parseWhen(*date)
			if err != nil {
				return err
			}
			store.SetSelectedDate(ctx, d)
		}

		now := c.now()
		if *upcoming {
			if _, err := store.FetchEvents(ctx, domain.EventRange{Start: now}); err != nil {
				return fmt.Errorf("%s", store.Error())
			}
			c.printEvents(store.UpcomingEvents(now))
			return nil
		}

		r := viewRange(store.View(), store.SelectedDate())
		if _, err := store.FetchEvents(ctx, r); err != nil {
			return fmt.Errorf("%s", store.Error())
		}
		switch store.View() {
		case domain.ViewDay:
			c.printEvents(store.EventsForDate(store.SelectedDate()))
		case domain.ViewMonth:
			c.printEvents(store.EventsForCurrentMonth())
		default:
			c.printEvents(store.EventsForCurrentWeek())
		}
		return nil

	case "add":
		fs := c.flags("events add")
		var in domain.EventInput
		fs.StringVar(&in.Title, "title", "", "event title")
		fs.StringVar(&in.Description, "desc", "", "description")
		fs.StringVar(&in.Location, "location", "", "location")
		fs.BoolVar(&in.IsAllDay, "all-day", false, "all-day event")
		start := fs.String("start", "", "start (YYYY-MM-DD HH:MM or RFC 3339)")
		end := fs.String("end", "", "end; defaults to one hour after start")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		var err error
		if in.StartTime, err = parseWhen(*start); err != nil {
			return err
		}
		in.EndTime = in.StartTime.Add(time.Hour)
		if *end != "" {
			if in.EndTime, err = parseWhen(*end); err != nil {
				return err
			}
		}
		ev, err := store.CreateEvent(ctx, in)
		if err != nil {
			return err
		}
		fmt.Fprintf(c.out, "Created event %s.\n", ev.ID)
		return nil

	case "rm":
		id, err := argID(rest)
		if err != nil {
			return err
		}
		if err := store.DeleteEvent(ctx, id); err != nil {
			return err
		}
		fmt.Fprintf(c.out, "Deleted event %s.\n", id)
		return nil

	case "sync":
		events, err := store.SyncGoogleCalendar(ctx)
		if err != nil {
			return fmt.Errorf("%s", store.Error())
		}
		fmt.Fprintf(c.out, "Synced %d events.\n", len(events))
		return nil
	}
	return errUsage
}

// viewRange is the span a view shows around the selected date.
func viewRange(v domain.CalendarView, selected time.Time) domain.EventRange {
	day := time.Date(selected.Year(), selected.Month(), selected.Day(), 0, 0, 0, 0, selected.Location())
	switch v {
	case domain.ViewDay:
		return domain.EventRange{Start: day, End: day.AddDate(0, 0, 1)}
	case domain.ViewMonth:
		first := day.AddDate(0, 0, 1-day.Day())
		return domain.EventRange{Start: first, End: first.AddDate(0, 1, 0)}
	}
	sunday := day.AddDate(0, 0, -int(day.Weekday()))
	return domain.EventRange{Start: sunday, End: sunday.AddDate(0, 0, 7)}
}

func (c *cli) printEvents(events []domain.Event) {
	if len(events) == 0 {
		fmt.Fprintln(c.out, "No events.")
		return
	}
	w := table(c.out)
	fmt.Fprintln(w, "ID\tTITLE\tSTART\tEND\tLOCATION")
	for _, e := range events {
		start, end := e.StartTime.Local().Format("2006-01-02 15:04"), e.EndTime.Local().Format("15:04")
		if e.IsAllDay {
			start, end = e.StartTime.Local().Format("2006-01-02"), "all day"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", e.ID, e.Title, start, end, e.Location)
	}
	_ = w.Flush()
}
