package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"tesnim/internal/app"
	"tesnim/internal/domain"
)

func (c *cli) timer(ctx context.Context, args []string) error {
	store := app.NewTimerStore(c.api, c.creds)
	defer store.Close()
	store.SetClock(c.now)
	store.SetTickInterval(c.tick)
	_ = store.Restore(ctx)

	sub, rest := subcommand(args, "start")
	switch sub {
	case "start":
		_ = store.FetchSettings(ctx)
		return c.runTimer(ctx, store)

	case "settings":
		fs := c.flags("timer settings")
		focus := fs.Duration("focus", 0, "focus length")
		short := fs.Duration("short", 0, "short break length")
		long := fs.Duration("long", 0, "long break length")
		interval := fs.Int("interval", 0, "focus periods before a long break")
		autoBreaks := fs.Bool("auto-breaks", false, "start breaks automatically")
		autoFocus := fs.Bool("auto-focus", false, "start focus periods automatically")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		_ = store.FetchSettings(ctx)

		var patch domain.TimerSettingsPatch
		fs.Visit(func(f *flag.Flag) {
			switch f.Name {
			case "focus":
				patch.FocusTime = seconds(*focus)
			case "short":
				patch.ShortBreakTime = seconds(*short)
			case "long":
				patch.LongBreakTime = seconds(*long)
			case "interval":
				patch.LongBreakInterval = interval
			case "auto-breaks":
				patch.AutoStartBreaks = autoBreaks
			case "auto-focus":
				patch.AutoStartPomodoros = autoFocus
			}
		})
		c.printSettings(store.UpdateSettings(ctx, patch))
		return nil

	case "stats":
		st := store.FetchStats(ctx)
		if msg := store.Error(); msg != "" {
			return fmt.Errorf("%s", msg)
		}
		fmt.Fprintf(c.out, "focus today: %s (%d sessions)\nyesterday: %s\nthis week: %s (%d sessions)\nstreak: %d days\n",
			time.Duration(st.FocusTimeToday)*time.Second, st.CompletedSessionsToday,
			time.Duration(st.FocusTimeYesterday)*time.Second,
			time.Duration(st.FocusTimeThisWeek)*time.Second, st.CompletedSessionsThisWeek,
			st.Streak)
		return nil
	}
	return errUsage
}

// runTimer counts the current period down and returns once it completes or
// ctx is cancelled, pausing the timer in the latter case.
func (c *cli) runTimer(ctx context.Context, store *app.TimerStore) error {
	begin := store.Session()
	fmt.Fprintf(c.out, "%s: %s\n", begin.Phase, clock(begin.TimeRemaining))
	store.Start(ctx)

	poll := time.NewTicker(c.tick)
	defer poll.Stop()
	last := begin.TimeRemaining
	for {
		select {
		case <-ctx.Done():
			store.Pause()
			fmt.Fprintf(c.out, "\npaused at %s\n", clock(store.Session().TimeRemaining))
			return nil
		case <-poll.C:
			s := store.Session()
			if s.Cycle != begin.Cycle {
				fmt.Fprintf(c.out, "\n%s complete, next: %s (%s)\n", begin.Phase, s.Phase, clock(s.TimeRemaining))
				return nil
			}
			if s.TimeRemaining != last {
				last = s.TimeRemaining
				fmt.Fprintf(c.out, "\r%s", clock(last))
			}
		}
	}
}

func (c *cli) printSettings(s domain.TimerSettings) {
	fmt.Fprintf(c.out, "focus: %s, short break: %s, long break: %s every %d\n",
		time.Duration(s.FocusTime)*time.Second,
		time.Duration(s.ShortBreakTime)*time.Second,
		time.Duration(s.LongBreakTime)*time.Second,
		s.LongBreakInterval)
	fmt.Fprintf(c.out, "auto-start breaks: %t, auto-start focus: %t\n", s.AutoStartBreaks, s.AutoStartPomodoros)
}

func seconds(d time.Duration) *int {
	n := int(d / time.Second)
	return &n
}
