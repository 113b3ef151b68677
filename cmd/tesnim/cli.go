package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"tesnim/internal/adapter/apiclient"
	"tesnim/internal/app"
	"tesnim/internal/credentials"
	"tesnim/internal/domain"
)

var (
	errUsage       = errors.New("usage")
	errNotLoggedIn = errors.New("not logged in, run: tesnim login")
)

const usage = `usage: tesnim <command> [flags]

session:
  login      -email -password
  register   -first -last -email -password -captcha
  logout
  whoami
  forgot     -email
  reset      -token -password
  verify     -token

tasks:
  tasks list [-filter all|today|upcoming|completed|overdue|high]
  tasks add  -title [-desc] [-due] [-priority low|medium|high]
  tasks done <id>
  tasks rm   <id>
  tasks stats

events:
  events list [-view day|week|month] [-date YYYY-MM-DD] [-upcoming]
  events add  -title -start [-end] [-location] [-all-day]
  events rm   <id>
  events sync

todos:
  todos list   [-status] [-priority] [-tag] [-due YYYY-MM-DD]
  todos add    -text [-priority] [-tags a,b] [-due]
  todos toggle <id>
  todos rm     <id>

timer:
  timer start
  timer settings [-focus 25m] [-short 5m] [-long 15m] [-interval 4] [-auto-breaks] [-auto-focus]
  timer stats
`

// cli runs one command against the backend, persisting client state in kv.
type cli struct {
	out     io.Writer
	creds   *credentials.Store
	api     *apiclient.Client
	session *app.SessionManager
	now     func() time.Time
	tick    time.Duration
}

func newCLI(out io.Writer, kv domain.KVStore, baseURL string, timeout time.Duration) *cli {
	creds := credentials.New(kv)
	c := &cli{out: out, creds: creds, now: time.Now, tick: time.Second}
	c.api = apiclient.New(baseURL, creds,
		apiclient.WithTimeout(timeout),
		apiclient.WithUserAgent("tesnim-cli"),
		apiclient.WithSessionExpiredHandler(func() {
			fmt.Fprintln(out, app.MsgSessionExpired)
		}),
	)
	c.session = app.NewSessionManager(c.api, creds)
	return c
}

func (c *cli) run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	_ = c.session.Restore(ctx)

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "login":
		return c.login(ctx, rest)
	case "register":
		return c.register(ctx, rest)
	case "logout":
		c.session.Logout(ctx)
		fmt.Fprintln(c.out, "Logged out.")
		return nil
	case "whoami":
		return c.whoami(ctx)
	case "forgot":
		return c.forgot(ctx, rest)
	case "reset":
		return c.reset(ctx, rest)
	case "verify":
		return c.verify(ctx, rest)
	case "tasks":
		return c.authed(ctx, func() error { return c.tasks(ctx, rest) })
	case "events":
		return c.authed(ctx, func() error { return c.events(ctx, rest) })
	case "todos":
		return c.authed(ctx, func() error { return c.todos(ctx, rest) })
	case "timer":
		return c.authed(ctx, func() error { return c.timer(ctx, rest) })
	case "help", "-h", "--help":
		fmt.Fprint(c.out, usage)
		return nil
	}
	return errUsage
}

// authed runs fn once the stored session checks out, refreshing it if the
// access token has expired.
func (c *cli) authed(ctx context.Context, fn func() error) error {
	if !c.session.CheckAuth(ctx) {
		return errNotLoggedIn
	}
	return fn()
}

// sessionErr prefers the message the session manager recorded.
func (c *cli) sessionErr(err error) error {
	if msg := c.session.State().Error; msg != "" {
		return errors.New(msg)
	}
	return err
}

func (c *cli) flags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(c.out)
	return fs
}

// subcommand splits args into a verb and its arguments, defaulting to def.
func subcommand(args []string, def string) (string, []string) {
	if len(args) == 0 || strings.HasPrefix(args[0], "-") {
		return def, args
	}
	return args[0], args[1:]
}

// argID returns the single positional id of args.
func argID(args []string) (string, error) {
	if len(args) != 1 || args[0] == "" {
		return "", fmt.Errorf("%w: expected one id", errUsage)
	}
	return args[0], nil
}

// parseWhen accepts RFC 3339, "2006-01-02 15:04" or "2006-01-02" in local time.
func parseWhen(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	for _, layout := range []string{"2006-01-02 15:04", "2006-01-02"} {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid time %q", s)
}

func optionalTime(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := parseWhen(s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func table(out io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
}

func formatDay(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Local().Format("2006-01-02")
}

func clock(seconds int) string {
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
