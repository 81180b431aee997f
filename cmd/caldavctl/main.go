// Command caldavctl queries and edits a single CalDAV calendar.
//
//	caldavctl [--config file] get [--date YYYY-MM-DD] [--title T] [--description D] [--limit N]
//	caldavctl [--config file] create <summary> <date> <start HHmm> <end HHmm>
//	caldavctl [--config file] update <url> <summary> <date> <start HHmm> <end HHmm>
//	caldavctl [--config file] delete <uid>
//	caldavctl [--config file] calendars
//
// Settings come from the YAML file and the CALDAV_* environment variables.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/alp54/fastmail-caldav/davclient"
	"github.com/alp54/fastmail-caldav/internal/config"
)

const usage = `usage: caldavctl [--config file] <command> [args]

commands:
  get [--date YYYY-MM-DD] [--title T] [--description D] [--limit N]
  create <summary> <date> <start HHmm> <end HHmm>
  update <url> <summary> <date> <start HHmm> <end HHmm>
  delete <uid>
  calendars
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "caldavctl:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	global := flag.NewFlagSet("caldavctl", flag.ContinueOnError)
	global.SetOutput(stderr)
	global.Usage = func() { fmt.Fprint(stderr, usage) }
	configPath := global.String("config", "", "path to the YAML configuration file")
	if err := global.Parse(args); err != nil {
		return err
	}
	if global.NArg() == 0 {
		global.Usage()
		return fmt.Errorf("missing command")
	}

	cfg, err := config.Load(*configPath, os.LookupEnv)
	if err != nil {
		return err
	}
	client, err := newClient(cfg, stderr)
	if err != nil {
		return err
	}

	cmd, rest := global.Arg(0), global.Args()[1:]
	switch cmd {
	case "get":
		return runGet(ctx, client, rest, stdout, stderr)
	case "create":
		return runCreate(ctx, client, rest, stdout)
	case "update":
		return runUpdate(ctx, client, rest, stdout)
	case "delete":
		return runDelete(ctx, client, rest, stdout)
	case "calendars":
		return runCalendars(ctx, client, stdout)
	default:
		global.Usage()
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func newClient(cfg *config.Config, stderr io.Writer) (davclient.DAVClient, error) {
	level, err := cfg.SlogLevel()
	if err != nil {
		return nil, err
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	return davclient.NewClient(davclient.Config{
		ServerURL:      cfg.URL,
		CalendarPath:   cfg.CalendarPath,
		Username:       cfg.Username,
		Password:       cfg.Password,
		Location:       loc,
		Timeout:        cfg.Timeout,
		Depth:          cfg.Depth,
		MaxOccurrences: cfg.MaxOccurrences,
		Logger:         logger,
	})
}

func runGet(ctx context.Context, client davclient.DAVClient, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("get", flag.ContinueOnError)
	fs.SetOutput(stderr)
	date := fs.String("date", "", "day to query, YYYY-MM-DD")
	title := fs.String("title", "", "summary text to match")
	desc := fs.String("description", "", `description text to match, or "recurring"`)
	limit := fs.Int("limit", 0, "print at most N events, 0 for all")
	if err := fs.Parse(args); err != nil {
		return err
	}

	query := client.GetAllEvents().Limit(*limit)
	if *date != "" {
		query = query.Date(*date)
	}
	if *title != "" {
		query = query.Title(*title)
	}
	if *desc != "" {
		query = query.Description(*desc)
	}
	lines, err := query.JSON(ctx)
	if err != nil {
		return err
	}
	for _, line := range lines {
		fmt.Fprintln(stdout, line)
	}
	return nil
}

func runCreate(ctx context.Context, client davclient.DAVClient, args []string, stdout io.Writer) error {
	if len(args) != 4 {
		return fmt.Errorf("create needs <summary> <date> <start> <end>")
	}
	draft, err := client.NewDraft(args[0], args[1], args[2], args[3])
	if err != nil {
		return err
	}
	resourceURL, err := client.CreateEvent(ctx, draft)
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, resourceURL)
	return nil
}

func runUpdate(ctx context.Context, client davclient.DAVClient, args []string, stdout io.Writer) error {
	if len(args) != 5 {
		return fmt.Errorf("update needs <url> <summary> <date> <start> <end>")
	}
	draft, err := client.NewDraft(args[1], args[2], args[3], args[4])
	if err != nil {
		return err
	}
	if err := client.UpdateEvent(ctx, args[0], draft); err != nil {
		return err
	}
	fmt.Fprintln(stdout, "updated", args[0])
	return nil
}

func runDelete(ctx context.Context, client davclient.DAVClient, args []string, stdout io.Writer) error {
	if len(args) != 1 {
		return fmt.Errorf("delete needs <uid>")
	}
	if err := client.DeleteEvent(ctx, args[0]); err != nil {
		return err
	}
	fmt.Fprintln(stdout, "deleted", args[0])
	return nil
}

func runCalendars(ctx context.Context, client davclient.DAVClient, stdout io.Writer) error {
	calendars, err := client.FindCalendars(ctx)
	if err != nil {
		return err
	}
	for _, cal := range calendars {
		fmt.Fprintf(stdout, "%s\t%s\n", cal.Path, cal.Name)
	}
	return nil
}
