package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"calendar/internal/assistant"
	"calendar/internal/calendar"
	"calendar/internal/config"
	"calendar/internal/ics"
	appLog "calendar/internal/log"
)

// flagConfig holds global flags shared by every subcommand.
type flagConfig struct {
	eventsPath string
	server     string
	timeout    time.Duration
}

const usageText = `usage: calctl [flags] <command> [args]

commands:
  month   [-at YYYY-MM] [-shift N]     print the month grid and event list
  add     -date YYYY-MM-DD -title T -hours H -minutes M [-ampm AM|PM] [-course C] [-desc D]
  edit    -id ID -date YYYY-MM-DD ...  replace an event, same flags as add
  remove  -id ID [-yes]                delete an event after confirmation
  extract [-file F] [-yes] [text...]   ask the server to extract events
  usage                                show today's extraction quota
  ics                                  write the events as iCalendar to stdout
`

func main() {
	flags := parseFlags()
	args := flag.Args()
	if len(args) == 0 {
		fmt.Fprint(os.Stderr, usageText)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		appLog.Error("failed to load config", err)
		os.Exit(1)
	}
	appLog.SetLevel(appLog.ParseLevel(cfg.LogLevel))

	store, err := loadEvents(flags.eventsPath)
	if err != nil {
		appLog.Error("failed to load events", err, "path", flags.eventsPath)
		os.Exit(1)
	}

	app := &app{
		store:   store,
		palette: calendar.NewPalette(cfg.Palette),
		client:  assistant.NewClient(flags.server, flags.timeout),
		out:     os.Stdout,
		in:      bufio.NewReader(os.Stdin),
	}

	cmd, rest := args[0], args[1:]
	dirty := false
	switch cmd {
	case "month":
		err = app.month(rest)
	case "add":
		dirty, err = app.add(rest)
	case "edit":
		dirty, err = app.edit(rest)
	case "remove":
		dirty, err = app.remove(rest)
	case "extract":
		dirty, err = app.extract(rest)
	case "usage":
		err = app.usage()
	case "ics":
		_, err = io.WriteString(app.out, ics.Export("Calendar", store.All(), time.Now()))
	default:
		fmt.Fprint(os.Stderr, usageText)
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}

	if dirty {
		if err := saveEvents(flags.eventsPath, store); err != nil {
			appLog.Error("failed to save events", err, "path", flags.eventsPath)
			os.Exit(1)
		}
	}
}

func parseFlags() flagConfig {
	var cfg flagConfig

	flag.StringVar(&cfg.eventsPath, "events", "events.json", "Path to the local event file")
	flag.StringVar(&cfg.server, "server", "http://localhost:5001", "Extraction server base URL")
	flag.DurationVar(&cfg.timeout, "timeout", 60*time.Second, "Timeout for server requests")
	flag.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), usageText, "\nflags:\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	return cfg
}

type app struct {
	store   *calendar.Store
	palette *calendar.Palette
	client  *assistant.Client
	out     io.Writer
	in      *bufio.Reader
}

func (a *app) month(args []string) error {
	fs := flag.NewFlagSet("month", flag.ContinueOnError)
	at := fs.String("at", "", "month to show, YYYY-MM (default current)")
	shift := fs.Int("shift", 0, "months to move forward (negative for back)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	now := time.Now()
	cur := calendar.CursorFor(now)
	if *at != "" {
		t, err := time.ParseInLocation("2006-01", *at, time.Local)
		if err != nil {
			return fmt.Errorf("invalid -at: %w", err)
		}
		cur = calendar.CursorFor(t)
	}
	for ; *shift > 0; *shift-- {
		cur = cur.Next()
	}
	for ; *shift < 0; *shift++ {
		cur = cur.Prev()
	}

	events := a.store.All()
	// colours are assigned in list order so the grid and list agree
	items := calendar.Sidebar(events, a.palette)
	m := calendar.Project(cur, events, a.palette, time.Time{}, now)
	renderMonth(a.out, m)

	fmt.Fprintln(a.out)
	for _, it := range items {
		ev := it.Event
		fmt.Fprintf(a.out, "%s  %-8s  %-20s  %-12s %s  %s\n",
			ev.Date.Format("Mon Jan 02"), ev.Time, ev.Title, ev.CourseName, it.Color, ev.ID)
	}
	return nil
}

func renderMonth(w io.Writer, m calendar.Month) {
	fmt.Fprintf(w, "%s\n", m.Title())
	for _, d := range m.Weekdays {
		fmt.Fprintf(w, " %-4s", d)
	}
	fmt.Fprintln(w)
	for _, row := range m.Rows() {
		for _, c := range row {
			if c.Day == 0 {
				fmt.Fprint(w, "     ")
				continue
			}
			mark := " "
			if c.Today {
				mark = "*"
			}
			fmt.Fprintf(w, "%s%2d%-2s", mark, c.Day, strings.Repeat("•", len(c.Colors)))
		}
		fmt.Fprintln(w)
	}
}

func eventFlags(name string) (*flag.FlagSet, *string, *calendar.Input) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	in := &calendar.Input{}
	date := fs.String("date", "", "day, YYYY-MM-DD")
	fs.StringVar(&in.Title, "title", "", "title (max 20 characters)")
	fs.StringVar(&in.Hours, "hours", "", "hour 1-12")
	fs.StringVar(&in.Minutes, "minutes", "", "minute 0-59")
	fs.StringVar(&in.AMPM, "ampm", "AM", "AM or PM")
	fs.StringVar(&in.CourseName, "course", "", "course or category")
	fs.StringVar(&in.Desc, "desc", "", "description (max 60 characters)")
	return fs, date, in
}

func parseDay(s string) (time.Time, error) {
	t, err := time.ParseInLocation(time.DateOnly, s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid -date: %w", err)
	}
	return t, nil
}

func (a *app) add(args []string) (bool, error) {
	fs, date, in := eventFlags("add")
	if err := fs.Parse(args); err != nil {
		return false, err
	}
	day, err := parseDay(*date)
	if err != nil {
		return false, err
	}

	ed := calendar.NewEditor(a.store)
	if err := ed.Select(day); err != nil {
		return false, err
	}
	ev, err := ed.Create(ed.Selected(), *in)
	if err != nil {
		return false, err
	}
	fmt.Fprintf(a.out, "added %s %s %s\n", ev.ID, ev.Date.Format(time.DateOnly), ev.Time)
	return true, nil
}

func (a *app) edit(args []string) (bool, error) {
	fs, date, in := eventFlags("edit")
	id := fs.String("id", "", "event id")
	if err := fs.Parse(args); err != nil {
		return false, err
	}

	ed := calendar.NewEditor(a.store)
	cur, curDay, ok := ed.Prefill(*id)
	if !ok {
		return false, fmt.Errorf("no event %q", *id)
	}
	// unset flags keep the stored values
	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	merged := cur
	if set["title"] {
		merged.Title = in.Title
	}
	if set["hours"] {
		merged.Hours = in.Hours
	}
	if set["minutes"] {
		merged.Minutes = in.Minutes
	}
	if set["ampm"] {
		merged.AMPM = in.AMPM
	}
	if set["course"] {
		merged.CourseName = in.CourseName
	}
	if set["desc"] {
		merged.Desc = in.Desc
	}
	day := curDay
	if *date != "" {
		d, err := parseDay(*date)
		if err != nil {
			return false, err
		}
		day = d
	}

	return ed.Update(*id, day, merged)
}

func (a *app) remove(args []string) (bool, error) {
	fs := flag.NewFlagSet("remove", flag.ContinueOnError)
	id := fs.String("id", "", "event id")
	yes := fs.Bool("yes", false, "skip the confirmation prompt")
	if err := fs.Parse(args); err != nil {
		return false, err
	}

	ed := calendar.NewEditor(a.store)
	ok := ed.Remove(*id, func(ev calendar.Event) bool {
		return *yes || a.confirm(fmt.Sprintf("Delete %q on %s?", ev.Title, ev.Date.Format(time.DateOnly)))
	})
	if !ok {
		fmt.Fprintln(a.out, "nothing removed")
	}
	return ok, nil
}

func (a *app) extract(args []string) (bool, error) {
	fs := flag.NewFlagSet("extract", flag.ContinueOnError)
	file := fs.String("file", "", "document to upload (.txt or .pdf)")
	yes := fs.Bool("yes", false, "add the extracted events without asking")
	if err := fs.Parse(args); err != nil {
		return false, err
	}

	if err := checkExtractArgs(*file, fs.Args()); err != nil {
		return false, err
	}

	ctx := context.Background()
	s := assistant.NewSession(a.client)

	var err error
	if *file != "" {
		f, ferr := os.Open(*file)
		if ferr != nil {
			return false, ferr
		}
		defer f.Close()
		err = s.Upload(ctx, *file, f)
	} else {
		err = s.Send(ctx, strings.Join(fs.Args(), " "))
	}

	msgs := s.Messages()
	last := msgs[len(msgs)-1]
	fmt.Fprintln(a.out, last.Text)
	if u, ok := s.Usage(); ok {
		fmt.Fprintf(a.out, "(%d of %d requests left today)\n", u.Remaining, u.Limit)
	}
	var qe *assistant.QuotaError
	if errors.As(err, &qe) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	drafts := s.Drafts()
	if len(drafts) == 0 {
		return false, nil
	}
	for i, d := range drafts {
		fmt.Fprintf(a.out, "%d. %s  %s  %s\n", i+1, d.Date, orDash(d.Time), d.Title)
	}

	if !*yes && !a.confirm("Add these events to your calendar?") {
		s.Discard()
		return false, nil
	}
	added, err := s.Confirm(a.store)
	if err != nil {
		return false, err
	}
	fmt.Fprintf(a.out, "%d events added\n", len(added))
	return len(added) > 0, nil
}

var errTextAndFile = errors.New("extract takes either -file or text, not both")

// checkExtractArgs enforces one input source per request.
func checkExtractArgs(file string, text []string) error {
	hasText := strings.TrimSpace(strings.Join(text, " ")) != ""
	switch {
	case file != "" && hasText:
		return errTextAndFile
	case file == "" && !hasText:
		return errors.New("extract needs -file or some text")
	}
	return nil
}

func (a *app) usage() error {
	u, err := a.client.Usage(context.Background())
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "used %d of %d, %d remaining, resets %s\n", u.Used, u.Limit, u.Remaining, u.ResetTime)
	return nil
}

func (a *app) confirm(prompt string) bool {
	fmt.Fprintf(a.out, "%s [y/N] ", prompt)
	line, _ := a.in.ReadString('\n')
	line = strings.ToLower(strings.TrimSpace(line))
	return line == "y" || line == "yes"
}

func orDash(s *string) string {
	if s == nil || *s == "" {
		return "--"
	}
	return *s
}

func loadEvents(path string) (*calendar.Store, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return calendar.NewStore(), nil
	}
	if err != nil {
		return nil, err
	}
	var evs []calendar.Event
	if err := json.Unmarshal(data, &evs); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	for i := range evs {
		evs[i].Date = evs[i].Date.In(time.Local)
	}
	return calendar.NewStore(evs...), nil
}

func saveEvents(path string, store *calendar.Store) error {
	data, err := json.MarshalIndent(store.All(), "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}
