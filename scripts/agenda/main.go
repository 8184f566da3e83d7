package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/noah-isme/weekcal-api/internal/calendar"
	"github.com/noah-isme/weekcal-api/internal/models"
	"github.com/noah-isme/weekcal-api/internal/session"
	"github.com/noah-isme/weekcal-api/pkg/eventstore"
)

type options struct {
	base     string
	token    string
	date     string
	timezone string
	timeout  time.Duration
	upcoming int

	add    string
	day    string
	start  string
	end    string
	color  string
	remove string
}

func main() {
	var opts options
	flag.StringVar(&opts.base, "base", "http://localhost:5000", "Event store base URL")
	flag.StringVar(&opts.token, "token", os.Getenv("WEEKCAL_TOKEN"), "Bearer token for writes")
	flag.StringVar(&opts.date, "date", "", "Any day of the week to show (YYYY-MM-DD), defaults to today")
	flag.StringVar(&opts.timezone, "tz", "Local", "Display timezone")
	flag.DurationVar(&opts.timeout, "timeout", 5*time.Second, "HTTP client timeout")
	flag.IntVar(&opts.upcoming, "upcoming", 0, "Also list the next N events")
	flag.StringVar(&opts.add, "add", "", "Create an event with this title")
	flag.StringVar(&opts.day, "day", "", "Day of the new event (YYYY-MM-DD), defaults to -date")
	flag.StringVar(&opts.start, "start", "", "Start time of the new event (HH:mm)")
	flag.StringVar(&opts.end, "end", "", "End time of the new event (HH:mm)")
	flag.StringVar(&opts.color, "color", "", "Color of the new event, random when empty")
	flag.StringVar(&opts.remove, "delete", "", "Delete the event with this id")
	flag.Parse()

	if err := run(context.Background(), opts, os.Stdout); err != nil {
		log.Fatalf("agenda: %v", err)
	}
}

func run(ctx context.Context, opts options, out io.Writer) error {
	loc, err := loadLocation(opts.timezone)
	if err != nil {
		return err
	}
	client, err := eventstore.New(opts.base,
		eventstore.WithHTTPClient(&http.Client{Timeout: opts.timeout}),
		eventstore.WithToken(opts.token),
	)
	if err != nil {
		return err
	}

	cal := session.New(client, session.WithLocation(loc))
	if err := cal.Load(ctx); err != nil {
		return err
	}
	if opts.date != "" {
		d, err := time.ParseInLocation("2006-01-02", opts.date, loc)
		if err != nil {
			return fmt.Errorf("invalid -date %q", opts.date)
		}
		cal.GoTo(d)
	}

	if opts.add != "" {
		event, err := addEvent(ctx, cal, opts, loc)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Created %s: %s (%s)\n\n", event.ID, event.Title, calendar.FormatEventTime(*event))
		cal.GoTo(event.Start)
	}
	if opts.remove != "" {
		if err := cal.Delete(ctx, opts.remove); err != nil {
			return err
		}
		fmt.Fprintf(out, "Deleted %s\n\n", opts.remove)
	}

	week := cal.CurrentWeek()
	renderWeek(out, week, cal.EventsForWeek(week))
	if opts.upcoming > 0 {
		fmt.Fprintln(out)
		renderUpcoming(out, cal.Upcoming(opts.upcoming))
	}
	return nil
}

func addEvent(ctx context.Context, cal *session.Calendar, opts options, loc *time.Location) (*models.CalendarEvent, error) {
	day := opts.day
	if day == "" {
		day = opts.date
	}
	date := time.Now().In(loc)
	if day != "" {
		d, err := time.ParseInLocation("2006-01-02", day, loc)
		if err != nil {
			return nil, fmt.Errorf("invalid -day %q", day)
		}
		date = d
	}
	form := calendar.EventFormData{Title: opts.add, Date: date, StartTime: opts.start, EndTime: opts.end}
	if opts.color == "" {
		return cal.AddFromForm(ctx, form)
	}
	form, err := calendar.ValidateForm(form)
	if err != nil {
		return nil, err
	}
	draft, err := calendar.BuildEvent(form, opts.color)
	if err != nil {
		return nil, err
	}
	return cal.Add(ctx, draft)
}

func loadLocation(name string) (*time.Location, error) {
	if name == "" || name == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, errors.New("unknown timezone " + name)
	}
	return loc, nil
}

func renderWeek(out io.Writer, week calendar.WeekInfo, events []models.CalendarEvent) {
	fmt.Fprintf(out, "Week %d, %d\n", week.WeekNumber, week.Year)
	fmt.Fprintln(out, "==============")
	for _, day := range week.Days {
		fmt.Fprintf(out, "%s %s\n", calendar.FormatDayHeader(day), day.Format("2006-01-02"))
		dayEvents := calendar.EventsForDay(events, day)
		if len(dayEvents) == 0 {
			fmt.Fprintln(out, "  -")
			continue
		}
		for _, event := range dayEvents {
			fmt.Fprintf(out, "  %-21s %s [%s]\n", calendar.FormatEventTime(event), event.Title, event.ID)
		}
	}
}

func renderUpcoming(out io.Writer, events []models.CalendarEvent) {
	fmt.Fprintln(out, "Upcoming")
	fmt.Fprintln(out, "========")
	if len(events) == 0 {
		fmt.Fprintln(out, "  nothing scheduled")
		return
	}
	for _, event := range events {
		fmt.Fprintf(out, "  %s %-21s %s\n", event.Start.Format("2006-01-02"), calendar.FormatEventTime(event), event.Title)
	}
}
