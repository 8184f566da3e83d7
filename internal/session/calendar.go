// Package session owns the client-side calendar state: the loaded events and
// the week being shown. Writes go through the event store first and the
// in-memory collection only changes once the store has confirmed them.
package session

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/weekcal-api/internal/calendar"
	"github.com/noah-isme/weekcal-api/internal/models"
)

// Store persists events. *eventstore.Client satisfies it.
type Store interface {
	List(ctx context.Context) ([]models.CalendarEvent, error)
	Create(ctx context.Context, draft models.EventDraft) (*models.CalendarEvent, error)
	Update(ctx context.Context, id string, patch models.EventPatch) (*models.CalendarEvent, error)
	Delete(ctx context.Context, id string) error
}

// Change names what caused a snapshot.
type Change string

const (
	ChangeLoad     Change = "load"
	ChangeAdd      Change = "add"
	ChangeUpdate   Change = "update"
	ChangeDelete   Change = "delete"
	ChangeNavigate Change = "navigate"
)

// Snapshot is the state handed to observers. Events is a copy.
type Snapshot struct {
	Change Change
	Week   calendar.WeekInfo
	Events []models.CalendarEvent
}

// Observer receives a snapshot after every state change.
type Observer func(Snapshot)

type subscription struct {
	id int
	fn Observer
}

// Calendar is the state owner shared by the views of one user.
type Calendar struct {
	store   Store
	logger  *zap.Logger
	loc     *time.Location
	now     func() time.Time
	palette []string

	mu        sync.RWMutex
	events    []models.CalendarEvent
	week      calendar.WeekInfo
	observers []subscription
	nextID    int
}

// Option configures a Calendar.
type Option func(*Calendar)

// WithLogger sets the logger used for store failures.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Calendar) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithLocation sets the zone events are displayed in.
func WithLocation(loc *time.Location) Option {
	return func(c *Calendar) {
		if loc != nil {
			c.loc = loc
		}
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Calendar) {
		if now != nil {
			c.now = now
		}
	}
}

// WithPalette sets the colors assigned to events created from the form.
func WithPalette(palette []string) Option {
	return func(c *Calendar) {
		if len(palette) > 0 {
			c.palette = palette
		}
	}
}

// New creates a calendar showing the current week with no events loaded.
func New(store Store, opts ...Option) *Calendar {
	c := &Calendar{
		store:   store,
		logger:  zap.NewNop(),
		loc:     time.Local,
		now:     time.Now,
		palette: calendar.Palette,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.week = calendar.NewWeekInfo(c.today())
	return c
}

func (c *Calendar) today() time.Time {
	return c.now().In(c.loc)
}

// Subscribe registers fn and returns a func that removes it. Observers run
// synchronously, in subscription order, after the lock is released.
func (c *Calendar) Subscribe(fn Observer) func() {
	c.mu.Lock()
	c.nextID++
	id := c.nextID
	c.observers = append(c.observers, subscription{id: id, fn: fn})
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			for i, sub := range c.observers {
				if sub.id == id {
					c.observers = append(c.observers[:i:i], c.observers[i+1:]...)
					return
				}
			}
		})
	}
}

// CurrentWeek returns the week being shown.
func (c *Calendar) CurrentWeek() calendar.WeekInfo {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.week
}

// NextWeek moves to the following week.
func (c *Calendar) NextWeek() calendar.WeekInfo {
	return c.navigate(func(w calendar.WeekInfo) calendar.WeekInfo { return w.Next() })
}

// PrevWeek moves to the preceding week.
func (c *Calendar) PrevWeek() calendar.WeekInfo {
	return c.navigate(func(w calendar.WeekInfo) calendar.WeekInfo { return w.Prev() })
}

// Today moves to the week containing the current day.
func (c *Calendar) Today() calendar.WeekInfo {
	today := c.today()
	return c.navigate(func(calendar.WeekInfo) calendar.WeekInfo { return calendar.NewWeekInfo(today) })
}

// GoTo moves to the week containing date.
func (c *Calendar) GoTo(date time.Time) calendar.WeekInfo {
	date = date.In(c.loc)
	return c.navigate(func(calendar.WeekInfo) calendar.WeekInfo { return calendar.NewWeekInfo(date) })
}

func (c *Calendar) navigate(next func(calendar.WeekInfo) calendar.WeekInfo) calendar.WeekInfo {
	c.mu.Lock()
	c.week = next(c.week)
	week := c.week
	c.mu.Unlock()
	c.notify(ChangeNavigate)
	return week
}

// Events returns a copy of the loaded events.
func (c *Calendar) Events() []models.CalendarEvent {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return cloneEvents(c.events)
}

// EventsForWeek returns the events starting inside week, ordered by start.
func (c *Calendar) EventsForWeek(week calendar.WeekInfo) []models.CalendarEvent {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return calendar.SortByStart(calendar.EventsInWeek(c.events, week))
}

// EventsForDay returns the events on the day of date, ordered by start.
func (c *Calendar) EventsForDay(date time.Time) []models.CalendarEvent {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return calendar.EventsForDay(c.events, date.In(c.loc))
}

// Upcoming returns up to limit events from the start of today on.
func (c *Calendar) Upcoming(limit int) []models.CalendarEvent {
	today := c.today()
	c.mu.RLock()
	defer c.mu.RUnlock()
	return calendar.Upcoming(c.events, today, limit)
}

// Load replaces the collection with the events held by the store.
func (c *Calendar) Load(ctx context.Context) error {
	events, err := c.store.List(ctx)
	if err != nil {
		return c.storeFailure("load", "", err)
	}
	localized := make([]models.CalendarEvent, len(events))
	for i, event := range events {
		localized[i] = c.localize(event)
	}

	c.mu.Lock()
	c.events = localized
	c.mu.Unlock()
	c.notify(ChangeLoad)
	return nil
}

// Add creates draft in the store and appends the stored event.
func (c *Calendar) Add(ctx context.Context, draft models.EventDraft) (*models.CalendarEvent, error) {
	draft.Title = strings.TrimSpace(draft.Title)
	if draft.Title == "" {
		return nil, &calendar.ValidationError{Field: "title", Message: calendar.MsgTitleRequired}
	}
	if !draft.End.After(draft.Start) {
		return nil, &calendar.ValidationError{Field: "end_time", Message: calendar.MsgEndBeforeStart}
	}

	created, err := c.store.Create(ctx, draft)
	if err != nil {
		return nil, c.storeFailure("add", "", err)
	}
	event := c.localize(*created)

	c.mu.Lock()
	c.events = append(c.events, event)
	c.mu.Unlock()
	c.notify(ChangeAdd)
	return &event, nil
}

// AddFromForm validates form input, builds the event on form.Date with a
// palette color and adds it.
func (c *Calendar) AddFromForm(ctx context.Context, form calendar.EventFormData) (*models.CalendarEvent, error) {
	form, err := calendar.ValidateForm(form)
	if err != nil {
		return nil, err
	}
	form.Date = form.Date.In(c.loc)
	draft, err := calendar.BuildEvent(form, calendar.PickColor(nil, c.palette))
	if err != nil {
		return nil, err
	}
	return c.Add(ctx, draft)
}

// Update applies patch in the store and replaces the local copy with the
// stored record.
func (c *Calendar) Update(ctx context.Context, id string, patch models.EventPatch) (*models.CalendarEvent, error) {
	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		return nil, &calendar.ValidationError{Field: "title", Message: calendar.MsgTitleRequired}
	}

	updated, err := c.store.Update(ctx, id, patch)
	if err != nil {
		return nil, c.storeFailure("update", id, err)
	}
	event := c.localize(*updated)

	c.mu.Lock()
	replaced := false
	for i := range c.events {
		if c.events[i].ID == id {
			c.events[i] = event
			replaced = true
			break
		}
	}
	if !replaced {
		c.events = append(c.events, event)
	}
	c.mu.Unlock()
	c.notify(ChangeUpdate)
	return &event, nil
}

// Delete removes the event from the store and then from the collection.
func (c *Calendar) Delete(ctx context.Context, id string) error {
	if err := c.store.Delete(ctx, id); err != nil {
		return c.storeFailure("delete", id, err)
	}

	c.mu.Lock()
	kept := c.events[:0:0]
	for _, event := range c.events {
		if event.ID != id {
			kept = append(kept, event)
		}
	}
	c.events = kept
	c.mu.Unlock()
	c.notify(ChangeDelete)
	return nil
}

// Snapshot returns the current state.
func (c *Calendar) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Snapshot{Week: c.week, Events: cloneEvents(c.events)}
}

func (c *Calendar) notify(change Change) {
	c.mu.RLock()
	snapshot := Snapshot{Change: change, Week: c.week, Events: cloneEvents(c.events)}
	observers := make([]Observer, len(c.observers))
	for i, sub := range c.observers {
		observers[i] = sub.fn
	}
	c.mu.RUnlock()

	for _, fn := range observers {
		fn(snapshot)
	}
}

func (c *Calendar) storeFailure(op, id string, err error) error {
	c.logger.Error("event store operation failed",
		zap.String("op", op),
		zap.String("event_id", id),
		zap.Error(err),
	)
	return err
}

func (c *Calendar) localize(event models.CalendarEvent) models.CalendarEvent {
	event.Start = event.Start.In(c.loc)
	event.End = event.End.In(c.loc)
	return event
}

func cloneEvents(events []models.CalendarEvent) []models.CalendarEvent {
	out := make([]models.CalendarEvent, len(events))
	copy(out, events)
	return out
}
