package models

import "time"

// CalendarEvent is a timed entry on the week grid.
type CalendarEvent struct {
	ID        string    `db:"id" json:"id"`
	Title     string    `db:"title" json:"title"`
	Start     time.Time `db:"start_at" json:"start"`
	End       time.Time `db:"end_at" json:"end"`
	Color     string    `db:"color" json:"color"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Duration returns the length of the event.
func (e CalendarEvent) Duration() time.Duration {
	return e.End.Sub(e.Start)
}

// EventDraft is an event that has not been assigned an id yet.
type EventDraft struct {
	Title string    `json:"title"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Color string    `json:"color"`
}

// EventPatch carries the fields of a partial update. Nil fields are left untouched.
type EventPatch struct {
	Title *string    `json:"title,omitempty"`
	Start *time.Time `json:"start,omitempty"`
	End   *time.Time `json:"end,omitempty"`
	Color *string    `json:"color,omitempty"`
}

// Empty reports whether the patch changes nothing.
func (p EventPatch) Empty() bool {
	return p.Title == nil && p.Start == nil && p.End == nil && p.Color == nil
}

// Apply returns a copy of event with the patch fields merged in.
func (p EventPatch) Apply(event CalendarEvent) CalendarEvent {
	if p.Title != nil {
		event.Title = *p.Title
	}
	if p.Start != nil {
		event.Start = *p.Start
	}
	if p.End != nil {
		event.End = *p.End
	}
	if p.Color != nil {
		event.Color = *p.Color
	}
	return event
}

// EventFilter narrows down events. From/To select events overlapping [From, To].
type EventFilter struct {
	From     *time.Time
	To       *time.Time
	Page     int
	PageSize int
}
