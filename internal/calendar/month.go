package calendar

import "time"

// DayColumn is the header of one grid column.
type DayColumn struct {
	Date      time.Time `json:"date"`
	DayName   string    `json:"day_name"`
	DayNumber int       `json:"day_number"`
	IsToday   bool      `json:"is_today"`
}

// DayColumns builds the seven column headers of week relative to now.
func DayColumns(week WeekInfo, now time.Time) []DayColumn {
	columns := make([]DayColumn, len(week.Days))
	for i, day := range week.Days {
		columns[i] = DayColumn{
			Date:      day,
			DayName:   DayName(day),
			DayNumber: day.Day(),
			IsToday:   IsTodayAt(day, now),
		}
	}
	return columns
}

// MonthCell is one day of the mini calendar.
type MonthCell struct {
	Date    time.Time `json:"date"`
	Day     int       `json:"day"`
	InMonth bool      `json:"in_month"`
}

// MonthGrid lays out the month of d as Monday-first rows of seven days,
// padded with days of the adjacent months.
func MonthGrid(d time.Time) []MonthCell {
	y, m, _ := d.Date()
	first := time.Date(y, m, 1, 0, 0, 0, 0, d.Location())
	lead := MondayIndex(first.Weekday())
	daysInMonth := time.Date(y, m+1, 0, 0, 0, 0, 0, d.Location()).Day()
	total := (daysInMonth + lead + DaysPerWeek - 1) / DaysPerWeek * DaysPerWeek

	cells := make([]MonthCell, total)
	for i := range cells {
		day := time.Date(y, m, 1-lead+i, 0, 0, 0, 0, d.Location())
		cells[i] = MonthCell{Date: day, Day: day.Day(), InMonth: day.Month() == m}
	}
	return cells
}
