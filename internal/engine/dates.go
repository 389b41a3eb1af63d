package engine

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/sammaes/SiouxBelgiumParser/internal/config"
)

// Date is a calendar date without time of day or zone.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// NewDate builds a Date, normalising overflowing values the way time.Date does.
func NewDate(year int, month time.Month, day int) Date {
	return DateOf(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// DateOf returns the calendar date of t in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// Today returns the current calendar date of the clock.
func Today(c Clock) Date {
	return DateOf(c.Now())
}

// ParseDate reads an ISO-8601 calendar date (2006-01-02).
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(config.DateFormatISO, s)
	if err != nil {
		return Date{}, fmt.Errorf("%s %q: %w", config.ErrDateParse, s, err)
	}
	return DateOf(t), nil
}

// valid reports whether year/month/day name an existing day.
func valid(year int, month time.Month, day int) bool {
	d := NewDate(year, month, day)
	return d.Year == year && d.Month == month && d.Day == day
}

// Time returns midnight UTC of d.
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// In returns midnight of d in loc.
func (d Date) In(loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

// IsZero reports whether d is the zero Date.
func (d Date) IsZero() bool {
	return d == Date{}
}

// Compare returns -1, 0 or +1.
func (d Date) Compare(o Date) int {
	switch {
	case d.Year != o.Year:
		return cmpInt(d.Year, o.Year)
	case d.Month != o.Month:
		return cmpInt(int(d.Month), int(o.Month))
	default:
		return cmpInt(d.Day, o.Day)
	}
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func (d Date) Before(o Date) bool { return d.Compare(o) < 0 }
func (d Date) After(o Date) bool  { return d.Compare(o) > 0 }
func (d Date) Equal(o Date) bool  { return d == o }

// AddDays returns d shifted by n days.
func (d Date) AddDays(n int) Date {
	return NewDate(d.Year, d.Month, d.Day+n)
}

// Format formats d with a time layout.
func (d Date) Format(layout string) string {
	return d.Time().Format(layout)
}

func (d Date) String() string {
	return d.Format(config.DateFormatISO)
}

// MarshalText encodes d as 2006-01-02.
func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText decodes 2006-01-02.
func (d *Date) UnmarshalText(b []byte) error {
	parsed, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// DateRange is the span of an event. Start == End marks a single-day event.
type DateRange struct {
	Start Date `json:"start"`
	End   Date `json:"end"`
}

// NewDateRange builds a range from the dates found in a date cell:
// one date gives a single-day range, two give start and end.
func NewDateRange(dates []Date) (*DateRange, error) {
	switch len(dates) {
	case 0:
		return nil, ErrMissingDate
	case 1:
		return &DateRange{Start: dates[0], End: dates[0]}, nil
	case 2:
	default:
		return nil, fmt.Errorf("%w: date cell holds %d dates", ErrExtraction, len(dates))
	}
	r := &DateRange{Start: dates[0], End: dates[1]}
	if r.End.Before(r.Start) {
		return nil, fmt.Errorf("%w: range ends before it starts (%s, %s)", ErrExtraction, r.Start, r.End)
	}
	return r, nil
}

// IsMultiDay reports whether the range spans more than one day.
func (r DateRange) IsMultiDay() bool {
	return r.Start != r.End
}

// Contains reports whether d lies within the range, bounds included.
func (r DateRange) Contains(d Date) bool {
	return !d.Before(r.Start) && !d.After(r.End)
}

// Display renders the range as 02/01/2006 or 02/01/2006 - 02/01/2006.
func (r DateRange) Display() string {
	if !r.IsMultiDay() {
		return r.Start.Format(config.DateFormatDisplay)
	}
	return r.Start.Format(config.DateFormatDisplay) + config.DateRangeSep + r.End.Format(config.DateFormatDisplay)
}

var (
	eventDateRe = regexp.MustCompile(config.PatternEventDate)
	bdayGroupRe = regexp.MustCompile(config.PatternBdayGroup)
	dayMonthRe  = regexp.MustCompile(config.PatternDayMonth)
	monthDayRe  = regexp.MustCompile(config.PatternMonthDay)
	longDateRe  = regexp.MustCompile(config.PatternLongDate)
)

// ExtractDates returns every `DD Mon 'YY` date in text, left to right.
// A token whose month is not in table, or that names a non-existing day,
// fails the whole text with ErrInvalidDate.
func ExtractDates(text string, table *MonthNameTable) ([]Date, error) {
	var dates []Date
	for _, m := range eventDateRe.FindAllStringSubmatch(text, -1) {
		month, ok := table.Month(m[2])
		if !ok {
			return nil, fmt.Errorf("%w: unknown month in %q", ErrInvalidDate, m[0])
		}
		day, _ := strconv.Atoi(m[1])
		yy, _ := strconv.Atoi(m[3])
		year := config.TwoDigitYearBase + yy
		if !valid(year, month, day) {
			return nil, fmt.Errorf("%w: no such day %q", ErrInvalidDate, m[0])
		}
		dates = append(dates, Date{Year: year, Month: month, Day: day})
	}
	if len(dates) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrNoDateFound, text)
	}
	return dates, nil
}

// ParseBirthdayDate reads the parenthesised date of a birthday entry, e.g.
// "Jan Peeters (14 mei)". Some browsers receive the swapped "(May 14)"; when the
// group does not start with a digit it is read as Mon DD with the fallback table.
// Feb 29 in a non-leap year becomes Mar 1.
func ParseBirthdayDate(text string, primary, fallback *MonthNameTable, year int) (Date, error) {
	g := bdayGroupRe.FindStringSubmatch(text)
	if g == nil {
		return Date{}, fmt.Errorf("%w: %q", ErrNoDateFound, text)
	}
	group := strings.TrimSpace(g[1])
	if group == "" {
		return Date{}, fmt.Errorf("%w: %q", ErrNoDateFound, text)
	}

	var dayText, monthText string
	table := primary
	if isDigit(group[0]) {
		m := dayMonthRe.FindStringSubmatch(group)
		if m == nil {
			return Date{}, fmt.Errorf("%w: %q", ErrNoDateFound, group)
		}
		dayText, monthText = m[1], m[2]
	} else {
		m := monthDayRe.FindStringSubmatch(group)
		if m == nil {
			return Date{}, fmt.Errorf("%w: %q", ErrNoDateFound, group)
		}
		monthText, dayText = m[1], m[2]
		table = fallback
	}

	month, ok := table.Month(monthText)
	if !ok {
		return Date{}, fmt.Errorf("%w: unknown month %q for %s", ErrNoDateFound, monthText, table.Tag)
	}
	day, _ := strconv.Atoi(dayText)
	if !valid(config.DefaultLeapYear, month, day) {
		return Date{}, fmt.Errorf("%w: no such day %q", ErrNoDateFound, group)
	}
	return NewDate(year, month, day), nil
}

// ParseLongDate reads a full date of birth: 02/01/2006, 02-01-2006 or DD Month YYYY.
func ParseLongDate(text string, table *MonthNameTable) (Date, error) {
	text = CleanText(text)
	for _, layout := range []string{config.DateFormatDisplay, config.DateFormatDashed, config.DateFormatISO} {
		if t, err := time.Parse(layout, text); err == nil {
			return DateOf(t), nil
		}
	}
	if m := longDateRe.FindStringSubmatch(text); m != nil {
		if month, ok := table.Month(m[2]); ok {
			day, _ := strconv.Atoi(m[1])
			year, _ := strconv.Atoi(m[3])
			if valid(year, month, day) {
				return Date{Year: year, Month: month, Day: day}, nil
			}
		}
	}
	return Date{}, fmt.Errorf("%w: %q", ErrNoDateFound, text)
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}
