package engine

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/sammaes/SiouxBelgiumParser/internal/config"
)

// EventRecord is one event of the overview page. Records are built once per
// page and never mutated by filters.
type EventRecord struct {
	// Dates is nil when the date cell could not be parsed; filtering such a
	// record fails with ErrMissingDate.
	Dates    *DateRange `json:"dates"`
	Title    string     `json:"title"`
	Location string     `json:"location"`
	Category string     `json:"category"`
	URL      string     `json:"url"`
}

// DisplayDate renders the event dates for menus, empty when unknown.
func (e EventRecord) DisplayDate() string {
	if e.Dates == nil {
		return ""
	}
	return e.Dates.Display()
}

// Role is the relation of a birthday entry to the company.
type Role string

const (
	RoleColleague Role = "colleague"
	RoleChild     Role = "child"
	RolePartner   Role = "partner"
	RoleOther     Role = "other"
)

// RelativeTime places a birthday relative to today within the current year.
type RelativeTime string

const (
	RelToday  RelativeTime = "today"
	RelFuture RelativeTime = "future"
	RelPast   RelativeTime = "past"
)

// Age is a person's age in years, or unknown.
type Age struct {
	Years int
	Known bool
}

// KnownAge returns a known age.
func KnownAge(years int) *Age {
	return &Age{Years: years, Known: true}
}

// UnknownAge returns the "unknown" sentinel.
func UnknownAge() *Age {
	return &Age{}
}

func (a Age) String() string {
	if !a.Known {
		return config.FallbackAgeUnknown
	}
	return strconv.Itoa(a.Years)
}

// MarshalJSON encodes a number, or the string "unknown".
func (a Age) MarshalJSON() ([]byte, error) {
	if !a.Known {
		return json.Marshal(config.FallbackAgeUnknown)
	}
	return json.Marshal(a.Years)
}

// UnmarshalJSON accepts a non-negative number or "unknown".
func (a *Age) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		if s != config.FallbackAgeUnknown {
			return fmt.Errorf("invalid age %q", s)
		}
		*a = Age{}
		return nil
	}
	var n int
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("invalid age %s: %w", b, err)
	}
	if n < 0 {
		return fmt.Errorf("invalid age %d", n)
	}
	*a = Age{Years: n, Known: true}
	return nil
}

// BirthdayRecord is one entry of the birthday page. RelativeTime is derived
// once from the page structure and never recomputed.
type BirthdayRecord struct {
	Name         string       `json:"name"`
	Date         Date         `json:"date"`
	Role         Role         `json:"role"`
	RelativeTime RelativeTime `json:"relative_time"`
	URL          string       `json:"url,omitempty"`
	Age          *Age         `json:"age,omitempty"`
}

// DisplayDate renders the birthday as 02/01/2006.
func (b BirthdayRecord) DisplayDate() string {
	return b.Date.Format(config.DateFormatDisplay)
}
