package engine

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/sammaes/SiouxBelgiumParser/internal/config"
)

// MonthNameTable resolves month names of one locale. It is passed explicitly to
// every parsing function, so no process-wide locale is ever switched.
type MonthNameTable struct {
	Tag    language.Tag
	long   [12]string
	lookup map[string]time.Month
}

var fold = cases.Fold()

// NewMonthNameTable builds a table from the full month names plus any extra
// spellings (abbreviations). Every name is matched case-insensitively.
func NewMonthNameTable(tag language.Tag, long [12]string, abbrev map[string]time.Month) *MonthNameTable {
	t := &MonthNameTable{Tag: tag, long: long, lookup: make(map[string]time.Month)}
	for i, name := range long {
		month := time.Month(i + 1)
		t.lookup[fold.String(name)] = month
		// The three-letter prefix is the common abbreviation in both locales.
		t.lookup[fold.String(string([]rune(name)[:3]))] = month
	}
	for name, month := range abbrev {
		t.lookup[fold.String(name)] = month
	}
	return t
}

// Month resolves a (possibly abbreviated) month name.
func (t *MonthNameTable) Month(name string) (time.Month, bool) {
	m, ok := t.lookup[fold.String(strings.TrimSuffix(strings.TrimSpace(name), "."))]
	return m, ok
}

// LongName returns the full month name in this locale.
func (t *MonthNameTable) LongName(m time.Month) string {
	return t.long[m-1]
}

// FormatLong renders d as "02 January 2006" with localized month names.
func (t *MonthNameTable) FormatLong(d Date) string {
	return fmt.Sprintf("%02d %s %d", d.Day, t.LongName(d.Month), d.Year)
}

// Dutch is the portal locale (nl-BE).
var Dutch = NewMonthNameTable(language.MustParse("nl-BE"),
	[12]string{"januari", "februari", "maart", "april", "mei", "juni",
		"juli", "augustus", "september", "oktober", "november", "december"},
	map[string]time.Month{"mrt": time.March, "sept": time.September},
)

// English is the fallback for browsers that receive swapped English dates.
var English = NewMonthNameTable(language.MustParse("en-US"),
	[12]string{"January", "February", "March", "April", "May", "June",
		"July", "August", "September", "October", "November", "December"},
	map[string]time.Month{"sept": time.September},
)

var (
	tables  = []*MonthNameTable{Dutch, English}
	matcher = language.NewMatcher([]language.Tag{Dutch.Tag, English.Tag})
)

// TableFor returns the month table best matching a BCP 47 locale such as
// "nl-BE", "nl_BE" or "en".
func TableFor(locale string) (*MonthNameTable, error) {
	tag, err := language.Parse(strings.ReplaceAll(locale, "_", "-"))
	if err != nil {
		return nil, fmt.Errorf("%w: locale %q: %w", config.ErrConfig, locale, err)
	}
	_, idx, conf := matcher.Match(tag)
	if conf == language.No {
		return nil, fmt.Errorf("%w: unsupported locale %q", config.ErrConfig, locale)
	}
	return tables[idx], nil
}
