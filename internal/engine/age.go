package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/emersion/go-vcard"

	"github.com/sammaes/SiouxBelgiumParser/internal/config"
)

// AgeLookup returns the age (completed years on day today) of a birthday entry.
type AgeLookup interface {
	Age(ctx context.Context, rec BirthdayRecord, today Date) (int, error)
}

// completedYears counts the birthdays of dob that occurred up to and including today.
func completedYears(dob, today Date) int {
	years := today.Year - dob.Year
	if today.Month < dob.Month || (today.Month == dob.Month && today.Day < dob.Day) {
		years--
	}
	return years
}

// PortalAgeLookup reads the date of birth from the person's detail page.
type PortalAgeLookup struct {
	Fetcher  PageFetcher
	Locators config.DetailLocators
	Table    *MonthNameTable
}

// Age implements AgeLookup.
func (l *PortalAgeLookup) Age(ctx context.Context, rec BirthdayRecord, today Date) (int, error) {
	if rec.URL == "" {
		return 0, fmt.Errorf("%w: no detail page for %q", ErrMissingLink, rec.Name)
	}

	slog.Debug(config.MsgAgeLookup,
		config.LogKeyComponent, config.CompEngine,
		config.LogKeyName, rec.Name)

	markup, err := fetchString(ctx, l.Fetcher, rec.URL)
	if err != nil {
		return 0, err
	}
	doc, err := parseDocument(markup)
	if err != nil {
		return 0, err
	}

	dob, err := l.dateOfBirth(doc)
	if err != nil {
		return 0, fmt.Errorf("%q: %w", rec.Name, err)
	}
	return completedYears(dob, today), nil
}

// dateOfBirth scans the record rows of the first details table for the first
// date cell that parses.
func (l *PortalAgeLookup) dateOfBirth(doc *goquery.Document) (Date, error) {
	table := doc.Find(l.Locators.Table.Selector()).First()
	if table.Length() == 0 {
		return Date{}, fmt.Errorf("%w: no node matches %s", ErrExtraction, l.Locators.Table.Selector())
	}

	var dob Date
	found := false
	table.Find(l.Locators.Record.Selector()).EachWithBreak(func(_ int, row *goquery.Selection) bool {
		row.Find(l.Locators.Date.Selector()).EachWithBreak(func(_ int, cell *goquery.Selection) bool {
			if d, err := ParseLongDate(cell.Text(), l.Table); err == nil {
				dob, found = d, true
			}
			return !found
		})
		return !found
	})
	if !found {
		return Date{}, fmt.Errorf("%w: no date of birth on detail page", ErrNoDateFound)
	}
	return dob, nil
}

// VCardAgeLookup resolves ages from an address book export, matching the
// formatted name (FN) case-insensitively.
type VCardAgeLookup struct {
	births map[string]Date
}

// NewVCardAgeLookup decodes every card of r. Cards without a BDAY year are ignored.
func NewVCardAgeLookup(r io.Reader) (*VCardAgeLookup, error) {
	l := &VCardAgeLookup{births: make(map[string]Date)}
	dec := vcard.NewDecoder(r)
	for {
		card, err := dec.Decode()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			// Log error but continue to next card to maximize data recovery
			slog.Warn(config.MsgSkippedCard,
				config.LogKeyComponent, config.CompEngine,
				config.LogKeyError, err)
			continue
		}

		fn := card.Get(config.VCardFN)
		bday := card.Get(config.VCardBDAY)
		if fn == nil || bday == nil {
			continue
		}
		if dob, ok := parseVCardBirth(bday.Value); ok {
			l.births[fold.String(CleanText(fn.Value))] = dob
		}
	}
	return l, nil
}

// parseVCardBirth accepts vCard BDAY values that carry a year.
func parseVCardBirth(value string) (Date, bool) {
	for _, layout := range []string{config.DateFormatISO, config.DateFormatBasic, time.RFC3339} {
		if t, err := time.Parse(layout, value); err == nil {
			return DateOf(t), true
		}
	}
	return Date{}, false
}

// Age implements AgeLookup.
func (l *VCardAgeLookup) Age(_ context.Context, rec BirthdayRecord, today Date) (int, error) {
	dob, ok := l.births[fold.String(rec.Name)]
	if !ok {
		return 0, fmt.Errorf("%w: no birth year for %q in address book", ErrNoDateFound, rec.Name)
	}
	return completedYears(dob, today), nil
}
