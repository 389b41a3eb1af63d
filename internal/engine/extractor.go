package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/sammaes/SiouxBelgiumParser/internal/config"
)

var (
	cleaner    = strings.NewReplacer("\n", "", "\t", "", "\r", "")
	bdayNameRe = regexp.MustCompile(config.PatternBdayName)
)

// CleanText strips surrounding whitespace and removes embedded tabs and newlines.
func CleanText(s string) string {
	return cleaner.Replace(strings.TrimSpace(s))
}

func parseDocument(markup string) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("%w: parse markup: %w", ErrExtraction, err)
	}
	return doc, nil
}

// firstLink returns linkBase + href of the first anchor inside s.
func firstLink(s *goquery.Selection, linkBase string) (string, bool) {
	href, ok := s.Find("a[href]").First().Attr("href")
	if !ok {
		return "", false
	}
	return linkBase + href, true
}

// ExtractEvents pulls the events out of the overview page. The four locators are
// queried independently and zipped by position, so every query must return the
// same number of nodes.
func ExtractEvents(markup string, loc config.EventLocators, linkBase string, table *MonthNameTable) ([]EventRecord, error) {
	doc, err := parseDocument(markup)
	if err != nil {
		return nil, err
	}

	dates := doc.Find(loc.Date.Selector())
	titles := doc.Find(loc.Title.Selector())
	locations := doc.Find(loc.Location.Selector())
	categories := doc.Find(loc.Category.Selector())

	n := titles.Length()
	if dates.Length() != n || locations.Length() != n || categories.Length() != n {
		return nil, fmt.Errorf("%w: dates=%d titles=%d locations=%d categories=%d",
			ErrFieldCount, dates.Length(), n, locations.Length(), categories.Length())
	}

	records := make([]EventRecord, 0, n)
	for i := 0; i < n; i++ {
		title := titles.Eq(i)
		url, ok := firstLink(title, linkBase)
		if !ok {
			return nil, fmt.Errorf("%w: event %d %q", ErrMissingLink, i, CleanText(title.Text()))
		}

		rec := EventRecord{
			Title:    CleanText(title.Text()),
			Location: CleanText(locations.Eq(i).Text()),
			Category: CleanText(categories.Eq(i).Text()),
			URL:      url,
		}
		// A dateless event is kept; the date filter reports it if it is ever asked.
		found, err := ExtractDates(dates.Eq(i).Text(), table)
		switch {
		case err == nil:
			if rec.Dates, err = NewDateRange(found); err != nil {
				return nil, fmt.Errorf("event %d %q: %w", i, rec.Title, err)
			}
		case !errors.Is(err, ErrNoDateFound):
			return nil, fmt.Errorf("event %d %q: %w", i, rec.Title, err)
		}
		records = append(records, rec)
	}

	slog.Debug(config.MsgExtracted,
		config.LogKeyComponent, config.CompEngine,
		config.LogKeyKind, config.KindEvents,
		config.LogKeyCount, len(records))
	return records, nil
}

// BirthdayExtractor turns the birthday page into records.
type BirthdayExtractor struct {
	Locators config.BirthdayLocators
	LinkBase string
	Clock    Clock
	Primary  *MonthNameTable
	Fallback *MonthNameTable
}

// Extract parses the page. Entries are the Entry-tag descendants of the first
// Overall node, in document order.
func (x *BirthdayExtractor) Extract(markup string) ([]BirthdayRecord, error) {
	doc, err := parseDocument(markup)
	if err != nil {
		return nil, err
	}

	overall := doc.Find(x.Locators.Overall.Selector()).First()
	if overall.Length() == 0 {
		return nil, fmt.Errorf("%w: no node matches %s", ErrExtraction, x.Locators.Overall.Selector())
	}

	classifier, err := NewClassifier(doc.Text(), x.Locators.Markers)
	if err != nil {
		return nil, err
	}

	today := Today(x.Clock)
	var records []BirthdayRecord
	var extractErr error
	overall.Find(x.Locators.Entry).EachWithBreak(func(i int, entry *goquery.Selection) bool {
		rec, err := x.entry(entry, classifier, today)
		if err != nil {
			extractErr = fmt.Errorf("birthday entry %d: %w", i, err)
			return false
		}
		records = append(records, rec)
		return true
	})
	if extractErr != nil {
		return nil, extractErr
	}

	slog.Debug(config.MsgExtracted,
		config.LogKeyComponent, config.CompEngine,
		config.LogKeyKind, config.KindBirthdays,
		config.LogKeyCount, len(records))
	return records, nil
}

func (x *BirthdayExtractor) entry(entry *goquery.Selection, classifier *Classifier, today Date) (BirthdayRecord, error) {
	text := entry.Text()

	rel, err := classifier.Classify(text)
	if err != nil {
		return BirthdayRecord{}, err
	}

	m := bdayNameRe.FindStringSubmatch(text)
	if m == nil {
		return BirthdayRecord{}, fmt.Errorf("%w: no name in %q", ErrExtraction, CleanText(text))
	}

	rec := BirthdayRecord{
		Name:         CleanText(m[1]),
		Role:         x.role(entry),
		RelativeTime: rel,
	}
	if url, ok := firstLink(entry, x.LinkBase); ok {
		rec.URL = url
	}

	if rel == RelToday {
		rec.Date = today
	} else if rec.Date, err = ParseBirthdayDate(text, x.Primary, x.Fallback, today.Year); err != nil {
		return BirthdayRecord{}, err
	}
	return rec, nil
}

// role maps the first class of the entry onto a Role.
func (x *BirthdayExtractor) role(entry *goquery.Selection) Role {
	class, _ := entry.Attr("class")
	fields := strings.Fields(class)
	if len(fields) == 0 {
		return RoleOther
	}
	switch fields[0] {
	case x.Locators.Roles.Colleague:
		return RoleColleague
	case x.Locators.Roles.Child:
		return RoleChild
	case x.Locators.Roles.Partner:
		return RolePartner
	}
	return RoleOther
}
