package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sammaes/SiouxBelgiumParser/internal/config"
)

// EventPipeline filters raw events for a menu section.
type EventPipeline struct {
	Clock Clock
}

// Run keeps, in document order, every record whose title contains
// titleSubstring and which passes both the category and date filters.
// Filters are evaluated in that order and short-circuit, so a dateless record
// only fails when it survives the title and category checks.
func (p EventPipeline) Run(records []EventRecord, categories *CategoryFilter, dates DateFilterSpec, titleSubstring string) ([]EventRecord, error) {
	today := Today(p.Clock)
	var out []EventRecord
	for _, rec := range records {
		if !strings.Contains(rec.Title, titleSubstring) {
			continue
		}
		ok, err := categories.Allows(rec.Category)
		if err != nil {
			return nil, fmt.Errorf("event %q: %w", rec.Title, err)
		}
		if !ok {
			continue
		}
		ok, err = dates.Matches(rec.Dates, today)
		if err != nil {
			return nil, fmt.Errorf("event %q: %w", rec.Title, err)
		}
		if ok {
			out = append(out, rec)
		}
	}

	slog.Debug(config.MsgFiltered,
		config.LogKeyComponent, config.CompEngine,
		config.LogKeyKind, config.KindEvents,
		config.LogKeyCount, len(records),
		config.LogKeyKept, len(out))
	return out, nil
}

// Next returns the first record Run would keep.
func (p EventPipeline) Next(records []EventRecord, categories *CategoryFilter, dates DateFilterSpec, titleSubstring string) (*EventRecord, bool, error) {
	out, err := p.Run(records, categories, dates, titleSubstring)
	if err != nil || len(out) == 0 {
		return nil, false, err
	}
	return &out[0], true, nil
}

// BirthdayPipeline filters raw birthdays and optionally resolves ages.
type BirthdayPipeline struct {
	Clock Clock
	// Ages is only consulted when Run is asked for ages.
	Ages AgeLookup
}

// Run keeps, in document order, the records whose relative time and role are
// allowed. With wantAge, colleagues get the age they have (or reach) on their
// birthday this year; any other role gets an unknown age.
func (p BirthdayPipeline) Run(ctx context.Context, records []BirthdayRecord, times RelativeTimeFilter, roles RoleFilter, wantAge bool) ([]BirthdayRecord, error) {
	today := Today(p.Clock)
	var out []BirthdayRecord
	for _, rec := range records {
		if !times.Allows(rec.RelativeTime) || !roles.Allows(rec.Role) {
			continue
		}
		if wantAge {
			age, err := p.age(ctx, rec, today)
			if err != nil {
				return nil, err
			}
			rec.Age = age
		}
		out = append(out, rec)
	}

	slog.Debug(config.MsgFiltered,
		config.LogKeyComponent, config.CompEngine,
		config.LogKeyKind, config.KindBirthdays,
		config.LogKeyCount, len(records),
		config.LogKeyKept, len(out))
	return out, nil
}

func (p BirthdayPipeline) age(ctx context.Context, rec BirthdayRecord, today Date) (*Age, error) {
	if rec.Role != RoleColleague {
		return UnknownAge(), nil
	}
	if p.Ages == nil {
		return nil, fmt.Errorf("%w: no age lookup configured", config.ErrConfig)
	}
	years, err := p.Ages.Age(ctx, rec, today)
	if err != nil {
		return nil, fmt.Errorf("age of %q: %w", rec.Name, err)
	}
	if rec.RelativeTime == RelFuture {
		years++
	}
	return KnownAge(years), nil
}
