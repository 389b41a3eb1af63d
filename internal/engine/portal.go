package engine

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"github.com/sammaes/SiouxBelgiumParser/internal/config"
)

// RawSource delivers the unfiltered records of both portal pages.
type RawSource interface {
	RawEvents(ctx context.Context) ([]EventRecord, error)
	RawBirthdays(ctx context.Context) ([]BirthdayRecord, error)
}

// WebSource scrapes the live intranet.
type WebSource struct {
	Fetcher  PageFetcher
	Settings *config.Settings
	Clock    Clock
	// Primary is the portal locale; Fallback reads swapped English birthday dates.
	Primary  *MonthNameTable
	Fallback *MonthNameTable
}

// RawEvents implements RawSource.
func (s *WebSource) RawEvents(ctx context.Context) ([]EventRecord, error) {
	markup, err := fetchString(ctx, s.Fetcher, s.Settings.EventsOverviewURL)
	if err != nil {
		return nil, err
	}
	return ExtractEvents(markup, s.Settings.Events, s.Settings.EventsLinkBase, s.Primary)
}

// RawBirthdays implements RawSource.
func (s *WebSource) RawBirthdays(ctx context.Context) ([]BirthdayRecord, error) {
	markup, err := fetchString(ctx, s.Fetcher, s.Settings.BirthdayURL)
	if err != nil {
		return nil, err
	}
	x := &BirthdayExtractor{
		Locators: s.Settings.Birthdays,
		LinkBase: s.Settings.BaseURL,
		Clock:    s.Clock,
		Primary:  s.Primary,
		Fallback: s.Fallback,
	}
	return x.Extract(markup)
}

// Portal caches the raw records of a RawSource. Each page is fetched on first
// use and reused until Reset. Callers receive copies of the cache.
type Portal struct {
	source            RawSource
	baseURL           string
	eventsOverviewURL string

	mu        sync.Mutex
	events    []EventRecord
	birthdays []BirthdayRecord
	hasEvents bool
	hasBdays  bool
}

// NewPortal wraps source. The URLs are exposed for link construction.
func NewPortal(source RawSource, baseURL, eventsOverviewURL string) *Portal {
	return &Portal{source: source, baseURL: baseURL, eventsOverviewURL: eventsOverviewURL}
}

// BaseURL is the intranet root.
func (p *Portal) BaseURL() string { return p.baseURL }

// EventsOverviewURL is the page listing all events.
func (p *Portal) EventsOverviewURL() string { return p.eventsOverviewURL }

// Events returns the raw events, fetching them on the first call.
func (p *Portal) Events(ctx context.Context) ([]EventRecord, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.hasEvents {
		events, err := p.source.RawEvents(ctx)
		if err != nil {
			return nil, err
		}
		p.events, p.hasEvents = events, true
	} else {
		slog.Debug(config.MsgCacheHit,
			config.LogKeyComponent, config.CompPortal,
			config.LogKeyKind, config.KindEvents)
	}

	out := make([]EventRecord, len(p.events))
	for i, e := range p.events {
		if e.Dates != nil {
			d := *e.Dates
			e.Dates = &d
		}
		out[i] = e
	}
	return out, nil
}

// Birthdays returns the raw birthdays, fetching them on the first call.
func (p *Portal) Birthdays(ctx context.Context) ([]BirthdayRecord, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.hasBdays {
		bdays, err := p.source.RawBirthdays(ctx)
		if err != nil {
			return nil, err
		}
		p.birthdays, p.hasBdays = bdays, true
	} else {
		slog.Debug(config.MsgCacheHit,
			config.LogKeyComponent, config.CompPortal,
			config.LogKeyKind, config.KindBirthdays)
	}

	out := slices.Clone(p.birthdays)
	for i := range out {
		if out[i].Age != nil {
			a := *out[i].Age
			out[i].Age = &a
		}
	}
	return out, nil
}

// Reset drops the cache so the next call fetches again.
func (p *Portal) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events, p.birthdays = nil, nil
	p.hasEvents, p.hasBdays = false, false
}
