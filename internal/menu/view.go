// Package menu turns the filtered portal records into the status-bar menu.
package menu

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"time"

	"github.com/sammaes/SiouxBelgiumParser/internal/config"
	"github.com/sammaes/SiouxBelgiumParser/internal/engine"
)

// Icon is the menu bar image.
//
//go:embed Icon.png
var Icon []byte

// EventItem is a "next event" block.
type EventItem struct {
	Heading  string
	Title    string
	URL      string
	When     string
	Location string
	// Category is empty unless the section shows it.
	Category string
}

// BirthdayItem is one printed birthday line.
type BirthdayItem struct {
	Name string
	Date string
	URL  string
	// Age is nil unless ages were requested.
	Age *engine.Age
}

// View is everything a menu front end (text or tray) shows.
type View struct {
	Events         []EventItem
	BirthdayTitle  string
	Birthdays      []BirthdayItem
	BirthdaysToday int

	OverviewURL     string
	IntranetURL     string
	WebmailURL      string
	RefreshInterval time.Duration
}

// Builder runs the pipelines for every section of a layout.
type Builder struct {
	Portal   *engine.Portal
	Settings *config.Settings
	Layout   config.Layout
	Clock    engine.Clock
	// Months renders the long event dates.
	Months *engine.MonthNameTable
	// Ages is only needed when the layout asks for ages.
	Ages engine.AgeLookup
}

// Build fetches (or reuses) the raw records and assembles the view.
func (b *Builder) Build(ctx context.Context) (*View, error) {
	start := time.Now()

	v := &View{
		BirthdayTitle:   b.Layout.Birthdays.Title,
		OverviewURL:     b.Portal.EventsOverviewURL(),
		IntranetURL:     b.Portal.BaseURL(),
		WebmailURL:      b.Layout.WebmailURL,
		RefreshInterval: b.Layout.RefreshInterval,
	}

	if len(b.Layout.Sections) > 0 {
		if err := b.buildEvents(ctx, v); err != nil {
			return nil, err
		}
	}
	if err := b.buildBirthdays(ctx, v); err != nil {
		return nil, err
	}

	slog.Debug(config.MsgMenuBuilt,
		config.LogKeyComponent, config.CompMenu,
		config.LogKeyCount, len(v.Events),
		config.LogKeyDuration, time.Since(start).Milliseconds())
	return v, nil
}

func (b *Builder) buildEvents(ctx context.Context, v *View) error {
	raw, err := b.Portal.Events(ctx)
	if err != nil {
		return err
	}

	include := make(map[string]bool)
	for key, name := range b.Settings.Categories.ByKey() {
		include[name] = b.Layout.Categories[key]
	}
	categories, err := engine.NewCategoryFilter(b.Settings.Categories.All(), include)
	if err != nil {
		return err
	}

	t := b.Layout.Dates
	dates := engine.DateFilterSpec{
		IncludeSingleDay: t.SingleDay,
		IncludeMultiDay:  t.MultiDay,
		IncludeToday:     t.Today,
		IncludeFuture:    t.Future,
		IncludePast:      t.Past,
	}

	p := engine.EventPipeline{Clock: b.Clock}
	for _, section := range b.Layout.Sections {
		next, ok, err := p.Next(raw, categories, dates, section.TitleFilter)
		if err != nil {
			return fmt.Errorf("section %q: %w", section.Title, err)
		}
		if !ok {
			continue
		}
		item := EventItem{
			Heading:  section.Title,
			Title:    next.Title,
			URL:      next.URL,
			When:     b.longDate(next.Dates),
			Location: next.Location,
		}
		if section.ShowCategory {
			item.Category = next.Category
		}
		v.Events = append(v.Events, item)
	}
	return nil
}

func (b *Builder) longDate(r *engine.DateRange) string {
	if r == nil {
		return ""
	}
	if !r.IsMultiDay() {
		return b.Months.FormatLong(r.Start)
	}
	return b.Months.FormatLong(r.Start) + config.DateRangeSep + b.Months.FormatLong(r.End)
}

func (b *Builder) buildBirthdays(ctx context.Context, v *View) error {
	s := b.Layout.Birthdays
	if s.Limit == 0 {
		return nil
	}

	raw, err := b.Portal.Birthdays(ctx)
	if err != nil {
		return err
	}

	p := engine.BirthdayPipeline{Clock: b.Clock, Ages: b.Ages}
	kept, err := p.Run(ctx, raw,
		engine.NewRelativeTimeFilter(s.Today, s.Future, s.Past),
		engine.NewRoleFilter(s.Colleague, s.Child, s.Partner, s.Other),
		s.Ages)
	if err != nil {
		return err
	}

	for _, rec := range kept {
		if s.ColleaguesOnly && rec.Role != engine.RoleColleague {
			continue
		}
		if rec.RelativeTime == engine.RelToday {
			v.BirthdaysToday++
		}
		if len(v.Birthdays) < s.Limit {
			v.Birthdays = append(v.Birthdays, BirthdayItem{
				Name: rec.Name,
				Date: rec.DisplayDate(),
				URL:  rec.URL,
				Age:  rec.Age,
			})
		}
	}
	return nil
}
