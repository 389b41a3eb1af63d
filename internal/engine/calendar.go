package engine

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"log/slog"
	"time"

	"github.com/emersion/go-ical"

	"github.com/sammaes/SiouxBelgiumParser/internal/config"
)

// BuildCalendar renders events and birthdays as an iCalendar feed of all-day
// VEVENTs. Events without dates are left out. now stamps every component.
func BuildCalendar(events []EventRecord, birthdays []BirthdayRecord, now time.Time) ([]byte, error) {
	cal := ical.NewCalendar()

	cal.Props.SetText(config.PropVersion, config.ICalVersion)
	cal.Props.SetText(config.PropProdid, config.ICalProdid)
	cal.Props.SetText(config.PropXWRCalName, config.ICalCalName)
	cal.Props.SetText(config.PropCalScale, config.ICalScale)
	cal.Props.SetText(config.PropMethod, config.ICalMethod)

	// RFC 7986
	refreshProp := ical.NewProp(config.PropRefresh)
	refreshProp.SetDuration(config.DefaultICalRefresh)
	cal.Props.Set(refreshProp)

	dtStampProp := ical.NewProp(config.PropDTStamp)
	dtStampProp.SetDateTime(now.UTC())

	skipped := 0
	for _, e := range events {
		if e.Dates == nil {
			skipped++
			continue
		}
		ev := allDayEvent(uid(e.Title, e.Dates.Start, e.URL), e.Title, e.Dates.Start, e.Dates.End, dtStampProp)
		if e.Location != "" {
			ev.Props.SetText(config.PropLocation, e.Location)
		}
		if e.Category != "" {
			ev.Props.SetText(config.PropCategories, e.Category)
		}
		if e.URL != "" {
			ev.Props.SetText(config.PropURL, e.URL)
		}
		cal.Children = append(cal.Children, ev.Component)
	}

	for _, b := range birthdays {
		summary := fmt.Sprintf(config.FormatBdaySummary, b.Name)
		if b.Age != nil && b.Age.Known {
			summary = fmt.Sprintf(config.FormatBdaySummaryAge, b.Name, b.Age.Years)
		}
		ev := allDayEvent(uid(b.Name, b.Date, string(b.Role)), summary, b.Date, b.Date, dtStampProp)
		if b.URL != "" {
			ev.Props.SetText(config.PropURL, b.URL)
		}
		cal.Children = append(cal.Children, ev.Component)
	}

	slog.Debug(config.MsgCalendarBuilt,
		config.LogKeyComponent, config.CompEngine,
		config.LogKeyCount, len(cal.Children),
		config.LogKeySkipped, skipped)

	// An empty VCALENDAR fails go-ical validation, clients still expect a valid feed.
	if len(cal.Children) == 0 {
		return []byte(config.StubVCalendar), nil
	}

	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrICalEncode, err)
	}
	return buf.Bytes(), nil
}

// allDayEvent spans start..end inclusive; DTEND is exclusive per RFC 5545.
func allDayEvent(uid, summary string, start, end Date, stamp *ical.Prop) *ical.Event {
	event := ical.NewEvent()
	event.Props.SetText(config.PropUID, uid)
	event.Props.SetText(config.PropSummary, summary)
	event.Props.Set(stamp)

	dtStart := ical.NewProp(config.PropDTStart)
	dtStart.SetDate(start.Time())
	event.Props.Set(dtStart)

	dtEnd := ical.NewProp(config.PropDTEnd)
	dtEnd.SetDate(end.AddDays(1).Time())
	event.Props.Set(dtEnd)

	return event
}

// uid is stable across refreshes so calendar clients update instead of duplicating.
func uid(name string, d Date, discriminator string) string {
	input := fmt.Sprintf(config.FormatHashInput, name, d.String(), config.UIDSalt+discriminator)
	hash := sha256.Sum256([]byte(input))
	return fmt.Sprintf(config.FormatUID, fmt.Sprintf("%x", hash[:config.UIDHashLength]), config.ICalDomain)
}
