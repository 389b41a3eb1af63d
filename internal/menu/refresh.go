package menu

import (
	"bytes"
	"context"

	"github.com/sammaes/SiouxBelgiumParser/internal/engine"
)

// Result is the output of one refresh: the view plus its two published forms.
type Result struct {
	View     *View
	Text     []byte
	Calendar []byte
}

// Refresh drops the portal cache and rebuilds everything from fresh pages.
func (b *Builder) Refresh(ctx context.Context) (*Result, error) {
	b.Portal.Reset()

	view, err := b.Build(ctx)
	if err != nil {
		return nil, err
	}

	var text bytes.Buffer
	if err := Render(&text, view); err != nil {
		return nil, err
	}

	events, err := b.Portal.Events(ctx)
	if err != nil {
		return nil, err
	}
	birthdays, err := b.Portal.Birthdays(ctx)
	if err != nil {
		return nil, err
	}
	calendar, err := engine.BuildCalendar(events, birthdays, b.Clock.Now())
	if err != nil {
		return nil, err
	}

	return &Result{View: view, Text: text.Bytes(), Calendar: calendar}, nil
}
