package menu

import (
	"encoding/base64"
	"fmt"
	"io"
	"time"

	"github.com/sammaes/SiouxBelgiumParser/internal/config"
)

// lineWriter keeps the first write error so rendering stays linear.
type lineWriter struct {
	w   io.Writer
	err error
}

func (lw *lineWriter) line(text, style string) {
	if lw.err != nil {
		return
	}
	if style == "" {
		_, lw.err = fmt.Fprintln(lw.w, text)
		return
	}
	_, lw.err = fmt.Fprintf(lw.w, config.MenuLineFormat, text, style)
}

// Render writes v in the text format of BitBar/xbar/SwiftBar plugins.
func Render(w io.Writer, v *View) error {
	lw := &lineWriter{w: w}

	lw.line(fmt.Sprintf(config.MenuIconFormat, base64.StdEncoding.EncodeToString(Icon)), "")
	lw.line(config.MenuSeparator, "")

	for _, e := range v.Events {
		lw.line(e.Heading, config.MenuSectionStyle)
		lw.line(e.Title, fmt.Sprintf(config.MenuTitleStyle, e.URL))
		lw.line(config.MenuDetailIndent+e.When, config.MenuDetailStyle)
		lw.line(config.MenuDetailIndent+e.Location, config.MenuDetailStyle)
		if e.Category != "" {
			lw.line(config.MenuDetailIndent+e.Category, config.MenuDetailStyle)
		}
		lw.line(config.MenuSeparator, "")
	}

	if len(v.Birthdays) > 0 {
		lw.line(v.BirthdayTitle, config.MenuSectionStyle)
		for _, b := range v.Birthdays {
			lw.line(BirthdayLine(b), config.MenuBdayStyle)
		}
		lw.line(config.MenuSeparator, "")
	}

	lw.line(config.MenuOverviewLabel, fmt.Sprintf(config.MenuHrefStyle, v.OverviewURL))
	lw.line(config.MenuSeparator, "")
	lw.line(config.MenuIntranetLabel, fmt.Sprintf(config.MenuHrefStyle, v.IntranetURL))
	lw.line(config.MenuWebmailLabel, fmt.Sprintf(config.MenuHrefStyle, v.WebmailURL))
	lw.line(config.MenuSeparator, "")
	lw.line(fmt.Sprintf(config.MenuRefreshFormat, Interval(v.RefreshInterval)), config.MenuRefreshStyle)

	return lw.err
}

// BirthdayLine renders "Name - 02/01/2006", with the age appended when known.
func BirthdayLine(b BirthdayItem) string {
	text := fmt.Sprintf(config.MenuBdayLineFormat, b.Name, b.Date)
	if b.Age != nil {
		text += fmt.Sprintf(config.MenuAgeFormat, b.Age)
	}
	return text
}

// Interval renders a refresh interval the way plugin file names do: 60m, 1d, 30s.
func Interval(d time.Duration) string {
	switch {
	case d >= 24*time.Hour && d%(24*time.Hour) == 0:
		return fmt.Sprintf("%dd", d/(24*time.Hour))
	case d >= time.Minute && d%time.Minute == 0:
		return fmt.Sprintf("%dm", d/time.Minute)
	}
	return fmt.Sprintf("%ds", d/time.Second)
}
