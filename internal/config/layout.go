package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

// DateToggles mirrors the five date filter options of a menu.
type DateToggles struct {
	SingleDay bool `koanf:"single_day"`
	MultiDay  bool `koanf:"multi_day"`
	Today     bool `koanf:"today"`
	Future    bool `koanf:"future"`
	Past      bool `koanf:"past"`
}

// EventSection is one "next event" block of the menu.
type EventSection struct {
	Title        string `koanf:"title"`
	TitleFilter  string `koanf:"title_filter"`
	ShowCategory bool   `koanf:"show_category"`
}

// BirthdaySection configures the birthday block of the menu.
type BirthdaySection struct {
	Title     string `koanf:"title"`
	Limit     int    `koanf:"limit"`
	Today     bool   `koanf:"today"`
	Future    bool   `koanf:"future"`
	Past      bool   `koanf:"past"`
	Colleague bool   `koanf:"colleague"`
	Child     bool   `koanf:"child"`
	Partner   bool   `koanf:"partner"`
	Other     bool   `koanf:"other"`
	Ages      bool   `koanf:"ages"`
	// ColleaguesOnly hides children and partners from the printed list; the
	// role flags still decide what the pipeline keeps.
	ColleaguesOnly bool `koanf:"colleagues_only"`
}

// Layout describes what the status-bar menu shows.
type Layout struct {
	Language        string          `koanf:"language"`
	RefreshInterval time.Duration   `koanf:"refresh_interval"`
	WebmailURL      string          `koanf:"webmail_url"`
	Categories      map[string]bool `koanf:"categories"`
	Dates           DateToggles     `koanf:"dates"`
	Sections        []EventSection  `koanf:"sections"`
	Birthdays       BirthdaySection `koanf:"birthdays"`
}

// DefaultLayout is the classic hourly menu with every category enabled.
func DefaultLayout() Layout {
	return Layout{
		Language:        DefaultLanguage,
		RefreshInterval: DefaultRefresh,
		WebmailURL:      DefaultWebmailURL,
		Categories: map[string]bool{
			strings.ToLower(KeySocialPartner):   true,
			strings.ToLower(KeySocialColleague): true,
			strings.ToLower(KeyPowwow):          true,
			strings.ToLower(KeyTraining):        true,
			strings.ToLower(KeyExpGroup):        true,
			strings.ToLower(KeyPresentation):    true,
		},
		Dates: DateToggles{SingleDay: true, MultiDay: true, Today: false, Future: true, Past: false},
		Sections: []EventSection{
			{Title: "The next event is:", ShowCategory: true},
			{Title: "The next cloud event is:", TitleFilter: "in the cloud"},
			{Title: "The next Linux event is:", TitleFilter: "Linux Kennisdelen"},
		},
		Birthdays: BirthdaySection{
			Title:     "The next birthdays are:",
			Limit:     DefaultBdayLimit,
			Today:     true,
			Future:    true,
			Colleague: true,
			Child:     true,
			Partner:   true,

			ColleaguesOnly: true,
		},
	}
}

// layoutSections are the nested keys reachable from environment variables.
var layoutSections = map[string]bool{"dates": true, "birthdays": true, "categories": true}

// envKey maps SIOUX_BIRTHDAYS_LIMIT to birthdays.limit and SIOUX_REFRESH_INTERVAL
// to refresh_interval.
func envKey(s string) string {
	lower := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	parts := strings.SplitN(lower, "_", 2)
	if len(parts) == 2 && layoutSections[parts[0]] {
		return parts[0] + "." + parts[1]
	}
	return lower
}

// LoadLayout starts from DefaultLayout, overlays the YAML file at path (when it
// exists) and then SIOUX_* environment variables.
func LoadLayout(path string) (Layout, error) {
	k := koanf.New(".")

	if path != "" {
		content, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
				return Layout{}, fmt.Errorf("%s %s: %w", ErrLayoutLoad, path, err)
			}
		case !os.IsNotExist(err):
			return Layout{}, fmt.Errorf("%s %s: %w", ErrLayoutLoad, path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return Layout{}, fmt.Errorf("%s: %w", ErrLayoutLoad, err)
	}

	layout := DefaultLayout()
	// A configured list replaces the default sections instead of merging by index.
	if k.Exists("sections") {
		layout.Sections = nil
	}
	if err := k.Unmarshal("", &layout); err != nil {
		return Layout{}, fmt.Errorf("%s: %w", ErrLayoutLoad, err)
	}
	if err := layout.Validate(); err != nil {
		return Layout{}, err
	}

	slog.Debug(MsgLayoutLoaded,
		LogKeyComponent, CompConfig,
		LogKeyFile, path,
		LogKeyCount, len(layout.Sections))
	return layout, nil
}

// Validate rejects layouts the menu cannot render.
func (l Layout) Validate() error {
	if l.RefreshInterval < MinRefresh {
		return fmt.Errorf("%s: refresh_interval %s is below %s", ErrLayoutInvalid, l.RefreshInterval, MinRefresh)
	}
	if l.Birthdays.Limit < 0 {
		return fmt.Errorf("%s: birthdays.limit must not be negative", ErrLayoutInvalid)
	}
	known := Categories{}.ByKey()
	for key := range l.Categories {
		if _, ok := known[key]; !ok {
			return fmt.Errorf("%s: unknown category key %q", ErrLayoutInvalid, key)
		}
	}
	return nil
}
