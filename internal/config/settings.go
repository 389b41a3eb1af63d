package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"
)

// FieldLocator identifies the markup nodes holding one logical field:
// elements named Tag whose attribute Attr carries Value.
type FieldLocator struct {
	Tag   string
	Attr  string
	Value string
}

// Validate reports an incomplete locator.
func (l FieldLocator) Validate() error {
	if strings.TrimSpace(l.Tag) == "" || strings.TrimSpace(l.Attr) == "" || strings.TrimSpace(l.Value) == "" {
		return fmt.Errorf("%w: %s %+v", ErrConfig, ErrInvalidLocator, l)
	}
	return nil
}

// Selector renders the locator as a CSS selector.
// The class attribute is matched per token, any other attribute by exact value.
func (l FieldLocator) Selector() string {
	op := "="
	if strings.EqualFold(l.Attr, "class") {
		op = "~="
	}
	value := strings.ReplaceAll(l.Value, `"`, `\"`)
	return fmt.Sprintf(`%s[%s%s"%s"]`, l.Tag, l.Attr, op, value)
}

// EventLocators holds the four sibling queries of the events overview page.
type EventLocators struct {
	Date     FieldLocator
	Title    FieldLocator
	Location FieldLocator
	Category FieldLocator
}

// SectionMarkers are the headers splitting the birthday page in three ranges.
type SectionMarkers struct {
	Today  string
	Future string
	Past   string
}

// RoleNames maps the portal's CSS classes to roles.
type RoleNames struct {
	Colleague string
	Child     string
	Partner   string
}

// BirthdayLocators describes the birthday page.
type BirthdayLocators struct {
	// Overall locates the container of all entries; the first match is used.
	Overall FieldLocator
	// Entry is the tag name of a single entry inside Overall.
	Entry   string
	Markers SectionMarkers
	Roles   RoleNames
}

// DetailLocators describes a person's detail page (used for ages).
type DetailLocators struct {
	Table  FieldLocator
	Record FieldLocator
	Date   FieldLocator
}

// Categories holds the portal's category names.
type Categories struct {
	SocialPartner   string
	SocialColleague string
	Powwow          string
	Training        string
	ExpGroup        string
	Presentation    string
}

// All returns every known category name.
func (c Categories) All() []string {
	return []string{c.SocialPartner, c.SocialColleague, c.Powwow, c.Training, c.ExpGroup, c.Presentation}
}

// ByKey maps the layout keys (lower-case config keys) to category names.
func (c Categories) ByKey() map[string]string {
	return map[string]string{
		strings.ToLower(KeySocialPartner):   c.SocialPartner,
		strings.ToLower(KeySocialColleague): c.SocialColleague,
		strings.ToLower(KeyPowwow):          c.Powwow,
		strings.ToLower(KeyTraining):        c.Training,
		strings.ToLower(KeyExpGroup):        c.ExpGroup,
		strings.ToLower(KeyPresentation):    c.Presentation,
	}
}

// Settings is the validated, typed view of a configuration Source.
type Settings struct {
	Locale            string
	Domain            string
	Username          string
	BaseURL           string
	EventsLinkBase    string
	EventsOverviewURL string
	BirthdayURL       string

	Categories Categories
	Events     EventLocators
	Birthdays  BirthdayLocators
	Details    DetailLocators
}

// reader collects the first error while reading many keys.
type reader struct {
	src Source
	err error
}

func (r *reader) get(section, key string) string {
	if r.err != nil {
		return ""
	}
	v, err := r.src.Get(section, key)
	if err != nil {
		r.err = err
		return ""
	}
	return strings.TrimSpace(v)
}

func (r *reader) locator(section, tagKey, argKey, valueKey string) FieldLocator {
	return FieldLocator{
		Tag:   r.get(section, tagKey),
		Attr:  r.get(section, argKey),
		Value: r.get(section, valueKey),
	}
}

// LoadSettings reads every schema key from src and validates the result.
func LoadSettings(src Source) (*Settings, error) {
	r := &reader{src: src}

	base := r.get(SectionURLs, KeyBase)
	s := &Settings{
		Locale:            r.get(SectionGeneral, KeyLocale),
		Domain:            r.get(SectionURLs, KeyDomain),
		Username:          r.get(SectionAuth, KeyUsername),
		BaseURL:           base,
		EventsLinkBase:    base + r.get(SectionURLs, KeyEventsExt),
		EventsOverviewURL: base + r.get(SectionURLs, KeyEventsOverviewEx),
		BirthdayURL:       base + r.get(SectionURLs, KeyBdayExt),
		Categories: Categories{
			SocialPartner:   r.get(SectionEvents, KeySocialPartner),
			SocialColleague: r.get(SectionEvents, KeySocialColleague),
			Powwow:          r.get(SectionEvents, KeyPowwow),
			Training:        r.get(SectionEvents, KeyTraining),
			ExpGroup:        r.get(SectionEvents, KeyExpGroup),
			Presentation:    r.get(SectionEvents, KeyPresentation),
		},
	}

	evTag, evArg := r.get(SectionParseEv, KeyElement), r.get(SectionParseEv, KeyArg)
	s.Events = EventLocators{
		Date:     FieldLocator{Tag: evTag, Attr: evArg, Value: r.get(SectionParseEv, KeyValueDate)},
		Title:    FieldLocator{Tag: evTag, Attr: evArg, Value: r.get(SectionParseEv, KeyValueTitle)},
		Location: FieldLocator{Tag: evTag, Attr: evArg, Value: r.get(SectionParseEv, KeyValueLocation)},
		Category: FieldLocator{Tag: evTag, Attr: evArg, Value: r.get(SectionParseEv, KeyValueCategory)},
	}

	s.Birthdays = BirthdayLocators{
		Overall: r.locator(SectionParseBday, KeyElement, KeyArg, KeyValueOverall),
		Entry:   r.get(SectionParseBday, KeyValueSeparate),
		Markers: SectionMarkers{
			Today:  r.get(SectionParseBday, KeyTitleToday),
			Future: r.get(SectionParseBday, KeyTitleFuture),
			Past:   r.get(SectionParseBday, KeyTitlePast),
		},
		Roles: RoleNames{
			Colleague: r.get(SectionParseBday, KeyRoleColleague),
			Child:     r.get(SectionParseBday, KeyRoleChild),
			Partner:   r.get(SectionParseBday, KeyRolePartner),
		},
	}

	s.Details = DetailLocators{
		Table:  r.locator(SectionDetails, KeyTab, KeyTabArg, KeyTabValue),
		Record: r.locator(SectionDetails, KeyRecElement, KeyRecArg, KeyRecValue),
		Date:   r.locator(SectionDetails, KeyDateElement, KeyDateArg, KeyDateValue),
	}

	if r.err != nil {
		return nil, r.err
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}

	slog.Debug(MsgConfigLoaded,
		LogKeyComponent, CompConfig,
		LogKeyURL, s.BaseURL,
		LogKeyUser, s.Username)
	return s, nil
}

// Validate checks the locators and URLs once, at startup.
func (s *Settings) Validate() error {
	u, err := url.Parse(s.BaseURL)
	if err != nil || (u.Scheme != SchemeHTTP && u.Scheme != SchemeHTTPS) || u.Host == "" {
		return fmt.Errorf("%w: %s: %q", ErrConfig, ErrInvalidBaseURL, s.BaseURL)
	}

	locators := []FieldLocator{
		s.Events.Date, s.Events.Title, s.Events.Location, s.Events.Category,
		s.Birthdays.Overall,
		s.Details.Table, s.Details.Record, s.Details.Date,
	}
	for _, l := range locators {
		if err := l.Validate(); err != nil {
			return err
		}
	}

	required := map[string]string{
		KeyValueSeparate: s.Birthdays.Entry,
		KeyTitleToday:    s.Birthdays.Markers.Today,
		KeyTitleFuture:   s.Birthdays.Markers.Future,
		KeyTitlePast:     s.Birthdays.Markers.Past,
		KeyLocale:        s.Locale,
	}
	for key, v := range required {
		if v == "" {
			return fmt.Errorf("%w: %s: %s is empty", ErrConfig, ErrMissingKey, key)
		}
	}

	seen := make(map[string]bool)
	for _, c := range s.Categories.All() {
		if c == "" || seen[c] {
			return fmt.Errorf("%w: category names must be unique and non-empty: %q", ErrConfig, c)
		}
		seen[c] = true
	}
	return nil
}
