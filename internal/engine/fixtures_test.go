package engine_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sammaes/SiouxBelgiumParser/internal/config"
)

func readFixture(t *testing.T, name string) string {
	t.Helper()
	b, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	return string(b)
}

func locator(tag, attr, value string) config.FieldLocator {
	return config.FieldLocator{Tag: tag, Attr: attr, Value: value}
}

// testSettings matches the fixtures under testdata.
func testSettings() *config.Settings {
	return &config.Settings{
		Locale:            "nl-BE",
		Domain:            "SIOUX",
		Username:          "jdoe",
		BaseURL:           "https://intranet.example",
		EventsLinkBase:    "https://intranet.example/Events/",
		EventsOverviewURL: "https://intranet.example/Events/Overview.aspx",
		BirthdayURL:       "https://intranet.example/Birthdays.aspx",
		Categories: config.Categories{
			SocialPartner:   "Social partner",
			SocialColleague: "Social colleague",
			Powwow:          "Powwow",
			Training:        "Training",
			ExpGroup:        "Exp group",
			Presentation:    "Presentation",
		},
		Events: config.EventLocators{
			Date:     locator("td", "class", "ev-date"),
			Title:    locator("td", "class", "ev-title"),
			Location: locator("td", "class", "ev-location"),
			Category: locator("td", "class", "ev-category"),
		},
		Birthdays: config.BirthdayLocators{
			Overall: locator("div", "class", "birthdays"),
			Entry:   "p",
			Markers: config.SectionMarkers{
				Today:  "Vandaag jarig",
				Future: "Binnenkort jarig",
				Past:   "Onlangs jarig",
			},
			Roles: config.RoleNames{Colleague: "collega", Child: "kind", Partner: "partner"},
		},
		Details: config.DetailLocators{
			Table:  locator("table", "class", "details"),
			Record: locator("tr", "class", "row"),
			Date:   locator("td", "class", "value"),
		},
	}
}
