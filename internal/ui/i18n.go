package ui

import (
	"embed"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"

	"github.com/sammaes/SiouxBelgiumParser/internal/config"
)

//go:embed locales/*.json
var localeFS embed.FS

// SetupI18n loads one embedded message file per supported language.
// Languages whose file is missing or broken are dropped from SupportedLanguages.
func (app *SiouxMenuApp) SetupI18n() {
	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)

	var loaded []string
	for _, lang := range config.SupportedLanguages {
		path := fmt.Sprintf(config.LocaleFilePattern, lang)
		if _, err := bundle.LoadMessageFileFS(localeFS, path); err != nil {
			slog.Error(config.ErrLocaleLoad,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, path,
				config.LogKeyError, err,
			)
			continue
		}
		slog.Debug(config.MsgLocaleLoaded,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyLang, lang,
		)
		loaded = append(loaded, lang)
	}

	app.SupportedLanguages = loaded
	app.I18nBundle = bundle
	app.UpdateLocalizer()
}

// UpdateLocalizer refreshes the translator for the layout language.
// The bundle falls back to English for languages it does not know.
func (app *SiouxMenuApp) UpdateLocalizer() {
	lang := app.Language
	if lang == "" {
		lang = config.DefaultLanguage
	}
	app.Localizer = i18n.NewLocalizer(app.I18nBundle, lang)
}

// GetMsg is a helper to translate a key safely.
func (app *SiouxMenuApp) GetMsg(key string) string {
	return app.localize(key, nil, nil)
}

// localize translates key with template data; the key itself is the fallback.
func (app *SiouxMenuApp) localize(key string, data map[string]interface{}, plural interface{}) string {
	if app.Localizer == nil {
		return key
	}
	msg, err := app.Localizer.Localize(&i18n.LocalizeConfig{
		MessageID:    key,
		TemplateData: data,
		PluralCount:  plural,
	})
	if err != nil {
		slog.Debug(config.MsgTransMissing,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyKey, key,
			config.LogKeyError, err,
		)
		return key
	}
	return msg
}
