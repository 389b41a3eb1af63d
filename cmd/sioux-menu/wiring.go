package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/sammaes/SiouxBelgiumParser/internal/config"
	"github.com/sammaes/SiouxBelgiumParser/internal/engine"
	"github.com/sammaes/SiouxBelgiumParser/internal/menu"
	"github.com/sammaes/SiouxBelgiumParser/internal/snapshot"
)

// options are the global flags shared by every command.
type options struct {
	debug       bool
	configDir   string
	configStore string
	data        string
	layoutPath  string
	snapshotDir string
	port        string
	vcard       string

	logCloser io.Closer
	closers   []io.Closer
}

func (o *options) closeAll() {
	for i := len(o.closers) - 1; i >= 0; i-- {
		_ = o.closers[i].Close()
	}
	if o.logCloser != nil {
		_ = o.logCloser.Close() // Best effort close
	}
}

// defaultConfigDir is <UserConfigDir>/<AppID>, or the working directory.
func defaultConfigDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "."
	}
	return filepath.Join(dir, config.AppID)
}

// openSource opens the configuration store selected by --config-store.
func (o *options) openSource() (config.Source, error) {
	switch o.configStore {
	case config.StoreINI:
		return config.OpenIniSource(filepath.Join(o.configDir, config.ConfigFileName))
	case config.StoreSQLite:
		s, err := config.OpenSQLiteSource(filepath.Join(o.configDir, config.ConfigDBName))
		if err != nil {
			return nil, err
		}
		o.closers = append(o.closers, s)
		return s, nil
	default:
		return nil, fmt.Errorf("%w: %s %q", config.ErrConfig, config.ErrUnknownStore, o.configStore)
	}
}

func (o *options) loadSettings() (*config.Settings, error) {
	src, err := o.openSource()
	if err != nil {
		return nil, err
	}
	return config.LoadSettings(src)
}

func (o *options) loadLayout() (config.Layout, error) {
	path := o.layoutPath
	if path == "" {
		path = filepath.Join(o.configDir, config.LayoutFileName)
	}
	return config.LoadLayout(path)
}

// newFetcher authenticates with the configured user and the keyring password.
func newFetcher(settings *config.Settings) (*engine.HTTPFetcher, error) {
	password, err := config.NewKeyringSource().Get(config.SectionAuth, config.KeyPassword)
	if err != nil {
		return nil, err
	}
	return engine.NewHTTPFetcher(engine.Credentials{
		Domain:   settings.Domain,
		User:     settings.Username,
		Password: password,
	}), nil
}

// webSource scrapes the live portal in the configured locale.
func webSource(settings *config.Settings, fetcher engine.PageFetcher) (*engine.WebSource, error) {
	primary, err := engine.TableFor(settings.Locale)
	if err != nil {
		return nil, err
	}
	return &engine.WebSource{
		Fetcher:  fetcher,
		Settings: settings,
		Clock:    engine.RealClock{},
		Primary:  primary,
		Fallback: engine.English,
	}, nil
}

// newBuilder wires settings, layout, data input and age lookup into a menu builder.
func (o *options) newBuilder() (*menu.Builder, error) {
	settings, err := o.loadSettings()
	if err != nil {
		return nil, err
	}
	layout, err := o.loadLayout()
	if err != nil {
		return nil, err
	}
	months, err := engine.TableFor(layout.Language)
	if err != nil {
		return nil, err
	}

	var (
		raw  engine.RawSource
		ages engine.AgeLookup
	)
	switch o.data {
	case config.DataHTTPS:
		fetcher, err := newFetcher(settings)
		if err != nil {
			return nil, err
		}
		ws, err := webSource(settings, fetcher)
		if err != nil {
			return nil, err
		}
		raw = ws
		ages = &engine.PortalAgeLookup{Fetcher: fetcher, Locators: settings.Details, Table: ws.Primary}
	case config.DataJSON:
		raw = snapshot.New(o.snapshotDir)
	default:
		return nil, fmt.Errorf("%w: %s %q", config.ErrConfig, config.ErrUnknownData, o.data)
	}

	if o.vcard != "" {
		lookup, err := openVCard(o.vcard)
		if err != nil {
			return nil, err
		}
		ages = lookup
	}

	slog.Debug(config.MsgInputsWired,
		config.LogKeyComponent, config.CompMain,
		config.LogKeyStore, o.configStore,
		config.LogKeyData, o.data,
		config.LogKeyInterval, layout.RefreshInterval)

	return &menu.Builder{
		Portal:   engine.NewPortal(raw, settings.BaseURL, settings.EventsOverviewURL),
		Settings: settings,
		Layout:   layout,
		Clock:    engine.RealClock{},
		Months:   months,
		Ages:     ages,
	}, nil
}

func openVCard(path string) (*engine.VCardAgeLookup, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", config.ErrConfig, path, err)
	}
	defer func() { _ = f.Close() }()
	return engine.NewVCardAgeLookup(f)
}

// errNoPassword is returned by login when the prompt yields nothing.
var errNoPassword = errors.New("empty password")
