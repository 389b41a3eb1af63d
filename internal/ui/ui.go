package ui

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
	"github.com/nicksnyder/go-i18n/v2/i18n"

	"github.com/sammaes/SiouxBelgiumParser/internal/config"
	"github.com/sammaes/SiouxBelgiumParser/internal/menu"
	"github.com/sammaes/SiouxBelgiumParser/internal/server"
	"github.com/sammaes/SiouxBelgiumParser/internal/worker"
)

// SiouxMenuApp shows the intranet menu in the system tray.
type SiouxMenuApp struct {
	App        fyne.App
	I18nBundle *i18n.Bundle
	Localizer  *i18n.Localizer
	Language   string
	Ctx        context.Context

	Builder *menu.Builder
	// Server is optional; when set it publishes every refresh.
	Server   *server.FeedServer
	Interval time.Duration

	Tray desktop.App
	Menu *fyne.Menu

	TrayStatusItem  *fyne.MenuItem
	TrayRefreshItem *fyne.MenuItem

	// OpenURL opens links from the menu. Defaults to the platform browser.
	OpenURL func(*url.URL) error

	SupportedLanguages []string

	refreshMut sync.Mutex
	viewMut    sync.RWMutex
	view       *menu.View
}

// NewSiouxMenuApp constructs the application and wires dependencies.
func NewSiouxMenuApp(a fyne.App, ctx context.Context, builder *menu.Builder, srv *server.FeedServer) *SiouxMenuApp {
	a.SetIcon(fyne.NewStaticResource(config.IconFile, menu.Icon))

	return &SiouxMenuApp{
		App:                a,
		Language:           builder.Layout.Language,
		Ctx:                ctx,
		Builder:            builder,
		Server:             srv,
		Interval:           builder.Layout.RefreshInterval,
		OpenURL:            a.OpenURL,
		SupportedLanguages: config.SupportedLanguages,
	}
}

// Run launches the application services and the main UI loop.
func (app *SiouxMenuApp) Run() {
	app.SetupI18n()

	if app.Server != nil {
		go func() {
			if err := app.Server.Start(app.Ctx); err != nil {
				slog.Error(config.ErrServerStartup,
					config.LogKeyError, err,
					config.LogKeyComponent, config.CompUI)
			}
		}()
	}

	if desk, ok := app.App.(desktop.App); ok {
		app.Tray = desk
		app.Tray.SetSystemTrayIcon(app.App.Icon())
		app.setupTrayMenu()
	} else {
		slog.Warn(config.ErrTrayNotSupported,
			config.LogKeyComponent, config.CompUI)
	}

	go app.backgroundWorker()

	go func() {
		<-app.Ctx.Done()
		slog.Info(config.MsgCtxCancel, config.LogKeyComponent, config.CompUI)
		fyne.Do(app.App.Quit)
	}()

	app.App.Run()
}

// setupTrayMenu constructs the initial tray menu, before the first refresh.
func (app *SiouxMenuApp) setupTrayMenu() {
	app.TrayStatusItem = fyne.NewMenuItem(app.GetMsg(config.TKeyTrayLoading), nil)
	app.TrayStatusItem.Disabled = true

	app.TrayRefreshItem = fyne.NewMenuItem(app.GetMsg(config.TKeyMenuRefresh), func() {
		go app.performRefresh(true)
	})

	app.Menu = fyne.NewMenu(config.AppName,
		app.TrayStatusItem,
		fyne.NewMenuItemSeparator(),
		app.TrayRefreshItem,
	)

	if app.Tray != nil {
		app.Tray.SetSystemTrayMenu(app.Menu)
	}
}

// backgroundWorker refreshes on start and then on the layout interval.
func (app *SiouxMenuApp) backgroundWorker() {
	s := &worker.Scheduler{
		Interval: app.Interval,
		Job:      func(context.Context) { app.performRefresh(false) },
	}
	if err := s.Run(app.Ctx); err != nil {
		slog.Error(config.ErrCronSchedule,
			config.LogKeyComponent, config.CompWorker,
			config.LogKeyError, err)
	}
}

// performRefresh scrapes the portal again and rebuilds the tray menu.
// Only one refresh runs at a time.
func (app *SiouxMenuApp) performRefresh(manual bool) {
	app.refreshMut.Lock()
	defer app.refreshMut.Unlock()

	slog.Info(config.MsgRefreshReq,
		config.LogKeyComponent, config.CompUI,
		config.LogKeyManual, manual)

	res, err := app.Builder.Refresh(app.Ctx)
	if err != nil {
		slog.Error(config.MsgRefreshFailed, config.LogKeyError, err, config.LogKeyComponent, config.CompUI)
		if manual {
			app.App.SendNotification(fyne.NewNotification(config.TitleRefreshError, app.GetMsg(config.TKeyNotifError)))
		}
		fyne.Do(func() { app.updateTrayStatus(-1) })
		return
	}

	app.viewMut.Lock()
	app.view = res.View
	app.viewMut.Unlock()

	if app.Server != nil {
		app.Server.Update(res.Calendar, res.Text)
	}

	fyne.Do(func() {
		app.rebuildMenu(res.View)
		app.updateTrayStatus(res.View.BirthdaysToday)
	})
}

// View returns the view of the last successful refresh, or nil.
func (app *SiouxMenuApp) View() *menu.View {
	app.viewMut.RLock()
	defer app.viewMut.RUnlock()
	return app.view
}

// rebuildMenu lays out the same sections as the text menu.
func (app *SiouxMenuApp) rebuildMenu(v *menu.View) {
	if app.Menu == nil {
		return
	}

	items := []*fyne.MenuItem{app.TrayStatusItem, fyne.NewMenuItemSeparator()}

	for _, e := range v.Events {
		items = append(items, app.label(e.Heading), app.link(e.Title, e.URL), app.label(e.When), app.label(e.Location))
		if e.Category != "" {
			items = append(items, app.label(e.Category))
		}
		items = append(items, fyne.NewMenuItemSeparator())
	}

	if len(v.Birthdays) > 0 {
		items = append(items, app.label(v.BirthdayTitle))
		for _, b := range v.Birthdays {
			items = append(items, app.link(app.birthdayLine(b), b.URL))
		}
		items = append(items, fyne.NewMenuItemSeparator())
	}

	items = append(items,
		app.link(app.GetMsg(config.TKeyMenuOverview), v.OverviewURL),
		fyne.NewMenuItemSeparator(),
		app.link(app.GetMsg(config.TKeyMenuIntranet), v.IntranetURL),
		app.link(app.GetMsg(config.TKeyMenuWebmail), v.WebmailURL),
		fyne.NewMenuItemSeparator(),
		app.TrayRefreshItem,
	)

	app.Menu.Items = items
	app.Menu.Refresh()
	if app.Tray != nil {
		app.Tray.SetSystemTrayMenu(app.Menu)
	}
}

func (app *SiouxMenuApp) label(text string) *fyne.MenuItem {
	item := fyne.NewMenuItem(text, nil)
	item.Disabled = true
	return item
}

// link opens target when clicked; an empty or malformed target gives a plain label.
func (app *SiouxMenuApp) link(text, target string) *fyne.MenuItem {
	if target == "" {
		return app.label(text)
	}
	u, err := url.Parse(target)
	if err != nil {
		return app.label(text)
	}
	return fyne.NewMenuItem(text, func() {
		slog.Debug(config.MsgOpenURL,
			config.LogKeyComponent, config.CompUI,
			config.LogKeyURL, target)
		if err := app.OpenURL(u); err != nil {
			slog.Warn(config.MsgOpenURL,
				config.LogKeyComponent, config.CompUI,
				config.LogKeyError, err)
		}
	})
}

// birthdayLine localizes a birthday entry.
func (app *SiouxMenuApp) birthdayLine(b menu.BirthdayItem) string {
	if b.Age == nil {
		return app.localize(config.TKeyBdayLine, map[string]interface{}{"Name": b.Name, "Date": b.Date}, nil)
	}
	age := b.Age.String()
	if !b.Age.Known {
		age = app.GetMsg(config.TKeyAgeUnknown)
	}
	return app.localize(config.TKeyBdayLineAge, map[string]interface{}{"Name": b.Name, "Date": b.Date, "Age": age}, nil)
}

// updateTrayStatus shows how many colleagues have their birthday today.
func (app *SiouxMenuApp) updateTrayStatus(count int) {
	if app.Menu == nil || app.TrayStatusItem == nil {
		return
	}

	var label string
	switch {
	case count < 0:
		label = app.GetMsg(config.TKeyTrayError)
		if label == config.TKeyTrayError {
			label = config.FallbackTrayError
		}
	case count == 0:
		label = app.GetMsg(config.TKeyTrayStatusZero)
		if label == config.TKeyTrayStatusZero {
			label = fmt.Sprintf(config.FallbackTrayDefault, 0)
		}
	default:
		label = app.localize(config.TKeyTrayStatus, map[string]interface{}{"Count": count}, count)
		if label == config.TKeyTrayStatus {
			label = fmt.Sprintf(config.FallbackTrayDefault, count)
		}
	}

	app.TrayStatusItem.Label = label
	app.Menu.Refresh()
}
