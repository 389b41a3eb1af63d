package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"fyne.io/fyne/v2/app"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/sammaes/SiouxBelgiumParser/internal/config"
	"github.com/sammaes/SiouxBelgiumParser/internal/menu"
	"github.com/sammaes/SiouxBelgiumParser/internal/server"
	"github.com/sammaes/SiouxBelgiumParser/internal/snapshot"
	"github.com/sammaes/SiouxBelgiumParser/internal/ui"
	"github.com/sammaes/SiouxBelgiumParser/internal/worker"
)

// newRootCmd builds the command tree. Without a subcommand it prints the menu,
// which is what xbar/BitBar runs.
func newRootCmd(opts *options) *cobra.Command {
	root := &cobra.Command{
		Use:           config.CmdRoot,
		Short:         config.DescRoot,
		Version:       config.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			opts.logCloser = setupLogging(opts.debug)
			logStartupInfo(cmd.Name())
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runMenu(cmd.Context(), opts, cmd.OutOrStdout())
		},
	}
	root.SetVersionTemplate(versionString())

	f := root.PersistentFlags()
	f.BoolVar(&opts.debug, config.FlagDebug, false, config.FlagDescDebug)
	f.StringVar(&opts.configDir, config.FlagConfigDir, defaultConfigDir(), config.FlagDescConfigDir)
	f.StringVar(&opts.configStore, config.FlagConfigStore, config.StoreINI, config.FlagDescConfigStore)
	f.StringVar(&opts.data, config.FlagData, config.DataHTTPS, config.FlagDescData)
	f.StringVar(&opts.layoutPath, config.FlagLayout, "", config.FlagDescLayout)
	f.StringVar(&opts.snapshotDir, config.FlagSnapshotDir, ".", config.FlagDescSnapshotDir)
	f.StringVar(&opts.port, config.FlagPort, config.DefaultPort, config.FlagDescPort)
	f.StringVar(&opts.vcard, config.FlagVCard, "", config.FlagDescVCard)

	root.AddCommand(
		&cobra.Command{
			Use:   config.CmdMenu,
			Short: config.DescMenu,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runMenu(cmd.Context(), opts, cmd.OutOrStdout())
			},
		},
		&cobra.Command{
			Use:   config.CmdTray,
			Short: config.DescTray,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runTray(cmd.Context(), opts)
			},
		},
		&cobra.Command{
			Use:   config.CmdServe,
			Short: config.DescServe,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runServe(cmd.Context(), opts)
			},
		},
		newSnapshotCmd(opts),
		&cobra.Command{
			Use:   config.CmdLogin,
			Short: config.DescLogin,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runLogin(opts, cmd.ErrOrStderr())
			},
		},
		newConfigCmd(opts),
	)
	return root
}

func newSnapshotCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{Use: config.CmdSnapshot, Short: config.DescSnapshot}
	cmd.AddCommand(
		&cobra.Command{
			Use:   config.CmdWrite,
			Short: config.DescWrite,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runSnapshotWrite(cmd.Context(), opts)
			},
		},
		&cobra.Command{
			Use:   config.CmdShow,
			Short: config.DescShow,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return showSnapshot(snapshot.New(opts.snapshotDir), cmd.OutOrStdout())
			},
		},
	)
	return cmd
}

func newConfigCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{Use: config.CmdConfig, Short: config.DescConfig}
	cmd.AddCommand(&cobra.Command{
		Use:   config.CmdImport,
		Short: config.DescImport,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return importConfig(opts.configDir, cmd.OutOrStdout())
		},
	})
	return cmd
}

// -----------------------------------------------------------------------------
// Command implementations
// -----------------------------------------------------------------------------

func runMenu(ctx context.Context, opts *options, out io.Writer) error {
	b, err := opts.newBuilder()
	if err != nil {
		return err
	}
	view, err := b.Build(ctx)
	if err != nil {
		return err
	}
	return menu.Render(out, view)
}

func runTray(ctx context.Context, opts *options) error {
	b, err := opts.newBuilder()
	if err != nil {
		return err
	}

	a := app.NewWithID(config.AppID)
	a.Preferences().SetString(config.PrefLastRun, config.Version)

	gui := ui.NewSiouxMenuApp(a, ctx, b, server.NewFeedServer(opts.port))
	gui.Run()
	return nil
}

// runServe refreshes on the layout interval and serves the latest result.
func runServe(ctx context.Context, opts *options) error {
	b, err := opts.newBuilder()
	if err != nil {
		return err
	}
	srv := server.NewFeedServer(opts.port)

	s := &worker.Scheduler{
		Interval: b.Layout.RefreshInterval,
		Job: func(ctx context.Context) {
			res, err := b.Refresh(ctx)
			if err != nil {
				slog.Error(config.MsgRefreshFailed,
					config.LogKeyComponent, config.CompMain,
					config.LogKeyError, err)
				return
			}
			srv.Update(res.Calendar, res.Text)
		},
	}

	schedErr := make(chan error, config.ChannelBufferSize)
	go func() { schedErr <- s.Run(ctx) }()

	if err := srv.Start(ctx); err != nil {
		return err
	}
	return <-schedErr
}

// runSnapshotWrite always scrapes the live portal, whatever --data says.
func runSnapshotWrite(ctx context.Context, opts *options) error {
	settings, err := opts.loadSettings()
	if err != nil {
		return err
	}
	fetcher, err := newFetcher(settings)
	if err != nil {
		return err
	}
	ws, err := webSource(settings, fetcher)
	if err != nil {
		return err
	}

	events, err := ws.RawEvents(ctx)
	if err != nil {
		return err
	}
	birthdays, err := ws.RawBirthdays(ctx)
	if err != nil {
		return err
	}
	return snapshot.New(opts.snapshotDir).Save(events, birthdays)
}

func showSnapshot(store *snapshot.Store, out io.Writer) error {
	events, birthdays, err := store.Load()
	if err != nil {
		return err
	}

	if _, err := fmt.Fprintf(out, config.OutSnapshotHead, len(events), len(birthdays), store.Dir); err != nil {
		return err
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, e := range events {
		when := e.DisplayDate()
		if when == "" {
			when = config.OutNoDate
		}
		fmt.Fprintf(tw, config.OutEventRow, when, e.Title, e.Category, e.Location)
	}
	for _, b := range birthdays {
		fmt.Fprintf(tw, config.OutBirthdayRow, b.Date.Format(config.DateFormatDisplay), b.Name, b.Role, b.RelativeTime)
	}
	return tw.Flush()
}

// runLogin prompts for the intranet password and stores it in the keyring.
func runLogin(opts *options, prompt io.Writer) error {
	src, err := opts.openSource()
	if err != nil {
		return err
	}
	user, err := src.Get(config.SectionAuth, config.KeyUsername)
	if err != nil {
		return err
	}

	fmt.Fprintf(prompt, config.PromptPassword, strings.TrimSpace(user))
	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(prompt)
	if err != nil {
		return fmt.Errorf("%s: %w", config.ErrReadPassword, err)
	}
	password := strings.TrimSpace(string(raw))
	if password == "" {
		return fmt.Errorf("%s: %w", config.ErrReadPassword, errNoPassword)
	}

	if err := config.NewKeyringSource().Set(config.SectionAuth, config.KeyPassword, password); err != nil {
		return err
	}
	slog.Info(config.MsgPassStored,
		config.LogKeyComponent, config.CompMain,
		config.LogKeyUser, strings.TrimSpace(user))
	return nil
}

// importConfig copies config.ini into config.db in the same directory.
func importConfig(dir string, out io.Writer) error {
	ini, err := config.OpenIniSource(filepath.Join(dir, config.ConfigFileName))
	if err != nil {
		return err
	}
	dbPath := filepath.Join(dir, config.ConfigDBName)
	db, err := config.OpenSQLiteSource(dbPath)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	n, err := db.ImportFrom(ini, config.Schema)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(out, config.OutImported, n, dbPath)
	return err
}
