package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/DavidGamba/go-getoptions"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"

	"github.com/nhle/notifeed/internal/api"
	"github.com/nhle/notifeed/internal/app"
	"github.com/nhle/notifeed/internal/credential"
	"github.com/nhle/notifeed/internal/feed"
	"github.com/nhle/notifeed/internal/i18n"
	"github.com/nhle/notifeed/internal/logger"
	"github.com/nhle/notifeed/internal/metrics"
	"github.com/nhle/notifeed/internal/model"
	"github.com/nhle/notifeed/internal/store"
	"github.com/nhle/notifeed/internal/theme"
)

// commandLineOptionValues holds the values of the command-line options.
type commandLineOptionValues struct {
	Config    string
	Login     bool
	Logout    bool
	Ephemeral bool
}

func parseCommandLine(args []string) *commandLineOptionValues {
	optionValues := &commandLineOptionValues{}
	opt := getoptions.New()

	opt.Bool("help", false, opt.Alias("h", "?"))
	opt.StringVar(&optionValues.Config, "config", model.DefaultConfigPath(),
		opt.Alias("c"),
		opt.Description("the path to the configuration file"))
	opt.BoolVar(&optionValues.Login, "login", false,
		opt.Description("store an API token in the system keyring and exit"))
	opt.BoolVar(&optionValues.Logout, "logout", false,
		opt.Description("remove the stored API token and exit"))
	opt.BoolVar(&optionValues.Ephemeral, "ephemeral", false,
		opt.Description("keep local flags in memory only"))

	_, err := opt.Parse(args)
	if opt.Called("help") {
		fmt.Fprint(os.Stderr, opt.Help())
		os.Exit(0)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n\n", err)
		fmt.Fprint(os.Stderr, opt.Help(getoptions.HelpSynopsis))
		os.Exit(2)
	}

	return optionValues
}

func main() {
	optionValues := parseCommandLine(os.Args[1:])

	if err := run(optionValues); err != nil {
		fmt.Fprintf(os.Stderr, "notifeed: %v\n", err)
		os.Exit(1)
	}
}

func run(opts *commandLineOptionValues) error {
	// A missing .env is normal.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("loading .env: %w", err)
	}

	cfg, err := model.LoadConfig(opts.Config)
	if err != nil {
		return err
	}

	log, logCloser, err := logger.New(cfg.Log)
	if err != nil {
		return err
	}
	defer logCloser.Close()

	if _, err := os.Stat(opts.Config); errors.Is(err, os.ErrNotExist) {
		if err := model.SaveConfig(opts.Config, cfg); err != nil {
			log.WithError(err).Warn("writing default config")
		} else {
			log.WithField("path", opts.Config).Info("wrote default config")
		}
	}

	printer := i18n.New(cfg.Display.Language)
	creds := credential.NewKeyring(model.ConfigDir())

	switch {
	case opts.Login:
		return loginInteractive(creds, printer)
	case opts.Logout:
		if err := creds.Delete(credential.TokenKey); err != nil {
			return fmt.Errorf("removing api token: %w", err)
		}
		fmt.Println(printer.T(i18n.MsgLoggedOut))
		return nil
	}

	theme.Apply(cfg.Display.Theme)

	kv, pending, closer, err := openStorage(cfg, opts.Ephemeral)
	if err != nil {
		return err
	}
	defer closer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.NewCollector(reg)
	if addr := cfg.Metrics.ListenAddr; addr != "" {
		go func() {
			if err := metrics.Serve(ctx, addr, reg, log); err != nil {
				log.WithError(err).WithField("addr", addr).Error("metrics endpoint stopped")
			}
		}()
	}

	client := api.NewClient(api.Config{
		BaseURL:     cfg.API.BaseURL,
		Credentials: credential.NewProvider(creds),
		Timeout:     time.Duration(cfg.API.TimeoutSec) * time.Second,
		RateLimit:   cfg.API.RateLimit,
		Burst:       cfg.API.Burst,
		Language:    printer.Lang(),
		Logger:      log,
	})

	flags := store.OpenFlagStore(ctx, kv, store.FlagOptions{
		MaxEntries: cfg.Feed.MaxFlagEntries,
		Logger:     log,
	})

	sub := feed.New(client, flags, feed.Options{
		PageSize:         model.PageSize,
		PollInterval:     time.Duration(cfg.Feed.PollIntervalSec) * time.Second,
		Pending:          pending,
		RetryMaxAttempts: cfg.Feed.RetryMaxAttempts,
		Recorder:         collector,
		Logger:           log,
	})
	defer sub.Dispose()
	sub.Start(ctx)

	log.WithFields(logrus.Fields{
		"base_url":  cfg.API.BaseURL,
		"ephemeral": opts.Ephemeral,
	}).Info("notifeed started")

	m := app.New(app.Options{
		Feed:        sub,
		Credentials: creds,
		Printer:     printer,
		SiteURL:     cfg.Display.SiteURL,
		Opener:      app.CommandOpener(cfg.Display.OpenCommand),
		Logger:      log,
	})

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("running ui: %w", err)
	}
	return nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// openStorage returns the flag KV and pending-write queue, backed by SQLite
// unless ephemeral is set.
func openStorage(cfg *model.AppConfig, ephemeral bool) (store.KV, store.PendingStore, io.Closer, error) {
	if ephemeral {
		return store.NewMemoryKV(), store.NewMemoryPending(), nopCloser{}, nil
	}

	s, err := store.NewSQLiteStore(cfg.Storage.DBPath)
	if err != nil {
		return nil, nil, nil, err
	}
	return s, s, s, nil
}

// loginInteractive prompts for a token outside the TUI.
func loginInteractive(creds credential.Store, p *i18n.Printer) error {
	var token string
	err := huh.NewInput().
		Title(p.T(i18n.MsgTokenTitle)).
		Description(p.T(i18n.MsgTokenDescription)).
		EchoMode(huh.EchoModePassword).
		Value(&token).
		Validate(credential.Validate).
		Run()
	if err != nil {
		return fmt.Errorf("reading api token: %w", err)
	}

	if err := creds.Set(credential.TokenKey, token); err != nil {
		return fmt.Errorf("saving api token: %w", err)
	}
	fmt.Println(p.T(i18n.MsgSignedIn))
	return nil
}
