package main

import (
	"context"
	"errors"
	"io"
	"os"

	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/alexisbeaulieu97/tokenflow/internal/a11y"
	"github.com/alexisbeaulieu97/tokenflow/internal/bridge"
	"github.com/alexisbeaulieu97/tokenflow/internal/config"
	"github.com/alexisbeaulieu97/tokenflow/internal/infrastructure/events"
	"github.com/alexisbeaulieu97/tokenflow/internal/infrastructure/metrics"
	"github.com/alexisbeaulieu97/tokenflow/internal/logger"
	"github.com/alexisbeaulieu97/tokenflow/internal/ports"
	"github.com/alexisbeaulieu97/tokenflow/internal/preview"
	"github.com/alexisbeaulieu97/tokenflow/internal/relay"
	"github.com/alexisbeaulieu97/tokenflow/internal/token"
	"github.com/alexisbeaulieu97/tokenflow/internal/tui"
)

// AppContext bundles the long-lived services a command needs.
type AppContext struct {
	Config     *config.Config
	ConfigPath string
	Logger     *logger.Logger
	Metrics    *metrics.Collector
	Events     *events.LoggingPublisher
	Surface    *preview.MemorySurface
	Engine     *preview.Engine
	Registry   *token.Registry
	Hub        *relay.Hub
	Relay      *relay.Relay
	Service    *bridge.Service
}

// loadConfig resolves the project file: the --config flag, then a default
// file in the working directory, then the built-in palette.
func loadConfig(flags *rootFlags) (*config.Config, string, error) {
	path := flags.configPath
	if path == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, "", err
		}
		found, ok := config.Discover(wd)
		if !ok {
			return config.Default(), "", nil
		}
		path = found
	}

	cfg, err := config.ParseConfig(path)
	if err != nil {
		return nil, path, err
	}
	return cfg, path, nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// highlight colors source when w is an interactive terminal.
func highlight(w io.Writer, source, language string) string {
	if !isTerminal(w) {
		return source
	}
	return tui.Highlight(source, language, termenv.NewOutput(w).ColorProfile())
}

func newLogger(cfg *config.Config, verbose bool, w io.Writer) (*logger.Logger, error) {
	level := cfg.Logging.Level
	if verbose {
		level = "debug"
	}
	return logger.New(logger.Options{
		Level:         level,
		HumanReadable: cfg.Logging.Human || isTerminal(w),
		Writer:        w,
		Component:     "tokenflow",
	})
}

// buildApp wires the registry, preview engine, relay and bridge from the
// project file and loads its palette onto the surface.
func buildApp(cmd *cobra.Command, flags *rootFlags) (*AppContext, error) {
	cfg, path, err := loadConfig(flags)
	if err != nil {
		return nil, newCommandError(cmd.Name(), "loading configuration", err, "Fix the reported field or pass a different file with --config.")
	}

	log, err := newLogger(cfg, flags.verbose, cmd.ErrOrStderr())
	if err != nil {
		return nil, newCommandError(cmd.Name(), "creating logger", err, "Use one of trace, debug, info, warn or error for logging.level.")
	}

	collector := metrics.NewCollector(log)
	publisher := events.NewLoggingPublisher(log)
	surface := preview.NewMemorySurface()
	engine := preview.NewEngine(surface,
		preview.WithLogger(log),
		preview.WithMetrics(collector),
		preview.WithEvents(publisher),
		preview.WithFrameInterval(cfg.Preview.FrameInterval()),
		preview.WithBudget(cfg.Preview.Budget()),
		preview.WithSampleCapacity(cfg.Preview.SampleCapacity),
	)
	registry := token.NewRegistry(token.Options{
		StylePrefix:  cfg.Preview.StylePrefix,
		CascadeDepth: cfg.Preview.CascadeDepth,
		Logger:       log,
	})
	pairing, err := a11y.ParsePairing(cfg.Preview.ContrastPairing)
	if err != nil {
		return nil, newCommandError(cmd.Name(), "loading configuration", err, "Use all or scoped for preview.contrast_pairing.")
	}
	hub := relay.NewHub(log)
	rel := relay.New(hub, relay.WithLogger(log), relay.WithMetrics(collector), relay.WithTimeout(cfg.Preview.RelayTimeout()))
	service := bridge.New(registry, engine, bridge.Options{
		AutoCorrect: cfg.Preview.AutoCorrect,
		Pairing:     pairing,
		Relay:       rel,
		Events:      publisher,
		Metrics:     collector,
		Logger:      log,
	})

	app := &AppContext{
		Config:     cfg,
		ConfigPath: path,
		Logger:     log,
		Metrics:    collector,
		Events:     publisher,
		Surface:    surface,
		Engine:     engine,
		Registry:   registry,
		Hub:        hub,
		Relay:      rel,
		Service:    service,
	}

	ctx := ports.WithCorrelationID(cmd.Context(), ports.GenerateCorrelationID())
	if err := service.LoadPalette(ctx, cfg.BaseInputs()); err != nil {
		log.Error(err, "palette fell back to safe defaults")
	}
	return app, nil
}

// Reload re-parses the project file and reloads the palette.
func (a *AppContext) Reload(ctx context.Context) (int, error) {
	if a.ConfigPath == "" {
		return 0, errors.New("no project file to reload")
	}
	cfg, err := config.ParseConfig(a.ConfigPath)
	if err != nil {
		return 0, err
	}
	a.Config = cfg
	err = a.Service.LoadPalette(ctx, cfg.BaseInputs())
	return a.Registry.Len(), err
}
