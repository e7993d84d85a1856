package main

import (
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"recommender/internal/catalog"
	"recommender/internal/config"
	"recommender/internal/engine"
	"recommender/internal/logging"
	"recommender/internal/service"
)

// app holds what every subcommand needs once flags are parsed.
type app struct {
	cfg     *config.AppConfig
	cfgPath string
	engine  *engine.Engine
	service *service.RecommendService
}

type rootFlags struct {
	configPath  string
	catalogPath string
	logLevel    string
	logFile     string
}

func newRootCmd() *cobra.Command {
	var (
		flags rootFlags
		a     app
	)
	root := &cobra.Command{
		Use:   "recommender",
		Short: "Content-based recommendations over a fixed catalog",
		Long: `Content-based recommendations over a fixed catalog.

Seeds are matched against catalog titles first; anything else is read as a
free-text description. Run without a subcommand to open the interactive browser.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd, flags)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBrowse(cmd, &a)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flags.configPath, "config", "", "Path to YAML config file (defaults to ./config.yaml or ~/.config/recommender/config.yaml)")
	pf.StringVar(&flags.catalogPath, "catalog", "", "Catalog file (.json, .yaml); overrides catalog.path")
	pf.StringVar(&flags.logLevel, "log-level", "", "Log level; overrides logging.level")
	pf.StringVar(&flags.logFile, "log-file", "", "Append logs to this file instead of stderr")

	root.AddCommand(newServeCmd(&a))
	root.AddCommand(newRecommendCmd(&a))
	root.AddCommand(newCatalogCmd(&a))
	return root
}

func (a *app) setup(cmd *cobra.Command, flags rootFlags) error {
	_ = godotenv.Load()

	var err error
	if flags.configPath == "" {
		a.cfg, a.cfgPath, err = config.LoadDefault()
	} else {
		a.cfg, err = config.Load(flags.configPath)
		a.cfgPath = flags.configPath
	}
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if flags.catalogPath != "" {
		a.cfg.Catalog.Path = flags.catalogPath
	}
	if flags.logLevel != "" {
		a.cfg.Logging.Level = flags.logLevel
	}

	var out io.Writer = os.Stderr
	switch {
	case flags.logFile != "":
		f, err := os.OpenFile(flags.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		out = f
	case cmd.Name() == cmd.Root().Name():
		// Log lines would tear the browser's screen.
		out = io.Discard
	}
	logging.Init(logging.Config{Level: a.cfg.Logging.Level, Format: a.cfg.Logging.Format, Output: out})

	a.engine = engine.New(engine.Options{
		Source:         catalog.NewSource(a.cfg.Catalog.Path),
		Iterations:     a.cfg.Engine.Iterations,
		Tolerance:      a.cfg.Engine.Tolerance,
		MetadataWeight: a.cfg.Engine.MetadataWeight,
		Seed:           a.cfg.Engine.Seed,
		Logger:         logging.Logger(),
	})
	a.service = service.NewRecommendService(a.engine, a.cfg.Engine.TopK, logging.Logger())
	logging.Debug().Str("config", a.cfgPath).Str("catalog", a.cfg.Catalog.Path).Msg("configured")
	return nil
}
