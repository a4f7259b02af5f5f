package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/ccd/internal"
	pkgconfig "github.com/starford/ccd/pkg/config"
)

// loadConfig resolves the configuration: an explicit --config path wins,
// otherwise the project config discovered by walking up from the working
// directory, otherwise defaults.
func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()

	configPath := cmd.String("config")
	if configPath != "" {
		if err := pkgconfig.Load(configPath, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
		return cfg, nil
	}

	if found, ok := pkgconfig.FindProjectConfig("."); ok {
		if err := pkgconfig.Load(found, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
		return cfg, nil
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// newLogger builds the CLI logger. Batch commands log to stderr so report
// output on stdout stays machine-readable.
func newLogger(cfg *internal.Config) *slog.Logger {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)
	return logger
}

func main() {
	cmd := &cli.Command{
		Name:  "ccd",
		Usage: "Context annotation and health engine: link source files to documentation artifacts and validate freshness, coverage, and drift",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to config file (discovered from the project root when omitted)",
				Sources: cli.EnvVars("CCD_CONFIG_FILE"),
			},
		},
		Commands: []*cli.Command{
			scanCommand(),
			validateCommand(),
			coverageCommand(),
			writeCommand(),
			reportCommand(),
			serveCommand(),
			monitorCommand(),
			mcpCommand(),
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		cli.HandleExitCoder(err)
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
