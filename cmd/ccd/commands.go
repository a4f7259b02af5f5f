package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/starford/ccd/internal"
	"github.com/starford/ccd/internal/annotation"
	"github.com/starford/ccd/internal/apperr"
	"github.com/starford/ccd/internal/baseline"
	"github.com/starford/ccd/internal/engine"
	"github.com/starford/ccd/internal/mcpserver"
	"github.com/starford/ccd/internal/models"
	"github.com/starford/ccd/internal/monitor"
	"github.com/starford/ccd/internal/report"
	"github.com/starford/ccd/internal/storage"
	"github.com/starford/ccd/internal/syntax"
)

// Exit codes. Automated callers distinguish misconfiguration (no eligible
// files) from genuine validation failures.
const (
	exitValidationFailed = 1
	exitNoEligibleFiles  = 2
)

// buildEngine wires an engine from config, opening the baseline store when
// one is configured. The returned closer is nil when no store was opened.
func buildEngine(cfg *internal.Config, logger *slog.Logger) (*engine.Engine, func(), error) {
	var store *baseline.Store
	closer := func() {}
	if cfg.Baseline.Path != "" {
		var err error
		store, err = baseline.Open(cfg.Baseline.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("init baseline: %w", err)
		}
		closer = func() { store.Close() }
	}

	eng, err := engine.New(engine.Options{
		SourceRoot: cfg.Source.Root,
		DocsRoot:   cfg.Docs.Root,
		Exclude:    cfg.Source.Exclude,
		Threshold:  cfg.Health.StalenessThreshold,
		Tolerance:  cfg.Health.DriftTolerance,
		Baseline:   store,
		Logger:     logger,
	})
	if err != nil {
		closer()
		return nil, nil, err
	}
	return eng, closer, nil
}

func scanCommand() *cli.Command {
	return &cli.Command{
		Name:      "scan",
		Usage:     "Report per-file annotation state without validating references",
		ArgsUsage: "[paths...]",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "json", Usage: "Emit JSON instead of text"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			newLogger(cfg)

			store, err := storage.NewFS(cfg.Source.Root, cfg.Source.Exclude)
			if err != nil {
				return err
			}
			files, err := store.List("")
			if err != nil {
				return err
			}
			files = filterPaths(files, cmd.Args().Slice())

			for i := range files {
				cs, supported := syntax.Lookup(files[i].Extension)
				if !supported {
					files[i].State = models.StateUnsupported
					continue
				}
				data, readErr := store.Read(files[i].Path)
				if readErr != nil {
					files[i].State = models.StateAbsent
					continue
				}
				if rec, found := annotation.Scan(data, cs); found {
					files[i].State = models.StatePresent
					files[i].Annotation = rec
				} else {
					files[i].State = models.StateAbsent
				}
			}

			if cmd.Bool("json") {
				return json.NewEncoder(os.Stdout).Encode(files)
			}
			fmt.Print(report.FormatFileStates(files))
			return nil
		},
	}
}

func validateCommand() *cli.Command {
	return &cli.Command{
		Name:      "validate",
		Usage:     "Run the full validation pipeline and fail on error-severity issues",
		ArgsUsage: "[paths...]",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "json", Usage: "Emit the repository report as JSON"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			logger := newLogger(cfg)

			eng, closer, err := buildEngine(cfg, logger)
			if err != nil {
				return err
			}
			defer closer()

			result, err := eng.Run(ctx, cmd.Args().Slice())
			if err != nil {
				return err
			}
			if result.EligibleFiles() == 0 {
				return cli.Exit(fmt.Sprintf("%v under %s", apperr.ErrNoEligibleFiles, cfg.Source.Root), exitNoEligibleFiles)
			}

			if cmd.Bool("json") {
				if err := json.NewEncoder(os.Stdout).Encode(result.Repo); err != nil {
					return err
				}
			} else {
				fmt.Print(report.FormatText(result.Repo, result.Modules))
			}

			if err := eng.RecordBaselines(result); err != nil {
				logger.Warn("baseline update failed", slog.String("error", err.Error()))
			}

			if result.HasErrors() {
				return cli.Exit("validation failed: error-severity issues present", exitValidationFailed)
			}
			return nil
		},
	}
}

func coverageCommand() *cli.Command {
	return &cli.Command{
		Name:  "coverage",
		Usage: "Show annotation coverage per module",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			logger := newLogger(cfg)

			eng, closer, err := buildEngine(cfg, logger)
			if err != nil {
				return err
			}
			defer closer()

			result, err := eng.Run(ctx, nil)
			if err != nil {
				return err
			}
			if result.EligibleFiles() == 0 {
				return cli.Exit(fmt.Sprintf("%v under %s", apperr.ErrNoEligibleFiles, cfg.Source.Root), exitNoEligibleFiles)
			}

			fmt.Printf("Repository coverage: %.1f%% (%d/%d files)\n",
				result.Repo.Coverage*100, result.Repo.AnnotatedFiles, result.EligibleFiles())
			for _, m := range result.Modules {
				fmt.Printf("  %-24s %5.1f%%  (%d/%d)\n",
					m.Name, m.Coverage*100, m.AnnotatedFiles, m.TotalFiles-m.UnsupportedFiles)
			}
			return nil
		},
	}
}

func writeCommand() *cli.Command {
	return &cli.Command{
		Name:      "write",
		Usage:     "Insert or replace the annotation block in a source file",
		ArgsUsage: "<path>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "artifact", Usage: "Artifact path relative to the documentation root", Required: true},
			&cli.StringFlag{Name: "health", Usage: "Declared health score (0-100)", Value: "100"},
			&cli.StringFlag{Name: "owner", Usage: "Owning team or person"},
			&cli.StringSliceFlag{Name: "dep", Usage: "Artifact dependency (repeatable)"},
			&cli.StringSliceFlag{Name: "tag", Usage: "Tag (repeatable)"},
			&cli.BoolFlag{Name: "force", Usage: "Replace an existing annotation block"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			newLogger(cfg)

			if cmd.Args().Len() != 1 {
				return fmt.Errorf("expected exactly one path argument")
			}
			path := cmd.Args().First()

			cs, supported := syntax.LookupPath(path)
			if !supported {
				return fmt.Errorf("%w: %s", apperr.ErrUnsupportedSyntax, filepath.Ext(path))
			}

			content, err := os.ReadFile(path)
			if err != nil {
				return err
			}

			healthScore, err := strconv.Atoi(cmd.String("health"))
			if err != nil || healthScore < 0 || healthScore > 100 {
				return fmt.Errorf("health must be an integer in [0,100]: %q", cmd.String("health"))
			}

			rec := &models.AnnotationRecord{
				ArtifactRef:  cmd.String("artifact"),
				Freshness:    time.Now().UTC().Truncate(time.Second),
				Health:       healthScore,
				Dependencies: cmd.StringSlice("dep"),
				Tags:         cmd.StringSlice("tag"),
				Owner:        cmd.String("owner"),
			}

			out, err := annotation.Write(content, cs, rec, cmd.Bool("force"))
			if err != nil {
				if errors.Is(err, apperr.ErrAlreadyPresent) {
					return cli.Exit(fmt.Sprintf("%s: annotation already present (use --force to replace)", path), exitValidationFailed)
				}
				return err
			}

			// Atomic replace through the storage layer.
			abs, err := filepath.Abs(path)
			if err != nil {
				return err
			}
			fsStore, err := storage.NewFS(filepath.Dir(abs), nil)
			if err != nil {
				return err
			}
			if err := fsStore.Write(filepath.Base(abs), out); err != nil {
				return err
			}
			fmt.Printf("annotated %s -> %s\n", path, rec.ArtifactRef)
			return nil
		},
	}
}

func reportCommand() *cli.Command {
	return &cli.Command{
		Name:  "report",
		Usage: "Produce a serialized health report",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "scope", Usage: "Report scope: repo or module", Value: "repo"},
			&cli.StringFlag{Name: "format", Usage: "Output format: text, json, or yaml", Value: "text"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			logger := newLogger(cfg)

			eng, closer, err := buildEngine(cfg, logger)
			if err != nil {
				return err
			}
			defer closer()

			result, err := eng.Run(ctx, nil)
			if err != nil {
				return err
			}

			var payload any
			switch cmd.String("scope") {
			case "module":
				payload = result.Modules
			case "repo", "repository":
				payload = result.Repo
			default:
				return fmt.Errorf("unknown scope: %s", cmd.String("scope"))
			}

			switch cmd.String("format") {
			case "json":
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(payload)
			case "yaml":
				return yaml.NewEncoder(os.Stdout).Encode(payload)
			case "text":
				fmt.Print(report.FormatText(result.Repo, result.Modules))
				return nil
			default:
				return fmt.Errorf("unknown format: %s", cmd.String("format"))
			}
		},
	}
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the latest health report over HTTP with live updates",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			return internal.Serve(ctx, internal.WithConfig(cfg))
		},
	}
}

func monitorCommand() *cli.Command {
	return &cli.Command{
		Name:  "monitor",
		Usage: "Watch the source and docs trees and revalidate on change",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			logger := newLogger(cfg)

			eng, closer, err := buildEngine(cfg, logger)
			if err != nil {
				return err
			}
			defer closer()

			roots := []string{cfg.Source.Root, cfg.Docs.Root}
			return monitor.Watch(ctx, eng, roots, 500*time.Millisecond, logger, nil,
				func(result *engine.Result) {
					fmt.Printf("health %.1f  coverage %.1f%%  issues %d\n",
						result.Repo.AverageHealth, result.Repo.Coverage*100, len(result.Repo.Issues))
					if err := eng.RecordBaselines(result); err != nil {
						logger.Warn("baseline update failed", slog.String("error", err.Error()))
					}
				})
		},
	}
}

func mcpCommand() *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "Run the MCP server on stdio",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			logger := newLogger(cfg)

			eng, closer, err := buildEngine(cfg, logger)
			if err != nil {
				return err
			}
			defer closer()

			return mcpserver.New(eng).ServeStdio()
		},
	}
}

// filterPaths restricts files to the given source-relative prefixes.
func filterPaths(files []models.SourceFile, paths []string) []models.SourceFile {
	if len(paths) == 0 {
		return files
	}
	var out []models.SourceFile
	for _, f := range files {
		for _, p := range paths {
			p = filepath.ToSlash(filepath.Clean(p))
			if f.Path == p || len(f.Path) > len(p) && f.Path[:len(p)+1] == p+"/" {
				out = append(out, f)
				break
			}
		}
	}
	return out
}
