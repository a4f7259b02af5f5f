// Package engine orchestrates the one-shot validation pipeline: discover
// source files, build the artifact registry, then scan, resolve, score, and
// drift-check every file across a bounded worker pool before aggregating.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/starford/ccd/internal/annotation"
	"github.com/starford/ccd/internal/baseline"
	"github.com/starford/ccd/internal/drift"
	"github.com/starford/ccd/internal/health"
	"github.com/starford/ccd/internal/models"
	"github.com/starford/ccd/internal/registry"
	"github.com/starford/ccd/internal/report"
	"github.com/starford/ccd/internal/resolve"
	"github.com/starford/ccd/internal/storage"
	"github.com/starford/ccd/internal/syntax"
)

// Options configures one Engine instance. The registry is rebuilt on every
// Run so no state persists across invocations.
type Options struct {
	SourceRoot string
	DocsRoot   string
	Exclude    []string
	Threshold  time.Duration
	Tolerance  time.Duration
	Baseline   *baseline.Store // nil disables confirmed drift
	Now        func() time.Time
	Logger     *slog.Logger
	Workers    int
}

// Engine runs the validation pipeline.
type Engine struct {
	store    *storage.FS
	docsRoot string
	scorer   *health.Scorer
	detector *drift.Detector
	baseline *baseline.Store
	logger   *slog.Logger
	workers  int
}

// Result carries everything one pipeline run produced.
type Result struct {
	Files     []models.FileResult
	Artifacts []models.Artifact
	Repo      models.HealthReport
	Modules   []models.HealthReport
}

// EligibleFiles returns the number of files with a recognized syntax.
func (r *Result) EligibleFiles() int {
	return r.Repo.TotalFiles - r.Repo.UnsupportedFiles
}

// HasErrors reports whether any error-severity issue was recorded.
func (r *Result) HasErrors() bool {
	return models.HasErrors(r.Repo.Issues)
}

// New creates an Engine. When the documentation root sits inside the source
// root its top-level directory is excluded from source discovery so artifact
// files are not scanned as sources.
func New(opts Options) (*Engine, error) {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}

	exclude := append([]string(nil), opts.Exclude...)
	if rel, err := filepath.Rel(opts.SourceRoot, opts.DocsRoot); err == nil && !strings.HasPrefix(rel, "..") && rel != "." {
		exclude = append(exclude, strings.SplitN(filepath.ToSlash(rel), "/", 2)[0])
	}

	store, err := storage.NewFS(opts.SourceRoot, exclude)
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}

	var lookup drift.BaselineLookup
	if opts.Baseline != nil {
		lookup = opts.Baseline
	}

	return &Engine{
		store:    store,
		docsRoot: opts.DocsRoot,
		scorer:   health.NewScorer(opts.Threshold, opts.Now),
		detector: drift.NewDetector(opts.Tolerance, lookup),
		baseline: opts.Baseline,
		logger:   opts.Logger,
		workers:  opts.Workers,
	}, nil
}

// Run executes the pipeline. paths, when non-empty, restricts processing to
// files under those source-relative prefixes. Per-file problems become
// issues on the result; only structural failures (missing roots, walk
// errors) are returned as errors.
func (e *Engine) Run(ctx context.Context, paths []string) (*Result, error) {
	files, err := e.discover(paths)
	if err != nil {
		return nil, err
	}

	// The registry must be complete and immutable before resolution starts.
	reg, err := registry.Build(e.docsRoot, e.logger)
	if err != nil {
		return nil, err
	}

	results := make([]models.FileResult, len(files))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)

	for i := range files {
		g.Go(func() error {
			// Workers finish their current file but stop picking up new
			// work once the deadline passes.
			select {
			case <-gCtx.Done():
				return gCtx.Err()
			default:
			}
			results[i] = e.processFile(reg, files[i])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}

	repo, modules := report.Build(results, reg.Issues())

	artifacts := make([]models.Artifact, 0, reg.Len())
	for _, id := range reg.IDs() {
		if art, ok := reg.Lookup(id); ok {
			artifacts = append(artifacts, *art)
		}
	}

	return &Result{Files: results, Artifacts: artifacts, Repo: repo, Modules: modules}, nil
}

// processFile runs scan, resolve, score, and drift detection for one file.
// Each worker writes only to its own result slot; the registry is read-only.
func (e *Engine) processFile(reg *registry.Registry, file models.SourceFile) models.FileResult {
	cs, supported := syntax.LookupPath(file.Path)
	if !supported {
		file.State = models.StateUnsupported
		e.logger.Debug("engine: unsupported syntax", slog.String("path", file.Path))
		return models.FileResult{File: file, Drift: models.DriftNone}
	}

	content, err := e.store.Read(file.Path)
	if err != nil {
		// The file vanished between discovery and scan; treat as absent.
		e.logger.Warn("engine: read failed", slog.String("path", file.Path), slog.String("error", err.Error()))
		file.State = models.StateAbsent
	} else if rec, found := annotation.Scan(content, cs); found {
		file.State = models.StatePresent
		file.Annotation = rec
	} else {
		file.State = models.StateAbsent
	}

	res := resolve.Resolve(&file, reg)
	score := e.scorer.Score(&file, res)
	driftStatus := e.detector.Detect(&file)

	out := models.FileResult{
		File:     file,
		Resolved: res.Resolved,
		Score:    score,
		Drift:    driftStatus,
		Issues:   res.Issues,
	}
	if res.Artifact != nil {
		out.Artifact = res.Artifact.ID
	}
	return out
}

// discover lists the source tree and filters to the requested prefixes.
func (e *Engine) discover(paths []string) ([]models.SourceFile, error) {
	files, err := e.store.List("")
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}
	if len(paths) == 0 {
		return files, nil
	}

	prefixes := make([]string, 0, len(paths))
	for _, p := range paths {
		prefixes = append(prefixes, filepath.ToSlash(filepath.Clean(p)))
	}
	var out []models.SourceFile
	for _, f := range files {
		for _, p := range prefixes {
			if f.Path == p || strings.HasPrefix(f.Path, p+"/") {
				out = append(out, f)
				break
			}
		}
	}
	return out, nil
}

// RecordBaselines stores the current content hash for every file with a
// resolved, complete annotation and prunes entries for files gone from disk.
// Callers invoke it after a validate run so the next run can confirm drift.
func (e *Engine) RecordBaselines(result *Result) error {
	if e.baseline == nil {
		return nil
	}
	live := make(map[string]struct{}, len(result.Files))
	now := time.Now()
	for _, r := range result.Files {
		live[r.File.Path] = struct{}{}
		if !r.Resolved || r.File.Annotation == nil || !r.File.Annotation.Complete() {
			continue
		}
		if err := e.baseline.Put(r.File.Path, r.File.Checksum, now); err != nil {
			return err
		}
	}
	return e.baseline.Prune(live)
}
