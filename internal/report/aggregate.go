// Package report folds per-file results into module- and repository-level
// coverage, freshness, and health statistics.
package report

import (
	"sort"
	"strings"

	"github.com/starford/ccd/internal/models"
)

// Module returns the module name for a source path: its top-level directory,
// or "." for files at the repository root.
func Module(path string) string {
	p := strings.TrimPrefix(path, "./")
	if i := strings.IndexByte(p, '/'); i >= 0 {
		return p[:i]
	}
	return "."
}

// covered reports whether a file counts toward the coverage numerator: a
// resolved, complete annotation.
func covered(r models.FileResult) bool {
	return r.Resolved && r.File.Annotation != nil && r.File.Annotation.Complete()
}

// ForScope aggregates results into one report. Unsupported files are tallied
// but excluded from every ratio denominator; extra issues (e.g. registry
// build problems) are folded into the issue list.
func ForScope(scope models.Scope, name string, results []models.FileResult, extra []models.ValidationIssue) models.HealthReport {
	rep := models.HealthReport{
		Scope:  scope,
		Name:   name,
		Issues: []models.ValidationIssue{},
	}

	var eligible int
	var healthSum float64
	for _, r := range results {
		rep.TotalFiles++
		if r.File.State == models.StateUnsupported {
			rep.UnsupportedFiles++
			continue
		}
		eligible++
		healthSum += r.Score.Total
		if covered(r) {
			rep.AnnotatedFiles++
		}
		if r.Score.Fresh {
			rep.FreshFiles++
		}
		rep.Issues = append(rep.Issues, r.Issues...)
	}
	rep.Issues = append(rep.Issues, extra...)

	if eligible > 0 {
		rep.Coverage = float64(rep.AnnotatedFiles) / float64(eligible)
		rep.FreshnessRatio = float64(rep.FreshFiles) / float64(eligible)
		rep.AverageHealth = healthSum / float64(eligible)
	}

	models.SortIssues(rep.Issues)
	return rep
}

// Build produces the repository report plus one report per module, modules
// sorted by name for stable output.
func Build(results []models.FileResult, registryIssues []models.ValidationIssue) (models.HealthReport, []models.HealthReport) {
	repo := ForScope(models.ScopeRepository, "repository", results, registryIssues)

	byModule := make(map[string][]models.FileResult)
	for _, r := range results {
		m := Module(r.File.Path)
		byModule[m] = append(byModule[m], r)
	}

	names := make([]string, 0, len(byModule))
	for m := range byModule {
		names = append(names, m)
	}
	sort.Strings(names)

	modules := make([]models.HealthReport, 0, len(names))
	for _, m := range names {
		modules = append(modules, ForScope(models.ScopeModule, m, byModule[m], nil))
	}
	return repo, modules
}
