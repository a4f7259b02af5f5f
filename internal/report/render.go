package report

import (
	"fmt"
	"strings"

	"github.com/starford/ccd/internal/models"
)

// HealthBand labels a score the way operators read it. Thresholds follow the
// 90/75/60 bands used in the report UI.
func HealthBand(score float64) string {
	switch {
	case score >= 90:
		return "excellent"
	case score >= 75:
		return "good"
	case score >= 60:
		return "fair"
	default:
		return "poor"
	}
}

// FormatText renders the repository report plus module breakdown as plain
// text for terminal output.
func FormatText(repo models.HealthReport, modules []models.HealthReport) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Repository health: %.1f/100 (%s)\n", repo.AverageHealth, HealthBand(repo.AverageHealth))
	fmt.Fprintf(&b, "  Coverage:    %5.1f%%  (%d/%d files annotated)\n",
		repo.Coverage*100, repo.AnnotatedFiles, repo.TotalFiles-repo.UnsupportedFiles)
	fmt.Fprintf(&b, "  Freshness:   %5.1f%%  (%d fresh)\n", repo.FreshnessRatio*100, repo.FreshFiles)
	if repo.UnsupportedFiles > 0 {
		fmt.Fprintf(&b, "  Unsupported: %d file(s) with unrecognized syntax\n", repo.UnsupportedFiles)
	}

	if len(modules) > 1 || (len(modules) == 1 && modules[0].Name != ".") {
		b.WriteString("\nModules:\n")
		for _, m := range modules {
			fmt.Fprintf(&b, "  %-24s health %5.1f  coverage %5.1f%%  fresh %5.1f%%\n",
				m.Name, m.AverageHealth, m.Coverage*100, m.FreshnessRatio*100)
		}
	}

	if len(repo.Issues) > 0 {
		b.WriteString("\nIssues:\n")
		for _, is := range repo.Issues {
			fmt.Fprintf(&b, "  [%s] %s %s: %s\n", is.Severity, is.Code, is.Path, is.Message)
		}
	}

	return b.String()
}

// FormatFileStates renders per-file scan states for the scan command.
func FormatFileStates(files []models.SourceFile) string {
	var b strings.Builder
	for _, f := range files {
		state := string(f.State)
		if f.State == models.StatePresent && f.Annotation != nil && !f.Annotation.Complete() {
			state = "incomplete"
		}
		fmt.Fprintf(&b, "%-12s %s\n", state, f.Path)
	}
	return b.String()
}
