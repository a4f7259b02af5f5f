// Package resolve cross-references source file annotations against the
// artifact registry.
package resolve

import (
	"fmt"
	"path/filepath"

	"github.com/starford/ccd/internal/models"
	"github.com/starford/ccd/internal/registry"
)

// Resolution is the outcome of cross-referencing one source file.
type Resolution struct {
	// Artifact is the referenced artifact when the reference resolved.
	Artifact *models.Artifact
	// Resolved is true when the annotation's artifactRef points at a known
	// artifact. Completeness is reported separately through Issues.
	Resolved bool
	// Asymmetric is true when the artifact declares consumers but does not
	// list this file among them.
	Asymmetric bool
	Issues     []models.ValidationIssue
}

// Resolve validates the annotation of file against reg. It never fails:
// every problem is recorded as an issue on the returned Resolution.
func Resolve(file *models.SourceFile, reg *registry.Registry) Resolution {
	var res Resolution

	switch file.State {
	case models.StateUnsupported:
		// Not an issue: unsupported files are tallied separately and
		// excluded from coverage math.
		return res
	case models.StateAbsent:
		res.Issues = append(res.Issues, models.ValidationIssue{
			Scope:    models.ScopeFile,
			Severity: models.SeverityWarning,
			Code:     models.CodeAnnotationAbsent,
			Message:  "no annotation block found",
			Path:     file.Path,
		})
		return res
	}

	ann := file.Annotation
	if missing := ann.MissingFields(); len(missing) > 0 {
		res.Issues = append(res.Issues, models.ValidationIssue{
			Scope:    models.ScopeFile,
			Severity: models.SeverityError,
			Code:     models.CodeAnnotationIncomplete,
			Message:  fmt.Sprintf("missing required fields: %v", missing),
			Path:     file.Path,
		})
	}

	if ann.ArtifactRef == "" {
		return res
	}

	art, ok := reg.Lookup(ann.ArtifactRef)
	if !ok {
		res.Issues = append(res.Issues, models.ValidationIssue{
			Scope:    models.ScopeFile,
			Severity: models.SeverityError,
			Code:     models.CodeUnresolvedReference,
			Message:  fmt.Sprintf("artifact %q not found in registry", ann.ArtifactRef),
			Path:     file.Path,
		})
		return res
	}

	res.Artifact = art
	res.Resolved = true

	// Dependencies are advisory: documentation may reference artifacts not
	// yet tracked, so unresolved ones warn instead of erroring.
	for _, dep := range art.Dependencies {
		if _, found := reg.Lookup(dep); !found {
			res.Issues = append(res.Issues, models.ValidationIssue{
				Scope:    models.ScopeArtifact,
				Severity: models.SeverityWarning,
				Code:     models.CodeDanglingDependency,
				Message:  fmt.Sprintf("declared dependency %q not found in registry", dep),
				Path:     art.ID,
			})
		}
	}

	if len(art.Consumers) > 0 && !listsConsumer(art.Consumers, file.Path) {
		res.Asymmetric = true
		res.Issues = append(res.Issues, models.ValidationIssue{
			Scope:    models.ScopeFile,
			Severity: models.SeverityWarning,
			Code:     models.CodeReferenceAsymmetry,
			Message:  fmt.Sprintf("artifact %q does not list this file as a consumer", art.ID),
			Path:     file.Path,
		})
	}

	return res
}

func listsConsumer(consumers []string, path string) bool {
	want := filepath.ToSlash(path)
	for _, c := range consumers {
		if filepath.ToSlash(filepath.Clean(c)) == want {
			return true
		}
	}
	return false
}
