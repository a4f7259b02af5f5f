// Package registry builds the in-memory artifact index from a documentation
// directory. The registry is built once per invocation, before any resolution
// work starts, and is read-only afterwards.
package registry

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/starford/ccd/internal/models"
)

// Registry maps normalized artifact ids to their parsed metadata.
type Registry struct {
	root      string
	artifacts map[string]*models.Artifact
	issues    []models.ValidationIssue
}

// Build walks the documentation root exactly once and parses front matter
// from every .md file. Artifacts that fail front-matter parsing are recorded
// as MalformedArtifact issues; only a missing or unwalkable root is fatal, so
// downstream stages can always run against a complete Registry.
func Build(root string, logger *slog.Logger) (*Registry, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("registry: resolve root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("registry: stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("registry: root is not a directory: %s", abs)
	}

	reg := &Registry{
		root:      abs,
		artifacts: make(map[string]*models.Artifact),
	}

	err = filepath.WalkDir(abs, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".md") {
			return nil
		}
		rel, relErr := filepath.Rel(abs, p)
		if relErr != nil {
			return relErr
		}
		id := NormalizeID(rel)

		data, readErr := os.ReadFile(p)
		if readErr != nil {
			logger.Warn("registry: read failed", slog.String("path", id), slog.String("error", readErr.Error()))
			reg.issues = append(reg.issues, models.ValidationIssue{
				Scope:    models.ScopeArtifact,
				Severity: models.SeverityError,
				Code:     models.CodeMalformedArtifact,
				Message:  fmt.Sprintf("cannot read artifact: %v", readErr),
				Path:     id,
			})
			return nil
		}

		fileInfo, infoErr := d.Info()
		if infoErr != nil {
			return infoErr
		}

		raw, body, fmErr := splitFrontMatter(data)
		if fmErr != nil {
			reg.issues = append(reg.issues, models.ValidationIssue{
				Scope:    models.ScopeArtifact,
				Severity: models.SeverityError,
				Code:     models.CodeMalformedArtifact,
				Message:  fmErr.Error(),
				Path:     id,
			})
			return nil
		}

		fm := parseFrontMatter(raw)
		art := &models.Artifact{
			ID:           id,
			Title:        fm.Title,
			Owner:        fm.Owner,
			UpdatedAt:    fm.UpdatedAt,
			Dependencies: fm.Dependencies,
			Tags:         fm.Tags,
			Consumers:    fm.Consumers,
			BodyLength:   len(body),
			Extra:        fm.Extra,
		}
		// An artifact with no recorded update time falls back to its mtime.
		if art.UpdatedAt.IsZero() {
			art.UpdatedAt = fileInfo.ModTime()
		}

		reg.artifacts[id] = art
		logger.Debug("registry: indexed artifact", slog.String("id", id))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("registry: walk: %w", err)
	}

	return reg, nil
}

// NormalizeID canonicalizes an artifact reference so that different path
// spellings resolve to the same key: cleaned, slash-separated, relative.
func NormalizeID(ref string) string {
	id := filepath.ToSlash(filepath.Clean(strings.TrimSpace(ref)))
	id = strings.TrimPrefix(id, "./")
	return id
}

// Lookup returns the artifact for ref after normalization.
func (r *Registry) Lookup(ref string) (*models.Artifact, bool) {
	art, ok := r.artifacts[NormalizeID(ref)]
	return art, ok
}

// Issues returns the per-artifact problems recorded during the build.
func (r *Registry) Issues() []models.ValidationIssue {
	return r.issues
}

// Len returns the number of indexed artifacts.
func (r *Registry) Len() int {
	return len(r.artifacts)
}

// IDs returns every artifact id in sorted order.
func (r *Registry) IDs() []string {
	out := make([]string, 0, len(r.artifacts))
	for id := range r.artifacts {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Root returns the absolute documentation root the registry was built from.
func (r *Registry) Root() string {
	return r.root
}
