// Package drift flags files whose code changed after their annotation was
// last refreshed, using only file-system signals.
package drift

import (
	"time"

	"github.com/starford/ccd/internal/models"
)

// DefaultTolerance absorbs clock skew and formatting-only touches before a
// newer mtime counts as drift.
const DefaultTolerance = 2 * time.Second

// BaselineLookup reads previously recorded content hashes. A nil lookup
// degrades the detector to suspected-only verdicts.
type BaselineLookup interface {
	Get(path string) (checksum string, ok bool, err error)
}

// Detector compares a file's on-disk state against its annotation.
type Detector struct {
	tolerance time.Duration
	baseline  BaselineLookup
}

// NewDetector creates a Detector. A non-positive tolerance falls back to the
// default. baseline may be nil.
func NewDetector(tolerance time.Duration, baseline BaselineLookup) *Detector {
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}
	return &Detector{tolerance: tolerance, baseline: baseline}
}

// Detect classifies drift for one file.
//
// A checkout or rebase touches mtime without changing bytes, so the mtime
// signal alone only ever yields "suspected". Only a differing recorded
// content hash upgrades the verdict to "confirmed"; a matching hash clears
// it entirely.
func (d *Detector) Detect(file *models.SourceFile) models.DriftStatus {
	if file.State != models.StatePresent || file.Annotation == nil {
		return models.DriftNone
	}
	freshness := file.Annotation.Freshness
	if freshness.IsZero() {
		// No temporal evidence to compare against.
		return models.DriftNone
	}
	if !file.LastModified.After(freshness.Add(d.tolerance)) {
		return models.DriftNone
	}

	if d.baseline == nil {
		return models.DriftSuspected
	}
	recorded, ok, err := d.baseline.Get(file.Path)
	if err != nil || !ok {
		return models.DriftSuspected
	}
	if recorded != file.Checksum {
		return models.DriftConfirmed
	}
	return models.DriftNone
}
