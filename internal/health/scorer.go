// Package health computes the composite freshness and health score per file.
// Scoring is pure: identical inputs always produce identical scores, with the
// clock injected so runs stay reproducible and testable.
package health

import (
	"time"

	"github.com/starford/ccd/internal/models"
	"github.com/starford/ccd/internal/resolve"
)

// Component weights. They sum to 100.
const (
	WeightValidity     = 30.0
	WeightFreshness    = 30.0
	WeightCompleteness = 25.0
	WeightSymmetry     = 15.0
)

// DefaultStalenessThreshold separates fresh annotations from stale ones.
const DefaultStalenessThreshold = 24 * time.Hour

// DecayFactor stretches the staleness threshold into the horizon over which
// the freshness component decays linearly to zero.
const DecayFactor = 7

// Scorer computes health scores against a fixed threshold and clock.
type Scorer struct {
	threshold time.Duration
	horizon   time.Duration
	now       func() time.Time
}

// NewScorer creates a Scorer. A non-positive threshold falls back to the
// default; a nil clock falls back to time.Now.
func NewScorer(threshold time.Duration, now func() time.Time) *Scorer {
	if threshold <= 0 {
		threshold = DefaultStalenessThreshold
	}
	if now == nil {
		now = time.Now
	}
	return &Scorer{
		threshold: threshold,
		horizon:   time.Duration(DecayFactor) * threshold,
		now:       now,
	}
}

// Threshold returns the configured staleness threshold.
func (s *Scorer) Threshold() time.Duration {
	return s.threshold
}

// Score computes the composite score for one file. A file without an
// annotation scores zero across the board.
func (s *Scorer) Score(file *models.SourceFile, res resolve.Resolution) models.HealthScore {
	var score models.HealthScore
	if file.State != models.StatePresent {
		return score
	}
	ann := file.Annotation

	// Reference validity: full credit only for a clean resolution.
	if res.Resolved && !models.HasErrors(res.Issues) {
		score.Validity = WeightValidity
	}

	// Freshness: age measured from the later of the annotation refresh and
	// the artifact's recorded update.
	ref := ann.Freshness
	if res.Artifact != nil && res.Artifact.UpdatedAt.After(ref) {
		ref = res.Artifact.UpdatedAt
	}
	if !ref.IsZero() {
		score.Age = s.now().Sub(ref)
		score.Freshness = s.freshnessPoints(score.Age)
		score.Fresh = score.Age <= s.threshold
	}

	// Field completeness: proportional credit per required field.
	present := models.RequiredFieldCount - len(ann.MissingFields())
	score.Completeness = WeightCompleteness * float64(present) / float64(models.RequiredFieldCount)

	// Symmetry: full credit when no asymmetry was detected.
	if !res.Asymmetric {
		score.Symmetry = WeightSymmetry
	}

	score.Total = clamp(score.Validity+score.Freshness+score.Completeness+score.Symmetry, 0, 100)
	return score
}

// freshnessPoints gives full credit within the threshold and decays linearly
// to zero at the horizon.
func (s *Scorer) freshnessPoints(age time.Duration) float64 {
	switch {
	case age <= s.threshold:
		return WeightFreshness
	case age >= s.horizon:
		return 0
	default:
		remaining := float64(s.horizon-age) / float64(s.horizon-s.threshold)
		return WeightFreshness * remaining
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
