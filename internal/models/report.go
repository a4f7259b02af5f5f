package models

import "time"

// DriftStatus classifies divergence between a file's on-disk state and the
// state recorded in its annotation.
type DriftStatus string

const (
	DriftNone      DriftStatus = "none"
	DriftSuspected DriftStatus = "suspected"
	DriftConfirmed DriftStatus = "confirmed"
)

// HealthScore is the composite 0-100 score for one file, broken down by
// component. Weights: validity 30, freshness 30, completeness 25, symmetry 15.
type HealthScore struct {
	Validity     float64       `json:"validity"`
	Freshness    float64       `json:"freshness"`
	Completeness float64       `json:"completeness"`
	Symmetry     float64       `json:"symmetry"`
	Total        float64       `json:"total"`
	Fresh        bool          `json:"fresh"`
	Age          time.Duration `json:"age"`
}

// FileResult carries everything the pipeline computed for one source file.
type FileResult struct {
	File     SourceFile        `json:"file"`
	Resolved bool              `json:"resolved"`
	Artifact string            `json:"artifact,omitempty"`
	Score    HealthScore       `json:"score"`
	Drift    DriftStatus       `json:"drift"`
	Issues   []ValidationIssue `json:"issues,omitempty"`
}

// HealthReport is the per-scope aggregate produced by the reporter.
type HealthReport struct {
	Scope            Scope             `json:"scope"`
	Name             string            `json:"name"`
	TotalFiles       int               `json:"total_files"`
	AnnotatedFiles   int               `json:"annotated_files"`
	FreshFiles       int               `json:"fresh_files"`
	UnsupportedFiles int               `json:"unsupported_files"`
	Coverage         float64           `json:"coverage"`
	FreshnessRatio   float64           `json:"freshness_ratio"`
	AverageHealth    float64           `json:"average_health"`
	Issues           []ValidationIssue `json:"issues"`
}
