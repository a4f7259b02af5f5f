// Package models defines the domain types for the context health engine.
package models

import "time"

// HealthUnset marks an annotation whose @health key was absent or unparsable.
const HealthUnset = -1

// Field is one preserved key-value pair from an annotation block.
// Unknown keys are carried through round-trips in their original order.
type Field struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// AnnotationRecord is one parsed (or to-be-written) annotation block linking
// a source file to a documentation artifact.
type AnnotationRecord struct {
	ArtifactRef  string    `json:"artifact_ref"`
	Freshness    time.Time `json:"freshness"`
	Health       int       `json:"health"`
	Dependencies []string  `json:"dependencies,omitempty"`
	Tags         []string  `json:"tags,omitempty"`
	Owner        string    `json:"owner,omitempty"`
	ReviewDate   string    `json:"review_date,omitempty"`
	Status       string    `json:"status,omitempty"`
	Extra        []Field   `json:"extra,omitempty"`
}

// MissingFields returns the required keys that are absent or invalid.
// A health value outside [0,100] counts as missing.
func (r *AnnotationRecord) MissingFields() []string {
	var missing []string
	if r.ArtifactRef == "" {
		missing = append(missing, "file")
	}
	if r.Freshness.IsZero() {
		missing = append(missing, "freshness")
	}
	if r.Health < 0 || r.Health > 100 {
		missing = append(missing, "health")
	}
	return missing
}

// Complete reports whether all required fields are present and valid.
func (r *AnnotationRecord) Complete() bool {
	return len(r.MissingFields()) == 0
}

// RequiredFieldCount is the number of required annotation keys.
const RequiredFieldCount = 3
