package models

import "time"

// AnnotationState classifies the scan outcome for one source file.
type AnnotationState string

const (
	// StateUnsupported means the file extension has no known comment syntax.
	// Unsupported files are excluded from coverage math entirely.
	StateUnsupported AnnotationState = "unsupported"
	// StateAbsent means the syntax is known but no annotation block was found.
	StateAbsent AnnotationState = "absent"
	// StatePresent means an annotation block was parsed (it may still be incomplete).
	StatePresent AnnotationState = "present"
)

// SourceFile is one on-disk file eligible for annotation.
type SourceFile struct {
	Path         string            `json:"path"`
	Extension    string            `json:"extension"`
	LastModified time.Time         `json:"last_modified"`
	Checksum     string            `json:"checksum"`
	State        AnnotationState   `json:"state"`
	Annotation   *AnnotationRecord `json:"annotation,omitempty"`
}
