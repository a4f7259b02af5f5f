package models

import "time"

// Artifact is one documentation unit in the registry, keyed by its path
// relative to the documentation root.
type Artifact struct {
	ID           string         `json:"id"`
	Title        string         `json:"title,omitempty"`
	Owner        string         `json:"owner,omitempty"`
	UpdatedAt    time.Time      `json:"updated_at"`
	Dependencies []string       `json:"dependencies,omitempty"`
	Tags         []string       `json:"tags,omitempty"`
	Consumers    []string       `json:"consumers,omitempty"`
	BodyLength   int            `json:"body_length"`
	Extra        map[string]any `json:"-"`
}
