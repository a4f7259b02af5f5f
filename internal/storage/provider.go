// Package storage defines the source-tree file-system abstraction.
package storage

import "github.com/starford/ccd/internal/models"

// Provider is the interface for source tree file operations.
type Provider interface {
	// List walks dir (relative to the source root) and returns metadata for
	// every regular file, excluded directories skipped.
	List(dir string) ([]models.SourceFile, error)
	// Read returns the raw bytes of the file at path (relative to root).
	Read(path string) ([]byte, error)
	// Write atomically replaces the content of path (relative to root).
	Write(path string, content []byte) error
}
