// Package store persists named documents that are loaded whole and
// overwritten whole.
//
// A Backend moves raw bytes; a Document binds a backend, a codec and a
// default shape to a Go type and serializes read-modify-write cycles.
package store

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrNotFound is returned by backends when a document has never been saved.
var ErrNotFound = errors.New("store: document not found")

// Backend loads and saves raw document bodies by name.
type Backend interface {
	Load(ctx context.Context, name string) ([]byte, error)
	Save(ctx context.Context, name string, body []byte) error
	Close() error
}

func validateName(name string) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return fmt.Errorf("store: empty document name")
	}
	if trimmed != name || filepath.Base(name) != name || name == "." || name == ".." {
		return fmt.Errorf("store: invalid document name %q", name)
	}
	return nil
}
