package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/m3rciful/habitbot/core/logger"
)

// DocumentOptions configure a typed document.
type DocumentOptions[T any] struct {
	// Name is the document key; its extension selects the codec unless Codec is set.
	Name  string
	Codec Codec
	// Default builds the shape used when the document does not exist yet.
	Default func() T
	// Normalize repairs partially populated documents after decoding.
	Normalize func(*T)
}

// Document is a typed view over one named document. Update runs the whole
// load-mutate-save sequence under the document's write lock; Read takes the
// read lock so concurrent readers never observe a half-written save.
type Document[T any] struct {
	mu        sync.RWMutex
	backend   Backend
	name      string
	codec     Codec
	defaults  func() T
	normalize func(*T)
}

// NewDocument binds a backend to a document name.
func NewDocument[T any](backend Backend, opts DocumentOptions[T]) (*Document[T], error) {
	if backend == nil {
		return nil, fmt.Errorf("store: nil backend for %q", opts.Name)
	}
	if err := validateName(opts.Name); err != nil {
		return nil, err
	}
	codec := opts.Codec
	if codec == nil {
		codec = CodecFor(opts.Name)
	}
	defaults := opts.Default
	if defaults == nil {
		defaults = func() T {
			var zero T
			return zero
		}
	}
	return &Document[T]{
		backend:   backend,
		name:      opts.Name,
		codec:     codec,
		defaults:  defaults,
		normalize: opts.Normalize,
	}, nil
}

// Name returns the document key.
func (d *Document[T]) Name() string { return d.name }

// Read loads the document, falling back to the default shape when it is missing.
func (d *Document[T]) Read(ctx context.Context) (T, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.loadLocked(ctx)
}

// Update loads the document, applies fn and saves the result. Nothing is
// written when fn returns an error.
func (d *Document[T]) Update(ctx context.Context, fn func(*T) error) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	start := time.Now()
	doc, err := d.loadLocked(ctx)
	if err != nil {
		return err
	}
	if err := fn(&doc); err != nil {
		return err
	}
	if err := d.saveLocked(ctx, doc); err != nil {
		return err
	}
	logger.Debug(ctx, "store", "document.update",
		slog.String("status", "ok"),
		slog.String("doc", d.name),
		slog.Duration("duration", logger.RoundMS(time.Since(start))),
	)
	return nil
}

// Raw returns the encoded form of the current document, defaults included.
func (d *Document[T]) Raw(ctx context.Context) ([]byte, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	doc, err := d.loadLocked(ctx)
	if err != nil {
		return nil, err
	}
	data, err := d.codec.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", d.name, err)
	}
	return data, nil
}

func (d *Document[T]) loadLocked(ctx context.Context) (T, error) {
	data, err := d.backend.Load(ctx, d.name)
	if errors.Is(err, ErrNotFound) {
		logger.Debug(ctx, "store", "document.default",
			slog.String("status", "ok"),
			slog.String("doc", d.name),
		)
		doc := d.defaults()
		if d.normalize != nil {
			d.normalize(&doc)
		}
		return doc, nil
	}
	if err != nil {
		var zero T
		return zero, err
	}

	doc := d.defaults()
	if len(data) > 0 {
		if err := d.codec.Unmarshal(data, &doc); err != nil {
			var zero T
			return zero, fmt.Errorf("decode %s (%s): %w", d.name, d.codec.Name(), err)
		}
	}
	if d.normalize != nil {
		d.normalize(&doc)
	}
	return doc, nil
}

func (d *Document[T]) saveLocked(ctx context.Context, doc T) error {
	data, err := d.codec.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode %s: %w", d.name, err)
	}
	if err := d.backend.Save(ctx, d.name, data); err != nil {
		logger.Error(ctx, "store", "document.save",
			slog.String("status", "fail"),
			slog.String("doc", d.name),
			slog.String("err", err.Error()),
		)
		return err
	}
	return nil
}
