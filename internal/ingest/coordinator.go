// Package ingest orchestrates an upload: store the original asset,
// best-effort derive its usdz sibling, hand back a share handle.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"time"

	"github.com/mixtugu/ARization/internal/convert"
	"github.com/mixtugu/ARization/internal/keys"
	"github.com/mixtugu/ARization/internal/storage"
)

var (
	// ErrUnsupportedFormat rejects files outside glb/gltf/obj/fbx/stl.
	// Nothing is written to the store in that case.
	ErrUnsupportedFormat = errors.New("ingest: unsupported file format")

	// ErrStoreConflict surfaces a key collision on the original's
	// no-overwrite put. Only a same-millisecond duplicate upload of an
	// identical filename can produce it; the caller may retry, the
	// coordinator does not.
	ErrStoreConflict = errors.New("ingest: asset key already exists")

	// ErrStoreUnavailable covers every other failure writing the
	// original asset.
	ErrStoreUnavailable = errors.New("ingest: object store unavailable")
)

// VariantOutcome is the explicit result of the secondary, best-effort
// usdz derivation. It never folds into the primary error channel.
type VariantOutcome string

const (
	// VariantCreated: the usdz sibling was derived and stored.
	VariantCreated VariantOutcome = "created"
	// VariantSkipped: the source format is not in the glTF family.
	VariantSkipped VariantOutcome = "skipped"
	// VariantFailed: conversion or the sibling store write failed;
	// the upload itself still succeeded.
	VariantFailed VariantOutcome = "failed"
)

// Receipt is what an upload returns: the share handle plus the
// outcome of the variant derivation.
type Receipt struct {
	Key      string         `json:"key"`
	ShareURL string         `json:"share_url"`
	Variant  VariantOutcome `json:"usdz"`
}

// Coordinator runs the two-phase ingestion. The store and converter
// are constructor-injected so tests can substitute in-memory fakes.
type Coordinator struct {
	store     storage.ObjectStore
	converter convert.Converter
	origin    string

	// now is swappable for deterministic keys in tests.
	now func() time.Time
}

// NewCoordinator wires a coordinator. origin is the public origin the
// share URL is built on (e.g. https://arization.example).
func NewCoordinator(store storage.ObjectStore, converter convert.Converter, origin string) *Coordinator {
	return &Coordinator{
		store:     store,
		converter: converter,
		origin:    origin,
		now:       time.Now,
	}
}

// Ingest validates the upload, stores the original under a fresh
// timestamped key, then tries to derive and store the usdz sibling.
// A derivation failure is logged and reported in the receipt, never
// as an error: the original, Android-viewable asset is the primary
// deliverable and must not be blocked by the iOS enhancement.
func (c *Coordinator) Ingest(ctx context.Context, filename string, data []byte) (Receipt, error) {
	format := keys.FormatOf(filename)
	if !keys.Supported(format) {
		return Receipt{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, filename)
	}

	key := keys.ForUpload(c.now(), filename)
	if err := c.store.Put(ctx, key, data, keys.ContentType(format), false); err != nil {
		if errors.Is(err, storage.ErrKeyExists) {
			return Receipt{}, fmt.Errorf("%w: %s", ErrStoreConflict, key)
		}
		return Receipt{}, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	receipt := Receipt{
		Key:      key,
		ShareURL: ShareURL(c.origin, key),
		Variant:  VariantSkipped,
	}
	if keys.Convertible(format) {
		receipt.Variant = c.deriveVariant(ctx, key, format, data)
	}
	return receipt, nil
}

// deriveVariant is the secondary phase: one conversion attempt and an
// idempotent overwrite put of the sibling.
func (c *Coordinator) deriveVariant(ctx context.Context, key string, format keys.Format, data []byte) VariantOutcome {
	usdzBytes, err := c.converter.Convert(ctx, data, format)
	if err != nil {
		log.Printf("usdz derivation for %q failed, keeping original only: %v", key, err)
		return VariantFailed
	}

	derivedKey := keys.Derived(key)
	if err := c.store.Put(ctx, derivedKey, usdzBytes, keys.ContentType(keys.USDZ), true); err != nil {
		log.Printf("storing usdz sibling %q failed, keeping original only: %v", derivedKey, err)
		return VariantFailed
	}
	log.Printf("Stored usdz sibling %q for %q", derivedKey, key)
	return VariantCreated
}

// ShareURL serializes a share handle into a viewer URL. The key query
// parameter is the whole external contract.
func ShareURL(origin, key string) string {
	return fmt.Sprintf("%s/#/ar?key=%s", origin, url.QueryEscape(key))
}
