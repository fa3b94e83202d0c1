// Package storage defines the snapshot persistence interface and its implementations.
package storage

import (
	"context"

	"usos_monitor/internal/model"
)

// Storage persists per-category availability snapshots between runs.
type Storage interface {
	// LoadSnapshot returns the snapshot persisted by the previous run for
	// the given category. A category never persisted before returns an
	// empty snapshot, not an error.
	LoadSnapshot(ctx context.Context, categoryCode string) (model.Snapshot, error)

	// SaveSnapshot replaces the persisted snapshot for the given category.
	SaveSnapshot(ctx context.Context, categoryCode string, snap model.Snapshot) error

	Close() error
}
