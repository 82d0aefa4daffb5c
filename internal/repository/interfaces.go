package repository

import (
	"context"

	"github.com/segyhp/ludoteca/internal/domain"
)

// SnapshotStore persists whole catalog snapshots.
//
// Load decodes each category on its own: a category that is missing or
// malformed comes back empty without affecting the other two, and malformed
// ones are listed in Snapshot.Discarded. Load only returns an error when the
// medium itself cannot be read.
type SnapshotStore interface {
	// Load reads the last saved snapshot. A store that was never written
	// returns an empty snapshot and no error.
	Load(ctx context.Context) (domain.Snapshot, error)

	// Save replaces the stored snapshot.
	Save(ctx context.Context, snapshot domain.Snapshot) error

	// Ping checks that the medium is reachable.
	Ping(ctx context.Context) error

	Close() error
}
