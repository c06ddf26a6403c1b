package db

import (
	"context"

	"github.com/stakelens/stakesync/internal/db/model"
)

type DbInterface interface {
	Ping(ctx context.Context) error
	// GetSnapshot returns the persisted last known-good snapshot of an
	// address, or NotFoundError if none exists.
	GetSnapshot(ctx context.Context, address string) (*model.SnapshotDocument, error)
	// UpsertSnapshot replaces the persisted snapshot of an address.
	// Only fresh, successful reads may be written here.
	UpsertSnapshot(ctx context.Context, doc *model.SnapshotDocument) error
	// DeleteSnapshot removes the persisted snapshot of an address, used
	// when an identity goes away.
	DeleteSnapshot(ctx context.Context, address string) error
}
