package engine

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/stakelens/stakesync/internal/db"
)

// fallbackEntry is the last known-good state of one identity.
type fallbackEntry struct {
	snapshot EntitySetSnapshot
	entities map[uint64]ObservedEntity
}

// FallbackStore holds the last known-good entity set of each observed
// identity. It is consulted whenever a live read fails or is ambiguous
// and is only ever written with fresh, successful reads.
//
// A durable store is optional; when present, snapshots survive process
// restarts and are restored as stale until a live read succeeds.
type FallbackStore struct {
	mu      sync.RWMutex
	entries map[string]fallbackEntry
	durable db.DbInterface
}

func NewFallbackStore(durable db.DbInterface) *FallbackStore {
	return &FallbackStore{
		entries: make(map[string]fallbackEntry),
		durable: durable,
	}
}

// Get returns the last known-good state of an address. On a memory miss
// it falls through to the durable store.
func (f *FallbackStore) Get(ctx context.Context, address string) (EntitySetSnapshot, map[uint64]ObservedEntity, bool) {
	f.mu.RLock()
	entry, ok := f.entries[address]
	f.mu.RUnlock()
	if ok {
		return entry.snapshot.Clone(), cloneEntities(entry.entities), true
	}

	if f.durable == nil {
		return EntitySetSnapshot{}, nil, false
	}

	doc, err := f.durable.GetSnapshot(ctx, address)
	if err != nil {
		if !db.IsNotFoundError(err) {
			log.Ctx(ctx).Error().Err(err).Msg("failed to load persisted snapshot")
		}
		return EntitySetSnapshot{}, nil, false
	}

	snapshot, entities := documentToSnapshot(doc)
	f.mu.Lock()
	f.entries[address] = fallbackEntry{snapshot: snapshot, entities: entities}
	f.mu.Unlock()

	return snapshot.Clone(), cloneEntities(entities), true
}

// Put records a fresh, successful read. Stale snapshots must never be
// written here; the fallback store would otherwise launder stale data
// into "known good".
func (f *FallbackStore) Put(ctx context.Context, address string, snapshot EntitySetSnapshot, entities map[uint64]ObservedEntity) {
	f.mu.Lock()
	f.entries[address] = fallbackEntry{
		snapshot: snapshot.Clone(),
		entities: cloneEntities(entities),
	}
	f.mu.Unlock()

	if f.durable == nil {
		return
	}
	// Persistence is best effort: a failed write costs restart warmth,
	// not correctness.
	doc := snapshotToDocument(address, snapshot, entities)
	if err := f.durable.UpsertSnapshot(ctx, doc); err != nil && !db.IsDuplicateKeyError(err) {
		log.Ctx(ctx).Error().Err(err).Msg("failed to persist snapshot")
	}
}

// Clear drops the cached state of an address, used on identity loss.
func (f *FallbackStore) Clear(ctx context.Context, address string) {
	f.mu.Lock()
	delete(f.entries, address)
	f.mu.Unlock()

	if f.durable == nil {
		return
	}
	if err := f.durable.DeleteSnapshot(ctx, address); err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("failed to delete persisted snapshot")
	}
}

func cloneEntities(entities map[uint64]ObservedEntity) map[uint64]ObservedEntity {
	out := make(map[uint64]ObservedEntity, len(entities))
	for id, e := range entities {
		out[id] = e
	}
	return out
}
