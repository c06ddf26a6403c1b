package engine

import (
	"cmp"
	"slices"
	"time"

	"github.com/stakelens/stakesync/internal/clients/chainclient"
	"github.com/stakelens/stakesync/internal/db/model"
	"github.com/stakelens/stakesync/internal/types"
)

// ObservedEntity is one unit under observation. It is created the first
// time an identity's entity-set read returns it, updated on every
// successful per-unit read, and removed only when a full successful read
// no longer includes it. A single failed read never causes removal.
type ObservedEntity struct {
	ID        uint64
	RawStatus chainclient.UnitStatus
	FetchedAt time.Time
}

// EntitySetSnapshot is the list of unit ids currently attributed to an
// identity. A Stale snapshot is carried over from the fallback store
// because the live read failed; an error is never treated as "zero
// entities", but an empty Fresh result is trusted.
type EntitySetSnapshot struct {
	UnitIDs   []uint64
	Validity  types.SnapshotValidity
	FetchedAt time.Time
}

// Clone returns a defensive copy so consumers can hold the snapshot
// without observing later commits.
func (s EntitySetSnapshot) Clone() EntitySetSnapshot {
	s.UnitIDs = slices.Clone(s.UnitIDs)
	return s
}

func snapshotToDocument(address string, snap EntitySetSnapshot, entities map[uint64]ObservedEntity) *model.SnapshotDocument {
	units := make([]model.UnitStatusDocument, 0, len(entities))
	for _, e := range entities {
		units = append(units, model.UnitStatusDocument{
			UnitID:       e.RawStatus.UnitID,
			StakedAt:     e.RawStatus.StakedAt,
			LastActionAt: e.RawStatus.LastActionAt,
			ActionCount:  e.RawStatus.ActionCount,
			Locked:       e.RawStatus.Locked,
			FetchedAt:    e.FetchedAt,
		})
	}
	slices.SortFunc(units, func(a, b model.UnitStatusDocument) int {
		return cmp.Compare(a.UnitID, b.UnitID)
	})

	return &model.SnapshotDocument{
		Address:   address,
		UnitIDs:   slices.Clone(snap.UnitIDs),
		Units:     units,
		FetchedAt: snap.FetchedAt,
	}
}

func documentToSnapshot(doc *model.SnapshotDocument) (EntitySetSnapshot, map[uint64]ObservedEntity) {
	snap := EntitySetSnapshot{
		UnitIDs: slices.Clone(doc.UnitIDs),
		// Restored data predates this process; it is stale by definition
		// until a live read succeeds.
		Validity:  types.ValidityStale,
		FetchedAt: doc.FetchedAt,
	}

	entities := make(map[uint64]ObservedEntity, len(doc.Units))
	for _, u := range doc.Units {
		entities[u.UnitID] = ObservedEntity{
			ID: u.UnitID,
			RawStatus: chainclient.UnitStatus{
				UnitID:       u.UnitID,
				StakedAt:     u.StakedAt,
				LastActionAt: u.LastActionAt,
				ActionCount:  u.ActionCount,
				Locked:       u.Locked,
			},
			FetchedAt: u.FetchedAt,
		}
	}
	return snap, entities
}
