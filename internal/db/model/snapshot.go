package model

import "time"

const SnapshotCollection = "entity_snapshot"

// UnitStatusDocument is the persisted raw status of one observed unit.
type UnitStatusDocument struct {
	UnitID       uint64    `bson:"unit_id"`
	StakedAt     int64     `bson:"staked_at"`
	LastActionAt int64     `bson:"last_action_at"`
	ActionCount  uint64    `bson:"action_count"`
	Locked       bool      `bson:"locked"`
	FetchedAt    time.Time `bson:"fetched_at"`
}

// SnapshotDocument is the last known-good entity set of one identity.
// It backs the in-memory fallback store across process restarts.
type SnapshotDocument struct {
	Address   string               `bson:"_id"`
	UnitIDs   []uint64             `bson:"unit_ids"`
	Units     []UnitStatusDocument `bson:"units"`
	FetchedAt time.Time            `bson:"fetched_at"`
}
