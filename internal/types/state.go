package types

// SnapshotValidity tells whether an entity-set snapshot came from a
// successful live read this cycle or was carried over from the fallback
// store after a failed one.
type SnapshotValidity string

const (
	ValidityFresh SnapshotValidity = "FRESH"
	ValidityStale SnapshotValidity = "STALE"
)

func (v SnapshotValidity) String() string {
	return string(v)
}

// TriState is the answer of an aggregate predicate over a possibly-empty
// entity set. An empty set is a distinct state, not true and not false;
// callers must branch on NoEntities before consulting the boolean value.
type TriState string

const (
	TriNoEntities TriState = "NO_ENTITIES"
	TriTrue       TriState = "TRUE"
	TriFalse      TriState = "FALSE"
)

func (t TriState) String() string {
	return string(t)
}

// Known reports whether the predicate had at least one entity to judge.
func (t TriState) Known() bool {
	return t != TriNoEntities
}

// Bool returns the boolean value and whether it is meaningful.
func (t TriState) Bool() (value bool, known bool) {
	switch t {
	case TriTrue:
		return true, true
	case TriFalse:
		return false, true
	default:
		return false, false
	}
}

func TriFromBool(b bool) TriState {
	if b {
		return TriTrue
	}
	return TriFalse
}
