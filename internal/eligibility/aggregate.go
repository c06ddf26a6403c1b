package eligibility

import (
	"slices"

	"github.com/stakelens/stakesync/internal/types"
)

// Aggregate predicates are pure functions over the current view set. An
// empty set yields TriNoEntities, never a boolean answer.

// AllEligible reports whether every unit passes the chain-exact predicate.
func AllEligible(views map[uint64]View) types.TriState {
	if len(views) == 0 {
		return types.TriNoEntities
	}
	for _, v := range views {
		if !v.ChainExact {
			return types.TriFalse
		}
	}
	return types.TriTrue
}

// AnyReady reports whether at least one unit passes the display predicate.
func AnyReady(views map[uint64]View) types.TriState {
	if len(views) == 0 {
		return types.TriNoEntities
	}
	for _, v := range views {
		if v.Display {
			return types.TriTrue
		}
	}
	return types.TriFalse
}

// EligibleIDs returns the sorted ids of units passing the chain-exact
// predicate. Only these may be included in a submission batch.
func EligibleIDs(views map[uint64]View) []uint64 {
	ids := make([]uint64, 0, len(views))
	for id, v := range views {
		if v.ChainExact {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return ids
}
