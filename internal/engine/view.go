package engine

import (
	"cosmossdk.io/math"

	"github.com/stakelens/stakesync/internal/eligibility"
	"github.com/stakelens/stakesync/internal/types"
)

// View is the read-only snapshot exposed to consumers. Every field is a
// copy; holding a View never observes later commits.
type View struct {
	Loading bool
	// Initialized becomes true after the first fresh (or legitimately
	// empty) cycle commits and never flips back on later failures.
	Initialized bool
	LastError   types.ErrorKind
	Entities    EntitySetSnapshot
	Eligibility map[uint64]eligibility.View

	AllEligible types.TriState
	AnyReady    types.TriState
	EligibleIDs []uint64

	// AccruedReward is the extrapolated accrual at call time.
	AccruedReward math.LegacyDec
	AccrualState  string
}
