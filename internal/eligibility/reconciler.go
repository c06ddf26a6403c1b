package eligibility

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/stakelens/stakesync/internal/clients/chainclient"
	"github.com/stakelens/stakesync/internal/observability/metrics"
)

// View is the derived eligibility of one unit. ChainExact replicates the
// ledger's own predicate and gates anything transactional; Display may
// additionally apply the activity window for friendlier UI framing. The
// two are deliberately kept separate: collapsing them hides the very
// disagreements this component exists to surface.
type View struct {
	UnitID     uint64
	ChainExact bool
	Display    bool
	Mismatch   bool
	// WindowExpiresAt is when the display window closes; zero when the
	// activity marker was never set.
	WindowExpiresAt time.Time
}

// Diagnostic records one disagreement between the chain-exact and the
// display predicate, with enough raw material to reconcile it later.
type Diagnostic struct {
	UnitID         uint64    `json:"unit_id"`
	ChainExact     bool      `json:"chain_exact"`
	Display        bool      `json:"display"`
	LastActionAt   int64     `json:"last_action_at"`
	WindowSeconds  int64     `json:"window_seconds"`
	ObservedAt     time.Time `json:"observed_at"`
}

// DiagnosticSink receives mismatch diagnostics. Implementations must not
// block the sync cycle; publishing errors are theirs to absorb.
type DiagnosticSink interface {
	ReportMismatch(ctx context.Context, d Diagnostic)
}

type Reconciler struct {
	sink DiagnosticSink
}

// NewReconciler returns a reconciler reporting mismatches to the given
// sink. A nil sink limits reporting to logs and metrics.
func NewReconciler(sink DiagnosticSink) *Reconciler {
	return &Reconciler{sink: sink}
}

// Reconcile derives both eligibility predicates from a unit's raw status.
//
// The ledger only checks that the activity marker was ever set; it does
// not apply the window. The window is a client-side derivation used for
// countdowns. Getting ChainExact wrong makes submitted transactions fail
// even though the UI showed them as eligible, so it must mirror the
// ledger predicate exactly.
func (r *Reconciler) Reconcile(
	ctx context.Context,
	status chainclient.UnitStatus,
	window time.Duration,
	now time.Time,
) View {
	chainExact := status.LastActionAt != 0

	var display bool
	var expiresAt time.Time
	if status.LastActionAt != 0 {
		expiresAt = time.Unix(status.LastActionAt, 0).Add(window)
		display = now.Before(expiresAt)
	}

	view := View{
		UnitID:          status.UnitID,
		ChainExact:      chainExact,
		Display:         display,
		Mismatch:        chainExact != display,
		WindowExpiresAt: expiresAt,
	}

	if view.Mismatch {
		r.reportMismatch(ctx, status, window, now, view)
	}

	return view
}

// RestoredView derives eligibility for an entity restored from the
// durable store. The display predicate needs the activity window, which
// arrives with the first live params read, so it stays false and the
// disagreement is not counted as a mismatch.
func RestoredView(status chainclient.UnitStatus) View {
	return View{
		UnitID:     status.UnitID,
		ChainExact: status.LastActionAt != 0,
	}
}

func (r *Reconciler) reportMismatch(
	ctx context.Context,
	status chainclient.UnitStatus,
	window time.Duration,
	now time.Time,
	view View,
) {
	log.Ctx(ctx).Warn().
		Uint64("unit_id", status.UnitID).
		Bool("chain_exact", view.ChainExact).
		Bool("display", view.Display).
		Int64("last_action_at", status.LastActionAt).
		Dur("window", window).
		Msg("chain-exact and display eligibility disagree")

	metrics.RecordEligibilityMismatch()

	if r.sink != nil {
		r.sink.ReportMismatch(ctx, Diagnostic{
			UnitID:        status.UnitID,
			ChainExact:    view.ChainExact,
			Display:       view.Display,
			LastActionAt:  status.LastActionAt,
			WindowSeconds: int64(window / time.Second),
			ObservedAt:    now,
		})
	}
}
