package reward

import (
	"os"
	"testing"
	"time"

	"cosmossdk.io/math"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stakelens/stakesync/internal/observability/metrics"
)

func TestMain(m *testing.M) {
	metrics.Init(19513)
	os.Exit(m.Run())
}

func newTestEstimator(at time.Time) *Estimator {
	e := NewEstimator("addr1", time.Hour)
	e.now = func() time.Time { return at }
	return e
}

func TestEstimator_Extrapolation(t *testing.T) {
	ctx := t.Context()
	baseTime := time.Unix(1_000_000, 0)

	e := newTestEstimator(baseTime)
	e.Update(ctx, Base{
		Amount:            math.LegacyMustNewDecFromStr("100"),
		RatePerUnitPerSec: math.LegacyMustNewDecFromStr("0.01"),
		UnitCount:         5,
		Timestamp:         baseTime,
	})

	// 100 + 0.01 * 5 * 100 = 105
	e.now = func() time.Time { return baseTime.Add(100 * time.Second) }
	assert.Equal(t, "105", e.Current().TruncateInt().String())
	assert.True(t, e.Current().Equal(math.LegacyMustNewDecFromStr("105")))
	assert.Equal(t, StateAccruing, e.State())
}

func TestEstimator_IdleStaysPinnedAtBase(t *testing.T) {
	ctx := t.Context()
	baseTime := time.Unix(1_000_000, 0)

	e := newTestEstimator(baseTime)
	e.Update(ctx, Base{
		Amount:            math.LegacyMustNewDecFromStr("100"),
		RatePerUnitPerSec: math.LegacyMustNewDecFromStr("0.01"),
		UnitCount:         0,
		Timestamp:         baseTime,
	})

	e.now = func() time.Time { return baseTime.Add(24 * time.Hour) }
	assert.True(t, e.Current().Equal(math.LegacyMustNewDecFromStr("100")))
	assert.Equal(t, StateIdle, e.State())
}

func TestEstimator_MonotonicBetweenUpdates(t *testing.T) {
	ctx := t.Context()
	baseTime := time.Unix(1_000_000, 0)

	e := newTestEstimator(baseTime)
	e.Update(ctx, Base{
		Amount:            math.LegacyMustNewDecFromStr("50"),
		RatePerUnitPerSec: math.LegacyMustNewDecFromStr("0.5"),
		UnitCount:         2,
		Timestamp:         baseTime,
	})

	previous := e.Current()
	for _, elapsed := range []time.Duration{time.Second, 10 * time.Second, time.Minute, time.Hour} {
		e.now = func() time.Time { return baseTime.Add(elapsed) }
		current := e.Current()
		require.True(t, current.GTE(previous),
			"estimate regressed from %s to %s at +%s", previous, current, elapsed)
		previous = current
	}
}

func TestEstimator_ClockBeforeBaseClampsToZeroElapsed(t *testing.T) {
	ctx := t.Context()
	baseTime := time.Unix(1_000_000, 0)

	e := newTestEstimator(baseTime.Add(-time.Minute))
	e.Update(ctx, Base{
		Amount:            math.LegacyMustNewDecFromStr("10"),
		RatePerUnitPerSec: math.LegacyMustNewDecFromStr("1"),
		UnitCount:         1,
		Timestamp:         baseTime,
	})

	assert.True(t, e.Current().Equal(math.LegacyMustNewDecFromStr("10")))
}

func TestEstimator_NoBaseReportsZero(t *testing.T) {
	e := NewEstimator("addr1", time.Hour)
	assert.True(t, e.Current().IsZero())
	assert.Equal(t, StateIdle, e.State())
}

func TestEstimator_UpdateMayRegress(t *testing.T) {
	ctx := t.Context()
	baseTime := time.Unix(1_000_000, 0)

	e := newTestEstimator(baseTime)
	e.Update(ctx, Base{
		Amount:            math.LegacyMustNewDecFromStr("100"),
		RatePerUnitPerSec: math.LegacyMustNewDecFromStr("0.01"),
		UnitCount:         1,
		Timestamp:         baseTime,
	})

	// A fresh authoritative read supersedes the local extrapolation
	// even when it moves the value down (logged, not hidden).
	e.Update(ctx, Base{
		Amount:            math.LegacyMustNewDecFromStr("90"),
		RatePerUnitPerSec: math.LegacyMustNewDecFromStr("0.01"),
		UnitCount:         1,
		Timestamp:         baseTime,
	})
	assert.True(t, e.Current().Equal(math.LegacyMustNewDecFromStr("90")))
}
