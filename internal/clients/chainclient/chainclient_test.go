package chainclient

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stakelens/stakesync/internal/config"
)

func testConfig(endpoint string) *config.ChainConfig {
	return &config.ChainConfig{
		Endpoint:      endpoint,
		Timeout:       time.Second,
		MaxRetryTimes: 1,
		RetryInterval: time.Millisecond,
	}
}

func newTestServer(t *testing.T, handler http.HandlerFunc) ChainInterface {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewChainClient(testConfig(srv.URL))
}

func TestGetStakedUnits(t *testing.T) {
	ctx := t.Context()
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/stakers/addr1/units", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"address":  "addr1",
			"unit_ids": []uint64{3, 1, 4},
		})
	})

	ids, err := client.GetStakedUnits(ctx, "addr1")
	require.NoError(t, err)
	assert.Equal(t, []uint64{3, 1, 4}, ids)
}

func TestGetStakedUnits_EmptyAddress(t *testing.T) {
	ctx := t.Context()
	client := NewChainClient(testConfig("http://localhost:0"))

	_, err := client.GetStakedUnits(ctx, "")
	require.Error(t, err)
}

func TestGetStakedUnits_ServerError(t *testing.T) {
	ctx := t.Context()
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	_, err := client.GetStakedUnits(ctx, "addr1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
}

func TestGetUnitStatus(t *testing.T) {
	ctx := t.Context()
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/units/42", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"unit": map[string]any{
				"unit_id":        42,
				"staked_at":      1000,
				"last_action_at": 2000,
				"action_count":   3,
				"locked":         true,
			},
		})
	})

	status, err := client.GetUnitStatus(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), status.UnitID)
	assert.Equal(t, int64(2000), status.LastActionAt)
	assert.Equal(t, uint64(3), status.ActionCount)
	assert.True(t, status.Locked)
}

func TestGetStakingParams(t *testing.T) {
	ctx := t.Context()
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/params", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"activity_window_seconds": 86400,
			"rate_per_unit_per_sec":   "0.01",
		})
	})

	params, err := client.GetStakingParams(ctx)
	require.NoError(t, err)
	assert.Equal(t, 24*time.Hour, params.ActivityWindow)
	assert.Equal(t, "0.01", params.RatePerUnitPerSec.String())
}

func TestGetStakingParams_RejectsBadValues(t *testing.T) {
	ctx := t.Context()

	t.Run("non-positive window", func(t *testing.T) {
		client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(map[string]any{
				"activity_window_seconds": 0,
				"rate_per_unit_per_sec":   "0.01",
			})
		})
		_, err := client.GetStakingParams(ctx)
		require.Error(t, err)
	})

	t.Run("unparseable rate", func(t *testing.T) {
		client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(map[string]any{
				"activity_window_seconds": 60,
				"rate_per_unit_per_sec":   "not-a-number",
			})
		})
		_, err := client.GetStakingParams(ctx)
		require.Error(t, err)
	})
}

func TestGetAccruedReward(t *testing.T) {
	ctx := t.Context()
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/stakers/addr1/accrued", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"address": "addr1",
			"accrued": "123.456",
		})
	})

	accrued, err := client.GetAccruedReward(ctx, "addr1")
	require.NoError(t, err)
	assert.Equal(t, "123.456", accrued.String())
}
