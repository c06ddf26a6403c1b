package chainclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"cosmossdk.io/math"
	"github.com/avast/retry-go/v4"
	"github.com/rs/zerolog/log"

	"github.com/stakelens/stakesync/internal/config"
)

const (
	stakedUnitsEndpoint   = "/v1/stakers/%s/units"
	unitStatusEndpoint    = "/v1/units/%d"
	stakingParamsEndpoint = "/v1/params"
	accruedEndpoint       = "/v1/stakers/%s/accrued"
)

type ChainClient struct {
	httpClient *http.Client
	cfg        *config.ChainConfig
}

func NewChainClient(cfg *config.ChainConfig) ChainInterface {
	return &ChainClient{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		cfg:        cfg,
	}
}

func (c *ChainClient) GetStakedUnits(ctx context.Context, address string) ([]uint64, error) {
	if address == "" {
		return nil, fmt.Errorf("empty address provided")
	}

	callForUnits := func() (*stakedUnitsResponse, error) {
		path := fmt.Sprintf(stakedUnitsEndpoint, url.PathEscape(address))
		return sendRequest[stakedUnitsResponse](ctx, c, path)
	}

	resp, err := clientCallWithRetry(ctx, callForUnits, c.cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to get staked units for %s: %w", address, err)
	}
	return resp.UnitIDs, nil
}

func (c *ChainClient) GetUnitStatus(ctx context.Context, unitID uint64) (*UnitStatus, error) {
	callForStatus := func() (*unitStatusResponse, error) {
		path := fmt.Sprintf(unitStatusEndpoint, unitID)
		return sendRequest[unitStatusResponse](ctx, c, path)
	}

	resp, err := clientCallWithRetry(ctx, callForStatus, c.cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to get status of unit %d: %w", unitID, err)
	}
	return &resp.Unit, nil
}

func (c *ChainClient) GetStakingParams(ctx context.Context) (*StakingParams, error) {
	callForParams := func() (*stakingParamsResponse, error) {
		return sendRequest[stakingParamsResponse](ctx, c, stakingParamsEndpoint)
	}

	resp, err := clientCallWithRetry(ctx, callForParams, c.cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to get staking params: %w", err)
	}

	if resp.ActivityWindowSeconds <= 0 {
		return nil, fmt.Errorf("ledger returned non-positive activity window: %d", resp.ActivityWindowSeconds)
	}
	rate, err := math.LegacyNewDecFromStr(resp.RatePerUnitPerSec)
	if err != nil {
		return nil, fmt.Errorf("failed to parse reward rate %q: %w", resp.RatePerUnitPerSec, err)
	}
	if rate.IsNegative() {
		return nil, fmt.Errorf("ledger returned negative reward rate: %s", rate)
	}

	return &StakingParams{
		ActivityWindow:    time.Duration(resp.ActivityWindowSeconds) * time.Second,
		RatePerUnitPerSec: rate,
	}, nil
}

func (c *ChainClient) GetAccruedReward(ctx context.Context, address string) (math.LegacyDec, error) {
	if address == "" {
		return math.LegacyDec{}, fmt.Errorf("empty address provided")
	}

	callForAccrued := func() (*accruedRewardResponse, error) {
		path := fmt.Sprintf(accruedEndpoint, url.PathEscape(address))
		return sendRequest[accruedRewardResponse](ctx, c, path)
	}

	resp, err := clientCallWithRetry(ctx, callForAccrued, c.cfg)
	if err != nil {
		return math.LegacyDec{}, fmt.Errorf("failed to get accrued reward for %s: %w", address, err)
	}

	accrued, err := math.LegacyNewDecFromStr(resp.Accrued)
	if err != nil {
		return math.LegacyDec{}, fmt.Errorf("failed to parse accrued reward %q: %w", resp.Accrued, err)
	}
	return accrued, nil
}

func sendRequest[T any](ctx context.Context, c *ChainClient, path string) (*T, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.Endpoint+path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("ledger returned status %d for %s: %s", resp.StatusCode, path, string(body))
	}

	var out T
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode response for %s: %w", path, err)
	}
	return &out, nil
}

func clientCallWithRetry[T any](
	ctx context.Context, call retry.RetryableFuncWithData[*T], cfg *config.ChainConfig,
) (*T, error) {
	result, err := retry.DoWithData(call,
		retry.Context(ctx),
		retry.Attempts(cfg.MaxRetryTimes),
		retry.Delay(cfg.RetryInterval),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			log.Ctx(ctx).Debug().
				Uint("attempt", n+1).
				Uint("max_attempts", cfg.MaxRetryTimes).
				Err(err).
				Msg("failed to query ledger, retrying")
		}))
	if err != nil {
		return nil, err
	}
	return result, nil
}
