// Package raydium is the DirectPool venue client. It discovers a direct
// constant-product pool for a mint pair, quotes against its decoded reserve
// state, and builds the raw swap instruction sequence for it.
package raydium

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/sirupsen/logrus"

	"solana-swap-router/internal/venue"
)

// AccountChecker reports whether an account exists on chain. Implemented by
// the project's RPC client; abstracted so instruction-building tests run
// without a validator.
type AccountChecker interface {
	AccountExists(ctx context.Context, account solana.PublicKey) (bool, error)
}

type Client struct {
	BaseURL  string
	HTTP     *http.Client
	Accounts AccountChecker
	Logger   *logrus.Logger
}

type ClientConfig struct {
	BaseURL  string
	Timeout  time.Duration
	Accounts AccountChecker
	Logger   *logrus.Logger
}

func NewClient(cfg ClientConfig) *Client {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = "https://api-v3.raydium.io"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}
	return &Client{
		BaseURL:  baseURL,
		HTTP:     &http.Client{Timeout: cfg.Timeout},
		Accounts: cfg.Accounts,
		Logger:   cfg.Logger,
	}
}

// FindPool queries the pool directory for the mint pair, sorted by liquidity
// descending, and decodes the top result's reserve state. Reserve state is
// fetched fresh on every call; callers must not reuse it across requests.
func (c *Client) FindPool(ctx context.Context, mintA, mintB solana.PublicKey) (*venue.PoolReserveState, error) {
	q := url.Values{}
	q.Set("mint1", mintA.String())
	q.Set("mint2", mintB.String())
	q.Set("poolType", "standard")
	q.Set("poolSortField", "liquidity")
	q.Set("sortType", "desc")
	q.Set("pageSize", "10")
	q.Set("page", "1")

	body, err := c.get(ctx, "/pools/info/mint?"+q.Encode())
	if err != nil {
		return nil, err
	}

	records, err := decodePoolRecords(body)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, venue.Errorf(venue.VenueDirectPool, venue.KindNoLiquidity,
			"no pool found for %s/%s", mintA, mintB)
	}

	var record PoolRecord
	if err := json.Unmarshal(records[0], &record); err != nil {
		return nil, venue.Wrap(venue.VenueDirectPool, venue.KindMalformed, err, "decode pool record")
	}

	state, err := record.reserveState()
	if err != nil {
		return nil, err
	}

	c.Logger.WithFields(logrus.Fields{
		"pool":     state.PoolID,
		"reserveA": state.ReserveA,
		"reserveB": state.ReserveB,
		"feeBps":   state.FeeBps,
	}).Debug("selected direct pool")

	return state, nil
}

// reserveState validates a directory record and converts it to the domain
// form. A record missing expected sub-structure fails closed as malformed;
// it must never default to a zero quote.
func (r *PoolRecord) reserveState() (*venue.PoolReserveState, error) {
	if r.ID == "" || r.MintA == nil || r.MintB == nil || r.ReserveA == nil || r.ReserveB == nil || r.FeeBps == nil {
		return nil, venue.NewError(venue.VenueDirectPool, venue.KindMalformed,
			"pool record lacks expected fields")
	}

	mintA, err := solana.PublicKeyFromBase58(r.MintA.Address)
	if err != nil {
		return nil, venue.Wrap(venue.VenueDirectPool, venue.KindMalformed, err, "pool record mintA")
	}
	mintB, err := solana.PublicKeyFromBase58(r.MintB.Address)
	if err != nil {
		return nil, venue.Wrap(venue.VenueDirectPool, venue.KindMalformed, err, "pool record mintB")
	}

	reserveA, err := parseReserve(*r.ReserveA)
	if err != nil {
		return nil, venue.Wrap(venue.VenueDirectPool, venue.KindMalformed, err, "pool record reserveA")
	}
	reserveB, err := parseReserve(*r.ReserveB)
	if err != nil {
		return nil, venue.Wrap(venue.VenueDirectPool, venue.KindMalformed, err, "pool record reserveB")
	}
	if reserveA == 0 || reserveB == 0 {
		return nil, venue.Errorf(venue.VenueDirectPool, venue.KindNoLiquidity,
			"pool %s has an empty reserve", r.ID)
	}

	return &venue.PoolReserveState{
		PoolID:    r.ID,
		MintA:     mintA,
		MintB:     mintB,
		ReserveA:  reserveA,
		ReserveB:  reserveB,
		DecimalsA: r.MintA.Decimals,
		DecimalsB: r.MintB.Decimals,
		FeeBps:    *r.FeeBps,
	}, nil
}

func parseReserve(n json.Number) (uint64, error) {
	v, err := strconv.ParseUint(n.String(), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid reserve %q", n.String())
	}
	return v, nil
}

// fetchPoolKeys loads the account set for the swap instruction. Always a
// fresh fetch: build-time reads must not reuse quote-time state.
func (c *Client) fetchPoolKeys(ctx context.Context, poolID string) (*resolvedPoolKeys, error) {
	body, err := c.get(ctx, "/pools/key/ids?ids="+url.QueryEscape(poolID))
	if err != nil {
		return nil, err
	}

	records, err := decodePoolRecords(body)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, venue.Errorf(venue.VenueDirectPool, venue.KindMalformed,
			"no keys returned for pool %s", poolID)
	}

	var keys poolKeys
	if err := json.Unmarshal(records[0], &keys); err != nil {
		return nil, venue.Wrap(venue.VenueDirectPool, venue.KindMalformed, err, "decode pool keys")
	}

	return keys.resolve()
}

func (keys *poolKeys) resolve() (*resolvedPoolKeys, error) {
	out := &resolvedPoolKeys{}

	var firstErr error
	set := func(name, value string, dst *solana.PublicKey) {
		if firstErr != nil {
			return
		}
		if value == "" {
			firstErr = venue.Errorf(venue.VenueDirectPool, venue.KindMalformed,
				"pool keys missing %s", name)
			return
		}
		pk, err := solana.PublicKeyFromBase58(value)
		if err != nil {
			firstErr = venue.Wrap(venue.VenueDirectPool, venue.KindMalformed, err,
				fmt.Sprintf("pool keys field %s", name))
			return
		}
		*dst = pk
	}

	set("programId", keys.ProgramID, &out.programID)
	set("id", keys.ID, &out.ammID)
	set("authority", keys.Authority, &out.authority)
	set("openOrders", keys.OpenOrders, &out.openOrders)
	set("targetOrders", keys.TargetOrders, &out.targetOrders)
	set("vault.A", keys.Vault.A, &out.vaultA)
	set("vault.B", keys.Vault.B, &out.vaultB)
	set("marketProgramId", keys.MarketProgramID, &out.marketProgram)
	set("marketId", keys.MarketID, &out.market)
	set("marketAuthority", keys.MarketAuthority, &out.marketAuthority)
	set("marketBaseVault", keys.MarketBaseVault, &out.marketBaseVault)
	set("marketQuoteVault", keys.MarketQuoteVault, &out.marketQuoteVault)
	set("marketBids", keys.MarketBids, &out.marketBids)
	set("marketAsks", keys.MarketAsks, &out.marketAsks)
	set("marketEventQueue", keys.MarketEventQueue, &out.marketEventQueue)

	if firstErr != nil {
		return nil, firstErr
	}
	return out, nil
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path, nil)
	if err != nil {
		return nil, venue.Wrap(venue.VenueDirectPool, venue.KindUnknown, err, "build request")
	}
	req.Header.Set("accept", "application/json")

	res, err := c.HTTP.Do(req)
	if err != nil {
		return nil, venue.Wrap(venue.VenueDirectPool, venue.KindUnknown, err, "request failed")
	}
	defer res.Body.Close()

	body, _ := io.ReadAll(res.Body)
	if res.StatusCode == http.StatusTooManyRequests {
		return nil, venue.NewError(venue.VenueDirectPool, venue.KindRateLimited,
			"venue rate limited the request")
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, venue.Errorf(venue.VenueDirectPool, venue.KindUnknown,
			"http %d: %s", res.StatusCode, strings.TrimSpace(string(body)))
	}

	return body, nil
}
