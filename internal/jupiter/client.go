// Package jupiter is the aggregator venue client. It requests quotes and
// venue-prebuilt swap transactions from an off-chain routing aggregator and
// maps its error semantics onto the typed venue taxonomy.
package jupiter

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gagliardetto/solana-go"

	"solana-swap-router/internal/venue"
)

// Error codes that mean the pair is simply not tradable on this venue. These
// are the sole triggers for the DirectPool fallback; every other failure
// surfaces to the caller unchanged.
var unsupportedCodes = map[string]bool{
	"TOKEN_NOT_TRADABLE":       true,
	"COULD_NOT_FIND_ANY_ROUTE": true,
}

type Client struct {
	BaseURL string
	APIKey  string
	HTTP    *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = "https://api.jup.ag/swap/v1"
	}
	return &Client{
		BaseURL: baseURL,
		APIKey:  strings.TrimSpace(apiKey),
		HTTP: &http.Client{
			Timeout: 12 * time.Second,
		},
	}
}

// GetQuote requests a quote for the intent's mint pair and amount and returns
// it normalized. Failure kinds: Unsupported for the venue's "pair not
// tradable" codes, RateLimited for 429, Malformed for undecodable or
// incomplete bodies, Unknown otherwise.
func (c *Client) GetQuote(ctx context.Context, intent venue.SwapIntent) (*venue.Quote, error) {
	q := url.Values{}
	q.Set("inputMint", intent.InputMint.String())
	q.Set("outputMint", intent.OutputMint.String())
	q.Set("amount", strconv.FormatUint(intent.Amount, 10))
	q.Set("slippageBps", strconv.FormatUint(uint64(intent.SlippageBps), 10))

	u := c.BaseURL + "/quote?" + q.Encode()
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, venue.Wrap(venue.VenueAggregator, venue.KindUnknown, err, "build quote request")
	}
	httpReq.Header.Set("accept", "application/json")
	if c.APIKey != "" {
		httpReq.Header.Set("x-api-key", c.APIKey)
	}

	res, err := c.HTTP.Do(httpReq)
	if err != nil {
		return nil, venue.Wrap(venue.VenueAggregator, venue.KindUnknown, err, "quote request failed")
	}
	defer res.Body.Close()

	body, _ := io.ReadAll(res.Body)
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, classifyHTTPFailure(res.StatusCode, body)
	}

	var out QuoteResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, venue.Wrap(venue.VenueAggregator, venue.KindMalformed, err, "decode quote response")
	}

	return normalizeQuote(intent, &out, body)
}

// GetSwapTransaction requests a venue-prebuilt transaction for a previously
// obtained aggregator quote. A platform fee must be supplied as a complete
// pair: feeBps and feeAccount together or not at all.
func (c *Client) GetSwapTransaction(
	ctx context.Context,
	quote *venue.Quote,
	user solana.PublicKey,
	prioritizationFeeLamports uint64,
	platformFeeBps uint16,
	feeAccount string,
) (*venue.UnsignedTransaction, error) {
	if quote == nil || len(quote.AggregatorPayload) == 0 {
		return nil, venue.NewError(venue.VenueAggregator, venue.KindMalformed,
			"quote is missing the aggregator payload")
	}
	if (platformFeeBps > 0) != (feeAccount != "") {
		return nil, venue.NewError(venue.VenueAggregator, venue.KindMalformed,
			"platform fee requires feeBps and feeAccount together")
	}

	req := swapRequest{
		QuoteResponse:             json.RawMessage(quote.AggregatorPayload),
		UserPublicKey:             user.String(),
		WrapAndUnwrapSol:          true,
		DynamicComputeUnitLimit:   true,
		PrioritizationFeeLamports: prioritizationFeeLamports,
		PlatformFeeBps:            platformFeeBps,
		FeeAccount:                feeAccount,
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, venue.Wrap(venue.VenueAggregator, venue.KindUnknown, err, "marshal swap request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/swap", bytes.NewReader(payload))
	if err != nil {
		return nil, venue.Wrap(venue.VenueAggregator, venue.KindUnknown, err, "build swap request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("accept", "application/json")
	if c.APIKey != "" {
		httpReq.Header.Set("x-api-key", c.APIKey)
	}

	res, err := c.HTTP.Do(httpReq)
	if err != nil {
		return nil, venue.Wrap(venue.VenueAggregator, venue.KindUnknown, err, "swap request failed")
	}
	defer res.Body.Close()

	body, _ := io.ReadAll(res.Body)
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, classifyHTTPFailure(res.StatusCode, body)
	}

	var out swapResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, venue.Wrap(venue.VenueAggregator, venue.KindMalformed, err, "decode swap response")
	}
	if out.SwapTransaction == "" {
		return nil, venue.NewError(venue.VenueAggregator, venue.KindMalformed,
			"swap response is missing the transaction")
	}

	raw, err := base64.StdEncoding.DecodeString(out.SwapTransaction)
	if err != nil {
		return nil, venue.Wrap(venue.VenueAggregator, venue.KindMalformed, err, "decode swap transaction")
	}

	return &venue.UnsignedTransaction{
		Bytes:                raw,
		LastValidBlockHeight: out.LastValidBlockHeight,
		Venue:                venue.VenueAggregator,
	}, nil
}

func classifyHTTPFailure(status int, body []byte) *venue.Error {
	if status == http.StatusTooManyRequests {
		return venue.NewError(venue.VenueAggregator, venue.KindRateLimited, "venue rate limited the request")
	}

	var apiErr apiError
	if err := json.Unmarshal(body, &apiErr); err == nil && unsupportedCodes[apiErr.ErrorCode] {
		return venue.Errorf(venue.VenueAggregator, venue.KindUnsupported,
			"pair not tradable (%s)", apiErr.ErrorCode)
	}

	detail := strings.TrimSpace(string(body))
	if detail == "" {
		return venue.Errorf(venue.VenueAggregator, venue.KindUnknown, "http %d", status)
	}
	return venue.Errorf(venue.VenueAggregator, venue.KindUnknown, "http %d: %s", status, detail)
}

// normalizeQuote maps the provider response onto the venue-neutral Quote.
// InAmount is taken from the intent, never the response; a response that
// disagrees with the requested amount is malformed, not silently adopted.
func normalizeQuote(intent venue.SwapIntent, resp *QuoteResponse, raw []byte) (*venue.Quote, error) {
	outAmount, err := parseRawAmount(resp.OutAmount)
	if err != nil {
		return nil, venue.Wrap(venue.VenueAggregator, venue.KindMalformed, err, "parse outAmount")
	}
	minOut, err := parseRawAmount(resp.OtherAmountThreshold)
	if err != nil {
		return nil, venue.Wrap(venue.VenueAggregator, venue.KindMalformed, err, "parse otherAmountThreshold")
	}
	if len(resp.RoutePlan) == 0 {
		return nil, venue.NewError(venue.VenueAggregator, venue.KindMalformed, "quote has an empty route plan")
	}
	if resp.InAmount != "" {
		inAmount, err := parseRawAmount(resp.InAmount)
		if err != nil {
			return nil, venue.Wrap(venue.VenueAggregator, venue.KindMalformed, err, "parse inAmount")
		}
		if inAmount != intent.Amount {
			return nil, venue.Errorf(venue.VenueAggregator, venue.KindMalformed,
				"quote inAmount %d does not match requested %d", inAmount, intent.Amount)
		}
	}
	if minOut > outAmount {
		return nil, venue.NewError(venue.VenueAggregator, venue.KindMalformed,
			"threshold exceeds quoted output")
	}

	q := &venue.Quote{
		InputMint:         intent.InputMint,
		OutputMint:        intent.OutputMint,
		InAmount:          intent.Amount,
		OutAmount:         outAmount,
		MinOutAmount:      minOut,
		PriceImpactBps:    impactPctToBps(resp.PriceImpactPct),
		Venue:             venue.VenueAggregator,
		VenueRouteID:      resp.RoutePlan[0].SwapInfo.AmmKey,
		AggregatorPayload: json.RawMessage(raw),
	}

	if fee := resp.RoutePlan[0].SwapInfo.FeeAmount; fee != nil {
		if feeRaw, err := parseRawAmount(*fee); err == nil && intent.Amount > 0 {
			q.Fee.LPFeeRaw = feeRaw
			// Derived display value only; amounts above come from the venue.
			bps := feeRaw * 10000 / intent.Amount
			if bps <= 10000 {
				q.Fee.LPFeeBps = uint16(bps)
			}
		}
	}

	return q, nil
}

func parseRawAmount(s string) (uint64, error) {
	n, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid raw amount %q", s)
	}
	return n, nil
}

// impactPctToBps converts the provider's signed percentage string to basis
// points, truncating toward zero. An unparseable value yields 0 rather than
// failing the quote; price impact is advisory, not an amount.
func impactPctToBps(pct string) int64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(pct), 64)
	if err != nil {
		return 0
	}
	return int64(math.Trunc(f * 100))
}
