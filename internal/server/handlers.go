package server

import (
	"context"
	"encoding/base64"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/labstack/echo/v4"
	"github.com/mr-tron/base58"
	"github.com/sirupsen/logrus"

	"solana-swap-router/internal/cache"
	"solana-swap-router/internal/sink"
	"solana-swap-router/internal/venue"
)

// SwapRouter is the orchestrator surface the handlers depend on.
type SwapRouter interface {
	Quote(ctx context.Context, intent venue.SwapIntent) (*venue.Quote, error)
	BuildTransaction(ctx context.Context, intent venue.SwapIntent, quote *venue.Quote) (*venue.UnsignedTransaction, error)
}

// Handlers contains all dependencies for API endpoint handlers.
type Handlers struct {
	Router  SwapRouter
	Quotes  *cache.QuoteCache // nil when redis is not configured
	Sink    sink.Recorder     // nil when the sink is not configured
	DevMode bool
	Logger  *logrus.Logger
}

// err returns a standardized JSON error response. In dev mode it includes
// additional detail for debugging.
func (h *Handlers) err(c echo.Context, code int, msg string, details any) error {
	resp := ErrorResponse{Error: msg, Code: code}
	if h.DevMode && details != nil {
		resp.Details = details
	}
	return c.JSON(code, resp)
}

func (h *Handlers) withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		d = 10 * time.Second
	}
	return context.WithTimeout(ctx, d)
}

func (h *Handlers) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{OK: true})
}

// Quote serves GET /v1/quote. The user address is optional here; quoting does
// not depend on who will sign.
func (h *Handlers) Quote(c echo.Context) error {
	intent, field, err := quoteIntent(c)
	if err != nil {
		return h.err(c, http.StatusBadRequest, "invalid "+field, map[string]any{field: err.Error()})
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 15*time.Second)
	defer cancel()

	// Cache lookup precedes any venue call. Only exact-amount hits count.
	for _, v := range []venue.Venue{venue.VenueAggregator, venue.VenueDirectPool} {
		if q, ok := h.Quotes.Get(ctx, v, intent); ok {
			return c.JSON(http.StatusOK, QuoteResponse{Quote: *q, Venue: q.Venue})
		}
	}

	q, err := h.Router.Quote(ctx, intent)
	if err != nil {
		return h.swapErr(c, err)
	}

	h.Quotes.Put(ctx, intent, q)
	h.Quotes.AddRecent(ctx, q)

	return c.JSON(http.StatusOK, QuoteResponse{Quote: *q, Venue: q.Venue})
}

// Swap serves POST /v1/swap: quote fresh, build, return the unsigned
// transaction. The build path never reads the quote cache; amounts embedded
// in a transaction always come from state fetched in this request.
func (h *Handlers) Swap(c echo.Context) error {
	var req SwapRequest
	if err := c.Bind(&req); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid json", nil)
	}

	user, err := parseAddress(req.UserAddress)
	if err != nil {
		return h.err(c, http.StatusBadRequest, "invalid userAddress", map[string]any{"userAddress": err.Error()})
	}
	inputMint, err := parseAddress(req.InputMint)
	if err != nil {
		return h.err(c, http.StatusBadRequest, "invalid inputMint", map[string]any{"inputMint": err.Error()})
	}
	outputMint, err := parseAddress(req.OutputMint)
	if err != nil {
		return h.err(c, http.StatusBadRequest, "invalid outputMint", map[string]any{"outputMint": err.Error()})
	}
	amount, err := strconv.ParseUint(strings.TrimSpace(req.Amount), 10, 64)
	if err != nil || amount == 0 {
		return h.err(c, http.StatusBadRequest, "invalid amount", map[string]any{"amount": "must be a positive uint64"})
	}

	intent := venue.SwapIntent{
		UserAddress: user,
		InputMint:   inputMint,
		OutputMint:  outputMint,
		Amount:      amount,
		SlippageBps: req.SlippageBps,
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 30*time.Second)
	defer cancel()

	q, err := h.Router.Quote(ctx, intent)
	if err != nil {
		return h.swapErr(c, err)
	}

	tx, err := h.Router.BuildTransaction(ctx, intent, q)
	if err != nil {
		return h.swapErr(c, err)
	}

	if h.Sink != nil {
		if err := h.Sink.RecordSwap(ctx, sink.FromQuote(intent, q)); err != nil {
			h.Logger.WithError(err).Warn("swap record sink write failed")
		}
	}

	return c.JSON(http.StatusOK, SwapResponse{
		Transaction:          base64.StdEncoding.EncodeToString(tx.Bytes),
		Blockhash:            tx.Blockhash,
		LastValidBlockHeight: tx.LastValidBlockHeight,
		Venue:                tx.Venue,
		Quote:                *q,
	})
}

// RecentQuotes returns the most recently served quotes, newest first.
func (h *Handlers) RecentQuotes(c echo.Context) error {
	limit := 20
	if v := strings.TrimSpace(c.QueryParam("limit")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 50 {
			return h.err(c, http.StatusBadRequest, "invalid limit", map[string]any{"limit": "min 1 max 50"})
		}
		limit = n
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	items, err := h.Quotes.Recent(ctx, limit)
	if err != nil {
		return h.err(c, http.StatusInternalServerError, "failed to get recent quotes", nil)
	}
	if items == nil {
		items = []venue.Quote{}
	}
	return c.JSON(http.StatusOK, RecentQuotesResponse{Items: items})
}

func (h *Handlers) swapErr(c echo.Context, err error) error {
	code, msg := statusForSwapError(err)
	h.Logger.WithError(err).WithField("status", code).Info("swap request failed")
	return h.err(c, code, msg, map[string]any{"err": err.Error()})
}

// quoteIntent parses the quote query parameters. On failure it reports which
// field was bad alongside the reason.
func quoteIntent(c echo.Context) (venue.SwapIntent, string, error) {
	var intent venue.SwapIntent

	inputMint, err := parseAddress(c.QueryParam("inputMint"))
	if err != nil {
		return intent, "inputMint", err
	}
	outputMint, err := parseAddress(c.QueryParam("outputMint"))
	if err != nil {
		return intent, "outputMint", err
	}
	amount, err := strconv.ParseUint(strings.TrimSpace(c.QueryParam("amount")), 10, 64)
	if err != nil || amount == 0 {
		return intent, "amount", paramError("must be a positive uint64")
	}

	var slippageBps uint16 = 50
	if v := strings.TrimSpace(c.QueryParam("slippageBps")); v != "" {
		n, err := strconv.ParseUint(v, 10, 16)
		if err != nil {
			return intent, "slippageBps", paramError("must be uint16")
		}
		slippageBps = uint16(n)
	}

	intent.InputMint = inputMint
	intent.OutputMint = outputMint
	intent.Amount = amount
	intent.SlippageBps = slippageBps
	return intent, "", nil
}

// parseAddress validates a base58 Solana address. The base58 decode is checked
// explicitly so the error names the actual problem instead of a generic key
// parse failure.
func parseAddress(s string) (solana.PublicKey, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return solana.PublicKey{}, errRequired
	}
	raw, err := base58.Decode(s)
	if err != nil {
		return solana.PublicKey{}, errNotBase58
	}
	if len(raw) != solana.PublicKeyLength {
		return solana.PublicKey{}, errWrongLength
	}
	return solana.PublicKeyFromBytes(raw), nil
}

var (
	errRequired    = paramError("required")
	errNotBase58   = paramError("not valid base58")
	errWrongLength = paramError("must decode to 32 bytes")
)

type paramError string

func (e paramError) Error() string { return string(e) }
