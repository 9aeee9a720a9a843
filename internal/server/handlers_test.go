package server

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solana-swap-router/internal/sink"
	"solana-swap-router/internal/venue"
)

var (
	testUser  = "9WzDXwBbmkg8ZTbNMqUxvQRAyrZzDsGYdLVL9zYtAWWM"
	testMintA = "So11111111111111111111111111111111111111112"
	testMintB = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"
)

type stubRouter struct {
	quote    *venue.Quote
	quoteErr error

	tx    *venue.UnsignedTransaction
	txErr error

	gotIntent venue.SwapIntent
}

func (s *stubRouter) Quote(ctx context.Context, intent venue.SwapIntent) (*venue.Quote, error) {
	s.gotIntent = intent
	return s.quote, s.quoteErr
}

func (s *stubRouter) BuildTransaction(ctx context.Context, intent venue.SwapIntent, quote *venue.Quote) (*venue.UnsignedTransaction, error) {
	return s.tx, s.txErr
}

type stubSink struct {
	records []sink.SwapRecord
}

func (s *stubSink) RecordSwap(ctx context.Context, rec sink.SwapRecord) error {
	s.records = append(s.records, rec)
	return nil
}

func testHandlers(r *stubRouter) *Handlers {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return &Handlers{Router: r, Logger: logger}
}

func quoteRequest(t *testing.T, h *Handlers, params url.Values) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/quote?"+params.Encode(), nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	require.NoError(t, h.Quote(c))
	return rec
}

func validQuoteParams() url.Values {
	q := url.Values{}
	q.Set("inputMint", testMintA)
	q.Set("outputMint", testMintB)
	q.Set("amount", "1000000")
	q.Set("slippageBps", "50")
	return q
}

func TestHandlers_Quote(t *testing.T) {
	r := &stubRouter{quote: &venue.Quote{
		InputMint:    solana.MustPublicKeyFromBase58(testMintA),
		OutputMint:   solana.MustPublicKeyFromBase58(testMintB),
		InAmount:     1000000,
		OutAmount:    158000000,
		MinOutAmount: 157210000,
		Venue:        venue.VenueAggregator,
	}}

	rec := quoteRequest(t, testHandlers(r), validQuoteParams())
	require.Equal(t, http.StatusOK, rec.Code)

	var resp QuoteResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, venue.VenueAggregator, resp.Venue)
	assert.Equal(t, uint64(158000000), resp.Quote.OutAmount)

	assert.Equal(t, uint64(1000000), r.gotIntent.Amount)
	assert.Equal(t, uint16(50), r.gotIntent.SlippageBps)
}

func TestHandlers_Quote_ErrorMapping(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"disabled", venue.NewError("", venue.KindDisabled, "swap is disabled"), http.StatusForbidden},
		{"unsupported", venue.NewError(venue.VenueAggregator, venue.KindUnsupported, "not tradable"), http.StatusNotFound},
		{"no liquidity", venue.NewError(venue.VenueDirectPool, venue.KindNoLiquidity, "no pool"), http.StatusNotFound},
		{"rate limited", venue.NewError(venue.VenueAggregator, venue.KindRateLimited, "429"), http.StatusTooManyRequests},
		{"malformed", venue.NewError("", venue.KindMalformed, "bad slippage"), http.StatusBadRequest},
		{"unknown", venue.NewError(venue.VenueAggregator, venue.KindUnknown, "http 500"), http.StatusBadGateway},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := quoteRequest(t, testHandlers(&stubRouter{quoteErr: tc.err}), validQuoteParams())
			assert.Equal(t, tc.wantStatus, rec.Code)

			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tc.wantStatus, resp.Code)
			assert.NotEmpty(t, resp.Error)
		})
	}
}

func TestHandlers_Quote_BadParams(t *testing.T) {
	h := testHandlers(&stubRouter{})

	missingMint := validQuoteParams()
	missingMint.Del("inputMint")

	badMint := validQuoteParams()
	badMint.Set("outputMint", "not-a-mint-0OIl")

	zeroAmount := validQuoteParams()
	zeroAmount.Set("amount", "0")

	badSlippage := validQuoteParams()
	badSlippage.Set("slippageBps", "70000")

	for name, params := range map[string]url.Values{
		"missing mint": missingMint,
		"bad mint":     badMint,
		"zero amount":  zeroAmount,
		"bad slippage": badSlippage,
	} {
		rec := quoteRequest(t, h, params)
		assert.Equal(t, http.StatusBadRequest, rec.Code, name)
	}
}

func TestHandlers_Swap(t *testing.T) {
	txBytes := []byte{0xDE, 0xAD, 0xBE, 0xEF}
	r := &stubRouter{
		quote: &venue.Quote{Venue: venue.VenueDirectPool, InAmount: 1000000, OutAmount: 90},
		tx: &venue.UnsignedTransaction{
			Bytes:                txBytes,
			Blockhash:            "hash111",
			LastValidBlockHeight: 42,
			Venue:                venue.VenueDirectPool,
		},
	}
	recorder := &stubSink{}
	h := testHandlers(r)
	h.Sink = recorder

	body := `{"userAddress":"` + testUser + `","inputMint":"` + testMintA + `","outputMint":"` + testMintB + `","amount":"1000000","slippageBps":50}`
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/swap", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	require.NoError(t, h.Swap(e.NewContext(req, rec)))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp SwapResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, base64.StdEncoding.EncodeToString(txBytes), resp.Transaction)
	assert.Equal(t, uint64(42), resp.LastValidBlockHeight)
	assert.Equal(t, venue.VenueDirectPool, resp.Venue)

	// The sink saw exactly one record for the served build.
	require.Len(t, recorder.records, 1)
	assert.Equal(t, testUser, recorder.records[0].UserAddress)
	assert.Equal(t, uint64(1000000), recorder.records[0].InAmount)
}

func TestHandlers_Swap_BadAddress(t *testing.T) {
	h := testHandlers(&stubRouter{})

	body := `{"userAddress":"nope","inputMint":"` + testMintA + `","outputMint":"` + testMintB + `","amount":"1000"}`
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/swap", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	require.NoError(t, h.Swap(e.NewContext(req, rec)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestParseAddress(t *testing.T) {
	pk, err := parseAddress(testMintA)
	require.NoError(t, err)
	assert.Equal(t, testMintA, pk.String())

	_, err = parseAddress("")
	assert.ErrorIs(t, err, errRequired)

	_, err = parseAddress("0OIl") // not in the base58 alphabet
	assert.ErrorIs(t, err, errNotBase58)

	_, err = parseAddress("abc") // valid base58, wrong length
	assert.ErrorIs(t, err, errWrongLength)
}
