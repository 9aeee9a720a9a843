package server

import "solana-swap-router/internal/venue"

// ErrorResponse is the standardized error body.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    int    `json:"code"`
	Details any    `json:"details,omitempty"` // dev mode only
}

type HealthResponse struct {
	OK bool `json:"ok"`
}

// QuoteResponse wraps a served quote with its venue name surfaced at the top
// level for callers that only route on it.
type QuoteResponse struct {
	Quote venue.Quote `json:"quote"`
	Venue venue.Venue `json:"venue"`
}

// SwapRequest asks for an unsigned swap transaction.
type SwapRequest struct {
	UserAddress string `json:"userAddress"`
	InputMint   string `json:"inputMint"`
	OutputMint  string `json:"outputMint"`
	Amount      string `json:"amount"` // raw units, decimal string
	SlippageBps uint16 `json:"slippageBps"`
}

// SwapResponse carries the serialized unsigned transaction, base64 encoded,
// plus the quote it was built from. The caller signs and broadcasts.
type SwapResponse struct {
	Transaction          string      `json:"transaction"`
	Blockhash            string      `json:"blockhash,omitempty"`
	LastValidBlockHeight uint64      `json:"lastValidBlockHeight"`
	Venue                venue.Venue `json:"venue"`
	Quote                venue.Quote `json:"quote"`
}

type RecentQuotesResponse struct {
	Items []venue.Quote `json:"items"`
}
