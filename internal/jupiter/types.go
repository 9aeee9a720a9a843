package jupiter

// QuoteResponse mirrors the aggregator's quote payload. The raw body is kept
// alongside the decoded form because the swap endpoint consumes it verbatim.
type QuoteResponse struct {
	InputMint            string          `json:"inputMint"`
	OutputMint           string          `json:"outputMint"`
	InAmount             string          `json:"inAmount"`
	OutAmount            string          `json:"outAmount"`
	OtherAmountThreshold string          `json:"otherAmountThreshold"`
	SwapMode             string          `json:"swapMode"`
	SlippageBps          uint16          `json:"slippageBps"`
	PlatformFee          *PlatformFee    `json:"platformFee,omitempty"`
	PriceImpactPct       string          `json:"priceImpactPct"`
	RoutePlan            []RoutePlanStep `json:"routePlan"`

	ContextSlot uint64  `json:"contextSlot,omitempty"`
	TimeTaken   float64 `json:"timeTaken,omitempty"`
}

type PlatformFee struct {
	Amount string `json:"amount,omitempty"`
	FeeBps uint16 `json:"feeBps,omitempty"`
}

type RoutePlanStep struct {
	SwapInfo SwapInfo `json:"swapInfo"`
	Percent  *uint8   `json:"percent,omitempty"`
	Bps      uint16   `json:"bps,omitempty"`
}

type SwapInfo struct {
	AmmKey     string `json:"ammKey"`
	Label      string `json:"label,omitempty"`
	InputMint  string `json:"inputMint"`
	OutputMint string `json:"outputMint"`
	InAmount   string `json:"inAmount"`
	OutAmount  string `json:"outAmount"`

	FeeAmount *string `json:"feeAmount,omitempty"`
	FeeMint   *string `json:"feeMint,omitempty"`
}

// apiError is the aggregator's non-success body. The errorCode value is the
// only signal the orchestrator uses to decide on fallback.
type apiError struct {
	Error     string `json:"error"`
	ErrorCode string `json:"errorCode"`
}

// swapRequest is the body of the swap-transaction endpoint.
type swapRequest struct {
	QuoteResponse             any    `json:"quoteResponse"`
	UserPublicKey             string `json:"userPublicKey"`
	WrapAndUnwrapSol          bool   `json:"wrapAndUnwrapSol"`
	DynamicComputeUnitLimit   bool   `json:"dynamicComputeUnitLimit"`
	PrioritizationFeeLamports uint64 `json:"prioritizationFeeLamports"`
	PlatformFeeBps            uint16 `json:"platformFeeBps,omitempty"`
	FeeAccount                string `json:"feeAccount,omitempty"`
}

type swapResponse struct {
	SwapTransaction      string `json:"swapTransaction"`
	LastValidBlockHeight uint64 `json:"lastValidBlockHeight"`
}
