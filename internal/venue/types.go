package venue

import (
	"encoding/json"

	"github.com/gagliardetto/solana-go"
)

// Venue identifies which liquidity source produced a quote or transaction.
type Venue string

const (
	VenueAggregator Venue = "aggregator"
	VenueDirectPool Venue = "directpool"
)

// SwapIntent is the caller-supplied input to the routing pipeline.
// It is never mutated by the pipeline.
type SwapIntent struct {
	UserAddress solana.PublicKey
	InputMint   solana.PublicKey
	OutputMint  solana.PublicKey
	Amount      uint64 // raw units of the input token's smallest denomination
	SlippageBps uint16
}

// FeeBreakdown describes the liquidity-pool fee charged on the input side.
type FeeBreakdown struct {
	LPFeeRaw uint64 `json:"lpFeeRaw"`
	LPFeeBps uint16 `json:"lpFeeBps"`
}

// Quote is a normalized price quote from either venue.
//
// Invariants: MinOutAmount <= OutAmount, and InAmount echoes the caller's
// requested amount exactly (no implicit rounding of the input).
type Quote struct {
	InputMint      solana.PublicKey `json:"inputMint"`
	OutputMint     solana.PublicKey `json:"outputMint"`
	InAmount       uint64           `json:"inAmount"`
	OutAmount      uint64           `json:"outAmount"`
	MinOutAmount   uint64           `json:"minOutAmount"`
	PriceImpactBps int64            `json:"priceImpactBps"`
	Venue          Venue            `json:"venue"`
	VenueRouteID   string           `json:"venueRouteId"`
	Fee            FeeBreakdown     `json:"feeBreakdown"`

	// AggregatorPayload holds the aggregator's raw quote response. The
	// aggregator's swap-transaction endpoint requires it verbatim; it is
	// empty for DirectPool quotes.
	AggregatorPayload json.RawMessage `json:"-"`
}

// PoolReserveState is a direct pool's decoded reserve snapshot. It is fetched
// fresh per quote request; stale reserves must not be reused.
type PoolReserveState struct {
	PoolID    string
	MintA     solana.PublicKey
	MintB     solana.PublicKey
	ReserveA  uint64
	ReserveB  uint64
	DecimalsA uint8
	DecimalsB uint8
	FeeBps    uint16
}

// ReservesFor returns the (in, out) reserve pair for a swap whose input side
// is mint A (aToB=true) or mint B.
func (p *PoolReserveState) ReservesFor(aToB bool) (reserveIn, reserveOut uint64) {
	if aToB {
		return p.ReserveA, p.ReserveB
	}
	return p.ReserveB, p.ReserveA
}

// UnsignedTransaction is a serialized, signable transaction plus the metadata
// a caller needs to verify or resubmit it. Signing and broadcasting are the
// caller's responsibility.
type UnsignedTransaction struct {
	Bytes                []byte `json:"-"`
	Blockhash            string `json:"blockhash,omitempty"`
	LastValidBlockHeight uint64 `json:"lastValidBlockHeight"`
	Venue                Venue  `json:"venue"`
}
