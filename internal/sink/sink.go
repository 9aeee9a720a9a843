// Package sink records served swaps for offline analysis. Recording is best
// effort and never blocks or fails the serving path.
package sink

import (
	"context"
	"time"

	"solana-swap-router/internal/venue"
)

// SwapRecord is one served swap-transaction build.
type SwapRecord struct {
	Timestamp      time.Time
	UserAddress    string
	InputMint      string
	OutputMint     string
	InAmount       uint64
	OutAmount      uint64
	MinOutAmount   uint64
	PriceImpactBps int64
	Venue          venue.Venue
	VenueRouteID   string
	LPFeeRaw       uint64
	SlippageBps    uint16
}

// Recorder persists swap records. A nil Recorder value from a constructor
// means the sink is not configured; callers treat that as a no-op.
type Recorder interface {
	RecordSwap(ctx context.Context, rec SwapRecord) error
}

// FromQuote builds the record for a quote that was turned into a transaction.
func FromQuote(intent venue.SwapIntent, q *venue.Quote) SwapRecord {
	return SwapRecord{
		Timestamp:      time.Now().UTC(),
		UserAddress:    intent.UserAddress.String(),
		InputMint:      q.InputMint.String(),
		OutputMint:     q.OutputMint.String(),
		InAmount:       q.InAmount,
		OutAmount:      q.OutAmount,
		MinOutAmount:   q.MinOutAmount,
		PriceImpactBps: q.PriceImpactBps,
		Venue:          q.Venue,
		VenueRouteID:   q.VenueRouteID,
		LPFeeRaw:       q.Fee.LPFeeRaw,
		SlippageBps:    intent.SlippageBps,
	}
}
