package raydium

import (
	"errors"

	"solana-swap-router/internal/pricemath"
	"solana-swap-router/internal/venue"
)

// GetQuote prices the intent against a pool's decoded reserve state. Pure
// computation: no network, no mutation of the pool state.
func (c *Client) GetQuote(pool *venue.PoolReserveState, intent venue.SwapIntent) (*venue.Quote, error) {
	if pool == nil {
		return nil, venue.NewError(venue.VenueDirectPool, venue.KindMalformed, "nil pool state")
	}

	var aToB bool
	switch intent.InputMint {
	case pool.MintA:
		aToB = true
	case pool.MintB:
		aToB = false
	default:
		return nil, venue.Errorf(venue.VenueDirectPool, venue.KindMalformed,
			"input mint %s is not part of pool %s", intent.InputMint, pool.PoolID)
	}
	wantOut := pool.MintB
	if !aToB {
		wantOut = pool.MintA
	}
	if intent.OutputMint != wantOut {
		return nil, venue.Errorf(venue.VenueDirectPool, venue.KindMalformed,
			"output mint %s is not part of pool %s", intent.OutputMint, pool.PoolID)
	}

	reserveIn, reserveOut := pool.ReservesFor(aToB)

	outAmount, err := pricemath.QuoteConstantProduct(reserveIn, reserveOut, intent.Amount, pool.FeeBps)
	if err != nil {
		return nil, stampVenue(err)
	}

	return &venue.Quote{
		InputMint:      intent.InputMint,
		OutputMint:     intent.OutputMint,
		InAmount:       intent.Amount,
		OutAmount:      outAmount,
		MinOutAmount:   pricemath.ApplySlippage(outAmount, intent.SlippageBps),
		PriceImpactBps: pricemath.PriceImpactBps(intent.Amount, reserveIn),
		Venue:          venue.VenueDirectPool,
		VenueRouteID:   pool.PoolID,
		Fee: venue.FeeBreakdown{
			LPFeeRaw: pricemath.FeeAmount(intent.Amount, pool.FeeBps),
			LPFeeBps: pool.FeeBps,
		},
	}, nil
}

// stampVenue attributes a bare math error to this venue so the caller's
// taxonomy stays consistent.
func stampVenue(err error) error {
	var ve *venue.Error
	if errors.As(err, &ve) && ve.Venue == "" {
		stamped := *ve
		stamped.Venue = venue.VenueDirectPool
		return &stamped
	}
	return err
}
