package raydium

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solana-swap-router/internal/pricemath"
	"solana-swap-router/internal/venue"
)

var (
	testUser  = solana.MustPublicKeyFromBase58("9WzDXwBbmkg8ZTbNMqUxvQRAyrZzDsGYdLVL9zYtAWWM")
	testMintA = solana.MustPublicKeyFromBase58("So11111111111111111111111111111111111111112")
	testMintB = solana.MustPublicKeyFromBase58("EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v")
	otherMint = solana.MustPublicKeyFromBase58("DezXAZ8z7PnrnRJjz3wXBoRgixCa6xjnB7YaB1pPB263")
)

func testPool() *venue.PoolReserveState {
	return &venue.PoolReserveState{
		PoolID:    "pool-1",
		MintA:     testMintA,
		MintB:     testMintB,
		ReserveA:  1_000_000_000,
		ReserveB:  20_000_000_000,
		DecimalsA: 9,
		DecimalsB: 6,
		FeeBps:    25,
	}
}

func TestGetQuote_AToB(t *testing.T) {
	c := NewClient(ClientConfig{})
	pool := testPool()
	intent := venue.SwapIntent{
		UserAddress: testUser,
		InputMint:   testMintA,
		OutputMint:  testMintB,
		Amount:      10_000_000,
		SlippageBps: 100,
	}

	q, err := c.GetQuote(pool, intent)
	require.NoError(t, err)

	expectedOut, err := pricemath.QuoteConstantProduct(pool.ReserveA, pool.ReserveB, intent.Amount, pool.FeeBps)
	require.NoError(t, err)

	assert.Equal(t, venue.VenueDirectPool, q.Venue)
	assert.Equal(t, "pool-1", q.VenueRouteID)
	assert.Equal(t, intent.Amount, q.InAmount)
	assert.Equal(t, expectedOut, q.OutAmount)
	assert.Equal(t, pricemath.ApplySlippage(expectedOut, 100), q.MinOutAmount)
	assert.LessOrEqual(t, q.MinOutAmount, q.OutAmount)
	assert.Equal(t, pricemath.PriceImpactBps(intent.Amount, pool.ReserveA), q.PriceImpactBps)
	assert.Equal(t, pricemath.FeeAmount(intent.Amount, 25), q.Fee.LPFeeRaw)
	assert.Equal(t, uint16(25), q.Fee.LPFeeBps)
	assert.Empty(t, q.AggregatorPayload)
}

func TestGetQuote_BToA(t *testing.T) {
	c := NewClient(ClientConfig{})
	pool := testPool()
	intent := venue.SwapIntent{
		UserAddress: testUser,
		InputMint:   testMintB,
		OutputMint:  testMintA,
		Amount:      200_000_000,
		SlippageBps: 50,
	}

	q, err := c.GetQuote(pool, intent)
	require.NoError(t, err)

	// Reserves must be read in reverse orientation.
	expectedOut, err := pricemath.QuoteConstantProduct(pool.ReserveB, pool.ReserveA, intent.Amount, pool.FeeBps)
	require.NoError(t, err)
	assert.Equal(t, expectedOut, q.OutAmount)
	assert.Equal(t, pricemath.PriceImpactBps(intent.Amount, pool.ReserveB), q.PriceImpactBps)
}

func TestGetQuote_MintNotInPool(t *testing.T) {
	c := NewClient(ClientConfig{})
	pool := testPool()

	// Input mint not part of the pool.
	_, err := c.GetQuote(pool, venue.SwapIntent{
		InputMint:  otherMint,
		OutputMint: testMintB,
		Amount:     1000,
	})
	require.Error(t, err)
	assert.Equal(t, venue.KindMalformed, venue.KindOf(err))

	// Output mint not the pool's other side.
	_, err = c.GetQuote(pool, venue.SwapIntent{
		InputMint:  testMintA,
		OutputMint: otherMint,
		Amount:     1000,
	})
	require.Error(t, err)
	assert.Equal(t, venue.KindMalformed, venue.KindOf(err))
}

func TestGetQuote_StampsVenueOnMathErrors(t *testing.T) {
	c := NewClient(ClientConfig{})
	pool := testPool()

	_, err := c.GetQuote(pool, venue.SwapIntent{
		InputMint:  testMintA,
		OutputMint: testMintB,
		Amount:     0,
	})
	require.Error(t, err)

	var ve *venue.Error
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, venue.VenueDirectPool, ve.Venue)
	assert.Equal(t, venue.KindMalformed, ve.Kind)
}

func TestGetQuote_NilPool(t *testing.T) {
	c := NewClient(ClientConfig{})
	_, err := c.GetQuote(nil, venue.SwapIntent{})
	require.Error(t, err)
	assert.Equal(t, venue.KindMalformed, venue.KindOf(err))
}
