package raydium

import (
	"bytes"
	"context"
	"encoding/binary"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	associatedtokenaccount "github.com/gagliardetto/solana-go/programs/associated-token-account"

	"solana-swap-router/internal/venue"
)

// BuildSwapInstructions builds the instruction sequence for a direct-pool
// swap: an optional create for the user's destination token account, then the
// swap itself. Pool keys are fetched fresh here; nothing from the quote path
// is reused except the amounts. The quote's minOutAmount goes into the
// instruction verbatim, never recomputed from newer reserves.
func (c *Client) BuildSwapInstructions(
	ctx context.Context,
	pool *venue.PoolReserveState,
	intent venue.SwapIntent,
	quote *venue.Quote,
	user solana.PublicKey,
) ([]solana.Instruction, error) {
	if pool == nil || quote == nil {
		return nil, venue.NewError(venue.VenueDirectPool, venue.KindMalformed,
			"pool state and quote are required")
	}
	if quote.Venue != venue.VenueDirectPool || quote.VenueRouteID != pool.PoolID {
		return nil, venue.Errorf(venue.VenueDirectPool, venue.KindMalformed,
			"quote was not produced for pool %s", pool.PoolID)
	}

	keys, err := c.fetchPoolKeys(ctx, pool.PoolID)
	if err != nil {
		return nil, err
	}

	userSource, _, err := solana.FindAssociatedTokenAddress(user, intent.InputMint)
	if err != nil {
		return nil, venue.Wrap(venue.VenueDirectPool, venue.KindMalformed, err, "derive source token account")
	}
	userDest, _, err := solana.FindAssociatedTokenAddress(user, intent.OutputMint)
	if err != nil {
		return nil, venue.Wrap(venue.VenueDirectPool, venue.KindMalformed, err, "derive destination token account")
	}

	var ixs []solana.Instruction

	exists, err := c.Accounts.AccountExists(ctx, userDest)
	if err != nil {
		return nil, venue.Wrap(venue.VenueDirectPool, venue.KindUnknown, err, "check destination token account")
	}
	if !exists {
		createIx, err := associatedtokenaccount.NewCreateInstruction(user, user, intent.OutputMint).ValidateAndBuild()
		if err != nil {
			return nil, venue.Wrap(venue.VenueDirectPool, venue.KindUnknown, err, "build create account instruction")
		}
		ixs = append(ixs, createIx)
	}

	swapIx, err := buildSwapBaseIn(keys, userSource, userDest, user, quote.InAmount, quote.MinOutAmount)
	if err != nil {
		return nil, err
	}
	ixs = append(ixs, swapIx)

	return ixs, nil
}

// buildSwapBaseIn encodes the AMM v4 fixed-input swap: one discriminator byte
// followed by amountIn and minAmountOut as little-endian u64s, against the
// program's 18-account layout.
func buildSwapBaseIn(
	keys *resolvedPoolKeys,
	userSource, userDest, userOwner solana.PublicKey,
	amountIn, minAmountOut uint64,
) (solana.Instruction, error) {
	buf := new(bytes.Buffer)
	enc := bin.NewBinEncoder(buf)
	if err := enc.WriteUint8(swapBaseInDiscriminator); err != nil {
		return nil, venue.Wrap(venue.VenueDirectPool, venue.KindUnknown, err, "encode discriminator")
	}
	if err := enc.WriteUint64(amountIn, binary.LittleEndian); err != nil {
		return nil, venue.Wrap(venue.VenueDirectPool, venue.KindUnknown, err, "encode amountIn")
	}
	if err := enc.WriteUint64(minAmountOut, binary.LittleEndian); err != nil {
		return nil, venue.Wrap(venue.VenueDirectPool, venue.KindUnknown, err, "encode minAmountOut")
	}

	accounts := solana.AccountMetaSlice{
		solana.Meta(solana.TokenProgramID),
		solana.Meta(keys.ammID).WRITE(),
		solana.Meta(keys.authority),
		solana.Meta(keys.openOrders).WRITE(),
		solana.Meta(keys.targetOrders).WRITE(),
		solana.Meta(keys.vaultA).WRITE(),
		solana.Meta(keys.vaultB).WRITE(),
		solana.Meta(keys.marketProgram),
		solana.Meta(keys.market).WRITE(),
		solana.Meta(keys.marketBids).WRITE(),
		solana.Meta(keys.marketAsks).WRITE(),
		solana.Meta(keys.marketEventQueue).WRITE(),
		solana.Meta(keys.marketBaseVault).WRITE(),
		solana.Meta(keys.marketQuoteVault).WRITE(),
		solana.Meta(keys.marketAuthority),
		solana.Meta(userSource).WRITE(),
		solana.Meta(userDest).WRITE(),
		solana.Meta(userOwner).SIGNER(),
	}

	return solana.NewInstruction(keys.programID, accounts, buf.Bytes()), nil
}
