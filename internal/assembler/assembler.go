// Package assembler serializes instruction sequences into unsigned
// transactions ready for wallet signing.
package assembler

import (
	"context"

	"github.com/gagliardetto/solana-go"
	computebudget "github.com/gagliardetto/solana-go/programs/compute-budget"
	"github.com/sirupsen/logrus"

	"solana-swap-router/internal/venue"
)

// BlockhashProvider fetches the current blockhash. Implemented by the RPC
// client; abstracted so assembly is testable offline.
type BlockhashProvider interface {
	LatestBlockhash(ctx context.Context) (solana.Hash, uint64, error)
}

type Assembler struct {
	Blockhash BlockhashProvider
	Logger    *logrus.Logger
}

func New(blockhash BlockhashProvider, logger *logrus.Logger) *Assembler {
	if logger == nil {
		logger = logrus.New()
	}
	return &Assembler{Blockhash: blockhash, Logger: logger}
}

// Assemble prepends the compute budget instructions, stamps a blockhash
// fetched immediately before serialization, and returns the serialized
// unsigned transaction. No signing happens here or anywhere else in this
// service.
func (a *Assembler) Assemble(
	ctx context.Context,
	ixs []solana.Instruction,
	payer solana.PublicKey,
	priorityFeeMicroLamports uint64,
	computeUnitLimit uint32,
) (*venue.UnsignedTransaction, error) {
	if len(ixs) == 0 {
		return nil, venue.NewError(venue.VenueDirectPool, venue.KindMalformed,
			"no instructions to assemble")
	}
	if payer.IsZero() {
		return nil, venue.NewError(venue.VenueDirectPool, venue.KindMalformed,
			"payer is required")
	}

	limitIx, err := computebudget.NewSetComputeUnitLimitInstruction(computeUnitLimit).ValidateAndBuild()
	if err != nil {
		return nil, venue.Wrap(venue.VenueDirectPool, venue.KindUnknown, err, "build compute unit limit")
	}
	priceIx, err := computebudget.NewSetComputeUnitPriceInstruction(priorityFeeMicroLamports).ValidateAndBuild()
	if err != nil {
		return nil, venue.Wrap(venue.VenueDirectPool, venue.KindUnknown, err, "build compute unit price")
	}

	all := make([]solana.Instruction, 0, len(ixs)+2)
	all = append(all, limitIx, priceIx)
	all = append(all, ixs...)

	// Fetched last so the transaction carries the freshest possible hash.
	blockhash, lastValidBlockHeight, err := a.Blockhash.LatestBlockhash(ctx)
	if err != nil {
		return nil, venue.Wrap(venue.VenueDirectPool, venue.KindUnknown, err, "fetch blockhash")
	}

	tx, err := solana.NewTransaction(all, blockhash, solana.TransactionPayer(payer))
	if err != nil {
		return nil, venue.Wrap(venue.VenueDirectPool, venue.KindUnknown, err, "build transaction")
	}

	raw, err := tx.MarshalBinary()
	if err != nil {
		return nil, venue.Wrap(venue.VenueDirectPool, venue.KindUnknown, err, "serialize transaction")
	}

	a.Logger.WithFields(logrus.Fields{
		"instructions": len(all),
		"payer":        payer.String(),
		"blockhash":    blockhash.String(),
	}).Debug("assembled unsigned transaction")

	return &venue.UnsignedTransaction{
		Bytes:                raw,
		Blockhash:            blockhash.String(),
		LastValidBlockHeight: lastValidBlockHeight,
		Venue:                venue.VenueDirectPool,
	}, nil
}
