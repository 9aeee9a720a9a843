package assembler

import (
	"context"
	"errors"
	"testing"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	computebudget "github.com/gagliardetto/solana-go/programs/compute-budget"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solana-swap-router/internal/venue"
)

var testPayer = solana.MustPublicKeyFromBase58("9WzDXwBbmkg8ZTbNMqUxvQRAyrZzDsGYdLVL9zYtAWWM")

type fakeBlockhash struct {
	hash   solana.Hash
	height uint64
	err    error
	calls  int
}

func (f *fakeBlockhash) LatestBlockhash(ctx context.Context) (solana.Hash, uint64, error) {
	f.calls++
	return f.hash, f.height, f.err
}

func memoInstruction(payload string) solana.Instruction {
	return solana.NewInstruction(
		solana.MemoProgramID,
		solana.AccountMetaSlice{solana.Meta(testPayer).SIGNER().WRITE()},
		[]byte(payload),
	)
}

func TestAssemble(t *testing.T) {
	hash := solana.Hash{0xAB, 0xCD}
	provider := &fakeBlockhash{hash: hash, height: 98765}
	a := New(provider, nil)

	out, err := a.Assemble(context.Background(), []solana.Instruction{memoInstruction("swap")}, testPayer, 250, 400_000)
	require.NoError(t, err)

	assert.Equal(t, venue.VenueDirectPool, out.Venue)
	assert.Equal(t, hash.String(), out.Blockhash)
	assert.Equal(t, uint64(98765), out.LastValidBlockHeight)
	assert.Equal(t, 1, provider.calls)
	require.NotEmpty(t, out.Bytes)

	// The serialized form must round-trip.
	tx, err := solana.TransactionFromDecoder(bin.NewBinDecoder(out.Bytes))
	require.NoError(t, err)

	assert.Equal(t, hash, tx.Message.RecentBlockhash)
	assert.Equal(t, testPayer, tx.Message.AccountKeys[0]) // payer is first

	// Compute budget instructions precede the swap payload.
	require.Len(t, tx.Message.Instructions, 3)

	prog0, err := tx.Message.Program(tx.Message.Instructions[0].ProgramIDIndex)
	require.NoError(t, err)
	assert.Equal(t, computebudget.ProgramID, prog0)

	prog1, err := tx.Message.Program(tx.Message.Instructions[1].ProgramIDIndex)
	require.NoError(t, err)
	assert.Equal(t, computebudget.ProgramID, prog1)

	prog2, err := tx.Message.Program(tx.Message.Instructions[2].ProgramIDIndex)
	require.NoError(t, err)
	assert.Equal(t, solana.MemoProgramID, prog2)
	assert.Equal(t, []byte("swap"), []byte(tx.Message.Instructions[2].Data))
}

func TestAssemble_NoInstructions(t *testing.T) {
	a := New(&fakeBlockhash{}, nil)
	_, err := a.Assemble(context.Background(), nil, testPayer, 0, 400_000)
	require.Error(t, err)
	assert.Equal(t, venue.KindMalformed, venue.KindOf(err))
}

func TestAssemble_MissingPayer(t *testing.T) {
	a := New(&fakeBlockhash{}, nil)
	_, err := a.Assemble(context.Background(), []solana.Instruction{memoInstruction("x")}, solana.PublicKey{}, 0, 400_000)
	require.Error(t, err)
	assert.Equal(t, venue.KindMalformed, venue.KindOf(err))
}

func TestAssemble_BlockhashFailure(t *testing.T) {
	provider := &fakeBlockhash{err: errors.New("rpc unavailable")}
	a := New(provider, nil)

	_, err := a.Assemble(context.Background(), []solana.Instruction{memoInstruction("x")}, testPayer, 0, 400_000)
	require.Error(t, err)
	assert.Equal(t, venue.KindUnknown, venue.KindOf(err))
}
