// Package router decides which venue serves a swap. The aggregator is always
// tried first; the direct pool is a fallback reserved for pairs the
// aggregator does not trade at all.
package router

import (
	"context"

	"github.com/gagliardetto/solana-go"
	"github.com/sirupsen/logrus"

	"solana-swap-router/internal/config"
	"solana-swap-router/internal/venue"
)

// DefaultComputeUnitLimit is the compute budget requested for direct-pool
// transactions. The priority fee setting is expressed in total lamports, so
// this limit also fixes the per-unit price conversion.
const DefaultComputeUnitLimit = 400_000

// Aggregator is the primary quoting venue.
type Aggregator interface {
	GetQuote(ctx context.Context, intent venue.SwapIntent) (*venue.Quote, error)
	GetSwapTransaction(
		ctx context.Context,
		quote *venue.Quote,
		user solana.PublicKey,
		prioritizationFeeLamports uint64,
		platformFeeBps uint16,
		feeAccount string,
	) (*venue.UnsignedTransaction, error)
}

// DirectPool is the fallback venue: a single constant-product pool quoted and
// executed directly.
type DirectPool interface {
	FindPool(ctx context.Context, mintA, mintB solana.PublicKey) (*venue.PoolReserveState, error)
	GetQuote(pool *venue.PoolReserveState, intent venue.SwapIntent) (*venue.Quote, error)
	BuildSwapInstructions(
		ctx context.Context,
		pool *venue.PoolReserveState,
		intent venue.SwapIntent,
		quote *venue.Quote,
		user solana.PublicKey,
	) ([]solana.Instruction, error)
}

// Assembler turns an instruction sequence into a serialized unsigned
// transaction with a fresh blockhash.
type Assembler interface {
	Assemble(
		ctx context.Context,
		ixs []solana.Instruction,
		payer solana.PublicKey,
		priorityFeeMicroLamports uint64,
		computeUnitLimit uint32,
	) (*venue.UnsignedTransaction, error)
}

type Orchestrator struct {
	agg    Aggregator
	direct DirectPool
	asm    Assembler
	cfg    config.Provider
	log    *logrus.Logger
}

func New(agg Aggregator, direct DirectPool, asm Assembler, cfg config.Provider, log *logrus.Logger) *Orchestrator {
	if log == nil {
		log = logrus.New()
	}
	return &Orchestrator{agg: agg, direct: direct, asm: asm, cfg: cfg, log: log}
}

// Quote resolves the best available quote for the intent. The aggregator goes
// first; the direct pool is consulted only when the aggregator reports the
// pair as unsupported. Any other aggregator failure surfaces as-is, and when
// both venues fail the combined error keeps both reasons.
func (o *Orchestrator) Quote(ctx context.Context, intent venue.SwapIntent) (*venue.Quote, error) {
	settings := o.cfg.Swap()
	if !settings.Enabled {
		return nil, venue.NewError("", venue.KindDisabled, "swap is disabled")
	}
	if err := validateIntent(intent, settings.MaxSlippageBps); err != nil {
		return nil, err
	}

	quote, aggErr := o.agg.GetQuote(ctx, intent)
	if aggErr == nil {
		o.log.WithFields(logrus.Fields{
			"venue":     quote.Venue,
			"inputMint": intent.InputMint.String(),
			"outAmount": quote.OutAmount,
		}).Debug("aggregator quote served")
		return quote, nil
	}

	if venue.KindOf(aggErr) != venue.KindUnsupported {
		return nil, aggErr
	}

	o.log.WithError(aggErr).Info("aggregator does not trade the pair, trying direct pool")

	quote, directErr := o.quoteDirect(ctx, intent)
	if directErr != nil {
		return nil, &venue.RouteError{AggregatorErr: aggErr, DirectErr: directErr}
	}
	return quote, nil
}

func (o *Orchestrator) quoteDirect(ctx context.Context, intent venue.SwapIntent) (*venue.Quote, error) {
	pool, err := o.direct.FindPool(ctx, intent.InputMint, intent.OutputMint)
	if err != nil {
		return nil, err
	}
	return o.direct.GetQuote(pool, intent)
}

// BuildTransaction turns an accepted quote into a serialized unsigned
// transaction for the venue that produced it. Settings are re-read here:
// a disable that lands between quote and build stops the build.
func (o *Orchestrator) BuildTransaction(ctx context.Context, intent venue.SwapIntent, quote *venue.Quote) (*venue.UnsignedTransaction, error) {
	settings := o.cfg.Swap()
	if !settings.Enabled {
		return nil, venue.NewError("", venue.KindDisabled, "swap is disabled")
	}
	if quote == nil {
		return nil, venue.NewError("", venue.KindMalformed, "a quote is required")
	}

	switch quote.Venue {
	case venue.VenueAggregator:
		var feeBps uint16
		var feeAccount string
		if settings.PlatformFeeConfigured() {
			feeBps = settings.PlatformFeeBps
			feeAccount = settings.TreasuryWallet
		}
		return o.agg.GetSwapTransaction(ctx, quote, intent.UserAddress,
			settings.PriorityFeeLamports(), feeBps, feeAccount)

	case venue.VenueDirectPool:
		pool, err := o.direct.FindPool(ctx, intent.InputMint, intent.OutputMint)
		if err != nil {
			return nil, err
		}
		if pool.PoolID != quote.VenueRouteID {
			return nil, venue.Errorf(venue.VenueDirectPool, venue.KindUnknown,
				"pool selection changed since quote (%s -> %s)", quote.VenueRouteID, pool.PoolID)
		}
		ixs, err := o.direct.BuildSwapInstructions(ctx, pool, intent, quote, intent.UserAddress)
		if err != nil {
			return nil, err
		}
		return o.asm.Assemble(ctx, ixs, intent.UserAddress,
			priorityFeeMicroLamports(settings.PriorityFeeLamports(), DefaultComputeUnitLimit),
			DefaultComputeUnitLimit)

	default:
		return nil, venue.Errorf("", venue.KindMalformed, "unknown quote venue %q", quote.Venue)
	}
}

// priorityFeeMicroLamports spreads a total lamport budget over the compute
// unit limit, as the compute budget program prices per unit.
func priorityFeeMicroLamports(totalLamports uint64, computeUnitLimit uint32) uint64 {
	if computeUnitLimit == 0 {
		return 0
	}
	return totalLamports * 1_000_000 / uint64(computeUnitLimit)
}

func validateIntent(intent venue.SwapIntent, maxSlippageBps uint16) error {
	if intent.Amount == 0 {
		return venue.NewError("", venue.KindMalformed, "amount must be positive")
	}
	if intent.InputMint.IsZero() || intent.OutputMint.IsZero() {
		return venue.NewError("", venue.KindMalformed, "input and output mints are required")
	}
	if intent.InputMint == intent.OutputMint {
		return venue.NewError("", venue.KindMalformed, "input and output mints must differ")
	}
	if intent.SlippageBps > maxSlippageBps {
		return venue.Errorf("", venue.KindMalformed,
			"slippage %d bps exceeds the configured maximum %d bps", intent.SlippageBps, maxSlippageBps)
	}
	return nil
}
