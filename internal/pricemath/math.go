// Package pricemath implements constant-product AMM quote math on raw integer
// token amounts. All functions are pure; all division truncates toward zero so
// a venue never under-delivers relative to its own reserves. big.Int is used
// for the multiply-before-divide steps, since amountIn * reserveOut can exceed
// 64 bits for high-decimal tokens at scale.
package pricemath

import (
	"math/big"

	"solana-swap-router/internal/venue"
)

const bpsDenominator = 10000

// QuoteConstantProduct computes the output amount for a swap against a
// constant-product pool with the fee deducted from the input:
//
//	amountInAfterFee = amountIn * (10000 - feeBps) / 10000
//	amountOut        = amountInAfterFee * reserveOut / (reserveIn + amountInAfterFee)
func QuoteConstantProduct(reserveIn, reserveOut, amountIn uint64, feeBps uint16) (uint64, error) {
	if reserveIn == 0 || reserveOut == 0 {
		return 0, venue.NewError("", venue.KindNoLiquidity, "pool has an empty reserve")
	}
	if amountIn == 0 {
		return 0, venue.NewError("", venue.KindMalformed, "amount must be positive")
	}
	if feeBps > bpsDenominator {
		return 0, venue.Errorf("", venue.KindMalformed, "fee %d bps exceeds 100%%", feeBps)
	}

	afterFee := new(big.Int).SetUint64(amountIn)
	afterFee.Mul(afterFee, big.NewInt(bpsDenominator-int64(feeBps)))
	afterFee.Div(afterFee, big.NewInt(bpsDenominator))

	numerator := new(big.Int).Mul(afterFee, new(big.Int).SetUint64(reserveOut))
	denominator := new(big.Int).Add(new(big.Int).SetUint64(reserveIn), afterFee)

	out := numerator.Div(numerator, denominator)
	if !out.IsUint64() {
		return 0, venue.NewError("", venue.KindMalformed, "output amount overflows uint64")
	}
	return out.Uint64(), nil
}

// ApplySlippage returns the minimum acceptable output after the caller's
// slippage tolerance: floor(amountOut * (10000 - slippageBps) / 10000).
func ApplySlippage(amountOut uint64, slippageBps uint16) uint64 {
	if slippageBps >= bpsDenominator {
		return 0
	}
	min := new(big.Int).SetUint64(amountOut)
	min.Mul(min, big.NewInt(bpsDenominator-int64(slippageBps)))
	min.Div(min, big.NewInt(bpsDenominator))
	return min.Uint64()
}

// PriceImpactBps approximates the share of pool depth consumed by the input:
// floor(amountIn * 10000 / reserveIn). Returns 0 for an empty reserve; callers
// reject those pools before quoting.
func PriceImpactBps(amountIn, reserveIn uint64) int64 {
	if reserveIn == 0 {
		return 0
	}
	impact := new(big.Int).SetUint64(amountIn)
	impact.Mul(impact, big.NewInt(bpsDenominator))
	impact.Div(impact, new(big.Int).SetUint64(reserveIn))
	if !impact.IsInt64() {
		// amountIn vastly exceeds the reserve; saturate rather than wrap.
		return int64(^uint64(0) >> 1)
	}
	return impact.Int64()
}

// FeeAmount returns the raw input-side fee: floor(amountIn * feeBps / 10000).
func FeeAmount(amountIn uint64, feeBps uint16) uint64 {
	fee := new(big.Int).SetUint64(amountIn)
	fee.Mul(fee, big.NewInt(int64(feeBps)))
	fee.Div(fee, big.NewInt(bpsDenominator))
	return fee.Uint64()
}
