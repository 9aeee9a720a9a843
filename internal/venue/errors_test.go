package venue

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindUnsupported, KindOf(NewError(VenueAggregator, KindUnsupported, "x")))
	assert.Equal(t, KindUnknown, KindOf(errors.New("plain")))
	assert.Equal(t, KindUnknown, KindOf(nil))

	// Wrapping preserves the kind.
	wrapped := fmt.Errorf("outer: %w", NewError(VenueDirectPool, KindNoLiquidity, "no pool"))
	assert.Equal(t, KindNoLiquidity, KindOf(wrapped))
}

func TestKindOf_RouteError(t *testing.T) {
	re := &RouteError{
		AggregatorErr: NewError(VenueAggregator, KindUnsupported, "not tradable"),
		DirectErr:     NewError(VenueDirectPool, KindNoLiquidity, "no pool"),
	}

	// The direct leg is the terminal failure of the fallback chain.
	assert.Equal(t, KindNoLiquidity, KindOf(re))

	// Both legs stay reachable through the chain.
	var ve *Error
	require.ErrorAs(t, re, &ve)
	assert.Contains(t, re.Error(), "aggregator")
	assert.Contains(t, re.Error(), "directpool")
}

func TestErrorMessage(t *testing.T) {
	err := Wrap(VenueAggregator, KindRateLimited, errors.New("429"), "quote failed")
	assert.Contains(t, err.Error(), "aggregator")
	assert.Contains(t, err.Error(), "rate_limited")
	assert.ErrorContains(t, err, "429")

	// Venue-less math errors get a neutral prefix.
	bare := NewError("", KindMalformed, "amount must be positive")
	assert.Contains(t, bare.Error(), "swap:")
}
