package venue

import (
	"errors"
	"fmt"
)

// Kind classifies a venue failure. The orchestrator switches on it to decide
// whether to fall back: only KindUnsupported triggers the DirectPool attempt.
type Kind int

const (
	KindUnknown Kind = iota
	KindUnsupported
	KindNoLiquidity
	KindRateLimited
	KindMalformed
	KindDisabled
)

func (k Kind) String() string {
	switch k {
	case KindUnsupported:
		return "unsupported"
	case KindNoLiquidity:
		return "no_liquidity"
	case KindRateLimited:
		return "rate_limited"
	case KindMalformed:
		return "malformed"
	case KindDisabled:
		return "disabled"
	default:
		return "unknown"
	}
}

// Error is a typed venue failure. Venue is empty for failures raised by pure
// code (e.g. price math) before a venue is involved.
type Error struct {
	Venue Venue
	Kind  Kind
	Msg   string
	Err   error
}

func (e *Error) Error() string {
	prefix := string(e.Venue)
	if prefix == "" {
		prefix = "swap"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%s): %v", prefix, e.Msg, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s (%s)", prefix, e.Msg, e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// NewError builds a typed venue failure.
func NewError(v Venue, k Kind, msg string) *Error {
	return &Error{Venue: v, Kind: k, Msg: msg}
}

// Errorf builds a typed venue failure with a formatted message.
func Errorf(v Venue, k Kind, format string, args ...any) *Error {
	return &Error{Venue: v, Kind: k, Msg: fmt.Sprintf(format, args...)}
}

// Wrap attaches venue and kind to an underlying error.
func Wrap(v Venue, k Kind, err error, msg string) *Error {
	return &Error{Venue: v, Kind: k, Msg: msg, Err: err}
}

// KindOf extracts the failure kind from any error in the chain. A RouteError
// reports the DirectPool leg's kind, since that is the terminal failure of the
// fallback chain. Untyped errors are KindUnknown.
func KindOf(err error) Kind {
	var re *RouteError
	if errors.As(err, &re) && re.DirectErr != nil {
		return KindOf(re.DirectErr)
	}
	var ve *Error
	if errors.As(err, &ve) {
		return ve.Kind
	}
	return KindUnknown
}

// RouteError reports a request for which the fallback chain was exhausted:
// the aggregator failed and the DirectPool attempt failed too. Both reasons
// are preserved; the first venue's error is never swallowed.
type RouteError struct {
	AggregatorErr error
	DirectErr     error
}

func (e *RouteError) Error() string {
	return fmt.Sprintf("no venue could serve the swap: aggregator: %v; directpool: %v",
		e.AggregatorErr, e.DirectErr)
}

func (e *RouteError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.AggregatorErr != nil {
		errs = append(errs, e.AggregatorErr)
	}
	if e.DirectErr != nil {
		errs = append(errs, e.DirectErr)
	}
	return errs
}
