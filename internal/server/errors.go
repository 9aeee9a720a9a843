package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"solana-swap-router/internal/venue"
)

// NotFoundJSON returns a custom HTTP error handler so every error, including
// router-level 404s, has the same JSON shape.
func NotFoundJSON() echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		if he, ok := err.(*echo.HTTPError); ok {
			_ = c.JSON(he.Code, ErrorResponse{
				Error: http.StatusText(he.Code),
				Code:  he.Code,
			})
			return
		}

		_ = c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "internal server error",
			Code:  http.StatusInternalServerError,
		})
	}
}

// statusForSwapError maps the typed failure taxonomy onto HTTP. The message is
// deliberately generic; the typed detail stays in logs.
func statusForSwapError(err error) (int, string) {
	switch venue.KindOf(err) {
	case venue.KindDisabled:
		return http.StatusForbidden, "swap is disabled"
	case venue.KindUnsupported, venue.KindNoLiquidity:
		return http.StatusNotFound, "no route available for this pair"
	case venue.KindRateLimited:
		return http.StatusTooManyRequests, "venue rate limited, try again"
	case venue.KindMalformed:
		return http.StatusBadRequest, "invalid swap request"
	default:
		return http.StatusBadGateway, "venue request failed"
	}
}
