// Marquee - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package api

import (
	"context"
	"errors"

	"github.com/tomtom215/marquee/internal/logging"
	"github.com/tomtom215/marquee/internal/recommend"
)

// ErrMissingParameter indicates a required query or path parameter was absent.
var ErrMissingParameter = errors.New("missing required parameter")

// ErrInvalidParameter indicates a parameter could not be parsed.
var ErrInvalidParameter = errors.New("invalid parameter")

// writeEngineError maps an engine error onto the response envelope.
//
//	ErrNotTrained                      503 SERVICE_UNAVAILABLE
//	ErrInvalidRequest                  400 BAD_REQUEST
//	context deadline or cancellation   503 SERVICE_UNAVAILABLE
//	anything else                      500 INTERNAL_ERROR, logged
func writeEngineError(rw *ResponseWriter, err error) {
	switch {
	case errors.Is(err, recommend.ErrNotTrained):
		rw.ServiceUnavailable("Recommendation model is still loading")
	case errors.Is(err, recommend.ErrInvalidRequest):
		rw.BadRequest(err.Error())
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		logging.Ctx(rw.r.Context()).Warn().Err(err).Msg("request aborted")
		rw.ServiceUnavailable("Request timed out")
	default:
		logging.Ctx(rw.r.Context()).Error().Err(err).Msg("recommendation request failed")
		rw.InternalError("Failed to compute recommendations")
	}
}
