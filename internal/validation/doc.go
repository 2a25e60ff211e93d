// Marquee - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

// Package validation provides struct validation using go-playground/validator v10.
//
// A thread-safe singleton validator is created on first use with
// WithRequiredStructEnabled and two custom tags:
//
//   - notblank: string must contain a non-whitespace character
//   - finite: float must be neither NaN nor infinite
//
// Failures are returned as *RequestValidationError, which converts to the
// API's VALIDATION_ERROR format:
//
//	type recommendationParams struct {
//	    UserID        int      `validate:"gte=0"`
//	    Title         string   `validate:"required,notblank,max=500"`
//	    WeightContent *float64 `validate:"omitempty,finite,gte=0"`
//	}
//
//	if verr := validation.ValidateStruct(&params); verr != nil {
//	    apiErr := verr.ToAPIError()
//	    respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
//	    return
//	}
package validation
