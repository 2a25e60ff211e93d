// Marquee - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package api

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
)

// Query parameter structs, checked with validation.ValidateStruct after parsing.

type recommendationsParams struct {
	UserID        int
	Title         string   `validate:"omitempty,notblank,max=500"`
	K             int      `validate:"min=0"`
	WeightContent *float64 `validate:"omitempty,finite,gte=0"`
	WeightCollab  *float64 `validate:"omitempty,finite,gte=0"`
}

type similarParams struct {
	Title string `validate:"required,notblank,max=500"`
	K     int    `validate:"min=0"`
}

type searchParams struct {
	Query string `validate:"max=500"`
	Limit int    `validate:"min=0,max=1000"`
}

type topParams struct {
	UserID int
	K      int `validate:"min=0"`
}

// parameterError describes one unparseable or missing parameter.
type parameterError struct {
	Parameter string
	Err       error
}

func (e *parameterError) Error() string {
	return fmt.Sprintf("%s: %v", e.Parameter, e.Err)
}

func (e *parameterError) Unwrap() error {
	return e.Err
}

// details renders the error for APIError.Details.
func (e *parameterError) details() map[string]interface{} {
	return map[string]interface{}{"parameter": e.Parameter}
}

// queryInt parses an optional integer query parameter.
func queryInt(q url.Values, key string, def int) (int, error) {
	raw := strings.TrimSpace(q.Get(key))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &parameterError{Parameter: key, Err: ErrInvalidParameter}
	}
	return v, nil
}

// requiredQueryInt parses a mandatory integer query parameter.
func requiredQueryInt(q url.Values, key string) (int, error) {
	if strings.TrimSpace(q.Get(key)) == "" {
		return 0, &parameterError{Parameter: key, Err: ErrMissingParameter}
	}
	return queryInt(q, key, 0)
}

// queryFloat parses an optional float query parameter; nil means absent.
func queryFloat(q url.Values, key string) (*float64, error) {
	raw := strings.TrimSpace(q.Get(key))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, &parameterError{Parameter: key, Err: ErrInvalidParameter}
	}
	return &v, nil
}

// pathInt parses an integer chi URL parameter.
func pathInt(r *http.Request, key string) (int, error) {
	raw := chi.URLParam(r, key)
	if raw == "" {
		return 0, &parameterError{Parameter: key, Err: ErrMissingParameter}
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &parameterError{Parameter: key, Err: ErrInvalidParameter}
	}
	return v, nil
}

func parseRecommendationsParams(r *http.Request) (*recommendationsParams, error) {
	q := r.URL.Query()
	p := &recommendationsParams{Title: q.Get("title")}

	var err error
	if p.UserID, err = requiredQueryInt(q, "user_id"); err != nil {
		return nil, err
	}
	if p.K, err = queryInt(q, "k", 0); err != nil {
		return nil, err
	}
	if p.WeightContent, err = queryFloat(q, "weight_content"); err != nil {
		return nil, err
	}
	if p.WeightCollab, err = queryFloat(q, "weight_collab"); err != nil {
		return nil, err
	}
	return p, nil
}

func parseSimilarParams(r *http.Request) (*similarParams, error) {
	q := r.URL.Query()
	k, err := queryInt(q, "k", 0)
	if err != nil {
		return nil, err
	}
	return &similarParams{Title: q.Get("title"), K: k}, nil
}

func parseSearchParams(r *http.Request) (*searchParams, error) {
	q := r.URL.Query()
	limit, err := queryInt(q, "limit", defaultSearchLimit)
	if err != nil {
		return nil, err
	}
	return &searchParams{Query: q.Get("q"), Limit: limit}, nil
}

func parseTopParams(r *http.Request) (*topParams, error) {
	userID, err := pathInt(r, "userID")
	if err != nil {
		return nil, err
	}
	k, err := queryInt(r.URL.Query(), "k", 0)
	if err != nil {
		return nil, err
	}
	return &topParams{UserID: userID, K: k}, nil
}
