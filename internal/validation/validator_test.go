// Marquee - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package validation

import (
	"math"
	"strings"
	"testing"
)

// ===================================================================================================
// Singleton Validator Tests
// ===================================================================================================

func TestGetValidator_Singleton(t *testing.T) {
	v1 := GetValidator()
	v2 := GetValidator()

	if v1 != v2 {
		t.Error("GetValidator() should return the same singleton instance")
	}
	if v1 == nil {
		t.Error("GetValidator() should not return nil")
	}
}

// ===================================================================================================
// ValidateStruct Tests
// ===================================================================================================

func ptr(f float64) *float64 { return &f }

// recommendationRequest mirrors the shape of the API's query parameter structs.
type recommendationRequest struct {
	UserID        int      `validate:"gte=0"`
	Title         string   `validate:"required,notblank,max=20"`
	K             int      `validate:"min=0,max=100"`
	WeightContent *float64 `validate:"omitempty,finite,gte=0"`
	Sort          string   `validate:"omitempty,oneof=score title"`
}

func TestValidateStruct_Valid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input recommendationRequest
	}{
		{
			name:  "all fields",
			input: recommendationRequest{UserID: 1, Title: "Heat (1995)", K: 5, WeightContent: ptr(0.4), Sort: "score"},
		},
		{
			name:  "optional fields omitted",
			input: recommendationRequest{Title: "Heat"},
		},
		{
			name:  "boundary values",
			input: recommendationRequest{UserID: 0, Title: "x", K: 100, WeightContent: ptr(0)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if err := ValidateStruct(&tt.input); err != nil {
				t.Errorf("ValidateStruct() returned unexpected error: %v", err)
			}
		})
	}
}

func TestValidateStruct_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		input     recommendationRequest
		wantField string
		wantTag   string
	}{
		{
			name:      "missing title",
			input:     recommendationRequest{},
			wantField: "Title",
			wantTag:   "required",
		},
		{
			name:      "blank title",
			input:     recommendationRequest{Title: "   "},
			wantField: "Title",
			wantTag:   "notblank",
		},
		{
			name:      "title too long",
			input:     recommendationRequest{Title: strings.Repeat("a", 21)},
			wantField: "Title",
			wantTag:   "max",
		},
		{
			name:      "negative user",
			input:     recommendationRequest{Title: "Heat", UserID: -1},
			wantField: "UserID",
			wantTag:   "gte",
		},
		{
			name:      "k too large",
			input:     recommendationRequest{Title: "Heat", K: 101},
			wantField: "K",
			wantTag:   "max",
		},
		{
			name:      "NaN weight",
			input:     recommendationRequest{Title: "Heat", WeightContent: ptr(math.NaN())},
			wantField: "WeightContent",
			wantTag:   "finite",
		},
		{
			name:      "infinite weight",
			input:     recommendationRequest{Title: "Heat", WeightContent: ptr(math.Inf(1))},
			wantField: "WeightContent",
			wantTag:   "finite",
		},
		{
			name:      "negative weight",
			input:     recommendationRequest{Title: "Heat", WeightContent: ptr(-0.5)},
			wantField: "WeightContent",
			wantTag:   "gte",
		},
		{
			name:      "unknown sort",
			input:     recommendationRequest{Title: "Heat", Sort: "year"},
			wantField: "Sort",
			wantTag:   "oneof",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := ValidateStruct(&tt.input)
			if err == nil {
				t.Fatal("ValidateStruct() expected error, got nil")
			}
			errs := err.Errors()
			if len(errs) != 1 {
				t.Fatalf("got %d errors, want 1: %v", len(errs), err)
			}
			if errs[0].Field() != tt.wantField || errs[0].Tag() != tt.wantTag {
				t.Errorf("error = %s/%s, want %s/%s", errs[0].Field(), errs[0].Tag(), tt.wantField, tt.wantTag)
			}
		})
	}
}

func TestValidateFinite_NonFloatField(t *testing.T) {
	t.Parallel()

	type wrongKind struct {
		N int `validate:"finite"`
	}
	if err := ValidateStruct(&wrongKind{N: 1}); err == nil {
		t.Error("finite on an int field should fail")
	}
}

// ===================================================================================================
// APIError Conversion Tests
// ===================================================================================================

func TestToAPIError_SingleError(t *testing.T) {
	t.Parallel()

	err := ValidateStruct(&recommendationRequest{Title: "Heat", K: 500})
	if err == nil {
		t.Fatal("expected validation error")
	}

	apiErr := err.ToAPIError()
	if apiErr.Code != "VALIDATION_ERROR" {
		t.Errorf("Code = %q, want VALIDATION_ERROR", apiErr.Code)
	}
	if apiErr.Message != "K must be at most 100" {
		t.Errorf("Message = %q, want %q", apiErr.Message, "K must be at most 100")
	}
	if apiErr.Details["field"] != "K" {
		t.Errorf("Details[field] = %v, want K", apiErr.Details["field"])
	}
}

func TestToAPIError_MultipleErrors(t *testing.T) {
	t.Parallel()

	err := ValidateStruct(&recommendationRequest{UserID: -1, K: -1})
	if err == nil {
		t.Fatal("expected validation error")
	}
	if len(err.Errors()) != 3 {
		t.Fatalf("got %d errors, want 3: %v", len(err.Errors()), err)
	}

	apiErr := err.ToAPIError()
	fields, ok := apiErr.Details["fields"].([]map[string]interface{})
	if !ok || len(fields) != 3 {
		t.Fatalf("Details[fields] = %#v", apiErr.Details["fields"])
	}
	for _, want := range []string{"UserID:", "Title:", "K:"} {
		if !strings.Contains(apiErr.Message, want) {
			t.Errorf("Message %q missing %q", apiErr.Message, want)
		}
	}
}

func TestToAPIError_Empty(t *testing.T) {
	t.Parallel()

	ve := &RequestValidationError{}
	if ve.Error() != "validation failed" {
		t.Errorf("Error() = %q", ve.Error())
	}
	if apiErr := ve.ToAPIError(); apiErr.Message != "Validation failed" {
		t.Errorf("Message = %q", apiErr.Message)
	}
}

// ===================================================================================================
// Error Message Tests
// ===================================================================================================

func TestErrorMessages(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input recommendationRequest
		want  string
	}{
		{"required", recommendationRequest{}, "Title is required"},
		{"notblank", recommendationRequest{Title: " "}, "Title must not be blank"},
		{"string max", recommendationRequest{Title: strings.Repeat("b", 30)}, "Title must be at most 20 characters"},
		{"gte", recommendationRequest{Title: "a", UserID: -3}, "UserID must be greater than or equal to 0"},
		{"finite", recommendationRequest{Title: "a", WeightContent: ptr(math.Inf(-1))}, "WeightContent must be a finite number"},
		{"oneof", recommendationRequest{Title: "a", Sort: "x"}, "Sort must be one of: score title"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := ValidateStruct(&tt.input)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if got := err.Errors()[0].Error(); got != tt.want {
				t.Errorf("message = %q, want %q", got, tt.want)
			}
		})
	}
}
