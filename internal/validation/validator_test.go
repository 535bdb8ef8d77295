// Cinescope - Movie Catalog and Recommendation Service
// Copyright 2026 Cinescope Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cinescope/cinescope

package validation

import (
	"strings"
	"testing"
)

type rateRequest struct {
	MovieID int64   `validate:"required,gt=0"`
	Score   float64 `validate:"rating_score"`
	Review  string  `validate:"omitempty,max=2000"`
}

func TestValidateStruct(t *testing.T) {
	tests := []struct {
		name      string
		req       rateRequest
		wantErr   bool
		wantField string
	}{
		{
			name: "valid request",
			req:  rateRequest{MovieID: 1, Score: 4.5},
		},
		{
			name: "valid with review",
			req:  rateRequest{MovieID: 1, Score: 0.5, Review: "slow start"},
		},
		{
			name:      "missing movie id",
			req:       rateRequest{Score: 4.0},
			wantErr:   true,
			wantField: "MovieID",
		},
		{
			name:      "score above scale",
			req:       rateRequest{MovieID: 1, Score: 5.5},
			wantErr:   true,
			wantField: "Score",
		},
		{
			name:      "score below scale",
			req:       rateRequest{MovieID: 1, Score: 0.0},
			wantErr:   true,
			wantField: "Score",
		},
		{
			name:      "review too long",
			req:       rateRequest{MovieID: 1, Score: 3.0, Review: strings.Repeat("x", 2001)},
			wantErr:   true,
			wantField: "Review",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verr := ValidateStruct(&tt.req)
			if (verr != nil) != tt.wantErr {
				t.Fatalf("ValidateStruct = %v, wantErr %v", verr, tt.wantErr)
			}
			if verr == nil {
				return
			}
			if len(verr.Errors()) != 1 {
				t.Fatalf("got %d errors, want 1: %v", len(verr.Errors()), verr)
			}
			if got := verr.Errors()[0].Field(); got != tt.wantField {
				t.Errorf("failed field = %s, want %s", got, tt.wantField)
			}
		})
	}
}

func TestToAPIErrorMultipleFields(t *testing.T) {
	verr := ValidateStruct(&rateRequest{Score: 9.0})
	if verr == nil {
		t.Fatal("expected validation errors")
	}
	apiErr := verr.ToAPIError()
	if apiErr.Code != "VALIDATION_ERROR" {
		t.Errorf("code = %s, want VALIDATION_ERROR", apiErr.Code)
	}
	if len(verr.Errors()) < 2 {
		t.Fatalf("expected two field errors, got %v", verr)
	}
	if _, ok := apiErr.Details["fields"]; !ok {
		t.Error("multi-field error should list fields in details")
	}
}
