// Recommender System - Item-Item Collaborative Filtering for Media Titles
// Copyright 2026 Erik Lledo (lledoerik)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lledoerik/recommender-system

package validation

import (
	"strings"
	"testing"
)

type pagedRequest struct {
	Query  string `validate:"required,max=64"`
	Limit  int    `validate:"min=0,max=100"`
	Offset int    `validate:"min=0"`
}

func TestValidateStructPasses(t *testing.T) {
	req := pagedRequest{Query: "trigger", Limit: 10, Offset: 0}
	if verr := ValidateStruct(&req); verr != nil {
		t.Fatalf("expected valid struct, got %v", verr)
	}
}

func TestValidateStructRequiredField(t *testing.T) {
	req := pagedRequest{Limit: 10}
	verr := ValidateStruct(&req)
	if verr == nil {
		t.Fatal("expected validation error for missing query")
	}

	errs := verr.Errors()
	if len(errs) != 1 {
		t.Fatalf("expected 1 error, got %d", len(errs))
	}
	if errs[0].Field() != "Query" || errs[0].Tag() != "required" {
		t.Errorf("unexpected error: field=%s tag=%s", errs[0].Field(), errs[0].Tag())
	}
	if !strings.Contains(errs[0].Error(), "required") {
		t.Errorf("expected human-readable message, got %q", errs[0].Error())
	}
}

func TestToAPIErrorMultipleFields(t *testing.T) {
	req := pagedRequest{Limit: 500, Offset: -1}
	verr := ValidateStruct(&req)
	if verr == nil {
		t.Fatal("expected validation errors")
	}

	apiErr := verr.ToAPIError()
	if apiErr.Code != "VALIDATION_FAILED" {
		t.Errorf("expected VALIDATION_FAILED, got %s", apiErr.Code)
	}
	if _, ok := apiErr.Details["fields"]; !ok {
		t.Error("expected per-field details for multiple errors")
	}
}

func TestTranslateMinMaxMessages(t *testing.T) {
	req := pagedRequest{Query: "q", Limit: 500}
	verr := ValidateStruct(&req)
	if verr == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(verr.Error(), "at most 100") {
		t.Errorf("expected max message, got %q", verr.Error())
	}
}
