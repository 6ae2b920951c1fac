// FitLens - Trait-Aware Clothing Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fitlens

package validation

import (
	"strings"
	"testing"

	"github.com/tomtom215/fitlens/internal/models"
)

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

func TestValidateStruct_Traits(t *testing.T) {
	valid := models.DefaultTraits()

	tests := []struct {
		name      string
		modify    func(*models.Traits)
		wantField string
		wantTag   string
	}{
		{name: "defaults are valid", modify: func(*models.Traits) {}},
		{name: "empty hair type allowed", modify: func(tr *models.Traits) { tr.HairType = "" }},
		{
			name:      "bad skin temperature",
			modify:    func(tr *models.Traits) { tr.SkinTemperature = "hot" },
			wantField: "skin_temperature",
			wantTag:   "oneof",
		},
		{
			name:      "missing frame",
			modify:    func(tr *models.Traits) { tr.Frame = "" },
			wantField: "frame",
			wantTag:   "required",
		},
		{
			name:      "bad hair color",
			modify:    func(tr *models.Traits) { tr.HairColor = "green" },
			wantField: "hair_color",
			wantTag:   "oneof",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := valid
			tt.modify(&tr)

			verr := ValidateStruct(&tr)
			if tt.wantField == "" {
				if verr != nil {
					t.Fatalf("ValidateStruct() unexpected error: %v", verr)
				}
				return
			}
			if verr == nil {
				t.Fatal("ValidateStruct() expected error, got nil")
			}

			errs := verr.Errors()
			if len(errs) != 1 {
				t.Fatalf("Expected 1 error, got %d: %v", len(errs), verr)
			}
			if errs[0].Field() != tt.wantField {
				t.Errorf("Field() = %q, want %q", errs[0].Field(), tt.wantField)
			}
			if errs[0].Tag() != tt.wantTag {
				t.Errorf("Tag() = %q, want %q", errs[0].Tag(), tt.wantTag)
			}
		})
	}
}

func TestValidateStruct_TrackEvent(t *testing.T) {
	ev := models.TrackEvent{Event: "share", ProductID: "", SessionID: "s1"}

	verr := ValidateStruct(&ev)
	if verr == nil {
		t.Fatal("Expected validation error")
	}

	apiErr := verr.ToAPIError()
	if apiErr.Code != "VALIDATION_ERROR" {
		t.Errorf("Code = %q, want VALIDATION_ERROR", apiErr.Code)
	}
	if got := apiErr.Fields["event"]; got != "event must be one of: click like hide" {
		t.Errorf("event message = %q", got)
	}
	if got := apiErr.Fields["product_id"]; got != "product_id is required" {
		t.Errorf("product_id message = %q", got)
	}
	if !strings.Contains(apiErr.Message, "; ") {
		t.Errorf("Expected combined message, got %q", apiErr.Message)
	}
}

func TestValidateVar(t *testing.T) {
	if verr := ValidateVar("style", "casual", "required,oneof=casual traditional"); verr != nil {
		t.Errorf("Unexpected error: %v", verr)
	}

	verr := ValidateVar("style", "formal", "required,oneof=casual traditional")
	if verr == nil {
		t.Fatal("Expected error for formal style")
	}
	if got := verr.Error(); got != "style must be one of: casual traditional" {
		t.Errorf("Error() = %q", got)
	}
}

func TestToAPIError_Empty(t *testing.T) {
	ve := &RequestValidationError{}
	apiErr := ve.ToAPIError()
	if apiErr.Message != "Validation failed" {
		t.Errorf("Message = %q", apiErr.Message)
	}
	if ve.Error() != "validation failed" {
		t.Errorf("Error() = %q", ve.Error())
	}
}

func TestTranslateMinMax(t *testing.T) {
	tests := []struct {
		tag, param string
		isString   bool
		want       string
	}{
		{"min", "1", true, "x must be at least 1 characters"},
		{"max", "256", true, "x must be at most 256 characters"},
		{"min", "0", false, "x must be at least 0"},
		{"max", "5", false, "x must be at most 5"},
		{"email", "", true, "x failed email validation"},
	}
	for _, tt := range tests {
		if got := translate("x", tt.tag, tt.param, tt.isString); got != tt.want {
			t.Errorf("translate(%s) = %q, want %q", tt.tag, got, tt.want)
		}
	}
}
