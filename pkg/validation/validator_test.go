package validation

import (
	"strings"
	"testing"
)

// TestValidateAggregationRequest tests aggregation request validation
func TestValidateAggregationRequest(t *testing.T) {
	tests := []struct {
		name        string
		req         *AggregationRequest
		expectError bool
		errorField  string
	}{
		{
			name:        "Valid none mode",
			req:         &AggregationRequest{Mode: "none"},
			expectError: false,
		},
		{
			name:        "Valid by-category mode",
			req:         &AggregationRequest{Mode: "by-category"},
			expectError: false,
		},
		{
			name:        "Empty mode - invalid",
			req:         &AggregationRequest{Mode: ""},
			expectError: true,
			errorField:  "Mode",
		},
		{
			name:        "Unknown mode - invalid",
			req:         &AggregationRequest{Mode: "by-status"},
			expectError: true,
			errorField:  "Mode",
		},
		{
			name:        "Uppercase mode - invalid",
			req:         &AggregationRequest{Mode: "None"},
			expectError: true,
			errorField:  "Mode",
		},
		{
			name:        "Nil request - invalid",
			req:         nil,
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAggregationRequest(tt.req)

			if tt.expectError && err == nil {
				t.Errorf("Expected error but got nil")
			}

			if !tt.expectError && err != nil {
				t.Errorf("Expected no error but got: %v", err)
			}

			if tt.expectError && err != nil && tt.errorField != "" {
				if !strings.Contains(err.Error(), tt.errorField) {
					t.Errorf("Expected error for field %s, but got: %v", tt.errorField, err)
				}
			}
		})
	}
}

// TestValidatePlotRequest tests plot option validation
func TestValidatePlotRequest(t *testing.T) {
	tests := []struct {
		name        string
		req         *PlotRequest
		expectError bool
		errorField  string
	}{
		{
			name:        "Empty request - valid (all defaults)",
			req:         &PlotRequest{},
			expectError: false,
		},
		{
			name: "Fully specified - valid",
			req: &PlotRequest{
				Format: "svg",
				Layout: "hierarchical",
				Width:  1280,
				Height: 720,
				Seed:   7,
				Title:  "Pipeline signals",
			},
			expectError: false,
		},
		{
			name:        "Unknown format - invalid",
			req:         &PlotRequest{Format: "png"},
			expectError: true,
			errorField:  "Format",
		},
		{
			name:        "Unknown layout - invalid",
			req:         &PlotRequest{Layout: "spiral"},
			expectError: true,
			errorField:  "Layout",
		},
		{
			name:        "Width below minimum - invalid",
			req:         &PlotRequest{Width: 100, Height: 720},
			expectError: true,
			errorField:  "Width",
		},
		{
			name:        "Height above maximum - invalid",
			req:         &PlotRequest{Width: 1280, Height: 5000},
			expectError: true,
			errorField:  "Height",
		},
		{
			name:        "Width without height - invalid",
			req:         &PlotRequest{Width: 1280},
			expectError: true,
			errorField:  "Width",
		},
		{
			name:        "Height without width - invalid",
			req:         &PlotRequest{Height: 720},
			expectError: true,
			errorField:  "Width",
		},
		{
			name:        "Title too long - invalid",
			req:         &PlotRequest{Title: strings.Repeat("x", 201)},
			expectError: true,
			errorField:  "Title",
		},
		{
			name:        "Nil request - invalid",
			req:         nil,
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePlotRequest(tt.req)

			if tt.expectError && err == nil {
				t.Errorf("Expected error but got nil")
			}

			if !tt.expectError && err != nil {
				t.Errorf("Expected no error but got: %v", err)
			}

			if tt.expectError && err != nil && tt.errorField != "" {
				if !strings.Contains(err.Error(), tt.errorField) {
					t.Errorf("Expected error for field %s, but got: %v", tt.errorField, err)
				}
			}
		})
	}
}

// TestValidateCanvas tests canvas dimension validation
func TestValidateCanvas(t *testing.T) {
	tests := []struct {
		name        string
		width       int
		height      int
		expectError bool
	}{
		{
			name:        "Default canvas - valid",
			width:       960,
			height:      640,
			expectError: false,
		},
		{
			name:        "At minimum - valid",
			width:       160,
			height:      160,
			expectError: false,
		},
		{
			name:        "At maximum - valid",
			width:       4096,
			height:      4096,
			expectError: false,
		},
		{
			name:        "Width below minimum - invalid",
			width:       159,
			height:      640,
			expectError: true,
		},
		{
			name:        "Height above maximum - invalid",
			width:       960,
			height:      4097,
			expectError: true,
		},
		{
			name:        "Zero canvas - invalid",
			width:       0,
			height:      0,
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCanvas(tt.width, tt.height)

			if tt.expectError && err == nil {
				t.Errorf("Expected error for %dx%d but got nil", tt.width, tt.height)
			}

			if !tt.expectError && err != nil {
				t.Errorf("Expected no error for %dx%d but got: %v", tt.width, tt.height, err)
			}
		})
	}
}

// TestValidateTemplateName tests fixture template name validation
func TestValidateTemplateName(t *testing.T) {
	tests := []struct {
		name        string
		template    string
		expectError bool
	}{
		{
			name:        "Valid simple name",
			template:    "research-pipeline",
			expectError: false,
		},
		{
			name:        "Valid single word",
			template:    "messy",
			expectError: false,
		},
		{
			name:        "Valid with digits",
			template:    "pipeline2",
			expectError: false,
		},
		{
			name:        "Invalid uppercase",
			template:    "Research-Pipeline",
			expectError: true,
		},
		{
			name:        "Invalid underscore",
			template:    "research_pipeline",
			expectError: true,
		},
		{
			name:        "Invalid leading digit",
			template:    "2pipeline",
			expectError: true,
		},
		{
			name:        "Invalid space",
			template:    "research pipeline",
			expectError: true,
		},
		{
			name:        "Empty name",
			template:    "",
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTemplateName(tt.template)

			if tt.expectError && err == nil {
				t.Errorf("Expected error for template '%s' but got nil", tt.template)
			}

			if !tt.expectError && err != nil {
				t.Errorf("Expected no error for template '%s' but got: %v", tt.template, err)
			}
		})
	}
}
