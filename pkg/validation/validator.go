package validation

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/go-playground/validator/v10"
)

var (
	// validate is a singleton validator instance
	validate *validator.Validate

	// Validation constants
	MinCanvasDim   = 160
	MaxCanvasDim   = 4096
	MaxTitleLength = 200

	// Regular expressions
	templatePattern = regexp.MustCompile(`^[a-z][a-z0-9-]*$`)
)

func init() {
	validate = validator.New()
}

// AggregationRequest represents a request to change the aggregation mode
type AggregationRequest struct {
	Mode string `json:"mode" validate:"required,oneof=none by-category"`
}

// PlotRequest represents the options accepted by the diagram endpoints
type PlotRequest struct {
	Format string `json:"format" validate:"omitempty,oneof=svg dot json"`
	Layout string `json:"layout" validate:"omitempty,oneof=force circular hierarchical"`
	Width  int    `json:"width" validate:"omitempty,min=160,max=4096"`
	Height int    `json:"height" validate:"omitempty,min=160,max=4096"`
	Seed   int64  `json:"seed" validate:"omitempty"`
	Title  string `json:"title" validate:"omitempty,max=200"`
}

// ValidateAggregationRequest validates an aggregation mode change request
func ValidateAggregationRequest(req *AggregationRequest) error {
	if req == nil {
		return errors.New("aggregation request cannot be nil")
	}

	if err := validate.Struct(req); err != nil {
		return formatValidationError(err)
	}

	return nil
}

// ValidatePlotRequest validates diagram plot options
func ValidatePlotRequest(req *PlotRequest) error {
	if req == nil {
		return errors.New("plot request cannot be nil")
	}

	if err := validate.Struct(req); err != nil {
		return formatValidationError(err)
	}

	// Canvas dimensions travel as a pair
	if (req.Width == 0) != (req.Height == 0) {
		return errors.New("Width: width and height must be set together")
	}

	return nil
}

// ValidateCanvas validates a canvas width and height pair
func ValidateCanvas(width, height int) error {
	if width < MinCanvasDim || width > MaxCanvasDim {
		return fmt.Errorf("canvas width %d is outside range [%d, %d]", width, MinCanvasDim, MaxCanvasDim)
	}
	if height < MinCanvasDim || height > MaxCanvasDim {
		return fmt.Errorf("canvas height %d is outside range [%d, %d]", height, MinCanvasDim, MaxCanvasDim)
	}
	return nil
}

// ValidateTemplateName validates a fixture template name
func ValidateTemplateName(name string) error {
	if name == "" {
		return errors.New("template name cannot be empty")
	}
	if !templatePattern.MatchString(name) {
		return fmt.Errorf("template name '%s' is invalid (must be lowercase kebab-case)", name)
	}
	return nil
}

// formatValidationError converts validator errors to a more user-friendly format
func formatValidationError(err error) error {
	if err == nil {
		return nil
	}

	validationErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	// Return the first validation error in a user-friendly format
	for _, e := range validationErrs {
		field := e.Field()
		tag := e.Tag()
		param := e.Param()

		switch tag {
		case "required":
			return fmt.Errorf("%s: field is required", field)
		case "min":
			return fmt.Errorf("%s: must be at least %s", field, param)
		case "max":
			return fmt.Errorf("%s: must not exceed %s", field, param)
		case "oneof":
			return fmt.Errorf("%s: must be one of [%s]", field, param)
		default:
			return fmt.Errorf("%s: validation failed (%s)", field, tag)
		}
	}

	return err
}
