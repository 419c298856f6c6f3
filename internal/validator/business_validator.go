package validator

import (
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/medihack/competency-service/internal/models"
)

// BusinessValidator handles business rule validation
type BusinessValidator struct {
	validate *validator.Validate
}

// NewBusinessValidator creates a new business validator
func NewBusinessValidator() *BusinessValidator {
	validate := validator.New()

	bv := &BusinessValidator{validate: validate}
	bv.registerBusinessRules()

	return bv
}

// Validate validates business rules for any struct
func (bv *BusinessValidator) Validate(s interface{}) ValidationErrors {
	err := bv.validate.Struct(s)
	if err != nil {
		return ToValidationErrors(err)
	}
	return nil
}

// ValidateEvaluationInput checks that scenarios and responses can be paired.
func (bv *BusinessValidator) ValidateEvaluationInput(scenarios []models.Scenario, responses []string) ValidationErrors {
	var errors ValidationErrors

	if len(scenarios) == 0 {
		errors = append(errors, ValidationError{
			Field:   "scenarios",
			Message: "at least one scenario is required",
			Rule:    "min",
		})
	}
	if len(responses) > len(scenarios) {
		errors = append(errors, ValidationError{
			Field:   "responses",
			Message: "more responses than scenarios",
			Value:   len(responses),
			Rule:    "max",
		})
	}
	for i, sc := range scenarios {
		if strings.TrimSpace(sc.Text) == "" {
			errors = append(errors, ValidationError{
				Field:   "scenarios",
				Message: "scenario text must not be empty",
				Value:   i,
				Rule:    "required",
			})
		}
	}

	return errors
}

func (bv *BusinessValidator) registerBusinessRules() {
	// Supported assessment languages
	bv.validate.RegisterValidation("language", func(fl validator.FieldLevel) bool {
		return models.Language(fl.Field().String()).Valid()
	})

	// Competency scores live on a 0-4 scale
	bv.validate.RegisterValidation("score_range", func(fl validator.FieldLevel) bool {
		score := fl.Field().Float()
		return score >= models.MinScore && score <= models.MaxScore
	})

	bv.validate.RegisterValidation("competency_id", func(fl validator.FieldLevel) bool {
		_, ok := models.FindCompetency(fl.Field().String())
		return ok
	})
}
