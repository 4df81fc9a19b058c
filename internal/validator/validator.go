package validator

import (
	"math"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validator combines struct tag validation with question definition lint
type Validator struct {
	structValidator   *validator.Validate
	questionValidator *QuestionValidator
}

// New creates a new centralized validator instance
func New() *Validator {
	structValidator := validator.New()

	registerCustomValidators(structValidator)

	return &Validator{
		structValidator:   structValidator,
		questionValidator: NewQuestionValidator(),
	}
}

// ValidateStruct validates struct tags and returns ValidationErrors on failure
func (v *Validator) ValidateStruct(s interface{}) error {
	if err := v.structValidator.Struct(s); err != nil {
		if errs := ToValidationErrors(err); len(errs) > 0 {
			return errs
		}
		return err
	}
	return nil
}

// Question returns the question definition validator
func (v *Validator) Question() *QuestionValidator {
	return v.questionValidator
}

func registerCustomValidators(validate *validator.Validate) {
	// Any non-empty type is accepted: unknown types still produce a graded record.
	validate.RegisterValidation("question_type", validateQuestionType)
	validate.RegisterValidation("finite_marks", validateFiniteMarks)

	// Custom tag name function for better error messages
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

func validateQuestionType(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

func validateFiniteMarks(fl validator.FieldLevel) bool {
	value := fl.Field().Float()
	return !math.IsNaN(value) && !math.IsInf(value, 0) && value >= 0
}
