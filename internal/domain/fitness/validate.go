package fitness

import (
	"errors"
	"math"
	"slices"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		_ = validate.RegisterValidation("classlabel", func(fl validator.FieldLevel) bool {
			return slices.Contains(ClassLabels, fl.Field().String())
		})
		_ = validate.RegisterValidation("finite", func(fl validator.FieldLevel) bool {
			f := fl.Field().Float()
			return !math.IsNaN(f) && !math.IsInf(f, 0)
		})
	})
	return validate
}

// fieldErrors maps struct fields to the domain error reported for them.
var fieldErrors = map[string]error{
	"Name":        ErrNameRequired,
	"ClassNumber": ErrClassNumberRequired,
	"ClassLabel":  ErrInvalidClassLabel,
	"Gender":      ErrInvalidGender,
	"SitUps":      ErrNegativeValue,
	"Flexibility": ErrNegativeValue,
	"HandGrip":    ErrNegativeValue,
	"Run9Min":     ErrNegativeValue,
	"HeightCm":    ErrInvalidBodySize,
	"WeightKg":    ErrInvalidBodySize,
}

// Validate checks that the measurement can be assessed.
// Name and class number are checked first so a half-filled form always
// reports the missing identity fields.
// PRE: m has been normalized
// POST: returns nil or a *ValidationError
func (m RawMeasurement) Validate() error {
	if m.Name == "" {
		return &ValidationError{Field: "Name", Err: ErrNameRequired}
	}
	if m.ClassNumber <= 0 {
		return &ValidationError{Field: "ClassNumber", Err: ErrClassNumberRequired}
	}

	err := validatorInstance().Struct(m)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		field := verrs[0].StructField()
		if verrs[0].Tag() == "finite" {
			return &ValidationError{Field: field, Err: ErrNonFiniteValue}
		}
		if derr, ok := fieldErrors[field]; ok {
			return &ValidationError{Field: field, Err: derr}
		}
		return &ValidationError{Field: field, Err: err}
	}
	return &ValidationError{Err: err}
}
